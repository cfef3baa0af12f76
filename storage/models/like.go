package models

import "time"

// Like relates a user to a post. The (UserID, PostID) pair is a natural key:
// at most one row may exist per pair.
type Like struct {
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
