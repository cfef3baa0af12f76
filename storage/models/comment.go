package models

import "time"

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentView is a Comment joined with its author's display fields at read
// time. Author fields are never denormalized into the comment row.
type CommentView struct {
	Comment
	AuthorName   string `json:"author_name"`
	AuthorAvatar string `json:"author_avatar"`
}
