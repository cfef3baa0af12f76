package models

import "time"

// Follow relates a follower to a followed user. The (FollowerID, FollowingID)
// pair is a natural key and FollowerID != FollowingID always holds.
type Follow struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}
