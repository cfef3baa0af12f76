package engine

import "socialfeed/storage/models"

// Mutations return the updated aggregate fields for the entity they touched
// so callers can patch local state without re-reading the whole feed.

type LikeResult struct {
	PostID     string `json:"post_id"`
	Liked      bool   `json:"liked"`
	LikesCount int64  `json:"likes_count"`
}

type FollowResult struct {
	UserID         string `json:"user_id"`
	Following      bool   `json:"following"`
	FollowersCount int64  `json:"followers_count"`
}

type CommentResult struct {
	Comment       models.CommentView `json:"comment"`
	CommentsCount int64              `json:"comments_count"`
}
