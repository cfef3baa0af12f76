package models

// FeedEntry is the read-time projection of a Post: author display fields and
// live engagement counts joined at query time, plus the viewer-relative
// IsLiked flag. It is never stored.
type FeedEntry struct {
	Post
	AuthorName     string `json:"author_name"`
	AuthorUsername string `json:"author_username"`
	AuthorAvatar   string `json:"author_avatar"`
	LikesCount     int64  `json:"likes_count"`
	CommentsCount  int64  `json:"comments_count"`
	IsLiked        bool   `json:"is_liked"`
}
