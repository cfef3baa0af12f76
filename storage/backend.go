package storage

import (
	"context"

	"socialfeed/storage/models"
)

// Backend is the persistence contract the engine depends on. Three
// implementations conform to it: memory (ephemeral), postgres (relational)
// and hybrid (relational entities plus Redis engagement sets).
//
// Implementations must enforce the two natural-key uniqueness invariants
// atomically: at most one Like per (user, post) and at most one Follow per
// (follower, following). Toggles are single guarded steps, never an unguarded
// read followed by a write.
type Backend interface {
	// Users. CreateUser returns *DuplicateIdentityError when the email or
	// username is already taken, checking email first.
	CreateUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	// DeleteUser cascades: the user's posts, comments, likes and follow edges
	// go with it.
	DeleteUser(ctx context.Context, id string) error
	// SuggestUsers returns up to limit users excluding viewerID and everyone
	// viewerID follows, ordered by username. An empty viewerID means no
	// exclusions.
	SuggestUsers(ctx context.Context, viewerID string, limit int) ([]models.UserSummary, error)
	UserStats(ctx context.Context, userID string) (models.UserStats, error)
	ListUserIDs(ctx context.Context) ([]string, error)

	// Posts and comments.
	CreatePost(ctx context.Context, post models.Post) error
	GetPost(ctx context.Context, id string) (models.Post, error)
	// CreateComment returns ErrNotFound when the post does not exist.
	CreateComment(ctx context.Context, comment models.Comment) error
	// ListComments returns comments oldest first, each joined with its
	// author's name and avatar.
	ListComments(ctx context.Context, postID string) ([]models.CommentView, error)
	CountComments(ctx context.Context, postID string) (int64, error)

	// ListFeed returns entries ordered by created_at descending, id ascending
	// on ties. scopeUserID filters to a single author's posts when non-empty.
	// With an empty viewerID, IsLiked is false for every entry and no
	// existence lookups are issued.
	ListFeed(ctx context.Context, viewerID, scopeUserID string) ([]models.FeedEntry, error)

	// Engagement toggles: flip the relation atomically and report the new
	// state (true when the relation now exists).
	ToggleLike(ctx context.Context, userID, postID string) (bool, error)
	CountLikes(ctx context.Context, postID string) (int64, error)
	ToggleFollow(ctx context.Context, followerID, followingID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
}
