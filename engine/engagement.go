package engine

import (
	"context"

	log "github.com/sirupsen/logrus"

	"socialfeed/events"
	"socialfeed/storage"
)

// ToggleLike flips the (actor, post) like relation and returns the new state
// with the post's updated like count. The flip itself is atomic in the
// backend; concurrent duplicate calls serialize on the natural-key guard.
func (e *Engine) ToggleLike(ctx context.Context, actorID, postID string) (result LikeResult, err error) {
	defer func() { observe("toggle_like", err) }()

	if actorID == "" {
		return LikeResult{}, storage.ErrNotAuthenticated
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	liked, err := e.backend.ToggleLike(opCtx, actorID, postID)
	if err = backendErr(err); err != nil {
		return LikeResult{}, err
	}

	count, countErr := e.backend.CountLikes(opCtx, postID)
	if countErr != nil {
		log.Warnf("Could not count likes for post %s: %v", postID, countErr)
	}

	result = LikeResult{PostID: postID, Liked: liked, LikesCount: count}
	e.publish(events.LikeToggled, result)
	return result, nil
}

// ToggleFollow flips the (actor, target) follow relation. Following yourself
// is rejected before any read or write.
func (e *Engine) ToggleFollow(ctx context.Context, actorID, targetID string) (result FollowResult, err error) {
	defer func() { observe("toggle_follow", err) }()

	if actorID == "" {
		return FollowResult{}, storage.ErrNotAuthenticated
	}
	if actorID == targetID {
		return FollowResult{}, storage.ErrSelfReference
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	following, err := e.backend.ToggleFollow(opCtx, actorID, targetID)
	if err = backendErr(err); err != nil {
		return FollowResult{}, err
	}

	var followersCount int64
	if stats, statsErr := e.backend.UserStats(opCtx, targetID); statsErr == nil {
		followersCount = stats.FollowersCount
	} else {
		log.Warnf("Could not compute statistics for user %s: %v", targetID, statsErr)
	}

	result = FollowResult{UserID: targetID, Following: following, FollowersCount: followersCount}
	e.publish(events.FollowToggled, result)
	return result, nil
}

func (e *Engine) IsFollowing(ctx context.Context, actorID, targetID string) (following bool, err error) {
	defer func() { observe("is_following", err) }()

	if actorID == "" {
		return false, nil
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	following, err = e.backend.IsFollowing(opCtx, actorID, targetID)
	return following, backendErr(err)
}
