// Package hybrid implements the storage backend with relational storage for
// users, posts and comments and Redis sets for the like and follow relations.
// SADD deciding the toggle branch is the natural-key guard: the set member
// either appears (now liked/following) or was already there (remove it).
package hybrid

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"socialfeed/storage"
	"socialfeed/storage/models"
	"socialfeed/storage/postgres"
)

const (
	PostLikesRedisKey     = "post_likes:"
	UserLikedRedisKey     = "user_liked:"
	UserFollowersRedisKey = "user_followers:"
	UserFollowingRedisKey = "user_following:"
)

type Backend struct {
	*postgres.Backend

	redisClient *redis.Client
}

func New(pg *postgres.Backend, redisClient *redis.Client) *Backend {
	return &Backend{
		Backend:     pg,
		redisClient: redisClient,
	}
}

func redisErr(err error) error {
	return fmt.Errorf("%w: %v", storage.ErrBackendUnavailable, err)
}

func (b *Backend) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	if _, err := b.Backend.GetPost(ctx, postID); err != nil {
		return false, err
	}

	added, err := b.redisClient.SAdd(ctx, PostLikesRedisKey+postID, userID).Result()
	if err != nil {
		return false, redisErr(err)
	}
	if added == 0 {
		// Already a member: this toggle removes the like.
		pipe := b.redisClient.Pipeline()
		pipe.SRem(ctx, PostLikesRedisKey+postID, userID)
		pipe.SRem(ctx, UserLikedRedisKey+userID, postID)
		if _, err := pipe.Exec(ctx); err != nil {
			return false, redisErr(err)
		}
		return false, nil
	}
	if err := b.redisClient.SAdd(ctx, UserLikedRedisKey+userID, postID).Err(); err != nil {
		return false, redisErr(err)
	}
	return true, nil
}

func (b *Backend) CountLikes(ctx context.Context, postID string) (int64, error) {
	count, err := b.redisClient.SCard(ctx, PostLikesRedisKey+postID).Result()
	if err != nil {
		return 0, redisErr(err)
	}
	return count, nil
}

func (b *Backend) ToggleFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	if _, err := b.Backend.GetUser(ctx, followingID); err != nil {
		return false, err
	}

	added, err := b.redisClient.SAdd(ctx, UserFollowingRedisKey+followerID, followingID).Result()
	if err != nil {
		return false, redisErr(err)
	}
	if added == 0 {
		pipe := b.redisClient.Pipeline()
		pipe.SRem(ctx, UserFollowingRedisKey+followerID, followingID)
		pipe.SRem(ctx, UserFollowersRedisKey+followingID, followerID)
		if _, err := pipe.Exec(ctx); err != nil {
			return false, redisErr(err)
		}
		return false, nil
	}
	if err := b.redisClient.SAdd(ctx, UserFollowersRedisKey+followingID, followerID).Err(); err != nil {
		return false, redisErr(err)
	}
	return true, nil
}

func (b *Backend) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	following, err := b.redisClient.SIsMember(ctx, UserFollowingRedisKey+followerID, followingID).Result()
	if err != nil {
		return false, redisErr(err)
	}
	return following, nil
}

// ListFeed reads posts, authors and comment counts relationally, then patches
// the like aggregates in from Redis with one pipeline for the whole page.
func (b *Backend) ListFeed(ctx context.Context, viewerID, scopeUserID string) ([]models.FeedEntry, error) {
	entries, err := b.Backend.ListFeed(ctx, "", scopeUserID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}

	pipe := b.redisClient.Pipeline()
	counts := make([]*redis.IntCmd, len(entries))
	liked := make([]*redis.BoolCmd, len(entries))
	for i, entry := range entries {
		counts[i] = pipe.SCard(ctx, PostLikesRedisKey+entry.ID)
		if viewerID != "" {
			liked[i] = pipe.SIsMember(ctx, PostLikesRedisKey+entry.ID, viewerID)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, redisErr(err)
	}

	for i := range entries {
		entries[i].LikesCount = counts[i].Val()
		if viewerID != "" {
			entries[i].IsLiked = liked[i].Val()
		}
	}
	return entries, nil
}

func (b *Backend) SuggestUsers(ctx context.Context, viewerID string, limit int) ([]models.UserSummary, error) {
	if viewerID == "" {
		return b.Backend.SuggestUsers(ctx, "", limit)
	}

	followingIDs, err := b.redisClient.SMembers(ctx, UserFollowingRedisKey+viewerID).Result()
	if err != nil {
		return nil, redisErr(err)
	}
	excluded := make(map[string]bool, len(followingIDs)+1)
	excluded[viewerID] = true
	for _, id := range followingIDs {
		excluded[id] = true
	}

	// Over-fetch by the exclusion set size so the page stays full.
	candidates, err := b.Backend.SuggestUsers(ctx, "", limit+len(excluded))
	if err != nil {
		return nil, err
	}
	summaries := make([]models.UserSummary, 0, limit)
	for _, candidate := range candidates {
		if excluded[candidate.ID] {
			continue
		}
		summaries = append(summaries, candidate)
		if len(summaries) == limit {
			break
		}
	}
	return summaries, nil
}

func (b *Backend) UserStats(ctx context.Context, userID string) (models.UserStats, error) {
	relational, err := b.Backend.UserStats(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}

	pipe := b.redisClient.Pipeline()
	followers := pipe.SCard(ctx, UserFollowersRedisKey+userID)
	following := pipe.SCard(ctx, UserFollowingRedisKey+userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return models.UserStats{}, redisErr(err)
	}

	return models.UserStats{
		FollowersCount: followers.Val(),
		FollowingCount: following.Val(),
		PostsCount:     relational.PostsCount,
	}, nil
}

// DeleteUser removes the relational rows (cascading posts and comments) and
// scrubs every Redis set the user appears in.
func (b *Backend) DeleteUser(ctx context.Context, id string) error {
	posts, err := b.Backend.ListFeed(ctx, "", id)
	if err != nil {
		return err
	}
	likedPostIDs, err := b.redisClient.SMembers(ctx, UserLikedRedisKey+id).Result()
	if err != nil {
		return redisErr(err)
	}
	followingIDs, err := b.redisClient.SMembers(ctx, UserFollowingRedisKey+id).Result()
	if err != nil {
		return redisErr(err)
	}
	followerIDs, err := b.redisClient.SMembers(ctx, UserFollowersRedisKey+id).Result()
	if err != nil {
		return redisErr(err)
	}

	if err := b.Backend.DeleteUser(ctx, id); err != nil {
		return err
	}

	pipe := b.redisClient.Pipeline()
	for _, post := range posts {
		likerIDs, err := b.redisClient.SMembers(ctx, PostLikesRedisKey+post.ID).Result()
		if err == nil {
			for _, likerID := range likerIDs {
				pipe.SRem(ctx, UserLikedRedisKey+likerID, post.ID)
			}
		}
		pipe.Del(ctx, PostLikesRedisKey+post.ID)
	}
	for _, postID := range likedPostIDs {
		pipe.SRem(ctx, PostLikesRedisKey+postID, id)
	}
	for _, followingID := range followingIDs {
		pipe.SRem(ctx, UserFollowersRedisKey+followingID, id)
	}
	for _, followerID := range followerIDs {
		pipe.SRem(ctx, UserFollowingRedisKey+followerID, id)
	}
	pipe.Del(ctx, UserLikedRedisKey+id, UserFollowingRedisKey+id, UserFollowersRedisKey+id)
	if _, err := pipe.Exec(ctx); err != nil {
		return redisErr(err)
	}
	return nil
}
