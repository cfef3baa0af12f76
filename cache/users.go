// Package cache holds the Redis-backed user statistics cache. It is a
// derived projection: the statistics task recomputes it wholesale from
// backend truth, and mutations never patch it by increments, so it cannot
// drift from the stored rows for longer than one refresh interval.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"socialfeed/storage/models"
)

const UsersFollowersCountRedisKey = "users_followers_count"
const UsersFollowingCountRedisKey = "users_following_count"
const UsersPostsCountRedisKey = "users_posts_count"

type UsersCache struct {
	redisClient *redis.Client
	expiration  time.Duration
}

func NewUsersCache(redisConnection *redis.Client, expiration time.Duration) *UsersCache {
	return &UsersCache{
		redisClient: redisConnection,
		expiration:  expiration,
	}
}

func (c *UsersCache) SetUserStats(ctx context.Context, userID string, stats models.UserStats) {
	c.hSetWithExpiration(ctx, UsersFollowersCountRedisKey, userID, stats.FollowersCount)
	c.hSetWithExpiration(ctx, UsersFollowingCountRedisKey, userID, stats.FollowingCount)
	c.hSetWithExpiration(ctx, UsersPostsCountRedisKey, userID, stats.PostsCount)
}

func (c *UsersCache) GetUserStats(ctx context.Context, userID string) (models.UserStats, bool) {
	followersCount, err := c.redisClient.HGet(ctx, UsersFollowersCountRedisKey, userID).Int64()
	if err != nil {
		return models.UserStats{}, false
	}
	followingCount, err := c.redisClient.HGet(ctx, UsersFollowingCountRedisKey, userID).Int64()
	if err != nil {
		return models.UserStats{}, false
	}
	postsCount, err := c.redisClient.HGet(ctx, UsersPostsCountRedisKey, userID).Int64()
	if err != nil {
		return models.UserStats{}, false
	}

	return models.UserStats{
		FollowersCount: followersCount,
		FollowingCount: followingCount,
		PostsCount:     postsCount,
	}, true
}

func (c *UsersCache) DeleteUser(ctx context.Context, userID string) {
	c.redisClient.HDel(ctx, UsersFollowersCountRedisKey, userID)
	c.redisClient.HDel(ctx, UsersFollowingCountRedisKey, userID)
	c.redisClient.HDel(ctx, UsersPostsCountRedisKey, userID)
}

func (c *UsersCache) hSetWithExpiration(ctx context.Context, redisKey, field string, value int64) {
	c.redisClient.HSet(ctx, redisKey, field, value)
	c.redisClient.HExpire(ctx, redisKey, c.expiration, field)
}
