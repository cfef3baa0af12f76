package tasks

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"socialfeed/cache"
	"socialfeed/storage"
)

// StatisticsUpdater refreshes the user statistics cache from backend truth on
// a fixed interval. Each refresh is a full recompute per user; the cache is
// never adjusted by increments, so a missed event cannot make it drift.
type StatisticsUpdater struct {
	backend    storage.Backend
	usersCache *cache.UsersCache
	interval   time.Duration
}

func NewStatisticsUpdater(backend storage.Backend, usersCache *cache.UsersCache, interval time.Duration) *StatisticsUpdater {
	return &StatisticsUpdater{
		backend:    backend,
		usersCache: usersCache,
		interval:   interval,
	}
}

func (u *StatisticsUpdater) Run() {
	u.refresh()

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()
	for range ticker.C {
		u.refresh()
	}
}

func (u *StatisticsUpdater) refresh() {
	ctx := context.Background()

	userIDs, err := u.backend.ListUserIDs(ctx)
	if err != nil {
		log.Errorf("Error listing users for statistics refresh: %v", err)
		return
	}

	for _, userID := range userIDs {
		stats, err := u.backend.UserStats(ctx, userID)
		if err != nil {
			log.Errorf("Error computing statistics for user %s: %v", userID, err)
			continue
		}
		u.usersCache.SetUserStats(ctx, userID, stats)
	}
	log.Debugf("Statistics refreshed for %d users", len(userIDs))
}
