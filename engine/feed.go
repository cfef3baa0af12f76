package engine

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"socialfeed/storage"
	"socialfeed/storage/models"
)

// GetFeed assembles the ordered feed projection: posts newest first (ids
// ascending on equal timestamps), joined with live engagement counts and the
// viewer-relative IsLiked flag. An empty viewerID yields IsLiked=false
// everywhere; an empty scopeUserID spans all authors. Backend unavailability
// degrades to an empty feed.
func (e *Engine) GetFeed(ctx context.Context, viewerID, scopeUserID string) (entries []models.FeedEntry, err error) {
	defer func() { observe("get_feed", err) }()

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	entries, err = e.backend.ListFeed(opCtx, viewerID, scopeUserID)
	if err = backendErr(err); err != nil {
		if errors.Is(err, storage.ErrBackendUnavailable) {
			log.Warnf("Feed degraded to empty result: %v", err)
			return []models.FeedEntry{}, nil
		}
		return nil, err
	}
	return entries, nil
}
