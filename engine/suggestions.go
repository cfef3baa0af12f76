package engine

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"socialfeed/storage"
	"socialfeed/storage/models"
)

const DefaultSuggestionLimit = 5

// SuggestUsers returns follow candidates: every user except the viewer and
// the users the viewer already follows, username order, at most limit. An
// anonymous viewer gets the unfiltered candidate set. Backend unavailability
// degrades to an empty result.
func (e *Engine) SuggestUsers(ctx context.Context, viewerID string, limit int) (summaries []models.UserSummary, err error) {
	defer func() { observe("suggest_users", err) }()

	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	summaries, err = e.backend.SuggestUsers(opCtx, viewerID, limit)
	if err = backendErr(err); err != nil {
		if errors.Is(err, storage.ErrBackendUnavailable) {
			log.Warnf("User suggestions degraded to empty result: %v", err)
			return []models.UserSummary{}, nil
		}
		return nil, err
	}
	return summaries, nil
}
