package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"socialfeed/events"
	"socialfeed/storage"
	"socialfeed/storage/models"
)

func (e *Engine) CreatePost(ctx context.Context, authorID, content, image string) (post models.Post, err error) {
	defer func() { observe("create_post", err) }()

	if authorID == "" {
		return models.Post{}, storage.ErrNotAuthenticated
	}
	if strings.TrimSpace(content) == "" {
		return models.Post{}, &storage.ValidationError{Message: "post content cannot be empty"}
	}

	post = models.Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Content:   content,
		Image:     image,
		CreatedAt: time.Now().UTC(),
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	if err = backendErr(e.backend.CreatePost(opCtx, post)); err != nil {
		return models.Post{}, err
	}

	e.publish(events.PostCreated, post)
	return post, nil
}

func (e *Engine) AddComment(ctx context.Context, authorID, postID, content string) (result CommentResult, err error) {
	defer func() { observe("add_comment", err) }()

	if authorID == "" {
		return CommentResult{}, storage.ErrNotAuthenticated
	}
	if strings.TrimSpace(content) == "" {
		return CommentResult{}, &storage.ValidationError{Message: "comment content cannot be empty"}
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	if err = backendErr(e.backend.CreateComment(opCtx, comment)); err != nil {
		return CommentResult{}, err
	}

	view := models.CommentView{Comment: comment}
	if author, authorErr := e.backend.GetUser(opCtx, authorID); authorErr == nil {
		view.AuthorName = author.Name
		view.AuthorAvatar = author.Avatar
	}

	count, countErr := e.backend.CountComments(opCtx, postID)
	if countErr != nil {
		log.Warnf("Could not count comments for post %s: %v", postID, countErr)
	}

	result = CommentResult{Comment: view, CommentsCount: count}
	e.publish(events.CommentAdded, result)
	return result, nil
}

// GetComments returns a post's comments oldest first, each carrying its
// author's display name and avatar. Backend unavailability degrades to an
// empty result.
func (e *Engine) GetComments(ctx context.Context, postID string) (comments []models.CommentView, err error) {
	defer func() { observe("get_comments", err) }()

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	comments, err = e.backend.ListComments(opCtx, postID)
	if err = backendErr(err); err != nil {
		if errors.Is(err, storage.ErrBackendUnavailable) {
			log.Warnf("Comment listing degraded to empty result: %v", err)
			return []models.CommentView{}, nil
		}
		return nil, err
	}
	return comments, nil
}
