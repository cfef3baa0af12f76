package engine

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"socialfeed/events"
	"socialfeed/storage"
	"socialfeed/storage/models"
)

// defaultAvatar derives a stable avatar reference from the username, so the
// same registration always gets the same picture.
func defaultAvatar(username string) string {
	h := fnv.New32a()
	h.Write([]byte(username))
	return fmt.Sprintf("https://i.pravatar.cc/150?img=%d", h.Sum32()%70+1)
}

// Register creates a user, failing with DuplicateIdentityError naming the
// colliding field when the email or username is already taken.
func (e *Engine) Register(ctx context.Context, name, email, username, password string) (user models.User, err error) {
	defer func() { observe("register", err) }()

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	switch {
	case name == "":
		return models.User{}, &storage.ValidationError{Message: "name is required"}
	case email == "":
		return models.User{}, &storage.ValidationError{Message: "email is required"}
	case username == "":
		return models.User{}, &storage.ValidationError{Message: "username is required"}
	case password == "":
		return models.User{}, &storage.ValidationError{Message: "password is required"}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user = models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		Avatar:       defaultAvatar(username),
		CreatedAt:    time.Now().UTC(),
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	if err = backendErr(e.backend.CreateUser(opCtx, user)); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Login authenticates by email. A missing user and a wrong password are
// indistinguishable to the caller.
func (e *Engine) Login(ctx context.Context, email, password string) (user models.User, err error) {
	defer func() { observe("login", err) }()

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	user, err = e.backend.GetUserByEmail(opCtx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, storage.ErrInvalidCredentials
		}
		return models.User{}, backendErr(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		err = storage.ErrInvalidCredentials
		return models.User{}, err
	}
	return user, nil
}

// GetProfile returns a user with its statistics. Statistics come from the
// Redis cache when fresh; a miss falls back to a live computation that
// repopulates the cache.
func (e *Engine) GetProfile(ctx context.Context, username string) (profile models.Profile, err error) {
	defer func() { observe("get_profile", err) }()

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	user, err := e.backend.GetUserByUsername(opCtx, username)
	if err != nil {
		return models.Profile{}, backendErr(err)
	}

	if e.statsCache != nil {
		if stats, ok := e.statsCache.GetUserStats(ctx, user.ID); ok {
			return models.Profile{User: user, Stats: stats}, nil
		}
	}

	stats, statsErr := e.backend.UserStats(opCtx, user.ID)
	if statsErr != nil {
		// Profile still renders without counts.
		log.Warnf("Could not compute statistics for user %s: %v", user.ID, statsErr)
		return models.Profile{User: user}, nil
	}
	if e.statsCache != nil {
		e.statsCache.SetUserStats(ctx, user.ID, stats)
	}
	return models.Profile{User: user, Stats: stats}, nil
}

// DeleteUser removes a user and, transitively, their posts, comments, likes
// and follow edges.
func (e *Engine) DeleteUser(ctx context.Context, actorID, userID string) (err error) {
	defer func() { observe("delete_user", err) }()

	if actorID == "" {
		return storage.ErrNotAuthenticated
	}
	if actorID != userID {
		return storage.ErrNotFound
	}

	opCtx, cancel := e.opCtx(ctx)
	defer cancel()
	if err = backendErr(e.backend.DeleteUser(opCtx, userID)); err != nil {
		return err
	}
	if e.statsCache != nil {
		e.statsCache.DeleteUser(ctx, userID)
	}
	e.publish(events.UserDeleted, map[string]string{"user_id": userID})
	return nil
}
