// Package postgres implements the storage backend on PostgreSQL via pgx.
// Natural-key uniqueness is enforced by constraints; toggles resolve insert
// conflicts with ON CONFLICT DO NOTHING instead of a read-then-write pair.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"socialfeed/storage"
	"socialfeed/storage/models"
)

type Backend struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Backend {
	return &Backend{pool: pool}
}

// mapError translates driver failures into the shared taxonomy. Constraint
// violations become domain errors; anything else that is not a domain
// condition is a backend availability failure.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			switch pgErr.ConstraintName {
			case "users_email_key":
				return &storage.DuplicateIdentityError{Field: "email"}
			case "users_username_key":
				return &storage.DuplicateIdentityError{Field: "username"}
			}
			return err
		case "23503": // foreign_key_violation
			return storage.ErrNotFound
		case "23514": // check_violation
			return storage.ErrSelfReference
		}
		return err
	}
	return fmt.Errorf("%w: %v", storage.ErrBackendUnavailable, err)
}

func (b *Backend) CreateUser(ctx context.Context, user models.User) error {
	_, err := b.pool.Exec(
		ctx,
		`INSERT INTO users (id, name, username, email, password_hash, avatar, bio, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Name, user.Username, user.Email,
		user.PasswordHash, user.Avatar, user.Bio, user.CreatedAt,
	)
	return mapError(err)
}

const userColumns = `id, name, username, email, password_hash, avatar, bio, created_at`

func (b *Backend) getUser(ctx context.Context, where string, arg any) (models.User, error) {
	var user models.User
	err := b.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where,
		arg,
	).Scan(
		&user.ID, &user.Name, &user.Username, &user.Email,
		&user.PasswordHash, &user.Avatar, &user.Bio, &user.CreatedAt,
	)
	if err != nil {
		return models.User{}, mapError(err)
	}
	return user, nil
}

func (b *Backend) GetUser(ctx context.Context, id string) (models.User, error) {
	return b.getUser(ctx, "id = $1", id)
}

func (b *Backend) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return b.getUser(ctx, "email = $1", email)
}

func (b *Backend) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return b.getUser(ctx, "username = $1", username)
}

func (b *Backend) DeleteUser(ctx context.Context, id string) error {
	// Posts, comments, likes and follows cascade via foreign keys.
	tag, err := b.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (b *Backend) SuggestUsers(ctx context.Context, viewerID string, limit int) ([]models.UserSummary, error) {
	rows, err := b.pool.Query(
		ctx,
		`SELECT id, name, username, avatar
		 FROM users
		 WHERE $1 = ''
		    OR (id <> $1 AND id NOT IN (
		        SELECT following_id FROM follows WHERE follower_id = $1
		    ))
		 ORDER BY username ASC
		 LIMIT $2`,
		viewerID, limit,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	summaries := make([]models.UserSummary, 0, limit)
	for rows.Next() {
		var s models.UserSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Username, &s.Avatar); err != nil {
			return nil, mapError(err)
		}
		summaries = append(summaries, s)
	}
	return summaries, mapError(rows.Err())
}

func (b *Backend) UserStats(ctx context.Context, userID string) (models.UserStats, error) {
	var stats models.UserStats
	err := b.pool.QueryRow(
		ctx,
		`SELECT
		    (SELECT COUNT(*) FROM follows WHERE following_id = $1),
		    (SELECT COUNT(*) FROM follows WHERE follower_id = $1),
		    (SELECT COUNT(*) FROM posts WHERE author_id = $1)`,
		userID,
	).Scan(&stats.FollowersCount, &stats.FollowingCount, &stats.PostsCount)
	if err != nil {
		return models.UserStats{}, mapError(err)
	}
	return stats, nil
}

func (b *Backend) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := b.pool.Query(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapError(err)
		}
		ids = append(ids, id)
	}
	return ids, mapError(rows.Err())
}

func (b *Backend) CreatePost(ctx context.Context, post models.Post) error {
	_, err := b.pool.Exec(
		ctx,
		`INSERT INTO posts (id, author_id, content, image, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		post.ID, post.AuthorID, post.Content, post.Image, post.CreatedAt,
	)
	return mapError(err)
}

func (b *Backend) GetPost(ctx context.Context, id string) (models.Post, error) {
	var post models.Post
	err := b.pool.QueryRow(
		ctx,
		`SELECT id, author_id, content, image, created_at FROM posts WHERE id = $1`,
		id,
	).Scan(&post.ID, &post.AuthorID, &post.Content, &post.Image, &post.CreatedAt)
	if err != nil {
		return models.Post{}, mapError(err)
	}
	return post, nil
}

func (b *Backend) CreateComment(ctx context.Context, comment models.Comment) error {
	_, err := b.pool.Exec(
		ctx,
		`INSERT INTO comments (id, post_id, author_id, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		comment.ID, comment.PostID, comment.AuthorID, comment.Content, comment.CreatedAt,
	)
	return mapError(err)
}

func (b *Backend) ListComments(ctx context.Context, postID string) ([]models.CommentView, error) {
	rows, err := b.pool.Query(
		ctx,
		`SELECT c.id, c.post_id, c.author_id, c.content, c.created_at, u.name, u.avatar
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.post_id = $1
		 ORDER BY c.created_at ASC, c.id ASC`,
		postID,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	views := make([]models.CommentView, 0)
	for rows.Next() {
		var v models.CommentView
		err := rows.Scan(
			&v.ID, &v.PostID, &v.AuthorID, &v.Content, &v.CreatedAt,
			&v.AuthorName, &v.AuthorAvatar,
		)
		if err != nil {
			return nil, mapError(err)
		}
		views = append(views, v)
	}
	return views, mapError(rows.Err())
}

func (b *Backend) CountComments(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := b.pool.QueryRow(
		ctx, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID,
	).Scan(&count)
	return count, mapError(err)
}

// ListFeed collapses the per-post count and existence lookups into a single
// aggregate query instead of issuing one round trip per entry.
func (b *Backend) ListFeed(ctx context.Context, viewerID, scopeUserID string) ([]models.FeedEntry, error) {
	rows, err := b.pool.Query(
		ctx,
		`SELECT p.id, p.author_id, p.content, p.image, p.created_at,
		        u.name, u.username, u.avatar,
		        (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
		        (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
		        CASE WHEN $1 = '' THEN FALSE
		             ELSE EXISTS (
		                 SELECT 1 FROM likes l
		                 WHERE l.post_id = p.id AND l.user_id = $1
		             )
		        END
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE $2 = '' OR p.author_id = $2
		 ORDER BY p.created_at DESC, p.id ASC`,
		viewerID, scopeUserID,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	entries := make([]models.FeedEntry, 0)
	for rows.Next() {
		var e models.FeedEntry
		err := rows.Scan(
			&e.ID, &e.AuthorID, &e.Content, &e.Image, &e.CreatedAt,
			&e.AuthorName, &e.AuthorUsername, &e.AuthorAvatar,
			&e.LikesCount, &e.CommentsCount, &e.IsLiked,
		)
		if err != nil {
			return nil, mapError(err)
		}
		entries = append(entries, e)
	}
	return entries, mapError(rows.Err())
}

func (b *Backend) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	tag, err := b.pool.Exec(
		ctx,
		`INSERT INTO likes (user_id, post_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID, time.Now().UTC(),
	)
	if err != nil {
		return false, mapError(err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	// The row already existed: this toggle removes it.
	_, err = b.pool.Exec(
		ctx,
		`DELETE FROM likes WHERE user_id = $1 AND post_id = $2`,
		userID, postID,
	)
	return false, mapError(err)
}

func (b *Backend) CountLikes(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := b.pool.QueryRow(
		ctx, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID,
	).Scan(&count)
	return count, mapError(err)
}

func (b *Backend) ToggleFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	tag, err := b.pool.Exec(
		ctx,
		`INSERT INTO follows (follower_id, following_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (follower_id, following_id) DO NOTHING`,
		followerID, followingID, time.Now().UTC(),
	)
	if err != nil {
		return false, mapError(err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	_, err = b.pool.Exec(
		ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID,
	)
	return false, mapError(err)
}

func (b *Backend) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var following bool
	err := b.pool.QueryRow(
		ctx,
		`SELECT EXISTS (
		    SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2
		 )`,
		followerID, followingID,
	).Scan(&following)
	return following, mapError(err)
}
