package postgres

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		avatar        TEXT NOT NULL DEFAULT '',
		bio           TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL,
		CONSTRAINT users_email_key UNIQUE (email),
		CONSTRAINT users_username_key UNIQUE (username)
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id         TEXT PRIMARY KEY,
		author_id  TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		content    TEXT NOT NULL,
		image      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id         TEXT PRIMARY KEY,
		post_id    TEXT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
		author_id  TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS likes (
		user_id    TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		post_id    TEXT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT likes_pkey PRIMARY KEY (user_id, post_id)
	)`,
	`CREATE TABLE IF NOT EXISTS follows (
		follower_id  TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		following_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created_at   TIMESTAMPTZ NOT NULL,
		CONSTRAINT follows_pkey PRIMARY KEY (follower_id, following_id),
		CONSTRAINT follows_no_self_check CHECK (follower_id <> following_id)
	)`,
	`CREATE INDEX IF NOT EXISTS posts_created_at_idx ON posts (created_at DESC, id ASC)`,
	`CREATE INDEX IF NOT EXISTS posts_author_id_idx ON posts (author_id)`,
	`CREATE INDEX IF NOT EXISTS comments_post_id_idx ON comments (post_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS likes_post_id_idx ON likes (post_id)`,
	`CREATE INDEX IF NOT EXISTS follows_following_id_idx ON follows (following_id)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := b.pool.Exec(ctx, stmt); err != nil {
			return mapError(err)
		}
	}
	return nil
}
