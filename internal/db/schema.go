package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

// Schema creates the blog tables if they are missing. There are no migrations,
// incompatible changes have to be handled by hand.
const Schema = `
CREATE TABLE IF NOT EXISTS blog_user
(
    id         SERIAL PRIMARY KEY,
    email      VARCHAR(250) NOT NULL UNIQUE,
    name       VARCHAR(250) NOT NULL,
    password   VARCHAR(250) NOT NULL,
    role       VARCHAR(16)  NOT NULL DEFAULT 'reader',
    created_at TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS blog_post
(
    id        SERIAL PRIMARY KEY,
    author_id INTEGER      NOT NULL REFERENCES blog_user (id),
    title     VARCHAR(250) NOT NULL UNIQUE,
    subtitle  VARCHAR(250) NOT NULL,
    date      VARCHAR(250) NOT NULL,
    body      TEXT         NOT NULL,
    img_url   VARCHAR(250) NOT NULL
);

CREATE TABLE IF NOT EXISTS blog_comment
(
    id        SERIAL PRIMARY KEY,
    author_id INTEGER NOT NULL REFERENCES blog_user (id),
    post_id   INTEGER NOT NULL REFERENCES blog_post (id) ON DELETE CASCADE,
    text      TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS ix_blog_comment_post_id ON blog_comment (post_id);
`

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func EnsureSchema(ctx context.Context, db execer) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	log.Debugln("db schema in place")
	return nil
}
