package testing

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/2beens/serjblog/internal/db"
)

// GetDBPool connects to a real postgres (POSTGRES_HOST, default localhost),
// makes sure the blog schema exists and empties all blog tables.
func GetDBPool(t *testing.T) (context.Context, *pgxpool.Pool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postgres host: %s", host)

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		ConnString:     "postgres://postgres@" + host + ":5432/serj_blog_test?sslmode=disable",
		TracingEnabled: false,
	})
	require.NoError(t, err)
	t.Cleanup(dbPool.Close)

	require.NoError(t, db.EnsureSchema(ctx, dbPool))
	_, err = dbPool.Exec(ctx, `TRUNCATE blog_comment, blog_post, blog_user RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return ctx, dbPool
}
