package testinternals

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/2beens/portfolio/internal/db"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewTestDBPool connects to the postgres instance given by POSTGRES_HOST, POSTGRES_PORT,
// POSTGRES_DB and POSTGRES_PASSWORD, applies the migrations and empties the given tables.
// The pool is closed when the test ends.
func NewTestDBPool(t *testing.T, tables ...string) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	host := envOr("POSTGRES_HOST", "localhost")
	t.Logf("using postgres host: %s", host)

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     host,
		DBPort:     envOr("POSTGRES_PORT", "5432"),
		DBName:     envOr("POSTGRES_DB", "portfolio_test"),
		DBUser:     envOr("POSTGRES_USER", "postgres"),
		DBPassword: os.Getenv("POSTGRES_PASSWORD"),
	})
	require.NoError(t, err)
	t.Cleanup(dbPool.Close)

	require.NoError(t, dbPool.Ping(ctx))
	require.NoError(t, db.Migrate(ctx, dbPool))

	if len(tables) > 0 {
		_, err = dbPool.Exec(ctx, fmt.Sprintf("TRUNCATE %s RESTART IDENTITY;", strings.Join(tables, ", ")))
		require.NoError(t, err)
	}

	return dbPool
}
