package persist

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saraasara/wakes/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// openTestDB connects to the database named by WAKES_TEST_DSN and skips the
// test when it is unset.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("WAKES_TEST_DSN")
	if dsn == "" {
		t.Skip("WAKES_TEST_DSN not set")
	}
	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{
		DSN:             dsn,
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, RunMigrations(ctx, db.Pool, zap.NewNop()))
	return db
}

func TestSettingsRepoRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewSettingsRepo(db)
	ctx := context.Background()
	world := "test-" + uuid.NewString()[:8]

	_, ok, err := repo.LoadResolution(ctx, world)
	require.NoError(t, err)
	require.False(t, ok)

	session := uuid.New()
	require.NoError(t, repo.SaveResolution(ctx, ResolutionChange{SessionID: session, World: world, From: 16, To: 32, Tick: 40}))
	require.NoError(t, repo.SaveResolution(ctx, ResolutionChange{SessionID: session, World: world, From: 32, To: 8, Tick: 90}))

	res, ok, err := repo.LoadResolution(ctx, world)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 8, res)

	changes, err := repo.RecentChanges(ctx, world, 10)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	require.Equal(t, 8, changes[0].To)
	require.Equal(t, uint64(90), changes[0].Tick)
	require.Equal(t, session, changes[1].SessionID)
}

func TestSettingsRepoWrapsQueryErrors(t *testing.T) {
	// the pool connects lazily; a canceled context fails before dialing
	pool, err := pgxpool.New(context.Background(), "postgres://wakes@127.0.0.1:1/wakes?sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	repo := NewSettingsRepo(&DB{Pool: pool, log: zap.NewNop()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = repo.RecentChanges(ctx, "overworld", 5)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorContains(t, err, "query wake_resolution_changes overworld")

	_, _, err = repo.LoadResolution(ctx, "overworld")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorContains(t, err, "load resolution overworld")
}
