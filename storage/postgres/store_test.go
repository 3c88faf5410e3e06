package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"tickermap/mapping"
	"tickermap/scraper"
	"tickermap/storage"
	"tickermap/storage/migrations"
	"tickermap/storage/postgres"
	"tickermap/ticker"
)

// setupTestDB starts a PostgreSQL container and applies the embedded migrations.
func setupTestDB(t *testing.T) *postgres.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := postgres.NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.RunPostgresMigrations(ctx, pool))
	// Applying twice must be harmless.
	require.NoError(t, migrations.RunPostgresMigrations(ctx, pool))

	return pool
}

func TestMappingStore(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := postgres.NewMappingStore(pool)

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)

	first := mapping.FromRecords([]ticker.Record{
		ticker.Resolved("BT/A LN", "BT-A.LON").WithSecondary("BT-A.L"),
		ticker.Unsupported("700 HK"),
		ticker.TimedOut("FOO ZZ"),
	})
	require.NoError(t, store.Save(ctx, first))

	second := mapping.FromRecords([]ticker.Record{
		ticker.Resolved("FOO ZZ", "FOO"),
		ticker.NotFound("BAR ZZ"),
	})
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ticker.Record{
		ticker.Unsupported("700 HK"),
		ticker.NotFound("BAR ZZ"),
		ticker.Resolved("BT/A LN", "BT-A.LON").WithSecondary("BT-A.L"),
		ticker.Resolved("FOO ZZ", "FOO"),
	}, got.Records())
}

func TestCompanyStore(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := postgres.NewCompanyStore(pool)

	require.NoError(t, store.Append(ctx, []scraper.Company{
		{Reference: "AAPL US", Name: "Apple Inc", Sector: "Technology", Found: true},
		{Reference: "ZZZ ZZ"},
	}))
	require.NoError(t, store.Append(ctx, []scraper.Company{
		{Reference: "AAPL US", Name: "ignored"},
	}))

	refs, err := store.References(ctx)
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, scraper.Company{Reference: "AAPL US", Name: "Apple Inc", Sector: "Technology", Found: true}, all[0])
	assert.Equal(t, scraper.Company{Reference: "ZZZ ZZ"}, all[1])
}
