package runs

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wealthsim/internal/database"
)

func setupTestDB(t *testing.T) (*database.DB, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test_runs_*.db")
	require.NoError(t, err)
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: database.ProfileStandard,
		Name:    "runs",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	cleanup := func() {
		_ = db.Close()
		_ = os.Remove(tmpPath)
	}

	return db, cleanup
}

func TestRepository_SaveAndGetRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db, zerolog.Nop())

	rec := Execute(Request{
		UserID:         "u1",
		Seed:           "round-trip",
		Periods:        12,
		StartingWealth: 10000,
		Contribution:   1200,
	}, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(&rec))

	loaded, err := repo.Get(rec.Run.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, rec.UserID, loaded.UserID)
	assert.Equal(t, rec.Run.Seed, loaded.Run.Seed)
	assert.Equal(t, rec.Run.EndingWealth, loaded.Run.EndingWealth)
	assert.Equal(t, rec.Run.Timeline, loaded.Run.Timeline)
	assert.Equal(t, rec.Summary, loaded.Summary)
}

func TestRepository_GetMissingReturnsNil(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db, zerolog.Nop())
	rec, err := repo.Get("no-such-run")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRepository_ListByUserNewestFirst(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db, zerolog.Nop())

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := Execute(Request{
			UserID:         "u1",
			Seed:           "list-seed",
			Periods:        5,
			StartingWealth: 1000,
		}, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, repo.Save(&rec))
	}
	other := Execute(Request{UserID: "u2", Seed: "other", Periods: 5, StartingWealth: 1000}, base)
	require.NoError(t, repo.Save(&other))

	items, err := repo.ListByUser("u1", 10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i := 1; i < len(items); i++ {
		assert.True(t, !items[i-1].CreatedAt.Before(items[i].CreatedAt))
	}
}

func TestRepository_ListLimit(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db, zerolog.Nop())
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := Execute(Request{UserID: "u1", Seed: "limit", Periods: 3, StartingWealth: 1000}, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Save(&rec))
	}

	items, err := repo.ListByUser("u1", 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
