package marketgame

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/wealthsim/internal/database"
	"github.com/aristath/wealthsim/internal/modules/profile"
	"github.com/aristath/wealthsim/internal/modules/runs"
)

func openTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test_"+name+"_*.db")
	require.NoError(t, err)
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: database.ProfileStandard,
		Name:    name,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	t.Cleanup(func() {
		_ = db.Close()
		_ = os.Remove(tmpPath)
	})

	return db
}

func setupService(t *testing.T) (*Service, *profile.Repository, *runs.Repository) {
	t.Helper()

	log := zerolog.Nop()
	store := NewStore(openTestDB(t, "marketgame"), log)
	profiles := profile.NewRepository(openTestDB(t, "profiles"), log)
	runRepo := runs.NewRepository(openTestDB(t, "runs"), log)

	return NewService(store, profiles, runRepo, log), profiles, runRepo
}

func TestService_TradePersistsAcrossLoads(t *testing.T) {
	svc, _, _ := setupService(t)

	snap, err := svc.Trade("u1", SideBuy, "AAPL", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.State.Holdings["AAPL"].Shares)
	assert.Contains(t, snap.Message, "Bought 5 AAPL")

	again, err := svc.Session("u1")
	require.NoError(t, err)
	assert.Equal(t, 5, again.State.Holdings["AAPL"].Shares)
}

func TestService_RejectedTradeDoesNotPersist(t *testing.T) {
	svc, _, _ := setupService(t)

	snap, err := svc.Trade("u1", SideSell, "AAPL", 5)
	require.NoError(t, err)
	assert.Equal(t, "No shares available to sell.", snap.Message)

	again, err := svc.Session("u1")
	require.NoError(t, err)
	assert.Empty(t, again.State.TradeLog)
}

func TestService_AdvanceAndReset(t *testing.T) {
	svc, _, _ := setupService(t)

	snap, err := svc.AdvanceDay("u1")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.SeasonDay)

	snap, err = svc.Reset("u1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.SeasonDay)
	assert.Equal(t, "Simulator reset to Day 1.", snap.Message)
}

func TestService_SyncRewardsUpdatesProfileAndHistory(t *testing.T) {
	svc, profiles, runRepo := setupService(t)

	for i := 0; i < 5; i++ {
		_, err := svc.AdvanceDay("u1")
		require.NoError(t, err)
	}

	snap, err := svc.SyncRewards("u1")
	require.NoError(t, err)
	assert.Contains(t, snap.Message, "Progress synced.")
	assert.Equal(t, snap.State.DayIndex, snap.State.LastSyncedDay)

	p, err := profiles.Get("u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.GreaterOrEqual(t, p.XP, 12)
	assert.GreaterOrEqual(t, p.Coins, 5)
	assert.Equal(t, 1, p.StreakDays)

	items, err := runRepo.ListByUser("u1", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Seed, "market-sim-day-")
	assert.Equal(t, StartingCash, items[0].StartingWealth)
}

func TestService_SyncWithoutNewDays(t *testing.T) {
	svc, profiles, _ := setupService(t)

	snap, err := svc.SyncRewards("u1")
	require.NoError(t, err)
	assert.Equal(t, "No new days to sync yet. Advance at least one day first.", snap.Message)

	p, err := profiles.Get("u1")
	require.NoError(t, err)
	assert.Nil(t, p, "a refused sync creates no profile")
}

func TestService_UnknownTradeSide(t *testing.T) {
	svc, _, _ := setupService(t)
	_, err := svc.Trade("u1", "short", "AAPL", 1)
	assert.Error(t, err)
}
