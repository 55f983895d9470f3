package marketgame

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	state := NewState()

	assert.Equal(t, StartDay, state.DayIndex)
	assert.Equal(t, StartingCash, state.Cash)
	assert.Equal(t, StartDay, state.LastSyncedDay)
	assert.Len(t, state.Holdings, len(Instruments))
	require.Len(t, state.PortfolioHistory, 1)
	assert.Equal(t, StartingCash, state.PortfolioHistory[0].Value)
	assert.Equal(t, 1, state.SeasonDay())
	assert.Equal(t, PlayableDays-1, state.RemainingDays())
}

func TestBuy_DebitsCashAndTracksCost(t *testing.T) {
	state := NewState()
	price := PriceAt("AAPL", state.DayIndex)

	message, changed := state.Buy("AAPL", 10)
	require.True(t, changed)
	assert.Equal(t, fmt.Sprintf("Bought 10 AAPL @ $%.2f.", price), message)

	position := state.Holdings["AAPL"]
	assert.Equal(t, 10, position.Shares)
	assert.Equal(t, price, position.AvgCost)
	assert.InDelta(t, StartingCash-10*price, state.Cash, 0.01)

	require.Len(t, state.TradeLog, 1)
	assert.Equal(t, SideBuy, state.TradeLog[0].Side)
	assert.Equal(t, state.Cash, state.TradeLog[0].CashAfter)
}

func TestBuy_ClampsToAffordable(t *testing.T) {
	state := NewState()
	price := PriceAt("NVDA", state.DayIndex)
	affordable := int(StartingCash / price)

	_, changed := state.Buy("NVDA", 1000000)
	require.True(t, changed)
	assert.Equal(t, affordable, state.Holdings["NVDA"].Shares)
}

func TestBuy_RefusedWithoutCash(t *testing.T) {
	state := NewState()
	state.Cash = 0.5

	message, changed := state.Buy("AAPL", 1)
	assert.False(t, changed)
	assert.Equal(t, "Not enough cash for that trade size.", message)
	assert.Empty(t, state.TradeLog)
}

func TestSell_RealizesPnL(t *testing.T) {
	state := NewState()
	_, changed := state.Buy("XOM", 5)
	require.True(t, changed)
	avgCost := state.Holdings["XOM"].AvgCost

	// Advance so the sell price differs from the cost basis.
	for i := 0; i < 30; i++ {
		_, ok := state.AdvanceDay()
		require.True(t, ok)
	}

	price := PriceAt("XOM", state.DayIndex)
	message, changed := state.Sell("XOM", 5)
	require.True(t, changed)
	assert.Equal(t, fmt.Sprintf("Sold 5 XOM @ $%.2f.", price), message)

	assert.Equal(t, 0, state.Holdings["XOM"].Shares)
	assert.Equal(t, 0.0, state.Holdings["XOM"].AvgCost, "cost basis resets when flat")
	assert.InDelta(t, (price-avgCost)*5, state.RealizedPnL, 0.02)
}

func TestSell_RefusedWithoutShares(t *testing.T) {
	state := NewState()
	message, changed := state.Sell("QNTM", 3)
	assert.False(t, changed)
	assert.Equal(t, "No shares available to sell.", message)
}

func TestSell_ClampsToPosition(t *testing.T) {
	state := NewState()
	_, _ = state.Buy("JNJ", 4)

	_, changed := state.Sell("JNJ", 99)
	require.True(t, changed)
	assert.Equal(t, 0, state.Holdings["JNJ"].Shares)
}

func TestBuy_AveragesCostAcrossLots(t *testing.T) {
	state := NewState()
	_, _ = state.Buy("AAPL", 2)
	firstPrice := PriceAt("AAPL", state.DayIndex)

	for i := 0; i < 10; i++ {
		_, _ = state.AdvanceDay()
	}
	secondPrice := PriceAt("AAPL", state.DayIndex)
	_, _ = state.Buy("AAPL", 2)

	expected := round2((firstPrice*2 + secondPrice*2) / 4)
	assert.Equal(t, expected, state.Holdings["AAPL"].AvgCost)
}

func TestAdvanceDay_AppendsHistory(t *testing.T) {
	state := NewState()
	_, ok := state.AdvanceDay()
	require.True(t, ok)

	assert.Equal(t, StartDay+1, state.DayIndex)
	require.Len(t, state.PortfolioHistory, 2)
	assert.Equal(t, StartDay+1, state.PortfolioHistory[1].DayIndex)
}

func TestAdvanceDay_StopsAtSeasonEnd(t *testing.T) {
	state := NewState()
	state.DayIndex = EndDay

	message, ok := state.AdvanceDay()
	assert.False(t, ok)
	assert.Equal(t, "You reached the end of the 1-year simulation. Reset to start a new season.", message)
	assert.Equal(t, EndDay, state.DayIndex)
}

func TestHistoryPoint_UpsertsSameDay(t *testing.T) {
	state := NewState()
	_, _ = state.Buy("AAPL", 1)
	_, _ = state.Buy("AAPL", 1)

	// Both trades happened on the starting day: still one history point.
	assert.Len(t, state.PortfolioHistory, 1)
}

func TestTradeLog_NewestFirstAndCapped(t *testing.T) {
	state := NewState()
	state.Cash = 1e9

	for i := 0; i < tradeLogCap+10; i++ {
		_, changed := state.Buy("QNTM", 1)
		require.True(t, changed)
	}

	assert.Len(t, state.TradeLog, tradeLogCap)
	assert.Equal(t, SideBuy, state.TradeLog[0].Side)
}

func TestSyncRewards_RequiresNewDays(t *testing.T) {
	state := NewState()
	result, ok := state.SyncRewards()
	assert.False(t, ok)
	assert.Equal(t, "No new days to sync yet. Advance at least one day first.", result.Message)
}

func TestSyncRewards_PaysPerDayWithFloorAndCap(t *testing.T) {
	state := NewState()
	for i := 0; i < 2; i++ {
		_, _ = state.AdvanceDay()
	}

	result, ok := state.SyncRewards()
	require.True(t, ok)
	// 2 days * 3 XP = 6, floored at 12.
	assert.GreaterOrEqual(t, result.XP, 12)
	assert.LessOrEqual(t, result.XP, 220)
	assert.GreaterOrEqual(t, result.Coins, 5)
	assert.Equal(t, 2, result.DayDelta)
	assert.Equal(t, state.DayIndex, state.LastSyncedDay)
	assert.Contains(t, result.Message, "Progress synced.")

	// Immediately syncing again finds nothing new.
	_, ok = state.SyncRewards()
	assert.False(t, ok)
}

func TestAllocationMix_EmptyPortfolioIsAllCash(t *testing.T) {
	state := NewState()
	mix := state.AllocationMix()
	require.Len(t, mix, 1)
	assert.Equal(t, AllocationSlice{Name: "Cash", Value: 100}, mix[0])
}

func TestAllocationMix_SortedDescending(t *testing.T) {
	state := NewState()
	_, _ = state.Buy("AAPL", 10)
	_, _ = state.Buy("QNTM", 5)

	mix := state.AllocationMix()
	require.NotEmpty(t, mix)
	total := 0.0
	for i, slice := range mix {
		total += slice.Value
		if i > 0 {
			assert.LessOrEqual(t, slice.Value, mix[i-1].Value)
		}
	}
	assert.InDelta(t, 100, total, 0.5)
}

func TestNormalize_RepairsCorruptState(t *testing.T) {
	state := &State{
		DayIndex:      HistoryDays * 3,
		Cash:          -500,
		LastSyncedDay: -10,
		Holdings: map[string]Position{
			"AAPL": {Shares: -4, AvgCost: -1},
			"FAKE": {Shares: 10, AvgCost: 5},
		},
		TradeLog: []TradeLogEntry{
			{Symbol: "AAPL", Side: "shred", Quantity: 1},
			{Symbol: "FAKE", Side: SideBuy, Quantity: 1},
			{Symbol: "AAPL", Side: SideBuy, Quantity: 0, Price: -3},
		},
	}

	state.Normalize()

	assert.Equal(t, EndDay, state.DayIndex)
	assert.Equal(t, 0.0, state.Cash)
	assert.Equal(t, StartDay, state.LastSyncedDay)
	assert.Equal(t, Position{}, state.Holdings["AAPL"])
	_, hasFake := state.Holdings["FAKE"]
	assert.False(t, hasFake, "unknown symbols are dropped")

	// Only the valid-symbol buy survives, with quantity and price repaired.
	require.Len(t, state.TradeLog, 1)
	assert.Equal(t, 1, state.TradeLog[0].Quantity)
	assert.Equal(t, 0.0, state.TradeLog[0].Price)

	require.NotEmpty(t, state.PortfolioHistory)
}

func TestDayLabel(t *testing.T) {
	assert.Equal(t, "Jan 1, 2025", DayLabel(0))
	assert.Equal(t, "Jan 2, 2025", DayLabel(1))
}
