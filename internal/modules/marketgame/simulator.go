package marketgame

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Position is the held share count and average cost for one symbol.
// AvgCost resets to 0 when the position is fully closed.
type Position struct {
	Shares  int     `json:"shares" msgpack:"shares"`
	AvgCost float64 `json:"avg_cost" msgpack:"avg_cost"`
}

// TradeLogEntry records one executed trade. The log is newest-first and
// capped, so old entries fall off the end.
type TradeLogEntry struct {
	ID        string  `json:"id" msgpack:"id"`
	DayIndex  int     `json:"day_index" msgpack:"day_index"`
	DateLabel string  `json:"date_label" msgpack:"date_label"`
	Symbol    string  `json:"symbol" msgpack:"symbol"`
	Side      Side    `json:"side" msgpack:"side"`
	Quantity  int     `json:"quantity" msgpack:"quantity"`
	Price     float64 `json:"price" msgpack:"price"`
	CashAfter float64 `json:"cash_after" msgpack:"cash_after"`
}

// HistoryPoint is the portfolio value at the end of one day. At most one
// point exists per day; trades on the same day overwrite it.
type HistoryPoint struct {
	DayIndex  int     `json:"day_index" msgpack:"day_index"`
	DateLabel string  `json:"date_label" msgpack:"date_label"`
	Value     float64 `json:"value" msgpack:"value"`
}

// State is the full persistent game session for one user.
type State struct {
	DayIndex         int                 `json:"day_index" msgpack:"day_index"`
	Cash             float64             `json:"cash" msgpack:"cash"`
	Holdings         map[string]Position `json:"holdings" msgpack:"holdings"`
	RealizedPnL      float64             `json:"realized_pnl" msgpack:"realized_pnl"`
	TradeLog         []TradeLogEntry     `json:"trade_log" msgpack:"trade_log"`
	PortfolioHistory []HistoryPoint      `json:"portfolio_history" msgpack:"portfolio_history"`
	LastSyncedDay    int                 `json:"last_synced_day" msgpack:"last_synced_day"`
}

const tradeLogCap = 120

// The game calendar starts on this date; day labels are derived from it.
var simStartDate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// DayLabel formats a day index as a calendar date.
func DayLabel(dayIndex int) string {
	return simStartDate.AddDate(0, 0, dayIndex).Format("Jan 2, 2006")
}

func emptyHoldings() map[string]Position {
	holdings := make(map[string]Position, len(Instruments))
	for _, inst := range Instruments {
		holdings[inst.Symbol] = Position{}
	}
	return holdings
}

// NewState returns a fresh session positioned at the start of play with
// starting cash and no holdings.
func NewState() *State {
	return &State{
		DayIndex: StartDay,
		Cash:     StartingCash,
		Holdings: emptyHoldings(),
		PortfolioHistory: []HistoryPoint{
			{DayIndex: StartDay, DateLabel: DayLabel(StartDay), Value: StartingCash},
		},
		LastSyncedDay: StartDay,
	}
}

// PortfolioValue is cash plus holdings valued at the current day's prices.
func (s *State) PortfolioValue() float64 {
	return s.portfolioValueAt(s.DayIndex)
}

func (s *State) portfolioValueAt(dayIndex int) float64 {
	value := s.Cash
	for symbol, position := range s.Holdings {
		value += float64(position.Shares) * PriceAt(symbol, dayIndex)
	}
	return round2(value)
}

// UnrealizedPnL is the open-position gain at current prices.
func (s *State) UnrealizedPnL() float64 {
	total := 0.0
	for symbol, position := range s.Holdings {
		if position.Shares <= 0 {
			continue
		}
		total += (PriceAt(symbol, s.DayIndex) - position.AvgCost) * float64(position.Shares)
	}
	return total
}

// TotalReturnPct is the portfolio return since the start of play, in percent.
func (s *State) TotalReturnPct() float64 {
	return (s.PortfolioValue()/StartingCash - 1) * 100
}

// SeasonDay is the 1-based play day (day 1 is the first playable day).
func (s *State) SeasonDay() int {
	return s.DayIndex - StartDay + 1
}

// RemainingDays is the number of days left in the season.
func (s *State) RemainingDays() int {
	return EndDay - s.DayIndex
}

// upsertHistoryPoint appends the point, replacing the last one when it is
// for the same day.
func (s *State) upsertHistoryPoint(point HistoryPoint) {
	if n := len(s.PortfolioHistory); n > 0 && s.PortfolioHistory[n-1].DayIndex == point.DayIndex {
		s.PortfolioHistory[n-1] = point
		return
	}
	s.PortfolioHistory = append(s.PortfolioHistory, point)
}

func (s *State) recordTrade(symbol string, side Side, quantity int, price float64) {
	entry := TradeLogEntry{
		ID:        uuid.New().String(),
		DayIndex:  s.DayIndex,
		DateLabel: DayLabel(s.DayIndex),
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		Price:     round2(price),
		CashAfter: s.Cash,
	}
	s.TradeLog = append([]TradeLogEntry{entry}, s.TradeLog...)
	if len(s.TradeLog) > tradeLogCap {
		s.TradeLog = s.TradeLog[:tradeLogCap]
	}

	s.upsertHistoryPoint(HistoryPoint{
		DayIndex:  s.DayIndex,
		DateLabel: DayLabel(s.DayIndex),
		Value:     s.PortfolioValue(),
	})
}

// Buy purchases up to quantity shares at the current day's price, limited by
// available cash. Returns a status message and whether state changed.
func (s *State) Buy(symbol string, quantity int) (string, bool) {
	inst, ok := InstrumentBySymbol(symbol)
	if !ok {
		return fmt.Sprintf("Unknown symbol %s.", symbol), false
	}
	if quantity < 1 {
		quantity = 1
	}

	price := PriceAt(inst.Symbol, s.DayIndex)
	maxAffordable := int(math.Floor(s.Cash / math.Max(0.01, price)))
	if quantity > maxAffordable {
		quantity = maxAffordable
	}
	if quantity <= 0 {
		return "Not enough cash for that trade size.", false
	}

	position := s.Holdings[inst.Symbol]
	s.Cash = round2(s.Cash - float64(quantity)*price)

	totalShares := position.Shares + quantity
	weightedCost := position.AvgCost*float64(position.Shares) + float64(quantity)*price
	s.Holdings[inst.Symbol] = Position{
		Shares:  totalShares,
		AvgCost: round2(weightedCost / float64(totalShares)),
	}

	s.recordTrade(inst.Symbol, SideBuy, quantity, price)
	return fmt.Sprintf("Bought %d %s @ $%.2f.", quantity, inst.Symbol, price), true
}

// Sell disposes up to quantity shares at the current day's price, limited by
// the held position. Realized PnL accrues against the average cost.
func (s *State) Sell(symbol string, quantity int) (string, bool) {
	inst, ok := InstrumentBySymbol(symbol)
	if !ok {
		return fmt.Sprintf("Unknown symbol %s.", symbol), false
	}
	if quantity < 1 {
		quantity = 1
	}

	position := s.Holdings[inst.Symbol]
	if quantity > position.Shares {
		quantity = position.Shares
	}
	if quantity <= 0 {
		return "No shares available to sell.", false
	}

	price := PriceAt(inst.Symbol, s.DayIndex)
	s.Cash = round2(s.Cash + float64(quantity)*price)
	s.RealizedPnL = round2(s.RealizedPnL + (price-position.AvgCost)*float64(quantity))

	remaining := position.Shares - quantity
	avgCost := position.AvgCost
	if remaining <= 0 {
		avgCost = 0
	}
	s.Holdings[inst.Symbol] = Position{Shares: remaining, AvgCost: avgCost}

	s.recordTrade(inst.Symbol, SideSell, quantity, price)
	return fmt.Sprintf("Sold %d %s @ $%.2f.", quantity, inst.Symbol, price), true
}

// AdvanceDay moves the session one day forward and records the new portfolio
// value. At the end of the season it refuses and says so.
func (s *State) AdvanceDay() (string, bool) {
	if s.DayIndex >= EndDay {
		return "You reached the end of the 1-year simulation. Reset to start a new season.", false
	}

	s.DayIndex++
	s.upsertHistoryPoint(HistoryPoint{
		DayIndex:  s.DayIndex,
		DateLabel: DayLabel(s.DayIndex),
		Value:     s.PortfolioValue(),
	})

	return "", true
}

// AllocationSlice is one named share of the current portfolio mix.
type AllocationSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// AllocationMix groups portfolio value by instrument category plus cash, as
// percentages sorted largest first. An empty portfolio is all cash.
func (s *State) AllocationMix() []AllocationSlice {
	values := map[string]float64{"Cash": math.Max(0, s.Cash)}

	for _, inst := range Instruments {
		position := s.Holdings[inst.Symbol]
		if position.Shares <= 0 {
			continue
		}
		values[inst.Category] += float64(position.Shares) * PriceAt(inst.Symbol, s.DayIndex)
	}

	total := 0.0
	for _, v := range values {
		total += v
	}
	if total <= 0 {
		return []AllocationSlice{{Name: "Cash", Value: 100}}
	}

	slices := make([]AllocationSlice, 0, len(values))
	for name, value := range values {
		if value <= 0 {
			continue
		}
		slices = append(slices, AllocationSlice{
			Name:  name,
			Value: math.Round(value/total*1000) / 10,
		})
	}
	sortSlicesDesc(slices)
	return slices
}

func sortSlicesDesc(slices []AllocationSlice) {
	for i := 1; i < len(slices); i++ {
		for j := i; j > 0 && slices[j].Value > slices[j-1].Value; j-- {
			slices[j], slices[j-1] = slices[j-1], slices[j]
		}
	}
}

// SyncResult is the reward computation for unsynced days.
type SyncResult struct {
	XP                 int     `json:"xp"`
	Coins              int     `json:"coins"`
	DayDelta           int     `json:"day_delta"`
	ReturnPct          float64 `json:"return_pct"`
	BenchmarkReturnPct float64 `json:"benchmark_return_pct"`
	CAGR               float64 `json:"cagr"`
	Message            string  `json:"message"`
}

// SyncRewards converts days played since the last sync into XP and coins and
// marks those days as synced. It fails when no new days exist.
//
// XP pays 3 per day plus a performance bonus of 70% of the total return
// percentage, floored at 12 and capped at 220 per sync. Coins track XP at
// 45%, minimum 5.
func (s *State) SyncRewards() (SyncResult, bool) {
	if s.DayIndex <= s.LastSyncedDay {
		return SyncResult{Message: "No new days to sync yet. Advance at least one day first."}, false
	}

	dayDelta := s.DayIndex - s.LastSyncedDay
	returnPct := s.TotalReturnPct()
	performanceBonus := math.Max(0, math.Round(returnPct*0.7))
	xp := int(math.Max(12, math.Min(220, float64(dayDelta*3)+performanceBonus)))
	coins := int(math.Max(5, math.Round(float64(xp)*0.45)))

	elapsedDays := s.SeasonDay()
	if elapsedDays < 1 {
		elapsedDays = 1
	}
	growth := s.PortfolioValue() / StartingCash
	annualized := math.Pow(math.Max(0.0001, growth), 365/float64(elapsedDays)) - 1

	s.LastSyncedDay = s.DayIndex

	return SyncResult{
		XP:                 xp,
		Coins:              coins,
		DayDelta:           dayDelta,
		ReturnPct:          round2(returnPct),
		BenchmarkReturnPct: round2(BenchmarkReturnAt(s.DayIndex)),
		CAGR:               annualized,
		Message:            fmt.Sprintf("Progress synced. +%d XP, +%d coins.", xp, coins),
	}, true
}

// Normalize repairs a restored state so every invariant holds: days inside
// the season, non-negative cash and positions, a complete holdings map, and
// a capped trade log. Used after decoding persisted blobs, which may come
// from older or corrupted sessions.
func (s *State) Normalize() {
	s.DayIndex = clampInt(s.DayIndex, StartDay, EndDay)
	s.Cash = math.Max(0, round2(s.Cash))
	s.RealizedPnL = round2(s.RealizedPnL)
	s.LastSyncedDay = clampInt(s.LastSyncedDay, StartDay, s.DayIndex)

	holdings := emptyHoldings()
	for _, inst := range Instruments {
		if position, ok := s.Holdings[inst.Symbol]; ok {
			holdings[inst.Symbol] = Position{
				Shares:  int(math.Max(0, float64(position.Shares))),
				AvgCost: math.Max(0, round2(position.AvgCost)),
			}
		}
	}
	s.Holdings = holdings

	valid := s.TradeLog[:0]
	for _, entry := range s.TradeLog {
		if entry.Side != SideBuy && entry.Side != SideSell {
			continue
		}
		if _, ok := InstrumentBySymbol(entry.Symbol); !ok {
			continue
		}
		entry.DayIndex = clampInt(entry.DayIndex, StartDay, s.DayIndex)
		if entry.Quantity < 1 {
			entry.Quantity = 1
		}
		entry.Price = math.Max(0, round2(entry.Price))
		entry.CashAfter = math.Max(0, round2(entry.CashAfter))
		valid = append(valid, entry)
	}
	s.TradeLog = valid
	if len(s.TradeLog) > tradeLogCap {
		s.TradeLog = s.TradeLog[:tradeLogCap]
	}

	history := s.PortfolioHistory[:0]
	for _, point := range s.PortfolioHistory {
		point.DayIndex = clampInt(point.DayIndex, StartDay, s.DayIndex)
		point.Value = math.Max(0, round2(point.Value))
		if point.DateLabel == "" {
			point.DateLabel = DayLabel(point.DayIndex)
		}
		history = append(history, point)
	}
	s.PortfolioHistory = history
	if len(s.PortfolioHistory) == 0 {
		s.PortfolioHistory = []HistoryPoint{{
			DayIndex:  s.DayIndex,
			DateLabel: DayLabel(s.DayIndex),
			Value:     s.portfolioValueAt(s.DayIndex),
		}}
	}
}
