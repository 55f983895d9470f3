// Package marketgame implements the persistent day-trading simulator: a
// fixed five-instrument catalog with deterministic two-year price series, a
// durable per-user game session (cash, holdings, trade log), and the reward
// sync that folds game progress into the player profile.
package marketgame

// Instrument is one tradable stock in the game catalog. Drift and volatility
// parameterize its deterministic price series.
type Instrument struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	StartPrice float64 `json:"start_price"`
	DailyDrift float64 `json:"daily_drift"`
	Volatility float64 `json:"volatility"`
}

// Instruments is the fixed catalog, in display order.
var Instruments = []Instrument{
	{Symbol: "AAPL", Name: "Apple", Category: "Large Cap Tech", StartPrice: 194, DailyDrift: 0.0005, Volatility: 0.015},
	{Symbol: "NVDA", Name: "NVIDIA", Category: "Semiconductors", StartPrice: 895, DailyDrift: 0.00085, Volatility: 0.023},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Category: "Healthcare", StartPrice: 159, DailyDrift: 0.00035, Volatility: 0.011},
	{Symbol: "XOM", Name: "Exxon Mobil", Category: "Energy", StartPrice: 108, DailyDrift: 0.0004, Volatility: 0.017},
	{Symbol: "QNTM", Name: "Quantum Dynamics", Category: "Speculative", StartPrice: 42, DailyDrift: 0.0012, Volatility: 0.04},
}

// InstrumentBySymbol returns the catalog entry for a symbol, or false when
// the symbol is not tradable.
func InstrumentBySymbol(symbol string) (Instrument, bool) {
	for _, inst := range Instruments {
		if inst.Symbol == symbol {
			return inst, true
		}
	}
	return Instrument{}, false
}

// Series geometry. The first year of each series is pre-game history so
// charts have context on day one; play starts at StartDay and ends at EndDay.
const (
	HistoryDays  = 730
	PlayableDays = 365
	StartDay     = HistoryDays - PlayableDays
	EndDay       = StartDay + PlayableDays - 1

	StartingCash = 10000.0
)

// ChartRangeDays maps chart range keys to their window size in days.
var ChartRangeDays = map[string]int{
	"1W": 7,
	"1M": 30,
	"6M": 180,
	"1Y": 365,
}
