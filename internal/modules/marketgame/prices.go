package marketgame

import (
	"math"
	"sync"

	"github.com/aristath/wealthsim/internal/rng"
)

// pulseSeed drives the market-wide momentum component shared by every
// instrument. Changing it reshapes every price series at once.
const pulseSeed uint32 = 20260208

func roundPrice(v float64) float64 { return math.Round(v*100) / 100 }

// buildMarketPulse produces the shared per-day market drift: a decaying
// momentum term fed by small shocks, plus a slow macro sine wave.
func buildMarketPulse(days int) []float64 {
	r := rng.FromState(pulseSeed)
	pulse := make([]float64, days)
	momentum := 0.0

	for day := 0; day < days; day++ {
		shock := (r.Float64() - 0.5) * 0.006
		momentum = momentum*0.88 + shock
		macroWave := math.Sin(float64(day)/24) * 0.0015
		pulse[day] = momentum + macroWave
	}

	return pulse
}

// buildSeries generates one instrument's daily closes. Each day draws a
// random move scaled by volatility plus a rare jump (1.5% of days) of up to
// 3.5x volatility in either direction. Prices compound unrounded and floor
// at 2; the stored series is rounded to cents.
func buildSeries(inst Instrument, marketPulse []float64) []float64 {
	r := rng.FromState(rng.HashSymbol(inst.Symbol))
	prices := make([]float64, 0, HistoryDays)
	price := inst.StartPrice

	prices = append(prices, roundPrice(price))

	for day := 1; day < HistoryDays; day++ {
		randomMove := (r.Float64() - 0.5) * 2 * inst.Volatility
		jump := 0.0
		if r.Float64() > 0.985 {
			jump = (r.Float64() - 0.5) * inst.Volatility * 7
		}
		move := inst.DailyDrift + marketPulse[day] + randomMove + jump
		price = math.Max(2, price*(1+move))
		prices = append(prices, roundPrice(price))
	}

	return prices
}

var (
	seriesOnce     sync.Once
	seriesBySymbol map[string][]float64
)

// allSeries builds the full price table once. The table is immutable after
// construction, so concurrent readers need no locking.
func allSeries() map[string][]float64 {
	seriesOnce.Do(func() {
		pulse := buildMarketPulse(HistoryDays)
		table := make(map[string][]float64, len(Instruments))
		for _, inst := range Instruments {
			table[inst.Symbol] = buildSeries(inst, pulse)
		}
		seriesBySymbol = table
	})
	return seriesBySymbol
}

// Series returns the full daily close series for a symbol. The returned slice
// is shared and must not be modified. Unknown symbols yield nil.
func Series(symbol string) []float64 {
	return allSeries()[symbol]
}

// PriceAt returns the close for a symbol on a day, clamping the day into the
// series range. Unknown symbols price at 0.
func PriceAt(symbol string, dayIndex int) float64 {
	series := allSeries()[symbol]
	if len(series) == 0 {
		return 0
	}
	if dayIndex < 0 {
		dayIndex = 0
	}
	if dayIndex > len(series)-1 {
		dayIndex = len(series) - 1
	}
	return series[dayIndex]
}

// BenchmarkReturnAt is the equal-weight catalog return from the start of play
// to the given day, in percent.
func BenchmarkReturnAt(dayIndex int) float64 {
	if len(Instruments) == 0 {
		return 0
	}

	startSum := 0.0
	currentSum := 0.0
	for _, inst := range Instruments {
		startSum += PriceAt(inst.Symbol, StartDay)
		currentSum += PriceAt(inst.Symbol, dayIndex)
	}

	startAverage := startSum / float64(len(Instruments))
	if startAverage <= 0 {
		return 0
	}
	currentAverage := currentSum / float64(len(Instruments))

	return (currentAverage/startAverage - 1) * 100
}
