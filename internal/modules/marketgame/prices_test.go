package marketgame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries_AllInstrumentsFullLength(t *testing.T) {
	for _, inst := range Instruments {
		series := Series(inst.Symbol)
		require.Len(t, series, HistoryDays, inst.Symbol)
		assert.Equal(t, inst.StartPrice, series[0], "day zero is the start price")
	}
}

func TestSeries_Deterministic(t *testing.T) {
	a := Series("NVDA")
	b := Series("NVDA")
	assert.Equal(t, a, b)
}

func TestSeries_PricesFlooredAndRounded(t *testing.T) {
	for _, inst := range Instruments {
		for day, price := range Series(inst.Symbol) {
			require.GreaterOrEqual(t, price, 2.0, "%s day %d", inst.Symbol, day)
			cents := price * 100
			require.InDelta(t, cents, float64(int64(cents+0.5)), 1e-6, "%s day %d not cent-rounded", inst.Symbol, day)
		}
	}
}

func TestSeries_InstrumentsDiverge(t *testing.T) {
	assert.NotEqual(t, Series("AAPL"), Series("JNJ"))
}

func TestPriceAt_ClampsDayIndex(t *testing.T) {
	series := Series("AAPL")
	assert.Equal(t, series[0], PriceAt("AAPL", -10))
	assert.Equal(t, series[len(series)-1], PriceAt("AAPL", HistoryDays+50))
}

func TestPriceAt_UnknownSymbol(t *testing.T) {
	assert.Equal(t, 0.0, PriceAt("NOPE", 10))
}

func TestBenchmarkReturnAt_StartOfPlayIsZero(t *testing.T) {
	assert.InDelta(t, 0.0, BenchmarkReturnAt(StartDay), 1e-9)
}

func TestBenchmarkReturnAt_Deterministic(t *testing.T) {
	assert.Equal(t, BenchmarkReturnAt(EndDay), BenchmarkReturnAt(EndDay))
}
