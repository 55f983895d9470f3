package marketgame

import (
	"github.com/markcheno/go-talib"
)

// Indicators are the technical readings shown alongside an instrument's
// chart, computed over the series up to the current day.
type Indicators struct {
	SMA20  *float64 `json:"sma20,omitempty"`
	EMA50  *float64 `json:"ema50,omitempty"`
	RSI14  *float64 `json:"rsi14,omitempty"`
	Price  float64  `json:"price"`
	Symbol string   `json:"symbol"`
}

func isNaN(f float64) bool {
	return f != f
}

func lastValue(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	v := values[len(values)-1]
	if isNaN(v) || v == 0 {
		return nil
	}
	return &v
}

// sma returns the simple moving average at the end of the series, or nil
// with insufficient data.
func sma(closes []float64, length int) *float64 {
	if len(closes) < length {
		return nil
	}
	return lastValue(talib.Sma(closes, length))
}

// ema returns the exponential moving average at the end of the series, or
// nil with insufficient data.
func ema(closes []float64, length int) *float64 {
	if len(closes) < length {
		return nil
	}
	return lastValue(talib.Ema(closes, length))
}

// rsi returns the relative strength index at the end of the series, or nil
// with insufficient data. RSI needs one extra value for the first delta.
func rsi(closes []float64, length int) *float64 {
	if len(closes) < length+1 {
		return nil
	}
	values := talib.Rsi(closes, length)
	if len(values) == 0 {
		return nil
	}
	v := values[len(values)-1]
	if isNaN(v) {
		return nil
	}
	return &v
}

// IndicatorsAt computes chart indicators for a symbol using every close up
// to and including dayIndex. Unknown symbols yield a zero reading.
func IndicatorsAt(symbol string, dayIndex int) Indicators {
	series := Series(symbol)
	if len(series) == 0 {
		return Indicators{Symbol: symbol}
	}
	if dayIndex < 0 {
		dayIndex = 0
	}
	if dayIndex > len(series)-1 {
		dayIndex = len(series) - 1
	}
	window := series[:dayIndex+1]

	return Indicators{
		Symbol: symbol,
		Price:  window[len(window)-1],
		SMA20:  sma(window, 20),
		EMA50:  ema(window, 50),
		RSI14:  rsi(window, 14),
	}
}
