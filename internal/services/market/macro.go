package market

import (
	"github.com/shopspring/decimal"

	"github.com/busandev/firecro/pkg/indicators"
)

// spreadSeries aligns the two rate series by their tails and returns
// long minus short for each aligned bar.
func spreadSeries(long, short []decimal.Decimal) []decimal.Decimal {
	n := len(long)
	if len(short) < n {
		n = len(short)
	}
	if n == 0 {
		return nil
	}

	long = long[len(long)-n:]
	short = short[len(short)-n:]

	spreads := make([]decimal.Decimal, n)
	for i := 0; i < n; i++ {
		spreads[i] = long[i].Sub(short[i])
	}
	return spreads
}

// spreadNormalized reports whether the curve was inverted at some point
// in the trailing lookback window and has un-inverted since. The
// heuristic: recession risk peaks during un-inversion, not inversion.
func spreadNormalized(spreads []decimal.Decimal, lookback int) bool {
	if len(spreads) == 0 {
		return false
	}
	if len(spreads) > lookback {
		spreads = spreads[len(spreads)-lookback:]
	}

	if spreads[len(spreads)-1].IsNegative() {
		return false
	}

	for _, s := range spreads {
		if s.IsNegative() {
			return true
		}
	}
	return false
}

// sustainedHigh reports whether the minimum over the trailing window
// holds at or above the threshold. A brief spike above the threshold
// does not qualify; the whole window must have settled there.
func sustainedHigh(values []decimal.Decimal, window int, threshold decimal.Decimal) bool {
	if len(values) < window || window < 1 {
		return false
	}

	tail := values[len(values)-window:]
	min := tail[0]
	for _, v := range tail[1:] {
		if v.LessThan(min) {
			min = v
		}
	}
	return min.GreaterThanOrEqual(threshold)
}

// trendBroken reports whether the last two closes both sit below their
// short moving average. Less than two periods of MA history defaults
// to false.
func trendBroken(closes []decimal.Decimal, maWindow int) bool {
	smas, err := indicators.SMASeries(closes, maWindow)
	if err != nil || len(smas) < 2 {
		return false
	}

	lastClose := closes[len(closes)-1]
	prevClose := closes[len(closes)-2]
	lastMA := smas[len(smas)-1]
	prevMA := smas[len(smas)-2]

	return lastClose.LessThan(lastMA) && prevClose.LessThan(prevMA)
}
