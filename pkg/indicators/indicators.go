// Package indicators provides the technical indicators used by the
// advisor: RSI (Wilder smoothing), simple moving averages and
// drawdown-from-rolling-peak.
package indicators

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInsufficientData signals that a series is too short (or too flat)
// to compute an indicator. Callers must treat the signal as unavailable,
// never substitute a numeric default.
var ErrInsufficientData = errors.New("insufficient data for indicator")

var one = decimal.NewFromInt(1)

// RSI returns the latest Relative Strength Index using Wilder/RMA
// smoothing (the variant typical trading platforms display).
// Monotone series are clamped explicitly: zero average loss means
// RSI 100, zero average gain means RSI 0, and a fully flat series has
// no defined RSI at all.
func RSI(closes []decimal.Decimal, period int) (decimal.Decimal, error) {
	if len(closes) < period+1 {
		return decimal.Zero, errors.Wrapf(ErrInsufficientData, "rsi needs %d closes, got %d", period+1, len(closes))
	}

	var hasGain, hasLoss bool
	for i := 1; i < len(closes); i++ {
		switch closes[i].Cmp(closes[i-1]) {
		case 1:
			hasGain = true
		case -1:
			hasLoss = true
		}
	}
	if !hasGain && !hasLoss {
		return decimal.Zero, errors.Wrap(ErrInsufficientData, "flat series has undefined RSI")
	}
	if !hasLoss {
		return decimal.NewFromInt(100), nil
	}
	if !hasGain {
		return decimal.Zero, nil
	}

	rsi := momentum.NewRsiWithPeriod[float64](period)
	out := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(decimalsToFloat64(closes))))
	if len(out) == 0 {
		return decimal.Zero, errors.Wrap(ErrInsufficientData, "rsi produced no values")
	}

	last := out[len(out)-1]
	if math.IsNaN(last) || math.IsInf(last, 0) {
		return decimal.Zero, errors.Wrap(ErrInsufficientData, "rsi is undefined for this series")
	}

	return decimal.NewFromFloat(last), nil
}

// SMA returns the latest simple moving average over the window.
func SMA(closes []decimal.Decimal, window int) (decimal.Decimal, error) {
	series, err := SMASeries(closes, window)
	if err != nil {
		return decimal.Zero, err
	}
	return series[len(series)-1], nil
}

// SMASeries returns simple moving averages aligned to the series tail:
// element i corresponds to closes[len(closes)-len(result)+i].
func SMASeries(closes []decimal.Decimal, window int) ([]decimal.Decimal, error) {
	if window < 1 {
		return nil, errors.Errorf("sma window must be positive, got %d", window)
	}
	if len(closes) < window {
		return nil, errors.Wrapf(ErrInsufficientData, "sma needs %d closes, got %d", window, len(closes))
	}

	sma := trend.NewSmaWithPeriod[float64](window)
	out := helper.ChanToSlice(sma.Compute(helper.SliceToChan(decimalsToFloat64(closes))))
	if len(out) == 0 {
		return nil, errors.Wrap(ErrInsufficientData, "sma produced no values")
	}

	return float64ToDecimals(out), nil
}

// Drawdown returns the latest close expressed against the rolling
// maximum close over the trailing lookback bars. The lookback is
// clamped to the available history, so the result is always <= 0.
func Drawdown(closes []decimal.Decimal, lookback int) (decimal.Decimal, error) {
	series, err := DrawdownSeries(closes, lookback)
	if err != nil {
		return decimal.Zero, err
	}
	return series[len(series)-1], nil
}

// DrawdownSeries returns close/rollingMax - 1 for every bar. The
// rolling window grows until it reaches lookback bars, matching a
// min_periods=1 rolling maximum.
func DrawdownSeries(closes []decimal.Decimal, lookback int) ([]decimal.Decimal, error) {
	if lookback < 1 {
		return nil, errors.Errorf("drawdown lookback must be positive, got %d", lookback)
	}
	if len(closes) == 0 {
		return nil, errors.Wrap(ErrInsufficientData, "drawdown needs at least one close")
	}

	result := make([]decimal.Decimal, len(closes))
	for i := range closes {
		start := i - lookback + 1
		if start < 0 {
			start = 0
		}
		peak := closes[start]
		for j := start + 1; j <= i; j++ {
			if closes[j].GreaterThan(peak) {
				peak = closes[j]
			}
		}
		if peak.IsZero() {
			return nil, errors.Wrapf(ErrInsufficientData, "zero rolling peak at bar %d", i)
		}
		result[i] = closes[i].Div(peak).Sub(one)
	}

	return result, nil
}

// decimalsToFloat64 converts a slice of decimal.Decimal to []float64.
func decimalsToFloat64(decimals []decimal.Decimal) []float64 {
	result := make([]float64, len(decimals))
	for i, d := range decimals {
		result[i], _ = d.Float64()
	}
	return result
}

// float64ToDecimals converts a slice of float64 to []decimal.Decimal.
func float64ToDecimals(floats []float64) []decimal.Decimal {
	result := make([]decimal.Decimal, len(floats))
	for i, f := range floats {
		result[i] = decimal.NewFromFloat(f)
	}
	return result
}
