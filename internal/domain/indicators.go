package domain

import "github.com/shopspring/decimal"

// RSI zone boundaries shared by display and contribution logic.
// The euphoria boundary is not fixed here: it is the phase-resolved
// sell threshold (80 standard, 75 defensive).
var (
	RSIOverheat    = decimal.NewFromInt(75)
	RSIOpportunity = decimal.NewFromInt(60)
)

// RSIZone qualitative label for an RSI reading.
type RSIZone string

const (
	ZoneEuphoria    RSIZone = "euphoria"
	ZoneOverheat    RSIZone = "overheat"
	ZoneNeutral     RSIZone = "neutral"
	ZoneOpportunity RSIZone = "opportunity"
)

// RSIZoneFor classifies an RSI value against the active sell threshold.
func RSIZoneFor(rsi, sellThreshold decimal.Decimal) RSIZone {
	switch {
	case rsi.GreaterThanOrEqual(sellThreshold):
		return ZoneEuphoria
	case rsi.GreaterThanOrEqual(RSIOverheat):
		return ZoneOverheat
	case rsi.LessThan(RSIOpportunity):
		return ZoneOpportunity
	default:
		return ZoneNeutral
	}
}

// IndicatorBundle derived values for one (instrument, granularity).
// Recomputed fresh on every cycle, never persisted across cycles.
// A false Known flag means the underlying series was too short for the
// signal; consumers must skip the signal, not read the zero value.
type IndicatorBundle struct {
	RSI      decimal.Decimal `json:"rsi"`
	RSIKnown bool            `json:"rsi_known"`
	// Drawdown current close vs trailing rolling peak, always <= 0.
	Drawdown decimal.Decimal `json:"drawdown"`
	MAShort  decimal.Decimal `json:"ma_short"`
	MALong   decimal.Decimal `json:"ma_long"`
	MAKnown  bool            `json:"ma_known"`
}
