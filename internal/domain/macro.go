package domain

import "github.com/shopspring/decimal"

// MacroSnapshot cross-series risk signals feeding defensive mode.
type MacroSnapshot struct {
	Volatility  decimal.Decimal `json:"volatility"`
	LongRate    decimal.Decimal `json:"long_rate"`
	ShortRate   decimal.Decimal `json:"short_rate"`
	YieldSpread decimal.Decimal `json:"yield_spread"`

	// VolSustainedHigh trailing 5-period minimum of the volatility index
	// held at or above the configured threshold (regime, not a spike).
	VolSustainedHigh bool `json:"vol_sustained_high"`
	// SpreadNormalized the curve was inverted within the trailing window
	// and has since un-inverted. Recession risk peaks here, not during
	// the inversion itself.
	SpreadNormalized bool `json:"spread_normalized"`
	// TrendBroken benchmark closed below its short weekly MA for at
	// least 2 consecutive periods.
	TrendBroken bool `json:"trend_broken"`
	// ForcedDefensive manual override from portfolio inputs.
	ForcedDefensive bool `json:"forced_defensive"`
}

// Defensive reports whether any risk flag is active.
func (m MacroSnapshot) Defensive() bool {
	return m.VolSustainedHigh || m.SpreadNormalized || m.TrendBroken || m.ForcedDefensive
}

// DefensiveReasons lists the active risk flags for rationale strings.
func (m MacroSnapshot) DefensiveReasons() []string {
	var reasons []string
	if m.VolSustainedHigh {
		reasons = append(reasons, "volatility settled above threshold")
	}
	if m.SpreadNormalized {
		reasons = append(reasons, "yield curve un-inverted")
	}
	if m.TrendBroken {
		reasons = append(reasons, "weekly trend broken")
	}
	if m.ForcedDefensive {
		reasons = append(reasons, "manual defensive override")
	}
	return reasons
}
