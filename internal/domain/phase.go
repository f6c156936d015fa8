package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// PhaseTier one net-worth step with its target allocation.
type PhaseTier struct {
	Name string `json:"name"`
	// Limit upper asset bound in local currency. Ignored on the last
	// tier, which is the unbounded catch-all.
	Limit       decimal.Decimal `json:"limit"`
	TargetStock decimal.Decimal `json:"target_stock"`
	TargetCash  decimal.Decimal `json:"target_cash"`
}

// PhaseTable ordered tiers, ascending by limit.
type PhaseTable []PhaseTier

// Validate checks tier ordering and ratio consistency.
func (t PhaseTable) Validate() error {
	if len(t) == 0 {
		return errors.New("phase table is empty")
	}
	one := decimal.NewFromInt(1)
	for i, tier := range t {
		if !tier.TargetStock.Add(tier.TargetCash).Equal(one) {
			return errors.Errorf("phase %q: stock %s + cash %s must sum to 1",
				tier.Name, tier.TargetStock.String(), tier.TargetCash.String())
		}
		if tier.TargetStock.IsNegative() || tier.TargetCash.IsNegative() {
			return errors.Errorf("phase %q: negative target ratio", tier.Name)
		}
		if i == len(t)-1 {
			continue // last tier is unbounded
		}
		if !tier.Limit.IsPositive() {
			return errors.Errorf("phase %q: limit must be positive", tier.Name)
		}
		if i > 0 && !tier.Limit.GreaterThan(t[i-1].Limit) {
			return errors.Errorf("phase %q: limit %s not greater than previous tier",
				tier.Name, tier.Limit.String())
		}
	}
	return nil
}

// Determine maps total assets to a tier via first-matching-bound lookup.
// Monotonic: larger assets never map to an earlier tier.
func (t PhaseTable) Determine(totalAssets decimal.Decimal) (int, PhaseTier) {
	for i, tier := range t {
		if i == len(t)-1 {
			break
		}
		if totalAssets.LessThanOrEqual(tier.Limit) {
			return i, tier
		}
	}
	return len(t) - 1, t[len(t)-1]
}

// Targets resolved allocation targets for one cycle.
type Targets struct {
	Stock            decimal.Decimal `json:"stock"`
	Cash             decimal.Decimal `json:"cash"`
	RSISellThreshold decimal.Decimal `json:"rsi_sell_threshold"`
	Mode             string          `json:"mode"`
}
