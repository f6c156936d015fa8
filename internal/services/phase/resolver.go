// Package phase maps net worth to a tier of target allocation ratios
// and applies the defensive-mode adjustment.
package phase

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/busandev/firecro/internal/domain"
)

// defensiveShift percentage points moved from stock to cash targets
// while defensive mode is active.
var defensiveShift = decimal.NewFromFloat(0.10)

const (
	ModeStandard  = "standard"
	ModeDefensive = "defensive"
)

// Resolver resolves phase tiers and allocation targets.
type Resolver struct {
	table        domain.PhaseTable
	rsiSell      decimal.Decimal
	rsiSellTight decimal.Decimal
}

// NewResolver validates the phase table and the two RSI sell thresholds
// (standard and defensive).
func NewResolver(table domain.PhaseTable, rsiSell, rsiSellTight decimal.Decimal) (*Resolver, error) {
	if err := table.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid phase table")
	}
	if !rsiSell.GreaterThan(rsiSellTight) {
		return nil, errors.Errorf("standard RSI threshold %s must exceed defensive %s",
			rsiSell.String(), rsiSellTight.String())
	}
	return &Resolver{table: table, rsiSell: rsiSell, rsiSellTight: rsiSellTight}, nil
}

// Determine maps total assets to a phase tier.
func (r *Resolver) Determine(totalAssets decimal.Decimal) (int, domain.PhaseTier) {
	return r.table.Determine(totalAssets)
}

// Targets resolves the allocation targets for a tier. Defensive mode
// shifts 10pp from stock to cash and tightens the RSI sell threshold.
func (r *Resolver) Targets(tier domain.PhaseTier, defensive bool) domain.Targets {
	if !defensive {
		return domain.Targets{
			Stock:            tier.TargetStock,
			Cash:             tier.TargetCash,
			RSISellThreshold: r.rsiSell,
			Mode:             ModeStandard,
		}
	}

	stock := tier.TargetStock.Sub(defensiveShift)
	if stock.IsNegative() {
		stock = decimal.Zero
	}

	return domain.Targets{
		Stock:            stock,
		Cash:             decimal.NewFromInt(1).Sub(stock),
		RSISellThreshold: r.rsiSellTight,
		Mode:             ModeDefensive,
	}
}

// DefaultTable is the five-tier net-worth ladder in KRW.
func DefaultTable() domain.PhaseTable {
	tier := func(name string, limit int64, stock float64) domain.PhaseTier {
		s := decimal.NewFromFloat(stock)
		return domain.PhaseTier{
			Name:        name,
			Limit:       decimal.NewFromInt(limit),
			TargetStock: s,
			TargetCash:  decimal.NewFromInt(1).Sub(s),
		}
	}
	return domain.PhaseTable{
		tier("Phase 1 (acceleration)", 500_000_000, 0.8),
		tier("Phase 2 (ascent)", 1_000_000_000, 0.7),
		tier("Phase 3 (cruise)", 2_000_000_000, 0.6),
		tier("Phase 4 (safety)", 2_500_000_000, 0.5),
		tier("Phase 5 (graduation)", 0, 0.4),
	}
}
