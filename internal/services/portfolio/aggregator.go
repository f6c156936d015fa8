// Package portfolio consolidates user-entered sub-accounts into the
// totals the decision engine works with.
package portfolio

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/busandev/firecro/internal/domain"
)

// ErrInvalidInput marks portfolio input that must be rejected before it
// reaches the decision engine.
var ErrInvalidInput = errors.New("invalid portfolio input")

// ProfitBuffer minimum unrealized return (percent) for a portfolio to
// count as profitable. A literal 0% threshold would let fee-eaten
// breakeven positions register as profitable and become sellable.
var ProfitBuffer = decimal.NewFromFloat(1.5)

var hundred = decimal.NewFromInt(100)

// Consolidate combines sub-accounts with current prices and the FX rate
// into a single derived portfolio. Prices are in foreign currency per
// share; average costs and cash-local are already in local currency.
// Pure: safe to recompute every cycle.
func Consolidate(accounts []domain.SubAccount, prices map[string]decimal.Decimal, fxRate decimal.Decimal) (domain.Portfolio, error) {
	if !fxRate.IsPositive() {
		return domain.Portfolio{}, errors.Wrapf(ErrInvalidInput, "fx rate must be positive, got %s", fxRate.String())
	}

	if err := validateAccounts(accounts); err != nil {
		return domain.Portfolio{}, err
	}

	bySymbol := make(map[string]*domain.Position)
	cash := decimal.Zero

	for _, acc := range accounts {
		cash = cash.Add(acc.CashLocal).Add(acc.CashForeign.Mul(fxRate))

		for _, h := range acc.Holdings {
			if h.Quantity.IsZero() {
				continue
			}
			price, ok := prices[h.Symbol]
			if !ok {
				return domain.Portfolio{}, errors.Wrapf(ErrInvalidInput,
					"account %q holds %s but no market price is available", acc.Name, h.Symbol)
			}

			pos, exists := bySymbol[h.Symbol]
			if !exists {
				pos = &domain.Position{Symbol: h.Symbol}
				bySymbol[h.Symbol] = pos
			}
			pos.Quantity = pos.Quantity.Add(h.Quantity)
			pos.Invested = pos.Invested.Add(h.Quantity.Mul(h.AvgCost))
			pos.Value = pos.Value.Add(h.Quantity.Mul(price).Mul(fxRate))
		}
	}

	positions := make([]domain.Position, 0, len(bySymbol))
	equity := decimal.Zero
	invested := decimal.Zero
	for _, pos := range bySymbol {
		if pos.Quantity.IsPositive() {
			pos.BlendedAvgCost = pos.Invested.Div(pos.Quantity)
		}
		equity = equity.Add(pos.Value)
		invested = invested.Add(pos.Invested)
		positions = append(positions, *pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })

	total := equity.Add(cash)

	returnPct := decimal.Zero
	if invested.IsPositive() {
		returnPct = equity.Sub(invested).Div(invested).Mul(hundred)
	}

	stockRatio := decimal.Zero
	cashRatio := decimal.Zero
	if total.IsPositive() {
		stockRatio = equity.Div(total)
		cashRatio = cash.Div(total)
	}

	return domain.Portfolio{
		Positions:           positions,
		EquityValue:         equity,
		Invested:            invested,
		Cash:                cash,
		TotalAssets:         total,
		UnrealizedReturnPct: returnPct,
		StockRatio:          stockRatio,
		CashRatio:           cashRatio,
	}, nil
}

func validateAccounts(accounts []domain.SubAccount) error {
	for _, acc := range accounts {
		if acc.CashLocal.IsNegative() || acc.CashForeign.IsNegative() {
			return errors.Wrapf(ErrInvalidInput, "account %q has negative cash", acc.Name)
		}
		for _, h := range acc.Holdings {
			if h.Quantity.IsNegative() {
				return errors.Wrapf(ErrInvalidInput, "account %q: negative quantity for %s", acc.Name, h.Symbol)
			}
			if h.AvgCost.IsNegative() {
				return errors.Wrapf(ErrInvalidInput, "account %q: negative average cost for %s", acc.Name, h.Symbol)
			}
			if h.Quantity.IsPositive() && h.AvgCost.IsZero() {
				return errors.Wrapf(ErrInvalidInput,
					"account %q: %s has positive quantity but zero average cost", acc.Name, h.Symbol)
			}
		}
	}
	return nil
}
