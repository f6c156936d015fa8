package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Default sub-account names from the three-bucket scheme.
const (
	AccountVault  = "Vault"
	AccountSniper = "Sniper"
	AccountBunker = "Bunker"
)

// Holding equity position inside one sub-account.
// AvgCost is per share in local currency.
type Holding struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	AvgCost  decimal.Decimal `json:"avg_cost"`
}

// SubAccount named bucket of holdings and cash. Mutated only by user
// input; the decision engine never writes back.
type SubAccount struct {
	Name        string          `json:"name"`
	Holdings    []Holding       `json:"holdings"`
	CashLocal   decimal.Decimal `json:"cash_local"`
	CashForeign decimal.Decimal `json:"cash_foreign"`
}

// Inputs user-entered portfolio state, owned by the inputs store.
type Inputs struct {
	Accounts            []SubAccount    `json:"accounts"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
	ForceDefensive      bool            `json:"force_defensive"`
}

// Position consolidated per-symbol view across all sub-accounts.
type Position struct {
	Symbol         string          `json:"symbol"`
	Quantity       decimal.Decimal `json:"quantity"`
	Invested       decimal.Decimal `json:"invested"`
	Value          decimal.Decimal `json:"value"`
	BlendedAvgCost decimal.Decimal `json:"blended_avg_cost"`
}

// Portfolio consolidated totals, derived fresh every cycle.
type Portfolio struct {
	Positions           []Position      `json:"positions"`
	EquityValue         decimal.Decimal `json:"equity_value"`
	Invested            decimal.Decimal `json:"invested"`
	Cash                decimal.Decimal `json:"cash"`
	TotalAssets         decimal.Decimal `json:"total_assets"`
	UnrealizedReturnPct decimal.Decimal `json:"unrealized_return_pct"`
	StockRatio          decimal.Decimal `json:"stock_ratio"`
	CashRatio           decimal.Decimal `json:"cash_ratio"`
}

// Position returns the consolidated position for a symbol.
func (p Portfolio) Position(symbol string) (Position, bool) {
	for _, pos := range p.Positions {
		if pos.Symbol == symbol {
			return pos, true
		}
	}
	return Position{}, false
}

// InLoss reports whether the portfolio counts as losing money.
// The buffer (percent) absorbs fee and slippage drag: a position barely
// above breakeven is still treated as a loss so it is never sold.
func (p Portfolio) InLoss(bufferPct decimal.Decimal) bool {
	if p.Invested.IsZero() {
		return false
	}
	return p.UnrealizedReturnPct.LessThan(bufferPct)
}

// SellOrderByCost returns sub-account names holding the symbol, highest
// average cost first. Selling the expensive lots first minimizes the
// realized taxable gain. Advisory only.
func SellOrderByCost(accounts []SubAccount, symbol string) []string {
	type lot struct {
		name string
		cost decimal.Decimal
	}
	var lots []lot
	for _, acc := range accounts {
		for _, h := range acc.Holdings {
			if h.Symbol == symbol && h.Quantity.IsPositive() {
				lots = append(lots, lot{name: acc.Name, cost: h.AvgCost})
			}
		}
	}
	sort.SliceStable(lots, func(i, j int) bool {
		return lots[i].cost.GreaterThan(lots[j].cost)
	})
	names := make([]string, len(lots))
	for i, l := range lots {
		names[i] = l.name
	}
	return names
}
