package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstrumentView latest price and indicator bundle for one instrument.
type InstrumentView struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Bundle IndicatorBundle `json:"bundle"`
}

// MarketView market data for a single evaluation cycle. Built whole or
// not at all: a failed fetch of any required series aborts the build.
type MarketView struct {
	// Benchmark broad-index weekly view driving RSI and MDD signals.
	Benchmark InstrumentView `json:"benchmark"`
	// Engines leveraged instruments actually held (one, or a dual pair).
	Engines []InstrumentView `json:"engines"`
	Macro   MacroSnapshot    `json:"macro"`
	FxRate  decimal.Decimal  `json:"fx_rate"`
	// FetchedAt marks the cache epoch; data from different epochs is
	// never mixed within one evaluation.
	FetchedAt time.Time `json:"fetched_at"`
}

// Engine returns the engine view for a symbol.
func (v MarketView) Engine(symbol string) (InstrumentView, bool) {
	for _, e := range v.Engines {
		if e.Symbol == symbol {
			return e, true
		}
	}
	return InstrumentView{}, false
}

// CycleInput immutable input for one evaluation cycle.
type CycleInput struct {
	Market              MarketView      `json:"market"`
	Accounts            []SubAccount    `json:"accounts"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
}

// CycleOutput pure output of one evaluation cycle: the two independent
// recommendations plus all derived values for display.
type CycleOutput struct {
	EvaluatedAt  time.Time        `json:"evaluated_at"`
	Market       MarketView       `json:"market"`
	Portfolio    Portfolio        `json:"portfolio"`
	PhaseIndex   int              `json:"phase_index"`
	PhaseName    string           `json:"phase_name"`
	Targets      Targets          `json:"targets"`
	RSIZone      RSIZone          `json:"rsi_zone"`
	Assessment   Recommendation   `json:"assessment"`
	Contribution ContributionPlan `json:"contribution"`
}

// CycleRecord persisted cycle outcome with its WAL index.
type CycleRecord struct {
	Index  uint64      `json:"index"`
	Output CycleOutput `json:"output"`
}
