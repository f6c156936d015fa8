// Package strategy implements the rule cascade that turns a market
// view and a consolidated portfolio into recommended actions. Two
// independent pipelines run per cycle: asset assessment and monthly
// contribution deployment. Both are pure functions of their inputs.
package strategy

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/busandev/firecro/internal/domain"
)

var (
	one  = decimal.NewFromInt(1)
	half = decimal.NewFromFloat(0.5)
)

// Config decision-engine tuning. Every threshold is data, not code, so
// alternative ladders from older rule revisions stay expressible.
type Config struct {
	// Ladder crisis-response tiers, evaluated deepest first.
	Ladder []domain.LadderTier
	// LossBufferPct unrealized return below this counts as a loss.
	LossBufferPct decimal.Decimal
	// WartimeMDD at or below this drawdown the full contribution is
	// deployed regardless of RSI.
	WartimeMDD decimal.Decimal
	// Band allocation tolerance in ratio points (0.10 = 10pp). Also the
	// extra cash cushion sought on overheat and the squeeze increment.
	Band decimal.Decimal
	// OpportunityRSI lower edge of the standard contribution band.
	OpportunityRSI decimal.Decimal
	// AcceleratedMultiple contribution multiplier in the cash-rich
	// opportunity case.
	AcceleratedMultiple decimal.Decimal
	// DriftBand tolerated deviation from the 50/50 dual-engine split.
	DriftBand decimal.Decimal
}

// Advisor evaluates the decision cascade.
type Advisor struct {
	cfg    Config
	logger *zap.Logger
}

// NewAdvisor validates the configuration and returns an advisor.
func NewAdvisor(cfg Config, logger *zap.Logger) (*Advisor, error) {
	if len(cfg.Ladder) == 0 {
		return nil, errors.New("crisis ladder must have at least one tier")
	}

	ladder := make([]domain.LadderTier, len(cfg.Ladder))
	copy(ladder, cfg.Ladder)
	sort.Slice(ladder, func(i, j int) bool { return ladder[i].MDD.LessThan(ladder[j].MDD) })

	for i, tier := range ladder {
		if !tier.MDD.IsNegative() {
			return nil, errors.Errorf("ladder tier %d: mdd %s must be negative", i, tier.MDD.String())
		}
		if !tier.CashFraction.IsPositive() || tier.CashFraction.GreaterThan(one) {
			return nil, errors.Errorf("ladder tier %d: cash fraction %s must be in (0, 1]", i, tier.CashFraction.String())
		}
		if i > 0 && tier.CashFraction.GreaterThan(ladder[i-1].CashFraction) {
			return nil, errors.Errorf("ladder tier %d: deeper drawdowns must deploy at least as much cash", i)
		}
	}
	cfg.Ladder = ladder

	if cfg.Band.IsZero() {
		cfg.Band = decimal.NewFromFloat(0.10)
	}
	if cfg.DriftBand.IsZero() {
		cfg.DriftBand = decimal.NewFromFloat(0.05)
	}
	if cfg.AcceleratedMultiple.IsZero() {
		cfg.AcceleratedMultiple = decimal.NewFromFloat(1.5)
	}
	if cfg.OpportunityRSI.IsZero() {
		cfg.OpportunityRSI = domain.RSIOpportunity
	}

	return &Advisor{cfg: cfg, logger: logger}, nil
}

// AssessHoldings runs the asset-management cascade (overheat, crisis,
// overweight, underweight, stable; first match wins) followed by the
// unconditional loss-protection override.
func (a *Advisor) AssessHoldings(market domain.MarketView, pf domain.Portfolio, targets domain.Targets, accounts []domain.SubAccount) domain.Recommendation {
	rec := a.assessCascade(market, pf, targets, accounts)

	if pf.InLoss(a.cfg.LossBufferPct) && rec.Kind.IsSell() {
		suppressed := rec.Kind
		rec = domain.Recommendation{
			Kind: domain.ActionLossProtection,
			Rationale: fmt.Sprintf(
				"unrealized return %s%% is below the %s%% profit buffer; suppressed %s, never sell at a loss",
				pf.UnrealizedReturnPct.StringFixed(1), a.cfg.LossBufferPct.String(), suppressed),
			Severity: domain.SeverityDanger,
		}
		a.logger.Info("loss protection engaged",
			zap.String("suppressed", suppressed.String()),
			zap.String("return_pct", pf.UnrealizedReturnPct.StringFixed(2)))
	}

	return rec
}

func (a *Advisor) assessCascade(market domain.MarketView, pf domain.Portfolio, targets domain.Targets, accounts []domain.SubAccount) domain.Recommendation {
	bundle := market.Benchmark.Bundle

	// 1. overheat: benchmark weekly RSI at or above the sell threshold.
	if bundle.RSIKnown && bundle.RSI.GreaterThanOrEqual(targets.RSISellThreshold) {
		return a.overheatAction(market, pf, targets, accounts, bundle.RSI)
	}

	// 2. crisis ladder, deepest tier first.
	for _, tier := range a.cfg.Ladder {
		if bundle.Drawdown.LessThanOrEqual(tier.MDD) {
			amount := pf.Cash.Mul(tier.CashFraction)
			return domain.Recommendation{
				Kind: domain.ActionCrisisBuy,
				Rationale: fmt.Sprintf("benchmark drawdown %s%% reached the %s%% tier; deploy %s%% of cash (%s)",
					pctString(bundle.Drawdown), pctString(tier.MDD),
					tier.CashFraction.Mul(decimal.NewFromInt(100)).StringFixed(0),
					domain.FormatKRW(amount)),
				Amount:    amount,
				HasAmount: true,
				Severity:  domain.SeveritySuccess,
			}
		}
	}

	// 3. overweight.
	if pf.StockRatio.GreaterThan(targets.Stock.Add(a.cfg.Band)) {
		excess := pf.EquityValue.Sub(pf.TotalAssets.Mul(targets.Stock))
		return domain.Recommendation{
			Kind: domain.ActionRebalanceSell,
			Rationale: fmt.Sprintf("stock ratio %s%% exceeds the %s%% target band; sell %s to return to target",
				pctString(pf.StockRatio), pctString(targets.Stock), domain.FormatKRW(excess)),
			Amount:    excess,
			HasAmount: true,
			Severity:  domain.SeverityWarning,
			SellOrder: a.sellOrder(market, accounts),
		}
	}

	// 4. underweight.
	if pf.StockRatio.LessThan(targets.Stock.Sub(a.cfg.Band)) {
		deficit := pf.TotalAssets.Mul(targets.Stock).Sub(pf.EquityValue)
		return domain.Recommendation{
			Kind: domain.ActionRebalanceBuy,
			Rationale: fmt.Sprintf("stock ratio %s%% is under the %s%% target band; buy %s to return to target",
				pctString(pf.StockRatio), pctString(targets.Stock), domain.FormatKRW(deficit)),
			Amount:    deficit,
			HasAmount: true,
			Severity:  domain.SeveritySuccess,
		}
	}

	// 5. default.
	return domain.Recommendation{
		Kind:      domain.ActionStable,
		Rationale: "all signals within bands; hold course",
		Severity:  domain.SeverityInfo,
	}
}

func (a *Advisor) overheatAction(market domain.MarketView, pf domain.Portfolio, targets domain.Targets, accounts []domain.SubAccount, rsi decimal.Decimal) domain.Recommendation {
	panicCashRatio := targets.Cash.Add(a.cfg.Band)
	shortfall := pf.TotalAssets.Mul(panicCashRatio).Sub(pf.Cash)

	if shortfall.IsPositive() {
		return domain.Recommendation{
			Kind: domain.ActionPanicSell,
			Rationale: fmt.Sprintf("weekly RSI %s breached the %s sell threshold; sell %s to lift cash to %s%%",
				rsi.StringFixed(1), targets.RSISellThreshold.String(),
				domain.FormatKRW(shortfall), pctString(panicCashRatio)),
			Amount:    shortfall,
			HasAmount: true,
			Severity:  domain.SeverityDanger,
			SellOrder: a.sellOrder(market, accounts),
		}
	}

	return domain.Recommendation{
		Kind: domain.ActionHold,
		Rationale: fmt.Sprintf("weekly RSI %s breached the %s sell threshold but current cash already covers %s%%; hold",
			rsi.StringFixed(1), targets.RSISellThreshold.String(), pctString(panicCashRatio)),
		Severity: domain.SeverityInfo,
	}
}

// sellOrder names sub-accounts to liquidate first, highest average cost
// first, for the largest engine position.
func (a *Advisor) sellOrder(market domain.MarketView, accounts []domain.SubAccount) []string {
	if len(market.Engines) == 0 {
		return nil
	}
	symbol := market.Engines[0].Symbol
	return domain.SellOrderByCost(accounts, symbol)
}

func pctString(ratio decimal.Decimal) string {
	return ratio.Mul(decimal.NewFromInt(100)).StringFixed(1)
}
