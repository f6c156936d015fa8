package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/busandev/firecro/internal/domain"
)

// PlanContribution decides how much of the monthly contribution to
// deploy into the engine instruments this cycle and how to split it.
// Bands, top to bottom: wartime drawdown, overheat, standard, then the
// low-RSI opportunity cases.
func (a *Advisor) PlanContribution(market domain.MarketView, pf domain.Portfolio, targets domain.Targets, contribution decimal.Decimal) domain.ContributionPlan {
	if !contribution.IsPositive() {
		return domain.ContributionPlan{Recommendation: domain.Recommendation{
			Kind:      domain.ActionHold,
			Rationale: "no monthly contribution configured",
			Severity:  domain.SeverityInfo,
		}}
	}

	bundle := market.Benchmark.Bundle
	rec := a.contributionBand(bundle, pf, targets, contribution)

	if rec.HasAmount && rec.Amount.IsPositive() {
		legs, drifted := a.splitAcrossEngines(market, pf, rec.Amount)
		if drifted {
			rec.Kind = domain.ActionDualRebalance
			rec.Rationale = fmt.Sprintf("%s; engine weights drifted past the 50/50 band, route everything to %s",
				rec.Rationale, legs[0].Symbol)
		}
		a.logger.Info("contribution planned",
			zap.String("kind", rec.Kind.String()),
			zap.String("deploy", rec.Amount.StringFixed(0)))
		return domain.ContributionPlan{Recommendation: rec, Split: legs}
	}

	return domain.ContributionPlan{Recommendation: rec}
}

func (a *Advisor) contributionBand(bundle domain.IndicatorBundle, pf domain.Portfolio, targets domain.Targets, contribution decimal.Decimal) domain.Recommendation {
	// wartime: deep drawdown overrides every RSI consideration.
	if bundle.Drawdown.LessThanOrEqual(a.cfg.WartimeMDD) {
		return domain.Recommendation{
			Kind: domain.ActionCrisisBuy,
			Rationale: fmt.Sprintf("benchmark drawdown %s%% is at or below the wartime line %s%%; deploy the full contribution",
				pctString(bundle.Drawdown), pctString(a.cfg.WartimeMDD)),
			Amount:    contribution,
			HasAmount: true,
			Severity:  domain.SeverityWarning,
		}
	}

	if !bundle.RSIKnown {
		return domain.Recommendation{
			Kind:      domain.ActionRebalanceBuy,
			Rationale: "benchmark RSI unavailable; deploy the standard stock share of the contribution",
			Amount:    contribution.Mul(targets.Stock),
			HasAmount: true,
			Severity:  domain.SeverityInfo,
		}
	}

	switch {
	case bundle.RSI.GreaterThanOrEqual(targets.RSISellThreshold):
		return domain.Recommendation{
			Kind: domain.ActionHold,
			Rationale: fmt.Sprintf("weekly RSI %s is at or above %s; bank the full contribution as cash",
				bundle.RSI.StringFixed(1), targets.RSISellThreshold.String()),
			Amount:    decimal.Zero,
			HasAmount: true,
			Severity:  domain.SeverityWarning,
		}

	case bundle.RSI.GreaterThanOrEqual(a.cfg.OpportunityRSI):
		return domain.Recommendation{
			Kind: domain.ActionRebalanceBuy,
			Rationale: fmt.Sprintf("weekly RSI %s is in the standard band; deploy the %s%% stock share",
				bundle.RSI.StringFixed(1), pctString(targets.Stock)),
			Amount:    contribution.Mul(targets.Stock),
			HasAmount: true,
			Severity:  domain.SeverityInfo,
		}

	case pf.CashRatio.GreaterThan(targets.Cash):
		// opportunity, cash-rich: size up the standard deployment.
		return domain.Recommendation{
			Kind: domain.ActionRebalanceBuy,
			Rationale: fmt.Sprintf("weekly RSI %s signals opportunity and cash ratio %s%% exceeds target; deploy %sx the standard share",
				bundle.RSI.StringFixed(1), pctString(pf.CashRatio), a.cfg.AcceleratedMultiple.String()),
			Amount:    contribution.Mul(targets.Stock).Mul(a.cfg.AcceleratedMultiple),
			HasAmount: true,
			Severity:  domain.SeveritySuccess,
		}

	default:
		// opportunity, cash-poor: squeeze a little extra out of the
		// contribution without touching reserves.
		share := targets.Stock.Add(a.cfg.Band)
		if share.GreaterThan(one) {
			share = one
		}
		return domain.Recommendation{
			Kind: domain.ActionRebalanceBuy,
			Rationale: fmt.Sprintf("weekly RSI %s signals opportunity but cash is below target; deploy %s%% of the contribution",
				bundle.RSI.StringFixed(1), pctString(share)),
			Amount:    contribution.Mul(share),
			HasAmount: true,
			Severity:  domain.SeveritySuccess,
		}
	}
}

// splitAcrossEngines divides the deployment across the tracked engine
// instruments. With two engines the split is 50/50 until the held
// weights drift more than the drift band from even, at which point the
// whole amount routes to the underweight engine. The bool reports that
// routing happened.
func (a *Advisor) splitAcrossEngines(market domain.MarketView, pf domain.Portfolio, deploy decimal.Decimal) ([]domain.ContributionLeg, bool) {
	engines := market.Engines
	switch len(engines) {
	case 0:
		return nil, false
	case 1:
		return []domain.ContributionLeg{{Symbol: engines[0].Symbol, Amount: deploy}}, false
	}

	first := positionValue(pf, engines[0].Symbol)
	second := positionValue(pf, engines[1].Symbol)
	total := first.Add(second)

	if total.IsPositive() {
		weight := first.Div(total)
		if weight.Sub(half).Abs().GreaterThan(a.cfg.DriftBand) {
			under := engines[0].Symbol
			if weight.GreaterThan(half) {
				under = engines[1].Symbol
			}
			return []domain.ContributionLeg{{Symbol: under, Amount: deploy}}, true
		}
	}

	evenShare := deploy.Mul(half)
	return []domain.ContributionLeg{
		{Symbol: engines[0].Symbol, Amount: evenShare},
		{Symbol: engines[1].Symbol, Amount: deploy.Sub(evenShare)},
	}, false
}

func positionValue(pf domain.Portfolio, symbol string) decimal.Decimal {
	if pos, ok := pf.Position(symbol); ok {
		return pos.Value
	}
	return decimal.Zero
}
