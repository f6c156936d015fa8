package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/busandev/firecro/internal/domain"
)

func dualEngineMarket(rsi, drawdown float64) domain.MarketView {
	view := marketWith(rsi, drawdown, true)
	view.Engines = []domain.InstrumentView{
		{Symbol: "TQQQ", Price: decimal.NewFromInt(80)},
		{Symbol: "SOXL", Price: decimal.NewFromInt(30)},
	}
	return view
}

func withEngineValues(pf domain.Portfolio, first, second int64) domain.Portfolio {
	pf.Positions = []domain.Position{
		{Symbol: "TQQQ", Value: decimal.NewFromInt(first)},
		{Symbol: "SOXL", Value: decimal.NewFromInt(second)},
	}
	return pf
}

func TestPlanContribution_ZeroContribution(t *testing.T) {
	a := newTestAdvisor(t)

	plan := a.PlanContribution(marketWith(50, -0.05, true), portfolioOf(80, 20, 50), standardTargets(), decimal.Zero)

	require.Equal(t, domain.ActionHold, plan.Kind)
	require.False(t, plan.HasAmount)
	require.Empty(t, plan.Split)
}

func TestPlanContribution_WartimeDeploysEverything(t *testing.T) {
	a := newTestAdvisor(t)
	contribution := decimal.NewFromInt(3_000_000)

	// even an overheated RSI cannot stop the wartime deployment
	plan := a.PlanContribution(marketWith(85, -0.35, true), portfolioOf(40_000_000, 10_000_000, 50_000_000), standardTargets(), contribution)

	require.Equal(t, domain.ActionCrisisBuy, plan.Kind)
	require.True(t, plan.Amount.Equal(contribution), "got %s", plan.Amount)
}

func TestPlanContribution_OverheatBanksCash(t *testing.T) {
	a := newTestAdvisor(t)

	plan := a.PlanContribution(marketWith(82, -0.05, true), portfolioOf(80_000_000, 20_000_000, 50_000_000), standardTargets(), decimal.NewFromInt(3_000_000))

	require.Equal(t, domain.ActionHold, plan.Kind)
	require.True(t, plan.HasAmount)
	require.True(t, plan.Amount.IsZero(), "got %s", plan.Amount)
	require.Empty(t, plan.Split)
}

func TestPlanContribution_StandardBand(t *testing.T) {
	a := newTestAdvisor(t)

	plan := a.PlanContribution(marketWith(65, -0.05, true), portfolioOf(80_000_000, 20_000_000, 50_000_000), standardTargets(), decimal.NewFromInt(3_000_000))

	require.Equal(t, domain.ActionRebalanceBuy, plan.Kind)
	// 3M * 0.8
	require.True(t, plan.Amount.Equal(decimal.NewFromInt(2_400_000)), "got %s", plan.Amount)
}

func TestPlanContribution_OpportunityCashRich(t *testing.T) {
	a := newTestAdvisor(t)

	// cash ratio 40% exceeds the 20% target
	plan := a.PlanContribution(marketWith(45, -0.05, true), portfolioOf(60_000_000, 40_000_000, 50_000_000), standardTargets(), decimal.NewFromInt(3_000_000))

	require.Equal(t, domain.ActionRebalanceBuy, plan.Kind)
	// 3M * 0.8 * 1.5 = 3.6M
	require.True(t, plan.Amount.Equal(decimal.NewFromInt(3_600_000)), "got %s", plan.Amount)
}

func TestPlanContribution_OpportunityCashPoor(t *testing.T) {
	a := newTestAdvisor(t)

	// cash ratio 10% is under the 20% target
	plan := a.PlanContribution(marketWith(45, -0.05, true), portfolioOf(90_000_000, 10_000_000, 50_000_000), standardTargets(), decimal.NewFromInt(3_000_000))

	require.Equal(t, domain.ActionRebalanceBuy, plan.Kind)
	// 3M * min(0.8+0.1, 1) = 2.7M
	require.True(t, plan.Amount.Equal(decimal.NewFromInt(2_700_000)), "got %s", plan.Amount)
}

func TestPlanContribution_SqueezeShareCapsAtOne(t *testing.T) {
	a := newTestAdvisor(t)

	targets := standardTargets()
	targets.Stock = decimal.NewFromFloat(0.95)
	targets.Cash = decimal.NewFromFloat(0.05)

	plan := a.PlanContribution(marketWith(45, -0.05, true), portfolioOf(99_000_000, 1_000_000, 50_000_000), targets, decimal.NewFromInt(1_000_000))

	require.True(t, plan.Amount.Equal(decimal.NewFromInt(1_000_000)), "share must cap at 100%%, got %s", plan.Amount)
}

func TestPlanContribution_UnknownRSIUsesStandardShare(t *testing.T) {
	a := newTestAdvisor(t)

	plan := a.PlanContribution(marketWith(0, -0.05, false), portfolioOf(80_000_000, 20_000_000, 50_000_000), standardTargets(), decimal.NewFromInt(3_000_000))

	require.Equal(t, domain.ActionRebalanceBuy, plan.Kind)
	require.True(t, plan.Amount.Equal(decimal.NewFromInt(2_400_000)), "got %s", plan.Amount)
}

func TestPlanContribution_SingleEngineGetsFullDeployment(t *testing.T) {
	a := newTestAdvisor(t)

	plan := a.PlanContribution(marketWith(65, -0.05, true), portfolioOf(80_000_000, 20_000_000, 50_000_000), standardTargets(), decimal.NewFromInt(3_000_000))

	require.Len(t, plan.Split, 1)
	require.Equal(t, "TQQQ", plan.Split[0].Symbol)
	require.True(t, plan.Split[0].Amount.Equal(plan.Amount))
}

func TestPlanContribution_DualEngineEvenSplit(t *testing.T) {
	a := newTestAdvisor(t)

	// 52/48 is inside the 5pp drift band
	pf := withEngineValues(portfolioOf(80_000_000, 20_000_000, 50_000_000), 41_600_000, 38_400_000)
	plan := a.PlanContribution(dualEngineMarket(65, -0.05), pf, standardTargets(), decimal.NewFromInt(3_000_000))

	require.Equal(t, domain.ActionRebalanceBuy, plan.Kind)
	require.Len(t, plan.Split, 2)
	require.True(t, plan.Split[0].Amount.Equal(decimal.NewFromInt(1_200_000)), "got %s", plan.Split[0].Amount)
	require.True(t, plan.Split[1].Amount.Equal(decimal.NewFromInt(1_200_000)), "got %s", plan.Split[1].Amount)
}

func TestPlanContribution_DualEngineDriftRoutesToUnderweight(t *testing.T) {
	a := newTestAdvisor(t)

	// 62/38 weights: everything goes to the underweight engine
	pf := withEngineValues(portfolioOf(80_000_000, 20_000_000, 50_000_000), 49_600_000, 30_400_000)
	plan := a.PlanContribution(dualEngineMarket(65, -0.05), pf, standardTargets(), decimal.NewFromInt(3_000_000))

	require.Equal(t, domain.ActionDualRebalance, plan.Kind)
	require.Len(t, plan.Split, 1)
	require.Equal(t, "SOXL", plan.Split[0].Symbol)
	require.True(t, plan.Split[0].Amount.Equal(decimal.NewFromInt(2_400_000)), "got %s", plan.Split[0].Amount)
}

func TestPlanContribution_DualEngineNoHoldingsSplitsEvenly(t *testing.T) {
	a := newTestAdvisor(t)

	pf := portfolioOf(0, 20_000_000, 0)
	pf.Positions = nil
	plan := a.PlanContribution(dualEngineMarket(65, -0.05), pf, standardTargets(), decimal.NewFromInt(2_000_000))

	require.Len(t, plan.Split, 2)
	require.True(t, plan.Split[0].Amount.Equal(plan.Split[1].Amount))
}
