package internal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/busandev/firecro/internal/domain"
	"github.com/busandev/firecro/internal/services/market"
	"github.com/busandev/firecro/internal/services/phase"
	"github.com/busandev/firecro/internal/services/strategy"
	"github.com/busandev/firecro/internal/storage/cycles"
	"github.com/busandev/firecro/internal/storage/inputs"
)

type stubProvider struct {
	series map[string]domain.Series
	rates  map[string]decimal.Decimal
	err    error
}

func (s *stubProvider) Candles(_ context.Context, symbol string, _ domain.Interval, _ string) (domain.Series, error) {
	if s.err != nil {
		return domain.Series{}, s.err
	}
	out, ok := s.series[symbol]
	if !ok {
		return domain.Series{}, errors.Errorf("no fixture for %s", symbol)
	}
	return out, nil
}

func (s *stubProvider) Rate(context.Context, string) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.rates["KRW=X"], nil
}

func weeklySeries(symbol string, closes ...float64) domain.Series {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	candles := make([]domain.Candle, len(closes))
	for i, c := range closes {
		open := start.Add(time.Duration(i) * 7 * 24 * time.Hour)
		candles[i] = domain.Candle{OpenTime: open, Close: decimal.NewFromFloat(c), CloseTime: open.Add(7 * 24 * time.Hour)}
	}
	return domain.Series{Symbol: symbol, Interval: domain.IntervalWeekly, Candles: candles}
}

func wavy(from float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)
		if i%3 == 2 {
			out[i] -= 0.5
		}
	}
	return out
}

func newTestAdvisor(t *testing.T, provider *stubProvider) *Advisor {
	t.Helper()
	logger := zap.NewNop()

	builder := market.NewSnapshotBuilder(provider, market.Config{
		Symbols: market.Symbols{
			Benchmark:  "QQQ",
			Engines:    []string{"TQQQ"},
			Volatility: "^VIX",
			LongRate:   "^TNX",
			ShortRate:  "^IRX",
			FX:         "KRW=X",
		},
		RSIPeriod:      14,
		MAShortWindow:  10,
		MALongWindow:   20,
		VolWindow:      5,
		VolThreshold:   decimal.NewFromInt(30),
		SpreadLookback: 126,
		TrendMAWindow:  5,
	}, logger)

	inputsStore, err := inputs.NewStore(filepath.Join(t.TempDir(), "inputs.json"))
	require.NoError(t, err)
	require.NoError(t, inputsStore.Save(domain.Inputs{
		Accounts: []domain.SubAccount{
			{
				Name: domain.AccountVault,
				Holdings: []domain.Holding{
					{Symbol: "TQQQ", Quantity: decimal.NewFromInt(100), AvgCost: decimal.NewFromInt(90_000)},
				},
				CashLocal: decimal.NewFromInt(20_000_000),
			},
		},
		MonthlyContribution: decimal.NewFromInt(2_000_000),
	}))

	resolver, err := phase.NewResolver(phase.DefaultTable(), decimal.NewFromInt(80), decimal.NewFromInt(75))
	require.NoError(t, err)

	engine, err := strategy.NewAdvisor(strategy.Config{
		Ladder: []domain.LadderTier{
			{MDD: decimal.NewFromFloat(-0.50), CashFraction: decimal.NewFromInt(1)},
			{MDD: decimal.NewFromFloat(-0.30), CashFraction: decimal.NewFromFloat(0.30)},
			{MDD: decimal.NewFromFloat(-0.20), CashFraction: decimal.NewFromFloat(0.20)},
		},
		LossBufferPct: decimal.NewFromFloat(1.5),
		WartimeMDD:    decimal.NewFromFloat(-0.30),
	}, logger)
	require.NoError(t, err)

	cycleStore, err := cycles.NewWALStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { cycleStore.Close() })

	return NewAdvisor(builder, inputsStore, resolver, engine, cycleStore, nil, time.Hour, logger)
}

func healthyStub() *stubProvider {
	return &stubProvider{
		series: map[string]domain.Series{
			"QQQ":  weeklySeries("QQQ", wavy(400, 30)...),
			"TQQQ": weeklySeries("TQQQ", wavy(100, 30)...),
			"^VIX": weeklySeries("^VIX", 15, 14, 16, 15, 14, 15),
			"^TNX": weeklySeries("^TNX", 4.2, 4.3, 4.25, 4.3, 4.35),
			"^IRX": weeklySeries("^IRX", 4.0, 4.0, 4.05, 4.0, 4.1),
		},
		rates: map[string]decimal.Decimal{"KRW=X": decimal.NewFromInt(1300)},
	}
}

func TestEvaluateCycle(t *testing.T) {
	advisor := newTestAdvisor(t, healthyStub())

	out, err := advisor.EvaluateCycle(context.Background())
	require.NoError(t, err)

	require.False(t, out.EvaluatedAt.IsZero())
	require.Equal(t, "Phase 1 (acceleration)", out.PhaseName)
	require.Equal(t, "standard", out.Targets.Mode)

	// 100 shares * last TQQQ close * 1300 KRW + 20M cash leaves the
	// stock ratio well under the 80% target
	require.True(t, out.Portfolio.TotalAssets.IsPositive())
	require.Equal(t, domain.ActionRebalanceBuy, out.Assessment.Kind)
	require.NotEmpty(t, out.Assessment.Rationale)
	require.NotEmpty(t, out.Contribution.Rationale)
}

func TestEvaluateCycle_FetchFailureAborts(t *testing.T) {
	advisor := newTestAdvisor(t, &stubProvider{err: errors.New("offline")})

	_, err := advisor.EvaluateCycle(context.Background())
	require.ErrorIs(t, err, market.ErrDataFetch)

	_, ok := advisor.Latest()
	require.False(t, ok, "failed cycle must not publish a snapshot")
}

func TestLatestAfterRecordedCycle(t *testing.T) {
	advisor := newTestAdvisor(t, healthyStub())

	_, ok := advisor.Latest()
	require.False(t, ok)

	require.NoError(t, advisor.evaluateAndRecord(context.Background()))

	latest, ok := advisor.Latest()
	require.True(t, ok)
	require.False(t, latest.EvaluatedAt.IsZero())

	records, err := advisor.cycleStore.RecordsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
}
