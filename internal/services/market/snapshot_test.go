package market

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/busandev/firecro/internal/domain"
)

type fakeProvider struct {
	series map[string]domain.Series
	rates  map[string]decimal.Decimal
	errs   map[string]error
}

func (f *fakeProvider) Candles(_ context.Context, symbol string, _ domain.Interval, _ string) (domain.Series, error) {
	if err, ok := f.errs[symbol]; ok {
		return domain.Series{}, err
	}
	s, ok := f.series[symbol]
	if !ok {
		return domain.Series{}, errors.Errorf("no fixture for %s", symbol)
	}
	return s, nil
}

func (f *fakeProvider) Rate(_ context.Context, symbol string) (decimal.Decimal, error) {
	if err, ok := f.errs[symbol]; ok {
		return decimal.Zero, err
	}
	r, ok := f.rates[symbol]
	if !ok {
		return decimal.Zero, errors.Errorf("no fixture for %s", symbol)
	}
	return r, nil
}

func seriesOf(symbol string, interval domain.Interval, closes ...float64) domain.Series {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	candles := make([]domain.Candle, len(closes))
	for i, c := range closes {
		open := start.Add(time.Duration(i) * 7 * 24 * time.Hour)
		candles[i] = domain.Candle{
			OpenTime:  open,
			Close:     decimal.NewFromFloat(c),
			CloseTime: open.Add(7 * 24 * time.Hour),
		}
	}
	return domain.Series{Symbol: symbol, Interval: interval, Candles: candles}
}

func climb(from float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)
		if i%3 == 2 {
			out[i] -= 0.5 // avoid a perfectly monotone series
		}
	}
	return out
}

func testBuilderConfig() Config {
	return Config{
		Symbols: Symbols{
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
	}
}

func healthyProvider() *fakeProvider {
	return &fakeProvider{
		series: map[string]domain.Series{
			"QQQ":  seriesOf("QQQ", domain.IntervalWeekly, climb(400, 30)...),
			"TQQQ": seriesOf("TQQQ", domain.IntervalWeekly, climb(60, 30)...),
			"^VIX": seriesOf("^VIX", domain.IntervalDaily, 15, 14, 16, 15, 14, 15, 16),
			"^TNX": seriesOf("^TNX", domain.IntervalDaily, 4.2, 4.3, 4.25, 4.3, 4.35),
			"^IRX": seriesOf("^IRX", domain.IntervalDaily, 4.0, 4.0, 4.05, 4.0, 4.1),
		},
		rates: map[string]decimal.Decimal{
			"KRW=X": decimal.NewFromInt(1350),
		},
	}
}

func TestBuild(t *testing.T) {
	builder := NewSnapshotBuilder(healthyProvider(), testBuilderConfig(), zap.NewNop())

	view, err := builder.Build(context.Background())
	require.NoError(t, err)

	require.Equal(t, "QQQ", view.Benchmark.Symbol)
	require.True(t, view.Benchmark.Bundle.RSIKnown)
	require.True(t, view.Benchmark.Bundle.MAKnown)
	require.False(t, view.Benchmark.Bundle.Drawdown.IsPositive())

	require.Len(t, view.Engines, 1)
	require.Equal(t, "TQQQ", view.Engines[0].Symbol)

	require.True(t, view.FxRate.Equal(decimal.NewFromInt(1350)))
	require.False(t, view.Macro.Defensive())
	require.False(t, view.FetchedAt.IsZero())
}

func TestBuild_FetchFailureAbortsWholeCycle(t *testing.T) {
	for _, symbol := range []string{"QQQ", "TQQQ", "^VIX", "^TNX", "^IRX", "KRW=X"} {
		t.Run(symbol, func(t *testing.T) {
			provider := healthyProvider()
			provider.errs = map[string]error{symbol: errors.New("boom")}

			builder := NewSnapshotBuilder(provider, testBuilderConfig(), zap.NewNop())
			_, err := builder.Build(context.Background())
			require.ErrorIs(t, err, ErrDataFetch)
			require.Contains(t, err.Error(), symbol)
		})
	}
}

func TestBuild_ShortHistoryDegradesRSI(t *testing.T) {
	provider := healthyProvider()
	// five bars: enough for drawdown, not for RSI 14 or the MAs
	provider.series["QQQ"] = seriesOf("QQQ", domain.IntervalWeekly, 400, 405, 402, 410, 408)

	builder := NewSnapshotBuilder(provider, testBuilderConfig(), zap.NewNop())
	view, err := builder.Build(context.Background())
	require.NoError(t, err)

	require.False(t, view.Benchmark.Bundle.RSIKnown)
	require.False(t, view.Benchmark.Bundle.MAKnown)
	// drawdown still computed: 408 vs peak 410
	require.True(t, view.Benchmark.Bundle.Drawdown.IsNegative())
}

func TestBuild_SustainedVolatilityFlagsDefensive(t *testing.T) {
	provider := healthyProvider()
	provider.series["^VIX"] = seriesOf("^VIX", domain.IntervalDaily, 25, 32, 35, 38, 34, 33, 36)

	builder := NewSnapshotBuilder(provider, testBuilderConfig(), zap.NewNop())
	view, err := builder.Build(context.Background())
	require.NoError(t, err)

	require.True(t, view.Macro.VolSustainedHigh)
	require.True(t, view.Macro.Defensive())
	require.Contains(t, view.Macro.DefensiveReasons()[0], "volatility")
}
