// Package market builds the per-cycle market view: OHLC series for the
// tracked instruments, their indicator bundles and the cross-series
// macro risk flags.
package market

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/busandev/firecro/internal/domain"
	"github.com/busandev/firecro/pkg/indicators"
)

// ErrDataFetch marks a failed or empty market-data fetch. The cycle
// must be aborted whole: no partial or stale snapshot is ever built.
var ErrDataFetch = errors.New("market data fetch failed")

const (
	weeklyRange = "2y"
	dailyRange  = "1y"
	volRange    = "3mo"
)

// quoteProvider is the external market-data collaborator.
type quoteProvider interface {
	Candles(ctx context.Context, symbol string, interval domain.Interval, barRange string) (domain.Series, error)
	Rate(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Symbols instruments tracked by the advisor.
type Symbols struct {
	Benchmark  string
	Engines    []string
	Volatility string
	LongRate   string
	ShortRate  string
	FX         string
}

// Config snapshot builder tuning.
type Config struct {
	Symbols        Symbols
	RSIPeriod      int
	MAShortWindow  int
	MALongWindow   int
	VolWindow      int
	VolThreshold   decimal.Decimal
	SpreadLookback int
	TrendMAWindow  int
}

// SnapshotBuilder fetches series and derives the MarketView.
type SnapshotBuilder struct {
	provider quoteProvider
	cfg      Config
	logger   *zap.Logger
}

// NewSnapshotBuilder creates a snapshot builder.
func NewSnapshotBuilder(provider quoteProvider, cfg Config, logger *zap.Logger) *SnapshotBuilder {
	return &SnapshotBuilder{provider: provider, cfg: cfg, logger: logger}
}

// Build fetches every required series and derives one MarketView.
// Any fetch failure aborts the build; callers skip the evaluation and
// retry on the next cycle.
func (b *SnapshotBuilder) Build(ctx context.Context) (domain.MarketView, error) {
	benchmark, err := b.provider.Candles(ctx, b.cfg.Symbols.Benchmark, domain.IntervalWeekly, weeklyRange)
	if err != nil {
		return domain.MarketView{}, fetchErr(b.cfg.Symbols.Benchmark, err)
	}

	benchView, err := b.instrumentView(benchmark)
	if err != nil {
		return domain.MarketView{}, err
	}

	engines := make([]domain.InstrumentView, 0, len(b.cfg.Symbols.Engines))
	for _, symbol := range b.cfg.Symbols.Engines {
		series, err := b.provider.Candles(ctx, symbol, domain.IntervalWeekly, weeklyRange)
		if err != nil {
			return domain.MarketView{}, fetchErr(symbol, err)
		}
		view, err := b.instrumentView(series)
		if err != nil {
			return domain.MarketView{}, err
		}
		engines = append(engines, view)
	}

	vol, err := b.provider.Candles(ctx, b.cfg.Symbols.Volatility, domain.IntervalDaily, volRange)
	if err != nil {
		return domain.MarketView{}, fetchErr(b.cfg.Symbols.Volatility, err)
	}

	longRate, err := b.provider.Candles(ctx, b.cfg.Symbols.LongRate, domain.IntervalDaily, dailyRange)
	if err != nil {
		return domain.MarketView{}, fetchErr(b.cfg.Symbols.LongRate, err)
	}
	shortRate, err := b.provider.Candles(ctx, b.cfg.Symbols.ShortRate, domain.IntervalDaily, dailyRange)
	if err != nil {
		return domain.MarketView{}, fetchErr(b.cfg.Symbols.ShortRate, err)
	}

	fxRate, err := b.provider.Rate(ctx, b.cfg.Symbols.FX)
	if err != nil {
		return domain.MarketView{}, fetchErr(b.cfg.Symbols.FX, err)
	}

	macro, err := b.macroSnapshot(vol, longRate, shortRate, benchmark)
	if err != nil {
		return domain.MarketView{}, err
	}

	b.logger.Debug("market snapshot built",
		zap.String("benchmark", benchView.Symbol),
		zap.Int("engines", len(engines)),
		zap.Bool("defensive", macro.Defensive()))

	return domain.MarketView{
		Benchmark: benchView,
		Engines:   engines,
		Macro:     macro,
		FxRate:    fxRate,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// instrumentView derives the indicator bundle for a series. RSI and MA
// degrade to unknown on short history; drawdown is required and fails
// the build when it cannot be computed.
func (b *SnapshotBuilder) instrumentView(series domain.Series) (domain.InstrumentView, error) {
	closes := series.Closes()

	price, ok := series.LatestClose()
	if !ok {
		return domain.InstrumentView{}, fetchErr(series.Symbol, errors.New("series has no bars"))
	}

	bundle := domain.IndicatorBundle{}

	rsi, err := indicators.RSI(closes, b.cfg.RSIPeriod)
	switch {
	case err == nil:
		bundle.RSI = rsi
		bundle.RSIKnown = true
	case errors.Is(err, indicators.ErrInsufficientData):
		b.logger.Warn("rsi unavailable", zap.String("symbol", series.Symbol), zap.Error(err))
	default:
		return domain.InstrumentView{}, errors.Wrapf(err, "rsi failed for %s", series.Symbol)
	}

	dd, err := indicators.Drawdown(closes, series.Interval.DrawdownLookback())
	if err != nil {
		return domain.InstrumentView{}, fetchErr(series.Symbol, errors.Wrap(err, "drawdown"))
	}
	bundle.Drawdown = dd

	maShort, errShort := indicators.SMA(closes, b.cfg.MAShortWindow)
	maLong, errLong := indicators.SMA(closes, b.cfg.MALongWindow)
	if errShort == nil && errLong == nil {
		bundle.MAShort = maShort
		bundle.MALong = maLong
		bundle.MAKnown = true
	} else {
		b.logger.Warn("moving averages unavailable", zap.String("symbol", series.Symbol))
	}

	return domain.InstrumentView{Symbol: series.Symbol, Price: price, Bundle: bundle}, nil
}

func (b *SnapshotBuilder) macroSnapshot(vol, longRate, shortRate, benchmark domain.Series) (domain.MacroSnapshot, error) {
	volCloses := vol.Closes()
	longCloses := longRate.Closes()
	shortCloses := shortRate.Closes()

	volLevel, ok := vol.LatestClose()
	if !ok {
		return domain.MacroSnapshot{}, fetchErr(vol.Symbol, errors.New("series has no bars"))
	}
	longLevel, ok := longRate.LatestClose()
	if !ok {
		return domain.MacroSnapshot{}, fetchErr(longRate.Symbol, errors.New("series has no bars"))
	}
	shortLevel, ok := shortRate.LatestClose()
	if !ok {
		return domain.MacroSnapshot{}, fetchErr(shortRate.Symbol, errors.New("series has no bars"))
	}

	spreads := spreadSeries(longCloses, shortCloses)

	return domain.MacroSnapshot{
		Volatility:       volLevel,
		LongRate:         longLevel,
		ShortRate:        shortLevel,
		YieldSpread:      longLevel.Sub(shortLevel),
		VolSustainedHigh: sustainedHigh(volCloses, b.cfg.VolWindow, b.cfg.VolThreshold),
		SpreadNormalized: spreadNormalized(spreads, b.cfg.SpreadLookback),
		TrendBroken:      trendBroken(benchmark.Closes(), b.cfg.TrendMAWindow),
	}, nil
}

func fetchErr(symbol string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDataFetch, symbol, err)
}
