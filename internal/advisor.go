// Package internal wires the advisory pipeline: fetch market data,
// consolidate the portfolio, resolve targets, run the decision engine
// and persist the cycle.
package internal

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/busandev/firecro/internal/domain"
	"github.com/busandev/firecro/internal/services/market"
	"github.com/busandev/firecro/internal/services/notifier"
	"github.com/busandev/firecro/internal/services/phase"
	"github.com/busandev/firecro/internal/services/portfolio"
	"github.com/busandev/firecro/internal/services/strategy"
	"github.com/busandev/firecro/internal/storage/cycles"
	"github.com/busandev/firecro/internal/storage/inputs"
)

// Notifier pushes urgent cycle outcomes to the operator.
type Notifier interface {
	Notify(ctx context.Context, out domain.CycleOutput) error
}

// Advisor runs the evaluation loop.
type Advisor struct {
	builder      *market.SnapshotBuilder
	inputsStore  *inputs.Store
	resolver     *phase.Resolver
	engine       *strategy.Advisor
	cycleStore   *cycles.WALStore
	notifier     Notifier
	pollInterval time.Duration
	logger       *zap.Logger

	latest atomic.Pointer[domain.CycleOutput]
}

// NewAdvisor assembles the advisor. The notifier may be nil when
// Telegram is disabled.
func NewAdvisor(
	builder *market.SnapshotBuilder,
	inputsStore *inputs.Store,
	resolver *phase.Resolver,
	engine *strategy.Advisor,
	cycleStore *cycles.WALStore,
	notif Notifier,
	pollInterval time.Duration,
	logger *zap.Logger,
) *Advisor {
	return &Advisor{
		builder:      builder,
		inputsStore:  inputsStore,
		resolver:     resolver,
		engine:       engine,
		cycleStore:   cycleStore,
		notifier:     notif,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Run evaluates immediately, then on every tick until ctx is cancelled.
// A failed cycle is logged and skipped; the next tick retries with
// fresh data.
func (a *Advisor) Run(ctx context.Context) error {
	if err := a.evaluateAndRecord(ctx); err != nil {
		a.logger.Error("cycle failed", zap.Error(err))
	}

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.evaluateAndRecord(ctx); err != nil {
				a.logger.Error("cycle failed", zap.Error(err))
			}
		}
	}
}

// EvaluateCycle runs a single advisory cycle without persisting it.
func (a *Advisor) EvaluateCycle(ctx context.Context) (domain.CycleOutput, error) {
	in, err := a.inputsStore.Load()
	if err != nil {
		return domain.CycleOutput{}, errors.Wrap(err, "load inputs")
	}

	view, err := a.builder.Build(ctx)
	if err != nil {
		return domain.CycleOutput{}, err
	}

	prices := make(map[string]decimal.Decimal, len(view.Engines)+1)
	prices[view.Benchmark.Symbol] = view.Benchmark.Price
	for _, engine := range view.Engines {
		prices[engine.Symbol] = engine.Price
	}

	pf, err := portfolio.Consolidate(in.Accounts, prices, view.FxRate)
	if err != nil {
		return domain.CycleOutput{}, err
	}

	view.Macro.ForcedDefensive = in.ForceDefensive
	defensive := view.Macro.Defensive()
	phaseIdx, tier := a.resolver.Determine(pf.TotalAssets)
	targets := a.resolver.Targets(tier, defensive)

	assessment := a.engine.AssessHoldings(view, pf, targets, in.Accounts)
	contribution := a.engine.PlanContribution(view, pf, targets, in.MonthlyContribution)

	zone := domain.ZoneNeutral
	if view.Benchmark.Bundle.RSIKnown {
		zone = domain.RSIZoneFor(view.Benchmark.Bundle.RSI, targets.RSISellThreshold)
	}

	out := domain.CycleOutput{
		EvaluatedAt:  time.Now().UTC(),
		Market:       view,
		Portfolio:    pf,
		PhaseIndex:   phaseIdx,
		PhaseName:    tier.Name,
		Targets:      targets,
		RSIZone:      zone,
		Assessment:   assessment,
		Contribution: contribution,
	}

	a.logger.Info("cycle evaluated",
		zap.String("assessment", assessment.Kind.String()),
		zap.String("phase", tier.Name),
		zap.String("mode", targets.Mode),
		zap.String("total_assets", pf.TotalAssets.StringFixed(0)))

	return out, nil
}

func (a *Advisor) evaluateAndRecord(ctx context.Context) error {
	out, err := a.EvaluateCycle(ctx)
	if err != nil {
		return err
	}

	a.latest.Store(&out)

	if err := a.cycleStore.Save(out); err != nil {
		a.logger.Error("persist cycle", zap.Error(err))
	}

	if a.notifier != nil && notifier.ShouldAlert(out) {
		if err := a.notifier.Notify(ctx, out); err != nil {
			a.logger.Error("send alert", zap.Error(err))
		}
	}

	return nil
}

// Latest returns the most recently evaluated cycle.
func (a *Advisor) Latest() (domain.CycleOutput, bool) {
	out := a.latest.Load()
	if out == nil {
		return domain.CycleOutput{}, false
	}
	return *out, true
}

// Close releases the advisor's storage.
func (a *Advisor) Close() error {
	return a.cycleStore.Close()
}
