// Command firecro runs the portfolio advisory service: it polls market
// data, evaluates the rule cascade against the saved portfolio inputs
// and serves the dashboard.
//
// Usage:
//
//	firecro --config config.yaml        run the advisory loop
//	firecro --config config.yaml --once evaluate one cycle and exit
//	firecro setup                       launch the portfolio input wizard
//
// Optional environment variables (read from .env when present):
//
//	TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/busandev/firecro/config"
	"github.com/busandev/firecro/internal"
	"github.com/busandev/firecro/internal/clients"
	"github.com/busandev/firecro/internal/services/market"
	"github.com/busandev/firecro/internal/services/notifier"
	"github.com/busandev/firecro/internal/services/phase"
	"github.com/busandev/firecro/internal/services/strategy"
	"github.com/busandev/firecro/internal/setup"
	"github.com/busandev/firecro/internal/storage/cycles"
	"github.com/busandev/firecro/internal/storage/inputs"
	"github.com/busandev/firecro/internal/web"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to yaml config")
	once := flag.Bool("once", false, "evaluate a single cycle, print the result and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	if flag.Arg(0) == "setup" {
		if err := setup.RunTUI(cfg.InputsPath, cfg.Symbols.Engines[0]); err != nil {
			log.Fatal(err)
		}
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	advisor, cycleStore, notif, err := buildAdvisor(cfg, logger)
	if err != nil {
		logger.Fatal("build advisor", zap.Error(err))
	}
	defer advisor.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		out, err := advisor.EvaluateCycle(ctx)
		if err != nil {
			logger.Fatal("evaluate cycle", zap.Error(err))
		}
		fmt.Printf("%s: %s\n", out.Assessment.Kind, out.Assessment.Rationale)
		fmt.Printf("contribution: %s\n", out.Contribution.Rationale)
		if notif != nil && notifier.ShouldAlert(out) {
			if err := notif.Notify(ctx, out); err != nil {
				logger.Error("send alert", zap.Error(err))
			}
		}
		return
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return advisor.Run(ctx)
	})

	g.Go(func() error {
		server := web.NewServer(cfg.WebAddr, cycleStore, advisor, logger)
		return server.Start(ctx)
	})

	if notif != nil {
		notif.ListenForCommands(ctx)
	}

	logger.Info("advisor started",
		zap.String("web_addr", cfg.WebAddr),
		zap.Duration("poll_interval", cfg.PollInterval))

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Fatal("advisor stopped", zap.Error(err))
	}
}

func buildAdvisor(cfg config.Config, logger *zap.Logger) (*internal.Advisor, *cycles.WALStore, *notifier.Telegram, error) {
	yahoo := clients.NewYahooClient(30 * time.Second)

	builder := market.NewSnapshotBuilder(yahoo, market.Config{
		Symbols: market.Symbols{
			Benchmark:  cfg.Symbols.Benchmark,
			Engines:    cfg.Symbols.Engines,
			Volatility: cfg.Symbols.Volatility,
			LongRate:   cfg.Symbols.LongRate,
			ShortRate:  cfg.Symbols.ShortRate,
			FX:         cfg.Symbols.FX,
		},
		RSIPeriod:      cfg.Indicators.RSIPeriod,
		MAShortWindow:  cfg.Indicators.MAShortWindow,
		MALongWindow:   cfg.Indicators.MALongWindow,
		VolWindow:      cfg.Indicators.VolWindow,
		VolThreshold:   cfg.Thresholds.VolSustained,
		SpreadLookback: cfg.Indicators.SpreadLookback,
		TrendMAWindow:  cfg.Indicators.TrendMAWindow,
	}, logger)

	inputsStore, err := inputs.NewStore(cfg.InputsPath)
	if err != nil {
		return nil, nil, nil, err
	}

	table := cfg.Phases
	if len(table) == 0 {
		table = phase.DefaultTable()
	}
	resolver, err := phase.NewResolver(table, cfg.Thresholds.RSISell, cfg.Thresholds.RSISellDefensive)
	if err != nil {
		return nil, nil, nil, err
	}

	engine, err := strategy.NewAdvisor(strategy.Config{
		Ladder:              cfg.Ladder,
		LossBufferPct:       cfg.Thresholds.LossBufferPct,
		WartimeMDD:          cfg.Thresholds.WartimeMDD,
		Band:                cfg.Thresholds.RatioBand,
		OpportunityRSI:      cfg.Thresholds.RSIOpportunity,
		AcceleratedMultiple: cfg.Thresholds.AcceleratedMult,
		DriftBand:           cfg.Thresholds.DriftBand,
	}, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	cycleStore, err := cycles.NewWALStore(cfg.WALDir)
	if err != nil {
		return nil, nil, nil, err
	}

	var notif *notifier.Telegram
	var advisorNotifier internal.Notifier
	if cfg.Telegram.Enabled {
		notif, err = notifier.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		advisorNotifier = notif
	}

	advisor := internal.NewAdvisor(builder, inputsStore, resolver, engine, cycleStore, advisorNotifier, cfg.PollInterval, logger)
	return advisor, cycleStore, notif, nil
}
