// Package config loads the advisor configuration from YAML and the
// environment. Every tunable threshold of the decision engine lives
// here so rule revisions do not need code changes.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/busandev/firecro/internal/domain"
)

// Config fully resolved advisor configuration.
type Config struct {
	PollInterval time.Duration
	WebAddr      string
	WALDir       string
	InputsPath   string

	Symbols    Symbols
	Indicators Indicators
	Thresholds Thresholds
	Ladder     []domain.LadderTier
	Phases     domain.PhaseTable

	Telegram Telegram
}

// Symbols instruments tracked by the advisor.
type Symbols struct {
	Benchmark  string `yaml:"benchmark"`
	Engines    []string `yaml:"engines"`
	Volatility string `yaml:"volatility"`
	LongRate   string `yaml:"long_rate"`
	ShortRate  string `yaml:"short_rate"`
	FX         string `yaml:"fx"`
}

// Indicators window tuning.
type Indicators struct {
	RSIPeriod      int `yaml:"rsi_period"`
	MAShortWindow  int `yaml:"ma_short_window"`
	MALongWindow   int `yaml:"ma_long_window"`
	VolWindow      int `yaml:"vol_window"`
	SpreadLookback int `yaml:"spread_lookback"`
	TrendMAWindow  int `yaml:"trend_ma_window"`
}

// Thresholds decision-engine levels.
type Thresholds struct {
	RSISell          decimal.Decimal
	RSISellDefensive decimal.Decimal
	RSIOpportunity   decimal.Decimal
	VolSustained     decimal.Decimal
	WartimeMDD       decimal.Decimal
	LossBufferPct    decimal.Decimal
	RatioBand        decimal.Decimal
	DriftBand        decimal.Decimal
	AcceleratedMult  decimal.Decimal
}

// Telegram notifier settings. The token and chat ID come from the
// environment, not YAML, so configs stay shareable.
type Telegram struct {
	Enabled bool
	Token   string
	ChatID  string
}

type yamlConfig struct {
	PollInterval string `yaml:"poll_interval"`
	WebAddr      string `yaml:"web_addr"`
	WALDir       string `yaml:"wal_dir"`
	InputsPath   string `yaml:"inputs_path"`

	Symbols    Symbols    `yaml:"symbols"`
	Indicators Indicators `yaml:"indicators"`

	Thresholds struct {
		RSISell          string `yaml:"rsi_sell"`
		RSISellDefensive string `yaml:"rsi_sell_defensive"`
		RSIOpportunity   string `yaml:"rsi_opportunity"`
		VolSustained     string `yaml:"vol_sustained"`
		WartimeMDD       string `yaml:"wartime_mdd"`
		LossBufferPct    string `yaml:"loss_buffer_pct"`
		RatioBand        string `yaml:"ratio_band"`
		DriftBand        string `yaml:"drift_band"`
		AcceleratedMult  string `yaml:"accelerated_multiple"`
	} `yaml:"thresholds"`

	Ladder []struct {
		MDD          string `yaml:"mdd"`
		CashFraction string `yaml:"cash_fraction"`
	} `yaml:"crisis_ladder"`

	Phases []struct {
		Name        string `yaml:"name"`
		Limit       string `yaml:"limit"`
		TargetStock string `yaml:"target_stock"`
	} `yaml:"phases"`

	Telegram struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"telegram"`
}

// Load reads the config at path, applies defaults and validates. An
// empty path yields the pure default configuration.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		payload, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config")
		}

		var y yamlConfig
		if err := yaml.Unmarshal(payload, &y); err != nil {
			return Config{}, errors.Wrap(err, "decode config")
		}

		if err := apply(&cfg, y); err != nil {
			return Config{}, err
		}
	}

	cfg.Telegram.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.Telegram.ChatID = os.Getenv("TELEGRAM_CHAT_ID")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func defaults() Config {
	return Config{
		PollInterval: time.Hour,
		WebAddr:      ":8080",
		WALDir:       "./wal/cycles",
		InputsPath:   "./data/inputs.json",
		Symbols: Symbols{
			Benchmark:  "QQQ",
			Engines:    []string{"TQQQ"},
			Volatility: "^VIX",
			LongRate:   "^TNX",
			ShortRate:  "^IRX",
			FX:         "KRW=X",
		},
		Indicators: Indicators{
			RSIPeriod:      14,
			MAShortWindow:  50,
			MALongWindow:   200,
			VolWindow:      5,
			SpreadLookback: 126,
			TrendMAWindow:  20,
		},
		Thresholds: Thresholds{
			RSISell:          decimal.NewFromInt(80),
			RSISellDefensive: decimal.NewFromInt(75),
			RSIOpportunity:   decimal.NewFromInt(60),
			VolSustained:     decimal.NewFromInt(20),
			WartimeMDD:       decimal.NewFromFloat(-0.30),
			LossBufferPct:    decimal.NewFromFloat(1.5),
			RatioBand:        decimal.NewFromFloat(0.10),
			DriftBand:        decimal.NewFromFloat(0.05),
			AcceleratedMult:  decimal.NewFromFloat(1.5),
		},
		Ladder: []domain.LadderTier{
			{MDD: decimal.NewFromFloat(-0.50), CashFraction: decimal.NewFromInt(1)},
			{MDD: decimal.NewFromFloat(-0.30), CashFraction: decimal.NewFromFloat(0.30)},
			{MDD: decimal.NewFromFloat(-0.20), CashFraction: decimal.NewFromFloat(0.20)},
		},
		Phases: nil, // filled by phase.DefaultTable at wiring when empty
	}
}

func apply(cfg *Config, y yamlConfig) error {
	if y.PollInterval != "" {
		interval, err := time.ParseDuration(y.PollInterval)
		if err != nil {
			return errors.Wrapf(err, "incorrect 'poll_interval': %s", y.PollInterval)
		}
		cfg.PollInterval = interval
	}
	if y.WebAddr != "" {
		cfg.WebAddr = y.WebAddr
	}
	if y.WALDir != "" {
		cfg.WALDir = y.WALDir
	}
	if y.InputsPath != "" {
		cfg.InputsPath = y.InputsPath
	}

	if y.Symbols.Benchmark != "" {
		cfg.Symbols.Benchmark = y.Symbols.Benchmark
	}
	if len(y.Symbols.Engines) > 0 {
		cfg.Symbols.Engines = y.Symbols.Engines
	}
	if y.Symbols.Volatility != "" {
		cfg.Symbols.Volatility = y.Symbols.Volatility
	}
	if y.Symbols.LongRate != "" {
		cfg.Symbols.LongRate = y.Symbols.LongRate
	}
	if y.Symbols.ShortRate != "" {
		cfg.Symbols.ShortRate = y.Symbols.ShortRate
	}
	if y.Symbols.FX != "" {
		cfg.Symbols.FX = y.Symbols.FX
	}

	if y.Indicators.RSIPeriod > 0 {
		cfg.Indicators.RSIPeriod = y.Indicators.RSIPeriod
	}
	if y.Indicators.MAShortWindow > 0 {
		cfg.Indicators.MAShortWindow = y.Indicators.MAShortWindow
	}
	if y.Indicators.MALongWindow > 0 {
		cfg.Indicators.MALongWindow = y.Indicators.MALongWindow
	}
	if y.Indicators.VolWindow > 0 {
		cfg.Indicators.VolWindow = y.Indicators.VolWindow
	}
	if y.Indicators.SpreadLookback > 0 {
		cfg.Indicators.SpreadLookback = y.Indicators.SpreadLookback
	}
	if y.Indicators.TrendMAWindow > 0 {
		cfg.Indicators.TrendMAWindow = y.Indicators.TrendMAWindow
	}

	if err := applyThresholds(cfg, y); err != nil {
		return err
	}

	if len(y.Ladder) > 0 {
		ladder := make([]domain.LadderTier, 0, len(y.Ladder))
		for _, t := range y.Ladder {
			mdd, err := decimal.NewFromString(t.MDD)
			if err != nil {
				return errors.Wrapf(err, "incorrect 'mdd' in crisis_ladder: %s", t.MDD)
			}
			fraction, err := decimal.NewFromString(t.CashFraction)
			if err != nil {
				return errors.Wrapf(err, "incorrect 'cash_fraction' in crisis_ladder: %s", t.CashFraction)
			}
			ladder = append(ladder, domain.LadderTier{MDD: mdd, CashFraction: fraction})
		}
		cfg.Ladder = ladder
	}

	if len(y.Phases) > 0 {
		table := make(domain.PhaseTable, 0, len(y.Phases))
		for _, p := range y.Phases {
			limit := decimal.Zero
			if p.Limit != "" {
				var err error
				limit, err = decimal.NewFromString(p.Limit)
				if err != nil {
					return errors.Wrapf(err, "incorrect 'limit' in phases: %s", p.Limit)
				}
			}
			stock, err := decimal.NewFromString(p.TargetStock)
			if err != nil {
				return errors.Wrapf(err, "incorrect 'target_stock' in phases: %s", p.TargetStock)
			}
			table = append(table, domain.PhaseTier{
				Name:        p.Name,
				Limit:       limit,
				TargetStock: stock,
				TargetCash:  decimal.NewFromInt(1).Sub(stock),
			})
		}
		cfg.Phases = table
	}

	cfg.Telegram.Enabled = y.Telegram.Enabled

	return nil
}

func applyThresholds(cfg *Config, y yamlConfig) error {
	set := func(name, raw string, dst *decimal.Decimal) error {
		if raw == "" {
			return nil
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return errors.Wrapf(err, "incorrect '%s' in thresholds: %s", name, raw)
		}
		*dst = v
		return nil
	}

	t := y.Thresholds
	for _, f := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"rsi_sell", t.RSISell, &cfg.Thresholds.RSISell},
		{"rsi_sell_defensive", t.RSISellDefensive, &cfg.Thresholds.RSISellDefensive},
		{"rsi_opportunity", t.RSIOpportunity, &cfg.Thresholds.RSIOpportunity},
		{"vol_sustained", t.VolSustained, &cfg.Thresholds.VolSustained},
		{"wartime_mdd", t.WartimeMDD, &cfg.Thresholds.WartimeMDD},
		{"loss_buffer_pct", t.LossBufferPct, &cfg.Thresholds.LossBufferPct},
		{"ratio_band", t.RatioBand, &cfg.Thresholds.RatioBand},
		{"drift_band", t.DriftBand, &cfg.Thresholds.DriftBand},
		{"accelerated_multiple", t.AcceleratedMult, &cfg.Thresholds.AcceleratedMult},
	} {
		if err := set(f.name, f.raw, f.dst); err != nil {
			return err
		}
	}

	return nil
}

func (c Config) validate() error {
	if c.PollInterval < time.Minute {
		return errors.Errorf("poll_interval %s is too short, minimum is 1m", c.PollInterval)
	}
	if c.Symbols.Benchmark == "" {
		return errors.New("symbols.benchmark is required")
	}
	if len(c.Symbols.Engines) == 0 {
		return errors.New("at least one engine symbol is required")
	}
	if len(c.Symbols.Engines) > 2 {
		return errors.New("at most two engine symbols are supported")
	}
	if !c.Thresholds.RSISell.GreaterThan(c.Thresholds.RSISellDefensive) {
		return errors.Errorf("rsi_sell %s must exceed rsi_sell_defensive %s",
			c.Thresholds.RSISell.String(), c.Thresholds.RSISellDefensive.String())
	}
	if !c.Thresholds.WartimeMDD.IsNegative() {
		return errors.Errorf("wartime_mdd %s must be negative", c.Thresholds.WartimeMDD.String())
	}
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		return errors.New("telegram is enabled but TELEGRAM_BOT_TOKEN is not set")
	}
	return nil
}
