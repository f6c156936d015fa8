package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, time.Hour, cfg.PollInterval)
	require.Equal(t, "QQQ", cfg.Symbols.Benchmark)
	require.Equal(t, []string{"TQQQ"}, cfg.Symbols.Engines)
	require.Equal(t, 14, cfg.Indicators.RSIPeriod)
	require.True(t, cfg.Thresholds.RSISell.Equal(decimal.NewFromInt(80)))
	require.True(t, cfg.Thresholds.RSISellDefensive.Equal(decimal.NewFromInt(75)))
	require.True(t, cfg.Thresholds.WartimeMDD.Equal(decimal.NewFromFloat(-0.30)))
	require.Len(t, cfg.Ladder, 3)
}

func TestLoad_YamlOverrides(t *testing.T) {
	path := writeConfig(t, `
poll_interval: 30m
web_addr: ":9090"
symbols:
  benchmark: SPY
  engines: [UPRO, SOXL]
thresholds:
  rsi_sell: "78"
  rsi_sell_defensive: "72"
  wartime_mdd: "-0.25"
crisis_ladder:
  - mdd: "-0.40"
    cash_fraction: "1"
  - mdd: "-0.15"
    cash_fraction: "0.25"
phases:
  - name: "Early"
    limit: "100000000"
    target_stock: "0.9"
  - name: "Late"
    target_stock: "0.5"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 30*time.Minute, cfg.PollInterval)
	require.Equal(t, ":9090", cfg.WebAddr)
	require.Equal(t, "SPY", cfg.Symbols.Benchmark)
	require.Equal(t, []string{"UPRO", "SOXL"}, cfg.Symbols.Engines)
	// untouched symbols keep defaults
	require.Equal(t, "^VIX", cfg.Symbols.Volatility)

	require.True(t, cfg.Thresholds.RSISell.Equal(decimal.NewFromInt(78)))
	require.True(t, cfg.Thresholds.WartimeMDD.Equal(decimal.NewFromFloat(-0.25)))

	require.Len(t, cfg.Ladder, 2)
	require.True(t, cfg.Ladder[0].MDD.Equal(decimal.NewFromFloat(-0.40)))

	require.Len(t, cfg.Phases, 2)
	require.True(t, cfg.Phases[0].TargetStock.Equal(decimal.NewFromFloat(0.9)))
	require.True(t, cfg.Phases[0].TargetCash.Equal(decimal.NewFromFloat(0.1)), "got %s", cfg.Phases[0].TargetCash)
}

func TestLoad_Rejections(t *testing.T) {
	t.Run("poll interval too short", func(t *testing.T) {
		_, err := Load(writeConfig(t, "poll_interval: 10s\n"))
		require.Error(t, err)
	})

	t.Run("rsi thresholds out of order", func(t *testing.T) {
		_, err := Load(writeConfig(t, "thresholds:\n  rsi_sell: \"70\"\n  rsi_sell_defensive: \"75\"\n"))
		require.Error(t, err)
	})

	t.Run("positive wartime mdd", func(t *testing.T) {
		_, err := Load(writeConfig(t, "thresholds:\n  wartime_mdd: \"0.30\"\n"))
		require.Error(t, err)
	})

	t.Run("three engines rejected", func(t *testing.T) {
		_, err := Load(writeConfig(t, "symbols:\n  engines: [TQQQ, SOXL, UPRO]\n"))
		require.Error(t, err)
	})

	t.Run("bad decimal in ladder", func(t *testing.T) {
		_, err := Load(writeConfig(t, "crisis_ladder:\n  - mdd: \"deep\"\n    cash_fraction: \"1\"\n"))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestLoad_TelegramFromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token-123")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(writeConfig(t, "telegram:\n  enabled: true\n"))
	require.NoError(t, err)

	require.True(t, cfg.Telegram.Enabled)
	require.Equal(t, "token-123", cfg.Telegram.Token)
	require.Equal(t, "42", cfg.Telegram.ChatID)
}

func TestLoad_TelegramEnabledWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load(writeConfig(t, "telegram:\n  enabled: true\n"))
	require.Error(t, err)
}
