package indicators

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func decs(values ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}

func TestRSI(t *testing.T) {
	t.Run("insufficient data", func(t *testing.T) {
		closes := decs(100, 101, 102)
		_, err := RSI(closes, 14)
		require.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("monotonically rising clamps to 100", func(t *testing.T) {
		closes := make([]decimal.Decimal, 0, 20)
		for i := 0; i < 20; i++ {
			closes = append(closes, decimal.NewFromInt(int64(100+i)))
		}
		rsi, err := RSI(closes, 14)
		require.NoError(t, err)
		require.True(t, rsi.Equal(decimal.NewFromInt(100)), "got %s", rsi)
	})

	t.Run("monotonically falling clamps to 0", func(t *testing.T) {
		closes := make([]decimal.Decimal, 0, 20)
		for i := 0; i < 20; i++ {
			closes = append(closes, decimal.NewFromInt(int64(200-i)))
		}
		rsi, err := RSI(closes, 14)
		require.NoError(t, err)
		require.True(t, rsi.IsZero(), "got %s", rsi)
	})

	t.Run("flat series has no RSI", func(t *testing.T) {
		closes := make([]decimal.Decimal, 20)
		for i := range closes {
			closes[i] = decimal.NewFromInt(100)
		}
		_, err := RSI(closes, 14)
		require.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("mixed series stays in range", func(t *testing.T) {
		closes := decs(
			100, 102, 101, 104, 103, 106, 105, 108, 107, 110,
			109, 112, 111, 114, 113, 116, 115, 118, 117, 120,
		)
		rsi, err := RSI(closes, 14)
		require.NoError(t, err)
		require.True(t, rsi.GreaterThan(decimal.NewFromInt(50)), "uptrend should read above 50, got %s", rsi)
		require.True(t, rsi.LessThan(decimal.NewFromInt(100)), "got %s", rsi)
	})
}

func TestSMA(t *testing.T) {
	t.Run("latest window mean", func(t *testing.T) {
		closes := decs(1, 2, 3, 4, 5)
		sma, err := SMA(closes, 3)
		require.NoError(t, err)
		require.InDelta(t, 4.0, sma.InexactFloat64(), 1e-9)
	})

	t.Run("window equal to series length", func(t *testing.T) {
		closes := decs(2, 4, 6)
		sma, err := SMA(closes, 3)
		require.NoError(t, err)
		require.InDelta(t, 4.0, sma.InexactFloat64(), 1e-9)
	})

	t.Run("short series", func(t *testing.T) {
		_, err := SMA(decs(1, 2), 3)
		require.ErrorIs(t, err, ErrInsufficientData)
	})
}

func TestSMASeries_TailAlignment(t *testing.T) {
	closes := decs(1, 2, 3, 4, 5)
	series, err := SMASeries(closes, 2)
	require.NoError(t, err)
	require.Len(t, series, 4)
	require.InDelta(t, 1.5, series[0].InexactFloat64(), 1e-9)
	require.InDelta(t, 4.5, series[3].InexactFloat64(), 1e-9)
}

func TestDrawdown(t *testing.T) {
	t.Run("at the peak is zero", func(t *testing.T) {
		closes := decs(100, 110, 120)
		dd, err := Drawdown(closes, 52)
		require.NoError(t, err)
		require.True(t, dd.IsZero(), "got %s", dd)
	})

	t.Run("below the rolling peak", func(t *testing.T) {
		closes := decs(100, 200, 150)
		dd, err := Drawdown(closes, 52)
		require.NoError(t, err)
		require.True(t, dd.Equal(decimal.NewFromFloat(-0.25)), "got %s", dd)
	})

	t.Run("peak outside the lookback window is forgotten", func(t *testing.T) {
		// peak 200 at bar 0 falls out of a 2-bar window by bar 2
		closes := decs(200, 100, 100)
		dd, err := Drawdown(closes, 2)
		require.NoError(t, err)
		require.True(t, dd.IsZero(), "got %s", dd)
	})

	t.Run("single bar", func(t *testing.T) {
		dd, err := Drawdown(decs(100), 52)
		require.NoError(t, err)
		require.True(t, dd.IsZero())
	})

	t.Run("empty series", func(t *testing.T) {
		_, err := Drawdown(nil, 52)
		require.ErrorIs(t, err, ErrInsufficientData)
	})
}

func TestDrawdownSeries_GrowingWindow(t *testing.T) {
	closes := decs(100, 80, 120, 60)
	series, err := DrawdownSeries(closes, 52)
	require.NoError(t, err)
	require.Len(t, series, 4)
	require.True(t, series[0].IsZero())
	require.True(t, series[1].Equal(decimal.NewFromFloat(-0.2)), "got %s", series[1])
	require.True(t, series[2].IsZero())
	require.True(t, series[3].Equal(decimal.NewFromFloat(-0.5)), "got %s", series[3])
}
