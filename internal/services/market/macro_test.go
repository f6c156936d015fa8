package market

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

func TestSpreadSeries(t *testing.T) {
	t.Run("tail alignment", func(t *testing.T) {
		long := decs(4.0, 4.1, 4.2, 4.3)
		short := decs(4.5, 4.0)

		spreads := spreadSeries(long, short)
		require.Len(t, spreads, 2)
		require.True(t, spreads[0].Equal(decimal.NewFromFloat(-0.3)), "got %s", spreads[0])
		require.True(t, spreads[1].Equal(decimal.NewFromFloat(0.3)), "got %s", spreads[1])
	})

	t.Run("empty input", func(t *testing.T) {
		require.Nil(t, spreadSeries(nil, decs(1)))
	})
}

func TestSpreadNormalized(t *testing.T) {
	t.Run("inverted then normalized", func(t *testing.T) {
		spreads := decs(0.5, -0.2, -0.1, 0.1)
		require.True(t, spreadNormalized(spreads, 10))
	})

	t.Run("still inverted", func(t *testing.T) {
		spreads := decs(0.5, -0.2, -0.1)
		require.False(t, spreadNormalized(spreads, 10))
	})

	t.Run("never inverted", func(t *testing.T) {
		spreads := decs(0.5, 0.4, 0.6)
		require.False(t, spreadNormalized(spreads, 10))
	})

	t.Run("inversion outside the lookback is forgotten", func(t *testing.T) {
		spreads := decs(-0.2, 0.5, 0.4, 0.6)
		require.False(t, spreadNormalized(spreads, 3))
	})
}

func TestSustainedHigh(t *testing.T) {
	threshold := decimal.NewFromInt(30)

	t.Run("whole window above threshold", func(t *testing.T) {
		require.True(t, sustainedHigh(decs(10, 31, 35, 40, 32, 33), 5, threshold))
	})

	t.Run("brief spike does not qualify", func(t *testing.T) {
		require.False(t, sustainedHigh(decs(10, 12, 45, 14, 11, 12), 5, threshold))
	})

	t.Run("short history defaults to false", func(t *testing.T) {
		require.False(t, sustainedHigh(decs(40, 41), 5, threshold))
	})
}

func TestTrendBroken(t *testing.T) {
	t.Run("closes below the moving average", func(t *testing.T) {
		// steady decline: the last closes sit well under their MA
		closes := decs(100, 98, 96, 94, 92, 80, 70)
		require.True(t, trendBroken(closes, 5))
	})

	t.Run("uptrend is intact", func(t *testing.T) {
		closes := decs(100, 102, 104, 106, 108, 110, 112)
		require.False(t, trendBroken(closes, 5))
	})

	t.Run("short history defaults to false", func(t *testing.T) {
		require.False(t, trendBroken(decs(100, 99), 5))
	})
}
