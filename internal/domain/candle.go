package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Interval granularity of a price series.
type Interval string

const (
	IntervalDaily   Interval = "1d"
	IntervalWeekly  Interval = "1wk"
	IntervalMonthly Interval = "1mo"
)

// DrawdownLookback returns the rolling-peak window for this granularity
// (one trading year expressed in bars).
func (i Interval) DrawdownLookback() int {
	switch i {
	case IntervalDaily:
		return 252
	case IntervalWeekly:
		return 52
	case IntervalMonthly:
		return 12
	default:
		return 52
	}
}

// Candle single OHLC bar.
type Candle struct {
	OpenTime  time.Time       `json:"open_time"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	CloseTime time.Time       `json:"close_time"`
}

// Series time-ordered candles for one instrument at one granularity.
type Series struct {
	Symbol   string
	Interval Interval
	Candles  []Candle
}

// Validate checks that bar timestamps are strictly increasing.
// Gaps are allowed (market closures), duplicates and reordering are not.
func (s Series) Validate() error {
	for i := 1; i < len(s.Candles); i++ {
		if !s.Candles[i].OpenTime.After(s.Candles[i-1].OpenTime) {
			return errors.Errorf("series %s (%s): bar %d timestamp %s is not after previous %s",
				s.Symbol, s.Interval, i, s.Candles[i].OpenTime, s.Candles[i-1].OpenTime)
		}
	}
	return nil
}

// Closes returns the close prices in series order.
func (s Series) Closes() []decimal.Decimal {
	closes := make([]decimal.Decimal, len(s.Candles))
	for i, c := range s.Candles {
		closes[i] = c.Close
	}
	return closes
}

// LatestClose returns the most recent close price.
func (s Series) LatestClose() (decimal.Decimal, bool) {
	if len(s.Candles) == 0 {
		return decimal.Zero, false
	}
	return s.Candles[len(s.Candles)-1].Close, true
}
