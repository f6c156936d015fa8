// Package clients contains HTTP clients for external market-data
// providers.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/busandev/firecro/internal/domain"
)

const (
	defaultChartBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	defaultUserAgent    = "firecro/1.0"
)

// YahooClient fetches OHLC history and spot quotes from the Yahoo
// Finance chart API. The endpoint is unauthenticated.
type YahooClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewYahooClient creates a Yahoo Finance client with the given request
// timeout.
func NewYahooClient(timeout time.Duration) *YahooClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YahooClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultChartBaseURL,
		userAgent:  defaultUserAgent,
	}
}

// chartResponse mirrors the Yahoo chart API payload. Price arrays use
// pointers because Yahoo emits nulls for halted or missing bars.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string   `json:"symbol"`
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Candles fetches OHLC history for a symbol at the given granularity.
// barRange is a Yahoo range expression such as "2y" or "3mo".
// A provider error, an HTTP failure or an empty result is returned as
// an error so the caller can distinguish it from valid flat data.
func (c *YahooClient) Candles(ctx context.Context, symbol string, interval domain.Interval, barRange string) (domain.Series, error) {
	payload, err := c.fetchChart(ctx, symbol, string(interval), barRange)
	if err != nil {
		return domain.Series{}, err
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return domain.Series{}, errors.Errorf("no quote data for %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	barSpan := intervalSpan(interval)
	candles := make([]domain.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue // halted or not-yet-closed bar
		}
		openTime := time.Unix(ts, 0).UTC()
		candles = append(candles, domain.Candle{
			OpenTime:  openTime,
			Open:      floatOrClose(quote.Open, i, *quote.Close[i]),
			High:      floatOrClose(quote.High, i, *quote.Close[i]),
			Low:       floatOrClose(quote.Low, i, *quote.Close[i]),
			Close:     decimal.NewFromFloat(*quote.Close[i]),
			CloseTime: openTime.Add(barSpan),
		})
	}

	if len(candles) == 0 {
		return domain.Series{}, errors.Errorf("empty series for %s (%s)", symbol, interval)
	}

	series := domain.Series{Symbol: symbol, Interval: interval, Candles: candles}
	if err := series.Validate(); err != nil {
		return domain.Series{}, errors.Wrapf(err, "provider returned malformed series for %s", symbol)
	}

	return series, nil
}

// Rate fetches the current value of a quote symbol (used for FX).
func (c *YahooClient) Rate(ctx context.Context, symbol string) (decimal.Decimal, error) {
	payload, err := c.fetchChart(ctx, symbol, string(domain.IntervalDaily), "1d")
	if err != nil {
		return decimal.Zero, err
	}

	meta := payload.Chart.Result[0].Meta
	if meta.RegularMarketPrice == nil {
		return decimal.Zero, errors.Errorf("no market price for %s", symbol)
	}

	rate := decimal.NewFromFloat(*meta.RegularMarketPrice)
	if !rate.IsPositive() {
		return decimal.Zero, errors.Errorf("non-positive market price %s for %s", rate.String(), symbol)
	}

	return rate, nil
}

func (c *YahooClient) fetchChart(ctx context.Context, symbol, interval, barRange string) (*chartResponse, error) {
	params := url.Values{}
	params.Set("interval", interval)
	params.Set("range", barRange)
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build chart request for %s", symbol)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "chart request failed for %s", symbol)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("chart request for %s returned status %d", symbol, resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrapf(err, "failed to decode chart response for %s", symbol)
	}

	if payload.Chart.Error != nil {
		return nil, errors.Errorf("provider error for %s: %s (%s)",
			symbol, payload.Chart.Error.Description, payload.Chart.Error.Code)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, errors.Errorf("no chart result for %s", symbol)
	}

	return &payload, nil
}

func intervalSpan(interval domain.Interval) time.Duration {
	switch interval {
	case domain.IntervalWeekly:
		return 7 * 24 * time.Hour
	case domain.IntervalMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

func floatOrClose(values []*float64, i int, fallback float64) decimal.Decimal {
	if i < len(values) && values[i] != nil {
		return decimal.NewFromFloat(*values[i])
	}
	return decimal.NewFromFloat(fallback)
}
