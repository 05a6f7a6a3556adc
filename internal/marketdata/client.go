package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	apierrors "quantdesk/internal/errors"
	"quantdesk/internal/options"
)

// Client fetches price history and options chains from the configured
// provider. Outbound requests pass through a token-bucket rate limiter and
// a circuit breaker; an attached Cache short-circuits repeat fetches.
type Client struct {
	httpClient       *http.Client
	baseURL          string
	provider         string
	limiter          *rate.Limiter
	breaker          *gobreaker.CircuitBreaker
	cache            *Cache
	logger           *slog.Logger
	fetchConcurrency int
	riskFreeRate     float64
}

type dailyResponse struct {
	Symbol string     `json:"symbol"`
	Bars   []DailyBar `json:"bars"`
}

type chainResponse struct {
	Symbol       string             `json:"symbol"`
	SpotPrice    float64            `json:"spot_price"`
	RiskFreeRate float64            `json:"risk_free_rate"`
	Contracts    []options.Contract `json:"contracts"`
}

// NewClient creates a provider client. cache may be nil to disable caching;
// unset config fields fall back to package defaults.
func NewClient(cfg Config, cache *Cache, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ProviderName == "" {
		cfg.ProviderName = "marketdata"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = DefaultFetchConcurrency
	}
	if cfg.RiskFreeRate <= 0 {
		cfg.RiskFreeRate = DefaultRiskFreeRate
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.ProviderName,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &Client{
		httpClient:       &http.Client{Timeout: cfg.Timeout},
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		provider:         cfg.ProviderName,
		limiter:          rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker:          breaker,
		cache:            cache,
		logger:           logger,
		fetchConcurrency: cfg.FetchConcurrency,
		riskFreeRate:     cfg.RiskFreeRate,
	}
}

// Ping reports provider availability as seen by the circuit breaker. It
// makes no network round trip; an open breaker means recent calls failed
// and new ones would be rejected immediately.
func (c *Client) Ping(ctx context.Context) error {
	if state := c.breaker.State(); state == gobreaker.StateOpen {
		return fmt.Errorf("provider %s unavailable: circuit breaker %s", c.provider, state)
	}
	return nil
}

// FetchHistory fetches daily adjusted closes for every ticker over
// [start, end] and aligns them onto a shared date index. Tickers whose
// fetch fails are listed in missing (sorted) and excluded from the table;
// the call errors only when no ticker succeeds.
func (c *Client) FetchHistory(ctx context.Context, tickers []string, start, end time.Time) (*PriceTable, []string, error) {
	if len(tickers) == 0 {
		return nil, nil, apierrors.NewValidation("tickers", "at least one ticker required", 0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fetchConcurrency)

	var mu sync.Mutex
	series := make(map[string][]DailyBar, len(tickers))
	var missing []string
	var lastErr error

	for _, ticker := range tickers {
		g.Go(func() error {
			bars, err := c.fetchDaily(gctx, ticker, start, end)
			if err != nil {
				c.logger.WarnContext(gctx, "history fetch failed",
					"ticker", ticker,
					"error", err,
				)
				mu.Lock()
				missing = append(missing, ticker)
				lastErr = err
				mu.Unlock()
				return nil
			}
			mu.Lock()
			series[ticker] = bars
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	sort.Strings(missing)
	if len(series) == 0 {
		return nil, missing, apierrors.NewUpstream(c.provider, "daily history", lastErr)
	}

	table := alignSeries(tickers, series)
	c.logger.InfoContext(ctx, "price history fetched",
		"requested", len(tickers),
		"fetched", len(series),
		"missing", len(missing),
		"aligned_rows", len(table.Dates),
	)
	return table, missing, nil
}

func (c *Client) fetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]DailyBar, error) {
	key := fmt.Sprintf("history:%s:%s:%s", symbol, start.Format(DateLayout), end.Format(DateLayout))
	if c.cache != nil {
		if bars, ok := c.cache.GetBars(ctx, key); ok {
			return bars, nil
		}
	}

	path := fmt.Sprintf("/v1/daily/%s?start=%s&end=%s",
		url.PathEscape(symbol), start.Format(DateLayout), end.Format(DateLayout))
	var payload dailyResponse
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}

	// Bars with missing dates or unusable closes cannot feed returns.
	bars := make([]DailyBar, 0, len(payload.Bars))
	for _, bar := range payload.Bars {
		if bar.Date == "" || !isFinite(bar.AdjClose) || bar.AdjClose <= 0 {
			continue
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no usable bars for %s", symbol)
	}

	if c.cache != nil {
		c.cache.SetBars(ctx, key, bars)
	}
	return bars, nil
}

// FetchOptionChain fetches the raw options chain for one ticker. A missing
// provider rate falls back to the configured default.
func (c *Client) FetchOptionChain(ctx context.Context, ticker string) (*ChainSnapshot, error) {
	key := "chain:" + ticker
	if c.cache != nil {
		if snap, ok := c.cache.GetChain(ctx, key); ok {
			return snap, nil
		}
	}

	var payload chainResponse
	if err := c.getJSON(ctx, "/v1/options/"+url.PathEscape(ticker), &payload); err != nil {
		return nil, apierrors.NewUpstream(c.provider, "option chain", err)
	}
	if !isFinite(payload.SpotPrice) || payload.SpotPrice <= 0 {
		return nil, apierrors.NewInsufficientData(ticker, "provider returned no spot price")
	}

	riskFree := payload.RiskFreeRate
	if !isFinite(riskFree) || riskFree <= 0 {
		riskFree = c.riskFreeRate
	}

	snap := &ChainSnapshot{
		Ticker:       ticker,
		SpotPrice:    payload.SpotPrice,
		RiskFreeRate: riskFree,
		Contracts:    payload.Contracts,
		AsOf:         time.Now().UTC(),
	}
	if c.cache != nil {
		c.cache.SetChain(ctx, key, snap)
	}

	c.logger.InfoContext(ctx, "option chain fetched",
		"ticker", ticker,
		"contracts", len(snap.Contracts),
		"spot", snap.SpotPrice,
	)
	return snap, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return nil, nil
	})
	return err
}
