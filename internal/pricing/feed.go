package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"paper-trader/internal/errors"
	"paper-trader/internal/logging"
	"paper-trader/internal/models"
	"paper-trader/pkg/utils"
)

// FeedConfig holds configuration for the live quote feed client.
type FeedConfig struct {
	BaseURL    string
	APIKey     string
	QuoteTTL   time.Duration
	BatchSize  int
	BatchDelay time.Duration
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// FeedClient fetches quotes from a remote price feed with a short-TTL cache.
// Upstream rate limiting degrades to cached or stale data rather than
// propagating an error to the ledger.
type FeedClient struct {
	baseURL    string
	apiKey     string
	quoteTTL   time.Duration
	batchSize  int
	batchDelay time.Duration
	httpClient *http.Client
	logger     zerolog.Logger

	mu    sync.RWMutex
	cache map[string]cachedQuote
}

type cachedQuote struct {
	quote     models.Quote
	fetchedAt time.Time
}

// feedQuote is the wire shape of a quote from the feed API.
// Timestamps arrive as millisecond epochs.
type feedQuote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Open          float64 `json:"open"`
	PreviousClose float64 `json:"previousClose"`
	Timestamp     int64   `json:"timestamp"`
	Error         bool    `json:"error,omitempty"`
	RateLimited   bool    `json:"rateLimited,omitempty"`
}

type batchResponse struct {
	Quotes []feedQuote `json:"quotes"`
}

// NewFeedClient creates a new feed client.
func NewFeedClient(cfg FeedConfig) *FeedClient {
	if cfg.QuoteTTL == 0 {
		cfg.QuoteTTL = 5 * time.Second
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 30
	}
	if cfg.BatchDelay == 0 {
		cfg.BatchDelay = 200 * time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &FeedClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		quoteTTL:   cfg.QuoteTTL,
		batchSize:  cfg.BatchSize,
		batchDelay: cfg.BatchDelay,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     cfg.Logger,
	}
}

// GetQuote returns a full quote for a symbol, served from cache when fresh.
func (c *FeedClient) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if q, ok := c.cached(symbol, c.quoteTTL); ok {
		return &q, nil
	}

	start := time.Now()
	quote, err := c.fetchQuote(ctx, symbol)
	logging.LogQuoteFetch(c.logger, symbol, time.Since(start), err)
	if err != nil {
		// Degrade to stale data when available.
		if q, ok := c.cached(symbol, 0); ok {
			c.logger.Warn().Str("symbol", symbol).Err(err).Msg("Serving stale quote")
			return &q, nil
		}
		return nil, err
	}

	c.store(*quote)
	return quote, nil
}

// GetPrice returns a current tradable price for a symbol.
func (c *FeedClient) GetPrice(ctx context.Context, symbol string) (float64, error) {
	quote, err := c.GetQuote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return quote.Price, nil
}

// GetPrices fetches prices for a set of symbols in chunks. Symbols that fail
// upstream fall back to the last known cached price; symbols with no cached
// price are omitted.
func (c *FeedClient) GetPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))

	var stale []string
	for _, symbol := range symbols {
		if q, ok := c.cached(symbol, c.quoteTTL); ok {
			prices[symbol] = q.Price
		} else {
			stale = append(stale, symbol)
		}
	}

	for i := 0; i < len(stale); i += c.batchSize {
		end := i + c.batchSize
		if end > len(stale) {
			end = len(stale)
		}
		chunk := stale[i:end]

		quotes, err := c.fetchBatch(ctx, chunk)
		if err != nil {
			c.logger.Warn().Err(err).Int("symbols", len(chunk)).Msg("Batch quote fetch failed")
		}
		for _, q := range quotes {
			c.store(q)
			prices[q.Symbol] = q.Price
		}

		// Fall back to stale cache entries for anything the batch missed.
		for _, symbol := range chunk {
			if _, ok := prices[symbol]; ok {
				continue
			}
			if q, ok := c.cached(symbol, 0); ok {
				prices[symbol] = q.Price
			}
		}

		// Inter-chunk delay to respect upstream rate limits.
		if end < len(stale) {
			select {
			case <-ctx.Done():
				return prices, ctx.Err()
			case <-time.After(c.batchDelay):
			}
		}
	}

	return prices, nil
}

func (c *FeedClient) fetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return utils.RetryWithResult(ctx, utils.RetryConfig{
		MaxAttempts:   2,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}, func() (*models.Quote, error) {
		fq, err := c.get(ctx, url.Values{"action": {"quote"}, "symbol": {symbol}})
		if err != nil {
			return nil, err
		}
		if fq.RateLimited || fq.Error || fq.Price <= 0 {
			return nil, errors.NewPriceError(symbol, "invalid quote payload", errors.ErrPriceUnavailable)
		}
		return toQuote(*fq), nil
	})
}

func (c *FeedClient) fetchBatch(ctx context.Context, symbols []string) ([]models.Quote, error) {
	req, err := c.newRequest(ctx, url.Values{
		"action":  {"batch"},
		"symbols": {strings.Join(symbols, ",")},
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "batch quote request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("batch quote request: unexpected status %d", resp.StatusCode)
	}

	var body batchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decoding batch response")
	}

	quotes := make([]models.Quote, 0, len(body.Quotes))
	for _, fq := range body.Quotes {
		if fq.Error || fq.RateLimited || fq.Price <= 0 {
			continue
		}
		quotes = append(quotes, *toQuote(fq))
	}
	return quotes, nil
}

func (c *FeedClient) get(ctx context.Context, params url.Values) (*feedQuote, error) {
	req, err := c.newRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "quote request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request: unexpected status %d", resp.StatusCode)
	}

	var fq feedQuote
	if err := json.NewDecoder(resp.Body).Decode(&fq); err != nil {
		return nil, errors.Wrap(err, "decoding quote response")
	}
	return &fq, nil
}

func (c *FeedClient) newRequest(ctx context.Context, params url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *FeedClient) cached(symbol string, ttl time.Duration) (models.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache[symbol]
	if !ok {
		return models.Quote{}, false
	}
	if ttl > 0 && time.Since(entry.fetchedAt) >= ttl {
		return models.Quote{}, false
	}
	return entry.quote, true
}

func (c *FeedClient) store(quote models.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache == nil {
		c.cache = make(map[string]cachedQuote)
	}
	c.cache[quote.Symbol] = cachedQuote{quote: quote, fetchedAt: time.Now()}
}

func toQuote(fq feedQuote) *models.Quote {
	return &models.Quote{
		Symbol:        fq.Symbol,
		Price:         fq.Price,
		Change:        fq.Change,
		ChangePercent: fq.ChangePercent,
		High:          fq.High,
		Low:           fq.Low,
		Open:          fq.Open,
		PreviousClose: fq.PreviousClose,
		Timestamp:     time.UnixMilli(fq.Timestamp),
	}
}

var _ PriceSource = (*FeedClient)(nil)
