package pricing

import (
	"context"
	"sync"

	"paper-trader/internal/errors"
	"paper-trader/internal/models"
)

// Catalog is the static instrument universe for simulated trading.
// Prices are starting points only; a CatalogSource drifts them with the walk.
var Catalog = []models.Instrument{
	// Technology
	{Symbol: "AAPL", Name: "Apple Inc.", Price: 178.72, Sector: "Technology"},
	{Symbol: "MSFT", Name: "Microsoft Corp.", Price: 378.91, Sector: "Technology"},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 141.80, Sector: "Technology"},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Price: 178.25, Sector: "Technology"},
	{Symbol: "NVDA", Name: "NVIDIA Corp.", Price: 875.28, Sector: "Technology"},
	{Symbol: "META", Name: "Meta Platforms", Price: 505.95, Sector: "Technology"},
	{Symbol: "TSLA", Name: "Tesla Inc.", Price: 248.50, Sector: "Technology"},
	{Symbol: "AVGO", Name: "Broadcom Inc.", Price: 1320.45, Sector: "Technology"},
	{Symbol: "ORCL", Name: "Oracle Corp.", Price: 127.89, Sector: "Technology"},
	{Symbol: "CRM", Name: "Salesforce Inc.", Price: 272.34, Sector: "Technology"},
	{Symbol: "ADBE", Name: "Adobe Inc.", Price: 524.67, Sector: "Technology"},
	{Symbol: "AMD", Name: "Advanced Micro Devices", Price: 165.23, Sector: "Technology"},
	{Symbol: "INTC", Name: "Intel Corp.", Price: 43.56, Sector: "Technology"},
	{Symbol: "QCOM", Name: "Qualcomm Inc.", Price: 168.45, Sector: "Technology"},
	{Symbol: "CSCO", Name: "Cisco Systems", Price: 48.23, Sector: "Technology"},
	{Symbol: "IBM", Name: "IBM Corp.", Price: 187.56, Sector: "Technology"},
	{Symbol: "NOW", Name: "ServiceNow Inc.", Price: 782.34, Sector: "Technology"},
	{Symbol: "CRWD", Name: "CrowdStrike Holdings", Price: 312.67, Sector: "Technology"},
	{Symbol: "SNOW", Name: "Snowflake Inc.", Price: 178.90, Sector: "Technology"},
	{Symbol: "NET", Name: "Cloudflare Inc.", Price: 98.45, Sector: "Technology"},

	// Financial
	{Symbol: "JPM", Name: "JPMorgan Chase", Price: 198.42, Sector: "Financial"},
	{Symbol: "V", Name: "Visa Inc.", Price: 279.85, Sector: "Financial"},
	{Symbol: "MA", Name: "Mastercard Inc.", Price: 456.78, Sector: "Financial"},
	{Symbol: "BAC", Name: "Bank of America", Price: 37.89, Sector: "Financial"},
	{Symbol: "WFC", Name: "Wells Fargo", Price: 56.78, Sector: "Financial"},
	{Symbol: "GS", Name: "Goldman Sachs", Price: 412.34, Sector: "Financial"},
	{Symbol: "MS", Name: "Morgan Stanley", Price: 98.67, Sector: "Financial"},
	{Symbol: "BLK", Name: "BlackRock Inc.", Price: 812.45, Sector: "Financial"},
	{Symbol: "AXP", Name: "American Express", Price: 234.56, Sector: "Financial"},
	{Symbol: "SCHW", Name: "Charles Schwab", Price: 72.34, Sector: "Financial"},
	{Symbol: "PYPL", Name: "PayPal Holdings", Price: 67.89, Sector: "Financial"},
	{Symbol: "COIN", Name: "Coinbase Global", Price: 234.56, Sector: "Financial"},
	{Symbol: "HOOD", Name: "Robinhood Markets", Price: 18.90, Sector: "Financial"},

	// Healthcare
	{Symbol: "UNH", Name: "UnitedHealth Group", Price: 512.34, Sector: "Healthcare"},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Price: 156.78, Sector: "Healthcare"},
	{Symbol: "LLY", Name: "Eli Lilly", Price: 789.45, Sector: "Healthcare"},
	{Symbol: "PFE", Name: "Pfizer Inc.", Price: 28.90, Sector: "Healthcare"},
	{Symbol: "ABBV", Name: "AbbVie Inc.", Price: 178.90, Sector: "Healthcare"},
	{Symbol: "MRK", Name: "Merck & Co.", Price: 128.45, Sector: "Healthcare"},
	{Symbol: "TMO", Name: "Thermo Fisher", Price: 567.89, Sector: "Healthcare"},
	{Symbol: "AMGN", Name: "Amgen Inc.", Price: 289.45, Sector: "Healthcare"},
	{Symbol: "ISRG", Name: "Intuitive Surgical", Price: 412.34, Sector: "Healthcare"},
	{Symbol: "MRNA", Name: "Moderna Inc.", Price: 112.34, Sector: "Healthcare"},

	// Consumer
	{Symbol: "HD", Name: "Home Depot", Price: 378.90, Sector: "Consumer"},
	{Symbol: "NKE", Name: "Nike Inc.", Price: 98.67, Sector: "Consumer"},
	{Symbol: "SBUX", Name: "Starbucks Corp.", Price: 92.34, Sector: "Consumer"},
	{Symbol: "BKNG", Name: "Booking Holdings", Price: 3678.90, Sector: "Consumer"},
	{Symbol: "CMG", Name: "Chipotle Mexican", Price: 2789.45, Sector: "Consumer"},
}

// LookupInstrument returns the catalog entry for a symbol.
func LookupInstrument(symbol string) (models.Instrument, bool) {
	for _, inst := range Catalog {
		if inst.Symbol == symbol {
			return inst, true
		}
	}
	return models.Instrument{}, false
}

// CatalogSource implements PriceSource over the static catalog.
// Prices drift with the simulated walk on each lookup so the ledger sees
// moving marks even without a live feed.
type CatalogSource struct {
	mu   sync.Mutex
	last map[string]float64
}

// NewCatalogSource creates a price source backed by the static catalog.
func NewCatalogSource() *CatalogSource {
	return &CatalogSource{
		last: make(map[string]float64),
	}
}

// GetPrice returns the drifted catalog price for a symbol.
func (s *CatalogSource) GetPrice(ctx context.Context, symbol string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.priceLocked(symbol)
}

// GetPrices returns drifted catalog prices for the given symbols. Unknown
// symbols are omitted.
func (s *CatalogSource) GetPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prices := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		price, err := s.priceLocked(symbol)
		if err != nil {
			continue
		}
		prices[symbol] = price
	}
	return prices, nil
}

func (s *CatalogSource) priceLocked(symbol string) (float64, error) {
	price, ok := s.last[symbol]
	if !ok {
		inst, found := LookupInstrument(symbol)
		if !found {
			return 0, errors.NewPriceError(symbol, "not in catalog", errors.ErrSymbolNotFound)
		}
		price = inst.Price
	}

	price, _ = SimulateWalk(price)
	s.last[symbol] = price
	return price, nil
}

var _ PriceSource = (*CatalogSource)(nil)
