// Package pricing provides price sources for the portfolio ledger.
//
// The ledger consumes prices through the narrow PriceSource interface and is
// agnostic to whether they come from the static catalog or a live feed.
package pricing

import (
	"context"
)

// PriceSource supplies best-effort fresh prices for symbols.
type PriceSource interface {
	// GetPrice returns a current tradable price for the symbol.
	GetPrice(ctx context.Context, symbol string) (float64, error)

	// GetPrices returns current prices for a set of symbols. Symbols the
	// source cannot price are omitted from the result rather than failing
	// the whole batch.
	GetPrices(ctx context.Context, symbols []string) (map[string]float64, error)
}
