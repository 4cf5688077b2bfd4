package pricing

import (
	"context"
	"math"
	"testing"

	"paper-trader/internal/errors"
)

func TestLookupInstrument(t *testing.T) {
	inst, ok := LookupInstrument("AAPL")
	if !ok {
		t.Fatal("expected AAPL in catalog")
	}
	if inst.Name != "Apple Inc." || inst.Price != 178.72 {
		t.Errorf("unexpected AAPL entry: %+v", inst)
	}

	if _, ok := LookupInstrument("NOPE"); ok {
		t.Error("expected NOPE to be absent from catalog")
	}
}

func TestCatalogSourceDriftsAroundSeedPrice(t *testing.T) {
	source := NewCatalogSource()
	ctx := context.Background()

	seed, _ := LookupInstrument("MSFT")
	price, err := source.GetPrice(ctx, "MSFT")
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	if math.Abs(price-seed.Price) > WalkVolatility*seed.Price+0.005 {
		t.Errorf("first price %v drifted too far from seed %v", price, seed.Price)
	}

	// Repeated lookups walk from the last price, not the seed.
	prev := price
	for i := 0; i < 50; i++ {
		next, err := source.GetPrice(ctx, "MSFT")
		if err != nil {
			t.Fatalf("GetPrice: %v", err)
		}
		if math.Abs(next-prev) > WalkVolatility*prev+0.005 {
			t.Fatalf("step %d moved %v -> %v, outside the walk band", i, prev, next)
		}
		prev = next
	}
}

func TestCatalogSourceUnknownSymbol(t *testing.T) {
	source := NewCatalogSource()

	_, err := source.GetPrice(context.Background(), "ZZZZ")
	if !errors.Is(err, errors.ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}
}

func TestCatalogSourceGetPricesOmitsUnknown(t *testing.T) {
	source := NewCatalogSource()

	prices, err := source.GetPrices(context.Background(), []string{"AAPL", "ZZZZ", "NVDA"})
	if err != nil {
		t.Fatalf("GetPrices: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("expected 2 prices, got %d: %v", len(prices), prices)
	}
	if _, ok := prices["ZZZZ"]; ok {
		t.Error("unknown symbol should be omitted")
	}
}
