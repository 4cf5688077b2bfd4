package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"paper-trader/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "portfolio.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testSnapshot(balance float64) models.Snapshot {
	stop := 5.0
	return models.Snapshot{
		Balance:        balance,
		InitialBalance: 10000,
		Positions: []*models.Position{
			{
				ID:           "pos-1",
				Symbol:       "AAPL",
				Name:         "Apple Inc.",
				Shares:       10,
				AvgPrice:     178.72,
				CurrentPrice: 180.10,
				StopLoss:     &stop,
			},
		},
		Trades: []*models.Trade{
			{
				ID:        "trade-1",
				Symbol:    "AAPL",
				Side:      models.TradeSideBuy,
				Shares:    10,
				Price:     178.72,
				Total:     1787.20,
				Status:    models.TradeCompleted,
				Timestamp: time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC),
			},
		},
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := testSnapshot(8212.80)
	if err := store.Save(ctx, "default", want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, found, err := store.Load(ctx, "default")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("expected snapshot to be found")
	}
	if got.Balance != want.Balance || got.InitialBalance != want.InitialBalance {
		t.Errorf("balances = %v/%v, want %v/%v",
			got.Balance, got.InitialBalance, want.Balance, want.InitialBalance)
	}
	if len(got.Positions) != 1 || len(got.Trades) != 1 {
		t.Fatalf("got %d positions, %d trades", len(got.Positions), len(got.Trades))
	}
	pos := got.Positions[0]
	if pos.Symbol != "AAPL" || pos.Shares != 10 || pos.AvgPrice != 178.72 {
		t.Errorf("unexpected position: %+v", pos)
	}
	if pos.StopLoss == nil || *pos.StopLoss != 5.0 {
		t.Errorf("stop loss not preserved: %v", pos.StopLoss)
	}
	trade := got.Trades[0]
	if trade.Side != models.TradeSideBuy || !trade.Timestamp.Equal(want.Trades[0].Timestamp) {
		t.Errorf("unexpected trade: %+v", trade)
	}
}

func TestSQLiteStoreMissingKey(t *testing.T) {
	store := newTestStore(t)

	_, found, err := store.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Error("expected found=false for a missing key")
	}
}

func TestSQLiteStoreUpsertReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "default", testSnapshot(9000)); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := store.Save(ctx, "default", testSnapshot(7500)); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, found, err := store.Load(ctx, "default")
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if got.Balance != 7500 {
		t.Errorf("balance = %v, want 7500 after upsert", got.Balance)
	}
}

func TestSQLiteStoreSessionsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "alpha", testSnapshot(1000)); err != nil {
		t.Fatalf("Save alpha: %v", err)
	}
	if err := store.Save(ctx, "beta", testSnapshot(2000)); err != nil {
		t.Fatalf("Save beta: %v", err)
	}

	if err := store.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, found, _ := store.Load(ctx, "alpha"); found {
		t.Error("alpha should be gone after delete")
	}
	got, found, err := store.Load(ctx, "beta")
	if err != nil || !found {
		t.Fatalf("Load beta: found=%v err=%v", found, err)
	}
	if got.Balance != 2000 {
		t.Errorf("beta balance = %v, want 2000", got.Balance)
	}
}
