package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"paper-trader/internal/models"
)

func TestSweepStopLoss(t *testing.T) {
	source := newStubSource(map[string]float64{"AAPL": 100})
	l := newTestLedger(10000, source)
	ctx := context.Background()

	if _, err := l.Buy(ctx, "AAPL", 10, SetThreshold(5), SetThreshold(10)); err != nil {
		t.Fatal(err)
	}

	// -6% breaches the 5% stop-loss.
	source.set("AAPL", 94)
	l.Sweep(ctx)

	if _, ok := l.Position("AAPL"); ok {
		t.Fatal("position should be auto-closed")
	}
	// 9000 cash + 10*94 proceeds
	if got := l.Balance(); !almostEqual(got, 9940) {
		t.Errorf("balance = %v, want 9940", got)
	}

	trades := l.Trades()
	last := trades[0]
	if last.Status != models.TradeAutoClosed || last.Reason != models.CloseReasonStopLoss {
		t.Errorf("trade = %s/%s, want auto-closed/stop-loss", last.Status, last.Reason)
	}
	if last.Side != models.TradeSideSell || last.Shares != 10 || !almostEqual(last.Price, 94) {
		t.Errorf("trade = %s %d @ %v, want sell 10 @ 94", last.Side, last.Shares, last.Price)
	}
}

func TestSweepTakeProfit(t *testing.T) {
	source := newStubSource(map[string]float64{"AAPL": 100})
	l := newTestLedger(10000, source)
	ctx := context.Background()

	if _, err := l.Buy(ctx, "AAPL", 10, SetThreshold(5), SetThreshold(10)); err != nil {
		t.Fatal(err)
	}

	source.set("AAPL", 111)
	l.Sweep(ctx)

	if _, ok := l.Position("AAPL"); ok {
		t.Fatal("position should be auto-closed")
	}
	last := l.Trades()[0]
	if last.Status != models.TradeAutoClosed || last.Reason != models.CloseReasonTakeProfit {
		t.Errorf("trade = %s/%s, want auto-closed/take-profit", last.Status, last.Reason)
	}
	if got := l.Balance(); !almostEqual(got, 9000+1110) {
		t.Errorf("balance = %v, want 10110", got)
	}
}

func TestSweepBetweenThresholdsOnlyMarks(t *testing.T) {
	source := newStubSource(map[string]float64{"AAPL": 100})
	l := newTestLedger(10000, source)
	ctx := context.Background()

	if _, err := l.Buy(ctx, "AAPL", 10, SetThreshold(5), SetThreshold(10)); err != nil {
		t.Fatal(err)
	}

	source.set("AAPL", 97)
	l.Sweep(ctx)

	pos, ok := l.Position("AAPL")
	if !ok {
		t.Fatal("position should remain open at -3%")
	}
	if !almostEqual(pos.CurrentPrice, 97) {
		t.Errorf("mark = %v, want 97", pos.CurrentPrice)
	}
	if got := len(l.Trades()); got != 1 {
		t.Errorf("trade log = %d entries, want just the buy", got)
	}
}

func TestSweepWithoutThresholdsNeverCloses(t *testing.T) {
	source := newStubSource(map[string]float64{"AAPL": 100})
	l := newTestLedger(10000, source)
	ctx := context.Background()

	if _, err := l.Buy(ctx, "AAPL", 10, KeepThreshold(), KeepThreshold()); err != nil {
		t.Fatal(err)
	}

	source.set("AAPL", 10)
	l.Sweep(ctx)
	source.set("AAPL", 500)
	l.Sweep(ctx)

	if _, ok := l.Position("AAPL"); !ok {
		t.Error("position without thresholds must survive any price")
	}
}

func TestSweepFallsBackToWalkOnFeedFailure(t *testing.T) {
	source := newStubSource(map[string]float64{"AAPL": 100})
	l := newTestLedger(10000, source)
	ctx := context.Background()

	if _, err := l.Buy(ctx, "AAPL", 10, KeepThreshold(), KeepThreshold()); err != nil {
		t.Fatal(err)
	}

	source.fail(fmt.Errorf("upstream down"))
	l.Sweep(ctx)

	pos, ok := l.Position("AAPL")
	if !ok {
		t.Fatal("position should survive a feed failure")
	}
	// The walk perturbs by at most volatility of the prior mark.
	if pos.CurrentPrice < 100*(1-0.002) || pos.CurrentPrice > 100*(1+0.002) {
		t.Errorf("walked mark = %v, outside expected band around 100", pos.CurrentPrice)
	}
}

func TestSweepUnpricedSymbolDoesNotAbortOthers(t *testing.T) {
	source := newStubSource(map[string]float64{"AAPL": 100, "MSFT": 200})
	l := newTestLedger(100000, source)
	ctx := context.Background()

	if _, err := l.Buy(ctx, "AAPL", 1, KeepThreshold(), KeepThreshold()); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Buy(ctx, "MSFT", 1, SetThreshold(5), SetThreshold(10)); err != nil {
		t.Fatal(err)
	}

	// AAPL vanishes from the feed; MSFT hits its take-profit.
	source.mu.Lock()
	delete(source.prices, "AAPL")
	source.prices["MSFT"] = 225
	source.mu.Unlock()

	l.Sweep(ctx)

	if _, ok := l.Position("AAPL"); !ok {
		t.Error("unpriced position should remain open on walked mark")
	}
	if _, ok := l.Position("MSFT"); ok {
		t.Error("MSFT should have been auto-closed at +12.5%")
	}
}

func TestSweeperStartStop(t *testing.T) {
	source := newStubSource(map[string]float64{"AAPL": 100})
	l := newTestLedger(10000, source)
	ctx := context.Background()

	if _, err := l.Buy(ctx, "AAPL", 10, SetThreshold(5), KeepThreshold()); err != nil {
		t.Fatal(err)
	}

	sweeper := NewSweeper(l, 5*time.Millisecond, zerolog.Nop())
	sweeper.Start(ctx)

	source.set("AAPL", 90)
	deadline := time.After(2 * time.Second)
	for {
		if _, ok := l.Position("AAPL"); !ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("sweeper never closed the position")
		case <-time.After(5 * time.Millisecond):
		}
	}

	sweeper.Stop()

	last := l.Trades()[0]
	if last.Reason != models.CloseReasonStopLoss {
		t.Errorf("close reason = %s, want stop-loss", last.Reason)
	}
}
