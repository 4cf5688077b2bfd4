package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"paper-trader/internal/logging"
	"paper-trader/internal/models"
	"paper-trader/internal/pricing"
)

// Sweep refreshes the mark price of every open position and auto-closes the
// ones crossing their stop-loss or take-profit threshold. Stop-loss is
// checked before take-profit; first match wins. A symbol the price source
// cannot refresh falls back to a simulated walk of its last mark, so one bad
// symbol never aborts the sweep for the rest.
func (l *Ledger) Sweep(ctx context.Context) {
	l.mu.Lock()
	symbols := make([]string, 0, len(l.positions))
	for symbol := range l.positions {
		symbols = append(symbols, symbol)
	}
	l.mu.Unlock()

	if len(symbols) == 0 {
		return
	}

	// Refresh prices outside the lock; a slow feed must not stall sells.
	var prices map[string]float64
	if l.source != nil {
		fetched, err := l.source.GetPrices(ctx, symbols)
		if err != nil {
			l.logger.Warn().Err(err).Msg("Sweep price refresh failed, walking last marks")
		}
		prices = fetched
	}

	l.mu.Lock()
	for symbol, pos := range l.positions {
		price, ok := prices[symbol]
		if !ok || price <= 0 {
			price, _ = pricing.SimulateWalk(pos.CurrentPrice)
		}
		pos.CurrentPrice = price

		pnlPercent := pos.PnLPercent()
		switch {
		case pos.StopLoss != nil && pnlPercent <= -*pos.StopLoss:
			l.closeLocked(pos, models.CloseReasonStopLoss)
		case pos.TakeProfit != nil && pnlPercent >= *pos.TakeProfit:
			l.closeLocked(pos, models.CloseReasonTakeProfit)
		}
	}
	snap := l.snapshotLocked()
	l.mu.Unlock()

	l.notify(snap)
}

// closeLocked liquidates a full position at its current mark. Unlike Sell
// this is system-initiated and carries the auto-closed status and a reason.
func (l *Ledger) closeLocked(pos *models.Position, reason models.CloseReason) {
	l.balance += pos.MarketValue()
	delete(l.positions, pos.Symbol)
	l.appendTradeLocked(pos.Symbol, models.TradeSideSell, pos.Shares, pos.CurrentPrice, models.TradeAutoClosed, reason)
	logging.LogAutoClose(l.logger, pos.Symbol, string(reason), pos.Shares, pos.CurrentPrice)
}

// Sweeper runs the auto-close sweep on a fixed period until stopped.
type Sweeper struct {
	ledger   *Ledger
	interval time.Duration
	logger   zerolog.Logger
	stop     chan struct{}
	done     chan struct{}
}

// NewSweeper creates a sweeper for the ledger.
func NewSweeper(l *Ledger, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Sweeper{
		ledger:   l,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in a goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug().Dur("interval", s.interval).Msg("Sweep started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.ledger.Sweep(ctx)
		}
	}
}

// Stop cancels the sweep timer and waits for the loop to exit, so the
// sweeper never operates on a torn-down ledger.
func (s *Sweeper) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
}
