// Package ledger implements the portfolio ledger: cash balance, open
// positions, the append-only trade log, and the periodic auto-close sweep.
package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"paper-trader/internal/errors"
	"paper-trader/internal/logging"
	"paper-trader/internal/models"
	"paper-trader/internal/pricing"
)

// SellPricePolicy chooses the execution price for sells.
type SellPricePolicy string

const (
	// SellAtMark executes sells at the ledger's last mark price. This is
	// the original simulator behavior: responsive, but the mark can be a
	// few seconds stale relative to a live feed.
	SellAtMark SellPricePolicy = "mark"
	// SellAtQuote fetches a fresh quote before executing the sell.
	SellAtQuote SellPricePolicy = "quote"
)

// ThresholdMode selects how a risk threshold update applies on a repeat buy.
type ThresholdMode int

const (
	// ThresholdKeep leaves any existing threshold untouched.
	ThresholdKeep ThresholdMode = iota
	// ThresholdSet replaces the threshold with a new percentage.
	ThresholdSet
	// ThresholdClear removes the threshold.
	ThresholdClear
)

// Threshold is a tri-state stop-loss/take-profit update. The zero value
// keeps the existing setting, so an omitted threshold never clears one.
type Threshold struct {
	Mode    ThresholdMode
	Percent float64
}

// KeepThreshold leaves the existing threshold unchanged.
func KeepThreshold() Threshold { return Threshold{Mode: ThresholdKeep} }

// SetThreshold sets the threshold to the given percentage.
func SetThreshold(percent float64) Threshold {
	return Threshold{Mode: ThresholdSet, Percent: percent}
}

// ClearThreshold removes the threshold.
func ClearThreshold() Threshold { return Threshold{Mode: ThresholdClear} }

func (t Threshold) apply(current *float64) *float64 {
	switch t.Mode {
	case ThresholdSet:
		v := t.Percent
		return &v
	case ThresholdClear:
		return nil
	default:
		return current
	}
}

// Config holds ledger configuration.
type Config struct {
	InitialBalance  float64
	Source          pricing.PriceSource
	SellPricePolicy SellPricePolicy
	TradeRetention  int // persisted trade cap, 0 = unbounded
	Logger          zerolog.Logger

	// Persist is invoked with a snapshot after every mutation. It must not
	// block; persistence is eventual, not synchronous.
	Persist func(models.Snapshot)

	// ResolveName maps a symbol to a display name for new positions.
	ResolveName func(symbol string) string
}

// Ledger is the aggregate root owning cash, positions, and the trade log.
// All mutations are serialized behind one mutex so the sweep and user
// operations never observe a half-applied mutation.
type Ledger struct {
	mu             sync.Mutex
	balance        float64
	initialBalance float64
	positions      map[string]*models.Position
	trades         []*models.Trade

	source      pricing.PriceSource
	sellPolicy  SellPricePolicy
	retention   int
	logger      zerolog.Logger
	persist     func(models.Snapshot)
	resolveName func(symbol string) string
	now         func() time.Time
	newID       func() string
}

// New creates a ledger with the given configuration.
func New(cfg Config) *Ledger {
	if cfg.SellPricePolicy == "" {
		cfg.SellPricePolicy = SellAtMark
	}

	return &Ledger{
		balance:        cfg.InitialBalance,
		initialBalance: cfg.InitialBalance,
		positions:      make(map[string]*models.Position),
		source:         cfg.Source,
		sellPolicy:     cfg.SellPricePolicy,
		retention:      cfg.TradeRetention,
		logger:         cfg.Logger,
		persist:        cfg.Persist,
		resolveName:    cfg.ResolveName,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// Buy purchases shares of a symbol at the current source price. A repeat buy
// of a held symbol merges into the existing position at the weighted-average
// cost basis. No partial fills: a buy that exceeds the balance fails whole.
func (l *Ledger) Buy(ctx context.Context, symbol string, shares int, stopLoss, takeProfit Threshold) (*models.Trade, error) {
	if shares <= 0 {
		return nil, errors.NewTradeError(symbol, "buy", "share count must be a positive integer", errors.ErrInvalidQuantity)
	}

	price, err := l.fetchPrice(ctx, symbol)
	if err != nil {
		return nil, errors.NewTradeError(symbol, "buy", "no tradable price", err)
	}

	l.mu.Lock()
	cost := price * float64(shares)
	if cost > l.balance {
		l.mu.Unlock()
		return nil, errors.NewTradeError(symbol, "buy", "cost exceeds available cash", errors.ErrInsufficientFunds)
	}
	l.balance -= cost

	if pos, ok := l.positions[symbol]; ok {
		totalShares := pos.Shares + shares
		pos.AvgPrice = (float64(pos.Shares)*pos.AvgPrice + float64(shares)*price) / float64(totalShares)
		pos.Shares = totalShares
		pos.CurrentPrice = price
		pos.StopLoss = stopLoss.apply(pos.StopLoss)
		pos.TakeProfit = takeProfit.apply(pos.TakeProfit)
	} else {
		l.positions[symbol] = &models.Position{
			ID:           l.newID(),
			Symbol:       symbol,
			Name:         l.lookupName(symbol),
			Shares:       shares,
			AvgPrice:     price,
			CurrentPrice: price,
			StopLoss:     stopLoss.apply(nil),
			TakeProfit:   takeProfit.apply(nil),
		}
	}

	trade := l.appendTradeLocked(symbol, models.TradeSideBuy, shares, price, models.TradeCompleted, "")
	snap := l.snapshotLocked()
	l.mu.Unlock()

	logging.LogTrade(l.logger, symbol, string(models.TradeSideBuy), shares, price)
	l.notify(snap)
	return trade, nil
}

// Sell liquidates shares of an open position. Under the default mark policy
// the execution price is the ledger's last mark, not a fresh quote. Selling
// the full share count removes the position entirely.
func (l *Ledger) Sell(ctx context.Context, symbol string, shares int) (*models.Trade, error) {
	if shares <= 0 {
		return nil, errors.NewTradeError(symbol, "sell", "share count must be a positive integer", errors.ErrInvalidQuantity)
	}

	var quote float64
	if l.sellPolicy == SellAtQuote {
		price, err := l.fetchPrice(ctx, symbol)
		if err != nil {
			return nil, errors.NewTradeError(symbol, "sell", "no tradable price", err)
		}
		quote = price
	}

	l.mu.Lock()
	pos, ok := l.positions[symbol]
	if !ok {
		l.mu.Unlock()
		return nil, errors.NewTradeError(symbol, "sell", "no open position", errors.ErrPositionNotFound)
	}
	if shares > pos.Shares {
		l.mu.Unlock()
		return nil, errors.NewTradeError(symbol, "sell", "more shares than held", errors.ErrInsufficientShares)
	}

	price := pos.CurrentPrice
	if l.sellPolicy == SellAtQuote {
		price = quote
		pos.CurrentPrice = quote
	}

	l.balance += price * float64(shares)
	pos.Shares -= shares
	if pos.Shares == 0 {
		delete(l.positions, symbol)
	}

	trade := l.appendTradeLocked(symbol, models.TradeSideSell, shares, price, models.TradeCompleted, "")
	snap := l.snapshotLocked()
	l.mu.Unlock()

	logging.LogTrade(l.logger, symbol, string(models.TradeSideSell), shares, price)
	l.notify(snap)
	return trade, nil
}

// Reset clears positions and trades and sets both balances to newBalance.
// Bounds on newBalance are a caller concern.
func (l *Ledger) Reset(newBalance float64) {
	l.mu.Lock()
	l.balance = newBalance
	l.initialBalance = newBalance
	l.positions = make(map[string]*models.Position)
	l.trades = nil
	snap := l.snapshotLocked()
	l.mu.Unlock()

	l.logger.Info().Float64("balance", newBalance).Msg("Portfolio reset")
	l.notify(snap)
}

// Balance returns the available cash.
func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// InitialBalance returns the balance set at the last reset.
func (l *Ledger) InitialBalance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.initialBalance
}

// Position returns a copy of the open position for a symbol.
func (l *Ledger) Position(symbol string) (*models.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pos, ok := l.positions[symbol]
	if !ok {
		return nil, false
	}
	return pos.Clone(), true
}

// Positions returns copies of all open positions, sorted by symbol.
func (l *Ledger) Positions() []*models.Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*models.Position, 0, len(l.positions))
	for _, pos := range l.positions {
		out = append(out, pos.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Trades returns copies of the trade log in reverse-chronological order.
func (l *Ledger) Trades() []*models.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*models.Trade, len(l.trades))
	for i, t := range l.trades {
		c := *t
		out[len(l.trades)-1-i] = &c
	}
	return out
}

// Summary holds the derived portfolio metrics.
type Summary struct {
	Balance         float64
	InitialBalance  float64
	PortfolioValue  float64
	TotalValue      float64
	TotalPnL        float64
	TotalPnLPercent float64
	OpenPositions   int
}

// Summarize computes the derived metrics at the current marks.
func (l *Ledger) Summarize() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	var portfolioValue float64
	for _, pos := range l.positions {
		portfolioValue += pos.MarketValue()
	}

	totalValue := l.balance + portfolioValue
	totalPnL := totalValue - l.initialBalance
	var pnlPercent float64
	if l.initialBalance > 0 {
		pnlPercent = totalPnL / l.initialBalance * 100
	}

	return Summary{
		Balance:         l.balance,
		InitialBalance:  l.initialBalance,
		PortfolioValue:  portfolioValue,
		TotalValue:      totalValue,
		TotalPnL:        totalPnL,
		TotalPnLPercent: pnlPercent,
		OpenPositions:   len(l.positions),
	}
}

// fetchPrice asks the price source for a tradable price. Any source failure
// surfaces as ErrPriceUnavailable, never as a crash.
func (l *Ledger) fetchPrice(ctx context.Context, symbol string) (float64, error) {
	if l.source == nil {
		return 0, errors.ErrPriceUnavailable
	}
	price, err := l.source.GetPrice(ctx, symbol)
	if err != nil {
		return 0, errors.Wrap(errors.ErrPriceUnavailable, err.Error())
	}
	if price <= 0 {
		return 0, errors.ErrPriceUnavailable
	}
	return price, nil
}

func (l *Ledger) lookupName(symbol string) string {
	if l.resolveName == nil {
		return ""
	}
	return l.resolveName(symbol)
}

func (l *Ledger) appendTradeLocked(symbol string, side models.TradeSide, shares int, price float64, status models.TradeStatus, reason models.CloseReason) *models.Trade {
	trade := &models.Trade{
		ID:        l.newID(),
		Symbol:    symbol,
		Side:      side,
		Shares:    shares,
		Price:     price,
		Total:     price * float64(shares),
		Timestamp: l.now(),
		Status:    status,
		Reason:    reason,
	}
	l.trades = append(l.trades, trade)
	c := *trade
	return &c
}

func (l *Ledger) notify(snap models.Snapshot) {
	if l.persist != nil {
		l.persist(snap)
	}
}
