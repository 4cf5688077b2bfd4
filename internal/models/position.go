package models

// Position represents an open holding of a single symbol.
// A symbol has at most one open position; repeat buys merge into it.
type Position struct {
	ID           string   `json:"id"`
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name,omitempty"`
	Shares       int      `json:"shares"`
	AvgPrice     float64  `json:"avgPrice"`
	CurrentPrice float64  `json:"currentPrice"`
	StopLoss     *float64 `json:"stopLoss,omitempty"`
	TakeProfit   *float64 `json:"takeProfit,omitempty"`
}

// MarketValue returns the position value at the last mark price.
func (p *Position) MarketValue() float64 {
	return float64(p.Shares) * p.CurrentPrice
}

// PnL returns the unrealized profit or loss at the last mark price.
func (p *Position) PnL() float64 {
	return (p.CurrentPrice - p.AvgPrice) * float64(p.Shares)
}

// PnLPercent returns the unrealized P&L as a percentage of cost basis.
func (p *Position) PnLPercent() float64 {
	if p.AvgPrice == 0 {
		return 0
	}
	return ((p.CurrentPrice - p.AvgPrice) / p.AvgPrice) * 100
}

// Clone returns a copy of the position safe to hand to callers.
func (p *Position) Clone() *Position {
	c := *p
	if p.StopLoss != nil {
		v := *p.StopLoss
		c.StopLoss = &v
	}
	if p.TakeProfit != nil {
		v := *p.TakeProfit
		c.TakeProfit = &v
	}
	return &c
}
