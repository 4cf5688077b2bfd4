package models

import "time"

// Trade represents an immutable entry in the trade log.
// Trades are append-only; insertion order is the source of truth.
type Trade struct {
	ID        string      `json:"id" csv:"id"`
	Symbol    string      `json:"symbol" csv:"symbol"`
	Side      TradeSide   `json:"type" csv:"side"`
	Shares    int         `json:"shares" csv:"shares"`
	Price     float64     `json:"price" csv:"price"`
	Total     float64     `json:"total" csv:"total"`
	Timestamp time.Time   `json:"timestamp" csv:"timestamp"`
	Status    TradeStatus `json:"status" csv:"status"`
	Reason    CloseReason `json:"reason,omitempty" csv:"reason"`
}

// Snapshot is the persisted state of a portfolio ledger, keyed by session.
// Timestamps serialize as RFC 3339 strings.
type Snapshot struct {
	Balance        float64     `json:"balance"`
	InitialBalance float64     `json:"initialBalance"`
	Positions      []*Position `json:"positions"`
	Trades         []*Trade    `json:"trades"`
}
