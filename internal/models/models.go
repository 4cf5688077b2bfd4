// Package models provides domain models for the paper-trading simulator.
package models

import (
	"time"
)

// TradeSide represents the side of a trade.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// TradeStatus represents how a trade was executed.
type TradeStatus string

const (
	// TradeCompleted marks a user-initiated trade.
	TradeCompleted TradeStatus = "completed"
	// TradeAutoClosed marks a system-initiated liquidation.
	TradeAutoClosed TradeStatus = "auto-closed"
)

// CloseReason explains why a position was auto-closed.
type CloseReason string

const (
	CloseReasonStopLoss   CloseReason = "stop-loss"
	CloseReasonTakeProfit CloseReason = "take-profit"
)

// Quote represents a market quote from the price feed.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Open          float64   `json:"open"`
	PreviousClose float64   `json:"previousClose"`
	Timestamp     time.Time `json:"timestamp"`
}

// Instrument represents a tradeable instrument from the static catalog.
type Instrument struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Sector string  `json:"sector,omitempty"`
}
