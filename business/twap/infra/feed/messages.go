// Package feed sources TWAP price samples from live exchange streams or a
// simulated pool engine.
package feed

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// WSRequest is a WebSocket subscription request.
type WSRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

// StreamEvent is the combined-stream wrapper for stream messages.
type StreamEvent struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// EventTypeAggTrade identifies aggregate trade events.
const EventTypeAggTrade = "aggTrade"

// AggTradeEvent represents an aggregate trade event.
// Stream: <symbol>@aggTrade
type AggTradeEvent struct {
	EventType string `json:"e"` // "aggTrade"
	EventTime int64  `json:"E"` // Event time (ms)
	Symbol    string `json:"s"` // Symbol
	Price     string `json:"p"` // Price
	Quantity  string `json:"q"` // Quantity
	TradeTime int64  `json:"T"` // Trade time (ms)
}

// ParsePrice parses the price as decimal.
func (e *AggTradeEvent) ParsePrice() (decimal.Decimal, error) {
	return decimal.NewFromString(e.Price)
}

// Timestamp returns the trade time as time.Time.
func (e *AggTradeEvent) Timestamp() time.Time {
	return time.UnixMilli(e.TradeTime)
}

// TickerPriceResponse is the REST ticker price payload used by the fallback.
type TickerPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// ParsePrice parses the price as decimal.
func (r *TickerPriceResponse) ParsePrice() (decimal.Decimal, error) {
	return decimal.NewFromString(r.Price)
}
