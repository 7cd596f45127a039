package schemas

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostOrderRequest admits a limit order when price is present and a market order when it is omitted or null.
type PostOrderRequest struct {
	ID       uint64              `json:"id"`
	Side     string              `json:"side"`
	Quantity int64               `json:"quantity"`
	Price    decimal.NullDecimal `json:"price"`
}

// CancelOrderRequest is resolved by id; side, quantity and price are informational.
type CancelOrderRequest struct {
	ID       uint64              `json:"id"`
	Side     string              `json:"side,omitempty"`
	Quantity int64               `json:"quantity,omitempty"`
	Price    decimal.NullDecimal `json:"price"`
}

type Event struct {
	Type  string      `json:"type"`
	Event interface{} `json:"event"`
}

type OrderResponse struct {
	Events []Event `json:"events"`
}

type BookEntry struct {
	ID       uint64          `json:"id"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

type BookResponse struct {
	Asks []BookEntry `json:"asks"`
	Bids []BookEntry `json:"bids"`
}

type LoggedEvent struct {
	Seq   int64       `json:"seq"`
	Type  string      `json:"type"`
	At    time.Time   `json:"at"`
	Event interface{} `json:"event"`
}

type EventsResponse struct {
	LastSeq int64         `json:"lastSeq"`
	Events  []LoggedEvent `json:"events"`
}
