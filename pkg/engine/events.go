package engine

import (
	"matchbook/pkg/orderbook"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventTrade                    EventType = "trade"
	EventOrderFullyFilled         EventType = "order_fully_filled"
	EventOrderPartiallyFilled     EventType = "order_partially_filled"
	EventOrderCancelled           EventType = "order_cancelled"
	EventOrderBookSnapshot        EventType = "order_book_snapshot"
	EventMarketRemainderCancelled EventType = "market_remainder_cancelled"
	EventOrderRejected            EventType = "order_rejected"
	EventInternalError            EventType = "internal_error"
)

type Event interface {
	Type() EventType
}

// TradeEvent is emitted once per matched pair, at the maker's limit price.
type TradeEvent struct {
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	MakerID   uint64          `json:"makerId"`
	TakerID   uint64          `json:"takerId"`
	TakerSide orderbook.Side  `json:"takerSide"`
}

func (TradeEvent) Type() EventType { return EventTrade }

type OrderFullyFilled struct {
	OrderID uint64 `json:"orderId"`
}

func (OrderFullyFilled) Type() EventType { return EventOrderFullyFilled }

type OrderPartiallyFilled struct {
	OrderID   uint64 `json:"orderId"`
	Remaining int64  `json:"remaining"`
}

func (OrderPartiallyFilled) Type() EventType { return EventOrderPartiallyFilled }

// OrderCancelEvent echoes the order's book state immediately before removal.
type OrderCancelEvent struct {
	OrderID  uint64          `json:"orderId"`
	Side     orderbook.Side  `json:"side"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func (OrderCancelEvent) Type() EventType { return EventOrderCancelled }

// OrderBookSnapshot lists both sides in matching priority.
type OrderBookSnapshot struct {
	Asks []orderbook.Entry `json:"asks"`
	Bids []orderbook.Entry `json:"bids"`
}

func (OrderBookSnapshot) Type() EventType { return EventOrderBookSnapshot }

// MarketRemainderCancelled reports market quantity left once the opposite side ran dry.
type MarketRemainderCancelled struct {
	OrderID  uint64         `json:"orderId"`
	Side     orderbook.Side `json:"side"`
	Quantity int64          `json:"quantity"`
}

func (MarketRemainderCancelled) Type() EventType { return EventMarketRemainderCancelled }

type RejectReason string

const (
	RejectInvalidRequest RejectReason = "invalid_request"
	RejectDuplicateID    RejectReason = "duplicate_id"
	RejectNotFound       RejectReason = "not_found"
)

// OrderRejected is a business rejection: bad input, never a defect.
type OrderRejected struct {
	OrderID uint64       `json:"orderId"`
	Request RequestType  `json:"request"`
	Reason  RejectReason `json:"reason"`
	Message string       `json:"message"`
}

func (OrderRejected) Type() EventType { return EventOrderRejected }

// InternalError signals that the book's index and heap disagree. Remaining is the
// incoming order's quantity that was neither traded nor rested when its request aborted.
type InternalError struct {
	OrderID   uint64      `json:"orderId"`
	Request   RequestType `json:"request"`
	Message   string      `json:"message"`
	Remaining int64       `json:"remaining,omitempty"`
}

func (InternalError) Type() EventType { return EventInternalError }
