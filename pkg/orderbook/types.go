package orderbook

import (
	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

type OrderType string

const (
	TypeLimit  OrderType = "limit"
	TypeMarket OrderType = "market"
)

// Order is one resting or in-flight order. Quantity is mutated in place by matching.
type Order struct {
	ID       uint64          `json:"id"`
	Side     Side            `json:"side"`
	Type     OrderType       `json:"type"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"` // zero for market orders
	Seq      uint64          `json:"seq"`   // arrival sequence, assigned at admission
}

func (o *Order) IsMarket() bool {
	return o.Type == TypeMarket
}

// Entry is one line of a point-in-time book enumeration.
type Entry struct {
	Side     Side            `json:"side"`
	ID       uint64          `json:"id"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

type OrderBook struct {
	bids    *sideBook
	asks    *sideBook
	nextSeq uint64
}
