package engine

import (
	"matchbook/pkg/orderbook"

	"github.com/shopspring/decimal"
)

type RequestType string

const (
	RequestAdd      RequestType = "add"
	RequestCancel   RequestType = "cancel"
	RequestSnapshot RequestType = "snapshot"
)

// Request is one of AddOrderRequest, CancelOrderRequest or SnapshotRequest.
type Request interface {
	Type() RequestType
}

// AddOrderRequest admits a limit order when Price is valid and a market order otherwise.
type AddOrderRequest struct {
	ID       uint64              `json:"id"`
	Side     orderbook.Side      `json:"side"`
	Quantity int64               `json:"quantity"`
	Price    decimal.NullDecimal `json:"price"`
}

func (AddOrderRequest) Type() RequestType { return RequestAdd }

func (r AddOrderRequest) IsMarket() bool { return !r.Price.Valid }

// CancelOrderRequest is resolved by ID only. Side, Quantity and Price are advisory.
type CancelOrderRequest struct {
	ID       uint64              `json:"id"`
	Side     orderbook.Side      `json:"side,omitempty"`
	Quantity int64               `json:"quantity,omitempty"`
	Price    decimal.NullDecimal `json:"price"`
}

func (CancelOrderRequest) Type() RequestType { return RequestCancel }

type SnapshotRequest struct{}

func (SnapshotRequest) Type() RequestType { return RequestSnapshot }

// LimitOrder builds an add request with a limit price.
func LimitOrder(id uint64, side orderbook.Side, quantity int64, price decimal.Decimal) AddOrderRequest {
	return AddOrderRequest{
		ID:       id,
		Side:     side,
		Quantity: quantity,
		Price:    decimal.NewNullDecimal(price),
	}
}

// MarketOrder builds an add request without a price.
func MarketOrder(id uint64, side orderbook.Side, quantity int64) AddOrderRequest {
	return AddOrderRequest{
		ID:       id,
		Side:     side,
		Quantity: quantity,
	}
}
