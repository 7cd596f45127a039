package engine

import (
	"errors"

	"matchbook/pkg/orderbook"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrDuplicateID    = errors.New("duplicate order id")
	ErrNotFound       = orderbook.ErrNotFound
	ErrEngineStopped  = errors.New("engine stopped")
)

// rejection converts a request error into the event reported for it.
func rejection(req Request, orderID uint64, err error) Event {
	var inconsistent *orderbook.InconsistencyError
	if errors.As(err, &inconsistent) {
		return InternalError{
			OrderID: orderID,
			Request: req.Type(),
			Message: err.Error(),
		}
	}

	reason := RejectInvalidRequest
	switch {
	case errors.Is(err, ErrDuplicateID):
		reason = RejectDuplicateID
	case errors.Is(err, ErrNotFound):
		reason = RejectNotFound
	}
	return OrderRejected{
		OrderID: orderID,
		Request: req.Type(),
		Reason:  reason,
		Message: err.Error(),
	}
}
