package orderbook

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("order not found")

// InconsistencyError means the identity index and the heap disagree.
type InconsistencyError struct {
	OrderID  uint64
	Position int
	Detail   string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("order book index inconsistent: order_id=%d position=%d: %s", e.OrderID, e.Position, e.Detail)
}
