package orderbook

import "fmt"

// New returns an empty book. The book has no locks: it must have a single mutator.
func New() *OrderBook {
	return &OrderBook{
		bids: newSideBook(true),
		asks: newSideBook(false),
	}
}

// Stamp assigns the next arrival sequence to an order being admitted.
func (ob *OrderBook) Stamp(order *Order) {
	ob.nextSeq++
	order.Seq = ob.nextSeq
}

// LastSeq returns the last arrival sequence handed out.
func (ob *OrderBook) LastSeq() uint64 {
	return ob.nextSeq
}

func (ob *OrderBook) Push(order *Order) {
	ob.side(order.Side).push(order)
}

// Best returns the highest-priority order on a side without removing it, or nil.
func (ob *OrderBook) Best(side Side) *Order {
	return ob.side(side).peek()
}

// PopBest removes and returns the highest-priority order on a side, or nil.
func (ob *OrderBook) PopBest(side Side) *Order {
	return ob.side(side).pop()
}

func (ob *OrderBook) BestBid() *Order {
	return ob.bids.peek()
}

func (ob *OrderBook) BestAsk() *Order {
	return ob.asks.peek()
}

// Crossed reports whether best bid price >= best ask price. Both sides must be non-empty.
func (ob *OrderBook) Crossed() bool {
	bid, ask := ob.bids.peek(), ob.asks.peek()
	if bid == nil || ask == nil {
		return false
	}
	return bid.Price.GreaterThanOrEqual(ask.Price)
}

// Lookup finds a resting order by id on either side.
func (ob *OrderBook) Lookup(id uint64) (*Order, bool) {
	if order, ok := ob.bids.get(id); ok {
		return order, true
	}
	return ob.asks.get(id)
}

func (ob *OrderBook) Contains(id uint64) bool {
	_, inBids := ob.bids.index[id]
	_, inAsks := ob.asks.index[id]
	return inBids || inAsks
}

// Remove deletes a resting order by id, resolving the side from the index rather than the caller.
func (ob *OrderBook) Remove(id uint64) (*Order, error) {
	if _, ok := ob.bids.index[id]; ok {
		return ob.bids.remove(id)
	}
	if _, ok := ob.asks.index[id]; ok {
		return ob.asks.remove(id)
	}
	return nil, ErrNotFound
}

// CheckReachable walks side in matching priority, without mutating it, until quantity is
// covered or eligible returns false, and fails if any visited order is not reachable by id.
func (ob *OrderBook) CheckReachable(side Side, quantity int64, eligible func(*Order) bool) error {
	var err error
	remaining := quantity
	ob.side(side).walk(func(pos int, order *Order) bool {
		if remaining <= 0 || !eligible(order) {
			return false
		}
		if found, ok := ob.Lookup(order.ID); !ok || found != order {
			foundID := uint64(0)
			if found != nil {
				foundID = found.ID
			}
			err = &InconsistencyError{
				OrderID:  order.ID,
				Position: pos,
				Detail:   fmt.Sprintf("resting order not reachable by id (found %d)", foundID),
			}
			return false
		}
		remaining -= order.Quantity
		return true
	})
	return err
}

func (ob *OrderBook) Len(side Side) int {
	return ob.side(side).Len()
}

func (ob *OrderBook) IsEmpty(side Side) bool {
	return ob.side(side).Len() == 0
}

// Verify checks both sides' heap and index invariants and that the book is not crossed.
func (ob *OrderBook) Verify() error {
	if err := ob.bids.verify(); err != nil {
		return err
	}
	if err := ob.asks.verify(); err != nil {
		return err
	}
	for id := range ob.bids.index {
		if _, dup := ob.asks.index[id]; dup {
			return &InconsistencyError{OrderID: id, Position: -1, Detail: "order present on both sides"}
		}
	}
	if ob.Crossed() {
		bid, ask := ob.bids.peek(), ob.asks.peek()
		return &InconsistencyError{OrderID: bid.ID, Position: 0, Detail: "book crossed at rest against ask " + ask.Price.String()}
	}
	return nil
}

func (ob *OrderBook) side(side Side) *sideBook {
	if side == SideBuy {
		return ob.bids
	}
	return ob.asks
}
