package orderbook

// Asks lists resting asks in matching priority: lowest price first, then earliest arrival.
func (ob *OrderBook) Asks() []Entry {
	return collectEntries(ob.asks)
}

// Bids lists resting bids in matching priority: highest price first, then earliest arrival.
func (ob *OrderBook) Bids() []Entry {
	return collectEntries(ob.bids)
}

// RestingQuantity sums the quantity resting on one side.
func (ob *OrderBook) RestingQuantity(side Side) int64 {
	var total int64
	for _, order := range ob.side(side).orders {
		total += order.Quantity
	}
	return total
}

func collectEntries(side *sideBook) []Entry {
	orders := side.sorted()
	entries := make([]Entry, 0, len(orders))
	for _, order := range orders {
		entries = append(entries, Entry{
			Side:     order.Side,
			ID:       order.ID,
			Price:    order.Price,
			Quantity: order.Quantity,
		})
	}
	return entries
}
