package orderbook

import (
	"container/heap"
	"fmt"
	"sort"
)

// sideBook holds one side's resting orders as a binary heap ordered by price, then arrival.
// index maps order id to heap slot and is updated in Swap, Push and Pop, so every element
// moved by heap.Fix/heap.Remove/heap.Push/heap.Pop keeps a valid entry.
type sideBook struct {
	orders []*Order
	index  map[uint64]int
	isBid  bool
}

func newSideBook(isBid bool) *sideBook {
	return &sideBook{
		index: map[uint64]int{},
		isBid: isBid,
	}
}

func (h sideBook) Len() int {
	return len(h.orders)
}

func (h sideBook) Less(i, j int) bool {
	return h.before(h.orders[i], h.orders[j])
}

func (h sideBook) Swap(i, j int) {
	h.orders[i], h.orders[j] = h.orders[j], h.orders[i]
	h.index[h.orders[i].ID] = i
	h.index[h.orders[j].ID] = j
}

func (h *sideBook) Push(x any) {
	order := x.(*Order)
	h.index[order.ID] = len(h.orders)
	h.orders = append(h.orders, order)
}

func (h *sideBook) Pop() any {
	old := h.orders
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.orders = old[:n-1]
	delete(h.index, item.ID)
	return item
}

var _ heap.Interface = (*sideBook)(nil)

// before reports whether a has strictly higher priority than b.
func (h *sideBook) before(a, b *Order) bool {
	if cmp := a.Price.Cmp(b.Price); cmp != 0 {
		if h.isBid {
			return cmp > 0
		}
		return cmp < 0
	}
	return a.Seq < b.Seq
}

func (h *sideBook) push(order *Order) {
	heap.Push(h, order)
}

func (h *sideBook) peek() *Order {
	if len(h.orders) == 0 {
		return nil
	}
	return h.orders[0]
}

func (h *sideBook) pop() *Order {
	if len(h.orders) == 0 {
		return nil
	}
	return heap.Pop(h).(*Order)
}

func (h *sideBook) get(id uint64) (*Order, bool) {
	pos, ok := h.index[id]
	if !ok {
		return nil, false
	}
	if pos < 0 || pos >= len(h.orders) || h.orders[pos].ID != id {
		return nil, false
	}
	return h.orders[pos], true
}

// remove swaps the order with the last slot and re-sifts from the swap point.
func (h *sideBook) remove(id uint64) (*Order, error) {
	pos, ok := h.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	if pos < 0 || pos >= len(h.orders) {
		return nil, &InconsistencyError{OrderID: id, Position: pos, Detail: fmt.Sprintf("slot out of range (len=%d)", len(h.orders))}
	}
	if found := h.orders[pos].ID; found != id {
		return nil, &InconsistencyError{OrderID: id, Position: pos, Detail: fmt.Sprintf("slot holds order %d", found)}
	}
	return heap.Remove(h, pos).(*Order), nil
}

// sorted returns the side's orders in matching priority without mutating the heap.
func (h *sideBook) sorted() []*Order {
	orders := make([]*Order, len(h.orders))
	copy(orders, h.orders)
	sort.Slice(orders, func(i, j int) bool {
		return h.before(orders[i], orders[j])
	})
	return orders
}

// verify checks heap order and that index and slots agree in both directions.
func (h *sideBook) verify() error {
	if len(h.index) != len(h.orders) {
		return &InconsistencyError{Position: -1, Detail: fmt.Sprintf("index has %d entries for %d orders", len(h.index), len(h.orders))}
	}
	for pos, order := range h.orders {
		if got, ok := h.index[order.ID]; !ok || got != pos {
			return &InconsistencyError{OrderID: order.ID, Position: pos, Detail: fmt.Sprintf("index points to %d", got)}
		}
		if order.Quantity <= 0 {
			return &InconsistencyError{OrderID: order.ID, Position: pos, Detail: fmt.Sprintf("non-positive quantity %d", order.Quantity)}
		}
		if pos > 0 {
			parent := (pos - 1) / 2
			if h.before(order, h.orders[parent]) {
				return &InconsistencyError{OrderID: order.ID, Position: pos, Detail: "heap order violated"}
			}
		}
	}
	return nil
}

// walk visits orders in matching priority without mutating the heap, expanding the heap
// tree best-first. It stops as soon as visit returns false, so it costs O(k log k) for k visits.
func (h *sideBook) walk(visit func(pos int, order *Order) bool) {
	if len(h.orders) == 0 {
		return
	}
	frontier := &slotQueue{book: h, slots: []int{0}}
	for frontier.Len() > 0 {
		pos := heap.Pop(frontier).(int)
		if !visit(pos, h.orders[pos]) {
			return
		}
		for _, child := range [2]int{2*pos + 1, 2*pos + 2} {
			if child < len(h.orders) {
				heap.Push(frontier, child)
			}
		}
	}
}

// slotQueue orders heap slots by the priority of the orders they hold.
type slotQueue struct {
	book  *sideBook
	slots []int
}

func (q slotQueue) Len() int { return len(q.slots) }

func (q slotQueue) Less(i, j int) bool {
	return q.book.before(q.book.orders[q.slots[i]], q.book.orders[q.slots[j]])
}

func (q slotQueue) Swap(i, j int) { q.slots[i], q.slots[j] = q.slots[j], q.slots[i] }

func (q *slotQueue) Push(x any) { q.slots = append(q.slots, x.(int)) }

func (q *slotQueue) Pop() any {
	old := q.slots
	n := len(old)
	slot := old[n-1]
	q.slots = old[:n-1]
	return slot
}
