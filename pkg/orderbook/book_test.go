package orderbook

import (
	"errors"
	"testing"
)

func seededBook() *OrderBook {
	ob := New()
	for _, o := range []*Order{
		testOrder(1, SideSell, 1075, 1, 0),
		testOrder(2, SideSell, 1050, 10, 0),
		testOrder(3, SideSell, 1025, 2, 0),
		testOrder(4, SideSell, 1025, 5, 0),
		testOrder(5, SideBuy, 1000, 9, 0),
		testOrder(6, SideBuy, 1000, 1, 0),
		testOrder(7, SideBuy, 975, 30, 0),
		testOrder(8, SideBuy, 950, 10, 0),
	} {
		ob.Stamp(o)
		ob.Push(o)
	}
	return ob
}

func TestEnumerationUsesPriceThenArrival(t *testing.T) {
	ob := seededBook()

	asks := ob.Asks()
	wantAsks := []uint64{3, 4, 2, 1}
	for i, id := range wantAsks {
		if asks[i].ID != id {
			t.Fatalf("ask %d: expected order %d, got %d", i, id, asks[i].ID)
		}
	}

	bids := ob.Bids()
	wantBids := []uint64{5, 6, 7, 8}
	for i, id := range wantBids {
		if bids[i].ID != id {
			t.Fatalf("bid %d: expected order %d, got %d", i, id, bids[i].ID)
		}
	}

	if ob.Crossed() {
		t.Fatalf("expected seeded book to be uncrossed")
	}
	if err := ob.Verify(); err != nil {
		t.Fatalf("unexpected verify error: %v", err)
	}
}

func TestEnumerationDoesNotMutate(t *testing.T) {
	ob := seededBook()
	_ = ob.Asks()
	_ = ob.Bids()

	if ob.Len(SideSell) != 4 || ob.Len(SideBuy) != 4 {
		t.Fatalf("expected 4 orders per side, got asks=%d bids=%d", ob.Len(SideSell), ob.Len(SideBuy))
	}
	if ob.BestAsk().ID != 3 || ob.BestBid().ID != 5 {
		t.Fatalf("unexpected best orders ask=%d bid=%d", ob.BestAsk().ID, ob.BestBid().ID)
	}
}

func TestRemoveResolvesSideByID(t *testing.T) {
	ob := seededBook()

	removed, err := ob.Remove(8)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if removed.Side != SideBuy || removed.Quantity != 10 {
		t.Fatalf("unexpected removed order: %+v", removed)
	}
	if ob.Contains(8) {
		t.Fatalf("expected order 8 to be gone")
	}

	if _, err := ob.Remove(8); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}
	if err := ob.Verify(); err != nil {
		t.Fatalf("unexpected verify error: %v", err)
	}
}

func TestStampIsMonotonic(t *testing.T) {
	ob := New()
	var last uint64
	for i := 0; i < 10; i++ {
		o := &Order{}
		ob.Stamp(o)
		if o.Seq <= last {
			t.Fatalf("expected seq > %d, got %d", last, o.Seq)
		}
		last = o.Seq
	}
	if ob.LastSeq() != last {
		t.Fatalf("expected LastSeq %d, got %d", last, ob.LastSeq())
	}
}

func TestCrossedDetectsTouchingPrices(t *testing.T) {
	ob := New()
	bid := testOrder(1, SideBuy, 100, 1, 0)
	ask := testOrder(2, SideSell, 100, 1, 0)
	ob.Stamp(bid)
	ob.Push(bid)
	if ob.Crossed() {
		t.Fatalf("one-sided book cannot be crossed")
	}
	ob.Stamp(ask)
	ob.Push(ask)
	if !ob.Crossed() {
		t.Fatalf("expected equal best prices to count as crossed")
	}

	var inconsistent *InconsistencyError
	if err := ob.Verify(); !errors.As(err, &inconsistent) {
		t.Fatalf("expected Verify to flag crossed book, got %v", err)
	}
}

func TestRestingQuantity(t *testing.T) {
	ob := seededBook()
	if got := ob.RestingQuantity(SideSell); got != 18 {
		t.Fatalf("expected 18 resting on asks, got %d", got)
	}
	if got := ob.RestingQuantity(SideBuy); got != 50 {
		t.Fatalf("expected 50 resting on bids, got %d", got)
	}
}

func TestCheckReachableVisitsOnlyCrossingQuantity(t *testing.T) {
	ob := seededBook()

	var visited []uint64
	err := ob.CheckReachable(SideSell, 3, func(o *Order) bool {
		visited = append(visited, o.ID)
		return o.Price.IntPart() <= 1050
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 3 covers 2 of the quantity, 4 covers the rest; nothing past 4 is consulted
	if len(visited) != 2 || visited[0] != 3 || visited[1] != 4 {
		t.Fatalf("expected orders [3 4] to be visited, got %v", visited)
	}

	visited = visited[:0]
	if err := ob.CheckReachable(SideSell, 100, func(o *Order) bool {
		visited = append(visited, o.ID)
		return o.Price.IntPart() <= 1050
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1 at 1075 is visited and found ineligible
	if len(visited) != 4 || visited[2] != 2 || visited[3] != 1 {
		t.Fatalf("expected priority walk [3 4 2 1], got %v", visited)
	}
}

func TestCheckReachableDetectsBrokenIndexWithoutMutating(t *testing.T) {
	ob := seededBook()
	// order 4's index entry now points at order 3's slot
	ob.asks.index[4] = ob.asks.index[3]
	before := ob.RestingQuantity(SideSell)

	err := ob.CheckReachable(SideSell, 3, func(*Order) bool { return true })
	var inconsistent *InconsistencyError
	if !errors.As(err, &inconsistent) || inconsistent.OrderID != 4 {
		t.Fatalf("expected inconsistency for order 4, got %v", err)
	}
	if got := ob.RestingQuantity(SideSell); got != before || ob.Len(SideSell) != 4 {
		t.Fatalf("expected asks untouched, quantity %d -> %d", before, got)
	}
}
