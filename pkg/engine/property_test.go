package engine

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"matchbook/pkg/obs"
	"matchbook/pkg/orderbook"
)

func restingTotal(e *Engine) int64 {
	return e.book.RestingQuantity(orderbook.SideBuy) + e.book.RestingQuantity(orderbook.SideSell)
}

func TestRandomizedRequestsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	e := New(&obs.Client{}, Options{})
	ctx := context.Background()
	var nextID uint64

	for step := 0; step < 4000; step++ {
		before := restingTotal(e)
		var events []Event
		var added int64

		switch op := rng.Intn(10); {
		case op < 6:
			nextID++
			side := orderbook.SideBuy
			if rng.Intn(2) == 0 {
				side = orderbook.SideSell
			}
			added = int64(1 + rng.Intn(20))
			events = e.Process(ctx, LimitOrder(nextID, side, added, px(int64(95+rng.Intn(11)))))
		case op < 7:
			nextID++
			side := orderbook.SideBuy
			if rng.Intn(2) == 0 {
				side = orderbook.SideSell
			}
			added = int64(1 + rng.Intn(20))
			events = e.Process(ctx, MarketOrder(nextID, side, added))
		default:
			if nextID == 0 {
				continue
			}
			events = e.Process(ctx, CancelOrderRequest{ID: uint64(rng.Int63n(int64(nextID))) + 1})
		}

		var traded, dropped, cancelled int64
		for _, event := range events {
			switch ev := event.(type) {
			case TradeEvent:
				traded += ev.Quantity
				if ev.MakerID == ev.TakerID {
					t.Fatalf("step %d: order traded with itself: %+v", step, ev)
				}
			case MarketRemainderCancelled:
				dropped += ev.Quantity
			case OrderCancelEvent:
				cancelled += ev.Quantity
			case InternalError:
				t.Fatalf("step %d: internal error: %+v", step, ev)
			}
		}

		after := restingTotal(e)
		if before+added != after+2*traded+dropped+cancelled {
			t.Fatalf("step %d: quantity not conserved: before=%d added=%d after=%d traded=%d dropped=%d cancelled=%d",
				step, before, added, after, traded, dropped, cancelled)
		}
		if err := e.book.Verify(); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
	}
}

func TestCancelKeepsRelativeOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	e := newTestEngine()
	ctx := context.Background()

	for id := uint64(1); id <= 200; id++ {
		e.Process(ctx, LimitOrder(id, orderbook.SideSell, int64(1+rng.Intn(5)), px(int64(100+rng.Intn(10)))))
	}

	for i := 0; i < 50; i++ {
		before := snapshotOf(t, e).Asks
		victim := before[rng.Intn(len(before))].ID
		events := e.Process(ctx, CancelOrderRequest{ID: victim})
		if len(events) != 1 || events[0].Type() != EventOrderCancelled {
			t.Fatalf("cancel %d: unexpected events %+v", victim, events)
		}

		after := snapshotOf(t, e).Asks
		if len(after) != len(before)-1 {
			t.Fatalf("cancel %d: expected %d asks, got %d", victim, len(before)-1, len(after))
		}
		j := 0
		for _, entry := range before {
			if entry.ID == victim {
				continue
			}
			if after[j].ID != entry.ID {
				t.Fatalf("cancel %d: order changed at %d: expected %d got %d", victim, j, entry.ID, after[j].ID)
			}
			j++
		}
	}
}

func TestRunAppliesConcurrentSubmissions(t *testing.T) {
	e := New(&obs.Client{}, Options{RequestBuffer: 8, EventBuffer: 8})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- e.Run(ctx) }()

	var drained []Event
	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		for event := range e.Events() {
			drained = append(drained, event)
		}
	}()

	const producers = 8
	const perProducer = 50
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				id := uint64(p*perProducer + i + 1)
				side := orderbook.SideBuy
				price := px(int64(90 + i%10))
				if id%2 == 0 {
					side = orderbook.SideSell
					price = px(int64(95 + i%10))
				}
				if _, err := e.Submit(ctx, LimitOrder(id, side, 1, price)); err != nil {
					t.Errorf("submit %d: %v", id, err)
					return
				}
			}
		}(p)
	}
	wg.Wait()

	events, err := e.Submit(ctx, SnapshotRequest{})
	if err != nil {
		t.Fatalf("snapshot submit: %v", err)
	}
	snap := events[0].(OrderBookSnapshot)
	if len(snap.Bids) > 0 && len(snap.Asks) > 0 && !snap.Bids[0].Price.LessThan(snap.Asks[0].Price) {
		t.Fatalf("book crossed at rest: bid=%s ask=%s", snap.Bids[0].Price, snap.Asks[0].Price)
	}

	var resting int64
	for _, entry := range append(snap.Bids, snap.Asks...) {
		resting += entry.Quantity
	}

	cancel()
	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("engine did not stop")
	}
	<-drainDone

	var traded int64
	for _, event := range drained {
		if trade, ok := event.(TradeEvent); ok {
			traded += trade.Quantity
		}
	}
	if resting+2*traded != producers*perProducer {
		t.Fatalf("expected %d units accounted for, got resting=%d traded=%d", producers*perProducer, resting, traded)
	}

	if _, err := e.Submit(context.Background(), SnapshotRequest{}); err != ErrEngineStopped {
		t.Fatalf("expected ErrEngineStopped after shutdown, got %v", err)
	}
}

func TestSubmitHonoursContext(t *testing.T) {
	e := New(&obs.Client{}, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// nothing is running, so the unbuffered request channel can never accept
	if _, err := e.Submit(ctx, SnapshotRequest{}); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
