package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"matchbook/pkg/engine"
	"matchbook/pkg/obs"
)

type recordingSink struct {
	name   string
	fail   bool
	events []engine.Event
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, event engine.Event) error {
	s.events = append(s.events, event)
	if s.fail {
		return errors.New("sink down")
	}
	return nil
}

func TestRunDeliversInOrderToEverySink(t *testing.T) {
	first := &recordingSink{name: "first"}
	broken := &recordingSink{name: "broken", fail: true}
	d := New(&obs.Client{}, Options{}, first, broken)

	events := make(chan engine.Event, 3)
	events <- engine.OrderFullyFilled{OrderID: 1}
	events <- engine.OrderPartiallyFilled{OrderID: 2, Remaining: 1}
	events <- engine.InternalError{Message: "boom"}
	close(events)

	d.Run(context.Background(), events)

	for _, sink := range []*recordingSink{first, broken} {
		if len(sink.events) != 3 {
			t.Fatalf("%s: expected 3 events, got %d", sink.name, len(sink.events))
		}
		if sink.events[0].(engine.OrderFullyFilled).OrderID != 1 {
			t.Fatalf("%s: expected emission order to be kept, got %+v", sink.name, sink.events)
		}
	}
}

// stallingSink blocks until its context ends, like a producer whose brokers are unreachable.
type stallingSink struct {
	errs []error
}

func (s *stallingSink) Name() string { return "stalling" }

func (s *stallingSink) Deliver(ctx context.Context, _ engine.Event) error {
	<-ctx.Done()
	s.errs = append(s.errs, ctx.Err())
	return ctx.Err()
}

func TestRunBoundsSlowSinks(t *testing.T) {
	stalled := &stallingSink{}
	after := &recordingSink{name: "after"}
	d := New(&obs.Client{}, Options{DeliveryTimeout: 10 * time.Millisecond}, stalled, after)

	events := make(chan engine.Event, 2)
	events <- engine.OrderFullyFilled{OrderID: 1}
	events <- engine.OrderFullyFilled{OrderID: 2}
	close(events)

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(context.Background(), events)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a stalled sink not to block delivery")
	}

	if len(stalled.errs) != 2 || !errors.Is(stalled.errs[0], context.DeadlineExceeded) {
		t.Fatalf("expected both deliveries to time out, got %v", stalled.errs)
	}
	if len(after.events) != 2 {
		t.Fatalf("expected later sinks to still receive every event, got %d", len(after.events))
	}
}

func TestRunDrainsFastOnceCancelled(t *testing.T) {
	stalled := &stallingSink{}
	d := New(&obs.Client{}, Options{}, stalled)

	events := make(chan engine.Event, 3)
	for id := uint64(1); id <= 3; id++ {
		events <- engine.OrderFullyFilled{OrderID: id}
	}
	close(events)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx, events)

	if len(stalled.errs) != 3 || !errors.Is(stalled.errs[2], context.Canceled) {
		t.Fatalf("expected every delivery to fail fast, got %v", stalled.errs)
	}
}
