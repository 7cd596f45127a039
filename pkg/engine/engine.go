package engine

import (
	"context"
	"sync/atomic"

	"matchbook/pkg/obs"
	"matchbook/pkg/orderbook"

	"github.com/google/uuid"
)

type Options struct {
	RequestBuffer int
	EventBuffer   int
	// VerifyEachRequest runs a full index/heap check after every request. O(n); debugging only.
	VerifyEachRequest bool
}

type envelope struct {
	id    string
	ctx   context.Context
	req   Request
	reply chan []Event
}

// Engine is the only mutator of its order book. Requests submitted from any number of
// goroutines are applied one at a time, in channel order, by the goroutine running Run.
type Engine struct {
	book     *orderbook.OrderBook
	obs      *obs.Client
	opts     Options
	requests chan envelope
	events   chan Event
	done     chan struct{}
	running  atomic.Bool
}

func New(obs *obs.Client, opts Options) *Engine {
	if opts.RequestBuffer < 0 {
		opts.RequestBuffer = 0
	}
	if opts.EventBuffer < 0 {
		opts.EventBuffer = 0
	}
	return &Engine{
		book:     orderbook.New(),
		obs:      obs,
		opts:     opts,
		requests: make(chan envelope, opts.RequestBuffer),
		events:   make(chan Event, opts.EventBuffer),
		done:     make(chan struct{}),
	}
}

// Events is the ordered event channel. It is closed when Run returns.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Run drains the request channel until ctx is cancelled. Each request's events are
// delivered on Events before the next request is taken.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return nil
	}
	defer close(e.events)
	defer close(e.done)

	e.obs.LogNotice(ctx, "engine.run.start request_buffer=%d event_buffer=%d", cap(e.requests), cap(e.events))
	for {
		select {
		case <-ctx.Done():
			e.obs.LogNotice(ctx, "engine.run.stop last_seq=%d", e.book.LastSeq())
			return ctx.Err()
		case env := <-e.requests:
			events := e.Process(env.ctx, env.req)
			for _, event := range events {
				select {
				case e.events <- event:
				case <-ctx.Done():
					env.reply <- events
					return ctx.Err()
				}
			}
			env.reply <- events
		}
	}
}

// Submit enqueues a request and waits until the engine has applied it.
func (e *Engine) Submit(ctx context.Context, req Request) ([]Event, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	env := envelope{
		id:    uuid.NewString(),
		ctx:   ctx,
		req:   req,
		reply: make(chan []Event, 1),
	}

	select {
	case e.requests <- env:
	case <-e.done:
		return nil, ErrEngineStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	e.obs.LogDebug(ctx, "engine.submit.enqueued envelope=%s type=%s", env.id, req.Type())

	// once enqueued the request will run to completion; waiting can still be abandoned
	select {
	case events := <-env.reply:
		return events, nil
	case <-e.done:
		select {
		case events := <-env.reply:
			return events, nil
		default:
			return nil, ErrEngineStopped
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Process applies one request to the book and returns the events it produced.
// It must only be called from a single goroutine; Run is that goroutine when running.
func (e *Engine) Process(ctx context.Context, req Request) []Event {
	var events []Event
	switch r := req.(type) {
	case AddOrderRequest:
		events = e.processAdd(ctx, r)
	case CancelOrderRequest:
		events = e.processCancel(ctx, r)
	case SnapshotRequest:
		events = []Event{e.snapshot()}
	default:
		e.obs.LogErr(ctx, "engine.process.unknown_request type=%T", req)
		return []Event{OrderRejected{
			Reason:  RejectInvalidRequest,
			Message: ErrInvalidRequest.Error() + ": unknown request type",
		}}
	}

	if e.opts.VerifyEachRequest {
		if err := e.book.Verify(); err != nil {
			e.obs.LogAlert(ctx, "engine.verify.failed type=%s err=%v", req.Type(), err)
			events = append(events, InternalError{Request: req.Type(), Message: err.Error()})
		}
	}
	return events
}

func (e *Engine) snapshot() OrderBookSnapshot {
	return OrderBookSnapshot{
		Asks: e.book.Asks(),
		Bids: e.book.Bids(),
	}
}
