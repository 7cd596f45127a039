// Package dispatch consumes the engine's event channel and hands every event to a set of sinks.
package dispatch

import (
	"context"
	"time"

	"matchbook/pkg/engine"
	"matchbook/pkg/obs"
)

type Sink interface {
	Name() string
	Deliver(ctx context.Context, event engine.Event) error
}

type Options struct {
	// DeliveryTimeout bounds each Deliver call. Zero means no bound.
	DeliveryTimeout time.Duration
}

// Dispatcher delivers events to sinks in emission order. A failing or slow sink is logged and
// skipped for that event; it never stalls the engine beyond DeliveryTimeout per sink.
type Dispatcher struct {
	sinks []Sink
	obs   *obs.Client
	opts  Options
}

func New(obs *obs.Client, opts Options, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		sinks: sinks,
		obs:   obs,
		opts:  opts,
	}
}

// Run reads until events is closed. Cancelling ctx makes remaining deliveries fail fast,
// so the channel still drains.
func (d *Dispatcher) Run(ctx context.Context, events <-chan engine.Event) {
	var delivered int64
	for event := range events {
		for _, sink := range d.sinks {
			if err := d.deliver(ctx, sink, event); err != nil {
				d.obs.LogErr(ctx, "dispatch.deliver.failed sink=%s type=%s err=%v", sink.Name(), event.Type(), err)
			}
		}
		delivered++
		if event.Type() == engine.EventInternalError {
			d.obs.LogAlert(ctx, "dispatch.internal_error event=%+v", event)
		}
	}
	d.obs.LogNotice(ctx, "dispatch.stopped delivered=%d", delivered)
}

func (d *Dispatcher) deliver(ctx context.Context, sink Sink, event engine.Event) error {
	if d.opts.DeliveryTimeout <= 0 {
		return sink.Deliver(ctx, event)
	}
	ctx, cancel := context.WithTimeout(ctx, d.opts.DeliveryTimeout)
	defer cancel()
	return sink.Deliver(ctx, event)
}
