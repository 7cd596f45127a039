package engine

import (
	"context"
	"fmt"

	"matchbook/pkg/orderbook"
)

func (e *Engine) processAdd(ctx context.Context, req AddOrderRequest) []Event {
	if err := e.validateAdd(req); err != nil {
		e.obs.LogInfo(ctx, "engine.add.rejected order_id=%d side=%s err=%v", req.ID, req.Side, err)
		return []Event{rejection(req, req.ID, err)}
	}

	incoming := &orderbook.Order{
		ID:       req.ID,
		Side:     req.Side,
		Type:     orderbook.TypeLimit,
		Quantity: req.Quantity,
	}
	if req.IsMarket() {
		incoming.Type = orderbook.TypeMarket
	} else {
		incoming.Price = req.Price.Decimal
	}
	e.book.Stamp(incoming)

	events, err := e.matchIncoming(ctx, incoming)
	if err != nil {
		e.obs.LogAlert(ctx, "engine.add.inconsistent order_id=%d trades=%d remaining=%d err=%v", incoming.ID, len(events), incoming.Quantity, err)
		event := rejection(req, req.ID, err)
		if internal, ok := event.(InternalError); ok {
			internal.Remaining = incoming.Quantity
			event = internal
		}
		return append(events, event)
	}

	if incoming.Quantity == 0 {
		if incoming.IsMarket() {
			events = append(events, OrderFullyFilled{OrderID: incoming.ID})
		}
		return events
	}

	if incoming.IsMarket() {
		e.obs.LogInfo(ctx, "engine.add.market_remainder order_id=%d side=%s remaining=%d", incoming.ID, incoming.Side, incoming.Quantity)
		return append(events, MarketRemainderCancelled{
			OrderID:  incoming.ID,
			Side:     incoming.Side,
			Quantity: incoming.Quantity,
		})
	}

	e.book.Push(incoming)
	e.obs.LogInfo(ctx, "engine.add.resting order_id=%d side=%s price=%s quantity=%d seq=%d", incoming.ID, incoming.Side, incoming.Price, incoming.Quantity, incoming.Seq)
	if incoming.Quantity < req.Quantity {
		events = append(events, OrderPartiallyFilled{OrderID: incoming.ID, Remaining: incoming.Quantity})
	}
	return events
}

func (e *Engine) validateAdd(req AddOrderRequest) error {
	if req.ID == 0 {
		return fmt.Errorf("%w: order id is required", ErrInvalidRequest)
	}
	if !req.Side.Valid() {
		return fmt.Errorf("%w: unknown side %q", ErrInvalidRequest, req.Side)
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be greater than 0, got %d", ErrInvalidRequest, req.Quantity)
	}
	if !req.IsMarket() && !req.Price.Decimal.IsPositive() {
		return fmt.Errorf("%w: limit price must be greater than 0, got %s", ErrInvalidRequest, req.Price.Decimal)
	}
	if e.book.Contains(req.ID) {
		return fmt.Errorf("%w: order %d is already resting", ErrDuplicateID, req.ID)
	}
	return nil
}

// matchIncoming trades the incoming order against the opposite side while it crosses.
// The book is uncrossed before the request, so the resting order is always the maker.
// Every maker the order can reach is checked before the first trade, so an inconsistency
// aborts the request with the book untouched.
func (e *Engine) matchIncoming(ctx context.Context, incoming *orderbook.Order) ([]Event, error) {
	var events []Event
	opposite := incoming.Side.Opposite()

	if err := e.book.CheckReachable(opposite, incoming.Quantity, func(resting *orderbook.Order) bool {
		return crosses(incoming, resting)
	}); err != nil {
		return nil, err
	}

	for incoming.Quantity > 0 {
		maker := e.book.Best(opposite)
		if maker == nil || !crosses(incoming, maker) {
			break
		}
		if found, ok := e.book.Lookup(maker.ID); !ok || found != maker {
			return events, &orderbook.InconsistencyError{
				OrderID:  maker.ID,
				Position: 0,
				Detail:   fmt.Sprintf("best order not reachable by id (found %d)", orderID(found)),
			}
		}

		matched := min(incoming.Quantity, maker.Quantity)
		incoming.Quantity -= matched
		maker.Quantity -= matched

		events = append(events, TradeEvent{
			Price:     maker.Price,
			Quantity:  matched,
			MakerID:   maker.ID,
			TakerID:   incoming.ID,
			TakerSide: incoming.Side,
		})
		e.obs.LogInfo(
			ctx,
			"engine.match taker=%d maker=%d side=%s price=%s matched=%d remaining_taker=%d remaining_maker=%d",
			incoming.ID,
			maker.ID,
			incoming.Side,
			maker.Price,
			matched,
			incoming.Quantity,
			maker.Quantity,
		)

		if maker.Quantity == 0 {
			e.book.PopBest(opposite)
		}

		bid, ask := incoming, maker
		if incoming.Side == orderbook.SideSell {
			bid, ask = maker, incoming
		}
		for _, order := range [2]*orderbook.Order{bid, ask} {
			if event := fillEvent(order, order == incoming); event != nil {
				events = append(events, event)
			}
		}
	}

	return events, nil
}

// fillEvent reports a matched order's new state. The taker only gets a per-match
// event when a limit order is fully filled; market takers are reported after matching.
func fillEvent(order *orderbook.Order, isTaker bool) Event {
	if isTaker {
		if order.Quantity == 0 && !order.IsMarket() {
			return OrderFullyFilled{OrderID: order.ID}
		}
		return nil
	}
	if order.Quantity == 0 {
		return OrderFullyFilled{OrderID: order.ID}
	}
	return OrderPartiallyFilled{OrderID: order.ID, Remaining: order.Quantity}
}

func crosses(incoming, resting *orderbook.Order) bool {
	if incoming.IsMarket() {
		return true
	}
	if incoming.Side == orderbook.SideBuy {
		return incoming.Price.GreaterThanOrEqual(resting.Price)
	}
	return incoming.Price.LessThanOrEqual(resting.Price)
}

func orderID(order *orderbook.Order) uint64 {
	if order == nil {
		return 0
	}
	return order.ID
}

func (e *Engine) processCancel(ctx context.Context, req CancelOrderRequest) []Event {
	removed, err := e.book.Remove(req.ID)
	if err != nil {
		e.obs.LogInfo(ctx, "engine.cancel.failed order_id=%d err=%v", req.ID, err)
		return []Event{rejection(req, req.ID, err)}
	}

	if req.Side != "" && req.Side != removed.Side {
		e.obs.LogInfo(ctx, "engine.cancel.side_mismatch order_id=%d requested=%s resting=%s", req.ID, req.Side, removed.Side)
	}
	e.obs.LogInfo(ctx, "engine.cancel.done order_id=%d side=%s size_cancelled=%d", removed.ID, removed.Side, removed.Quantity)

	return []Event{OrderCancelEvent{
		OrderID:  removed.ID,
		Side:     removed.Side,
		Quantity: removed.Quantity,
		Price:    removed.Price,
	}}
}
