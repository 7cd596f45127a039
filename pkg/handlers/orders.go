package handlers

import (
	"errors"

	"matchbook/pkg/engine"
	"matchbook/pkg/orderbook"
	"matchbook/schemas"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) PostOrder(c *fiber.Ctx) error {
	var req schemas.PostOrderRequest
	ctx := c.UserContext()

	if err := c.BodyParser(&req); err != nil {
		h.obs.LogErr(ctx, "order.post: invalid request body err=%v", err)
		return badRequest(c, errors.New("invalid request body"))
	}

	add := engine.AddOrderRequest{
		ID:       req.ID,
		Side:     orderbook.Side(req.Side),
		Quantity: req.Quantity,
		Price:    req.Price,
	}
	h.obs.LogInfo(ctx, "order.post: id=%d side=%s quantity=%d market=%t", add.ID, add.Side, add.Quantity, add.IsMarket())

	events, err := h.engine.Submit(ctx, add)
	if err != nil {
		h.obs.LogAlert(ctx, "order.post submit failed: id=%d err=%v", add.ID, err)
		return temporaryUnavailable(c, err)
	}
	if failed := h.failure(c, events); failed != nil {
		return failed()
	}

	h.obs.LogInfo(ctx, "order.post done: id=%d events=%d", add.ID, len(events))
	return jsonResponse(c, fiber.StatusOK, orderResponse(events))
}

func (h *Handler) CancelOrder(c *fiber.Ctx) error {
	var req schemas.CancelOrderRequest
	ctx := c.UserContext()

	if err := c.BodyParser(&req); err != nil {
		h.obs.LogErr(ctx, "order.cancel: invalid request body err=%v", err)
		return badRequest(c, errors.New("invalid request body"))
	}
	if req.ID == 0 {
		h.obs.LogErr(ctx, "order.cancel: id missing")
		return badRequest(c, errors.New("id is required"))
	}

	h.obs.LogInfo(ctx, "order.cancel: id=%d", req.ID)
	events, err := h.engine.Submit(ctx, engine.CancelOrderRequest{
		ID:       req.ID,
		Side:     orderbook.Side(req.Side),
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		h.obs.LogAlert(ctx, "order.cancel submit failed: id=%d err=%v", req.ID, err)
		return temporaryUnavailable(c, err)
	}
	if failed := h.failure(c, events); failed != nil {
		return failed()
	}

	h.obs.LogInfo(ctx, "order.cancel done: id=%d", req.ID)
	return jsonResponse(c, fiber.StatusOK, orderResponse(events))
}

// failure picks the error response for the first rejection or internal error in events, if any.
func (h *Handler) failure(c *fiber.Ctx, events []engine.Event) func() error {
	for _, event := range events {
		switch e := event.(type) {
		case engine.InternalError:
			h.obs.LogAlert(c.UserContext(), "order.request internal error: id=%d msg=%s", e.OrderID, e.Message)
			return func() error { return internalServerError(c) }
		case engine.OrderRejected:
			err := errors.New(e.Message)
			switch e.Reason {
			case engine.RejectNotFound:
				return func() error { return notFound(c, err) }
			case engine.RejectDuplicateID:
				return func() error { return duplicate(c, err) }
			default:
				return func() error { return badRequest(c, err) }
			}
		}
	}
	return nil
}

func orderResponse(events []engine.Event) schemas.OrderResponse {
	payload := make([]schemas.Event, 0, len(events))
	for _, event := range events {
		payload = append(payload, schemas.Event{
			Type:  string(event.Type()),
			Event: event,
		})
	}
	return schemas.OrderResponse{Events: payload}
}
