package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"matchbook/pkg/engine"
	"matchbook/pkg/eventlog"
	"matchbook/pkg/orderbook"
	"matchbook/pkg/render"
	"matchbook/schemas"

	"github.com/gofiber/fiber/v2"
)

// GetBook snapshots the book through the engine so the view is consistent with every
// request applied before it. format=text returns the canonical line form, format=table an ASCII table.
func (h *Handler) GetBook(c *fiber.Ctx) error {
	ctx := c.UserContext()
	format := c.Query("format", "json")
	if format != "json" && format != "text" && format != "table" {
		h.obs.LogErr(ctx, "book.query: unknown format %q", format)
		return badRequest(c, fmt.Errorf("unknown format %q", format))
	}

	events, err := h.engine.Submit(ctx, engine.SnapshotRequest{})
	if err != nil {
		h.obs.LogAlert(ctx, "book.query submit failed: err=%v", err)
		return temporaryUnavailable(c, err)
	}
	var snapshot engine.OrderBookSnapshot
	found := false
	for _, event := range events {
		if s, ok := event.(engine.OrderBookSnapshot); ok {
			snapshot, found = s, true
			break
		}
	}
	if !found {
		h.obs.LogAlert(ctx, "book.query: no snapshot in %d events", len(events))
		return internalServerError(c)
	}

	h.obs.LogInfo(ctx, "book.query done: format=%s asks=%d bids=%d", format, len(snapshot.Asks), len(snapshot.Bids))
	switch format {
	case "text":
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(fiber.StatusOK).SendString(render.Text(snapshot.Asks, snapshot.Bids))
	case "table":
		var buf bytes.Buffer
		render.Table(&buf, snapshot.Asks, snapshot.Bids)
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(fiber.StatusOK).Send(buf.Bytes())
	}
	return jsonResponse(c, fiber.StatusOK, schemas.BookResponse{
		Asks: bookEntries(snapshot.Asks),
		Bids: bookEntries(snapshot.Bids),
	})
}

// GetEvents pages through the event log. since excludes entries up to and including that seq;
// minSeq makes the read fail with 409 until the log has caught up to it.
func (h *Handler) GetEvents(c *fiber.Ctx) error {
	ctx := c.UserContext()

	since, err := queryInt64(c, "since")
	if err != nil {
		return badRequest(c, err)
	}
	minSeq, err := queryInt64(c, "minSeq")
	if err != nil {
		return badRequest(c, err)
	}
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return badRequest(c, errors.New("limit must not be negative"))
	}

	if applied := h.events.LastSeq(); applied < minSeq {
		h.obs.LogInfo(ctx, "events.query: not caught up required=%d applied=%d", minSeq, applied)
		return conflict(c, minSeq, applied)
	}

	entries, err := h.events.Since(since, limit)
	if err != nil {
		var gap *eventlog.SequenceGapError
		if errors.As(err, &gap) {
			h.obs.LogInfo(ctx, "events.query: %v", err)
			return gone(c, gap.Expected, gap.Received)
		}
		h.obs.LogErr(ctx, "events.query failed: err=%v", err)
		return internalServerError(c)
	}

	logged := make([]schemas.LoggedEvent, 0, len(entries))
	for _, entry := range entries {
		logged = append(logged, schemas.LoggedEvent{
			Seq:   entry.Seq,
			Type:  string(entry.Type),
			At:    entry.At,
			Event: entry.Event,
		})
	}

	h.obs.LogDebug(ctx, "events.query done: since=%d count=%d", since, len(logged))
	return jsonResponse(c, fiber.StatusOK, schemas.EventsResponse{
		LastSeq: h.events.LastSeq(),
		Events:  logged,
	})
}

func queryInt64(c *fiber.Ctx, key string) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return value, nil
}

func bookEntries(entries []orderbook.Entry) []schemas.BookEntry {
	out := make([]schemas.BookEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, schemas.BookEntry{
			ID:       entry.ID,
			Price:    entry.Price,
			Quantity: entry.Quantity,
		})
	}
	return out
}
