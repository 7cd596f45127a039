package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func jsonResponse(c *fiber.Ctx, status int, payload interface{}) error {
	return c.Status(status).JSON(payload)
}

func badRequest(c *fiber.Ctx, err error) error {
	return jsonResponse(c, fiber.StatusBadRequest, fiber.Map{
		"error": err.Error(),
	})
}

func notFound(c *fiber.Ctx, err error) error {
	return jsonResponse(c, fiber.StatusNotFound, fiber.Map{
		"error": err.Error(),
	})
}

func internalServerError(c *fiber.Ctx) error {
	return jsonResponse(c, fiber.StatusInternalServerError, fiber.Map{
		"error": "Something went wrong",
	})
}

func temporaryUnavailable(c *fiber.Ctx, err error) error {
	return jsonResponse(c, fiber.StatusServiceUnavailable, fiber.Map{
		"error": err.Error(),
	})
}

func duplicate(c *fiber.Ctx, err error) error {
	return jsonResponse(c, fiber.StatusConflict, fiber.Map{
		"error": err.Error(),
	})
}

// conflict reports that the event log has not yet reached the sequence the caller requires.
func conflict(c *fiber.Ctx, required int64, applied int64) error {
	return jsonResponse(c, fiber.StatusConflict, fiber.Map{
		"error":    "read not yet consistent",
		"required": required,
		"applied":  applied,
	})
}

func gone(c *fiber.Ctx, expected int64, oldest int64) error {
	return jsonResponse(c, fiber.StatusGone, fiber.Map{
		"error":    "events already trimmed",
		"expected": expected,
		"oldest":   oldest,
	})
}
