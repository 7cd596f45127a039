package api

import (
	"matchbook/pkg/handlers"

	"github.com/gofiber/fiber/v2"
)

func New(router fiber.Router, handler *handlers.Handler) {
	router.Use(requestIDMiddleware)

	orders := router.Group("/orders")
	orders.Post("", handler.PostOrder)
	orders.Post("/cancel", handler.CancelOrder)

	router.Get("/book", handler.GetBook)
	router.Get("/events", handler.GetEvents)
}
