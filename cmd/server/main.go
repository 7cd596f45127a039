package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"matchbook/pkg/api"
	"matchbook/pkg/config"
	"matchbook/pkg/dispatch"
	"matchbook/pkg/engine"
	"matchbook/pkg/eventlog"
	"matchbook/pkg/handlers"
	"matchbook/pkg/obs"
	"matchbook/pkg/sink"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	port := flag.Int("port", 0, "port for the HTTP server (overrides MATCHBOOK_PORT)")
	flag.IntVar(port, "p", 0, "shorthand for --port")
	envPath := flag.String("env", "", "path to a .env file")
	flag.Parse()

	cfg := config.Load(*envPath)
	if *port != 0 {
		cfg.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	obs, err := obs.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer obs.Sync()
	ctx, cancel := context.WithCancel(context.Background())

	eng := engine.New(obs, engine.Options{
		RequestBuffer:     cfg.Engine.RequestBuffer,
		EventBuffer:       cfg.Engine.EventBuffer,
		VerifyEachRequest: cfg.Engine.VerifyEachRequest,
	})
	events := eventlog.New(cfg.EventLogCap)

	sinks := []dispatch.Sink{events}
	var kafkaSink *sink.Kafka
	if cfg.Kafka.Enabled() {
		kafkaSink = sink.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		sinks = append(sinks, kafkaSink)
		obs.LogNotice(ctx, "kafka sink enabled: brokers=%v topic=%s", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	dispatcher := dispatch.New(obs, dispatch.Options{DeliveryTimeout: cfg.DeliveryTimeout}, sinks...)

	obs.LogNotice(
		ctx,
		"matchbook startup: port=%d request_buffer=%d event_buffer=%d event_log_cap=%d delivery_timeout=%s verify=%t",
		cfg.Port,
		cfg.Engine.RequestBuffer,
		cfg.Engine.EventBuffer,
		cfg.EventLogCap,
		cfg.DeliveryTimeout,
		cfg.Engine.VerifyEachRequest,
	)

	engineCtx, stopEngine := context.WithCancel(context.Background())
	go func() {
		if err := eng.Run(engineCtx); err != nil && !errors.Is(err, context.Canceled) {
			obs.LogAlert(ctx, "engine stopped with error: %v", err)
		}
	}()
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()
	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		// delivery keeps going after shutdown starts so buffered events drain
		dispatcher.Run(dispatchCtx, eng.Events())
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			if strings.Contains(err.Error(), "panic") {
				return c.Status(code).SendString("Internal Server Error")
			}

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

			return c.Status(code).SendString(err.Error())
		},
		EnableTrustedProxyCheck: true,
	})
	app.Use(cors.New())

	handler := handlers.New(obs, eng, events)

	var router fiber.Router = app

	api.New(router, handler)

	fmt.Printf("Matching engine is live on %s. Starting to listen.\n", addr)

	sigterm := make(chan os.Signal, 1)
	var wg sync.WaitGroup
	signal.Notify(sigterm, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigterm
		obs.LogNotice(ctx, "Received SIGTERM, shutting down gracefully")

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.ShutdownWithTimeout(time.Second * 10); err != nil {
				obs.LogAlert(ctx, "Error shutting down gracefully: %v", err)
			}
			// no more submissions; stop the engine and drain its events
			stopEngine()
			select {
			case <-dispatched:
			case <-time.After(cfg.DeliveryTimeout):
				// sinks still stuck; fail the remaining deliveries fast, the event log still records them
				obs.LogAlert(ctx, "Event delivery did not drain within %s, cancelling", cfg.DeliveryTimeout)
				stopDispatch()
				<-dispatched
			}
			if kafkaSink != nil {
				if err := kafkaSink.Close(); err != nil {
					obs.LogAlert(ctx, "Error closing kafka writer: %v", err)
				}
			}
		}()
		cancel()
	}()

	go func() {
		if err := app.Listen(addr); err != nil {
			obs.LogAlert(ctx, "Error starting server: %v", err)
		}
	}()

	<-ctx.Done()
	// Wait for the server to shut down cleanly
	wg.Wait()

	obs.LogNotice(ctx, "Server shut down last_seq=%d", events.LastSeq())
}
