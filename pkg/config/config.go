package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Engine struct {
	RequestBuffer     int
	EventBuffer       int
	VerifyEachRequest bool
}

type Kafka struct {
	Brokers []string
	Topic   string
}

func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

type Config struct {
	Port        int
	LogLevel    string
	EventLogCap int
	// DeliveryTimeout bounds each sink delivery and the event drain at shutdown.
	DeliveryTimeout time.Duration
	Engine          Engine
	Kafka           Kafka
}

func Default() Config {
	return Config{
		Port:            8080,
		LogLevel:        "info",
		EventLogCap:     100_000,
		DeliveryTimeout: 2 * time.Second,
		Engine: Engine{
			RequestBuffer: 1024,
			EventBuffer:   4096,
		},
		Kafka: Kafka{
			Topic: "matchbook.events",
		},
	}
}

// Load reads an optional .env file and applies environment overrides on top of Default.
// Priority: ENV > .env file > defaults. Unparseable values keep the default.
func Load(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	setInt(&cfg.Port, "MATCHBOOK_PORT")
	setInt(&cfg.EventLogCap, "MATCHBOOK_EVENT_LOG_CAP")
	setInt(&cfg.Engine.RequestBuffer, "MATCHBOOK_REQUEST_BUFFER")
	setInt(&cfg.Engine.EventBuffer, "MATCHBOOK_EVENT_BUFFER")

	if timeout := os.Getenv("MATCHBOOK_DELIVERY_TIMEOUT"); timeout != "" {
		if parsed, err := time.ParseDuration(timeout); err == nil {
			cfg.DeliveryTimeout = parsed
		}
	}
	if level := os.Getenv("MATCHBOOK_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if verify := os.Getenv("MATCHBOOK_VERIFY"); verify != "" {
		cfg.Engine.VerifyEachRequest = verify == "true"
	}
	if brokers := os.Getenv("MATCHBOOK_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}
	if topic := os.Getenv("MATCHBOOK_KAFKA_TOPIC"); topic != "" {
		cfg.Kafka.Topic = topic
	}

	return cfg
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if c.Engine.RequestBuffer <= 0 || c.Engine.EventBuffer <= 0 {
		return errors.New("engine buffers must be greater than 0")
	}
	if c.DeliveryTimeout <= 0 {
		return errors.New("delivery timeout must be greater than 0")
	}
	return nil
}

func setInt(dst *int, key string) {
	value := os.Getenv(key)
	if value == "" {
		return
	}
	if parsed, err := strconv.Atoi(value); err == nil {
		*dst = parsed
	}
}

func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
