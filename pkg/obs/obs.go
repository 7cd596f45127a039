package obs

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDContextKey is the context key the HTTP middleware stores the request id under.
const RequestIDContextKey = "reqId"

type Client struct {
	logger *zap.SugaredLogger
}

// New builds a client logging JSON lines at the given level ("debug", "info", ...).
func New(level string) (*Client, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &Client{logger: logger.Sugar()}, nil
}

// NewWithLogger wraps an existing zap logger.
func NewWithLogger(logger *zap.Logger) *Client {
	return &Client{logger: logger.Sugar()}
}

func (c *Client) LogNotice(ctx context.Context, msg string, args ...interface{}) {
	c.log(ctx).Infow(fmt.Sprintf(msg, args...), "severity", "notice")
}

func (c *Client) LogDebug(ctx context.Context, msg string, args ...interface{}) {
	c.log(ctx).Debugf(msg, args...)
}

func (c *Client) LogInfo(ctx context.Context, msg string, args ...interface{}) {
	c.log(ctx).Infof(msg, args...)
}

func (c *Client) LogErr(ctx context.Context, msg string, args ...interface{}) {
	c.log(ctx).Errorf(msg, args...)
}

func (c *Client) LogAlert(ctx context.Context, msg string, args ...interface{}) {
	c.log(ctx).Warnw(fmt.Sprintf(msg, args...), "severity", "alert")
}

// Sync flushes buffered log entries.
func (c *Client) Sync() error {
	if c == nil || c.logger == nil {
		return nil
	}
	return c.logger.Sync()
}

func (c *Client) log(ctx context.Context) *zap.SugaredLogger {
	// zero-value clients (tests) log nowhere
	if c == nil || c.logger == nil {
		return zap.NewNop().Sugar()
	}
	if ctx == nil {
		return c.logger
	}
	if reqID, ok := ctx.Value(RequestIDContextKey).(string); ok && reqID != "" {
		return c.logger.With("req_id", reqID)
	}
	return c.logger
}
