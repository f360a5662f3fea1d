package redisclient

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Client wraps a Redis client with OpenTelemetry tracing. Only the
// commands the nonce store relies on are exposed.
type Client struct {
	cmdable redis.Cmdable
}

// NewClient creates a new traced Redis client for a single Redis instance
func NewClient(client *redis.Client) *Client {
	return &Client{cmdable: client}
}

// NewClusterClient creates a new traced Redis client for a Redis cluster
func NewClusterClient(client *redis.ClusterClient) *Client {
	return &Client{cmdable: client}
}

// span opens a command span with the shared attribute set.
func span(ctx context.Context, op, key string) (context.Context, trace.Span, time.Time) {
	attrs := []attribute.KeyValue{
		attribute.String("redis.operation", op),
		attribute.String("redis.client", "app-subscribe"),
	}
	if key != "" {
		attrs = append(attrs, attribute.String("redis.key", key))
	}
	ctx, sp := otel.Tracer("redis").Start(ctx, "redis."+op, trace.WithAttributes(attrs...))
	return ctx, sp, time.Now()
}

// finish records duration and command outcome on the span. redis.Nil is
// a miss, not an error.
func finish(sp trace.Span, start time.Time, err error) {
	sp.SetAttributes(attribute.Int64("redis.duration_ms", time.Since(start).Milliseconds()))
	if err != nil && err != redis.Nil {
		sp.RecordError(err)
		sp.SetStatus(codes.Error, err.Error())
	} else {
		sp.SetStatus(codes.Ok, "success")
	}
	sp.End()
}

// Get wraps Redis GET with tracing
func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	ctx, sp, start := span(ctx, "get", key)
	cmd := c.cmdable.Get(ctx, key)
	finish(sp, start, cmd.Err())
	return cmd
}

// Set wraps Redis SET with tracing
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	ctx, sp, start := span(ctx, "set", key)
	sp.SetAttributes(attribute.String("redis.expiration", expiration.String()))
	cmd := c.cmdable.Set(ctx, key, value, expiration)
	finish(sp, start, cmd.Err())
	return cmd
}

// GetDel wraps Redis GETDEL with tracing
func (c *Client) GetDel(ctx context.Context, key string) *redis.StringCmd {
	ctx, sp, start := span(ctx, "getdel", key)
	cmd := c.cmdable.GetDel(ctx, key)
	finish(sp, start, cmd.Err())
	return cmd
}

// Del wraps Redis DEL with tracing
func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	ctx, sp, start := span(ctx, "del", "")
	sp.SetAttributes(attribute.Int("redis.key_count", len(keys)))
	cmd := c.cmdable.Del(ctx, keys...)
	finish(sp, start, cmd.Err())
	return cmd
}

// Ping wraps Redis PING with tracing
func (c *Client) Ping(ctx context.Context) *redis.StatusCmd {
	ctx, sp, start := span(ctx, "ping", "")
	cmd := c.cmdable.Ping(ctx)
	finish(sp, start, cmd.Err())
	return cmd
}
