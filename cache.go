package insight

import (
	"bytes"
	"context"
	"encoding/gob"

	"github.com/gomodule/redigo/redis"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracedCache is a Redis-backed cache whose operations run inside CLIENT
// spans named "redis.{OP}". Values are gob-encoded; keys carry an optional
// prefix so several applications can share one Redis.
type TracedCache struct {
	Conn   *redis.Pool
	Prefix string
	tracer trace.Tracer
}

// NewTracedCache wraps a redigo pool with tracing.
func NewTracedCache(pool *redis.Pool, prefix string) *TracedCache {
	return &TracedCache{
		Conn:   pool,
		Prefix: prefix,
		tracer: otel.Tracer("insight/cache"),
	}
}

// NewTracedCacheWithTracer wraps a redigo pool using a specific tracer,
// typically Provider.Tracer().
func NewTracedCacheWithTracer(pool *redis.Pool, prefix string, tracer trace.Tracer) *TracedCache {
	return &TracedCache{
		Conn:   pool,
		Prefix: prefix,
		tracer: tracer,
	}
}

type cacheEntry map[string]interface{}

func encodeEntry(item cacheEntry) ([]byte, error) {
	b := bytes.Buffer{}
	if err := gob.NewEncoder(&b).Encode(item); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func decodeEntry(raw []byte) (cacheEntry, error) {
	var item cacheEntry
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&item); err != nil {
		return nil, err
	}
	return item, nil
}

// startOpSpan opens the CLIENT span for one cache operation.
func (c *TracedCache) startOpSpan(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "redis."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("component", "redis"),
			attribute.String("cache.op", op),
			attribute.String("cache.key", key),
		),
	)
}

// Has reports whether the key exists in the cache.
func (c *TracedCache) Has(ctx context.Context, key string) (bool, error) {
	key = c.Prefix + key
	_, span := c.startOpSpan(ctx, "EXISTS", key)
	defer span.End()

	conn := c.Conn.Get()
	defer conn.Close()

	ok, err := redis.Bool(conn.Do("EXISTS", key))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return ok, err
}

// Get retrieves and decodes the value stored under key.
func (c *TracedCache) Get(ctx context.Context, key string) (interface{}, error) {
	key = c.Prefix + key
	_, span := c.startOpSpan(ctx, "GET", key)
	defer span.End()

	conn := c.Conn.Get()
	defer conn.Close()

	raw, err := redis.Bytes(conn.Do("GET", key))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	decoded, err := decodeEntry(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return decoded[key], nil
}

// Set stores a value under key, with an optional TTL in seconds.
func (c *TracedCache) Set(ctx context.Context, key string, value interface{}, ttl ...int) error {
	key = c.Prefix + key
	_, span := c.startOpSpan(ctx, "SET", key)
	defer span.End()

	conn := c.Conn.Get()
	defer conn.Close()

	encoded, err := encodeEntry(cacheEntry{key: value})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if len(ttl) > 0 {
		_, err = conn.Do("SETEX", key, ttl[0], string(encoded))
	} else {
		_, err = conn.Do("SET", key, string(encoded))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Forget removes the key from the cache.
func (c *TracedCache) Forget(ctx context.Context, key string) error {
	key = c.Prefix + key
	_, span := c.startOpSpan(ctx, "DEL", key)
	defer span.End()

	conn := c.Conn.Get()
	defer conn.Close()

	_, err := conn.Do("DEL", key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// EmptyByMatch removes all keys matching the given pattern.
func (c *TracedCache) EmptyByMatch(ctx context.Context, pattern string) error {
	_, span := c.startOpSpan(ctx, "KEYS", c.Prefix+pattern)
	defer span.End()

	conn := c.Conn.Get()
	defer conn.Close()

	keys, err := redis.Strings(conn.Do("KEYS", c.Prefix+pattern))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	for _, key := range keys {
		if _, err = conn.Do("DEL", key); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	return nil
}

// Flush empties every key under the cache prefix.
func (c *TracedCache) Flush(ctx context.Context) error {
	return c.EmptyByMatch(ctx, "*")
}
