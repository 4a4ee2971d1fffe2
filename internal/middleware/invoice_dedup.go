package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// InvoiceDeduper tracks webhook deliveries already being processed, keyed by
// invoice id (and reported status, so a later status change for the same
// invoice is not swallowed).
type InvoiceDeduper interface {
	Seen(ctx context.Context, key string) (bool, error)
}

type redisInvoiceDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (d *redisInvoiceDeduper) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+":"+key, "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	// false => already exists => duplicate
	return !ok, nil
}

type memoryInvoiceDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
}

func newMemoryInvoiceDeduper(ttl time.Duration) *memoryInvoiceDeduper {
	now := time.Now()
	return &memoryInvoiceDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now.Add(ttl),
	}
}

func (d *memoryInvoiceDeduper) Seen(_ context.Context, key string) (bool, error) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[key]; ok && exp.After(now) {
		return true, nil
	}

	d.seen[key] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for id, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, id)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}

	return false, nil
}

// NewInvoiceDeduper builds a Redis deduper and falls back to in-memory on
// failure.
func NewInvoiceDeduper(addr, pass string, db int, ttl time.Duration) (InvoiceDeduper, error) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if addr == "" {
		return newMemoryInvoiceDeduper(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemoryInvoiceDeduper(ttl), err
	}

	return &redisInvoiceDeduper{
		client: client,
		prefix: "pay:invoice",
		ttl:    ttl,
	}, nil
}

// WebhookDedup drops duplicate gateway webhook deliveries. The database's
// unique index on the upstream transaction id remains the durable backstop;
// this just keeps retried deliveries from reaching the gateway verify call.
func WebhookDedup(deduper InvoiceDeduper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if deduper == nil {
				return next(c)
			}

			req := c.Request()
			if req.Body == nil {
				return next(c)
			}

			rawBody, err := io.ReadAll(req.Body)
			if err != nil {
				return next(c)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(rawBody))
			if len(rawBody) == 0 {
				return next(c)
			}

			var payload struct {
				OrderID   string `json:"order_id"`
				InvoiceID string `json:"invoice_id"`
				Status    string `json:"status"`
			}
			if err := json.Unmarshal(rawBody, &payload); err != nil {
				return next(c)
			}

			key := payload.OrderID
			if key == "" {
				key = payload.InvoiceID
			}
			if key == "" {
				return next(c)
			}
			if payload.Status != "" {
				key += ":" + payload.Status
			}

			isDuplicate, err := deduper.Seen(req.Context(), key)
			if err != nil {
				return next(c)
			}
			if isDuplicate {
				// The gateway only needs a 2xx response to stop retries.
				return c.JSON(http.StatusOK, map[string]interface{}{
					"success":   true,
					"duplicate": true,
				})
			}

			return next(c)
		}
	}
}
