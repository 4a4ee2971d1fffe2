package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fitmarket/internal/metrics"
	"fitmarket/internal/models"
)

const (
	batchSize    = 50
	maxAttempts  = 10
	retryBackoff = time.Minute
)

// EventStore is the outbox queue.
type EventStore interface {
	FindDue(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkDone(ctx context.Context, id uint) error
	MarkRetry(ctx context.Context, event *models.OutboxEvent, attemptErr error, maxAttempts int, backoff time.Duration) error
}

// TransactionStore replays deferred ledger writes.
type TransactionStore interface {
	Create(ctx context.Context, txn *models.Transaction) error
}

// NotificationStore replays deferred notification writes.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// GymStore replays deferred member-count increments.
type GymStore interface {
	IncrementMemberCount(ctx context.Context, gymID string) error
}

// Stores bundles the targets the dispatcher writes to.
type Stores struct {
	Events        EventStore
	Transactions  TransactionStore
	Notifications NotificationStore
	Gyms          GymStore
}

// Dispatcher retries best-effort side effects that failed inline during
// fulfillment, until they succeed or exhaust their attempts.
type Dispatcher struct {
	cron   *cron.Cron
	stores *Stores
	logger *zap.Logger
}

func New(stores *Stores, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		cron:   cron.New(cron.WithSeconds()),
		stores: stores,
		logger: logger,
	}
}

// Start schedules the retry loop.
func (d *Dispatcher) Start() {
	d.cron.AddFunc("*/30 * * * * *", func() {
		d.ProcessDue(context.Background())
	})
	d.cron.Start()
}

// Stop stops the scheduler; the returned context is done once running jobs
// have finished.
func (d *Dispatcher) Stop() context.Context {
	return d.cron.Stop()
}

// ProcessDue drains one batch of due events.
func (d *Dispatcher) ProcessDue(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic in outbox dispatcher", zap.Any("panic", r))
		}
	}()

	events, err := d.stores.Events.FindDue(ctx, batchSize)
	if err != nil {
		d.logger.Error("failed to fetch due outbox events", zap.Error(err))
		return
	}

	for i := range events {
		event := &events[i]
		if err := d.process(ctx, event); err != nil {
			metrics.OutboxRetriesTotal.WithLabelValues(event.Kind, "failed").Inc()
			d.logger.Warn("outbox event attempt failed",
				zap.Uint("event_id", event.ID),
				zap.String("kind", event.Kind),
				zap.Int("attempts", event.Attempts+1),
				zap.Error(err))
			if mErr := d.stores.Events.MarkRetry(ctx, event, err, maxAttempts, retryBackoff); mErr != nil {
				d.logger.Error("failed to record outbox retry", zap.Uint("event_id", event.ID), zap.Error(mErr))
			}
			continue
		}
		metrics.OutboxRetriesTotal.WithLabelValues(event.Kind, "success").Inc()
		if err := d.stores.Events.MarkDone(ctx, event.ID); err != nil {
			d.logger.Error("failed to mark outbox event done", zap.Uint("event_id", event.ID), zap.Error(err))
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, event *models.OutboxEvent) error {
	switch event.Kind {
	case models.OutboxKindTransaction:
		var txn models.Transaction
		if err := json.Unmarshal([]byte(event.Payload), &txn); err != nil {
			return fmt.Errorf("invalid transaction payload: %w", err)
		}
		return d.stores.Transactions.Create(ctx, &txn)

	case models.OutboxKindNotification:
		var n models.Notification
		if err := json.Unmarshal([]byte(event.Payload), &n); err != nil {
			return fmt.Errorf("invalid notification payload: %w", err)
		}
		n.ID = 0
		return d.stores.Notifications.Create(ctx, &n)

	case models.OutboxKindGymIncrement:
		var payload struct {
			GymID string `json:"gym_id"`
		}
		if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
			return fmt.Errorf("invalid gym counter payload: %w", err)
		}
		return d.stores.Gyms.IncrementMemberCount(ctx, payload.GymID)

	default:
		return fmt.Errorf("unknown outbox kind %q", event.Kind)
	}
}
