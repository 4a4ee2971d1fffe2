package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fitmarket/internal/models"
)

// OutboxRepository stores deferred side effects for the dispatcher.
type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, kind, payload string) error {
	event := models.OutboxEvent{
		Kind:          kind,
		Status:        models.OutboxPending,
		Payload:       payload,
		NextAttemptAt: time.Now(),
	}
	return r.db.WithContext(ctx).Create(&event).Error
}

// FindDue returns pending events whose next attempt time has passed.
func (r *OutboxRepository) FindDue(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	var events []models.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", models.OutboxPending, time.Now()).
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *OutboxRepository) MarkDone(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": models.OutboxDone}).Error
}

// MarkRetry records a failed attempt. Once attempts reach maxAttempts the
// event is parked as failed for manual reconciliation.
func (r *OutboxRepository) MarkRetry(ctx context.Context, event *models.OutboxEvent, attemptErr error, maxAttempts int, backoff time.Duration) error {
	attempts := event.Attempts + 1
	updates := map[string]interface{}{
		"attempts":        attempts,
		"last_error":      attemptErr.Error(),
		"next_attempt_at": time.Now().Add(backoff * time.Duration(attempts)),
	}
	if attempts >= maxAttempts {
		updates["status"] = models.OutboxFailed
	}
	return r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", event.ID).
		Updates(updates).Error
}
