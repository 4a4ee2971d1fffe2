package models

import "time"

// Outbox event statuses.
const (
	OutboxPending = "pending"
	OutboxDone    = "done"
	OutboxFailed  = "failed"
)

// Outbox event kinds.
const (
	OutboxKindTransaction  = "transaction.create"
	OutboxKindNotification = "notification.create"
	OutboxKindGymIncrement = "gym.increment_members"
)

// OutboxEvent stores a deferred side effect (ledger write, notification, gym
// counter increment) to be retried by the dispatcher until it succeeds or
// runs out of attempts.
type OutboxEvent struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Kind          string    `gorm:"column:kind;size:50;index:idx_outbox_kind_status,priority:1" json:"kind"`
	Status        string    `gorm:"column:status;size:30;index:idx_outbox_kind_status,priority:2" json:"status"`
	Payload       string    `gorm:"column:payload;type:longtext" json:"payload"`
	Attempts      int       `gorm:"column:attempts;default:0" json:"attempts"`
	LastError     string    `gorm:"column:last_error;type:text" json:"last_error"`
	NextAttemptAt time.Time `gorm:"column:next_attempt_at;index" json:"next_attempt_at"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}
