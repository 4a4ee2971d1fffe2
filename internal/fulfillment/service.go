package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fitmarket/internal/models"
	"fitmarket/internal/payment"
)

// OrderStore persists the three order-record kinds.
type OrderStore interface {
	CreateServiceOrder(ctx context.Context, order *models.ServiceOrder) error
	CreateGymMembership(ctx context.Context, membership *models.GymMembership) error
	CreateTrainerBooking(ctx context.Context, booking *models.TrainerBooking) error
	FindServiceOrderByUpstreamID(ctx context.Context, txnID string) (*models.ServiceOrder, error)
	FindGymMembershipByUpstreamID(ctx context.Context, txnID string) (*models.GymMembership, error)
	FindTrainerBookingByUpstreamID(ctx context.Context, txnID string) (*models.TrainerBooking, error)
}

// TransactionStore persists ledger entries.
type TransactionStore interface {
	Create(ctx context.Context, txn *models.Transaction) error
}

// NotificationStore persists user notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// GymStore covers the gym side effect of membership fulfillment.
type GymStore interface {
	IncrementMemberCount(ctx context.Context, gymID string) error
}

// OutboxStore queues failed secondary writes for retry.
type OutboxStore interface {
	Enqueue(ctx context.Context, kind, payload string) error
}

// Stores bundles the persistence collaborators for fulfillment.
type Stores struct {
	Orders        OrderStore
	Transactions  TransactionStore
	Notifications NotificationStore
	Gyms          GymStore
	Outbox        OutboxStore
}

// Error means the primary order-record write failed after the gateway
// confirmed the payment. Callers must surface this distinctly from a
// verification failure: the money is captured either way.
type Error struct {
	OrderType string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fulfillment failed for %s: %v", e.OrderType, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Result describes the record a completed payment produced.
type Result struct {
	OrderType   string
	OrderID     string
	RedirectURL string
	// Duplicate is set when this invoice was already fulfilled; no new
	// records were written.
	Duplicate bool
}

// Service turns verified payments into durable order, ledger and
// notification records.
type Service struct {
	stores     *Stores
	successURL string
	logger     *zap.Logger

	now   func() time.Time
	newID func() string
}

func New(stores *Stores, successURL string, logger *zap.Logger) *Service {
	return &Service{
		stores:     stores,
		successURL: successURL,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Fulfill classifies the verified payment's metadata and runs the matching
// handler. It must only be called for completed payments.
func (s *Service) Fulfill(ctx context.Context, res *payment.VerificationResult) (*Result, error) {
	meta, err := Classify(res.Metadata)
	if err != nil {
		return nil, err
	}

	switch meta.Type {
	case models.OrderTypeServiceOrder:
		return s.fulfillServiceOrder(ctx, meta.ServiceOrder, res)
	case models.OrderTypeGymMembership:
		return s.fulfillGymMembership(ctx, meta.GymMembership, res)
	default:
		return s.fulfillTrainerBooking(ctx, meta.TrainerBooking, res)
	}
}

// recordTransaction writes the ledger entry with the 10/90 commission split.
// Best-effort: a failure is logged and queued for retry, never rolled back
// into the order write.
func (s *Service) recordTransaction(ctx context.Context, orderID, orderType, userID string, res *payment.VerificationResult, description string) {
	commission, net := SplitCommission(res.Amount)
	txn := &models.Transaction{
		ID:            s.newID(),
		OrderID:       orderID,
		OrderType:     orderType,
		UserID:        userID,
		Amount:        res.Amount,
		Commission:    commission,
		NetAmount:     net,
		Status:        "completed",
		UpstreamTxnID: res.TransactionID,
		Description:   description,
	}
	if err := s.stores.Transactions.Create(ctx, txn); err != nil {
		s.logger.Error("ledger write failed, queueing for retry",
			zap.String("order_id", orderID),
			zap.String("upstream_txn_id", res.TransactionID),
			zap.Error(err))
		s.enqueue(ctx, models.OutboxKindTransaction, txn)
	}
}

// notify writes one notification record, queueing it for retry on failure.
func (s *Service) notify(ctx context.Context, userID, notifType, title, message, relatedID string) {
	n := &models.Notification{
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
	}
	if err := s.stores.Notifications.Create(ctx, n); err != nil {
		s.logger.Error("notification write failed, queueing for retry",
			zap.String("user_id", userID),
			zap.String("type", notifType),
			zap.Error(err))
		s.enqueue(ctx, models.OutboxKindNotification, n)
	}
}

func (s *Service) enqueue(ctx context.Context, kind string, payload interface{}) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode outbox payload", zap.String("kind", kind), zap.Error(err))
		return
	}
	if err := s.stores.Outbox.Enqueue(ctx, kind, string(encoded)); err != nil {
		s.logger.Error("failed to enqueue outbox event", zap.String("kind", kind), zap.Error(err))
	}
}
