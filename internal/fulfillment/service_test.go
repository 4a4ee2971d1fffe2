package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"fitmarket/internal/models"
	"fitmarket/internal/payment"
)

// fakeStores implements all five store interfaces in memory, with injectable
// failures per collaborator.
type fakeStores struct {
	serviceOrders  []*models.ServiceOrder
	gymMemberships []*models.GymMembership
	bookings       []*models.TrainerBooking
	transactions   []*models.Transaction
	notifications  []*models.Notification
	incremented    []string
	outbox         []fakeOutboxEvent

	orderErr  error
	txnErr    error
	notifErr  error
	gymErr    error
	outboxErr error
}

type fakeOutboxEvent struct {
	kind    string
	payload string
}

func (f *fakeStores) CreateServiceOrder(_ context.Context, o *models.ServiceOrder) error {
	if f.orderErr != nil {
		return f.orderErr
	}
	f.serviceOrders = append(f.serviceOrders, o)
	return nil
}

func (f *fakeStores) CreateGymMembership(_ context.Context, m *models.GymMembership) error {
	if f.orderErr != nil {
		return f.orderErr
	}
	f.gymMemberships = append(f.gymMemberships, m)
	return nil
}

func (f *fakeStores) CreateTrainerBooking(_ context.Context, b *models.TrainerBooking) error {
	if f.orderErr != nil {
		return f.orderErr
	}
	f.bookings = append(f.bookings, b)
	return nil
}

func (f *fakeStores) FindServiceOrderByUpstreamID(_ context.Context, txnID string) (*models.ServiceOrder, error) {
	for _, o := range f.serviceOrders {
		if o.UpstreamTxnID == txnID {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeStores) FindGymMembershipByUpstreamID(_ context.Context, txnID string) (*models.GymMembership, error) {
	for _, m := range f.gymMemberships {
		if m.UpstreamTxnID == txnID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeStores) FindTrainerBookingByUpstreamID(_ context.Context, txnID string) (*models.TrainerBooking, error) {
	for _, b := range f.bookings {
		if b.UpstreamTxnID == txnID {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeStores) IncrementMemberCount(_ context.Context, gymID string) error {
	if f.gymErr != nil {
		return f.gymErr
	}
	f.incremented = append(f.incremented, gymID)
	return nil
}

func (f *fakeStores) Enqueue(_ context.Context, kind, payload string) error {
	if f.outboxErr != nil {
		return f.outboxErr
	}
	f.outbox = append(f.outbox, fakeOutboxEvent{kind: kind, payload: payload})
	return nil
}

// The transaction and notification stores need distinct Create signatures, so
// wrap the shared fake.
type fakeTxnStore struct{ f *fakeStores }

func (s fakeTxnStore) Create(_ context.Context, txn *models.Transaction) error {
	if s.f.txnErr != nil {
		return s.f.txnErr
	}
	s.f.transactions = append(s.f.transactions, txn)
	return nil
}

type fakeNotifStore struct{ f *fakeStores }

func (s fakeNotifStore) Create(_ context.Context, n *models.Notification) error {
	if s.f.notifErr != nil {
		return s.f.notifErr
	}
	s.f.notifications = append(s.f.notifications, n)
	return nil
}

func newTestService(f *fakeStores) *Service {
	s := New(&Stores{
		Orders:        f,
		Transactions:  fakeTxnStore{f},
		Notifications: fakeNotifStore{f},
		Gyms:          f,
		Outbox:        f,
	}, "https://fitmarket.example.com/payment/success", zap.NewNop())
	s.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s
}

func serviceOrderResult(amount int64, txnID string) *payment.VerificationResult {
	return &payment.VerificationResult{
		Status:        payment.StatusCompleted,
		RawStatus:     "COMPLETED",
		Amount:        amount,
		InvoiceID:     "inv_1",
		TransactionID: txnID,
		Metadata: map[string]interface{}{
			"service_order_data": `{"trainerId":"t1","serviceTitle":"Custom Workout Plan","quantity":1,"deliveryDays":7,"userId":"u1"}`,
		},
	}
}

func TestFulfillServiceOrder(t *testing.T) {
	f := &fakeStores{}
	s := newTestService(f)

	res, err := s.Fulfill(context.Background(), serviceOrderResult(1500, "tx_1"))
	if err != nil {
		t.Fatalf("Fulfill() error: %v", err)
	}

	if res.OrderType != models.OrderTypeServiceOrder {
		t.Errorf("OrderType = %q; want %q", res.OrderType, models.OrderTypeServiceOrder)
	}
	if res.Duplicate {
		t.Error("Duplicate = true on first fulfillment")
	}
	if res.RedirectURL != "" {
		t.Errorf("RedirectURL = %q; service orders get no redirect", res.RedirectURL)
	}

	if len(f.serviceOrders) != 1 {
		t.Fatalf("service orders written = %d; want 1", len(f.serviceOrders))
	}
	order := f.serviceOrders[0]
	if order.Status != "pending" {
		t.Errorf("Status = %q; want pending", order.Status)
	}
	if order.PaymentStatus != "completed" {
		t.Errorf("PaymentStatus = %q; want completed", order.PaymentStatus)
	}
	if order.SessionDuration != 7*24*60 {
		t.Errorf("SessionDuration = %d; want %d", order.SessionDuration, 7*24*60)
	}
	if order.BookingType != "online" {
		t.Errorf("BookingType = %q; want online", order.BookingType)
	}

	if len(f.transactions) != 1 {
		t.Fatalf("transactions written = %d; want 1", len(f.transactions))
	}
	txn := f.transactions[0]
	if txn.Commission != 150 || txn.NetAmount != 1350 {
		t.Errorf("split = %d/%d; want 150/1350", txn.Commission, txn.NetAmount)
	}
	if txn.Amount != 1500 {
		t.Errorf("Amount = %d; want 1500", txn.Amount)
	}

	// Payer and trainer each get one.
	if len(f.notifications) != 2 {
		t.Fatalf("notifications written = %d; want 2", len(f.notifications))
	}
	if f.notifications[0].UserID != "u1" || f.notifications[1].UserID != "t1" {
		t.Errorf("notification recipients = %q, %q; want u1, t1",
			f.notifications[0].UserID, f.notifications[1].UserID)
	}
	if len(f.outbox) != 0 {
		t.Errorf("outbox events = %d; want 0 when all writes succeed", len(f.outbox))
	}
}

func TestFulfillServiceOrderIdempotent(t *testing.T) {
	f := &fakeStores{}
	s := newTestService(f)

	first, err := s.Fulfill(context.Background(), serviceOrderResult(1500, "tx_dup"))
	if err != nil {
		t.Fatalf("first Fulfill() error: %v", err)
	}

	second, err := s.Fulfill(context.Background(), serviceOrderResult(1500, "tx_dup"))
	if err != nil {
		t.Fatalf("second Fulfill() error: %v", err)
	}

	if !second.Duplicate {
		t.Error("second fulfillment not marked Duplicate")
	}
	if second.OrderID != first.OrderID {
		t.Errorf("duplicate OrderID = %q; want %q", second.OrderID, first.OrderID)
	}
	if len(f.serviceOrders) != 1 {
		t.Errorf("service orders = %d; want 1", len(f.serviceOrders))
	}
	if len(f.transactions) != 1 {
		t.Errorf("transactions = %d; replay must not double-ledger", len(f.transactions))
	}
	if len(f.notifications) != 2 {
		t.Errorf("notifications = %d; replay must not re-notify", len(f.notifications))
	}
}

func TestFulfillGymMembership(t *testing.T) {
	f := &fakeStores{}
	s := newTestService(f)

	res, err := s.Fulfill(context.Background(), &payment.VerificationResult{
		Status:        payment.StatusCompleted,
		Amount:        3000,
		TransactionID: "tx_gym",
		Metadata: map[string]interface{}{
			"gym_membership_data": `{"gym_id":"g1","plan_id":"p1","duration_days":90,"gym_name":"Iron Works","userId":"u2"}`,
		},
	})
	if err != nil {
		t.Fatalf("Fulfill() error: %v", err)
	}

	if len(f.gymMemberships) != 1 {
		t.Fatalf("memberships written = %d; want 1", len(f.gymMemberships))
	}
	m := f.gymMemberships[0]
	if m.Status != "active" {
		t.Errorf("Status = %q; want active", m.Status)
	}
	if got := m.EndDate.Format("2006-01-02"); got != "2024-03-31" {
		t.Errorf("EndDate = %s; want 2024-03-31 (90 days from 2024-01-01)", got)
	}

	if !strings.Contains(res.RedirectURL, "membership_id="+m.ID) {
		t.Errorf("RedirectURL = %q; want membership id embedded", res.RedirectURL)
	}
	if !strings.Contains(res.RedirectURL, "order_type=gym_membership") {
		t.Errorf("RedirectURL = %q; want order_type tag", res.RedirectURL)
	}

	if len(f.incremented) != 1 || f.incremented[0] != "g1" {
		t.Errorf("incremented gyms = %v; want [g1]", f.incremented)
	}

	// Memberships notify the payer only: there is no counterparty to tell.
	if len(f.notifications) != 1 {
		t.Fatalf("notifications = %d; want 1", len(f.notifications))
	}
	if f.notifications[0].UserID != "u2" {
		t.Errorf("notification recipient = %q; want u2", f.notifications[0].UserID)
	}
}

func TestFulfillGymMembershipDefaultDuration(t *testing.T) {
	f := &fakeStores{}
	s := newTestService(f)

	_, err := s.Fulfill(context.Background(), &payment.VerificationResult{
		Status:        payment.StatusCompleted,
		Amount:        1000,
		TransactionID: "tx_gym2",
		Metadata: map[string]interface{}{
			"gym_membership_data": `{"gymId":"g2","userId":"u3"}`,
		},
	})
	if err != nil {
		t.Fatalf("Fulfill() error: %v", err)
	}

	m := f.gymMemberships[0]
	if m.DurationDays != 30 {
		t.Errorf("DurationDays = %d; want default 30", m.DurationDays)
	}
	if got := m.EndDate.Format("2006-01-02"); got != "2024-01-31" {
		t.Errorf("EndDate = %s; want 2024-01-31", got)
	}
}

func TestFulfillGymMembershipCounterFailureQueued(t *testing.T) {
	f := &fakeStores{gymErr: errors.New("gym table locked")}
	s := newTestService(f)

	res, err := s.Fulfill(context.Background(), &payment.VerificationResult{
		Status:        payment.StatusCompleted,
		Amount:        1000,
		TransactionID: "tx_gym3",
		Metadata: map[string]interface{}{
			"gym_membership_data": `{"gymId":"g3","userId":"u4"}`,
		},
	})
	if err != nil {
		t.Fatalf("counter failure must not fail fulfillment: %v", err)
	}
	if res.OrderID == "" {
		t.Error("OrderID empty")
	}

	found := false
	for _, ev := range f.outbox {
		if ev.kind == models.OutboxKindGymIncrement && strings.Contains(ev.payload, "g3") {
			found = true
		}
	}
	if !found {
		t.Errorf("gym increment not queued for retry; outbox = %+v", f.outbox)
	}
}

func TestFulfillTrainerBooking(t *testing.T) {
	f := &fakeStores{}
	s := newTestService(f)

	res, err := s.Fulfill(context.Background(), &payment.VerificationResult{
		Status:        payment.StatusCompleted,
		Amount:        2000,
		TransactionID: "tx_bk",
		Metadata: map[string]interface{}{
			"trainerId":     "t5",
			"trainerName":   "Sam",
			"scheduledDate": "2024-06-01",
			"scheduledTime": "10:00",
			"userId":        "u5",
		},
	})
	if err != nil {
		t.Fatalf("Fulfill() error: %v", err)
	}
	if res.OrderType != models.OrderTypeTrainerBooking {
		t.Errorf("OrderType = %q; want %q", res.OrderType, models.OrderTypeTrainerBooking)
	}

	b := f.bookings[0]
	if b.Status != "confirmed" {
		t.Errorf("Status = %q; want confirmed", b.Status)
	}
	if b.PackageType != "basic" {
		t.Errorf("PackageType = %q; want default basic", b.PackageType)
	}
	if len(f.notifications) != 2 {
		t.Errorf("notifications = %d; want payer + trainer", len(f.notifications))
	}
}

func TestFulfillOrderWriteFailure(t *testing.T) {
	f := &fakeStores{orderErr: errors.New("connection reset")}
	s := newTestService(f)

	_, err := s.Fulfill(context.Background(), serviceOrderResult(1500, "tx_fail"))
	var fErr *Error
	if !errors.As(err, &fErr) {
		t.Fatalf("Fulfill() error = %v; want *Error", err)
	}
	if fErr.OrderType != models.OrderTypeServiceOrder {
		t.Errorf("OrderType = %q; want %q", fErr.OrderType, models.OrderTypeServiceOrder)
	}
	if len(f.transactions) != 0 || len(f.notifications) != 0 {
		t.Error("secondary writes ran despite primary failure")
	}
}

func TestFulfillLedgerFailureQueued(t *testing.T) {
	f := &fakeStores{txnErr: errors.New("deadlock")}
	s := newTestService(f)

	res, err := s.Fulfill(context.Background(), serviceOrderResult(1500, "tx_ledger"))
	if err != nil {
		t.Fatalf("ledger failure must not fail fulfillment: %v", err)
	}
	if res.OrderID == "" {
		t.Error("OrderID empty")
	}
	if len(f.serviceOrders) != 1 {
		t.Errorf("service orders = %d; want 1", len(f.serviceOrders))
	}

	found := false
	for _, ev := range f.outbox {
		if ev.kind == models.OutboxKindTransaction {
			found = true
		}
	}
	if !found {
		t.Errorf("ledger entry not queued for retry; outbox = %+v", f.outbox)
	}
}

func TestFulfillNotificationFailureQueued(t *testing.T) {
	f := &fakeStores{notifErr: errors.New("table missing")}
	s := newTestService(f)

	_, err := s.Fulfill(context.Background(), serviceOrderResult(1500, "tx_notif"))
	if err != nil {
		t.Fatalf("notification failure must not fail fulfillment: %v", err)
	}

	queued := 0
	for _, ev := range f.outbox {
		if ev.kind == models.OutboxKindNotification {
			queued++
		}
	}
	if queued != 2 {
		t.Errorf("queued notifications = %d; want 2", queued)
	}
}

func TestFulfillInvalidMetadata(t *testing.T) {
	f := &fakeStores{}
	s := newTestService(f)

	_, err := s.Fulfill(context.Background(), &payment.VerificationResult{
		Status:        payment.StatusCompleted,
		Amount:        100,
		TransactionID: "tx_bad",
		Metadata:      map[string]interface{}{"service_order_data": `{"broken`},
	})
	var metaErr *MetadataError
	if !errors.As(err, &metaErr) {
		t.Fatalf("Fulfill() error = %v; want *MetadataError", err)
	}
	if len(f.serviceOrders)+len(f.transactions)+len(f.notifications) != 0 {
		t.Error("writes happened despite metadata rejection")
	}
}
