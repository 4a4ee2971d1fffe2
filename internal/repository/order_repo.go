package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fitmarket/internal/models"
)

// OrderRepository handles the three order-record tables.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) CreateServiceOrder(ctx context.Context, order *models.ServiceOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) CreateGymMembership(ctx context.Context, membership *models.GymMembership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *OrderRepository) CreateTrainerBooking(ctx context.Context, booking *models.TrainerBooking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// FindServiceOrderByUpstreamID returns the order created for an upstream
// transaction id, or nil if none exists.
func (r *OrderRepository) FindServiceOrderByUpstreamID(ctx context.Context, txnID string) (*models.ServiceOrder, error) {
	var order models.ServiceOrder
	err := r.db.WithContext(ctx).Where("upstream_txn_id = ?", txnID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) FindGymMembershipByUpstreamID(ctx context.Context, txnID string) (*models.GymMembership, error) {
	var membership models.GymMembership
	err := r.db.WithContext(ctx).Where("upstream_txn_id = ?", txnID).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *OrderRepository) FindTrainerBookingByUpstreamID(ctx context.Context, txnID string) (*models.TrainerBooking, error) {
	var booking models.TrainerBooking
	err := r.db.WithContext(ctx).Where("upstream_txn_id = ?", txnID).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
