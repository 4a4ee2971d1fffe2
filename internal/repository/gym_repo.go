package repository

import (
	"context"

	"gorm.io/gorm"

	"fitmarket/internal/models"
)

// GymRepository handles the gym fields this service touches.
type GymRepository struct {
	db *gorm.DB
}

func NewGymRepository(db *gorm.DB) *GymRepository {
	return &GymRepository{db: db}
}

func (r *GymRepository) FindByID(ctx context.Context, gymID string) (*models.Gym, error) {
	var gym models.Gym
	if err := r.db.WithContext(ctx).Where("id = ?", gymID).First(&gym).Error; err != nil {
		return nil, err
	}
	return &gym, nil
}

// IncrementMemberCount bumps the gym's member counter by one.
func (r *GymRepository) IncrementMemberCount(ctx context.Context, gymID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Gym{}).
		Where("id = ?", gymID).
		UpdateColumn("member_count", gorm.Expr("member_count + 1")).Error
}
