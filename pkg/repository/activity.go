package repository

import (
	"context"
	"time"

	"chatbot/models"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, l *models.ActivityLog) error {
	l.CreatedAt = l.CreatedAt.UTC()
	return r.db.WithContext(ctx).Create(l).Error
}

// CountBetween counts rows of the given type with from <= created_at < to.
func (r *ActivityRepository) CountBetween(ctx context.Context, t models.ActivityType, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("activity_type = ? AND created_at >= ? AND created_at < ?", t, from.UTC(), to.UTC()).
		Count(&n).Error
	return n, err
}
