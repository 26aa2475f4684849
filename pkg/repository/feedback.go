package repository

import (
	"context"

	"chatbot/models"

	"gorm.io/gorm"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, f *models.Feedback) error {
	f.CreatedAt = f.CreatedAt.UTC()
	return translate(r.db.WithContext(ctx).Create(f).Error)
}

func (r *FeedbackRepository) FindByID(ctx context.Context, id uint) (*models.Feedback, error) {
	var f models.Feedback
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func (r *FeedbackRepository) Exists(ctx context.Context, userID, chatID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Feedback{}).
		Where("user_id = ? AND chat_id = ?", userID, chatID).
		Count(&n).Error
	return n > 0, err
}

func (r *FeedbackRepository) UpdateStatus(ctx context.Context, id uint, status models.FeedbackStatus) error {
	return r.db.WithContext(ctx).Model(&models.Feedback{}).Where("id = ?", id).Update("status", status).Error
}

// Page lists feedback ordered by created_at. A nil userID lists everyone's;
// a nil isPositive skips the polarity filter.
func (r *FeedbackRepository) Page(ctx context.Context, userID *uint, isPositive *bool, req PageRequest) ([]models.Feedback, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Feedback{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if isPositive != nil {
		q = q.Where("is_positive = ?", *isPositive)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Feedback
	err := q.Order(req.order("created_at")).Limit(req.Size).Offset(req.offset()).Find(&rows).Error
	return rows, total, err
}

// CountByPolarity returns the number of positive and negative feedback rows.
func (r *FeedbackRepository) CountByPolarity(ctx context.Context) (positive, negative int64, err error) {
	if err = r.db.WithContext(ctx).Model(&models.Feedback{}).Where("is_positive = ?", true).Count(&positive).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).Model(&models.Feedback{}).Where("is_positive = ?", false).Count(&negative).Error; err != nil {
		return 0, 0, err
	}
	return positive, negative, nil
}
