package repository

import (
	"context"
	"time"

	"chatbot/models"

	"gorm.io/gorm"
)

type ThreadRepository struct {
	db *gorm.DB
}

func NewThreadRepository(db *gorm.DB) *ThreadRepository {
	return &ThreadRepository{db: db}
}

func (r *ThreadRepository) Create(ctx context.Context, t *models.Thread) error {
	t.CreatedAt = t.CreatedAt.UTC()
	t.LastActivityAt = t.LastActivityAt.UTC()
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *ThreadRepository) FindByID(ctx context.Context, id uint) (*models.Thread, error) {
	var t models.Thread
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// FindActive returns the user's most recently active thread with activity after
// cutoff, or ErrNotFound.
func (r *ThreadRepository) FindActive(ctx context.Context, userID uint, cutoff time.Time) (*models.Thread, error) {
	var t models.Thread
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND last_activity_at > ?", userID, cutoff.UTC()).
		Order("last_activity_at DESC").
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// Touch sets last_activity_at.
func (r *ThreadRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Thread{}).Where("id = ?", id).
		Update("last_activity_at", at.UTC()).Error
}

// Page lists threads ordered by created_at; a nil userID lists every user's threads.
func (r *ThreadRepository) Page(ctx context.Context, userID *uint, req PageRequest) ([]models.Thread, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Thread{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var threads []models.Thread
	err := q.Order(req.order("created_at")).Limit(req.Size).Offset(req.offset()).Find(&threads).Error
	return threads, total, err
}

// Delete removes the thread, its chats and the feedback on those chats in one transaction.
func (r *ThreadRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chatIDs := tx.Model(&models.Chat{}).Select("id").Where("thread_id = ?", id)
		if err := tx.Where("chat_id IN (?)", chatIDs).Delete(&models.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_id = ?", id).Delete(&models.Chat{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Thread{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
