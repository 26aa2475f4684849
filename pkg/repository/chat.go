package repository

import (
	"context"
	"time"

	"chatbot/models"

	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, c *models.Chat) error {
	c.CreatedAt = c.CreatedAt.UTC()
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *ChatRepository) FindByID(ctx context.Context, id uint) (*models.Chat, error) {
	var c models.Chat
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *ChatRepository) UpdateAnswer(ctx context.Context, id uint, answer string) error {
	return r.db.WithContext(ctx).Model(&models.Chat{}).Where("id = ?", id).Update("answer", answer).Error
}

// History returns every chat of the thread, oldest first.
func (r *ChatRepository) History(ctx context.Context, threadID uint) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.WithContext(ctx).Where("thread_id = ?", threadID).Order("created_at ASC, id ASC").Find(&chats).Error
	return chats, err
}

func (r *ChatRepository) PageByThread(ctx context.Context, threadID uint, req PageRequest) ([]models.Chat, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Chat{}).Where("thread_id = ?", threadID)
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var chats []models.Chat
	err := q.Order(req.order("created_at")).Limit(req.Size).Offset(req.offset()).Find(&chats).Error
	return chats, total, err
}

// CountByThreads returns the number of chats per thread id.
func (r *ChatRepository) CountByThreads(ctx context.Context, threadIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(threadIDs))
	if len(threadIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ThreadID uint
		N        int64
	}
	err := r.db.WithContext(ctx).Model(&models.Chat{}).
		Select("thread_id, COUNT(*) AS n").
		Where("thread_id IN ?", threadIDs).
		Group("thread_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ThreadID] = row.N
	}
	return out, nil
}

// CreatedBetween returns chats with from <= created_at < to, oldest first.
func (r *ChatRepository) CreatedBetween(ctx context.Context, from, to time.Time) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Order("created_at ASC, id ASC").
		Find(&chats).Error
	return chats, err
}
