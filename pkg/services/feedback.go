package services

import (
	"context"
	"errors"
	"time"

	"chatbot/models"
	"chatbot/pkg/logger"
	"chatbot/pkg/metrics"
	"chatbot/pkg/repository"

	"go.uber.org/zap"
)

type FeedbackRequest struct {
	ChatID     uint  `json:"chatId" validate:"required"`
	IsPositive *bool `json:"isPositive" validate:"required"`
}

type FeedbackStatusRequest struct {
	Status models.FeedbackStatus `json:"status" validate:"required,oneof=PENDING RESOLVED"`
}

// FeedbackFilter narrows a feedback listing; a nil IsPositive lists both polarities.
type FeedbackFilter struct {
	IsPositive *bool
	repository.PageRequest
}

type FeedbackManager struct {
	feedback *repository.FeedbackRepository
	chats    *repository.ChatRepository
	threads  *repository.ThreadRepository
	users    *repository.UserRepository
	now      func() time.Time
}

func NewFeedbackManager(feedback *repository.FeedbackRepository, chats *repository.ChatRepository, threads *repository.ThreadRepository, users *repository.UserRepository) *FeedbackManager {
	return &FeedbackManager{feedback: feedback, chats: chats, threads: threads, users: users, now: time.Now}
}

// Create records the caller's rating of a chat in one of their threads (any chat for admins).
func (m *FeedbackManager) Create(ctx context.Context, p models.Principal, req FeedbackRequest) (*FeedbackView, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	chat, err := m.chats.FindByID(ctx, req.ChatID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("chat not found")
	}
	if err != nil {
		return nil, Internal("failed to load chat", err)
	}
	thread, err := m.threads.FindByID(ctx, chat.ThreadID)
	if err != nil {
		return nil, Internal("failed to load thread", err)
	}
	if thread.UserID != p.ID && !p.IsAdmin() {
		return nil, Forbidden("you can only give feedback on your own chats")
	}

	dup, err := m.feedback.Exists(ctx, p.ID, chat.ID)
	if err != nil {
		return nil, Internal("failed to check feedback", err)
	}
	if dup {
		return nil, FieldError("chatId", "feedback already submitted for this chat")
	}

	f := &models.Feedback{
		UserID:     p.ID,
		ChatID:     chat.ID,
		IsPositive: *req.IsPositive,
		Status:     models.FeedbackPending,
		CreatedAt:  m.now(),
	}
	if err := m.feedback.Create(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, FieldError("chatId", "feedback already submitted for this chat")
		}
		return nil, Internal("failed to save feedback", err)
	}
	metrics.FeedbackCreated.WithLabelValues(polarity(f.IsPositive)).Inc()
	logger.L().Info("feedback created", zap.Uint("feedback_id", f.ID), zap.Uint("chat_id", f.ChatID), zap.Bool("positive", f.IsPositive))

	view := NewFeedbackView(*f, models.User{ID: p.ID, Email: p.Email, Name: p.Name})
	return &view, nil
}

func polarity(positive bool) string {
	if positive {
		return "positive"
	}
	return "negative"
}

// List pages all feedback for admins and the caller's own otherwise.
func (m *FeedbackManager) List(ctx context.Context, p models.Principal, filter FeedbackFilter) (repository.Page[FeedbackView], error) {
	req := filter.PageRequest.Normalize(10)
	var owner *uint
	if !p.IsAdmin() {
		owner = &p.ID
	}
	rows, total, err := m.feedback.Page(ctx, owner, filter.IsPositive, req)
	if err != nil {
		return repository.Page[FeedbackView]{}, Internal("failed to list feedback", err)
	}
	ids := make([]uint, 0, len(rows))
	for _, f := range rows {
		ids = append(ids, f.UserID)
	}
	authors, err := m.users.FindByIDs(ctx, ids)
	if err != nil {
		return repository.Page[FeedbackView]{}, Internal("failed to load users", err)
	}
	return repository.MapPage(repository.NewPage(rows, req, total), func(f models.Feedback) FeedbackView {
		return NewFeedbackView(f, authors[f.UserID])
	}), nil
}

func (m *FeedbackManager) UpdateStatus(ctx context.Context, p models.Principal, id uint, req FeedbackStatusRequest) (*FeedbackView, error) {
	if !p.IsAdmin() {
		return nil, Forbidden("only administrators can update feedback status")
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	f, err := m.feedback.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("feedback not found")
	}
	if err != nil {
		return nil, Internal("failed to load feedback", err)
	}
	if err := m.feedback.UpdateStatus(ctx, f.ID, req.Status); err != nil {
		return nil, Internal("failed to update feedback", err)
	}
	f.Status = req.Status

	author, err := m.users.FindByID(ctx, f.UserID)
	if err != nil {
		return nil, Internal("failed to load feedback author", err)
	}
	logger.L().Info("feedback status updated", zap.Uint("feedback_id", f.ID), zap.String("status", string(f.Status)))
	view := NewFeedbackView(*f, *author)
	return &view, nil
}

func (m *FeedbackManager) Stats(ctx context.Context, p models.Principal) (*FeedbackStats, error) {
	if !p.IsAdmin() {
		return nil, Forbidden("only administrators can view feedback statistics")
	}
	pos, neg, err := m.feedback.CountByPolarity(ctx)
	if err != nil {
		return nil, Internal("failed to count feedback", err)
	}
	return &FeedbackStats{Positive: pos, Negative: neg, Total: pos + neg}, nil
}
