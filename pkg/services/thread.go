package services

import (
	"context"
	"errors"
	"time"

	"chatbot/models"
	"chatbot/pkg/logger"
	"chatbot/pkg/repository"

	"go.uber.org/zap"
)

type ThreadManager struct {
	threads *repository.ThreadRepository
	chats   *repository.ChatRepository
	users   *repository.UserRepository
	now     func() time.Time
}

func NewThreadManager(threads *repository.ThreadRepository, chats *repository.ChatRepository, users *repository.UserRepository) *ThreadManager {
	return &ThreadManager{threads: threads, chats: chats, users: users, now: time.Now}
}

// GetOrCreateActiveThread reuses the user's most recent thread active within
// models.ThreadInactivity, or starts a new one. Two concurrent first chats may
// both create a thread.
func (m *ThreadManager) GetOrCreateActiveThread(ctx context.Context, userID uint) (*models.Thread, error) {
	now := m.now()
	t, err := m.threads.FindActive(ctx, userID, now.Add(-models.ThreadInactivity))
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, Internal("failed to load active thread", err)
	}

	t = &models.Thread{UserID: userID, CreatedAt: now, LastActivityAt: now}
	if err := m.threads.Create(ctx, t); err != nil {
		return nil, Internal("failed to create thread", err)
	}
	logger.L().Debug("thread created", zap.Uint("thread_id", t.ID), zap.Uint("user_id", userID))
	return t, nil
}

// Touch marks the thread active now.
func (m *ThreadManager) Touch(ctx context.Context, threadID uint) error {
	if err := m.threads.Touch(ctx, threadID, m.now()); err != nil {
		return Internal("failed to update thread activity", err)
	}
	return nil
}

// ListThreads pages all threads for admins and the caller's own otherwise.
func (m *ThreadManager) ListThreads(ctx context.Context, p models.Principal, req repository.PageRequest) (repository.Page[ThreadSummary], error) {
	req = req.Normalize(10)
	var owner *uint
	if !p.IsAdmin() {
		owner = &p.ID
	}
	threads, total, err := m.threads.Page(ctx, owner, req)
	if err != nil {
		return repository.Page[ThreadSummary]{}, Internal("failed to list threads", err)
	}

	threadIDs := make([]uint, 0, len(threads))
	userIDs := make([]uint, 0, len(threads))
	for _, t := range threads {
		threadIDs = append(threadIDs, t.ID)
		userIDs = append(userIDs, t.UserID)
	}
	counts, err := m.chats.CountByThreads(ctx, threadIDs)
	if err != nil {
		return repository.Page[ThreadSummary]{}, Internal("failed to count chats", err)
	}
	users, err := m.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return repository.Page[ThreadSummary]{}, Internal("failed to load users", err)
	}

	page := repository.NewPage(threads, req, total)
	return repository.MapPage(page, func(t models.Thread) ThreadSummary {
		u := users[t.UserID]
		return ThreadSummary{
			ID:             t.ID,
			UserName:       u.Name,
			UserEmail:      u.Email,
			CreatedAt:      t.CreatedAt,
			LastActivityAt: t.LastActivityAt,
			ChatCount:      counts[t.ID],
		}
	}), nil
}

// ThreadChats pages a thread's chats for its owner or an admin.
func (m *ThreadManager) ThreadChats(ctx context.Context, p models.Principal, threadID uint, req repository.PageRequest) (repository.Page[ChatView], error) {
	req = req.Normalize(20)
	t, err := m.find(ctx, threadID)
	if err != nil {
		return repository.Page[ChatView]{}, err
	}
	if t.UserID != p.ID && !p.IsAdmin() {
		return repository.Page[ChatView]{}, Forbidden("you can only view your own threads")
	}
	chats, total, err := m.chats.PageByThread(ctx, t.ID, req)
	if err != nil {
		return repository.Page[ChatView]{}, Internal("failed to list chats", err)
	}
	return repository.MapPage(repository.NewPage(chats, req, total), NewChatView), nil
}

// DeleteThread removes one of the caller's own threads along with its chats and their feedback.
func (m *ThreadManager) DeleteThread(ctx context.Context, p models.Principal, threadID uint) error {
	t, err := m.find(ctx, threadID)
	if err != nil {
		return err
	}
	if t.UserID != p.ID {
		return Forbidden("you can only delete your own threads")
	}
	if err := m.threads.Delete(ctx, t.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFound("thread not found")
		}
		return Internal("failed to delete thread", err)
	}
	logger.L().Info("thread deleted", zap.Uint("thread_id", t.ID), zap.Uint("user_id", p.ID))
	return nil
}

func (m *ThreadManager) find(ctx context.Context, id uint) (*models.Thread, error) {
	t, err := m.threads.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("thread not found")
	}
	if err != nil {
		return nil, Internal("failed to load thread", err)
	}
	return t, nil
}
