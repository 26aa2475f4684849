package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"chatbot/models"
	"chatbot/pkg/logger"
	"chatbot/pkg/metrics"
	"chatbot/pkg/repository"

	"go.uber.org/zap"
)

// Stream event names, as sent over SSE and WebSocket.
const (
	EventChatStart = "chat-start"
	EventChunk     = "chunk"
	EventComplete  = "complete"
	EventError     = "error"
)

const DefaultStreamTimeout = 30 * time.Second

type ChatRequest struct {
	Question    string `json:"question" validate:"notblank,max=10000"`
	IsStreaming bool   `json:"isStreaming"`
	Model       string `json:"model" validate:"max=100"`
}

type StreamEvent struct {
	Name string
	Data any
}

type ChatStartData struct {
	ChatID   uint   `json:"chatId"`
	ThreadID uint   `json:"threadId"`
	Question string `json:"question"`
}

type ChunkData struct {
	Content string `json:"content"`
}

type CompleteData struct {
	ChatID     uint   `json:"chatId"`
	FullAnswer string `json:"fullAnswer"`
}

type ErrorData struct {
	Error string `json:"error"`
}

type ChatManager struct {
	threads       *ThreadManager
	chats         *repository.ChatRepository
	generator     ResponseGenerator
	analytics     *AnalyticsService
	streamTimeout time.Duration
	now           func() time.Time
}

func NewChatManager(threads *ThreadManager, chats *repository.ChatRepository, generator ResponseGenerator, analytics *AnalyticsService, streamTimeout time.Duration) *ChatManager {
	if streamTimeout <= 0 {
		streamTimeout = DefaultStreamTimeout
	}
	return &ChatManager{
		threads:       threads,
		chats:         chats,
		generator:     generator,
		analytics:     analytics,
		streamTimeout: streamTimeout,
		now:           time.Now,
	}
}

func chatCreatedDescription(question string) string {
	return "chat created: " + truncate(question, 50)
}

// prepare validates the request and loads the active thread with its history.
func (m *ChatManager) prepare(ctx context.Context, p models.Principal, req ChatRequest) (*models.Thread, []models.Chat, error) {
	if err := validateStruct(req); err != nil {
		return nil, nil, err
	}
	thread, err := m.threads.GetOrCreateActiveThread(ctx, p.ID)
	if err != nil {
		return nil, nil, err
	}
	history, err := m.chats.History(ctx, thread.ID)
	if err != nil {
		return nil, nil, Internal("failed to load chat history", err)
	}
	return thread, history, nil
}

// Create answers synchronously and persists the chat.
func (m *ChatManager) Create(ctx context.Context, p models.Principal, req ChatRequest) (*models.Chat, error) {
	thread, history, err := m.prepare(ctx, p, req)
	if err != nil {
		return nil, err
	}

	answer, err := m.generator.Generate(ctx, req.Question, history, req.Model)
	if err != nil {
		return nil, Internal("failed to generate answer", err)
	}

	chat := &models.Chat{ThreadID: thread.ID, Question: req.Question, Answer: answer, CreatedAt: m.now()}
	if err := m.chats.Create(ctx, chat); err != nil {
		return nil, Internal("failed to save chat", err)
	}
	if err := m.threads.Touch(ctx, thread.ID); err != nil {
		return nil, err
	}
	m.logChatCreated(ctx, p, chat)
	metrics.ChatsCreated.WithLabelValues("sync").Inc()
	return chat, nil
}

func (m *ChatManager) logChatCreated(ctx context.Context, p models.Principal, chat *models.Chat) {
	if err := m.analytics.LogActivity(ctx, p.ID, models.ActivityChatCreated, chatCreatedDescription(chat.Question)); err != nil {
		logger.L().Warn("chat activity not logged", zap.Uint("chat_id", chat.ID), zap.Error(err))
	}
}

// Stream persists a chat with an empty answer and generates the answer in the
// background. Events arrive on the returned channel, which is closed when the
// stream ends. Cancelling ctx stops generation without saving a partial answer.
func (m *ChatManager) Stream(ctx context.Context, p models.Principal, req ChatRequest) (<-chan StreamEvent, error) {
	thread, history, err := m.prepare(ctx, p, req)
	if err != nil {
		return nil, err
	}
	chat := &models.Chat{ThreadID: thread.ID, Question: req.Question, CreatedAt: m.now()}
	if err := m.chats.Create(ctx, chat); err != nil {
		return nil, Internal("failed to save chat", err)
	}

	out := make(chan StreamEvent, 8)
	go m.runStream(ctx, p, chat, history, req.Model, out)
	return out, nil
}

func (m *ChatManager) runStream(parent context.Context, p models.Principal, chat *models.Chat, history []models.Chat, model string, out chan<- StreamEvent) {
	defer close(out)
	metrics.StreamsActive.Inc()
	defer metrics.StreamsActive.Dec()

	ctx, cancel := context.WithTimeout(parent, m.streamTimeout)
	defer cancel()

	send := func(ctx context.Context, ev StreamEvent) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}
	log := logger.L().With(zap.Uint("chat_id", chat.ID), zap.Uint("user_id", p.ID))

	if !send(ctx, StreamEvent{Name: EventChatStart, Data: ChatStartData{ChatID: chat.ID, ThreadID: chat.ThreadID, Question: chat.Question}}) {
		m.streamCancelled(parent, ctx, out, log)
		return
	}

	var buf strings.Builder
	err := m.generator.Stream(ctx, chat.Question, history, model, func(s string) error {
		buf.WriteString(s)
		if !send(ctx, StreamEvent{Name: EventChunk, Data: ChunkData{Content: s}}) {
			return ctx.Err()
		}
		return nil
	})
	if ctx.Err() != nil {
		m.streamCancelled(parent, ctx, out, log)
		return
	}
	if err != nil {
		metrics.StreamOutcomes.WithLabelValues("failed").Inc()
		log.Error("stream generation failed", zap.Error(err))
		send(ctx, StreamEvent{Name: EventError, Data: ErrorData{Error: "failed to generate answer"}})
		return
	}

	answer := buf.String()
	if err := m.chats.UpdateAnswer(ctx, chat.ID, answer); err != nil {
		metrics.StreamOutcomes.WithLabelValues("failed").Inc()
		log.Error("stream answer not saved", zap.Error(err))
		send(ctx, StreamEvent{Name: EventError, Data: ErrorData{Error: "failed to save answer"}})
		return
	}
	chat.Answer = answer
	// the answer is complete; finish bookkeeping even if the client goes away now
	bg := context.WithoutCancel(ctx)
	if err := m.threads.Touch(bg, chat.ThreadID); err != nil {
		log.Warn("thread activity not updated", zap.Error(err))
	}
	m.logChatCreated(bg, p, chat)
	metrics.ChatsCreated.WithLabelValues("stream").Inc()
	metrics.StreamOutcomes.WithLabelValues("completed").Inc()

	send(ctx, StreamEvent{Name: EventComplete, Data: CompleteData{ChatID: chat.ID, FullAnswer: answer}})
}

// streamCancelled reports a timeout to a still connected client; a client
// disconnect gets no further events.
func (m *ChatManager) streamCancelled(parent, ctx context.Context, out chan<- StreamEvent, log *zap.Logger) {
	metrics.StreamOutcomes.WithLabelValues("cancelled").Inc()
	if parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Warn("stream timed out", zap.Duration("timeout", m.streamTimeout))
		select {
		case out <- StreamEvent{Name: EventError, Data: ErrorData{Error: "stream timed out"}}:
		case <-parent.Done():
		}
		return
	}
	log.Info("stream cancelled by client")
}
