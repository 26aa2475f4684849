package services

import (
	"time"

	"chatbot/models"
)

type ChatView struct {
	ID        uint      `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	ThreadID  uint      `json:"threadId"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewChatView(c models.Chat) ChatView {
	return ChatView{ID: c.ID, Question: c.Question, Answer: c.Answer, ThreadID: c.ThreadID, CreatedAt: c.CreatedAt}
}

type ThreadSummary struct {
	ID             uint      `json:"id"`
	UserName       string    `json:"userName"`
	UserEmail      string    `json:"userEmail"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	ChatCount      int64     `json:"chatCount"`
}

// FeedbackView identifies the author by email in userId.
type FeedbackView struct {
	ID         uint                  `json:"id"`
	UserID     string                `json:"userId"`
	UserName   string                `json:"userName"`
	ChatID     uint                  `json:"chatId"`
	IsPositive bool                  `json:"isPositive"`
	Status     models.FeedbackStatus `json:"status"`
	CreatedAt  time.Time             `json:"createdAt"`
}

func NewFeedbackView(f models.Feedback, author models.User) FeedbackView {
	return FeedbackView{
		ID:         f.ID,
		UserID:     author.Email,
		UserName:   author.Name,
		ChatID:     f.ChatID,
		IsPositive: f.IsPositive,
		Status:     f.Status,
		CreatedAt:  f.CreatedAt,
	}
}

type FeedbackStats struct {
	Positive int64 `json:"positive"`
	Negative int64 `json:"negative"`
	Total    int64 `json:"total"`
}
