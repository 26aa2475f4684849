package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"chatbot/models"
	"chatbot/pkg/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, events <-chan StreamEvent) []StreamEvent {
	t.Helper()
	var out []StreamEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("stream did not finish, got %d events", len(out))
		}
	}
}

func TestCreateChatSync(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	ctx := context.Background()
	p := env.signup(t, "alice")

	first, err := env.chats.Create(ctx, p, ChatRequest{Question: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "[test-model] Echo: Hello (answered with 0 previous chats as context)", first.Answer)

	second, err := env.chats.Create(ctx, p, ChatRequest{Question: "Again", Model: "other"})
	require.NoError(t, err)
	assert.Equal(t, first.ThreadID, second.ThreadID)
	assert.Equal(t, "[other] Echo: Again (answered with 1 previous chats as context)", second.Answer)

	assert.Equal(t, int64(2), env.countActivity(t, models.ActivityChatCreated))

	var desc string
	require.NoError(t, env.db.Model(&models.ActivityLog{}).
		Where("activity_type = ?", models.ActivityChatCreated).
		Order("id ASC").Limit(1).Pluck("description", &desc).Error)
	assert.Equal(t, "chat created: Hello", desc)
}

func TestCreateChatRejectsBlankQuestion(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	p := env.signup(t, "alice")
	_, err := env.chats.Create(context.Background(), p, ChatRequest{Question: "   "})
	se := requireKind(t, err, KindValidation)
	assert.Contains(t, se.Fields, "question")
}

func TestChatCreatedDescriptionTruncates(t *testing.T) {
	q := strings.Repeat("é", 80)
	assert.Equal(t, "chat created: "+strings.Repeat("é", 50), chatCreatedDescription(q))
}

func TestStreamChunksConcatenate(t *testing.T) {
	env := newTestEnv(t, nil, 0)
	ctx := context.Background()
	p := env.signup(t, "alice")

	events, err := env.chats.Stream(ctx, p, ChatRequest{Question: "how are you today", IsStreaming: true})
	require.NoError(t, err)
	got := collect(t, events)
	require.GreaterOrEqual(t, len(got), 3)

	start, ok := got[0].Data.(ChatStartData)
	require.True(t, ok)
	assert.Equal(t, EventChatStart, got[0].Name)
	assert.Equal(t, "how are you today", start.Question)

	var sb strings.Builder
	for _, ev := range got[1 : len(got)-1] {
		require.Equal(t, EventChunk, ev.Name)
		sb.WriteString(ev.Data.(ChunkData).Content)
	}
	last := got[len(got)-1]
	require.Equal(t, EventComplete, last.Name)
	done := last.Data.(CompleteData)
	assert.Equal(t, start.ChatID, done.ChatID)
	assert.Equal(t, sb.String(), done.FullAnswer)
	assert.Equal(t, "[test-model streaming] Echo: how are you today (answered with 0 previous chats as context)", done.FullAnswer)

	saved, err := repository.NewChatRepository(env.db).FindByID(ctx, done.ChatID)
	require.NoError(t, err)
	assert.Equal(t, done.FullAnswer, saved.Answer)
	assert.Equal(t, int64(1), env.countActivity(t, models.ActivityChatCreated))
}

func TestStreamCancelledKeepsEmptyAnswer(t *testing.T) {
	env := newTestEnv(t, NewEchoGenerator("m", 50*time.Millisecond), 0)
	p := env.signup(t, "alice")

	ctx, cancel := context.WithCancel(context.Background())
	events, err := env.chats.Stream(ctx, p, ChatRequest{Question: "a long question with many words"})
	require.NoError(t, err)

	first := <-events
	require.Equal(t, EventChatStart, first.Name)
	cancel()

	for ev := range events {
		assert.NotEqual(t, EventComplete, ev.Name)
		assert.NotEqual(t, EventError, ev.Name)
	}

	saved, err := repository.NewChatRepository(env.db).FindByID(context.Background(), first.Data.(ChatStartData).ChatID)
	require.NoError(t, err)
	assert.Empty(t, saved.Answer)
	assert.Zero(t, env.countActivity(t, models.ActivityChatCreated))
}

func TestStreamTimeout(t *testing.T) {
	env := newTestEnv(t, NewEchoGenerator("m", 50*time.Millisecond), 20*time.Millisecond)
	p := env.signup(t, "alice")

	events, err := env.chats.Stream(context.Background(), p, ChatRequest{Question: "slow answer please"})
	require.NoError(t, err)
	got := collect(t, events)
	last := got[len(got)-1]
	assert.Equal(t, EventError, last.Name)
	assert.Equal(t, "stream timed out", last.Data.(ErrorData).Error)
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string, []models.Chat, string) (string, error) {
	return "", errors.New("provider down")
}

func (failingGenerator) Stream(context.Context, string, []models.Chat, string, func(string) error) error {
	return errors.New("provider down")
}

func TestStreamGeneratorFailure(t *testing.T) {
	env := newTestEnv(t, failingGenerator{}, 0)
	p := env.signup(t, "alice")

	events, err := env.chats.Stream(context.Background(), p, ChatRequest{Question: "hi"})
	require.NoError(t, err)
	got := collect(t, events)
	require.Len(t, got, 2)
	assert.Equal(t, EventChatStart, got[0].Name)
	assert.Equal(t, EventError, got[1].Name)

	_, err = env.chats.Create(context.Background(), p, ChatRequest{Question: "hi"})
	requireKind(t, err, KindInternal)
}
