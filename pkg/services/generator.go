package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chatbot/models"
	"chatbot/pkg/logger"

	"go.uber.org/zap"
)

// ResponseGenerator produces the answer for a question given the thread's prior chats.
type ResponseGenerator interface {
	Generate(ctx context.Context, question string, history []models.Chat, model string) (string, error)
	// Stream calls onChunk for every piece of the answer, in order. The
	// concatenation of all chunks is the full answer. A non-nil error from
	// onChunk stops the stream and is returned.
	Stream(ctx context.Context, question string, history []models.Chat, model string, onChunk func(string) error) error
}

// EchoGenerator is the local stand-in for a completion provider: it echoes the
// question and, when streaming, emits one word per ChunkDelay.
type EchoGenerator struct {
	DefaultModel string
	ChunkDelay   time.Duration
}

func NewEchoGenerator(defaultModel string, chunkDelay time.Duration) *EchoGenerator {
	if defaultModel == "" {
		defaultModel = "gpt-3.5-turbo"
	}
	return &EchoGenerator{DefaultModel: defaultModel, ChunkDelay: chunkDelay}
}

func (g *EchoGenerator) model(m string) string {
	if strings.TrimSpace(m) == "" {
		return g.DefaultModel
	}
	return strings.TrimSpace(m)
}

// Reply is the synchronous echo text.
func (g *EchoGenerator) Reply(question string, history []models.Chat, model string) string {
	return fmt.Sprintf("[%s] Echo: %s (answered with %d previous chats as context)", g.model(model), question, len(history))
}

// StreamReply is the echo text used in streaming mode.
func (g *EchoGenerator) StreamReply(question string, history []models.Chat, model string) string {
	return fmt.Sprintf("[%s streaming] Echo: %s (answered with %d previous chats as context)", g.model(model), question, len(history))
}

func (g *EchoGenerator) Generate(ctx context.Context, question string, history []models.Chat, model string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.Reply(question, history, model), nil
}

func (g *EchoGenerator) Stream(ctx context.Context, question string, history []models.Chat, model string, onChunk func(string) error) error {
	words := strings.Split(g.StreamReply(question, history, model), " ")
	for i, w := range words {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := w
		if i < len(words)-1 {
			chunk += " "
		}
		if err := onChunk(chunk); err != nil {
			return err
		}
		if i < len(words)-1 && g.ChunkDelay > 0 {
			sleepWithContext(ctx, g.ChunkDelay)
		}
	}
	return ctx.Err()
}

// FallbackGenerator tries Primary and falls back to Fallback when it fails
// before producing anything.
type FallbackGenerator struct {
	Primary  ResponseGenerator
	Fallback ResponseGenerator
}

func (g *FallbackGenerator) Generate(ctx context.Context, question string, history []models.Chat, model string) (string, error) {
	resp, err := g.Primary.Generate(ctx, question, history, model)
	if err == nil && strings.TrimSpace(resp) != "" {
		return resp, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	logger.L().Warn("primary generator failed, using fallback", zap.Error(err))
	return g.Fallback.Generate(ctx, question, history, model)
}

func (g *FallbackGenerator) Stream(ctx context.Context, question string, history []models.Chat, model string, onChunk func(string) error) error {
	emitted := false
	err := g.Primary.Stream(ctx, question, history, model, func(s string) error {
		emitted = true
		return onChunk(s)
	})
	if err == nil && emitted {
		return nil
	}
	if emitted || ctx.Err() != nil {
		return err
	}
	logger.L().Warn("primary stream failed, using fallback", zap.Error(err))
	return g.Fallback.Stream(ctx, question, history, model, onChunk)
}

// GeneratorOptions selects and configures the response generator.
type GeneratorOptions struct {
	OpenAIEnabled bool
	OpenAIAPIKey  string
	OpenAIBaseURL string
	DefaultModel  string
	ChunkDelay    time.Duration
}

// NewGenerator returns the echo generator, wrapped behind OpenAI when enabled.
func NewGenerator(opts GeneratorOptions) ResponseGenerator {
	echo := NewEchoGenerator(opts.DefaultModel, opts.ChunkDelay)
	if !opts.OpenAIEnabled || strings.TrimSpace(opts.OpenAIAPIKey) == "" {
		return echo
	}
	return &FallbackGenerator{
		Primary:  NewOpenAIGenerator(opts.OpenAIAPIKey, opts.OpenAIBaseURL, echo.DefaultModel),
		Fallback: echo,
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
