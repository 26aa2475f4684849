package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"chatbot/models"

	"github.com/sashabaranov/go-openai"
)

// OpenAIGenerator answers through an OpenAI-compatible chat completion API.
type OpenAIGenerator struct {
	client       *openai.Client
	defaultModel string
}

func NewOpenAIGenerator(apiKey, baseURL, defaultModel string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg), defaultModel: defaultModel}
}

func (g *OpenAIGenerator) request(question string, history []models.Chat, model string) openai.ChatCompletionRequest {
	if strings.TrimSpace(model) == "" {
		model = g.defaultModel
	}
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)*2+1)
	for _, c := range history {
		msgs = append(msgs,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: c.Question},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: c.Answer},
		)
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: question})
	return openai.ChatCompletionRequest{Model: model, Messages: msgs}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, question string, history []models.Chat, model string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, g.request(question, history, model))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) Stream(ctx context.Context, question string, history []models.Chat, model string, onChunk func(string) error) error {
	req := g.request(question, history, model)
	req.Stream = true
	stream, err := g.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}
		if err := onChunk(resp.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
}
