package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoStreamChunks(t *testing.T) {
	g := NewEchoGenerator("", 0)
	history := []models.Chat{{Question: "q", Answer: "a"}}

	var chunks []string
	err := g.Stream(context.Background(), "two words", history, "", func(s string) error {
		chunks = append(chunks, s)
		return nil
	})
	require.NoError(t, err)

	want := g.StreamReply("two words", history, "")
	assert.Equal(t, want, strings.Join(chunks, ""))
	assert.Len(t, chunks, len(strings.Split(want, " ")))
	for _, c := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(c, " "), c)
	}
	assert.Contains(t, want, "[gpt-3.5-turbo streaming]")
}

func TestEchoStreamStopsOnCallbackError(t *testing.T) {
	g := NewEchoGenerator("m", 0)
	stop := errors.New("stop")
	n := 0
	err := g.Stream(context.Background(), "a b c", nil, "", func(string) error {
		n++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, n)
}

func TestFallbackGenerator(t *testing.T) {
	echo := NewEchoGenerator("m", 0)
	g := &FallbackGenerator{Primary: failingGenerator{}, Fallback: echo}

	got, err := g.Generate(context.Background(), "hi", nil, "")
	require.NoError(t, err)
	assert.Equal(t, echo.Reply("hi", nil, ""), got)

	var sb strings.Builder
	require.NoError(t, g.Stream(context.Background(), "hi", nil, "", func(s string) error {
		sb.WriteString(s)
		return nil
	}))
	assert.Equal(t, echo.StreamReply("hi", nil, ""), sb.String())
}

func TestNewGeneratorSelection(t *testing.T) {
	_, isEcho := NewGenerator(GeneratorOptions{DefaultModel: "m"}).(*EchoGenerator)
	assert.True(t, isEcho)

	_, isEcho = NewGenerator(GeneratorOptions{OpenAIEnabled: true, DefaultModel: "m"}).(*EchoGenerator)
	assert.True(t, isEcho, "enabled without a key stays on echo")

	_, isFallback := NewGenerator(GeneratorOptions{OpenAIEnabled: true, OpenAIAPIKey: "k"}).(*FallbackGenerator)
	assert.True(t, isFallback)
}

func fakeOpenAI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		var body struct {
			Model    string `json:"model"`
			Stream   bool   `json:"stream"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		assert.Equal(t, "gpt-test", body.Model)
		assert.Len(t, body.Messages, 3)

		if !body.Stream {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"c1","object":"chat.completion","model":"gpt-test","choices":[{"index":0,"message":{"role":"assistant","content":"hello there"},"finish_reason":"stop"}]}`)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"hello ", "there"} {
			fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"model\":\"gpt-test\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIGenerator(t *testing.T) {
	srv := fakeOpenAI(t)
	g := NewOpenAIGenerator("test-key", srv.URL+"/v1/", "gpt-test")
	history := []models.Chat{{Question: "earlier", Answer: "reply"}}

	got, err := g.Generate(context.Background(), "now", history, "")
	require.NoError(t, err)
	assert.Equal(t, "hello there", got)

	var chunks []string
	require.NoError(t, g.Stream(context.Background(), "now", history, "gpt-test", func(s string) error {
		chunks = append(chunks, s)
		return nil
	}))
	assert.Equal(t, []string{"hello ", "there"}, chunks)
}
