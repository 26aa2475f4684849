package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtoiOr(t *testing.T) {
	assert.Equal(t, 7, atoiOr("", 7))
	assert.Equal(t, 7, atoiOr("nope", 7))
	assert.Equal(t, 42, atoiOr("42", 7))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Nil(t, splitList(""))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("STREAM_CHUNK_DELAY_MS", "")

	Load()

	assert.True(t, IsStaging)
	assert.Equal(t, "8080", Port)
	assert.Equal(t, "sqlite", DBDriver)
	assert.Equal(t, 100, StreamChunkDelayMs)
	assert.Equal(t, 30, StreamTimeoutSeconds)
	assert.NotEmpty(t, JWTSecret)
}
