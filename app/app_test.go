package app

import (
	"context"
	"testing"
	"time"

	"chatbot/pkg/database"
	"chatbot/pkg/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithPrincipalCache(t *testing.T) {
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)

	a := New(db, Options{JWTSecret: "s", JWTTTL: time.Hour, PrincipalCacheTTL: time.Minute, PrincipalCacheMaxItems: 10})
	require.NotNil(t, a.principals)
	defer a.Close()

	ctx := context.Background()
	u, err := a.Users.Register(ctx, services.SignupRequest{Username: "alice", Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)
	_, err = a.Users.Principal(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, a.principals.Len())

	a.Close()
}

func TestNewWithoutPrincipalCache(t *testing.T) {
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)

	a := New(db, Options{JWTSecret: "s", JWTTTL: time.Hour})
	assert.Nil(t, a.principals)
	a.Close()
}
