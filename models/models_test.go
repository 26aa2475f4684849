package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPassword(t *testing.T) {
	u := &User{Email: "a@x.com", Name: "alice"}
	require.NoError(t, u.SetPassword("secret123"))
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.True(t, u.CheckPassword("secret123"))
	assert.False(t, u.CheckPassword("secret124"))
}

func TestPrincipal(t *testing.T) {
	u := &User{ID: 3, Email: "root@x.com", Name: "root", Role: RoleAdmin}
	p := u.Principal()
	assert.Equal(t, uint(3), p.ID)
	assert.True(t, p.IsAdmin())
	assert.False(t, Principal{Role: RoleUser}.IsAdmin())
}

func TestFeedbackStatusValid(t *testing.T) {
	assert.True(t, FeedbackPending.Valid())
	assert.True(t, FeedbackResolved.Valid())
	assert.False(t, FeedbackStatus("OPEN").Valid())
}
