package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatbot/models"
	"chatbot/pkg/cache"
	"chatbot/pkg/database"
	"chatbot/pkg/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	users     *UserService
	analytics *AnalyticsService
	threads   *ThreadManager
	chats     *ChatManager
	feedback  *FeedbackManager
}

func newTestEnv(t *testing.T, gen ResponseGenerator, streamTimeout time.Duration) *testEnv {
	t.Helper()
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	chatRepo := repository.NewChatRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	if gen == nil {
		gen = NewEchoGenerator("test-model", 0)
	}
	analytics := NewAnalyticsService(activityRepo, chatRepo, threadRepo, userRepo)
	threads := NewThreadManager(threadRepo, chatRepo, userRepo)
	return &testEnv{
		db:        db,
		users:     NewUserService(userRepo, analytics, cache.New(100, 0), time.Minute),
		analytics: analytics,
		threads:   threads,
		chats:     NewChatManager(threads, chatRepo, gen, analytics, streamTimeout),
		feedback:  NewFeedbackManager(feedbackRepo, chatRepo, threadRepo, userRepo),
	}
}

func (e *testEnv) signup(t *testing.T, name string) models.Principal {
	t.Helper()
	u, err := e.users.Register(context.Background(), SignupRequest{Username: name, Email: name + "@example.com", Password: "password1"})
	require.NoError(t, err)
	return u.Principal()
}

func (e *testEnv) admin(t *testing.T) models.Principal {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.users.EnsureAdmin(ctx, "root@example.com", "root", "rootpass1"))
	u, err := repository.NewUserRepository(e.db).FindByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	return u.Principal()
}

func (e *testEnv) countActivity(t *testing.T, typ models.ActivityType) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.ActivityLog{}).Where("activity_type = ?", typ).Count(&n).Error)
	return n
}

func requireKind(t *testing.T, err error, want Kind) *Error {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, kindOf(err), err.Error())
	se, _ := err.(*Error)
	return se
}

func kindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
