// Package app wires repositories, services and auth into one value shared by
// the HTTP server, the tests and the report command.
package app

import (
	"time"

	"chatbot/middleware"
	"chatbot/pkg/cache"
	"chatbot/pkg/config"
	"chatbot/pkg/repository"
	"chatbot/pkg/services"
	"chatbot/pkg/token"

	"gorm.io/gorm"
)

type Options struct {
	JWTSecret string
	JWTTTL    time.Duration

	Generator     services.GeneratorOptions
	StreamTimeout time.Duration

	PrincipalCacheTTL      time.Duration
	PrincipalCacheMaxItems int

	// nil uses an in-memory store
	Revocations token.RevocationStore
}

// OptionsFromConfig reads Options from the loaded config package.
func OptionsFromConfig() Options {
	return Options{
		JWTSecret: config.JWTSecret,
		JWTTTL:    time.Duration(config.JWTTTLHours) * time.Hour,
		Generator: services.GeneratorOptions{
			OpenAIEnabled: config.IsOpenAIEnabled,
			OpenAIAPIKey:  config.OpenAIAPIKey,
			OpenAIBaseURL: config.OpenAIBaseURL,
			DefaultModel:  config.DefaultModel,
			ChunkDelay:    time.Duration(config.StreamChunkDelayMs) * time.Millisecond,
		},
		StreamTimeout:          time.Duration(config.StreamTimeoutSeconds) * time.Second,
		PrincipalCacheTTL:      time.Duration(config.PrincipalCacheTTLSeconds) * time.Second,
		PrincipalCacheMaxItems: config.PrincipalCacheMaxItems,
	}
}

type App struct {
	DB          *gorm.DB
	JWT         *token.JWTService
	Revocations token.RevocationStore
	Auth        *middleware.Authenticator

	Users     *services.UserService
	Threads   *services.ThreadManager
	Chats     *services.ChatManager
	Feedback  *services.FeedbackManager
	Analytics *services.AnalyticsService

	principals *cache.Cache
}

// Close stops background work started by New.
func (a *App) Close() {
	a.principals.Close()
}

func New(db *gorm.DB, opts Options) *App {
	userRepo := repository.NewUserRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	chatRepo := repository.NewChatRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	revocations := opts.Revocations
	if revocations == nil {
		revocations = token.NewMemoryStore()
	}
	var principals *cache.Cache
	if opts.PrincipalCacheTTL > 0 {
		principals = cache.New(opts.PrincipalCacheMaxItems, time.Minute)
	}

	analytics := services.NewAnalyticsService(activityRepo, chatRepo, threadRepo, userRepo)
	users := services.NewUserService(userRepo, analytics, principals, opts.PrincipalCacheTTL)
	threads := services.NewThreadManager(threadRepo, chatRepo, userRepo)
	jwtSvc := token.NewJWTService(opts.JWTSecret, "chatbot", opts.JWTTTL)

	return &App{
		DB:          db,
		JWT:         jwtSvc,
		Revocations: revocations,
		Auth:        &middleware.Authenticator{JWT: jwtSvc, Revoked: revocations, Principals: users},
		Users:       users,
		Threads:     threads,
		Chats:       services.NewChatManager(threads, chatRepo, services.NewGenerator(opts.Generator), analytics, opts.StreamTimeout),
		Feedback:    services.NewFeedbackManager(feedbackRepo, chatRepo, threadRepo, userRepo),
		Analytics:   analytics,
		principals:  principals,
	}
}
