package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"chatbot/models"
	"chatbot/pkg/cache"
	"chatbot/pkg/logger"
	"chatbot/pkg/repository"

	"go.uber.org/zap"
)

type SignupRequest struct {
	Username string `json:"username" validate:"notblank,min=3,max=50"`
	Email    string `json:"email" validate:"notblank,email"`
	Password string `json:"password" validate:"notblank,password"`
}

// LoginRequest accepts either the email or the name in Username.
type LoginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

type UserService struct {
	users        *repository.UserRepository
	analytics    *AnalyticsService
	principals   *cache.Cache
	principalTTL time.Duration
	now          func() time.Time
}

// NewUserService caches resolved principals in principals for ttl; a nil cache disables caching.
func NewUserService(users *repository.UserRepository, analytics *AnalyticsService, principals *cache.Cache, ttl time.Duration) *UserService {
	return &UserService{users: users, analytics: analytics, principals: principals, principalTTL: ttl, now: time.Now}
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *UserService) Register(ctx context.Context, req SignupRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByName(ctx, req.Username)
	if err != nil {
		return nil, Internal("failed to check username", err)
	}
	if exists {
		return nil, FieldError("username", "username is already taken")
	}
	exists, err = s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, Internal("failed to check email", err)
	}
	if exists {
		return nil, FieldError("email", "email is already registered")
	}

	u := &models.User{
		Email:     req.Email,
		Name:      req.Username,
		Role:      models.RoleUser,
		Enabled:   true,
		CreatedAt: s.now(),
	}
	if err := u.SetPassword(req.Password); err != nil {
		return nil, Internal("failed to hash password", err)
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Validation("username or email is already registered", nil)
		}
		return nil, Internal("failed to create user", err)
	}

	if err := s.analytics.LogActivity(ctx, u.ID, models.ActivitySignup, "user signed up"); err != nil {
		logger.L().Warn("signup activity not logged", zap.Uint("user_id", u.ID), zap.Error(err))
	}
	logger.L().Info("user registered", zap.Uint("user_id", u.ID), zap.String("username", u.Name))
	return u, nil
}

// Authenticate verifies credentials. Unknown users, disabled users and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, req LoginRequest) (*models.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	ident := strings.TrimSpace(req.Username)

	var (
		u   *models.User
		err error
	)
	// names may contain "@", so an email miss falls back to the name
	if strings.Contains(ident, "@") {
		u, err = s.users.FindByEmail(ctx, normalizeEmail(ident))
	}
	if u == nil && (err == nil || errors.Is(err, repository.ErrNotFound)) {
		u, err = s.users.FindByName(ctx, ident)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, Unauthorized("invalid username or password")
	}
	if err != nil {
		return nil, Internal("failed to load user", err)
	}
	if !u.Enabled || !u.CheckPassword(req.Password) {
		return nil, Unauthorized("invalid username or password")
	}

	if err := s.analytics.LogActivity(ctx, u.ID, models.ActivityLogin, "user logged in"); err != nil {
		logger.L().Warn("login activity not logged", zap.Uint("user_id", u.ID), zap.Error(err))
	}
	return u, nil
}

func (s *UserService) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	ok, err := s.users.ExistsByName(ctx, strings.TrimSpace(username))
	if err != nil {
		return false, Internal("failed to check username", err)
	}
	return ok, nil
}

func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ok, err := s.users.ExistsByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return false, Internal("failed to check email", err)
	}
	return ok, nil
}

func principalKey(id uint) string {
	return cache.KeyFromStrings("principal", strconv.FormatUint(uint64(id), 10))
}

// Principal resolves the enabled user behind a token subject.
func (s *UserService) Principal(ctx context.Context, id uint) (models.Principal, error) {
	key := principalKey(id)
	if v, ok := s.principals.Get(key); ok {
		if p, ok := v.(models.Principal); ok {
			return p, nil
		}
	}
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Principal{}, Unauthorized("user no longer exists")
	}
	if err != nil {
		return models.Principal{}, Internal("failed to load user", err)
	}
	if !u.Enabled {
		return models.Principal{}, Unauthorized("user is disabled")
	}
	p := u.Principal()
	s.principals.Set(key, p, s.principalTTL)
	return p, nil
}

func (s *UserService) InvalidatePrincipal(id uint) {
	s.principals.Delete(principalKey(id))
}

// EnsureAdmin creates an ADMIN user with the given credentials unless the email is taken.
func (s *UserService) EnsureAdmin(ctx context.Context, email, name, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return Internal("failed to check admin", err)
	}
	if exists {
		return nil
	}
	u := &models.User{Email: email, Name: name, Role: models.RoleAdmin, Enabled: true, CreatedAt: s.now()}
	if err := u.SetPassword(password); err != nil {
		return Internal("failed to hash password", err)
	}
	if err := s.users.Create(ctx, u); err != nil {
		return Internal("failed to create admin", err)
	}
	logger.L().Info("admin user seeded", zap.String("email", email))
	return nil
}
