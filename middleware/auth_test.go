package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chatbot/models"
	"chatbot/pkg/token"

	"github.com/gin-gonic/gin"
)

type fakeResolver map[uint]models.Principal

func (f fakeResolver) Principal(_ context.Context, id uint) (models.Principal, error) {
	p, ok := f[id]
	if !ok {
		return models.Principal{}, errors.New("unknown user")
	}
	return p, nil
}

func newAuthRouter(a *Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(a))
	r.GET("/api/users/me", func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, p)
	})
	r.POST("/api/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/auth/check-email/:email", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doRequest(r http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwtSvc := token.NewJWTService("secret", "chatbot", time.Hour)
	store := token.NewMemoryStore()
	a := &Authenticator{
		JWT:        jwtSvc,
		Revoked:    store,
		Principals: fakeResolver{1: {ID: 1, Name: "alice", Role: models.RoleUser}},
	}
	r := newAuthRouter(a)

	if w := doRequest(r, http.MethodPost, "/api/auth/login", ""); w.Code != http.StatusOK {
		t.Fatalf("public path: got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/auth/check-email/a@x.com", ""); w.Code != http.StatusOK {
		t.Fatalf("public prefix: got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/users/me", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/users/me", "garbage"); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: got %d", w.Code)
	}

	raw, claims, err := jwtSvc.Issue(&models.User{ID: 1})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if w := doRequest(r, http.MethodGet, "/api/users/me", raw); w.Code != http.StatusOK {
		t.Fatalf("valid token: got %d", w.Code)
	}

	_ = store.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time)
	if w := doRequest(r, http.MethodGet, "/api/users/me", raw); w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token: got %d", w.Code)
	}

	unknown, _, _ := jwtSvc.Issue(&models.User{ID: 2})
	if w := doRequest(r, http.MethodGet, "/api/users/me", unknown); w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: got %d", w.Code)
	}
}

func TestIsPublic(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/api/auth/signup", true},
		{"/api/auth/signup/extra", false},
		{"/api/auth/logout", false},
		{"/api/auth/check-username/alice", true},
		{"/health", true},
		{"/ws/chat", true},
		{"/api/chat", false},
	}
	for _, tc := range cases {
		if got := isPublic(tc.path); got != tc.want {
			t.Fatalf("isPublic(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestQueryTokenAuthKeysRateLimitPerUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetRateLimitConfig(time.Minute, 1, 2)
	jwtSvc := token.NewJWTService("secret", "chatbot", time.Hour)
	a := &Authenticator{
		JWT:     jwtSvc,
		Revoked: token.NewMemoryStore(),
		Principals: fakeResolver{
			1: {ID: 1, Name: "alice", Role: models.RoleUser},
			2: {ID: 2, Name: "bob", Role: models.RoleUser},
		},
	}
	r := gin.New()
	r.GET("/ws/chat", QueryTokenAuth(a), RateLimit(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	alice, _, _ := jwtSvc.Issue(&models.User{ID: 1})
	bob, _, _ := jwtSvc.Issue(&models.User{ID: 2})

	if w := doRequest(r, http.MethodGet, "/ws/chat", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/ws/chat?token=garbage", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: got %d", w.Code)
	}
	// same client IP, different users: separate buckets
	if w := doRequest(r, http.MethodGet, "/ws/chat?token="+alice, ""); w.Code != http.StatusNoContent {
		t.Fatalf("alice first: got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/ws/chat?token="+bob, ""); w.Code != http.StatusNoContent {
		t.Fatalf("bob first: got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/ws/chat?token="+alice, ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("alice second: got %d", w.Code)
	}
}
