package middleware

import (
	"context"
	"net/http"
	"strings"

	"chatbot/models"
	"chatbot/pkg/logger"
	"chatbot/pkg/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextPrincipalKey = "current_principal"
	ContextClaimsKey    = "current_claims"
)

// PrincipalResolver loads the caller behind a validated token.
type PrincipalResolver interface {
	Principal(ctx context.Context, id uint) (models.Principal, error)
}

// Paths served without a bearer token. Entries ending in "/" match as prefixes.
var PublicPaths = []string{
	"/api/auth/signup",
	"/api/auth/login",
	"/api/auth/check-username/",
	"/api/auth/check-email/",
	"/health",
	"/metrics",
	"/docs/",
	"/ws/",
}

func isPublic(path string) bool {
	for _, p := range PublicPaths {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

type Authenticator struct {
	JWT        *token.JWTService
	Revoked    token.RevocationStore
	Principals PrincipalResolver
}

// Resolve validates raw and returns its claims and the current principal.
func (a *Authenticator) Resolve(ctx context.Context, raw string) (*token.Claims, models.Principal, bool) {
	claims, err := a.JWT.Validate(raw)
	if err != nil {
		logger.L().Debug("token rejected", zap.Error(err))
		return nil, models.Principal{}, false
	}
	revoked, err := a.Revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		logger.L().Error("revocation lookup failed", zap.Error(err))
		return nil, models.Principal{}, false
	}
	if revoked {
		return nil, models.Principal{}, false
	}
	p, err := a.Principals.Principal(ctx, claims.UserID)
	if err != nil {
		return nil, models.Principal{}, false
	}
	return claims, p, true
}

// AuthMiddleware requires a valid bearer token on every non-public path and
// stores the principal on the context.
func AuthMiddleware(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isPublic(c.Request.URL.Path) {
			c.Next()
			return
		}
		raw, err := token.ExtractBearer(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			return
		}
		claims, p, ok := a.Resolve(c.Request.Context(), raw)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid or expired token"})
			return
		}
		c.Set(ContextClaimsKey, claims)
		c.Set(ContextPrincipalKey, p)
		c.Next()
	}
}

// QueryTokenAuth authenticates with the token query parameter, for WebSocket
// upgrades where browsers cannot set headers.
func QueryTokenAuth(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.Query("token"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing token query"})
			return
		}
		claims, p, ok := a.Resolve(c.Request.Context(), raw)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid or expired token"})
			return
		}
		c.Set(ContextClaimsKey, claims)
		c.Set(ContextPrincipalKey, p)
		c.Next()
	}
}

// CurrentPrincipal returns the principal stored by AuthMiddleware.
func CurrentPrincipal(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(ContextPrincipalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}

func CurrentClaims(c *gin.Context) (*token.Claims, bool) {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	cl, ok := v.(*token.Claims)
	return cl, ok
}
