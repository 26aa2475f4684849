package controllers

import (
	"net/http"
	"time"

	"chatbot/middleware"
	"chatbot/pkg/logger"
	"chatbot/pkg/services"
	"chatbot/pkg/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Signup handler
func Signup(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body services.SignupRequest
		if !bindJSON(c, &body) {
			return
		}
		u, err := users.Register(c.Request.Context(), body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"id":       u.ID,
			"username": u.Name,
			"email":    u.Email,
			"message":  "User registered successfully",
		})
	}
}

// Login handler
func Login(users *services.UserService, jwtSvc *token.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body services.LoginRequest
		if !bindJSON(c, &body) {
			return
		}
		u, err := users.Authenticate(c.Request.Context(), body)
		if err != nil {
			respondError(c, err)
			return
		}
		tokenStr, _, err := jwtSvc.Issue(u)
		if err != nil {
			respondError(c, services.Internal("failed to create token", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": tokenStr, "username": u.Name})
	}
}

// Logout revokes the presented token until it expires.
func Logout(store token.RevocationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.CurrentClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "authentication required"})
			return
		}
		until := time.Now().Add(24 * time.Hour)
		if claims.ExpiresAt != nil {
			until = claims.ExpiresAt.Time
		}
		if err := store.Revoke(c.Request.Context(), claims.ID, until); err != nil {
			respondError(c, services.Internal("failed to revoke token", err))
			return
		}
		logger.L().Info("user logged out", zap.Uint("user_id", claims.UserID))
		c.JSON(http.StatusOK, gin.H{"msg": "logged out"})
	}
}

func CheckUsername(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		exists, err := users.ExistsByUsername(c.Request.Context(), c.Param("username"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"exists": exists})
	}
}

func CheckEmail(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		exists, err := users.ExistsByEmail(c.Request.Context(), c.Param("email"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"exists": exists})
	}
}
