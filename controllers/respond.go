package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"chatbot/middleware"
	"chatbot/models"
	"chatbot/pkg/logger"
	"chatbot/pkg/repository"
	"chatbot/pkg/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps a service error kind to its HTTP status. Not-found is
// reported as a bad request.
func statusFor(k services.Kind) int {
	switch k {
	case services.KindValidation, services.KindNotFound:
		return http.StatusBadRequest
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"msg", "errors"}; internal details are only logged.
func respondError(c *gin.Context, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		se = services.Internal("unexpected error", err)
	}
	status := statusFor(se.Kind)
	if status == http.StatusInternalServerError {
		logger.L().Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"msg": "internal server error"})
		return
	}
	body := gin.H{"msg": se.Msg}
	if len(se.Fields) > 0 {
		body["errors"] = se.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the body into dst, answering 400 on malformed JSON.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, services.ValidationFromError(err))
		return false
	}
	return true
}

func principal(c *gin.Context) (models.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "authentication required"})
	}
	return p, ok
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, services.FieldError(name, "must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

// pageRequest reads page, size and sortDirection (asc|desc).
func pageRequest(c *gin.Context, defSize int, defDir string) (repository.PageRequest, bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		respondError(c, services.FieldError("page", "must be a non-negative integer"))
		return repository.PageRequest{}, false
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defSize)))
	if err != nil || size <= 0 {
		respondError(c, services.FieldError("size", "must be a positive integer"))
		return repository.PageRequest{}, false
	}
	dir := strings.ToLower(c.DefaultQuery("sortDirection", defDir))
	if dir != "asc" && dir != "desc" {
		respondError(c, services.FieldError("sortDirection", "must be asc or desc"))
		return repository.PageRequest{}, false
	}
	return repository.PageRequest{Page: page, Size: size, Desc: dir == "desc"}, true
}
