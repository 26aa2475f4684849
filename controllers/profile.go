package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Profile returns the authenticated principal.
func Profile() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
