package controllers

import (
	"fmt"
	"net/http"

	"chatbot/pkg/services"

	"github.com/gin-gonic/gin"
)

func DailyActivity(analytics *services.AnalyticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		out, err := analytics.DailyActivity(c.Request.Context(), p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// DailyReport sends today's chats as a CSV attachment.
func DailyReport(analytics *services.AnalyticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		report, err := analytics.DailyReport(c.Request.Context(), p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", report.Content)
	}
}
