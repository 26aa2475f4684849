package controllers

import (
	"net/http"
	"strconv"

	"chatbot/pkg/services"

	"github.com/gin-gonic/gin"
)

func CreateFeedback(feedback *services.FeedbackManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var body services.FeedbackRequest
		if !bindJSON(c, &body) {
			return
		}
		view, err := feedback.Create(c.Request.Context(), p, body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// ListFeedback accepts page, size, sortDirection and an optional isPositive filter.
func ListFeedback(feedback *services.FeedbackManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		req, ok := pageRequest(c, 10, "desc")
		if !ok {
			return
		}
		filter := services.FeedbackFilter{PageRequest: req}
		if raw, set := c.GetQuery("isPositive"); set {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				respondError(c, services.FieldError("isPositive", "must be true or false"))
				return
			}
			filter.IsPositive = &v
		}
		page, err := feedback.List(c.Request.Context(), p, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func UpdateFeedbackStatus(feedback *services.FeedbackManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "feedbackId")
		if !ok {
			return
		}
		var body services.FeedbackStatusRequest
		if !bindJSON(c, &body) {
			return
		}
		view, err := feedback.UpdateStatus(c.Request.Context(), p, id, body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func FeedbackStats(feedback *services.FeedbackManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		stats, err := feedback.Stats(c.Request.Context(), p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
