package feedback

import (
	"chatbot/app"
	"chatbot/controllers"

	"github.com/gin-gonic/gin"
)

func Register(g *gin.RouterGroup, a *app.App) {
	fb := g.Group("/feedback")
	fb.POST("", controllers.CreateFeedback(a.Feedback))
	fb.GET("", controllers.ListFeedback(a.Feedback))
	fb.GET("/stats", controllers.FeedbackStats(a.Feedback))
	fb.PUT("/:feedbackId/status", controllers.UpdateFeedbackStatus(a.Feedback))
}
