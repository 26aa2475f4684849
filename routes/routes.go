package routes

import (
	"net/http"

	"chatbot/app"
	"chatbot/controllers"
	"chatbot/docs"
	"chatbot/middleware"
	"chatbot/pkg/metrics"

	"github.com/gin-gonic/gin"

	analyticsRoutes "chatbot/routes/analytics"
	authRoutes "chatbot/routes/auth"
	chatRoutes "chatbot/routes/chat"
	feedbackRoutes "chatbot/routes/feedback"
	profileRoutes "chatbot/routes/profile"
	websocketRoutes "chatbot/routes/websocket"
)

// RegisterRoutes mounts every endpoint. Authentication runs globally and
// skips middleware.PublicPaths.
func RegisterRoutes(r *gin.Engine, a *app.App) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "chatbot backend running"})
	})
	r.GET("/health", controllers.Health(a.DB))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.StaticFS("/docs", docs.FileSystem())

	websocketRoutes.Register(r, a)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(a.Auth))
	authRoutes.Register(api, a)
	profileRoutes.Register(api, a)
	chatRoutes.Register(api, a)
	feedbackRoutes.Register(api, a)
	analyticsRoutes.Register(api, a)
}
