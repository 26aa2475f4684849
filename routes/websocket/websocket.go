package websocket

import (
	"chatbot/app"
	"chatbot/controllers"
	"chatbot/middleware"

	"github.com/gin-gonic/gin"
)

// Register mounts /ws/chat, which authenticates with the token query parameter.
func Register(r *gin.Engine, a *app.App) {
	r.GET("/ws/chat", middleware.QueryTokenAuth(a.Auth), middleware.RateLimit(), controllers.ChatWS(a.Chats))
}
