package chat

import (
	"chatbot/app"
	"chatbot/controllers"
	"chatbot/middleware"

	"github.com/gin-gonic/gin"
)

func Register(g *gin.RouterGroup, a *app.App) {
	chat := g.Group("/chat")
	chat.POST("", middleware.RateLimit(), controllers.CreateChat(a.Chats))
	chat.POST("/stream", middleware.RateLimit(), controllers.CreateChatStream(a.Chats))
	chat.GET("/threads", controllers.ListThreads(a.Threads))
	chat.GET("/threads/:threadId/chats", controllers.ThreadChats(a.Threads))
	chat.DELETE("/threads/:threadId", controllers.DeleteThread(a.Threads))
}
