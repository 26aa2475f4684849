package profile

import (
	"chatbot/app"
	"chatbot/controllers"

	"github.com/gin-gonic/gin"
)

func Register(g *gin.RouterGroup, _ *app.App) {
	g.GET("/users/me", controllers.Profile())
}
