package auth

import (
	"chatbot/app"
	"chatbot/controllers"

	"github.com/gin-gonic/gin"
)

// Register mounts /auth; signup, login and the exists checks are public.
func Register(g *gin.RouterGroup, a *app.App) {
	auth := g.Group("/auth")
	auth.POST("/signup", controllers.Signup(a.Users))
	auth.POST("/login", controllers.Login(a.Users, a.JWT))
	auth.GET("/check-username/:username", controllers.CheckUsername(a.Users))
	auth.GET("/check-email/:email", controllers.CheckEmail(a.Users))
	auth.POST("/logout", controllers.Logout(a.Revocations))
}
