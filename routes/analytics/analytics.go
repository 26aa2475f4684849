package analytics

import (
	"chatbot/app"
	"chatbot/controllers"

	"github.com/gin-gonic/gin"
)

// Register mounts the admin-only analytics endpoints; access is checked in the service.
func Register(g *gin.RouterGroup, a *app.App) {
	an := g.Group("/analytics")
	an.GET("/daily-activity", controllers.DailyActivity(a.Analytics))
	an.GET("/daily-report", controllers.DailyReport(a.Analytics))
}
