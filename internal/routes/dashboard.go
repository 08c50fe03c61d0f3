package routes

import (
	"github.com/labstack/echo/v4"

	"maintenance-system/internal/controllers"
)

func runDashboardRouter(secureGroup *echo.Group, dashboardCtrl *controllers.DashboardController) {
	secureGroup.GET("/dashboard/stats", dashboardCtrl.GetStats)
	secureGroup.GET("/dashboard/calendar", dashboardCtrl.GetCalendar)
}
