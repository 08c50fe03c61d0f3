package routes

import (
	"github.com/labstack/echo/v4"

	"maintenance-system/internal/controllers"
)

func runScheduleRouter(secureGroup *echo.Group, scheduleCtrl *controllers.ScheduleController) {
	secureGroup.GET("/schedules", scheduleCtrl.GetSchedules)
	secureGroup.POST("/schedules", scheduleCtrl.CreateSchedule)
	// Статические пути раньше параметризованных.
	secureGroup.GET("/schedules/upcoming", scheduleCtrl.GetUpcoming)
	secureGroup.GET("/schedules/overdue", scheduleCtrl.GetOverdue)
	secureGroup.GET("/schedules/:id", scheduleCtrl.FindSchedule)
	secureGroup.PUT("/schedules/:id", scheduleCtrl.UpdateSchedule)
}
