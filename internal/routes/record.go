package routes

import (
	"github.com/labstack/echo/v4"

	"maintenance-system/internal/controllers"
)

func runRecordRouter(secureGroup *echo.Group, recordCtrl *controllers.RecordController) {
	secureGroup.GET("/records", recordCtrl.GetRecords)
	secureGroup.POST("/records", recordCtrl.CreateRecord)
	secureGroup.GET("/records/:id", recordCtrl.FindRecord)
	secureGroup.PUT("/records/:id", recordCtrl.UpdateRecord)

	// Жизненный цикл записи работ.
	secureGroup.POST("/records/:id/start", recordCtrl.StartWork)
	secureGroup.POST("/records/:id/complete", recordCtrl.CompleteWork)
	secureGroup.POST("/records/:id/cancel", recordCtrl.CancelWork)
	secureGroup.PUT("/records/:id/status", recordCtrl.SetStatus)
}
