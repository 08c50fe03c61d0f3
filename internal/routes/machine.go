package routes

import (
	"github.com/labstack/echo/v4"

	"maintenance-system/internal/controllers"
)

func runMachineRouter(secureGroup *echo.Group, machineCtrl *controllers.MachineController, historyCtrl *controllers.MachineHistoryController) {
	secureGroup.GET("/machines", machineCtrl.GetMachines)
	secureGroup.POST("/machines", machineCtrl.CreateMachine)
	secureGroup.GET("/machines/:id", machineCtrl.FindMachine)
	secureGroup.GET("/machines/code/:code", machineCtrl.FindMachineByCode)
	secureGroup.PUT("/machines/:id", machineCtrl.UpdateMachine)
	secureGroup.DELETE("/machines/:id", machineCtrl.DeleteMachine)
	secureGroup.GET("/machines/:id/history", historyCtrl.GetMachineHistory)
}
