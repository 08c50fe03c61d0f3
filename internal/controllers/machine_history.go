package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/utils"
)

type MachineHistoryController struct {
	historyService services.MachineHistoryServiceInterface
	logger         *zap.Logger
}

func NewMachineHistoryController(historyService services.MachineHistoryServiceInterface, logger *zap.Logger) *MachineHistoryController {
	return &MachineHistoryController{
		historyService: historyService,
		logger:         logger,
	}
}

func (c *MachineHistoryController) GetMachineHistory(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	machineID, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	params := utils.ParseListParams(ctx.Request().URL.Query())

	entries, err := c.historyService.GetMachineHistory(reqCtx, machineID, params.Limit, params.Offset)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if entries == nil {
		entries = make([]dto.MachineHistoryEntryDTO, 0)
	}
	return utils.SuccessResponse(ctx, entries, "История станка успешно получена", http.StatusOK)
}
