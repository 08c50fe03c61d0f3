package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/services"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

type MachineController struct {
	machineService services.MachineServiceInterface
	logger         *zap.Logger
}

func NewMachineController(machineService services.MachineServiceInterface, logger *zap.Logger) *MachineController {
	return &MachineController{
		machineService: machineService,
		logger:         logger,
	}
}

func parseIDParam(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewHttpError(
			http.StatusBadRequest,
			"Неверный формат ID",
			err,
			map[string]interface{}{"param": ctx.Param("id")},
		)
	}
	return id, nil
}

func (c *MachineController) GetMachines(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	params := utils.ParseListParams(ctx.Request().URL.Query())
	search := ctx.QueryParam("search")

	machines, total, err := c.machineService.GetMachines(reqCtx, params.Limit, params.Offset, search)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if machines == nil {
		machines = make([]dto.MachineDTO, 0)
	}

	return utils.SuccessResponse(ctx, machines, "Список станков успешно получен", http.StatusOK, total)
}

func (c *MachineController) FindMachine(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	machine, err := c.machineService.FindMachine(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, machine, "Станок успешно найден", http.StatusOK)
}

func (c *MachineController) FindMachineByCode(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	code := ctx.Param("code")
	if code == "" {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest, c.logger)
	}

	machine, err := c.machineService.FindMachineByCode(reqCtx, code)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, machine, "Станок успешно найден", http.StatusOK)
}

func (c *MachineController) CreateMachine(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateMachineDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	created, err := c.machineService.CreateMachine(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, created, "Станок успешно создан", http.StatusCreated)
}

func (c *MachineController) UpdateMachine(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateMachineDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	result, err := c.machineService.UpdateMachine(reqCtx, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Станок успешно обновлен", http.StatusOK)
}

func (c *MachineController) DeleteMachine(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.machineService.DeleteMachine(reqCtx, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Станок успешно удален", http.StatusOK)
}
