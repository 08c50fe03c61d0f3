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

type ScheduleController struct {
	scheduleService services.ScheduleServiceInterface
	logger          *zap.Logger
}

func NewScheduleController(scheduleService services.ScheduleServiceInterface, logger *zap.Logger) *ScheduleController {
	return &ScheduleController{
		scheduleService: scheduleService,
		logger:          logger,
	}
}

func (c *ScheduleController) GetSchedules(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	params := utils.ParseListParams(ctx.Request().URL.Query())

	var machineID uint64
	if raw := ctx.QueryParam("machine_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный machine_id", err, nil), c.logger)
		}
		machineID = parsed
	}

	schedules, total, err := c.scheduleService.GetSchedules(reqCtx, params.Limit, params.Offset, machineID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if schedules == nil {
		schedules = make([]dto.ScheduleDTO, 0)
	}
	return utils.SuccessResponse(ctx, schedules, "Список графиков успешно получен", http.StatusOK, total)
}

func (c *ScheduleController) FindSchedule(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	schedule, err := c.scheduleService.FindSchedule(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, schedule, "График успешно найден", http.StatusOK)
}

func (c *ScheduleController) CreateSchedule(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateScheduleDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	created, err := c.scheduleService.CreateSchedule(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, created, "График успешно создан", http.StatusCreated)
}

func (c *ScheduleController) UpdateSchedule(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateScheduleDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	result, err := c.scheduleService.UpdateSchedule(reqCtx, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "График успешно обновлен", http.StatusOK)
}

// GetUpcoming отдает активные графики на ближайший горизонт.
// Горизонт в днях приходит в query-параметре days.
func (c *ScheduleController) GetUpcoming(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	horizonDays := 0
	if raw := ctx.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное значение days", err, nil), c.logger)
		}
		horizonDays = parsed
	}

	schedules, err := c.scheduleService.ListUpcoming(reqCtx, horizonDays)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if schedules == nil {
		schedules = make([]dto.ScheduleDTO, 0)
	}
	return utils.SuccessResponse(ctx, schedules, "Предстоящие обслуживания получены", http.StatusOK)
}

func (c *ScheduleController) GetOverdue(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	schedules, err := c.scheduleService.ListOverdue(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if schedules == nil {
		schedules = make([]dto.ScheduleDTO, 0)
	}
	return utils.SuccessResponse(ctx, schedules, "Просроченные обслуживания получены", http.StatusOK)
}
