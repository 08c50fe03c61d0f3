package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/services"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

type RecordController struct {
	recordService services.RecordServiceInterface
	logger        *zap.Logger
}

func NewRecordController(recordService services.RecordServiceInterface, logger *zap.Logger) *RecordController {
	return &RecordController{
		recordService: recordService,
		logger:        logger,
	}
}

func (c *RecordController) GetRecords(ctx echo.Context) error {
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
	status := ctx.QueryParam("status")

	records, total, err := c.recordService.GetRecords(reqCtx, params.Limit, params.Offset, machineID, status)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if records == nil {
		records = make([]dto.RecordDTO, 0)
	}
	return utils.SuccessResponse(ctx, records, "Список записей работ успешно получен", http.StatusOK, total)
}

func (c *RecordController) FindRecord(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	record, err := c.recordService.FindRecord(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, record, "Запись работ успешно найдена", http.StatusOK)
}

func (c *RecordController) CreateRecord(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateRecordDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	created, err := c.recordService.CreateRecord(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, created, "Запись работ успешно создана", http.StatusCreated)
}

func (c *RecordController) UpdateRecord(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateRecordDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	result, err := c.recordService.UpdateRecord(reqCtx, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Запись работ успешно обновлена", http.StatusOK)
}

func (c *RecordController) StartWork(ctx echo.Context) error {
	return c.runTransition(ctx, c.recordService.StartWork, "Работы начаты")
}

func (c *RecordController) CompleteWork(ctx echo.Context) error {
	return c.runTransition(ctx, c.recordService.CompleteWork, "Работы завершены")
}

func (c *RecordController) CancelWork(ctx echo.Context) error {
	return c.runTransition(ctx, c.recordService.CancelWork, "Работы отменены")
}

func (c *RecordController) runTransition(
	ctx echo.Context,
	fn func(reqCtx context.Context, id uint64) (*dto.TransitionDTO, error),
	message string,
) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	transition, err := fn(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, transition, message, http.StatusOK)
}

// SetStatus - прямое выставление статуса. Проверяется той же таблицей
// переходов, что и именованные операции.
func (c *RecordController) SetStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.SetStatusDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	transition, err := c.recordService.SetStatus(reqCtx, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, transition, "Статус записи работ изменен", http.StatusOK)
}
