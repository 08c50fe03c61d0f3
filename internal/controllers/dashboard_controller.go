package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/services"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

type DashboardController struct {
	dashboardService services.DashboardServiceInterface
	logger           *zap.Logger
}

func NewDashboardController(dashboardService services.DashboardServiceInterface, logger *zap.Logger) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

func (c *DashboardController) GetStats(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	stats, err := c.dashboardService.GetStats(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, stats, "Статистика для дашборда получена", http.StatusOK)
}

// GetCalendar отдает календарь обслуживаний на месяц.
// Год и месяц обязательны: /dashboard/calendar?year=2026&month=8
func (c *DashboardController) GetCalendar(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	year, err := strconv.Atoi(ctx.QueryParam("year"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный параметр year", err, nil), c.logger)
	}
	month, err := strconv.Atoi(ctx.QueryParam("month"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный параметр month", err, nil), c.logger)
	}

	days, err := c.dashboardService.GetCalendar(reqCtx, year, time.Month(month))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, days, "Календарь обслуживаний получен", http.StatusOK)
}
