package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"maintenance-system/internal/entities"
	"maintenance-system/internal/services"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

var reportHeaders = []interface{}{
	"№ записи", "Код записи", "Код станка", "Станок", "Расположение",
	"Дата обслуживания", "Тип работ", "Техник", "Статус",
	"Стоимость", "Время (мин)", "Завершено",
}

// GetMonthlyReport формирует отчет по работам за календарный месяц.
// format=xlsx выгружает файл, иначе отдается JSON.
func (c *ReportController) GetMonthlyReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	year, err := strconv.Atoi(ctx.QueryParam("year"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный параметр year", err, nil), c.logger)
	}
	month, err := strconv.Atoi(ctx.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный параметр month", err, nil), c.logger)
	}

	filter, format := c.parseFilter(ctx, year, month)
	c.logger.Debug("Запрос на отчет по обслуживанию",
		zap.Int("year", year), zap.Int("month", month), zap.String("format", format))

	items, total, err := c.reportService.GetReport(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if format == "xlsx" {
		return c.respondWithXLSX(ctx, year, month, items)
	}
	return utils.SuccessResponse(ctx, items, "Отчет успешно сформирован", http.StatusOK, total)
}

func (c *ReportController) parseFilter(ctx echo.Context, year, month int) (entities.ReportFilter, string) {
	params := utils.ParseListParams(ctx.Request().URL.Query())
	first, last := utils.MonthBounds(year, time.Month(month))

	filter := entities.ReportFilter{
		DateFrom: &first,
		DateTo:   &last,
		Page:     params.Page,
		PerPage:  int(params.Limit),
	}

	format := strings.ToLower(ctx.QueryParam("format"))
	if format == "xlsx" {
		// Выгружаем все строки месяца, пагинация не применяется.
		filter.Page = 1
		filter.PerPage = 100000
	}

	if raw := ctx.QueryParam("machine_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.MachineIDs = []uint64{id}
		}
	}
	if raw := ctx.QueryParam("status"); raw != "" {
		filter.Statuses = strings.Split(raw, ",")
	}

	return filter, format
}

func reportRowToSlice(item entities.ReportItem) []interface{} {
	cost := ""
	if item.Cost != nil {
		cost = fmt.Sprintf("%.2f", *item.Cost)
	}
	minutes := ""
	if item.ActualMinutes != nil {
		minutes = strconv.Itoa(*item.ActualMinutes)
	}
	completedAt := ""
	if item.CompletedAt != nil {
		completedAt = item.CompletedAt.Format("2006-01-02 15:04")
	}

	return []interface{}{
		item.RecordID,
		item.RecordCode,
		item.MachineCode,
		item.MachineName,
		item.Location,
		utils.FormatDate(item.MaintenanceDate),
		item.MaintenanceType,
		item.TechnicianID,
		item.Status,
		cost,
		minutes,
		completedAt,
	}
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, year, month int, items []entities.ReportItem) error {
	f := excelize.NewFile()
	sheet := "Отчет по обслуживанию"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &reportHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "L1", style)

	for i, item := range items {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := reportRowToSlice(item)
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "B", "E", 20)
	f.SetColWidth(sheet, "F", "G", 18)
	f.SetColWidth(sheet, "L", "L", 18)

	fileName := fmt.Sprintf("maintenance_report_%d-%02d.xlsx", year, month)
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
