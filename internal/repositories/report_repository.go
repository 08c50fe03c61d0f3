package repositories

import (
	"context"
	"fmt"

	"maintenance-system/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportRepositoryInterface interface {
	GetReport(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, uint64, error)
}

type reportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) ReportRepositoryInterface {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetReport(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	// Общая база для COUNT-запроса и основного запроса.
	baseSelect := psql.Select().
		From("maintenance_records r").
		Join("machines m ON r.machine_id = m.id")

	if filter.DateFrom != nil {
		baseSelect = baseSelect.Where(sq.GtOrEq{"r.maintenance_date": filter.DateFrom})
	}
	if filter.DateTo != nil {
		baseSelect = baseSelect.Where(sq.LtOrEq{"r.maintenance_date": filter.DateTo})
	}
	if len(filter.MachineIDs) > 0 {
		baseSelect = baseSelect.Where(sq.Eq{"r.machine_id": filter.MachineIDs})
	}
	if len(filter.Statuses) > 0 {
		baseSelect = baseSelect.Where(sq.Eq{"r.status": filter.Statuses})
	}

	countBuilder := baseSelect.Columns("COUNT(r.id)")
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки COUNT-запроса: %w", err)
	}
	var totalCount uint64
	if err = r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения COUNT-запроса: %w", err)
	}
	if totalCount == 0 {
		return []entities.ReportItem{}, 0, nil
	}

	mainBuilder := baseSelect.Columns(
		"r.id", "r.code", "m.code", "m.name", "m.location",
		"r.maintenance_date", "r.maintenance_type", "r.technician_id",
		"r.status", "r.cost", "r.actual_minutes", "r.completed_at",
	).OrderBy("r.maintenance_date ASC", "r.id ASC")

	if filter.PerPage > 0 {
		mainBuilder = mainBuilder.Limit(uint64(filter.PerPage)).Offset(uint64((filter.Page - 1) * filter.PerPage))
	}

	query, args, err := mainBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки основного запроса: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения основного запроса: %w", err)
	}
	defer rows.Close()

	var items []entities.ReportItem
	for rows.Next() {
		var item entities.ReportItem
		err := rows.Scan(
			&item.RecordID, &item.RecordCode, &item.MachineCode, &item.MachineName,
			&item.Location, &item.MaintenanceDate, &item.MaintenanceType,
			&item.TechnicianID, &item.Status, &item.Cost, &item.ActualMinutes,
			&item.CompletedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, totalCount, nil
}
