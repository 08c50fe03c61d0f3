package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"maintenance-system/internal/entities"
	apperrors "maintenance-system/pkg/errors"
)

const (
	scheduleTable  = "maintenance_schedules"
	scheduleFields = "id, code, machine_id, maintenance_type, interval_days, start_date, next_maintenance_date, priority, checklist, required_parts, required_tools, estimated_minutes, is_active, created_at, updated_at"
)

type ScheduleRepositoryInterface interface {
	GetSchedules(ctx context.Context, limit, offset uint64, machineID uint64) ([]entities.MaintenanceSchedule, uint64, error)
	FindSchedule(ctx context.Context, id uint64) (*entities.MaintenanceSchedule, error)
	FindScheduleInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceSchedule, error)
	CreateSchedule(ctx context.Context, s entities.MaintenanceSchedule) (*entities.MaintenanceSchedule, error)
	UpdateScheduleInTx(ctx context.Context, tx pgx.Tx, s entities.MaintenanceSchedule, fields []string) error
	GetActiveDueBetween(ctx context.Context, from, to time.Time) ([]entities.MaintenanceSchedule, error)
	GetActiveDueBefore(ctx context.Context, before time.Time) ([]entities.MaintenanceSchedule, error)
}

type ScheduleRepository struct {
	storage *pgxpool.Pool
}

func NewScheduleRepository(storage *pgxpool.Pool) ScheduleRepositoryInterface {
	return &ScheduleRepository{storage: storage}
}

func scanSchedule(row pgx.Row) (*entities.MaintenanceSchedule, error) {
	var s entities.MaintenanceSchedule
	err := row.Scan(
		&s.ID, &s.Code, &s.MachineID, &s.MaintenanceType,
		&s.IntervalDays, &s.StartDate, &s.NextMaintenanceDate, &s.Priority,
		&s.Checklist, &s.RequiredParts, &s.RequiredTools,
		&s.EstimatedMinutes, &s.IsActive,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *ScheduleRepository) GetSchedules(ctx context.Context, limit, offset uint64, machineID uint64) ([]entities.MaintenanceSchedule, uint64, error) {
	var total uint64
	var args []interface{}
	whereClause := ""

	if machineID != 0 {
		whereClause = "WHERE machine_id = $1"
		args = append(args, machineID)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", scheduleTable, whereClause)
	if err := r.storage.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета графиков: %w", err)
	}
	if total == 0 {
		return []entities.MaintenanceSchedule{}, 0, nil
	}

	queryArgs := append(args, limit, offset)
	query := fmt.Sprintf("SELECT %s FROM %s %s ORDER BY next_maintenance_date ASC, id LIMIT $%d OFFSET $%d",
		scheduleFields, scheduleTable, whereClause, len(args)+1, len(args)+2)

	rows, err := r.storage.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка графиков: %w", err)
	}
	defer rows.Close()

	schedules := make([]entities.MaintenanceSchedule, 0, limit)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования графика в списке: %w", err)
		}
		schedules = append(schedules, *s)
	}
	return schedules, total, rows.Err()
}

func (r *ScheduleRepository) findOneSchedule(ctx context.Context, q querier, condition string, id uint64) (*entities.MaintenanceSchedule, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", scheduleFields, scheduleTable, condition)
	return scanSchedule(q.QueryRow(ctx, query, id))
}

func (r *ScheduleRepository) FindSchedule(ctx context.Context, id uint64) (*entities.MaintenanceSchedule, error) {
	return r.findOneSchedule(ctx, r.storage, "id = $1", id)
}

func (r *ScheduleRepository) FindScheduleInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceSchedule, error) {
	return r.findOneSchedule(ctx, tx, "id = $1 FOR UPDATE", id)
}

func (r *ScheduleRepository) CreateSchedule(ctx context.Context, s entities.MaintenanceSchedule) (*entities.MaintenanceSchedule, error) {
	query := fmt.Sprintf(`
        INSERT INTO %s (code, machine_id, maintenance_type, interval_days, start_date, next_maintenance_date, priority, checklist, required_parts, required_tools, estimated_minutes, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING %s`, scheduleTable, scheduleFields)

	created, err := scanSchedule(r.storage.QueryRow(ctx, query,
		s.Code, s.MachineID, s.MaintenanceType, s.IntervalDays,
		s.StartDate, s.NextMaintenanceDate, s.Priority,
		s.Checklist, s.RequiredParts, s.RequiredTools,
		s.EstimatedMinutes, s.IsActive,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, apperrors.ErrConflict
			case "23503":
				return nil, apperrors.NewInvalidInputError("станок с id=%d не существует", s.MachineID)
			}
		}
		return nil, err
	}
	return created, nil
}

func (r *ScheduleRepository) UpdateScheduleInTx(ctx context.Context, tx pgx.Tx, s entities.MaintenanceSchedule, fields []string) error {
	if len(fields) == 0 {
		return nil
	}

	builder := sq.Update(scheduleTable).PlaceholderFormat(sq.Dollar)
	for _, f := range fields {
		switch f {
		case "maintenance_type":
			builder = builder.Set("maintenance_type", s.MaintenanceType)
		case "interval_days":
			builder = builder.Set("interval_days", s.IntervalDays)
		case "start_date":
			builder = builder.Set("start_date", s.StartDate)
		case "next_maintenance_date":
			builder = builder.Set("next_maintenance_date", s.NextMaintenanceDate)
		case "priority":
			builder = builder.Set("priority", s.Priority)
		case "checklist":
			builder = builder.Set("checklist", s.Checklist)
		case "required_parts":
			builder = builder.Set("required_parts", s.RequiredParts)
		case "required_tools":
			builder = builder.Set("required_tools", s.RequiredTools)
		case "estimated_minutes":
			builder = builder.Set("estimated_minutes", s.EstimatedMinutes)
		case "is_active":
			builder = builder.Set("is_active", s.IsActive)
		default:
			return fmt.Errorf("неизвестное поле графика для обновления: %s", f)
		}
	}
	builder = builder.Set("updated_at", time.Now()).Where(sq.Eq{"id": s.ID})

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	result, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ScheduleRepository) getActiveByDue(ctx context.Context, condition string, args ...interface{}) ([]entities.MaintenanceSchedule, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE is_active = TRUE AND %s ORDER BY next_maintenance_date ASC, id",
		scheduleFields, scheduleTable, condition)

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]entities.MaintenanceSchedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *s)
	}
	return schedules, rows.Err()
}

// GetActiveDueBetween - активные графики со сроком в [from, to] включительно.
func (r *ScheduleRepository) GetActiveDueBetween(ctx context.Context, from, to time.Time) ([]entities.MaintenanceSchedule, error) {
	return r.getActiveByDue(ctx, "next_maintenance_date >= $1 AND next_maintenance_date <= $2", from, to)
}

// GetActiveDueBefore - активные графики со сроком строго раньше before.
func (r *ScheduleRepository) GetActiveDueBefore(ctx context.Context, before time.Time) ([]entities.MaintenanceSchedule, error) {
	return r.getActiveByDue(ctx, "next_maintenance_date < $1", before)
}
