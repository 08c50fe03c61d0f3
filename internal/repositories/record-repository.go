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
	recordTable  = "maintenance_records"
	recordFields = "id, code, machine_id, schedule_id, maintenance_date, maintenance_type, technician_id, description, parts_used, work_images, cost, actual_minutes, status, notes, completed_at, created_at, updated_at"
)

type RecordRepositoryInterface interface {
	GetRecords(ctx context.Context, limit, offset uint64, machineID uint64, status string) ([]entities.MaintenanceRecord, uint64, error)
	FindRecord(ctx context.Context, id uint64) (*entities.MaintenanceRecord, error)
	FindRecordInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceRecord, error)
	CreateRecord(ctx context.Context, rec entities.MaintenanceRecord) (*entities.MaintenanceRecord, error)
	UpdateRecordInTx(ctx context.Context, tx pgx.Tx, rec entities.MaintenanceRecord, fields []string) error
	SetStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status string, completedAt *time.Time) error
}

type RecordRepository struct {
	storage *pgxpool.Pool
}

func NewRecordRepository(storage *pgxpool.Pool) RecordRepositoryInterface {
	return &RecordRepository{storage: storage}
}

func scanRecord(row pgx.Row) (*entities.MaintenanceRecord, error) {
	var rec entities.MaintenanceRecord
	err := row.Scan(
		&rec.ID, &rec.Code, &rec.MachineID, &rec.ScheduleID,
		&rec.MaintenanceDate, &rec.MaintenanceType, &rec.TechnicianID,
		&rec.Description, &rec.PartsUsed, &rec.WorkImages,
		&rec.Cost, &rec.ActualMinutes, &rec.Status, &rec.Notes,
		&rec.CompletedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *RecordRepository) GetRecords(ctx context.Context, limit, offset uint64, machineID uint64, status string) ([]entities.MaintenanceRecord, uint64, error) {
	conditions := sq.And{}
	if machineID != 0 {
		conditions = append(conditions, sq.Eq{"machine_id": machineID})
	}
	if status != "" {
		conditions = append(conditions, sq.Eq{"status": status})
	}

	countBuilder := sq.Select("COUNT(*)").From(recordTable).PlaceholderFormat(sq.Dollar)
	if len(conditions) > 0 {
		countBuilder = countBuilder.Where(conditions)
	}
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета записей работ: %w", err)
	}
	if total == 0 {
		return []entities.MaintenanceRecord{}, 0, nil
	}

	builder := sq.Select(recordFields).From(recordTable).
		OrderBy("maintenance_date DESC", "id DESC").
		Limit(limit).Offset(offset).
		PlaceholderFormat(sq.Dollar)
	if len(conditions) > 0 {
		builder = builder.Where(conditions)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка записей работ: %w", err)
	}
	defer rows.Close()

	records := make([]entities.MaintenanceRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования записи работ: %w", err)
		}
		records = append(records, *rec)
	}
	return records, total, rows.Err()
}

func (r *RecordRepository) findOneRecord(ctx context.Context, q querier, condition string, id uint64) (*entities.MaintenanceRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", recordFields, recordTable, condition)
	return scanRecord(q.QueryRow(ctx, query, id))
}

func (r *RecordRepository) FindRecord(ctx context.Context, id uint64) (*entities.MaintenanceRecord, error) {
	return r.findOneRecord(ctx, r.storage, "id = $1", id)
}

func (r *RecordRepository) FindRecordInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceRecord, error) {
	return r.findOneRecord(ctx, tx, "id = $1 FOR UPDATE", id)
}

func (r *RecordRepository) CreateRecord(ctx context.Context, rec entities.MaintenanceRecord) (*entities.MaintenanceRecord, error) {
	query := fmt.Sprintf(`
        INSERT INTO %s (code, machine_id, schedule_id, maintenance_date, maintenance_type, technician_id, description, parts_used, work_images, cost, actual_minutes, status, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING %s`, recordTable, recordFields)

	created, err := scanRecord(r.storage.QueryRow(ctx, query,
		rec.Code, rec.MachineID, rec.ScheduleID, rec.MaintenanceDate,
		rec.MaintenanceType, rec.TechnicianID, rec.Description,
		rec.PartsUsed, rec.WorkImages, rec.Cost, rec.ActualMinutes,
		rec.Status, rec.Notes,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, apperrors.ErrConflict
			case "23503":
				return nil, apperrors.NewInvalidInputError("станок или график для записи работ не существует")
			}
		}
		return nil, err
	}
	return created, nil
}

func (r *RecordRepository) UpdateRecordInTx(ctx context.Context, tx pgx.Tx, rec entities.MaintenanceRecord, fields []string) error {
	if len(fields) == 0 {
		return nil
	}

	builder := sq.Update(recordTable).PlaceholderFormat(sq.Dollar)
	for _, f := range fields {
		switch f {
		case "maintenance_date":
			builder = builder.Set("maintenance_date", rec.MaintenanceDate)
		case "maintenance_type":
			builder = builder.Set("maintenance_type", rec.MaintenanceType)
		case "description":
			builder = builder.Set("description", rec.Description)
		case "parts_used":
			builder = builder.Set("parts_used", rec.PartsUsed)
		case "work_images":
			builder = builder.Set("work_images", rec.WorkImages)
		case "cost":
			builder = builder.Set("cost", rec.Cost)
		case "actual_minutes":
			builder = builder.Set("actual_minutes", rec.ActualMinutes)
		case "notes":
			builder = builder.Set("notes", rec.Notes)
		default:
			return fmt.Errorf("неизвестное поле записи работ для обновления: %s", f)
		}
	}
	builder = builder.Set("updated_at", time.Now()).Where(sq.Eq{"id": rec.ID})

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

// SetStatusInTx применяет уже проверенный сервисом переход.
// completedAt передается только переходом complete_work.
func (r *RecordRepository) SetStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status string, completedAt *time.Time) error {
	var result pgconn.CommandTag
	var err error

	if completedAt != nil {
		result, err = tx.Exec(ctx,
			fmt.Sprintf("UPDATE %s SET status = $1, completed_at = $2, updated_at = $3 WHERE id = $4", recordTable),
			status, completedAt, time.Now(), id)
	} else {
		result, err = tx.Exec(ctx,
			fmt.Sprintf("UPDATE %s SET status = $1, updated_at = $2 WHERE id = $3", recordTable),
			status, time.Now(), id)
	}
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
