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
	machineTable  = "machines"
	machineFields = "id, code, name, type, manufacturer, model, serial_number, location, department, status, installation_date, notes, created_at, updated_at"
)

type MachineRepositoryInterface interface {
	GetMachines(ctx context.Context, limit, offset uint64, search string) ([]entities.Machine, uint64, error)
	FindMachine(ctx context.Context, id uint64) (*entities.Machine, error)
	FindMachineByCode(ctx context.Context, code string) (*entities.Machine, error)
	FindMachineInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Machine, error)
	CreateMachine(ctx context.Context, m entities.Machine) (*entities.Machine, error)
	UpdateMachineInTx(ctx context.Context, tx pgx.Tx, m entities.Machine, fields []string) error
	DeleteMachine(ctx context.Context, id uint64) error
	CountMachines(ctx context.Context) (int64, error)
}

type MachineRepository struct {
	storage *pgxpool.Pool
}

func NewMachineRepository(storage *pgxpool.Pool) MachineRepositoryInterface {
	return &MachineRepository{storage: storage}
}

func scanMachine(row pgx.Row) (*entities.Machine, error) {
	var m entities.Machine
	err := row.Scan(
		&m.ID, &m.Code, &m.Name, &m.Type,
		&m.Manufacturer, &m.Model, &m.SerialNumber,
		&m.Location, &m.Department, &m.Status,
		&m.InstallationDate, &m.Notes,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MachineRepository) GetMachines(ctx context.Context, limit, offset uint64, search string) ([]entities.Machine, uint64, error) {
	var total uint64
	var args []interface{}
	whereClause := ""

	if search != "" {
		whereClause = "WHERE name ILIKE $1 OR code ILIKE $1 OR location ILIKE $1"
		args = append(args, "%"+search+"%")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", machineTable, whereClause)
	if err := r.storage.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета станков: %w", err)
	}
	if total == 0 {
		return []entities.Machine{}, 0, nil
	}

	queryArgs := append(args, limit, offset)
	query := fmt.Sprintf("SELECT %s FROM %s %s ORDER BY id LIMIT $%d OFFSET $%d",
		machineFields, machineTable, whereClause, len(args)+1, len(args)+2)

	rows, err := r.storage.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка станков: %w", err)
	}
	defer rows.Close()

	machines := make([]entities.Machine, 0, limit)
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования станка в списке: %w", err)
		}
		machines = append(machines, *m)
	}
	return machines, total, rows.Err()
}

// findOneMachine работает и через пул, и внутри транзакции.
func (r *MachineRepository) findOneMachine(ctx context.Context, q querier, condition string, arg interface{}) (*entities.Machine, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", machineFields, machineTable, condition)
	return scanMachine(q.QueryRow(ctx, query, arg))
}

func (r *MachineRepository) FindMachine(ctx context.Context, id uint64) (*entities.Machine, error) {
	return r.findOneMachine(ctx, r.storage, "id = $1", id)
}

func (r *MachineRepository) FindMachineByCode(ctx context.Context, code string) (*entities.Machine, error) {
	return r.findOneMachine(ctx, r.storage, "code = $1", code)
}

func (r *MachineRepository) FindMachineInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Machine, error) {
	return r.findOneMachine(ctx, tx, "id = $1 FOR UPDATE", id)
}

func (r *MachineRepository) CreateMachine(ctx context.Context, m entities.Machine) (*entities.Machine, error) {
	query := fmt.Sprintf(`
        INSERT INTO %s (code, name, type, manufacturer, model, serial_number, location, department, status, installation_date, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING %s`, machineTable, machineFields)

	created, err := scanMachine(r.storage.QueryRow(ctx, query,
		m.Code, m.Name, m.Type, m.Manufacturer, m.Model, m.SerialNumber,
		m.Location, m.Department, m.Status, m.InstallationDate, m.Notes,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrConflict
		}
		return nil, err
	}
	return created, nil
}

// UpdateMachineInTx пишет только перечисленные поля плюс updated_at.
// Явный список колонок: неизвестное поле - ошибка, а не тихий пропуск.
func (r *MachineRepository) UpdateMachineInTx(ctx context.Context, tx pgx.Tx, m entities.Machine, fields []string) error {
	if len(fields) == 0 {
		return nil
	}

	builder := sq.Update(machineTable).PlaceholderFormat(sq.Dollar)
	for _, f := range fields {
		switch f {
		case "name":
			builder = builder.Set("name", m.Name)
		case "type":
			builder = builder.Set("type", m.Type)
		case "manufacturer":
			builder = builder.Set("manufacturer", m.Manufacturer)
		case "model":
			builder = builder.Set("model", m.Model)
		case "serial_number":
			builder = builder.Set("serial_number", m.SerialNumber)
		case "location":
			builder = builder.Set("location", m.Location)
		case "department":
			builder = builder.Set("department", m.Department)
		case "status":
			builder = builder.Set("status", m.Status)
		case "installation_date":
			builder = builder.Set("installation_date", m.InstallationDate)
		case "notes":
			builder = builder.Set("notes", m.Notes)
		default:
			return fmt.Errorf("неизвестное поле станка для обновления: %s", f)
		}
	}
	builder = builder.Set("updated_at", time.Now()).Where(sq.Eq{"id": m.ID})

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

func (r *MachineRepository) DeleteMachine(ctx context.Context, id uint64) error {
	// Графики и записи работ уходят каскадом (FK ON DELETE CASCADE).
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", machineTable)

	result, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MachineRepository) CountMachines(ctx context.Context) (int64, error) {
	var total int64
	err := r.storage.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", machineTable)).Scan(&total)
	return total, err
}
