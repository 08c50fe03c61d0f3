package repositories

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"maintenance-system/pkg/constants"
)

// CalendarBucket - количество активных графиков на одну дату месяца.
type CalendarBucket struct {
	Date  time.Time
	Count int64
}

type DashboardRepositoryInterface interface {
	CountMachines(ctx context.Context) (int64, error)
	CountSchedulesDueBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountSchedulesDueBefore(ctx context.Context, before time.Time) (int64, error)
	CountCompletedRecordsBetween(ctx context.Context, from, to time.Time) (int64, error)
	GetCalendarBuckets(ctx context.Context, from, to time.Time) ([]CalendarBucket, error)
}

type DashboardRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDashboardRepository(storage *pgxpool.Pool, logger *zap.Logger) DashboardRepositoryInterface {
	return &DashboardRepository{storage: storage, logger: logger}
}

func (r *DashboardRepository) countOne(ctx context.Context, builder sq.SelectBuilder) (int64, error) {
	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var total int64
	err = r.storage.QueryRow(ctx, query, args...).Scan(&total)
	return total, err
}

func (r *DashboardRepository) CountMachines(ctx context.Context) (int64, error) {
	return r.countOne(ctx, sq.Select("COUNT(*)").From("machines"))
}

func (r *DashboardRepository) CountSchedulesDueBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return r.countOne(ctx, sq.Select("COUNT(*)").From("maintenance_schedules").
		Where(sq.Eq{"is_active": true}).
		Where(sq.GtOrEq{"next_maintenance_date": from}).
		Where(sq.LtOrEq{"next_maintenance_date": to}))
}

func (r *DashboardRepository) CountSchedulesDueBefore(ctx context.Context, before time.Time) (int64, error) {
	return r.countOne(ctx, sq.Select("COUNT(*)").From("maintenance_schedules").
		Where(sq.Eq{"is_active": true}).
		Where(sq.Lt{"next_maintenance_date": before}))
}

func (r *DashboardRepository) CountCompletedRecordsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return r.countOne(ctx, sq.Select("COUNT(*)").From("maintenance_records").
		Where(sq.Eq{"status": constants.RecordStatusCompleted}).
		Where(sq.GtOrEq{"maintenance_date": from}).
		Where(sq.LtOrEq{"maintenance_date": to}))
}

func (r *DashboardRepository) GetCalendarBuckets(ctx context.Context, from, to time.Time) ([]CalendarBucket, error) {
	builder := sq.Select("next_maintenance_date", "COUNT(*)").
		From("maintenance_schedules").
		Where(sq.Eq{"is_active": true}).
		Where(sq.GtOrEq{"next_maintenance_date": from}).
		Where(sq.LtOrEq{"next_maintenance_date": to}).
		GroupBy("next_maintenance_date").
		OrderBy("next_maintenance_date ASC")

	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := make([]CalendarBucket, 0)
	for rows.Next() {
		var b CalendarBucket
		if err := rows.Scan(&b.Date, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}
