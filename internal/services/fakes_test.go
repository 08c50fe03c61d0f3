package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

// Фейковые репозитории поверх карт в памяти. Транзакционные методы
// принимают nil вместо pgx.Tx: границы транзакции в этих тестах не
// проверяются, проверяется бизнес-логика сервисов.

type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	m.calls++
	return fn(nil)
}

type fakeMachineRepo struct {
	machines map[uint64]entities.Machine
	nextID   uint64
	updates  int
}

func newFakeMachineRepo() *fakeMachineRepo {
	return &fakeMachineRepo{machines: make(map[uint64]entities.Machine), nextID: 1}
}

func (r *fakeMachineRepo) add(m entities.Machine) entities.Machine {
	m.ID = r.nextID
	r.nextID++
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.CreatedAt = &now
	m.UpdatedAt = &now
	r.machines[m.ID] = m
	return m
}

func (r *fakeMachineRepo) GetMachines(ctx context.Context, limit, offset uint64, search string) ([]entities.Machine, uint64, error) {
	out := make([]entities.Machine, 0, len(r.machines))
	for _, m := range r.machines {
		out = append(out, m)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeMachineRepo) FindMachine(ctx context.Context, id uint64) (*entities.Machine, error) {
	m, ok := r.machines[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &m, nil
}

func (r *fakeMachineRepo) FindMachineByCode(ctx context.Context, code string) (*entities.Machine, error) {
	for _, m := range r.machines {
		if m.Code == code {
			return &m, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeMachineRepo) FindMachineInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Machine, error) {
	return r.FindMachine(ctx, id)
}

func (r *fakeMachineRepo) CreateMachine(ctx context.Context, m entities.Machine) (*entities.Machine, error) {
	for _, existing := range r.machines {
		if existing.Code == m.Code {
			return nil, apperrors.ErrConflict
		}
	}
	created := r.add(m)
	return &created, nil
}

func (r *fakeMachineRepo) UpdateMachineInTx(ctx context.Context, tx pgx.Tx, m entities.Machine, fields []string) error {
	if _, ok := r.machines[m.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.updates++
	r.machines[m.ID] = m
	return nil
}

func (r *fakeMachineRepo) DeleteMachine(ctx context.Context, id uint64) error {
	if _, ok := r.machines[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.machines, id)
	return nil
}

func (r *fakeMachineRepo) CountMachines(ctx context.Context) (int64, error) {
	return int64(len(r.machines)), nil
}

type fakeScheduleRepo struct {
	schedules map[uint64]entities.MaintenanceSchedule
	nextID    uint64
	updates   int
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[uint64]entities.MaintenanceSchedule), nextID: 1}
}

func (r *fakeScheduleRepo) add(s entities.MaintenanceSchedule) entities.MaintenanceSchedule {
	s.ID = r.nextID
	r.nextID++
	r.schedules[s.ID] = s
	return s
}

func (r *fakeScheduleRepo) GetSchedules(ctx context.Context, limit, offset uint64, machineID uint64) ([]entities.MaintenanceSchedule, uint64, error) {
	out := make([]entities.MaintenanceSchedule, 0, len(r.schedules))
	for _, s := range r.schedules {
		if machineID != 0 && s.MachineID != machineID {
			continue
		}
		out = append(out, s)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeScheduleRepo) FindSchedule(ctx context.Context, id uint64) (*entities.MaintenanceSchedule, error) {
	s, ok := r.schedules[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &s, nil
}

func (r *fakeScheduleRepo) FindScheduleInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceSchedule, error) {
	return r.FindSchedule(ctx, id)
}

func (r *fakeScheduleRepo) CreateSchedule(ctx context.Context, s entities.MaintenanceSchedule) (*entities.MaintenanceSchedule, error) {
	created := r.add(s)
	return &created, nil
}

func (r *fakeScheduleRepo) UpdateScheduleInTx(ctx context.Context, tx pgx.Tx, s entities.MaintenanceSchedule, fields []string) error {
	if _, ok := r.schedules[s.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.updates++
	r.schedules[s.ID] = s
	return nil
}

func (r *fakeScheduleRepo) GetActiveDueBetween(ctx context.Context, from, to time.Time) ([]entities.MaintenanceSchedule, error) {
	out := make([]entities.MaintenanceSchedule, 0)
	for _, s := range r.schedules {
		due := utils.TruncateToDate(s.NextMaintenanceDate)
		if s.IsActive && !due.Before(from) && !due.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) GetActiveDueBefore(ctx context.Context, before time.Time) ([]entities.MaintenanceSchedule, error) {
	out := make([]entities.MaintenanceSchedule, 0)
	for _, s := range r.schedules {
		if s.IsActive && utils.TruncateToDate(s.NextMaintenanceDate).Before(before) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeRecordRepo struct {
	records map[uint64]entities.MaintenanceRecord
	nextID  uint64
	updates int
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[uint64]entities.MaintenanceRecord), nextID: 1}
}

func (r *fakeRecordRepo) add(rec entities.MaintenanceRecord) entities.MaintenanceRecord {
	rec.ID = r.nextID
	r.nextID++
	r.records[rec.ID] = rec
	return rec
}

func (r *fakeRecordRepo) GetRecords(ctx context.Context, limit, offset uint64, machineID uint64, status string) ([]entities.MaintenanceRecord, uint64, error) {
	out := make([]entities.MaintenanceRecord, 0, len(r.records))
	for _, rec := range r.records {
		if machineID != 0 && rec.MachineID != machineID {
			continue
		}
		if status != "" && rec.Status != status {
			continue
		}
		out = append(out, rec)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeRecordRepo) FindRecord(ctx context.Context, id uint64) (*entities.MaintenanceRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &rec, nil
}

func (r *fakeRecordRepo) FindRecordInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceRecord, error) {
	return r.FindRecord(ctx, id)
}

func (r *fakeRecordRepo) CreateRecord(ctx context.Context, rec entities.MaintenanceRecord) (*entities.MaintenanceRecord, error) {
	created := r.add(rec)
	return &created, nil
}

func (r *fakeRecordRepo) UpdateRecordInTx(ctx context.Context, tx pgx.Tx, rec entities.MaintenanceRecord, fields []string) error {
	if _, ok := r.records[rec.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.updates++
	r.records[rec.ID] = rec
	return nil
}

func (r *fakeRecordRepo) SetStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status string, completedAt *time.Time) error {
	rec, ok := r.records[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	rec.Status = status
	rec.CompletedAt = completedAt
	r.records[id] = rec
	return nil
}

type fakeHistoryRepo struct {
	rows   []entities.MachineHistory
	nextID uint64
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{nextID: 1}
}

func (r *fakeHistoryRepo) CreateInTx(ctx context.Context, tx pgx.Tx, history *entities.MachineHistory) error {
	history.ID = r.nextID
	r.nextID++
	if history.CreatedAt.IsZero() {
		history.CreatedAt = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	r.rows = append(r.rows, *history)
	return nil
}

func (r *fakeHistoryRepo) FindByMachineID(ctx context.Context, machineID uint64, limit, offset uint64) ([]entities.MachineHistory, error) {
	out := make([]entities.MachineHistory, 0)
	for _, row := range r.rows {
		if row.MachineID == machineID {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeCacheRepo struct {
	store map[string]string
	dels  []string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{store: make(map[string]string)}
}

func (r *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	r.store[key] = value.(string)
	return nil
}

func (r *fakeCacheRepo) Get(ctx context.Context, key string) (string, error) {
	v, ok := r.store[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return v, nil
}

func (r *fakeCacheRepo) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(r.store, key)
		r.dels = append(r.dels, key)
	}
	return nil
}

// fakeDashboardRepo поверх фейковых графиков, записей и станков:
// счетчики считаются по тем же правилам, что и SQL-запросы.
type fakeDashboardRepo struct {
	machines  *fakeMachineRepo
	schedules *fakeScheduleRepo
	records   *fakeRecordRepo
}

func (r *fakeDashboardRepo) CountMachines(ctx context.Context) (int64, error) {
	return int64(len(r.machines.machines)), nil
}

func (r *fakeDashboardRepo) CountSchedulesDueBetween(ctx context.Context, from, to time.Time) (int64, error) {
	due, err := r.schedules.GetActiveDueBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}
	return int64(len(due)), nil
}

func (r *fakeDashboardRepo) CountSchedulesDueBefore(ctx context.Context, before time.Time) (int64, error) {
	due, err := r.schedules.GetActiveDueBefore(ctx, before)
	if err != nil {
		return 0, err
	}
	return int64(len(due)), nil
}

func (r *fakeDashboardRepo) CountCompletedRecordsBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	for _, rec := range r.records.records {
		date := utils.TruncateToDate(rec.MaintenanceDate)
		if rec.Status == "completed" && !date.Before(from) && !date.After(to) {
			total++
		}
	}
	return total, nil
}

func (r *fakeDashboardRepo) GetCalendarBuckets(ctx context.Context, from, to time.Time) ([]repositories.CalendarBucket, error) {
	counts := make(map[time.Time]int64)
	for _, s := range r.schedules.schedules {
		due := utils.TruncateToDate(s.NextMaintenanceDate)
		if s.IsActive && !due.Before(from) && !due.After(to) {
			counts[due]++
		}
	}
	buckets := make([]repositories.CalendarBucket, 0, len(counts))
	for date, count := range counts {
		buckets = append(buckets, repositories.CalendarBucket{Date: date, Count: count})
	}
	return buckets, nil
}

// Интерфейсные проверки.
var (
	_ repositories.TxManagerInterface         = (*fakeTxManager)(nil)
	_ repositories.MachineRepositoryInterface = (*fakeMachineRepo)(nil)
	_ repositories.ScheduleRepositoryInterface = (*fakeScheduleRepo)(nil)
	_ repositories.RecordRepositoryInterface   = (*fakeRecordRepo)(nil)
	_ repositories.MachineHistoryRepositoryInterface = (*fakeHistoryRepo)(nil)
	_ repositories.CacheRepositoryInterface          = (*fakeCacheRepo)(nil)
	_ repositories.DashboardRepositoryInterface      = (*fakeDashboardRepo)(nil)
)
