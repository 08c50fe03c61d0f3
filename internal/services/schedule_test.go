package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

type scheduleFixture struct {
	svc       *ScheduleService
	machines  *fakeMachineRepo
	schedules *fakeScheduleRepo
}

func newScheduleFixture(t *testing.T) *scheduleFixture {
	t.Helper()
	machines := newFakeMachineRepo()
	schedules := newFakeScheduleRepo()

	svc := NewScheduleService(schedules, machines, &fakeTxManager{}, zap.NewNop(), 30)
	svc.now = func() time.Time { return testNow }

	return &scheduleFixture{svc: svc, machines: machines, schedules: schedules}
}

func TestNextDueOnOrAfter(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		interval  int
		notBefore time.Time
		want      string
	}{
		{"старт в будущем", 30, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), "2025-01-01"},
		{"старт сегодня", 30, start, "2025-01-01"},
		{"ровно на сетке", 30, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), "2025-01-31"},
		{"между точками сетки", 30, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), "2025-03-02"},
		{"далеко в будущем", 7, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), "2025-03-19"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := nextDueOnOrAfter(start, tc.interval, tc.notBefore)
			assert.Equal(t, tc.want, utils.FormatDate(got))

			// Результат всегда лежит на сетке start + k*interval.
			diffDays := int(got.Sub(utils.TruncateToDate(start)).Hours() / 24)
			assert.Zero(t, diffDays%tc.interval)
			assert.False(t, got.Before(utils.TruncateToDate(tc.notBefore)))
		})
	}
}

func TestClassifySchedule(t *testing.T) {
	today := utils.TruncateToDate(testNow)

	mk := func(due time.Time) *entities.MaintenanceSchedule {
		return &entities.MaintenanceSchedule{NextMaintenanceDate: due}
	}

	assert.Equal(t, constants.ScheduleStateOverdue, classifySchedule(mk(today.AddDate(0, 0, -1)), today, 30))
	assert.Equal(t, constants.ScheduleStatePending, classifySchedule(mk(today), today, 30))
	assert.Equal(t, constants.ScheduleStatePending, classifySchedule(mk(today.AddDate(0, 0, 30)), today, 30))
	assert.Equal(t, constants.ScheduleStateScheduled, classifySchedule(mk(today.AddDate(0, 0, 31)), today, 30))
}

func TestScheduleService_CreateSchedule(t *testing.T) {
	f := newScheduleFixture(t)
	machine := f.machines.add(entities.Machine{Code: "MCH-001", Name: "Станок", Type: "lathe", Location: "Цех 1", Status: "operational"})

	created, err := f.svc.CreateSchedule(context.Background(), dto.CreateScheduleDTO{
		MachineID:       machine.ID,
		MaintenanceType: "профилактика",
		IntervalDays:    30,
		StartDate:       "2025-01-01",
	})
	require.NoError(t, err)

	// Первая плановая дата совпадает с датой старта.
	assert.Equal(t, "2025-01-01", created.NextMaintenanceDate)
	assert.True(t, created.IsActive)
	assert.Equal(t, constants.PriorityMedium, created.Priority)
	assert.NotEmpty(t, created.Code)

	// График для несуществующего станка не создается.
	_, err = f.svc.CreateSchedule(context.Background(), dto.CreateScheduleDTO{
		MachineID:       999,
		MaintenanceType: "профилактика",
		IntervalDays:    30,
		StartDate:       "2025-01-01",
	})
	var invalidInput *apperrors.InvalidInputError
	require.ErrorAs(t, err, &invalidInput)
}

func TestScheduleService_UpdateSchedule_RecomputesNextDate(t *testing.T) {
	f := newScheduleFixture(t)
	schedule := f.schedules.add(entities.MaintenanceSchedule{
		Code:                "SCH-001",
		MachineID:           1,
		MaintenanceType:     "профилактика",
		IntervalDays:        30,
		StartDate:           time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		NextMaintenanceDate: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		IsActive:            true,
	})

	// Смена интервала пересчитывает плановую дату на новую сетку.
	newInterval := 45
	result, err := f.svc.UpdateSchedule(context.Background(), schedule.ID, dto.UpdateScheduleDTO{IntervalDays: &newInterval})
	require.NoError(t, err)

	assert.Contains(t, result.ChangedFields, "interval_days")
	assert.Contains(t, result.ChangedFields, "next_maintenance_date")
	// today = 2025-03-15; сетка 2025-01-01 + k*45: 15.02, 01.04.
	assert.Equal(t, "2025-04-01", result.Schedule.NextMaintenanceDate)

	stored := f.schedules.schedules[schedule.ID]
	assert.Equal(t, "2025-04-01", utils.FormatDate(stored.NextMaintenanceDate))
}

func TestScheduleService_UpdateSchedule_NoGridChangeKeepsDate(t *testing.T) {
	f := newScheduleFixture(t)
	schedule := f.schedules.add(entities.MaintenanceSchedule{
		MachineID:           1,
		MaintenanceType:     "профилактика",
		IntervalDays:        30,
		StartDate:           time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		NextMaintenanceDate: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		Priority:            "medium",
		IsActive:            true,
	})

	newPriority := "high"
	result, err := f.svc.UpdateSchedule(context.Background(), schedule.ID, dto.UpdateScheduleDTO{Priority: &newPriority})
	require.NoError(t, err)

	assert.Equal(t, []string{"priority"}, result.ChangedFields)
	assert.Equal(t, "2025-03-02", result.Schedule.NextMaintenanceDate)
}

func TestScheduleService_UpdateSchedule_NoOp(t *testing.T) {
	f := newScheduleFixture(t)
	schedule := f.schedules.add(entities.MaintenanceSchedule{
		MachineID:           1,
		MaintenanceType:     "профилактика",
		IntervalDays:        30,
		StartDate:           time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		NextMaintenanceDate: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		IsActive:            true,
	})

	result, err := f.svc.UpdateSchedule(context.Background(), schedule.ID, dto.UpdateScheduleDTO{})
	require.NoError(t, err)
	assert.Empty(t, result.ChangedFields)
	assert.Zero(t, f.schedules.updates)

	// Присланный без изменений интервал тоже no-op: дата не трогается.
	sameInterval := 30
	result, err = f.svc.UpdateSchedule(context.Background(), schedule.ID, dto.UpdateScheduleDTO{IntervalDays: &sameInterval})
	require.NoError(t, err)
	assert.Empty(t, result.ChangedFields)
	assert.Zero(t, f.schedules.updates)
}

func TestScheduleService_ListUpcoming_HorizonClamped(t *testing.T) {
	f := newScheduleFixture(t)
	today := utils.TruncateToDate(testNow)

	mk := func(code string, due time.Time) {
		f.schedules.add(entities.MaintenanceSchedule{
			Code: code, MachineID: 1, IntervalDays: 30,
			StartDate: due, NextMaintenanceDate: due, IsActive: true,
		})
	}
	mk("SCH-today", today)
	mk("SCH-week", today.AddDate(0, 0, 7))
	mk("SCH-far", today.AddDate(0, 0, 100))
	mk("SCH-past", today.AddDate(0, 0, -5))

	// Нулевой горизонт означает горизонт по умолчанию (30 дней).
	upcoming, err := f.svc.ListUpcoming(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, upcoming, 2)

	// Отрицательный горизонт зажимается до минимального.
	upcoming, err = f.svc.ListUpcoming(context.Background(), -10)
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)

	// Огромный горизонт зажимается до максимального и видит дальний график.
	upcoming, err = f.svc.ListUpcoming(context.Background(), 100000)
	require.NoError(t, err)
	assert.Len(t, upcoming, 3)

	for _, s := range upcoming {
		assert.NotEqual(t, constants.ScheduleStateOverdue, s.State)
	}
}

func TestScheduleService_ListOverdue(t *testing.T) {
	f := newScheduleFixture(t)
	today := utils.TruncateToDate(testNow)

	f.schedules.add(entities.MaintenanceSchedule{
		Code: "SCH-past", MachineID: 1, IntervalDays: 30,
		StartDate:           today.AddDate(0, 0, -40),
		NextMaintenanceDate: today.AddDate(0, 0, -10),
		IsActive:            true,
	})
	// Сегодняшняя дата не просрочена.
	f.schedules.add(entities.MaintenanceSchedule{
		Code: "SCH-today", MachineID: 1, IntervalDays: 30,
		StartDate: today, NextMaintenanceDate: today, IsActive: true,
	})
	// Неактивные графики не попадают в просроченные.
	f.schedules.add(entities.MaintenanceSchedule{
		Code: "SCH-off", MachineID: 1, IntervalDays: 30,
		StartDate:           today.AddDate(0, 0, -40),
		NextMaintenanceDate: today.AddDate(0, 0, -10),
		IsActive:            false,
	})

	overdue, err := f.svc.ListOverdue(context.Background())
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "SCH-past", overdue[0].Code)
	assert.Equal(t, constants.ScheduleStateOverdue, overdue[0].State)
}
