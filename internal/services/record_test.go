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
	"maintenance-system/pkg/contextkeys"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

var testNow = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

type recordFixture struct {
	svc       *RecordService
	machines  *fakeMachineRepo
	schedules *fakeScheduleRepo
	records   *fakeRecordRepo
}

func newRecordFixture(t *testing.T) *recordFixture {
	t.Helper()
	machines := newFakeMachineRepo()
	schedules := newFakeScheduleRepo()
	records := newFakeRecordRepo()

	svc := NewRecordService(records, schedules, machines, &fakeTxManager{}, zap.NewNop())
	svc.now = func() time.Time { return testNow }

	return &recordFixture{svc: svc, machines: machines, schedules: schedules, records: records}
}

func (f *recordFixture) seedMachine() entities.Machine {
	return f.machines.add(entities.Machine{Code: "MCH-001", Name: "Фрезерный станок", Type: "mill", Location: "Цех 1", Status: "operational"})
}

func (f *recordFixture) seedRecord(machineID uint64, status string) entities.MaintenanceRecord {
	return f.records.add(entities.MaintenanceRecord{
		Code:            "REC-001",
		MachineID:       machineID,
		MaintenanceDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		MaintenanceType: "ремонт",
		TechnicianID:    7,
		Description:     "замена подшипника",
		Status:          status,
	})
}

func TestRecordService_StartWork(t *testing.T) {
	f := newRecordFixture(t)
	machine := f.seedMachine()
	record := f.seedRecord(machine.ID, constants.RecordStatusPending)

	transition, err := f.svc.StartWork(authCtx(), record.ID)
	require.NoError(t, err)

	assert.Equal(t, constants.ActionStartWork, transition.Action)
	assert.Equal(t, constants.RecordStatusPending, transition.PreviousStatus)
	assert.Equal(t, constants.RecordStatusInProgress, transition.NewStatus)
	assert.Equal(t, uint64(7), transition.TechnicianID)
	assert.Equal(t, testUserID, transition.ActedBy)
	assert.Equal(t, testNow.Format(time.RFC3339), transition.TransitionedAt)

	stored := f.records.records[record.ID]
	assert.Equal(t, constants.RecordStatusInProgress, stored.Status)
	assert.Nil(t, stored.CompletedAt, "начало работ не должно выставлять completed_at")
}

func TestRecordService_CompleteWork_SetsCompletedAt(t *testing.T) {
	f := newRecordFixture(t)
	machine := f.seedMachine()
	record := f.seedRecord(machine.ID, constants.RecordStatusInProgress)

	transition, err := f.svc.CompleteWork(authCtx(), record.ID)
	require.NoError(t, err)

	assert.Equal(t, constants.RecordStatusCompleted, transition.NewStatus)
	stored := f.records.records[record.ID]
	require.NotNil(t, stored.CompletedAt)
	assert.True(t, stored.CompletedAt.Equal(testNow))
	assert.Equal(t, testNow.Format(time.RFC3339), transition.Record.CompletedAt)
}

func TestRecordService_CompleteWork_FromPendingRejected(t *testing.T) {
	f := newRecordFixture(t)
	machine := f.seedMachine()
	record := f.seedRecord(machine.ID, constants.RecordStatusPending)

	// Завершить можно только начатую работу.
	_, err := f.svc.CompleteWork(authCtx(), record.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	stored := f.records.records[record.ID]
	assert.Equal(t, constants.RecordStatusPending, stored.Status)
}

func TestRecordService_CancelWork_FromBothActiveStatuses(t *testing.T) {
	f := newRecordFixture(t)
	machine := f.seedMachine()

	for _, from := range []string{constants.RecordStatusPending, constants.RecordStatusInProgress} {
		record := f.seedRecord(machine.ID, from)

		transition, err := f.svc.CancelWork(authCtx(), record.ID)
		require.NoError(t, err, "отмена из статуса %s", from)
		assert.Equal(t, constants.RecordStatusCancelled, transition.NewStatus)

		stored := f.records.records[record.ID]
		assert.Nil(t, stored.CompletedAt, "отмена не должна выставлять completed_at")
	}
}

func TestRecordService_FinalStatusesAreTerminal(t *testing.T) {
	f := newRecordFixture(t)
	machine := f.seedMachine()

	for _, final := range []string{constants.RecordStatusCompleted, constants.RecordStatusCancelled} {
		record := f.seedRecord(machine.ID, final)

		_, err := f.svc.StartWork(authCtx(), record.ID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
		_, err = f.svc.CompleteWork(authCtx(), record.ID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
		_, err = f.svc.CancelWork(authCtx(), record.ID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	}
}

func TestRecordService_SetStatus_UsesTransitionTable(t *testing.T) {
	f := newRecordFixture(t)
	machine := f.seedMachine()
	record := f.seedRecord(machine.ID, constants.RecordStatusPending)

	// Прямое выставление in_progress эквивалентно start_work.
	transition, err := f.svc.SetStatus(authCtx(), record.ID, dto.SetStatusDTO{Status: constants.RecordStatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, constants.ActionStartWork, transition.Action)

	// Перепрыгнуть из pending сразу в completed нельзя даже напрямую.
	record2 := f.seedRecord(machine.ID, constants.RecordStatusPending)
	_, err = f.svc.SetStatus(authCtx(), record2.ID, dto.SetStatusDTO{Status: constants.RecordStatusCompleted})
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	// В pending ни один переход не ведет.
	_, err = f.svc.SetStatus(authCtx(), record.ID, dto.SetStatusDTO{Status: constants.RecordStatusPending})
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestRecordService_CompleteWork_AdvancesSchedule(t *testing.T) {
	f := newRecordFixture(t)
	machine := f.seedMachine()
	schedule := f.schedules.add(entities.MaintenanceSchedule{
		Code:                "SCH-001",
		MachineID:           machine.ID,
		MaintenanceType:     "профилактика",
		IntervalDays:        30,
		StartDate:           time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		NextMaintenanceDate: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		IsActive:            true,
	})

	record := f.records.add(entities.MaintenanceRecord{
		Code:            "REC-010",
		MachineID:       machine.ID,
		ScheduleID:      &schedule.ID,
		MaintenanceDate: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		MaintenanceType: "профилактика",
		TechnicianID:    7,
		Description:     "плановое ТО",
		Status:          constants.RecordStatusInProgress,
	})

	_, err := f.svc.CompleteWork(authCtx(), record.ID)
	require.NoError(t, err)

	// Плановая дата сдвинулась ровно на один интервал и осталась на
	// сетке start + k*interval.
	advanced := f.schedules.schedules[schedule.ID]
	assert.Equal(t, "2025-04-01", utils.FormatDate(advanced.NextMaintenanceDate))
	diffDays := int(advanced.NextMaintenanceDate.Sub(advanced.StartDate).Hours() / 24)
	assert.Zero(t, diffDays%advanced.IntervalDays)
}

func TestRecordService_CompleteWork_InactiveScheduleUntouched(t *testing.T) {
	f := newRecordFixture(t)
	machine := f.seedMachine()
	schedule := f.schedules.add(entities.MaintenanceSchedule{
		MachineID:           machine.ID,
		IntervalDays:        30,
		StartDate:           time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		NextMaintenanceDate: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		IsActive:            false,
	})
	record := f.records.add(entities.MaintenanceRecord{
		MachineID:    machine.ID,
		ScheduleID:   &schedule.ID,
		TechnicianID: 7,
		Status:       constants.RecordStatusInProgress,
	})

	_, err := f.svc.CompleteWork(authCtx(), record.ID)
	require.NoError(t, err)

	untouched := f.schedules.schedules[schedule.ID]
	assert.Equal(t, "2025-03-02", utils.FormatDate(untouched.NextMaintenanceDate))
}

func TestRecordService_CreateRecord_Validations(t *testing.T) {
	f := newRecordFixture(t)
	machine := f.seedMachine()
	otherMachine := f.machines.add(entities.Machine{Code: "MCH-002", Name: "Пресс", Type: "press", Location: "Цех 2", Status: "operational"})
	schedule := f.schedules.add(entities.MaintenanceSchedule{MachineID: otherMachine.ID, IntervalDays: 30, IsActive: true})

	// Несуществующий станок.
	_, err := f.svc.CreateRecord(context.Background(), dto.CreateRecordDTO{
		MachineID:       999,
		MaintenanceDate: "2025-03-10",
		MaintenanceType: "ремонт",
		TechnicianID:    7,
		Description:     "x",
	})
	var invalidInput *apperrors.InvalidInputError
	require.ErrorAs(t, err, &invalidInput)

	// График чужого станка.
	_, err = f.svc.CreateRecord(context.Background(), dto.CreateRecordDTO{
		MachineID:       machine.ID,
		ScheduleID:      &schedule.ID,
		MaintenanceDate: "2025-03-10",
		MaintenanceType: "ремонт",
		TechnicianID:    7,
		Description:     "x",
	})
	require.ErrorAs(t, err, &invalidInput)

	// Валидное создание: статус всегда pending, код генерируется.
	created, err := f.svc.CreateRecord(context.Background(), dto.CreateRecordDTO{
		MachineID:       machine.ID,
		MaintenanceDate: "2025-03-10",
		MaintenanceType: "ремонт",
		TechnicianID:    7,
		Description:     "замена ремня",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.RecordStatusPending, created.Status)
	assert.NotEmpty(t, created.Code)
}

func TestRecordService_UpdateRecord_Guard(t *testing.T) {
	f := newRecordFixture(t)
	machine := f.seedMachine()
	record := f.seedRecord(machine.ID, constants.RecordStatusPending)

	// Пустой DTO - no-op без записи.
	result, err := f.svc.UpdateRecord(context.Background(), record.ID, dto.UpdateRecordDTO{})
	require.NoError(t, err)
	assert.Empty(t, result.ChangedFields)
	assert.Zero(t, f.records.updates)

	// Те же значения - no-op без записи.
	sameDescription := record.Description
	result, err = f.svc.UpdateRecord(context.Background(), record.ID, dto.UpdateRecordDTO{Description: &sameDescription})
	require.NoError(t, err)
	assert.Empty(t, result.ChangedFields)
	assert.Zero(t, f.records.updates)

	// Реальное изменение перечисляет затронутые поля.
	newDescription := "замена подшипника и смазка"
	minutes := 120
	result, err = f.svc.UpdateRecord(context.Background(), record.ID, dto.UpdateRecordDTO{
		Description:   &newDescription,
		ActualMinutes: &minutes,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"description", "actual_minutes"}, result.ChangedFields)
	assert.Equal(t, 1, f.records.updates)

	// Запись в финальном статусе не редактируется.
	finalRecord := f.seedRecord(machine.ID, constants.RecordStatusCompleted)
	_, err = f.svc.UpdateRecord(context.Background(), finalRecord.ID, dto.UpdateRecordDTO{Description: &newDescription})
	var invalidInput *apperrors.InvalidInputError
	require.ErrorAs(t, err, &invalidInput)
}

func TestRecordService_Transition_ReportsActingUser(t *testing.T) {
	f := newRecordFixture(t)
	machine := f.seedMachine()
	record := f.seedRecord(machine.ID, constants.RecordStatusPending)

	// Переход выполняет не закрепленный за записью техник: в метаданных
	// различаются исполнитель записи и инициатор перехода.
	actor := uint64(99)
	ctx := context.WithValue(context.Background(), contextkeys.UserIDKey, actor)

	transition, err := f.svc.StartWork(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), transition.TechnicianID)
	assert.Equal(t, actor, transition.ActedBy)
}

func TestRecordService_Transition_RequiresUser(t *testing.T) {
	f := newRecordFixture(t)
	machine := f.seedMachine()
	record := f.seedRecord(machine.ID, constants.RecordStatusPending)

	_, err := f.svc.StartWork(context.Background(), record.ID)
	require.ErrorIs(t, err, apperrors.ErrUserIDNotFoundInContext)

	// Без инициатора статус не меняется.
	stored := f.records.records[record.ID]
	assert.Equal(t, constants.RecordStatusPending, stored.Status)
}

func TestRecordService_TransitionNotFound(t *testing.T) {
	f := newRecordFixture(t)
	_, err := f.svc.StartWork(authCtx(), 12345)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
