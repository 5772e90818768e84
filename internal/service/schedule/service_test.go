package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toykraft/consult-booking-service/internal/domain"
	scheduleRepo "github.com/toykraft/consult-booking-service/internal/infra/storage/schedule"
	"github.com/toykraft/consult-booking-service/internal/service/schedule/models"
)

type mockScheduleRepo struct {
	week  domain.WeekSchedule
	rules *domain.SchedulingRules

	weekErr  error
	rulesErr error

	weekCalls  int
	rulesCalls int

	upsertedDays  []*domain.WorkingHours
	upsertedRules *domain.SchedulingRules
	upsertDayErr  error
}

func (m *mockScheduleRepo) GetWeekSchedule(ctx context.Context) (domain.WeekSchedule, error) {
	m.weekCalls++
	if m.weekErr != nil {
		return nil, m.weekErr
	}
	return m.week, nil
}

func (m *mockScheduleRepo) UpsertWorkingHours(ctx context.Context, wh *domain.WorkingHours) (*domain.WorkingHours, error) {
	if m.upsertDayErr != nil {
		return nil, m.upsertDayErr
	}
	m.upsertedDays = append(m.upsertedDays, wh)
	if m.week == nil {
		m.week = domain.WeekSchedule{}
	}
	m.week[wh.DayOfWeek] = wh
	return wh, nil
}

func (m *mockScheduleRepo) GetRules(ctx context.Context) (*domain.SchedulingRules, error) {
	m.rulesCalls++
	if m.rulesErr != nil {
		return nil, m.rulesErr
	}
	return m.rules, nil
}

func (m *mockScheduleRepo) UpsertRules(ctx context.Context, rules *domain.SchedulingRules) (*domain.SchedulingRules, error) {
	m.upsertedRules = rules
	m.rules = rules
	return rules, nil
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func testWeek(t *testing.T) domain.WeekSchedule {
	t.Helper()
	return domain.WeekSchedule{
		time.Monday: {
			DayOfWeek:   time.Monday,
			StartTime:   "09:00",
			EndTime:     "17:00",
			IsAvailable: true,
		},
	}
}

func testRules() *domain.SchedulingRules {
	return &domain.SchedulingRules{
		MinNoticeHours:      24,
		MaxBookingDays:      30,
		BufferMinutes:       10,
		SlotDurationMinutes: 50,
	}
}

func TestSnapshot_CachesAcrossCalls(t *testing.T) {
	repo := &mockScheduleRepo{week: testWeek(t), rules: testRules()}
	svc := NewService(repo, nopLogger{})

	week, rules, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rules)
	assert.Equal(t, 50, rules.SlotDurationMinutes)
	assert.Contains(t, week, time.Monday)

	_, _, err = svc.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, repo.weekCalls, "second Snapshot must be served from cache")
	assert.Equal(t, 1, repo.rulesCalls)
}

func TestSnapshot_InvalidateForcesReload(t *testing.T) {
	repo := &mockScheduleRepo{week: testWeek(t), rules: testRules()}
	svc := NewService(repo, nopLogger{})

	_, _, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	repo.rules = &domain.SchedulingRules{
		MinNoticeHours:      2,
		MaxBookingDays:      14,
		BufferMinutes:       0,
		SlotDurationMinutes: 30,
	}
	svc.Invalidate()

	_, rules, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30, rules.SlotDurationMinutes)
	assert.Equal(t, 2, repo.weekCalls)
}

func TestSnapshot_RulesNotConfigured(t *testing.T) {
	repo := &mockScheduleRepo{week: testWeek(t), rulesErr: scheduleRepo.ErrRulesNotFound}
	svc := NewService(repo, nopLogger{})

	_, _, err := svc.Snapshot(context.Background())
	require.ErrorIs(t, err, ErrRulesNotConfigured)

	// отсутствие правил не должно кешироваться как валидный snapshot
	repo.rulesErr = nil
	repo.rules = testRules()

	_, rules, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, rules.SlotDurationMinutes)
}

func TestSnapshot_RepoFailure(t *testing.T) {
	repo := &mockScheduleRepo{weekErr: errors.New("connection refused")}
	svc := NewService(repo, nopLogger{})

	_, _, err := svc.Snapshot(context.Background())
	require.ErrorIs(t, err, ErrInternal)
}

func TestGetSchedule_MissingRulesIsNotAnError(t *testing.T) {
	repo := &mockScheduleRepo{week: testWeek(t), rulesErr: scheduleRepo.ErrRulesNotFound}
	svc := NewService(repo, nopLogger{})

	resp, err := svc.GetSchedule(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Days, 1)
	assert.Nil(t, resp.Rules)
}

func TestUpdateWorkingHours(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := &mockScheduleRepo{week: domain.WeekSchedule{}, rules: testRules()}
		svc := NewService(repo, nopLogger{})

		// прогреваем кеш, чтобы проверить его сброс после записи
		_, _, err := svc.Snapshot(context.Background())
		require.NoError(t, err)

		resp, err := svc.UpdateWorkingHours(context.Background(), &models.UpdateWorkingHoursRequest{
			Days: []models.DayHoursRequest{
				{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
				{DayOfWeek: 2, IsAvailable: false},
			},
		})
		require.NoError(t, err)
		require.Len(t, repo.upsertedDays, 2)
		assert.Equal(t, time.Monday, repo.upsertedDays[0].DayOfWeek)
		require.Len(t, resp.Days, 2)

		_, _, err = svc.Snapshot(context.Background())
		require.NoError(t, err)
		assert.Greater(t, repo.weekCalls, 2, "cache must be invalidated after update")
	})

	t.Run("Validation", func(t *testing.T) {
		tests := []struct {
			name    string
			days    []models.DayHoursRequest
			wantErr error
		}{
			{
				name:    "EmptyDays",
				days:    nil,
				wantErr: ErrInvalidInput,
			},
			{
				name:    "DayOfWeekOutOfRange",
				days:    []models.DayHoursRequest{{DayOfWeek: 7, StartTime: "09:00", EndTime: "17:00", IsAvailable: true}},
				wantErr: ErrInvalidInput,
			},
			{
				name: "DuplicateDay",
				days: []models.DayHoursRequest{
					{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
					{DayOfWeek: 1, StartTime: "10:00", EndTime: "18:00", IsAvailable: true},
				},
				wantErr: ErrInvalidInput,
			},
			{
				name:    "AvailableDayWithoutHours",
				days:    []models.DayHoursRequest{{DayOfWeek: 1, IsAvailable: true}},
				wantErr: ErrInvalidInput,
			},
			{
				name:    "StartNotBeforeEnd",
				days:    []models.DayHoursRequest{{DayOfWeek: 1, StartTime: "17:00", EndTime: "09:00", IsAvailable: true}},
				wantErr: ErrInvalidTimeWindow,
			},
			{
				name:    "MalformedTime",
				days:    []models.DayHoursRequest{{DayOfWeek: 1, StartTime: "9am", EndTime: "17:00", IsAvailable: true}},
				wantErr: ErrInvalidInput,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := &mockScheduleRepo{week: domain.WeekSchedule{}}
				svc := NewService(repo, nopLogger{})

				_, err := svc.UpdateWorkingHours(context.Background(), &models.UpdateWorkingHoursRequest{Days: tt.days})
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.upsertedDays, "invalid request must not touch storage")
			})
		}
	})
}

func TestUpdateRules(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := &mockScheduleRepo{week: testWeek(t)}
		svc := NewService(repo, nopLogger{})

		resp, err := svc.UpdateRules(context.Background(), &models.UpdateRulesRequest{
			MinNoticeHours:      12,
			MaxBookingDays:      60,
			BufferMinutes:       15,
			SlotDurationMinutes: 45,
		})
		require.NoError(t, err)
		require.NotNil(t, repo.upsertedRules)
		assert.Equal(t, 45, repo.upsertedRules.SlotDurationMinutes)
		require.NotNil(t, resp.Rules)
		assert.Equal(t, 60, resp.Rules.MaxBookingDays)
	})

	t.Run("Bounds", func(t *testing.T) {
		valid := models.UpdateRulesRequest{
			MinNoticeHours:      24,
			MaxBookingDays:      30,
			BufferMinutes:       10,
			SlotDurationMinutes: 50,
		}

		tests := []struct {
			name   string
			mutate func(r *models.UpdateRulesRequest)
		}{
			{"SlotTooShort", func(r *models.UpdateRulesRequest) { r.SlotDurationMinutes = domain.MinSlotDurationMinutes - 1 }},
			{"SlotTooLong", func(r *models.UpdateRulesRequest) { r.SlotDurationMinutes = domain.MaxSlotDurationMinutes + 1 }},
			{"NegativeBuffer", func(r *models.UpdateRulesRequest) { r.BufferMinutes = domain.MinBufferMinutes - 1 }},
			{"BufferTooLong", func(r *models.UpdateRulesRequest) { r.BufferMinutes = domain.MaxBufferMinutes + 1 }},
			{"NegativeNotice", func(r *models.UpdateRulesRequest) { r.MinNoticeHours = domain.MinNoticeHoursLimit - 1 }},
			{"NoticeTooLong", func(r *models.UpdateRulesRequest) { r.MinNoticeHours = domain.MaxNoticeHoursLimit + 1 }},
			{"ZeroHorizon", func(r *models.UpdateRulesRequest) { r.MaxBookingDays = domain.MinBookingDaysLimit - 1 }},
			{"HorizonTooLong", func(r *models.UpdateRulesRequest) { r.MaxBookingDays = domain.MaxBookingDaysLimit + 1 }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := &mockScheduleRepo{}
				svc := NewService(repo, nopLogger{})

				req := valid
				tt.mutate(&req)

				_, err := svc.UpdateRules(context.Background(), &req)
				require.ErrorIs(t, err, ErrInvalidInput)
				assert.Nil(t, repo.upsertedRules)
			})
		}
	})
}
