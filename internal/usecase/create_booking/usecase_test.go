package create_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toykraft/consult-booking-service/internal/domain"
	bookingstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/booking"
	"github.com/toykraft/consult-booking-service/pkg/ptr"
	"github.com/toykraft/consult-booking-service/pkg/types"
)

type mockBookingRepo struct {
	existing  []*domain.Booking
	createErr error

	created *domain.Booking
}

func (m *mockBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = b
	return b, nil
}

func (m *mockBookingRepo) List(_ context.Context, _ domain.BookingsFilter) ([]*domain.Booking, error) {
	return m.existing, nil
}

type mockScheduleProvider struct {
	week  domain.WeekSchedule
	rules *domain.SchedulingRules
	err   error
}

func (m *mockScheduleProvider) Snapshot(_ context.Context) (domain.WeekSchedule, *domain.SchedulingRules, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.week, m.rules, nil
}

// inlineTxManager выполняет callback без реальной транзакции
type inlineTxManager struct{}

func (inlineTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type fixedIDGenerator struct {
	id string
}

func (g *fixedIDGenerator) NewID() string {
	return g.id
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Понедельник 2026-09-07 в UTC
func testMonday() time.Time {
	return time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
}

func testSchedule(t *testing.T) *mockScheduleProvider {
	t.Helper()
	start, err := types.NewTimeStringFromString("09:00")
	require.NoError(t, err)
	end, err := types.NewTimeStringFromString("18:00")
	require.NoError(t, err)

	return &mockScheduleProvider{
		week: domain.WeekSchedule{
			time.Monday: &domain.WorkingHours{
				DayOfWeek:   time.Monday,
				StartTime:   start,
				EndTime:     end,
				IsAvailable: true,
			},
		},
		rules: &domain.SchedulingRules{
			MinNoticeHours:      12,
			MaxBookingDays:      30,
			BufferMinutes:       0,
			SlotDurationMinutes: 30,
		},
	}
}

func newTestUseCase(repo *mockBookingRepo, schedule *mockScheduleProvider, now time.Time) *UseCase {
	return NewUseCase(
		repo,
		schedule,
		inlineTxManager{},
		&fixedTimeProvider{now: now},
		&fixedIDGenerator{id: "11111111-1111-4111-8111-111111111111"},
		nopLogger{},
	)
}

func TestExecute_CreatesConfirmedBookingWithPendingPayment(t *testing.T) {
	repo := &mockBookingRepo{}
	now := testMonday().Add(-24 * time.Hour)
	uc := newTestUseCase(repo, testSchedule(t), now)

	resp, err := uc.Execute(context.Background(), &Request{
		UserID:      42,
		SessionType: domain.SessionConsultation,
		StartTime:   testMonday().Add(10 * time.Hour),
		ChildName:   ptr.Ptr("Маша"),
		ChildAge:    ptr.Ptr(5),
		Concerns:    ptr.Ptr("Речевое развитие"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Booking)

	b := resp.Booking
	assert.Equal(t, "11111111-1111-4111-8111-111111111111", b.ID)
	assert.Equal(t, domain.StatusConfirmed, b.Status)
	assert.Equal(t, domain.PaymentPending, b.PaymentStatus)
	assert.Equal(t, testMonday().Add(10*time.Hour), b.StartTime)
	assert.Equal(t, testMonday().Add(10*time.Hour+30*time.Minute), b.EndTime)
	require.NotNil(t, b.ChildName)
	assert.Equal(t, "Маша", *b.ChildName)
	assert.Nil(t, b.AmountPaid)
	assert.Nil(t, b.PaymentID)
}

func TestExecute_OverlappingBookingRejected(t *testing.T) {
	slotStart := testMonday().Add(10 * time.Hour)
	repo := &mockBookingRepo{
		existing: []*domain.Booking{
			{
				ID:        "b-1",
				StartTime: slotStart,
				EndTime:   slotStart.Add(30 * time.Minute),
				Status:    domain.StatusConfirmed,
			},
		},
	}
	uc := newTestUseCase(repo, testSchedule(t), testMonday().Add(-24*time.Hour))

	_, err := uc.Execute(context.Background(), &Request{
		UserID:      42,
		SessionType: domain.SessionConsultation,
		StartTime:   slotStart,
	})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Nil(t, repo.created)
}

func TestExecute_ExclusionConstraintMapsToSlotNotAvailable(t *testing.T) {
	// Конкурентная вставка, проскочившая перечитывание, ловится constraint'ом БД
	repo := &mockBookingRepo{createErr: bookingstorage.ErrSlotTaken}
	uc := newTestUseCase(repo, testSchedule(t), testMonday().Add(-24*time.Hour))

	_, err := uc.Execute(context.Background(), &Request{
		UserID:      42,
		SessionType: domain.SessionConsultation,
		StartTime:   testMonday().Add(10 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_SlotValidation(t *testing.T) {
	now := testMonday()
	uc := newTestUseCase(&mockBookingRepo{}, testSchedule(t), now)

	cases := []struct {
		name      string
		startTime time.Time
		wantErr   error
	}{
		{
			name:      "MisalignedStart",
			startTime: testMonday().AddDate(0, 0, 7).Add(10*time.Hour + 15*time.Minute),
			wantErr:   ErrSlotNotAvailable,
		},
		{
			name:      "BeforeOpening",
			startTime: testMonday().AddDate(0, 0, 7).Add(8 * time.Hour),
			wantErr:   ErrOutsideWorkingHours,
		},
		{
			name:      "EndAfterClosing",
			startTime: testMonday().AddDate(0, 0, 7).Add(17*time.Hour + 45*time.Minute),
			wantErr:   ErrOutsideWorkingHours,
		},
		{
			name:      "NonWorkingDay",
			startTime: testMonday().AddDate(0, 0, 8).Add(10 * time.Hour),
			wantErr:   ErrOutsideWorkingHours,
		},
		{
			name:      "TooSoon",
			startTime: now.Add(11 * time.Hour),
			wantErr:   ErrTooSoon,
		},
		{
			name:      "BeyondHorizon",
			startTime: testMonday().AddDate(0, 0, 35).Add(10 * time.Hour),
			wantErr:   ErrTooFarInFuture,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), &Request{
				UserID:      42,
				SessionType: domain.SessionConsultation,
				StartTime:   tc.startTime,
			})
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestExecute_InputValidation(t *testing.T) {
	uc := newTestUseCase(&mockBookingRepo{}, testSchedule(t), testMonday())
	validStart := testMonday().AddDate(0, 0, 7).Add(10 * time.Hour)

	t.Run("NonPositiveUserID", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), &Request{
			UserID:      0,
			SessionType: domain.SessionConsultation,
			StartTime:   validStart,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("UnknownSessionType", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), &Request{
			UserID:      42,
			SessionType: domain.SessionType("massage"),
			StartTime:   validStart,
		})
		assert.ErrorIs(t, err, ErrInvalidSessionType)
	})

	t.Run("ChildAgeOutOfRange", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), &Request{
			UserID:      42,
			SessionType: domain.SessionConsultation,
			StartTime:   validStart,
			ChildAge:    ptr.Ptr(25),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
