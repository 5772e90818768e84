package bookings

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
	bookings map[string]*domain.Booking
	listed   []*domain.Booking

	createErr error
	updateErr error

	created *domain.Booking
	patches map[string]bookingstorage.UpdatePatch
}

func newMockRepo(bookings ...*domain.Booking) *mockBookingRepo {
	m := &mockBookingRepo{
		bookings: make(map[string]*domain.Booking),
		patches:  make(map[string]bookingstorage.UpdatePatch),
	}
	for _, b := range bookings {
		m.bookings[b.ID] = b
	}
	return m
}

func (m *mockBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = b
	m.bookings[b.ID] = b
	return b, nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingstorage.ErrBookingNotFound
	}
	return b, nil
}

func (m *mockBookingRepo) List(_ context.Context, _ domain.BookingsFilter) ([]*domain.Booking, error) {
	return m.listed, nil
}

func (m *mockBookingRepo) Update(_ context.Context, id string, patch bookingstorage.UpdatePatch) (*domain.Booking, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingstorage.ErrBookingNotFound
	}
	m.patches[id] = patch

	updated := *b
	if patch.Status != nil {
		updated.Status = *patch.Status
	}
	if patch.MeetingLink != nil {
		updated.MeetingLink = patch.MeetingLink
	}
	if patch.ClearMeetingLink {
		updated.MeetingLink = nil
	}
	if patch.HostNotes != nil {
		updated.HostNotes = patch.HostNotes
	}
	m.bookings[id] = &updated
	return &updated, nil
}

type mockScheduleProvider struct {
	week  domain.WeekSchedule
	rules *domain.SchedulingRules
}

func (m *mockScheduleProvider) Snapshot(_ context.Context) (domain.WeekSchedule, *domain.SchedulingRules, error) {
	return m.week, m.rules, nil
}

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

func confirmedBooking(id string, userID int64, start time.Time) *domain.Booking {
	return &domain.Booking{
		ID:            id,
		UserID:        userID,
		SessionType:   domain.SessionConsultation,
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		Status:        domain.StatusConfirmed,
		PaymentStatus: domain.PaymentCompleted,
		AmountPaid:    ptr.Ptr(1500.0),
		PaymentID:     ptr.Ptr("pay-77"),
		MeetingLink:   ptr.Ptr("https://meet.example.com/abc"),
		ChildName:     ptr.Ptr("Маша"),
		ChildAge:      ptr.Ptr(5),
	}
}

func mondaySchedule(t *testing.T) *mockScheduleProvider {
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
			SlotDurationMinutes: 30,
		},
	}
}

func newTestService(repo *mockBookingRepo, provider *mockScheduleProvider, now time.Time) *Service {
	return NewService(
		repo,
		provider,
		inlineTxManager{},
		&fixedTimeProvider{now: now},
		&fixedIDGenerator{id: "22222222-2222-4222-8222-222222222222"},
		nopLogger{},
	)
}

func TestGetByID_OwnerAccess(t *testing.T) {
	b := confirmedBooking("b-1", 42, testMonday().Add(10*time.Hour))
	svc := newTestService(newMockRepo(b), mondaySchedule(t), testMonday())

	t.Run("Owner", func(t *testing.T) {
		got, err := svc.GetByID(context.Background(), "b-1", 42)
		require.NoError(t, err)
		assert.Equal(t, "b-1", got.ID)
	})

	t.Run("Stranger", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), "b-1", 99)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("Admin", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), "b-1", AdminUserID)
		assert.NoError(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), "missing", 42)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestCancel_ClearsMeetingLink(t *testing.T) {
	b := confirmedBooking("b-1", 42, testMonday().Add(10*time.Hour))
	repo := newMockRepo(b)
	svc := newTestService(repo, mondaySchedule(t), testMonday())

	updated, err := svc.Cancel(context.Background(), "b-1", 42)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.Nil(t, updated.MeetingLink)
	assert.True(t, repo.patches["b-1"].ClearMeetingLink)
}

func TestCancel_TerminalStatusRejected(t *testing.T) {
	b := confirmedBooking("b-1", 42, testMonday().Add(10*time.Hour))
	b.Status = domain.StatusCompleted
	svc := newTestService(newMockRepo(b), mondaySchedule(t), testMonday())

	_, err := svc.Cancel(context.Background(), "b-1", 42)
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	cases := []struct {
		name     string
		from     domain.BookingStatus
		to       domain.BookingStatus
		wantErr  error
		wantLink bool
	}{
		{"ConfirmedToCompleted", domain.StatusConfirmed, domain.StatusCompleted, nil, false},
		{"ConfirmedToNoShow", domain.StatusConfirmed, domain.StatusNoShow, nil, false},
		{"RescheduledToCompleted", domain.StatusRescheduled, domain.StatusCompleted, nil, false},
		{"CancelledToCompleted", domain.StatusCancelled, domain.StatusCompleted, ErrInvalidTransition, true},
		{"CompletedToConfirmed", domain.StatusCompleted, domain.StatusConfirmed, ErrInvalidTransition, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := confirmedBooking("b-1", 42, testMonday().Add(10*time.Hour))
			b.Status = tc.from
			repo := newMockRepo(b)
			svc := newTestService(repo, mondaySchedule(t), testMonday())

			updated, err := svc.UpdateStatus(context.Background(), "b-1", tc.to)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, updated.Status)
			if tc.wantLink {
				assert.NotNil(t, updated.MeetingLink)
			} else {
				assert.Nil(t, updated.MeetingLink)
			}
		})
	}
}

func TestSetMeetingLink(t *testing.T) {
	t.Run("ActiveBooking", func(t *testing.T) {
		b := confirmedBooking("b-1", 42, testMonday().Add(10*time.Hour))
		b.MeetingLink = nil
		svc := newTestService(newMockRepo(b), mondaySchedule(t), testMonday())

		updated, err := svc.SetMeetingLink(context.Background(), "b-1", "https://meet.example.com/new")
		require.NoError(t, err)
		require.NotNil(t, updated.MeetingLink)
		assert.Equal(t, "https://meet.example.com/new", *updated.MeetingLink)
	})

	t.Run("CancelledBookingRejected", func(t *testing.T) {
		b := confirmedBooking("b-1", 42, testMonday().Add(10*time.Hour))
		b.Status = domain.StatusCancelled
		svc := newTestService(newMockRepo(b), mondaySchedule(t), testMonday())

		_, err := svc.SetMeetingLink(context.Background(), "b-1", "https://meet.example.com/new")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("BlankLinkRejected", func(t *testing.T) {
		b := confirmedBooking("b-1", 42, testMonday().Add(10*time.Hour))
		svc := newTestService(newMockRepo(b), mondaySchedule(t), testMonday())

		_, err := svc.SetMeetingLink(context.Background(), "b-1", "   ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestReschedule_CreatesReplacementAndSupersedesOriginal(t *testing.T) {
	oldStart := testMonday().Add(10 * time.Hour)
	newStart := testMonday().AddDate(0, 0, 7).Add(14 * time.Hour)

	b := confirmedBooking("b-1", 42, oldStart)
	repo := newMockRepo(b)
	svc := newTestService(repo, mondaySchedule(t), testMonday())

	created, err := svc.Reschedule(context.Background(), "b-1", 42, newStart)
	require.NoError(t, err)

	// Новая запись наследует оплату и анкету, ссылается на исходную
	assert.Equal(t, "22222222-2222-4222-8222-222222222222", created.ID)
	assert.Equal(t, domain.StatusRescheduled, created.Status)
	assert.Equal(t, newStart, created.StartTime)
	assert.Equal(t, newStart.Add(30*time.Minute), created.EndTime)
	assert.Equal(t, domain.PaymentCompleted, created.PaymentStatus)
	require.NotNil(t, created.AmountPaid)
	assert.Equal(t, 1500.0, *created.AmountPaid)
	require.NotNil(t, created.RescheduledFrom)
	assert.Equal(t, "b-1", *created.RescheduledFrom)
	require.NotNil(t, created.ChildName)
	assert.Equal(t, "Маша", *created.ChildName)

	// Исходная запись осталась в истории со статусом superseded и без ссылки
	original := repo.bookings["b-1"]
	assert.Equal(t, domain.StatusSuperseded, original.Status)
	assert.Nil(t, original.MeetingLink)
	assert.Equal(t, oldStart, original.StartTime)
}

func TestReschedule_TargetSlotOccupied(t *testing.T) {
	newStart := testMonday().AddDate(0, 0, 7).Add(14 * time.Hour)

	b := confirmedBooking("b-1", 42, testMonday().Add(10*time.Hour))
	other := confirmedBooking("b-2", 99, newStart)
	repo := newMockRepo(b, other)
	repo.listed = []*domain.Booking{other}
	svc := newTestService(repo, mondaySchedule(t), testMonday())

	_, err := svc.Reschedule(context.Background(), "b-1", 42, newStart)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Nil(t, repo.created)
}

func TestReschedule_SameDayShiftAllowed(t *testing.T) {
	// Исходное бронирование в списке дня игнорируется при проверке пересечений
	oldStart := testMonday().AddDate(0, 0, 7).Add(10 * time.Hour)
	newStart := testMonday().AddDate(0, 0, 7).Add(10*time.Hour + 30*time.Minute)

	b := confirmedBooking("b-1", 42, oldStart)
	repo := newMockRepo(b)
	repo.listed = []*domain.Booking{b}
	svc := newTestService(repo, mondaySchedule(t), testMonday())

	created, err := svc.Reschedule(context.Background(), "b-1", 42, newStart)
	require.NoError(t, err)
	assert.Equal(t, newStart, created.StartTime)
}

func TestReschedule_CancelledBookingRejected(t *testing.T) {
	b := confirmedBooking("b-1", 42, testMonday().Add(10*time.Hour))
	b.Status = domain.StatusCancelled
	svc := newTestService(newMockRepo(b), mondaySchedule(t), testMonday())

	_, err := svc.Reschedule(context.Background(), "b-1", 42, testMonday().AddDate(0, 0, 7).Add(14*time.Hour))
	assert.ErrorIs(t, err, ErrCannotReschedule)
}

func TestReschedule_StrangerRejected(t *testing.T) {
	b := confirmedBooking("b-1", 42, testMonday().Add(10*time.Hour))
	svc := newTestService(newMockRepo(b), mondaySchedule(t), testMonday())

	_, err := svc.Reschedule(context.Background(), "b-1", 99, testMonday().AddDate(0, 0, 7).Add(14*time.Hour))
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetUserBookings_RequiresUserID(t *testing.T) {
	svc := newTestService(newMockRepo(), mondaySchedule(t), testMonday())

	_, err := svc.GetUserBookings(context.Background(), 0, domain.BookingsFilter{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
