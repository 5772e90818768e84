package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toykraft/consult-booking-service/internal/config"
	"github.com/toykraft/consult-booking-service/internal/domain"
	bookingstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/booking"
	reconstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/reconciliation"
	"github.com/toykraft/consult-booking-service/internal/integrations/paymentgateway"
	"github.com/toykraft/consult-booking-service/pkg/ptr"
)

type mockReconRepo struct {
	entries []*reconstorage.Entry
	listErr error

	applied      []string
	failedMarked []string
}

func (m *mockReconRepo) ListPending(_ context.Context, _ int) ([]*reconstorage.Entry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.entries, nil
}

func (m *mockReconRepo) MarkApplied(_ context.Context, paymentID string) error {
	m.applied = append(m.applied, paymentID)
	return nil
}

func (m *mockReconRepo) MarkFailedAttempt(_ context.Context, paymentID string, _ error) error {
	m.failedMarked = append(m.failedMarked, paymentID)
	return nil
}

type mockBookingRepo struct {
	stale []*domain.Booking

	gotOlderThan time.Time
	patches      map[string]bookingstorage.UpdatePatch
}

func (m *mockBookingRepo) ListStalePendingPayments(_ context.Context, olderThan time.Time, _ int) ([]*domain.Booking, error) {
	m.gotOlderThan = olderThan
	return m.stale, nil
}

func (m *mockBookingRepo) Update(_ context.Context, id string, patch bookingstorage.UpdatePatch) (*domain.Booking, error) {
	if m.patches == nil {
		m.patches = make(map[string]bookingstorage.UpdatePatch)
	}
	m.patches[id] = patch
	return &domain.Booking{ID: id}, nil
}

type mockGateway struct {
	charges map[string]*paymentgateway.Charge
}

func (m *mockGateway) GetCharge(_ context.Context, chargeID string) (*paymentgateway.Charge, error) {
	c, ok := m.charges[chargeID]
	if !ok {
		return nil, paymentgateway.ErrChargeNotFound
	}
	return c, nil
}

type mockApplier struct {
	err error

	appliedBookings []string
}

func (m *mockApplier) ApplyPayment(_ context.Context, bookingID, _ string, _ float64) (*domain.Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.appliedBookings = append(m.appliedBookings, bookingID)
	return &domain.Booking{ID: bookingID}, nil
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testConfig() config.ReconciliationConfig {
	return config.ReconciliationConfig{
		Enabled:             true,
		RetrySpec:           "@every 1m",
		ExpireSpec:          "@every 15m",
		PendingPaymentHours: 24,
		RetryBatchSize:      10,
	}
}

func newTestWorker(recon *mockReconRepo, bookings *mockBookingRepo, gw *mockGateway, applier *mockApplier, now time.Time) *Worker {
	return NewWorker(testConfig(), recon, bookings, gw, applier, &fixedTimeProvider{now: now}, nopLogger{})
}

func TestRetrySweep_AppliesPendingEntries(t *testing.T) {
	recon := &mockReconRepo{entries: []*reconstorage.Entry{
		{PaymentID: "pay-1", BookingID: "b-1", Amount: 1500},
		{PaymentID: "pay-2", BookingID: "b-2", Amount: 2000},
	}}
	applier := &mockApplier{}
	w := newTestWorker(recon, &mockBookingRepo{}, &mockGateway{}, applier, time.Now())

	w.RunRetrySweep(context.Background())

	assert.Equal(t, []string{"b-1", "b-2"}, applier.appliedBookings)
	assert.Equal(t, []string{"pay-1", "pay-2"}, recon.applied)
	assert.Empty(t, recon.failedMarked)
}

func TestRetrySweep_FailedAttemptCounted(t *testing.T) {
	recon := &mockReconRepo{entries: []*reconstorage.Entry{
		{PaymentID: "pay-1", BookingID: "b-1", Amount: 1500, Attempts: 2},
	}}
	applier := &mockApplier{err: errors.New("db down")}
	w := newTestWorker(recon, &mockBookingRepo{}, &mockGateway{}, applier, time.Now())

	w.RunRetrySweep(context.Background())

	assert.Empty(t, recon.applied)
	assert.Equal(t, []string{"pay-1"}, recon.failedMarked)
}

func TestExpireSweep_CancelsStalePendingBooking(t *testing.T) {
	now := time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)
	bookings := &mockBookingRepo{stale: []*domain.Booking{
		{ID: "b-1", Status: domain.StatusConfirmed, PaymentStatus: domain.PaymentPending},
	}}
	w := newTestWorker(&mockReconRepo{}, bookings, &mockGateway{}, &mockApplier{}, now)

	w.RunExpireSweep(context.Background())

	assert.Equal(t, now.Add(-24*time.Hour), bookings.gotOlderThan)
	patch := bookings.patches["b-1"]
	require.NotNil(t, patch.Status)
	assert.Equal(t, domain.StatusCancelled, *patch.Status)
	require.NotNil(t, patch.PaymentStatus)
	assert.Equal(t, domain.PaymentFailed, *patch.PaymentStatus)
	assert.True(t, patch.ClearMeetingLink)
}

func TestExpireSweep_RecoversLostWebhook(t *testing.T) {
	// Провайдер говорит "платёж прошёл" — доприменяем, бронирование не отменяем
	bookings := &mockBookingRepo{stale: []*domain.Booking{
		{
			ID:            "b-1",
			Status:        domain.StatusConfirmed,
			PaymentStatus: domain.PaymentPending,
			PaymentID:     ptr.Ptr("pay-77"),
		},
	}}
	gw := &mockGateway{charges: map[string]*paymentgateway.Charge{
		"pay-77": {ID: "pay-77", Status: paymentgateway.ChargeStatusSucceeded, Amount: 1500},
	}}
	applier := &mockApplier{}
	w := newTestWorker(&mockReconRepo{}, bookings, gw, applier, time.Now())

	w.RunExpireSweep(context.Background())

	assert.Equal(t, []string{"b-1"}, applier.appliedBookings)
	assert.Empty(t, bookings.patches)
}

func TestExpireSweep_UnpaidChargeExpires(t *testing.T) {
	// Платёж так и не завершился у провайдера — бронирование отменяется
	bookings := &mockBookingRepo{stale: []*domain.Booking{
		{
			ID:            "b-1",
			Status:        domain.StatusConfirmed,
			PaymentStatus: domain.PaymentPending,
			PaymentID:     ptr.Ptr("pay-77"),
		},
	}}
	gw := &mockGateway{charges: map[string]*paymentgateway.Charge{
		"pay-77": {ID: "pay-77", Status: paymentgateway.ChargeStatusCreated},
	}}
	applier := &mockApplier{}
	w := newTestWorker(&mockReconRepo{}, bookings, gw, applier, time.Now())

	w.RunExpireSweep(context.Background())

	assert.Empty(t, applier.appliedBookings)
	require.Contains(t, bookings.patches, "b-1")
}
