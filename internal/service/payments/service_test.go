package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toykraft/consult-booking-service/internal/domain"
	bookingstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/booking"
	salesstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/sales"
	"github.com/toykraft/consult-booking-service/internal/integrations/paymentgateway"
	"github.com/toykraft/consult-booking-service/pkg/ptr"
)

type mockBookingRepo struct {
	booking *domain.Booking
	getErr  error

	gotPatch *bookingstorage.UpdatePatch
}

func (m *mockBookingRepo) GetByID(_ context.Context, _ string) (*domain.Booking, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.booking, nil
}

func (m *mockBookingRepo) Update(_ context.Context, _ string, patch bookingstorage.UpdatePatch) (*domain.Booking, error) {
	m.gotPatch = &patch
	updated := *m.booking
	if patch.PaymentID != nil {
		updated.PaymentID = patch.PaymentID
	}
	if patch.PaymentStatus != nil {
		updated.PaymentStatus = *patch.PaymentStatus
	}
	return &updated, nil
}

type mockGateway struct {
	charge    *paymentgateway.Charge
	createErr error
	existing  *paymentgateway.Charge
	getErr    error

	createCalls int
}

func (m *mockGateway) CreateCharge(_ context.Context, _ paymentgateway.ChargeRequest) (*paymentgateway.Charge, error) {
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.charge, nil
}

func (m *mockGateway) GetCharge(_ context.Context, _ string) (*paymentgateway.Charge, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.existing, nil
}

type mockReconRepo struct {
	recordErr error

	recorded     []string
	applied      []string
	failedMarked []string
}

func (m *mockReconRepo) Record(_ context.Context, paymentID, _ string, _ float64) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.recorded = append(m.recorded, paymentID)
	return nil
}

func (m *mockReconRepo) MarkApplied(_ context.Context, paymentID string) error {
	m.applied = append(m.applied, paymentID)
	return nil
}

func (m *mockReconRepo) MarkFailedAttempt(_ context.Context, paymentID string, _ error) error {
	m.failedMarked = append(m.failedMarked, paymentID)
	return nil
}

type mockSalesRepo struct {
	sale   *domain.SalesTransaction
	getErr error

	markedStatus *domain.PaymentStatus
}

func (m *mockSalesRepo) GetByBookingID(_ context.Context, _ string) (*domain.SalesTransaction, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.sale == nil {
		return nil, salesstorage.ErrTransactionNotFound
	}
	return m.sale, nil
}

func (m *mockSalesRepo) UpdatePaymentStatus(_ context.Context, _ string, status domain.PaymentStatus) error {
	m.markedStatus = &status
	return nil
}

type mockApplier struct {
	booking *domain.Booking
	err     error

	calls int
}

func (m *mockApplier) ApplyPayment(_ context.Context, _, _ string, _ float64) (*domain.Booking, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.booking, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func pendingBooking() *domain.Booking {
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	return &domain.Booking{
		ID:            "b-1",
		UserID:        42,
		SessionType:   domain.SessionConsultation,
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		Status:        domain.StatusConfirmed,
		PaymentStatus: domain.PaymentPending,
	}
}

func TestInitiate_CreatesChargeAndStoresPaymentID(t *testing.T) {
	repo := &mockBookingRepo{booking: pendingBooking()}
	gw := &mockGateway{charge: &paymentgateway.Charge{
		ID:          "pay-77",
		Status:      paymentgateway.ChargeStatusCreated,
		CheckoutURL: "https://pay.example.com/pay-77",
	}}
	svc := NewService(repo, gw, &mockReconRepo{}, &mockSalesRepo{}, &mockApplier{}, nopLogger{})

	res, err := svc.Initiate(context.Background(), "b-1", 42, 1500)
	require.NoError(t, err)

	assert.Equal(t, "pay-77", res.PaymentID)
	assert.Equal(t, "https://pay.example.com/pay-77", res.CheckoutURL)
	require.NotNil(t, repo.gotPatch)
	assert.Equal(t, "pay-77", *repo.gotPatch.PaymentID)
}

func TestInitiate_ReusesLiveCharge(t *testing.T) {
	b := pendingBooking()
	b.PaymentID = ptr.Ptr("pay-77")
	repo := &mockBookingRepo{booking: b}
	gw := &mockGateway{existing: &paymentgateway.Charge{
		ID:          "pay-77",
		Status:      paymentgateway.ChargeStatusCreated,
		CheckoutURL: "https://pay.example.com/pay-77",
	}}
	svc := NewService(repo, gw, &mockReconRepo{}, &mockSalesRepo{}, &mockApplier{}, nopLogger{})

	res, err := svc.Initiate(context.Background(), "b-1", 42, 1500)
	require.NoError(t, err)

	assert.Equal(t, "pay-77", res.PaymentID)
	assert.Zero(t, gw.createCalls)
}

func TestInitiate_ExpiredChargeReplaced(t *testing.T) {
	b := pendingBooking()
	b.PaymentID = ptr.Ptr("pay-old")
	repo := &mockBookingRepo{booking: b}
	gw := &mockGateway{
		existing: &paymentgateway.Charge{ID: "pay-old", Status: paymentgateway.ChargeStatusFailed},
		charge: &paymentgateway.Charge{
			ID:          "pay-new",
			Status:      paymentgateway.ChargeStatusCreated,
			CheckoutURL: "https://pay.example.com/pay-new",
		},
	}
	svc := NewService(repo, gw, &mockReconRepo{}, &mockSalesRepo{}, &mockApplier{}, nopLogger{})

	res, err := svc.Initiate(context.Background(), "b-1", 42, 1500)
	require.NoError(t, err)

	assert.Equal(t, "pay-new", res.PaymentID)
	assert.Equal(t, 1, gw.createCalls)
}

func TestInitiate_Guards(t *testing.T) {
	t.Run("AlreadyPaid", func(t *testing.T) {
		b := pendingBooking()
		b.PaymentStatus = domain.PaymentCompleted
		svc := NewService(&mockBookingRepo{booking: b}, &mockGateway{}, &mockReconRepo{}, &mockSalesRepo{}, &mockApplier{}, nopLogger{})

		_, err := svc.Initiate(context.Background(), "b-1", 42, 1500)
		assert.ErrorIs(t, err, ErrAlreadyPaid)
	})

	t.Run("Stranger", func(t *testing.T) {
		svc := NewService(&mockBookingRepo{booking: pendingBooking()}, &mockGateway{}, &mockReconRepo{}, &mockSalesRepo{}, &mockApplier{}, nopLogger{})

		_, err := svc.Initiate(context.Background(), "b-1", 99, 1500)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := NewService(&mockBookingRepo{getErr: bookingstorage.ErrBookingNotFound}, &mockGateway{}, &mockReconRepo{}, &mockSalesRepo{}, &mockApplier{}, nopLogger{})

		_, err := svc.Initiate(context.Background(), "missing", 42, 1500)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("GatewayRejects", func(t *testing.T) {
		gw := &mockGateway{createErr: paymentgateway.ErrChargeRejected}
		svc := NewService(&mockBookingRepo{booking: pendingBooking()}, gw, &mockReconRepo{}, &mockSalesRepo{}, &mockApplier{}, nopLogger{})

		_, err := svc.Initiate(context.Background(), "b-1", 42, 1500)
		assert.ErrorIs(t, err, ErrPaymentFailed)
	})
}

func TestHandleSuccess_RecordsBeforeApplying(t *testing.T) {
	recon := &mockReconRepo{}
	applier := &mockApplier{booking: pendingBooking()}
	svc := NewService(&mockBookingRepo{booking: pendingBooking()}, &mockGateway{}, recon, &mockSalesRepo{}, applier, nopLogger{})

	_, err := svc.HandleSuccess(context.Background(), "pay-77", "b-1", 1500)
	require.NoError(t, err)

	assert.Equal(t, []string{"pay-77"}, recon.recorded)
	assert.Equal(t, []string{"pay-77"}, recon.applied)
	assert.Equal(t, 1, applier.calls)
}

func TestHandleSuccess_ApplyFailureDefersToReconciliation(t *testing.T) {
	recon := &mockReconRepo{}
	applier := &mockApplier{err: errors.New("db down")}
	svc := NewService(&mockBookingRepo{booking: pendingBooking()}, &mockGateway{}, recon, &mockSalesRepo{}, applier, nopLogger{})

	_, err := svc.HandleSuccess(context.Background(), "pay-77", "b-1", 1500)
	assert.ErrorIs(t, err, ErrReconciliationPending)

	// Платёж записан до попытки применения — reconciler доделает
	assert.Equal(t, []string{"pay-77"}, recon.recorded)
	assert.Equal(t, []string{"pay-77"}, recon.failedMarked)
	assert.Empty(t, recon.applied)
}

func TestHandleSuccess_RecordFailureIsFatal(t *testing.T) {
	recon := &mockReconRepo{recordErr: errors.New("db down")}
	applier := &mockApplier{booking: pendingBooking()}
	svc := NewService(&mockBookingRepo{booking: pendingBooking()}, &mockGateway{}, recon, &mockSalesRepo{}, applier, nopLogger{})

	_, err := svc.HandleSuccess(context.Background(), "pay-77", "b-1", 1500)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Zero(t, applier.calls)
}

func paidBooking() *domain.Booking {
	b := pendingBooking()
	b.PaymentStatus = domain.PaymentCompleted
	b.PaymentID = ptr.Ptr("pay-77")
	b.AmountPaid = ptr.Ptr(1500.0)
	return b
}

func TestHandleRefund_MarksBookingAndSale(t *testing.T) {
	repo := &mockBookingRepo{booking: paidBooking()}
	sales := &mockSalesRepo{sale: &domain.SalesTransaction{
		SalesID:   "SL-000001",
		BookingID: "b-1",
		Amount:    1500,
	}}
	svc := NewService(repo, &mockGateway{}, &mockReconRepo{}, sales, &mockApplier{}, nopLogger{})

	updated, err := svc.HandleRefund(context.Background(), "pay-77", "b-1")
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentRefunded, updated.PaymentStatus)
	require.NotNil(t, repo.gotPatch)
	require.NotNil(t, repo.gotPatch.PaymentStatus)
	assert.Equal(t, domain.PaymentRefunded, *repo.gotPatch.PaymentStatus)
	require.NotNil(t, sales.markedStatus)
	assert.Equal(t, domain.PaymentRefunded, *sales.markedStatus)
}

func TestHandleRefund_Guards(t *testing.T) {
	t.Run("DuplicateDeliveryIsNoop", func(t *testing.T) {
		b := paidBooking()
		b.PaymentStatus = domain.PaymentRefunded
		repo := &mockBookingRepo{booking: b}
		svc := NewService(repo, &mockGateway{}, &mockReconRepo{}, &mockSalesRepo{}, &mockApplier{}, nopLogger{})

		updated, err := svc.HandleRefund(context.Background(), "pay-77", "b-1")
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentRefunded, updated.PaymentStatus)
		assert.Nil(t, repo.gotPatch)
	})

	t.Run("PendingPaymentNotRefundable", func(t *testing.T) {
		b := pendingBooking()
		b.PaymentID = ptr.Ptr("pay-77")
		svc := NewService(&mockBookingRepo{booking: b}, &mockGateway{}, &mockReconRepo{}, &mockSalesRepo{}, &mockApplier{}, nopLogger{})

		_, err := svc.HandleRefund(context.Background(), "pay-77", "b-1")
		assert.ErrorIs(t, err, ErrNotRefundable)
	})

	t.Run("PaymentIDMismatch", func(t *testing.T) {
		svc := NewService(&mockBookingRepo{booking: paidBooking()}, &mockGateway{}, &mockReconRepo{}, &mockSalesRepo{}, &mockApplier{}, nopLogger{})

		_, err := svc.HandleRefund(context.Background(), "pay-other", "b-1")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("MissingSaleStillRefundsBooking", func(t *testing.T) {
		repo := &mockBookingRepo{booking: paidBooking()}
		sales := &mockSalesRepo{}
		svc := NewService(repo, &mockGateway{}, &mockReconRepo{}, sales, &mockApplier{}, nopLogger{})

		updated, err := svc.HandleRefund(context.Background(), "pay-77", "b-1")
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentRefunded, updated.PaymentStatus)
		assert.Nil(t, sales.markedStatus)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := NewService(&mockBookingRepo{getErr: bookingstorage.ErrBookingNotFound}, &mockGateway{}, &mockReconRepo{}, &mockSalesRepo{}, &mockApplier{}, nopLogger{})

		_, err := svc.HandleRefund(context.Background(), "pay-77", "missing")
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestHandleFailure_DoesNotMutateBooking(t *testing.T) {
	repo := &mockBookingRepo{booking: pendingBooking()}
	svc := NewService(repo, &mockGateway{}, &mockReconRepo{}, &mockSalesRepo{}, &mockApplier{}, nopLogger{})

	err := svc.HandleFailure(context.Background(), "pay-77", "b-1", "card declined")
	require.NoError(t, err)
	assert.Nil(t, repo.gotPatch)
}
