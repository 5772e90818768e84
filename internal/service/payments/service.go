package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/toykraft/consult-booking-service/internal/domain"
	bookingstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/booking"
	salesstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/sales"
	"github.com/toykraft/consult-booking-service/internal/integrations/paymentgateway"
	"github.com/toykraft/consult-booking-service/pkg/ptr"
)

// Service — мост между жизненным циклом бронирования и платёжным провайдером.
// Инициирует платёж, принимает асинхронный callback и применяет результат.
type Service struct {
	bookingRepo BookingRepository
	gateway     GatewayClient
	reconRepo   ReconciliationRepository
	salesRepo   SalesRepository
	applier     PaymentApplier
	logger      Logger
}

func NewService(
	bookingRepo BookingRepository,
	gateway GatewayClient,
	reconRepo ReconciliationRepository,
	salesRepo SalesRepository,
	applier PaymentApplier,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		gateway:     gateway,
		reconRepo:   reconRepo,
		salesRepo:   salesRepo,
		applier:     applier,
		logger:      logger,
	}
}

// InitiateResult хэндл платежа для клиента
type InitiateResult struct {
	PaymentID   string
	CheckoutURL string
}

// Initiate создаёт платёж у провайдера для неоплаченного бронирования.
// Повторный вызов для бронирования с живым незавершённым платежом возвращает
// тот же хэндл, а не создаёт дубликат.
func (s *Service) Initiate(ctx context.Context, bookingID string, requesterID int64, amount float64) (*InitiateResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingstorage.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("[Payments.Initiate] Ошибка получения бронирования: booking_id=%s, err=%v", bookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if requesterID > 0 && b.UserID != requesterID {
		return nil, ErrAccessDenied
	}

	if b.PaymentStatus == domain.PaymentCompleted {
		return nil, ErrAlreadyPaid
	}

	// Идемпотентная повторная инициация: живой незавершённый платёж
	// переиспользуется
	if b.PaymentID != nil && *b.PaymentID != "" {
		charge, getErr := s.gateway.GetCharge(ctx, *b.PaymentID)
		if getErr == nil && charge.Status == paymentgateway.ChargeStatusCreated {
			s.logger.Info("[Payments.Initiate] Переиспользуем существующий платёж: booking_id=%s, payment_id=%s",
				bookingID, charge.ID)
			return &InitiateResult{PaymentID: charge.ID, CheckoutURL: charge.CheckoutURL}, nil
		}
		if getErr != nil && !errors.Is(getErr, paymentgateway.ErrChargeNotFound) {
			s.logger.Warn("[Payments.Initiate] Не удалось проверить существующий платёж, создаём новый: payment_id=%s, err=%v",
				*b.PaymentID, getErr)
		}
	}

	charge, err := s.gateway.CreateCharge(ctx, paymentgateway.ChargeRequest{
		Amount:      amount,
		Currency:    "RUB",
		Description: chargeDescription(b),
		BookingID:   b.ID,
		UserID:      b.UserID,
	})
	if err != nil {
		s.logger.Error("[Payments.Initiate] Провайдер отклонил платёж: booking_id=%s, err=%v", bookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	// Сохраняем intent id на бронировании: по нему работает повторная
	// инициация и фоновая сверка зависших pending
	if _, err := s.bookingRepo.Update(ctx, b.ID, bookingstorage.UpdatePatch{
		PaymentID: ptr.Ptr(charge.ID),
	}); err != nil {
		s.logger.Error("[Payments.Initiate] Не удалось сохранить payment_id: booking_id=%s, err=%v", bookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.logger.Info("[Payments.Initiate] Платёж создан: booking_id=%s, payment_id=%s, amount=%.2f",
		bookingID, charge.ID, amount)

	return &InitiateResult{PaymentID: charge.ID, CheckoutURL: charge.CheckoutURL}, nil
}

// HandleSuccess применяет успешный платёж из webhook провайдера.
// Сначала платёж durably записывается в outbox сверки, затем применяется
// к бронированию. Если применение упало, запись остаётся pending и её
// доделает фоновая сверка — деньги пользователя не теряются.
func (s *Service) HandleSuccess(ctx context.Context, paymentID, bookingID string, amount float64) (*domain.Booking, error) {
	if paymentID == "" || bookingID == "" {
		return nil, fmt.Errorf("%w: payment_id and booking_id are required", ErrInvalidInput)
	}

	if err := s.reconRepo.Record(ctx, paymentID, bookingID, amount); err != nil {
		s.logger.Error("[Payments.HandleSuccess] Не удалось записать платёж в outbox: payment_id=%s, err=%v",
			paymentID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	updated, err := s.applier.ApplyPayment(ctx, bookingID, paymentID, amount)
	if err != nil {
		// Платёж записан, применение доделает reconciler
		s.logger.Error("[Payments.HandleSuccess] Платёж записан, но применение упало: payment_id=%s, booking_id=%s, err=%v",
			paymentID, bookingID, err)
		if markErr := s.reconRepo.MarkFailedAttempt(ctx, paymentID, err); markErr != nil {
			s.logger.Error("[Payments.HandleSuccess] Не удалось отметить неудачную попытку: payment_id=%s, err=%v",
				paymentID, markErr)
		}
		return nil, ErrReconciliationPending
	}

	if err := s.reconRepo.MarkApplied(ctx, paymentID); err != nil {
		// Некритично: повторное применение идемпотентно
		s.logger.Warn("[Payments.HandleSuccess] Платёж применён, но outbox не обновлён: payment_id=%s, err=%v",
			paymentID, err)
	}

	s.logger.Info("[Payments.HandleSuccess] Платёж применён: payment_id=%s, booking_id=%s", paymentID, bookingID)

	return updated, nil
}

// HandleRefund применяет возврат платежа из webhook провайдера:
// payment_status бронирования переходит completed → refunded, запись продаж
// помечается refunded. Повторная доставка того же возврата — no-op.
func (s *Service) HandleRefund(ctx context.Context, paymentID, bookingID string) (*domain.Booking, error) {
	if paymentID == "" || bookingID == "" {
		return nil, fmt.Errorf("%w: payment_id and booking_id are required", ErrInvalidInput)
	}

	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingstorage.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("[Payments.HandleRefund] Ошибка получения бронирования: booking_id=%s, err=%v", bookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if b.PaymentID == nil || *b.PaymentID != paymentID {
		s.logger.Warn("[Payments.HandleRefund] payment_id не совпадает с бронированием: booking_id=%s, payment_id=%s",
			bookingID, paymentID)
		return nil, fmt.Errorf("%w: payment_id does not match booking", ErrInvalidInput)
	}

	if b.PaymentStatus == domain.PaymentRefunded {
		s.logger.Info("[Payments.HandleRefund] Возврат уже применён: booking_id=%s, payment_id=%s", bookingID, paymentID)
		return b, nil
	}

	if !b.PaymentStatus.CanTransitionTo(domain.PaymentRefunded) {
		return nil, fmt.Errorf("%w: payment_status=%s", ErrNotRefundable, b.PaymentStatus)
	}

	// Сверяем с записью продаж: возврат без зафиксированной продажи —
	// признак рассинхрона с провайдером, но бронирование всё равно разбираем
	sale, err := s.salesRepo.GetByBookingID(ctx, bookingID)
	if err != nil && !errors.Is(err, salesstorage.ErrTransactionNotFound) {
		s.logger.Error("[Payments.HandleRefund] Ошибка чтения записи продаж: booking_id=%s, err=%v", bookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	refunded := domain.PaymentRefunded
	updated, err := s.bookingRepo.Update(ctx, b.ID, bookingstorage.UpdatePatch{
		PaymentStatus: &refunded,
	})
	if err != nil {
		s.logger.Error("[Payments.HandleRefund] Не удалось обновить бронирование: booking_id=%s, err=%v", bookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if sale == nil {
		s.logger.Warn("[Payments.HandleRefund] Возврат без записи продаж: booking_id=%s, payment_id=%s",
			bookingID, paymentID)
	} else if err := s.salesRepo.UpdatePaymentStatus(ctx, bookingID, domain.PaymentRefunded); err != nil {
		// Некритично: статус бронирования уже refunded, запись продаж
		// догонит следующая доставка webhook'а
		s.logger.Warn("[Payments.HandleRefund] Не удалось пометить запись продаж: booking_id=%s, err=%v",
			bookingID, err)
	}

	s.logger.Info("[Payments.HandleRefund] Возврат применён: booking_id=%s, payment_id=%s", bookingID, paymentID)

	return updated, nil
}

// HandleFailure обрабатывает неуспех платежа. Бронирование не мутируется:
// остаётся payment_status=pending, пользователь может повторить оплату.
func (s *Service) HandleFailure(ctx context.Context, paymentID, bookingID, reason string) error {
	s.logger.Warn("[Payments.HandleFailure] Платёж не прошёл: payment_id=%s, booking_id=%s, reason=%s",
		paymentID, bookingID, reason)
	return nil
}

func chargeDescription(b *domain.Booking) string {
	switch b.SessionType {
	case domain.SessionPlayPath:
		return fmt.Sprintf("Игровая сессия %s", b.StartTime.Format("02.01.2006 15:04"))
	default:
		return fmt.Sprintf("Консультация %s", b.StartTime.Format("02.01.2006 15:04"))
	}
}
