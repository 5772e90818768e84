package complete_payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/toykraft/consult-booking-service/internal/domain"
	bookingstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/booking"
	salesstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/sales"
	"github.com/toykraft/consult-booking-service/pkg/ptr"
)

type UseCase struct {
	bookingRepo BookingRepository
	salesRepo   SalesRepository
	txManager   TxManager
	logger      Logger
}

func NewUseCase(
	bookingRepo BookingRepository,
	salesRepo SalesRepository,
	txManager TxManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		salesRepo:   salesRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// Execute применяет успешную оплату: переводит payment_status в completed и
// записывает транзакцию продаж — атомарно, в одной транзакции БД.
// Операция идемпотентна: повторная доставка того же платежа не создаёт
// дубликат записи продаж (unique constraint на booking_id) и не ломает статус.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("[CompletePayment.Execute] Подтверждение оплаты: booking_id=%s, payment_id=%s, amount=%.2f",
		req.BookingID, req.PaymentID, req.Amount)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("[CompletePayment.Execute] Ошибка валидации: %v", err)
		return nil, err
	}

	var resp *Response
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 2. Загружаем бронирование
		b, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingstorage.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("failed to load booking: %w", err)
		}

		// Повторная доставка: оплата уже применена этим же платежом
		if b.PaymentStatus == domain.PaymentCompleted {
			if b.PaymentID != nil && *b.PaymentID == req.PaymentID {
				resp = &Response{Booking: b, AlreadyCompleted: true}
				return nil
			}
			return fmt.Errorf("%w: booking is already paid by another payment", ErrInvalidPaymentTransition)
		}

		// 3. Проверяем переход payment_status
		if !b.PaymentStatus.CanTransitionTo(domain.PaymentCompleted) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidPaymentTransition, b.PaymentStatus, domain.PaymentCompleted)
		}

		// 4. Обновляем бронирование
		updated, err := uc.bookingRepo.Update(txCtx, req.BookingID, bookingstorage.UpdatePatch{
			PaymentStatus: ptr.Ptr(domain.PaymentCompleted),
			PaymentID:     ptr.Ptr(req.PaymentID),
			AmountPaid:    ptr.Ptr(req.Amount),
		})
		if err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}

		// 5. Записываем транзакцию продаж (at-most-once через unique(booking_id))
		_, err = uc.salesRepo.Create(txCtx, &domain.SalesTransaction{
			UserID:           updated.UserID,
			BookingID:        updated.ID,
			Amount:           req.Amount,
			SourceType:       updated.SessionType.SalesSourceType(),
			PaymentStatus:    domain.PaymentCompleted,
			PaymentGatewayID: req.PaymentID,
		})
		if err != nil && !errors.Is(err, salesstorage.ErrAlreadyRecorded) {
			return fmt.Errorf("failed to record sales transaction: %w", err)
		}

		resp = &Response{Booking: updated}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrInvalidPaymentTransition):
			uc.logger.Warn("[CompletePayment.Execute] Оплата отклонена: booking_id=%s, err=%v", req.BookingID, err)
			return nil, err
		default:
			uc.logger.Error("[CompletePayment.Execute] Ошибка транзакции: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	if resp.AlreadyCompleted {
		uc.logger.Info("[CompletePayment.Execute] Повторная доставка платежа, изменений нет: booking_id=%s, payment_id=%s",
			req.BookingID, req.PaymentID)
	} else {
		uc.logger.Info("[CompletePayment.Execute] Оплата применена: booking_id=%s, payment_id=%s", req.BookingID, req.PaymentID)
	}

	return resp, nil
}

func validateRequest(req *Request) error {
	if req.BookingID == "" {
		return fmt.Errorf("%w: booking_id is required", ErrInvalidInput)
	}
	if req.PaymentID == "" {
		return fmt.Errorf("%w: payment_id is required", ErrInvalidInput)
	}
	if req.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	return nil
}
