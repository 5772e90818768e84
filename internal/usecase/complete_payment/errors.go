package complete_payment

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("complete_payment: invalid input data")

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("complete_payment: booking not found")

	// ErrInvalidPaymentTransition возвращается при недопустимом переходе payment_status
	ErrInvalidPaymentTransition = errors.New("complete_payment: invalid payment status transition")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("complete_payment: internal error")
)
