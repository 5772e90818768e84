package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается при попытке доступа к чужому бронированию
	ErrAccessDenied = errors.New("access to booking denied")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrCannotCancel возвращается, когда бронирование нельзя отменить
	ErrCannotCancel = errors.New("booking cannot be cancelled")

	// ErrCannotReschedule возвращается, когда бронирование нельзя перенести
	ErrCannotReschedule = errors.New("booking cannot be rescheduled")

	// ErrSlotNotAvailable возвращается, когда новый слот занят или вне сетки
	ErrSlotNotAvailable = errors.New("slot is not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrRulesNotConfigured возвращается, когда правила планирования не настроены
	ErrRulesNotConfigured = errors.New("scheduling rules are not configured")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("internal bookings service error")
)
