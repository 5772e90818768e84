package get_available_slots

import "errors"

var (
	// ErrInvalidSessionType возвращается при неизвестном типе сессии
	ErrInvalidSessionType = errors.New("get_available_slots: invalid session type")

	// ErrInvalidDate возвращается при некорректной дате (в прошлом или нулевой)
	ErrInvalidDate = errors.New("get_available_slots: invalid date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает горизонт бронирования
	ErrDateTooFarInFuture = errors.New("get_available_slots: date is beyond the booking horizon")

	// ErrRulesNotConfigured возвращается, когда правила планирования не настроены
	ErrRulesNotConfigured = errors.New("get_available_slots: scheduling rules are not configured")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
