package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInvalidSessionType возвращается при неизвестном типе сессии
	ErrInvalidSessionType = errors.New("create_booking: invalid session type")

	// ErrSlotNotAvailable возвращается, когда слот занят или не входит в сетку
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrOutsideWorkingHours возвращается, когда слот вне рабочих часов
	ErrOutsideWorkingHours = errors.New("create_booking: slot is outside working hours")

	// ErrTooSoon возвращается при нарушении минимального времени до начала
	ErrTooSoon = errors.New("create_booking: slot starts sooner than the minimum notice allows")

	// ErrTooFarInFuture возвращается, когда слот за горизонтом бронирования
	ErrTooFarInFuture = errors.New("create_booking: slot is beyond the booking horizon")

	// ErrRulesNotConfigured возвращается, когда правила планирования не настроены
	ErrRulesNotConfigured = errors.New("create_booking: scheduling rules are not configured")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
