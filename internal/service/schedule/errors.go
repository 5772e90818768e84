package schedule

import "errors"

var (
	// ErrRulesNotConfigured возвращается, когда singleton правил планирования отсутствует
	ErrRulesNotConfigured = errors.New("scheduling rules are not configured")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidTimeWindow возвращается, когда start_time >= end_time для рабочего дня
	ErrInvalidTimeWindow = errors.New("start time must be before end time")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("schedule service: internal error")
)
