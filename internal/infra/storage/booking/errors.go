package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotTaken возвращается, когда вставка нарушает exclusion constraint
	// пересечения интервалов (слот уже занят другим confirmed бронированием)
	ErrSlotTaken = errors.New("booking.repository: slot already taken")

	// ErrEmptyPatch возвращается при попытке обновления без единого поля
	ErrEmptyPatch = errors.New("booking.repository: empty update patch")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
