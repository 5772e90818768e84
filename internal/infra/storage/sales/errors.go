package sales

import "errors"

var (
	// ErrAlreadyRecorded возвращается, когда для бронирования уже существует
	// sales transaction. Уникальный индекс по booking_id делает вставку
	// идемпотентной: конфликт — это "уже записано", а не сбой.
	ErrAlreadyRecorded = errors.New("sales.repository: transaction already recorded for booking")

	// ErrTransactionNotFound возвращается, когда запись не найдена
	ErrTransactionNotFound = errors.New("sales.repository: transaction not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("sales.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("sales.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("sales.repository: failed to scan row")
)
