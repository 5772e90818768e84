package payments

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается при попытке оплаты чужого бронирования
	ErrAccessDenied = errors.New("access to booking denied")

	// ErrAlreadyPaid возвращается, когда бронирование уже оплачено
	ErrAlreadyPaid = errors.New("booking is already paid")

	// ErrPaymentFailed возвращается, когда провайдер отклонил создание платежа
	ErrPaymentFailed = errors.New("payment initiation failed")

	// ErrReconciliationPending возвращается, когда платёж записан, но
	// применение к бронированию отложено (доделает фоновая сверка)
	ErrReconciliationPending = errors.New("payment recorded, booking update deferred to reconciliation")

	// ErrNotRefundable возвращается при попытке возврата платежа,
	// который не находится в статусе completed
	ErrNotRefundable = errors.New("payment is not refundable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("internal payments service error")
)
