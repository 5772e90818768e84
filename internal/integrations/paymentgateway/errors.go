package paymentgateway

import "errors"

var (
	// ErrChargeNotFound возвращается, когда платёж не найден у провайдера
	ErrChargeNotFound = errors.New("paymentgateway client: charge not found")

	// ErrChargeRejected возвращается, когда провайдер отклонил создание платежа
	ErrChargeRejected = errors.New("paymentgateway client: charge rejected")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("paymentgateway client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от провайдера
	ErrInvalidResponse = errors.New("paymentgateway client: invalid response")
)
