package paymentgateway

// ChargeRequest запрос на создание платежа у провайдера
type ChargeRequest struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	// Контекст заказа: провайдер вернёт его в webhook, по нему восстанавливается бронирование
	BookingID string `json:"bookingId"`
	UserID    int64  `json:"userId"`
}

// Charge платёж на стороне провайдера
type Charge struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"` // created | succeeded | failed
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	CheckoutURL string  `json:"checkoutUrl"`
	BookingID   string  `json:"bookingId"`
}

// Статусы платежа провайдера
const (
	ChargeStatusCreated   = "created"
	ChargeStatusSucceeded = "succeeded"
	ChargeStatusFailed    = "failed"
)

// ErrorResponse модель ошибки от провайдера
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
