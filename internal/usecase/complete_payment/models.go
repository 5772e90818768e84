package complete_payment

import "github.com/toykraft/consult-booking-service/internal/domain"

// Request модель запроса на подтверждение оплаты бронирования
type Request struct {
	BookingID string
	PaymentID string
	Amount    float64
}

// Response модель ответа с обновлённым бронированием
type Response struct {
	Booking *domain.Booking

	// AlreadyCompleted true, если оплата уже была применена ранее
	// (повторная доставка события от платёжного шлюза)
	AlreadyCompleted bool
}
