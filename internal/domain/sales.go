package domain

import "time"

// SalesTransaction — финансовая запись, создаваемая при завершении оплаты
// бронирования. На одно бронирование существует не более одной записи
// (уникальный индекс по booking_id в хранилище).
type SalesTransaction struct {
	SalesID          string // Человекочитаемый идентификатор вида "SL-000042"
	UserID           int64
	BookingID        string
	Amount           float64
	SourceType       string // Маппинг session_type, см. SessionType.SalesSourceType
	PaymentStatus    PaymentStatus
	PaymentGatewayID string
	CreatedAt        time.Time
}
