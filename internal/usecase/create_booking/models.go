package create_booking

import (
	"time"

	"github.com/toykraft/consult-booking-service/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID      int64
	SessionType domain.SessionType
	StartTime   time.Time

	ChildName    *string
	ChildAge     *int
	Concerns     *string
	SpecialNotes *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *domain.Booking
}
