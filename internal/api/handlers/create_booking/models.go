package create_booking

import (
	"time"

	"github.com/toykraft/consult-booking-service/internal/domain"
	createBooking "github.com/toykraft/consult-booking-service/internal/usecase/create_booking"
	"github.com/toykraft/consult-booking-service/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	SessionType  string  `json:"sessionType"`
	Date         string  `json:"date"`      // "2026-09-07"
	StartTime    string  `json:"startTime"` // "10:00"
	ChildName    *string `json:"childName,omitempty"`
	ChildAge     *int    `json:"childAge,omitempty"`
	Concerns     *string `json:"concerns,omitempty"`
	SpecialNotes *string `json:"specialNotes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	start, err := startTime.OnDate(date)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		UserID:       userID,
		SessionType:  domain.SessionType(r.SessionType),
		StartTime:    start,
		ChildName:    r.ChildName,
		ChildAge:     r.ChildAge,
		Concerns:     r.Concerns,
		SpecialNotes: r.SpecialNotes,
	}, nil
}
