package handlers

import (
	"time"

	"github.com/toykraft/consult-booking-service/internal/domain"
)

// BookingView HTTP представление бронирования, общее для всех endpoint'ов
type BookingView struct {
	ID          string `json:"id"`
	UserID      int64  `json:"userId"`
	SessionType string `json:"sessionType"`
	StartTime   string `json:"startTime"` // RFC3339
	EndTime     string `json:"endTime"`   // RFC3339

	ChildName    *string `json:"childName,omitempty"`
	ChildAge     *int    `json:"childAge,omitempty"`
	Concerns     *string `json:"concerns,omitempty"`
	SpecialNotes *string `json:"specialNotes,omitempty"`

	AmountPaid    *float64 `json:"amountPaid,omitempty"`
	PaymentStatus string   `json:"paymentStatus"`
	PaymentID     *string  `json:"paymentId,omitempty"`

	Status          string  `json:"status"`
	MeetingLink     *string `json:"meetingLink,omitempty"`
	HostNotes       *string `json:"hostNotes,omitempty"`
	RescheduledFrom *string `json:"rescheduledFrom,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// NewBookingView конвертирует domain модель в HTTP представление
func NewBookingView(b *domain.Booking) *BookingView {
	return &BookingView{
		ID:              b.ID,
		UserID:          b.UserID,
		SessionType:     string(b.SessionType),
		StartTime:       b.StartTime.Format(time.RFC3339),
		EndTime:         b.EndTime.Format(time.RFC3339),
		ChildName:       b.ChildName,
		ChildAge:        b.ChildAge,
		Concerns:        b.Concerns,
		SpecialNotes:    b.SpecialNotes,
		AmountPaid:      b.AmountPaid,
		PaymentStatus:   string(b.PaymentStatus),
		PaymentID:       b.PaymentID,
		Status:          string(b.Status),
		MeetingLink:     b.MeetingLink,
		HostNotes:       b.HostNotes,
		RescheduledFrom: b.RescheduledFrom,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       b.UpdatedAt.Format(time.RFC3339),
	}
}
