package get_available_slots

import (
	"github.com/toykraft/consult-booking-service/internal/domain"
	getAvailableSlots "github.com/toykraft/consult-booking-service/internal/usecase/get_available_slots"
)

// SlotResponse один доступный слот
type SlotResponse struct {
	StartTime string `json:"startTime"` // RFC3339
	EndTime   string `json:"endTime"`   // RFC3339
}

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date        string         `json:"date"` // YYYY-MM-DD
	SessionType string         `json:"sessionType"`
	DayStatus   string         `json:"dayStatus"` // open | non_working | fully_booked
	Slots       []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartTime: s.StartTime.Format(timeFormat),
			EndTime:   s.EndTime.Format(timeFormat),
		})
	}

	return &AvailableSlotsResponse{
		Date:        resp.Date.Format(domain.DateFormat),
		SessionType: string(resp.SessionType),
		DayStatus:   string(resp.DayStatus),
		Slots:       slots,
	}
}
