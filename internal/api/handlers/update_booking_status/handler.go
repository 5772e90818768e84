package update_booking_status

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/toykraft/consult-booking-service/internal/api/handlers"
	"github.com/toykraft/consult-booking-service/internal/domain"
	"github.com/toykraft/consult-booking-service/internal/service/bookings"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgEmptyPatch         = "укажите хотя бы одно из полей: status, meetingLink, hostNotes"
	msgBookingNotFound    = "бронирование не найдено"
	msgInvalidTransition  = "недопустимый переход статуса"
	msgInvalidInput       = "некорректные данные"
)

// UpdateBookingRequest HTTP request model: административный patch.
// Поля применяются по очереди; присутствует хотя бы одно.
type UpdateBookingRequest struct {
	Status      *string `json:"status,omitempty"`
	MeetingLink *string `json:"meetingLink,omitempty"`
	HostNotes   *string `json:"hostNotes,omitempty"`
}

type Handler struct {
	service BookingsService
	logger  Logger
}

func NewHandler(service BookingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["bookingId"]

	var req UpdateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if req.Status == nil && req.MeetingLink == nil && req.HostNotes == nil {
		handlers.RespondBadRequest(w, msgEmptyPatch)
		return
	}

	var (
		booking *domain.Booking
		err     error
	)

	if req.Status != nil {
		booking, err = h.service.UpdateStatus(r.Context(), bookingID, domain.BookingStatus(*req.Status))
		if err != nil {
			h.respondError(w, bookingID, err)
			return
		}
	}

	if req.MeetingLink != nil {
		booking, err = h.service.SetMeetingLink(r.Context(), bookingID, *req.MeetingLink)
		if err != nil {
			h.respondError(w, bookingID, err)
			return
		}
	}

	if req.HostNotes != nil {
		booking, err = h.service.SetHostNotes(r.Context(), bookingID, *req.HostNotes)
		if err != nil {
			h.respondError(w, bookingID, err)
			return
		}
	}

	h.logger.Info("PATCH /bookings/{id}/status - Booking updated: booking_id=%s", bookingID)
	handlers.RespondJSON(w, http.StatusOK, handlers.NewBookingView(booking))
}

func (h *Handler) respondError(w http.ResponseWriter, bookingID string, err error) {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		h.logger.Warn("PATCH /bookings/{id}/status - Not found: booking_id=%s", bookingID)
		handlers.RespondNotFound(w, msgBookingNotFound)

	case errors.Is(err, bookings.ErrInvalidTransition):
		h.logger.Warn("PATCH /bookings/{id}/status - Invalid transition: booking_id=%s, err=%v", bookingID, err)
		handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

	case errors.Is(err, bookings.ErrInvalidInput):
		handlers.RespondBadRequest(w, msgInvalidInput)

	default:
		h.logger.Error("PATCH /bookings/{id}/status - Failed: booking_id=%s, error=%v", bookingID, err)
		handlers.RespondInternalError(w)
	}
}
