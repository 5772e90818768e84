package reschedule_booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/toykraft/consult-booking-service/internal/api/handlers"
	"github.com/toykraft/consult-booking-service/internal/api/middleware"
	"github.com/toykraft/consult-booking-service/internal/domain"
	"github.com/toykraft/consult-booking-service/internal/service/bookings"
	"github.com/toykraft/consult-booking-service/pkg/types"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateOrTime  = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgUnauthorized       = "пользователь не аутентифицирован"
	msgBookingNotFound    = "бронирование не найдено"
	msgAccessDenied       = "доступ к бронированию запрещён"
	msgCannotReschedule   = "бронирование нельзя перенести в текущем статусе"
	msgSlotNotAvailable   = "выбранный временной слот недоступен"
	msgRulesNotConfigured = "правила планирования не настроены"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	Date      string `json:"date"`      // "2026-09-14"
	StartTime string `json:"startTime"` // "14:00"
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

// Handle POST /api/v1/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	bookingID := mux.Vars(r)["bookingId"]

	var req RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	newStart, err := parseStart(req.Date, req.StartTime)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	booking, err := h.service.Reschedule(r.Context(), bookingID, userID, newStart)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound), errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/reschedule - Not found: booking_id=%s", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/reschedule - Access denied: booking_id=%s, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, bookings.ErrCannotReschedule):
			h.logger.Warn("POST /bookings/{id}/reschedule - Cannot reschedule: booking_id=%s", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgCannotReschedule)

		case errors.Is(err, bookings.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings/{id}/reschedule - Slot not available: booking_id=%s, start=%s",
				bookingID, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, bookings.ErrRulesNotConfigured):
			h.logger.Error("POST /bookings/{id}/reschedule - Scheduling rules not configured")
			handlers.RespondError(w, http.StatusConflict, msgRulesNotConfigured)

		default:
			h.logger.Error("POST /bookings/{id}/reschedule - Failed: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/reschedule - Booking rescheduled: old=%s, new=%s, user_id=%d",
		bookingID, booking.ID, userID)
	handlers.RespondJSON(w, http.StatusOK, handlers.NewBookingView(booking))
}

func parseStart(rawDate, rawTime string) (time.Time, error) {
	date, err := time.Parse(domain.DateFormat, rawDate)
	if err != nil {
		return time.Time{}, err
	}

	startTime, err := types.NewTimeStringFromString(rawTime)
	if err != nil {
		return time.Time{}, err
	}

	return startTime.OnDate(date)
}
