package get_user_bookings

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/toykraft/consult-booking-service/internal/api/handlers"
	"github.com/toykraft/consult-booking-service/internal/api/middleware"
	"github.com/toykraft/consult-booking-service/internal/domain"
)

const (
	msgUnauthorized     = "пользователь не аутентифицирован"
	msgAccessDenied     = "история бронирований доступна только владельцу"
	msgInvalidUserID    = "некорректный идентификатор пользователя"
	msgInvalidDateRange = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidStatus    = "некорректный статус бронирования"
)

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

// BookingsListResponse HTTP response model
type BookingsListResponse struct {
	Bookings []*handlers.BookingView `json:"bookings"`
	Total    int                     `json:"total"`
}

// Handle GET /api/v1/users/{userId}/bookings?status=&from=&to=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	userID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil || userID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	if requesterID != userID {
		h.logger.Warn("GET /users/{id}/bookings - Access denied: owner=%d, requester=%d", userID, requesterID)
		handlers.RespondForbidden(w, msgAccessDenied)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	list, err := h.service.GetUserBookings(r.Context(), userID, filter)
	if err != nil {
		h.logger.Error("GET /users/{id}/bookings - Failed: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	views := make([]*handlers.BookingView, 0, len(list))
	for _, b := range list {
		views = append(views, handlers.NewBookingView(b))
	}

	handlers.RespondJSON(w, http.StatusOK, &BookingsListResponse{
		Bookings: views,
		Total:    len(views),
	})
}

func parseFilter(r *http.Request) (domain.BookingsFilter, error) {
	var filter domain.BookingsFilter
	query := r.URL.Query()

	if raw := query.Get("status"); raw != "" {
		status := domain.BookingStatus(raw)
		switch status {
		case domain.StatusConfirmed, domain.StatusCancelled, domain.StatusCompleted,
			domain.StatusNoShow, domain.StatusRescheduled, domain.StatusSuperseded:
			filter.Status = &status
		default:
			return filter, invalidFilterError(msgInvalidStatus)
		}
	}

	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return filter, invalidFilterError(msgInvalidDateRange)
		}
		filter.StartDate = &from
	}

	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return filter, invalidFilterError(msgInvalidDateRange)
		}
		// Верхняя граница — конец дня
		end := to.AddDate(0, 0, 1)
		filter.EndDate = &end
	}

	return filter, nil
}

type invalidFilterError string

func (e invalidFilterError) Error() string {
	return string(e)
}
