package update_schedule_config

import (
	"errors"
	"net/http"

	"github.com/toykraft/consult-booking-service/internal/api/handlers"
	"github.com/toykraft/consult-booking-service/internal/service/schedule"
	"github.com/toykraft/consult-booking-service/internal/service/schedule/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные конфигурации"
	msgInvalidTimeWindow  = "время начала должно быть раньше времени окончания"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleWorkingHours PUT /api/v1/schedule/working-hours
func (h *Handler) HandleWorkingHours(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateWorkingHoursRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /schedule/working-hours - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateWorkingHours(r.Context(), &req)
	if err != nil {
		h.respondError(w, "PUT /schedule/working-hours", err)
		return
	}

	h.logger.Info("PUT /schedule/working-hours - Working hours updated: days=%d", len(req.Days))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleRules PUT /api/v1/schedule/rules
func (h *Handler) HandleRules(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRulesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /schedule/rules - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateRules(r.Context(), &req)
	if err != nil {
		h.respondError(w, "PUT /schedule/rules", err)
		return
	}

	h.logger.Info("PUT /schedule/rules - Rules updated: slot=%dmin, buffer=%dmin, notice=%dh, horizon=%dd",
		req.SlotDurationMinutes, req.BufferMinutes, req.MinNoticeHours, req.MaxBookingDays)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, schedule.ErrInvalidTimeWindow):
		h.logger.Warn("%s - Invalid time window: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidTimeWindow)

	case errors.Is(err, schedule.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	default:
		h.logger.Error("%s - Failed: %v", op, err)
		handlers.RespondInternalError(w)
	}
}
