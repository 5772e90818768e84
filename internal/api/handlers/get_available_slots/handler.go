package get_available_slots

import (
	"errors"
	"net/http"
	"time"

	"github.com/toykraft/consult-booking-service/internal/api/handlers"
	"github.com/toykraft/consult-booking-service/internal/api/middleware"
	"github.com/toykraft/consult-booking-service/internal/domain"
	getAvailableSlots "github.com/toykraft/consult-booking-service/internal/usecase/get_available_slots"
)

const timeFormat = time.RFC3339

const (
	msgMissingDate        = "параметр date обязателен"
	msgInvalidDateFormat  = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidSessionType = "некорректный тип сессии, ожидается playpath или consultation"
	msgInvalidDate        = "некорректная дата: дата в прошлом"
	msgDateTooFar         = "дата слишком далеко в будущем"
	msgRulesNotConfigured = "правила планирования не настроены"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/slots?date=YYYY-MM-DD&sessionType=consultation
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	rawDate := r.URL.Query().Get("date")
	if rawDate == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.Parse(domain.DateFormat, rawDate)
	if err != nil {
		h.logger.Warn("GET /slots - Invalid date: %q", rawDate)
		handlers.RespondBadRequest(w, msgInvalidDateFormat)
		return
	}

	sessionType := domain.SessionType(r.URL.Query().Get("sessionType"))
	if sessionType == "" {
		sessionType = domain.SessionConsultation
	}

	// Endpoint публичный: user_id опционален, используется только в логах
	userID, _ := middleware.UserIDFromContext(r.Context())

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		UserID:      userID,
		Date:        date,
		SessionType: sessionType,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidSessionType):
			h.logger.Warn("GET /slots - Invalid session type: %q", sessionType)
			handlers.RespondBadRequest(w, msgInvalidSessionType)

		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			h.logger.Warn("GET /slots - Date in the past: %s", rawDate)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			h.logger.Warn("GET /slots - Date too far in future: %s", rawDate)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getAvailableSlots.ErrRulesNotConfigured):
			h.logger.Error("GET /slots - Scheduling rules not configured")
			handlers.RespondError(w, http.StatusConflict, msgRulesNotConfigured)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidDateFormat)

		default:
			h.logger.Error("GET /slots - Failed to get slots: date=%s, error=%v", rawDate, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /slots - Slots returned: date=%s, day_status=%s, count=%d",
		rawDate, result.DayStatus, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
