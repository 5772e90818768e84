package validate_draft

import (
	"errors"
	"net/http"

	"github.com/toykraft/consult-booking-service/internal/api/handlers"
	"github.com/toykraft/consult-booking-service/internal/wizard"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUnknownStep        = "неизвестный шаг мастера"
)

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// ValidateDraftRequest HTTP request model: шаг и накопленный черновик
type ValidateDraftRequest struct {
	Step  string       `json:"step"`
	Draft wizard.Draft `json:"draft"`
}

// ValidateDraftResponse HTTP response model
type ValidateDraftResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type Handler struct {
	logger Logger
}

func NewHandler(logger Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle POST /api/v1/bookings/draft/validate
// Витрина проверяет exit guard шага перед переходом дальше. Невыполненный
// guard — не ошибка HTTP: ответ 200 с valid=false и причиной.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ValidateDraftRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/draft/validate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	err := wizard.ValidateStep(wizard.Step(req.Step), &req.Draft)
	if err != nil {
		if errors.Is(err, wizard.ErrUnknownStep) {
			handlers.RespondBadRequest(w, msgUnknownStep)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, &ValidateDraftResponse{
			Valid:  false,
			Reason: err.Error(),
		})
		return
	}

	handlers.RespondJSON(w, http.StatusOK, &ValidateDraftResponse{Valid: true})
}
