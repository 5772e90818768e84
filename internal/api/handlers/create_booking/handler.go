package create_booking

import (
	"errors"
	"net/http"

	"github.com/toykraft/consult-booking-service/internal/api/handlers"
	"github.com/toykraft/consult-booking-service/internal/api/middleware"
	createBooking "github.com/toykraft/consult-booking-service/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDateOrTime   = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgUnauthorized        = "пользователь не аутентифицирован"
	msgInvalidInput        = "некорректные данные бронирования"
	msgInvalidSessionType  = "некорректный тип сессии"
	msgSlotNotAvailable    = "выбранный временной слот недоступен"
	msgOutsideWorkingHours = "выбранное время вне рабочих часов"
	msgTooSoon             = "слишком поздно для бронирования этого слота"
	msgDateTooFar          = "дата бронирования слишком далеко в будущем"
	msgRulesNotConfigured  = "правила планирования не настроены"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings - Slot not available: user_id=%d, start=%s", userID, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrOutsideWorkingHours):
			h.logger.Warn("POST /bookings - Outside working hours: user_id=%d, date=%s", userID, req.Date)
			handlers.RespondBadRequest(w, msgOutsideWorkingHours)

		case errors.Is(err, createBooking.ErrTooSoon):
			h.logger.Warn("POST /bookings - Too late to book: user_id=%d, start=%s", userID, req.StartTime)
			handlers.RespondBadRequest(w, msgTooSoon)

		case errors.Is(err, createBooking.ErrTooFarInFuture):
			h.logger.Warn("POST /bookings - Date too far in future: user_id=%d, date=%s", userID, req.Date)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrInvalidSessionType):
			h.logger.Warn("POST /bookings - Invalid session type: user_id=%d, type=%q", userID, req.SessionType)
			handlers.RespondBadRequest(w, msgInvalidSessionType)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, err=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrRulesNotConfigured):
			h.logger.Error("POST /bookings - Scheduling rules not configured")
			handlers.RespondError(w, http.StatusConflict, msgRulesNotConfigured)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%s, user_id=%d",
		result.Booking.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, handlers.NewBookingView(result.Booking))
}
