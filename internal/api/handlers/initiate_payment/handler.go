package initiate_payment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/toykraft/consult-booking-service/internal/api/handlers"
	"github.com/toykraft/consult-booking-service/internal/api/middleware"
	"github.com/toykraft/consult-booking-service/internal/service/payments"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUnauthorized       = "пользователь не аутентифицирован"
	msgBookingNotFound    = "бронирование не найдено"
	msgAccessDenied       = "доступ к бронированию запрещён"
	msgAlreadyPaid        = "бронирование уже оплачено"
	msgPaymentFailed      = "не удалось создать платёж, попробуйте позже"
	msgInvalidAmount      = "некорректная сумма платежа"
)

// InitiatePaymentRequest HTTP request model
type InitiatePaymentRequest struct {
	Amount float64 `json:"amount"`
}

// InitiatePaymentResponse HTTP response model
type InitiatePaymentResponse struct {
	PaymentID   string `json:"paymentId"`
	CheckoutURL string `json:"checkoutUrl"`
}

type Handler struct {
	service PaymentsService
	logger  Logger
}

func NewHandler(service PaymentsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/payment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	bookingID := mux.Vars(r)["bookingId"]

	var req InitiatePaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/payment - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Initiate(r.Context(), bookingID, userID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/payment - Not found: booking_id=%s", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, payments.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/payment - Access denied: booking_id=%s, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, payments.ErrAlreadyPaid):
			h.logger.Warn("POST /bookings/{id}/payment - Already paid: booking_id=%s", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgAlreadyPaid)

		case errors.Is(err, payments.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidAmount)

		case errors.Is(err, payments.ErrPaymentFailed):
			h.logger.Error("POST /bookings/{id}/payment - Gateway rejected: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgPaymentFailed)

		default:
			h.logger.Error("POST /bookings/{id}/payment - Failed: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/payment - Payment initiated: booking_id=%s, payment_id=%s",
		bookingID, result.PaymentID)
	handlers.RespondJSON(w, http.StatusOK, &InitiatePaymentResponse{
		PaymentID:   result.PaymentID,
		CheckoutURL: result.CheckoutURL,
	})
}
