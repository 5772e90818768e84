package payment_webhook

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/toykraft/consult-booking-service/internal/api/handlers"
	"github.com/toykraft/consult-booking-service/internal/service/payments"
)

const signatureHeader = "X-Webhook-Signature"

// События провайдера
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
	EventPaymentRefunded  = "payment.refunded"
)

const (
	msgInvalidSignature   = "некорректная подпись webhook"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUnknownEvent       = "неизвестный тип события"
	msgAccepted           = "платёж записан, применение будет выполнено фоновой сверкой"
	msgBookingNotFound    = "бронирование не найдено"
	msgNotRefundable      = "платёж не подлежит возврату"
)

// WebhookRequest тело callback'а провайдера
type WebhookRequest struct {
	Event     string  `json:"event"`
	PaymentID string  `json:"paymentId"`
	BookingID string  `json:"bookingId"`
	Amount    float64 `json:"amount"`
	Reason    string  `json:"reason,omitempty"`
}

// AcceptedResponse тело ответа 202
type AcceptedResponse struct {
	Status string `json:"status"`
}

type Handler struct {
	service PaymentsService
	secret  string
	logger  Logger
}

func NewHandler(service PaymentsService, secret string, logger Logger) *Handler {
	return &Handler{
		service: service,
		secret:  secret,
		logger:  logger,
	}
}

// Handle POST /api/v1/payments/webhook
// Провайдер вызывает ровно одно из событий: payment.succeeded или
// payment.failed. Ошибка применения успешного платежа НЕ означает "платёж
// не принят": возвращается 202, доделает фоновая сверка.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if !h.verifySignature(r) {
		h.logger.Warn("POST /payments/webhook - Invalid signature from %s", r.RemoteAddr)
		handlers.RespondError(w, http.StatusUnauthorized, msgInvalidSignature)
		return
	}

	var req WebhookRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /payments/webhook - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	switch req.Event {
	case EventPaymentSucceeded:
		h.handleSuccess(w, r, &req)

	case EventPaymentRefunded:
		h.handleRefund(w, r, &req)

	case EventPaymentFailed:
		if err := h.service.HandleFailure(r.Context(), req.PaymentID, req.BookingID, req.Reason); err != nil {
			h.logger.Error("POST /payments/webhook - Failure handling error: payment_id=%s, err=%v",
				req.PaymentID, err)
			handlers.RespondInternalError(w)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, nil)

	default:
		h.logger.Warn("POST /payments/webhook - Unknown event: %q", req.Event)
		handlers.RespondBadRequest(w, msgUnknownEvent)
	}
}

func (h *Handler) handleSuccess(w http.ResponseWriter, r *http.Request, req *WebhookRequest) {
	booking, err := h.service.HandleSuccess(r.Context(), req.PaymentID, req.BookingID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrReconciliationPending):
			// Платёж durably записан: провайдеру нельзя отвечать ошибкой,
			// иначе он будет ретраить уже принятый платёж
			h.logger.Warn("POST /payments/webhook - Applied deferred: payment_id=%s, booking_id=%s",
				req.PaymentID, req.BookingID)
			handlers.RespondJSON(w, http.StatusAccepted, &AcceptedResponse{Status: msgAccepted})

		case errors.Is(err, payments.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /payments/webhook - Failed: payment_id=%s, err=%v", req.PaymentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payments/webhook - Payment applied: payment_id=%s, booking_id=%s",
		req.PaymentID, booking.ID)
	handlers.RespondJSON(w, http.StatusOK, handlers.NewBookingView(booking))
}

func (h *Handler) handleRefund(w http.ResponseWriter, r *http.Request, req *WebhookRequest) {
	booking, err := h.service.HandleRefund(r.Context(), req.PaymentID, req.BookingID)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, payments.ErrNotRefundable):
			handlers.RespondError(w, http.StatusConflict, msgNotRefundable)

		case errors.Is(err, payments.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /payments/webhook - Refund failed: payment_id=%s, err=%v", req.PaymentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payments/webhook - Refund applied: payment_id=%s, booking_id=%s",
		req.PaymentID, booking.ID)
	handlers.RespondJSON(w, http.StatusOK, handlers.NewBookingView(booking))
}

func (h *Handler) verifySignature(r *http.Request) bool {
	if h.secret == "" {
		return true
	}
	got := r.Header.Get(signatureHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) == 1
}
