package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/toykraft/consult-booking-service/internal/config"
	"github.com/toykraft/consult-booking-service/internal/domain"
	bookingstorage "github.com/toykraft/consult-booking-service/internal/infra/storage/booking"
	"github.com/toykraft/consult-booking-service/internal/integrations/paymentgateway"
	"github.com/toykraft/consult-booking-service/pkg/ptr"
)

const defaultBatchSize = 50

// Worker — фоновая сверка платежей. Два cron-прохода:
//   - retry: доприменяет подтверждённые платежи, у которых обновление
//     бронирования упало после оплаты (записи outbox в статусе pending);
//   - expire: разбирает бронирования, зависшие в payment_status=pending
//     дольше настроенного окна.
type Worker struct {
	cfg       config.ReconciliationConfig
	reconRepo ReconciliationRepository
	bookings  BookingRepository
	gateway   GatewayClient
	applier   PaymentApplier
	timeProv  TimeProvider
	logger    Logger

	cron *cron.Cron
}

func NewWorker(
	cfg config.ReconciliationConfig,
	reconRepo ReconciliationRepository,
	bookings BookingRepository,
	gateway GatewayClient,
	applier PaymentApplier,
	timeProv TimeProvider,
	logger Logger,
) *Worker {
	return &Worker{
		cfg:       cfg,
		reconRepo: reconRepo,
		bookings:  bookings,
		gateway:   gateway,
		applier:   applier,
		timeProv:  timeProv,
		logger:    logger,
	}
}

// Start регистрирует cron-задачи и запускает планировщик
func (w *Worker) Start() error {
	if !w.cfg.Enabled {
		w.logger.Info("[Reconciler] Сверка платежей выключена в конфигурации")
		return nil
	}

	w.cron = cron.New()

	if _, err := w.cron.AddFunc(w.cfg.RetrySpec, func() {
		w.RunRetrySweep(context.Background())
	}); err != nil {
		return fmt.Errorf("failed to schedule retry sweep: %w", err)
	}

	if _, err := w.cron.AddFunc(w.cfg.ExpireSpec, func() {
		w.RunExpireSweep(context.Background())
	}); err != nil {
		return fmt.Errorf("failed to schedule expire sweep: %w", err)
	}

	w.cron.Start()
	w.logger.Info("[Reconciler] Сверка платежей запущена: retry=%q, expire=%q, pending_window=%dh",
		w.cfg.RetrySpec, w.cfg.ExpireSpec, w.cfg.PendingPaymentHours)

	return nil
}

// Stop останавливает планировщик и дожидается завершения текущих проходов
func (w *Worker) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
	w.logger.Info("[Reconciler] Сверка платежей остановлена")
}

// RunRetrySweep доприменяет pending-записи outbox
func (w *Worker) RunRetrySweep(ctx context.Context) {
	batch := w.cfg.RetryBatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	entries, err := w.reconRepo.ListPending(ctx, batch)
	if err != nil {
		w.logger.Error("[Reconciler.Retry] Ошибка чтения очереди: %v", err)
		return
	}
	if len(entries) == 0 {
		return
	}

	w.logger.Info("[Reconciler.Retry] Неприменённых платежей: %d", len(entries))

	for _, entry := range entries {
		if _, err := w.applier.ApplyPayment(ctx, entry.BookingID, entry.PaymentID, entry.Amount); err != nil {
			w.logger.Error("[Reconciler.Retry] Применение снова упало: payment_id=%s, booking_id=%s, attempts=%d, err=%v",
				entry.PaymentID, entry.BookingID, entry.Attempts+1, err)
			if markErr := w.reconRepo.MarkFailedAttempt(ctx, entry.PaymentID, err); markErr != nil {
				w.logger.Error("[Reconciler.Retry] Не удалось отметить попытку: payment_id=%s, err=%v",
					entry.PaymentID, markErr)
			}
			continue
		}

		if err := w.reconRepo.MarkApplied(ctx, entry.PaymentID); err != nil {
			w.logger.Error("[Reconciler.Retry] Платёж применён, но outbox не обновлён: payment_id=%s, err=%v",
				entry.PaymentID, err)
			continue
		}

		w.logger.Info("[Reconciler.Retry] Платёж доприменён: payment_id=%s, booking_id=%s",
			entry.PaymentID, entry.BookingID)
	}
}

// RunExpireSweep разбирает бронирования, зависшие в pending дольше окна.
// Если у бронирования есть платёж и провайдер подтверждает успех — оплата
// доприменяется (потерянный webhook). Иначе оплата помечается failed,
// бронирование отменяется и слот освобождается.
func (w *Worker) RunExpireSweep(ctx context.Context) {
	batch := w.cfg.RetryBatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	olderThan := w.timeProv.Now().Add(-time.Duration(w.cfg.PendingPaymentHours) * time.Hour)

	stale, err := w.bookings.ListStalePendingPayments(ctx, olderThan, batch)
	if err != nil {
		w.logger.Error("[Reconciler.Expire] Ошибка чтения зависших бронирований: %v", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	w.logger.Info("[Reconciler.Expire] Зависших pending-бронирований: %d", len(stale))

	for _, b := range stale {
		if w.recoverLostWebhook(ctx, b) {
			continue
		}
		w.expireBooking(ctx, b)
	}
}

// recoverLostWebhook проверяет платёж у провайдера и доприменяет успех.
// Возвращает true, если бронирование разобрано.
func (w *Worker) recoverLostWebhook(ctx context.Context, b *domain.Booking) bool {
	if b.PaymentID == nil || *b.PaymentID == "" {
		return false
	}

	charge, err := w.gateway.GetCharge(ctx, *b.PaymentID)
	if err != nil {
		w.logger.Warn("[Reconciler.Expire] Не удалось проверить платёж у провайдера: booking_id=%s, payment_id=%s, err=%v",
			b.ID, *b.PaymentID, err)
		return false
	}

	if charge.Status != paymentgateway.ChargeStatusSucceeded {
		return false
	}

	if _, err := w.applier.ApplyPayment(ctx, b.ID, charge.ID, charge.Amount); err != nil {
		w.logger.Error("[Reconciler.Expire] Платёж подтверждён провайдером, но применение упало: booking_id=%s, err=%v",
			b.ID, err)
		return true
	}

	w.logger.Info("[Reconciler.Expire] Восстановлен потерянный webhook: booking_id=%s, payment_id=%s",
		b.ID, charge.ID)
	return true
}

func (w *Worker) expireBooking(ctx context.Context, b *domain.Booking) {
	if _, err := w.bookings.Update(ctx, b.ID, bookingstorage.UpdatePatch{
		Status:           ptr.Ptr(domain.StatusCancelled),
		PaymentStatus:    ptr.Ptr(domain.PaymentFailed),
		ClearMeetingLink: true,
	}); err != nil {
		w.logger.Error("[Reconciler.Expire] Не удалось отменить зависшее бронирование: booking_id=%s, err=%v",
			b.ID, err)
		return
	}

	w.logger.Info("[Reconciler.Expire] Зависшее бронирование отменено, слот освобождён: booking_id=%s, created_at=%s",
		b.ID, b.CreatedAt.Format(time.RFC3339))
}
