package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/toykraft/consult-booking-service/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/toykraft/consult-booking-service/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/toykraft/consult-booking-service/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/toykraft/consult-booking-service/internal/api/handlers/get_booking"
	getScheduleConfigHandler "github.com/toykraft/consult-booking-service/internal/api/handlers/get_schedule_config"
	getUserBookingsHandler "github.com/toykraft/consult-booking-service/internal/api/handlers/get_user_bookings"
	initiatePaymentHandler "github.com/toykraft/consult-booking-service/internal/api/handlers/initiate_payment"
	paymentWebhookHandler "github.com/toykraft/consult-booking-service/internal/api/handlers/payment_webhook"
	rescheduleBookingHandler "github.com/toykraft/consult-booking-service/internal/api/handlers/reschedule_booking"
	updateBookingStatusHandler "github.com/toykraft/consult-booking-service/internal/api/handlers/update_booking_status"
	updateScheduleConfigHandler "github.com/toykraft/consult-booking-service/internal/api/handlers/update_schedule_config"
	validateDraftHandler "github.com/toykraft/consult-booking-service/internal/api/handlers/validate_draft"
	"github.com/toykraft/consult-booking-service/internal/api/middleware"
	"github.com/toykraft/consult-booking-service/internal/config"
	"github.com/toykraft/consult-booking-service/internal/domain"
	bookingRepo "github.com/toykraft/consult-booking-service/internal/infra/storage/booking"
	reconciliationRepo "github.com/toykraft/consult-booking-service/internal/infra/storage/reconciliation"
	salesRepo "github.com/toykraft/consult-booking-service/internal/infra/storage/sales"
	scheduleRepo "github.com/toykraft/consult-booking-service/internal/infra/storage/schedule"
	paymentGatewayClient "github.com/toykraft/consult-booking-service/internal/integrations/paymentgateway"
	bookingsService "github.com/toykraft/consult-booking-service/internal/service/bookings"
	paymentsService "github.com/toykraft/consult-booking-service/internal/service/payments"
	scheduleService "github.com/toykraft/consult-booking-service/internal/service/schedule"
	completePaymentUC "github.com/toykraft/consult-booking-service/internal/usecase/complete_payment"
	createBookingUC "github.com/toykraft/consult-booking-service/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/toykraft/consult-booking-service/internal/usecase/get_available_slots"
	"github.com/toykraft/consult-booking-service/internal/worker/reconciler"
	"github.com/toykraft/consult-booking-service/pkg/dbmetrics"
	"github.com/toykraft/consult-booking-service/pkg/logger"
	"github.com/toykraft/consult-booking-service/pkg/metrics"
	"github.com/toykraft/consult-booking-service/pkg/simpletxmanager"
	"github.com/toykraft/consult-booking-service/pkg/txmanager"
)

// paymentApplier адаптирует complete_payment use case к интерфейсу
// PaymentApplier сервиса платежей и фоновой сверки
type paymentApplier struct {
	uc *completePaymentUC.UseCase
}

func (a *paymentApplier) ApplyPayment(ctx context.Context, bookingID, paymentID string, amount float64) (*domain.Booking, error) {
	resp, err := a.uc.Execute(ctx, &completePaymentUC.Request{
		BookingID: bookingID,
		PaymentID: paymentID,
		Amount:    amount,
	})
	if err != nil {
		return nil, err
	}
	return resp.Booking, nil
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting consult-booking-service...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Клиент платёжного провайдера
	gatewayClient := paymentGatewayClient.NewClient(
		cfg.PaymentGateway.URL,
		cfg.PaymentGateway.APIKey,
		time.Duration(cfg.PaymentGateway.Timeout)*time.Second,
		log,
	)
	log.Info("Payment gateway client initialized (url=%s, timeout=%ds)",
		cfg.PaymentGateway.URL, cfg.PaymentGateway.Timeout)

	// Интерфейс для transaction manager (используется в usecases и сервисах)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}

	// Инициализируем репозитории и transaction manager (с метриками или без)
	var (
		bookingRepository  *bookingRepo.Repository
		scheduleRepository *scheduleRepo.Repository
		salesRepository    *salesRepo.Repository
		reconRepository    *reconciliationRepo.Repository
		txMgr              TxManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		salesRepository = salesRepo.NewRepository(wrappedDB)
		reconRepository = reconciliationRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		salesRepository = salesRepo.NewRepository(db)
		reconRepository = reconciliationRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	timeProvider := &getAvailableSlotsUC.RealTimeProvider{}
	idGenerator := &createBookingUC.UUIDGenerator{}

	// Инициализируем сервисы
	scheduleSvc := scheduleService.NewService(scheduleRepository, log)
	bookingsSvc := bookingsService.NewService(
		bookingRepository,
		scheduleSvc,
		txMgr,
		timeProvider,
		idGenerator,
		log,
	)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		scheduleSvc,
		timeProvider,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		scheduleSvc,
		txMgr,
		timeProvider,
		idGenerator,
		log,
	)
	completePaymentUseCase := completePaymentUC.NewUseCase(
		bookingRepository,
		salesRepository,
		txMgr,
		log,
	)

	applier := &paymentApplier{uc: completePaymentUseCase}
	paymentsSvc := paymentsService.NewService(
		bookingRepository,
		gatewayClient,
		reconRepository,
		salesRepository,
		applier,
		log,
	)

	// Фоновая сверка платежей
	reconWorker := reconciler.NewWorker(
		cfg.Reconciliation,
		reconRepository,
		bookingRepository,
		gatewayClient,
		applier,
		timeProvider,
		log,
	)
	if err := reconWorker.Start(); err != nil {
		log.Fatal("Failed to start reconciliation worker: %v", err)
	}

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingsSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingsSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingsSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingsSvc, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(bookingsSvc, log)
	initiatePayment := initiatePaymentHandler.NewHandler(paymentsSvc, log)
	paymentWebhook := paymentWebhookHandler.NewHandler(paymentsSvc, cfg.PaymentGateway.WebhookSecret, log)
	getScheduleConfig := getScheduleConfigHandler.NewHandler(scheduleSvc, log)
	updateScheduleConfig := updateScheduleConfigHandler.NewHandler(scheduleSvc, log)
	validateDraft := validateDraftHandler.NewHandler(log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")

		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты на дату
	api.HandleFunc("/slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Конфигурация расписания
	api.HandleFunc("/schedule", getScheduleConfig.Handle).Methods(http.MethodGet)

	// Callback платёжного провайдера (защищён подписью, не X-User-ID)
	api.HandleFunc("/payments/webhook", paymentWebhook.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/draft/validate", validateDraft.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/payment", initiatePayment.Handle).Methods(http.MethodPost)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление расписанием (для администратора) ---
	protected.HandleFunc("/schedule/working-hours", updateScheduleConfig.HandleWorkingHours).Methods(http.MethodPut)
	protected.HandleFunc("/schedule/rules", updateScheduleConfig.HandleRules).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновую сверку
	reconWorker.Stop()

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
