package sales

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/toykraft/consult-booking-service/internal/domain"
	"github.com/toykraft/consult-booking-service/pkg/dbmetrics"
	"github.com/toykraft/consult-booking-service/pkg/psqlbuilder"
)

// Переиспользуем интерфейс исполнителя из dbmetrics
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий sales transactions
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория sales transactions
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает sales transaction для бронирования.
// sales_id генерируется из последовательности Postgres в формате "SL-NNNNNN".
// Вставка выполняется с ON CONFLICT (booking_id) DO NOTHING: если запись уже
// существует, возвращается ErrAlreadyRecorded — повторный вызов при
// дублирующемся завершении оплаты не создаёт вторую запись (check-then-act
// гонка закрыта на уровне constraint, а не предварительной проверки).
func (r *Repository) Create(ctx context.Context, tx *domain.SalesTransaction) (*domain.SalesTransaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("sales_transactions").
		Columns(
			"sales_id",
			"user_id",
			"booking_id",
			"amount",
			"source_type",
			"payment_status",
			"payment_gateway_id",
		).
		Values(
			squirrel.Expr("'SL-' || lpad(nextval('sales_transactions_seq')::text, 6, '0')"),
			tx.UserID,
			tx.BookingID,
			tx.Amount,
			tx.SourceType,
			tx.PaymentStatus,
			tx.PaymentGatewayID,
		).
		Suffix("ON CONFLICT (booking_id) DO NOTHING RETURNING sales_id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&tx.SalesID, &createdAt)

	// ON CONFLICT DO NOTHING без вставки не возвращает строку
	if err == sql.ErrNoRows {
		return nil, ErrAlreadyRecorded
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	tx.CreatedAt = createdAt.Time

	return tx, nil
}

// GetByBookingID получает sales transaction по ID бронирования
func (r *Repository) GetByBookingID(ctx context.Context, bookingID string) (*domain.SalesTransaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"sales_id",
		"user_id",
		"booking_id",
		"amount",
		"source_type",
		"payment_status",
		"payment_gateway_id",
		"created_at",
	).
		From("sales_transactions").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	var tx domain.SalesTransaction
	var createdAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&tx.SalesID,
		&tx.UserID,
		&tx.BookingID,
		&tx.Amount,
		&tx.SourceType,
		&tx.PaymentStatus,
		&tx.PaymentGatewayID,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingID - scan transaction: %v", ErrScanRow, err)
	}

	tx.CreatedAt = createdAt.Time

	return &tx, nil
}

// UpdatePaymentStatus обновляет статус оплаты записи (например, refunded)
func (r *Repository) UpdatePaymentStatus(ctx context.Context, bookingID string, status domain.PaymentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("sales_transactions").
		Set("payment_status", status).
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdatePaymentStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdatePaymentStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdatePaymentStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}
