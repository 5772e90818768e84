package reconciliation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/toykraft/consult-booking-service/pkg/dbmetrics"
	"github.com/toykraft/consult-booking-service/pkg/psqlbuilder"
)

// Переиспользуем интерфейс исполнителя из dbmetrics
type DBExecutor = dbmetrics.DBExecutor

// Entry durable-запись "платёж подтверждён, обновление бронирования ожидает
// применения". Пишется ДО попытки применить оплату к бронированию (outbox):
// если применение упало, фоновая сверка повторит его по известному payment_id.
type Entry struct {
	PaymentID string
	BookingID string
	Amount    float64
	Status    string // pending | applied
	Attempts  int
	LastError *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Статусы записи сверки
const (
	StatusPending = "pending"
	StatusApplied = "applied"
)

// Repository репозиторий очереди сверки платежей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория сверки
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Record фиксирует подтверждённый платёж до применения к бронированию.
// Идемпотентен по payment_id: повторная доставка webhook не создаёт дубликат.
func (r *Repository) Record(ctx context.Context, paymentID, bookingID string, amount float64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payment_reconciliation").
		Columns("payment_id", "booking_id", "amount", "status").
		Values(paymentID, bookingID, amount, StatusPending).
		Suffix("ON CONFLICT (payment_id) DO NOTHING").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Record - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Record - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// MarkApplied помечает запись применённой после успешного обновления бронирования
func (r *Repository) MarkApplied(ctx context.Context, paymentID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payment_reconciliation").
		Set("status", StatusApplied).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"payment_id": paymentID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkApplied - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkApplied - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkApplied - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

// MarkFailedAttempt увеличивает счётчик попыток и сохраняет текст ошибки
func (r *Repository) MarkFailedAttempt(ctx context.Context, paymentID string, attemptErr error) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payment_reconciliation").
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", attemptErr.Error()).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"payment_id": paymentID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkFailedAttempt - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkFailedAttempt - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// ListPending получает необработанные записи сверки (старейшие первыми)
func (r *Repository) ListPending(ctx context.Context, limit int) ([]*Entry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"payment_id",
		"booking_id",
		"amount",
		"status",
		"attempts",
		"last_error",
		"created_at",
		"updated_at",
	).
		From("payment_reconciliation").
		Where(squirrel.Eq{"status": StatusPending}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListPending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPending - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		var e Entry
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&e.PaymentID,
			&e.BookingID,
			&e.Amount,
			&e.Status,
			&e.Attempts,
			&e.LastError,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListPending - scan row: %v", ErrScanRow, err)
		}

		e.CreatedAt = createdAt.Time
		e.UpdatedAt = updatedAt.Time
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListPending - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}
