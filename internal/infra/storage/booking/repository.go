package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/toykraft/consult-booking-service/internal/domain"
	"github.com/toykraft/consult-booking-service/pkg/dbmetrics"
	"github.com/toykraft/consult-booking-service/pkg/psqlbuilder"
)

// pqExclusionViolation код ошибки Postgres при нарушении exclusion constraint
const pqExclusionViolation = "23P01"

var bookingColumns = []string{
	"id",
	"user_id",
	"session_type",
	"start_time",
	"end_time",
	"child_name",
	"child_age",
	"concerns",
	"special_notes",
	"amount_paid",
	"payment_status",
	"payment_id",
	"booking_status",
	"meeting_link",
	"host_notes",
	"rescheduled_from",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// UpdatePatch частичное обновление бронирования.
// nil-поля не изменяются. ClearMeetingLink/ClearPaymentID выставляют NULL.
type UpdatePatch struct {
	Status           *domain.BookingStatus
	PaymentStatus    *domain.PaymentStatus
	PaymentID        *string
	AmountPaid       *float64
	MeetingLink      *string
	ClearMeetingLink bool
	HostNotes        *string
	StartTime        *time.Time
	EndTime          *time.Time
	RescheduledFrom  *string
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция (через context.Value),
// использует её — так create_booking сочетает проверку доступности и вставку
// в одной сериализуемой транзакции.
// Нарушение exclusion constraint пересечения интервалов мапится в ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"id",
			"user_id",
			"session_type",
			"start_time",
			"end_time",
			"child_name",
			"child_age",
			"concerns",
			"special_notes",
			"amount_paid",
			"payment_status",
			"payment_id",
			"booking_status",
			"meeting_link",
			"host_notes",
			"rescheduled_from",
		).
		Values(
			b.ID,
			b.UserID,
			b.SessionType,
			b.StartTime,
			b.EndTime,
			b.ChildName,
			b.ChildAge,
			b.Concerns,
			b.SpecialNotes,
			b.AmountPaid,
			b.PaymentStatus,
			b.PaymentID,
			b.Status,
			b.MeetingLink,
			b.HostNotes,
			b.RescheduledFrom,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)

	if err != nil {
		if isExclusionViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	booking, err := scanBooking(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// List получает бронирования по фильтру.
// Если вызов идёт внутри транзакции и фильтр ограничен одной датой,
// добавляет FOR UPDATE — так create_booking блокирует бронирования дня
// на время авторитетной проверки доступности слота.
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings")

	if filter.UserID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}

	// Фильтрация по периоду (start_time попадает в [StartDate, EndDate))
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"start_time": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_time": *filter.EndDate})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"booking_status": *filter.Status})
	} else if filter.OnlyBlocking {
		blockingStatusStrings := make([]string, len(domain.BlockingStatuses))
		for i, s := range domain.BlockingStatuses {
			blockingStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"booking_status": blockingStatusStrings})
	}

	if filter.PaymentStatus != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"payment_status": *filter.PaymentStatus})
	}

	selectBuilder = selectBuilder.OrderBy("start_time ASC")

	// Блокировка строк дня для авторитетной проверки внутри транзакции
	if dbmetrics.IsInTransaction(ctx) && filter.StartDate != nil && filter.EndDate != nil {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Update применяет частичное обновление и возвращает обновлённое бронирование
func (r *Repository) Update(ctx context.Context, id string, patch UpdatePatch) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("updated_at", squirrel.Expr("NOW()"))

	touched := false
	if patch.Status != nil {
		updateBuilder = updateBuilder.Set("booking_status", *patch.Status)
		touched = true
	}
	if patch.PaymentStatus != nil {
		updateBuilder = updateBuilder.Set("payment_status", *patch.PaymentStatus)
		touched = true
	}
	if patch.PaymentID != nil {
		updateBuilder = updateBuilder.Set("payment_id", *patch.PaymentID)
		touched = true
	}
	if patch.AmountPaid != nil {
		updateBuilder = updateBuilder.Set("amount_paid", *patch.AmountPaid)
		touched = true
	}
	if patch.ClearMeetingLink {
		updateBuilder = updateBuilder.Set("meeting_link", nil)
		touched = true
	} else if patch.MeetingLink != nil {
		updateBuilder = updateBuilder.Set("meeting_link", *patch.MeetingLink)
		touched = true
	}
	if patch.HostNotes != nil {
		updateBuilder = updateBuilder.Set("host_notes", *patch.HostNotes)
		touched = true
	}
	if patch.StartTime != nil {
		updateBuilder = updateBuilder.Set("start_time", *patch.StartTime)
		touched = true
	}
	if patch.EndTime != nil {
		updateBuilder = updateBuilder.Set("end_time", *patch.EndTime)
		touched = true
	}
	if patch.RescheduledFrom != nil {
		updateBuilder = updateBuilder.Set("rescheduled_from", *patch.RescheduledFrom)
		touched = true
	}

	if !touched {
		return nil, ErrEmptyPatch
	}

	query, args, err := updateBuilder.
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(bookingColumns)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	booking, err := scanBooking(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		if isExclusionViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: Update - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// ListStalePendingPayments получает бронирования, застрявшие в payment_status=pending
// дольше указанного срока. Используется фоновой сверкой для истечения.
func (r *Repository) ListStalePendingPayments(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"payment_status": domain.PaymentPending}).
		Where(squirrel.Eq{"booking_status": domain.StatusConfirmed}).
		Where(squirrel.Lt{"created_at": olderThan}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListStalePendingPayments - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListStalePendingPayments - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// scanBooking сканирует одну строку в domain.Booking
func scanBooking(scan func(dest ...interface{}) error) (*domain.Booking, error) {
	var b domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := scan(
		&b.ID,
		&b.UserID,
		&b.SessionType,
		&b.StartTime,
		&b.EndTime,
		&b.ChildName,
		&b.ChildAge,
		&b.Concerns,
		&b.SpecialNotes,
		&b.AmountPaid,
		&b.PaymentStatus,
		&b.PaymentID,
		&b.Status,
		&b.MeetingLink,
		&b.HostNotes,
		&b.RescheduledFrom,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqExclusionViolation
	}
	return false
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
