package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/toykraft/consult-booking-service/internal/domain"
	"github.com/toykraft/consult-booking-service/pkg/dbmetrics"
	"github.com/toykraft/consult-booking-service/pkg/psqlbuilder"
)

// Переиспользуем интерфейс исполнителя из dbmetrics
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий конфигурации расписания:
// рабочие часы по дням недели и singleton правил планирования
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetWeekSchedule получает рабочие часы на все дни недели
func (r *Repository) GetWeekSchedule(ctx context.Context) (domain.WeekSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"day_of_week",
		"start_time",
		"end_time",
		"is_available",
		"created_at",
		"updated_at",
	).
		From("working_hours").
		OrderBy("day_of_week ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetWeekSchedule - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWeekSchedule - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	schedule := make(domain.WeekSchedule)
	for rows.Next() {
		var wh domain.WorkingHours
		var day int
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&wh.ID,
			&day,
			&wh.StartTime,
			&wh.EndTime,
			&wh.IsAvailable,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetWeekSchedule - scan row: %v", ErrScanRow, err)
		}

		wh.DayOfWeek = time.Weekday(day)
		wh.CreatedAt = createdAt.Time
		wh.UpdatedAt = updatedAt.Time
		schedule[wh.DayOfWeek] = &wh
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetWeekSchedule - rows error: %v", ErrScanRow, err)
	}

	return schedule, nil
}

// UpsertWorkingHours создает или обновляет строку рабочих часов дня недели
func (r *Repository) UpsertWorkingHours(ctx context.Context, wh *domain.WorkingHours) (*domain.WorkingHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("working_hours").
		Columns("day_of_week", "start_time", "end_time", "is_available").
		Values(int(wh.DayOfWeek), wh.StartTime, wh.EndTime, wh.IsAvailable).
		Suffix(`ON CONFLICT (day_of_week) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			is_available = EXCLUDED.is_available,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertWorkingHours - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&wh.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertWorkingHours - execute upsert: %v", ErrExecQuery, err)
	}

	wh.CreatedAt = createdAt.Time
	wh.UpdatedAt = updatedAt.Time

	return wh, nil
}

// GetRules получает singleton запись правил планирования
func (r *Repository) GetRules(ctx context.Context) (*domain.SchedulingRules, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"min_notice_hours",
		"max_booking_days",
		"buffer_minutes",
		"slot_duration_minutes",
		"created_at",
		"updated_at",
	).
		From("scheduling_rules").
		OrderBy("id ASC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetRules - build select query: %v", ErrBuildQuery, err)
	}

	var rules domain.SchedulingRules
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&rules.ID,
		&rules.MinNoticeHours,
		&rules.MaxBookingDays,
		&rules.BufferMinutes,
		&rules.SlotDurationMinutes,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrRulesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetRules - scan rules: %v", ErrScanRow, err)
	}

	rules.CreatedAt = createdAt.Time
	rules.UpdatedAt = updatedAt.Time

	return &rules, nil
}

// UpsertRules создает или обновляет singleton запись правил планирования.
// Уникальный индекс на константе гарантирует, что запись ровно одна.
func (r *Repository) UpsertRules(ctx context.Context, rules *domain.SchedulingRules) (*domain.SchedulingRules, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	existing, err := r.GetRules(ctx)
	if err != nil && err != ErrRulesNotFound {
		return nil, err
	}

	if existing == nil {
		query, args, err := psqlbuilder.Insert("scheduling_rules").
			Columns("min_notice_hours", "max_booking_days", "buffer_minutes", "slot_duration_minutes").
			Values(rules.MinNoticeHours, rules.MaxBookingDays, rules.BufferMinutes, rules.SlotDurationMinutes).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("%w: UpsertRules - build insert query: %v", ErrBuildQuery, err)
		}

		var createdAt, updatedAt sql.NullTime
		if err := executor.QueryRowContext(ctx, query, args...).Scan(&rules.ID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: UpsertRules - execute insert: %v", ErrExecQuery, err)
		}
		rules.CreatedAt = createdAt.Time
		rules.UpdatedAt = updatedAt.Time
		return rules, nil
	}

	query, args, err := psqlbuilder.Update("scheduling_rules").
		Set("min_notice_hours", rules.MinNoticeHours).
		Set("max_booking_days", rules.MaxBookingDays).
		Set("buffer_minutes", rules.BufferMinutes).
		Set("slot_duration_minutes", rules.SlotDurationMinutes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": existing.ID}).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertRules - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&rules.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: UpsertRules - execute update: %v", ErrExecQuery, err)
	}
	rules.CreatedAt = createdAt.Time
	rules.UpdatedAt = updatedAt.Time

	return rules, nil
}
