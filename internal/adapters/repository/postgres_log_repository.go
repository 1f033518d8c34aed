package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/parsakhaledi/paydar/internal/core/calendar"
	"github.com/parsakhaledi/paydar/internal/core/domain"
)

type PostgresLogRepository struct {
	db *sqlx.DB
}

func NewPostgresLogRepository(db *sqlx.DB) *PostgresLogRepository {
	return &PostgresLogRepository{db: db}
}

// dateColumn picks the stored rendering to range over. Both columns hold
// YYYY-MM-DD text, so string comparison orders the same as the calendar.
func dateColumn(sys calendar.System) string {
	if sys == calendar.Persian {
		return "log_date_persian"
	}
	return "log_date"
}

// goalPredicate renders the habit's goal as a SQL comparison against the
// value column, with the target as a single bind parameter.
func goalPredicate(habit *domain.Habit) (op string, target int) {
	op = ">="
	if habit.Goal.Type == domain.GoalNumeric && habit.Goal.Comparison == domain.CompareExactly {
		op = "="
	}
	return op, habit.Goal.Target()
}

func (r *PostgresLogRepository) CountQualifying(ctx context.Context, habit *domain.Habit, from, to string, sys calendar.System) (int, error) {
	col := dateColumn(sys)
	op, target := goalPredicate(habit)

	var query strings.Builder
	fmt.Fprintf(&query, `SELECT COUNT(*) FROM habit_logs WHERE habit_id = $1 AND value %s $2`, op)
	args := []interface{}{habit.ID, target}

	if from != "" {
		args = append(args, from)
		fmt.Fprintf(&query, ` AND %s >= $%d`, col, len(args))
	}
	if to != "" {
		args = append(args, to)
		fmt.Fprintf(&query, ` AND %s <= $%d`, col, len(args))
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query.String(), args...); err != nil {
		return 0, fmt.Errorf("count qualifying logs: %w", err)
	}
	return count, nil
}

func (r *PostgresLogRepository) CountFailing(ctx context.Context, habit *domain.Habit, maxDate string) (int, error) {
	op, target := goalPredicate(habit)

	var query strings.Builder
	fmt.Fprintf(&query, `SELECT COUNT(*) FROM habit_logs WHERE habit_id = $1 AND NOT (value %s $2)`, op)
	args := []interface{}{habit.ID, target}

	if maxDate != "" {
		args = append(args, maxDate)
		fmt.Fprintf(&query, ` AND log_date <= $%d`, len(args))
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query.String(), args...); err != nil {
		return 0, fmt.Errorf("count failing logs: %w", err)
	}
	return count, nil
}

func (r *PostgresLogRepository) ListQualifyingDates(ctx context.Context, habit *domain.Habit, sys calendar.System, maxDate string, order domain.SortOrder) ([]string, error) {
	col := dateColumn(sys)
	op, target := goalPredicate(habit)

	direction := "ASC"
	if order == domain.Descending {
		direction = "DESC"
	}

	var query strings.Builder
	fmt.Fprintf(&query, `SELECT %s FROM habit_logs WHERE habit_id = $1 AND value %s $2`, col, op)
	args := []interface{}{habit.ID, target}

	if maxDate != "" {
		args = append(args, maxDate)
		fmt.Fprintf(&query, ` AND %s <= $%d`, col, len(args))
	}
	fmt.Fprintf(&query, ` ORDER BY %s %s`, col, direction)

	var dates []string
	if err := r.db.SelectContext(ctx, &dates, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list qualifying dates: %w", err)
	}
	return dates, nil
}

func (r *PostgresLogRepository) FindByDate(ctx context.Context, habitID, date string) (*domain.LogEntry, error) {
	query := `
        SELECT id, habit_id, log_date, log_date_persian, value, created_at, updated_at
        FROM habit_logs
        WHERE habit_id = $1 AND log_date = $2`

	var entry domain.LogEntry
	if err := r.db.GetContext(ctx, &entry, query, habitID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLogNotFound
		}
		return nil, fmt.Errorf("find log by date: %w", err)
	}
	return &entry, nil
}

func (r *PostgresLogRepository) MonthlyHistogram(ctx context.Context, habit *domain.Habit, sys calendar.System) (map[int]map[int]int, error) {
	col := dateColumn(sys)
	op, target := goalPredicate(habit)

	query := fmt.Sprintf(`
        SELECT CAST(substr(%s, 1, 4) AS INT)  AS year,
               CAST(substr(%s, 6, 2) AS INT)  AS month,
               COUNT(*)                       AS total
        FROM habit_logs
        WHERE habit_id = $1 AND value %s $2
        GROUP BY 1, 2`, col, col, op)

	rows, err := r.db.QueryContext(ctx, query, habit.ID, target)
	if err != nil {
		return nil, fmt.Errorf("monthly histogram: %w", err)
	}
	defer rows.Close()

	histogram := make(map[int]map[int]int)
	for rows.Next() {
		var year, month, total int
		if err := rows.Scan(&year, &month, &total); err != nil {
			return nil, fmt.Errorf("monthly histogram scan: %w", err)
		}
		if histogram[year] == nil {
			histogram[year] = make(map[int]int)
		}
		histogram[year][month] = total
	}
	return histogram, rows.Err()
}

func (r *PostgresLogRepository) Create(ctx context.Context, entry *domain.LogEntry) error {
	query := `
        INSERT INTO habit_logs (id, habit_id, log_date, log_date_persian, value, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.HabitID, entry.Date, entry.DatePersian, entry.Value,
		entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return domain.ErrDuplicateLog
			case "23503":
				return domain.ErrHabitNotFound
			}
		}
		return fmt.Errorf("failed to insert log: %w", err)
	}
	return nil
}

func (r *PostgresLogRepository) Update(ctx context.Context, entry *domain.LogEntry) error {
	query := `UPDATE habit_logs SET value = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, entry.Value, entry.UpdatedAt, entry.ID)
	if err != nil {
		return fmt.Errorf("failed to update log: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrLogNotFound
	}
	return nil
}

func (r *PostgresLogRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habit_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete log: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrLogNotFound
	}
	return nil
}

func (r *PostgresLogRepository) GetByID(ctx context.Context, id string) (*domain.LogEntry, error) {
	query := `
        SELECT id, habit_id, log_date, log_date_persian, value, created_at, updated_at
        FROM habit_logs
        WHERE id = $1`

	var entry domain.LogEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLogNotFound
		}
		return nil, fmt.Errorf("get log by id: %w", err)
	}
	return &entry, nil
}

func (r *PostgresLogRepository) ListByHabitID(ctx context.Context, habitID, from, to string) ([]*domain.LogEntry, error) {
	var query strings.Builder
	query.WriteString(`
        SELECT id, habit_id, log_date, log_date_persian, value, created_at, updated_at
        FROM habit_logs
        WHERE habit_id = $1`)
	args := []interface{}{habitID}

	if from != "" {
		args = append(args, from)
		fmt.Fprintf(&query, ` AND log_date >= $%d`, len(args))
	}
	if to != "" {
		args = append(args, to)
		fmt.Fprintf(&query, ` AND log_date <= $%d`, len(args))
	}
	query.WriteString(` ORDER BY log_date ASC`)

	var entries []*domain.LogEntry
	if err := r.db.SelectContext(ctx, &entries, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return entries, nil
}

func (r *PostgresLogRepository) DeleteOutsideRange(ctx context.Context, habitID, start, end string) error {
	var query strings.Builder
	query.WriteString(`DELETE FROM habit_logs WHERE habit_id = $1 AND (log_date < $2`)
	args := []interface{}{habitID, start}

	if end != "" {
		args = append(args, end)
		fmt.Fprintf(&query, ` OR log_date > $%d`, len(args))
	}
	query.WriteString(`)`)

	if _, err := r.db.ExecContext(ctx, query.String(), args...); err != nil {
		return fmt.Errorf("delete logs outside range: %w", err)
	}
	return nil
}

func (r *PostgresLogRepository) DeleteOnExcludedWeekdays(ctx context.Context, habitID string, allowed []string) error {
	if len(allowed) == 0 {
		return nil
	}

	// map names to Postgres DOW numbers (Sunday = 0)
	dows := make([]int, 0, len(allowed))
	for _, name := range allowed {
		wd, err := calendar.ParseWeekday(name)
		if err != nil {
			return err
		}
		dows = append(dows, int(wd))
	}

	query, args, err := sqlx.In(`
        DELETE FROM habit_logs
        WHERE habit_id = ?
          AND EXTRACT(DOW FROM to_date(log_date, 'YYYY-MM-DD')) NOT IN (?)`, habitID, dows)
	if err != nil {
		return fmt.Errorf("build weekday cleanup query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("delete logs on excluded weekdays: %w", err)
	}
	return nil
}
