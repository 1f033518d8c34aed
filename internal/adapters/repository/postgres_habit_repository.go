package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/parsakhaledi/paydar/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var h domain.Habit
	var goalJSON, freqJSON []byte
	var endDate sql.NullString

	err := row.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Category,
		&goalJSON, &freqJSON,
		&h.StartDate, &endDate, &h.Reminder,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(goalJSON, &h.Goal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal goal: %w", err)
	}
	if err := json.Unmarshal(freqJSON, &h.Frequency); err != nil {
		return nil, fmt.Errorf("failed to unmarshal frequency: %w", err)
	}
	if endDate.Valid {
		h.EndDate = endDate.String
	}

	return &h, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	goalJSON, err := json.Marshal(h.Goal)
	if err != nil {
		return fmt.Errorf("failed to marshal goal: %w", err)
	}
	freqJSON, err := json.Marshal(h.Frequency)
	if err != nil {
		return fmt.Errorf("failed to marshal frequency: %w", err)
	}

	query := `
        INSERT INTO habits (
            id, user_id, name, category,
            goal, frequency,
            start_date, end_date, reminder,
            created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4,
            $5, $6,
            $7, $8, $9,
            $10, $11
        )`

	_, err = r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Name, h.Category,
		goalJSON, freqJSON,
		h.StartDate, nullable(h.EndDate), h.Reminder,
		h.CreatedAt, h.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return domain.ErrHabitInvalidUserID
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `
        SELECT id, user_id, name, category, goal, frequency,
               start_date, end_date, reminder, created_at, updated_at
        FROM habits WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	h, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `
        SELECT id, user_id, name, category, goal, frequency,
               start_date, end_date, reminder, created_at, updated_at
        FROM habits
        WHERE user_id = $1
        ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var habits []*domain.Habit

	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	goalJSON, err := json.Marshal(h.Goal)
	if err != nil {
		return fmt.Errorf("failed to marshal goal: %w", err)
	}
	freqJSON, err := json.Marshal(h.Frequency)
	if err != nil {
		return fmt.Errorf("failed to marshal frequency: %w", err)
	}

	query := `
        UPDATE habits SET
            name = $1, category = $2, goal = $3, frequency = $4,
            start_date = $5, end_date = $6, reminder = $7, updated_at = $8
        WHERE id = $9`

	res, err := r.db.ExecContext(ctx, query,
		h.Name, h.Category, goalJSON, freqJSON,
		h.StartDate, nullable(h.EndDate), h.Reminder, h.UpdatedAt,
		h.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	// habit_logs has ON DELETE CASCADE on habit_id
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}
