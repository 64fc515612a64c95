package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
)

type holidayRepository struct {
	db *sql.DB
}

func NewHolidayRepository(db *sql.DB) leave.HolidayRepository {
	return &holidayRepository{db: db}
}

func (r *holidayRepository) Create(ctx context.Context, holiday leave.Holiday) (leave.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	if holiday.ID == "" {
		holiday.ID = newID()
	}

	_, err := q.ExecContext(ctx, `INSERT INTO holidays (id, date, name) VALUES (?, ?, ?)`,
		holiday.ID, dateArg(holiday.Date), holiday.Name)
	if err != nil {
		if isUniqueViolation(err, "holidays.date") {
			return leave.Holiday{}, leave.ErrHolidayExists
		}
		return leave.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}

	var created leave.Holiday
	err = q.QueryRowContext(ctx, `SELECT id, date, name, created_at FROM holidays WHERE id = ?`, holiday.ID).
		Scan(&created.ID, &created.Date, &created.Name, &created.CreatedAt)
	if err != nil {
		return leave.Holiday{}, err
	}
	return created, nil
}

func (r *holidayRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return leave.ErrHolidayNotFound
	}
	return nil
}

func (r *holidayRepository) ListBetween(ctx context.Context, from, to time.Time) ([]leave.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, `
		SELECT id, date, name, created_at FROM holidays
		WHERE date >= ? AND date <= ?
		ORDER BY date
	`, dateArg(from), dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	holidays := []leave.Holiday{}
	for rows.Next() {
		var h leave.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
