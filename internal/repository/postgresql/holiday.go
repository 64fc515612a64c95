package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) leave.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// Create implements leave.HolidayRepository.
func (h *holidayRepositoryImpl) Create(ctx context.Context, holiday leave.Holiday) (leave.Holiday, error) {
	q := GetQuerier(ctx, h.db)

	if holiday.ID == "" {
		holiday.ID = newID()
	}

	query := `
		INSERT INTO holidays (id, date, name)
		VALUES ($1, $2, $3)
		RETURNING id, date, name, created_at
	`
	var created leave.Holiday
	err := q.QueryRow(ctx, query, holiday.ID, leave.DateOnly(holiday.Date), holiday.Name).Scan(
		&created.ID, &created.Date, &created.Name, &created.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return leave.Holiday{}, leave.ErrHolidayExists
		}
		return leave.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}
	return created, nil
}

// Delete implements leave.HolidayRepository.
func (h *holidayRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, h.db)

	tag, err := q.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrHolidayNotFound
	}
	return nil
}

// ListBetween implements leave.HolidayRepository.
func (h *holidayRepositoryImpl) ListBetween(ctx context.Context, from, to time.Time) ([]leave.Holiday, error) {
	q := GetQuerier(ctx, h.db)

	query := `
		SELECT id, date, name, created_at
		FROM holidays
		WHERE date >= $1 AND date <= $2
		ORDER BY date
	`
	rows, err := q.Query(ctx, query, leave.DateOnly(from), leave.DateOnly(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	holidays := []leave.Holiday{}
	for rows.Next() {
		var hol leave.Holiday
		if err := rows.Scan(&hol.ID, &hol.Date, &hol.Name, &hol.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, hol)
	}
	return holidays, rows.Err()
}
