package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

var halfDay = decimal.RequireFromString("0.5")

// HolidaySet is a read-only snapshot of non-working dates.
type HolidaySet map[time.Time]struct{}

func NewHolidaySet(holidays []leave.Holiday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		set[leave.DateOnly(h.Date)] = struct{}{}
	}
	return set
}

func (s HolidaySet) Contains(date time.Time) bool {
	_, ok := s[leave.DateOnly(date)]
	return ok
}

// IsChargeable reports whether date is a weekday that is not a holiday.
func (s HolidaySet) IsChargeable(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !s.Contains(date)
}

// WorkingDaysByYear counts chargeable days in [start, end] per calendar year.
// A half-day request must be a single date and always yields 0.5. An empty
// map is returned when end is before start.
func (s HolidaySet) WorkingDaysByYear(start, end time.Time, isHalfDay bool) (leave.DaysByYear, error) {
	start, end = leave.DateOnly(start), leave.DateOnly(end)

	if isHalfDay {
		if !start.Equal(end) {
			return nil, leave.ErrHalfDayRange
		}
		return leave.DaysByYear{start.Year(): halfDay}, nil
	}

	days := leave.DaysByYear{}
	one := decimal.NewFromInt(1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if s.IsChargeable(d) {
			days[d.Year()] = days[d.Year()].Add(one)
		}
	}
	return days, nil
}

// WorkingDays is the total of WorkingDaysByYear.
func (s HolidaySet) WorkingDays(start, end time.Time, isHalfDay bool) (decimal.Decimal, error) {
	byYear, err := s.WorkingDaysByYear(start, end, isHalfDay)
	if err != nil {
		return decimal.Zero, err
	}
	return byYear.Total(), nil
}

// Calendar loads holiday snapshots from the holiday store.
type Calendar struct {
	holidays leave.HolidayRepository
}

func NewCalendar(holidays leave.HolidayRepository) *Calendar {
	return &Calendar{holidays: holidays}
}

// Snapshot returns the holidays falling in [start, end].
func (c *Calendar) Snapshot(ctx context.Context, start, end time.Time) (HolidaySet, error) {
	if end.Before(start) {
		return HolidaySet{}, nil
	}
	holidays, err := c.holidays.ListBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}
	return NewHolidaySet(holidays), nil
}

func (c *Calendar) WorkingDaysByYear(ctx context.Context, start, end time.Time, isHalfDay bool) (leave.DaysByYear, error) {
	set, err := c.Snapshot(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return set.WorkingDaysByYear(start, end, isHalfDay)
}

func (c *Calendar) WorkingDays(ctx context.Context, start, end time.Time, isHalfDay bool) (decimal.Decimal, error) {
	byYear, err := c.WorkingDaysByYear(ctx, start, end, isHalfDay)
	if err != nil {
		return decimal.Zero, err
	}
	return byYear.Total(), nil
}
