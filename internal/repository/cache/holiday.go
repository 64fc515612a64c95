// Package cache decorates repositories with a Redis read-through cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	HolidayKeyPrefix  = "leave:holidays:"
	DefaultHolidayTTL = 6 * time.Hour
)

// GetHolidayKey returns the cache key of one calendar year of holidays.
func GetHolidayKey(year int) string {
	return HolidayKeyPrefix + strconv.Itoa(year)
}

type holidayRepository struct {
	next leave.HolidayRepository
	rdb  *redis.Client
	sf   *singleflight.Group
	ttl  time.Duration
}

// NewHolidayRepository caches whole years of holidays. Writes go to next and
// drop the cached year.
func NewHolidayRepository(next leave.HolidayRepository, rdb *redis.Client, ttl time.Duration) leave.HolidayRepository {
	if ttl <= 0 {
		ttl = DefaultHolidayTTL
	}
	return &holidayRepository{
		next: next,
		rdb:  rdb,
		sf:   &singleflight.Group{},
		ttl:  ttl,
	}
}

func (r *holidayRepository) Create(ctx context.Context, holiday leave.Holiday) (leave.Holiday, error) {
	created, err := r.next.Create(ctx, holiday)
	if err != nil {
		return leave.Holiday{}, err
	}
	r.invalidate(ctx, created.Date.Year())
	return created, nil
}

// Delete drops every cached year since the deleted date is not known here.
func (r *holidayRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}

	iter := r.rdb.Scan(ctx, 0, HolidayKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.ErrorContext(ctx, "failed to scan holiday cache", "error", err)
		return nil
	}
	if len(keys) > 0 {
		if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to invalidate holiday cache", "keys", keys, "error", err)
		}
	}
	return nil
}

func (r *holidayRepository) ListBetween(ctx context.Context, from, to time.Time) ([]leave.Holiday, error) {
	from, to = leave.DateOnly(from), leave.DateOnly(to)

	holidays := []leave.Holiday{}
	for year := from.Year(); year <= to.Year(); year++ {
		yearly, err := r.year(ctx, year)
		if err != nil {
			return nil, err
		}
		for _, h := range yearly {
			d := leave.DateOnly(h.Date)
			if !d.Before(from) && !d.After(to) {
				holidays = append(holidays, h)
			}
		}
	}
	return holidays, nil
}

func (r *holidayRepository) year(ctx context.Context, year int) ([]leave.Holiday, error) {
	cacheKey := GetHolidayKey(year)

	if cached, err := r.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var holidays []leave.Holiday
		if json.Unmarshal([]byte(cached), &holidays) == nil {
			return holidays, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		slog.WarnContext(ctx, "holiday cache unavailable", "key", cacheKey, "error", err)
	}

	v, err, _ := r.sf.Do(cacheKey, func() (interface{}, error) {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

		holidays, err := r.next.ListBetween(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("load holidays of %d: %w", year, err)
		}

		if jsonData, err := json.Marshal(holidays); err == nil {
			if err := r.rdb.Set(ctx, cacheKey, string(jsonData), r.ttl).Err(); err != nil {
				slog.WarnContext(ctx, "failed to cache holidays", "key", cacheKey, "error", err)
			}
		}
		return holidays, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]leave.Holiday), nil
}

func (r *holidayRepository) invalidate(ctx context.Context, year int) {
	cacheKey := GetHolidayKey(year)
	if err := r.rdb.Del(ctx, cacheKey).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to invalidate holiday cache", "key", cacheKey, "error", err)
	}
}
