package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/cache"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHolidays struct {
	holidays []leave.Holiday
	calls    int
	err      error
}

func (f *fakeHolidays) Create(_ context.Context, h leave.Holiday) (leave.Holiday, error) {
	h.ID = "new"
	f.holidays = append(f.holidays, h)
	return h, nil
}

func (f *fakeHolidays) Delete(_ context.Context, _ string) error { return nil }

func (f *fakeHolidays) ListBetween(_ context.Context, from, to time.Time) ([]leave.Holiday, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := []leave.Holiday{}
	for _, h := range f.holidays {
		if !h.Date.Before(from) && !h.Date.After(to) {
			out = append(out, h)
		}
	}
	return out, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHolidayRepository_ListBetween(t *testing.T) {
	ctx := context.Background()
	ttl := time.Hour
	nyepi := leave.Holiday{ID: "h1", Date: day(2025, time.March, 29), Name: "Nyepi"}
	xmas := leave.Holiday{ID: "h2", Date: day(2025, time.December, 25), Name: "Christmas"}

	t.Run("cache hit skips the store", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		next := &fakeHolidays{}
		repo := cache.NewHolidayRepository(next, rdb, ttl)

		payload, _ := json.Marshal([]leave.Holiday{nyepi, xmas})
		mock.ExpectGet(cache.GetHolidayKey(2025)).SetVal(string(payload))

		got, err := repo.ListBetween(ctx, day(2025, time.March, 1), day(2025, time.March, 31))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Nyepi", got[0].Name)
		assert.Equal(t, 0, next.calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cache miss loads the year and stores it", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		next := &fakeHolidays{holidays: []leave.Holiday{nyepi, xmas}}
		repo := cache.NewHolidayRepository(next, rdb, ttl)

		payload, _ := json.Marshal([]leave.Holiday{nyepi, xmas})
		mock.ExpectGet(cache.GetHolidayKey(2025)).RedisNil()
		mock.ExpectSet(cache.GetHolidayKey(2025), string(payload), ttl).SetVal("OK")

		got, err := repo.ListBetween(ctx, day(2025, time.December, 1), day(2025, time.December, 31))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Christmas", got[0].Name)
		assert.Equal(t, 1, next.calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("range across years reads both years", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		newYear := leave.Holiday{ID: "h3", Date: day(2026, time.January, 1), Name: "New Year"}
		repo := cache.NewHolidayRepository(&fakeHolidays{}, rdb, ttl)

		p2025, _ := json.Marshal([]leave.Holiday{xmas})
		p2026, _ := json.Marshal([]leave.Holiday{newYear})
		mock.ExpectGet(cache.GetHolidayKey(2025)).SetVal(string(p2025))
		mock.ExpectGet(cache.GetHolidayKey(2026)).SetVal(string(p2026))

		got, err := repo.ListBetween(ctx, day(2025, time.December, 20), day(2026, time.January, 5))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Christmas", got[0].Name)
		assert.Equal(t, "New Year", got[1].Name)
	})

	t.Run("store error is returned", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		repo := cache.NewHolidayRepository(&fakeHolidays{err: errors.New("db down")}, rdb, ttl)

		mock.ExpectGet(cache.GetHolidayKey(2025)).RedisNil()

		_, err := repo.ListBetween(ctx, day(2025, time.March, 1), day(2025, time.March, 31))
		assert.Error(t, err)
	})
}

func TestHolidayRepository_CreateInvalidatesYear(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	repo := cache.NewHolidayRepository(&fakeHolidays{}, rdb, time.Hour)

	mock.ExpectDel(cache.GetHolidayKey(2025)).SetVal(1)

	_, err := repo.Create(context.Background(), leave.Holiday{Date: day(2025, time.August, 17), Name: "Independence Day"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
