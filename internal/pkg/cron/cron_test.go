package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsImmediatelyAndOnInterval(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler()
	s.AddJob("tick", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	s.AddJob("panics", time.Hour, func(ctx context.Context) error {
		panic("boom")
	})

	s.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	s := NewScheduler()
	s.Stop()
}

func TestScheduler_RunOnce(t *testing.T) {
	var order []string
	s := NewScheduler()
	s.AddJob("a", time.Hour, func(ctx context.Context) error {
		order = append(order, "a")
		return errors.New("ignored")
	})
	s.AddJob("b", time.Hour, func(ctx context.Context) error {
		order = append(order, "b")
		return nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, []string{"a", "b"}, order)
}

type fakeProvisioner struct {
	leave.Provisioner
	years []int
	err   error
}

func (f *fakeProvisioner) ProvisionYear(ctx context.Context, year int) (leave.ProvisionResponse, error) {
	f.years = append(f.years, year)
	return leave.ProvisionResponse{Year: year}, f.err
}

func TestLeaveJobs_ProvisionBalances(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want []int
	}{
		{"mid year", time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC), []int{2025}},
		{"december", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), []int{2025, 2026}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvisioner{}
			jobs := NewLeaveJobs(p, 0, func() time.Time { return tt.now })

			require.NoError(t, jobs.ProvisionBalances(context.Background()))
			assert.Equal(t, tt.want, p.years)
			assert.Equal(t, 24*time.Hour, jobs.interval)
		})
	}
}

func TestLeaveJobs_ProvisionBalances_Error(t *testing.T) {
	p := &fakeProvisioner{err: errors.New("db down")}
	jobs := NewLeaveJobs(p, time.Hour, func() time.Time {
		return time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	})

	assert.EqualError(t, jobs.ProvisionBalances(context.Background()), "db down")
	assert.Equal(t, []int{2025}, p.years)
}

func TestLeaveJobs_RegisterJobs(t *testing.T) {
	s := NewScheduler()
	NewLeaveJobs(&fakeProvisioner{}, time.Hour, time.Now).RegisterJobs(s)

	require.Len(t, s.jobs, 1)
	assert.Equal(t, "provision_leave_balances", s.jobs[0].Name)
	assert.Equal(t, time.Hour, s.jobs[0].Interval)
}
