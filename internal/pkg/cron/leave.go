package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
)

// LeaveJobs keeps every active employee provisioned with default balances.
type LeaveJobs struct {
	provisioner leave.Provisioner
	interval    time.Duration
	now         func() time.Time
}

// NewLeaveJobs creates the leave cron jobs. now should return the time in
// the company's timezone.
func NewLeaveJobs(provisioner leave.Provisioner, interval time.Duration, now func() time.Time) *LeaveJobs {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &LeaveJobs{
		provisioner: provisioner,
		interval:    interval,
		now:         now,
	}
}

func (j *LeaveJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("provision_leave_balances", j.interval, j.ProvisionBalances)
}

// ProvisionBalances seeds the current year. In December the next year is
// seeded too, so requests crossing into January can be approved.
func (j *LeaveJobs) ProvisionBalances(ctx context.Context) error {
	now := j.now()

	years := []int{now.Year()}
	if now.Month() == time.December {
		years = append(years, now.Year()+1)
	}

	for _, year := range years {
		result, err := j.provisioner.ProvisionYear(ctx, year)
		if err != nil {
			return err
		}
		if result.BalancesCreated > 0 {
			slog.Info("Leave balances provisioned",
				"year", result.Year,
				"employees", result.Employees,
				"balances_created", result.BalancesCreated,
			)
		}
	}
	return nil
}
