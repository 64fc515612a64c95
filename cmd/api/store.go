package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-leave-go/internal/config"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/master/department"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/cache"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/sqlite"
	"github.com/redis/go-redis/v9"
)

// store bundles the repositories for the configured driver.
type store struct {
	tx            database.Transactor
	users         user.UserRepository
	refreshTokens auth.RefreshTokenRepository
	employees     employee.EmployeeRepository
	departments   department.DepartmentRepository
	leaveTypes    leave.LeaveTypeRepository
	holidays      leave.HolidayRepository
	balances      leave.LeaveBalanceRepository
	requests      leave.LeaveRequestRepository
	reports       report.ReportRepository

	closers []func()
}

func (s *store) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	s := &store{}

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfigFrom(cfg.Database))
		if err != nil {
			return nil, fmt.Errorf("connect postgresql: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		if err := postgresql.Migrate(ctx, db); err != nil {
			s.Close()
			return nil, err
		}

		s.tx = postgresql.NewTransactor(db)
		s.users = postgresql.NewUserRepository(db)
		s.refreshTokens = postgresql.NewRefreshTokenRepository(db)
		s.employees = postgresql.NewEmployeeRepository(db)
		s.departments = postgresql.NewDepartmentRepository(db)
		s.leaveTypes = postgresql.NewLeaveTypeRepository(db)
		s.holidays = postgresql.NewHolidayRepository(db)
		s.balances = postgresql.NewLeaveBalanceRepository(db)
		s.requests = postgresql.NewLeaveRequestRepository(db)
		s.reports = postgresql.NewReportRepository(db)

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { db.Close() })

		s.tx = sqlite.NewTransactor(db)
		s.users = sqlite.NewUserRepository(db)
		s.refreshTokens = sqlite.NewRefreshTokenRepository(db)
		s.employees = sqlite.NewEmployeeRepository(db)
		s.departments = sqlite.NewDepartmentRepository(db)
		s.leaveTypes = sqlite.NewLeaveTypeRepository(db)
		s.holidays = sqlite.NewHolidayRepository(db)
		s.balances = sqlite.NewLeaveBalanceRepository(db)
		s.requests = sqlite.NewLeaveRequestRepository(db)
		s.reports = sqlite.NewReportRepository(db)

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			// The cache is optional; fall back to the database.
			slog.Warn("redis unavailable, holiday cache disabled", "addr", cfg.Redis.Addr, "error", err)
			rdb.Close()
		} else {
			s.closers = append(s.closers, func() { rdb.Close() })
			s.holidays = cache.NewHolidayRepository(s.holidays, rdb, cfg.Redis.TTL)
			slog.Info("holiday cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
		}
	}

	return s, nil
}
