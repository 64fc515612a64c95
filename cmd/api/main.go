package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/config"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-leave-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/hris-leave-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/broker"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/storage"
	serviceAuth "github.com/cmlabs-hris/hris-leave-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/hris-leave-go/internal/service/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/service/file"
	"github.com/cmlabs-hris/hris-leave-go/internal/service/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/service/master"
	notificationService "github.com/cmlabs-hris/hris-leave-go/internal/service/notification"
	reportService "github.com/cmlabs-hris/hris-leave-go/internal/service/report"
	"golang.org/x/time/rate"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.App.LogLevel)})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close()

	if _, err := fixtures.SeedLeaveTypes(ctx, repos.leaveTypes); err != nil {
		return err
	}
	if cfg.Admin.Email != "" {
		hash, err := serviceAuth.HashPassword(cfg.Admin.Password)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		if _, err := fixtures.EnsureAdmin(ctx, repos.users, cfg.Admin.Email, hash); err != nil {
			return err
		}
	}

	loc := cfg.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}
	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("init local storage: %w", err)
	}
	fileService := file.NewFileService(fileStorage, cfg.Leave.MaxAttachmentSize)

	// Notification sinks
	hub := sse.NewHub()
	emailSvc, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("init email service: %w", err)
	}
	sinks := []notification.Sink{
		notificationService.NewSSESink(hub),
		notificationService.NewEmailSink(emailSvc),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		writer := broker.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		publisher := broker.NewPublisher(writer)
		defer publisher.Close()
		sinks = append(sinks, notificationService.NewBrokerSink(publisher))
		slog.Info("kafka event stream enabled", "brokers", strings.Join(cfg.Kafka.Brokers, ","), "topic", cfg.Kafka.Topic)
	}
	notifier := notificationService.NewNotificationService(notificationService.Config{}, sinks...)
	defer notifier.Stop()

	// Leave engine
	ledger := leave.NewLedger(repos.balances)
	calendar := leave.NewCalendar(repos.holidays)
	requestValidator := leave.NewValidator(calendar, ledger, repos.requests)
	adminService := leave.NewAdminService(repos.tx, repos.leaveTypes, repos.holidays, repos.balances, repos.employees, ledger)
	requestService := leave.NewRequestService(repos.tx, repos.leaveTypes, repos.requests, repos.employees, requestValidator, ledger, fileService, notifier)

	var googleService oauth.GoogleService
	if cfg.Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.Google)
		slog.Info("google sign-in enabled", "redirect_url", cfg.Google.RedirectURL)
	}

	authService := serviceAuth.NewAuthService(repos.tx, repos.users, repos.refreshTokens, repos.employees, JWTService, adminService, clock)
	employeeSvc := employeeService.NewEmployeeService(repos.tx, repos.employees, repos.users, repos.departments, repos.refreshTokens, adminService, clock)
	masterService := master.NewMasterService(repos.departments)
	reportSvc := reportService.NewReportService(repos.reports, repos.requests)

	// Background jobs
	scheduler := cron.NewScheduler()
	cron.NewLeaveJobs(adminService, cfg.Leave.ProvisionInterval, clock).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		Env:            cfg.App.Env,
		AllowedOrigins: cfg.App.AllowedOrigins,
		LoginRate:      rate.Every(12 * time.Second),
		LoginBurst:     5,
	}, JWTService, appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(JWTService, authService, googleService, cfg.App.FrontendURL),
		Employee:     appHTTP.NewEmployeeHandler(employeeSvc),
		Master:       appHTTP.NewMasterHandler(masterService),
		Leave:        appHTTP.NewLeaveHandler(requestService, adminService, fileService, clock),
		Report:       appHTTP.NewReportHandler(reportSvc, clock),
		Notification: appHTTP.NewNotificationHandler(JWTService, hub),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", server.Addr, "driver", cfg.Database.Driver, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
