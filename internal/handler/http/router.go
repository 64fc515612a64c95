package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/time/rate"
)

// RouterOptions carries the settings NewRouter needs from the environment.
type RouterOptions struct {
	Env            string
	AllowedOrigins []string
	// LoginRate and LoginBurst bound login attempts per client IP.
	LoginRate  rate.Limit
	LoginBurst int
}

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Auth         AuthHandler
	Employee     EmployeeHandler
	Master       MasterHandler
	Leave        LeaveHandler
	Report       ReportHandler
	Notification NotificationHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-leave"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	loginRate, loginBurst := opts.LoginRate, opts.LoginBurst
	if loginRate == 0 {
		loginRate, loginBurst = rate.Limit(1), 5
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimitByIP(loginRate, loginBurst))
				r.Post("/register", h.Auth.Register)
				r.Post("/login", h.Auth.Login)
			})
			r.Get("/oauth/google", h.Auth.LoginWithGoogle)
			r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
		})

		// EventSource cannot set headers; the stream authenticates with an SSE token.
		r.Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Get("/auth/me", h.Auth.Me)
			r.Get("/notifications/token", h.Notification.GetSSEToken)

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", h.Master.ListDepartments)
				r.Get("/{id}", h.Master.GetDepartment)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeManage))
					r.Post("/", h.Master.CreateDepartment)
					r.Put("/{id}", h.Master.RenameDepartment)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionEmployeeViewAll)).Get("/", h.Employee.ListEmployees)
				r.With(middleware.RequirePermission(user.PermissionEmployeeViewAll)).Get("/{id}", h.Employee.GetEmployee)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeManage))
					r.Post("/", h.Employee.CreateEmployee)
					r.Post("/import", h.Employee.ImportEmployees)
					r.Put("/{id}", h.Employee.UpdateEmployee)
					r.Patch("/{id}/active", h.Employee.ToggleActive)
				})
			})

			r.Route("/leave", func(r chi.Router) {
				r.Get("/types", h.Leave.ListTypes)
				r.Get("/holidays", h.Leave.ListHolidays)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveManageTypes))
					r.Post("/types", h.Leave.CreateType)
					r.Put("/types/{id}", h.Leave.UpdateType)
					r.Post("/holidays", h.Leave.CreateHoliday)
					r.Delete("/holidays/{id}", h.Leave.DeleteHoliday)
				})

				r.Route("/balances", func(r chi.Router) {
					r.With(middleware.RequireEmployee).Get("/my", h.Leave.GetMyBalances)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveManageQuotas))
						r.Get("/", h.Leave.ListBalances)
						r.Put("/", h.Leave.UpsertBalance)
						r.Post("/credit", h.Leave.CreditBalance)
						r.Post("/provision", h.Leave.Provision)
					})
				})

				r.Route("/requests", func(r chi.Router) {
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireEmployee)
						r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", h.Leave.CreateRequest)
						r.With(middleware.RequirePermission(user.PermissionLeaveViewOwn)).Get("/my", h.Leave.GetMyRequests)
					})

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveViewTeam))
						r.Get("/team/pending", h.Leave.ListTeamPending)
						r.Get("/team/history", h.Leave.ListTeamHistory)
					})

					// Ownership and line management are checked by the service.
					r.Get("/{id}", h.Leave.GetRequest)
					r.Get("/{id}/attachment", h.Leave.GetAttachment)
					r.Post("/{id}/approve", h.Leave.ApproveRequest)
					r.Post("/{id}/reject", h.Leave.RejectRequest)
					r.Post("/{id}/cancel", h.Leave.CancelRequest)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.With(middleware.RequirePermission(user.PermissionReportsSummary)).Get("/summary", h.Report.GetLeaveSummary)
				r.Get("/leaves", h.Report.GetLeaveList)
				r.Get("/leave-balance", h.Report.GetLeaveBalanceReport)
			})
		})
	})

	return r
}
