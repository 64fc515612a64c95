package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newJWT(t *testing.T) jwt.Service {
	t.Helper()
	svc, err := jwt.NewJWTService("test-secret", "1h", "24h")
	require.NoError(t, err)
	return svc
}

func protected(svc jwt.Service, permission *user.Permission) http.Handler {
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Header().Set("X-User", actor.UserID)
		if actor.EmployeeID != nil {
			w.Header().Set("X-Employee", *actor.EmployeeID)
		}
		w.WriteHeader(http.StatusOK)
	})

	var h http.Handler = final
	if permission != nil {
		h = RequirePermission(*permission)(h)
	}
	return jwtauth.Verifier(svc.JWTAuth())(AuthRequired(h))
}

func TestAuthRequired(t *testing.T) {
	svc := newJWT(t)
	employeeID := "emp-1"
	access, _, err := svc.GenerateAccessToken("user-1", "ana@example.com", &employeeID, user.RoleEmployee)
	require.NoError(t, err)
	refresh, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"access token", access, http.StatusOK},
		{"refresh token rejected", refresh, http.StatusUnauthorized},
		{"missing token", "", http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			protected(svc, nil).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "user-1", rec.Header().Get("X-User"))
				assert.Equal(t, "emp-1", rec.Header().Get("X-Employee"))
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	svc := newJWT(t)
	perm := user.PermissionLeaveManageTypes

	for role, want := range map[user.Role]int{
		user.RoleEmployee: http.StatusForbidden,
		user.RoleManager:  http.StatusForbidden,
		user.RoleHR:       http.StatusOK,
		user.RoleAdmin:    http.StatusOK,
	} {
		token, _, err := svc.GenerateAccessToken("u", "u@example.com", nil, role)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected(svc, &perm).ServeHTTP(rec, req)

		assert.Equal(t, want, rec.Code, role)
	}
}

func TestRateLimitByIP(t *testing.T) {
	h := RateLimitByIP(rate.Limit(0.001), 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1000"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1002"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:1000"))
}
