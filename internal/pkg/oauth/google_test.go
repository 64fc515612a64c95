package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/cmlabs-hris/hris-leave-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGoogleService_GenerateState(t *testing.T) {
	svc := NewGoogleService(config.GoogleOAuthConfig{ClientID: "client-id"})

	a, err := svc.GenerateState()
	require.NoError(t, err)
	b, err := svc.GenerateState()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestGoogleService_AuthCodeURL(t *testing.T) {
	svc := NewGoogleService(config.GoogleOAuthConfig{
		ClientID:    "client-id",
		RedirectURL: "http://localhost:8080/api/v1/auth/oauth/callback/google",
		Scopes:      []string{"email"},
	})

	u, err := url.Parse(svc.AuthCodeURL("state-123"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "client-id", u.Query().Get("client_id"))
	assert.Equal(t, "state-123", u.Query().Get("state"))
	assert.Equal(t, "email", u.Query().Get("scope"))
}

func newGoogleServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"google-access","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer google-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GoogleProfile{GoogleID: "g-1", Email: "alice@example.com", VerifiedEmail: true})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGoogleService_ExchangeAndFetchProfile(t *testing.T) {
	srv := newGoogleServer(t)
	svc := &GoogleServiceImpl{
		config: &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		},
		userInfoURL: srv.URL + "/userinfo",
	}
	ctx := context.Background()

	token, err := svc.Exchange(ctx, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "google-access", token.AccessToken)

	profile, err := svc.FetchProfile(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, GoogleProfile{GoogleID: "g-1", Email: "alice@example.com", VerifiedEmail: true}, profile)

	_, err = svc.Exchange(ctx, "bad-code")
	assert.Error(t, err)

	_, err = svc.FetchProfile(ctx, &oauth2.Token{AccessToken: "stolen", TokenType: "Bearer"})
	assert.Error(t, err)
}
