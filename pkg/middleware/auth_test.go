package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhub/pipeliner/pkg/services"
	"github.com/streamhub/pipeliner/pkg/storage"
)

func newTestMiddleware(t *testing.T) (*AuthMiddleware, string, string) {
	t.Helper()

	service := services.NewAccountService(storage.NewMemoryAccountStore())
	accountID, err := service.CreateAccount("testuser", "testpassword")
	require.NoError(t, err)

	account, err := service.GetAccount(accountID)
	require.NoError(t, err)

	return NewAuthMiddleware(service), accountID, account.APIToken
}

func okHandler(t *testing.T, wantAccountID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := GetAccountID(r)
		assert.True(t, ok)
		assert.Equal(t, wantAccountID, accountID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateBearerToken(t *testing.T) {
	m, accountID, token := newTestMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pipelines", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	m.Authenticate(okHandler(t, accountID)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateBasic(t *testing.T) {
	m, accountID, _ := newTestMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pipelines", nil)
	req.SetBasicAuth("testuser", "testpassword")
	rec := httptest.NewRecorder()

	m.Authenticate(okHandler(t, accountID)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateRejections(t *testing.T) {
	m, _, _ := newTestMiddleware(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	// Missing header
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	m.Authenticate(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Bad token
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	m.Authenticate(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unknown scheme
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Digest abc")
	rec = httptest.NewRecorder()
	m.Authenticate(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/pipelines", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	assert.False(t, limiter.IsLimited("client"))
	limiter.Record("client")
	limiter.Record("client")
	assert.False(t, limiter.IsLimited("client"))
	limiter.Record("client")
	assert.True(t, limiter.IsLimited("client"))

	// Other clients are unaffected
	assert.False(t, limiter.IsLimited("other"))
}
