package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/medbill/medbill-site/backend/api/internal/config"
	"github.com/medbill/medbill-site/backend/api/internal/events"
	"github.com/medbill/medbill-site/backend/api/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{Secret: strings.Repeat("k", 32), Issuer: "medbill-site", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour}
	cfg.Admin = config.AdminConfig{Email: "admin@example.com", Name: "Admin", PasswordHash: string(hash)}
	cfg.Upload = config.UploadConfig{ResumeMaxBytes: 5 << 20, MediaMaxBytes: 10 << 20}
	return cfg
}

func memoryBackends() *backends {
	return &backends{files: storage.NewMemoryStorage(""), pub: events.Noop{}}
}

func call(t *testing.T, r http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)
	var out map[string]any
	_ = json.Unmarshal(rw.Body.Bytes(), &out)
	return rw, out
}

func TestRouter_HealthReadySwagger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, err := buildRouter(context.Background(), testConfig(t), memoryBackends())
	require.NoError(t, err)

	rw, _ := call(t, r, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rw.Code)

	rw, body := call(t, r, http.MethodGet, "/ready", "", "")
	require.Equal(t, http.StatusOK, rw.Code)
	require.Equal(t, "ready", body["status"])
	require.Equal(t, "memory", body["deps"].(map[string]any)["mongo"])

	rw, _ = call(t, r, http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, rw.Code)

	rw, _ = call(t, r, http.MethodOptions, "/api/bookings", "", "")
	require.Equal(t, http.StatusOK, rw.Code)
	require.Equal(t, "*", rw.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_ReadyReportsRedisDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := mr.RunT(t)
	b := memoryBackends()
	b.redis = redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	r, err := buildRouter(context.Background(), testConfig(t), b)
	require.NoError(t, err)

	rw, _ := call(t, r, http.MethodGet, "/ready", "", "")
	require.Equal(t, http.StatusOK, rw.Code)

	m.Close()
	rw, body := call(t, r, http.MethodGet, "/ready", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rw.Code)
	require.Equal(t, "down", body["deps"].(map[string]any)["redis"])
}

type unreachableStore struct {
	*storage.MemoryStorage
}

func (unreachableStore) Ping(context.Context) error { return errors.New("bucket unreachable") }

func TestRouter_ReadyReportsStorageDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	b := memoryBackends()
	r, err := buildRouter(context.Background(), testConfig(t), b)
	require.NoError(t, err)
	_, body := call(t, r, http.MethodGet, "/ready", "", "")
	require.Equal(t, "memory", body["deps"].(map[string]any)["storage"])

	b.files = unreachableStore{storage.NewMemoryStorage("")}
	r, err = buildRouter(context.Background(), testConfig(t), b)
	require.NoError(t, err)
	rw, body := call(t, r, http.MethodGet, "/ready", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rw.Code)
	require.Equal(t, "down", body["deps"].(map[string]any)["storage"])
}

func TestRouter_PublicBookingThenAdminLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, err := buildRouter(context.Background(), testConfig(t), memoryBackends())
	require.NoError(t, err)

	rw, body := call(t, r, http.MethodPost, "/api/bookings",
		`{"name":"Jane Doe","email":"jane@x.com","phone":"555-1234","appointmentDate":"2099-01-01"}`, "")
	require.Equal(t, http.StatusOK, rw.Code)
	require.Equal(t, true, body["success"])

	rw, body = call(t, r, http.MethodGet, "/api/admin/bookings", "", "")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.Equal(t, false, body["success"])

	rw, body = call(t, r, http.MethodPost, "/api/admin/auth/login", `{"email":"admin@example.com","password":"admin-pass"}`, "")
	require.Equal(t, http.StatusOK, rw.Code)
	access := body["accessToken"].(string)

	rw, _ = call(t, r, http.MethodGet, "/api/admin/bookings", "", access)
	require.Equal(t, http.StatusOK, rw.Code)
	require.Contains(t, rw.Body.String(), "Jane Doe")

	rw, _ = call(t, r, http.MethodGet, "/api/services", "", "")
	require.Equal(t, http.StatusOK, rw.Code)
}

func TestRouter_RateLimitsPublicWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	r, err := buildRouter(context.Background(), cfg, memoryBackends())
	require.NoError(t, err)

	rw, _ := call(t, r, http.MethodPost, "/api/contacts", `{}`, "")
	require.NotEqual(t, http.StatusTooManyRequests, rw.Code)
	rw, _ = call(t, r, http.MethodPost, "/api/contacts", `{}`, "")
	require.Equal(t, http.StatusTooManyRequests, rw.Code)

	// reads are not limited
	for i := 0; i < 3; i++ {
		rw, _ = call(t, r, http.MethodGet, "/api/services", "", "")
		require.Equal(t, http.StatusOK, rw.Code)
	}
}
