package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/medbill/medbill-site/backend/api/internal/admins"
	"github.com/medbill/medbill-site/backend/api/internal/config"
	"github.com/medbill/medbill-site/backend/api/internal/sessions"
	"github.com/medbill/medbill-site/backend/api/internal/tokens"
	"github.com/medbill/medbill-site/backend/api/pkg/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type authFixture struct {
	router    *gin.Engine
	blacklist *sessions.Blacklist
	issuer    *tokens.Issuer
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	adm := admins.NewService(admins.NewMemoryRepository())
	_, err = adm.Upsert(context.Background(), "Admin@Example.com", "Admin", string(hash))
	require.NoError(t, err)

	issuer, err := tokens.NewIssuer(config.JWTConfig{Secret: testSecret, Issuer: "medbill-test", AccessTokenTTL: time.Minute})
	require.NoError(t, err)

	m := mr.RunT(t)
	bl := sessions.NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	h := NewAuthHandler(adm, sessions.NewService(sessions.NewMemoryRepository(), time.Hour), issuer, bl)

	r := gin.New()
	api := r.Group("/api")
	h.Register(api.Group("/admin"))
	admin := api.Group("/admin", middleware.AuthMiddleware(issuer, bl))
	h.RegisterProtected(admin)
	return authFixture{router: r, blacklist: bl, issuer: issuer}
}

func postJSON(t *testing.T, r http.Handler, path string, body any, bearer string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)
	var out map[string]any
	_ = json.Unmarshal(rw.Body.Bytes(), &out)
	return rw, out
}

func getWithToken(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)
	return rw
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)
	rw, body := postJSON(t, f.router, "/api/admin/auth/login", LoginRequest{Email: "admin@example.com", Password: "s3cret-pass"}, "")
	require.Equal(t, http.StatusOK, rw.Code)
	require.Equal(t, true, body["success"])
	require.NotEmpty(t, body["accessToken"])
	require.NotEmpty(t, body["refreshToken"])
	require.EqualValues(t, 60, body["expiresIn"])
	user := body["user"].(map[string]any)
	require.Equal(t, "admin@example.com", user["email"])
	require.Equal(t, "admin", user["role"])

	me := getWithToken(f.router, "/api/admin/auth/me", body["accessToken"].(string))
	require.Equal(t, http.StatusOK, me.Code)
	require.Contains(t, me.Body.String(), "admin@example.com")
}

func TestLogin_Rejections(t *testing.T) {
	f := newAuthFixture(t)
	cases := map[string]struct {
		req  LoginRequest
		code int
	}{
		"wrong password": {LoginRequest{Email: "admin@example.com", Password: "nope"}, http.StatusUnauthorized},
		"unknown email":  {LoginRequest{Email: "ghost@example.com", Password: "s3cret-pass"}, http.StatusUnauthorized},
		"missing fields": {LoginRequest{Email: "admin@example.com"}, http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rw, body := postJSON(t, f.router, "/api/admin/auth/login", tc.req, "")
			require.Equal(t, tc.code, rw.Code)
			require.Equal(t, false, body["success"])
			require.NotContains(t, body, "accessToken")
		})
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	f := newAuthFixture(t)
	_, login := postJSON(t, f.router, "/api/admin/auth/login", LoginRequest{Email: "admin@example.com", Password: "s3cret-pass"}, "")
	first := login["refreshToken"].(string)

	rw, body := postJSON(t, f.router, "/api/admin/auth/refresh", map[string]string{"refreshToken": first}, "")
	require.Equal(t, http.StatusOK, rw.Code)
	second := body["refreshToken"].(string)
	require.NotEqual(t, first, second)
	require.NotEmpty(t, body["accessToken"])

	rw, _ = postJSON(t, f.router, "/api/admin/auth/refresh", map[string]string{"refreshToken": first}, "")
	require.Equal(t, http.StatusUnauthorized, rw.Code)

	rw, _ = postJSON(t, f.router, "/api/admin/auth/refresh", map[string]string{}, "")
	require.Equal(t, http.StatusBadRequest, rw.Code)
}

func TestLogout_RevokesAccessAndRefresh(t *testing.T) {
	f := newAuthFixture(t)
	_, login := postJSON(t, f.router, "/api/admin/auth/login", LoginRequest{Email: "admin@example.com", Password: "s3cret-pass"}, "")
	access := login["accessToken"].(string)
	refresh := login["refreshToken"].(string)

	rw, body := postJSON(t, f.router, "/api/admin/auth/logout", map[string]string{"refreshToken": refresh}, access)
	require.Equal(t, http.StatusOK, rw.Code)
	require.Equal(t, true, body["success"])

	revoked, err := f.blacklist.IsRevoked(context.Background(), access)
	require.NoError(t, err)
	require.True(t, revoked)
	require.Equal(t, http.StatusUnauthorized, getWithToken(f.router, "/api/admin/auth/me", access).Code)

	rw, _ = postJSON(t, f.router, "/api/admin/auth/refresh", map[string]string{"refreshToken": refresh}, "")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestLogout_WithoutTokensSucceeds(t *testing.T) {
	f := newAuthFixture(t)
	rw, body := postJSON(t, f.router, "/api/admin/auth/logout", map[string]string{}, "")
	require.Equal(t, http.StatusOK, rw.Code)
	require.Equal(t, true, body["success"])
}

func TestLogin_NotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(admins.NewService(admins.NewMemoryRepository()), sessions.NewService(sessions.NewMemoryRepository(), 0), nil, nil)
	r := gin.New()
	h.Register(r.Group("/api/admin"))
	rw, body := postJSON(t, r, "/api/admin/auth/login", LoginRequest{Email: "a@b.c", Password: "x"}, "")
	require.Equal(t, http.StatusServiceUnavailable, rw.Code)
	require.Equal(t, false, body["success"])
}
