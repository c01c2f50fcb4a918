package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Identity, error) {
	if raw == "goodtoken" || raw == "revoked-token" {
		return Identity{Subject: "admin-1", Email: "admin@example.com", Role: "admin"}, nil
	}
	return Identity{}, fmt.Errorf("invalid token")
}

type fakeRevocations map[string]bool

func (f fakeRevocations) IsRevoked(ctx context.Context, raw string) (bool, error) {
	return f[raw], nil
}

func newProtected(rev RevocationChecker, reached *bool) *gin.Engine {
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}, rev), func(c *gin.Context) {
		*reached = true
		id, ok := IdentityFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"identity": id})
	})
	return g
}

func TestAuthMiddleware_RejectsBeforeHandler(t *testing.T) {
	cases := map[string]string{
		"no header":      "",
		"wrong scheme":   "Basic abc",
		"missing token":  "Bearer ",
		"invalid token":  "Bearer badtoken",
		"revoked token":  "Bearer revoked-token",
		"garbage header": "BadHeader",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			reached := false
			g := newProtected(fakeRevocations{"revoked-token": true}, &reached)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rw := httptest.NewRecorder()
			g.ServeHTTP(rw, req)

			require.Equal(t, http.StatusUnauthorized, rw.Code)
			require.False(t, reached)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
			require.Equal(t, false, body["success"])
			require.Contains(t, body["message"], "Access denied")
		})
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	reached := false
	g := newProtected(nil, &reached)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
	require.True(t, reached)
	var got struct {
		Identity Identity `json:"identity"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "admin-1", got.Identity.Subject)
}

func TestAuthMiddleware_NilVerifierDenies(t *testing.T) {
	g := gin.New()
	g.GET("/", AuthMiddleware(nil, nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("bearer abc.def")
	require.True(t, ok)
	require.Equal(t, "abc.def", tok)

	_, ok = BearerToken("Token abc")
	require.False(t, ok)
}

func TestMultiVerifier(t *testing.T) {
	second := VerifierFunc(func(ctx context.Context, raw string) (Identity, error) {
		if raw == "oidc-token" {
			return Identity{Subject: "kc-1", Role: "admin"}, nil
		}
		return Identity{}, fmt.Errorf("not an oidc token")
	})
	m := MultiVerifier{nil, &fakeVerifier{}, second}

	id, err := m.Verify(context.Background(), "goodtoken")
	require.NoError(t, err)
	require.Equal(t, "admin-1", id.Subject)

	id, err = m.Verify(context.Background(), "oidc-token")
	require.NoError(t, err)
	require.Equal(t, "kc-1", id.Subject)

	_, err = m.Verify(context.Background(), "nope")
	require.Error(t, err)

	_, err = MultiVerifier{}.Verify(context.Background(), "goodtoken")
	require.Error(t, err)
}
