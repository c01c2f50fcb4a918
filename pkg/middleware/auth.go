package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medbill/medbill-site/backend/api/pkg/logger"
)

// identityKey is the gin context key holding the verified admin Identity.
const identityKey = "identity"

// Identity is everything the API needs to know about a verified admin caller.
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role,omitempty"`
}

// Verifier checks a raw bearer token and returns the caller identity.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Identity, error)
}

// RevocationChecker reports whether an otherwise valid token was revoked (logout).
type RevocationChecker interface {
	IsRevoked(ctx context.Context, raw string) (bool, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, raw string) (Identity, error)

func (f VerifierFunc) Verify(ctx context.Context, raw string) (Identity, error) { return f(ctx, raw) }

func deny(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Access denied. " + reason})
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AuthMiddleware rejects the request with 401 unless the bearer token verifies
// and is not revoked. rev may be nil. Nothing downstream runs on rejection.
func AuthMiddleware(ver Verifier, rev RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			deny(c, "No token provided.")
			return
		}
		token, ok := BearerToken(auth)
		if !ok {
			deny(c, "Malformed authorization header.")
			return
		}
		if ver == nil {
			deny(c, "Authentication is not configured.")
			return
		}

		id, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			logger.Debugw("token rejected", "path", c.FullPath(), "err", err)
			deny(c, "Invalid token.")
			return
		}
		if rev != nil {
			revoked, err := rev.IsRevoked(c.Request.Context(), token)
			if err != nil {
				logger.Warnw("revocation check failed", "err", err)
				deny(c, "Unable to validate token.")
				return
			}
			if revoked {
				deny(c, "Token has been revoked.")
				return
			}
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthMiddleware.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// MultiVerifier accepts a token if any of its verifiers does, trying them in
// order. Nil entries are skipped.
type MultiVerifier []Verifier

func (m MultiVerifier) Verify(ctx context.Context, raw string) (Identity, error) {
	var errs []error
	for _, v := range m {
		if v == nil {
			continue
		}
		id, err := v.Verify(ctx, raw)
		if err == nil {
			return id, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Identity{}, errors.New("no verifier configured")
	}
	return Identity{}, errors.Join(errs...)
}
