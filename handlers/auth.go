package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medbill/medbill-site/backend/api/internal/admins"
	"github.com/medbill/medbill-site/backend/api/internal/apierr"
	"github.com/medbill/medbill-site/backend/api/internal/sessions"
	"github.com/medbill/medbill-site/backend/api/internal/tokens"
	"github.com/medbill/medbill-site/backend/api/pkg/logger"
	"github.com/medbill/medbill-site/backend/api/pkg/middleware"
)

// Revoker blacklists an access token for ttl.
type Revoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthHandler serves the local admin login. blacklist may be nil, in which
// case logout only ends the refresh session.
type AuthHandler struct {
	admins    *admins.Service
	sessions  *sessions.Service
	issuer    *tokens.Issuer
	blacklist Revoker
	now       func() time.Time
}

func NewAuthHandler(a *admins.Service, s *sessions.Service, issuer *tokens.Issuer, blacklist Revoker) *AuthHandler {
	return &AuthHandler{admins: a, sessions: s, issuer: issuer, blacklist: blacklist, now: time.Now}
}

// Register mounts login, refresh and logout under rg/auth. They are public.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
}

// RegisterProtected mounts routes that need a verified admin.
func (h *AuthHandler) RegisterProtected(rg *gin.RouterGroup) {
	rg.GET("/auth/me", h.Me)
}

func (h *AuthHandler) configured(c *gin.Context) bool {
	if h.issuer == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Admin login is not configured"})
		return false
	}
	return true
}

func (h *AuthHandler) tokenPair(c *gin.Context, id middleware.Identity, refresh string) {
	access, _, err := h.issuer.Issue(id)
	if err != nil {
		apierr.Respond(c, apierr.Persistence("issue access token", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"accessToken":  access,
		"refreshToken": refresh,
		"expiresIn":    int(h.issuer.TTL().Seconds()),
		"user":         id,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		apierr.Respond(c, apierr.Validation("Email and password are required"))
		return
	}
	id, err := h.admins.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, admins.ErrInvalidCredentials) {
			logger.Infow("admin login failed", "email", req.Email)
			apierr.Respond(c, apierr.Unauthorized("Invalid email or password"))
			return
		}
		apierr.Respond(c, apierr.Persistence("authenticate admin", err))
		return
	}
	refresh, _, err := h.sessions.Create(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, apierr.Persistence("create session", err))
		return
	}
	logger.Infow("admin logged in", "sub", id.Subject)
	h.tokenPair(c, id, refresh)
}

// Refresh rotates the refresh token and issues a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		apierr.Respond(c, apierr.Validation("refreshToken is required"))
		return
	}
	id, next, _, err := h.sessions.Rotate(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, sessions.ErrInvalidSession) {
			apierr.Respond(c, apierr.Unauthorized("Invalid or expired refresh token"))
			return
		}
		apierr.Respond(c, apierr.Persistence("refresh session", err))
		return
	}
	h.tokenPair(c, id, next)
}

// Logout ends the refresh session and blacklists the presented access token
// for its remaining lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)

	if raw, ok := middleware.BearerToken(c.GetHeader("Authorization")); ok && h.blacklist != nil && h.issuer != nil {
		if claims, err := h.issuer.Parse(raw); err == nil && claims.ExpiresAt != nil {
			ttl := claims.ExpiresAt.Time.Sub(h.now())
			if err := h.blacklist.Revoke(c.Request.Context(), raw, ttl); err != nil {
				apierr.Respond(c, apierr.Persistence("blacklist access token", err))
				return
			}
		}
	}
	if req.RefreshToken != "" {
		if err := h.sessions.Delete(c.Request.Context(), req.RefreshToken); err != nil {
			apierr.Respond(c, apierr.Persistence("delete session", err))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.Respond(c, apierr.Unauthorized("Access denied."))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": id})
}
