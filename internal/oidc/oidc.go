// Package oidc verifies Keycloak-issued ID tokens for admin users who sign in
// through the identity provider instead of the local admin login.
package oidc

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/medbill/medbill-site/backend/api/pkg/middleware"
)

// IDToken is satisfied by *oidc.IDToken and by test fakes.
type IDToken interface {
	Claims(v interface{}) error
}

type claims struct {
	Subject           string `json:"sub"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

// AdminRole is the realm role that grants admin access.
const AdminRole = "admin"

// Identity maps token claims onto the middleware identity.
func Identity(tok IDToken) (middleware.Identity, error) {
	var c claims
	if err := tok.Claims(&c); err != nil {
		return middleware.Identity{}, fmt.Errorf("decode claims: %w", err)
	}
	if c.Subject == "" {
		return middleware.Identity{}, fmt.Errorf("token has no subject")
	}
	name := c.Name
	if name == "" {
		name = c.PreferredUsername
	}
	id := middleware.Identity{Subject: c.Subject, Email: c.Email, Name: name}
	for _, r := range c.RealmAccess.Roles {
		if r == AdminRole {
			id.Role = AdminRole
			break
		}
	}
	if id.Role == "" {
		return middleware.Identity{}, fmt.Errorf("subject %s lacks the %s role", c.Subject, AdminRole)
	}
	return id, nil
}

type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier discovers the provider at issuer.
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return &Verifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// Verify implements middleware.Verifier.
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Identity, error) {
	tok, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return middleware.Identity{}, err
	}
	return Identity(tok)
}
