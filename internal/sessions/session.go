// Package sessions keeps admin refresh sessions and the access token blacklist
// consulted by the auth middleware.
package sessions

import "time"

// Session is a refresh session for one admin login.
type Session struct {
	RefreshToken string    `bson:"_id" json:"refreshToken"`
	Subject      string    `bson:"sub" json:"sub"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	Role         string    `bson:"role" json:"role"`
	ExpiresAt    time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}
