package tokenstore

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Record is a persisted backend session token.
type Record struct {
	Token     string    `yaml:"token" json:"token"`
	PiUID     string    `yaml:"pi_uid,omitempty" json:"pi_uid,omitempty"`
	SavedAt   time.Time `yaml:"saved_at" json:"saved_at"`
	ExpiresAt time.Time `yaml:"expires_at,omitempty" json:"expires_at,omitzero"`
}

// NewRecord builds a record for token, reading the expiry from the token's
// claims when it is a JWT.
func NewRecord(token, piUID string) Record {
	return Record{
		Token:     token,
		PiUID:     piUID,
		SavedAt:   time.Now().UTC(),
		ExpiresAt: TokenExpiry(token),
	}
}

// Expired reports whether the record's token has expired at now.
// Records without a known expiry never expire.
func (r Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// TTL returns the time left until expiry, or zero for records without one.
func (r Record) TTL(now time.Time) time.Duration {
	if r.ExpiresAt.IsZero() {
		return 0
	}
	return r.ExpiresAt.Sub(now)
}

// TokenExpiry returns the exp claim of a JWT without verifying the signature.
// Opaque tokens and tokens without exp yield the zero time.
func TokenExpiry(token string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.UTC()
}

func validate(rec Record) error {
	if rec.Token == "" {
		return ErrEmptyToken
	}
	return nil
}
