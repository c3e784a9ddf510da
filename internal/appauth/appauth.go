// Package appauth mints the tokens the mobile app holds after a user links
// it to their account. The app presents the token alongside a license key
// instead of replaying the web session cookie.
package appauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTTL = 30 * 24 * time.Hour

type Claims struct {
	MentorID   int    `json:"mentor_id"`
	LicenseKey string `json:"license_key,omitempty"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl == 0 {
		ttl = defaultTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Configured returns true if a signing secret is set.
func (m *Manager) Configured() bool {
	return len(m.secret) > 0
}

// Issue signs a token binding the account to its mentor ID and, when the
// app supplied one, a license key.
func (m *Manager) Issue(accountID string, mentorID int, licenseKey string) (string, error) {
	if !m.Configured() {
		return "", fmt.Errorf("app auth not configured: missing secret")
	}

	now := time.Now().UTC()
	claims := Claims{
		MentorID:   mentorID,
		LicenseKey: licenseKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign app token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse app token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid app token")
	}
	return claims, nil
}
