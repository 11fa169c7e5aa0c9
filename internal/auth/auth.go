// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("token inválido")
	ErrRevokedToken = errors.New("token revogado")
)

// Claims represents JWT claims.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs HS256 tokens and checks them against a revocation list.
type Manager struct {
	secret  []byte
	issuer  string
	ttl     time.Duration
	revoked Revocations
	now     func() time.Time
}

// NewManager creates a Manager. A nil revocation list disables logout revocation.
func NewManager(secret, issuer string, ttl time.Duration, revoked Revocations) *Manager {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret:  []byte(secret),
		issuer:  issuer,
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

// Issue returns a signed token for the principal.
func (m *Manager) Issue(userID, email, role string) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its claims.
func (m *Manager) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if m.revoked != nil && claims.ID != "" {
		revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrRevokedToken
		}
	}
	return claims, nil
}

// Revoke invalidates the token identified by claims until it expires.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if m.revoked == nil || claims == nil || claims.ID == "" {
		return nil
	}
	until := m.now().Add(m.ttl)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return m.revoked.Revoke(ctx, claims.ID, until)
}

// HashPassword returns a bcrypt hash of pwd.
func HashPassword(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether pwd matches hash.
func CheckPassword(hash, pwd string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pwd)) == nil
}
