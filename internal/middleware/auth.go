// Package middleware provides HTTP middleware shared by the APIs.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/auth"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/httputil"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
)

type claimsKey struct{}

// AuthMiddleware provides JWT authentication.
type AuthMiddleware struct {
	tokens    *auth.Manager
	logger    *logging.Logger
	skipPaths map[string]bool
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(tokens *auth.Manager, logger *logging.Logger, skipPaths []string) *AuthMiddleware {
	skip := make(map[string]bool)
	for _, path := range skipPaths {
		skip[path] = true
	}

	return &AuthMiddleware{
		tokens:    tokens,
		logger:    logger,
		skipPaths: skip,
	}
}

// Handler returns the middleware handler.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.respondError(w, r, "Missing Authorization header", nil)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			m.respondError(w, r, "Invalid Authorization header format", nil)
			return
		}

		claims, err := m.tokens.Parse(r.Context(), parts[1])
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, auth.ErrRevokedToken) {
				msg = "Token has been revoked"
			}
			m.respondError(w, r, msg, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		ctx = logging.WithUserID(ctx, claims.UserID)
		if claims.Role != "" {
			ctx = logging.WithRole(ctx, claims.Role)
		}

		m.logger.WithContext(ctx).WithFields(map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		}).Debug("Authentication successful")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) respondError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	httputil.WriteError(w, http.StatusUnauthorized, msg)

	entry := m.logger.WithContext(r.Context()).WithFields(map[string]interface{}{
		"path":   r.URL.Path,
		"method": r.Method,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("Authentication failed")
}

// RequireRole rejects authenticated requests whose role is not one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed[GetUserRole(r.Context())] {
				httputil.WriteError(w, http.StatusForbidden, "Acesso negado para este perfil")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetClaims returns the verified token claims, or nil.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

// GetUserID extracts user ID from context.
func GetUserID(ctx context.Context) string {
	return logging.GetUserID(ctx)
}

// GetUserRole extracts user role from context.
func GetUserRole(ctx context.Context) string {
	return logging.GetRole(ctx)
}
