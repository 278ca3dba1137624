package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"memoryhub/pkg/auth"
	pkgerrors "memoryhub/pkg/errors"

	"go.uber.org/zap"
)

// TokenValidator validates bearer tokens
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// AuthConfig configures the authentication middleware
type AuthConfig struct {
	Validator    TokenValidator
	Limiter      auth.RateLimiter
	Limit        int
	Window       time.Duration
	ErrorHandler *pkgerrors.ErrorHandler
	Logger       *zap.Logger
}

// Authenticate validates the bearer token, applies the per-user rate limit
// and stores the user in the request context.
func Authenticate(cfg AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				cfg.ErrorHandler.Handle(w, r, pkgerrors.NewUnauthorizedError("Missing authentication token"))
				return
			}

			claims, err := cfg.Validator.ValidateToken(token)
			if err != nil {
				cfg.Logger.Warn("Invalid token",
					zap.Error(err),
					zap.String("ip", getClientIP(r)),
					zap.String("path", r.URL.Path),
				)

				message := "Invalid token"
				switch {
				case errors.Is(err, auth.ErrExpiredToken):
					message = "Token has expired"
				case errors.Is(err, auth.ErrInvalidSignature):
					message = "Invalid token signature"
				}
				cfg.ErrorHandler.Handle(w, r, pkgerrors.NewUnauthorizedError(message))
				return
			}

			if cfg.Limiter != nil {
				allowed, err := cfg.Limiter.Allow(r.Context(), claims.UserID)
				if err != nil {
					// Fail open
					cfg.Logger.Error("Rate limiter error", zap.Error(err))
				} else if !allowed {
					w.Header().Set("Retry-After", retryAfterSeconds(cfg.Window))
					cfg.ErrorHandler.Handle(w, r, pkgerrors.NewRateLimitError(cfg.Limit, cfg.Window.String()))
					return
				}
			}

			ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
			})

			cfg.Logger.Debug("Request authenticated",
				zap.String("user_id", claims.UserID),
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// getClientIP extracts the client IP address
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func retryAfterSeconds(window time.Duration) string {
	seconds := int(window / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
