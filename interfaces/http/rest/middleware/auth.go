package middleware

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"hackmate-backend/pkg/auth"
	"hackmate-backend/pkg/common"
)

// SessionCookieName is the cookie carrying the session token for clients
// that cannot set an Authorization header (websocket upgrades, image tags)
const SessionCookieName = "__session"

// Authenticator validates bearer tokens and enforces rate limits
type Authenticator struct {
	validator   *auth.JWTValidator
	ipLimiter   *auth.IPRateLimiter
	userLimiter *auth.UserRateLimiter
	logger      *zap.Logger
}

// NewAuthenticator creates the auth middleware
func NewAuthenticator(validator *auth.JWTValidator, ipPerMinute, userPerMinute int, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		validator:   validator,
		ipLimiter:   auth.NewIPRateLimiter(ipPerMinute),
		userLimiter: auth.NewUserRateLimiter(userPerMinute),
		logger:      logger,
	}
}

// Handler authenticates each request. The token comes from the
// Authorization header or, failing that, the session cookie.
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)
		if allowed, _ := a.ipLimiter.Allow(r.Context(), clientIP); !allowed {
			common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMIT", "Too many requests")
			return
		}

		token := extractToken(r)
		if token == "" {
			common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing credentials")
			return
		}

		claims, err := a.validator.ValidateToken(token)
		if err != nil {
			a.logger.Debug("Token validation failed", zap.Error(err))
			common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}

		if allowed, _ := a.userLimiter.Allow(r.Context(), claims.UserID); !allowed {
			common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMIT", "Too many requests")
			return
		}

		ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
			UserID:   claims.UserID,
			Email:    claims.Email,
			Name:     claims.Name,
			PhotoURL: claims.PhotoURL,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ValidateRequest resolves the user for a request outside the middleware
// chain (websocket upgrades)
func (a *Authenticator) ValidateRequest(r *http.Request) (*auth.UserContext, error) {
	token := extractToken(r)
	if token == "" {
		return nil, http.ErrNoCookie
	}
	claims, err := a.validator.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &auth.UserContext{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Name:     claims.Name,
		PhotoURL: claims.PhotoURL,
	}, nil
}

func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx != -1 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
