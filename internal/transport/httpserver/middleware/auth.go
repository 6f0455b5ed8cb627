package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/LoreWasTaken/caresync/internal/config"
	userdomain "github.com/LoreWasTaken/caresync/internal/domain/user"
	"github.com/LoreWasTaken/caresync/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

var errBadToken = errors.New("invalid token")

type contextKey int

const userKey contextKey = iota

// UserProvider resolves the authenticated subject to a local user row.
type UserProvider interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

type claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Auth validates bearer tokens issued by the external identity service and
// loads the requester into the request context. Token issuance is not this
// service's job; only HS256 verification happens here.
type Auth struct {
	secret string
	users  UserProvider
	log    logger.Logger
}

func NewAuth(cfg config.AuthConfig, users UserProvider, log logger.Logger) *Auth {
	return &Auth{secret: cfg.JWTSecret, users: users, log: log}
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.secret == "" {
			writeError(w, http.StatusInternalServerError, "auth not configured")
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		userID, err := a.parseToken(token)
		if err != nil {
			unauthorized(w)
			return
		}

		requester, err := a.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, userdomain.ErrUserNotFound) {
				unauthorized(w)
				return
			}
			a.log.InternalError("auth: load user failed", err, "user_id", userID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), requester)))
	})
}

func (a *Auth) parseToken(raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadToken
		}
		return []byte(a.secret), nil
	})
	if err != nil {
		return "", err
	}
	parsed, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", errBadToken
	}
	userID := parsed.UserID
	if userID == "" {
		userID = parsed.Subject
	}
	if userID == "" {
		return "", errBadToken
	}
	return userID, nil
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func WithUser(ctx context.Context, requester *userdomain.User) context.Context {
	return context.WithValue(ctx, userKey, requester)
}

func UserFromContext(ctx context.Context) (*userdomain.User, bool) {
	requester, ok := ctx.Value(userKey).(*userdomain.User)
	if !ok || requester == nil || requester.ID == "" {
		return nil, false
	}
	return requester, true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid token")
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
