// Package middleware provides the HTTP middleware shared by the API server.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

type contextKey string

const userIDKey contextKey = "user_id"

// tokenTTL is how long an issued token stays valid.
const tokenTTL = 24 * time.Hour

// Claims are the JWT claims carried by an access token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Auth validates bearer tokens signed with the shared HMAC secret.
type Auth struct {
	secret    []byte
	log       *logger.Logger
	skipPaths map[string]bool
}

// NewAuth creates the authentication middleware. Requests to skipPaths pass
// through unauthenticated.
func NewAuth(secret string, log *logger.Logger, skipPaths []string) *Auth {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return &Auth{secret: []byte(secret), log: log, skipPaths: skip}
}

// IssueToken signs a token for an authenticated user.
func (a *Auth) IssueToken(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Handler rejects requests without a valid bearer token.
func (a *Auth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			unauthorized(w, "missing Authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(w, "Authorization header must be a bearer token")
			return
		}

		claims, err := a.validate(parts[1])
		if err != nil {
			a.log.WithError(err).WithField("path", r.URL.Path).Warn("token validation failed")
			unauthorized(w, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}

// GetUserID extracts the authenticated user id from a request context.
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}
