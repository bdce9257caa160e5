// Package auth issues session tokens and guards the authenticated routes.
//
// A token is an HS256 JWT whose subject is the user id and whose jti names a
// server-side session in Redis. Logging out deletes the session, so a token
// stops working before it expires.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"storefront-service/internal/apperror"
	"storefront-service/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const (
	userIDKey    = "userID"
	sessionIDKey = "sessionID"
)

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for user. The returned claims carry the session id (jti).
func (i *TokenIssuer) Issue(user *entity.User) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := tkn.SignedString(i.secret)
	if err != nil {
		return "", nil, err
	}
	return t, claims, nil
}

func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// SessionStore keeps live sessions in Redis under session:<jti>.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func (s *SessionStore) Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionKey(sessionID), userID, ttl).Err()
}

// Lookup returns the user that owns the session, or an unauthenticated error
// when the session has expired or was revoked.
func (s *SessionStore) Lookup(ctx context.Context, sessionID string) (string, error) {
	userID, err := s.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperror.Unauthenticated("Session expired")
		}
		return "", err
	}
	return userID, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKey(sessionID)).Err()
}

// SessionLookup resolves a session id to its user id.
type SessionLookup interface {
	Lookup(ctx context.Context, sessionID string) (string, error)
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
}

// RequireAuth verifies the bearer token and its session, then exposes the
// caller through UserID and SessionID.
func RequireAuth(secret string, sessions SessionLookup) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return unauthorized(c)
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return unauthorized(c)
			}
			claims, ok := token.Claims.(*Claims)
			if !ok || claims.ID == "" || claims.Subject == "" {
				return unauthorized(c)
			}

			userID, err := sessions.Lookup(c.Request().Context(), claims.ID)
			if err != nil {
				if !errors.Is(err, apperror.ErrUnauthenticated) {
					logger.Error().Err(err).Str("path", c.Path()).Msg("Error looking up session")
				}
				return unauthorized(c)
			}
			if userID != claims.Subject {
				return unauthorized(c)
			}

			SetUser(c, userID, claims.ID)
			return next(c)
		})
	}
}

// UserID returns the authenticated caller, or "" outside RequireAuth.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

func SessionID(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}

// SetUser marks the request as authenticated.
func SetUser(c echo.Context, userID, sessionID string) {
	c.Set(userIDKey, userID)
	c.Set(sessionIDKey, sessionID)
}
