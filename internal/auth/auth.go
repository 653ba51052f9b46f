// Package auth validates bearer credentials and resolves them to user
// identities. Tokens are HS256 JWTs carrying user_id, email, is_admin,
// exp and iat claims.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"studyhub/internal/models"
	"studyhub/internal/store"
)

// Each failure kind is distinct so callers can choose between an HTTP
// status and closing a half-open connection.
var (
	ErrMissingCredential   = errors.New("auth: missing credential")
	ErrMalformedCredential = errors.New("auth: malformed credential")
	ErrExpiredCredential   = errors.New("auth: credential expired")
	ErrInvalidSignature    = errors.New("auth: invalid signature")
	ErrUserNotFound        = errors.New("auth: user not found")
)

// Identity is the immutable result of a successful authentication. It is
// resolved once per request or connection and passed explicitly; nothing
// caches it across reconnects.
type Identity struct {
	ID      int64
	Name    string
	Email   string
	IsAdmin bool
}

// UserLookup is the read capability the authenticator needs from the
// persistence layer. Absence is a typed return, not an exception.
type UserLookup interface {
	ByID(ctx context.Context, id int64) (models.User, error)
}

type Authenticator struct {
	secret []byte
	ttl    time.Duration
	users  UserLookup
}

func New(secret string, ttlHours int, users UserLookup) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		ttl:    time.Duration(ttlHours) * time.Hour,
		users:  users,
	}
}

// Issue signs a token for u, valid for the configured TTL.
func (a *Authenticator) Issue(u models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  u.ID,
		"email":    u.Email,
		"is_admin": u.IsAdmin,
		"exp":      now.Add(a.ttl).Unix(),
		"iat":      now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Authenticate validates credential structurally, checks signature and
// expiry, then resolves the embedded user id against the store. It has no
// side effects beyond that single read.
func (a *Authenticator) Authenticate(ctx context.Context, credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrMissingCredential
	}

	token, err := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	switch {
	case err == nil && token.Valid:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Identity{}, ErrExpiredCredential
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return Identity{}, ErrInvalidSignature
	default:
		return Identity{}, ErrMalformedCredential
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrMalformedCredential
	}
	idFloat, ok := claims["user_id"].(float64)
	if !ok {
		return Identity{}, ErrMalformedCredential
	}

	u, err := a.users.ByID(ctx, int64(idFloat))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Identity{}, ErrUserNotFound
		}
		return Identity{}, fmt.Errorf("auth: resolve user: %w", err)
	}

	return Identity{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}, nil
}
