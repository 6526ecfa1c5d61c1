// Package auth resolves request identity from bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Decentr-net/yatube/internal/api"
)

// ErrInvalidToken ...
var ErrInvalidToken = errors.New("invalid token")

type identityKey struct{}

// Authenticator issues and validates HS256 tokens whose subject is the username.
type Authenticator struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// New creates new instance of Authenticator.
func New(secret []byte, issuer string, ttl time.Duration) *Authenticator {
	return &Authenticator{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
	}
}

// Issue returns a signed token for username.
func (a *Authenticator) Issue(username string) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    a.issuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	})

	s, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return s, nil
}

// Validate returns username the token was issued for.
func (a *Authenticator) Validate(token string) (string, error) {
	var claims jwt.RegisteredClaims

	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
	); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	return claims.Subject, nil
}

// Middleware puts identity from Authorization header into request's context.
// Requests without the header are passed as anonymous; onIdentity is called for every
// resolved identity.
func Middleware(a *Authenticator, onIdentity func(ctx context.Context, username string) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !strings.HasPrefix(header, "Bearer ") {
				api.WriteError(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			username, err := a.Validate(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				api.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if onIdentity != nil {
				if err := onIdentity(r.Context(), username); err != nil {
					api.WriteInternalErrorf(r.Context(), w, "failed to register identity: %s", err.Error())
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), username)))
		})
	}
}

// WithIdentity returns ctx carrying username.
func WithIdentity(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, identityKey{}, username)
}

// FromContext returns identity stored in ctx. ok is false for anonymous requests.
func FromContext(ctx context.Context) (string, bool) {
	username, _ := ctx.Value(identityKey{}).(string)
	return username, username != ""
}
