package auth

import (
	"context"

	"firewall/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
)

// JWTResolver treats the token as an HMAC-signed JWT and resolves it to the
// subject claim. Expiry and not-before are enforced by the parser.
type JWTResolver struct {
	secret []byte
}

// NewJWTResolver creates a resolver validating HS256 tokens with secret.
func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

// Resolve implements Resolver.
func (r *JWTResolver) Resolve(ctx context.Context, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", errors.NewError(errors.ErrorTypeNotFound, "invalid token").WithCause(err)
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrUnknownToken
	}
	return sub, nil
}
