package auth

import (
	"context"

	"firewall/pkg/errors"
)

// ErrUnknownToken is returned when a token does not resolve to an identity.
var ErrUnknownToken = errors.NewError(errors.ErrorTypeNotFound, "unknown token")

// Resolver maps an auth token to its owning identity. The firewall treats
// any error as "unknown"; resolution never influences the reject decision
// beyond labeling the audit record.
type Resolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}
