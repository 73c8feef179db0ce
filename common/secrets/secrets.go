// Package secrets fetches secret values by name from a backing parameter
// store. Providers perform no caching; callers decide how long a value lives.
package secrets

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the backing store errored or the secret is absent.
var ErrUnavailable = errors.New("secret unavailable")

// Provider fetches a secret value by name.
type Provider interface {
	Get(ctx context.Context, name string) (string, error)
}
