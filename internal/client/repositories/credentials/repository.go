// Package credentials persists the last-known identity (email, secret,
// cached display name) across restarts.
package credentials

import "context"

// Well-known cache keys.
const (
	KeyEmail       = "email"
	KeySecret      = "secret"
	KeyDisplayName = "display_name"
)

// Repository is a durable string key-value store. Get reports absence via
// the boolean rather than an error; errors indicate storage-layer faults
// and callers are expected to degrade as if the key were absent.
type Repository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
}
