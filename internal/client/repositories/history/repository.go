// Package history mirrors the most recently observed message snapshot in the
// local database. The mirror is a bootstrap hint only: it pre-populates the
// UI between process start and the first live snapshot, which then replaces
// it wholesale.
package history

import (
	"context"

	"github.com/IndraPur1/ChatApp/internal/client/models"
)

// Repository stores the ordered message log.
type Repository interface {
	// Load returns the cached log in stored order, empty when nothing was
	// ever cached.
	Load(ctx context.Context) ([]models.Message, error)

	// Replace overwrites the whole cached log with msgs atomically.
	Replace(ctx context.Context, msgs []models.Message) error
}
