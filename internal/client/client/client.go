// Package client defines the remote collaborator contracts consumed by the
// session core, plus their HTTP implementation and the local database
// bootstrap. Services depend on the narrow interfaces so tests can inject
// in-memory fakes.
package client

import (
	"context"

	"github.com/IndraPur1/ChatApp/internal/client/models"
)

// IdentityChangedFunc receives the new remote identity state. A nil identity
// means signed out.
type IdentityChangedFunc func(identity *models.Identity)

// IdentityProvider authenticates accounts against the remote identity
// service.
type IdentityProvider interface {
	// Login authenticates with email/secret.
	Login(ctx context.Context, email, secret string) (models.Identity, error)

	// Register creates a new account.
	Register(ctx context.Context, email, secret string) (models.Identity, error)

	// SignOut terminates the current remote session.
	SignOut(ctx context.Context) error

	// OnIdentityChanged registers a long-lived listener for identity state
	// changes. The returned function removes the listener.
	OnIdentityChanged(fn IdentityChangedFunc) (remove func())
}

// ProfileStore maps an identity to its display metadata.
type ProfileStore interface {
	// GetProfile returns the stored profile, or (nil, nil) when absent.
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)

	// PutProfile stores the profile record for userID.
	PutProfile(ctx context.Context, userID string, profile models.Profile) error
}

// MessageStore is the remote ordered message collection.
//
// Subscribe issues a live query ordered by orderKey ascending. The returned
// channel carries complete snapshots, never deltas, in delivery order; it is
// closed once ctx is cancelled. Reconnection after transport hiccups is owned
// by the implementation, not the caller.
type MessageStore interface {
	// Append adds one record; the server assigns id and timestamp.
	Append(ctx context.Context, msg models.Message) error

	Subscribe(ctx context.Context, orderKey string) (<-chan []models.Message, error)
}

// Client bundles all remote collaborators behind one connection.
type Client interface {
	IdentityProvider
	ProfileStore
	MessageStore

	Close() error
}
