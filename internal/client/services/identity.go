// Package services contains the session core of the ChatApp client: identity
// resolution against the credential cache and remote provider, and the
// message stream reconciler that keeps the local log in step with the remote
// collection.
package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/IndraPur1/ChatApp/internal/client/client"
	"github.com/IndraPur1/ChatApp/internal/client/models"
	"github.com/IndraPur1/ChatApp/internal/client/repositories/credentials"
	"github.com/IndraPur1/ChatApp/internal/logging"
)

// Resolution is the outcome of a successful startup identity resolution.
type Resolution struct {
	Identity    models.Identity
	DisplayName string
}

// IdentityService owns the active-identity decisions of the session.
//
// Contract:
//   - ResolveInitial: silent re-authentication from cached credentials;
//     never fails, a nil result routes to the manual login flow.
//   - Login / Register: authenticate or create an account, persist the
//     credential record on success.
//   - LookupDisplayName: always produces a usable name.
//   - Logout: remote sign-out first; local cache is cleared only when the
//     remote call succeeded.
type IdentityService interface {
	ResolveInitial(ctx context.Context) *Resolution
	Login(ctx context.Context, email, secret string) (*Resolution, error)
	Register(ctx context.Context, email, secret, displayName string) (*Resolution, error)
	LookupDisplayName(ctx context.Context, identity models.Identity) string
	Logout(ctx context.Context) error
	LastKnownIdentity() *models.Identity
}

type identityService struct {
	provider client.IdentityProvider
	profiles client.ProfileStore
	creds    credentials.Repository
	log      logging.Logger

	mu            sync.Mutex
	lastKnown     *models.Identity
	listenerAdded bool
}

func NewIdentityService(provider client.IdentityProvider, profiles client.ProfileStore, creds credentials.Repository, log logging.Logger) IdentityService {
	return &identityService{
		provider: provider,
		profiles: profiles,
		creds:    creds,
		log:      log,
	}
}

// ResolveInitial decides the identity to present on launch.
//
// The three cache keys are read concurrently; storage faults count as
// absent. When both email and secret are cached, a remote login is
// attempted. Any remote failure is swallowed: the caller cannot tell a
// revoked credential from a fresh install, it just gets nil. Regardless of
// outcome, a long-lived identity-state listener is registered; it only
// records the last-known remote state and never redirects anything.
func (s *identityService) ResolveInitial(ctx context.Context) *Resolution {
	defer s.registerIdentityListener()

	var (
		email, secret, cachedName string
		haveEmail, haveSecret     bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		email, haveEmail = s.readKey(gctx, credentials.KeyEmail)
		return nil
	})
	g.Go(func() error {
		secret, haveSecret = s.readKey(gctx, credentials.KeySecret)
		return nil
	})
	g.Go(func() error {
		cachedName, _ = s.readKey(gctx, credentials.KeyDisplayName)
		return nil
	})
	_ = g.Wait()

	if !haveEmail || !haveSecret {
		return nil
	}

	identity, err := s.provider.Login(ctx, email, secret)
	if err != nil {
		// Cached credential no longer valid, or the provider is down.
		// Fall back to the manual login flow either way.
		s.log.Warn(ctx, "auto-login failed, falling back to manual login", "error", err)
		return nil
	}

	name := cachedName
	if name == "" {
		name = s.LookupDisplayName(ctx, identity)
		if err := s.creds.Set(ctx, credentials.KeyDisplayName, name); err != nil {
			s.log.Warn(ctx, "failed to cache display name", "error", err)
		}
	}

	return &Resolution{Identity: identity, DisplayName: name}
}

func (s *identityService) Login(ctx context.Context, email, secret string) (*Resolution, error) {
	identity, err := s.provider.Login(ctx, email, secret)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	name := s.LookupDisplayName(ctx, identity)
	s.persistCredentials(ctx, email, secret, name)

	return &Resolution{Identity: identity, DisplayName: name}, nil
}

// Register creates the account, then writes the profile record keyed by the
// new identity's id. The two steps are not transactional: a failed profile
// write leaves the account without a profile, and the error is returned.
func (s *identityService) Register(ctx context.Context, email, secret, displayName string) (*Resolution, error) {
	identity, err := s.provider.Register(ctx, email, secret)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	profile := models.Profile{DisplayName: displayName, Email: email}
	if err := s.profiles.PutProfile(ctx, identity.UserID, profile); err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}

	s.persistCredentials(ctx, email, secret, displayName)

	return &Resolution{Identity: identity, DisplayName: displayName}, nil
}

// LookupDisplayName resolves a usable name for identity: the remote profile's
// display name, then the account email, then a fixed placeholder.
func (s *identityService) LookupDisplayName(ctx context.Context, identity models.Identity) string {
	profile, err := s.profiles.GetProfile(ctx, identity.UserID)
	if err != nil {
		s.log.Warn(ctx, "profile lookup failed", "user_id", identity.UserID, "error", err)
		profile = nil
	}

	if profile != nil && profile.DisplayName != "" {
		return profile.DisplayName
	}
	if identity.Email != "" {
		return identity.Email
	}
	return models.DefaultDisplayName
}

// Logout signs out remotely and then clears the credential record. A failed
// remote sign-out leaves the cache untouched and is returned to the caller.
func (s *identityService) Logout(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	for _, key := range []string{credentials.KeyEmail, credentials.KeySecret, credentials.KeyDisplayName} {
		if err := s.creds.Remove(ctx, key); err != nil {
			s.log.Warn(ctx, "failed to clear credential key", "key", key, "error", err)
		}
	}
	return nil
}

// LastKnownIdentity reports the most recent remote identity state observed
// by the long-lived listener. Observability only.
func (s *identityService) LastKnownIdentity() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastKnown
}

func (s *identityService) registerIdentityListener() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listenerAdded {
		return
	}
	s.listenerAdded = true

	s.provider.OnIdentityChanged(func(identity *models.Identity) {
		s.mu.Lock()
		s.lastKnown = identity
		s.mu.Unlock()
	})
}

// readKey treats storage faults as absence.
func (s *identityService) readKey(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.creds.Get(ctx, key)
	if err != nil {
		s.log.Warn(ctx, "credential cache read failed", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

func (s *identityService) persistCredentials(ctx context.Context, email, secret, displayName string) {
	pairs := map[string]string{
		credentials.KeyEmail:       email,
		credentials.KeySecret:      secret,
		credentials.KeyDisplayName: displayName,
	}
	for key, value := range pairs {
		if err := s.creds.Set(ctx, key, value); err != nil {
			s.log.Warn(ctx, "failed to persist credential key", "key", key, "error", err)
		}
	}
}
