// Package session coordinates startup ordering: identity resolution first,
// then the live message subscription, which runs only while an identity is
// active.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IndraPur1/ChatApp/internal/client/services"
	"github.com/IndraPur1/ChatApp/internal/logging"
)

// Route is the initial view the UI should present.
type Route int

const (
	RouteLogin Route = iota
	RouteChat
)

func (r Route) String() string {
	if r == RouteChat {
		return "chat"
	}
	return "login"
}

// State is the controller's identity state machine.
type State int

const (
	StateResolving State = iota
	StateAnonymous
	StateActive
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateActive:
		return "active"
	default:
		return "resolving"
	}
}

// Controller owns the active-identity state machine and ties the stream
// reconciler's lifetime to it. It holds no retry logic; all fallibility
// lives in the services it delegates to.
type Controller struct {
	identity services.IdentityService
	chat     services.ChatService
	log      logging.Logger

	mu         sync.Mutex
	state      State
	resolution *services.Resolution
	sub        *services.Subscription
}

func NewController(identity services.IdentityService, chat services.ChatService, log logging.Logger) *Controller {
	return &Controller{identity: identity, chat: chat, log: log}
}

// Start resolves the initial identity and selects the initial route. When a
// cached credential still authenticates, the live subscription is started
// before returning; otherwise the caller routes to the login flow.
//
// resolveTimeout bounds only the silent auto-login; zero means no bound. The
// subscription started on success lives on ctx, not on the resolve budget.
func (c *Controller) Start(ctx context.Context, resolveTimeout time.Duration, onSnapshot services.SnapshotFunc) (Route, error) {
	c.setState(StateResolving)

	resolveCtx := ctx
	if resolveTimeout > 0 {
		var cancel context.CancelFunc
		resolveCtx, cancel = context.WithTimeout(ctx, resolveTimeout)
		defer cancel()
	}

	res := c.identity.ResolveInitial(resolveCtx)
	if res == nil {
		c.setState(StateAnonymous)
		return RouteLogin, nil
	}

	if err := c.Activate(ctx, res, onSnapshot); err != nil {
		return RouteLogin, err
	}
	return RouteChat, nil
}

// Activate installs res as the active identity and starts the live
// subscription. Used after Start (auto-login) and after a manual
// login/register.
func (c *Controller) Activate(ctx context.Context, res *services.Resolution, onSnapshot services.SnapshotFunc) error {
	c.mu.Lock()
	if c.sub != nil {
		c.mu.Unlock()
		return fmt.Errorf("session already active for %q", c.resolution.DisplayName)
	}
	c.resolution = res
	c.state = StateActive
	c.mu.Unlock()

	sub, err := c.chat.Subscribe(ctx, onSnapshot)
	if err != nil {
		c.mu.Lock()
		c.resolution = nil
		c.state = StateAnonymous
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.sub = sub
	c.mu.Unlock()

	c.log.Info(ctx, "session activated", "display_name", res.DisplayName)
	return nil
}

// Login authenticates with the given credentials and activates the session.
func (c *Controller) Login(ctx context.Context, email, secret string, onSnapshot services.SnapshotFunc) (*services.Resolution, error) {
	res, err := c.identity.Login(ctx, email, secret)
	if err != nil {
		return nil, err
	}
	if err := c.Activate(ctx, res, onSnapshot); err != nil {
		return nil, err
	}
	return res, nil
}

// Register creates an account and activates the session.
func (c *Controller) Register(ctx context.Context, email, secret, displayName string, onSnapshot services.SnapshotFunc) (*services.Resolution, error) {
	res, err := c.identity.Register(ctx, email, secret, displayName)
	if err != nil {
		return nil, err
	}
	if err := c.Activate(ctx, res, onSnapshot); err != nil {
		return nil, err
	}
	return res, nil
}

// Logout signs out remotely and, only if that succeeded, tears the session
// down: the subscription is disposed and the state returns to anonymous.
// On failure the session stays as it was and the error is surfaced.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.identity.Logout(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.resolution = nil
	c.state = StateAnonymous
	c.mu.Unlock()

	if sub != nil {
		sub.Dispose()
	}

	c.log.Info(ctx, "session deactivated")
	return nil
}

// Shutdown disposes the subscription without signing out, e.g. on process
// exit. The credential record stays for the next auto-login.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()

	if sub != nil {
		sub.Dispose()
	}
}

// DisplayName returns the active identity's display name, or "" when no
// session is active.
func (c *Controller) DisplayName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolution == nil {
		return ""
	}
	return c.resolution.DisplayName
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}
