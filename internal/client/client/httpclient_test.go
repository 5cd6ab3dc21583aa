package client

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IndraPur1/ChatApp/internal/client/models"
	"github.com/IndraPur1/ChatApp/internal/common"
	"github.com/IndraPur1/ChatApp/internal/logging"
	"github.com/IndraPur1/ChatApp/internal/server/config"
	"github.com/IndraPur1/ChatApp/internal/server/httpapi"
	"github.com/IndraPur1/ChatApp/internal/server/store"
)

func newTestClient(t *testing.T) *HTTPClient {
	t.Helper()
	cfg := config.Config{
		Issuer:     "chatapp-test",
		AccessTTL:  time.Minute,
		SigningKey: "test-signing-key",
	}
	srv := httptest.NewServer(httpapi.NewServer(cfg, store.New(), logging.NewDiscard()).Router())
	t.Cleanup(srv.Close)

	c := NewHTTPClient(srv.URL, logging.NewDiscard())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestHTTPClient_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	identity, err := c.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	require.NotEmpty(t, identity.UserID)
	require.Equal(t, "a@x.com", identity.Email)

	_, err = c.Register(ctx, "a@x.com", "pw")
	require.ErrorIs(t, err, common.ErrEmailTaken)

	again, err := c.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	require.Equal(t, identity.UserID, again.UserID)

	_, err = c.Login(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, common.ErrAuth)
}

func TestHTTPClient_ServerUnreachable(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", logging.NewDiscard())
	defer c.Close()

	_, err := c.Login(context.Background(), "a@x.com", "pw")
	require.ErrorIs(t, err, common.ErrUnavailable)
}

func TestHTTPClient_ProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	identity, err := c.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	// Absent profile is not an error, just nil.
	profile, err := c.GetProfile(ctx, identity.UserID)
	require.NoError(t, err)
	require.Nil(t, profile)

	err = c.PutProfile(ctx, identity.UserID, models.Profile{DisplayName: "Ana", Email: "a@x.com"})
	require.NoError(t, err)

	profile, err = c.GetProfile(ctx, identity.UserID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	require.Equal(t, "Ana", profile.DisplayName)
}

func TestHTTPClient_IdentityListeners(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	var mu sync.Mutex
	var seen []*models.Identity
	remove := c.OnIdentityChanged(func(identity *models.Identity) {
		mu.Lock()
		seen = append(seen, identity)
		mu.Unlock()
	})

	identity, err := c.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	require.NoError(t, c.SignOut(ctx))

	mu.Lock()
	require.Len(t, seen, 2)
	require.Equal(t, identity.UserID, seen[0].UserID)
	require.Nil(t, seen[1])
	mu.Unlock()

	// After removal no further notifications arrive.
	remove()
	_, err = c.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	mu.Lock()
	require.Len(t, seen, 2)
	mu.Unlock()
}

func TestHTTPClient_SignOutDropsToken(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	identity, err := c.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	require.NoError(t, c.SignOut(ctx))

	// Requests without a token are rejected by the server.
	err = c.PutProfile(ctx, identity.UserID, models.Profile{DisplayName: "Ana"})
	require.ErrorIs(t, err, common.ErrAuth)
}

func TestHTTPClient_AppendAndSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := newTestClient(t)

	_, err := c.Register(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	ch, err := c.Subscribe(ctx, "createdAt")
	require.NoError(t, err)

	waitSnapshot := func() []models.Message {
		t.Helper()
		select {
		case snap := <-ch:
			return snap
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for snapshot")
			return nil
		}
	}

	// The stream opens with the current (empty) snapshot.
	require.Empty(t, waitSnapshot())

	require.NoError(t, c.Append(ctx, models.Message{Author: "Ana", Kind: models.KindText, Body: "hello"}))

	snap := waitSnapshot()
	require.Len(t, snap, 1)
	require.Equal(t, "hello", snap[0].Body)
	require.Equal(t, "Ana", snap[0].Author)
	require.NotEmpty(t, snap[0].ID)
	require.NotNil(t, snap[0].CreatedAt)

	// Cancelling the context ends the subscription.
	cancel()
	select {
	case _, ok := <-ch:
		require.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
