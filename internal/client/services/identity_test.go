package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IndraPur1/ChatApp/internal/client/client"
	"github.com/IndraPur1/ChatApp/internal/client/models"
	"github.com/IndraPur1/ChatApp/internal/client/repositories/credentials"
	"github.com/IndraPur1/ChatApp/internal/common"
	"github.com/IndraPur1/ChatApp/internal/logging"
)

// ---- fakes ----

type fakeProvider struct {
	LoginIdentity models.Identity
	LoginErr      error
	LoginCalls    int
	LastLogin     [2]string

	RegisterIdentity models.Identity
	RegisterErr      error
	RegisterCalls    int

	SignOutErr   error
	SignOutCalls int

	listener client.IdentityChangedFunc
}

func (f *fakeProvider) Login(ctx context.Context, email, secret string) (models.Identity, error) {
	f.LoginCalls++
	f.LastLogin = [2]string{email, secret}
	return f.LoginIdentity, f.LoginErr
}

func (f *fakeProvider) Register(ctx context.Context, email, secret string) (models.Identity, error) {
	f.RegisterCalls++
	return f.RegisterIdentity, f.RegisterErr
}

func (f *fakeProvider) SignOut(ctx context.Context) error {
	f.SignOutCalls++
	return f.SignOutErr
}

func (f *fakeProvider) OnIdentityChanged(fn client.IdentityChangedFunc) (remove func()) {
	f.listener = fn
	return func() { f.listener = nil }
}

type fakeProfiles struct {
	Profiles map[string]models.Profile
	GetErr   error
	PutErr   error

	PutCalls int
	LastPut  models.Profile
}

func (f *fakeProfiles) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	p, ok := f.Profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeProfiles) PutProfile(ctx context.Context, userID string, profile models.Profile) error {
	f.PutCalls++
	f.LastPut = profile
	if f.PutErr != nil {
		return f.PutErr
	}
	if f.Profiles == nil {
		f.Profiles = make(map[string]models.Profile)
	}
	f.Profiles[userID] = profile
	return nil
}

type fakeCreds struct {
	mu     sync.Mutex
	Values map[string]string
	GetErr error
	SetErr error
	RemErr error
}

func newFakeCreds() *fakeCreds {
	return &fakeCreds{Values: make(map[string]string)}
}

func (f *fakeCreds) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return "", false, f.GetErr
	}
	v, ok := f.Values[key]
	return v, ok, nil
}

func (f *fakeCreds) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	f.Values[key] = value
	return nil
}

func (f *fakeCreds) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RemErr != nil {
		return f.RemErr
	}
	delete(f.Values, key)
	return nil
}

func newIdentityService(provider *fakeProvider, profiles *fakeProfiles, creds *fakeCreds) IdentityService {
	return NewIdentityService(provider, profiles, creds, logging.NewDiscard())
}

// ---- ResolveInitial ----

func TestResolveInitial_NoCachedCredentials(t *testing.T) {
	provider := &fakeProvider{}
	svc := newIdentityService(provider, &fakeProfiles{}, newFakeCreds())

	res := svc.ResolveInitial(context.Background())
	require.Nil(t, res)
	// No remote call is attempted without a complete credential record.
	require.Zero(t, provider.LoginCalls)
}

func TestResolveInitial_SecretMissing(t *testing.T) {
	creds := newFakeCreds()
	creds.Values[credentials.KeyEmail] = "a@x.com"

	provider := &fakeProvider{}
	svc := newIdentityService(provider, &fakeProfiles{}, creds)

	require.Nil(t, svc.ResolveInitial(context.Background()))
	require.Zero(t, provider.LoginCalls)
}

func TestResolveInitial_StorageFaultTreatedAsAbsent(t *testing.T) {
	creds := newFakeCreds()
	creds.GetErr = errors.New("disk gone")

	provider := &fakeProvider{}
	svc := newIdentityService(provider, &fakeProfiles{}, creds)

	require.Nil(t, svc.ResolveInitial(context.Background()))
	require.Zero(t, provider.LoginCalls)
}

func TestResolveInitial_CachedNameUsedWithoutLookup(t *testing.T) {
	creds := newFakeCreds()
	creds.Values[credentials.KeyEmail] = "a@x.com"
	creds.Values[credentials.KeySecret] = "pw"
	creds.Values[credentials.KeyDisplayName] = "Ana"

	provider := &fakeProvider{LoginIdentity: models.Identity{UserID: "u1", Email: "a@x.com"}}
	profiles := &fakeProfiles{GetErr: errors.New("must not be called")}
	svc := newIdentityService(provider, profiles, creds)

	res := svc.ResolveInitial(context.Background())
	require.NotNil(t, res)
	require.Equal(t, "Ana", res.DisplayName)
	require.Equal(t, "u1", res.Identity.UserID)
	require.Equal(t, [2]string{"a@x.com", "pw"}, provider.LastLogin)
}

func TestResolveInitial_MissingNameLookedUpAndCached(t *testing.T) {
	creds := newFakeCreds()
	creds.Values[credentials.KeyEmail] = "a@x.com"
	creds.Values[credentials.KeySecret] = "pw"

	provider := &fakeProvider{LoginIdentity: models.Identity{UserID: "u1", Email: "a@x.com"}}
	profiles := &fakeProfiles{Profiles: map[string]models.Profile{
		"u1": {DisplayName: "Ana", Email: "a@x.com"},
	}}
	svc := newIdentityService(provider, profiles, creds)

	res := svc.ResolveInitial(context.Background())
	require.NotNil(t, res)
	require.Equal(t, "Ana", res.DisplayName)
	require.Equal(t, "Ana", creds.Values[credentials.KeyDisplayName])
}

func TestResolveInitial_RemoteLoginFailureSwallowed(t *testing.T) {
	creds := newFakeCreds()
	creds.Values[credentials.KeyEmail] = "a@x.com"
	creds.Values[credentials.KeySecret] = "stale"

	provider := &fakeProvider{LoginErr: common.ErrAuth}
	svc := newIdentityService(provider, &fakeProfiles{}, creds)

	// A revoked credential routes to manual login, it never errors.
	require.Nil(t, svc.ResolveInitial(context.Background()))
	require.Equal(t, 1, provider.LoginCalls)
}

func TestResolveInitial_MatchesDirectLogin(t *testing.T) {
	identity := models.Identity{UserID: "u1", Email: "a@x.com"}
	profiles := &fakeProfiles{Profiles: map[string]models.Profile{
		"u1": {DisplayName: "Ana", Email: "a@x.com"},
	}}

	direct := newIdentityService(&fakeProvider{LoginIdentity: identity}, profiles, newFakeCreds())
	viaLogin, err := direct.Login(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)

	creds := newFakeCreds()
	creds.Values[credentials.KeyEmail] = "a@x.com"
	creds.Values[credentials.KeySecret] = "pw"
	resolver := newIdentityService(&fakeProvider{LoginIdentity: identity}, profiles, creds)

	resolved := resolver.ResolveInitial(context.Background())
	require.NotNil(t, resolved)
	require.Equal(t, viaLogin.Identity, resolved.Identity)
	require.Equal(t, viaLogin.DisplayName, resolved.DisplayName)
}

func TestResolveInitial_RegistersIdentityListener(t *testing.T) {
	provider := &fakeProvider{}
	svc := newIdentityService(provider, &fakeProfiles{}, newFakeCreds())

	require.Nil(t, svc.ResolveInitial(context.Background()))
	require.NotNil(t, provider.listener)

	// The listener only records state, it never redirects.
	provider.listener(&models.Identity{UserID: "external"})
	require.Equal(t, "external", svc.LastKnownIdentity().UserID)

	provider.listener(nil)
	require.Nil(t, svc.LastKnownIdentity())
}

// ---- Login / Register ----

func TestLogin_PersistsCredentialRecord(t *testing.T) {
	creds := newFakeCreds()
	provider := &fakeProvider{LoginIdentity: models.Identity{UserID: "u1", Email: "a@x.com"}}
	profiles := &fakeProfiles{Profiles: map[string]models.Profile{
		"u1": {DisplayName: "Ana", Email: "a@x.com"},
	}}
	svc := newIdentityService(provider, profiles, creds)

	res, err := svc.Login(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "Ana", res.DisplayName)

	require.Equal(t, "a@x.com", creds.Values[credentials.KeyEmail])
	require.Equal(t, "pw", creds.Values[credentials.KeySecret])
	require.Equal(t, "Ana", creds.Values[credentials.KeyDisplayName])
}

func TestLogin_AuthErrorPropagates(t *testing.T) {
	provider := &fakeProvider{LoginErr: common.ErrAuth}
	svc := newIdentityService(provider, &fakeProfiles{}, newFakeCreds())

	_, err := svc.Login(context.Background(), "a@x.com", "bad")
	require.ErrorIs(t, err, common.ErrAuth)
}

func TestRegister_WritesProfileAndPersists(t *testing.T) {
	creds := newFakeCreds()
	provider := &fakeProvider{RegisterIdentity: models.Identity{UserID: "u1", Email: "a@x.com"}}
	profiles := &fakeProfiles{}
	svc := newIdentityService(provider, profiles, creds)

	res, err := svc.Register(context.Background(), "a@x.com", "pw", "Ana")
	require.NoError(t, err)
	require.Equal(t, "Ana", res.DisplayName)

	require.Equal(t, 1, profiles.PutCalls)
	require.Equal(t, models.Profile{DisplayName: "Ana", Email: "a@x.com"}, profiles.LastPut)
	require.Equal(t, "Ana", creds.Values[credentials.KeyDisplayName])
}

func TestRegister_EmailTaken(t *testing.T) {
	provider := &fakeProvider{RegisterErr: common.ErrEmailTaken}
	svc := newIdentityService(provider, &fakeProfiles{}, newFakeCreds())

	_, err := svc.Register(context.Background(), "a@x.com", "pw", "Ana")
	require.ErrorIs(t, err, common.ErrEmailTaken)
}

func TestRegister_ProfileWriteFailureSurfaces(t *testing.T) {
	creds := newFakeCreds()
	provider := &fakeProvider{RegisterIdentity: models.Identity{UserID: "u1", Email: "a@x.com"}}
	profiles := &fakeProfiles{PutErr: errors.New("quota exceeded")}
	svc := newIdentityService(provider, profiles, creds)

	_, err := svc.Register(context.Background(), "a@x.com", "pw", "Ana")
	require.Error(t, err)
	// The account was created remotely; only the profile write failed.
	require.Equal(t, 1, provider.RegisterCalls)
	require.Empty(t, creds.Values)
}

// ---- LookupDisplayName ----

func TestLookupDisplayName_FallbackChain(t *testing.T) {
	tests := []struct {
		name     string
		profiles *fakeProfiles
		identity models.Identity
		want     string
	}{
		{
			name: "profile name",
			profiles: &fakeProfiles{Profiles: map[string]models.Profile{
				"u1": {DisplayName: "Ana"},
			}},
			identity: models.Identity{UserID: "u1", Email: "a@x.com"},
			want:     "Ana",
		},
		{
			name:     "absent profile falls back to email",
			profiles: &fakeProfiles{},
			identity: models.Identity{UserID: "u1", Email: "a@x.com"},
			want:     "a@x.com",
		},
		{
			name:     "no email falls back to placeholder",
			profiles: &fakeProfiles{},
			identity: models.Identity{UserID: "u1"},
			want:     models.DefaultDisplayName,
		},
		{
			name:     "lookup error falls back to email",
			profiles: &fakeProfiles{GetErr: errors.New("offline")},
			identity: models.Identity{UserID: "u1", Email: "a@x.com"},
			want:     "a@x.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newIdentityService(&fakeProvider{}, tt.profiles, newFakeCreds())
			require.Equal(t, tt.want, svc.LookupDisplayName(context.Background(), tt.identity))
		})
	}
}

// ---- Logout ----

func TestLogout_ClearsCredentialRecord(t *testing.T) {
	creds := newFakeCreds()
	creds.Values[credentials.KeyEmail] = "a@x.com"
	creds.Values[credentials.KeySecret] = "pw"
	creds.Values[credentials.KeyDisplayName] = "Ana"

	svc := newIdentityService(&fakeProvider{}, &fakeProfiles{}, creds)

	require.NoError(t, svc.Logout(context.Background()))
	require.Empty(t, creds.Values)
}

func TestLogout_RemoteFailureLeavesCacheUntouched(t *testing.T) {
	creds := newFakeCreds()
	creds.Values[credentials.KeyEmail] = "a@x.com"
	creds.Values[credentials.KeySecret] = "pw"

	provider := &fakeProvider{SignOutErr: errors.New("network down")}
	svc := newIdentityService(provider, &fakeProfiles{}, creds)

	require.Error(t, svc.Logout(context.Background()))
	require.Equal(t, "a@x.com", creds.Values[credentials.KeyEmail])
	require.Equal(t, "pw", creds.Values[credentials.KeySecret])
}
