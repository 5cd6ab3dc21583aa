package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/IndraPur1/ChatApp/internal/client/models"
	"github.com/IndraPur1/ChatApp/internal/common"
	"github.com/IndraPur1/ChatApp/internal/logging"
)

const requestTimeout = 12 * time.Second

// HTTPClient talks JSON over HTTP to the chat server and implements Client.
// The bearer token obtained on login/register is attached to every
// subsequent request.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	log     logging.Logger

	mu    sync.Mutex
	token string

	listenerMu sync.Mutex
	listeners  map[int]IdentityChangedFunc
	nextID     int
}

func NewHTTPClient(baseURL string, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:   baseURL,
		hc:        &http.Client{},
		log:       log,
		listeners: make(map[int]IdentityChangedFunc),
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

func (c *HTTPClient) Login(ctx context.Context, email, secret string) (models.Identity, error) {
	var resp authResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", credentialsRequest{Email: email, Password: secret}, &resp)
	if err != nil {
		return models.Identity{}, err
	}

	c.setToken(resp.AccessToken)
	identity := models.Identity{UserID: resp.UserID, Email: resp.Email}
	c.notifyIdentityChanged(&identity)
	return identity, nil
}

func (c *HTTPClient) Register(ctx context.Context, email, secret string) (models.Identity, error) {
	var resp authResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/register", credentialsRequest{Email: email, Password: secret}, &resp)
	if err != nil {
		return models.Identity{}, err
	}

	c.setToken(resp.AccessToken)
	identity := models.Identity{UserID: resp.UserID, Email: resp.Email}
	c.notifyIdentityChanged(&identity)
	return identity, nil
}

func (c *HTTPClient) SignOut(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.setToken("")
	c.notifyIdentityChanged(nil)
	return nil
}

func (c *HTTPClient) OnIdentityChanged(fn IdentityChangedFunc) (remove func()) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.listenerMu.Lock()
		defer c.listenerMu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *HTTPClient) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := c.doJSON(ctx, http.MethodGet, "/profiles/"+userID, nil, &profile)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (c *HTTPClient) PutProfile(ctx context.Context, userID string, profile models.Profile) error {
	return c.doJSON(ctx, http.MethodPut, "/profiles/"+userID, profile, nil)
}

func (c *HTTPClient) Append(ctx context.Context, msg models.Message) error {
	return c.doJSON(ctx, http.MethodPost, "/messages", msg, nil)
}

func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *HTTPClient) notifyIdentityChanged(identity *models.Identity) {
	c.listenerMu.Lock()
	fns := make([]IdentityChangedFunc, 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenerMu.Unlock()

	for _, fn := range fns {
		fn(identity)
	}
}

// statusError carries a non-2xx HTTP status and maps the auth-relevant codes
// onto the shared sentinels via Unwrap.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

func (e *statusError) Unwrap() error {
	switch e.code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return common.ErrAuth
	case http.StatusConflict:
		return common.ErrEmailTaken
	default:
		return nil
	}
}

func isStatus(err error, code int) bool {
	var se *statusError
	return errors.As(err, &se) && se.code == code
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: string(bytes.TrimSpace(data))}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
