package identity

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Client is a [Provider] for one browser or terminal session, backed by a [Directory].
//
// It remembers the signed-in principal and the session token issued for it.
type Client struct {
	dir *Directory

	op sync.Mutex // serializes sign-in operations so listeners see changes in call order

	mu        sync.Mutex
	principal *Principal
	token     string
	expires   time.Time
	listeners map[int]func(*Principal)
	nextID    int
}

// NewClient creates a signed-out client.
func NewClient(dir *Directory) *Client {
	return &Client{dir: dir, listeners: map[int]func(*Principal){}}
}

// Resume restores the principal of an existing session token.
func (c *Client) Resume(ctx context.Context, token string) (*Principal, error) {
	c.op.Lock()
	defer c.op.Unlock()

	p, err := c.dir.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	c.set(p, token, time.Time{})
	return p, nil
}

// Token returns the session token and its expiry; empty when signed out.
func (c *Client) Token() (string, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.expires
}

// Current returns the signed-in principal, or nil.
func (c *Client) Current() *Principal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.principal
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Principal, error) {
	c.op.Lock()
	defer c.op.Unlock()

	p, err := c.dir.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return c.issue(ctx, p)
}

func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*Principal, error) {
	c.op.Lock()
	defer c.op.Unlock()

	p, err := c.dir.Register(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}
	return c.issue(ctx, p)
}

func (c *Client) SignInWithFederatedProvider(ctx context.Context, token *oauth2.Token) (*Principal, error) {
	c.op.Lock()
	defer c.op.Unlock()

	p, err := c.dir.Federate(ctx, token)
	if err != nil {
		return nil, err
	}
	return c.issue(ctx, p)
}

// SignOut revokes the session token. Signing out while signed out is a no-op.
func (c *Client) SignOut(ctx context.Context) error {
	c.op.Lock()
	defer c.op.Unlock()

	token, _ := c.Token()
	if token == "" {
		return nil
	}
	if err := c.dir.Revoke(ctx, token); err != nil {
		return err
	}
	c.set(nil, "", time.Time{})
	return nil
}

func (c *Client) OnAuthStateChanged(cb func(*Principal)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = cb
	current := c.principal
	c.mu.Unlock()

	cb(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.listeners, id)
		})
	}
}

func (c *Client) issue(ctx context.Context, p *Principal) (*Principal, error) {
	token, expires, err := c.dir.Issue(ctx, p)
	if err != nil {
		return nil, err
	}
	c.set(p, token, expires)
	return p, nil
}

// set swaps the signed-in state and notifies listeners outside the state lock.
func (c *Client) set(p *Principal, token string, expires time.Time) {
	c.mu.Lock()
	c.principal = p
	c.token = token
	c.expires = expires
	listeners := make([]func(*Principal), 0, len(c.listeners))
	for i := range c.nextID {
		if cb, ok := c.listeners[i]; ok {
			listeners = append(listeners, cb)
		}
	}
	c.mu.Unlock()

	for _, cb := range listeners {
		cb(p)
	}
}
