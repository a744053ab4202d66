package internal

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthContext owns the credential for the running console. It is absent
// until Login and cleared by Logout; components read it through Token.
type AuthContext struct {
	mu        sync.RWMutex
	token     string
	store     *CredentialStore
	listeners map[int]func(token string)
	nextID    int
}

// TokenClaims are the display-only fields read from a JWT credential
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry in the past.
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// NewAuthContext creates an unauthenticated context. store may be nil for
// a purely in-memory credential.
func NewAuthContext(store *CredentialStore) *AuthContext {
	return &AuthContext{store: store, listeners: make(map[int]func(string))}
}

// Restore loads a previously saved credential without notifying listeners.
func (a *AuthContext) Restore() error {
	if a.store == nil {
		return nil
	}
	token, err := a.store.Load()
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
	return nil
}

// Login installs token and persists it.
func (a *AuthContext) Login(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if a.store != nil {
		if err := a.store.Save(token); err != nil {
			return fmt.Errorf("failed to save credential: %w", err)
		}
	}
	a.set(token)
	return nil
}

// Logout clears the credential.
func (a *AuthContext) Logout() error {
	if a.store != nil {
		if err := a.store.Clear(); err != nil {
			return fmt.Errorf("failed to clear credential: %w", err)
		}
	}
	a.set("")
	return nil
}

// Token returns the current credential, "" when unauthenticated.
func (a *AuthContext) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// Authenticated reports whether a credential is present.
func (a *AuthContext) Authenticated() bool {
	return a.Token() != ""
}

// OnChange registers fn to run after every Login/Logout that changes the
// credential. It returns a func that removes fn.
func (a *AuthContext) OnChange(fn func(token string)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// Claims decodes the subject and expiry of a JWT credential without
// verifying it. The credential stays opaque to everything else.
func (a *AuthContext) Claims() (*TokenClaims, error) {
	token := a.Token()
	if token == "" {
		return nil, ErrEmptyToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("credential is not a JWT: %w", err)
	}

	out := &TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

func (a *AuthContext) set(token string) {
	a.mu.Lock()
	changed := a.token != token
	a.token = token
	fns := make([]func(string), 0, len(a.listeners))
	for id := 0; id < a.nextID; id++ {
		if fn, ok := a.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	a.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range fns {
		fn(token)
	}
}
