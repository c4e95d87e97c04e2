// Package auth defines the credential capability used by the transformation
// client. The real refresh flow (SSO/OIDC) lives outside this module; only
// the capability interface and simple sources are provided here.
package auth

import (
	"context"
	"errors"
	"os"
	"sync"
)

// ErrNoToken indicates that no credential is available.
var ErrNoToken = errors.New("no credential available")

// TokenSource supplies bearer credentials and supports refreshing them.
// Refresh is invoked by the poll loop at most once per failed status query,
// after an access-denied or invalid-grant failure.
type TokenSource interface {
	// Token returns the current bearer credential.
	Token(ctx context.Context) (string, error)

	// Refresh replaces the current credential. Implementations must be
	// safe for concurrent use with Token.
	Refresh(ctx context.Context) error
}

// StaticTokenSource returns a fixed token and treats Refresh as a no-op.
// Suitable for tests and for deployments where an external agent rotates
// the credential file/variable.
type StaticTokenSource struct {
	mu    sync.RWMutex
	token string
}

// NewStaticTokenSource creates a token source with a fixed credential.
func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token}
}

// Token implements TokenSource.
func (s *StaticTokenSource) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

// Refresh implements TokenSource as a no-op.
func (s *StaticTokenSource) Refresh(_ context.Context) error { return nil }

// SetToken replaces the credential. Used by tests to simulate rotation.
func (s *StaticTokenSource) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// EnvTokenSource reads the credential from an environment variable on each
// call, so Refresh simply re-reads whatever an external rotation process
// wrote.
type EnvTokenSource struct{ key string }

// NewEnvTokenSource creates a token source backed by the named environment
// variable.
func NewEnvTokenSource(key string) *EnvTokenSource {
	return &EnvTokenSource{key: key}
}

// Token implements TokenSource.
func (s *EnvTokenSource) Token(_ context.Context) (string, error) {
	token := os.Getenv(s.key)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Refresh implements TokenSource. The next Token call re-reads the variable.
func (s *EnvTokenSource) Refresh(_ context.Context) error { return nil }
