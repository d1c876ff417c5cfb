// identity/provider.go
package identity

import (
	"context"
	"sync"
)

// Handle is the opaque identity handle supplied by the login provider.
type Handle struct {
	Principal string
}

// Status is the provider's login state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoggingIn Status = "logging-in"
	StatusLoggedIn  Status = "logged-in"
)

// Provider abstracts the external identity service. Identity returns nil
// until a login completes.
type Provider interface {
	Identity() *Handle
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status() Status
}

// Memory is an in-process Provider. The embedding application decides which
// principal a login resolves to; tests use it to drive authentication state.
type Memory struct {
	mu        sync.RWMutex
	principal string
	handle    *Handle
	status    Status
}

func NewMemory(principal string) *Memory {
	return &Memory{principal: principal, status: StatusIdle}
}

func (m *Memory) Identity() *Handle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handle
}

func (m *Memory) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Memory) Login(ctx context.Context) error {
	m.mu.Lock()
	m.status = StatusLoggingIn
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		m.mu.Lock()
		m.status = StatusIdle
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.handle = &Handle{Principal: m.principal}
	m.status = StatusLoggedIn
	m.mu.Unlock()
	return nil
}

func (m *Memory) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.handle = nil
	m.status = StatusIdle
	m.mu.Unlock()
	return nil
}
