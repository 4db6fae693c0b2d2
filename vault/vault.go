// Package vault provides TokenVault implementations: the durable
// storage the session store mirrors its credential into. Only the
// credential is ever written; profiles never touch storage.
//
// Every implementation degrades instead of failing: an unavailable
// backing store reads as "no credential" and swallows writes, so the
// worst case is a consumer that starts logged out.
package vault

import (
	"context"
	"sync"

	session "github.com/wisal-platform/go-session"
)

// Memory is an in-process vault for tests and ephemeral consumers.
type Memory struct {
	mu   sync.Mutex
	cred session.Credential
}

// NewMemory returns an empty in-process vault.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) session.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred
}

func (m *Memory) Store(ctx context.Context, cred session.Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = cred
}

func (m *Memory) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = session.Credential{}
}
