// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package memstore provides a session store that keeps the session in
// memory. It does not survive restarts and is intended for tests and short
// lived clients.
package memstore

import (
	"context"
	"sync"

	"github.com/decred/peermall/session"
)

var (
	_ session.Store = (*Store)(nil)
)

// Store is an in memory session store.
type Store struct {
	sync.RWMutex
	s *session.Session
}

// Get returns the stored session.
//
// This function satisfies the session.Store interface.
func (m *Store) Get(ctx context.Context) (*session.Session, error) {
	m.RLock()
	defer m.RUnlock()

	if m.s == nil {
		return nil, nil
	}
	s := *m.s
	return &s, nil
}

// Set stores the session.
//
// This function satisfies the session.Store interface.
func (m *Store) Set(ctx context.Context, s session.Session) error {
	if !s.Complete() {
		return session.ErrIncompleteSession
	}

	m.Lock()
	defer m.Unlock()

	m.s = &s
	return nil
}

// Clear removes the stored session.
//
// This function satisfies the session.Store interface.
func (m *Store) Clear(ctx context.Context) error {
	m.Lock()
	defer m.Unlock()

	m.s = nil
	return nil
}

// New returns a new, empty Store.
func New() *Store {
	return &Store{}
}
