// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package session

import (
	"context"
	"errors"
)

var (
	// ErrIncompleteSession is returned when attempting to store a session
	// that is missing either the session ID or the CSRF token. The two
	// values are only ever persisted together.
	ErrIncompleteSession = errors.New("incomplete session")

	// ErrShutdown is returned when a store is used after it was closed.
	ErrShutdown = errors.New("session store is shutdown")
)

// Session contains the credentials of an authenticated client. Both values
// are opaque to the client.
type Session struct {
	ID        string `json:"sessionId"`
	CSRFToken string `json:"csrfToken"`
}

// Complete returns whether both session values are populated.
func (s Session) Complete() bool {
	return s.ID != "" && s.CSRFToken != ""
}

// Store persists the session of the client. Implementations must never
// expose a session with only one of its two values set.
type Store interface {
	// Get returns the stored session. A nil session and a nil error are
	// returned when there is no stored session.
	Get(ctx context.Context) (*Session, error)

	// Set stores the session, replacing any existing session.
	Set(ctx context.Context, s Session) error

	// Clear removes the stored session. Clearing an empty store is not
	// an error.
	Clear(ctx context.Context) error
}
