// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package localdb provides a session store that is backed by leveldb. The
// session ID and the CSRF token are stored as two separate keys that are
// always written and deleted in a single batch.
package localdb

import (
	"context"
	"sync"

	"github.com/decred/peermall/session"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

const (
	keySessionID = "sessionid"
	keyCSRFToken = "csrftoken"
)

var (
	_ session.Store = (*Store)(nil)
)

// Store is a leveldb session store.
type Store struct {
	sync.RWMutex

	shutdown bool        // Backend is shutdown
	root     string      // Database root
	db       *leveldb.DB // Database context
}

// get returns the value for the provided key. A nil slice is returned if
// the key does not exist.
func (l *Store) get(key string) ([]byte, error) {
	b, err := l.db.Get([]byte(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return b, nil
}

// clear deletes both session keys in a single batch.
func (l *Store) clear() error {
	batch := new(leveldb.Batch)
	batch.Delete([]byte(keySessionID))
	batch.Delete([]byte(keyCSRFToken))
	return l.db.Write(batch, nil)
}

// Get returns the stored session.
//
// This function satisfies the session.Store interface.
func (l *Store) Get(ctx context.Context) (*session.Session, error) {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return nil, session.ErrShutdown
	}

	id, err := l.get(keySessionID)
	if err != nil {
		return nil, errors.Wrap(err, "get session id")
	}
	csrf, err := l.get(keyCSRFToken)
	if err != nil {
		return nil, errors.Wrap(err, "get csrf token")
	}

	s := session.Session{
		ID:        string(id),
		CSRFToken: string(csrf),
	}
	switch {
	case s.ID == "" && s.CSRFToken == "":
		// No session
		return nil, nil
	case !s.Complete():
		// Only one of the keys exists. This should not happen since
		// the keys are always written together, but don't hand out
		// a half session if it does.
		log.Warnf("Removing incomplete session from %v", l.root)
		err = l.clear()
		if err != nil {
			return nil, errors.Wrap(err, "clear")
		}
		return nil, nil
	}

	return &s, nil
}

// Set stores the session.
//
// This function satisfies the session.Store interface.
func (l *Store) Set(ctx context.Context, s session.Session) error {
	if !s.Complete() {
		return session.ErrIncompleteSession
	}

	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return session.ErrShutdown
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(keySessionID), []byte(s.ID))
	batch.Put([]byte(keyCSRFToken), []byte(s.CSRFToken))
	err := l.db.Write(batch, nil)
	if err != nil {
		return errors.Wrap(err, "write batch")
	}

	log.Debugf("Session saved")

	return nil
}

// Clear removes the stored session.
//
// This function satisfies the session.Store interface.
func (l *Store) Clear(ctx context.Context) error {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return session.ErrShutdown
	}

	err := l.clear()
	if err != nil {
		return errors.Wrap(err, "clear")
	}

	log.Debugf("Session cleared")

	return nil
}

// Close shuts down the database. All interface functions return
// ErrShutdown after Close has been called.
func (l *Store) Close() error {
	l.Lock()
	defer l.Unlock()

	if l.shutdown {
		return nil
	}
	l.shutdown = true
	return l.db.Close()
}

// New opens the leveldb database at root, creating it if needed.
func New(root string) (*Store, error) {
	log.Tracef("localdb New: %v", root)

	db, err := leveldb.OpenFile(root, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open %v", root)
	}

	return &Store{
		root: root,
		db:   db,
	}, nil
}
