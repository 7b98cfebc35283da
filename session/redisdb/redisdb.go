// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package redisdb provides a session store that is backed by redis. The
// session ID and the CSRF token are stored as two keys that are written and
// deleted inside a MULTI/EXEC transaction.
package redisdb

import (
	"context"
	"sync"

	"github.com/decred/peermall/session"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultPrefix is the default key prefix.
	DefaultPrefix = "peermall:session"

	keySessionID = "sessionid"
	keyCSRFToken = "csrftoken"
)

var (
	_ session.Store = (*Store)(nil)
)

// Store is a redis session store.
type Store struct {
	sync.Mutex
	client  *redis.Client
	keyID   string
	keyCSRF string
}

// Get returns the stored session.
//
// This function satisfies the session.Store interface.
func (r *Store) Get(ctx context.Context) (*session.Session, error) {
	r.Lock()
	defer r.Unlock()

	vals, err := r.client.MGet(ctx, r.keyID, r.keyCSRF).Result()
	if err != nil {
		return nil, errors.Wrap(err, "mget")
	}

	var s session.Session
	if v, ok := vals[0].(string); ok {
		s.ID = v
	}
	if v, ok := vals[1].(string); ok {
		s.CSRFToken = v
	}
	switch {
	case s.ID == "" && s.CSRFToken == "":
		return nil, nil
	case !s.Complete():
		log.Warnf("Removing incomplete session %v", r.keyID)
		err = r.clear(ctx)
		if err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &s, nil
}

// Set stores the session.
//
// This function satisfies the session.Store interface.
func (r *Store) Set(ctx context.Context, s session.Session) error {
	if !s.Complete() {
		return session.ErrIncompleteSession
	}

	r.Lock()
	defer r.Unlock()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.keyID, s.ID, 0)
		pipe.Set(ctx, r.keyCSRF, s.CSRFToken, 0)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "set session")
	}

	log.Debugf("Session saved to %v", r.keyID)

	return nil
}

// Clear removes the stored session.
//
// This function satisfies the session.Store interface.
func (r *Store) Clear(ctx context.Context) error {
	r.Lock()
	defer r.Unlock()

	return r.clear(ctx)
}

// clear deletes both session keys.
//
// This function must be called WITH the lock held.
func (r *Store) clear(ctx context.Context) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.keyID, r.keyCSRF)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "clear session")
	}
	return nil
}

// Close closes the redis client.
func (r *Store) Close() error {
	return r.client.Close()
}

// New returns a new redis store that uses the provided client. All keys are
// prefixed with prefix, DefaultPrefix is used when it is empty.
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{
		client:  client,
		keyID:   prefix + ":" + keySessionID,
		keyCSRF: prefix + ":" + keyCSRFToken,
	}
}
