// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package filestore provides a session store that persists the session to a
// JSON file. Sessions are segmented by API host so that a single data
// directory can hold the sessions of multiple hosts.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/decred/peermall/session"
	"github.com/decred/peermall/util"
	"github.com/pkg/errors"
)

const (
	sessionFile = "session.json"
)

var (
	_ session.Store = (*Store)(nil)
)

// Store is a session store that is backed by a file on disk.
type Store struct {
	sync.Mutex
	path string // Session file path
}

// Get returns the session that is saved to disk. A file that does not
// contain a complete session is treated as if there was no session and is
// removed.
//
// This function satisfies the session.Store interface.
func (f *Store) Get(ctx context.Context) (*session.Session, error) {
	f.Lock()
	defer f.Unlock()

	if !util.FileExists(f.path) {
		// Nothing to load
		return nil, nil
	}

	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, errors.Wrapf(err, "read file %v", f.path)
	}

	var s session.Session
	err = json.Unmarshal(b, &s)
	if err != nil || !s.Complete() {
		log.Warnf("Removing corrupt session file %v", f.path)
		return nil, f.remove()
	}

	return &s, nil
}

// Set writes the session to disk. The session is written to a temporary
// file first and then moved into place so that a partially written session
// can never be read back.
//
// This function satisfies the session.Store interface.
func (f *Store) Set(ctx context.Context, s session.Session) error {
	if !s.Complete() {
		return session.ErrIncompleteSession
	}

	b, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "marshal session")
	}

	f.Lock()
	defer f.Unlock()

	tmp := f.path + ".tmp"
	err = os.WriteFile(tmp, b, 0600)
	if err != nil {
		return errors.Wrapf(err, "write file %v", tmp)
	}
	err = os.Rename(tmp, f.path)
	if err != nil {
		return errors.Wrapf(err, "rename %v", tmp)
	}

	log.Debugf("Session saved to %v", f.path)

	return nil
}

// Clear removes the session file.
//
// This function satisfies the session.Store interface.
func (f *Store) Clear(ctx context.Context) error {
	f.Lock()
	defer f.Unlock()

	return f.remove()
}

// remove deletes the session file. A missing file is not an error.
//
// This function must be called WITH the lock held.
func (f *Store) remove() error {
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %v", f.path)
	}
	return nil
}

// Path returns the path of the session file.
func (f *Store) Path() string {
	return f.path
}

// hostFilePath returns the host specific file path for the passed in file.
// The hostname is prepended to the filename so that the data of multiple
// hosts can live in the same directory.
func hostFilePath(dataDir, host, filename string) (string, error) {
	hostname, err := util.HostName(host)
	if err != nil {
		return "", err
	}

	f := fmt.Sprintf("%v_%v", hostname, filename)
	return filepath.Join(dataDir, f), nil
}

// New returns a new file store that saves the session of the provided API
// host in dataDir. The directory is created if it does not exist.
func New(dataDir, host string) (*Store, error) {
	err := os.MkdirAll(dataDir, 0700)
	if err != nil {
		return nil, errors.Wrapf(err, "MkdirAll %v", dataDir)
	}
	f, err := hostFilePath(dataDir, host, sessionFile)
	if err != nil {
		return nil, err
	}
	return &Store{
		path: f,
	}, nil
}
