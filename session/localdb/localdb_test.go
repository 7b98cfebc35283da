// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package localdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/decred/peermall/session"
)

func setupTestData(t *testing.T) (*Store, string) {
	t.Helper()

	root := filepath.Join(t.TempDir(), "localdb")
	db, err := New(root)
	if err != nil {
		t.Fatalf("setup database: %v", err)
	}
	return db, root
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	db, root := setupTestData(t)

	s, err := db.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s != nil {
		t.Fatalf("got session %+v, want nil", s)
	}

	want := session.Session{ID: "s1", CSRFToken: "c1"}
	err = db.Set(ctx, want)
	if err != nil {
		t.Fatal(err)
	}

	// Reopen the database and verify the session survived
	err = db.Close()
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Get(ctx)
	if !errors.Is(err, session.ErrShutdown) {
		t.Fatalf("got err %v, want %v", err, session.ErrShutdown)
	}
	db, err = New(root)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	s, err = db.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s == nil || *s != want {
		t.Fatalf("got session %+v, want %+v", s, want)
	}

	// Clear twice
	for i := 0; i < 2; i++ {
		err = db.Clear(ctx)
		if err != nil {
			t.Fatal(err)
		}
	}
	s, err = db.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s != nil {
		t.Fatalf("got session %+v after clear", s)
	}
}

func TestStorePairing(t *testing.T) {
	ctx := context.Background()
	db, _ := setupTestData(t)
	defer db.Close()

	err := db.Set(ctx, session.Session{CSRFToken: "c1"})
	if !errors.Is(err, session.ErrIncompleteSession) {
		t.Fatalf("got err %v, want %v", err, session.ErrIncompleteSession)
	}

	// Write a single key directly to simulate a half written pair
	err = db.db.Put([]byte(keySessionID), []byte("s1"), nil)
	if err != nil {
		t.Fatal(err)
	}
	s, err := db.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s != nil {
		t.Fatalf("got session %+v, want nil", s)
	}
	ok, err := db.db.Has([]byte(keySessionID), nil)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatalf("orphaned session id was not removed")
	}
}
