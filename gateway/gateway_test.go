// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gateway

import (
	"context"
	"sync"
	"testing"
	"time"

	v1 "github.com/decred/peermall/api/v1"
	"github.com/decred/peermall/nav"
	"github.com/decred/peermall/notice"
	"github.com/decred/peermall/session"
	"github.com/decred/peermall/session/memstore"
	"github.com/decred/peermall/testpeermall"
)

const (
	testStart = "/peermall/start"
)

// recorder is a Notifier that records all notices.
type recorder struct {
	sync.Mutex
	notices []notice.Notice
}

func (r *recorder) Notify(n notice.Notice) {
	r.Lock()
	defer r.Unlock()

	r.notices = append(r.notices, n)
}

func (r *recorder) all() []notice.Notice {
	r.Lock()
	defer r.Unlock()

	n := make([]notice.Notice, len(r.notices))
	copy(n, r.notices)
	return n
}

// count returns the number of times the notice was delivered.
func (r *recorder) count(n notice.Notice) int {
	var c int
	for _, v := range r.all() {
		if v == n {
			c++
		}
	}
	return c
}

type testEnv struct {
	client  *Client
	server  *testpeermall.TestPeermall
	store   *memstore.Store
	history *nav.History
	notices *recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	server := testpeermall.New(t)
	store := memstore.New()
	history := nav.NewHistory(testStart)
	notices := &recorder{}
	c, err := New(Config{
		Host:      server.URL,
		Timeout:   10 * time.Second,
		Store:     store,
		Navigator: history,
		Notifier:  notices,
	})
	if err != nil {
		t.Fatal(err)
	}

	return &testEnv{
		client:  c,
		server:  server,
		store:   store,
		history: history,
		notices: notices,
	}
}

// login creates a user, logs in and stores the session.
func (e *testEnv) login(t *testing.T) (*v1.LoginReply, session.Session) {
	t.Helper()

	ctx := context.Background()
	e.server.AddUser("alice@example.com", "password", "alice")
	lr, err := e.client.Login(ctx, v1.Login{
		Email:    "alice@example.com",
		Password: "password",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	s := session.Session{
		ID:        lr.SessionID,
		CSRFToken: lr.CSRFToken,
	}
	err = e.store.Set(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	return lr, s
}

// stored returns the stored session.
func (e *testEnv) stored(t *testing.T) *session.Session {
	t.Helper()

	s, err := e.store.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// waitForCalls waits until the server has received n calls on the route.
func waitForCalls(t *testing.T, p *testpeermall.TestPeermall, route string, n int) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for p.Calls(route) < n {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %v calls on %v, got %v",
				n, route, p.Calls(route))
		}
		time.Sleep(5 * time.Millisecond)
	}
}
