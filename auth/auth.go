// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package auth implements the session controller. The controller owns the
// identity of the current user, verifies the stored session on startup and
// implements login and logout.
package auth

import (
	"context"
	"fmt"
	"sync"

	v1 "github.com/decred/peermall/api/v1"
	"github.com/decred/peermall/gateway"
	"github.com/decred/peermall/nav"
	"github.com/decred/peermall/notice"
	"github.com/decred/peermall/session"
	"github.com/decred/peermall/sponsor"
	"github.com/pkg/errors"
)

var (
	// ErrNotAuthenticated is returned when an operation that requires
	// an authenticated user is called without one.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// StateT represents a session controller state.
type StateT int

const (
	// StateUnverified is the initial state. Start has not been called.
	StateUnverified StateT = iota

	// StateVerifying means the stored session is being verified.
	StateVerifying

	// StateUnauthenticated means there is no user.
	StateUnauthenticated

	// StateAuthenticatedUngated means the user is authenticated and has
	// passed the sponsor gate.
	StateAuthenticatedUngated

	// StateAuthenticatedGated means the user is authenticated but must
	// select a sponsor before using the app.
	StateAuthenticatedGated
)

var (
	// States contains the human readable states.
	States = map[StateT]string{
		StateUnverified:           "unverified",
		StateVerifying:            "verifying",
		StateUnauthenticated:      "unauthenticated",
		StateAuthenticatedUngated: "authenticated",
		StateAuthenticatedGated:   "authenticated (sponsor required)",
	}
)

// String returns the human readable state.
func (s StateT) String() string {
	str, ok := States[s]
	if !ok {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return str
}

// State is a snapshot of the controller state. User is non-nil iff
// Authenticated is true.
type State struct {
	State         StateT
	User          *v1.User
	Authenticated bool
	Loading       bool
}

// Gateway contains the API calls that are used by the controller.
type Gateway interface {
	Me(ctx context.Context) (*v1.User, error)
	Logout(ctx context.Context, s session.Session) error
}

// Gate is the sponsor gate.
type Gate interface {
	Evaluate(ctx context.Context, u *v1.User) (sponsor.Decision, error)
	Select(ctx context.Context, sponsorID, uid string) (*sponsor.Selection, error)
}

// Config contains the controller dependencies. The notifier is optional.
type Config struct {
	Store     session.Store
	Gateway   Gateway
	Gate      Gate
	Navigator nav.Navigator
	Notifier  notice.Notifier
}

// Controller is the session controller.
type Controller struct {
	sync.Mutex
	store    session.Store
	gw       Gateway
	gate     Gate
	nav      nav.Navigator
	notifier notice.Notifier

	// sessionMtx serializes the store writes of Login and logout with
	// the epoch changes that go with them.
	sessionMtx sync.Mutex

	// epoch is bumped on every login and logout. Results of network
	// calls that were issued in an older epoch are dropped and their
	// contexts are canceled.
	epoch     uint64
	cancels   map[int]context.CancelFunc
	state     State
	listeners map[int]func(State)
	nextID    int
}

// snapshot returns a copy of the state. This function must be called WITH
// the lock held.
func (c *Controller) snapshot() State {
	s := c.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// apply replaces the state and notifies the subscribers. The user is
// replaced wholesale. This function must be called WITH the lock held.
func (c *Controller) apply(st StateT, u *v1.User) {
	if u != nil {
		cp := *u
		u = &cp
	}
	prev := c.state.State
	c.state = State{
		State:         st,
		User:          u,
		Authenticated: u != nil,
		Loading:       st == StateVerifying,
	}

	log.Debugf("State: %v -> %v", prev, st)

	s := c.snapshot()
	for _, fn := range c.listeners {
		fn(s)
	}
}

// current returns the epoch.
func (c *Controller) current() uint64 {
	c.Lock()
	defer c.Unlock()

	return c.epoch
}

// transition replaces the state if epoch is still the current epoch. It
// returns false when the state was left untouched.
func (c *Controller) transition(epoch uint64, st StateT, u *v1.User) bool {
	c.Lock()
	defer c.Unlock()

	if epoch != c.epoch {
		log.Debugf("Dropping stale transition to %v", st)
		return false
	}
	c.apply(st, u)
	return true
}

// reset starts a new epoch with the provided state and returns the epoch.
func (c *Controller) reset(st StateT, u *v1.User) uint64 {
	c.Lock()
	defer c.Unlock()

	c.epoch++
	for id, cancel := range c.cancels {
		cancel()
		delete(c.cancels, id)
	}
	c.apply(st, u)
	return c.epoch
}

// bind returns a context for the network calls of epoch. The context is
// canceled when the epoch ends. The returned function must be called once
// the calls have completed.
func (c *Controller) bind(ctx context.Context, epoch uint64) (context.Context, func()) {
	c.Lock()
	defer c.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	if epoch != c.epoch {
		cancel()
		return ctx, cancel
	}
	id := c.nextID
	c.nextID++
	c.cancels[id] = cancel

	return ctx, func() {
		c.Lock()
		delete(c.cancels, id)
		c.Unlock()
		cancel()
	}
}

// State returns a snapshot of the controller state.
func (c *Controller) State() State {
	c.Lock()
	defer c.Unlock()

	return c.snapshot()
}

// Subscribe registers a function that is called with every new state. The
// function must not call back into the Controller. The returned function
// removes the subscription.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.Lock()
	defer c.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.Lock()
		defer c.Unlock()

		delete(c.listeners, id)
	}
}

// Start verifies the stored session. Any failure is handled by logging
// out; the returned error describes the failure. The controller always ends
// up in a resolved state.
//
// A Login or Logout that happens while the session is being verified wins
// over the verification result.
func (c *Controller) Start(ctx context.Context) error {
	epoch := c.current()

	s, err := c.store.Get(ctx)
	if err != nil {
		log.Errorf("Start: get session: %v", err)
		c.logout(ctx, epoch, false)
		return errors.Wrap(err, "get session")
	}
	if s == nil {
		log.Debugf("Start: no session")
		c.transition(epoch, StateUnauthenticated, nil)
		return nil
	}

	if !c.transition(epoch, StateVerifying, nil) {
		return nil
	}

	bctx, release := c.bind(ctx, epoch)
	defer release()

	u, err := c.gw.Me(bctx)
	if err != nil && c.current() != epoch {
		log.Debugf("Session verification superseded: %v", err)
		return nil
	}
	if err != nil {
		// Verification is not retried. The gateway has already sent
		// the user to the login page if the session expired.
		log.Infof("Session verification failed: %v", err)
		c.logout(ctx, epoch, quiet(err))
		return errors.Wrap(err, "verify session")
	}

	// The user is authenticated but gated until the sponsor lookup has
	// completed.
	if !c.transition(epoch, StateAuthenticatedGated, u) {
		log.Debugf("Session verified after the session changed: %v",
			u.UID)
		return nil
	}

	log.Infof("Session verified: %v", u.UID)

	return c.authenticate(ctx, epoch, u)
}

// authenticate applies the sponsor gate to a gated user.
func (c *Controller) authenticate(ctx context.Context, epoch uint64, u *v1.User) error {
	bctx, release := c.bind(ctx, epoch)
	defer release()

	d, err := c.gate.Evaluate(bctx, u)
	switch {
	case gateway.IsKind(err, gateway.ErrorKindSessionExpired):
		c.logout(ctx, epoch, true)
		return errors.Wrap(err, "sponsor lookup")
	case err != nil:
		log.Warnf("Sponsor lookup failed, gate closed: %v", err)
		return nil
	case d == sponsor.DecisionRedirect:
		return nil
	}

	c.transition(epoch, StateAuthenticatedUngated, u)
	return nil
}

// Login stores the session and sets the user without verifying it. The
// sponsor gate is then applied.
func (c *Controller) Login(ctx context.Context, s session.Session, u v1.User) error {
	c.sessionMtx.Lock()
	err := c.store.Set(ctx, s)
	if err != nil {
		c.sessionMtx.Unlock()
		return errors.Wrap(err, "set session")
	}
	epoch := c.reset(StateAuthenticatedGated, &u)
	c.sessionMtx.Unlock()

	log.Infof("Logged in: %v", u.UID)

	c.notifier.Notify(notice.LoggedIn)

	return c.authenticate(ctx, epoch, &u)
}

// Logout ends the session. Local state is always cleared; the server is
// notified on a best effort basis. It is safe to call Logout without a
// session.
func (c *Controller) Logout(ctx context.Context) {
	c.logout(ctx, anyEpoch, false)
}

// anyEpoch makes logout unconditional.
const anyEpoch = ^uint64(0)

// logout implements Logout. A logout that was issued for an epoch that has
// since ended is dropped. A quiet logout skips the notice and the redirect
// to the landing page.
func (c *Controller) logout(ctx context.Context, epoch uint64, quiet bool) {
	c.sessionMtx.Lock()
	if epoch != anyEpoch && epoch != c.current() {
		c.sessionMtx.Unlock()
		log.Debugf("Dropping stale logout")
		return
	}

	// Capture the session before clearing it
	s, err := c.store.Get(ctx)
	if err != nil {
		log.Errorf("Logout: get session: %v", err)
	}

	c.reset(StateUnauthenticated, nil)

	err = c.store.Clear(ctx)
	if err != nil {
		log.Errorf("Logout: clear session: %v", err)
	}
	c.sessionMtx.Unlock()

	if s != nil {
		err = c.gw.Logout(ctx, *s)
		if err != nil {
			log.Warnf("Logout: server notify failed: %v", err)
		}
	}

	if quiet {
		return
	}

	log.Infof("Logged out")

	c.notifier.Notify(notice.LoggedOut)
	c.nav.Navigate(nav.RouteLanding)
}

// SelectSponsor records the sponsor selected by the current user and opens
// the sponsor gate.
func (c *Controller) SelectSponsor(ctx context.Context, sponsorID string) (*sponsor.Selection, error) {
	c.Lock()
	st, epoch := c.snapshot(), c.epoch
	c.Unlock()
	if !st.Authenticated {
		return nil, ErrNotAuthenticated
	}

	bctx, release := c.bind(ctx, epoch)
	defer release()

	sel, err := c.gate.Select(bctx, sponsorID, st.User.UID)
	switch {
	case gateway.IsKind(err, gateway.ErrorKindSessionExpired):
		c.logout(ctx, epoch, true)
		return nil, err
	case err != nil:
		return nil, err
	}

	c.transition(epoch, StateAuthenticatedUngated, st.User)
	return sel, nil
}

// quiet returns whether a verification failure has already been reported
// to the user.
func quiet(err error) bool {
	return gateway.IsKind(err, gateway.ErrorKindSessionExpired) ||
		errors.Is(err, gateway.ErrNoSession)
}

// New returns a new Controller in the unverified state.
func New(cfg Config) (*Controller, error) {
	switch {
	case cfg.Store == nil:
		return nil, errors.New("session store not provided")
	case cfg.Gateway == nil:
		return nil, errors.New("gateway not provided")
	case cfg.Gate == nil:
		return nil, errors.New("sponsor gate not provided")
	case cfg.Navigator == nil:
		return nil, errors.New("navigator not provided")
	}
	n := cfg.Notifier
	if n == nil {
		n = notice.Discard
	}

	return &Controller{
		store:     cfg.Store,
		gw:        cfg.Gateway,
		gate:      cfg.Gate,
		nav:       cfg.Navigator,
		notifier:  n,
		state:     State{State: StateUnverified},
		cancels:   make(map[int]context.CancelFunc),
		listeners: make(map[int]func(State)),
	}, nil
}
