// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package binder binds the shop of the active route. It resolves the shop
// slug of the route into the shop and tracks the progress of the lookup.
package binder

import (
	"context"
	"fmt"
	"sync"

	v1 "github.com/decred/peermall/api/v1"
	"github.com/decred/peermall/gateway"
	"github.com/decred/peermall/nav"
)

// StatusT represents the status of the binding.
type StatusT int

const (
	// StatusIdle means there is no slug to bind.
	StatusIdle StatusT = iota

	// StatusLoading means the shop is being fetched.
	StatusLoading

	// StatusReady means the shop has been fetched.
	StatusReady

	// StatusNotFound means no shop exists for the slug.
	StatusNotFound

	// StatusError means the shop could not be fetched.
	StatusError
)

var (
	// Statuses contains the human readable statuses.
	Statuses = map[StatusT]string{
		StatusIdle:     "idle",
		StatusLoading:  "loading",
		StatusReady:    "ready",
		StatusNotFound: "not found",
		StatusError:    "error",
	}
)

// String returns the human readable status.
func (s StatusT) String() string {
	str, ok := Statuses[s]
	if !ok {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return str
}

// State is a snapshot of the binding. Shop is only set when the status is
// StatusReady and Message only when it is StatusError.
type State struct {
	Status  StatusT
	Slug    string
	Shop    *v1.Shop
	Message string
}

// Fetcher fetches a shop by its url slug. A gateway.RespErr of kind
// gateway.ErrorKindNotFound is expected when the shop does not exist.
type Fetcher interface {
	ShopBySlug(ctx context.Context, slug string) (*v1.Shop, error)
}

// Binder binds a single shop at a time.
//
// Every bind increments the generation and cancels the fetch of the
// previous bind. A fetch result is only applied if its generation is still
// the latest, so a slow fetch for a previous slug can never replace the
// binding of the current one.
type Binder struct {
	sync.Mutex
	fetcher Fetcher
	ctx     context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup

	state  State
	gen    uint64
	cancel context.CancelFunc // Cancels the current fetch
	closed bool

	listeners map[int]func(State)
	nextID    int
}

// snapshot returns a copy of the state. This function must be called WITH
// the lock held.
func (b *Binder) snapshot() State {
	s := b.state
	if s.Shop != nil {
		shop := *s.Shop
		s.Shop = &shop
	}
	return s
}

// setState replaces the state and notifies the subscribers. This function
// must be called WITH the lock held.
func (b *Binder) setState(s State) {
	log.Debugf("Binding %q: %v -> %v", s.Slug, b.state.Status, s.Status)

	b.state = s
	snap := b.snapshot()
	for _, fn := range b.listeners {
		fn(snap)
	}
}

// unbind cancels the current fetch and invalidates its result. This
// function must be called WITH the lock held.
func (b *Binder) unbind() {
	b.gen++
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

// bind starts fetching the shop for the slug. This function must be called
// WITH the lock held.
func (b *Binder) bind(slug string) {
	b.unbind()

	ctx, cancel := context.WithCancel(b.ctx)
	b.cancel = cancel
	gen := b.gen

	b.setState(State{
		Status: StatusLoading,
		Slug:   slug,
	})

	b.wg.Add(1)
	go b.fetch(ctx, gen, slug)
}

// fetch fetches the shop and applies the result if the generation is still
// current.
func (b *Binder) fetch(ctx context.Context, gen uint64, slug string) {
	defer b.wg.Done()

	shop, err := b.fetcher.ShopBySlug(ctx, slug)

	b.Lock()
	defer b.Unlock()

	if gen != b.gen {
		log.Tracef("Discarding stale result for %q", slug)
		return
	}
	b.cancel = nil

	s := State{
		Slug: slug,
	}
	switch {
	case err == nil && shop == nil:
		s.Status = StatusNotFound
	case err == nil && shop.URLSlug != "" && shop.URLSlug != slug:
		log.Errorf("Shop slug mismatch: got %q, want %q", shop.URLSlug, slug)
		s.Status = StatusError
		s.Message = fmt.Sprintf("got shop %q for slug %q", shop.URLSlug, slug)
	case err == nil:
		s.Status = StatusReady
		s.Shop = shop
	case gateway.IsKind(err, gateway.ErrorKindNotFound):
		s.Status = StatusNotFound
	default:
		log.Debugf("Fetch %q: %v", slug, err)
		s.Status = StatusError
		s.Message = err.Error()
	}
	b.setState(s)
}

// SetSlug binds the shop with the provided slug. An empty slug unbinds the
// current shop. Setting the slug that is already bound is a no-op.
func (b *Binder) SetSlug(slug string) {
	b.Lock()
	defer b.Unlock()

	switch {
	case b.closed:
		return
	case slug == b.state.Slug:
		return
	case slug == "":
		b.unbind()
		b.setState(State{Status: StatusIdle})
		return
	}

	b.bind(slug)
}

// SetRoute binds the shop of a shop scoped route. Any other route unbinds
// the current shop. It can be passed to nav.History.Subscribe directly.
func (b *Binder) SetRoute(route string) {
	slug, _ := nav.ShopSlug(route)
	b.SetSlug(slug)
}

// Refresh fetches the bound shop again.
func (b *Binder) Refresh() {
	b.Lock()
	defer b.Unlock()

	if b.closed || b.state.Slug == "" {
		return
	}
	b.bind(b.state.Slug)
}

// State returns a snapshot of the binding.
func (b *Binder) State() State {
	b.Lock()
	defer b.Unlock()

	return b.snapshot()
}

// IsOwner returns whether the bound shop is owned by the user.
func (b *Binder) IsOwner(u *v1.User) bool {
	b.Lock()
	defer b.Unlock()

	return u != nil && b.state.Status == StatusReady &&
		b.state.Shop.OwnerUID == u.UID
}

// Subscribe registers a function that is called with every new state. The
// function is called with the Binder lock held and must not call back into
// the Binder. The returned function removes the subscription.
func (b *Binder) Subscribe(fn func(State)) func() {
	b.Lock()
	defer b.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = fn

	return func() {
		b.Lock()
		defer b.Unlock()

		delete(b.listeners, id)
	}
}

// Wait waits for all outstanding fetches to return.
func (b *Binder) Wait() {
	b.wg.Wait()
}

// Close cancels all outstanding fetches and waits for them to return. The
// binding is frozen afterwards.
func (b *Binder) Close() {
	b.Lock()
	b.closed = true
	b.unbind()
	b.Unlock()

	b.stop()
	b.wg.Wait()
}

// New returns a new, idle Binder.
func New(f Fetcher) *Binder {
	ctx, stop := context.WithCancel(context.Background())
	return &Binder{
		fetcher:   f,
		ctx:       ctx,
		stop:      stop,
		listeners: make(map[int]func(State)),
	}
}
