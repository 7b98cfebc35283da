// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	v1 "github.com/decred/peermall/api/v1"
	"github.com/decred/peermall/gateway"
	"github.com/decred/peermall/nav"
	"github.com/decred/peermall/notice"
	"github.com/decred/peermall/session"
	"github.com/decred/peermall/session/memstore"
	"github.com/decred/peermall/sponsor"
	"github.com/decred/peermall/testpeermall"
	"github.com/go-test/deep"
)

var (
	testUser = v1.User{
		UID:   "u1",
		Email: "a@x.com",
	}
	testSession = session.Session{
		ID:        "s1",
		CSRFToken: "c1",
	}
)

// testGateway is a Gateway that returns canned replies.
type testGateway struct {
	sync.Mutex
	user      *v1.User
	meErr     error
	logoutErr error

	// Me signals entered and waits on block when block is set. The
	// context is ignored so that late replies can be simulated.
	entered chan struct{}
	block   chan struct{}

	meCalls int
	logouts []session.Session
}

func (g *testGateway) Me(ctx context.Context) (*v1.User, error) {
	g.Lock()
	g.meCalls++
	u, err := g.user, g.meErr
	g.Unlock()

	if g.block != nil {
		g.entered <- struct{}{}
		<-g.block
	}
	return u, err
}

func (g *testGateway) Logout(ctx context.Context, s session.Session) error {
	g.Lock()
	defer g.Unlock()

	g.logouts = append(g.logouts, s)
	return g.logoutErr
}

// testSponsors is a sponsor.Gateway that returns canned replies.
type testSponsors struct {
	rel    *v1.SponsorRelationship
	relErr error
	shop   *v1.Shop

	// SponsorByUser signals entered and waits on block when block is
	// set. The context is ignored.
	entered chan struct{}
	block   chan struct{}
}

func (g *testSponsors) SponsorByUser(ctx context.Context, uid string) (*v1.SponsorRelationship, error) {
	rel, err := g.rel, g.relErr
	if g.block != nil {
		g.entered <- struct{}{}
		<-g.block
	}
	return rel, err
}

func (g *testSponsors) SponsorSelect(ctx context.Context, ss v1.SponsorSelect) (*v1.SponsorRelationship, error) {
	g.rel = &v1.SponsorRelationship{
		SponsorID: ss.SponsorID,
		UserUID:   ss.UserUID,
		Status:    v1.SponsorStatusActive,
	}
	return g.rel, nil
}

func (g *testSponsors) ShopByOwner(ctx context.Context, uid string) (*v1.Shop, error) {
	if g.shop == nil {
		return nil, gateway.RespErr{
			Kind:     gateway.ErrorKindNotFound,
			HTTPCode: http.StatusNotFound,
		}
	}
	return g.shop, nil
}

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

	return append([]notice.Notice{}, r.notices...)
}

type testEnv struct {
	c        *Controller
	store    *memstore.Store
	gw       *testGateway
	sponsors *testSponsors
	history  *nav.History
	notices  *recorder
}

func newTestEnv(t *testing.T, gw *testGateway, sponsors *testSponsors) *testEnv {
	t.Helper()

	var (
		store   = memstore.New()
		history = nav.NewHistory(nav.RouteLanding)
		notices = &recorder{}
	)
	c, err := New(Config{
		Store:     store,
		Gateway:   gw,
		Gate:      sponsor.New(sponsors, history, notice.Discard),
		Navigator: history,
		Notifier:  notices,
	})
	if err != nil {
		t.Fatal(err)
	}

	return &testEnv{
		c:        c,
		store:    store,
		gw:       gw,
		sponsors: sponsors,
		history:  history,
		notices:  notices,
	}
}

func (e *testEnv) stored(t *testing.T) *session.Session {
	t.Helper()

	s, err := e.store.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func (e *testEnv) setSession(t *testing.T, s session.Session) {
	t.Helper()

	err := e.store.Set(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
}

// checkInvariant verifies that a user exists iff the state is
// authenticated.
func checkInvariant(t *testing.T, s State) {
	t.Helper()

	if (s.User != nil) != s.Authenticated {
		t.Errorf("user %+v with authenticated %v", s.User, s.Authenticated)
	}
}

func TestStartNoSession(t *testing.T) {
	e := newTestEnv(t, &testGateway{}, &testSponsors{})

	err := e.c.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	st := e.c.State()
	if st.State != StateUnauthenticated || st.Authenticated {
		t.Errorf("got state %+v", st)
	}
	if e.gw.meCalls != 0 {
		t.Errorf("got %v me calls, want 0", e.gw.meCalls)
	}
	checkInvariant(t, st)
}

func TestStartVerified(t *testing.T) {
	var tests = []struct {
		name      string
		sponsors  testSponsors
		wantState StateT
		wantRoute string
	}{
		{
			"sponsor",
			testSponsors{rel: &v1.SponsorRelationship{SponsorID: "x"}},
			StateAuthenticatedUngated,
			nav.RouteLanding,
		},
		{
			"no sponsor",
			testSponsors{},
			StateAuthenticatedGated,
			nav.RouteSponsorSelect,
		},
		{
			"sponsor lookup failure",
			testSponsors{relErr: gateway.RespErr{
				Kind: gateway.ErrorKindNetwork,
			}},
			StateAuthenticatedGated,
			nav.RouteSponsorSelect,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u := testUser
			e := newTestEnv(t, &testGateway{user: &u}, &tc.sponsors)
			e.setSession(t, testSession)

			err := e.c.Start(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			st := e.c.State()
			if st.State != tc.wantState || !st.Authenticated || st.Loading {
				t.Errorf("got state %+v", st)
			}
			if diff := deep.Equal(*st.User, testUser); diff != nil {
				t.Error(diff)
			}
			if got := e.history.Current(); got != tc.wantRoute {
				t.Errorf("got route %v, want %v", got, tc.wantRoute)
			}
			checkInvariant(t, st)
		})
	}
}

func TestStartFailClosed(t *testing.T) {
	var tests = []struct {
		name       string
		err        error
		quiet      bool
		wantLogout bool
	}{
		{
			"network failure",
			gateway.RespErr{Kind: gateway.ErrorKindNetwork},
			false,
			true,
		},
		{
			"server fault",
			gateway.RespErr{
				Kind:     gateway.ErrorKindServerFault,
				HTTPCode: http.StatusInternalServerError,
			},
			false,
			true,
		},
		{
			"forbidden",
			gateway.RespErr{
				Kind:     gateway.ErrorKindForbidden,
				HTTPCode: http.StatusForbidden,
			},
			false,
			true,
		},
		{
			// The gateway has already cleared the session in
			// this case. The test gateway does not, so the
			// server is still notified.
			"session expired",
			gateway.RespErr{
				Kind:     gateway.ErrorKindSessionExpired,
				HTTPCode: http.StatusUnauthorized,
			},
			true,
			true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEnv(t, &testGateway{meErr: tc.err}, &testSponsors{})
			e.setSession(t, testSession)

			err := e.c.Start(context.Background())
			if !errors.Is(err, tc.err) {
				t.Fatalf("got err %v, want %v", err, tc.err)
			}
			st := e.c.State()
			if st.State != StateUnauthenticated || st.Authenticated {
				t.Errorf("got state %+v", st)
			}
			checkInvariant(t, st)
			if s := e.stored(t); s != nil {
				t.Errorf("session not cleared: %+v", s)
			}
			if e.gw.meCalls != 1 {
				t.Errorf("got %v me calls, want 1", e.gw.meCalls)
			}
			if tc.wantLogout && len(e.gw.logouts) != 1 {
				t.Errorf("got %v server logouts, want 1", len(e.gw.logouts))
			}

			n := e.notices.all()
			switch {
			case tc.quiet && len(n) != 0:
				t.Errorf("unexpected notices: %v", n)
			case !tc.quiet && (len(n) != 1 || n[0] != notice.LoggedOut):
				t.Errorf("got notices %v, want logged out", n)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t, &testGateway{}, &testSponsors{})
	ctx := context.Background()

	err := e.c.Login(ctx, testSession, testUser)
	if err != nil {
		t.Fatal(err)
	}

	if s := e.stored(t); s == nil || *s != testSession {
		t.Errorf("got session %+v, want %+v", s, testSession)
	}
	st := e.c.State()
	if !st.Authenticated || st.State != StateAuthenticatedGated {
		t.Errorf("got state %+v", st)
	}
	checkInvariant(t, st)
	if got := e.history.Current(); got != nav.RouteSponsorSelect {
		t.Errorf("got route %v, want %v", got, nav.RouteSponsorSelect)
	}
	if e.gw.meCalls != 0 {
		t.Errorf("login verified the user")
	}
}

func TestLoginIncompleteSession(t *testing.T) {
	e := newTestEnv(t, &testGateway{}, &testSponsors{})

	err := e.c.Login(context.Background(), session.Session{ID: "s1"},
		testUser)
	if !errors.Is(err, session.ErrIncompleteSession) {
		t.Fatalf("got err %v, want %v", err, session.ErrIncompleteSession)
	}
	if st := e.c.State(); st.State != StateUnverified || st.Authenticated {
		t.Errorf("got state %+v", st)
	}
	if s := e.stored(t); s != nil {
		t.Errorf("got session %+v, want nil", s)
	}
}

func TestLogout(t *testing.T) {
	var tests = []struct {
		name      string
		session   *session.Session
		logoutErr error
	}{
		{
			"success",
			&testSession,
			nil,
		},
		{
			"server failure",
			&testSession,
			gateway.RespErr{Kind: gateway.ErrorKindNetwork},
		},
		{
			"no session",
			nil,
			nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			e := newTestEnv(t, &testGateway{logoutErr: tc.logoutErr},
				&testSponsors{rel: &v1.SponsorRelationship{}})
			if tc.session != nil {
				err := e.c.Login(ctx, *tc.session, testUser)
				if err != nil {
					t.Fatal(err)
				}
				e.history.Navigate("/peermall/x")
			}

			e.c.Logout(ctx)

			st := e.c.State()
			if st.State != StateUnauthenticated || st.Authenticated {
				t.Errorf("got state %+v", st)
			}
			checkInvariant(t, st)
			if s := e.stored(t); s != nil {
				t.Errorf("session not cleared: %+v", s)
			}
			if got := e.history.Current(); got != nav.RouteLanding {
				t.Errorf("got route %v, want %v", got, nav.RouteLanding)
			}

			var want []session.Session
			if tc.session != nil {
				want = []session.Session{*tc.session}
			}
			if diff := deep.Equal(e.gw.logouts, want); diff != nil {
				t.Error(diff)
			}

			n := e.notices.all()
			if len(n) == 0 || n[len(n)-1] != notice.LoggedOut {
				t.Errorf("got notices %v, want logged out last", n)
			}
		})
	}
}

func TestSubscribe(t *testing.T) {
	u := testUser
	e := newTestEnv(t, &testGateway{user: &u},
		&testSponsors{rel: &v1.SponsorRelationship{}})
	e.setSession(t, testSession)

	var got []StateT
	unsubscribe := e.c.Subscribe(func(s State) {
		got = append(got, s.State)
		if s.Loading != (s.State == StateVerifying) {
			t.Errorf("loading %v in state %v", s.Loading, s.State)
		}
	})

	err := e.c.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []StateT{
		StateVerifying,
		StateAuthenticatedGated,
		StateAuthenticatedUngated,
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}

	// No notifications after unsubscribing
	unsubscribe()
	e.c.Logout(context.Background())
	if len(got) != len(want) {
		t.Errorf("notified after unsubscribe: %v", got)
	}
}

func TestSelectSponsor(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t, &testGateway{}, &testSponsors{
		shop: &v1.Shop{URLSlug: "bobs-books", OwnerUID: testUser.UID},
	})

	_, err := e.c.SelectSponsor(ctx, "sponsor1")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("got err %v, want %v", err, ErrNotAuthenticated)
	}

	err = e.c.Login(ctx, testSession, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if st := e.c.State(); st.State != StateAuthenticatedGated {
		t.Fatalf("got state %v, want gated", st.State)
	}

	sel, err := e.c.SelectSponsor(ctx, "sponsor1")
	if err != nil {
		t.Fatal(err)
	}
	if sel.Relationship.SponsorID != "sponsor1" {
		t.Errorf("got sponsor %v", sel.Relationship.SponsorID)
	}
	if st := e.c.State(); st.State != StateAuthenticatedUngated {
		t.Errorf("got state %v, want ungated", st.State)
	}
	if got := e.history.Current(); got != "/peermall/bobs-books" {
		t.Errorf("got route %v", got)
	}
}

// TestGatedStartup runs startup against an API server that no longer knows
// the stored session.
func TestGatedStartup(t *testing.T) {
	ctx := context.Background()
	server := testpeermall.New(t)
	store := memstore.New()
	err := store.Set(ctx, testSession)
	if err != nil {
		t.Fatal(err)
	}
	history := nav.NewHistory(nav.RouteLanding)
	notices := &recorder{}
	gw, err := gateway.New(gateway.Config{
		Host:      server.URL,
		Store:     store,
		Navigator: history,
		Notifier:  notices,
	})
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(Config{
		Store:     store,
		Gateway:   gw,
		Gate:      sponsor.New(gw, history, notices),
		Navigator: history,
		Notifier:  notices,
	})
	if err != nil {
		t.Fatal(err)
	}

	err = c.Start(ctx)
	if !gateway.IsKind(err, gateway.ErrorKindSessionExpired) {
		t.Fatalf("got err %v, want session expired", err)
	}

	st := c.State()
	if st.Authenticated || st.State != StateUnauthenticated {
		t.Errorf("got state %+v", st)
	}
	s, err := store.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s != nil {
		t.Errorf("session not cleared: %+v", s)
	}
	if got := history.Current(); got != nav.RouteLogin {
		t.Errorf("got route %v, want %v", got, nav.RouteLogin)
	}
	want := []notice.Notice{notice.SessionExpired}
	if diff := deep.Equal(notices.all(), want); diff != nil {
		t.Error(diff)
	}
	if c := server.Calls(v1.RouteUserLogout); c != 0 {
		t.Errorf("got %v logout calls, want 0", c)
	}
}

// TestLoginLogoutFlow runs a full cycle against the API server.
func TestLoginLogoutFlow(t *testing.T) {
	ctx := context.Background()
	server := testpeermall.New(t)
	u := server.AddUser("a@x.com", "password", "a")
	server.AddSponsor(v1.SponsorRelationship{
		SponsorID: "s1",
		UserUID:   u.UID,
		Status:    v1.SponsorStatusActive,
	})

	store := memstore.New()
	history := nav.NewHistory(nav.RouteLogin)
	gw, err := gateway.New(gateway.Config{
		Host:      server.URL,
		Store:     store,
		Navigator: history,
	})
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(Config{
		Store:     store,
		Gateway:   gw,
		Gate:      sponsor.New(gw, history, nil),
		Navigator: history,
	})
	if err != nil {
		t.Fatal(err)
	}

	lr, err := gw.Login(ctx, v1.Login{Email: "a@x.com", Password: "password"})
	if err != nil {
		t.Fatal(err)
	}
	err = c.Login(ctx, session.Session{
		ID:        lr.SessionID,
		CSRFToken: lr.CSRFToken,
	}, lr.User)
	if err != nil {
		t.Fatal(err)
	}
	if st := c.State(); st.State != StateAuthenticatedUngated {
		t.Fatalf("got state %v, want ungated", st.State)
	}

	// A restarted client verifies the stored session
	c2, err := New(Config{
		Store:     store,
		Gateway:   gw,
		Gate:      sponsor.New(gw, history, nil),
		Navigator: history,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = c2.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st := c2.State(); st.State != StateAuthenticatedUngated ||
		st.User.UID != u.UID {
		t.Fatalf("got state %+v", st)
	}

	c2.Logout(ctx)
	if n := server.Sessions(); n != 0 {
		t.Errorf("got %v server sessions, want 0", n)
	}
	if got := history.Current(); got != nav.RouteLanding {
		t.Errorf("got route %v, want %v", got, nav.RouteLanding)
	}
}

func TestLogoutDuringVerification(t *testing.T) {
	u := testUser
	gw := &testGateway{
		user:    &u,
		entered: make(chan struct{}),
		block:   make(chan struct{}),
	}
	e := newTestEnv(t, gw, &testSponsors{rel: &v1.SponsorRelationship{}})
	e.setSession(t, testSession)
	ctx := context.Background()

	errc := make(chan error)
	go func() {
		errc <- e.c.Start(ctx)
	}()
	<-gw.entered

	e.c.Logout(ctx)

	// The late verification reply must not bring the user back
	close(gw.block)
	err := <-errc
	if err != nil {
		t.Fatal(err)
	}

	st := e.c.State()
	if st.State != StateUnauthenticated || st.Authenticated {
		t.Errorf("got state %+v", st)
	}
	checkInvariant(t, st)
	if s := e.stored(t); s != nil {
		t.Errorf("session not cleared: %+v", s)
	}
	if got := e.history.Current(); got != nav.RouteLanding {
		t.Errorf("got route %v, want %v", got, nav.RouteLanding)
	}
}

func TestLogoutDuringSponsorLookup(t *testing.T) {
	sponsors := &testSponsors{
		entered: make(chan struct{}),
		block:   make(chan struct{}),
	}
	e := newTestEnv(t, &testGateway{}, sponsors)
	ctx := context.Background()

	errc := make(chan error)
	go func() {
		errc <- e.c.Login(ctx, testSession, testUser)
	}()
	<-sponsors.entered

	e.c.Logout(ctx)

	// The user has no sponsor. The late lookup must neither restore
	// the user nor redirect to the sponsor selection page.
	close(sponsors.block)
	err := <-errc
	if err != nil {
		t.Fatal(err)
	}

	st := e.c.State()
	if st.State != StateUnauthenticated || st.Authenticated {
		t.Errorf("got state %+v", st)
	}
	checkInvariant(t, st)
	if s := e.stored(t); s != nil {
		t.Errorf("session not cleared: %+v", s)
	}
	for _, r := range e.history.Visited() {
		if r == nav.RouteSponsorSelect {
			t.Errorf("redirected to %v after logout", r)
		}
	}
	if got := e.history.Current(); got != nav.RouteLanding {
		t.Errorf("got route %v, want %v", got, nav.RouteLanding)
	}
}

func TestLoginDuringVerification(t *testing.T) {
	stale := v1.User{
		UID:   "u0",
		Email: "old@x.com",
	}
	gw := &testGateway{
		user:    &stale,
		entered: make(chan struct{}),
		block:   make(chan struct{}),
	}
	e := newTestEnv(t, gw, &testSponsors{rel: &v1.SponsorRelationship{}})
	e.setSession(t, session.Session{ID: "s0", CSRFToken: "c0"})
	ctx := context.Background()

	errc := make(chan error)
	go func() {
		errc <- e.c.Start(ctx)
	}()
	<-gw.entered

	err := e.c.Login(ctx, testSession, testUser)
	if err != nil {
		t.Fatal(err)
	}

	close(gw.block)
	err = <-errc
	if err != nil {
		t.Fatal(err)
	}

	st := e.c.State()
	if st.State != StateAuthenticatedUngated || st.User == nil {
		t.Fatalf("got state %+v", st)
	}
	if diff := deep.Equal(*st.User, testUser); diff != nil {
		t.Error(diff)
	}
	checkInvariant(t, st)
	if s := e.stored(t); s == nil || *s != testSession {
		t.Errorf("got session %+v, want %+v", s, testSession)
	}
}
