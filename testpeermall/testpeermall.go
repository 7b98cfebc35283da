// Copyright (c) 2017-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package testpeermall provides an in memory implementation of the peermall
// API that can be used in tests. Faults can be injected per route.
package testpeermall

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	v1 "github.com/decred/peermall/api/v1"
	"github.com/decred/peermall/util"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/gorilla/securecookie"
)

const (
	// sessionKeySize is the number of random bytes in session IDs and
	// CSRF tokens.
	sessionKeySize = 32

	// maxFormSize is the max in memory size of a parsed multipart form.
	maxFormSize = v1.PolicyMaxImageSize + 1024*1024
)

// Fault describes a failure that is injected into a route. The request
// first waits for Block to be closed, if set, then for Delay. A non zero
// Status is written instead of running the route handler.
type Fault struct {
	Status  int
	Message string
	Block   chan struct{}
	Delay   time.Duration
}

// account is a registered user.
type account struct {
	user     v1.User
	password string
}

// sessionEntry is a server side session.
type sessionEntry struct {
	csrf string
	uid  string
}

// TestPeermall is a fake peermall API server.
type TestPeermall struct {
	sync.Mutex

	URL string // Base URL of the server

	server   *httptest.Server
	accounts map[string]*account                // [email]account
	sessions map[string]sessionEntry            // [sessionID]sessionEntry
	sponsors map[string]v1.SponsorRelationship // [uid]relationship
	shops    map[string]v1.Shop                 // [slug]shop
	faults   map[string]Fault                   // [route or path]fault
	calls    map[string]int                     // [route]count
	headers  map[string]http.Header             // [route]last headers
}

// route returns the API route template of the request, without the API
// prefix.
func route(r *http.Request) string {
	cr := mux.CurrentRoute(r)
	if cr == nil {
		return ""
	}
	tpl, err := cr.GetPathTemplate()
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(tpl, v1.APIRoute)
}

// recordMiddleware records the call and its headers.
func (p *TestPeermall) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rt := route(r)

		p.Lock()
		p.calls[rt]++
		p.headers[rt] = r.Header.Clone()
		p.Unlock()

		next.ServeHTTP(w, r)
	})
}

// faultMiddleware applies the fault that has been set for the request path
// or, if there is none, for the request route.
func (p *TestPeermall) faultMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, v1.APIRoute)

		p.Lock()
		f, ok := p.faults[path]
		if !ok {
			f, ok = p.faults[route(r)]
		}
		p.Unlock()

		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if f.Block != nil {
			select {
			case <-f.Block:
			case <-r.Context().Done():
				return
			}
		}
		if f.Delay != 0 {
			select {
			case <-time.After(f.Delay):
			case <-r.Context().Done():
				return
			}
		}
		if f.Status != 0 {
			util.RespondWithError(w, f.Status, f.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate returns the uid of the session that the request was sent
// with. A 401 is written and false is returned if the request does not carry
// a valid session and CSRF token.
func (p *TestPeermall) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	authz := r.Header.Get(v1.HeaderAuthorization)
	id := strings.TrimPrefix(authz, v1.AuthScheme+" ")
	csrf := r.Header.Get(v1.HeaderCSRFToken)

	p.Lock()
	s, ok := p.sessions[id]
	p.Unlock()

	switch {
	case authz == "" || id == authz:
		util.RespondWithError(w, http.StatusUnauthorized, "not logged in")
		return "", false
	case !ok:
		util.RespondWithError(w, http.StatusUnauthorized, "session expired")
		return "", false
	case s.csrf != csrf:
		util.RespondWithError(w, http.StatusForbidden, "invalid csrf token")
		return "", false
	}

	return s.uid, true
}

// newKey returns a hex encoded random key.
func newKey() string {
	return hex.EncodeToString(securecookie.GenerateRandomKey(sessionKeySize))
}

func (p *TestPeermall) handleLogin(w http.ResponseWriter, r *http.Request) {
	var l v1.Login
	err := json.NewDecoder(r.Body).Decode(&l)
	if err != nil {
		util.RespondWithError(w, http.StatusBadRequest, "invalid body")
		return
	}

	p.Lock()
	defer p.Unlock()

	a, ok := p.accounts[strings.ToLower(l.Email)]
	if !ok || a.password != l.Password {
		util.RespondWithError(w, http.StatusUnauthorized,
			"invalid email or password")
		return
	}

	id, csrf := newKey(), newKey()
	p.sessions[id] = sessionEntry{
		csrf: csrf,
		uid:  a.user.UID,
	}

	util.RespondWithData(w, v1.LoginReply{
		SessionID: id,
		CSRFToken: csrf,
		User:      a.user,
	})
}

func (p *TestPeermall) handleLogout(w http.ResponseWriter, r *http.Request) {
	if _, ok := p.authenticate(w, r); !ok {
		return
	}

	var l v1.Logout
	err := json.NewDecoder(r.Body).Decode(&l)
	if err != nil {
		util.RespondWithError(w, http.StatusBadRequest, "invalid body")
		return
	}

	p.Lock()
	delete(p.sessions, l.SessionID)
	p.Unlock()

	util.RespondWithJSON(w, http.StatusOK, v1.Reply{
		Success: true,
		Message: "logged out",
	})
}

func (p *TestPeermall) handleMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := p.authenticate(w, r)
	if !ok {
		return
	}

	p.Lock()
	u, ok := p.userByUID(uid)
	p.Unlock()
	if !ok {
		util.RespondWithError(w, http.StatusNotFound, "user not found")
		return
	}

	util.RespondWithData(w, u)
}

func (p *TestPeermall) handleSponsors(w http.ResponseWriter, r *http.Request) {
	if _, ok := p.authenticate(w, r); !ok {
		return
	}

	var sl v1.SponsorLookup
	err := util.ParseGetParams(r, &sl)
	if err != nil {
		util.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	p.Lock()
	sr, ok := p.sponsors[sl.UserUID]
	p.Unlock()
	if !ok {
		// Users without a sponsor get an empty reply
		util.RespondWithData(w, nil)
		return
	}

	util.RespondWithData(w, sr)
}

func (p *TestPeermall) handleSponsorSelect(w http.ResponseWriter, r *http.Request) {
	uid, ok := p.authenticate(w, r)
	if !ok {
		return
	}

	var ss v1.SponsorSelect
	err := json.NewDecoder(r.Body).Decode(&ss)
	if err != nil {
		util.RespondWithError(w, http.StatusBadRequest, "invalid body")
		return
	}
	switch {
	case ss.SponsorID == "":
		util.RespondWithError(w, http.StatusBadRequest, "sponsor id missing")
		return
	case ss.UserUID != uid:
		util.RespondWithError(w, http.StatusForbidden,
			"cannot select a sponsor for another user")
		return
	}

	sr := v1.SponsorRelationship{
		SponsorID: ss.SponsorID,
		UserUID:   uid,
		Status:    v1.SponsorStatusActive,
	}

	p.Lock()
	p.sponsors[uid] = sr
	p.Unlock()

	util.RespondWithData(w, sr)
}

func (p *TestPeermall) handleShopBySlug(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	p.Lock()
	s, ok := p.shops[slug]
	p.Unlock()
	if !ok {
		util.RespondWithError(w, http.StatusNotFound, "peermall not found")
		return
	}

	util.RespondWithData(w, s)
}

func (p *TestPeermall) handleShopOwner(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	p.Lock()
	defer p.Unlock()

	for _, s := range p.shops {
		if s.OwnerUID == uid {
			util.RespondWithData(w, s)
			return
		}
	}

	util.RespondWithError(w, http.StatusNotFound, "peermall not found")
}

func (p *TestPeermall) handleShopNew(w http.ResponseWriter, r *http.Request) {
	uid, ok := p.authenticate(w, r)
	if !ok {
		return
	}

	err := r.ParseMultipartForm(maxFormSize)
	if err != nil {
		util.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var sn v1.ShopNew
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	err = d.Decode(&sn, r.MultipartForm.Value)
	if err != nil {
		util.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if sn.Name == "" || sn.URLSlug == "" {
		util.RespondWithError(w, http.StatusBadRequest,
			"name and url slug are required")
		return
	}

	var imageURL string
	files := r.MultipartForm.File[v1.ShopFormImage]
	if len(files) > 0 {
		fh := files[0]
		if fh.Size > v1.PolicyMaxImageSize {
			util.RespondWithError(w, http.StatusRequestEntityTooLarge,
				"image too large")
			return
		}
		f, err := fh.Open()
		if err != nil {
			util.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		buf, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			util.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		mimeType := util.DetectMimeType(buf)
		if _, ok := v1.ShopImageMimeTypes[mimeType]; !ok {
			util.RespondWithError(w, http.StatusUnsupportedMediaType,
				"unsupported image type")
			return
		}
		imageURL = "/uploads/" + util.SanitizeFilename(fh.Filename)
	}

	p.Lock()
	defer p.Unlock()

	if _, ok := p.shops[sn.URLSlug]; ok {
		util.RespondWithError(w, http.StatusConflict, "url slug taken")
		return
	}
	s := v1.Shop{
		ID:          uuid.New().String(),
		URLSlug:     sn.URLSlug,
		Name:        sn.Name,
		Description: sn.Description,
		ImageURL:    imageURL,
		OwnerUID:    uid,
	}
	p.shops[s.URLSlug] = s

	util.RespondWithData(w, s)
}

// userByUID returns the user with the provided uid. This function must be
// called WITH the lock held.
func (p *TestPeermall) userByUID(uid string) (v1.User, bool) {
	for _, a := range p.accounts {
		if a.user.UID == uid {
			return a.user, true
		}
	}
	return v1.User{}, false
}

// AddUser registers a new user and returns it.
func (p *TestPeermall) AddUser(email, password, name string) v1.User {
	now := time.Now().Unix()
	u := v1.User{
		UID:       uuid.New().String(),
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	p.Lock()
	defer p.Unlock()

	p.accounts[strings.ToLower(email)] = &account{
		user:     u,
		password: password,
	}
	return u
}

// AddSession creates a server side session for the user without going
// through the login route.
func (p *TestPeermall) AddSession(uid string) (id, csrf string) {
	id, csrf = newKey(), newKey()

	p.Lock()
	defer p.Unlock()

	p.sessions[id] = sessionEntry{
		csrf: csrf,
		uid:  uid,
	}
	return id, csrf
}

// ExpireSessions invalidates all server side sessions.
func (p *TestPeermall) ExpireSessions() {
	p.Lock()
	defer p.Unlock()

	p.sessions = make(map[string]sessionEntry)
}

// Sessions returns the number of active server side sessions.
func (p *TestPeermall) Sessions() int {
	p.Lock()
	defer p.Unlock()

	return len(p.sessions)
}

// AddSponsor stores a sponsor relationship.
func (p *TestPeermall) AddSponsor(sr v1.SponsorRelationship) {
	p.Lock()
	defer p.Unlock()

	p.sponsors[sr.UserUID] = sr
}

// AddShop stores a shop. An ID is assigned if the shop does not have one.
func (p *TestPeermall) AddShop(s v1.Shop) v1.Shop {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	p.Lock()
	defer p.Unlock()

	p.shops[s.URLSlug] = s
	return s
}

// SetFault injects a fault. key is either an API route template, e.g.
// v1.RouteShopBySlug, or a request path without the API prefix, e.g.
// "/peermalls/slug/a". Path faults take precedence.
func (p *TestPeermall) SetFault(key string, f Fault) {
	p.Lock()
	defer p.Unlock()

	p.faults[key] = f
}

// ClearFault removes a fault.
func (p *TestPeermall) ClearFault(key string) {
	p.Lock()
	defer p.Unlock()

	delete(p.faults, key)
}

// Calls returns the number of requests that have been received on the
// route.
func (p *TestPeermall) Calls(route string) int {
	p.Lock()
	defer p.Unlock()

	return p.calls[route]
}

// LastHeader returns the headers of the last request that was received on
// the route. Nil is returned if no request has been received.
func (p *TestPeermall) LastHeader(route string) http.Header {
	p.Lock()
	defer p.Unlock()

	return p.headers[route].Clone()
}

// Close shuts down the server.
func (p *TestPeermall) Close() {
	p.server.Close()
}

// New returns a new TestPeermall that is running on a local port. The
// server is shut down when the test completes.
func New(t *testing.T) *TestPeermall {
	t.Helper()

	p := &TestPeermall{
		accounts: make(map[string]*account),
		sessions: make(map[string]sessionEntry),
		sponsors: make(map[string]v1.SponsorRelationship),
		shops:    make(map[string]v1.Shop),
		faults:   make(map[string]Fault),
		calls:    make(map[string]int),
		headers:  make(map[string]http.Header),
	}

	// Setup routes
	router := mux.NewRouter()
	api := router.PathPrefix(v1.APIRoute).Subrouter()
	api.Use(p.recordMiddleware, p.faultMiddleware)
	api.HandleFunc(v1.RouteUserLogin, p.handleLogin).
		Methods(http.MethodPost)
	api.HandleFunc(v1.RouteUserLogout, p.handleLogout).
		Methods(http.MethodPost)
	api.HandleFunc(v1.RouteUserMe, p.handleMe).
		Methods(http.MethodGet)
	api.HandleFunc(v1.RouteSponsors, p.handleSponsors).
		Methods(http.MethodGet)
	api.HandleFunc(v1.RouteSponsorSelect, p.handleSponsorSelect).
		Methods(http.MethodPost)
	api.HandleFunc(v1.RouteShopNew, p.handleShopNew).
		Methods(http.MethodPost)
	api.HandleFunc(v1.RouteShopBySlug, p.handleShopBySlug).
		Methods(http.MethodGet)
	api.HandleFunc(v1.RouteShopOwner, p.handleShopOwner).
		Methods(http.MethodGet)

	p.server = httptest.NewServer(router)
	p.URL = p.server.URL
	t.Cleanup(p.server.Close)

	return p
}
