// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package nav contains the client routes and the navigation primitives used
// by the session layer to move the user between pages.
package nav

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// Client routes. These are the pages of the app, not API routes.
const (
	RouteLanding       = "/"
	RouteLogin         = "/login"
	RouteSponsorSelect = "/sponsor/select"
	RouteNotFound      = "/not-found"
	RouteShopNew       = "/peermall/new"

	// Shop scoped routes. The slug identifies the shop.
	RouteShop          = "/peermall/{slug}"
	RouteShopProducts  = "/peermall/{slug}/products"
	RouteShopEvents    = "/peermall/{slug}/events"
	RouteShopCommunity = "/peermall/{slug}/community"
)

// Route names
const (
	NameLanding       = "landing"
	NameLogin         = "login"
	NameSponsorSelect = "sponsorselect"
	NameNotFound      = "notfound"
	NameShopNew       = "shopnew"
	NameShop          = "shop"
	NameShopProducts  = "shopproducts"
	NameShopEvents    = "shopevents"
	NameShopCommunity = "shopcommunity"

	// VarSlug is the route variable that contains the shop slug.
	VarSlug = "slug"
)

var (
	router = newRouter()

	// shopRoutes contains the names of the routes that are scoped to a
	// single shop.
	shopRoutes = map[string]struct{}{
		NameShop:          {},
		NameShopProducts:  {},
		NameShopEvents:    {},
		NameShopCommunity: {},
	}
)

// newRouter returns a router that is only used for matching. Routes that
// share a prefix with a variable route must be registered first.
func newRouter() *mux.Router {
	r := mux.NewRouter()
	r.NewRoute().Path(RouteLanding).Name(NameLanding)
	r.NewRoute().Path(RouteLogin).Name(NameLogin)
	r.NewRoute().Path(RouteSponsorSelect).Name(NameSponsorSelect)
	r.NewRoute().Path(RouteNotFound).Name(NameNotFound)
	r.NewRoute().Path(RouteShopNew).Name(NameShopNew)
	r.NewRoute().Path(RouteShop).Name(NameShop)
	r.NewRoute().Path(RouteShopProducts).Name(NameShopProducts)
	r.NewRoute().Path(RouteShopEvents).Name(NameShopEvents)
	r.NewRoute().Path(RouteShopCommunity).Name(NameShopCommunity)
	return r
}

// Match matches the path against the client routes. It returns the route
// name and the route variables. ok is false if the path does not match any
// route.
func Match(path string) (name string, vars map[string]string, ok bool) {
	// Drop any query string or fragment
	if i := strings.IndexAny(path, "?#"); i != -1 {
		path = path[:i]
	}
	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return "", nil, false
	}
	var m mux.RouteMatch
	if !router.Match(req, &m) || m.Route == nil {
		return "", nil, false
	}
	return m.Route.GetName(), m.Vars, true
}

// ShopSlug returns the shop slug of a shop scoped path. ok is false if the
// path is not scoped to a shop.
func ShopSlug(path string) (string, bool) {
	name, vars, ok := Match(path)
	if !ok {
		return "", false
	}
	if _, ok := shopRoutes[name]; !ok {
		return "", false
	}
	return vars[VarSlug], true
}

// ShopRoute returns the landing route of the shop with the provided slug.
func ShopRoute(slug string) string {
	return strings.Replace(RouteShop, "{"+VarSlug+"}", slug, 1)
}

// Navigator moves the user to a route.
type Navigator interface {
	Navigate(route string)
}

// History is a Navigator that keeps track of the active route. Navigating
// to the route that is already active is a no-op. Subscribers are notified
// of every route change.
type History struct {
	sync.Mutex
	current   string
	visited   []string
	listeners map[int]func(string)
	nextID    int
}

// Navigate makes route the active route.
//
// This function satisfies the Navigator interface.
func (h *History) Navigate(route string) {
	h.Lock()
	defer h.Unlock()

	if route == h.current {
		log.Tracef("Navigate: %v already active", route)
		return
	}

	log.Debugf("Navigate: %v -> %v", h.current, route)

	h.current = route
	h.visited = append(h.visited, route)

	// Listeners are called with the lock held so that route changes
	// are observed in order.
	for _, fn := range h.listeners {
		fn(route)
	}
}

// Current returns the active route.
func (h *History) Current() string {
	h.Lock()
	defer h.Unlock()

	return h.current
}

// Visited returns all routes that have been navigated to, in order.
func (h *History) Visited() []string {
	h.Lock()
	defer h.Unlock()

	v := make([]string, len(h.visited))
	copy(v, h.visited)
	return v
}

// Subscribe registers a function that is called with the new route on
// every route change. The function must not call back into the History.
// The returned function removes the subscription.
func (h *History) Subscribe(fn func(route string)) func() {
	h.Lock()
	defer h.Unlock()

	id := h.nextID
	h.nextID++
	h.listeners[id] = fn

	return func() {
		h.Lock()
		defer h.Unlock()

		delete(h.listeners, id)
	}
}

// NewHistory returns a new History with start as the active route.
func NewHistory(start string) *History {
	return &History{
		current:   start,
		listeners: make(map[int]func(string)),
	}
}
