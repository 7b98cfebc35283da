// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	v1 "github.com/decred/peermall/api/v1"
	"github.com/decred/peermall/binder"
	"github.com/decred/peermall/nav"
)

// cmdShop opens a shop page and prints the bound shop.
type cmdShop struct {
	Args struct {
		Slug string `positional-arg-name:"slug" required:"true"`
	} `positional-args:"true"`

	Page string `long:"page" choice:"products" choice:"events" choice:"community" description:"Shop page to open"`
}

// shopReply is the reply of the shop command.
type shopReply struct {
	Status  string   `json:"status"`
	Shop    *v1.Shop `json:"shop,omitempty"`
	Owner   bool     `json:"owner"`
	Message string   `json:"message,omitempty"`
	Route   string   `json:"route"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdShop) Execute(args []string) error {
	ctx, cancel := env.context()
	defer cancel()

	// The owner of the shop can only be determined for a verified
	// session. Browsing shops does not require one.
	err := env.ctrl.Start(ctx)
	if err != nil {
		log.Debugf("Session verification failed: %v", err)
	}

	b := binder.New(env.gw)
	defer b.Close()
	b.Subscribe(func(s binder.State) {
		log.Debugf("Shop %q: %v", s.Slug, s.Status)
	})
	unsubscribe := env.history.Subscribe(b.SetRoute)

	route := nav.ShopRoute(c.Args.Slug)
	if c.Page != "" {
		route += "/" + c.Page
	}
	env.history.Navigate(route)
	b.Wait()
	unsubscribe()

	st := b.State()
	if st.Status == binder.StatusNotFound {
		env.history.Navigate(nav.RouteNotFound)
	}

	return printJSON(shopReply{
		Status:  st.Status.String(),
		Shop:    st.Shop,
		Owner:   b.IsOwner(env.ctrl.State().User),
		Message: st.Message,
		Route:   env.history.Current(),
	})
}

// shopHelpMsg is printed to stdout by the help command.
const shopHelpMsg = `shop "slug"

Open the page of a shop and print the shop. Unknown shops are reported with
the "not found" status.

Arguments:
1. slug       (string, required)   Shop url slug

Flags:
  --page      (string, optional)   Shop page {products, events, community}

Result:
{
  "status":   (string)  Binding status
  "shop":     (object)  Shop, omitted unless the status is ready
  "owner":    (bool)    Whether the logged in user owns the shop
  "message":  (string)  Error message
  "route":    (string)  Route that the user ended up on
}`
