// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sponsor implements the sponsor gate. An authenticated user that
// has not selected a sponsor is sent to the sponsor selection page before
// any other page can be used.
package sponsor

import (
	"context"
	"errors"

	v1 "github.com/decred/peermall/api/v1"
	"github.com/decred/peermall/gateway"
	"github.com/decred/peermall/nav"
	"github.com/decred/peermall/notice"
)

var (
	// ErrNoSponsor is returned when a selection is made without a
	// sponsor.
	ErrNoSponsor = errors.New("no sponsor provided")

	// ErrNoUser is returned when a selection is made without a user.
	ErrNoUser = errors.New("no user provided")
)

// Decision is the outcome of the sponsor gate.
type Decision int

const (
	// DecisionNone means the gate is open. The user may continue.
	DecisionNone Decision = iota

	// DecisionRedirect means the gate is closed. The user must be sent
	// to the sponsor selection page.
	DecisionRedirect
)

// String returns the human readable decision.
func (d Decision) String() string {
	switch d {
	case DecisionNone:
		return "none"
	case DecisionRedirect:
		return "redirect"
	}
	return "unknown"
}

// Decide returns the gate decision for a user. It has no side effects.
func Decide(authenticated bool, rel *v1.SponsorRelationship) Decision {
	if authenticated && rel == nil {
		return DecisionRedirect
	}
	return DecisionNone
}

// Gateway contains the API calls that are used by the gate.
type Gateway interface {
	SponsorByUser(ctx context.Context, uid string) (*v1.SponsorRelationship, error)
	SponsorSelect(ctx context.Context, ss v1.SponsorSelect) (*v1.SponsorRelationship, error)
	ShopByOwner(ctx context.Context, uid string) (*v1.Shop, error)
}

// Selection is the result of a sponsor selection.
type Selection struct {
	Relationship v1.SponsorRelationship `json:"relationship"`
	Shop         *v1.Shop               `json:"shop,omitempty"` // Nil if the user does not own a shop yet
	Route        string                 `json:"route"`          // Route that the user was sent to
}

// Gate applies the sponsor gate decision.
type Gate struct {
	gw       Gateway
	nav      nav.Navigator
	notifier notice.Notifier
}

// Evaluate looks up the sponsor relationship of the user and sends the user
// to the sponsor selection page if there is none. A nil user is not
// authenticated and always passes.
//
// A failed lookup closes the gate and the error is returned with
// DecisionRedirect. The redirect is skipped when the failure expired the
// session since the user has already been sent to the login page. It is
// also skipped once ctx is canceled; the caller no longer owns the route.
func (g *Gate) Evaluate(ctx context.Context, u *v1.User) (Decision, error) {
	if u == nil {
		return DecisionNone, nil
	}

	rel, err := g.gw.SponsorByUser(ctx, u.UID)
	if err != nil {
		log.Errorf("Sponsor lookup %v: %v", u.UID, err)
		if !gateway.IsKind(err, gateway.ErrorKindSessionExpired) {
			g.redirect(ctx)
		}
		return DecisionRedirect, err
	}

	d := Decide(true, rel)

	log.Debugf("Sponsor gate %v: %v", u.UID, d)

	if d == DecisionRedirect {
		g.redirect(ctx)
	}
	return d, nil
}

func (g *Gate) redirect(ctx context.Context) {
	if ctx.Err() != nil {
		log.Debugf("Sponsor redirect canceled: %v", ctx.Err())
		return
	}
	g.nav.Navigate(nav.RouteSponsorSelect)
	g.notifier.Notify(notice.SponsorRequired)
}

// Select records the sponsor selected by the user and sends the user to
// their shop. Users that do not own a shop yet are sent to the shop
// creation page. If the shop lookup fails for any other reason the user
// is sent to the landing page. The selection has already been recorded at
// that point and is returned without an error. Nothing is navigated to once
// ctx is canceled.
func (g *Gate) Select(ctx context.Context, sponsorID, uid string) (*Selection, error) {
	switch {
	case sponsorID == "":
		return nil, ErrNoSponsor
	case uid == "":
		return nil, ErrNoUser
	}

	rel, err := g.gw.SponsorSelect(ctx, v1.SponsorSelect{
		SponsorID: sponsorID,
		UserUID:   uid,
	})
	if err != nil {
		return nil, err
	}

	log.Infof("Sponsor selected %v: %v", uid, sponsorID)

	sel := Selection{
		Relationship: *rel,
	}
	shop, err := g.gw.ShopByOwner(ctx, uid)
	switch {
	case err == nil:
		sel.Shop = shop
		sel.Route = nav.ShopRoute(shop.URLSlug)
	case gateway.IsKind(err, gateway.ErrorKindNotFound):
		sel.Route = nav.RouteShopNew
	case gateway.IsKind(err, gateway.ErrorKindSessionExpired):
		// Already sent to the login page
		return &sel, err
	default:
		log.Errorf("Shop lookup %v: %v", uid, err)
		sel.Route = nav.RouteLanding
	}

	if ctx.Err() != nil {
		// The selection was recorded but the caller is gone
		return &sel, ctx.Err()
	}
	g.nav.Navigate(sel.Route)

	return &sel, nil
}

// New returns a new Gate. Notices are dropped if notifier is nil.
func New(gw Gateway, n nav.Navigator, notifier notice.Notifier) *Gate {
	if notifier == nil {
		notifier = notice.Discard
	}
	return &Gate{
		gw:       gw,
		nav:      n,
		notifier: notifier,
	}
}
