// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nav

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestShopSlug(t *testing.T) {
	var tests = []struct {
		name     string
		path     string
		wantSlug string
		wantOK   bool
	}{
		{"landing", "/", "", false},
		{"login", "/login", "", false},
		{"shop new", "/peermall/new", "", false},
		{"shop", "/peermall/acme", "acme", true},
		{"shop products", "/peermall/acme/products", "acme", true},
		{"shop events", "/peermall/acme/events", "acme", true},
		{"shop community", "/peermall/acme/community", "acme", true},
		{"shop with query", "/peermall/acme?tab=reviews", "acme", true},
		{"unknown", "/peermall/acme/unknown", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			slug, ok := ShopSlug(tc.path)
			if ok != tc.wantOK {
				t.Fatalf("got ok %v, want %v", ok, tc.wantOK)
			}
			if slug != tc.wantSlug {
				t.Fatalf("got slug %q, want %q", slug, tc.wantSlug)
			}
		})
	}
}

func TestShopRoute(t *testing.T) {
	got := ShopRoute("acme")
	if got != "/peermall/acme" {
		t.Fatalf("got %v", got)
	}
	slug, ok := ShopSlug(got)
	if !ok || slug != "acme" {
		t.Fatalf("ShopRoute output did not round trip: %v %v", slug, ok)
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory(RouteLanding)

	var got []string
	unsubscribe := h.Subscribe(func(route string) {
		got = append(got, route)
	})

	h.Navigate(RouteLogin)
	h.Navigate(RouteLogin) // Already active
	h.Navigate(ShopRoute("acme"))
	h.Navigate(RouteLanding)

	want := []string{RouteLogin, ShopRoute("acme"), RouteLanding}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("notified routes mismatch (-want +got):\n%v", diff)
	}
	if diff := cmp.Diff(want, h.Visited()); diff != "" {
		t.Fatalf("visited routes mismatch (-want +got):\n%v", diff)
	}

	unsubscribe()
	h.Navigate(RouteLogin)
	if len(got) != len(want) {
		t.Fatalf("listener called after unsubscribe")
	}
	if h.Current() != RouteLogin {
		t.Fatalf("got current %v, want %v", h.Current(), RouteLogin)
	}
}
