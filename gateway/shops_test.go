// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gateway

import (
	"bytes"
	"context"
	"errors"
	"testing"

	v1 "github.com/decred/peermall/api/v1"
	"github.com/google/go-cmp/cmp"
)

var (
	// pngHeader is enough for the png MIME type to be detected.
	pngHeader = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")
)

func TestShopBySlug(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	want := e.server.AddShop(v1.Shop{
		URLSlug:  "bobs-books",
		Name:     "Bob's Books",
		OwnerUID: "bob",
		Stats: v1.ShopStats{
			Products: 3,
		},
	})

	got, err := e.client.ShopBySlug(ctx, "bobs-books")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("shop mismatch (-want +got):\n%s", diff)
	}

	got, err = e.client.ShopByOwner(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("shop mismatch (-want +got):\n%s", diff)
	}

	_, err = e.client.ShopBySlug(ctx, "nonexistent-shop")
	if !IsKind(err, ErrorKindNotFound) {
		t.Errorf("got err %v, want not found", err)
	}
	_, err = e.client.ShopByOwner(ctx, "nobody")
	if !IsKind(err, ErrorKindNotFound) {
		t.Errorf("got err %v, want not found", err)
	}
	if n := e.notices.all(); len(n) != 0 {
		t.Errorf("unexpected notices: %v", n)
	}
}

func TestShopNew(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	lr, _ := e.login(t)

	// The url slug is derived from the name and the image filename is
	// sanitized.
	s, err := e.client.ShopNew(ctx, v1.ShopNew{
		Name:        "Café Olé",
		Description: "coffee",
	}, &Image{
		Filename: "../../logo.png",
		Data:     pngHeader,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := v1.Shop{
		ID:          s.ID,
		URLSlug:     "cafe-ole",
		Name:        "Café Olé",
		Description: "coffee",
		ImageURL:    "/uploads/logo.png",
		OwnerUID:    lr.User.UID,
	}
	if diff := cmp.Diff(want, *s); diff != "" {
		t.Errorf("shop mismatch (-want +got):\n%s", diff)
	}

	// Slugs are unique
	_, err = e.client.ShopNew(ctx, v1.ShopNew{
		Name: "Cafe Ole",
	}, nil)
	if !IsKind(err, ErrorKindValidation) {
		t.Errorf("got err %v, want validation error", err)
	}
}

func TestShopNewImage(t *testing.T) {
	var tests = []struct {
		name    string
		img     Image
		wantErr error
	}{
		{
			"png",
			Image{Filename: "a.png", Data: pngHeader},
			nil,
		},
		{
			"svg",
			Image{Filename: "a.svg", Data: []byte(
				`<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"></svg>`)},
			nil,
		},
		{
			"text",
			Image{Filename: "a.txt", Data: []byte("hello world")},
			ErrUnsupportedImage,
		},
		{
			"too large",
			Image{Filename: "a.png", Data: append(pngHeader,
				bytes.Repeat([]byte{0}, v1.PolicyMaxImageSize)...)},
			ErrImageTooLarge,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.login(t)

			_, err := e.client.ShopNew(context.Background(), v1.ShopNew{
				Name: tc.name,
			}, &tc.img)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got err %v, want %v", err, tc.wantErr)
			}
		})
	}
}
