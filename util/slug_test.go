// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import "testing"

func TestSlug(t *testing.T) {
	var tests = []struct {
		in   string
		want string
	}{
		{"Acme Store", "acme-store"},
		{"  Café  Crème ", "cafe-creme"},
		{"Tom & Jerry's", "tom-jerry-s"},
		{"already-a-slug", "already-a-slug"},
		{"---", ""},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got := Slug(tc.in)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDetectMimeType(t *testing.T) {
	var tests = []struct {
		name string
		data []byte
		want string
	}{
		{
			"png",
			[]byte("\x89PNG\x0D\x0A\x1A\x0A" + "rest of the file"),
			"image/png",
		},
		{
			"svg",
			[]byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`),
			"image/svg+xml",
		},
		{
			"text",
			[]byte("hello world"),
			"text/plain; charset=utf-8",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectMimeType(tc.data)
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	got := SanitizeFilename("../../etc/passwd")
	if got != "passwd" {
		t.Fatalf("got %q", got)
	}
}
