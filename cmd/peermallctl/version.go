// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import "fmt"

const (
	appMajor uint = 1
	appMinor uint = 0
	appPatch uint = 0
)

// appPreRelease is appended to the version string when set. It is expected
// to be overridden at link time, e.g. -ldflags "-X main.appPreRelease=beta".
var appPreRelease = "pre"

// version returns the application version as a semantic version string.
func version() string {
	v := fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
	if appPreRelease != "" {
		v += "-" + appPreRelease
	}
	return v
}
