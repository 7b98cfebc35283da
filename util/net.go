// Copyright (c) 2017-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"fmt"
	"net"
	"net/url"
)

// NormalizeAddress returns addr with the passed default port appended if
// there is not already a port specified.
func NormalizeAddress(addr, defaultPort string) string {
	_, _, err := net.SplitHostPort(addr)
	if err != nil {
		return net.JoinHostPort(addr, defaultPort)
	}
	return addr
}

// HostName validates that host is an http or https url and returns its
// hostname. The hostname is used to segment the locally stored data of
// multiple API hosts.
func HostName(host string) (string, error) {
	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("parse host: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("host scheme must be http or https: %v", host)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("host has no hostname: %v", host)
	}
	return u.Hostname(), nil
}
