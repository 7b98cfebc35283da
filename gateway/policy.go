// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gateway

import (
	"net/http"

	"github.com/decred/peermall/notice"
)

// policy is the outcome of the global failure policy for a single reply.
type policy struct {
	kind   ErrorKindT
	expire bool           // Clear the session and go to the login page
	notice *notice.Notice // Notice to show, nil for none
}

// decide applies the global failure policy to a non 2xx reply status. It
// has no side effects. retried is whether the request has already been
// through the session expiry handling once.
func decide(status int, retried bool) policy {
	switch {
	case status == http.StatusUnauthorized && !retried:
		n := notice.SessionExpired
		return policy{
			kind:   ErrorKindSessionExpired,
			expire: true,
			notice: &n,
		}
	case status == http.StatusUnauthorized:
		return policy{kind: ErrorKindSessionExpired}
	case status == http.StatusForbidden:
		n := notice.Forbidden
		return policy{
			kind:   ErrorKindForbidden,
			notice: &n,
		}
	case status == http.StatusInternalServerError:
		n := notice.ServerError
		return policy{
			kind:   ErrorKindServerFault,
			notice: &n,
		}
	case status == http.StatusNotFound:
		return policy{kind: ErrorKindNotFound}
	case status >= 500:
		return policy{kind: ErrorKindServerFault}
	default:
		return policy{kind: ErrorKindValidation}
	}
}
