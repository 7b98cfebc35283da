// Copyright (c) 2020-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gateway

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKindT represents the category of a failed request.
type ErrorKindT int

const (
	// ErrorKindInvalid is returned by KindOf for errors that did not
	// originate from a request.
	ErrorKindInvalid ErrorKindT = iota

	// ErrorKindSessionExpired is a 401. The session is invalid.
	ErrorKindSessionExpired

	// ErrorKindForbidden is a 403.
	ErrorKindForbidden

	// ErrorKindServerFault is a 5xx.
	ErrorKindServerFault

	// ErrorKindValidation is any other 4xx or a 2xx reply that reports
	// failure. These are left to the caller.
	ErrorKindValidation

	// ErrorKindNotFound is a 404.
	ErrorKindNotFound

	// ErrorKindNetwork means no reply was received.
	ErrorKindNetwork
)

var (
	// ErrorKinds contains the human readable error kinds.
	ErrorKinds = map[ErrorKindT]string{
		ErrorKindInvalid:        "invalid",
		ErrorKindSessionExpired: "session expired",
		ErrorKindForbidden:      "forbidden",
		ErrorKindServerFault:    "server fault",
		ErrorKindValidation:     "validation error",
		ErrorKindNotFound:       "not found",
		ErrorKindNetwork:        "network failure",
	}

	// ErrNoSession is returned when a route that requires a session is
	// called while no session is stored.
	ErrNoSession = errors.New("no session")

	// ErrUnsupportedImage is returned when a shop image is not one of
	// the accepted MIME types.
	ErrUnsupportedImage = errors.New("unsupported image type")

	// ErrImageTooLarge is returned when a shop image exceeds the max
	// image size.
	ErrImageTooLarge = errors.New("image too large")
)

// String returns the human readable error kind.
func (k ErrorKindT) String() string {
	s, ok := ErrorKinds[k]
	if !ok {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return s
}

// RespErr represents a failed request. A RespErr is returned anytime the
// API replies with a non 2xx status code, with a failed reply envelope, or
// does not reply at all.
type RespErr struct {
	Kind     ErrorKindT
	HTTPCode int    // Zero for network failures
	Message  string // Server provided message
	Err      error  // Underlying error, network failures only
}

// Error satisfies the error interface.
func (e RespErr) Error() string {
	switch {
	case e.Kind == ErrorKindNetwork:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%v %v: %v", e.HTTPCode, e.Kind, e.Message)
	default:
		return fmt.Sprintf("%v %v", e.HTTPCode, e.Kind)
	}
}

// Unwrap returns the underlying error.
func (e RespErr) Unwrap() error {
	return e.Err
}

// KindOf returns the error kind of err. ErrorKindInvalid is returned if err
// does not wrap a RespErr.
func KindOf(err error) ErrorKindT {
	var re RespErr
	if errors.As(err, &re) {
		return re.Kind
	}
	return ErrorKindInvalid
}

// IsKind returns whether err wraps a RespErr of the provided kind.
func IsKind(err error, kind ErrorKindT) bool {
	return err != nil && KindOf(err) == kind
}
