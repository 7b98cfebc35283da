// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package notice contains the user facing notifications that are emitted by
// the session layer and the adapters that deliver them.
package notice

import (
	"fmt"

	"github.com/decred/slog"
)

// LevelT represents the severity of a notice.
type LevelT int

const (
	LevelInfo LevelT = iota
	LevelWarning
	LevelError
)

var (
	// Levels contains the human readable levels.
	Levels = map[LevelT]string{
		LevelInfo:    "info",
		LevelWarning: "warning",
		LevelError:   "error",
	}
)

// String returns the human readable level.
func (l LevelT) String() string {
	s, ok := Levels[l]
	if !ok {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return s
}

// Notice is a dismissible user notification.
type Notice struct {
	Level   LevelT `json:"level"`
	Message string `json:"message"`
}

var (
	SessionExpired = Notice{
		Level:   LevelWarning,
		Message: "Your session has expired. Please log in again.",
	}
	Forbidden = Notice{
		Level:   LevelWarning,
		Message: "You do not have permission to perform this action.",
	}
	ServerError = Notice{
		Level:   LevelError,
		Message: "A server error occurred. Please try again later.",
	}
	LoggedOut = Notice{
		Level:   LevelInfo,
		Message: "You have been logged out.",
	}
	LoggedIn = Notice{
		Level:   LevelInfo,
		Message: "You are now logged in.",
	}
	SponsorRequired = Notice{
		Level:   LevelInfo,
		Message: "Please select a sponsor to continue.",
	}
)

// Notifier delivers notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc is an adapter that allows an ordinary function to be used as
// a Notifier.
type NotifierFunc func(n Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) {
	f(n)
}

// Discard is a Notifier that drops all notices.
var Discard Notifier = NotifierFunc(func(Notice) {})

// LogNotifier is a Notifier that writes notices to a logger.
type LogNotifier struct {
	log slog.Logger
}

// Notify writes the notice at the log level that matches its severity.
//
// This function satisfies the Notifier interface.
func (l *LogNotifier) Notify(n Notice) {
	switch n.Level {
	case LevelError:
		l.log.Errorf("%v", n.Message)
	case LevelWarning:
		l.log.Warnf("%v", n.Message)
	default:
		l.log.Infof("%v", n.Message)
	}
}

// NewLogNotifier returns a new LogNotifier.
func NewLogNotifier(log slog.Logger) *LogNotifier {
	return &LogNotifier{
		log: log,
	}
}
