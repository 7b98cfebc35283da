// Copyright (c) 2017-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/decred/peermall/auth"
	"github.com/decred/peermall/binder"
	"github.com/decred/peermall/gateway"
	"github.com/decred/peermall/nav"
	"github.com/decred/peermall/session/filestore"
	"github.com/decred/peermall/session/localdb"
	"github.com/decred/peermall/session/redisdb"
	"github.com/decred/peermall/sponsor"
	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

const (
	logFilename = "peermallctl.log"

	gatewaySubsystem = "GTWY"
)

// logWriter implements an io.Writer that outputs to both standard error and
// the write-end pipe of an initialized log rotator. Standard output is
// reserved for command output.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stderr.Write(p)
	if logRotator == nil {
		return len(p), nil
	}
	return logRotator.Write(p)
}

// Loggers per subsystem. A single backend logger is created and all subsytem
// loggers created from it will write to the backend. When adding new
// subsystems, add the subsystem logger variable here and to the
// subsystemLoggers map.
var (
	// backendLog is the logging backend used to create all subsystem
	// loggers.
	backendLog = slog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs. It should be closed on
	// application shutdown.
	logRotator *rotator.Rotator

	log        = backendLog.Logger("PCTL")
	ntfnLog    = backendLog.Logger("NTFN")
	gatewayLog = backendLog.Logger(gatewaySubsystem)
	authLog    = backendLog.Logger("AUTH")
	sponsorLog = backendLog.Logger("SPNS")
	binderLog  = backendLog.Logger("BIND")
	sessionLog = backendLog.Logger("SESS")
	navLog     = backendLog.Logger("NAVI")
)

// Initialize package-global logger variables.
func init() {
	gateway.UseLogger(gatewayLog)
	auth.UseLogger(authLog)
	sponsor.UseLogger(sponsorLog)
	binder.UseLogger(binderLog)
	filestore.UseLogger(sessionLog)
	localdb.UseLogger(sessionLog)
	redisdb.UseLogger(sessionLog)
	nav.UseLogger(navLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]slog.Logger{
	"PCTL":           log,
	"NTFN":           ntfnLog,
	gatewaySubsystem: gatewayLog,
	"AUTH":           authLog,
	"SPNS":           sponsorLog,
	"BIND":           binderLog,
	"SESS":           sessionLog,
	"NAVI":           navLog,
}

// initLogRotator initializes the logging rotater to write logs to logFile
// and create roll files in the same directory. It must be called before the
// package-global log rotater variables are used.
func initLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	err := os.MkdirAll(logDir, 0700)
	if err != nil {
		return errors.Errorf("failed to create log directory: %v", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return errors.Errorf("failed to create file rotator: %v", err)
	}

	logRotator = r
	return nil
}

// closeLogRotator closes the log rotator.
func closeLogRotator() {
	if logRotator != nil {
		logRotator.Close()
	}
}

// setLogLevel sets the logging level for provided subsystem. Invalid
// subsystems are ignored.
func setLogLevel(subsystemID string, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}

	// Defaults to info if the log level is invalid.
	level, _ := slog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// setLogLevels sets the log level for all subsystem loggers to the passed
// level.
func setLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		setLogLevel(subsystemID, logLevel)
	}
}
