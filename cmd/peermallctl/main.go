// Copyright (c) 2022-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

var (
	// cfg is the global config object that all commands have access to.
	cfg *config

	// env contains the session layer components that commands use.
	env *environment
)

func main() {
	err := _main()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)

		// If this is a pkg/errors error then we can pull the stack
		// trace out of the error and print it.
		if cfg != nil && cfg.Verbose {
			if stack, ok := stackTrace(err); ok {
				fmt.Fprintf(os.Stderr, "%v\n", stack)
			}
		}

		os.Exit(1)
	}
}

func _main() error {
	// Print the help message if the help flag was provided. This is
	// handled before the config is loaded so that the help message does
	// not depend on a valid config.
	var opts flags.Options = flags.HelpFlag | flags.IgnoreUnknown |
		flags.PassDoubleDash
	parser := flags.NewParser(&struct{}{}, opts)
	_, err := parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Printf("%v\n", helpMsg)
			os.Exit(0)
		}
		return errors.Errorf("parse help flag: %v", err)
	}

	// Load the config. This also sets the log levels.
	cfg, err = loadConfig()
	if err != nil {
		return errors.Errorf("load config: %v", err)
	}

	// Setup the log rotation. The log global variable may now be used.
	err = initLogRotator(filepath.Join(cfg.LogDir, logFilename))
	if err != nil {
		return err
	}
	defer closeLogRotator()

	log.Tracef("App dir: %v", cfg.HomeDir)

	// Setup the session layer
	env, err = newEnvironment(cfg)
	if err != nil {
		return err
	}
	defer env.close()

	// Parse the CLI args and execute the command.
	parser = flags.NewParser(&peermallctl{DoNotUse: cfg}, flags.Default)
	_, err = parser.Parse()
	if err != nil {
		// An error has occurred during command execution. go-flags
		// will have already printed the error. Exit with an error
		// code.
		env.close()
		closeLogRotator()
		os.Exit(1)
	}

	return nil
}

// stackTrace returns the stack trace of a pkg/errors error. ok is false if
// the error does not carry one.
func stackTrace(err error) (string, bool) {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	var st stackTracer
	if !errors.As(err, &st) {
		return "", false
	}
	return fmt.Sprintf("%+v", st.StackTrace()), true
}
