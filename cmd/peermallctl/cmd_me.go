// Copyright (c) 2022-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

// cmdMe verifies the saved session and prints the logged in user. This is
// the startup verification that a client runs. The saved session is cleared
// if it can not be verified.
type cmdMe struct{}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdMe) Execute(args []string) error {
	ctx, cancel := env.context()
	defer cancel()

	err := env.ctrl.Start(ctx)
	if err != nil {
		log.Warnf("Session verification failed: %v", err)
	}

	return printJSON(env.sessionReply())
}

// meHelpMsg is printed to stdout by the help command.
const meHelpMsg = `me

Verify the saved session and print the logged in user. A session that can
not be verified is cleared.

Arguments: None

Result:
{
  "state":    (string)  Session state
  "user":     (object)  Logged in user, omitted when logged out
  "route":    (string)  Route that the user was sent to
}`
