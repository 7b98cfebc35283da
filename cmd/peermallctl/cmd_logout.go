// Copyright (c) 2022-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

// cmdLogout logs out the user. The local session is always cleared, even if
// the server cannot be reached.
type cmdLogout struct{}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdLogout) Execute(args []string) error {
	ctx, cancel := env.context()
	defer cancel()

	env.ctrl.Logout(ctx)

	return printJSON(env.sessionReply())
}

// logoutHelpMsg is printed to stdout by the help command.
const logoutHelpMsg = `logout

Logout the user. The saved session is cleared and the server is notified.

Arguments: None

Result:
{
  "state":    (string)  Session state
  "route":    (string)  Route that the user was sent to
}`
