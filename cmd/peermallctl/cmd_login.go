// Copyright (c) 2022-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	v1 "github.com/decred/peermall/api/v1"
	"github.com/decred/peermall/session"
)

// cmdLogin logs in a user. The session is saved by the session store and
// attached to subsequent commands.
type cmdLogin struct {
	Args struct {
		Email    string `positional-arg-name:"email" required:"true"`
		Password string `positional-arg-name:"password" required:"true"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdLogin) Execute(args []string) error {
	ctx, cancel := env.context()
	defer cancel()

	lr, err := env.gw.Login(ctx, v1.Login{
		Email:    c.Args.Email,
		Password: c.Args.Password,
	})
	if err != nil {
		return err
	}
	err = env.ctrl.Login(ctx, session.Session{
		ID:        lr.SessionID,
		CSRFToken: lr.CSRFToken,
	}, lr.User)
	if err != nil {
		return err
	}

	log.Debugf("Logged in %v", c.Args.Email)

	return printJSON(env.sessionReply())
}

// loginHelpMsg is printed to stdout by the help command.
const loginHelpMsg = `login "email" "password"

Login to peermall. The session is saved and attached to subsequent commands.
Users that have not selected a sponsor yet are routed to the sponsor
selection page.

Arguments:
1. email      (string, required)   Email
2. password   (string, required)   Password

Result:
{
  "state":    (string)  Session state
  "user":     (object)  Logged in user
  "route":    (string)  Route that the user was sent to
}`
