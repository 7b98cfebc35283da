// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"

	"github.com/decred/peermall/auth"
)

// cmdSponsorSelect selects the sponsor of the logged in user.
type cmdSponsorSelect struct {
	Args struct {
		SponsorID string `positional-arg-name:"sponsorid" required:"true"`
	} `positional-args:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdSponsorSelect) Execute(args []string) error {
	ctx, cancel := env.context()
	defer cancel()

	err := env.ctrl.Start(ctx)
	if err != nil {
		return err
	}
	sel, err := env.ctrl.SelectSponsor(ctx, c.Args.SponsorID)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			log.Infof("You must be logged in to select a sponsor")
		}
		return err
	}

	return printJSON(sel)
}

// sponsorSelectHelpMsg is printed to stdout by the help command.
const sponsorSelectHelpMsg = `sponsorselect "sponsorid"

Select the sponsor of the logged in user. The user is then sent to their
shop, or to the shop creation page if they do not own one yet.

Arguments:
1. sponsorid  (string, required)   Sponsor ID

Result:
{
  "relationship":  (object)  Sponsor relationship
  "shop":          (object)  Shop of the user, omitted if none
  "route":         (string)  Route that the user was sent to
}`
