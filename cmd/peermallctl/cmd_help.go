// Copyright (c) 2017-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
)

// cmdHelp prints a detailed help message for the specified command.
type cmdHelp struct {
	Args struct {
		Command string `positional-arg-name:"command"`
	} `positional-args:"true" required:"true"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdHelp) Execute(args []string) error {
	switch c.Args.Command {
	case "login":
		fmt.Printf("%s\n", loginHelpMsg)
	case "logout":
		fmt.Printf("%s\n", logoutHelpMsg)
	case "me":
		fmt.Printf("%s\n", meHelpMsg)
	case "sponsorselect":
		fmt.Printf("%s\n", sponsorSelectHelpMsg)
	case "shop":
		fmt.Printf("%s\n", shopHelpMsg)
	case "shopnew":
		fmt.Printf("%s\n", shopNewHelpMsg)
	default:
		fmt.Printf("invalid command: use 'peermallctl -h' " +
			"to view a list of valid commands\n")
	}

	return nil
}
