// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	v1 "github.com/decred/peermall/api/v1"
	"github.com/decred/peermall/auth"
	"github.com/decred/peermall/gateway"
	"github.com/decred/peermall/nav"
	"github.com/decred/peermall/util"
	"github.com/pkg/errors"
)

// cmdShopNew creates a new shop that is owned by the logged in user.
type cmdShopNew struct {
	Args struct {
		Name  string `positional-arg-name:"name" required:"true"`
		Image string `positional-arg-name:"image"`
	} `positional-args:"true"`

	Slug        string `long:"slug" description:"Url slug, derived from the name if not provided"`
	Description string `long:"description" description:"Shop description"`
}

// Execute executes the command.
//
// This function satisfies the go-flags Commander interface.
func (c *cmdShopNew) Execute(args []string) error {
	ctx, cancel := env.context()
	defer cancel()

	err := env.ctrl.Start(ctx)
	if err != nil {
		return err
	}
	st := env.ctrl.State()
	switch st.State {
	case auth.StateAuthenticatedUngated:
		// Allowed; continue
	case auth.StateAuthenticatedGated:
		return errors.New("a sponsor must be selected before creating " +
			"a shop; use the sponsorselect command")
	default:
		return auth.ErrNotAuthenticated
	}

	// Load the image
	var img *gateway.Image
	if c.Args.Image != "" {
		fp := util.CleanAndExpandPath(c.Args.Image)
		b, err := os.ReadFile(fp)
		if err != nil {
			return errors.Wrapf(err, "read image")
		}
		img = &gateway.Image{
			Filename: filepath.Base(fp),
			Data:     b,
		}
	}

	s, err := env.gw.ShopNew(ctx, v1.ShopNew{
		Name:        c.Args.Name,
		URLSlug:     c.Slug,
		Description: c.Description,
		OwnerUID:    st.User.UID,
	}, img)
	if err != nil {
		return err
	}

	env.history.Navigate(nav.ShopRoute(s.URLSlug))

	return printJSON(s)
}

// shopNewHelpMsg is printed to stdout by the help command.
const shopNewHelpMsg = `shopnew "name" "image"

Create a new shop that is owned by the logged in user. A sponsor must have
been selected first.

Arguments:
1. name           (string, required)   Shop name
2. image          (string, optional)   Path to the shop image {png, jpeg,
                                       gif, webp, svg}, max 2 MiB

Flags:
  --slug          (string, optional)   Url slug, derived from the name if
                                       not provided
  --description   (string, optional)   Shop description

Result:
{
  "id":           (string)  Shop ID
  "urlSlug":      (string)  Url slug
  "name":         (string)  Name
  "description":  (string)  Description
  "imageUrl":     (string)  Image url
  "ownerUid":     (string)  Owner user ID
  "stats":        (object)  Shop counters
}`
