// Copyright (c) 2017-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

// peermallctl is the peermall session layer CLI tool.
type peermallctl struct {
	// The config is parsed separately from the commands and set as a
	// global variable. The DoNotUse config field is here as a workaround
	// to prevent go-flags unknown flag errors during parsing and to allow
	// the config fields to be printed in the go-flags created help
	// message. It should not be used by the commands.
	DoNotUse *config

	// Basic commands
	Help cmdHelp `command:"help"`

	// Session commands
	Login  cmdLogin  `command:"login"`
	Logout cmdLogout `command:"logout"`
	Me     cmdMe     `command:"me"`

	// Sponsor commands
	SponsorSelect cmdSponsorSelect `command:"sponsorselect"`

	// Shop commands
	Shop    cmdShop    `command:"shop"`
	ShopNew cmdShopNew `command:"shopnew"`
}

const helpMsg = `Application Options:
      --appdata=       Path to application home directory
      --host=          peermall API host
  -j, --json           Print raw JSON output
      --version        Display version information and exit
      --skipverify     Skip verifying the server's certificate chain and host name
  -v, --verbose        Print verbose output
      --silent         Suppress all output
      --timeout=       HTTP request timeout (default: 1m)
      --sessionstore=  Session storage backend {file, leveldb, redis} (default: file)
      --redisaddr=     Redis address for the redis session store
      --redispass=     Redis password
      --redisdb=       Redis database number
      --proxy=         Connect via SOCKS5 proxy (eg. 127.0.0.1:9050)
      --proxyuser=     Username for proxy server
      --proxypass=     Password for proxy server
      --logdir=        Directory to log output
  -d, --debuglevel=    Logging level {trace, debug, info, warn, error, critical}

Help commands
  help                 Print detailed help message for a command

Session commands
  login                (public) Login to peermall
  logout               (user)   Logout from peermall
  me                   (user)   Verify the stored session

Sponsor commands
  sponsorselect        (user)   Select a sponsor

Shop commands
  shop                 (public) Get a shop by its url slug
  shopnew              (user)   Create a new shop
`
