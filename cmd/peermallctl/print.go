// Copyright (c) 2017-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/decred/peermall/util"
)

// printJSON prints the passed in JSON using the style specified by the
// global config variable.
func printJSON(body interface{}) error {
	switch {
	case cfg.Silent:
		// Keep quiet
	case cfg.RawJSON:
		// Print raw JSON with no formatting
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("Marshal: %v", err)
		}
		fmt.Fprintf(os.Stdout, "%s\n", b)
	default:
		fmt.Fprintf(os.Stdout, "%s\n", util.FormatJSON(body))
	}

	return nil
}
