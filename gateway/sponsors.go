// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	v1 "github.com/decred/peermall/api/v1"
	"github.com/pkg/errors"
)

// SponsorByUser returns the sponsor relationship of the user. A nil
// relationship and a nil error are returned if the user has not selected a
// sponsor.
func (c *Client) SponsorByUser(ctx context.Context, uid string) (*v1.SponsorRelationship, error) {
	data, err := c.makeReq(ctx, http.MethodGet, v1.RouteSponsors,
		v1.SponsorLookup{
			UserUID: uid,
		})
	switch {
	case IsKind(err, ErrorKindNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	case isEmpty(data):
		return nil, nil
	}

	var sr v1.SponsorRelationship
	err = json.Unmarshal(data, &sr)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal SponsorRelationship")
	}

	return &sr, nil
}

// SponsorSelect records the sponsor that the user selected.
func (c *Client) SponsorSelect(ctx context.Context, ss v1.SponsorSelect) (*v1.SponsorRelationship, error) {
	data, err := c.makeReq(ctx, http.MethodPost, v1.RouteSponsorSelect, ss)
	if err != nil {
		return nil, err
	}

	var sr v1.SponsorRelationship
	err = json.Unmarshal(data, &sr)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal SponsorRelationship")
	}

	return &sr, nil
}

// isEmpty returns whether the reply data is absent or null.
func isEmpty(data []byte) bool {
	return len(data) == 0 || string(data) == "null"
}
