// Copyright (c) 2017-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	v1 "github.com/decred/peermall/api/v1"
	"github.com/decred/peermall/session"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

// Login sends a login request. The returned session is not stored; storing
// it is up to the caller. The request is sent without the stored session so
// that a rejected login leaves the stored session in place.
func (c *Client) Login(ctx context.Context, l v1.Login) (*v1.LoginReply, error) {
	data, err := c.do(ctx, &request{
		method:    http.MethodPost,
		route:     v1.RouteUserLogin,
		body:      l,
		anonymous: true,
	})
	if err != nil {
		return nil, err
	}

	var lr v1.LoginReply
	err = json.Unmarshal(data, &lr)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal LoginReply")
	}

	log.Tracef("Login reply: %v", newLogClosure(func() string {
		return spew.Sdump(lr.User)
	}))

	return &lr, nil
}

// Me returns the user of the stored session. ErrNoSession is returned
// without contacting the server if there is no stored session.
func (c *Client) Me(ctx context.Context) (*v1.User, error) {
	s, err := c.store.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get session")
	}
	if s == nil {
		return nil, ErrNoSession
	}

	data, err := c.do(ctx, &request{
		method:  http.MethodGet,
		route:   v1.RouteUserMe,
		session: s,
	})
	if err != nil {
		return nil, err
	}

	var u v1.User
	err = json.Unmarshal(data, &u)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal User")
	}

	log.Tracef("Me reply: %v", newLogClosure(func() string {
		return spew.Sdump(u)
	}))

	return &u, nil
}

// Logout notifies the server that the provided session has ended. The
// request is sent with the provided credentials instead of the stored ones
// since the caller normally clears the stored session first.
func (c *Client) Logout(ctx context.Context, s session.Session) error {
	_, err := c.do(ctx, &request{
		method: http.MethodPost,
		route:  v1.RouteUserLogout,
		body: v1.Logout{
			SessionID: s.ID,
		},
		session: &s,
	})
	return err
}
