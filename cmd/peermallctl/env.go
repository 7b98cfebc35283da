// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	v1 "github.com/decred/peermall/api/v1"
	"github.com/decred/peermall/auth"
	"github.com/decred/peermall/gateway"
	"github.com/decred/peermall/nav"
	"github.com/decred/peermall/notice"
	"github.com/decred/peermall/session"
	"github.com/decred/peermall/session/filestore"
	"github.com/decred/peermall/session/localdb"
	"github.com/decred/peermall/session/redisdb"
	"github.com/decred/peermall/sponsor"
	"github.com/decred/peermall/util"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// environment contains the session layer components. It mirrors the
// components that a peermall client runs with.
type environment struct {
	store    session.Store
	closers  []func() error
	history  *nav.History
	notifier notice.Notifier
	gw       *gateway.Client
	gate     *sponsor.Gate
	ctrl     *auth.Controller
}

// sessionReply is printed by the commands that change the session.
type sessionReply struct {
	State string   `json:"state"`
	User  *v1.User `json:"user,omitempty"`
	Route string   `json:"route"`
}

// sessionReply returns the current session state and route.
func (e *environment) sessionReply() sessionReply {
	st := e.ctrl.State()
	return sessionReply{
		State: st.State.String(),
		User:  st.User,
		Route: e.history.Current(),
	}
}

// context returns a context that is canceled on interrupt.
func (e *environment) context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// close releases the resources of the session store. It is safe to call
// close more than once.
func (e *environment) close() {
	for _, fn := range e.closers {
		err := fn()
		if err != nil {
			log.Errorf("close: %v", err)
		}
	}
	e.closers = nil
}

// newSessionStore returns the session store that was selected in the
// config. Stores are segmented by API host.
func newSessionStore(cfg *config) (session.Store, func() error, error) {
	hostname, err := util.HostName(cfg.Host)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.SessionStore {
	case storeFile:
		s, err := filestore.New(cfg.DataDir, cfg.Host)
		if err != nil {
			return nil, nil, err
		}
		log.Debugf("Session file: %v", s.Path())
		return s, nil, nil

	case storeLevelDB:
		root := filepath.Join(cfg.DataDir, hostname+"_sessiondb")
		s, err := localdb.New(root)
		if err != nil {
			return nil, nil, err
		}
		log.Debugf("Session db: %v", root)
		return s, s.Close, nil

	case storeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		prefix := redisdb.DefaultPrefix + ":" + hostname
		log.Debugf("Session redis: %v %v", cfg.RedisAddr, prefix)
		s := redisdb.New(client, prefix)
		return s, s.Close, nil
	}

	return nil, nil, errors.Errorf("invalid session store '%v'",
		cfg.SessionStore)
}

// newEnvironment sets up the session layer.
func newEnvironment(cfg *config) (*environment, error) {
	store, closer, err := newSessionStore(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "session store")
	}
	e := &environment{
		store:    store,
		history:  nav.NewHistory(nav.RouteLanding),
		notifier: notice.NewLogNotifier(ntfnLog),
	}
	if closer != nil {
		e.closers = append(e.closers, closer)
	}

	e.gw, err = gateway.New(gateway.Config{
		Host:       cfg.Host,
		SkipVerify: cfg.SkipVerify,
		Timeout:    cfg.Timeout,
		Proxy:      cfg.Proxy,
		ProxyUser:  cfg.ProxyUser,
		ProxyPass:  cfg.ProxyPass,
		Store:      store,
		Navigator:  e.history,
		Notifier:   e.notifier,
	})
	if err != nil {
		e.close()
		return nil, errors.Wrap(err, "gateway")
	}
	e.gate = sponsor.New(e.gw, e.history, e.notifier)
	e.ctrl, err = auth.New(auth.Config{
		Store:     store,
		Gateway:   e.gw,
		Gate:      e.gate,
		Navigator: e.history,
		Notifier:  e.notifier,
	})
	if err != nil {
		e.close()
		return nil, errors.Wrap(err, "session controller")
	}

	// Route changes are logged so that the flow of a command can be
	// followed.
	e.history.Subscribe(func(route string) {
		log.Debugf("Route: %v", route)
	})

	return e, nil
}
