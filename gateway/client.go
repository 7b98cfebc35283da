// Copyright (c) 2017-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	v1 "github.com/decred/peermall/api/v1"
	"github.com/decred/peermall/nav"
	"github.com/decred/peermall/notice"
	"github.com/decred/peermall/session"
	"github.com/decred/go-socks/socks"
	"github.com/google/uuid"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"
)

const (
	// defaultTimeout is the http client timeout that is used when the
	// config does not specify one.
	defaultTimeout = 1 * time.Minute

	// maxReplySize is the maximum number of reply body bytes that are
	// read.
	maxReplySize = 10 * 1024 * 1024
)

// Config contains the gateway configuration.
type Config struct {
	Host       string        // API host, e.g. https://peermall.example.com
	SkipVerify bool          // Skip TLS certificate verification
	Timeout    time.Duration // HTTP client timeout

	// Optional SOCKS5 proxy
	Proxy     string
	ProxyUser string
	ProxyPass string

	Store     session.Store   // Required
	Navigator nav.Navigator   // Required
	Notifier  notice.Notifier // Optional, notices are dropped if nil
}

// Client is the request gateway. Every API request goes through a Client.
// The Client attaches the stored session credentials to outgoing requests
// and applies the global failure policy to the replies.
type Client struct {
	sync.Mutex // Serializes session expiry

	http     *http.Client
	host     string
	store    session.Store
	nav      nav.Navigator
	notifier notice.Notifier

	// expiries coalesces the session expiry handling of concurrent
	// requests that were sent with the same session.
	expiries singleflight.Group
}

// request describes a single API request.
type request struct {
	method string
	route  string

	// body is JSON encoded for POST and PUT requests and encoded as query
	// params for GET requests.
	body interface{}

	// raw is sent as is when set, using contentType.
	raw         []byte
	contentType string

	// session overrides the stored session credentials when set.
	session *session.Session

	// anonymous requests are sent without session credentials. A 401
	// reply to an anonymous request has no side effects.
	anonymous bool

	// retried is set once the request has been through the session
	// expiry handling.
	retried bool
}

// credentials returns the session that the request will be sent with. A nil
// session means the request is sent unauthenticated.
func (c *Client) credentials(ctx context.Context, r *request) (*session.Session, error) {
	if r.anonymous {
		return nil, nil
	}
	if r.session != nil {
		return r.session, nil
	}
	s, err := c.store.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get session")
	}
	return s, nil
}

// do sends the request and returns the data of the reply envelope. All
// failures are returned as a RespErr, except for errors that occur before
// the request is sent.
func (c *Client) do(ctx context.Context, r *request) ([]byte, error) {
	sent, err := c.credentials(ctx, r)
	if err != nil {
		return nil, err
	}

	// Setup request body
	var (
		body        io.Reader
		queryParams string
		contentType string
	)
	switch {
	case r.raw != nil:
		body = bytes.NewReader(r.raw)
		contentType = r.contentType

	case r.body == nil:
		// Nothing to encode

	case r.method == http.MethodGet:
		// GET requests don't have a request body; instead we
		// populate the query params.
		form := url.Values{}
		err := schema.NewEncoder().Encode(r.body, form)
		if err != nil {
			return nil, errors.Wrap(err, "encode query")
		}
		queryParams = "?" + form.Encode()

	case r.method == http.MethodPost || r.method == http.MethodPut:
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, errors.Wrap(err, "marshal body")
		}
		body = bytes.NewReader(b)
		contentType = "application/json"

	default:
		return nil, errors.Errorf("unknown http method '%v'", r.method)
	}

	fullRoute := c.host + v1.APIRoute + r.route + queryParams

	// Create http request
	req, err := http.NewRequestWithContext(ctx, r.method, fullRoute, body)
	if err != nil {
		return nil, err
	}
	reqID := uuid.New().String()
	req.Header.Set(v1.HeaderRequestID, reqID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if sent != nil {
		req.Header.Set(v1.HeaderAuthorization, v1.AuthScheme+" "+sent.ID)
		req.Header.Set(v1.HeaderCSRFToken, sent.CSRFToken)
	}

	log.Debugf("Request %v: %v %v (authenticated: %v)",
		reqID, r.method, fullRoute, sent != nil)

	// Send request
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, RespErr{
			Kind: ErrorKindNetwork,
			Err:  err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return nil, RespErr{
			Kind:     ErrorKindNetwork,
			HTTPCode: resp.StatusCode,
			Err:      err,
		}
	}

	log.Debugf("Response %v: %v", reqID, resp.StatusCode)
	log.Tracef("Response %v body: %s", reqID, respBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.handleStatus(ctx, r, sent, resp.StatusCode, respBody)
	}

	var reply v1.Reply
	err = json.Unmarshal(respBody, &reply)
	if err != nil {
		return nil, errors.Wrapf(err, "unmarshal reply %v", reqID)
	}
	if !reply.Success {
		return nil, RespErr{
			Kind:     ErrorKindValidation,
			HTTPCode: resp.StatusCode,
			Message:  reply.Message,
		}
	}

	return reply.Data, nil
}

// makeReq sends a request that uses the stored session credentials.
func (c *Client) makeReq(ctx context.Context, method, route string, body interface{}) ([]byte, error) {
	return c.do(ctx, &request{
		method: method,
		route:  route,
		body:   body,
	})
}

// handleStatus applies the global failure policy to a non 2xx reply and
// returns the error that the request is rejected with.
func (c *Client) handleStatus(ctx context.Context, r *request, sent *session.Session, status int, body []byte) error {
	p := decide(status, r.retried)
	switch {
	case p.expire:
		r.retried = true
		c.expireSession(ctx, sent, p.notice)
	case p.notice != nil:
		c.notify(*p.notice)
	}

	// The reply may or may not contain an envelope
	var reply v1.Reply
	_ = json.Unmarshal(body, &reply)

	return RespErr{
		Kind:     p.kind,
		HTTPCode: status,
		Message:  reply.Message,
	}
}

// expireSession clears the session that a rejected request was sent with,
// navigates to the login page and shows the notice.
//
// The side effects happen at most once per session. Concurrent callers for
// the same session wait on the first one. Late callers find that the stored
// session is no longer the one they sent and do nothing, which also keeps a
// session that was created by a newer login intact.
func (c *Client) expireSession(ctx context.Context, sent *session.Session, n *notice.Notice) {
	if sent == nil {
		// The request was unauthenticated. There is no session to
		// expire.
		log.Debugf("Unauthorized reply to an unauthenticated request")
		return
	}

	// The side effects must complete even if the context of the caller
	// that happens to perform them is canceled.
	ctx = context.WithoutCancel(ctx)

	_, _, shared := c.expiries.Do(sent.ID, func() (interface{}, error) {
		c.Lock()
		defer c.Unlock()

		cur, err := c.store.Get(ctx)
		switch {
		case err != nil:
			// Clear anyway. Keeping a session that the server
			// rejected is never the right call.
			log.Errorf("expireSession: get session: %v", err)
		case cur == nil || cur.ID != sent.ID:
			log.Debugf("Session already expired")
			return nil, nil
		}

		log.Infof("Session expired")

		err = c.store.Clear(ctx)
		if err != nil {
			log.Errorf("expireSession: clear session: %v", err)
		}
		c.nav.Navigate(nav.RouteLogin)
		if n != nil {
			c.notify(*n)
		}

		return nil, nil
	})
	if shared {
		log.Tracef("Session expiry shared with a concurrent request")
	}
}

// notify delivers the notice if a notifier has been configured.
func (c *Client) notify(n notice.Notice) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(n)
}

// routeWithVars replaces the {name} route variables with the path escaped
// values.
func routeWithVars(route string, vars map[string]string) string {
	for k, v := range vars {
		route = strings.Replace(route, "{"+k+"}", url.PathEscape(v), 1)
	}
	return route
}

// New returns a new Client.
func New(cfg Config) (*Client, error) {
	switch {
	case cfg.Store == nil:
		return nil, errors.New("session store not provided")
	case cfg.Navigator == nil:
		return nil, errors.New("navigator not provided")
	}
	u, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, errors.Wrap(err, "parse host")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("host scheme must be http or https")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	// Setup http client
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.SkipVerify,
	}
	tr := &http.Transport{
		TLSClientConfig: tlsConfig,
	}
	if cfg.Proxy != "" {
		_, _, err := net.SplitHostPort(cfg.Proxy)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid proxy address '%v'",
				cfg.Proxy)
		}
		proxy := &socks.Proxy{
			Addr:     cfg.Proxy,
			Username: cfg.ProxyUser,
			Password: cfg.ProxyPass,
		}
		// The proxy handshake only honors deadlines. It is bounded by
		// the client timeout since the transport may dial with a context
		// that is detached from the request.
		tr.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return proxy.DialContext(ctx, network, addr)
		}
	}
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		http: &http.Client{
			Transport: tr,
			Jar:       jar,
			Timeout:   timeout,
		},
		host:     strings.TrimSuffix(cfg.Host, "/"),
		store:    cfg.Store,
		nav:      cfg.Navigator,
		notifier: cfg.Notifier,
	}, nil
}
