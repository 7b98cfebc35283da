// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package session defines the client session and the Store interface that is
used to persist it between runs.

A session is the pair of an opaque session ID and an anti-forgery (CSRF)
token. The pair is created on login and destroyed on logout or when the
server rejects it. The two values are always written and cleared together.

The following stores are provided:

	memstore   process memory
	filestore  host specific JSON file in a data directory
	localdb    leveldb
	redisdb    redis
*/
package session
