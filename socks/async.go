// Copyright 2023 Jigsaw Operations LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package socks

import (
	"context"
	"sync"
	"time"

	"github.com/outline-oss/socksconn/transport"
)

// Handle represents a CONNECT exchange running in its own goroutine. The
// source runs its handshake as a chain of asio completion handlers suspended
// on the reactor; Go already has a cheaper unit of cooperative suspension, so
// the async entry points below just start a goroutine and hand back a Handle
// to observe or cancel it with.
type Handle struct {
	done      chan struct{}
	ep        Endpoint
	err       error
	conn      transport.StreamConn
	cancelled sync.Once
}

func newHandle(conn transport.StreamConn) *Handle {
	return &Handle{done: make(chan struct{}), conn: conn}
}

func (h *Handle) finish(ep Endpoint, err error) {
	h.ep, h.err = ep, err
	close(h.done)
}

// Cancel unblocks a pending CONNECT exchange. There is no cooperative
// cancellation point inside connect4/connect5 to check a flag at, since they
// spend almost all their time inside a blocking Read or Write; instead Cancel
// forces those calls to return immediately by pushing the connection's
// deadline into the past, the same lever [transport.StreamConn.SetDeadline]
// always exposes. It is safe to call more than once and safe to call after
// the exchange has already finished.
func (h *Handle) Cancel() {
	h.cancelled.Do(func() {
		h.conn.SetDeadline(time.Unix(0, 1))
	})
}

// Wait blocks until the exchange finishes or ctx is done, whichever comes
// first. It does not cancel the exchange itself; call Cancel for that.
func (h *Handle) Wait(ctx context.Context) (Endpoint, error) {
	select {
	case <-h.done:
		return h.ep, h.err
	case <-ctx.Done():
		return Endpoint{}, ctx.Err()
	}
}

// AsyncConnect4 starts a SOCKS4 CONNECT exchange in a new goroutine and
// returns immediately. If onDone is non-nil, it is called from that goroutine
// once the exchange finishes.
func AsyncConnect4(ctx context.Context, conn transport.StreamConn, dst Endpoint, userID string, onDone func(Endpoint, error)) *Handle {
	h := newHandle(conn)
	go func() {
		ep, err := connect4(ctx, conn, dst, userID)
		h.finish(ep, err)
		if onDone != nil {
			onDone(ep, err)
		}
	}()
	return h
}

// AsyncConnect4Host starts the resolve-then-iterate SOCKS4 CONNECT exchange
// (see Connect4Host) in a new goroutine.
func AsyncConnect4Host(ctx context.Context, conn transport.StreamConn, resolver Resolver, host string, port uint16, userID string, onDone func(Endpoint, error)) *Handle {
	h := newHandle(conn)
	go func() {
		ep, err := Connect4Host(ctx, conn, resolver, host, port, userID)
		h.finish(ep, err)
		if onDone != nil {
			onDone(ep, err)
		}
	}()
	return h
}

// AsyncConnect5 starts a SOCKS5 CONNECT exchange for a resolved endpoint in a
// new goroutine.
func AsyncConnect5(ctx context.Context, conn transport.StreamConn, dst Endpoint, onDone func(Endpoint, error)) *Handle {
	h := newHandle(conn)
	go func() {
		ep, err := connect5(ctx, conn, EndpointTarget(dst))
		h.finish(ep, err)
		if onDone != nil {
			onDone(ep, err)
		}
	}()
	return h
}

// AsyncConnect5Host starts a SOCKS5 CONNECT exchange for an unresolved
// hostname target in a new goroutine.
func AsyncConnect5Host(ctx context.Context, conn transport.StreamConn, host string, port uint16, onDone func(Endpoint, error)) *Handle {
	h := newHandle(conn)
	go func() {
		ep, err := connect5(ctx, conn, HostTarget(host, port))
		h.finish(ep, err)
		if onDone != nil {
			onDone(ep, err)
		}
	}()
	return h
}
