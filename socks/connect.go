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

// Package socks implements the client side of the SOCKS4 and SOCKS5
// CONNECT handshake: request encoding, reply decoding, and the driver that
// writes a request and reads a reply over an already-connected byte stream.
// Only CONNECT is implemented; BIND, UDP ASSOCIATE and authentication beyond
// SOCKS4 user-id and SOCKS5 "no authentication" are Non-goals.
package socks

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/outline-oss/socksconn/transport"
)

// ErrHostNotFound is returned by Connect4Host when the resolver yields no
// IPv4 candidate for a hostname: an empty list, or only IPv6 addresses
// (SOCKS4 carries no IPv6 address family). When IPv4 candidates were tried
// and all failed, Connect4Host returns the last of their errors instead.
var ErrHostNotFound = errors.New("socks: host not found")

// BufferPool is the reply-buffer allocator connect5 draws from. The source
// threads a caller-supplied allocator through every read; idiomatic Go has a
// standard vocabulary for that already, so this is a plain *sync.Pool a
// caller is free to replace (e.g. with one pre-warmed or size-tuned for its
// workload) before making any Connect5/Connect5Host calls.
var BufferPool = &sync.Pool{
	New: func() any {
		b := make([]byte, 262)
		return &b
	},
}

// stream is the minimal capability the driver needs from a
// transport.StreamConn: a blocking Read and a blocking Write. Keeping this
// internal interface narrow (rather than depending on the full StreamConn)
// keeps request/reply plumbing testable against bare io.Reader/io.Writer
// pairs as well as real connections.
type stream interface {
	io.Reader
	io.Writer
}

// Connect4 performs a SOCKS4 CONNECT handshake on stream (already connected
// to the proxy) for the resolved target dst, authenticating with userID
// (which may be empty). It returns the bound endpoint the proxy reports, or
// an error — an Error if the proxy rejected the request or sent a malformed
// reply, or the underlying stream's transport error otherwise. If ctx carries
// a ClientTrace, RequestStarted/RequestDone bracket the exchange.
func Connect4(ctx context.Context, conn transport.StreamConn, dst Endpoint, userID string) (Endpoint, error) {
	return connect4(ctx, conn, dst, userID)
}

func connect4(ctx context.Context, s stream, dst Endpoint, userID string) (ep Endpoint, err error) {
	traceRequestStarted(ctx, 4, dst.String())
	defer func() { traceRequestDone(ctx, ep.String(), err) }()

	req, err := EncodeV4Connect(dst, userID)
	if err != nil {
		return Endpoint{}, err
	}
	if _, err := s.Write(req); err != nil {
		return Endpoint{}, err
	}

	var buf [8]byte
	if _, err := io.ReadFull(s, buf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// The proxy closed the connection after rejecting the request;
			// translate the clean EOF into a protocol-level failure rather
			// than leaking it to the caller (spec.md §7).
			return Endpoint{}, BadRequestSize
		}
		return Endpoint{}, err
	}

	ec, decoded := DecodeV4Reply(buf[:])
	if ec != RequestGranted {
		return Endpoint{}, ec
	}
	return decoded, nil
}

// Connect4Host resolves host via resolver, then attempts Connect4 against
// each resolved IPv4 candidate in order over the same proxy stream, per
// spec.md §4.5: IPv6 candidates are skipped (recording ErrHostNotFound as
// the pending error on the first skip, cleared again if a later candidate
// succeeds), and the first successful candidate wins. If every candidate
// fails, the last observed error is returned.
func Connect4Host(ctx context.Context, s transport.StreamConn, resolver Resolver, host string, port uint16, userID string) (Endpoint, error) {
	if resolver == nil {
		resolver = DefaultResolver
	}
	ips, err := resolver.Resolve(ctx, host)
	if err != nil {
		return Endpoint{}, err
	}

	var lastErr error = ErrHostNotFound
	for _, ip := range ips {
		if ip.To4() == nil {
			if lastErr == nil {
				lastErr = ErrHostNotFound
			}
			continue
		}
		ep, err := connect4(ctx, s, Endpoint{IP: ip, Port: port}, userID)
		if err == nil {
			return ep, nil
		}
		lastErr = err
	}
	return Endpoint{}, lastErr
}

// Connect5 performs a SOCKS5 CONNECT handshake on stream for the resolved
// target dst, using "no authentication" (the only method this profile
// offers). It returns the bound endpoint the proxy reports, falling back to
// dst itself if the proxy's reply is a truncated success with no usable
// bound address (spec.md §4.4 rule 4), or an Error/transport error. If ctx
// carries a ClientTrace, RequestStarted/RequestDone bracket the exchange.
func Connect5(ctx context.Context, s transport.StreamConn, dst Endpoint) (Endpoint, error) {
	return connect5(ctx, s, EndpointTarget(dst))
}

// Connect5Host performs a SOCKS5 CONNECT handshake with an unresolved
// hostname target: SOCKS5 carries domain names on the wire directly, so no
// local resolution is attempted (spec.md §4.5).
func Connect5Host(ctx context.Context, s transport.StreamConn, host string, port uint16) (Endpoint, error) {
	return connect5(ctx, s, HostTarget(host, port))
}

func connect5(ctx context.Context, s stream, target Target) (ep Endpoint, err error) {
	traceRequestStarted(ctx, 5, target.String())
	defer func() { traceRequestDone(ctx, ep.String(), err) }()

	if _, err := s.Write(EncodeV5Greeting()); err != nil {
		return Endpoint{}, err
	}

	var methodResp [2]byte
	if _, err := io.ReadFull(s, methodResp[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Endpoint{}, BadRequestSize
		}
		return Endpoint{}, err
	}
	if methodResp[0] != version5 {
		return Endpoint{}, NoProtocolOption
	}
	if methodResp[1] != methodNoAuth {
		// A non-0x00 method selection is terminal, per spec.md §4.5's
		// MethodNegotiation state: the server won't accept "no auth" and
		// this profile offers nothing else.
		return Endpoint{}, GeneralFailure
	}

	req, err := EncodeV5Connect(target)
	if err != nil {
		return Endpoint{}, err
	}
	if _, err := s.Write(req); err != nil {
		return Endpoint{}, err
	}

	// A single variable-length Read, not staged io.ReadFull calls: servers
	// may legitimately send a short reply (as little as 2 bytes) and never
	// send more on this connection before the caller starts using it as a
	// tunnel (spec.md §4.4 rule 4, §8 boundary behaviors). Staging fixed-size
	// reads would block forever waiting for bytes that are never coming.
	bufp := BufferPool.Get().(*[]byte)
	defer BufferPool.Put(bufp)
	buf := *bufp
	n, err := s.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return Endpoint{}, err
	}

	ec, decoded := DecodeV5Reply(buf[:n])
	if ec != Succeeded {
		return Endpoint{}, ec
	}
	if decoded.IP == nil && !target.isHost() {
		// The proxy's reply didn't carry a usable bound address (spec.md
		// §4.4 rule 4); fall back to the endpoint we asked to connect to,
		// per the driver contract in spec.md §4.5. There's nothing to fall
		// back to for a hostname target, since it was never resolved here.
		decoded = target.endpoint
	}
	return decoded, nil
}
