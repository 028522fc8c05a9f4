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
	"net"
	"strconv"

	"github.com/outline-oss/socksconn/transport"
	"golang.org/x/net/proxy"
)

// ProxyDialer adapts a SOCKS5 proxy reachable through ProxyDialer into a
// golang.org/x/net/proxy.ContextDialer, so this package's SOCKS5 CONNECT
// can drop into anything already written against that interface (HTTP
// transports, other proxy chains, etc). It always negotiates "no
// authentication" and issues CONNECT, matching Connect5Host exactly.
type ProxyDialer struct {
	// ProxyDialer creates the connection to the SOCKS5 proxy itself. The
	// address it dials is the proxy's, not the eventual CONNECT target.
	ProxyDialer transport.StreamDialer
	// ProxyAddress is the proxy's host:port, passed to ProxyDialer.Dial.
	ProxyAddress string
}

var (
	_ proxy.Dialer        = (*ProxyDialer)(nil)
	_ proxy.ContextDialer = (*ProxyDialer)(nil)
)

// Dial implements proxy.Dialer.
func (d *ProxyDialer) Dial(network, addr string) (net.Conn, error) {
	return d.DialContext(context.Background(), network, addr)
}

// DialContext implements proxy.ContextDialer: it connects to the proxy, runs
// the SOCKS5 CONNECT handshake for host:port parsed out of addr, and returns
// the same connection as the tunnel on success.
func (d *ProxyDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	port, err := parsePort(portStr)
	if err != nil {
		return nil, err
	}

	conn, err := d.ProxyDialer.Dial(ctx, d.ProxyAddress)
	if err != nil {
		return nil, err
	}

	if _, err := Connect5Host(ctx, conn, host, port); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// parsePort follows the teacher's own host:port split
// (transport/socks5/socks5.go), using strconv rather than hand-rolled digit
// accumulation so an out-of-range value (e.g. "70000") is rejected instead of
// silently wrapping around a uint16.
func parsePort(s string) (uint16, error) {
	port, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, &net.AddrError{Err: "invalid port", Addr: s}
	}
	return uint16(port), nil
}
