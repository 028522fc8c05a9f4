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
	"testing"
	"time"

	"github.com/outline-oss/socksconn/transport"
	"github.com/stretchr/testify/require"
	socks5server "github.com/things-go/go-socks5"
	"golang.org/x/net/proxy"
)

func TestProxyDialerImplementsXNetProxy(t *testing.T) {
	server := socks5server.NewServer()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	go server.Serve(listener)
	time.Sleep(10 * time.Millisecond)

	d := &ProxyDialer{
		ProxyDialer:  &transport.TCPStreamDialer{},
		ProxyAddress: listener.Addr().String(),
	}
	var _ proxy.Dialer = d
	var _ proxy.ContextDialer = d

	conn, err := d.DialContext(context.Background(), "tcp", listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
}

func TestParsePort(t *testing.T) {
	p, err := parsePort("443")
	require.NoError(t, err)
	require.EqualValues(t, 443, p)

	_, err = parsePort("not-a-port")
	require.Error(t, err)
}

func TestParsePortRejectsOutOfRange(t *testing.T) {
	_, err := parsePort("70000")
	require.Error(t, err)
}
