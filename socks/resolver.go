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
)

// Resolver maps a hostname to an ordered list of IP addresses, for the
// SOCKS4 local-resolution fallback described in spec.md §4.5. This is an
// external collaborator contract: SOCKS4 in this profile carries no
// domain_name ATYP, so a hostname target must be resolved by the caller's
// environment before a CONNECT request can be built.
//
// This is deliberately narrower than the teacher's happy-eyeballs dialer
// (transport/happyeyeballs.go, not carried here): SOCKS4 resolution doesn't
// race IPv4 against IPv6, it walks one ordered list and skips IPv6 entries.
type Resolver interface {
	Resolve(ctx context.Context, host string) ([]net.IP, error)
}

// DefaultResolver resolves hostnames with the standard library's
// net.DefaultResolver, mirroring the teacher's dns.Resolver default path.
var DefaultResolver Resolver = netResolver{}

type netResolver struct{}

func (netResolver) Resolve(ctx context.Context, host string) ([]net.IP, error) {
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	ips := make([]net.IP, len(addrs))
	for i, a := range addrs {
		ips[i] = a.IP
	}
	return ips, nil
}
