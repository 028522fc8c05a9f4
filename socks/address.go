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
	"encoding/binary"
	"net"
	"strconv"
)

// AddressType is the wire tag for a SOCKS5 address (RFC 1928 §5) and, for the
// fixed IPv4 case, the implicit address family SOCKS4 always uses.
type AddressType byte

const (
	UnknownAddressType AddressType = 0x00
	IPv4               AddressType = 0x01
	DomainName         AddressType = 0x03
	IPv6               AddressType = 0x04
)

// ToAddressType maps a wire byte to its AddressType, returning
// UnknownAddressType for anything else.
func ToAddressType(b byte) AddressType {
	switch AddressType(b) {
	case IPv4, DomainName, IPv6:
		return AddressType(b)
	default:
		return UnknownAddressType
	}
}

// Endpoint is a resolved (address, port) pair, as bound and reported by a
// SOCKS proxy or supplied as an already-resolved CONNECT target.
type Endpoint struct {
	IP   net.IP
	Port uint16
}

// String renders the endpoint as host:port, for logging and trace hooks. It
// returns the empty string for a zero-value Endpoint.
func (e Endpoint) String() string {
	if e.IP == nil {
		return ""
	}
	return net.JoinHostPort(e.IP.String(), strconv.Itoa(int(e.Port)))
}

func endpointFromIPv4Bytes(b []byte) Endpoint {
	return Endpoint{IP: net.IPv4(b[0], b[1], b[2], b[3]), Port: 0}
}

func endpointFromIPv6Bytes(b []byte) Endpoint {
	ip := make(net.IP, net.IPv6len)
	copy(ip, b)
	return Endpoint{IP: ip, Port: 0}
}

// appendIPAddress appends the address-type byte and address bytes for ip to
// b, choosing IPv4 or IPv6 framing based on the IP's actual form.
func appendIPAddress(b []byte, ip net.IP) ([]byte, error) {
	if ip4 := ip.To4(); ip4 != nil {
		b = append(b, byte(IPv4))
		return append(b, ip4...), nil
	}
	if ip6 := ip.To16(); ip6 != nil {
		b = append(b, byte(IPv6))
		return append(b, ip6...), nil
	}
	return nil, &net.AddrError{Err: "address is neither IPv4 nor IPv6", Addr: ip.String()}
}

func appendPort(b []byte, port uint16) []byte {
	return binary.BigEndian.AppendUint16(b, port)
}
