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

import "encoding/binary"

// DecodeV4Reply parses a SOCKS4 CONNECT reply, per spec.md §4.4. buf must be
// the full 8-byte reply; a short buffer (the connection closed before 8
// bytes arrived) is reported as BadRequestSize rather than panicking on a
// slice bounds error.
func DecodeV4Reply(buf []byte) (Error, Endpoint) {
	if len(buf) != 8 {
		return BadRequestSize, Endpoint{}
	}
	status := Error(buf[1])
	if status != RequestGranted {
		return status, Endpoint{}
	}
	ep := endpointFromIPv4Bytes(buf[4:8])
	ep.Port = binary.BigEndian.Uint16(buf[2:4])
	return RequestGranted, ep
}

// DecodeV5Reply parses a SOCKS5 CONNECT reply, per spec.md §4.4. The rules
// are applied strictly in order: version before status, status before
// address. A reply too short to carry even a status byte is AccessDenied; a
// reply that succeeds but is too short to carry a bound address (servers
// commonly zero-fill and truncate) succeeds with a zero Endpoint, and
// callers fall back to the endpoint they originally requested.
func DecodeV5Reply(buf []byte) (Error, Endpoint) {
	n := len(buf)
	if n < 2 {
		return AccessDenied, Endpoint{}
	}
	if buf[0] != version5 {
		return NoProtocolOption, Endpoint{}
	}
	status := ToReplyCode(int(buf[1]))
	if status != Succeeded {
		return status, Endpoint{}
	}
	if n < 10 {
		return Succeeded, Endpoint{}
	}
	switch ToAddressType(buf[3]) {
	case IPv4:
		ep := endpointFromIPv4Bytes(buf[4:8])
		ep.Port = binary.BigEndian.Uint16(buf[8:10])
		return Succeeded, ep
	case IPv6:
		if n < 22 {
			return BadRequestSize, Endpoint{}
		}
		ep := endpointFromIPv6Bytes(buf[4:20])
		ep.Port = binary.BigEndian.Uint16(buf[20:22])
		return Succeeded, ep
	default:
		return GeneralFailure, Endpoint{}
	}
}
