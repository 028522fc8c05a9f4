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
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToAddressType(t *testing.T) {
	require.Equal(t, IPv4, ToAddressType(0x01))
	require.Equal(t, DomainName, ToAddressType(0x03))
	require.Equal(t, IPv6, ToAddressType(0x04))
	require.Equal(t, UnknownAddressType, ToAddressType(0x02))
	require.Equal(t, UnknownAddressType, ToAddressType(0xff))
}

func TestAppendIPAddress(t *testing.T) {
	b, err := appendIPAddress(nil, net.IPv4(8, 8, 8, 8))
	require.NoError(t, err)
	require.Equal(t, []byte{byte(IPv4), 8, 8, 8, 8}, b)

	b, err = appendIPAddress(nil, net.ParseIP("2001:4860:4860::8888"))
	require.NoError(t, err)
	require.Equal(t, byte(IPv6), b[0])
	require.Len(t, b, 17)

	_, err = appendIPAddress(nil, net.IP(nil))
	require.Error(t, err)
}

func TestAppendPort(t *testing.T) {
	require.Equal(t, []byte{0x01, 0xbb}, appendPort(nil, 443))
	require.Equal(t, []byte{0x00, 0x00}, appendPort(nil, 0))
}

func TestEndpointFromBytes(t *testing.T) {
	ep := endpointFromIPv4Bytes([]byte{127, 0, 0, 1})
	require.Equal(t, net.IPv4(127, 0, 0, 1).To4(), ep.IP.To4())

	raw := net.ParseIP("2001:4860:4860::8888").To16()
	ep = endpointFromIPv6Bytes(raw)
	require.Equal(t, raw, ep.IP)
}
