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

import "strconv"

// Error is a byte-wide SOCKS reply code, shared by SOCKS4 and SOCKS5, plus a
// handful of parse-error kinds for malformed wire replies that never carry a
// proxy-assigned code of their own. It implements the standard error
// interface so it composes with errors.Is/errors.As the same way
// [transport/socks5.ReplyCode] does in the teacher package.
type Error int

// SOCKS5 reply codes, as enumerated in https://datatracker.ietf.org/doc/html/rfc1928#section-6.
const (
	Succeeded                     Error = 0x00
	GeneralFailure                Error = 0x01
	ConnectionNotAllowedByRuleset Error = 0x02
	NetworkUnreachable            Error = 0x03
	HostUnreachable               Error = 0x04
	ConnectionRefused             Error = 0x05
	TTLExpired                    Error = 0x06
	CommandNotSupported           Error = 0x07
	AddressTypeNotSupported       Error = 0x08

	// Unassigned is the sentinel for any SOCKS5 code outside 0x00-0x08,
	// including the 0xFF the source aliases it to and any other unknown
	// intermediate value (e.g. 0x09). See the Open Question in SPEC_FULL.md.
	Unassigned Error = 0xFF
)

// SOCKS4 reply codes (the CD field of a SOCKS4 reply), RFC 1928's predecessor.
const (
	RequestGranted                        Error = 0x5A
	RequestRejectedOrFailed               Error = 0x5B
	CannotConnectToIdentdOnTheClient      Error = 0x5C
	ClientAndIdentdReportDifferentUserIDs Error = 0x5D
)

// Parse-error kinds, plus the NoProtocolOption proxy error. These live outside
// the 0x00-0xFF wire byte range so they can never collide with a real status
// code.
const (
	BadRequestSize Error = 0x100 + iota
	BadRequestVersion
	BadRequestCommand
	BadReservedComponent
	BadAddressType
	// AccessDenied is returned when a SOCKS5 reply is too short to even carry
	// a status byte (spec boundary: n < 2).
	AccessDenied
	// NoProtocolOption is returned when a reply's version byte doesn't match
	// the protocol version the request was sent with.
	NoProtocolOption
)

// Condition is the coarse-grained grouping every Error maps to. Two distinct
// Errors may compare equal at this level while remaining distinct at the
// Error level; the two enumerations are kept separate on purpose (see
// SPEC_FULL.md §5.1 / spec.md DESIGN NOTES).
type Condition int

const (
	ConditionSucceeded Condition = iota
	ConditionReplyError
	ConditionProxyError
	ConditionParseError
)

// ConditionOf is a total function from Error to Condition.
func ConditionOf(e Error) Condition {
	switch e {
	case Succeeded, RequestGranted:
		return ConditionSucceeded
	case NoProtocolOption:
		return ConditionProxyError
	case BadRequestSize, BadRequestVersion, BadRequestCommand, BadReservedComponent, BadAddressType, AccessDenied:
		return ConditionParseError
	default:
		return ConditionReplyError
	}
}

// IsFailure reports whether a raw numeric status byte read off the wire
// indicates failure. It is true for every value except the two success
// codes: 0 (SOCKS5) and 90 (SOCKS4's 0x5A).
func IsFailure(code int) bool {
	return code != 0 && code != 90
}

// ToReplyCode maps a raw SOCKS5 status byte to its named Error, normalising
// anything outside 0x00-0x08 to Unassigned.
func ToReplyCode(i int) Error {
	if i < 0x00 || i > 0x08 {
		return Unassigned
	}
	return Error(i)
}

var _ error = Error(0)

// Error implements the error interface. SOCKS4 and SOCKS5 get distinct
// message text even where the codes overlap in spirit (see SPEC_FULL.md §5.1
// for why: the source reuses SOCKS5 strings for SOCKS4 codes, which this
// implementation treats as a bug rather than a convention to preserve).
func (e Error) Error() string {
	switch e {
	case Succeeded:
		return "succeeded"
	case GeneralFailure:
		return "general SOCKS server failure"
	case ConnectionNotAllowedByRuleset:
		return "connection not allowed by ruleset"
	case NetworkUnreachable:
		return "network unreachable"
	case HostUnreachable:
		return "host unreachable"
	case ConnectionRefused:
		return "connection refused"
	case TTLExpired:
		return "TTL expired"
	case CommandNotSupported:
		return "command not supported"
	case AddressTypeNotSupported:
		return "address type not supported"
	case RequestGranted:
		return "request granted"
	case RequestRejectedOrFailed:
		return "request rejected or failed"
	case CannotConnectToIdentdOnTheClient:
		return "cannot connect to identd on the client"
	case ClientAndIdentdReportDifferentUserIDs:
		return "client and identd report different user ids"
	case BadRequestSize:
		return "reply has an unexpected size"
	case BadRequestVersion:
		return "reply has an unexpected protocol version"
	case BadRequestCommand:
		return "reply carries an unsupported command"
	case BadReservedComponent:
		return "reply's reserved field is not zero"
	case BadAddressType:
		return "reply carries an unrecognized address type"
	case AccessDenied:
		return "reply is too short to carry a status"
	case NoProtocolOption:
		return "reply's protocol version does not match the request"
	case Unassigned:
		return "Unassigned"
	default:
		return "reply code " + strconv.Itoa(int(e))
	}
}

// String mirrors Error so fmt's %v/%s and direct calls agree, matching the
// source's to_string(e) == ostream-insertion(e) property.
func (e Error) String() string {
	return e.Error()
}

// String gives each Condition a stable, human-readable name.
func (c Condition) String() string {
	switch c {
	case ConditionSucceeded:
		return "succeeded"
	case ConditionReplyError:
		return "reply_error"
	case ConditionProxyError:
		return "proxy_error"
	case ConditionParseError:
		return "parse_error"
	default:
		return "unknown condition"
	}
}
