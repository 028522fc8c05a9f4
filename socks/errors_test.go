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
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToReplyCode(t *testing.T) {
	for i := 0; i <= 0x08; i++ {
		require.Equal(t, Error(i), ToReplyCode(i), "code %d", i)
	}
	for _, i := range []int{9, 0x7f, 0xfe, 0xff} {
		require.Equal(t, Unassigned, ToReplyCode(i), "code %d", i)
	}
}

func TestIsFailure(t *testing.T) {
	require.False(t, IsFailure(0))
	require.False(t, IsFailure(90))
	for _, code := range []int{1, 2, 5, 8, 89, 91, 255} {
		require.True(t, IsFailure(code), "code %d", code)
	}
}

func TestConditionOf(t *testing.T) {
	cases := []struct {
		err  Error
		cond Condition
	}{
		{Succeeded, ConditionSucceeded},
		{RequestGranted, ConditionSucceeded},
		{GeneralFailure, ConditionReplyError},
		{ConnectionRefused, ConditionReplyError},
		{Unassigned, ConditionReplyError},
		{RequestRejectedOrFailed, ConditionReplyError},
		{NoProtocolOption, ConditionProxyError},
		{BadRequestSize, ConditionParseError},
		{BadRequestVersion, ConditionParseError},
		{BadRequestCommand, ConditionParseError},
		{BadReservedComponent, ConditionParseError},
		{BadAddressType, ConditionParseError},
		{AccessDenied, ConditionParseError},
	}
	for _, c := range cases {
		require.Equal(t, c.cond, ConditionOf(c.err), "error %v", c.err)
	}
}

func TestErrorIsErrorsIs(t *testing.T) {
	var err error = HostUnreachable
	require.ErrorIs(t, err, HostUnreachable)

	var asErr Error
	require.True(t, errors.As(err, &asErr))
	require.Equal(t, HostUnreachable, asErr)
}

func TestErrorStrings(t *testing.T) {
	require.NotEmpty(t, Succeeded.Error())
	require.NotEqual(t, GeneralFailure.Error(), RequestRejectedOrFailed.Error(),
		"SOCKS4 and SOCKS5 codes must not share message text")
	require.Equal(t, Unassigned.Error(), Unassigned.String())
	require.Contains(t, Error(0x42).Error(), fmt.Sprint(0x42))
}

func TestConditionString(t *testing.T) {
	require.Equal(t, "succeeded", ConditionSucceeded.String())
	require.Equal(t, "reply_error", ConditionReplyError.String())
	require.Equal(t, "proxy_error", ConditionProxyError.String())
	require.Equal(t, "parse_error", ConditionParseError.String())
}
