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

import "context"

// ClientTrace lets a caller observe a CONNECT exchange without the engine
// doing any logging of its own. It generalizes the teacher's
// SOCKS5ClientTrace (transport/socks5/trace.go) to both SOCKS versions.
type ClientTrace struct {
	// RequestStarted is called at the start of the exchange, before the
	// request is encoded and before anything (including the SOCKS5 greeting)
	// is written to the stream.
	RequestStarted func(version int, addr string)
	// RequestDone is called when the exchange finishes, successfully or not.
	RequestDone func(boundAddr string, err error)
}

type traceContextKey struct{}

var clientTraceKey = traceContextKey{}

// WithClientTrace attaches a ClientTrace to ctx for the connect driver to
// report through.
func WithClientTrace(ctx context.Context, trace *ClientTrace) context.Context {
	return context.WithValue(ctx, clientTraceKey, trace)
}

// TraceFromContext retrieves the ClientTrace attached to ctx, if any.
func TraceFromContext(ctx context.Context) *ClientTrace {
	if trace, ok := ctx.Value(clientTraceKey).(*ClientTrace); ok {
		return trace
	}
	return nil
}

func traceRequestStarted(ctx context.Context, version int, addr string) {
	if t := TraceFromContext(ctx); t != nil && t.RequestStarted != nil {
		t.RequestStarted(version, addr)
	}
}

func traceRequestDone(ctx context.Context, boundAddr string, err error) {
	if t := TraceFromContext(ctx); t != nil && t.RequestDone != nil {
		t.RequestDone(boundAddr, err)
	}
}
