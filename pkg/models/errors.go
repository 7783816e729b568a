/*
 * Copyright 2026 The Discoveryd Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package models holds the data types shared by every discovery package:
// seeds, credentials, devices, interfaces, neighbor claims, edges, and the
// job configuration/result envelope.
package models

import "errors"

// ErrorKind classifies a discovery failure so callers can decide whether it
// is fatal to the job (BadInput) or scoped to a single device.
type ErrorKind string

const (
	ErrorKindBadInput      ErrorKind = "bad_input"
	ErrorKindPortClosed    ErrorKind = "port_closed"
	ErrorKindTimeout       ErrorKind = "timeout"
	ErrorKindAuthFailed    ErrorKind = "auth_failed"
	ErrorKindProtocolError ErrorKind = "protocol_error"
	ErrorKindParseMiss     ErrorKind = "parse_miss"
	ErrorKindCancelled     ErrorKind = "cancelled"
	ErrorKindInternal      ErrorKind = "internal"
)

var (
	// ErrBadInput wraps malformed job submissions (bad seed, bad regex, bad job id).
	ErrBadInput = errors.New("bad input")

	// ErrPortClosed is returned by the transport/probe layers when a TCP
	// handshake is actively refused.
	ErrPortClosed = errors.New("port closed")

	// ErrTimeout is returned when an operation exceeds its deadline.
	ErrTimeout = errors.New("timed out")

	// ErrAuthFailed is returned when a credential is rejected by a device.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrProtocolError is returned when a transport session misbehaves in a
	// way that is not a timeout or an auth rejection.
	ErrProtocolError = errors.New("protocol error")

	// ErrCancelled is returned when a context is cancelled mid-operation.
	ErrCancelled = errors.New("cancelled")
)
