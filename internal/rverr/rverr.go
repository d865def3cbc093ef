// Copyright 2019 Google LLC
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

// Package rverr defines the single tagged error type the whole codec
// raises, shared by internal/decode, internal/encode and the riscv
// façade package so that a caller never has to distinguish "a decode
// error" from "an encode error" -- only the Kind.
package rverr

import "fmt"

// Kind tags the taxonomy of codec failures (§7).
type Kind string

const (
	InvalidOpcode       Kind = "InvalidOpcode"
	InvalidFunct        Kind = "InvalidFunct"
	InvalidFence        Kind = "InvalidFence"
	NonZeroReserved     Kind = "NonZeroReserved"
	ShiftOutOfRange     Kind = "ShiftOutOfRange"
	BadShtyp            Kind = "BadShtyp"
	IsaMismatch         Kind = "IsaMismatch"
	UnknownMnemonic     Kind = "UnknownMnemonic"
	OperandSyntax       Kind = "OperandSyntax"
	ImmediateOutOfRange Kind = "ImmediateOutOfRange"
	BadRegister         Kind = "BadRegister"
	BadCsr              Kind = "BadCsr"
	MalformedInput      Kind = "MalformedInput"
	InternalError       Kind = "InternalError"
)

// Error is the single error type every codec failure is reported as.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Msg }

// Is lets callers use errors.Is(err, rverr.Sentinel(Kind)) without
// caring about Msg.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New builds an *Error of the given kind with a formatted message.
func New(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Sentinel returns a zero-Msg *Error of kind k, suitable for
// errors.Is(err, rverr.Sentinel(rverr.BadRegister)) comparisons.
func Sentinel(k Kind) *Error { return &Error{Kind: k} }
