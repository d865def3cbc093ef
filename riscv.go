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

// Package riscv is a bidirectional RISC-V instruction codec: it turns
// a 32-bit encoded word into its assembly text plus an ordered
// breakdown of the bit-fields and operand tokens that produced it, and
// back again. Instruction is the single entry point; everything else
// in this file re-exports the types a caller needs to use it without
// reaching into internal/.
package riscv

import (
	"github.com/lmmilewski/riscv-codec/internal/bits"
	"github.com/lmmilewski/riscv-codec/internal/decode"
	"github.com/lmmilewski/riscv-codec/internal/encode"
	"github.com/lmmilewski/riscv-codec/internal/fragment"
	"github.com/lmmilewski/riscv-codec/internal/instr"
	"github.com/lmmilewski/riscv-codec/internal/isa"
	"github.com/lmmilewski/riscv-codec/internal/rverr"
)

// Fragment is one labeled slice of an instruction: a run of bits, the
// field that produced it, and the assembly token it contributes to.
type Fragment = fragment.Fragment

// InstructionResult is the outcome of a single Instruction call,
// holding both directions of the translation plus the fragment
// breakdown that ties them together.
type InstructionResult = instr.Result

// Config selects the ISA profile a call runs under. The zero value is
// not DefaultConfig; use DefaultConfig or Config{ISA: RV32I} explicitly
// the way LMMilewski-riscv-emu's main.go always builds its Prog/VM
// from explicit flags rather than relying on zero values.
type Config = isa.Config

// Ext tags an ISA or extension, reported in InstructionResult.Isa.
type Ext = isa.Ext

const (
	RV32I       = isa.RV32I
	RV64I       = isa.RV64I
	ExtM        = isa.ExtM
	ExtA        = isa.ExtA
	ExtF        = isa.ExtF
	ExtD        = isa.ExtD
	ExtZicsr    = isa.ExtZicsr
	ExtZifencei = isa.ExtZifencei
)

// DefaultConfig is {ISA: RV32I, ABI: false}.
var DefaultConfig = isa.DefaultConfig

// ErrorKind tags the taxonomy of codec failures (§7).
type ErrorKind = rverr.Kind

// Error is the single error type every codec failure is reported as.
// It implements Is(error) bool keyed on Kind, so callers can write
// errors.Is(err, riscv.BadRegister) without inspecting Msg.
type Error = rverr.Error

// Error kinds, each exported as a zero-Msg *Error sentinel so callers
// can write errors.Is(err, riscv.SomeKind) directly -- mirroring how
// internal/decode's and internal/encode's own tests call
// rverr.Sentinel(kind) before handing it to errors.Is.
var (
	InvalidOpcode       = rverr.Sentinel(rverr.InvalidOpcode)
	InvalidFunct        = rverr.Sentinel(rverr.InvalidFunct)
	InvalidFence        = rverr.Sentinel(rverr.InvalidFence)
	NonZeroReserved     = rverr.Sentinel(rverr.NonZeroReserved)
	ShiftOutOfRange     = rverr.Sentinel(rverr.ShiftOutOfRange)
	BadShtyp            = rverr.Sentinel(rverr.BadShtyp)
	IsaMismatch         = rverr.Sentinel(rverr.IsaMismatch)
	UnknownMnemonic     = rverr.Sentinel(rverr.UnknownMnemonic)
	OperandSyntax       = rverr.Sentinel(rverr.OperandSyntax)
	ImmediateOutOfRange = rverr.Sentinel(rverr.ImmediateOutOfRange)
	BadRegister         = rverr.Sentinel(rverr.BadRegister)
	BadCsr              = rverr.Sentinel(rverr.BadCsr)
	MalformedInput      = rverr.Sentinel(rverr.MalformedInput)
	InternalError       = rverr.Sentinel(rverr.InternalError)
)

// Instruction translates input in either direction. input is either a
// 32-bit encoded word -- 8 hex digits with an optional "0x"/"0X"
// prefix, or exactly 32 '0'/'1' characters -- or, failing both of
// those lexical shapes, a line of assembly. config is optional; the
// zero or first value given is used, defaulting to DefaultConfig when
// omitted.
func Instruction(input string, config ...Config) (*InstructionResult, error) {
	cfg := DefaultConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	switch {
	case bits.IsHexWord(input):
		word, err := bits.WordFromHex(input)
		if err != nil {
			return nil, rverr.New(rverr.MalformedInput, "%s", err.Error())
		}
		return decode.Decode(word, cfg)
	case bits.IsBinWord(input):
		word, err := bits.WordFromBin(input)
		if err != nil {
			return nil, rverr.New(rverr.MalformedInput, "%s", err.Error())
		}
		return decode.Decode(word, cfg)
	default:
		return encode.Encode(input, cfg)
	}
}
