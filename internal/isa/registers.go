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

package isa

import "strings"

// IntABINames are the standard RISC-V integer ABI register names,
// indexed by register number. riscv-spec-v2.2; Table 20.1; page 109.
//
// LMMilewski-riscv-emu/vm.go only names SP, RA and Zero as constants
// (the registers its VM actually manipulates by name); this table
// generalizes that to the full ABI name set the encoder/decoder need
// for every register operand.
var IntABINames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// FloatABINames are the standard RISC-V floating-point ABI register
// names, indexed by register number.
var FloatABINames = [32]string{
	"ft0", "ft1", "ft2", "ft3", "ft4", "ft5", "ft6", "ft7",
	"fs0", "fs1", "fa0", "fa1", "fa2", "fa3", "fa4", "fa5",
	"fa6", "fa7", "fs2", "fs3", "fs4", "fs5", "fs6", "fs7",
	"fs8", "fs9", "fs10", "fs11", "ft8", "ft9", "ft10", "ft11",
}

// IntRegName renders register number n as "x5" or, when abi is true,
// its ABI alias such as "a0". s0 is also known as fp; IntRegName always
// prefers "s0" over "fp" since both the spec's alias list (aliases are
// the only encoder-accepted ones; "fp" is a register name, not an
// instruction alias) and the ABI table above list s0 first.
func IntRegName(n int, abi bool) string {
	if abi {
		return IntABINames[n]
	}
	return "x" + itoa(n)
}

// FloatRegName renders float register number n as "f5" or, when abi
// is true, its ABI alias such as "fa0".
func FloatRegName(n int, abi bool) string {
	if abi {
		return FloatABINames[n]
	}
	return "f" + itoa(n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [3]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// ParseIntReg parses a register token (numeric "x5" or ABI "a0",
// "sp", "fp", "zero", ...) and returns its register number.
func ParseIntReg(tok string) (int, bool) {
	if n, ok := parseNumbered(tok, 'x'); ok {
		return n, true
	}
	if tok == "fp" {
		return 8, true // s0 alias
	}
	for n, name := range IntABINames {
		if tok == name {
			return n, true
		}
	}
	return 0, false
}

// ParseFloatReg parses a register token (numeric "f5" or ABI "fa0")
// and returns its register number.
func ParseFloatReg(tok string) (int, bool) {
	if n, ok := parseNumbered(tok, 'f'); ok {
		return n, true
	}
	for n, name := range FloatABINames {
		if tok == name {
			return n, true
		}
	}
	return 0, false
}

func parseNumbered(tok string, prefix byte) (int, bool) {
	if len(tok) < 2 || tok[0] != prefix {
		return 0, false
	}
	digits := tok[1:]
	if digits == "" || strings.TrimFunc(digits, isDigit) != "" {
		return 0, false
	}
	n := 0
	for _, c := range digits {
		n = n*10 + int(c-'0')
	}
	if n < 0 || n > 31 {
		return 0, false
	}
	return n, true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
