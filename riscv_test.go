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

package riscv

import (
	"errors"
	"testing"

	"github.com/lmmilewski/riscv-codec/internal/bits"
)

// Concrete scenarios, §8.
func TestInstructionScenarios(t *testing.T) {
	tests := []struct {
		desc  string
		input string
		cfg   Config
		hex   string
		asm   string
		fmt   string
		isa   string
	}{
		{"scenario 1", "0x00c58533", DefaultConfig, "0x00c58533", "add x10, x11, x12", "R-type", "RV32I"},
		{"scenario 3", "0x30529073", DefaultConfig, "0x30529073", "csrrw x0, mtvec, x5", "I-type", "EXT_Zicsr"},
		{"scenario 5", "0x100022af", DefaultConfig, "0x100022af", "lr.w x5, (x0)", "R-type", "EXT_A"},
		{"scenario 7, EXT_M", "0x02c58533", DefaultConfig, "0x02c58533", "mul x10, x11, x12", "R-type", "EXT_M"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := Instruction(tt.input, tt.cfg)
			if err != nil {
				t.Fatalf("Instruction(%q) unexpected error: %v", tt.input, err)
			}
			if got.Hex != tt.hex {
				t.Errorf("Hex = %s, want %s", got.Hex, tt.hex)
			}
			if got.Asm != tt.asm {
				t.Errorf("Asm = %q, want %q", got.Asm, tt.asm)
			}
			if got.Fmt != tt.fmt {
				t.Errorf("Fmt = %q, want %q", got.Fmt, tt.fmt)
			}
			if got.Isa != tt.isa {
				t.Errorf("Isa = %q, want %q", got.Isa, tt.isa)
			}
		})
	}
}

func TestInstructionScenarioEncode(t *testing.T) {
	tests := []struct {
		desc string
		line string
		cfg  Config
		hex  string
	}{
		{"scenario 2", "lw x5, -4(x2)", DefaultConfig, "0xffc12283"},
		{"scenario 4", "fmadd.s f0, f1, f2, f3, rne", DefaultConfig, "0x18108043"},
		{"scenario 6, RV64I", "slli x1, x1, 40", Config{ISA: RV64I}, "0x02809093"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := Instruction(tt.line, tt.cfg)
			if err != nil {
				t.Fatalf("Instruction(%q) unexpected error: %v", tt.line, err)
			}
			if got.Hex != tt.hex {
				t.Errorf("Hex = %s, want %s", got.Hex, tt.hex)
			}
		})
	}
	// Same input as scenario 6, but under RV32I: ShiftOutOfRange.
	if _, err := Instruction("slli x1, x1, 40", Config{ISA: RV32I}); !errors.Is(err, ShiftOutOfRange) {
		t.Errorf("slli x1, x1, 40 under RV32I: err = %v, want ShiftOutOfRange", err)
	}
}

// Universal property 1: decode(w).asm re-encodes back to w.
func TestDecodeThenEncodeRoundTrip(t *testing.T) {
	words := []string{
		"0x00c58533", // add
		"0x00a00293", // addi positive
		"0xfff00093", // addi -1
		"0x80000093", // addi -2048
		"0x7ff00093", // addi 2047
		"0x004100e7", // jalr
		"0x000000ef", // jal
		"0xfe000ee3", // beq backward
		"0x0ff0000f", // fence iorw, iorw
		"0x00000073", // ecall
		"0x00100073", // ebreak
		"0x100120af", // lr.w
		"0x003100d3", // fadd.s
	}
	for _, w := range words {
		t.Run(w, func(t *testing.T) {
			dec, err := Instruction(w, DefaultConfig)
			if err != nil {
				t.Fatalf("decode %s: %v", w, err)
			}
			enc, err := Instruction(dec.Asm, DefaultConfig)
			if err != nil {
				t.Fatalf("re-encode %q: %v", dec.Asm, err)
			}
			if enc.Hex != dec.Hex {
				t.Errorf("re-encode(%q) = %s, want %s", dec.Asm, enc.Hex, dec.Hex)
			}
		})
	}
}

// Universal property 2: encode(a) decodes back to a, up to canonical
// register-style normalization (ABI off).
func TestEncodeThenDecodeRoundTrip(t *testing.T) {
	lines := []string{
		"add x10, x11, x12",
		"addi x1, x0, -1",
		"lw x5, -4(x2)",
		"sw x1, 0(x2)",
		"beq x0, x0, -4",
		"jal x1, 8192",
		"fadd.s f1, f2, f3",
	}
	for _, a := range lines {
		t.Run(a, func(t *testing.T) {
			enc, err := Instruction(a, DefaultConfig)
			if err != nil {
				t.Fatalf("encode %q: %v", a, err)
			}
			dec, err := Instruction(enc.Hex, DefaultConfig)
			if err != nil {
				t.Fatalf("decode %s: %v", enc.Hex, err)
			}
			if dec.Asm != a {
				t.Errorf("decode(encode(%q)) = %q, want %q", a, dec.Asm, a)
			}
		})
	}
}

// Universal properties 3 & 4: binFrags concatenate to the word exactly
// and partition it with no gaps or overlaps.
func TestBinFragsPartitionWord(t *testing.T) {
	res, err := Instruction("0x00c58533", DefaultConfig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var concat string
	total := 0
	for _, f := range res.BinFrags {
		concat += f.Bits
		total += len(f.Bits)
	}
	if total != 32 {
		t.Errorf("total BinFrags width = %d, want 32", total)
	}
	if concat != res.Bin {
		t.Errorf("concatenated BinFrags = %q, want %q", concat, res.Bin)
	}
}

// Universal property 5: flipping a single bit of a valid word never
// panics; it either decodes to something else or yields an error.
func TestBitFlipNeverPanics(t *testing.T) {
	base, err := Instruction("0x00c58533", DefaultConfig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	word, err := bits.WordFromHex(base.Hex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for bit := 0; bit < 32; bit++ {
		flipped := word ^ (1 << uint(bit))
		hex := bits.WordToHex(flipped)
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("bit %d flip of %s panicked: %v", bit, base.Hex, r)
				}
			}()
			_, _ = Instruction(hex, DefaultConfig)
		}()
	}
}

func TestBoundaryCases(t *testing.T) {
	t.Run("shift width RV32I boundary", func(t *testing.T) {
		if _, err := Instruction("slli x1, x1, 31", Config{ISA: RV32I}); err != nil {
			t.Errorf("slli shamt 31 under RV32I: unexpected error %v", err)
		}
		if _, err := Instruction("slli x1, x1, 32", Config{ISA: RV32I}); !errors.Is(err, ShiftOutOfRange) {
			t.Errorf("slli shamt 32 under RV32I: err = %v, want ShiftOutOfRange", err)
		}
		res, err := Instruction("slli x1, x1, 32", Config{ISA: RV64I})
		if err != nil {
			t.Fatalf("slli shamt 32 under RV64I: unexpected error %v", err)
		}
		if res.Isa != "RV64I" {
			t.Errorf("slli shamt 32 under RV64I: Isa = %q, want RV64I", res.Isa)
		}
	})
	t.Run("fence empty mask", func(t *testing.T) {
		if _, err := Instruction("0x0000000f", DefaultConfig); !errors.Is(err, InvalidFence) {
			t.Errorf("err = %v, want InvalidFence", err)
		}
	})
	t.Run("jal zero offset", func(t *testing.T) {
		res, err := Instruction("jal x0, 0", DefaultConfig)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Hex != "0x0000006f" {
			t.Errorf("Hex = %s, want 0x0000006f", res.Hex)
		}
	})
}
