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

package encode

import (
	"errors"
	"testing"

	"github.com/lmmilewski/riscv-codec/internal/isa"
	"github.com/lmmilewski/riscv-codec/internal/rverr"
)

func TestEncodeHex(t *testing.T) {
	tests := []struct {
		desc string
		line string
		cfg  isa.Config
		want string
	}{
		{"add", "add x10, x11, x12", isa.DefaultConfig, "0x00c58533"},
		{"addi positive", "addi x5, x0, 10", isa.DefaultConfig, "0x00a00293"},
		{"addi -1", "addi x1, x0, -1", isa.DefaultConfig, "0xfff00093"},
		{"addi -2048 boundary", "addi x1, x0, -2048", isa.DefaultConfig, "0x80000093"},
		{"jalr", "jalr x1, 4(x2)", isa.DefaultConfig, "0x004100e7"},
		{"jal", "jal x1, 0", isa.DefaultConfig, "0x000000ef"},
		{"beq", "beq x0, x0, 0", isa.DefaultConfig, "0x00000063"},
		{"lui", "lui x1, 1", isa.DefaultConfig, "0x000010b7"},
		{"lw", "lw x1, 0(x2)", isa.DefaultConfig, "0x00012083"},
		{"lw negative offset", "lw x5, -4(x2)", isa.DefaultConfig, "0xffc12283"},
		{"sw", "sw x1, 0(x2)", isa.DefaultConfig, "0x00112023"},
		{"csrrw", "csrrw x1, mstatus, x2", isa.DefaultConfig, "0x300110f3"},
		{"csrrw numeric csr", "csrrw x1, 0x300, x2", isa.DefaultConfig, "0x300110f3"},
		{"fence full", "fence iorw, iorw", isa.DefaultConfig, "0x0ff0000f"},
		{"fence.i", "fence.i", isa.DefaultConfig, "0x0000100f"},
		{"ecall", "ecall", isa.DefaultConfig, "0x00000073"},
		{"ebreak", "ebreak", isa.DefaultConfig, "0x00100073"},
		{"lr.w", "lr.w x1, (x2)", isa.DefaultConfig, "0x100120af"},
		{"amoadd.w", "amoadd.w x1, x3, (x2)", isa.DefaultConfig, "0x003120af"},
		{"fadd.s", "fadd.s f1, f2, f3", isa.DefaultConfig, "0x003100d3"},
		{"fmadd.s", "fmadd.s f1, f2, f3, f4, rne", isa.DefaultConfig, "0x203100c3"},
		{"fmadd.s scenario 4", "fmadd.s f0, f1, f2, f3, rne", isa.DefaultConfig, "0x18108043"},
		{"slli 5-bit", "slli x1, x2, 5", isa.DefaultConfig, "0x00511093"},
		{"srai 5-bit", "srai x1, x2, 5", isa.DefaultConfig, "0x40515093"},
		{"slli 6-bit shamt under RV64I", "slli x1, x2, 40", isa.Config{ISA: isa.RV64I}, "0x02811093"},
		{"slli scenario 6", "slli x1, x1, 40", isa.Config{ISA: isa.RV64I}, "0x02809093"},
		{"mulw under RV64I", "mulw x1, x2, x3", isa.Config{ISA: isa.RV64I}, "0x023100bb"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := Encode(tt.line, tt.cfg)
			if err != nil {
				t.Fatalf("Encode(%q) unexpected error: %v", tt.line, err)
			}
			if got.Hex != tt.want {
				t.Errorf("Encode(%q).Hex = %s, want %s", tt.line, got.Hex, tt.want)
			}
		})
	}
}

func TestEncodeAliases(t *testing.T) {
	tests := []struct {
		desc string
		line string
		want string
	}{
		{"nop", "nop", "addi x0, x0, 0"},
		{"ret", "ret", "jalr x0, 0(x1)"},
		{"j", "j 8", "jal x0, 8"},
		{"jr", "jr x5", "jalr x0, 0(x5)"},
		{"mv", "mv x1, x2", "addi x1, x2, 0"},
		{"not", "not x1, x2", "xori x1, x2, -1"},
		{"neg", "neg x1, x2", "sub x1, x0, x2"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := Encode(tt.line, isa.DefaultConfig)
			if err != nil {
				t.Fatalf("Encode(%q) unexpected error: %v", tt.line, err)
			}
			if got.Asm != tt.want {
				t.Errorf("Encode(%q).Asm = %q, want %q", tt.line, got.Asm, tt.want)
			}
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		desc string
		line string
		cfg  isa.Config
		kind rverr.Kind
	}{
		{"unknown mnemonic", "frobnicate x1, x2, x3", isa.DefaultConfig, rverr.UnknownMnemonic},
		{"bad register", "add x1, x2, x99", isa.DefaultConfig, rverr.BadRegister},
		{"mulw requires RV64I", "mulw x1, x2, x3", isa.DefaultConfig, rverr.IsaMismatch},
		{"slliw requires RV64I", "slliw x1, x2, 5", isa.DefaultConfig, rverr.IsaMismatch},
		{"6-bit shamt rejected under RV32I", "slli x1, x2, 40", isa.DefaultConfig, rverr.ShiftOutOfRange},
		{"wrong operand count", "add x1, x2", isa.DefaultConfig, rverr.OperandSyntax},
		{"unknown csr name", "csrrw x1, bogus, x2", isa.DefaultConfig, rverr.BadCsr},
		{"fence with unknown mask letter", "fence z, iorw", isa.DefaultConfig, rverr.OperandSyntax},
		{"immediate out of range", "addi x1, x0, 4096", isa.DefaultConfig, rverr.ImmediateOutOfRange},
		{"branch offset misaligned", "beq x0, x0, 3", isa.DefaultConfig, rverr.ImmediateOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := Encode(tt.line, tt.cfg)
			if err == nil {
				t.Fatalf("Encode(%q) = nil error, want kind %s", tt.line, tt.kind)
			}
			if !errors.Is(err, rverr.Sentinel(tt.kind)) {
				t.Errorf("Encode(%q) error = %v, want kind %s", tt.line, err, tt.kind)
			}
		})
	}
}

func TestEncodeRoundTripsWithDecode(t *testing.T) {
	// Each line here must decode back to itself: the fragment
	// co-construction property (internal/decode's BuildFromEntry) means
	// Encode's rendered Asm is the canonical text, not necessarily
	// byte-identical to every legal input spelling.
	lines := []string{
		"add x10, x11, x12",
		"lw x5, -4(x2)",
		"sw x1, 0(x2)",
		"beq x0, x0, 0",
		"jal x1, 0",
		"jal x1, 8192",   // exercises imm[19:12], not just imm[10:1]/imm[11]/imm[20]
		"jal x1, -8192",
		"fadd.s f1, f2, f3",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			got, err := Encode(line, isa.DefaultConfig)
			if err != nil {
				t.Fatalf("Encode(%q) unexpected error: %v", line, err)
			}
			if got.Asm != line {
				t.Errorf("Encode(%q).Asm = %q, want %q", line, got.Asm, line)
			}
		})
	}
}
