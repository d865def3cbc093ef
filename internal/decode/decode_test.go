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

package decode

import (
	"errors"
	"testing"

	"github.com/lmmilewski/riscv-codec/internal/isa"
	"github.com/lmmilewski/riscv-codec/internal/rverr"
)

func TestDecodeAsm(t *testing.T) {
	tests := []struct {
		desc string
		word uint32
		cfg  isa.Config
		want string
		isa  string
	}{
		{"add", 0x00c58533, isa.DefaultConfig, "add x10, x11, x12", "RV32I"},
		{"addi positive", 0x00a00293, isa.DefaultConfig, "addi x5, x0, 10", "RV32I"},
		{"addi -1", 0xfff00093, isa.DefaultConfig, "addi x1, x0, -1", "RV32I"},
		{"addi -2048 boundary", 0x80000093, isa.DefaultConfig, "addi x1, x0, -2048", "RV32I"},
		{"jalr", 0x004100e7, isa.DefaultConfig, "jalr x1, 4(x2)", "RV32I"},
		{"jal", 0x000000ef, isa.DefaultConfig, "jal x1, 0", "RV32I"},
		{"beq", 0x00000063, isa.DefaultConfig, "beq x0, x0, 0", "RV32I"},
		{"lui", 0x000010b7, isa.DefaultConfig, "lui x1, 1", "RV32I"},
		{"lw", 0x00012083, isa.DefaultConfig, "lw x1, 0(x2)", "RV32I"},
		{"sw", 0x00112023, isa.DefaultConfig, "sw x1, 0(x2)", "RV32I"},
		{"csrrw", 0x300110f3, isa.DefaultConfig, "csrrw x1, mstatus, x2", "EXT_Zicsr"},
		{"fence full", 0x0ff0000f, isa.DefaultConfig, "fence iorw, iorw", "RV32I"},
		{"fence.i", 0x0000100f, isa.DefaultConfig, "fence.i", "EXT_Zifencei"},
		{"ecall", 0x00000073, isa.DefaultConfig, "ecall", "RV32I"},
		{"ebreak", 0x00100073, isa.DefaultConfig, "ebreak", "RV32I"},
		{"lr.w", 0x100120af, isa.DefaultConfig, "lr.w x1, (x2)", "EXT_A"},
		{"amoadd.w", 0x003120af, isa.DefaultConfig, "amoadd.w x1, x3, (x2)", "EXT_A"},
		{"fadd.s", 0x003100d3, isa.DefaultConfig, "fadd.s f1, f2, f3", "EXT_F"},
		{"fmadd.s", 0x203100c3, isa.DefaultConfig, "fmadd.s f1, f2, f3, f4, rne", "EXT_F"},
		{"slli 5-bit", 0x00511093, isa.DefaultConfig, "slli x1, x2, 5", "RV32I"},
		{"slli reinterpreted under RV64I", 0x00511093, isa.Config{ISA: isa.RV64I}, "slli x1, x2, 5", "RV64I"},
		{"srai 5-bit", 0x40515093, isa.DefaultConfig, "srai x1, x2, 5", "RV32I"},
		{"slli 6-bit shamt under RV64I", 0x02811093, isa.Config{ISA: isa.RV64I}, "slli x1, x2, 40", "RV64I"},
		{"mulw under RV64I", 0x023100bb, isa.Config{ISA: isa.RV64I}, "mulw x1, x2, x3", "EXT_M"},
		{"jal nonzero imm[19:12]", 0x000020ef, isa.DefaultConfig, "jal x1, 8192", "RV32I"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := Decode(tt.word, tt.cfg)
			if err != nil {
				t.Fatalf("Decode(%#x) unexpected error: %v", tt.word, err)
			}
			if got.Asm != tt.want {
				t.Errorf("Decode(%#x).Asm = %q, want %q", tt.word, got.Asm, tt.want)
			}
			if got.Isa != tt.isa {
				t.Errorf("Decode(%#x).Isa = %q, want %q", tt.word, got.Isa, tt.isa)
			}
			if len(got.Bin) != 32 {
				t.Errorf("Decode(%#x).Bin has length %d, want 32", tt.word, len(got.Bin))
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		desc string
		word uint32
		cfg  isa.Config
		kind rverr.Kind
	}{
		{"reserved opcode", 0x00000057, isa.DefaultConfig, rverr.InvalidOpcode},
		{"mulw requires RV64I", 0x023100bb, isa.DefaultConfig, rverr.IsaMismatch},
		{"addw requires RV64I", 0x003100bb, isa.DefaultConfig, rverr.IsaMismatch},
		{"OP-IMM-32 shift with shamt[5] set", 0x0201109b, isa.DefaultConfig, rverr.ShiftOutOfRange},
		{"6-bit shamt rejected under RV32I config", 0x02811093, isa.DefaultConfig, rverr.ShiftOutOfRange},
		{"fence with empty masks", 0x0000000f, isa.DefaultConfig, rverr.InvalidFence},
		{"ecall with non-zero rd", 0x000000f3, isa.DefaultConfig, rverr.NonZeroReserved},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := Decode(tt.word, tt.cfg)
			if err == nil {
				t.Fatalf("Decode(%#x) = nil error, want %s", tt.word, tt.kind)
			}
			if !errors.Is(err, rverr.Sentinel(tt.kind)) {
				t.Errorf("Decode(%#x) error = %v, want kind %s", tt.word, err, tt.kind)
			}
		})
	}
}

func TestDecodeFragmentsCoverWord(t *testing.T) {
	// add x10, x11, x12: the binary fragments, concatenated MSB->LSB,
	// must reconstruct the original 32-bit word exactly.
	got, err := Decode(0x00c58533, isa.DefaultConfig)
	if err != nil {
		t.Fatalf("Decode unexpected error: %v", err)
	}
	var concat string
	for _, f := range got.BinFrags {
		concat += f.Bits
	}
	if concat != got.Bin {
		t.Errorf("concatenated BinFrags = %q, want %q", concat, got.Bin)
	}
	if len(concat) != 32 {
		t.Errorf("concatenated BinFrags has length %d, want 32", len(concat))
	}
	// asmFrags must mention every operand token that appears in Asm.
	var asmConcat []string
	for _, f := range got.AsmFrags {
		if f.Assembly != "add" {
			asmConcat = append(asmConcat, f.Assembly)
		}
	}
	want := []string{"x10", "x11", "x12"}
	if len(asmConcat) != len(want) {
		t.Fatalf("AsmFrags operand tokens = %v, want %v", asmConcat, want)
	}
	for i := range want {
		if asmConcat[i] != want[i] {
			t.Errorf("AsmFrags[%d] = %q, want %q", i, asmConcat[i], want[i])
		}
	}
}

func TestDecodeAmbiguousRegisterSlots(t *testing.T) {
	// addi x0, x0, 0: x0 appears as both rd and rs1. The two
	// occurrences must remain distinct fragments in asm-write order.
	got, err := Decode(0x00000013, isa.DefaultConfig)
	if err != nil {
		t.Fatalf("Decode unexpected error: %v", err)
	}
	var regFrags int
	for _, f := range got.AsmFrags {
		if f.Assembly == "x0" {
			regFrags++
		}
	}
	if regFrags != 2 {
		t.Errorf("got %d x0 fragments, want 2 (rd and rs1 must not be merged)", regFrags)
	}
}
