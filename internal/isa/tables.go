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

import "fmt"

// Entry is the per-mnemonic table row: the format, the ISA tag, the
// owning opcode, and the concrete sub-field values the mnemonic fixes.
// A value of -1 for Funct3/Funct7/Funct5/Funct12/Fmt2/Shtyp means "not
// applicable to this mnemonic's format".
type Entry struct {
	Name    string
	Fmt     Format
	Isa     Ext
	Opcode  Opcode
	Funct3  int
	Funct7  int
	Funct5  int
	Funct12 int
	Fmt2    int // 0 = single (S), 1 = double (D)
	Shtyp   int // 0 = logical, 1 = arithmetic

	NoRs2    bool // true for lr.w/lr.d and single-source OP-FP mnemonics: no rs2 operand
	RdFloat  bool
	Rs1Float bool
	Rs2Float bool
	Uimm     bool // true for csrrwi/csrrsi/csrrci: rs1 slot holds a 5-bit unsigned immediate
}

func bitstr(v, width int) string { return fmt.Sprintf("%0*b", width, v) }

// Mnemonics is the global mnemonic table keyed by lowercase mnemonic
// name, the single source of truth the encoder looks up directly and
// the decoder's opcode-keyed dispatch tables (below) are built from,
// so the two directions can never drift out of sync (§9 Fragment
// co-construction).
var Mnemonics = buildMnemonics()

func e(name string, fmtk Format, isaTag Ext, op Opcode) *Entry {
	return &Entry{Name: name, Fmt: fmtk, Isa: isaTag, Opcode: op, Funct3: -1, Funct7: -1, Funct5: -1, Funct12: -1, Fmt2: -1, Shtyp: -1}
}

func buildMnemonics() map[string]*Entry {
	m := map[string]*Entry{}
	add := func(entry *Entry) { m[entry.Name] = entry }

	// RV32I R-type: OP, funct7|funct3
	rtype := []struct {
		name           string
		funct7, funct3 int
		isaTag         Ext
	}{
		{"add", 0x00, 0x0, RV32I}, {"sub", 0x20, 0x0, RV32I},
		{"sll", 0x00, 0x1, RV32I}, {"slt", 0x00, 0x2, RV32I}, {"sltu", 0x00, 0x3, RV32I},
		{"xor", 0x00, 0x4, RV32I}, {"srl", 0x00, 0x5, RV32I}, {"sra", 0x20, 0x5, RV32I},
		{"or", 0x00, 0x6, RV32I}, {"and", 0x00, 0x7, RV32I},
		// "M" extension (Integer Multiplication and Division); grounded
		// on LMMilewski-riscv-emu/decode.go's rvi64Instructions keys
		// 0x10C..0x1EC (funct7=0000001).
		{"mul", 0x01, 0x0, ExtM}, {"mulh", 0x01, 0x1, ExtM}, {"mulhsu", 0x01, 0x2, ExtM}, {"mulhu", 0x01, 0x3, ExtM},
		{"div", 0x01, 0x4, ExtM}, {"divu", 0x01, 0x5, ExtM}, {"rem", 0x01, 0x6, ExtM}, {"remu", 0x01, 0x7, ExtM},
	}
	for _, r := range rtype {
		en := e(r.name, FmtR, r.isaTag, OpOp)
		en.Funct7, en.Funct3 = r.funct7, r.funct3
		add(en)
	}
	// RV64I R-type (OP-32): *w variants.
	rtype32 := []struct {
		name           string
		funct7, funct3 int
		isaTag         Ext
	}{
		{"addw", 0x00, 0x0, RV64I}, {"subw", 0x20, 0x0, RV64I},
		{"sllw", 0x00, 0x1, RV64I}, {"srlw", 0x00, 0x5, RV64I}, {"sraw", 0x20, 0x5, RV64I},
		{"mulw", 0x01, 0x0, ExtM}, {"divw", 0x01, 0x4, ExtM}, {"divuw", 0x01, 0x5, ExtM},
		{"remw", 0x01, 0x6, ExtM}, {"remuw", 0x01, 0x7, ExtM},
	}
	for _, r := range rtype32 {
		en := e(r.name, FmtR, r.isaTag, OpOp32)
		en.Funct7, en.Funct3 = r.funct7, r.funct3
		add(en)
	}

	// OP-IMM (I-type, non-shift)
	opimm := []struct {
		name   string
		funct3 int
	}{
		{"addi", 0x0}, {"slti", 0x2}, {"sltiu", 0x3}, {"xori", 0x4}, {"ori", 0x6}, {"andi", 0x7},
	}
	for _, r := range opimm {
		en := e(r.name, FmtI, RV32I, OpOpImm)
		en.Funct3 = r.funct3
		add(en)
	}
	en := e("addiw", FmtI, RV64I, OpOpImm32)
	en.Funct3 = 0x0
	add(en)

	// OP-IMM shifts (I-shift).
	shifts := []struct {
		name           string
		opcode         Opcode
		funct3, shtyp  int
		isaTag         Ext
	}{
		{"slli", OpOpImm, 0x1, 0, RV32I}, {"srli", OpOpImm, 0x5, 0, RV32I}, {"srai", OpOpImm, 0x5, 1, RV32I},
		{"slliw", OpOpImm32, 0x1, 0, RV64I}, {"srliw", OpOpImm32, 0x5, 0, RV64I}, {"sraiw", OpOpImm32, 0x5, 1, RV64I},
	}
	for _, r := range shifts {
		en := e(r.name, FmtI, r.isaTag, r.opcode)
		en.Funct3, en.Shtyp = r.funct3, r.shtyp
		add(en)
	}

	// LOAD / LOAD-FP (I-type)
	loads := []struct {
		name   string
		op     Opcode
		funct3 int
		isaTag Ext
		fl     bool
	}{
		{"lb", OpLoad, 0x0, RV32I, false}, {"lh", OpLoad, 0x1, RV32I, false}, {"lw", OpLoad, 0x2, RV32I, false},
		{"lbu", OpLoad, 0x4, RV32I, false}, {"lhu", OpLoad, 0x5, RV32I, false},
		{"lwu", OpLoad, 0x6, RV64I, false}, {"ld", OpLoad, 0x3, RV64I, false},
		{"flw", OpLoadFP, 0x2, ExtF, true}, {"fld", OpLoadFP, 0x3, ExtD, true},
	}
	for _, r := range loads {
		en := e(r.name, FmtI, r.isaTag, r.op)
		en.Funct3, en.RdFloat = r.funct3, r.fl
		add(en)
	}
	en = e("jalr", FmtI, RV32I, OpJALR)
	en.Funct3 = 0x0
	add(en)

	// STORE / STORE-FP (S-type)
	stores := []struct {
		name   string
		op     Opcode
		funct3 int
		isaTag Ext
		fl     bool
	}{
		{"sb", OpStore, 0x0, RV32I, false}, {"sh", OpStore, 0x1, RV32I, false}, {"sw", OpStore, 0x2, RV32I, false},
		{"sd", OpStore, 0x3, RV64I, false},
		{"fsw", OpStoreFP, 0x2, ExtF, true}, {"fsd", OpStoreFP, 0x3, ExtD, true},
	}
	for _, r := range stores {
		en := e(r.name, FmtS, r.isaTag, r.op)
		en.Funct3, en.Rs2Float = r.funct3, r.fl
		add(en)
	}

	// BRANCH (B-type)
	branches := []struct {
		name   string
		funct3 int
	}{
		{"beq", 0x0}, {"bne", 0x1}, {"blt", 0x4}, {"bge", 0x5}, {"bltu", 0x6}, {"bgeu", 0x7},
	}
	for _, r := range branches {
		en := e(r.name, FmtB, RV32I, OpBranch)
		en.Funct3 = r.funct3
		add(en)
	}

	// LUI / AUIPC (U-type)
	en = e("lui", FmtU, RV32I, OpLUI)
	add(en)
	en = e("auipc", FmtU, RV32I, OpAUIPC)
	add(en)

	// JAL (J-type)
	en = e("jal", FmtJ, RV32I, OpJAL)
	add(en)

	// MISC-MEM
	en = e("fence", FmtI, RV32I, OpMiscMem)
	en.Funct3 = 0x0
	add(en)
	en = e("fence.i", FmtI, ExtZifencei, OpMiscMem)
	en.Funct3 = 0x1
	add(en)

	// SYSTEM: traps
	en = e("ecall", FmtI, RV32I, OpSystem)
	en.Funct3, en.Funct12 = 0x0, 0x000
	add(en)
	en = e("ebreak", FmtI, RV32I, OpSystem)
	en.Funct3, en.Funct12 = 0x0, 0x001
	add(en)

	// SYSTEM: Zicsr
	csrs := []struct {
		name   string
		funct3 int
		uimm   bool
	}{
		{"csrrw", 0x1, false}, {"csrrs", 0x2, false}, {"csrrc", 0x3, false},
		{"csrrwi", 0x5, true}, {"csrrsi", 0x6, true}, {"csrrci", 0x7, true},
	}
	for _, r := range csrs {
		en := e(r.name, FmtI, ExtZicsr, OpSystem)
		en.Funct3, en.Uimm = r.funct3, r.uimm
		add(en)
	}

	// AMO (R-AMO, reported as R-type); funct5|funct3.
	amos := []struct {
		name   string
		funct5 int
		funct3 int
		isaTag Ext
		noRs2  bool
	}{
		{"lr.w", 0x02, 0x2, ExtA, true}, {"sc.w", 0x03, 0x2, ExtA, false},
		{"amoswap.w", 0x01, 0x2, ExtA, false}, {"amoadd.w", 0x00, 0x2, ExtA, false},
		{"amoxor.w", 0x04, 0x2, ExtA, false}, {"amoand.w", 0x0c, 0x2, ExtA, false},
		{"amoor.w", 0x08, 0x2, ExtA, false},
		{"amomin.w", 0x10, 0x2, ExtA, false}, {"amomax.w", 0x14, 0x2, ExtA, false},
		{"amominu.w", 0x18, 0x2, ExtA, false}, {"amomaxu.w", 0x1c, 0x2, ExtA, false},
		{"lr.d", 0x02, 0x3, ExtA, true}, {"sc.d", 0x03, 0x3, ExtA, false},
		{"amoswap.d", 0x01, 0x3, ExtA, false}, {"amoadd.d", 0x00, 0x3, ExtA, false},
		{"amoxor.d", 0x04, 0x3, ExtA, false}, {"amoand.d", 0x0c, 0x3, ExtA, false},
		{"amoor.d", 0x08, 0x3, ExtA, false},
		{"amomin.d", 0x10, 0x3, ExtA, false}, {"amomax.d", 0x14, 0x3, ExtA, false},
		{"amominu.d", 0x18, 0x3, ExtA, false}, {"amomaxu.d", 0x1c, 0x3, ExtA, false},
	}
	for _, r := range amos {
		en := e(r.name, FmtR, r.isaTag, OpAMO)
		en.Funct5, en.Funct3, en.NoRs2 = r.funct5, r.funct3, r.noRs2
		add(en)
	}

	addFPEntries(add)
	addMaddEntries(add)
	return m
}

// addFPEntries adds the OP-FP mnemonics (R-FP format); see
// SPEC_FULL.md §4.3's OP-FP bullet for the funct5/fmt/funct3|rs2
// nesting these mirror.
func addFPEntries(add func(*Entry)) {
	type fp struct {
		name     string
		funct5   int
		fmt2     int
		funct3   int // -1 if n/a
		rs2      int // -1 if n/a
		isaTag   Ext
		rdFloat  bool
		rs1Float bool
		rs2Float bool
		noRs2    bool
	}
	var entries []fp
	for _, prec := range []struct {
		suffix string
		fmt2   int
		isaTag Ext
	}{{"s", 0, ExtF}, {"d", 1, ExtD}} {
		entries = append(entries,
			fp{"fadd." + prec.suffix, 0x00, prec.fmt2, -1, -1, prec.isaTag, true, true, true, false},
			fp{"fsub." + prec.suffix, 0x01, prec.fmt2, -1, -1, prec.isaTag, true, true, true, false},
			fp{"fmul." + prec.suffix, 0x02, prec.fmt2, -1, -1, prec.isaTag, true, true, true, false},
			fp{"fdiv." + prec.suffix, 0x03, prec.fmt2, -1, -1, prec.isaTag, true, true, true, false},
			fp{"fsqrt." + prec.suffix, 0x0b, prec.fmt2, -1, -1, prec.isaTag, true, true, false, true},
			fp{"fsgnj." + prec.suffix, 0x04, prec.fmt2, 0x0, -1, prec.isaTag, true, true, true, false},
			fp{"fsgnjn." + prec.suffix, 0x04, prec.fmt2, 0x1, -1, prec.isaTag, true, true, true, false},
			fp{"fsgnjx." + prec.suffix, 0x04, prec.fmt2, 0x2, -1, prec.isaTag, true, true, true, false},
			fp{"fmin." + prec.suffix, 0x05, prec.fmt2, 0x0, -1, prec.isaTag, true, true, true, false},
			fp{"fmax." + prec.suffix, 0x05, prec.fmt2, 0x1, -1, prec.isaTag, true, true, true, false},
			fp{"feq." + prec.suffix, 0x14, prec.fmt2, 0x2, -1, prec.isaTag, false, true, true, false},
			fp{"flt." + prec.suffix, 0x14, prec.fmt2, 0x1, -1, prec.isaTag, false, true, true, false},
			fp{"fle." + prec.suffix, 0x14, prec.fmt2, 0x0, -1, prec.isaTag, false, true, true, false},
			fp{"fclass." + prec.suffix, 0x1c, prec.fmt2, 0x1, -1, prec.isaTag, false, true, false, true},
			fp{"fcvt.w." + prec.suffix, 0x18, prec.fmt2, -1, 0x00, prec.isaTag, false, true, false, true},
			fp{"fcvt.wu." + prec.suffix, 0x18, prec.fmt2, -1, 0x01, prec.isaTag, false, true, false, true},
			fp{"fcvt.l." + prec.suffix, 0x18, prec.fmt2, -1, 0x02, RV64I, false, true, false, true},
			fp{"fcvt.lu." + prec.suffix, 0x18, prec.fmt2, -1, 0x03, RV64I, false, true, false, true},
			fp{"fcvt." + prec.suffix + ".w", 0x1a, prec.fmt2, -1, 0x00, prec.isaTag, true, false, false, true},
			fp{"fcvt." + prec.suffix + ".wu", 0x1a, prec.fmt2, -1, 0x01, prec.isaTag, true, false, false, true},
			fp{"fcvt." + prec.suffix + ".l", 0x1a, prec.fmt2, -1, 0x02, RV64I, true, false, false, true},
			fp{"fcvt." + prec.suffix + ".lu", 0x1a, prec.fmt2, -1, 0x03, RV64I, true, false, false, true},
		)
	}
	// FMV/FCLASS for single: funct5=0x1c funct3=0x0 fmv.x.w; double: fmv.x.d.
	entries = append(entries,
		fp{"fmv.x.w", 0x1c, 0, 0x0, -1, ExtF, false, true, false, true},
		fp{"fmv.x.d", 0x1c, 1, 0x0, -1, ExtD, false, true, false, true},
		fp{"fmv.w.x", 0x1e, 0, 0x0, -1, ExtF, true, false, false, true},
		fp{"fmv.d.x", 0x1e, 1, 0x0, -1, ExtD, true, false, false, true},
		// FCVT.S.D / FCVT.D.S: funct5=0x08, fmt selects destination
		// precision, rs2 selects the source precision.
		fp{"fcvt.s.d", 0x08, 0, -1, 0x01, ExtD, true, true, false, true},
		fp{"fcvt.d.s", 0x08, 1, -1, 0x00, ExtD, true, true, false, true},
	)
	for _, f := range entries {
		en := e(f.name, FmtR, f.isaTag, OpOpFP)
		en.Funct5, en.Fmt2, en.Funct3 = f.funct5, f.fmt2, f.funct3
		en.RdFloat, en.Rs1Float, en.Rs2Float, en.NoRs2 = f.rdFloat, f.rs1Float, f.rs2Float, f.noRs2
		if f.rs2 >= 0 {
			// rs2 acts as a sub-opcode selector here, not a register
			// operand; stash it in Funct7 (unused by R-FP) so the
			// decoder/encoder can recover the fixed rs2 pattern.
			en.Funct7 = f.rs2
		}
		add(en)
	}
}

// addMaddEntries adds the R4-type fused multiply-add family.
func addMaddEntries(add func(*Entry)) {
	ops := []struct {
		name string
		op   Opcode
	}{
		{"fmadd", OpMadd}, {"fmsub", OpMsub}, {"fnmsub", OpNmsub}, {"fnmadd", OpNmadd},
	}
	for _, o := range ops {
		for _, prec := range []struct {
			suffix string
			fmt2   int
			isaTag Ext
		}{{"s", 0, ExtF}, {"d", 1, ExtD}} {
			en := e(o.name+"."+prec.suffix, FmtR4, prec.isaTag, o.op)
			en.Fmt2 = prec.fmt2
			en.RdFloat, en.Rs1Float, en.Rs2Float = true, true, true
			add(en)
		}
	}
}
