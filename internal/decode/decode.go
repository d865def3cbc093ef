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

// Package decode implements the opcode-driven decoder: given a 32-bit
// instruction word and an ISA profile, it dispatches by opcode,
// extracts the format-specific fields, reconstitutes immediates and
// emits the ordered fragment lists the codec is built around.
//
// BuildFromEntry is exported so internal/encode can call back into the
// per-format decode functions once it has assembled a word: the encoder never
// re-implements fragment construction, it just hands its freshly
// assembled word (and the Entry it already looked up) to the same code
// path the decoder uses, which is what keeps the two directions from
// drifting apart (§9 Fragment co-construction).
package decode

import (
	"strconv"
	"strings"

	"github.com/lmmilewski/riscv-codec/internal/bits"
	"github.com/lmmilewski/riscv-codec/internal/fragment"
	"github.com/lmmilewski/riscv-codec/internal/instr"
	"github.com/lmmilewski/riscv-codec/internal/isa"
	"github.com/lmmilewski/riscv-codec/internal/rverr"
)

// builder accumulates fragments and their assembly-operand slot while
// a per-format decode function walks one instruction's fields.
type builder struct {
	frags []fragment.Fragment
	slots []int
}

func (b *builder) field(word uint32, f isa.Field, slot int, assembly string, mem bool) error {
	text, err := bits.Slice(word, f.High, f.Width)
	if err != nil {
		return rverr.New(rverr.InternalError, "slicing field %s: %v", f.Name, err)
	}
	b.frags = append(b.frags, fragment.New(f.Name, text, f.Low(), assembly, mem))
	b.slots = append(b.slots, slot)
	return nil
}

func (b *builder) result(word uint32, fmtk isa.Format, ext isa.Ext, asm string) *instr.Result {
	binFrags, asmFrags := fragment.Order(b.frags, b.slots)
	return &instr.Result{
		Hex:      bits.WordToHex(word),
		Bin:      bits.WordToBin(word),
		Asm:      asm,
		Fmt:      string(fmtk),
		Isa:      string(ext),
		BinFrags: binFrags,
		AsmFrags: asmFrags,
	}
}

const (
	slotMnemonic = 0
	slotOp1      = 1
	slotOp2      = 2
	slotOp3      = 3
	slotOp4      = 4
)

func regField(cfg isa.Config, word uint32, f isa.Field, float bool) (int, string, error) {
	text, err := bits.Slice(word, f.High, f.Width)
	if err != nil {
		return 0, "", rverr.New(rverr.InternalError, "slicing %s: %v", f.Name, err)
	}
	n, err := strconv.ParseUint(text, 2, 8)
	if err != nil {
		return 0, "", rverr.New(rverr.InternalError, "parsing %s bits %q: %v", f.Name, text, err)
	}
	if float {
		return int(n), isa.FloatRegName(int(n), cfg.ABI), nil
	}
	return int(n), isa.IntRegName(int(n), cfg.ABI), nil
}

// Decode dispatches word to the handler selected by its opcode field
// and returns the decoded InstructionResult.
func Decode(word uint32, cfg isa.Config) (*instr.Result, error) {
	bop := isa.Opcode((word >> 2) & 0x1f)
	opcodeBits, err := bits.Slice(word, isa.FOpcode.High, isa.FOpcode.Width)
	if err != nil {
		return nil, rverr.New(rverr.InternalError, "slicing opcode: %v", err)
	}

	switch bop {
	case isa.OpOp:
		return decodeOp(word, cfg, isa.OpTable, false)
	case isa.OpOp32:
		return decodeOp(word, cfg, isa.Op32Table, true)
	case isa.OpAMO:
		return decodeAMO(word, cfg)
	case isa.OpOpFP:
		return decodeOpFP(word, cfg)
	case isa.OpLoad:
		return decodeLoad(word, cfg, isa.LoadTable, false)
	case isa.OpLoadFP:
		return decodeLoad(word, cfg, isa.LoadFPTable, true)
	case isa.OpJALR:
		return decodeJALR(word, cfg)
	case isa.OpOpImm:
		return decodeOpImm(word, cfg, isa.OpImmTable, false)
	case isa.OpOpImm32:
		return decodeOpImm(word, cfg, isa.OpImm32Table, true)
	case isa.OpMiscMem:
		return decodeMiscMem(word, cfg)
	case isa.OpSystem:
		return decodeSystem(word, cfg)
	case isa.OpStore:
		return decodeStore(word, cfg, isa.StoreTable, false)
	case isa.OpStoreFP:
		return decodeStore(word, cfg, isa.StoreFPTable, true)
	case isa.OpBranch:
		return decodeBranch(word, cfg)
	case isa.OpLUI, isa.OpAUIPC:
		return decodeU(word, cfg, bop)
	case isa.OpJAL:
		return decodeJAL(word, cfg)
	case isa.OpMadd, isa.OpMsub, isa.OpNmsub, isa.OpNmadd:
		return decodeR4(word, cfg, bop)
	default:
		return nil, rverr.New(rverr.InvalidOpcode, "instruction %s has unrecognized opcode %s", bits.WordToHex(word), opcodeBits)
	}
}

func checkISA(cfg isa.Config, ext isa.Ext) error {
	if isa.RV64Only(ext) && cfg.ISA == isa.RV32I {
		return rverr.New(rverr.IsaMismatch, "instruction requires RV64I but config ISA is RV32I")
	}
	return nil
}

// decodeOp handles OP and OP-32: plain R-type register-register. The
// OP-32 opcode is RV64I-only regardless of what extension tag a given
// mnemonic (e.g. the "M"-extension *w ops) carries, so is32 forces
// that check independently of en.Isa.
func decodeOp(word uint32, cfg isa.Config, table map[string]*isa.Entry, is32 bool) (*instr.Result, error) {
	funct7, _ := bits.Slice(word, isa.FFunct7.High, isa.FFunct7.Width)
	funct3, _ := bits.Slice(word, isa.FFunct3.High, isa.FFunct3.Width)
	en, ok := table[funct7+funct3]
	if !ok {
		return nil, rverr.New(rverr.InvalidFunct, "no OP/OP-32 entry for funct7=%s funct3=%s", funct7, funct3)
	}
	if is32 && cfg.ISA == isa.RV32I {
		return nil, rverr.New(rverr.IsaMismatch, "instruction requires RV64I but config ISA is RV32I")
	}
	if err := checkISA(cfg, en.Isa); err != nil {
		return nil, err
	}
	b := &builder{}
	_, rdName, _ := regField(cfg, word, isa.FRd, false)
	_, rs1Name, _ := regField(cfg, word, isa.FRs1, false)
	_, rs2Name, _ := regField(cfg, word, isa.FRs2, false)
	b.field(word, isa.FFunct7, slotMnemonic, en.Name, false)
	b.field(word, isa.FRs2, slotOp3, rs2Name, false)
	b.field(word, isa.FRs1, slotOp2, rs1Name, false)
	b.field(word, isa.FFunct3, slotMnemonic, en.Name, false)
	b.field(word, isa.FRd, slotOp1, rdName, false)
	b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
	asm := en.Name + " " + rdName + ", " + rs1Name + ", " + rs2Name
	return b.result(word, en.Fmt, en.Isa, asm), nil
}

// decodeAMO handles the atomic-memory-operation opcode: R-type with
// aq/rl bits and an optional rs2 (lr.* doesn't consume one).
func decodeAMO(word uint32, cfg isa.Config) (*instr.Result, error) {
	funct5, _ := bits.Slice(word, isa.FFunct5.High, isa.FFunct5.Width)
	funct3, _ := bits.Slice(word, isa.FFunct3.High, isa.FFunct3.Width)
	en, ok := isa.AmoTable[funct5+funct3]
	if !ok {
		return nil, rverr.New(rverr.InvalidFunct, "no AMO entry for funct5=%s funct3=%s", funct5, funct3)
	}
	if err := checkISA(cfg, en.Isa); err != nil {
		return nil, err
	}
	b := &builder{}
	_, rdName, _ := regField(cfg, word, isa.FRd, false)
	_, rs1Name, _ := regField(cfg, word, isa.FRs1, false)
	_, rs2Name, _ := regField(cfg, word, isa.FRs2, false)
	b.field(word, isa.FFunct5, slotMnemonic, en.Name, false)
	b.field(word, isa.FAq, slotMnemonic, en.Name, false)
	b.field(word, isa.FRl, slotMnemonic, en.Name, false)
	if en.NoRs2 {
		rs2Text, _ := bits.Slice(word, isa.FRs2.High, isa.FRs2.Width)
		if rs2Text != "00000" {
			return nil, rverr.New(rverr.NonZeroReserved, "%s requires rs2 field to be zero, got %s", en.Name, rs2Text)
		}
		b.field(word, isa.FRs2, slotMnemonic, en.Name, false)
	} else {
		b.field(word, isa.FRs2, slotOp2, rs2Name, false)
	}
	b.field(word, isa.FRs1, slotOp3, rs1Name, true)
	b.field(word, isa.FFunct3, slotMnemonic, en.Name, false)
	b.field(word, isa.FRd, slotOp1, rdName, false)
	b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
	var asm string
	if en.NoRs2 {
		asm = en.Name + " " + rdName + ", (" + rs1Name + ")"
	} else {
		asm = en.Name + " " + rdName + ", " + rs2Name + ", (" + rs1Name + ")"
	}
	return b.result(word, en.Fmt, en.Isa, asm), nil
}

// decodeOpFP handles OP-FP: up to three nested lookups
// (funct5 -> fmt -> {fixed | funct3 | rs2}).
func decodeOpFP(word uint32, cfg isa.Config) (*instr.Result, error) {
	funct5, _ := bits.Slice(word, isa.FFunct5.High, isa.FFunct5.Width)
	fmt2, _ := bits.Slice(word, isa.FFmt2.High, isa.FFmt2.Width)
	byFmt, ok := isa.OpFPTable[funct5]
	if !ok {
		return nil, rverr.New(rverr.InvalidFunct, "no OP-FP entry for funct5=%s", funct5)
	}
	d, ok := byFmt[fmt2]
	if !ok {
		return nil, rverr.New(rverr.InvalidFunct, "no OP-FP entry for funct5=%s fmt=%s", funct5, fmt2)
	}
	var en *isa.Entry
	switch {
	case d.Direct != nil:
		en = d.Direct
	case d.ByFunct3 != nil:
		funct3, _ := bits.Slice(word, isa.FFunct3.High, isa.FFunct3.Width)
		sub, ok := d.ByFunct3[funct3]
		if !ok || sub.Direct == nil {
			return nil, rverr.New(rverr.InvalidFunct, "no OP-FP entry for funct5=%s fmt=%s funct3=%s", funct5, fmt2, funct3)
		}
		en = sub.Direct
	case d.ByRs2 != nil:
		rs2, _ := bits.Slice(word, isa.FRs2.High, isa.FRs2.Width)
		sub, ok := d.ByRs2[rs2]
		if !ok || sub.Direct == nil {
			return nil, rverr.New(rverr.InvalidFunct, "no OP-FP entry for funct5=%s fmt=%s rs2=%s", funct5, fmt2, rs2)
		}
		en = sub.Direct
	default:
		return nil, rverr.New(rverr.InvalidFunct, "empty OP-FP dispatch entry for funct5=%s fmt=%s", funct5, fmt2)
	}
	if err := checkISA(cfg, en.Isa); err != nil {
		return nil, err
	}
	b := &builder{}
	_, rdName, _ := regField(cfg, word, isa.FRd, en.RdFloat)
	_, rs1Name, _ := regField(cfg, word, isa.FRs1, en.Rs1Float)
	_, rs2Name, _ := regField(cfg, word, isa.FRs2, en.Rs2Float)
	b.field(word, isa.FFunct5, slotMnemonic, en.Name, false)
	b.field(word, isa.FFmt2, slotMnemonic, en.Name, false)
	if en.NoRs2 {
		b.field(word, isa.FRs2, slotMnemonic, en.Name, false)
	} else {
		b.field(word, isa.FRs2, slotOp3, rs2Name, false)
	}
	b.field(word, isa.FRs1, slotOp2, rs1Name, false)
	b.field(word, isa.FFunct3, slotMnemonic, en.Name, false)
	b.field(word, isa.FRd, slotOp1, rdName, false)
	b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
	asm := en.Name + " " + rdName + ", " + rs1Name
	if !en.NoRs2 {
		asm += ", " + rs2Name
	}
	return b.result(word, en.Fmt, en.Isa, asm), nil
}

// decodeR4 handles MADD/MSUB/NMADD/NMSUB: R4-type, rs3 in the top
// funct slot, fmt bits select precision, funct3 is the rounding mode.
func decodeR4(word uint32, cfg isa.Config, op isa.Opcode) (*instr.Result, error) {
	var table map[string]*isa.Entry
	switch op {
	case isa.OpMadd:
		table = isa.MaddTable
	case isa.OpMsub:
		table = isa.MsubTable
	case isa.OpNmsub:
		table = isa.NmsubTable
	case isa.OpNmadd:
		table = isa.NmaddTable
	}
	fmt2, _ := bits.Slice(word, isa.FFmt2.High, isa.FFmt2.Width)
	en, ok := table[fmt2]
	if !ok {
		return nil, rverr.New(rverr.InvalidFunct, "no R4 entry for fmt=%s", fmt2)
	}
	if err := checkISA(cfg, en.Isa); err != nil {
		return nil, err
	}
	b := &builder{}
	_, rdName, _ := regField(cfg, word, isa.FRd, true)
	_, rs1Name, _ := regField(cfg, word, isa.FRs1, true)
	_, rs2Name, _ := regField(cfg, word, isa.FRs2, true)
	_, rs3Name, _ := regField(cfg, word, isa.FRs3, true)
	rmText, _ := bits.Slice(word, isa.FRm.High, isa.FRm.Width)
	rm := roundingModeName(rmText)
	b.field(word, isa.FRs3, slotOp4, rs3Name, false)
	b.field(word, isa.FFmt2, slotMnemonic, en.Name, false)
	b.field(word, isa.FRs2, slotOp3, rs2Name, false)
	b.field(word, isa.FRs1, slotOp2, rs1Name, false)
	b.field(word, isa.FRm, slotOp4+1, rm, false)
	b.field(word, isa.FRd, slotOp1, rdName, false)
	b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
	asm := en.Name + " " + rdName + ", " + rs1Name + ", " + rs2Name + ", " + rs3Name + ", " + rm
	return b.result(word, en.Fmt, en.Isa, asm), nil
}

var roundingModes = map[string]string{
	"000": "rne", "001": "rtz", "010": "rdn", "011": "rup", "100": "rmm", "111": "dyn",
}

func roundingModeName(bits3 string) string {
	if name, ok := roundingModes[bits3]; ok {
		return name
	}
	return "rm" + bits3
}

// decodeLoad handles LOAD / LOAD-FP: I-type, destination register is
// float iff opcode is LOAD-FP.
func decodeLoad(word uint32, cfg isa.Config, table map[string]*isa.Entry, float bool) (*instr.Result, error) {
	funct3, _ := bits.Slice(word, isa.FFunct3.High, isa.FFunct3.Width)
	en, ok := table[funct3]
	if !ok {
		return nil, rverr.New(rverr.InvalidFunct, "no LOAD entry for funct3=%s", funct3)
	}
	if err := checkISA(cfg, en.Isa); err != nil {
		return nil, err
	}
	b := &builder{}
	immText, _ := bits.Slice(word, isa.FImm12.High, isa.FImm12.Width)
	immVal, err := bits.ParseImm(immText, true)
	if err != nil {
		return nil, err
	}
	_, rdName, _ := regField(cfg, word, isa.FRd, float)
	_, rs1Name, _ := regField(cfg, word, isa.FRs1, false)
	immStr := strconv.FormatInt(immVal, 10)
	b.field(word, isa.FImm12, slotOp2, immStr, false)
	b.field(word, isa.FRs1, slotOp3, rs1Name, true)
	b.field(word, isa.FFunct3, slotMnemonic, en.Name, false)
	b.field(word, isa.FRd, slotOp1, rdName, false)
	b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
	asm := en.Name + " " + rdName + ", " + immStr + "(" + rs1Name + ")"
	return b.result(word, en.Fmt, en.Isa, asm), nil
}

// decodeJALR handles the single JALR mnemonic: I-type.
func decodeJALR(word uint32, cfg isa.Config) (*instr.Result, error) {
	funct3, _ := bits.Slice(word, isa.FFunct3.High, isa.FFunct3.Width)
	if funct3 != "000" {
		return nil, rverr.New(rverr.InvalidFunct, "jalr requires funct3=000, got %s", funct3)
	}
	en := isa.Mnemonics["jalr"]
	b := &builder{}
	immText, _ := bits.Slice(word, isa.FImm12.High, isa.FImm12.Width)
	immVal, err := bits.ParseImm(immText, true)
	if err != nil {
		return nil, err
	}
	_, rdName, _ := regField(cfg, word, isa.FRd, false)
	_, rs1Name, _ := regField(cfg, word, isa.FRs1, false)
	immStr := strconv.FormatInt(immVal, 10)
	b.field(word, isa.FImm12, slotOp2, immStr, false)
	b.field(word, isa.FRs1, slotOp3, rs1Name, true)
	b.field(word, isa.FFunct3, slotMnemonic, en.Name, false)
	b.field(word, isa.FRd, slotOp1, rdName, false)
	b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
	asm := en.Name + " " + rdName + ", " + immStr + "(" + rs1Name + ")"
	return b.result(word, en.Fmt, en.Isa, asm), nil
}

// shiftWidth determines whether word's OP-IMM shift is 5-bit or 6-bit
// shamt, per SPEC_FULL.md §4.3's OP-IMM/OP-IMM-32 bullet, and returns
// the effective reported ISA tag. A 6-bit shamt -- whether forced by
// cfg.ISA==RV64I or by shamt[5] being set in the raw word -- is a
// ShiftOutOfRange error when cfg.ISA is RV32I.
func shiftWidth(word uint32, cfg isa.Config, is32 bool) (width int, reportedISA isa.Ext, err error) {
	shamt5, _ := bits.Slice(word, 25, 1) // bit 25: shamt[5] under a 6-bit reading
	if is32 {
		if shamt5 == "1" {
			return 0, "", rverr.New(rverr.ShiftOutOfRange, "OP-IMM-32 shift has shamt[5] set")
		}
		return 5, isa.RV64I, nil
	}
	if cfg.ISA == isa.RV64I || shamt5 == "1" {
		if cfg.ISA == isa.RV32I {
			return 0, "", rverr.New(rverr.ShiftOutOfRange, "6-bit shift amount is not legal under RV32I")
		}
		return 6, isa.RV64I, nil
	}
	return 5, isa.RV32I, nil
}

// decodeOpImm handles OP-IMM / OP-IMM-32: I-type, with shift
// mnemonics resolved through the nested shtyp sub-table.
func decodeOpImm(word uint32, cfg isa.Config, table map[string]*isa.Dispatch, is32 bool) (*instr.Result, error) {
	funct3, _ := bits.Slice(word, isa.FFunct3.High, isa.FFunct3.Width)
	d, ok := table[funct3]
	if !ok {
		return nil, rverr.New(rverr.InvalidFunct, "no OP-IMM entry for funct3=%s", funct3)
	}
	if d.Direct != nil {
		return decodeOpImmDirect(word, cfg, d.Direct, is32)
	}
	return decodeShift(word, cfg, d, is32)
}

func decodeOpImmDirect(word uint32, cfg isa.Config, en *isa.Entry, is32 bool) (*instr.Result, error) {
	if err := checkISA(cfg, en.Isa); err != nil {
		return nil, err
	}
	b := &builder{}
	immText, _ := bits.Slice(word, isa.FImm12.High, isa.FImm12.Width)
	immVal, err := bits.ParseImm(immText, true)
	if err != nil {
		return nil, err
	}
	_, rdName, _ := regField(cfg, word, isa.FRd, false)
	_, rs1Name, _ := regField(cfg, word, isa.FRs1, false)
	immStr := strconv.FormatInt(immVal, 10)
	b.field(word, isa.FImm12, slotOp3, immStr, false)
	b.field(word, isa.FRs1, slotOp2, rs1Name, false)
	b.field(word, isa.FFunct3, slotMnemonic, en.Name, false)
	b.field(word, isa.FRd, slotOp1, rdName, false)
	b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
	asm := en.Name + " " + rdName + ", " + rs1Name + ", " + immStr
	return b.result(word, en.Fmt, en.Isa, asm), nil
}

func decodeShift(word uint32, cfg isa.Config, d *isa.Dispatch, is32 bool) (*instr.Result, error) {
	width, reportedISA, err := shiftWidth(word, cfg, is32)
	if err != nil {
		return nil, err
	}
	shtypField, shamtField := isa.FShtyp5, isa.FShamt5
	if width == 6 {
		shtypField, shamtField = isa.FShtyp6, isa.FShamt6
	}
	shtypText, _ := bits.Slice(word, shtypField.High, shtypField.Width)
	shtypVal, _ := strconv.ParseUint(shtypText, 2, 8)
	// The arithmetic/logical flag is the second-most-significant bit of
	// the shtyp field (e.g. 0100000 for SRAI's 7-bit pattern, 010000 for
	// its 6-bit counterpart); every other bit, including the MSB, must
	// be zero.
	flagPos := uint(shtypField.Width - 2)
	wantZeroBits := shtypVal &^ (1 << flagPos)
	if wantZeroBits != 0 {
		return nil, rverr.New(rverr.BadShtyp, "shift encoding %s has non-zero reserved bits", shtypText)
	}
	shtyp := int((shtypVal >> flagPos) & 1)
	en, ok := d.ByShtyp[strconv.Itoa(shtyp)]
	if !ok {
		return nil, rverr.New(rverr.BadShtyp, "shift encoding's shtyp pattern %s has no matching mnemonic", shtypText)
	}
	if isa.RV64Only(en.Isa) && cfg.ISA == isa.RV32I {
		return nil, rverr.New(rverr.IsaMismatch, "instruction requires RV64I but config ISA is RV32I")
	}
	effISA := en.Isa
	if reportedISA == isa.RV64I && width == 6 {
		effISA = isa.RV64I
	}
	b := &builder{}
	shamtText, _ := bits.Slice(word, shamtField.High, shamtField.Width)
	shamtVal, _ := strconv.ParseUint(shamtText, 2, 8)
	_, rdName, _ := regField(cfg, word, isa.FRd, false)
	_, rs1Name, _ := regField(cfg, word, isa.FRs1, false)
	shamtStr := strconv.FormatUint(shamtVal, 10)
	b.field(word, shtypField, slotMnemonic, en.Name, false)
	b.field(word, shamtField, slotOp3, shamtStr, false)
	b.field(word, isa.FRs1, slotOp2, rs1Name, false)
	b.field(word, isa.FFunct3, slotMnemonic, en.Name, false)
	b.field(word, isa.FRd, slotOp1, rdName, false)
	b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
	asm := en.Name + " " + rdName + ", " + rs1Name + ", " + shamtStr
	return b.result(word, en.Fmt, effISA, asm), nil
}

// decodeMiscMem handles FENCE / FENCE.I.
func decodeMiscMem(word uint32, cfg isa.Config) (*instr.Result, error) {
	funct3, _ := bits.Slice(word, isa.FFunct3.High, isa.FFunct3.Width)
	en, ok := isa.MiscMemTable[funct3]
	if !ok {
		return nil, rverr.New(rverr.InvalidFunct, "no MISC-MEM entry for funct3=%s", funct3)
	}
	rdText, _ := bits.Slice(word, isa.FRd.High, isa.FRd.Width)
	rs1Text, _ := bits.Slice(word, isa.FRs1.High, isa.FRs1.Width)
	if rdText != "00000" || rs1Text != "00000" {
		return nil, rverr.New(rverr.NonZeroReserved, "%s requires rd and rs1 to be zero", en.Name)
	}
	b := &builder{}
	if en.Name == "fence.i" {
		b.field(word, isa.FFm, slotMnemonic, en.Name, false)
		b.field(word, isa.FPred, slotMnemonic, en.Name, false)
		b.field(word, isa.FSucc, slotMnemonic, en.Name, false)
		b.field(word, isa.FRs1, slotMnemonic, en.Name, false)
		b.field(word, isa.FFunct3, slotMnemonic, en.Name, false)
		b.field(word, isa.FRd, slotMnemonic, en.Name, false)
		b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
		return b.result(word, en.Fmt, en.Isa, en.Name), nil
	}
	predText, _ := bits.Slice(word, isa.FPred.High, isa.FPred.Width)
	succText, _ := bits.Slice(word, isa.FSucc.High, isa.FSucc.Width)
	pred, err := fenceMask(predText)
	if err != nil {
		return nil, err
	}
	succ, err := fenceMask(succText)
	if err != nil {
		return nil, err
	}
	b.field(word, isa.FFm, slotMnemonic, en.Name, false)
	b.field(word, isa.FPred, slotOp1, pred, false)
	b.field(word, isa.FSucc, slotOp2, succ, false)
	b.field(word, isa.FRs1, slotMnemonic, en.Name, false)
	b.field(word, isa.FFunct3, slotMnemonic, en.Name, false)
	b.field(word, isa.FRd, slotMnemonic, en.Name, false)
	b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
	asm := en.Name + " " + pred + ", " + succ
	return b.result(word, en.Fmt, en.Isa, asm), nil
}

const fenceLetters = "iorw"

func fenceMask(text string) (string, error) {
	if text == "0000" {
		return "", rverr.New(rverr.InvalidFence, "fence mask is empty")
	}
	var sb strings.Builder
	for i, c := range text {
		if c == '1' {
			sb.WriteByte(fenceLetters[i])
		}
	}
	return sb.String(), nil
}

// decodeSystem handles SYSTEM: traps (funct3==0, dispatched on
// funct12) and Zicsr (every other funct3).
func decodeSystem(word uint32, cfg isa.Config) (*instr.Result, error) {
	funct3, _ := bits.Slice(word, isa.FFunct3.High, isa.FFunct3.Width)
	d, ok := isa.SystemTable[funct3]
	if !ok {
		return nil, rverr.New(rverr.InvalidFunct, "no SYSTEM entry for funct3=%s", funct3)
	}
	if d.ByFunct12 != nil {
		return decodeTrap(word, cfg, d)
	}
	return decodeZicsr(word, cfg, d.Direct)
}

func decodeTrap(word uint32, cfg isa.Config, d *isa.Dispatch) (*instr.Result, error) {
	funct12, _ := bits.Slice(word, isa.FImm12.High, isa.FImm12.Width)
	sub, ok := d.ByFunct12[funct12]
	if !ok || sub.Direct == nil {
		return nil, rverr.New(rverr.InvalidFunct, "no trap entry for funct12=%s", funct12)
	}
	en := sub.Direct
	rdText, _ := bits.Slice(word, isa.FRd.High, isa.FRd.Width)
	rs1Text, _ := bits.Slice(word, isa.FRs1.High, isa.FRs1.Width)
	if rdText != "00000" || rs1Text != "00000" {
		return nil, rverr.New(rverr.NonZeroReserved, "%s requires rd and rs1 to be zero", en.Name)
	}
	b := &builder{}
	b.field(word, isa.FImm12, slotMnemonic, en.Name, false)
	b.field(word, isa.FRs1, slotMnemonic, en.Name, false)
	b.field(word, isa.FFunct3, slotMnemonic, en.Name, false)
	b.field(word, isa.FRd, slotMnemonic, en.Name, false)
	b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
	return b.result(word, en.Fmt, en.Isa, en.Name), nil
}

func decodeZicsr(word uint32, cfg isa.Config, en *isa.Entry) (*instr.Result, error) {
	csrText, _ := bits.Slice(word, isa.FCsr.High, isa.FCsr.Width)
	csrAddr, _ := strconv.ParseUint(csrText, 2, 16)
	csrName := isa.CSRName(int(csrAddr))
	_, rdName, _ := regField(cfg, word, isa.FRd, false)
	b := &builder{}
	b.field(word, isa.FCsr, slotOp2, csrName, false)
	var src string
	if en.Uimm {
		uimmText, _ := bits.Slice(word, isa.FRs1.High, isa.FRs1.Width)
		uimmVal, _ := strconv.ParseUint(uimmText, 2, 8)
		src = strconv.FormatUint(uimmVal, 10)
		b.field(word, isa.FRs1, slotOp3, src, false)
	} else {
		_, rs1Name, _ := regField(cfg, word, isa.FRs1, false)
		src = rs1Name
		b.field(word, isa.FRs1, slotOp3, src, false)
	}
	b.field(word, isa.FFunct3, slotMnemonic, en.Name, false)
	b.field(word, isa.FRd, slotOp1, rdName, false)
	b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
	asm := en.Name + " " + rdName + ", " + csrName + ", " + src
	return b.result(word, en.Fmt, en.Isa, asm), nil
}

// decodeStore handles STORE / STORE-FP: S-type.
func decodeStore(word uint32, cfg isa.Config, table map[string]*isa.Entry, float bool) (*instr.Result, error) {
	funct3, _ := bits.Slice(word, isa.FFunct3.High, isa.FFunct3.Width)
	en, ok := table[funct3]
	if !ok {
		return nil, rverr.New(rverr.InvalidFunct, "no STORE entry for funct3=%s", funct3)
	}
	if err := checkISA(cfg, en.Isa); err != nil {
		return nil, err
	}
	hi, _ := bits.Slice(word, isa.FSImm115.High, isa.FSImm115.Width)
	lo, _ := bits.Slice(word, isa.FSImm40.High, isa.FSImm40.Width)
	immVal, err := bits.ParseImm(hi+lo, true)
	if err != nil {
		return nil, err
	}
	_, rs1Name, _ := regField(cfg, word, isa.FRs1, false)
	_, rs2Name, _ := regField(cfg, word, isa.FRs2, float)
	immStr := strconv.FormatInt(immVal, 10)
	b := &builder{}
	b.field(word, isa.FSImm115, slotOp2, immStr, false)
	b.field(word, isa.FRs2, slotOp1, rs2Name, false)
	b.field(word, isa.FRs1, slotOp2, rs1Name, true)
	b.field(word, isa.FFunct3, slotMnemonic, en.Name, false)
	b.field(word, isa.FSImm40, slotOp2, immStr, false)
	b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
	asm := en.Name + " " + rs2Name + ", " + immStr + "(" + rs1Name + ")"
	return b.result(word, en.Fmt, en.Isa, asm), nil
}

// decodeBranch handles BRANCH: B-type.
func decodeBranch(word uint32, cfg isa.Config) (*instr.Result, error) {
	funct3, _ := bits.Slice(word, isa.FFunct3.High, isa.FFunct3.Width)
	en, ok := isa.BranchTable[funct3]
	if !ok {
		return nil, rverr.New(rverr.InvalidFunct, "no BRANCH entry for funct3=%s", funct3)
	}
	imm12, _ := bits.Slice(word, isa.FBImm12.High, isa.FBImm12.Width)
	imm105, _ := bits.Slice(word, isa.FBImm105.High, isa.FBImm105.Width)
	imm41, _ := bits.Slice(word, isa.FBImm41.High, isa.FBImm41.Width)
	imm11, _ := bits.Slice(word, isa.FBImm11.High, isa.FBImm11.Width)
	immVal, err := bits.ParseImm(imm12+imm11+imm105+imm41+"0", true)
	if err != nil {
		return nil, err
	}
	_, rs1Name, _ := regField(cfg, word, isa.FRs1, false)
	_, rs2Name, _ := regField(cfg, word, isa.FRs2, false)
	immStr := strconv.FormatInt(immVal, 10)
	b := &builder{}
	b.field(word, isa.FBImm12, slotOp3, immStr, false)
	b.field(word, isa.FBImm105, slotOp3, immStr, false)
	b.field(word, isa.FRs2, slotOp2, rs2Name, false)
	b.field(word, isa.FRs1, slotOp1, rs1Name, false)
	b.field(word, isa.FFunct3, slotMnemonic, en.Name, false)
	b.field(word, isa.FBImm41, slotOp3, immStr, false)
	b.field(word, isa.FBImm11, slotOp3, immStr, false)
	b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
	asm := en.Name + " " + rs1Name + ", " + rs2Name + ", " + immStr
	return b.result(word, en.Fmt, en.Isa, asm), nil
}

// decodeU handles LUI / AUIPC: U-type, immediate is the raw 20 bits
// rendered unsigned (not shifted).
func decodeU(word uint32, cfg isa.Config, bop isa.Opcode) (*instr.Result, error) {
	var en *isa.Entry
	if bop == isa.OpLUI {
		en = isa.Mnemonics["lui"]
	} else {
		en = isa.Mnemonics["auipc"]
	}
	immText, _ := bits.Slice(word, isa.FUImm.High, isa.FUImm.Width)
	immVal, err := bits.ParseImm(immText, false)
	if err != nil {
		return nil, err
	}
	_, rdName, _ := regField(cfg, word, isa.FRd, false)
	immStr := strconv.FormatInt(immVal, 10)
	b := &builder{}
	b.field(word, isa.FUImm, slotOp2, immStr, false)
	b.field(word, isa.FRd, slotOp1, rdName, false)
	b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
	asm := en.Name + " " + rdName + ", " + immStr
	return b.result(word, en.Fmt, en.Isa, asm), nil
}

// decodeJAL handles JAL: J-type.
func decodeJAL(word uint32, cfg isa.Config) (*instr.Result, error) {
	en := isa.Mnemonics["jal"]
	imm20, _ := bits.Slice(word, isa.FJImm20.High, isa.FJImm20.Width)
	imm101, _ := bits.Slice(word, isa.FJImm101.High, isa.FJImm101.Width)
	imm11, _ := bits.Slice(word, isa.FJImm11.High, isa.FJImm11.Width)
	imm1912, _ := bits.Slice(word, isa.FJImm1912.High, isa.FJImm1912.Width)
	immVal, err := bits.ParseImm(imm20+imm1912+imm11+imm101+"0", true)
	if err != nil {
		return nil, err
	}
	_, rdName, _ := regField(cfg, word, isa.FRd, false)
	immStr := strconv.FormatInt(immVal, 10)
	b := &builder{}
	b.field(word, isa.FJImm20, slotOp2, immStr, false)
	b.field(word, isa.FJImm101, slotOp2, immStr, false)
	b.field(word, isa.FJImm11, slotOp2, immStr, false)
	b.field(word, isa.FJImm1912, slotOp2, immStr, false)
	b.field(word, isa.FRd, slotOp1, rdName, false)
	b.field(word, isa.FOpcode, slotMnemonic, en.Name, false)
	asm := en.Name + " " + rdName + ", " + immStr
	return b.result(word, en.Fmt, en.Isa, asm), nil
}

// BuildFromEntry is the single entry point internal/encode uses once
// it has assembled a 32-bit word and already knows which mnemonic
// Entry it encoded: it re-decodes exactly that word through the same
// per-format Build logic Decode uses, guaranteeing encoder and decoder
// never disagree about the resulting fragments or rendered assembly.
func BuildFromEntry(word uint32, cfg isa.Config, en *isa.Entry) (*instr.Result, error) {
	switch en.Opcode {
	case isa.OpOp, isa.OpOp32:
		return decodeOp(word, cfg, tableFor(en.Opcode), en.Opcode == isa.OpOp32)
	case isa.OpAMO:
		return decodeAMO(word, cfg)
	case isa.OpOpFP:
		return decodeOpFP(word, cfg)
	case isa.OpLoad:
		return decodeLoad(word, cfg, isa.LoadTable, false)
	case isa.OpLoadFP:
		return decodeLoad(word, cfg, isa.LoadFPTable, true)
	case isa.OpJALR:
		return decodeJALR(word, cfg)
	case isa.OpOpImm:
		return decodeOpImm(word, cfg, isa.OpImmTable, false)
	case isa.OpOpImm32:
		return decodeOpImm(word, cfg, isa.OpImm32Table, true)
	case isa.OpMiscMem:
		return decodeMiscMem(word, cfg)
	case isa.OpSystem:
		return decodeSystem(word, cfg)
	case isa.OpStore:
		return decodeStore(word, cfg, isa.StoreTable, false)
	case isa.OpStoreFP:
		return decodeStore(word, cfg, isa.StoreFPTable, true)
	case isa.OpBranch:
		return decodeBranch(word, cfg)
	case isa.OpLUI, isa.OpAUIPC:
		return decodeU(word, cfg, en.Opcode)
	case isa.OpJAL:
		return decodeJAL(word, cfg)
	case isa.OpMadd, isa.OpMsub, isa.OpNmsub, isa.OpNmadd:
		return decodeR4(word, cfg, en.Opcode)
	default:
		return nil, rverr.New(rverr.InternalError, "no decoder for opcode %#x", en.Opcode)
	}
}

func tableFor(op isa.Opcode) map[string]*isa.Entry {
	if op == isa.OpOp32 {
		return isa.Op32Table
	}
	return isa.OpTable
}
