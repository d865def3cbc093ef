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

// Dispatch is the tagged variant the decoder walks one level at a
// time: exactly one of its fields is non-nil. Modelled after the
// mask+shift recipe apparentlymart-riscv-meta/wrangle/argument_type.go
// folds into its own ArgDecodeStep sequence -- peel one layer, recurse
// if what's underneath is itself a table (§9 DESIGN NOTES).
type Dispatch struct {
	Direct    *Entry
	ByFunct3  map[string]*Dispatch
	ByRs2     map[string]*Dispatch
	ByFunct12 map[string]*Dispatch
	ByShtyp   map[string]*Entry
}

func direct(en *Entry) *Dispatch { return &Dispatch{Direct: en} }

// OP / OP-32: R-type register-register, keyed by funct7(7)+funct3(3).
var (
	OpTable   = map[string]*Entry{}
	Op32Table = map[string]*Entry{}
)

// OP-IMM / OP-IMM-32: I-type, keyed by funct3(3); shift mnemonics nest
// a further table keyed by the shtyp pattern.
var (
	OpImmTable   = map[string]*Dispatch{}
	OpImm32Table = map[string]*Dispatch{}
)

// LOAD / LOAD-FP / STORE / STORE-FP / BRANCH: keyed by funct3(3).
var (
	LoadTable    = map[string]*Entry{}
	LoadFPTable  = map[string]*Entry{}
	StoreTable   = map[string]*Entry{}
	StoreFPTable = map[string]*Entry{}
	BranchTable  = map[string]*Entry{}
)

// MISC-MEM: keyed by funct3(3).
var MiscMemTable = map[string]*Entry{}

// SYSTEM: keyed by funct3(3); funct3==0 nests a funct12(12)-keyed trap
// table, every other funct3 is a direct Zicsr entry.
var SystemTable = map[string]*Dispatch{}

// AMO: keyed by funct5(5)+funct3(3).
var AmoTable = map[string]*Entry{}

// OP-FP: funct5(5) -> fmt(2) -> Dispatch (Direct, ByFunct3 keyed by
// funct3(3), or ByRs2 keyed by rs2(5)).
var OpFPTable = map[string]map[string]*Dispatch{}

// MADD/MSUB/NMADD/NMSUB: keyed by fmt(2).
var (
	MaddTable  = map[string]*Entry{}
	MsubTable  = map[string]*Entry{}
	NmsubTable = map[string]*Entry{}
	NmaddTable = map[string]*Entry{}
)

func init() {
	for _, en := range Mnemonics {
		switch en.Opcode {
		case OpOp:
			OpTable[bitstr(en.Funct7, 7)+bitstr(en.Funct3, 3)] = en
		case OpOp32:
			Op32Table[bitstr(en.Funct7, 7)+bitstr(en.Funct3, 3)] = en
		case OpOpImm:
			insertOpImm(OpImmTable, en)
		case OpOpImm32:
			insertOpImm(OpImm32Table, en)
		case OpLoad:
			LoadTable[bitstr(en.Funct3, 3)] = en
		case OpLoadFP:
			LoadFPTable[bitstr(en.Funct3, 3)] = en
		case OpStore:
			StoreTable[bitstr(en.Funct3, 3)] = en
		case OpStoreFP:
			StoreFPTable[bitstr(en.Funct3, 3)] = en
		case OpBranch:
			BranchTable[bitstr(en.Funct3, 3)] = en
		case OpMiscMem:
			MiscMemTable[bitstr(en.Funct3, 3)] = en
		case OpSystem:
			insertSystem(en)
		case OpAMO:
			AmoTable[bitstr(en.Funct5, 5)+bitstr(en.Funct3, 3)] = en
		case OpOpFP:
			insertOpFP(en)
		case OpMadd:
			MaddTable[bitstr(en.Fmt2, 2)] = en
		case OpMsub:
			MsubTable[bitstr(en.Fmt2, 2)] = en
		case OpNmsub:
			NmsubTable[bitstr(en.Fmt2, 2)] = en
		case OpNmadd:
			NmaddTable[bitstr(en.Fmt2, 2)] = en
		}
	}
}

// ByShtyp is keyed by "0" (logical) or "1" (arithmetic), not by a
// fixed-width bit pattern: the pattern's width itself depends on
// whether the decoder is looking at a 5-bit or 6-bit shamt (RV32I vs
// RV64I, see shiftWidth and decodeShift in the decode package), so the dispatch table
// only records which logical shift-type exists for a given funct3 and
// leaves pattern validation to the caller.
func insertOpImm(tbl map[string]*Dispatch, en *Entry) {
	key := bitstr(en.Funct3, 3)
	if en.Shtyp < 0 {
		tbl[key] = direct(en)
		return
	}
	d, ok := tbl[key]
	if !ok || d.ByShtyp == nil {
		d = &Dispatch{ByShtyp: map[string]*Entry{}}
		tbl[key] = d
	}
	d.ByShtyp[bitstr(en.Shtyp, 1)] = en
}

func insertSystem(en *Entry) {
	key := bitstr(en.Funct3, 3)
	if en.Funct12 < 0 {
		SystemTable[key] = direct(en)
		return
	}
	d, ok := SystemTable[key]
	if !ok || d.ByFunct12 == nil {
		d = &Dispatch{ByFunct12: map[string]*Dispatch{}}
		SystemTable[key] = d
	}
	d.ByFunct12[bitstr(en.Funct12, 12)] = direct(en)
}

func insertOpFP(en *Entry) {
	fkey := bitstr(en.Funct5, 5)
	sub, ok := OpFPTable[fkey]
	if !ok {
		sub = map[string]*Dispatch{}
		OpFPTable[fkey] = sub
	}
	fmtKey := bitstr(en.Fmt2, 2)
	d, ok := sub[fmtKey]
	if !ok {
		d = &Dispatch{}
		sub[fmtKey] = d
	}
	switch {
	case en.Funct3 >= 0:
		if d.ByFunct3 == nil {
			d.ByFunct3 = map[string]*Dispatch{}
		}
		d.ByFunct3[bitstr(en.Funct3, 3)] = direct(en)
	case en.Funct7 >= 0: // rs2 used as a sub-opcode selector; see addFPEntries.
		if d.ByRs2 == nil {
			d.ByRs2 = map[string]*Dispatch{}
		}
		d.ByRs2[bitstr(en.Funct7, 5)] = direct(en)
	default:
		d.Direct = en
	}
}
