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

// Package fragment holds the Fragment value type shared by the decoder
// and the encoder: the one piece of data that makes this codec a
// visualization tool rather than a plain assembler, since it ties
// every contiguous bit-slice of an encoded word to the assembly token
// it contributes to.
package fragment

import "sort"

// Fragment is an immutable record pairing one contiguous bit-slice of
// a 32-bit encoded word with the role it plays in the rendered
// assembly.
type Fragment struct {
	// Assembly is the token this slice contributes to the rendered
	// assembly (e.g. "x5", "-12", "add"). Fragments with no operand
	// role (opcode, funct fields, reserved bits) carry the mnemonic.
	Assembly string
	// Bits is the binary text of the slice, MSB first.
	Bits string
	// Field is the field descriptor name (e.g. "opcode", "rs1").
	Field string
	// Mem is true iff this fragment is the base register rendered
	// inside offset(base) memory syntax.
	Mem bool
	// Index is the bit position of the slice's least significant bit
	// within the 32-bit word; used for stable MSB->LSB ordering.
	Index int
}

// New builds a Fragment from a field name, its already-sliced bit
// text, the bit-index of the slice's LSB, the assembly token it
// renders as and whether it is a memory-form base register.
func New(field, bitsText string, index int, assembly string, mem bool) Fragment {
	return Fragment{Assembly: assembly, Bits: bitsText, Field: field, Mem: mem, Index: index}
}

// SortBin sorts frags MSB->LSB in place, i.e. by decreasing bit index,
// the order binFrags must be reported in.
func SortBin(frags []Fragment) {
	sort.SliceStable(frags, func(i, j int) bool { return frags[i].Index > frags[j].Index })
}

// Concat concatenates the Bits of frags in their current order. Called
// on a MSB->LSB sorted slice this reconstructs the 32-bit word text.
func Concat(frags []Fragment) string {
	var out []byte
	for _, f := range frags {
		out = append(out, f.Bits...)
	}
	return string(out)
}

// TotalWidth returns the sum of len(Bits) across frags.
func TotalWidth(frags []Fragment) int {
	n := 0
	for _, f := range frags {
		n += len(f.Bits)
	}
	return n
}

// Order builds the two aligned fragment orderings an InstructionResult
// reports: binFrags (MSB->LSB across the 32-bit word) and asmFrags
// (grouped by the assembly operand slot the fragment belongs to, in
// the order those slots are written). slots[i] is the operand-slot
// index of frags[i] -- by convention slot 0 is the mnemonic (the
// opcode/funct/fixed-pattern fields that carry no operand of their
// own), and slots 1..N are the operands in the order they're written.
// The decoder is the only caller; the encoder reaches it through
// decode.BuildFromEntry on its assembled word, so both directions get
// slots assigned from the same bit layout, which is what keeps them
// from drifting apart (§9 Fragment co-construction).
func Order(frags []Fragment, slots []int) (binFrags, asmFrags []Fragment) {
	bin := make([]Fragment, len(frags))
	copy(bin, frags)
	SortBin(bin)

	type indexed struct {
		f    Fragment
		slot int
	}
	tmp := make([]indexed, len(frags))
	for i, f := range frags {
		tmp[i] = indexed{f, slots[i]}
	}
	sort.SliceStable(tmp, func(i, j int) bool {
		if tmp[i].slot != tmp[j].slot {
			return tmp[i].slot < tmp[j].slot
		}
		return tmp[i].f.Index > tmp[j].f.Index
	})
	asm := make([]Fragment, len(tmp))
	for i, t := range tmp {
		asm[i] = t.f
	}
	return bin, asm
}
