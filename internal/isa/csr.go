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

import (
	"fmt"
	"strings"
)

// CSRNames maps a 12-bit unsigned CSR address to its standard name.
// riscv-privileged-v1.10; Chapter 2. LMMilewski-riscv-emu/rvi.go reads
// and writes vm.CSR[in.imm] by raw numeric address only (RDCYCLE,
// RDTIME, RDINSTRET constants in vm.go); this table generalizes that
// to every standard CSR name the encoder/decoder round-trip through.
var CSRNames = map[int]string{
	0x001: "fflags",
	0x002: "frm",
	0x003: "fcsr",
	0xc00: "cycle",
	0xc01: "time",
	0xc02: "instret",
	0xc80: "cycleh",
	0xc81: "timeh",
	0xc82: "instreth",
	0x100: "sstatus",
	0x104: "sie",
	0x105: "stvec",
	0x106: "scounteren",
	0x140: "sscratch",
	0x141: "sepc",
	0x142: "scause",
	0x143: "stval",
	0x144: "sip",
	0x180: "satp",
	0x300: "mstatus",
	0x301: "misa",
	0x302: "medeleg",
	0x303: "mideleg",
	0x304: "mie",
	0x305: "mtvec",
	0x306: "mcounteren",
	0x340: "mscratch",
	0x341: "mepc",
	0x342: "mcause",
	0x343: "mtval",
	0x344: "mip",
	0xf11: "mvendorid",
	0xf12: "marchid",
	0xf13: "mimpid",
	0xf14: "mhartid",
}

var csrAddrs = invertCSRNames()

func invertCSRNames() map[string]int {
	m := make(map[string]int, len(CSRNames))
	for addr, name := range CSRNames {
		m[name] = addr
	}
	return m
}

// CSRName renders a 12-bit CSR address as its standard name, or as
// "0xNNN" (lowercase, zero-padded to three hex digits) when the
// address is not a recognized standard CSR.
func CSRName(addr int) string {
	if name, ok := CSRNames[addr]; ok {
		return name
	}
	return fmt.Sprintf("0x%03x", addr)
}

// ParseCSR resolves a known CSR name (case-insensitively) to its
// address. Numeric literals are not parsed here; it reports false for
// any token that is not a known name.
func ParseCSR(tok string) (int, bool) {
	if addr, ok := csrAddrs[strings.ToLower(tok)]; ok {
		return addr, true
	}
	return 0, false
}
