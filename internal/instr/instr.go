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

// Package instr holds the Result type produced by both
// internal/decode and internal/encode, re-exported unchanged by the
// root riscv package as InstructionResult.
package instr

import "github.com/lmmilewski/riscv-codec/internal/fragment"

// Result is the uniform outcome of decoding a word or encoding an
// assembly line.
type Result struct {
	Hex      string
	Bin      string
	Asm      string
	Fmt      string
	Isa      string
	BinFrags []fragment.Fragment
	AsmFrags []fragment.Fragment
}
