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

package main

import (
	"testing"

	riscv "github.com/lmmilewski/riscv-codec"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		isaName string
		abi     bool
		want    riscv.Config
	}{
		{"rv32i", false, riscv.Config{ISA: riscv.RV32I, ABI: false}},
		{"RV64I", true, riscv.Config{ISA: riscv.RV64I, ABI: true}},
		{"", false, riscv.Config{ISA: riscv.RV32I, ABI: false}},
	}
	for _, tt := range tests {
		got, err := parseConfig(tt.isaName, tt.abi)
		if err != nil {
			t.Fatalf("parseConfig(%q, %v) unexpected error: %v", tt.isaName, tt.abi, err)
		}
		if got != tt.want {
			t.Errorf("parseConfig(%q, %v) = %+v, want %+v", tt.isaName, tt.abi, got, tt.want)
		}
	}
}

func TestParseConfigUnknownISA(t *testing.T) {
	if _, err := parseConfig("rv128i", false); err == nil {
		t.Error("parseConfig(\"rv128i\", false) = nil error, want an error")
	}
}
