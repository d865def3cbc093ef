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

package bits

import "testing"

func TestSlice(t *testing.T) {
	tests := []struct {
		desc        string
		word        uint32
		high, width int
		want        string
		wantErr     bool
	}{
		{desc: "opcode of add x10,x11,x12", word: 0x00c58533, high: 6, width: 7, want: "0110011"},
		{desc: "funct7 of add", word: 0x00c58533, high: 31, width: 7, want: "0000000"},
		{desc: "full word", word: 0xffffffff, high: 31, width: 32, want: "11111111111111111111111111111111"},
		{desc: "zero width", word: 1, high: 5, width: 0, wantErr: true},
		{desc: "high out of range", word: 1, high: 32, width: 1, wantErr: true},
		{desc: "underflow", word: 1, high: 3, width: 10, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := Slice(tt.word, tt.high, tt.width)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Slice(%#x,%d,%d) = %q, want error", tt.word, tt.high, tt.width, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Slice(%#x,%d,%d) unexpected error: %v", tt.word, tt.high, tt.width, err)
			}
			if got != tt.want {
				t.Errorf("Slice(%#x,%d,%d) = %q, want %q", tt.word, tt.high, tt.width, got, tt.want)
			}
		})
	}
}

func TestParseImm(t *testing.T) {
	tests := []struct {
		desc        string
		text        string
		signExtend  bool
		want        int64
		wantErr     bool
	}{
		{desc: "positive signed", text: "011111111111", signExtend: true, want: 2047},
		{desc: "negative signed -1", text: "111111111111", signExtend: true, want: -1},
		{desc: "negative signed -2048", text: "100000000000", signExtend: true, want: -2048},
		{desc: "unsigned", text: "111111111111", signExtend: false, want: 4095},
		{desc: "empty", text: "", wantErr: true},
		{desc: "bad char", text: "102", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := ParseImm(tt.text, tt.signExtend)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseImm(%q,%v) = %d, want error", tt.text, tt.signExtend, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseImm(%q,%v) unexpected error: %v", tt.text, tt.signExtend, err)
			}
			if got != tt.want {
				t.Errorf("ParseImm(%q,%v) = %d, want %d", tt.text, tt.signExtend, got, tt.want)
			}
		})
	}
}

func TestEmitImm(t *testing.T) {
	tests := []struct {
		desc    string
		value   int64
		width   int
		signed  bool
		want    string
		wantErr bool
	}{
		{desc: "-1 in 12 bits signed", value: -1, width: 12, signed: true, want: "111111111111"},
		{desc: "-2048 in 12 bits signed", value: -2048, width: 12, signed: true, want: "100000000000"},
		{desc: "2047 in 12 bits signed", value: 2047, width: 12, signed: true, want: "011111111111"},
		{desc: "2048 overflows 12-bit signed", value: 2048, width: 12, signed: true, wantErr: true},
		{desc: "31 in 5 bits unsigned", value: 31, width: 5, signed: false, want: "11111"},
		{desc: "32 overflows 5-bit unsigned", value: 32, width: 5, signed: false, wantErr: true},
		{desc: "negative unsigned rejected", value: -1, width: 5, signed: false, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := EmitImm(tt.value, tt.width, tt.signed)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("EmitImm(%d,%d,%v) = %q, want error", tt.value, tt.width, tt.signed, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("EmitImm(%d,%d,%v) unexpected error: %v", tt.value, tt.width, tt.signed, err)
			}
			if got != tt.want {
				t.Errorf("EmitImm(%d,%d,%v) = %q, want %q", tt.value, tt.width, tt.signed, got, tt.want)
			}
		})
	}
}

func TestWordHexBinRoundTrip(t *testing.T) {
	tests := []uint32{0x00c58533, 0xfff00093, 0x80000093, 0, 0xffffffff}
	for _, w := range tests {
		hex := WordToHex(w)
		got, err := WordFromHex(hex)
		if err != nil {
			t.Fatalf("WordFromHex(%q) unexpected error: %v", hex, err)
		}
		if got != w {
			t.Errorf("WordFromHex(WordToHex(%#x)) = %#x, want %#x", w, got, w)
		}

		bin := WordToBin(w)
		got, err = WordFromBin(bin)
		if err != nil {
			t.Fatalf("WordFromBin(%q) unexpected error: %v", bin, err)
		}
		if got != w {
			t.Errorf("WordFromBin(WordToBin(%#x)) = %#x, want %#x", w, got, w)
		}
	}
}

func TestIsHexWordIsBinWord(t *testing.T) {
	if !IsHexWord("0x00c58533") {
		t.Errorf("IsHexWord(0x00c58533) = false, want true")
	}
	if !IsHexWord("00c58533") {
		t.Errorf("IsHexWord(00c58533) = false, want true")
	}
	if IsHexWord("add x10, x11, x12") {
		t.Errorf("IsHexWord(asm) = true, want false")
	}
	bin32 := WordToBin(0x00c58533)
	if !IsBinWord(bin32) {
		t.Errorf("IsBinWord(%q) = false, want true", bin32)
	}
	if IsBinWord("not binary") {
		t.Errorf("IsBinWord(asm) = true, want false")
	}
}
