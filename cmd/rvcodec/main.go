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

// rvcodec is a command-line front end for the riscv codec: it reads
// either an encoded word (hex or binary) or an assembly line and
// prints the translation in the other direction.
//
//   rvcodec add x10, x11, x12
//   rvcodec -isa=rv64i 0x00c58533
//   echo "jal x1, 8" | rvcodec
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	riscv "github.com/lmmilewski/riscv-codec"
	"github.com/lmmilewski/riscv-codec/internal/bits"
)

var (
	isaFlag = flag.String("isa", "rv32i", "ISA profile: rv32i or rv64i")
	abi     = flag.Bool("abi", false, "use ABI register names on output")
	debug   = flag.Bool("debug", false, "dump the full result, including fragments, instead of the one-line summary")
)

func main() {
	flag.Parse()

	cfg, err := parseConfig(*isaFlag, *abi)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rvcodec: %v\n", err)
		os.Exit(1)
	}

	// Positional args form a single instruction line, the way a shell
	// invocation like "rvcodec add x10, x11, x12" splits on spaces but
	// means one line of assembly, not three separate inputs.
	var lines []string
	if flag.NArg() > 0 {
		lines = []string{strings.Join(flag.Args(), " ")}
	} else {
		lines = readStdin()
	}

	status := 0
	for _, line := range lines {
		if err := process(line, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "rvcodec: %s: %v\n", line, err)
			status = 1
		}
	}
	os.Exit(status)
}

func parseConfig(isaName string, abi bool) (riscv.Config, error) {
	switch strings.ToLower(isaName) {
	case "rv32i", "":
		return riscv.Config{ISA: riscv.RV32I, ABI: abi}, nil
	case "rv64i":
		return riscv.Config{ISA: riscv.RV64I, ABI: abi}, nil
	default:
		return riscv.Config{}, fmt.Errorf("unknown -isa %q, want rv32i or rv64i", isaName)
	}
}

func readStdin() []string {
	var lines []string
	s := bufio.NewScanner(os.Stdin)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func process(line string, cfg riscv.Config) error {
	res, err := riscv.Instruction(line, cfg)
	if err != nil {
		return err
	}
	if *debug {
		spew.Dump(res)
		return nil
	}
	trimmed := strings.TrimSpace(line)
	if bits.IsHexWord(trimmed) || bits.IsBinWord(trimmed) {
		fmt.Println(res.Asm)
	} else {
		fmt.Println(res.Hex)
	}
	return nil
}
