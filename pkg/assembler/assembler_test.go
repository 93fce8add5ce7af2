// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package assembler_test

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/kofishah3/logisim-sidescroller/pkg/assembler"
)

type testCase struct {
	Name     string
	Input    string
	Output   map[uint8]uint16
	SymTable *assembler.SymTable
}

type failCase struct {
	Name  string
	Input string
	Error error
	Line  int
}

func testAssemblerSuccess(t *testing.T, test *testCase) {
	var symtarget *assembler.SymTable = nil

	if test.SymTable != nil {
		symtarget = assembler.NewSymTable("")
	}

	result, err := assembler.Assemble(test.Input, symtarget)

	if err != nil {
		t.Fatal(err)
	}

	if count := len(result); count != len(test.Output) {
		t.Fatalf(
			"Invalid word count\n"+
				"want:%d\n"+
				"have:%d",
			len(test.Output),
			count,
		)
	}

	for _, word := range result {
		want, exists := test.Output[word.Addr]

		if !exists {
			t.Fatalf(
				"Unexpected instruction\n"+
					"want:nil\n"+
					"have:%#03x (result [%02d])",
				word.Value,
				word.Addr,
			)
		} else if word.Value != want {
			t.Fatalf(
				"Instruction encoding mismatch\n"+
					"want:%#03x (test.Output[%02d])\n"+
					"have:%#03x",
				want,
				word.Addr,
				word.Value,
			)
		}
	}

	if test.SymTable != nil {
		if !reflect.DeepEqual(symtarget.Symbols, test.SymTable.Symbols) {
			t.Fatalf(
				"Symtable symbols mismatch\nwant:%v\nhave:%v",
				test.SymTable.Symbols,
				symtarget.Symbols,
			)
		}

		if !reflect.DeepEqual(symtarget.Labels, test.SymTable.Labels) {
			t.Fatalf(
				"Symtable labels mismatch\nwant:%v\nhave:%v",
				test.SymTable.Labels,
				symtarget.Labels,
			)
		}
	}
}

func testAssemblerFail(t *testing.T, test *failCase) {
	if test.Error == nil {
		panic("Fail case missing error value")
	}

	result, err := assembler.Assemble(test.Input, nil)

	if err == nil {
		t.Fatalf(
			"%s produced no error\nwant:%T (test.Error)\nhave:<nil>",
			t.Name(),
			test.Error,
		)
	}

	if result != nil {
		t.Fatalf("%s returned words alongside an error: %v", t.Name(), result)
	}

	var lineErr *assembler.LineError

	if !errors.As(err, &lineErr) {
		t.Fatalf("%s produced an error without a line: %v", t.Name(), err)
	}

	if reflect.TypeOf(lineErr.Err) != reflect.TypeOf(test.Error) {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:%T",
			t.Name(),
			test.Error,
			lineErr.Err,
		)
	}

	if test.Line != 0 && lineErr.Line != test.Line {
		t.Fatalf(
			"%s reported wrong line\nwant:%d\nhave:%d",
			t.Name(),
			test.Line,
			lineErr.Line,
		)
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	t.Run("Success", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerSuccess(t, &test)
			})
		}
	})
}

func testFail(t *testing.T, tests []failCase) {
	t.Run("Fail", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerFail(t, &test)
			})
		}
	})
}

func TestInstructionTable(t *testing.T) {
	table := assembler.Instructions()

	if len(table) != 16 {
		t.Fatalf("Invalid table size\nwant:16\nhave:%d", len(table))
	}

	mnemonics := make(map[string]bool)

	for i, instruction := range table {
		if int(instruction.Opcode) != i {
			t.Fatalf(
				"%s out of opcode order\nwant:%d\nhave:%d",
				instruction.Mnemonic, i, instruction.Opcode,
			)
		}

		if mnemonics[instruction.Mnemonic] {
			t.Fatalf("Duplicate mnemonic %s", instruction.Mnemonic)
		}

		mnemonics[instruction.Mnemonic] = true

		if instruction.Arity != assembler.ARITY_NONE &&
			instruction.Arity != assembler.ARITY_ONE {
			t.Fatalf("%s has no arity class", instruction.Mnemonic)
		}

		if have, ok := assembler.Lookup(instruction.Mnemonic); !ok ||
			have != instruction {
			t.Fatalf("Lookup(%s) mismatch", instruction.Mnemonic)
		}
	}

	if _, ok := assembler.Lookup("SPAWN_FISH"); ok {
		t.Fatal("SPAWN_FISH should not be a known mnemonic")
	}
}

func TestZeroArgument(t *testing.T) {
	var tests []testCase

	for _, instruction := range assembler.Instructions() {
		if instruction.Arity != assembler.ARITY_NONE {
			continue
		}

		tests = append(tests, testCase{
			Name:  instruction.Mnemonic,
			Input: instruction.Mnemonic,
			Output: map[uint8]uint16{
				0: uint16(instruction.Opcode) << 5,
			},
		})
	}

	tests = append(tests, []testCase{
		{
			Name:   "Lowercase",
			Input:  `halt`,
			Output: map[uint8]uint16{0: 0b1000_00000},
		},
		{
			Name:   "SPAWN_OBSTACLE",
			Input:  `SPAWN_OBSTACLE`,
			Output: map[uint8]uint16{0: 0b1100_00000},
		},
	}...)

	testSuccess(t, tests)

	testFail(t, []failCase{
		{
			Name:  "HALT with argument",
			Input: `HALT 5`,
			Error: &assembler.ArityMismatchError{},
			Line:  1,
		},
		{
			Name:  "NOP with two arguments",
			Input: `NOP 1, 2`,
			Error: &assembler.ArityMismatchError{},
		},
	})
}

func TestOneArgument(t *testing.T) {
	var tests []testCase

	for _, instruction := range assembler.Instructions() {
		if instruction.Arity != assembler.ARITY_ONE {
			continue
		}

		for v := 0; v <= assembler.MAX_ADDRESS; v++ {
			want := map[uint8]uint16{
				0: uint16(instruction.Opcode)<<5 | uint16(v),
			}

			for _, literal := range []string{
				fmt.Sprintf("%d", v),
				fmt.Sprintf("0x%x", v),
				fmt.Sprintf("0X%X", v),
				fmt.Sprintf("0b%b", v),
				fmt.Sprintf("0B%05b", v),
			} {
				tests = append(tests, testCase{
					Name:   instruction.Mnemonic + " " + literal,
					Input:  instruction.Mnemonic + " " + literal,
					Output: want,
				})
			}
		}
	}

	testSuccess(t, tests)

	testFail(t, []failCase{
		{
			Name:  "MOV without argument",
			Input: `MOV`,
			Error: &assembler.ArityMismatchError{},
			Line:  1,
		},
		{
			Name:  "JMP with two arguments",
			Input: `JMP 1, 2`,
			Error: &assembler.ArityMismatchError{},
		},
	})
}

func TestLiteral(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "Decimal max",
			Input:  `MOV 31`,
			Output: map[uint8]uint16{0: 0b0111_11111},
		},
		{
			Name:   "Decimal sign",
			Input:  `MOV +7`,
			Output: map[uint8]uint16{0: 0b0111_00111},
		},
		{
			Name:   "Trailing comma",
			Input:  `OUT 0x1F,`,
			Output: map[uint8]uint16{0: 0b0101_11111},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Hex out of range",
			Input: `MOV 0x20`,
			Error: &assembler.OperandOutOfRangeError{},
		},
		{
			Name:  "Hex overflow",
			Input: `MOV 0xFFFFFFFFFFFFFFFFFFFF`,
			Error: &assembler.OperandOutOfRangeError{},
		},
		{
			Name:  "Binary out of range",
			Input: `MOV 0b100000`,
			Error: &assembler.OperandOutOfRangeError{},
		},
		{
			Name:  "Decimal out of range",
			Input: `MOV 32`,
			Error: &assembler.OperandOutOfRangeError{},
		},
		{
			Name:  "Negative decimal",
			Input: `MOV -1`,
			Error: &assembler.OperandOutOfRangeError{},
		},
		{
			Name:  "Invalid hex",
			Input: `MOV 0xZZ`,
			Error: &assembler.InvalidLiteralError{},
		},
		{
			Name:  "Empty hex",
			Input: `MOV 0x`,
			Error: &assembler.InvalidLiteralError{},
		},
		{
			Name:  "Invalid binary",
			Input: `MOV 0b102`,
			Error: &assembler.InvalidLiteralError{},
		},
		{
			Name:  "Unresolvable",
			Input: `JMP NOWHERE`,
			Error: &assembler.UnresolvableOperandError{},
		},
	})
}

func TestInstruction(t *testing.T) {
	testFail(t, []failCase{
		{
			Name:  "Unknown",
			Input: `FOO 1`,
			Error: &assembler.UnknownInstructionError{},
			Line:  1,
		},
		{
			Name:  "SPAWN_FISH",
			Input: `SPAWN_FISH`,
			Error: &assembler.UnknownInstructionError{},
		},
		{
			Name:  "Second colon",
			Input: `A: B: NOP`,
			Error: &assembler.UnknownInstructionError{},
		},
		{
			Name:  "Line number",
			Input: "\nNOP\n; comment\nFOO",
			Error: &assembler.UnknownInstructionError{},
			Line:  4,
		},
	})
}

func TestOrg(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "ORG",
			Input: `
			ORG 10
				NOP
				HALT
			`,
			Output: map[uint8]uint16{
				10: 0b0000_00000,
				11: 0b1000_00000,
			},
		},
		{
			Name: "ORG hex",
			Input: `
			org 0x1E
				MOVE_UP
				MOVE_DOWN
			`,
			Output: map[uint8]uint16{
				30: 0b1001_00000,
				31: 0b1010_00000,
			},
		},
		{
			Name: "ORG backwards label",
			Input: `
			ORG 4
			BASE:
			ORG 12
				JMP BASE
			ORG BASE
				HALT
			`,
			Output: map[uint8]uint16{
				12: 0b0001_00100,
				4:  0b1000_00000,
			},
		},
		{
			Name: "ORG literal before numeric label",
			Input: `
			ORG 3
				NOP
			3:	HALT
				JMP 3
			`,
			Output: map[uint8]uint16{
				3: 0b0000_00000,
				4: 0b1000_00000,
				5: 0b0001_00100,
			},
		},
		{
			Name: "Label on ORG line is ignored",
			Input: `
			SKIPPED: ORG 3
				NOP
			`,
			Output: map[uint8]uint16{
				3: 0b0000_00000,
			},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "ORG without argument",
			Input: `ORG`,
			Error: &assembler.MalformedDirectiveError{},
			Line:  1,
		},
		{
			Name:  "ORG with two arguments",
			Input: "NOP\nORG 1 2",
			Error: &assembler.MalformedDirectiveError{},
			Line:  2,
		},
		{
			Name:  "ORG forward label",
			Input: "ORG LATER\nLATER: NOP",
			Error: &assembler.UnresolvableOperandError{},
			Line:  1,
		},
		{
			Name:  "ORG out of range",
			Input: `ORG 32`,
			Error: &assembler.OperandOutOfRangeError{},
		},
		{
			Name:  "Instruction past memory",
			Input: "ORG 31\nNOP\nNOP",
			Error: &assembler.AddressOverflowError{},
			Line:  3,
		},
		{
			Name:  "Label past memory",
			Input: "ORG 31\nNOP\nEND:",
			Error: &assembler.AddressOverflowError{},
			Line:  3,
		},
	})
}

func TestWordOrder(t *testing.T) {
	for _, test := range []struct {
		Name   string
		Input  string
		Output []assembler.HexWord
	}{
		{
			Name:  "Backwards ORG",
			Input: "ORG 5\nNOP\nORG 2\nHALT",
			Output: []assembler.HexWord{
				{Addr: 5, Hex: "000"},
				{Addr: 2, Hex: "100"},
			},
		},
		{
			Name:  "ORG onto used address",
			Input: "NOP\nMOVE_UP\nORG 0\nHALT",
			Output: []assembler.HexWord{
				{Addr: 0, Hex: "000"},
				{Addr: 1, Hex: "120"},
				{Addr: 0, Hex: "100"},
			},
		},
		{
			Name:  "ORG numeric label after definition",
			Input: "ORG 6\n0x1: NOP\nORG 0x1\nHALT",
			Output: []assembler.HexWord{
				{Addr: 6, Hex: "000"},
				{Addr: 6, Hex: "100"},
			},
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			have, err := assembler.AssembleHex(test.Input)

			if err != nil {
				t.Fatal(err)
			}

			if !reflect.DeepEqual(have, test.Output) {
				t.Fatalf("want:%v\nhave:%v", test.Output, have)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Forwards Label",
			Input: `
				JMP TARGET
				NOP
				NOP
			TARGET: HALT
			`,
			Output: map[uint8]uint16{
				0: 0b0001_00011,
				1: 0b0000_00000,
				2: 0b0000_00000,
				3: 0b1000_00000,
			},
		},
		{
			Name: "Backwards Label",
			Input: `
			LOOP:
				MOVE_UP
				JEQ LOOP
			`,
			Output: map[uint8]uint16{
				0: 0b1001_00000,
				1: 0b0010_00000,
			},
		},
		{
			Name: "Label only lines",
			Input: `
				NOP
			A:
			B:
				STORE B
			`,
			Output: map[uint8]uint16{
				0: 0b0000_00000,
				1: 0b0011_00001,
			},
		},
		{
			Name: "Label shadows literal",
			Input: `
				NOP
			7:	CMP 7
			`,
			Output: map[uint8]uint16{
				0: 0b0000_00000,
				1: 0b0100_00001,
			},
		},
		{
			Name: "Label after comment colon",
			Input: `
				NOP ; see: below
				IN 3
			`,
			Output: map[uint8]uint16{
				0: 0b0000_00000,
				1: 0b0110_00011,
			},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Redeclared",
			Input: "A: NOP\nA: HALT",
			Error: &assembler.RedeclaredLabelError{},
			Line:  2,
		},
		{
			Name:  "Case sensitive",
			Input: "Start: NOP\nJMP start",
			Error: &assembler.UnresolvableOperandError{},
			Line:  2,
		},
	})
}

func TestErrorMessage(t *testing.T) {
	for _, test := range []struct {
		Input string
		Want  string
	}{
		{`HALT 5`, "Error on line 1: HALT takes no arguments"},
		{`MOV`, "Error on line 1: MOV requires exactly 1 argument"},
		{"NOP\nFOO 1", "Error on line 2: Unknown instruction: FOO"},
		{`JMP X`, "Error on line 1: Cannot resolve argument: X"},
		{`MOV 0x20`, "Error on line 1: Hex value 0x20 out of range (0-31)"},
		{`MOV 0b2`, "Error on line 1: Invalid binary number: 0b2"},
		{
			`ORG`,
			"Error on line 1: ORG directive requires exactly one argument (have 0)",
		},
	} {
		t.Run(test.Input, func(t *testing.T) {
			_, err := assembler.Assemble(test.Input, nil)

			if err == nil {
				t.Fatal("expected error")
			}

			if have := err.Error(); have != test.Want {
				t.Fatalf("want:%q\nhave:%q", test.Want, have)
			}
		})
	}
}

func TestSymtable(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Symtable",
			Input: ("ORG 2\n" +
				"START: NOP\n" +
				"\n" +
				"JMP START\n" +
				"END:\n" +
				"ALIAS: HALT"),
			Output: map[uint8]uint16{
				2: 0b0000_00000,
				3: 0b0001_00010,
				4: 0b1000_00000,
			},
			SymTable: &assembler.SymTable{
				Symbols: map[uint8]int{
					2: 2,
					3: 4,
					4: 6,
				},
				Labels: map[uint8]string{
					2: "START",
					4: "ALIAS",
				},
			},
		},
	})
}

func TestAssembleHex(t *testing.T) {
	result, err := assembler.AssembleHex(`
	ORG 0
	START: TITLE_SCREEN
	       JMP START
	`)

	if err != nil {
		t.Fatal(err)
	}

	want := []assembler.HexWord{
		{Addr: 0, Hex: "1E0"},
		{Addr: 1, Hex: "020"},
	}

	if !reflect.DeepEqual(result, want) {
		t.Fatalf("want:%v\nhave:%v", want, result)
	}
}

func TestDemoProgram(t *testing.T) {
	result, err := assembler.AssembleHex(assembler.DemoProgram)

	if err != nil {
		t.Fatal(err)
	}

	want := []assembler.HexWord{
		{0, "1E0"},
		{1, "02A"},
		{10, "1C0"},
		{11, "0EF"},
		{12, "08A"},
		{13, "054"},
		{14, "160"},
		{15, "02A"},
		{20, "1A0"},
		{21, "100"},
	}

	if !reflect.DeepEqual(result, want) {
		t.Fatalf("want:%v\nhave:%v", want, result)
	}
}

func TestAssembleReader(t *testing.T) {
	input := "START: NOP\r\nJMP START\r\n"

	fromReader, err := assembler.AssembleReader(strings.NewReader(input), nil)

	if err != nil {
		t.Fatal(err)
	}

	fromString, err := assembler.Assemble(input, nil)

	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(fromReader, fromString) {
		t.Fatalf("want:%v\nhave:%v", fromString, fromReader)
	}
}

func TestAssembleReaderLongLine(t *testing.T) {
	input := "NOP ; " + strings.Repeat("x", 1<<17) + "\nHALT\n"

	words, err := assembler.AssembleReader(strings.NewReader(input), nil)

	if err != nil {
		t.Fatal(err)
	}

	if len(words) != 2 || words[1].Value != 0b1000_00000 || words[1].Line != 2 {
		t.Fatalf("unexpected words %v", words)
	}
}

func TestIndependentRuns(t *testing.T) {
	if _, err := assembler.Assemble("A: NOP", nil); err != nil {
		t.Fatal(err)
	}

	// A label from a previous run must not leak into this one
	if _, err := assembler.Assemble("JMP A", nil); err == nil {
		t.Fatal("expected unresolvable label")
	}
}
