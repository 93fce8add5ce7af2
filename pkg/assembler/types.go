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

package assembler

import (
	"fmt"
)

type Arity uint
type Opcode uint8

type Instruction struct {
	Mnemonic string
	Opcode   Opcode
	Arity    Arity
}

// Line is one parsed source line. Empty Label and Mnemonic mean absent.
type Line struct {
	Label    string
	Mnemonic string
	Args     []string
}

func (line *Line) IsEmpty() bool {
	return line.Label == "" && line.Mnemonic == ""
}

type LabelTable map[string]uint8

// Word is a 9-bit machine word placed at Addr, assembled from source Line.
type Word struct {
	Addr  uint8
	Value uint16
	Line  int
}

type HexWord struct {
	Addr uint8
	Hex  string
}

type SymTable struct {
	Source  string
	Symbols map[uint8]int
	Labels  map[uint8]string
}

func NewSymTable(source string) *SymTable {
	return &SymTable{
		Source:  source,
		Symbols: make(map[uint8]int),
		Labels:  make(map[uint8]string),
	}
}

type LineError struct {
	Line int
	Err  error
}

func (err *LineError) Error() string {
	return fmt.Sprintf("Error on line %d: %s", err.Line, err.Err)
}

func (err *LineError) Unwrap() error {
	return err.Err
}

type MalformedDirectiveError struct {
	Directive string
	Received  int
}

func (err *MalformedDirectiveError) Error() string {
	return fmt.Sprintf(
		"%s directive requires exactly one argument (have %d)",
		err.Directive,
		err.Received,
	)
}

type UnresolvableOperandError struct {
	Received string
}

func (err *UnresolvableOperandError) Error() string {
	return fmt.Sprintf("Cannot resolve argument: %s", err.Received)
}

type InvalidLiteralError struct {
	Base     string
	Received string
}

func (err *InvalidLiteralError) Error() string {
	return fmt.Sprintf("Invalid %s number: %s", err.Base, err.Received)
}

type OperandOutOfRangeError struct {
	Base     string
	Received string
}

func (err *OperandOutOfRangeError) Error() string {
	return fmt.Sprintf(
		"%s value %s out of range (0-%d)",
		err.Base,
		err.Received,
		MAX_ADDRESS,
	)
}

type UnknownInstructionError struct {
	Received string
}

func (err *UnknownInstructionError) Error() string {
	return fmt.Sprintf("Unknown instruction: %s", err.Received)
}

type ArityMismatchError struct {
	Mnemonic string
	Required int
	Received int
}

func (err *ArityMismatchError) Error() string {
	if err.Required == 0 {
		return fmt.Sprintf("%s takes no arguments", err.Mnemonic)
	}

	return fmt.Sprintf(
		"%s requires exactly %d argument", err.Mnemonic, err.Required,
	)
}

type RedeclaredLabelError struct {
	Received string
}

func (err *RedeclaredLabelError) Error() string {
	return fmt.Sprintf("Redeclaration of label '%s'", err.Received)
}

type AddressOverflowError struct {
	Received int
}

func (err *AddressOverflowError) Error() string {
	return fmt.Sprintf(
		"Address %d exceeds program memory (0-%d)", err.Received, MAX_ADDRESS,
	)
}
