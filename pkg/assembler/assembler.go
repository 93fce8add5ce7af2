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
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/golang/glog"

	"github.com/kofishah3/logisim-sidescroller/pkg/encoding"
)

func ParseLine(text string) (line Line) {
	if i := strings.IndexByte(text, ';'); i != -1 {
		text = text[:i]
	}

	text = strings.TrimSpace(text)

	if text == "" {
		return
	}

	if i := strings.IndexByte(text, ':'); i != -1 {
		line.Label = strings.TrimSpace(text[:i])
		text = strings.TrimSpace(text[i+1:])
	}

	fields := strings.Fields(text)

	if len(fields) == 0 {
		return
	}

	line.Mnemonic = strings.ToUpper(fields[0])

	if len(fields) > 1 {
		line.Args = make([]string, 0, len(fields)-1)

		for _, field := range fields[1:] {
			line.Args = append(line.Args, strings.TrimRight(field, ","))
		}
	}

	return
}

func Lookup(mnemonic string) (Instruction, bool) {
	for _, instruction := range instructionTable {
		if instruction.Mnemonic == mnemonic {
			return instruction, true
		}
	}

	return Instruction{}, false
}

// Instructions returns a copy of the instruction table in opcode order.
func Instructions() []Instruction {
	result := make([]Instruction, len(instructionTable))
	copy(result, instructionTable[:])
	return result
}

func ResolveOperand(token string, labels LabelTable) (uint8, error) {
	if addr, exists := labels[token]; exists {
		return addr, nil
	}

	var base, name string
	var value uint64
	var err error

	switch {
	case strings.HasPrefix(token, "0x"), strings.HasPrefix(token, "0X"):
		base, name = "Hex", "hex"
		value, err = encoding.DecodeHex(token)
	case strings.HasPrefix(token, "0b"), strings.HasPrefix(token, "0B"):
		base, name = "Binary", "binary"
		value, err = encoding.DecodeBin(token)
	default:
		value, err = encoding.DecodeInt(token)

		if err == encoding.ErrSyntax {
			return 0, &UnresolvableOperandError{token}
		}

		base = "Decimal"
	}

	switch {
	case err == encoding.ErrRange:
		return 0, &OperandOutOfRangeError{base, token}
	case err != nil:
		return 0, &InvalidLiteralError{name, token}
	case value > MAX_ADDRESS:
		return 0, &OperandOutOfRangeError{base, token}
	}

	return uint8(value), nil
}

// pass holds the address counter of a single walk over the source. Both
// passes move the counter through origin and advance only, and ORG sees
// only the labels defined above it, so they agree on every address.
type pass struct {
	labels  LabelTable
	visible LabelTable
	program int
}

func (p *pass) origin(line *Line) error {
	if count := len(line.Args); count != 1 {
		return &MalformedDirectiveError{DIRECTIVE_ORG, count}
	}

	addr, err := ResolveOperand(line.Args[0], p.visible)

	if err != nil {
		return err
	}

	glog.V(2).Infof("Setting origin to %d", addr)
	p.program = int(addr)

	return nil
}

func (p *pass) advance() {
	p.program++
}

func FirstPass(lines []string) (LabelTable, error) {
	labels := make(LabelTable)
	p := pass{labels: labels, visible: labels}

	glog.V(1).Infof("Beginning pass 1 over %d lines", len(lines))

	for i, text := range lines {
		line := ParseLine(text)

		if line.IsEmpty() {
			continue
		}

		if line.Mnemonic == DIRECTIVE_ORG {
			if err := p.origin(&line); err != nil {
				return nil, &LineError{i + 1, err}
			}

			continue
		}

		if line.Label != "" {
			if _, exists := p.labels[line.Label]; exists {
				return nil, &LineError{i + 1, &RedeclaredLabelError{line.Label}}
			}

			if p.program > MAX_ADDRESS {
				return nil, &LineError{i + 1, &AddressOverflowError{p.program}}
			}

			glog.V(1).Infof("Defining %q at address %d", line.Label, p.program)
			p.labels[line.Label] = uint8(p.program)
		}

		if line.Mnemonic != "" {
			p.advance()
		}
	}

	return p.labels, nil
}

func SecondPass(lines []string, labels LabelTable) ([]Word, error) {
	p := pass{labels: labels, visible: make(LabelTable)}
	result := make([]Word, 0, len(lines))

	glog.V(1).Infof("Beginning pass 2 with %d labels", len(labels))

	for i, text := range lines {
		line := ParseLine(text)

		if line.Mnemonic == DIRECTIVE_ORG {
			if err := p.origin(&line); err != nil {
				return nil, &LineError{i + 1, err}
			}

			continue
		}

		if line.Label != "" {
			p.visible[line.Label] = labels[line.Label]
		}

		if line.Mnemonic == "" {
			continue
		}

		value, err := p.encode(&line)

		if err != nil {
			return nil, &LineError{i + 1, err}
		}

		if p.program > MAX_ADDRESS {
			return nil, &LineError{i + 1, &AddressOverflowError{p.program}}
		}

		glog.V(2).Infof(
			"emit %02d: %s (%s)",
			p.program, encoding.FormatWord(value), line.Mnemonic,
		)

		result = append(result, Word{uint8(p.program), value, i + 1})
		p.advance()
	}

	return result, nil
}

func (p *pass) encode(line *Line) (uint16, error) {
	instruction, exists := Lookup(line.Mnemonic)

	if !exists {
		return 0, &UnknownInstructionError{line.Mnemonic}
	}

	var operand uint8

	switch instruction.Arity {
	case ARITY_NONE:
		if count := len(line.Args); count != 0 {
			return 0, &ArityMismatchError{line.Mnemonic, 0, count}
		}
	case ARITY_ONE:
		if count := len(line.Args); count != 1 {
			return 0, &ArityMismatchError{line.Mnemonic, 1, count}
		}

		var err error

		if operand, err = ResolveOperand(line.Args[0], p.labels); err != nil {
			return 0, err
		}
	}

	return encoding.PackWord(uint8(instruction.Opcode), operand), nil
}

func assemble(lines []string, symtable *SymTable) ([]Word, error) {
	labels, err := FirstPass(lines)

	if err != nil {
		return nil, err
	}

	result, err := SecondPass(lines, labels)

	if err != nil {
		return nil, err
	}

	if symtable != nil {
		for _, word := range result {
			symtable.Symbols[word.Addr] = word.Line
		}

		names := make([]string, 0, len(labels))
		for name := range labels {
			names = append(names, name)
		}
		sort.Strings(names)

		// First name in sorted order wins when labels share an address
		for _, name := range names {
			if _, exists := symtable.Labels[labels[name]]; !exists {
				symtable.Labels[labels[name]] = name
			}
		}
	}

	return result, nil
}

// Assemble runs both passes over source. On failure no words are returned.
func Assemble(source string, symtable *SymTable) ([]Word, error) {
	return assemble(strings.Split(source, "\n"), symtable)
}

func AssembleReader(input io.Reader, symtable *SymTable) ([]Word, error) {
	var lines []string
	var scanner = bufio.NewScanner(input)

	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), MAX_LINE_BYTES)

	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, &LineError{len(lines) + 1, err}
	}

	return assemble(lines, symtable)
}

func AssembleHex(source string) ([]HexWord, error) {
	words, err := Assemble(source, nil)

	if err != nil {
		return nil, err
	}

	return ToHex(words), nil
}

func ToHex(words []Word) []HexWord {
	result := make([]HexWord, 0, len(words))

	for _, word := range words {
		result = append(result, HexWord{word.Addr, encoding.FormatWord(word.Value)})
	}

	return result
}
