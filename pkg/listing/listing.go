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


package listing

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kofishah3/logisim-sidescroller/pkg/assembler"
	"github.com/kofishah3/logisim-sidescroller/pkg/disasm"
	"github.com/kofishah3/logisim-sidescroller/pkg/encoding"
)

// WriteHex writes one "address: HEX" pair per line, the form Logisim's
// memory editor accepts when pasting.
func WriteHex(writer io.Writer, words []assembler.HexWord) error {
	out := bufio.NewWriter(writer)

	for _, word := range words {
		fmt.Fprintf(out, "%d: %s\n", word.Addr, word.Hex)
	}

	return out.Flush()
}

// WriteListing annotates each word with its bits, its disassembly and the
// source line it came from. source may be nil.
func WriteListing(
	writer io.Writer,
	words []assembler.Word,
	symtable *assembler.SymTable,
	source []string,
) error {
	out := bufio.NewWriter(writer)

	for _, word := range words {
		if symtable != nil {
			if label, exists := symtable.Labels[word.Addr]; exists {
				fmt.Fprintf(out, "%s:\n", label)
			}
		}

		opcode, operand := encoding.UnpackWord(word.Value)

		fmt.Fprintf(
			out,
			"Address %02d: %s  %s %s  %-20s",
			word.Addr,
			encoding.FormatWord(word.Value),
			encoding.FormatBits(uint16(opcode), encoding.OPCODE_BITS),
			encoding.FormatBits(uint16(operand), encoding.OPERAND_BITS),
			disasm.Disasm(word.Value, symtable),
		)

		if word.Line > 0 && word.Line <= len(source) {
			fmt.Fprintf(out, " ; %d: %s", word.Line, strings.TrimSpace(source[word.Line-1]))
		}

		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "\nTotal instructions: %d\n", len(words))

	return out.Flush()
}
