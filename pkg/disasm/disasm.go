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


package disasm

import (
	"fmt"

	"github.com/kofishah3/logisim-sidescroller/pkg/assembler"
	"github.com/kofishah3/logisim-sidescroller/pkg/encoding"
)

var instructions = assembler.Instructions()

// Jump targets are shown by label when a symbol table names them.
func isJump(opcode assembler.Opcode) bool {
	return opcode == assembler.OPCODE_JMP || opcode == assembler.OPCODE_JEQ
}

func Disasm(word uint16, symtable *assembler.SymTable) string {
	opcode, operand := encoding.UnpackWord(word)
	instruction := instructions[opcode]

	if instruction.Arity == assembler.ARITY_NONE {
		if operand != 0 {
			return fmt.Sprintf("%s ; operand %d ignored", instruction.Mnemonic, operand)
		}

		return instruction.Mnemonic
	}

	if symtable != nil && isJump(instruction.Opcode) {
		if label, exists := symtable.Labels[operand]; exists {
			return fmt.Sprintf("%s %s", instruction.Mnemonic, label)
		}
	}

	return fmt.Sprintf("%s %d", instruction.Mnemonic, operand)
}
