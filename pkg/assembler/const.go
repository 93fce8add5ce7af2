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

const (
	ARITY_NONE Arity = iota
	ARITY_ONE
)

const (
	// Control
	OPCODE_NOP   Opcode = 0b0000
	OPCODE_JMP          = 0b0001
	OPCODE_JEQ          = 0b0010
	OPCODE_STORE        = 0b0011
	OPCODE_CMP          = 0b0100
	OPCODE_OUT          = 0b0101
	OPCODE_IN           = 0b0110
	OPCODE_MOV          = 0b0111
	OPCODE_HALT         = 0b1000

	// Game peripherals
	OPCODE_MOVE_UP         = 0b1001
	OPCODE_MOVE_DOWN       = 0b1010
	OPCODE_SCORE_INCREMENT = 0b1011
	OPCODE_SPAWN_OBSTACLE  = 0b1100
	OPCODE_GAME_OVER       = 0b1101
	OPCODE_START_GAME      = 0b1110
	OPCODE_TITLE_SCREEN    = 0b1111
)

const DIRECTIVE_ORG = "ORG"

// Highest address of the target memory, also the largest operand.
const MAX_ADDRESS = 31

// Longest source line AssembleReader accepts.
const MAX_LINE_BYTES = 16 << 20

// Indexed by opcode.
var instructionTable = [16]Instruction{
	{"NOP", OPCODE_NOP, ARITY_NONE},
	{"JMP", OPCODE_JMP, ARITY_ONE},
	{"JEQ", OPCODE_JEQ, ARITY_ONE},
	{"STORE", OPCODE_STORE, ARITY_ONE},
	{"CMP", OPCODE_CMP, ARITY_ONE},
	{"OUT", OPCODE_OUT, ARITY_ONE},
	{"IN", OPCODE_IN, ARITY_ONE},
	{"MOV", OPCODE_MOV, ARITY_ONE},
	{"HALT", OPCODE_HALT, ARITY_NONE},
	{"MOVE_UP", OPCODE_MOVE_UP, ARITY_NONE},
	{"MOVE_DOWN", OPCODE_MOVE_DOWN, ARITY_NONE},
	{"SCORE_INCREMENT", OPCODE_SCORE_INCREMENT, ARITY_NONE},
	{"SPAWN_OBSTACLE", OPCODE_SPAWN_OBSTACLE, ARITY_NONE},
	{"GAME_OVER", OPCODE_GAME_OVER, ARITY_NONE},
	{"START_GAME", OPCODE_START_GAME, ARITY_NONE},
	{"TITLE_SCREEN", OPCODE_TITLE_SCREEN, ARITY_NONE},
}

// DemoProgram is the boot/game/end sample shipped with the assembler.
const DemoProgram = `
; Boot code at address 0
ORG 0
START:
    TITLE_SCREEN
    JMP GAME_CODE

; Game code at address 10
ORG 10
GAME_CODE:
    START_GAME
    MOV 15         ; Move value 15 to register
    CMP 10         ; Compare with 10
    JEQ END        ; Jump to END if equal
    SCORE_INCREMENT
    JMP GAME_CODE

; End routine at address 20
ORG 20
END:
    GAME_OVER
    HALT           ; Stop execution
`
