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

package encoding

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	OPCODE_BITS  = 4
	OPERAND_BITS = 5
	WORD_BITS    = OPCODE_BITS + OPERAND_BITS

	OPERAND_MAX = (1 << OPERAND_BITS) - 1
	OPCODE_MAX  = (1 << OPCODE_BITS) - 1
	WORD_MAX    = (1 << WORD_BITS) - 1
)

var ErrSyntax = errors.New("invalid digits")
var ErrRange = errors.New("value out of range")

func decode(s string, base int) (uint64, error) {
	if s == "" {
		return 0, ErrSyntax
	}

	result, err := strconv.ParseUint(s, base, 64)

	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok &&
			numErr.Err == strconv.ErrRange {
			return 0, ErrRange
		}

		return 0, ErrSyntax
	}

	return result, nil
}

// Decodes a hexadecimal string in the formats: 0x1F, 0X1f
func DecodeHex(s string) (uint64, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return 0, ErrSyntax
	}

	return decode(s[2:], 16)
}

// Decodes a binary string in the formats: 0b11111, 0B101
func DecodeBin(s string) (uint64, error) {
	if !strings.HasPrefix(s, "0b") && !strings.HasPrefix(s, "0B") {
		return 0, ErrSyntax
	}

	return decode(s[2:], 2)
}

// Decodes a base-10 string. A leading sign is accepted, negative values are
// reported as ErrRange since no operand can hold them.
func DecodeInt(s string) (uint64, error) {
	result, err := strconv.ParseInt(s, 10, 64)

	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok &&
			numErr.Err == strconv.ErrRange {
			return 0, ErrRange
		}

		return 0, ErrSyntax
	}

	if result < 0 {
		return 0, ErrRange
	}

	return uint64(result), nil
}

func PackWord(opcode uint8, operand uint8) uint16 {
	return (uint16(opcode&OPCODE_MAX) << OPERAND_BITS) |
		uint16(operand&OPERAND_MAX)
}

func UnpackWord(word uint16) (opcode uint8, operand uint8) {
	opcode = uint8((word >> OPERAND_BITS) & OPCODE_MAX)
	operand = uint8(word & OPERAND_MAX)
	return
}

// FormatWord renders a machine word as three uppercase hex digits.
func FormatWord(word uint16) string {
	return fmt.Sprintf("%03X", word&WORD_MAX)
}

// ParseWord is the inverse of FormatWord and accepts any case.
func ParseWord(s string) (uint16, error) {
	result, err := decode(s, 16)

	if err != nil {
		return 0, err
	}

	if result > WORD_MAX {
		return 0, ErrRange
	}

	return uint16(result), nil
}

// FormatBits renders the low n bits of value, most significant first.
func FormatBits(value uint16, n int) string {
	var builder strings.Builder
	builder.Grow(n)

	for i := n - 1; i >= 0; i-- {
		if (value>>uint(i))&0x1 == 1 {
			builder.WriteByte('1')
		} else {
			builder.WriteByte('0')
		}
	}

	return builder.String()
}
