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


package image

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/kofishah3/logisim-sidescroller/pkg/assembler"
	"github.com/kofishah3/logisim-sidescroller/pkg/encoding"
)

func (img *Image) Reset() {
	for i := range img.Memory {
		img.Memory[i] = 0x000
		img.Used[i] = false
	}
}

func (img *Image) Store(addr uint8, value uint16) error {
	if int(addr) >= SIZE {
		return fmt.Errorf("Address %d outside image (0-%d)", addr, SIZE-1)
	}

	if value > encoding.WORD_MAX {
		return fmt.Errorf("Word %#x exceeds %d bits", value, encoding.WORD_BITS)
	}

	if img.Used[addr] {
		glog.Warningf(
			"Address %02d overwritten: %s -> %s",
			addr,
			encoding.FormatWord(img.Memory[addr]),
			encoding.FormatWord(value),
		)
	}

	img.Memory[addr] = value
	img.Used[addr] = true

	return nil
}

// Load resets the image and stores words in order, so a later word at the
// same address replaces an earlier one.
func (img *Image) Load(words []assembler.Word) error {
	img.Reset()

	for _, word := range words {
		if err := img.Store(word.Addr, word.Value); err != nil {
			return err
		}
	}

	return nil
}

// Len is one past the highest used address.
func (img *Image) Len() int {
	for i := SIZE - 1; i >= 0; i-- {
		if img.Used[i] {
			return i + 1
		}
	}

	return 0
}

func (img *Image) WriteLogisim(writer io.Writer) error {
	out := bufio.NewWriter(writer)
	tokens := make([]string, 0, SIZE)
	size := img.Len()

	for i := 0; i < size; {
		run := 1
		for i+run < size && img.Memory[i+run] == img.Memory[i] {
			run++
		}

		value := strconv.FormatUint(uint64(img.Memory[i]), 16)

		if run >= LOGISIM_RUN {
			tokens = append(tokens, fmt.Sprintf("%d*%s", run, value))
		} else {
			for j := 0; j < run; j++ {
				tokens = append(tokens, value)
			}
		}

		i += run
	}

	fmt.Fprintln(out, LOGISIM_HEADER)

	for i := 0; i < len(tokens); i += 8 {
		end := i + 8
		if end > len(tokens) {
			end = len(tokens)
		}

		fmt.Fprintln(out, strings.Join(tokens[i:end], " "))
	}

	return out.Flush()
}

// ReadLogisim parses a v2.0 raw memory file. Addresses the file does not
// reach stay unused.
func ReadLogisim(reader io.Reader) (*Image, error) {
	var img Image
	var scanner = bufio.NewScanner(reader)
	var addr = 0

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}

		return nil, errors.New("Empty memory file")
	}

	if strings.TrimSpace(scanner.Text()) != LOGISIM_HEADER {
		return nil, fmt.Errorf("Invalid memory file header %q", scanner.Text())
	}

	for scanner.Scan() {
		line := scanner.Text()

		if i := strings.IndexByte(line, '#'); i != -1 {
			line = line[:i]
		}

		for _, token := range strings.Fields(line) {
			count := 1

			if i := strings.IndexByte(token, '*'); i != -1 {
				n, err := strconv.Atoi(token[:i])

				if err != nil || n < 1 {
					return nil, fmt.Errorf("Invalid run length %q", token)
				}

				count = n
				token = token[i+1:]
			}

			value, err := encoding.ParseWord(token)

			if err != nil {
				return nil, fmt.Errorf("Invalid memory word %q: %w", token, err)
			}

			if addr+count > SIZE {
				return nil, fmt.Errorf(
					"Memory file exceeds %d words", SIZE,
				)
			}

			for ; count > 0; count-- {
				img.Memory[addr] = value
				img.Used[addr] = true
				addr++
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &img, nil
}

// WriteBin writes every memory cell as a big-endian 16-bit word.
func (img *Image) WriteBin(writer io.Writer) error {
	return binary.Write(writer, binary.BigEndian, img.Memory)
}

func (img *Image) LoadBin(reader io.Reader) error {
	img.Reset()

	scratch := make([]byte, 2)
	index := 0

	for index < SIZE {
		_, err := io.ReadFull(reader, scratch)

		if err == io.EOF {
			return nil
		} else if err == io.ErrUnexpectedEOF {
			return errors.New("Error reading binary")
		} else if err != nil {
			return err
		}

		value := binary.BigEndian.Uint16(scratch)

		if value > encoding.WORD_MAX {
			return fmt.Errorf("Word %#x exceeds %d bits", value, encoding.WORD_BITS)
		}

		img.Memory[index] = value
		img.Used[index] = true
		index++
	}

	return nil
}
