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


package main

import (
	"bytes"
	"encoding/gob"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/kofishah3/logisim-sidescroller/pkg/assembler"
	"github.com/kofishah3/logisim-sidescroller/pkg/image"
	"github.com/kofishah3/logisim-sidescroller/pkg/listing"
)

const (
	FORMAT_HEX     = "hex"
	FORMAT_LISTING = "listing"
	FORMAT_LOGISIM = "logisim"
	FORMAT_BIN     = "bin"
)

var debugvar bool
var dumpvar bool
var demovar bool
var outvar string
var formatvar string

var status int

var rootCmd = &cobra.Command{
	Use:   "lsasm [flags] [filename]",
	Short: "Assembler for the Logisim side-scroller CPU",
	Long: `Lsasm translates assembly for the 16-instruction side-scroller CPU into
9-bit machine words, one per address, ready for a Logisim RAM or ROM.

Source is read from the named file, or from stdin when it is redirected.
Output is written as "address: HEX" pairs by default. The logisim format
produces a "v2.0 raw" image for the memory component's Load Image menu.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// glog reads its settings from the Go flag set
		return flag.CommandLine.Parse(nil)
	},
	Run: func(cmd *cobra.Command, args []string) {
		status = lsasm(cmd, args)
	},
}

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}

func init() {
	if err := flag.Set("logtostderr", "true"); err != nil {
		panic(err)
	}

	rootCmd.Flags().BoolVar(
		&debugvar, "debug", false,
		"Specifies whether to generate debugging information as a symbol "+
			"table. The table will use the output filename with extension "+
			"'.lsdb'",
	)
	rootCmd.Flags().BoolVar(
		&dumpvar, "dump-symbols", false,
		"Prints the symbol table to stderr after assembling",
	)
	rootCmd.Flags().BoolVar(
		&demovar, "demo", false,
		"Assembles the built-in sample program instead of reading input",
	)
	rootCmd.Flags().StringVarP(
		&outvar, "out", "o", "",
		"Specifies a precise name for the output file, "+
			"overriding the default means of determining it",
	)
	rootCmd.Flags().StringVarP(
		&formatvar, "format", "f", FORMAT_HEX,
		"Output format: hex, listing, logisim or bin",
	)
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

func setPrefix(name string, color bool) {
	if color {
		log.SetPrefix(fmt.Sprintf("\033[1m%s:\033[0m ", name))
	} else {
		log.SetPrefix(name + ": ")
	}
}

// defaultOutput picks the output path when -o is absent. An empty result
// means stdout.
func defaultOutput(infile string, format string) string {
	var ext string

	switch format {
	case FORMAT_LOGISIM:
		ext = ".img"
	case FORMAT_BIN:
		ext = ".bin"
	default:
		return ""
	}

	if infile == "" {
		return "out" + ext
	}

	filename := filepath.Base(infile)
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ext
}

func lsasm(cmd *cobra.Command, args []string) int {
	color := isTerminal(os.Stderr)

	switch formatvar {
	case FORMAT_HEX, FORMAT_LISTING, FORMAT_LOGISIM, FORMAT_BIN:
	default:
		log.Printf("Unknown output format '%s'", formatvar)
		return 1
	}

	var infile string
	var input io.Reader

	if demovar {
		input = strings.NewReader(assembler.DemoProgram)
		setPrefix("<demo>", color)
	} else if !isTerminal(os.Stdin) && len(args) == 0 {
		input = os.Stdin
		setPrefix("<stdin>", color)
	} else {
		if len(args) != 1 {
			log.Println(cmd.UseLine())
			return 1
		}

		file, err := os.Open(args[0])

		if err != nil {
			log.Println(err)
			return 1
		}

		defer file.Close()

		filename := filepath.Base(file.Name())

		if stat, err := file.Stat(); err != nil {
			log.Println(err)
			return 1
		} else if stat.IsDir() {
			log.Printf("%s is not a valid assembly file", filename)
			return 1
		}

		input = file
		infile = file.Name()
		setPrefix(filename, color)
	}

	if outvar == "" {
		outvar = defaultOutput(infile, formatvar)
	}

	var symtable *assembler.SymTable

	if debugvar || dumpvar || formatvar == FORMAT_LISTING {
		symtable = assembler.NewSymTable("")

		if infile != "" {
			if abs, err := filepath.Abs(infile); err == nil {
				symtable.Source = abs
			} else {
				log.Println(err)
			}
		}
	}

	var source bytes.Buffer

	words, err := assembler.AssembleReader(io.TeeReader(input, &source), symtable)
	lines := strings.Split(source.String(), "\n")

	if err != nil {
		var lineErr *assembler.LineError

		if errors.As(err, &lineErr) && lineErr.Line <= len(lines) {
			line := strings.TrimRight(lines[lineErr.Line-1], "\r")

			if color {
				log.Printf("%s\n\t\033[31m%s\033[0m", err, line)
			} else {
				log.Printf("%s\n\t%s", err, line)
			}
		} else {
			log.Println(err)
		}

		return 1
	}

	if dumpvar {
		pp.Fprintln(os.Stderr, symtable)
	}

	if err := writeOutput(words, symtable, lines); err != nil {
		log.Println("Error writing output file")
		log.Println(err)
		return 1
	}

	if debugvar {
		if err := writeSymbols(symtable); err != nil {
			log.Println("Error writing symbol table")
			log.Println(err)
			return 1
		}
	}

	return 0
}

func writeOutput(
	words []assembler.Word, symtable *assembler.SymTable, lines []string,
) error {
	buffer := new(bytes.Buffer)

	switch formatvar {
	case FORMAT_HEX:
		if err := listing.WriteHex(buffer, assembler.ToHex(words)); err != nil {
			return err
		}
	case FORMAT_LISTING:
		if err := listing.WriteListing(buffer, words, symtable, lines); err != nil {
			return err
		}
	case FORMAT_LOGISIM, FORMAT_BIN:
		var img image.Image

		if err := img.Load(words); err != nil {
			return err
		}

		if formatvar == FORMAT_LOGISIM {
			if err := img.WriteLogisim(buffer); err != nil {
				return err
			}
		} else {
			if err := img.WriteBin(buffer); err != nil {
				return err
			}
		}
	}

	if outvar == "" {
		_, err := os.Stdout.Write(buffer.Bytes())
		return err
	}

	glog.V(1).Infof("Writing %d bytes to %s", buffer.Len(), outvar)

	return os.WriteFile(outvar, buffer.Bytes(), 0666)
}

func writeSymbols(symtable *assembler.SymTable) error {
	target := outvar

	if target == "" {
		target = "out"
	}

	filename := filepath.Join(
		filepath.Dir(target),
		strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))+".lsdb",
	)

	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)

	if err != nil {
		return err
	}

	defer file.Close()

	return gob.NewEncoder(file).Encode(symtable)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}

	glog.Flush()
	os.Exit(status)
}
