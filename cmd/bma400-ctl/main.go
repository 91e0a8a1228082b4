// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command bma400-ctl is an interactive shell to inspect and drive the
// registers of a BMA400 shuttle.
//
// Usage: bma400-ctl [OPTIONS]
//
// Example:
//
//	$> bma400-ctl -board=host -i2c=1
//	bma400> chipid
//	chip-id: 0x90
//	bma400> read 0x40 2
//	0x40: 49 40
//	bma400> quit
package main // import "github.com/go-lpc/bma400/cmd/bma400-ctl"

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-lpc/bma400/board"
	"github.com/go-lpc/bma400/internal/shuttle"
	"github.com/go-lpc/bma400/intf"
	"github.com/peterh/liner"
)

const usage = `bma400-ctl is an interactive shell to inspect and drive the registers of a BMA400 shuttle.

Usage: bma400-ctl [OPTIONS]

Example:

 $> bma400-ctl -board=host -i2c=1
 bma400> chipid
 chip-id: 0x90
 bma400> read 0x40 2
 0x40: 49 40
 bma400> quit

Options:
`

func main() {
	log.SetPrefix("bma400-ctl: ")
	log.SetFlags(0)

	err := xmain(os.Args[1:])
	if err != nil {
		if diag := shuttle.Diagnostic(err); diag != "" {
			fmt.Fprintln(os.Stderr, diag)
		}
		log.Fatalf("%+v", err)
	}
}

func xmain(args []string) error {
	var (
		fset = flag.NewFlagSet("bma400-ctl", flag.ExitOnError)
		sf   shuttle.Flags
	)
	sf.Register(fset)

	fset.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		return fmt.Errorf("could not parse input arguments: %w", err)
	}

	msg := log.New(os.Stdout, "bma400-ctl: ", 0)

	sh, err := open(msg, sf)
	if err != nil {
		return fmt.Errorf("could not open shuttle: %w", err)
	}
	defer sh.close()

	err = sh.repl()
	if err != nil {
		return fmt.Errorf("could not run shell: %w", err)
	}
	return nil
}

func open(msg *log.Logger, sf shuttle.Flags) (*shell, error) {
	kind, err := intf.ParseKind(sf.Intf)
	if err != nil {
		return nil, err
	}

	brd, err := sf.OpenBoard(msg)
	if err != nil {
		return nil, fmt.Errorf("could not open board: %w", err)
	}

	opts := []board.Option{board.WithLogger(msg)}
	if sf.SDOHigh {
		opts = append(opts, board.WithSDOHigh())
	}

	itf, err := board.Setup(brd, kind, opts...)
	if err != nil {
		_ = brd.Close()
		return nil, fmt.Errorf("could not setup board: %w", err)
	}

	return newShell(os.Stdout, brd, itf), nil
}

func (sh *shell) repl() error {
	term := liner.NewLiner()
	defer term.Close()

	term.SetCtrlCAborts(true)
	term.SetCompleter(sh.complete)

	hist := histFile()
	if f, err := os.Open(hist); err == nil {
		_, _ = term.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		f, err := os.Create(hist)
		if err != nil {
			return
		}
		defer f.Close()
		_, _ = term.WriteHistory(f)
	}()

	for {
		line, err := term.Prompt("bma400> ")
		switch {
		case err == nil:
		case errors.Is(err, liner.ErrPromptAborted), errors.Is(err, io.EOF):
			fmt.Fprintln(sh.w)
			return nil
		default:
			return fmt.Errorf("could not read command: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		err = sh.exec(line)
		switch {
		case err == nil:
		case errors.Is(err, errQuit):
			return nil
		default:
			fmt.Fprintf(sh.w, "error: %+v\n", err)
		}
	}
}

func histFile() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, ".bma400_history")
}
