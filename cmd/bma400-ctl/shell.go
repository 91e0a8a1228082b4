// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-lpc/bma400/board"
	"github.com/go-lpc/bma400/intf"
)

const (
	regChipID = 0x00
	spiRead   = 0x80 // read bit of the SPI register address
	spiMask   = 0x7f
)

// maxDelay is the longest delay the interface can forward as a count of microseconds.
const maxDelay = time.Duration(math.MaxUint32) * time.Microsecond

var errQuit = errors.New("quit")

type shell struct {
	w   io.Writer
	brd board.Board
	itf *intf.Interface

	cmds map[string]command
}

type command struct {
	help string
	args string
	run  func(args []string) error
}

func newShell(w io.Writer, brd board.Board, itf *intf.Interface) *shell {
	sh := &shell{
		w:   w,
		brd: brd,
		itf: itf,
	}
	sh.cmds = map[string]command{
		"info":   {help: "display board and shuttle information", run: sh.info},
		"chipid": {help: "read the chip identifier", run: sh.chipID},
		"read":   {help: "read n registers starting at reg", args: "REG [N]", run: sh.read},
		"write":  {help: "write bytes starting at reg", args: "REG BYTE...", run: sh.write},
		"vdd":    {help: "set VDD and VDDIO, in millivolts", args: "VDD VDDIO", run: sh.vdd},
		"delay":  {help: "wait for the provided duration", args: "DURATION", run: sh.delay},
		"help":   {help: "display this help message", run: sh.help},
		"quit":   {help: "quit the shell", run: sh.quit},
	}
	return sh
}

func (sh *shell) close() {
	_ = board.Teardown(sh.brd)
}

func (sh *shell) exec(line string) error {
	toks := strings.Fields(line)
	if len(toks) == 0 {
		return nil
	}

	name := strings.ToLower(toks[0])
	if name == "exit" {
		name = "quit"
	}
	cmd, ok := sh.cmds[name]
	if !ok {
		return fmt.Errorf("unknown command %q (see help)", toks[0])
	}
	return cmd.run(toks[1:])
}

func (sh *shell) complete(line string) []string {
	var o []string
	for _, name := range sh.names() {
		if strings.HasPrefix(name, strings.ToLower(line)) {
			o = append(o, name)
		}
	}
	return o
}

func (sh *shell) names() []string {
	names := make([]string, 0, len(sh.cmds))
	for name := range sh.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (sh *shell) info(args []string) error {
	fmt.Fprintf(sh.w, "intf:    %v (addr=0x%02x)\n", sh.itf.Kind(), sh.itf.Addr())

	info, err := sh.brd.Info()
	switch {
	case errors.Is(err, board.ErrNoInfo):
		fmt.Fprintf(sh.w, "board:   n/a\n")
		return nil
	case err != nil:
		return fmt.Errorf("could not read board info: %w", err)
	}
	fmt.Fprintf(sh.w, "hw-id:   0x%04x\n", info.HardwareID)
	fmt.Fprintf(sh.w, "sw-id:   0x%04x\n", info.SoftwareID)
	fmt.Fprintf(sh.w, "board:   %d\n", info.Board)
	fmt.Fprintf(sh.w, "shuttle: 0x%03x\n", info.ShuttleID)
	return nil
}

func (sh *shell) chipID(args []string) error {
	p, err := sh.readRegs(regChipID, 1)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.w, "chip-id: 0x%02x\n", p[0])
	return nil
}

func (sh *shell) read(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("invalid arguments: read %s", sh.cmds["read"].args)
	}
	reg, err := parseU8(args[0])
	if err != nil {
		return fmt.Errorf("invalid register %q: %w", args[0], err)
	}
	n := 1
	if len(args) == 2 {
		v, err := strconv.ParseUint(args[1], 0, 32)
		if err != nil || v == 0 || uint32(v) > sh.itf.ReadWriteLen() {
			return fmt.Errorf("invalid length %q (max=%d)", args[1], sh.itf.ReadWriteLen())
		}
		n = int(v)
	}

	p, err := sh.readRegs(reg, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.w, "0x%02x: % x\n", reg, p)
	return nil
}

func (sh *shell) write(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("invalid arguments: write %s", sh.cmds["write"].args)
	}
	reg, err := parseU8(args[0])
	if err != nil {
		return fmt.Errorf("invalid register %q: %w", args[0], err)
	}
	p := make([]byte, len(args)-1)
	for i, arg := range args[1:] {
		p[i], err = parseU8(arg)
		if err != nil {
			return fmt.Errorf("invalid byte %q: %w", arg, err)
		}
	}

	if sh.itf.Kind() == intf.SPI {
		reg &= spiMask
	}
	if sh.itf.Write(reg, p) != intf.Success {
		return sh.itf.Err()
	}
	return nil
}

func (sh *shell) vdd(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("invalid arguments: vdd %s", sh.cmds["vdd"].args)
	}
	var mv [2]uint16
	for i, arg := range args {
		v, err := strconv.ParseUint(arg, 10, 16)
		if err != nil {
			return fmt.Errorf("invalid voltage %q: %w", arg, err)
		}
		mv[i] = uint16(v)
	}
	return sh.brd.SetVDD(mv[0], mv[1])
}

func (sh *shell) delay(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("invalid arguments: delay %s", sh.cmds["delay"].args)
	}
	d, err := time.ParseDuration(args[0])
	if err != nil || d < 0 || d > maxDelay {
		return fmt.Errorf("invalid duration %q (max=%v)", args[0], maxDelay)
	}
	sh.itf.Delay(uint32(d / time.Microsecond))
	return nil
}

func (sh *shell) help(args []string) error {
	for _, name := range sh.names() {
		cmd := sh.cmds[name]
		fmt.Fprintf(sh.w, "  %-20s %s\n", strings.TrimSpace(name+" "+cmd.args), cmd.help)
	}
	return nil
}

func (sh *shell) quit(args []string) error {
	return errQuit
}

// readRegs reads n registers starting at reg.
// SPI reads set the read bit and discard the leading dummy byte.
func (sh *shell) readRegs(reg uint8, n int) ([]byte, error) {
	if sh.itf.Kind() != intf.SPI {
		p := make([]byte, n)
		if sh.itf.Read(reg, p) != intf.Success {
			return nil, sh.itf.Err()
		}
		return p, nil
	}

	p := make([]byte, n+1)
	if sh.itf.Read(reg|spiRead, p) != intf.Success {
		return nil, sh.itf.Err()
	}
	return p[1:], nil
}

func parseU8(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}
