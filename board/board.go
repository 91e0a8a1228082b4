// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package board handles the bring-up and tear-down of the board hosting
// a BMA400 shuttle.
package board // import "github.com/go-lpc/bma400/board"

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/go-lpc/bma400/intf"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	ShuttleID = 0x1a1 // BMA400 shuttle board ID

	I2CAddrSDOLow  = 0x14
	I2CAddrSDOHigh = 0x15

	SPIChipSelect = 0 // chip select of boards whose SPI port selects the shuttle

	VDD   = 3300 // mV
	VDDIO = 3300 // mV
)

var (
	I2CStandardMode = 100 * physic.KiloHertz
	I2CFastMode     = 400 * physic.KiloHertz
	SPISpeed        = 7500 * physic.KiloHertz
)

var (
	// ErrConnect is returned when the board could not be reached.
	ErrConnect = errors.New("board: unable to connect with application board")

	// ErrShuttle is returned when the attached shuttle is not a BMA400 one.
	ErrShuttle = errors.New("board: invalid sensor shuttle")

	// ErrNoInfo is returned by boards that can not identify their shuttle.
	ErrNoInfo = errors.New("board: no board information")
)

// Info describes a board and its attached shuttle.
type Info struct {
	HardwareID uint16
	SoftwareID uint16
	Board      uint8
	ShuttleID  uint16
}

// Board is an application board a BMA400 shuttle is plugged into.
type Board interface {
	Info() (Info, error)

	// SetVDD sets the shuttle supply voltages, in millivolts.
	// A zero value switches the supply off.
	SetVDD(vdd, vddio uint16) error

	ConfigI2C(speed physic.Frequency) (intf.Bus, error)
	ConfigSPI(speed physic.Frequency, mode spi.Mode) (intf.Bus, error)

	Delay(d time.Duration)
	SoftReset() error

	io.Closer
}

// ChipSelecter is implemented by boards driving the SPI chip select of the
// shuttle through one of their own lines.
type ChipSelecter interface {
	ChipSelect() uint8
}

type config struct {
	msg     *log.Logger
	addr    int
	shuttle uint16
	i2c     physic.Frequency
	spi     physic.Frequency
	rwlen   uint32
}

func newConfig() config {
	return config{
		msg:     log.New(io.Discard, "", 0),
		addr:    -1,
		shuttle: ShuttleID,
		i2c:     I2CStandardMode,
		spi:     SPISpeed,
		rwlen:   intf.DefaultReadWriteLen,
	}
}

// Option configures the bring-up sequence.
type Option func(*config)

// WithLogger sets the logger used to report the bring-up steps.
func WithLogger(msg *log.Logger) Option {
	return func(cfg *config) {
		cfg.msg = msg
	}
}

// WithAddr overrides the I2C address or the SPI chip select.
func WithAddr(addr uint8) Option {
	return func(cfg *config) {
		cfg.addr = int(addr)
	}
}

// WithSDOHigh selects the I2C address used when SDO is pulled high.
func WithSDOHigh() Option {
	return WithAddr(I2CAddrSDOHigh)
}

// WithShuttleID sets the expected shuttle ID.
func WithShuttleID(id uint16) Option {
	return func(cfg *config) {
		cfg.shuttle = id
	}
}

func WithI2CSpeed(f physic.Frequency) Option {
	return func(cfg *config) {
		cfg.i2c = f
	}
}

func WithSPISpeed(f physic.Frequency) Option {
	return func(cfg *config) {
		cfg.spi = f
	}
}

func WithReadWriteLen(n uint32) Option {
	return func(cfg *config) {
		cfg.rwlen = n
	}
}

// Setup checks the attached shuttle, power-cycles it and configures the
// requested bus.
// Setup returns the interface to hand over to the sensor driver.
func Setup(brd Board, kind intf.Kind, opts ...Option) (*intf.Interface, error) {
	if brd == nil {
		return nil, fmt.Errorf("board: nil board")
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	info, err := brd.Info()
	if err == nil && info.ShuttleID != cfg.shuttle {
		return nil, fmt.Errorf(
			"%w (got=0x%x, want=0x%x): this application will not support this sensor",
			ErrShuttle, info.ShuttleID, cfg.shuttle,
		)
	}

	err = brd.SetVDD(0, 0)
	if err != nil {
		return nil, fmt.Errorf("board: could not switch shuttle power off: %w", err)
	}
	brd.Delay(100 * time.Millisecond)

	var (
		bus  intf.Bus
		addr uint8
	)
	switch kind {
	case intf.I2C:
		cfg.msg.Printf("I2C interface")
		addr = I2CAddrSDOLow
		bus, err = brd.ConfigI2C(cfg.i2c)
	case intf.SPI:
		cfg.msg.Printf("SPI interface")
		addr = SPIChipSelect
		if cs, ok := brd.(ChipSelecter); ok {
			addr = cs.ChipSelect()
		}
		bus, err = brd.ConfigSPI(cfg.spi, spi.Mode0)
	default:
		return nil, fmt.Errorf("board: invalid interface %v", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("board: could not configure %v bus: %w", kind, err)
	}
	if cfg.addr >= 0 {
		addr = uint8(cfg.addr)
	}

	itf := intf.New(
		kind, addr, bus,
		intf.WithDelay(brd.Delay),
		intf.WithReadWriteLen(cfg.rwlen),
	)

	brd.Delay(100 * time.Millisecond)

	err = brd.SetVDD(VDD, VDDIO)
	if err != nil {
		return nil, fmt.Errorf("board: could not power shuttle: %w", err)
	}
	brd.Delay(200 * time.Millisecond)

	return itf, nil
}

// Teardown switches the shuttle off, resets the board and closes it.
func Teardown(brd Board) error {
	err := brd.SetVDD(0, 0)
	if err != nil {
		_ = brd.Close()
		return fmt.Errorf("board: could not switch shuttle power off: %w", err)
	}
	brd.Delay(100 * time.Millisecond)

	err = brd.SoftReset()
	if err != nil {
		_ = brd.Close()
		return fmt.Errorf("board: could not reset board: %w", err)
	}
	brd.Delay(100 * time.Millisecond)

	err = brd.Close()
	if err != nil {
		return fmt.Errorf("board: could not close board: %w", err)
	}
	return nil
}

// Diagnostic describes the checks to run when a board could not be reached.
const Diagnostic = `Unable to connect with Application Board!
 1. Check if the board is connected and powered on.
 2. Check if Application Board USB driver is installed.
 3. Check if board is in use by another application. (Insufficient permissions to access USB)`
