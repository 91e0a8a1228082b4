// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shuttle opens a BMA400 shuttle from command-line flags.
package shuttle // import "github.com/go-lpc/bma400/internal/shuttle"

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/go-lpc/bma400/board"
	"github.com/go-lpc/bma400/board/coines"
	"github.com/go-lpc/bma400/board/host"
	"github.com/go-lpc/bma400/intf"
	"github.com/go-lpc/bma400/sensorapi"
)

// Flags holds the command-line configuration of a shuttle.
type Flags struct {
	Board   string // coines or host
	Intf    string // i2c or spi
	SDOHigh bool

	I2C   string
	SPI   string
	SMBus int
	VDD   string
	VDDIO string
	Lock  string
}

// Register declares the shuttle flags on fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Board, "board", "coines", "application board (coines|host)")
	fs.StringVar(&f.Intf, "intf", "i2c", "sensor interface (i2c|spi)")
	fs.BoolVar(&f.SDOHigh, "sdo-high", false, "use the I2C address of the SDO-high wiring")
	fs.StringVar(&f.I2C, "i2c", "", "host I2C bus name (host board)")
	fs.StringVar(&f.SPI, "spi", "", "host SPI port name (host board)")
	fs.IntVar(&f.SMBus, "smbus", -1, "host SMBus number, -1 to disable (host board)")
	fs.StringVar(&f.VDD, "vdd", "", "host GPIO pin driving VDD (host board)")
	fs.StringVar(&f.VDDIO, "vddio", "", "host GPIO pin driving VDDIO (host board)")
	fs.StringVar(&f.Lock, "lock", "", "host board lock file (host board)")
}

// OpenBoard opens the configured application board.
func (f *Flags) OpenBoard(msg *log.Logger) (board.Board, error) {
	switch f.Board {
	case "coines", "":
		brd, err := coines.Open()
		if err != nil {
			return nil, err
		}
		return brd, nil

	case "host":
		opts := []host.Option{
			host.WithI2C(f.I2C),
			host.WithSPI(f.SPI),
			host.WithSMBus(f.SMBus),
			host.WithPowerPins(f.VDD, f.VDDIO),
		}
		if f.Lock != "" {
			opts = append(opts, host.WithLockFile(f.Lock))
		}
		brd, err := host.Open(msg, opts...)
		if err != nil {
			return nil, err
		}
		return brd, nil

	default:
		return nil, fmt.Errorf("shuttle: unknown board %q", f.Board)
	}
}

// Shuttle is a powered BMA400 shuttle bound to the sensor driver.
type Shuttle struct {
	*sensorapi.Device

	Board board.Board
	Intf  *intf.Interface
}

// Open opens the board, brings the shuttle up and binds the sensor driver.
//
// A failed sensor initialization is logged and does not prevent the
// shuttle from being returned.
func Open(msg *log.Logger, f Flags) (*Shuttle, error) {
	if msg == nil {
		msg = log.New(io.Discard, "", 0)
	}

	kind, err := intf.ParseKind(f.Intf)
	if err != nil {
		return nil, fmt.Errorf("shuttle: %w", err)
	}

	brd, err := f.OpenBoard(msg)
	if err != nil {
		return nil, fmt.Errorf("shuttle: could not open board: %w", err)
	}

	opts := []board.Option{board.WithLogger(msg)}
	if f.SDOHigh {
		opts = append(opts, board.WithSDOHigh())
	}

	itf, err := board.Setup(brd, kind, opts...)
	if err != nil {
		_ = brd.Close()
		return nil, fmt.Errorf("shuttle: could not setup board: %w", err)
	}

	dev, err := sensorapi.Open(itf)
	if dev == nil {
		_ = board.Teardown(brd)
		return nil, fmt.Errorf("shuttle: could not open sensor: %w", err)
	}
	_ = sensorapi.Check(msg, "bma400_init", err)

	return &Shuttle{
		Device: dev,
		Board:  brd,
		Intf:   itf,
	}, nil
}

// Close releases the sensor driver and tears the board down.
func (s *Shuttle) Close() error {
	err := s.Device.Close()
	if e := board.Teardown(s.Board); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return fmt.Errorf("shuttle: could not close shuttle: %w", err)
	}
	return nil
}

// Diagnostic returns the message to display to the user when a shuttle
// could not be opened because of err.
func Diagnostic(err error) string {
	switch {
	case errors.Is(err, board.ErrConnect):
		return board.Diagnostic
	case errors.Is(err, board.ErrShuttle):
		return "Invalid sensor shuttle: this application will not support this sensor"
	case errors.Is(err, sensorapi.ErrNoSensorAPI):
		return "BMA400 SensorAPI support not compiled in: rebuild with -tags sensorapi"
	default:
		return ""
	}
}
