// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements a board on a Linux host (Raspberry Pi and
// the like) with the shuttle wired to the host I2C or SPI buses.
package host // import "github.com/go-lpc/bma400/board/host"

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-daq/smbus"
	"github.com/go-lpc/bma400/board"
	"github.com/go-lpc/bma400/intf"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

type config struct {
	i2c     string // periph I2C bus name
	spi     string // periph SPI port name
	smbus   int    // SMBus bus number, or -1 to use periph
	vdd     string // VDD enable pin
	vddio   string // VDDIO enable pin
	shuttle uint16 // declared shuttle ID
	lock    string
}

func newConfig() config {
	return config{
		smbus:   -1,
		shuttle: board.ShuttleID,
		lock:    filepath.Join(os.TempDir(), "bma400.lock"),
	}
}

// Option configures a host board.
type Option func(*config)

// WithI2C selects the periph I2C bus by name (e.g. "1" or "I2C1").
func WithI2C(name string) Option {
	return func(cfg *config) {
		cfg.i2c = name
	}
}

// WithSPI selects the periph SPI port by name (e.g. "SPI0.0").
func WithSPI(name string) Option {
	return func(cfg *config) {
		cfg.spi = name
	}
}

// WithSMBus routes I2C transactions through the SMBus interface of
// /dev/i2c-<bus> instead of periph.
func WithSMBus(bus int) Option {
	return func(cfg *config) {
		cfg.smbus = bus
	}
}

// WithPowerPins sets the GPIO lines driving the shuttle VDD and VDDIO
// regulators. An empty name leaves the corresponding supply always on.
func WithPowerPins(vdd, vddio string) Option {
	return func(cfg *config) {
		cfg.vdd = vdd
		cfg.vddio = vddio
	}
}

// WithShuttleID declares the shuttle wired to the host.
// A zero ID reports no board information.
func WithShuttleID(id uint16) Option {
	return func(cfg *config) {
		cfg.shuttle = id
	}
}

// WithLockFile sets the file used to guard the board against concurrent users.
func WithLockFile(fname string) Option {
	return func(cfg *config) {
		cfg.lock = fname
	}
}

// Board is a Linux host driving a BMA400 shuttle.
type Board struct {
	msg *log.Logger
	cfg config

	lock *os.File
	pins struct {
		vdd   gpio.PinIO
		vddio gpio.PinIO
	}

	i2c io.Closer // i2c.BusCloser or *smbus.Conn
	spi spi.PortCloser
}

var _ board.Board = (*Board)(nil)

// Open initializes the host drivers and locks the board.
func Open(msg *log.Logger, opts ...Option) (*Board, error) {
	if msg == nil {
		msg = log.New(io.Discard, "", 0)
	}

	brd := &Board{
		msg: msg,
		cfg: newConfig(),
	}
	for _, opt := range opts {
		opt(&brd.cfg)
	}

	var err error
	brd.lock, err = lockFile(brd.cfg.lock)
	if err != nil {
		return nil, fmt.Errorf("%w: could not lock %q: %v", board.ErrConnect, brd.cfg.lock, err)
	}
	defer func() {
		if err != nil {
			_ = unlockFile(brd.lock)
		}
	}()

	if brd.cfg.smbus >= 0 {
		dev := fmt.Sprintf("/dev/i2c-%d", brd.cfg.smbus)
		err = checkAccess(dev)
		if err != nil {
			return nil, fmt.Errorf("%w: could not access %q: %v", board.ErrConnect, dev, err)
		}
	}

	_, err = host.Init()
	if err != nil {
		return nil, fmt.Errorf("%w: could not initialize host drivers: %v", board.ErrConnect, err)
	}

	brd.pins.vdd, err = pinByName(brd.cfg.vdd)
	if err != nil {
		return nil, fmt.Errorf("%w: could not find VDD pin: %v", board.ErrConnect, err)
	}

	brd.pins.vddio, err = pinByName(brd.cfg.vddio)
	if err != nil {
		return nil, fmt.Errorf("%w: could not find VDDIO pin: %v", board.ErrConnect, err)
	}

	return brd, nil
}

func pinByName(name string) (gpio.PinIO, error) {
	if name == "" {
		return nil, nil
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("no GPIO pin named %q", name)
	}
	return pin, nil
}

func (brd *Board) Info() (board.Info, error) {
	if brd.cfg.shuttle == 0 {
		return board.Info{}, board.ErrNoInfo
	}
	return board.Info{ShuttleID: brd.cfg.shuttle}, nil
}

func (brd *Board) SetVDD(vdd, vddio uint16) error {
	for _, v := range []struct {
		name string
		pin  gpio.PinIO
		mv   uint16
	}{
		{"VDD", brd.pins.vdd, vdd},
		{"VDDIO", brd.pins.vddio, vddio},
	} {
		if v.pin == nil {
			continue
		}
		lvl := gpio.Low
		if v.mv > 0 {
			lvl = gpio.High
		}
		err := v.pin.Out(lvl)
		if err != nil {
			return fmt.Errorf("host: could not drive %s pin %s: %w", v.name, v.pin, err)
		}
	}
	return nil
}

func (brd *Board) ConfigI2C(speed physic.Frequency) (intf.Bus, error) {
	brd.closeI2C()

	if brd.cfg.smbus >= 0 {
		conn, err := smbus.Open(brd.cfg.smbus, board.I2CAddrSDOLow)
		if err != nil {
			return nil, fmt.Errorf("host: could not open SMBus %d: %w", brd.cfg.smbus, err)
		}
		brd.i2c = conn
		return &smbusBus{conn: conn, addr: board.I2CAddrSDOLow}, nil
	}

	bus, err := i2creg.Open(brd.cfg.i2c)
	if err != nil {
		return nil, fmt.Errorf("host: could not open I2C bus %q: %w", brd.cfg.i2c, err)
	}
	brd.i2c = bus

	err = bus.SetSpeed(speed)
	if err != nil {
		brd.msg.Printf("could not set I2C bus %s speed to %v: %+v", bus, speed, err)
	}

	return &i2cBus{bus: bus}, nil
}

func (brd *Board) ConfigSPI(speed physic.Frequency, mode spi.Mode) (intf.Bus, error) {
	brd.closeSPI()

	port, err := spireg.Open(brd.cfg.spi)
	if err != nil {
		return nil, fmt.Errorf("host: could not open SPI port %q: %w", brd.cfg.spi, err)
	}

	conn, err := port.Connect(speed, mode, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("host: could not connect to SPI port %q: %w", brd.cfg.spi, err)
	}
	brd.spi = port

	return &spiBus{conn: conn}, nil
}

func (brd *Board) Delay(d time.Duration) {
	time.Sleep(d)
}

// SoftReset releases the buses held by the board.
func (brd *Board) SoftReset() error {
	brd.closeI2C()
	brd.closeSPI()
	return nil
}

func (brd *Board) Close() error {
	brd.closeI2C()
	brd.closeSPI()

	if brd.lock == nil {
		return nil
	}
	err := unlockFile(brd.lock)
	brd.lock = nil
	if err != nil {
		return fmt.Errorf("host: could not release board lock: %w", err)
	}
	return nil
}

func (brd *Board) closeI2C() {
	if brd.i2c == nil {
		return
	}
	err := brd.i2c.Close()
	if err != nil {
		brd.msg.Printf("could not close I2C bus: %+v", err)
	}
	brd.i2c = nil
}

func (brd *Board) closeSPI() {
	if brd.spi == nil {
		return
	}
	err := brd.spi.Close()
	if err != nil {
		brd.msg.Printf("could not close SPI port: %+v", err)
	}
	brd.spi = nil
}
