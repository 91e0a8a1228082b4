// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package intf maps the register access callbacks of the BMA400 sensor
// driver onto a board bus.
package intf // import "github.com/go-lpc/bma400/intf"

import (
	"fmt"
	"time"
)

// Kind describes the bus used to reach the sensor.
type Kind uint8

const (
	SPI Kind = iota
	I2C
)

func (k Kind) String() string {
	switch k {
	case SPI:
		return "SPI"
	case I2C:
		return "I2C"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind returns the bus kind named by s ("i2c" or "spi").
func ParseKind(s string) (Kind, error) {
	switch s {
	case "i2c", "I2C":
		return I2C, nil
	case "spi", "SPI":
		return SPI, nil
	}
	return 0, fmt.Errorf("intf: invalid bus kind %q", s)
}

// Status codes returned to the sensor driver.
const (
	Success int8 = 0
	Failure int8 = -1
)

// DefaultReadWriteLen is the maximum burst length handed to the driver.
const DefaultReadWriteLen = 46

// Bus performs register transactions with a device on a board bus.
//
// For I2C buses, addr is the 7-bit device address.
// For SPI buses, addr is the chip-select line.
type Bus interface {
	Read(addr, reg uint8, p []byte) error
	Write(addr, reg uint8, p []byte) error
}

// maxLener is implemented by buses with a limited transfer size.
type maxLener interface {
	MaxLen() uint32
}

// Interface is the context handed to the sensor driver callbacks.
type Interface struct {
	kind  Kind
	addr  uint8
	bus   Bus
	delay func(time.Duration)
	rwlen uint32

	err error // last transport error
}

// Option configures an Interface.
type Option func(*Interface)

// WithDelay sets the function used to honor driver delays.
func WithDelay(f func(time.Duration)) Option {
	return func(itf *Interface) {
		itf.delay = f
	}
}

// WithReadWriteLen sets the maximum burst length the driver may use.
func WithReadWriteLen(n uint32) Option {
	return func(itf *Interface) {
		itf.rwlen = n
	}
}

// New returns a new interface to the device at addr on the provided bus.
func New(kind Kind, addr uint8, bus Bus, opts ...Option) *Interface {
	itf := &Interface{
		kind:  kind,
		addr:  addr,
		bus:   bus,
		delay: time.Sleep,
		rwlen: DefaultReadWriteLen,
	}
	for _, opt := range opts {
		opt(itf)
	}
	if bus, ok := bus.(maxLener); ok {
		if n := bus.MaxLen(); n > 0 && n < itf.rwlen {
			itf.rwlen = n
		}
	}
	return itf
}

func (itf *Interface) Kind() Kind           { return itf.kind }
func (itf *Interface) Addr() uint8          { return itf.addr }
func (itf *Interface) Bus() Bus             { return itf.bus }
func (itf *Interface) Err() error           { return itf.err }
func (itf *Interface) ReadWriteLen() uint32 { return itf.rwlen }

// Read reads len(p) bytes starting at register reg.
func (itf *Interface) Read(reg uint8, p []byte) int8 {
	err := itf.bus.Read(itf.addr, reg, p)
	if err != nil {
		itf.err = fmt.Errorf("intf: could not read %s register 0x%02x (addr=0x%02x, n=%d): %w",
			itf.kind, reg, itf.addr, len(p), err,
		)
		return Failure
	}
	return Success
}

// Write writes p starting at register reg.
func (itf *Interface) Write(reg uint8, p []byte) int8 {
	err := itf.bus.Write(itf.addr, reg, p)
	if err != nil {
		itf.err = fmt.Errorf("intf: could not write %s register 0x%02x (addr=0x%02x, n=%d): %w",
			itf.kind, reg, itf.addr, len(p), err,
		)
		return Failure
	}
	return Success
}

// Delay blocks for the provided number of microseconds.
func (itf *Interface) Delay(us uint32) {
	itf.delay(time.Duration(us) * time.Microsecond)
}
