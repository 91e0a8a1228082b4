// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"

	"github.com/go-daq/smbus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"
)

type i2cBus struct {
	bus i2c.Bus
}

func (b *i2cBus) Read(addr, reg uint8, p []byte) error {
	return b.bus.Tx(uint16(addr), []byte{reg}, p)
}

func (b *i2cBus) Write(addr, reg uint8, p []byte) error {
	w := make([]byte, 1+len(p))
	w[0] = reg
	copy(w[1:], p)
	return b.bus.Tx(uint16(addr), w, nil)
}

// spiBus performs full-duplex transfers: the first received byte,
// clocked while the register address is sent, is discarded.
type spiBus struct {
	conn spi.Conn
}

func (b *spiBus) Read(addr, reg uint8, p []byte) error {
	w := make([]byte, 1+len(p))
	r := make([]byte, len(w))
	w[0] = reg
	err := b.conn.Tx(w, r)
	if err != nil {
		return err
	}
	copy(p, r[1:])
	return nil
}

func (b *spiBus) Write(addr, reg uint8, p []byte) error {
	w := make([]byte, 1+len(p))
	w[0] = reg
	copy(w[1:], p)
	return b.conn.Tx(w, make([]byte, len(w)))
}

const smbusBlockMax = 32

type smbusConn interface {
	SetAddr(addr uint8) error
	ReadReg(addr, reg uint8) (uint8, error)
	WriteReg(addr, reg, v uint8) error
	ReadBlockData(addr, reg uint8, p []byte) error
}

var _ smbusConn = (*smbus.Conn)(nil)

type smbusBus struct {
	conn smbusConn
	addr int
}

func (b *smbusBus) MaxLen() uint32 { return smbusBlockMax }

func (b *smbusBus) setAddr(addr uint8) error {
	if b.addr == int(addr) {
		return nil
	}
	err := b.conn.SetAddr(addr)
	if err != nil {
		return fmt.Errorf("host: could not select SMBus address 0x%x: %w", addr, err)
	}
	b.addr = int(addr)
	return nil
}

func (b *smbusBus) Read(addr, reg uint8, p []byte) error {
	if len(p) > smbusBlockMax {
		return fmt.Errorf("host: SMBus block read too large (n=%d, max=%d)", len(p), smbusBlockMax)
	}
	err := b.setAddr(addr)
	if err != nil {
		return err
	}
	switch len(p) {
	case 0:
		return nil
	case 1:
		v, err := b.conn.ReadReg(addr, reg)
		if err != nil {
			return err
		}
		p[0] = v
		return nil
	default:
		return b.conn.ReadBlockData(addr, reg, p)
	}
}

// Write writes p one register at a time, relying on the register
// auto-increment of the device.
func (b *smbusBus) Write(addr, reg uint8, p []byte) error {
	err := b.setAddr(addr)
	if err != nil {
		return err
	}
	for i, v := range p {
		err = b.conn.WriteReg(addr, reg+uint8(i), v)
		if err != nil {
			return err
		}
	}
	return nil
}
