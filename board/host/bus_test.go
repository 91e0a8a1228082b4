// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/go-lpc/bma400/intf"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

func TestI2CBus(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x14, W: []byte{0x00}, R: []byte{0x90}},
			{Addr: 0x14, W: []byte{0x19, 0x02}},
			{Addr: 0x14, W: []byte{0x04}, R: []byte{1, 2, 3, 4, 5, 6}},
		},
	}
	defer pb.Close()

	itf := intf.New(intf.I2C, 0x14, &i2cBus{bus: pb})

	id := make([]byte, 1)
	if got, want := itf.Read(0x00, id), intf.Success; got != want {
		t.Fatalf("could not read chip-id: %+v", itf.Err())
	}
	if got, want := id[0], byte(0x90); got != want {
		t.Fatalf("invalid chip-id: got=0x%x, want=0x%x", got, want)
	}

	if got, want := itf.Write(0x19, []byte{0x02}), intf.Success; got != want {
		t.Fatalf("could not write power mode: %+v", itf.Err())
	}

	data := make([]byte, 6)
	if got, want := itf.Read(0x04, data), intf.Success; got != want {
		t.Fatalf("could not read accel data: %+v", itf.Err())
	}
	if got, want := data, []byte{1, 2, 3, 4, 5, 6}; !bytes.Equal(got, want) {
		t.Fatalf("invalid accel data: got=%v, want=%v", got, want)
	}
}

func TestSPIBus(t *testing.T) {
	pb := &spitest.Playback{
		Playback: conntest.Playback{
			Ops: []conntest.IO{
				{W: []byte{0x80, 0x00, 0x00}, R: []byte{0xff, 0x00, 0x90}},
				{W: []byte{0x19, 0x02}, R: []byte{0x00, 0x00}},
			},
		},
	}
	defer pb.Close()

	conn, err := pb.Connect(0, spi.Mode0, 8)
	if err != nil {
		t.Fatalf("could not connect: %+v", err)
	}
	bus := &spiBus{conn: conn}

	// the driver reads one dummy byte in SPI mode.
	buf := make([]byte, 2)
	err = bus.Read(7, 0x80, buf)
	if err != nil {
		t.Fatalf("could not read register: %+v", err)
	}
	if got, want := buf, []byte{0x00, 0x90}; !bytes.Equal(got, want) {
		t.Fatalf("invalid read: got=%v, want=%v", got, want)
	}

	err = bus.Write(7, 0x19, []byte{0x02})
	if err != nil {
		t.Fatalf("could not write register: %+v", err)
	}
}

type fakeSMBus struct {
	ops  []string
	regs [256]byte
	err  error
}

func (c *fakeSMBus) SetAddr(addr uint8) error {
	c.ops = append(c.ops, fmt.Sprintf("addr 0x%x", addr))
	return c.err
}

func (c *fakeSMBus) ReadReg(addr, reg uint8) (uint8, error) {
	c.ops = append(c.ops, fmt.Sprintf("rb 0x%x 0x%x", addr, reg))
	return c.regs[reg], c.err
}

func (c *fakeSMBus) WriteReg(addr, reg, v uint8) error {
	c.ops = append(c.ops, fmt.Sprintf("wb 0x%x 0x%x 0x%x", addr, reg, v))
	c.regs[reg] = v
	return c.err
}

func (c *fakeSMBus) ReadBlockData(addr, reg uint8, p []byte) error {
	c.ops = append(c.ops, fmt.Sprintf("rblk 0x%x 0x%x %d", addr, reg, len(p)))
	copy(p, c.regs[reg:])
	return c.err
}

func TestSMBus(t *testing.T) {
	conn := new(fakeSMBus)
	conn.regs[0x00] = 0x90
	bus := &smbusBus{conn: conn, addr: 0x14}
	itf := intf.New(intf.I2C, 0x14, bus)

	if got, want := itf.ReadWriteLen(), uint32(smbusBlockMax); got != want {
		t.Fatalf("invalid r/w length: got=%d, want=%d", got, want)
	}

	id := make([]byte, 1)
	if itf.Read(0x00, id) != intf.Success {
		t.Fatalf("could not read chip-id: %+v", itf.Err())
	}
	if got, want := id[0], byte(0x90); got != want {
		t.Fatalf("invalid chip-id: got=0x%x, want=0x%x", got, want)
	}

	if itf.Write(0x26, []byte{0xe4, 0x00}) != intf.Success {
		t.Fatalf("could not write fifo config: %+v", itf.Err())
	}

	buf := make([]byte, 2)
	if itf.Read(0x26, buf) != intf.Success {
		t.Fatalf("could not read fifo config: %+v", itf.Err())
	}
	if got, want := buf, []byte{0xe4, 0x00}; !bytes.Equal(got, want) {
		t.Fatalf("invalid fifo config: got=%v, want=%v", got, want)
	}

	if itf.Read(0x38, make([]byte, 33)) != intf.Failure {
		t.Fatalf("expected an error for large block reads")
	}

	other := intf.New(intf.I2C, 0x15, bus)
	if other.Read(0x00, id) != intf.Success {
		t.Fatalf("could not read chip-id: %+v", other.Err())
	}

	want := []string{
		"rb 0x14 0x0",
		"wb 0x14 0x26 0xe4",
		"wb 0x14 0x27 0x0",
		"rblk 0x14 0x26 2",
		"addr 0x15",
		"rb 0x15 0x0",
	}
	if got := conn.ops; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid SMBus transactions:\ngot= %q\nwant=%q", got, want)
	}
}

func TestSMBusError(t *testing.T) {
	conn := &fakeSMBus{err: errors.New("nack")}
	bus := &smbusBus{conn: conn, addr: 0x14}

	err := bus.Write(0x15, 0x7e, []byte{0xb6})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if got, want := err.Error(), "host: could not select SMBus address 0x15: nack"; got != want {
		t.Fatalf("invalid error:\ngot= %q\nwant=%q", got, want)
	}
}
