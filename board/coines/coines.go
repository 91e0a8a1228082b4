// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build coines

package coines

//#cgo LDFLAGS: -lcoines
//
//#include <stdint.h>
//#include <stdlib.h>
//#include "coines.h"
import "C"

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/go-lpc/bma400/board"
	"github.com/go-lpc/bma400/intf"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Board is a Bosch application board reached over USB.
type Board struct {
	open bool
}

var (
	_ board.Board        = (*Board)(nil)
	_ board.ChipSelecter = (*Board)(nil)
)

// Open opens the USB communication interface with the application board.
func Open() (*Board, error) {
	rc := C.coines_open_comm_intf(C.COINES_COMM_INTF_USB, nil)
	if rc < C.COINES_SUCCESS {
		return nil, fmt.Errorf("%w (code=%d)", board.ErrConnect, int(rc))
	}
	return &Board{open: true}, nil
}

func (brd *Board) Info() (board.Info, error) {
	var info C.struct_coines_board_info
	rc := C.coines_get_board_info(&info)
	if rc != C.COINES_SUCCESS {
		return board.Info{}, fmt.Errorf("%w (code=%d)", board.ErrNoInfo, int(rc))
	}
	return board.Info{
		HardwareID: uint16(info.hardware_id),
		SoftwareID: uint16(info.software_id),
		Board:      uint8(info.board),
		ShuttleID:  uint16(info.shuttle_id),
	}, nil
}

func (brd *Board) SetVDD(vdd, vddio uint16) error {
	rc := C.coines_set_shuttleboard_vdd_vddio_config(C.uint16_t(vdd), C.uint16_t(vddio))
	return status("set VDD/VDDIO", C.int16_t(rc))
}

func (brd *Board) ConfigI2C(speed physic.Frequency) (intf.Bus, error) {
	var mode C.enum_coines_i2c_mode
	switch {
	case speed <= board.I2CStandardMode:
		mode = C.COINES_I2C_STANDARD_MODE
	default:
		mode = C.COINES_I2C_FAST_MODE
	}
	rc := C.coines_config_i2c_bus(C.COINES_I2C_BUS_0, mode)
	err := status("configure I2C bus", C.int16_t(rc))
	if err != nil {
		return nil, err
	}
	return i2cBus{}, nil
}

func (brd *Board) ConfigSPI(speed physic.Frequency, mode spi.Mode) (intf.Bus, error) {
	cspeed, ok := spiSpeeds[speed]
	if !ok {
		return nil, fmt.Errorf("coines: unsupported SPI speed %v", speed)
	}

	var cmode C.enum_coines_spi_mode
	switch mode {
	case spi.Mode0:
		cmode = C.COINES_SPI_MODE0
	case spi.Mode1:
		cmode = C.COINES_SPI_MODE1
	case spi.Mode2:
		cmode = C.COINES_SPI_MODE2
	case spi.Mode3:
		cmode = C.COINES_SPI_MODE3
	default:
		return nil, fmt.Errorf("coines: unsupported SPI mode %v", mode)
	}

	rc := C.coines_config_spi_bus(C.COINES_SPI_BUS_0, cspeed, cmode)
	err := status("configure SPI bus", C.int16_t(rc))
	if err != nil {
		return nil, err
	}
	return spiBus{}, nil
}

var spiSpeeds = map[physic.Frequency]C.enum_coines_spi_speed{
	1 * physic.MegaHertz:    C.COINES_SPI_SPEED_1_MHZ,
	5 * physic.MegaHertz:    C.COINES_SPI_SPEED_5_MHZ,
	7500 * physic.KiloHertz: C.COINES_SPI_SPEED_7_5_MHZ,
	10 * physic.MegaHertz:   C.COINES_SPI_SPEED_10_MHZ,
}

func (brd *Board) Delay(d time.Duration) {
	if d >= time.Millisecond && d%time.Millisecond == 0 {
		C.coines_delay_msec(C.uint32_t(d / time.Millisecond))
		return
	}
	C.coines_delay_usec(C.uint32_t(d / time.Microsecond))
}

func (brd *Board) SoftReset() error {
	C.coines_soft_reset()
	return nil
}

func (brd *Board) Close() error {
	if !brd.open {
		return nil
	}
	brd.open = false
	rc := C.coines_close_comm_intf(C.COINES_COMM_INTF_USB, nil)
	return status("close USB interface", C.int16_t(rc))
}

// ShuttlePin7 is the chip-select line of the BMA400 shuttle.
const ShuttlePin7 = uint8(C.COINES_SHUTTLE_PIN_7)

// ChipSelect returns the line selecting the shuttle on the SPI bus.
func (brd *Board) ChipSelect() uint8 { return ShuttlePin7 }

type i2cBus struct{}

func (i2cBus) Read(addr, reg uint8, p []byte) error {
	rc := C.coines_read_i2c(C.COINES_I2C_BUS_0, C.uint8_t(addr), C.uint8_t(reg), cbuf(p), C.uint16_t(len(p)))
	return status("read I2C", C.int16_t(rc))
}

func (i2cBus) Write(addr, reg uint8, p []byte) error {
	rc := C.coines_write_i2c(C.COINES_I2C_BUS_0, C.uint8_t(addr), C.uint8_t(reg), cbuf(p), C.uint16_t(len(p)))
	return status("write I2C", C.int16_t(rc))
}

type spiBus struct{}

func (spiBus) Read(addr, reg uint8, p []byte) error {
	rc := C.coines_read_spi(C.COINES_SPI_BUS_0, C.uint8_t(addr), C.uint8_t(reg), cbuf(p), C.uint16_t(len(p)))
	return status("read SPI", C.int16_t(rc))
}

func (spiBus) Write(addr, reg uint8, p []byte) error {
	rc := C.coines_write_spi(C.COINES_SPI_BUS_0, C.uint8_t(addr), C.uint8_t(reg), cbuf(p), C.uint16_t(len(p)))
	return status("write SPI", C.int16_t(rc))
}

func cbuf(p []byte) *C.uint8_t {
	if len(p) == 0 {
		return nil
	}
	return (*C.uint8_t)(unsafe.Pointer(&p[0]))
}

func status(op string, rc C.int16_t) error {
	if rc == C.COINES_SUCCESS {
		return nil
	}
	return fmt.Errorf("coines: could not %s (code=%d)", op, int(rc))
}
