// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sensorapi binds the Bosch BMA400 SensorAPI C library.
//
// The register protocol and the FIFO frame decoding are implemented by
// the C library. This package hands it the register access callbacks of
// an intf.Interface and exposes its configuration records as Go values.
//
// The binding is only compiled with the "sensorapi" build tag:
//
//	$> CGO_CFLAGS="-I/opt/bma400" CGO_LDFLAGS="-L/opt/bma400" \
//	   go build -tags sensorapi ./cmd/bma400-fifo
package sensorapi // import "github.com/go-lpc/bma400/sensorapi"

import (
	"errors"
	"fmt"
	"log"
)

// ErrNoSensorAPI is returned when the binding was not compiled in.
var ErrNoSensorAPI = errors.New("sensorapi: built without BMA400 SensorAPI support (rebuild with -tags sensorapi)")

// Status is a result code returned by the SensorAPI.
type Status int8

const (
	OK             Status = 0
	ENullPtr       Status = -1
	EComFail       Status = -2
	EDevNotFound   Status = -3
	EInvalidConfig Status = -4
)

func (st Status) String() string {
	switch st {
	case OK:
		return "OK"
	case ENullPtr:
		return "Null pointer"
	case EComFail:
		return "Communication failure"
	case EInvalidConfig:
		return "Invalid configuration"
	case EDevNotFound:
		return "Device not found"
	default:
		return "Unknown error code"
	}
}

func (st Status) Error() string {
	return fmt.Sprintf("sensorapi: %s (code=%d)", st.String(), int8(st))
}

// result converts a SensorAPI return code into an error.
func result(rc int8) error {
	if rc == int8(OK) {
		return nil
	}
	return Status(rc)
}

// Check logs a classified message for a failed SensorAPI call.
// Check returns err.
func Check(msg *log.Logger, api string, err error) error {
	if err == nil {
		return nil
	}
	var st Status
	if errors.As(err, &st) {
		msg.Printf("API : %s Error [%d] : %s", api, int8(st), st)
		return err
	}
	msg.Printf("API : %s Error : %+v", api, err)
	return err
}

// ChipID is the expected content of the chip identification register.
const ChipID = 0x90

// FIFO geometry.
const (
	FIFOSize          = 1024
	FIFOBytesOverread = 25
	FIFOSizeFull      = FIFOSize + FIFOBytesOverread

	// SensorTick is the duration of a sensortime tick, in seconds.
	SensorTick = 0.0000390625
)

// Output data rates.
const (
	ODR12_5Hz uint8 = 0x05
	ODR25Hz   uint8 = 0x06
	ODR50Hz   uint8 = 0x07
	ODR100Hz  uint8 = 0x08
	ODR200Hz  uint8 = 0x09
	ODR400Hz  uint8 = 0x0a
	ODR800Hz  uint8 = 0x0b
)

// Measurement ranges.
const (
	Range2G  uint8 = 0x00
	Range4G  uint8 = 0x01
	Range8G  uint8 = 0x02
	Range16G uint8 = 0x03
)

// Data sources.
const (
	DataSrcFilt1  uint8 = 0x00
	DataSrcFilt2  uint8 = 0x01
	DataSrcFiltLP uint8 = 0x02
)

// FIFO configuration flags.
const (
	FIFOAutoFlush  uint8 = 0x01
	FIFOStopOnFull uint8 = 0x02
	FIFOTimeEn     uint8 = 0x04
	FIFODataSrc    uint8 = 0x08
	FIFO8BitEn     uint8 = 0x10
	FIFOXEn        uint8 = 0x20
	FIFOYEn        uint8 = 0x40
	FIFOZEn        uint8 = 0x80
)

// Interrupt status bits.
const (
	AssertedWakeup   uint16 = 0x0001
	AssertedOrientCh uint16 = 0x0002
	AssertedGen1     uint16 = 0x0004
	AssertedGen2     uint16 = 0x0008
	AssertedOverrun  uint16 = 0x0010
	AssertedFIFOFull uint16 = 0x0020
	AssertedFIFOWM   uint16 = 0x0040
	AssertedDRDY     uint16 = 0x0080
)

// FIFO configuration change flags.
const (
	FIFOConf0Change  uint8 = 0x01
	AccelConf0Change uint8 = 0x02
	AccelConf1Change uint8 = 0x04
)

// PowerMode is an operating mode of the sensor.
type PowerMode uint8

const (
	SleepMode    PowerMode = 0x00
	LowPowerMode PowerMode = 0x01
	NormalMode   PowerMode = 0x02
)

func (mode PowerMode) String() string {
	switch mode {
	case SleepMode:
		return "sleep"
	case LowPowerMode:
		return "low-power"
	case NormalMode:
		return "normal"
	default:
		return fmt.Sprintf("PowerMode(%d)", uint8(mode))
	}
}

// IntChannel is an interrupt output line.
type IntChannel uint8

const (
	IntChannelNone IntChannel = iota
	IntChannel1
	IntChannel2
	IntChannelBoth
)

// IntType selects an interrupt source.
type IntType uint8

const (
	DRDYInt IntType = iota
	FIFOWMInt
	FIFOFullInt
	Gen1Int
	Gen2Int
	OrientChangeInt
	ActivityChangeInt
	StepCounterInt
	TapInt
	LatchInt
)

// IntEnable enables or disables an interrupt source.
type IntEnable struct {
	Type   IntType
	Enable bool
}

// AccelConf is the accelerometer configuration.
type AccelConf struct {
	ODR     uint8
	Range   uint8
	DataSrc uint8
	OSR     uint8
	FiltBW  uint8
}

// FIFOConf is the FIFO configuration.
type FIFOConf struct {
	Flags            uint8 // FIFOXEn|FIFOYEn|...
	Enable           bool
	FullChannel      IntChannel
	WatermarkChannel IntChannel
	Watermark        uint16
}

// FIFOFrame holds one FIFO read snapshot.
type FIFOFrame struct {
	Data       []byte
	Length     uint16 // number of valid bytes in Data
	SensorTime uint32 // sensortime ticks, when a sensortime frame was extracted
	ConfChange uint8  // configuration change flags
}

// Sample is a raw accelerometer sample.
type Sample struct {
	X, Y, Z int16
}
