// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !sensorapi

package sensorapi

import (
	"github.com/go-lpc/bma400/intf"
)

// Device is a BMA400 sensor driven by the SensorAPI.
//
// Without the "sensorapi" build tag, no device can be opened.
type Device struct{}

// Open always fails: the SensorAPI binding was not compiled in.
func Open(itf *intf.Interface) (*Device, error) {
	return nil, ErrNoSensorAPI
}

func (dev *Device) Close() error                        { return nil }
func (dev *Device) ChipID() uint8                       { return 0 }
func (dev *Device) SoftReset() error                    { return ErrNoSensorAPI }
func (dev *Device) SensorConf() (AccelConf, error)      { return AccelConf{}, ErrNoSensorAPI }
func (dev *Device) SetSensorConf(AccelConf) error       { return ErrNoSensorAPI }
func (dev *Device) FIFOConf() (FIFOConf, error)         { return FIFOConf{}, ErrNoSensorAPI }
func (dev *Device) SetFIFOConf(FIFOConf) error          { return ErrNoSensorAPI }
func (dev *Device) SetPowerMode(PowerMode) error        { return ErrNoSensorAPI }
func (dev *Device) EnableInterrupts(...IntEnable) error { return ErrNoSensorAPI }
func (dev *Device) InterruptStatus() (uint16, error)    { return 0, ErrNoSensorAPI }
func (dev *Device) ReadFIFO(*FIFOFrame) error           { return ErrNoSensorAPI }

func (dev *Device) ExtractAccel(*FIFOFrame, []Sample) (int, error) {
	return 0, ErrNoSensorAPI
}
