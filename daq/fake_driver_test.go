// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daq

import (
	"fmt"
	"sync"

	"github.com/go-lpc/bma400/sensorapi"
)

// fakeDriver replays a sequence of interrupt statuses and serves
// synthetic FIFO content.
type fakeDriver struct {
	mu sync.Mutex

	ops    []string
	status []uint16 // statuses returned by successive polls, then 0
	polls  int

	accel sensorapi.AccelConf
	fifo  sensorapi.FIFOConf
	mode  sensorapi.PowerMode
	ints  []sensorapi.IntEnable

	frames  int    // number of frames served on each FIFO read
	stime   uint32 // sensortime served on each FIFO read
	changes uint8

	errs   map[string]error
	closed bool
}

func newFakeDriver(status ...uint16) *fakeDriver {
	return &fakeDriver{
		status: status,
		frames: 3,
		errs:   make(map[string]error),
	}
}

func (dev *fakeDriver) op(name string) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.ops = append(dev.ops, name)
	return dev.errs[name]
}

func (dev *fakeDriver) SoftReset() error {
	return dev.op("soft-reset")
}

func (dev *fakeDriver) SensorConf() (sensorapi.AccelConf, error) {
	return dev.accel, dev.op("get-sensor-conf")
}

func (dev *fakeDriver) SetSensorConf(cfg sensorapi.AccelConf) error {
	err := dev.op("set-sensor-conf")
	if err == nil {
		dev.accel = cfg
	}
	return err
}

func (dev *fakeDriver) FIFOConf() (sensorapi.FIFOConf, error) {
	return dev.fifo, dev.op("get-fifo-conf")
}

func (dev *fakeDriver) SetFIFOConf(cfg sensorapi.FIFOConf) error {
	err := dev.op("set-fifo-conf")
	if err == nil {
		dev.fifo = cfg
	}
	return err
}

func (dev *fakeDriver) SetPowerMode(mode sensorapi.PowerMode) error {
	err := dev.op("set-power-mode")
	if err == nil {
		dev.mode = mode
	}
	return err
}

func (dev *fakeDriver) EnableInterrupts(ints ...sensorapi.IntEnable) error {
	err := dev.op("enable-interrupts")
	if err == nil {
		dev.ints = append(dev.ints, ints...)
	}
	return err
}

func (dev *fakeDriver) InterruptStatus() (uint16, error) {
	err := dev.op("interrupt-status")

	dev.mu.Lock()
	defer dev.mu.Unlock()
	i := dev.polls
	dev.polls++
	if err != nil {
		return 0, err
	}
	if i < len(dev.status) {
		return dev.status[i], nil
	}
	return 0, nil
}

func (dev *fakeDriver) ReadFIFO(frame *sensorapi.FIFOFrame) error {
	err := dev.op("read-fifo")
	if err != nil {
		return err
	}
	n := dev.frames * 7
	if n > len(frame.Data) {
		n = len(frame.Data)
	}
	for i := range frame.Data[:n] {
		frame.Data[i] = byte(i)
	}
	frame.Length = uint16(n)
	return nil
}

func (dev *fakeDriver) ExtractAccel(frame *sensorapi.FIFOFrame, samples []sensorapi.Sample) (int, error) {
	err := dev.op("extract-accel")
	if err != nil {
		return 0, err
	}
	n := dev.frames
	if n > len(samples) {
		n = len(samples)
	}
	for i := range samples[:n] {
		samples[i] = sensorapi.Sample{X: int16(i), Y: int16(-i), Z: int16(1000 + i)}
	}
	frame.SensorTime = dev.stime
	frame.ConfChange = dev.changes
	return n, nil
}

func (dev *fakeDriver) Close() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.closed {
		return fmt.Errorf("fake: already closed")
	}
	dev.closed = true
	return nil
}

func (dev *fakeDriver) count(name string) int {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	n := 0
	for _, op := range dev.ops {
		if op == name {
			n++
		}
	}
	return n
}

var _ Device = (*fakeDriver)(nil)
