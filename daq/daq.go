// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package daq runs FIFO-full driven acquisitions of a BMA400 sensor.
package daq // import "github.com/go-lpc/bma400/daq"

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-lpc/bma400/sensorapi"
)

// Driver is the sensor interface needed to run an acquisition.
type Driver interface {
	SoftReset() error
	SensorConf() (sensorapi.AccelConf, error)
	SetSensorConf(cfg sensorapi.AccelConf) error
	FIFOConf() (sensorapi.FIFOConf, error)
	SetFIFOConf(cfg sensorapi.FIFOConf) error
	SetPowerMode(mode sensorapi.PowerMode) error
	EnableInterrupts(ints ...sensorapi.IntEnable) error
	InterruptStatus() (uint16, error)
	ReadFIFO(frame *sensorapi.FIFOFrame) error
	ExtractAccel(frame *sensorapi.FIFOFrame, samples []sensorapi.Sample) (int, error)
}

var _ Driver = (*sensorapi.Device)(nil)

// Configure applies the accelerometer and FIFO configuration, switches
// the sensor to normal mode and enables the FIFO-full interrupt.
//
// Failures are logged to msg and do not stop the configuration sequence.
// Configure returns the first error encountered, if any.
func Configure(drv Driver, cfg Config, msg *log.Logger) error {
	var errs []error
	check := func(api string, err error) {
		if err != nil {
			errs = append(errs, sensorapi.Check(msg, api, err))
		}
	}

	check("bma400_soft_reset", drv.SoftReset())

	accel, err := drv.SensorConf()
	check("bma400_get_sensor_conf", err)
	accel.ODR = cfg.Accel.ODR
	accel.Range = cfg.Accel.Range
	accel.DataSrc = cfg.Accel.DataSrc
	accel.OSR = cfg.Accel.OSR
	accel.FiltBW = cfg.Accel.FiltBW
	check("bma400_set_sensor_conf", drv.SetSensorConf(accel))

	fifo, err := drv.FIFOConf()
	check("bma400_get_device_conf", err)
	fifo.Flags = cfg.FIFO.Flags
	fifo.Enable = cfg.FIFO.Enable
	fifo.FullChannel = cfg.FIFO.FullChannel
	check("bma400_set_device_conf", drv.SetFIFOConf(fifo))

	check("bma400_set_power_mode", drv.SetPowerMode(sensorapi.NormalMode))

	check("bma400_enable_interrupt", drv.EnableInterrupts(sensorapi.IntEnable{
		Type:   sensorapi.FIFOFullInt,
		Enable: true,
	}))

	if len(errs) > 0 {
		return fmt.Errorf("daq: could not configure sensor (%d failure(s)): %w", len(errs), errs[0])
	}
	return nil
}

// Acquire polls the interrupt status once.
// When the FIFO-full interrupt is asserted, Acquire reads the FIFO content,
// extracts the accelerometer samples and returns them as the it-th snapshot.
//
// Acquire reports whether the FIFO-full interrupt was asserted.
// A failed status read is logged and reported as not asserted.
func Acquire(drv Driver, cfg Config, msg *log.Logger, it int) (Snapshot, bool) {
	status, err := drv.InterruptStatus()
	if err != nil {
		_ = sensorapi.Check(msg, "bma400_get_interrupt_status", err)
		return Snapshot{}, false
	}
	if status&sensorapi.AssertedFIFOFull == 0 {
		return Snapshot{}, false
	}

	var (
		frame = sensorapi.FIFOFrame{
			Data: make([]byte, cfg.FIFOSize),
		}
		samples = make([]sensorapi.Sample, cfg.MaxFrames)
		snap    = Snapshot{
			Iteration: uint32(it),
			Requested: uint16(len(frame.Data)),
			MaxFrames: uint16(len(samples)),
		}
	)

	err = drv.ReadFIFO(&frame)
	_ = sensorapi.Check(msg, "bma400_get_fifo_data", err)
	snap.Available = frame.Length

	n, err := drv.ExtractAccel(&frame, samples)
	_ = sensorapi.Check(msg, "bma400_extract_accel", err)
	switch {
	case n < 0:
		n = 0
	case n > len(samples):
		n = len(samples)
	}

	snap.Samples = samples[:n:n]
	snap.SensorTime = frame.SensorTime
	snap.ConfChange = frame.ConfChange

	return snap, true
}

// Run polls the sensor until cfg.Iterations FIFO-full interrupts have been
// observed, or until ctx is done.
// Each snapshot is handed to sink, when not nil.
// Iterations <= 0 polls until ctx is done.
//
// Run returns the number of observed FIFO-full interrupts.
func Run(ctx context.Context, drv Driver, cfg Config, msg *log.Logger, sink func(Snapshot) error) (int, error) {
	n := 0
	for cfg.Iterations <= 0 || n < cfg.Iterations {
		if err := ctx.Err(); err != nil {
			return n, err
		}

		snap, ok := Acquire(drv, cfg, msg, n+1)
		if !ok {
			if err := wait(ctx, cfg.Interval); err != nil {
				return n, err
			}
			continue
		}
		n++

		if sink == nil {
			continue
		}
		err := sink(snap)
		if err != nil {
			return n, fmt.Errorf("daq: could not process snapshot %d: %w", snap.Iteration, err)
		}
	}
	return n, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
