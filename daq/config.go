// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daq

import (
	"fmt"
	"time"

	"github.com/go-lpc/bma400/conddb"
	"github.com/go-lpc/bma400/sensorapi"
)

// Config describes a FIFO-full acquisition.
type Config struct {
	Accel sensorapi.AccelConf
	FIFO  sensorapi.FIFOConf

	FIFOSize   int           // number of bytes requested from the FIFO
	MaxFrames  int           // maximum number of extracted accelerometer frames
	Iterations int           // number of FIFO-full interrupts to acquire
	Interval   time.Duration // delay between two status polls without interrupt
}

// DefaultConfig returns the configuration of the FIFO-full demonstration:
// X, Y, Z and sensortime frames at 100Hz in the 2g range, 10 iterations.
func DefaultConfig() Config {
	return Config{
		Accel: sensorapi.AccelConf{
			ODR:     sensorapi.ODR100Hz,
			Range:   sensorapi.Range2G,
			DataSrc: sensorapi.DataSrcFilt1,
		},
		FIFO: sensorapi.FIFOConf{
			Flags:       sensorapi.FIFOXEn | sensorapi.FIFOYEn | sensorapi.FIFOZEn | sensorapi.FIFOTimeEn,
			Enable:      true,
			FullChannel: sensorapi.IntChannel1,
		},
		FIFOSize:   sensorapi.FIFOSizeFull,
		MaxFrames:  200,
		Iterations: 10,
	}
}

// ConfigFrom returns the default configuration updated with the
// content of the provided preset.
func ConfigFrom(p conddb.Preset) (Config, error) {
	cfg := DefaultConfig()

	switch {
	case p.ODR < sensorapi.ODR12_5Hz || p.ODR > sensorapi.ODR800Hz:
		return cfg, fmt.Errorf("daq: preset %q has an invalid ODR (0x%02x)", p.Name, p.ODR)
	case p.Range > sensorapi.Range16G:
		return cfg, fmt.Errorf("daq: preset %q has an invalid range (0x%02x)", p.Name, p.Range)
	case p.DataSrc > sensorapi.DataSrcFiltLP:
		return cfg, fmt.Errorf("daq: preset %q has an invalid data source (0x%02x)", p.Name, p.DataSrc)
	case p.OSR > 3:
		return cfg, fmt.Errorf("daq: preset %q has an invalid oversampling rate (%d)", p.Name, p.OSR)
	case p.FIFOFlags&(sensorapi.FIFOXEn|sensorapi.FIFOYEn|sensorapi.FIFOZEn) == 0:
		return cfg, fmt.Errorf("daq: preset %q enables no FIFO axis (flags=0x%02x)", p.Name, p.FIFOFlags)
	}

	cfg.Accel = sensorapi.AccelConf{
		ODR:     p.ODR,
		Range:   p.Range,
		DataSrc: p.DataSrc,
		OSR:     p.OSR,
		FiltBW:  p.FiltBW,
	}
	cfg.FIFO.Flags = p.FIFOFlags
	if p.Iterations > 0 {
		cfg.Iterations = int(p.Iterations)
	}
	cfg.Interval = p.Interval()

	return cfg, nil
}
