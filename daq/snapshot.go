// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daq

import (
	"github.com/go-lpc/bma400/sensorapi"
)

// Snapshot is the content of the FIFO read after a FIFO-full interrupt.
type Snapshot struct {
	Iteration  uint32 // 1-based index of the observed interrupt
	Requested  uint16 // number of bytes requested from the FIFO
	Available  uint16 // number of bytes read from the FIFO
	MaxFrames  uint16 // maximum number of extracted frames
	Samples    []sensorapi.Sample
	SensorTime uint32 // sensortime ticks, 0 when no sensortime frame was read
	ConfChange uint8  // configuration change flags
}

// Seconds returns the sensortime of the snapshot, in seconds.
func (snap Snapshot) Seconds() float64 {
	return float64(snap.SensorTime) * sensorapi.SensorTick
}

var changes = []struct {
	flag uint8
	name string
}{
	{sensorapi.FIFOConf0Change, "FIFO data source configuration changed"},
	{sensorapi.AccelConf0Change, "Accel filt1_bw configuration changed"},
	{sensorapi.AccelConf1Change, "Accel odr/osr/range configuration changed"},
}

// Changes returns the description of the configuration changes
// reported by the FIFO.
func (snap Snapshot) Changes() []string {
	var o []string
	for _, v := range changes {
		if snap.ConfChange&v.flag != 0 {
			o = append(o, v.name)
		}
	}
	return o
}
