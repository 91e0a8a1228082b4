// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daq

import (
	"fmt"
	"io"
	"strings"
)

// Printer writes a human readable version of snapshots.
type Printer struct {
	w io.Writer
}

// NewPrinter returns a new printer that writes to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Header writes the banner of a FIFO-full acquisition.
func (p *Printer) Header() error {
	_, err := io.WriteString(p.w, "Read FIFO Full interrupt XYZ data with sensortime\n")
	return err
}

func (p *Printer) Print(snap Snapshot) error {
	o := new(strings.Builder)
	fmt.Fprintf(o, "\n\nIteration : %d\n\n", snap.Iteration)
	fmt.Fprintf(o, "Requested FIFO length : %d\n", snap.Requested)
	fmt.Fprintf(o, "Available FIFO length : %d\n", snap.Available)
	fmt.Fprintf(o, "Requested FIFO frames : %d\n", snap.MaxFrames)

	if n := len(snap.Samples); n > 0 {
		fmt.Fprintf(o, "Extracted FIFO frames : %d\n", n)
		for i, v := range snap.Samples {
			fmt.Fprintf(o, "Accel[%d] Raw_X : %d     Raw_Y : %d     Raw_Z : %d \n", i, v.X, v.Y, v.Z)
		}
	}

	if snap.SensorTime != 0 {
		fmt.Fprintf(o, "FIFO sensor time : %.4fs\n", snap.Seconds())
	}

	if snap.ConfChange != 0 {
		fmt.Fprintf(o, "FIFO configuration change: 0x%X\n", snap.ConfChange)
		for _, v := range snap.Changes() {
			fmt.Fprintf(o, "%s\n", v)
		}
	}

	_, err := io.WriteString(p.w, o.String())
	if err != nil {
		return fmt.Errorf("daq: could not print snapshot %d: %w", snap.Iteration, err)
	}
	return nil
}
