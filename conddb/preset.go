// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conddb

import (
	"fmt"
	"time"
)

// Preset describes a BMA400 FIFO acquisition setup.
type Preset struct {
	Name string
	Intf string // "i2c" or "spi"

	ODR     uint8
	Range   uint8
	DataSrc uint8
	OSR     uint8
	FiltBW  uint8

	FIFOFlags  uint8
	Iterations uint32
	PollMS     uint32 // delay between two interrupt status polls, in milliseconds
}

// Interval returns the delay between two interrupt status polls.
func (p Preset) Interval() time.Duration {
	return time.Duration(p.PollMS) * time.Millisecond
}

func (p Preset) String() string {
	return fmt.Sprintf(
		"%s: intf=%s odr=0x%02x range=0x%02x src=0x%02x osr=%d bw=%d fifo=0x%02x n=%d poll=%v",
		p.Name, p.Intf, p.ODR, p.Range, p.DataSrc, p.OSR, p.FiltBW,
		p.FIFOFlags, p.Iterations, p.Interval(),
	)
}
