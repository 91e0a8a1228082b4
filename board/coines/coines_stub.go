// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !coines

package coines

import (
	"fmt"

	"github.com/go-lpc/bma400/board"
)

// ShuttlePin7 is the chip-select line of the BMA400 shuttle.
const ShuttlePin7 uint8 = 9

// Board is a Bosch application board reached over USB.
type Board struct {
	board.Board
}

var _ board.ChipSelecter = (*Board)(nil)

// ChipSelect returns the line selecting the shuttle on the SPI bus.
func (brd *Board) ChipSelect() uint8 { return ShuttlePin7 }

// Open always fails: the COINES binding was not compiled in.
func Open() (*Board, error) {
	return nil, fmt.Errorf("%w: built without COINES support (rebuild with -tags coines)", board.ErrConnect)
}
