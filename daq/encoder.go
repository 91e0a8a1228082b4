// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daq

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-lpc/bma400/internal/crc16"
)

const (
	snHeader  = 0xb0 // snapshot header marker
	snTrailer = 0xa0 // snapshot trailer marker

	smHeader  = 0xb4 // samples header marker
	smTrailer = 0xa3 // samples trailer marker
)

// Encoder writes snapshots to an output stream.
// Encoder computes the CRC-16 checksum of each snapshot on the fly and
// appends it at the end of the snapshot record.
type Encoder struct {
	w   io.Writer
	buf []byte
	err error
	crc crc16.Hash16
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   w,
		buf: make([]byte, 8),
		crc: crc16.New(nil),
	}
}

func (enc *Encoder) crcw(p []byte) {
	_, _ = enc.crc.Write(p) // can not fail.
}

// Encode writes the snapshot to the stream, followed by its CRC-16 checksum.
func (enc *Encoder) Encode(snap Snapshot) error {
	if len(snap.Samples) > 0xffff {
		return fmt.Errorf("daq: too many samples in snapshot %d (n=%d)", snap.Iteration, len(snap.Samples))
	}

	enc.crc.Reset()

	enc.writeU8(snHeader)
	if enc.err != nil {
		return fmt.Errorf("daq: could not write snapshot header marker: %w", enc.err)
	}

	enc.writeU32(snap.Iteration)
	enc.writeU16(snap.Requested)
	enc.writeU16(snap.Available)
	enc.writeU16(snap.MaxFrames)
	enc.writeU32(snap.SensorTime)
	enc.writeU8(snap.ConfChange)
	enc.writeU16(uint16(len(snap.Samples)))

	enc.writeU8(smHeader)
	for _, v := range snap.Samples {
		enc.writeU16(uint16(v.X))
		enc.writeU16(uint16(v.Y))
		enc.writeU16(uint16(v.Z))
	}
	enc.writeU8(smTrailer)
	enc.writeU8(snTrailer)

	crc := enc.crc.Sum16()
	enc.writeU16(crc)

	if enc.err != nil {
		return fmt.Errorf("daq: could not write snapshot %d: %w", snap.Iteration, enc.err)
	}
	return nil
}

func (enc *Encoder) write(p []byte) {
	if enc.err != nil {
		return
	}
	_, enc.err = enc.w.Write(p)
	enc.crcw(p)
}

func (enc *Encoder) writeU8(v uint8) {
	enc.buf[0] = v
	enc.write(enc.buf[:1])
}

func (enc *Encoder) writeU16(v uint16) {
	const n = 2
	binary.BigEndian.PutUint16(enc.buf[:n], v)
	enc.write(enc.buf[:n])
}

func (enc *Encoder) writeU32(v uint32) {
	const n = 4
	binary.BigEndian.PutUint32(enc.buf[:n], v)
	enc.write(enc.buf[:n])
}
