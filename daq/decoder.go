// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daq

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-lpc/bma400/internal/crc16"
	"github.com/go-lpc/bma400/sensorapi"
)

// Decoder reads (and validates) snapshots from an underlying data source.
type Decoder struct {
	r io.Reader

	buf []byte
	err error
	crc crc16.Hash16
	sum bool // whether loaded bytes are part of the checksum
}

// NewDecoder creates a decoder that reads and validates snapshots from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:   r,
		buf: make([]byte, 8),
		crc: crc16.New(nil),
	}
}

// Decode reads the next snapshot from the stream.
// Decode returns io.EOF when the stream ends on a snapshot boundary.
func (dec *Decoder) Decode(snap *Snapshot) error {
	dec.crc.Reset()
	dec.sum = true

	v := dec.readU8()
	if dec.err != nil {
		if errors.Is(dec.err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("daq: could not read snapshot header marker: %w", dec.err)
	}
	if v != snHeader {
		return fmt.Errorf("daq: could not read snapshot header marker (got=0x%x)", v)
	}

	snap.Iteration = dec.readU32()
	snap.Requested = dec.readU16()
	snap.Available = dec.readU16()
	snap.MaxFrames = dec.readU16()
	snap.SensorTime = dec.readU32()
	snap.ConfChange = dec.readU8()
	n := int(dec.readU16())
	if err := dec.unexpected(); err != nil {
		return fmt.Errorf("daq: could not read snapshot header: %w", err)
	}

	if v := dec.readU8(); dec.err == nil && v != smHeader {
		return fmt.Errorf("daq: snapshot %d: invalid samples header marker (got=0x%x)", snap.Iteration, v)
	}

	snap.Samples = snap.Samples[:0]
	for i := 0; i < n; i++ {
		snap.Samples = append(snap.Samples, sensorapi.Sample{
			X: int16(dec.readU16()),
			Y: int16(dec.readU16()),
			Z: int16(dec.readU16()),
		})
	}
	if err := dec.unexpected(); err != nil {
		return fmt.Errorf("daq: snapshot %d: could not read samples: %w", snap.Iteration, err)
	}

	if v := dec.readU8(); dec.err == nil && v != smTrailer {
		return fmt.Errorf("daq: snapshot %d: invalid samples trailer marker (got=0x%x)", snap.Iteration, v)
	}
	if v := dec.readU8(); dec.err == nil && v != snTrailer {
		return fmt.Errorf("daq: snapshot %d: invalid snapshot trailer marker (got=0x%x)", snap.Iteration, v)
	}

	compCRC := dec.crc.Sum16()
	dec.sum = false
	recvCRC := dec.readU16()
	if err := dec.unexpected(); err != nil {
		return fmt.Errorf("daq: snapshot %d: could not receive CRC-16: %w", snap.Iteration, err)
	}

	if compCRC != recvCRC {
		return fmt.Errorf(
			"daq: snapshot %d: inconsistent CRC: recv=0x%04x comp=0x%04x",
			snap.Iteration, recvCRC, compCRC,
		)
	}

	return nil
}

// unexpected converts a premature end of stream into io.ErrUnexpectedEOF.
func (dec *Decoder) unexpected() error {
	if errors.Is(dec.err, io.EOF) {
		dec.err = io.ErrUnexpectedEOF
	}
	return dec.err
}

func (dec *Decoder) load(n int) {
	if dec.err != nil {
		return
	}
	_, dec.err = io.ReadFull(dec.r, dec.buf[:n])
	if dec.err == nil && dec.sum {
		_, _ = dec.crc.Write(dec.buf[:n]) // can not fail.
	}
}

func (dec *Decoder) readU8() uint8 {
	dec.load(1)
	return dec.buf[0]
}

func (dec *Decoder) readU16() uint16 {
	const n = 2
	dec.load(n)
	return binary.BigEndian.Uint16(dec.buf[:n])
}

func (dec *Decoder) readU32() uint32 {
	const n = 4
	dec.load(n)
	return binary.BigEndian.Uint32(dec.buf[:n])
}
