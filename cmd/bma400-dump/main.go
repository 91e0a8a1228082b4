// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// bma400-dump decodes and displays BMA400 FIFO snapshot files.
//
// Usage: bma400-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> bma400-dump ./fifo.raw
//
//	Iteration : 1
//
//	Requested FIFO length : 1049
//	Available FIFO length : 1043
//	Requested FIFO frames : 200
//	Extracted FIFO frames : 148
//	Accel[0] Raw_X : -2     Raw_Y : 5     Raw_Z : 1021
//	[...]
//
//	$> bma400-dump -hist ./fifo.raw
//	=== X ===
//	entries: 1480
//	mean:    -1.832
//	std-dev: 3.114
//	[...]
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/go-lpc/bma400/daq"
	"go-hep.org/x/hep/hbook"
)

const usage = `bma400-dump decodes and displays BMA400 FIFO snapshot files.

Usage: bma400-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> bma400-dump ./fifo.raw
 $> bma400-dump -hist ./fifo.raw

Options:
`

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("bma400-dump: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("bma400-dump", flag.ExitOnError)

		hist = fset.Bool("hist", false, "display per-axis summaries instead of samples")
	)

	fset.Usage = func() {
		fmt.Print(usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		log.Fatalf("missing path to input snapshot file")
	}

	for _, fname := range fset.Args() {
		err := process(w, fname, *hist)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string, hist bool) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	f, err := os.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	var (
		dec = daq.NewDecoder(bufio.NewReader(f))
		pr  = daq.NewPrinter(wbuf)
		hs  = newAxes()
	)
loop:
	for {
		var snap daq.Snapshot
		err := dec.Decode(&snap)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break loop
			}
			return fmt.Errorf("could not decode snapshot: %w", err)
		}

		if hist {
			hs.fill(snap)
			continue
		}

		err = pr.Print(snap)
		if err != nil {
			return err
		}
	}

	if hist {
		hs.print(wbuf)
	}

	return nil
}

type axes struct {
	x, y, z *hbook.H1D
}

func newAxes() axes {
	const (
		nbins = 256
		xmin  = math.MinInt16
		xmax  = math.MaxInt16 + 1
	)
	return axes{
		x: hbook.NewH1D(nbins, xmin, xmax),
		y: hbook.NewH1D(nbins, xmin, xmax),
		z: hbook.NewH1D(nbins, xmin, xmax),
	}
}

func (hs axes) fill(snap daq.Snapshot) {
	for _, v := range snap.Samples {
		hs.x.Fill(float64(v.X), 1)
		hs.y.Fill(float64(v.Y), 1)
		hs.z.Fill(float64(v.Z), 1)
	}
}

func (hs axes) print(w io.Writer) {
	for _, v := range []struct {
		name string
		h    *hbook.H1D
	}{
		{"X", hs.x},
		{"Y", hs.y},
		{"Z", hs.z},
	} {
		fmt.Fprintf(w, "=== %s ===\n", v.name)
		fmt.Fprintf(w, "entries: %d\n", v.h.Entries())
		if v.h.Entries() == 0 {
			continue
		}
		fmt.Fprintf(w, "mean:    %+.3f\n", v.h.XMean())
		fmt.Fprintf(w, "std-dev: %.3f\n", v.h.XStdDev())
	}
}
