// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command bma400-fifo reads accelerometer and sensortime frames from the
// FIFO of a BMA400 sensor, each time the FIFO-full interrupt is asserted.
//
// Usage: bma400-fifo [OPTIONS]
//
// Example:
//
//	$> bma400-fifo -board=host -intf=i2c -i2c=1 -n 10 -o fifo.raw
//	bma400-fifo: I2C interface
//	Read FIFO Full interrupt XYZ data with sensortime
//
//
//	Iteration : 1
//
//	Requested FIFO length : 1049
//	Available FIFO length : 1043
//	Requested FIFO frames : 200
//	Extracted FIFO frames : 146
//	Accel[0] Raw_X : -4     Raw_Y : 11     Raw_Z : 1018
//	[...]
//	FIFO sensor time : 1.3201s
package main // import "github.com/go-lpc/bma400/cmd/bma400-fifo"

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/go-lpc/bma400/conddb"
	"github.com/go-lpc/bma400/daq"
	"github.com/go-lpc/bma400/internal/shuttle"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.SetPrefix("bma400-fifo: ")
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := xmain(ctx, os.Stdout, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		if diag := shuttle.Diagnostic(err); diag != "" {
			fmt.Fprintln(os.Stderr, diag)
		}
		log.Fatalf("could not run FIFO acquisition: %+v", err)
	}
}

type options struct {
	sf     shuttle.Flags
	n      int
	oname  string
	dbname string
	preset string
	poll   time.Duration
}

func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("bma400-fifo", flag.ContinueOnError)
	opts.sf.Register(fs)

	fs.IntVar(&opts.n, "n", 10, "number of FIFO-full interrupts to acquire, overriding the preset")
	fs.StringVar(&opts.oname, "o", "", "path to output snapshot file")
	fs.StringVar(&opts.dbname, "db", "", "name of the presets database")
	fs.StringVar(&opts.preset, "preset", "", "name of the preset to load (default: last preset)")
	fs.DurationVar(&opts.poll, "poll", 0, "delay between two interrupt status polls, overriding the preset")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `bma400-fifo reads the FIFO of a BMA400 sensor on FIFO-full interrupts.

Usage: bma400-fifo [OPTIONS]

Example:

 $> bma400-fifo -board=host -intf=i2c -i2c=1 -n 10 -o fifo.raw

Options:
`)
		fs.PrintDefaults()
	}
	return fs
}

func xmain(ctx context.Context, w io.Writer, args []string) error {
	var (
		opts options
		fs   = newFlagSet(&opts)
	)

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	msg := log.New(os.Stderr, "bma400-fifo: ", 0)

	cfg, err := opts.config(ctx, fs)
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}

	var out io.Writer
	if opts.oname != "" {
		f, err := os.Create(opts.oname)
		if err != nil {
			return fmt.Errorf("could not create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	dev, err := shuttle.Open(msg, opts.sf)
	if err != nil {
		return err
	}
	defer func() {
		if dev != nil {
			_ = dev.Close()
		}
	}()

	err = run(ctx, dev, cfg, w, out, msg)
	switch {
	case errors.Is(err, context.Canceled):
		msg.Printf("acquisition interrupted")
	case err != nil:
		return err
	}

	err = dev.Close()
	dev = nil
	if err != nil {
		return fmt.Errorf("could not close shuttle: %w", err)
	}

	if f, ok := out.(*os.File); ok {
		err = f.Close()
		if err != nil {
			return fmt.Errorf("could not close output file: %w", err)
		}
	}

	return nil
}

// config returns the acquisition configuration from the presets database,
// overridden by the acquisition flags explicitly set on fs.
func (opts *options) config(ctx context.Context, fs *flag.FlagSet) (daq.Config, error) {
	cfg, err := loadConfig(ctx, opts.dbname, opts.preset)
	if err != nil {
		return cfg, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			cfg.Iterations = opts.n
		case "poll":
			cfg.Interval = opts.poll
		}
	})
	return cfg, nil
}

type presetDB interface {
	Preset(ctx context.Context, name string) (conddb.Preset, error)
	LastPreset(ctx context.Context) (conddb.Preset, error)
	Close() error
}

var openDB = func(name string) (presetDB, error) {
	db, err := conddb.Open(name)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func loadConfig(ctx context.Context, dbname, preset string) (daq.Config, error) {
	if dbname == "" {
		return daq.DefaultConfig(), nil
	}

	db, err := openDB(dbname)
	if err != nil {
		return daq.Config{}, fmt.Errorf("could not open presets db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p conddb.Preset
	switch preset {
	case "":
		p, err = db.LastPreset(ctx)
	default:
		p, err = db.Preset(ctx, preset)
	}
	if err != nil {
		return daq.Config{}, fmt.Errorf("could not retrieve preset: %w", err)
	}

	return daq.ConfigFrom(p)
}

func run(ctx context.Context, drv daq.Driver, cfg daq.Config, w, out io.Writer, msg *log.Logger) error {
	err := daq.Configure(drv, cfg, msg)
	if err != nil {
		msg.Printf("sensor configuration incomplete: %+v", err)
	}

	p := daq.NewPrinter(w)
	err = p.Header()
	if err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}

	var (
		grp, gctx = errgroup.WithContext(ctx)
		snaps     = make(chan daq.Snapshot)
	)

	grp.Go(func() error {
		defer close(snaps)
		_, err := daq.Run(gctx, drv, cfg, msg, func(snap daq.Snapshot) error {
			select {
			case snaps <- snap:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
		return err
	})

	grp.Go(func() error {
		var enc *daq.Encoder
		if out != nil {
			enc = daq.NewEncoder(out)
		}
		for snap := range snaps {
			err := p.Print(snap)
			if err != nil {
				return err
			}
			if enc == nil {
				continue
			}
			err = enc.Encode(snap)
			if err != nil {
				return fmt.Errorf("could not save snapshot %d: %w", snap.Iteration, err)
			}
		}
		return nil
	})

	return grp.Wait()
}
