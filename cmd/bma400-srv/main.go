// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command bma400-srv starts a TDAQ server streaming BMA400 FIFO snapshots.
//
// The shuttle is configured through environment variables:
//
//	BMA400_BOARD   application board (coines|host)
//	BMA400_INTF    sensor interface (i2c|spi)
//	BMA400_I2C     host I2C bus name
//	BMA400_SPI     host SPI port name
//	BMA400_SMBUS   host SMBus number
//	BMA400_DB      presets database, to enable /config presets
//	BMA400_PMON    file where to record the process CPU/memory usage
//	BMA400_ALERT   period after which a stalled acquisition raises an alert
package main // import "github.com/go-lpc/bma400/cmd/bma400-srv"

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/go-lpc/bma400/conddb"
	"github.com/go-lpc/bma400/daq"
	"github.com/go-lpc/bma400/internal/shuttle"
)

func main() {
	cmd := flags.New()

	msg := log.New(os.Stdout, "bma400-srv: ", 0)
	sf := shuttleFlags(os.Getenv)

	var opts []daq.ServerOption
	opts = append(opts, daq.WithServerLogger(msg))

	if name := os.Getenv("BMA400_DB"); name != "" {
		db, err := conddb.Open(name)
		if err != nil {
			log.Panicf("could not open presets db %q: %+v", name, err)
		}
		defer db.Close()
		opts = append(opts, daq.WithPresets(db.Preset))
	}

	dev := daq.NewServer(cmd.Args[0], func() (daq.Device, error) {
		s, err := shuttle.Open(msg, sf)
		if err != nil {
			if diag := shuttle.Diagnostic(err); diag != "" {
				msg.Printf("%s", diag)
			}
			return nil, err
		}
		return s, nil
	}, opts...)

	if fname := os.Getenv("BMA400_PMON"); fname != "" {
		stop, err := monitor(fname, time.Second, msg)
		if err != nil {
			log.Panicf("could not monitor process: %+v", err)
		}
		defer stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if v := os.Getenv("BMA400_ALERT"); v != "" {
		freq, err := time.ParseDuration(v)
		if err != nil {
			log.Panicf("could not parse alert period %q: %+v", v, err)
		}
		go newWatchdog(dev, freq, msg, mailAlert(msg)).run(ctx)
	}

	srv := tdaq.New(cmd, os.Stdout)
	dev.Register(srv)

	err := srv.Run(ctx)
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

func shuttleFlags(getenv func(string) string) shuttle.Flags {
	sf := shuttle.Flags{
		Board: getenv("BMA400_BOARD"),
		Intf:  getenv("BMA400_INTF"),
		I2C:   getenv("BMA400_I2C"),
		SPI:   getenv("BMA400_SPI"),
		SMBus: -1,
	}
	if sf.Intf == "" {
		sf.Intf = "i2c"
	}
	if v := getenv("BMA400_SMBUS"); v != "" {
		bus, err := strconv.Atoi(v)
		if err == nil {
			sf.SMBus = bus
		}
	}
	return sf
}
