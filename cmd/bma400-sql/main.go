// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command bma400-sql inspects the acquisition presets of the
// configuration database.
package main // import "github.com/go-lpc/bma400/cmd/bma400-sql"

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/go-lpc/bma400/conddb"
	"github.com/go-lpc/bma400/daq"
)

const (
	dbname = "bma400"
)

func main() {
	log.SetPrefix("bma400-sql: ")
	log.SetFlags(0)

	var (
		name   = flag.String("db", dbname, "name of the configuration database")
		preset = flag.String("preset", "", "preset to inspect (default: list all presets)")
	)

	flag.Parse()

	db, err := conddb.Open(*name)
	if err != nil {
		log.Fatalf("could not open BMA400 db: %+v", err)
	}
	defer db.Close()

	err = doQuery(os.Stdout, db, *preset)
	if err != nil {
		log.Fatalf("could not do query: %+v", err)
	}
}

type presetDB interface {
	Preset(ctx context.Context, name string) (conddb.Preset, error)
	LastPreset(ctx context.Context) (conddb.Preset, error)
	Presets(ctx context.Context) ([]conddb.Preset, error)
}

func doQuery(w io.Writer, db presetDB, name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if name != "" {
		p, err := db.Preset(ctx, name)
		if err != nil {
			return fmt.Errorf("could not get preset %q: %w", name, err)
		}
		return describe(w, p)
	}

	last, err := db.LastPreset(ctx)
	if err != nil {
		return fmt.Errorf("could not get last preset: %w", err)
	}
	fmt.Fprintf(w, "last: %q\n", last.Name)

	ps, err := db.Presets(ctx)
	if err != nil {
		return fmt.Errorf("could not retrieve presets: %w", err)
	}
	fmt.Fprintf(w, "presets: %d\n", len(ps))
	for i, p := range ps {
		fmt.Fprintf(w, "row[%d]: %v\n", i, p)
	}

	return nil
}

func describe(w io.Writer, p conddb.Preset) error {
	fmt.Fprintf(w, "%v\n", p)

	cfg, err := daq.ConfigFrom(p)
	if err != nil {
		fmt.Fprintf(w, ">>> invalid preset: %+v\n", err)
		return nil
	}
	fmt.Fprintf(w, ">>> accel: %+v\n", cfg.Accel)
	fmt.Fprintf(w, ">>> fifo:  %+v\n", cfg.FIFO)
	fmt.Fprintf(w, ">>> iterations=%d interval=%v\n", cfg.Iterations, cfg.Interval)
	return nil
}
