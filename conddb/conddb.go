// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conddb holds types to describe the configuration database
// of BMA400 acquisitions.
package conddb // import "github.com/go-lpc/bma400/conddb"

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// ErrNoPreset is returned when a requested preset could not be found.
var ErrNoPreset = errors.New("conddb: no such preset")

// DB exposes convenience methods to easily retrieve acquisition presets
// from the configuration database.
type DB struct {
	db   *sql.DB
	name string // name of the configuration database
}

// Open opens a connection to the configuration database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("conddb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

const presetColumns = `name, intf, odr, acc_range, data_src, osr, filt1_bw, fifo_flags, iterations, poll_ms`

// LastPreset returns the most recently registered preset.
func (db *DB) LastPreset(ctx context.Context) (Preset, error) {
	ps, err := db.presets(
		ctx, "last preset",
		"SELECT "+presetColumns+" FROM presets ORDER BY datetime DESC LIMIT 1",
	)
	if err != nil {
		return Preset{}, err
	}
	if len(ps) == 0 {
		return Preset{}, fmt.Errorf("conddb: could not find last preset: %w", ErrNoPreset)
	}
	return ps[0], nil
}

// Preset returns the preset with the provided name.
func (db *DB) Preset(ctx context.Context, name string) (Preset, error) {
	ps, err := db.presets(
		ctx, "preset "+name,
		"SELECT "+presetColumns+" FROM presets WHERE name=? ORDER BY datetime DESC LIMIT 1",
		name,
	)
	if err != nil {
		return Preset{}, err
	}
	if len(ps) == 0 {
		return Preset{}, fmt.Errorf("conddb: could not find preset %q: %w", name, ErrNoPreset)
	}
	return ps[0], nil
}

// Presets returns all the registered presets.
func (db *DB) Presets(ctx context.Context) ([]Preset, error) {
	return db.presets(
		ctx, "presets",
		"SELECT "+presetColumns+" FROM presets ORDER BY datetime DESC",
	)
}

func (db *DB) presets(ctx context.Context, what, query string, args ...interface{}) ([]Preset, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var ps []Preset
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return ps, fmt.Errorf("conddb: could not query %s: %w", what, err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		var p Preset
		err = rows.Scan(
			&p.Name, &p.Intf,
			&p.ODR, &p.Range, &p.DataSrc, &p.OSR, &p.FiltBW,
			&p.FIFOFlags, &p.Iterations, &p.PollMS,
		)
		if err != nil {
			return ps, fmt.Errorf("conddb: could not scan row %d for %s: %w", i, what, err)
		}
		i++
		ps = append(ps, p)
	}

	if err := rows.Err(); err != nil {
		return ps, fmt.Errorf("conddb: could not scan db for %s: %w", what, err)
	}

	if err := ctx.Err(); err != nil {
		return ps, fmt.Errorf("conddb: context error while retrieving %s: %w", what, err)
	}

	return ps, nil
}
