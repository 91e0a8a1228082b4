// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conddb

import (
	"context"
	"database/sql/driver"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-lpc/bma400/internal/fakedb"
)

func init() {
	drvName = "fakedb"
}

var presetNames = []string{
	"name", "intf", "odr", "acc_range", "data_src", "osr", "filt1_bw",
	"fifo_flags", "iterations", "poll_ms",
}

func presetRow(p Preset) []driver.Value {
	return []driver.Value{
		p.Name, p.Intf,
		int64(p.ODR), int64(p.Range), int64(p.DataSrc), int64(p.OSR), int64(p.FiltBW),
		int64(p.FIFOFlags), int64(p.Iterations), int64(p.PollMS),
	}
}

func TestOpen(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open conddb: %+v", err)
	}
	defer db.Close()
}

func TestDSN(t *testing.T) {
	if got, want := dsn("bma400"), "username:s3cr3t@tcp(localhost)/bma400"; got != want {
		t.Fatalf("invalid DSN: got=%q, want=%q", got, want)
	}
}

func TestLastPreset(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open conddb: %+v", err)
	}
	defer db.Close()

	want := Preset{
		Name: "fifo-100hz", Intf: "i2c",
		ODR: 0x08, Range: 0x00, DataSrc: 0x00, OSR: 0, FiltBW: 1,
		FIFOFlags: 0xe4, Iterations: 10, PollMS: 0,
	}

	_ = fakedb.Run(context.Background(), fakedb.Rows{
		Names:  presetNames,
		Values: [][]driver.Value{presetRow(want)},
	}, func(ctx context.Context) error {
		got, err := db.LastPreset(ctx)
		if err != nil {
			t.Fatalf("could not retrieve last preset: %+v", err)
		}

		if got != want {
			t.Fatalf("invalid last preset:\ngot= %v\nwant=%v", got, want)
		}
		return nil
	})
}

func TestPreset(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open conddb: %+v", err)
	}
	defer db.Close()

	want := Preset{
		Name: "slow", Intf: "spi",
		ODR: 0x05, Range: 0x01, DataSrc: 0x01, OSR: 3, FiltBW: 0,
		FIFOFlags: 0xe0, Iterations: 20, PollMS: 50,
	}

	_ = fakedb.Run(context.Background(), fakedb.Rows{
		Names:  presetNames,
		Values: [][]driver.Value{presetRow(want)},
	}, func(ctx context.Context) error {
		got, err := db.Preset(ctx, "slow")
		if err != nil {
			t.Fatalf("could not retrieve preset: %+v", err)
		}

		if got != want {
			t.Fatalf("invalid preset:\ngot= %v\nwant=%v", got, want)
		}
		if got, want := got.Interval(), 50*time.Millisecond; got != want {
			t.Fatalf("invalid poll interval: got=%v, want=%v", got, want)
		}

		q := fakedb.Last()
		if got, want := q.Args, []driver.Value{"slow"}; !reflect.DeepEqual(got, want) {
			t.Fatalf("invalid query args: got=%v, want=%v", got, want)
		}
		if !strings.Contains(q.Stmt, "WHERE name=?") {
			t.Fatalf("invalid query: %q", q.Stmt)
		}
		return nil
	})
}

func TestPresetNotFound(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open conddb: %+v", err)
	}
	defer db.Close()

	_ = fakedb.Run(context.Background(), fakedb.Rows{
		Names: presetNames,
	}, func(ctx context.Context) error {
		_, err := db.Preset(ctx, "missing")
		if !errors.Is(err, ErrNoPreset) {
			t.Fatalf("invalid error: got=%+v, want=%+v", err, ErrNoPreset)
		}
		return nil
	})

	_ = fakedb.Run(context.Background(), fakedb.Rows{
		Names: presetNames,
	}, func(ctx context.Context) error {
		_, err := db.LastPreset(ctx)
		if !errors.Is(err, ErrNoPreset) {
			t.Fatalf("invalid error: got=%+v, want=%+v", err, ErrNoPreset)
		}
		return nil
	})
}

func TestPresets(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open conddb: %+v", err)
	}
	defer db.Close()

	want := []Preset{
		{Name: "p1", Intf: "i2c", ODR: 0x08, FIFOFlags: 0xe4, Iterations: 10},
		{Name: "p2", Intf: "spi", ODR: 0x09, Range: 0x02, FIFOFlags: 0xe0, Iterations: 5, PollMS: 10},
		{Name: "p3", Intf: "i2c", ODR: 0x07, Range: 0x03, FiltBW: 1, FIFOFlags: 0x24, Iterations: 1},
	}

	rows := fakedb.Rows{Names: presetNames}
	for _, p := range want {
		rows.Values = append(rows.Values, presetRow(p))
	}

	_ = fakedb.Run(context.Background(), rows, func(ctx context.Context) error {
		got, err := db.Presets(ctx)
		if err != nil {
			t.Fatalf("could not retrieve presets: %+v", err)
		}

		if !reflect.DeepEqual(got, want) {
			t.Fatalf("invalid presets:\ngot= %v\nwant=%v", got, want)
		}
		return nil
	})
}

func TestPresetScanError(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open conddb: %+v", err)
	}
	defer db.Close()

	_ = fakedb.Run(context.Background(), fakedb.Rows{
		Names: presetNames,
		Values: [][]driver.Value{
			{"bad", "i2c", "not-a-number", int64(0), int64(0), int64(0), int64(0), int64(0), int64(0), int64(0)},
		},
	}, func(ctx context.Context) error {
		_, err := db.Presets(ctx)
		if err == nil {
			t.Fatalf("expected a scan error")
		}
		return nil
	})
}

func TestPresetString(t *testing.T) {
	p := Preset{
		Name: "fifo", Intf: "i2c", ODR: 0x08, FiltBW: 1,
		FIFOFlags: 0xe4, Iterations: 10, PollMS: 5,
	}
	const want = "fifo: intf=i2c odr=0x08 range=0x00 src=0x00 osr=0 bw=1 fifo=0xe4 n=10 poll=5ms"
	if got := p.String(); got != want {
		t.Fatalf("invalid preset string:\ngot= %q\nwant=%q", got, want)
	}
}
