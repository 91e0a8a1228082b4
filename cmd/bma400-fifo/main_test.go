// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-lpc/bma400/conddb"
	"github.com/go-lpc/bma400/daq"
	"github.com/go-lpc/bma400/sensorapi"
)

type fakeDriver struct {
	status []uint16
	polls  int
}

func (dev *fakeDriver) SoftReset() error                              { return nil }
func (dev *fakeDriver) SetSensorConf(sensorapi.AccelConf) error       { return nil }
func (dev *fakeDriver) SetFIFOConf(sensorapi.FIFOConf) error          { return nil }
func (dev *fakeDriver) SetPowerMode(sensorapi.PowerMode) error        { return nil }
func (dev *fakeDriver) EnableInterrupts(...sensorapi.IntEnable) error { return nil }

func (dev *fakeDriver) SensorConf() (sensorapi.AccelConf, error) {
	return sensorapi.AccelConf{}, nil
}

func (dev *fakeDriver) FIFOConf() (sensorapi.FIFOConf, error) {
	return sensorapi.FIFOConf{}, sensorapi.EComFail
}

func (dev *fakeDriver) InterruptStatus() (uint16, error) {
	i := dev.polls
	dev.polls++
	if i < len(dev.status) {
		return dev.status[i], nil
	}
	return sensorapi.AssertedFIFOFull, nil
}

func (dev *fakeDriver) ReadFIFO(frame *sensorapi.FIFOFrame) error {
	frame.Length = 14
	return nil
}

func (dev *fakeDriver) ExtractAccel(frame *sensorapi.FIFOFrame, samples []sensorapi.Sample) (int, error) {
	samples[0] = sensorapi.Sample{X: 1, Y: 2, Z: 3}
	samples[1] = sensorapi.Sample{X: 4, Y: 5, Z: 6}
	frame.SensorTime = 25600
	return 2, nil
}

func TestRun(t *testing.T) {
	var (
		dev  = &fakeDriver{status: []uint16{0, 0, sensorapi.AssertedFIFOWM}}
		cfg  = daq.DefaultConfig()
		stdo = new(strings.Builder)
		out  = new(bytes.Buffer)
		logs = new(strings.Builder)
	)
	cfg.Iterations = 3

	err := run(context.Background(), dev, cfg, stdo, out, log.New(logs, "", 0))
	if err != nil {
		t.Fatalf("could not run: %+v", err)
	}

	if got, want := strings.Count(stdo.String(), "Iteration : "), 3; got != want {
		t.Fatalf("invalid number of printed iterations: got=%d, want=%d", got, want)
	}
	if !strings.HasPrefix(stdo.String(), "Read FIFO Full interrupt XYZ data with sensortime\n") {
		t.Fatalf("missing banner:\n%s", stdo.String())
	}
	if !strings.Contains(stdo.String(), "FIFO sensor time : 1.0000s\n") {
		t.Fatalf("missing sensor time:\n%s", stdo.String())
	}
	if !strings.Contains(logs.String(), "API : bma400_get_device_conf Error [-2] : Communication failure") {
		t.Fatalf("missing configuration error:\n%s", logs.String())
	}
	if got, want := dev.polls, 6; got != want {
		t.Fatalf("invalid number of polls: got=%d, want=%d", got, want)
	}

	dec := daq.NewDecoder(out)
	for i := 0; i < 3; i++ {
		var snap daq.Snapshot
		err := dec.Decode(&snap)
		if err != nil {
			t.Fatalf("could not decode snapshot %d: %+v", i, err)
		}
		if got, want := snap.Iteration, uint32(i+1); got != want {
			t.Fatalf("invalid iteration: got=%d, want=%d", got, want)
		}
	}
	var snap daq.Snapshot
	if err := dec.Decode(&snap); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got=%+v", err)
	}
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }

func TestRunOutputError(t *testing.T) {
	cfg := daq.DefaultConfig()
	cfg.Iterations = 0 // until canceled

	err := run(
		context.Background(), &fakeDriver{}, cfg,
		io.Discard, failWriter{}, log.New(io.Discard, "", 0),
	)
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("invalid error: got=%+v, want=%+v", err, io.ErrClosedPipe)
	}
}

func TestXMainErrors(t *testing.T) {
	tmp := t.TempDir()
	for _, tc := range []struct {
		name string
		args []string
		want string
	}{
		{
			name: "invalid-flag",
			args: []string{"-not-a-flag"},
			want: "flag provided but not defined",
		},
		{
			name: "invalid-board",
			args: []string{"-board=arduino", "-o", filepath.Join(tmp, "out.raw")},
			want: `unknown board "arduino"`,
		},
		{
			name: "invalid-intf",
			args: []string{"-intf=usb"},
			want: `invalid bus kind "usb"`,
		},
		{
			name: "invalid-output",
			args: []string{"-o", filepath.Join(tmp, "no-such-dir", "out.raw")},
			want: "could not create output file",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			stderr := os.Stderr
			defer func() { os.Stderr = stderr }()
			os.Stderr, _ = os.OpenFile(os.DevNull, os.O_WRONLY, 0)

			err := xmain(context.Background(), io.Discard, tc.args)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if got, want := err.Error(), tc.want; !strings.Contains(got, want) {
				t.Fatalf("invalid error:\ngot= %q\nwant=%q", got, want)
			}
		})
	}
}

type fakeDB struct {
	presets []conddb.Preset
	closed  bool
}

func (db *fakeDB) Preset(ctx context.Context, name string) (conddb.Preset, error) {
	for _, p := range db.presets {
		if p.Name == name {
			return p, nil
		}
	}
	return conddb.Preset{}, conddb.ErrNoPreset
}

func (db *fakeDB) LastPreset(ctx context.Context) (conddb.Preset, error) {
	if len(db.presets) == 0 {
		return conddb.Preset{}, conddb.ErrNoPreset
	}
	return db.presets[len(db.presets)-1], nil
}

func (db *fakeDB) Close() error {
	db.closed = true
	return nil
}

func TestConfig(t *testing.T) {
	db := &fakeDB{
		presets: []conddb.Preset{
			{Name: "slow", Intf: "i2c", ODR: sensorapi.ODR12_5Hz, FIFOFlags: 0xe4, Iterations: 3, PollMS: 50},
			{Name: "fast", Intf: "i2c", ODR: sensorapi.ODR800Hz, FIFOFlags: 0xe4, Iterations: 7},
		},
	}

	open := openDB
	defer func() { openDB = open }()
	openDB = func(name string) (presetDB, error) {
		if name != "bma400" {
			return nil, fmt.Errorf("no db %q", name)
		}
		return db, nil
	}

	for _, tc := range []struct {
		name  string
		args  []string
		iters int
		poll  time.Duration
		err   error
	}{
		{
			name:  "default",
			args:  nil,
			iters: 10,
		},
		{
			name:  "default-n",
			args:  []string{"-n", "4"},
			iters: 4,
		},
		{
			name:  "preset",
			args:  []string{"-db", "bma400", "-preset", "slow"},
			iters: 3,
			poll:  50 * time.Millisecond,
		},
		{
			name:  "last-preset",
			args:  []string{"-db", "bma400"},
			iters: 7,
		},
		{
			name:  "preset-override",
			args:  []string{"-db", "bma400", "-preset", "slow", "-n", "5", "-poll", "0s"},
			iters: 5,
		},
		{
			name: "missing-preset",
			args: []string{"-db", "bma400", "-preset", "missing"},
			err:  conddb.ErrNoPreset,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var (
				opts options
				fs   = newFlagSet(&opts)
			)
			err := fs.Parse(tc.args)
			if err != nil {
				t.Fatalf("could not parse args: %+v", err)
			}

			cfg, err := opts.config(context.Background(), fs)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("invalid error: got=%+v, want=%+v", err, tc.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("could not load configuration: %+v", err)
			}
			if got, want := cfg.Iterations, tc.iters; got != want {
				t.Fatalf("invalid iterations: got=%d, want=%d", got, want)
			}
			if got, want := cfg.Interval, tc.poll; got != want {
				t.Fatalf("invalid poll interval: got=%v, want=%v", got, want)
			}
		})
	}

	if !db.closed {
		t.Fatalf("presets db not closed")
	}
}
