// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sbinet/pmon"
)

// monitor records the CPU and memory usage of the server process into fname.
// monitor returns a function to stop the monitoring.
func monitor(fname string, freq time.Duration, msg *log.Logger) (func(), error) {
	f, err := os.Create(fname)
	if err != nil {
		return nil, fmt.Errorf("could not create pmon log file: %w", err)
	}

	p, err := pmon.Monitor(os.Getpid())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("could not start monitoring (pid=%d): %w", os.Getpid(), err)
	}
	p.W = f
	p.Freq = freq

	go func() {
		err := p.Run()
		if err != nil {
			msg.Printf("could not run pmon: %+v", err)
		}
	}()

	return func() {
		err := p.Kill()
		if err != nil {
			msg.Printf("could not stop monitoring: %+v", err)
		}
		err = f.Close()
		if err != nil {
			msg.Printf("could not close pmon log file: %+v", err)
		}
	}, nil
}
