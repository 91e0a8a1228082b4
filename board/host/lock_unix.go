// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

package host

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

var errBoardInUse = errors.New("board in use by another application")

func lockFile(fname string) (*os.File, error) {
	f, err := os.OpenFile(fname, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, errBoardInUse
		}
		return nil, fmt.Errorf("could not flock: %w", err)
	}

	return f, nil
}

func unlockFile(f *os.File) error {
	if f == nil {
		return nil
	}
	err := unix.Flock(int(f.Fd()), unix.LOCK_UN)
	if err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func checkAccess(dev string) error {
	err := unix.Access(dev, unix.R_OK|unix.W_OK)
	if err != nil {
		return fmt.Errorf("insufficient permissions: %w", err)
	}
	return nil
}
