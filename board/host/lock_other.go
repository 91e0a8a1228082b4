// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !unix

package host

import (
	"errors"
	"os"
)

var errBoardInUse = errors.New("board in use by another application")

func lockFile(fname string) (*os.File, error) {
	return os.OpenFile(fname, os.O_RDWR|os.O_CREATE, 0644)
}

func unlockFile(f *os.File) error {
	if f == nil {
		return nil
	}
	return f.Close()
}

func checkAccess(dev string) error {
	_, err := os.Stat(dev)
	return err
}
