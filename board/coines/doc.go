// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coines implements a board on top of the Bosch COINES library,
// driving an application board over USB.
//
// The binding is only compiled with the "coines" build tag, and needs
// the COINES headers and library to be reachable through CGO_CFLAGS and
// CGO_LDFLAGS:
//
//	$> CGO_CFLAGS="-I/opt/coines/include" \
//	   CGO_LDFLAGS="-L/opt/coines/lib" \
//	   go build -tags coines ./cmd/bma400-fifo
package coines // import "github.com/go-lpc/bma400/board/coines"
