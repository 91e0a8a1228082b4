// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build sensorapi

package sensorapi

//#include <stdint.h>
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/go-lpc/bma400/intf"
)

func itfFrom(h C.uintptr_t) *intf.Interface {
	return cgo.Handle(h).Value().(*intf.Interface)
}

func bytesFrom(p *C.uint8_t, n C.uint32_t) []byte {
	if p == nil || n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), int(n))
}

//export goBMA400Read
func goBMA400Read(reg C.uint8_t, data *C.uint8_t, n C.uint32_t, h C.uintptr_t) C.int8_t {
	return C.int8_t(itfFrom(h).Read(uint8(reg), bytesFrom(data, n)))
}

//export goBMA400Write
func goBMA400Write(reg C.uint8_t, data *C.uint8_t, n C.uint32_t, h C.uintptr_t) C.int8_t {
	return C.int8_t(itfFrom(h).Write(uint8(reg), bytesFrom(data, n)))
}

//export goBMA400Delay
func goBMA400Delay(us C.uint32_t, h C.uintptr_t) {
	itfFrom(h).Delay(uint32(us))
}
