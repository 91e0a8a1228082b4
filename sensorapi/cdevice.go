// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build sensorapi

package sensorapi

//#cgo LDFLAGS: -lbma400
//
//#include <stdlib.h>
//#include <stdint.h>
//#include "glue.h"
import "C"

import (
	"fmt"
	"runtime/cgo"
	"unsafe"

	"github.com/go-lpc/bma400/intf"
)

// Device is a BMA400 sensor driven by the SensorAPI.
type Device struct {
	dev  *C.struct_bma400_dev
	hdl  cgo.Handle
	hptr *C.uintptr_t // intf_ptr handed to the driver

	fifo struct {
		ctx *C.struct_bma400_fifo_data
		buf *C.uint8_t
		cap int
	}
}

// Open binds the sensor driver to itf and initializes the sensor.
// When only the initialization fails, Open returns the bound device
// along with the error.
func Open(itf *intf.Interface) (*Device, error) {
	if itf == nil {
		return nil, fmt.Errorf("sensorapi: nil interface: %w", ENullPtr)
	}

	dev := &Device{
		dev:  (*C.struct_bma400_dev)(C.calloc(1, C.sizeof_struct_bma400_dev)),
		hdl:  cgo.NewHandle(itf),
		hptr: (*C.uintptr_t)(C.malloc(C.sizeof_uintptr_t)),
	}
	dev.fifo.ctx = (*C.struct_bma400_fifo_data)(C.calloc(1, C.sizeof_struct_bma400_fifo_data))
	*dev.hptr = C.uintptr_t(dev.hdl)

	C.go_bma400_bind(dev.dev, C.uint8_t(itf.Kind()), dev.hptr, C.uint32_t(itf.ReadWriteLen()))

	err := result(int8(C.bma400_init(dev.dev)))
	if err != nil {
		return dev, fmt.Errorf("sensorapi: could not initialize BMA400: %w", err)
	}

	return dev, nil
}

func (dev *Device) Close() error {
	if dev.dev == nil {
		return nil
	}
	C.free(unsafe.Pointer(dev.fifo.buf))
	C.free(unsafe.Pointer(dev.fifo.ctx))
	C.free(unsafe.Pointer(dev.dev))
	C.free(unsafe.Pointer(dev.hptr))
	dev.hdl.Delete()

	dev.fifo.buf = nil
	dev.fifo.ctx = nil
	dev.fifo.cap = 0
	dev.dev = nil
	dev.hptr = nil
	return nil
}

// ChipID returns the chip identifier read during Open.
func (dev *Device) ChipID() uint8 {
	return uint8(dev.dev.chip_id)
}

func (dev *Device) SoftReset() error {
	return result(int8(C.bma400_soft_reset(dev.dev)))
}

func (dev *Device) SensorConf() (AccelConf, error) {
	var conf C.go_bma400_accel_conf
	err := result(int8(C.go_bma400_get_accel_conf(&conf, dev.dev)))
	if err != nil {
		return AccelConf{}, err
	}
	return AccelConf{
		ODR:     uint8(conf.odr),
		Range:   uint8(conf._range),
		DataSrc: uint8(conf.data_src),
		OSR:     uint8(conf.osr),
		FiltBW:  uint8(conf.filt1_bw),
	}, nil
}

func (dev *Device) SetSensorConf(cfg AccelConf) error {
	conf := C.go_bma400_accel_conf{
		odr:      C.uint8_t(cfg.ODR),
		_range:   C.uint8_t(cfg.Range),
		data_src: C.uint8_t(cfg.DataSrc),
		osr:      C.uint8_t(cfg.OSR),
		filt1_bw: C.uint8_t(cfg.FiltBW),
	}
	return result(int8(C.go_bma400_set_accel_conf(&conf, dev.dev)))
}

func (dev *Device) FIFOConf() (FIFOConf, error) {
	var conf C.go_bma400_fifo_conf
	err := result(int8(C.go_bma400_get_fifo_conf(&conf, dev.dev)))
	if err != nil {
		return FIFOConf{}, err
	}
	return FIFOConf{
		Flags:            uint8(conf.conf_regs),
		Enable:           conf.conf_status != 0,
		FullChannel:      intChannelFromC(conf.fifo_full_channel),
		WatermarkChannel: intChannelFromC(conf.fifo_wm_channel),
		Watermark:        uint16(conf.fifo_watermark),
	}, nil
}

func (dev *Device) SetFIFOConf(cfg FIFOConf) error {
	conf := C.go_bma400_fifo_conf{
		conf_regs:         C.uint8_t(cfg.Flags),
		conf_status:       C.uint8_t(cEnable(cfg.Enable)),
		fifo_full_channel: intChannelToC(cfg.FullChannel),
		fifo_wm_channel:   intChannelToC(cfg.WatermarkChannel),
		fifo_watermark:    C.uint16_t(cfg.Watermark),
	}
	return result(int8(C.go_bma400_set_fifo_conf(&conf, dev.dev)))
}

func (dev *Device) SetPowerMode(mode PowerMode) error {
	return result(int8(C.bma400_set_power_mode(C.uint8_t(mode), dev.dev)))
}

func (dev *Device) EnableInterrupts(ints ...IntEnable) error {
	for _, v := range ints {
		typ, err := intTypeToC(v.Type)
		if err != nil {
			return err
		}
		err = result(int8(C.go_bma400_enable_interrupt(typ, C.uint8_t(cEnable(v.Enable)), dev.dev)))
		if err != nil {
			return err
		}
	}
	return nil
}

func (dev *Device) InterruptStatus() (uint16, error) {
	var status C.uint16_t
	err := result(int8(C.bma400_get_interrupt_status(&status, dev.dev)))
	return uint16(status), err
}

// ReadFIFO reads up to len(frame.Data) bytes of FIFO content.
// The FIFO content is kept by the device for subsequent calls to ExtractAccel.
func (dev *Device) ReadFIFO(frame *FIFOFrame) error {
	if frame == nil {
		return ENullPtr
	}
	n := len(frame.Data)
	if n > 0xffff {
		n = 0xffff
	}
	if dev.fifo.cap < n {
		C.free(unsafe.Pointer(dev.fifo.buf))
		dev.fifo.buf = (*C.uint8_t)(C.malloc(C.size_t(n)))
		dev.fifo.cap = n
	}

	dev.fifo.ctx.data = dev.fifo.buf
	dev.fifo.ctx.length = C.uint16_t(n)

	err := result(int8(C.bma400_get_fifo_data(dev.fifo.ctx, dev.dev)))
	frame.Length = uint16(dev.fifo.ctx.length)
	if int(frame.Length) > n {
		frame.Length = uint16(n)
	}
	if frame.Length > 0 {
		copy(frame.Data, unsafe.Slice((*byte)(unsafe.Pointer(dev.fifo.buf)), int(frame.Length)))
	}
	return err
}

// ExtractAccel decodes the accelerometer frames of the last FIFO read
// into samples. ExtractAccel returns the number of decoded samples.
func (dev *Device) ExtractAccel(frame *FIFOFrame, samples []Sample) (int, error) {
	if frame == nil {
		return 0, ENullPtr
	}
	if len(samples) == 0 {
		return 0, nil
	}
	n := len(samples)
	if n > 0xffff {
		n = 0xffff
	}

	buf := (*C.struct_bma400_fifo_sensor_data)(C.calloc(C.size_t(n), C.sizeof_struct_bma400_fifo_sensor_data))
	defer C.free(unsafe.Pointer(buf))

	count := C.uint16_t(n)
	err := result(int8(C.bma400_extract_accel(dev.fifo.ctx, buf, &count, dev.dev)))

	frame.SensorTime = uint32(dev.fifo.ctx.fifo_sensor_time)
	frame.ConfChange = uint8(dev.fifo.ctx.conf_change)

	out := unsafe.Slice(buf, n)
	m := int(count)
	if m > n {
		m = n
	}
	for i := 0; i < m; i++ {
		samples[i] = Sample{
			X: int16(out[i].x),
			Y: int16(out[i].y),
			Z: int16(out[i].z),
		}
	}
	return m, err
}

func cEnable(v bool) uint8 {
	if v {
		return C.BMA400_ENABLE
	}
	return C.BMA400_DISABLE
}

func intChannelToC(ch IntChannel) C.uint8_t {
	switch ch {
	case IntChannel1:
		return C.BMA400_INT_CHANNEL_1
	case IntChannel2:
		return C.BMA400_INT_CHANNEL_2
	case IntChannelBoth:
		return C.BMA400_MAP_BOTH_INT_PINS
	default:
		return C.BMA400_UNMAP_INT_PIN
	}
}

func intChannelFromC(ch C.uint8_t) IntChannel {
	switch ch {
	case C.BMA400_INT_CHANNEL_1:
		return IntChannel1
	case C.BMA400_INT_CHANNEL_2:
		return IntChannel2
	case C.BMA400_MAP_BOTH_INT_PINS:
		return IntChannelBoth
	default:
		return IntChannelNone
	}
}

func intTypeToC(typ IntType) (C.uint8_t, error) {
	switch typ {
	case DRDYInt:
		return C.BMA400_DRDY_INT_EN, nil
	case FIFOWMInt:
		return C.BMA400_FIFO_WM_INT_EN, nil
	case FIFOFullInt:
		return C.BMA400_FIFO_FULL_INT_EN, nil
	case Gen1Int:
		return C.BMA400_GEN1_INT_EN, nil
	case Gen2Int:
		return C.BMA400_GEN2_INT_EN, nil
	case OrientChangeInt:
		return C.BMA400_ORIENT_CHANGE_INT_EN, nil
	case ActivityChangeInt:
		return C.BMA400_ACTIVITY_CHANGE_INT_EN, nil
	case StepCounterInt:
		return C.BMA400_STEP_COUNTER_INT_EN, nil
	case TapInt:
		return C.BMA400_SINGLE_TAP_INT_EN, nil
	case LatchInt:
		return C.BMA400_LATCH_INT_EN, nil
	}
	return 0, fmt.Errorf("sensorapi: invalid interrupt type %d: %w", typ, EInvalidConfig)
}
