// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pcf8574 is the I²C transport for LCD backpacks built on the TI/NXP
// PCF8574 I/O expander.
//
// The chip has no registers. Every byte written sets the 8 quasi-bidirectional
// port pins, and a read returns their levels. LCD backpacks wire the port to
// the display's D4-D7, backlight, EN, RW and RS lines, so the LCD driver
// writes whole port values one byte at a time.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/pcf8574.pdf
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
package pcf8574

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Variant represents the actual chip model. They differ only in the address
// range.
type Variant string

const (
	PCF8574  Variant = "PCF8574"
	PCF8574A Variant = "PCF8574A"

	// DefaultAddress is the address of a PCF8574T with A0-A2 pulled high.
	DefaultAddress uint16 = 0x27
)

var (
	// ErrNotStarted is returned by I/O before Begin or after End.
	ErrNotStarted = errors.New("pcf8574: bus not started")
	// ErrAddress is returned for addresses the variant cannot answer on.
	ErrAddress = errors.New("pcf8574: address out of range")
)

// Dev is a PCF8574 on an I²C bus.
//
// Dev is safe for concurrent use, but concurrent writers will interleave
// their bytes. The LCD protocol needs callers to serialize whole
// transactions.
type Dev struct {
	variant Variant
	busName string
	open    func(name string) (i2c.BusCloser, error)

	mu     sync.Mutex
	bus    i2c.Bus
	closer i2c.BusCloser
	d      *i2c.Dev
	addr   uint16
	value  byte
	writes int
}

// New returns a Dev that opens the named I²C bus when Begin is called. An
// empty name selects the first bus registered with periph.
func New(busName string, variant Variant) *Dev {
	return &Dev{
		variant: variant,
		busName: busName,
		open:    openBus,
		addr:    DefaultAddress,
	}
}

// NewBus returns a Dev on an already open bus. End does not close it.
func NewBus(bus i2c.Bus, variant Variant) *Dev {
	return &Dev{variant: variant, bus: bus, addr: DefaultAddress}
}

func openBus(name string) (i2c.BusCloser, error) {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	return i2creg.Open(name)
}

// Begin opens the bus.
func (dev *Dev) Begin() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.d != nil {
		return nil
	}
	if dev.bus == nil {
		bc, err := dev.open(dev.busName)
		if err != nil {
			return fmt.Errorf("pcf8574: %w", err)
		}
		dev.bus = bc
		dev.closer = bc
	}
	dev.d = &i2c.Dev{Bus: dev.bus, Addr: dev.addr}
	return nil
}

// SetAddress selects the slave address. PCF8574 answers on 0x20-0x27 and
// PCF8574A on 0x38-0x3f.
func (dev *Dev) SetAddress(addr uint16) error {
	lo := uint16(0x20)
	if dev.variant == PCF8574A {
		lo = 0x38
	}
	if addr < lo || addr > lo+7 {
		return fmt.Errorf("%w: 0x%x for %s", ErrAddress, addr, dev.variant)
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.addr = addr
	if dev.d != nil {
		dev.d.Addr = addr
	}
	return nil
}

// Write sets the port to each byte of p in turn, one I²C transaction per
// byte.
func (dev *Dev) Write(p []byte) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.d == nil {
		return ErrNotStarted
	}
	for _, b := range p {
		if err := dev.d.Tx([]byte{b}, nil); err != nil {
			return fmt.Errorf("pcf8574: %w", err)
		}
		dev.value = b
		dev.writes++
	}
	return nil
}

// Read returns the level of the pins in mask. Pins are read by first driving
// them high and letting the outside pull them down; pins outside mask keep
// their value.
func (dev *Dev) Read(mask byte) (byte, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.d == nil {
		return 0, ErrNotStarted
	}
	w := dev.value | mask
	if err := dev.d.Tx([]byte{w}, nil); err != nil {
		return 0, fmt.Errorf("pcf8574: %w", err)
	}
	dev.value = w
	r := make([]byte, 1)
	if err := dev.d.Tx(nil, r); err != nil {
		return 0, fmt.Errorf("pcf8574: %w", err)
	}
	return r[0] & mask, nil
}

// Value returns the last byte written to the port.
func (dev *Dev) Value() byte {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.value
}

// Writes returns the number of bytes written since Begin.
func (dev *Dev) Writes() int {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.writes
}

// End releases the bus. A bus opened by Begin is closed.
func (dev *Dev) End() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.d = nil
	dev.writes = 0
	if dev.closer == nil {
		return nil
	}
	err := dev.closer.Close()
	dev.closer = nil
	dev.bus = nil
	if err != nil {
		return fmt.Errorf("pcf8574: %w", err)
	}
	return nil
}

// Halt implements conn.Resource.
func (dev *Dev) Halt() error {
	return dev.End()
}

func (dev *Dev) String() string {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return fmt.Sprintf("%s_%x", dev.variant, dev.addr)
}

var _ conn.Resource = &Dev{}
