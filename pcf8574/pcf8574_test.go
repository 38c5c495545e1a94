// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcf8574

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

// failBus fails every transaction.
type failBus struct {
	closed bool
}

func (b *failBus) String() string { return "fail" }
func (b *failBus) SetSpeed(f physic.Frequency) error { return nil }
func (b *failBus) Tx(addr uint16, w, r []byte) error { return errors.New("nack") }
func (b *failBus) Close() error { b.closed = true; return nil }

var _ i2c.BusCloser = &failBus{}

func TestWrite(t *testing.T) {
	rec := &i2ctest.Record{}
	dev := NewBus(rec, PCF8574)
	if err := dev.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := dev.SetAddress(0x26); err != nil {
		t.Fatal(err)
	}
	if err := dev.Write([]byte{0x08, 0x0c, 0x08}); err != nil {
		t.Fatal(err)
	}
	want := []i2ctest.IO{
		{Addr: 0x26, W: []byte{0x08}},
		{Addr: 0x26, W: []byte{0x0c}},
		{Addr: 0x26, W: []byte{0x08}},
	}
	if diff := cmp.Diff(want, rec.Ops, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("transactions (-want +got):\n%s", diff)
	}
	if dev.Value() != 0x08 {
		t.Errorf("Value()=0x%02x", dev.Value())
	}
	if dev.Writes() != 3 {
		t.Errorf("Writes()=%d", dev.Writes())
	}
	if err := dev.End(); err != nil {
		t.Error(err)
	}
	if err := dev.Write([]byte{0}); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Write after End err=%v", err)
	}
}

func TestNotStarted(t *testing.T) {
	dev := NewBus(&i2ctest.Record{}, PCF8574)
	if err := dev.Write([]byte{1}); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Write err=%v", err)
	}
	if _, err := dev.Read(0xff); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Read err=%v", err)
	}
}

func TestSetAddress(t *testing.T) {
	var tests = []struct {
		variant Variant
		addr    uint16
		ok      bool
	}{
		{PCF8574, 0x20, true},
		{PCF8574, 0x27, true},
		{PCF8574, 0x28, false},
		{PCF8574, 0x3f, false},
		{PCF8574A, 0x38, true},
		{PCF8574A, 0x3f, true},
		{PCF8574A, 0x27, false},
	}
	for _, test := range tests {
		dev := NewBus(&i2ctest.Record{}, test.variant)
		err := dev.SetAddress(test.addr)
		if test.ok != (err == nil) {
			t.Errorf("%s SetAddress(0x%x) err=%v", test.variant, test.addr, err)
		}
		if err != nil && !errors.Is(err, ErrAddress) {
			t.Errorf("%s SetAddress(0x%x) err=%v", test.variant, test.addr, err)
		}
	}
}

func TestRead(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: DefaultAddress, W: []byte{0x08}},
		{Addr: DefaultAddress, W: []byte{0x0f}},
		{Addr: DefaultAddress, R: []byte{0x0d}},
	}, DontPanic: true}
	dev := NewBus(bus, PCF8574)
	if err := dev.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := dev.Write([]byte{0x08}); err != nil {
		t.Fatal(err)
	}
	v, err := dev.Read(0x07)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x05 {
		t.Errorf("Read(0x07)=0x%02x expected 0x05", v)
	}
	if dev.Value() != 0x0f {
		t.Errorf("Value()=0x%02x", dev.Value())
	}
}

func TestWriteError(t *testing.T) {
	dev := NewBus(&failBus{}, PCF8574)
	if err := dev.Begin(); err != nil {
		t.Fatal(err)
	}
	err := dev.Write([]byte{0x01})
	if err == nil || !strings.HasPrefix(err.Error(), "pcf8574: ") {
		t.Errorf("Write err=%v", err)
	}
	if dev.Writes() != 0 {
		t.Errorf("Writes()=%d after failure", dev.Writes())
	}
}

func TestBeginOpensBus(t *testing.T) {
	bus := &failBus{}
	var opened string
	dev := New("I2C7", PCF8574A)
	dev.open = func(name string) (i2c.BusCloser, error) {
		opened = name
		return bus, nil
	}
	if err := dev.Begin(); err != nil {
		t.Fatal(err)
	}
	if opened != "I2C7" {
		t.Errorf("opened %q", opened)
	}
	if err := dev.End(); err != nil {
		t.Fatal(err)
	}
	if !bus.closed {
		t.Error("bus not closed by End")
	}

	dev.open = func(string) (i2c.BusCloser, error) { return nil, errors.New("no such bus") }
	if err := dev.Begin(); err == nil || !strings.HasPrefix(err.Error(), "pcf8574: ") {
		t.Errorf("Begin err=%v", err)
	}
}

func TestEndKeepsSharedBus(t *testing.T) {
	bus := &failBus{}
	dev := NewBus(bus, PCF8574)
	if err := dev.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	if bus.closed {
		t.Error("End closed a bus it did not open")
	}
}

func TestString(t *testing.T) {
	dev := NewBus(&i2ctest.Record{}, PCF8574)
	if s := dev.String(); s != "PCF8574_27" {
		t.Errorf("String()=%q", s)
	}
}
