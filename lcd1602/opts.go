// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd1602

import (
	"fmt"
	"time"
)

// ErrorPolicy decides what WriteMessage does after a character fails.
type ErrorPolicy int

const (
	// Abort returns at the first failed character.
	Abort ErrorPolicy = iota
	// BestEffort keeps writing and returns every failure joined.
	BestEffort
)

func (p ErrorPolicy) String() string {
	switch p {
	case Abort:
		return "Abort"
	case BestEffort:
		return "BestEffort"
	}
	return fmt.Sprintf("ErrorPolicy(%d)", int(p))
}

// DefaultAddress is the usual address of PCF8574T backpacks with A0-A2 open.
const DefaultAddress uint16 = 0x27

// Opts holds the configuration of the display.
type Opts struct {
	// Address is the I²C address of the backpack. 0 means DefaultAddress.
	Address uint16
	// Rows and Cols of the panel. 0 means 2 and 16.
	Rows int
	Cols int
	// SettleDelay follows every frame of an enable pulse. The controller
	// needs microseconds; 1.5ms leaves room for slow backpacks. 0 means the
	// default.
	SettleDelay time.Duration
	// CommandDelay follows every instruction. Clear and home take up to
	// 1.52ms to execute. 0 means the default.
	CommandDelay time.Duration
	// TestMessage is written once initialization completes. Empty skips it.
	TestMessage string
	// OnWriteError is the policy for failed characters in WriteMessage.
	OnWriteError ErrorPolicy

	_ struct{}
}

// DefaultOpts is used when nil is passed to New.
var DefaultOpts = Opts{
	Address:      DefaultAddress,
	Rows:         2,
	Cols:         16,
	SettleDelay:  1500 * time.Microsecond,
	CommandDelay: 5 * time.Millisecond,
	TestMessage:  "TESTING TESTING",
	OnWriteError: Abort,
}

// normalize fills in defaults and validates o.
func (o *Opts) normalize() (Opts, error) {
	if o == nil {
		return DefaultOpts, nil
	}
	r := *o
	if r.Address == 0 {
		r.Address = DefaultOpts.Address
	}
	if r.Rows == 0 {
		r.Rows = DefaultOpts.Rows
	}
	if r.Cols == 0 {
		r.Cols = DefaultOpts.Cols
	}
	if r.SettleDelay == 0 {
		r.SettleDelay = DefaultOpts.SettleDelay
	}
	if r.CommandDelay == 0 {
		r.CommandDelay = DefaultOpts.CommandDelay
	}
	switch {
	case r.Address >= 0x20 && r.Address <= 0x27:
	case r.Address >= 0x38 && r.Address <= 0x3f:
		// PCF8574A
	default:
		return r, fmt.Errorf("%s: address 0x%x not supported by backpack", packageName, r.Address)
	}
	if r.Rows < 1 || r.Rows > 4 || r.Cols < 1 || r.Cols > 40 || r.Rows*r.Cols > 80 {
		return r, fmt.Errorf("%s: unsupported geometry %dx%d", packageName, r.Cols, r.Rows)
	}
	if r.OnWriteError != Abort && r.OnWriteError != BestEffort {
		return r, fmt.Errorf("%s: unknown error policy %s", packageName, r.OnWriteError)
	}
	return r, nil
}
