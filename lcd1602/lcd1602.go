// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcd1602 drives a 16x2 HD44780 character LCD wired to a PCF8574 I²C
// backpack, as sold under the LCD1602 and LCD2004 names.
//
// The backpack exposes the LCD's parallel bus as the 8 bits of one I²C byte.
// The display runs in 4-bit mode: every instruction or character is sent as
// two nibbles on D4-D7, each latched by pulsing EN.
//
//	bit  7  6  5  4  3  2  1  0
//	    D7 D6 D5 D4 BL EN RW RS
//
// # Known limitation
//
// R/W is only ever driven low. The driver cannot read the busy flag or any
// other acknowledgment from the controller, so a successful return means the
// bytes were accepted by the I²C bus, not that the LCD understood them. After
// initialization the test message is the only way to confirm the display is
// working.
//
// # Concurrency
//
// Dev holds no lock. Callers sharing a Dev between goroutines must serialize
// whole transactions (for example GotoPosition followed by WriteMessage), not
// single calls.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
//
// https://www.sparkfun.com/datasheets/LCD/GDM1602K-Extended.pdf
package lcd1602

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

const packageName = "lcd1602"

// Instruction set.
const (
	cmdClear        byte = 0x01
	cmdHome         byte = 0x02
	cmdEntryMode    byte = 0x04
	cmdDisplay      byte = 0x08
	cmdShift        byte = 0x10
	cmdFunctionSet  byte = 0x20
	cmdSetDDRAMAddr byte = 0x80

	entryIncrement byte = 0x02

	displayOn   byte = 0x04
	displayCurs byte = 0x02
	displayBlnk byte = 0x01

	shiftRight byte = 0x04

	fnTwoLine byte = 0x08
)

var (
	// ErrInit is returned by New when the transport cannot be started. The
	// Dev is unusable and the condition is not retried.
	ErrInit = errors.New("lcd1602: hardware unavailable")
	// ErrIO wraps a failed transport write.
	ErrIO = errors.New("lcd1602: i/o error")
	// ErrNotReady is returned by operations on a Dev that did not complete
	// initialization or was halted.
	ErrNotReady = errors.New("lcd1602: display not ready")
	// ErrOutOfRange is returned for cursor positions outside the panel.
	ErrOutOfRange = errors.New("lcd1602: position out of range")

	ErrNotImplemented = fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)
)

// wakeSequence is the reset-by-instruction prelude from the datasheet. The
// controller may power up in 8-bit mode or be left mid-byte by a previous
// process, so 0x3 is sent three times before switching to 4-bit.
var wakeSequence = []struct {
	nibble byte
	delay  time.Duration
}{
	{0x3, 5 * time.Millisecond},
	{0x3, time.Millisecond},
	{0x3, time.Millisecond},
	{0x2, 5 * time.Millisecond},
}

// configSequence runs once the controller is in 4-bit mode. Turning the
// display on last avoids showing garbage while it is configured.
var configSequence = []byte{
	cmdDisplay,
	cmdClear,
	cmdEntryMode | entryIncrement,
	cmdDisplay | displayOn,
}

// Transport is the I²C side of the backpack. The driver only issues
// single-byte writes; it never touches bus arbitration.
type Transport interface {
	// Begin starts the bus.
	Begin() error
	// SetAddress selects the backpack's 7-bit slave address.
	SetAddress(addr uint16) error
	// Write sends p to the selected slave.
	Write(p []byte) error
	// End releases the bus.
	End() error
}

// Dev is a HD44780 LCD behind a PCF8574 backpack.
//
// Implements periph.io/x/conn/v3/display.TextDisplay and
// display.DisplayBacklight.
type Dev struct {
	t     Transport
	opts  Opts
	state displayState
	phase State

	on     bool
	cursor bool
	blink  bool
	desync bool

	sleep func(time.Duration)
}

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

func wrapIO(err error) error {
	return fmt.Errorf("%w: %w", ErrIO, err)
}

// New starts the transport, configures the display and writes the test
// message from opts. Use nil for DefaultOpts.
//
// Before the function set, New sends 0x3 three times and then 0x2. This is
// the datasheet's reset by instruction. Some drivers skip it, but they only
// work on a controller that is already in 4-bit mode.
//
// A Begin or SetAddress failure returns ErrInit. Write failures later in the
// sequence are returned wrapped in ErrIO. On any failure after Begin the
// transport is released with End.
func New(t Transport, opts *Opts) (*Dev, error) {
	o, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	dev := &Dev{t: t, opts: o, sleep: time.Sleep}
	if err := dev.init(); err != nil {
		return nil, err
	}
	return dev, nil
}

func (dev *Dev) init() (err error) {
	if err := dev.t.Begin(); err != nil {
		dev.phase = Failed
		return fmt.Errorf("%w: %w", ErrInit, err)
	}
	dev.phase = BusReady
	defer func() {
		if err == nil {
			return
		}
		if e := dev.t.End(); e != nil {
			err = errors.Join(err, wrap(e))
		}
	}()

	if err := dev.t.SetAddress(dev.opts.Address); err != nil {
		dev.phase = Failed
		return fmt.Errorf("%w: %w", ErrInit, err)
	}
	dev.state = displayState{rs: Command, rw: Write}
	if err := dev.wake(); err != nil {
		return err
	}
	dev.phase = FourBitMode

	for _, cmd := range configSequence {
		if err := dev.command(cmd, dev.opts.CommandDelay); err != nil {
			return err
		}
	}
	dev.on = true
	dev.phase = Configured

	if err := dev.setBacklight(true); err != nil {
		return err
	}
	if _, err := dev.writeText(dev.opts.TestMessage); err != nil {
		return err
	}
	dev.phase = Ready
	return nil
}

// wake runs the reset-by-instruction prelude and the function set.
func (dev *Dev) wake() error {
	for _, step := range wakeSequence {
		if err := dev.writeNibble(step.nibble); err != nil {
			return err
		}
		dev.sleep(step.delay)
	}
	var fn = cmdFunctionSet
	if dev.opts.Rows > 1 {
		fn |= fnTwoLine
	}
	return dev.command(fn, dev.opts.CommandDelay)
}

// State returns the initialization state of the display.
func (dev *Dev) State() State {
	return dev.phase
}

// RegisterSelect returns the register the next byte would be written to.
func (dev *Dev) RegisterSelect() RegisterSelect {
	return dev.state.rs
}

func (dev *Dev) ready() error {
	if dev.phase != Ready {
		return fmt.Errorf("%w: %s", ErrNotReady, dev.phase)
	}
	return dev.resynchronize()
}

// writeText writes the glyphs for text up to the first NUL and returns the
// number of bytes of text consumed.
func (dev *Dev) writeText(text string) (int, error) {
	dev.state.rs = Character
	var errs []error
	for i, r := range text {
		if r == 0 {
			return i, errors.Join(errs...)
		}
		err := dev.resynchronize()
		if err == nil {
			err = dev.writeByte(byte(Encode(r)))
		}
		if err != nil {
			if dev.opts.OnWriteError == Abort {
				return i, err
			}
			errs = append(errs, err)
		}
	}
	return len(text), errors.Join(errs...)
}

// WriteMessage writes text at the cursor. It stops at the first NUL. The text
// is not wrapped or clipped to the panel; characters past the end of a row
// land in DDRAM that may not be visible.
//
// With OnWriteError set to Abort, the first failed character ends the call.
// With BestEffort the remaining characters are still attempted and all
// failures are returned together.
func (dev *Dev) WriteMessage(text string) error {
	if err := dev.ready(); err != nil {
		return err
	}
	_, err := dev.writeText(text)
	return err
}

// Write writes p as text. Bytes outside the supported table are shown as '?'.
// Like WriteMessage it stops at the first NUL; the bytes after it are
// dropped but still counted in n, so a nil error always comes with
// n == len(p) as io.Writer requires.
func (dev *Dev) Write(p []byte) (n int, err error) {
	if err = dev.ready(); err != nil {
		return 0, err
	}
	n, err = dev.writeText(string(p))
	if err == nil {
		n = len(p)
	}
	return n, err
}

// WriteString writes text at the cursor.
func (dev *Dev) WriteString(text string) (int, error) {
	return dev.Write([]byte(text))
}

// Clear blanks the display and moves the cursor to the first position.
func (dev *Dev) Clear() error {
	if err := dev.ready(); err != nil {
		return err
	}
	return dev.command(cmdClear, dev.opts.CommandDelay)
}

// Home moves the cursor to the first position without changing the text.
func (dev *Dev) Home() error {
	if err := dev.ready(); err != nil {
		return err
	}
	return dev.command(cmdHome, dev.opts.CommandDelay)
}

// GotoPosition moves the cursor to a linear index on the panel, counted left
// to right, top to bottom starting at 0. On a 16x2 display 16 is the first
// column of the second row.
func (dev *Dev) GotoPosition(pos int) error {
	if err := dev.ready(); err != nil {
		return err
	}
	if pos < 0 || pos >= dev.opts.Rows*dev.opts.Cols {
		return fmt.Errorf("%w: %d", ErrOutOfRange, pos)
	}
	return dev.command(cmdSetDDRAMAddr|Address(pos/dev.opts.Cols, pos%dev.opts.Cols, dev.opts.Cols), 0)
}

// Address returns the DDRAM address of the 0-based row and column on a panel
// cols wide. row is clamped to the four rows a HD44780 addresses.
func Address(row, col, cols int) byte {
	offsets := rowOffsets20
	if cols == 16 {
		offsets = rowOffsets16
	}
	row = max(0, min(row, len(offsets)-1))
	return offsets[row] + byte(col)
}

var (
	rowOffsets16 = [4]byte{0x00, 0x40, 0x10, 0x50}
	rowOffsets20 = [4]byte{0x00, 0x40, 0x14, 0x54}
)

// MoveTo moves the cursor to a 1-based row and column.
func (dev *Dev) MoveTo(row, col int) error {
	if row < dev.MinRow() || row > dev.opts.Rows || col < dev.MinCol() || col > dev.opts.Cols {
		return fmt.Errorf("%w: MoveTo(%d,%d)", ErrOutOfRange, row, col)
	}
	return dev.GotoPosition((row-1)*dev.opts.Cols + col - 1)
}

// Move the cursor forward or backward.
func (dev *Dev) Move(dir display.CursorDirection) error {
	if err := dev.ready(); err != nil {
		return err
	}
	val := cmdShift
	switch dir {
	case display.Backward:
	case display.Forward:
		val |= shiftRight
	default:
		return ErrNotImplemented
	}
	return dev.command(val, 0)
}

// Cursor sets the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorBlink)
func (dev *Dev) Cursor(modes ...display.CursorMode) error {
	if err := dev.ready(); err != nil {
		return err
	}
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			dev.cursor = false
			dev.blink = false
		case display.CursorBlink, display.CursorBlock:
			dev.blink = true
		case display.CursorUnderline:
			dev.cursor = true
		default:
			return fmt.Errorf("%s: unexpected cursor: %d", packageName, mode)
		}
	}
	return dev.displayControl()
}

// Display turns the display on or off. The text is kept while off.
func (dev *Dev) Display(on bool) error {
	if err := dev.ready(); err != nil {
		return err
	}
	dev.on = on
	return dev.displayControl()
}

func (dev *Dev) displayControl() error {
	val := cmdDisplay
	if dev.on {
		val |= displayOn
	}
	if dev.cursor {
		val |= displayCurs
	}
	if dev.blink {
		val |= displayBlnk
	}
	return dev.command(val, 0)
}

// AutoScroll is not supported. Returns ErrNotImplemented.
func (dev *Dev) AutoScroll(enabled bool) error {
	return ErrNotImplemented
}

// Backlight turns the backlight on for any non-zero intensity. The backpack
// has no dimming.
func (dev *Dev) Backlight(intensity display.Intensity) error {
	if err := dev.ready(); err != nil {
		return err
	}
	return dev.setBacklight(intensity > 0)
}

// Rows returns the number of rows the display supports.
func (dev *Dev) Rows() int {
	return dev.opts.Rows
}

// Cols returns the number of columns the display supports.
func (dev *Dev) Cols() int {
	return dev.opts.Cols
}

// MinRow returns the min row position.
func (dev *Dev) MinRow() int {
	return 1
}

// MinCol returns the min column position.
func (dev *Dev) MinCol() int {
	return 1
}

func (dev *Dev) String() string {
	name := fmt.Sprintf("%s_%x", packageName, dev.opts.Address)
	if s, ok := dev.t.(fmt.Stringer); ok {
		name = s.String()
	}
	return fmt.Sprintf("%s{%s} Rows: %d Cols: %d", packageName, name, dev.opts.Rows, dev.opts.Cols)
}

// Halt clears the display, turns it and the backlight off and releases the
// transport. The Dev cannot be used afterwards.
func (dev *Dev) Halt() error {
	var errs []error
	if dev.phase == Ready {
		errs = append(errs,
			dev.Clear(),
			dev.Display(false),
			dev.setBacklight(false))
	}
	dev.phase = Uninitialized
	if err := dev.t.End(); err != nil {
		errs = append(errs, wrap(err))
	}
	return errors.Join(errs...)
}

var _ conn.Resource = &Dev{}
var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
