// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdsim emulates a HD44780 LCD behind a PCF8574 backpack.
//
// Sim accepts the same byte stream a real backpack would, decodes the enable
// pulses into nibbles and instructions, and keeps the display RAM. It can
// render the panel to a terminal using ANSI colors or to an image.
//
// Useful to develop the kiosk without the hardware on the desk, and to check
// what a driver actually put on the screen.
package lcdsim

import (
	"errors"
	"fmt"
	"sync"
)

// Backpack wiring, same as the PCF8574 LCD backpacks.
const (
	bitRS        = 0x01
	bitRW        = 0x02
	bitEN        = 0x04
	bitBacklight = 0x08
)

const ddramSize = 0x80

var (
	// ErrNotStarted is returned by Write before Begin or after End.
	ErrNotStarted = errors.New("lcdsim: bus not started")
	// ErrInjected is the error returned by writes selected with FailWrites.
	ErrInjected = errors.New("lcdsim: injected write failure")
)

// Instruction is one instruction or data byte as the controller executed it.
type Instruction struct {
	RS    bool
	Value byte
}

func (i Instruction) String() string {
	if i.RS {
		return fmt.Sprintf("data(0x%02x)", i.Value)
	}
	return fmt.Sprintf("cmd(0x%02x)", i.Value)
}

// Opts represents the options available for the simulated display.
type Opts struct {
	// Rows is capped at 4, the most a HD44780 addresses.
	Rows int
	Cols int
	// FailBegin makes Begin fail.
	FailBegin bool

	_ struct{}
}

// Sim is a simulated backpack and controller. It implements the
// lcd1602.Transport interface.
type Sim struct {
	rows int
	cols int

	mu        sync.Mutex
	failBegin bool
	failAt    map[int]bool
	started   bool
	addr      uint16
	frames    []byte
	last      byte

	eightBit  bool
	pending   bool
	high      byte
	twoLine   bool
	on        bool
	cursor    bool
	blink     bool
	increment bool
	shift     bool
	backlight bool
	ac        int
	ddram     [ddramSize]byte
	log       []Instruction
}

// New returns a powered up display: 8-bit interface, display off, DDRAM
// filled with spaces.
func New(opts *Opts) *Sim {
	s := &Sim{rows: 2, cols: 16, failAt: map[int]bool{}}
	if opts != nil {
		if opts.Rows > 0 {
			s.rows = min(opts.Rows, 4)
		}
		if opts.Cols > 0 {
			s.cols = opts.Cols
		}
		s.failBegin = opts.FailBegin
	}
	s.reset()
	return s
}

func (s *Sim) reset() {
	s.eightBit = true
	s.pending = false
	s.increment = true
	s.ac = 0
	for i := range s.ddram {
		s.ddram[i] = ' '
	}
}

// FailWrites makes the given 0-based frame numbers fail. Frame numbers count
// every byte passed to Write since the Sim was created, including failed
// ones.
func (s *Sim) FailWrites(n ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range n {
		s.failAt[i] = true
	}
}

// Begin implements lcd1602.Transport.
func (s *Sim) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failBegin {
		return errors.New("lcdsim: no bus")
	}
	s.started = true
	return nil
}

// SetAddress implements lcd1602.Transport.
func (s *Sim) SetAddress(addr uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addr = addr
	return nil
}

// End implements lcd1602.Transport.
func (s *Sim) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	return nil
}

// Write implements lcd1602.Transport. Each byte is one port value of the
// backpack.
func (s *Sim) Write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	for _, b := range p {
		n := len(s.frames)
		s.frames = append(s.frames, b)
		if s.failAt[n] {
			return fmt.Errorf("%w: frame %d", ErrInjected, n)
		}
		s.port(b)
	}
	return nil
}

// port applies one port value. Data is sampled on the falling edge of EN.
func (s *Sim) port(b byte) {
	s.backlight = b&bitBacklight != 0
	if s.last&bitEN != 0 && b&bitEN == 0 && s.last&bitRW == 0 {
		s.latch(s.last)
	}
	s.last = b
}

func (s *Sim) latch(f byte) {
	rs := f&bitRS != 0
	nibble := f >> 4
	if s.eightBit {
		// Only D4-D7 are wired; D0-D3 float low.
		s.execute(rs, nibble<<4)
		return
	}
	if !s.pending {
		s.high = nibble
		s.pending = true
		return
	}
	s.pending = false
	s.execute(rs, s.high<<4|nibble)
}

func (s *Sim) execute(rs bool, v byte) {
	s.log = append(s.log, Instruction{RS: rs, Value: v})
	if rs {
		s.ddram[s.ac] = v
		s.advance(s.increment)
		return
	}
	switch {
	case v&0x80 != 0:
		s.ac = int(v & 0x7f)
	case v&0x40 != 0:
		// CGRAM address; custom characters are not emulated.
	case v&0x20 != 0:
		s.eightBit = v&0x10 != 0
		s.twoLine = v&0x08 != 0
		s.pending = false
	case v&0x10 != 0:
		if v&0x08 == 0 {
			s.advance(v&0x04 != 0)
		}
	case v&0x08 != 0:
		s.on = v&0x04 != 0
		s.cursor = v&0x02 != 0
		s.blink = v&0x01 != 0
	case v&0x04 != 0:
		s.increment = v&0x02 != 0
		s.shift = v&0x01 != 0
	case v&0x02 != 0:
		s.ac = 0
	case v == 0x01:
		for i := range s.ddram {
			s.ddram[i] = ' '
		}
		s.ac = 0
		s.increment = true
	}
}

func (s *Sim) advance(forward bool) {
	if forward {
		s.ac = (s.ac + 1) % ddramSize
	} else {
		s.ac = (s.ac + ddramSize - 1) % ddramSize
	}
}

// rowOffset returns the DDRAM address of the first column of row.
func (s *Sim) rowOffset(row int) int {
	offsets := [4]int{0x00, 0x40, 0x14, 0x54}
	if s.cols == 16 {
		offsets = [4]int{0x00, 0x40, 0x10, 0x50}
	}
	return offsets[row]
}

// Lines returns the text visible on each row. A display that is off shows
// blank rows.
func (s *Sim) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.linesLocked()
}

func (s *Sim) linesLocked() []string {
	lines := make([]string, s.rows)
	for row := range s.rows {
		buf := make([]byte, s.cols)
		for col := range s.cols {
			buf[col] = ' '
			if s.on {
				buf[col] = s.ddram[(s.rowOffset(row)+col)%ddramSize]
			}
		}
		lines[row] = string(buf)
	}
	return lines
}

// Instructions returns every instruction and data byte executed so far.
func (s *Sim) Instructions() []Instruction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Instruction(nil), s.log...)
}

// Commands returns the executed instructions, leaving out data writes.
func (s *Sim) Commands() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cmds []byte
	for _, i := range s.log {
		if !i.RS {
			cmds = append(cmds, i.Value)
		}
	}
	return cmds
}

// Frames returns every byte written to the port.
func (s *Sim) Frames() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.frames...)
}

// Reset clears the frame and instruction logs. Display state is kept.
func (s *Sim) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = nil
	s.log = nil
}

// Address returns the address last selected with SetAddress.
func (s *Sim) Address() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Backlight reports whether the backlight line is on.
func (s *Sim) Backlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backlight
}

// On reports whether the display is turned on.
func (s *Sim) On() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

// FourBit reports whether the controller is in 4-bit interface mode.
func (s *Sim) FourBit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.eightBit
}

// Cursor returns the address counter.
func (s *Sim) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ac
}

func (s *Sim) String() string {
	return "lcdsim"
}
