// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd1602

import "time"

// Frame is one byte as seen by the PCF8574 backpack:
//
//	bit  7  6  5  4  3  2  1  0
//	    D7 D6 D5 D4 BL EN RW RS
type Frame byte

// Control bits of a Frame.
const (
	BitRS        Frame = 0x01
	BitRW        Frame = 0x02
	BitEN        Frame = 0x04
	BitBacklight Frame = 0x08
)

// Nibble returns the data nibble carried by the frame.
func (f Frame) Nibble() byte {
	return byte(f) >> 4
}

// Has reports whether all bits of mask are set.
func (f Frame) Has(mask Frame) bool {
	return f&mask == mask
}

// RegisterSelect picks the controller register a byte is written to.
type RegisterSelect bool

const (
	Command   RegisterSelect = false
	Character RegisterSelect = true
)

func (rs RegisterSelect) String() string {
	if rs == Character {
		return "Character"
	}
	return "Command"
}

// ReadWrite is the R/W line. Only Write is used; the backpack cannot read
// the busy flag back.
type ReadWrite bool

const (
	Write ReadWrite = false
	Read  ReadWrite = true
)

// displayState mirrors the control lines last committed to the backpack.
type displayState struct {
	backlight bool
	rs        RegisterSelect
	rw        ReadWrite
}

// frame assembles the low 4 bits of nibble with the current control bits.
func (s displayState) frame(nibble byte) Frame {
	f := Frame(nibble&0x0f) << 4
	if s.backlight {
		f |= BitBacklight
	}
	if s.rs == Character {
		f |= BitRS
	}
	if s.rw == Read {
		f |= BitRW
	}
	return f
}

// writeRaw sends one frame to the backpack. After a failure the controller
// may hold half a byte, so the next transfer resynchronizes it first.
func (dev *Dev) writeRaw(f Frame) error {
	if err := dev.t.Write([]byte{byte(f)}); err != nil {
		dev.desync = true
		return wrapIO(err)
	}
	return nil
}

// writeNibble latches a nibble into the controller. The controller samples
// D4-D7 on the falling edge of EN, so the frame goes out low, high, low with
// the settle delay after each write. A failed write is not retried; a partial
// pulse leaves the controller mid-transfer until resynchronize runs.
func (dev *Dev) writeNibble(nibble byte) error {
	f := dev.state.frame(nibble)
	for _, v := range [3]Frame{f, f | BitEN, f} {
		if err := dev.writeRaw(v); err != nil {
			return err
		}
		dev.sleep(dev.opts.SettleDelay)
	}
	return nil
}

// writeByte sends b as two nibbles, high first, as 4-bit mode requires.
func (dev *Dev) writeByte(b byte) error {
	if err := dev.writeNibble(b >> 4); err != nil {
		return err
	}
	return dev.writeNibble(b & 0x0f)
}

// command selects the instruction register and sends cmd followed by delay.
func (dev *Dev) command(cmd byte, delay time.Duration) error {
	dev.state.rs = Command
	if err := dev.writeByte(cmd); err != nil {
		return err
	}
	dev.sleep(delay)
	return nil
}

// setBacklight commits the backlight bit. The backpack drives the LED
// straight from BL, so a single frame without an enable pulse is enough.
func (dev *Dev) setBacklight(on bool) error {
	dev.state.backlight = on
	return dev.writeRaw(dev.state.frame(0))
}

// resynchronize brings back a controller left mid-byte by a failed write.
// The wake sequence completes any pending nibble as a harmless instruction
// and returns the controller to 4-bit mode. The register select in use is
// kept. The cursor position is undefined afterwards.
func (dev *Dev) resynchronize() error {
	if !dev.desync {
		return nil
	}
	rs := dev.state.rs
	defer func() { dev.state.rs = rs }()
	dev.state.rs = Command
	if err := dev.wake(); err != nil {
		return err
	}
	dev.desync = false
	return nil
}
