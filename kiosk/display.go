// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package kiosk

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Screen is the part of lcd1602.Dev the kiosk uses.
type Screen interface {
	GotoPosition(pos int) error
	WriteMessage(text string) error
	Clear() error
	Rows() int
	Cols() int
}

// Display serializes access to a Screen. Every method is one transaction:
// no other goroutine can write between its cursor move and its text.
type Display struct {
	hold time.Duration
	now  func() time.Time

	mu     sync.Mutex
	screen Screen
	until  time.Time
}

// NewDisplay returns a Display. Feedback stays on the second row for hold.
func NewDisplay(screen Screen, hold time.Duration) *Display {
	return &Display{screen: screen, hold: hold, now: time.Now}
}

// Fold replaces accented letters with their base letter so they render as
// text instead of the fallback glyph.
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	r, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return r
}

// Fit folds s and pads or truncates it to width characters.
func Fit(s string, width int) string {
	r := []rune(Fold(s))
	if len(r) >= width {
		return string(r[:width])
	}
	return string(r) + strings.Repeat(" ", width-len(r))
}

func (d *Display) lineLocked(row int, text string) error {
	cols := d.screen.Cols()
	if err := d.screen.GotoPosition(row * cols); err != nil {
		return err
	}
	return d.screen.WriteMessage(Fit(text, cols))
}

// ShowLine replaces the content of row, counted from 0.
func (d *Display) ShowLine(row int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lineLocked(row, text)
}

// ShowFeedback writes text on the second row. It is blanked by the first Tick
// after the hold time.
func (d *Display) ShowFeedback(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.until = d.now().Add(d.hold)
	return d.lineLocked(1, text)
}

// Tick writes the time line on the first row and expires feedback.
func (d *Display) Tick(timeLine string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.lineLocked(0, timeLine); err != nil {
		return err
	}
	if d.until.IsZero() || d.now().Before(d.until) {
		return nil
	}
	d.until = time.Time{}
	return d.lineLocked(1, "")
}

// Clear blanks the screen.
func (d *Display) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.until = time.Time{}
	return d.screen.Clear()
}
