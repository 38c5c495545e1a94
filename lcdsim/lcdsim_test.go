// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// pulse latches one nibble the way a backpack driver does.
func pulse(t *testing.T, s *Sim, rs bool, nibble byte) {
	t.Helper()
	f := nibble<<4 | bitBacklight
	if rs {
		f |= bitRS
	}
	if err := s.Write([]byte{f, f | bitEN, f}); err != nil {
		t.Fatal(err)
	}
}

func send(t *testing.T, s *Sim, rs bool, b byte) {
	t.Helper()
	pulse(t, s, rs, b>>4)
	pulse(t, s, rs, b&0x0f)
}

func started(t *testing.T, opts *Opts) *Sim {
	t.Helper()
	s := New(opts)
	if err := s.Begin(); err != nil {
		t.Fatal(err)
	}
	pulse(t, s, false, 0x3)
	pulse(t, s, false, 0x3)
	pulse(t, s, false, 0x3)
	pulse(t, s, false, 0x2)
	send(t, s, false, 0x28)
	send(t, s, false, 0x0c)
	return s
}

func TestDecode(t *testing.T) {
	s := started(t, nil)
	if !s.FourBit() || !s.On() || !s.Backlight() {
		t.Fatalf("4-bit=%t on=%t backlight=%t", s.FourBit(), s.On(), s.Backlight())
	}
	for _, c := range []byte("Hi") {
		send(t, s, true, c)
	}
	send(t, s, false, 0xc3)
	send(t, s, true, '!')

	want := []string{"Hi              ", "   !            "}
	if diff := cmp.Diff(want, s.Lines()); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
	wantCmds := []byte{0x30, 0x30, 0x30, 0x20, 0x28, 0x0c, 0xc3}
	if diff := cmp.Diff(wantCmds, s.Commands()); diff != "" {
		t.Errorf("commands (-want +got):\n%s", diff)
	}
	if got := len(s.Instructions()); got != len(wantCmds)+3 {
		t.Errorf("%d instructions", got)
	}
}

func TestLatchOnFallingEdge(t *testing.T) {
	s := New(nil)
	if err := s.Begin(); err != nil {
		t.Fatal(err)
	}
	// EN high alone does not latch.
	if err := s.Write([]byte{0x30, 0x34}); err != nil {
		t.Fatal(err)
	}
	if len(s.Commands()) != 0 {
		t.Fatalf("latched on rising edge: %v", s.Commands())
	}
	if err := s.Write([]byte{0x30}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x30}, s.Commands()); diff != "" {
		t.Errorf("commands (-want +got):\n%s", diff)
	}
}

func TestClearAndEntryMode(t *testing.T) {
	s := started(t, nil)
	for _, c := range []byte("abc") {
		send(t, s, true, c)
	}
	send(t, s, false, 0x01)
	if s.Cursor() != 0 || s.Lines()[0] != strings.Repeat(" ", 16) {
		t.Errorf("after clear cursor=%d line=%q", s.Cursor(), s.Lines()[0])
	}
	// Decrement entry mode writes right to left.
	send(t, s, false, 0x04)
	send(t, s, false, 0x85)
	send(t, s, true, 'b')
	send(t, s, true, 'a')
	if got := s.Lines()[0]; got != "    ab          " {
		t.Errorf("line %q", got)
	}
	send(t, s, false, 0x08)
	if got := s.Lines()[0]; got != strings.Repeat(" ", 16) {
		t.Errorf("display off shows %q", got)
	}
}

func TestFailWrites(t *testing.T) {
	s := New(nil)
	if err := s.Write([]byte{0}); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Write before Begin err=%v", err)
	}
	if err := s.Begin(); err != nil {
		t.Fatal(err)
	}
	s.FailWrites(1)
	err := s.Write([]byte{0x30, 0x34, 0x30})
	if !errors.Is(err, ErrInjected) {
		t.Errorf("err=%v", err)
	}
	if len(s.Frames()) != 2 {
		t.Errorf("%d frames", len(s.Frames()))
	}
	if len(s.Commands()) != 0 {
		t.Errorf("failed pulse latched %v", s.Commands())
	}
	if err := New(&Opts{FailBegin: true}).Begin(); err == nil {
		t.Error("Begin succeeded")
	}
}

func TestTerminal(t *testing.T) {
	s := started(t, nil)
	for _, c := range []byte("Hi\\") {
		send(t, s, true, c)
	}
	var buf bytes.Buffer
	term := NewTerminalWriter(s, &buf, nil)
	if err := term.Refresh(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Hi¥") {
		t.Errorf("output missing text: %q", out)
	}
	if strings.Contains(out, "\033[4A") {
		t.Error("first refresh moved the cursor up")
	}
	buf.Reset()
	if err := term.Refresh(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "\033[4A") {
		t.Errorf("second refresh does not redraw in place: %q", buf.String())
	}
	if err := term.Halt(); err != nil {
		t.Error(err)
	}
}

func TestSnapshot(t *testing.T) {
	s := started(t, &Opts{Rows: 4, Cols: 20})
	for _, c := range []byte("Snapshot") {
		send(t, s, true, c)
	}
	img, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != 20*cellW+2*padding || b.Dy() != 4*cellH+2*padding {
		t.Errorf("bounds %v", b)
	}

	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Error(err)
	}

	path := filepath.Join(t.TempDir(), "lcd.png")
	if err := s.SavePNG(path); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("snapshot file: %v", err)
	}
}

func TestGlyph(t *testing.T) {
	for code, want := range map[byte]rune{
		'A':  'A',
		' ':  ' ',
		'}':  '}',
		0x5c: '¥',
		0x7e: '→',
		0x7f: '←',
		0x00: '█',
		0xb1: '█',
	} {
		if got := glyph(code); got != want {
			t.Errorf("glyph(0x%02x)=%q expected %q", code, got, want)
		}
	}
}

func TestRowsCapped(t *testing.T) {
	s := started(t, &Opts{Rows: 6, Cols: 20})
	if got := len(s.Lines()); got != 4 {
		t.Errorf("%d rows", got)
	}
}

func TestTerminalUnlit(t *testing.T) {
	s := New(nil)
	var buf bytes.Buffer
	if err := NewTerminalWriter(s, &buf, nil).Refresh(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("nothing drawn")
	}
}
