// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"golang.org/x/image/font/gofont/gomono"
)

var (
	colorBacklight = color.NRGBA{0x3b, 0x6e, 0xf0, 0xff}
	colorUnlit     = color.NRGBA{0x1a, 0x22, 0x38, 0xff}
	colorPixel     = color.NRGBA{0xe8, 0xf0, 0xff, 0xff}
	colorBezel     = color.NRGBA{0x20, 0x20, 0x20, 0xff}
)

// glyph returns the rune the A00 character ROM shows for code.
func glyph(code byte) rune {
	switch {
	case code == 0x5c:
		return '¥'
	case code == 0x7e:
		return '→'
	case code == 0x7f:
		return '←'
	case code >= 0x20 && code < 0x7e:
		return rune(code)
	}
	return '█'
}

func visible(line string) string {
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		b.WriteRune(glyph(line[i]))
	}
	return b.String()
}

// Terminal draws a Sim on a console using ANSI color codes. Every Refresh
// redraws the panel in place.
type Terminal struct {
	sim     *Sim
	w       io.Writer
	palette ansi256.Palette

	mu    sync.Mutex
	drawn bool
	buf   bytes.Buffer
}

// NewTerminal returns a Terminal that draws s on stdout.
func NewTerminal(s *Sim, palette *ansi256.Palette) *Terminal {
	return NewTerminalWriter(s, colorable.NewColorableStdout(), palette)
}

// NewTerminalWriter returns a Terminal that draws s on w.
func NewTerminalWriter(s *Sim, w io.Writer, palette *ansi256.Palette) *Terminal {
	if palette == nil {
		palette = ansi256.Default
	}
	return &Terminal{sim: s, w: w, palette: *palette}
}

// Refresh draws the current contents of the display.
func (t *Terminal) Refresh() error {
	lines := t.sim.Lines()
	frame := colorUnlit
	if t.sim.Backlight() {
		frame = colorBacklight
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// This code is designed to minimize the amount of memory allocated per call.
	t.buf.Reset()
	if t.drawn {
		fmt.Fprintf(&t.buf, "\033[%dA", len(lines)+2)
	}
	edge := t.palette.Block(frame)
	border := strings.Repeat(edge, t.sim.cols+2)
	_, _ = t.buf.WriteString("\r\033[0m" + border + "\033[0m\n")
	for _, line := range lines {
		_, _ = t.buf.WriteString("\r" + edge + "\033[0m" + visible(line) + edge + "\033[0m\n")
	}
	_, _ = t.buf.WriteString("\r" + border + "\033[0m\n")
	_, err := t.buf.WriteTo(t.w)
	t.drawn = err == nil
	return err
}

// Halt resets the terminal colors.
func (t *Terminal) Halt() error {
	_, err := t.w.Write([]byte("\n\033[0m"))
	return err
}

const (
	cellW   = 24
	cellH   = 36
	padding = 16
)

var (
	monoOnce sync.Once
	monoFont *truetype.Font
	monoErr  error
)

func monoFace() (*truetype.Font, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = truetype.Parse(gomono.TTF)
	})
	return monoFont, monoErr
}

func (s *Sim) draw() (*gg.Context, error) {
	f, err := monoFace()
	if err != nil {
		return nil, fmt.Errorf("lcdsim: %w", err)
	}
	s.mu.Lock()
	lines := s.linesLocked()
	lit := s.backlight
	cols := s.cols
	s.mu.Unlock()

	w := cols*cellW + 2*padding
	h := len(lines)*cellH + 2*padding
	dc := gg.NewContext(w, h)
	dc.SetColor(colorBezel)
	dc.Clear()
	if lit {
		dc.SetColor(colorBacklight)
	} else {
		dc.SetColor(colorUnlit)
	}
	dc.DrawRectangle(padding/2, padding/2, float64(w-padding), float64(h-padding))
	dc.Fill()

	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: cellH * 0.8}))
	dc.SetColor(colorPixel)
	for row, line := range lines {
		y := float64(padding + row*cellH + cellH/2)
		for col := 0; col < len(line); col++ {
			x := float64(padding + col*cellW + cellW/2)
			dc.DrawStringAnchored(string(glyph(line[col])), x, y, 0.5, 0.35)
		}
	}
	return dc, nil
}

// Snapshot renders the panel as an image.
func (s *Sim) Snapshot() (image.Image, error) {
	dc, err := s.draw()
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// SavePNG renders the panel to a PNG file.
func (s *Sim) SavePNG(path string) error {
	dc, err := s.draw()
	if err != nil {
		return err
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("lcdsim: %w", err)
	}
	return nil
}

// EncodePNG renders the panel as PNG to w.
func (s *Sim) EncodePNG(w io.Writer) error {
	dc, err := s.draw()
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}
