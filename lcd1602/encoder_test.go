// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd1602

import "testing"

func TestEncodePrintable(t *testing.T) {
	for r := rune(' '); r <= '}'; r++ {
		if r == '\\' {
			continue
		}
		if got := Encode(r); got != GlyphCode(r) {
			t.Errorf("Encode(%q)=0x%02x expected 0x%02x", r, got, r)
		}
		if !Supported(r) {
			t.Errorf("Supported(%q)=false", r)
		}
		if Encode(r) != Encode(r) {
			t.Errorf("Encode(%q) is not deterministic", r)
		}
	}
}

func TestEncodeFallback(t *testing.T) {
	var tests = []rune{
		0, '\n', '\t', 0x1f,
		'\\', '~', 0x7f,
		0x80, 'é', 'ß', '¥', '€', '日',
		-1, 0x10ffff,
	}
	for _, r := range tests {
		if got := Encode(r); got != Fallback {
			t.Errorf("Encode(%q)=0x%02x expected fallback 0x%02x", r, got, Fallback)
		}
		if Supported(r) {
			t.Errorf("Supported(%q)=true", r)
		}
	}
	if Fallback != '?' {
		t.Errorf("Fallback=0x%02x expected '?'", Fallback)
	}
}

func TestEncodeTableRange(t *testing.T) {
	for i, g := range glyphs {
		if g == 0 {
			continue
		}
		if g != GlyphCode(i) {
			t.Errorf("glyphs[0x%02x]=0x%02x", i, g)
		}
		if i < ' ' || i > '}' {
			t.Errorf("glyphs[0x%02x] outside the printable range", i)
		}
	}
}
