// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd1602

// GlyphCode is a character code in the controller's character generator ROM.
type GlyphCode byte

// Fallback is the glyph written for characters the table does not cover.
const Fallback GlyphCode = '?'

// glyphs maps 7-bit ASCII to the A00 character ROM. Zero entries are
// unsupported and fall back to '?'.
//
// 0x5C is '¥' in the A00 ROM, not '\', so backslash is left unsupported.
// '~' and DEL are likewise arrows in ROM and are left out.
var glyphs = [128]GlyphCode{
	' ': 0x20, '!': 0x21, '"': 0x22, '#': 0x23, '$': 0x24, '%': 0x25, '&': 0x26, '\'': 0x27,
	'(': 0x28, ')': 0x29, '*': 0x2a, '+': 0x2b, ',': 0x2c, '-': 0x2d, '.': 0x2e, '/': 0x2f,

	'0': 0x30, '1': 0x31, '2': 0x32, '3': 0x33, '4': 0x34, '5': 0x35, '6': 0x36, '7': 0x37,
	'8': 0x38, '9': 0x39, ':': 0x3a, ';': 0x3b, '<': 0x3c, '=': 0x3d, '>': 0x3e, '?': 0x3f,

	'@': 0x40, 'A': 0x41, 'B': 0x42, 'C': 0x43, 'D': 0x44, 'E': 0x45, 'F': 0x46, 'G': 0x47,
	'H': 0x48, 'I': 0x49, 'J': 0x4a, 'K': 0x4b, 'L': 0x4c, 'M': 0x4d, 'N': 0x4e, 'O': 0x4f,

	'P': 0x50, 'Q': 0x51, 'R': 0x52, 'S': 0x53, 'T': 0x54, 'U': 0x55, 'V': 0x56, 'W': 0x57,
	'X': 0x58, 'Y': 0x59, 'Z': 0x5a, '[': 0x5b, ']': 0x5d, '^': 0x5e, '_': 0x5f,

	'`': 0x60, 'a': 0x61, 'b': 0x62, 'c': 0x63, 'd': 0x64, 'e': 0x65, 'f': 0x66, 'g': 0x67,
	'h': 0x68, 'i': 0x69, 'j': 0x6a, 'k': 0x6b, 'l': 0x6c, 'm': 0x6d, 'n': 0x6e, 'o': 0x6f,

	'p': 0x70, 'q': 0x71, 'r': 0x72, 's': 0x73, 't': 0x74, 'u': 0x75, 'v': 0x76, 'w': 0x77,
	'x': 0x78, 'y': 0x79, 'z': 0x7a, '{': 0x7b, '|': 0x7c, '}': 0x7d,
}

// Encode returns the glyph code the display uses for r. Characters outside
// the supported table map to Fallback.
func Encode(r rune) GlyphCode {
	if r < 0 || int(r) >= len(glyphs) {
		return Fallback
	}
	if g := glyphs[r]; g != 0 {
		return g
	}
	return Fallback
}

// Supported reports whether r has its own glyph rather than the fallback.
func Supported(r rune) bool {
	return r >= 0 && int(r) < len(glyphs) && glyphs[r] != 0
}
