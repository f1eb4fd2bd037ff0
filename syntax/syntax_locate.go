// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package syntax

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// Position is a 1-based line and column. Columns count runes, not bytes.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Locate maps a byte offset in src to its line and column. Offsets past the
// end of src are clamped to it.
func Locate(src []byte, offset uint32) Position {
	if int(offset) > len(src) {
		offset = uint32(len(src))
	}
	before := src[:offset]
	lineStart := bytes.LastIndexByte(before, '\n') + 1
	return Position{
		Line:   1 + bytes.Count(before, []byte{'\n'}),
		Column: 1 + utf8.RuneCount(before[lineStart:]),
	}
}

// LineAt returns the line of src containing offset, without its line
// terminator.
func LineAt(src []byte, offset uint32) string {
	if int(offset) > len(src) {
		offset = uint32(len(src))
	}
	start := bytes.LastIndexByte(src[:offset], '\n') + 1
	end := len(src)
	if idx := bytes.IndexByte(src[offset:], '\n'); idx >= 0 {
		end = int(offset) + idx
	}
	return string(bytes.TrimSuffix(src[start:end], []byte{'\r'}))
}
