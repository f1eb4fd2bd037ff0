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

// Package tagwire is the runtime half of the tagwire schema compiler. It holds
// the wire primitives that generated code and the dynamic codec call into.
//
// A message is a sequence of fields. Every field starts with a header varint
// holding (id << 3) | wiretype, followed by a value framed by the wire type.
package tagwire

import (
	"encoding/binary"
	"fmt"
)

const (
	// MaxFieldID is the largest id that fits in a header varint alongside a
	// 3-bit wire type without exceeding 32 bits.
	MaxFieldID uint32 = 1<<29 - 1

	// DefaultMaxDepth bounds sub-message nesting on encode and decode.
	DefaultMaxDepth = 64

	maxVarintLen = 10
)

type WireType uint8

const (
	WireVarint  WireType = 0
	WireFixed64 WireType = 1
	WireBytes   WireType = 2
	WireFixed32 WireType = 5
)

func (wt WireType) String() string {
	switch wt {
	case WireVarint:
		return "VARINT"
	case WireFixed64:
		return "FIXED64"
	case WireBytes:
		return "LEN"
	case WireFixed32:
		return "FIXED32"
	default:
		return fmt.Sprintf("WireType(%d)", uint8(wt))
	}
}

func (wt WireType) valid() bool {
	switch wt {
	case WireVarint, WireFixed64, WireBytes, WireFixed32:
		return true
	}
	return false
}

// FixedWidth reports the number of value bytes for FIXED32 and FIXED64, or 0
// for variable-length wire types.
func (wt WireType) FixedWidth() int {
	switch wt {
	case WireFixed32:
		return 4
	case WireFixed64:
		return 8
	}
	return 0
}

// Ptr returns a pointer to a copy of v. Generated code uses it for optional
// scalar fields.
func Ptr[T any](v T) *T {
	return &v
}

func leUint32(buf []uint8) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

func leUint64(buf []uint8) uint64 {
	return binary.LittleEndian.Uint64(buf)
}
