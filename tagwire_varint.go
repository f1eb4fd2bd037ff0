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

package tagwire

import (
	"encoding/binary"
	"math"
)

func AppendVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, uint8(v)|0x80)
		v >>= 7
	}
	return append(buf, uint8(v))
}

func VarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// ConsumeVarint decodes a varint from the front of buf, returning the value
// and the number of bytes read. A zero length means the buffer ended inside
// the varint; a negative length means the varint overflows 64 bits.
func ConsumeVarint(buf []byte) (uint64, int) {
	var v uint64
	for ii := 0; ii < maxVarintLen; ii++ {
		if ii >= len(buf) {
			return 0, 0
		}
		b := buf[ii]
		if ii == maxVarintLen-1 && b > 1 {
			return 0, -1
		}
		v |= uint64(b&0x7F) << (7 * ii)
		if b < 0x80 {
			return v, ii + 1
		}
	}
	return 0, -1
}

func EncodeZigzag32(n int32) uint32 {
	return uint32(n<<1) ^ uint32(n>>31)
}

func DecodeZigzag32(v uint32) int32 {
	return int32(v>>1) ^ -int32(v&1)
}

func EncodeZigzag64(n int64) uint64 {
	return uint64(n<<1) ^ uint64(n>>63)
}

func DecodeZigzag64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

func AppendHeader(buf []byte, id uint32, wt WireType) []byte {
	return AppendVarint(buf, uint64(id)<<3|uint64(wt))
}

func AppendFixed32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

func AppendFixed64(buf []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(buf, v)
}

func AppendFloat(buf []byte, v float32) []byte {
	return AppendFixed32(buf, math.Float32bits(v))
}

func AppendDouble(buf []byte, v float64) []byte {
	return AppendFixed64(buf, math.Float64bits(v))
}

// AppendLen writes a length prefix followed by data.
func AppendLen(buf []byte, data []byte) []byte {
	buf = AppendVarint(buf, uint64(len(data)))
	return append(buf, data...)
}
