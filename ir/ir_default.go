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

package ir

// Default is a field's declared default value. Raw keeps the literal as
// written; exactly one of the typed members is meaningful, chosen by the
// field's Kind. Enum defaults store the value name in Enum and its number in
// Uint.
type Default struct {
	Raw   string  `json:"raw" cbor:"1,keyasint"`
	Int   int64   `json:"int,omitempty" cbor:"2,keyasint,omitempty"`
	Uint  uint64  `json:"uint,omitempty" cbor:"3,keyasint,omitempty"`
	Float float64 `json:"float,omitempty" cbor:"4,keyasint,omitempty"`
	Bool  bool    `json:"bool,omitempty" cbor:"5,keyasint,omitempty"`
	Text  string  `json:"text,omitempty" cbor:"6,keyasint,omitempty"`
	Enum  string  `json:"enum,omitempty" cbor:"7,keyasint,omitempty"`
}

// Value converts the default to the Go type used for kind by the dynamic
// codec: int32, int64, uint32, uint64, float32, float64, bool, string or
// []byte. Enums are uint32.
func (d *Default) Value(kind Kind) any {
	switch kind {
	case KindInt32, KindSint32, KindSfixed32:
		return int32(d.Int)
	case KindInt64, KindSint64, KindSfixed64:
		return d.Int
	case KindUint32, KindFixed32, KindEnum:
		return uint32(d.Uint)
	case KindUint64, KindFixed64:
		return d.Uint
	case KindFloat:
		return float32(d.Float)
	case KindDouble:
		return d.Float
	case KindBool:
		return d.Bool
	case KindString:
		return d.Text
	case KindBytes:
		return []byte(d.Text)
	}
	return nil
}
