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
	"io"
)

// Message is implemented by generated types and by the dynamic codec.
type Message interface {
	EncodeTagwire(e *Encoder) error
	DecodeTagwire(d *Decoder) error

	// Clear resets every field to its initial state. Fields declared with
	// a default value are reset to that default.
	Clear()
}

func Encode(ctx *EncodeCtx, m Message) ([]byte, error) {
	e := NewEncoder(ctx, nil)
	if err := m.EncodeTagwire(e); err != nil {
		return nil, err
	}
	return e.Data(), nil
}

func EncodeTo(ctx *EncodeCtx, m Message, w io.Writer) error {
	buf, err := Encode(ctx, m)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// Decode clears m and decodes buf into it. On failure m is left in an
// unspecified state; use DecodeAs to avoid observing partial results.
func Decode(ctx *DecodeCtx, buf []byte, m Message) error {
	m.Clear()
	return m.DecodeTagwire(NewDecoder(ctx, buf))
}

// DecodeAs decodes buf into a freshly allocated T. The value is returned only
// if the whole buffer decoded without error.
func DecodeAs[T any, P interface {
	*T
	Message
}](ctx *DecodeCtx, buf []byte) (*T, error) {
	var out P = new(T)
	if err := Decode(ctx, buf, out); err != nil {
		return nil, err
	}
	return out, nil
}
