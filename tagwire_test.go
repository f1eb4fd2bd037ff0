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

package tagwire_test

import (
	"errors"
	"math"
	"testing"

	"go.tagwire.dev/tagwire"
	"go.tagwire.dev/tagwire/internal/testutil"
)

// point is written the way codegen/golang output looks.
type point struct {
	X    *int32
	Tags []uint32
	Next *point
}

func (m *point) Clear() {
	*m = point{}
}

func (m *point) EncodeTagwire(e *tagwire.Encoder) error {
	if m.X != nil {
		e.Sint32(1, *m.X)
	}
	e.PackedFixed32(2, m.Tags)
	if m.Next != nil {
		if err := e.Message(3, m.Next); err != nil {
			return err
		}
	}
	return nil
}

func (m *point) DecodeTagwire(d *tagwire.Decoder) error {
	for !d.Done() {
		id, wt, err := d.Next()
		if err != nil {
			return err
		}
		switch id {
		case 1:
			if wt != tagwire.WireVarint {
				return d.WireTypeError(wt, tagwire.WireVarint)
			}
			v, err := d.Sint32()
			if err != nil {
				return err
			}
			m.X = &v
		case 2:
			err = d.Repeated(wt, tagwire.WireFixed32, func(d *tagwire.Decoder) error {
				v, err := d.Fixed32()
				m.Tags = append(m.Tags, v)
				return err
			})
		case 3:
			if wt != tagwire.WireBytes {
				return d.WireTypeError(wt, tagwire.WireBytes)
			}
			m.Next = &point{}
			err = d.Message(m.Next)
		default:
			err = d.Skip(wt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func TestVarint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value uint64
		wire  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
		{math.MaxUint64, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}},
	}
	for _, test := range tests {
		buf := tagwire.AppendVarint(nil, test.value)
		testutil.ExpectBytesEq(t, test.wire, buf)
		testutil.ExpectEq(t, len(test.wire), tagwire.VarintLen(test.value))

		got, n := tagwire.ConsumeVarint(test.wire)
		testutil.ExpectEq(t, test.value, got)
		testutil.ExpectEq(t, len(test.wire), n)
	}
}

func TestVarintMalformed(t *testing.T) {
	t.Parallel()

	_, n := tagwire.ConsumeVarint([]byte{0x80, 0x80})
	testutil.ExpectEq(t, 0, n)

	_, n = tagwire.ConsumeVarint([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x02})
	testutil.ExpectEq(t, -1, n)
}

func TestZigzagOrdering(t *testing.T) {
	t.Parallel()

	values := []int64{0, -1, 1, -2, 2, -3, 3}
	for ii, v := range values {
		testutil.ExpectEq(t, uint64(ii), tagwire.EncodeZigzag64(v))
		testutil.ExpectEq(t, v, tagwire.DecodeZigzag64(uint64(ii)))
		testutil.ExpectEq(t, uint32(ii), tagwire.EncodeZigzag32(int32(v)))
		testutil.ExpectEq(t, int32(v), tagwire.DecodeZigzag32(uint32(ii)))
	}

	testutil.ExpectEq(t, uint32(math.MaxUint32), tagwire.EncodeZigzag32(math.MinInt32))
	testutil.ExpectEq(t, int64(math.MinInt64), tagwire.DecodeZigzag64(math.MaxUint64))
}

func TestEncodeScalars(t *testing.T) {
	t.Parallel()

	e := tagwire.NewEncoder(nil, nil)
	e.Int32(1, -1)
	e.Sint32(2, -1)
	e.Fixed32(3, 0x01020304)
	e.String(4, "hi")
	e.Bool(5, true)
	e.Double(6, 1.0)

	testutil.ExpectBytesEq(t, []byte{
		0x08, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01,
		0x10, 0x01,
		0x1D, 0x04, 0x03, 0x02, 0x01,
		0x22, 0x02, 'h', 'i',
		0x28, 0x01,
		0x31, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF0, 0x3F,
	}, e.Data())
}

func TestDecodeScalars(t *testing.T) {
	t.Parallel()

	e := tagwire.NewEncoder(nil, nil)
	e.Int32(1, -5)
	e.Sfixed64(2, -7)
	e.Float(3, 2.5)
	e.Bytes(4, []byte{1, 2, 3})

	d := tagwire.NewDecoder(nil, e.Data())
	id, wt, err := d.Next()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, uint32(1), id)
	testutil.ExpectEq(t, tagwire.WireVarint, wt)
	i32, err := d.Int32()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, int32(-5), i32)

	id, wt, err = d.Next()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, uint32(2), id)
	testutil.ExpectEq(t, tagwire.WireFixed64, wt)
	s64, err := d.Sfixed64()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, int64(-7), s64)

	_, wt, err = d.Next()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, tagwire.WireFixed32, wt)
	f32, err := d.Float()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, float32(2.5), f32)

	_, _, err = d.Next()
	testutil.AssertNoError(t, err)
	buf, err := d.Bytes()
	testutil.AssertNoError(t, err)
	testutil.ExpectBytesEq(t, []byte{1, 2, 3}, buf)

	testutil.ExpectTrue(t, d.Done())
}

func TestMessageRoundTrip(t *testing.T) {
	t.Parallel()

	msg := &point{
		X:    tagwire.Ptr[int32](-3),
		Tags: []uint32{7, 8},
		Next: &point{X: tagwire.Ptr[int32](3)},
	}
	buf, err := tagwire.Encode(nil, msg)
	testutil.AssertNoError(t, err)

	got, err := tagwire.DecodeAs[point](nil, buf)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, int32(-3), *got.X)
	testutil.ExpectSliceEq(t, []uint32{7, 8}, got.Tags)
	if testutil.ExpectTrue(t, got.Next != nil); got.Next != nil {
		testutil.ExpectEq(t, int32(3), *got.Next.X)
		testutil.ExpectTrue(t, got.Next.Next == nil)
	}
}

func TestSkipUnknownFields(t *testing.T) {
	t.Parallel()

	e := tagwire.NewEncoder(nil, nil)
	e.Uint64(100, 1<<40)
	e.Sint32(1, 4)
	e.Fixed64(101, 9)
	e.Fixed32(102, 9)
	e.String(103, "ignored")
	e.Bytes(104, nil)

	got, err := tagwire.DecodeAs[point](nil, e.Data())
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, int32(4), *got.X)
}

func TestPackedAndUnpacked(t *testing.T) {
	t.Parallel()

	packed := tagwire.NewEncoder(nil, nil)
	packed.PackedFixed32(2, []uint32{1, 2, 3})

	unpacked := tagwire.NewEncoder(nil, nil)
	unpacked.Fixed32(2, 1)
	unpacked.Fixed32(2, 2)
	unpacked.Fixed32(2, 3)

	mixed := tagwire.NewEncoder(nil, nil)
	mixed.Fixed32(2, 1)
	mixed.PackedFixed32(2, []uint32{2, 3})

	for _, buf := range [][]byte{packed.Data(), unpacked.Data(), mixed.Data()} {
		got, err := tagwire.DecodeAs[point](nil, buf)
		testutil.AssertNoError(t, err)
		testutil.ExpectSliceEq(t, []uint32{1, 2, 3}, got.Tags)
	}

	// Empty repeated fields are not written at all.
	empty := tagwire.NewEncoder(nil, nil)
	empty.PackedFixed32(2, nil)
	testutil.ExpectEq(t, 0, empty.Len())
}

func expectDecodeError(t *testing.T, buf []byte, kind error) *tagwire.DecodeError {
	t.Helper()
	_, err := tagwire.DecodeAs[point](nil, buf)
	testutil.AssertError(t, err)
	if !errors.Is(err, kind) {
		t.Fatalf("Expected errors.Is(err, %v), got: %v", kind, err)
	}
	var decodeErr *tagwire.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected *tagwire.DecodeError, got: %T", err)
	}
	return decodeErr
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	t.Run("truncated fixed", func(t *testing.T) {
		t.Parallel()
		err := expectDecodeError(t, []byte{0x15, 0x01, 0x02}, tagwire.ErrTruncated)
		testutil.ExpectEq(t, uint32(2), err.FieldID)
		testutil.ExpectEq(t, 1, err.Offset)
	})
	t.Run("unterminated varint", func(t *testing.T) {
		t.Parallel()
		expectDecodeError(t, []byte{0x08, 0x80}, tagwire.ErrBadVarint)
	})
	t.Run("unterminated header", func(t *testing.T) {
		t.Parallel()
		expectDecodeError(t, []byte{0x88}, tagwire.ErrBadVarint)
	})
	t.Run("length overrun", func(t *testing.T) {
		t.Parallel()
		expectDecodeError(t, []byte{0x22, 0x05, 'a'}, tagwire.ErrLengthOverrun)
	})
	t.Run("wrong wire type", func(t *testing.T) {
		t.Parallel()
		expectDecodeError(t, []byte{0x0D, 0, 0, 0, 0}, tagwire.ErrWireType)
	})
	t.Run("unknown wire type", func(t *testing.T) {
		t.Parallel()
		expectDecodeError(t, []byte{0x0B}, tagwire.ErrWireType)
	})
	t.Run("field id zero", func(t *testing.T) {
		t.Parallel()
		expectDecodeError(t, []byte{0x00, 0x00}, tagwire.ErrFieldID)
	})
	t.Run("ragged packed block", func(t *testing.T) {
		t.Parallel()
		expectDecodeError(t, []byte{0x12, 0x03, 1, 2, 3}, tagwire.ErrTruncated)
	})
	t.Run("nested truncation", func(t *testing.T) {
		t.Parallel()
		err := expectDecodeError(t, []byte{0x1A, 0x02, 0x08, 0x80}, tagwire.ErrBadVarint)
		testutil.ExpectEq(t, 3, err.Offset)
	})
	t.Run("nested truncation after overlong length", func(t *testing.T) {
		t.Parallel()
		err := expectDecodeError(t, []byte{0x1A, 0x82, 0x00, 0x08, 0x80}, tagwire.ErrBadVarint)
		testutil.ExpectEq(t, uint32(1), err.FieldID)
		testutil.ExpectEq(t, 4, err.Offset)
	})
}

func TestDepthLimit(t *testing.T) {
	t.Parallel()

	var msg *point
	for range 5 {
		msg = &point{Next: msg}
	}

	_, err := tagwire.Encode(&tagwire.EncodeCtx{MaxDepth: 3}, msg)
	testutil.ExpectTrue(t, errors.Is(err, tagwire.ErrDepth))

	buf, err := tagwire.Encode(nil, msg)
	testutil.AssertNoError(t, err)

	_, err = tagwire.DecodeAs[point](&tagwire.DecodeCtx{MaxDepth: 3}, buf)
	testutil.ExpectTrue(t, errors.Is(err, tagwire.ErrDepth))

	_, err = tagwire.DecodeAs[point](&tagwire.DecodeCtx{MaxDepth: 4}, buf)
	testutil.ExpectNoError(t, err)
}
