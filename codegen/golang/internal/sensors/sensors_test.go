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

package sensors_test

import (
	"os"
	"testing"

	"go.tagwire.dev/tagwire/cborschema"
	"go.tagwire.dev/tagwire/cborwire"
	"go.tagwire.dev/tagwire/codec"
	"go.tagwire.dev/tagwire/codegen/golang/internal/sensors"
	"go.tagwire.dev/tagwire/compiler"
	"go.tagwire.dev/tagwire/dynamic"
	"go.tagwire.dev/tagwire/internal/testutil"
)

func ptr[T any](v T) *T {
	return &v
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	buf, err := sensors.NewReading().Marshal()
	testutil.AssertNoError(t, err)
	testutil.ExpectBytesEq(t, []byte{0xA0}, buf)
}

func TestEmptyBytesPresent(t *testing.T) {
	t.Parallel()

	buf, err := (&sensors.Reading{Raw: []byte{}}).Marshal()
	testutil.AssertNoError(t, err)
	testutil.ExpectBytesEq(t, []byte{0xA1, 0x05, 0x40}, buf)

	out, err := sensors.UnmarshalReading(buf)
	testutil.AssertNoError(t, err)
	testutil.ExpectTrue(t, out.Raw != nil)
	testutil.ExpectEq(t, 0, len(out.GetRaw()))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	unit := sensors.Unit_KELVIN
	in := &sensors.Reading{
		Value: ptr(2.5),
		Tags:  []string{"roof", "north"},
		Unit:  &unit,
		Raw:   []byte{0xFF},
		Next: &sensors.Reading{
			Count: ptr(int64(0)),
			Next:  &sensors.Reading{Value: ptr(-1.0)},
		},
	}
	buf, err := in.Marshal()
	testutil.AssertNoError(t, err)

	out, err := sensors.UnmarshalReading(buf)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 2.5, out.GetValue())
	testutil.ExpectSliceEq(t, []string{"roof", "north"}, out.GetTags())
	testutil.ExpectEq(t, sensors.Unit_KELVIN, out.GetUnit())
	testutil.ExpectBytesEq(t, []byte{0xFF}, out.GetRaw())
	testutil.ExpectEq(t, int64(-7), out.GetCount())
	testutil.ExpectEq(t, int64(0), out.GetNext().GetCount())
	testutil.ExpectEq(t, -1.0, out.GetNext().GetNext().GetValue())
	testutil.ExpectTrue(t, out.GetNext().GetNext().GetNext() == nil)

	again, err := out.Marshal()
	testutil.AssertNoError(t, err)
	testutil.ExpectBytesEq(t, buf, again)
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	m := sensors.NewReading()
	testutil.ExpectEq(t, sensors.Unit_CELSIUS, m.GetUnit())
	testutil.ExpectEq(t, int64(-7), m.GetCount())
	testutil.ExpectEq(t, 0.0, m.GetValue())

	m.Count = ptr(int64(3))
	m.Clear()
	testutil.ExpectEq(t, int64(-7), m.GetCount())
	testutil.ExpectEq(t, "CELSIUS", m.GetUnit().String())
}

func TestUnknownKeys(t *testing.T) {
	t.Parallel()

	buf, err := cborwire.Marshal(map[uint64]any{1: 2.5, 99: "x"})
	testutil.AssertNoError(t, err)
	out, err := sensors.UnmarshalReading(buf)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 2.5, out.GetValue())
}

// The dynamic codec reads what the generated type writes.
func TestMatchesDynamic(t *testing.T) {
	t.Parallel()

	src, err := os.ReadFile("sensors.jsonc")
	testutil.AssertNoError(t, err)
	parsed, err := cborschema.Parse(src)
	testutil.AssertNoError(t, err)
	result := compiler.CompileCBOR(parsed)
	testutil.AssertEq(t, 0, len(result.Errors))
	plan := codec.Derive(result.Schema()).Plan("sensors.Reading")

	buf, err := (&sensors.Reading{Value: ptr(4.0), Raw: []byte{}}).Marshal()
	testutil.AssertNoError(t, err)
	msg, err := dynamic.DecodeCBOR(nil, plan, buf)
	testutil.AssertNoError(t, err)

	value, ok := msg.Get("value")
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq[any](t, 4.0, value)
	raw, ok := msg.Get("raw")
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, 0, len(raw.([]byte)))
	testutil.ExpectFalse(t, msg.Has("unit"))
}
