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

package demo_test

import (
	"testing"

	"go.tagwire.dev/tagwire"
	"go.tagwire.dev/tagwire/codegen/golang/internal/demo"
	"go.tagwire.dev/tagwire/internal/testutil"
)

func ptr[T any](v T) *T {
	return &v
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	status := demo.Status_ENABLED
	in := &demo.Node{
		Name:    ptr("root"),
		Delta:   ptr(int32(-40)),
		Weights: []uint32{1, 70000},
		Marks:   []int64{-1, 1 << 40},
		Status:  &status,
		Children: []*demo.Node{
			{Name: ptr("left"), Tags: []string{"a", ""}},
			{Parent: &demo.Node{Done: ptr(true)}},
		},
		Payload: []byte{0, 1, 2},
		Tags:    []string{"x"},
		Done:    ptr(false),
		Leaf:    &demo.Node_Leaf{Size: ptr(uint64(9)), Ratio: ptr(2.25)},
		History: []demo.Status{demo.Status_UNKNOWN, demo.Status_ACTIVE, 7},
	}
	buf, err := in.Marshal()
	testutil.AssertNoError(t, err)

	out, err := demo.UnmarshalNode(buf)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "root", out.GetName())
	testutil.ExpectEq(t, int32(-40), out.GetDelta())
	testutil.ExpectSliceEq(t, []uint32{1, 70000}, out.GetWeights())
	testutil.ExpectSliceEq(t, []int64{-1, 1 << 40}, out.GetMarks())
	testutil.ExpectEq(t, demo.Status_ACTIVE, out.GetStatus())
	testutil.ExpectBytesEq(t, []byte{0, 1, 2}, out.GetPayload())
	testutil.ExpectTrue(t, out.Done != nil)
	testutil.ExpectFalse(t, out.GetDone())
	testutil.ExpectEq(t, uint64(9), out.GetLeaf().GetSize())
	testutil.ExpectEq(t, 2.25, out.GetLeaf().GetRatio())
	testutil.ExpectSliceEq(t, []demo.Status{0, 1, 7}, out.GetHistory())

	children := out.GetChildren()
	if testutil.ExpectEq(t, 2, len(children)) {
		testutil.ExpectEq(t, "left", children[0].GetName())
		testutil.ExpectSliceEq(t, []string{"a", ""}, children[0].GetTags())
		testutil.ExpectTrue(t, children[1].GetParent().GetDone())
		testutil.ExpectEq(t, "anon", children[1].GetName())
	}

	again, err := out.Marshal()
	testutil.AssertNoError(t, err)
	testutil.ExpectBytesEq(t, buf, again)
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	var nilNode *demo.Node
	testutil.ExpectEq(t, "anon", nilNode.GetName())
	testutil.ExpectEq(t, 0, len(nilNode.GetChildren()))

	m := demo.NewNode()
	testutil.ExpectEq(t, "anon", m.GetName())
	testutil.ExpectEq(t, int32(-3), m.GetDelta())
	testutil.ExpectEq(t, demo.Status_ACTIVE, m.GetStatus())
	testutil.ExpectEq(t, 0.5, m.GetLeaf().GetRatio())
	testutil.ExpectEq(t, uint64(0), m.GetLeaf().GetSize())
	testutil.ExpectTrue(t, m.GetPayload() == nil)

	buf, err := m.Marshal()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 0, len(buf))

	m.Name = ptr("set")
	m.Delta = ptr(int32(0))
	testutil.ExpectEq(t, "set", m.GetName())
	testutil.ExpectEq(t, int32(0), m.GetDelta())

	m.Clear()
	testutil.ExpectTrue(t, m.Name == nil)
	testutil.ExpectEq(t, "anon", m.GetName())
	testutil.ExpectEq(t, int32(-3), m.GetDelta())
}

func TestPacked(t *testing.T) {
	t.Parallel()

	m := &demo.Node{Weights: []uint32{1, 2}}
	buf, err := m.Marshal()
	testutil.AssertNoError(t, err)
	testutil.ExpectBytesEq(t, []byte{0x1A, 0x08, 1, 0, 0, 0, 2, 0, 0, 0}, buf)

	// The same values written one field per element.
	e := tagwire.NewEncoder(nil, nil)
	e.Fixed32(3, 1)
	e.Fixed32(3, 2)
	out, err := demo.UnmarshalNode(e.Data())
	testutil.AssertNoError(t, err)
	testutil.ExpectSliceEq(t, []uint32{1, 2}, out.Weights)
}

func TestSkipUnknown(t *testing.T) {
	t.Parallel()

	e := tagwire.NewEncoder(nil, nil)
	e.String(99, "ignored")
	e.String(1, "kept")
	e.Fixed64(100, 5)
	out, err := demo.UnmarshalNode(e.Data())
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "kept", out.GetName())
}

func TestZigzag(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		delta int32
		want  []byte
	}{
		{-1, []byte{0x10, 0x01}},
		{1, []byte{0x10, 0x02}},
		{-3, []byte{0x10, 0x05}},
	} {
		buf, err := (&demo.Node{Delta: ptr(test.delta)}).Marshal()
		testutil.AssertNoError(t, err)
		testutil.ExpectBytesEq(t, test.want, buf)
	}
}

func TestDepthLimit(t *testing.T) {
	t.Parallel()

	root := &demo.Node{}
	tail := root
	for range 100 {
		tail.Parent = &demo.Node{}
		tail = tail.Parent
	}

	_, err := root.Marshal()
	testutil.AssertErrorIs(t, err, tagwire.ErrDepth)

	buf, err := tagwire.Encode(&tagwire.EncodeCtx{MaxDepth: 200}, root)
	testutil.AssertNoError(t, err)
	_, err = demo.UnmarshalNode(buf)
	testutil.AssertErrorIs(t, err, tagwire.ErrDepth)

	out, err := tagwire.DecodeAs[demo.Node](&tagwire.DecodeCtx{MaxDepth: 200}, buf)
	testutil.AssertNoError(t, err)
	testutil.ExpectTrue(t, out.GetParent() != nil)
}

func TestEnumString(t *testing.T) {
	t.Parallel()

	testutil.ExpectEq(t, "UNKNOWN", demo.Status_UNKNOWN.String())
	testutil.ExpectEq(t, "ACTIVE", demo.Status_ENABLED.String())
	testutil.ExpectEq(t, "Status(9)", demo.Status(9).String())
}

func TestWireTypeMismatch(t *testing.T) {
	t.Parallel()

	_, err := demo.UnmarshalNode([]byte{0x08, 0x01})
	testutil.AssertErrorIs(t, err, tagwire.ErrWireType)
}
