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

package codec_test

import (
	"testing"

	"go.tagwire.dev/tagwire"
	"go.tagwire.dev/tagwire/codec"
	"go.tagwire.dev/tagwire/internal/testutil"
	"go.tagwire.dev/tagwire/ir"
)

func personSchema(t *testing.T) *ir.Schema {
	t.Helper()
	address := &ir.Message{
		Name:     "Address",
		FullName: "demo.Person.Address",
		Fields: []*ir.Field{
			{ID: 1, Name: "city", Kind: ir.KindString},
			{ID: 2, Name: "owner", Kind: ir.KindMessage, TypeName: "demo.Person"},
		},
	}
	status := &ir.Enum{
		Name:     "Status",
		FullName: "demo.Status",
		Values:   []*ir.EnumValue{{Name: "UNKNOWN"}, {Name: "ACTIVE", Number: 1}},
	}
	person := &ir.Message{
		Name:     "Person",
		FullName: "demo.Person",
		Fields: []*ir.Field{
			{ID: 1, Name: "id", Kind: ir.KindInt32, Label: ir.LabelRequired},
			{ID: 2, Name: "delta", Kind: ir.KindSint64, Default: &ir.Default{Raw: "-2", Int: -2}},
			{ID: 3, Name: "scores", Kind: ir.KindFixed32, Label: ir.LabelRepeated, Packed: true},
			{ID: 4, Name: "ratios", Kind: ir.KindDouble, Label: ir.LabelRepeated},
			{ID: 5, Name: "avatar", Kind: ir.KindBytes, View: true},
			{ID: 6, Name: "home", Kind: ir.KindMessage, TypeName: "demo.Person.Address"},
			{ID: 7, Name: "status", Kind: ir.KindEnum, TypeName: "demo.Status", Default: &ir.Default{Raw: "ACTIVE", Enum: "ACTIVE", Uint: 1}},
			{ID: 8, Name: "names", Kind: ir.KindString, Label: ir.LabelRepeated},
		},
		Messages: []*ir.Message{address},
	}
	schema := &ir.Schema{
		Package:  "demo",
		Messages: []*ir.Message{person},
		Enums:    []*ir.Enum{status},
	}
	testutil.AssertNoError(t, schema.Link())
	return schema
}

func TestWireEncoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind     ir.Kind
		wire     tagwire.WireType
		encoding codec.Encoding
	}{
		{ir.KindInt32, tagwire.WireVarint, codec.EncodingPlain},
		{ir.KindUint64, tagwire.WireVarint, codec.EncodingPlain},
		{ir.KindBool, tagwire.WireVarint, codec.EncodingPlain},
		{ir.KindEnum, tagwire.WireVarint, codec.EncodingPlain},
		{ir.KindSint32, tagwire.WireVarint, codec.EncodingZigzag},
		{ir.KindSint64, tagwire.WireVarint, codec.EncodingZigzag},
		{ir.KindFixed32, tagwire.WireFixed32, codec.EncodingFixed},
		{ir.KindSfixed32, tagwire.WireFixed32, codec.EncodingFixed},
		{ir.KindFloat, tagwire.WireFixed32, codec.EncodingFixed},
		{ir.KindFixed64, tagwire.WireFixed64, codec.EncodingFixed},
		{ir.KindDouble, tagwire.WireFixed64, codec.EncodingFixed},
		{ir.KindString, tagwire.WireBytes, codec.EncodingPlain},
		{ir.KindBytes, tagwire.WireBytes, codec.EncodingPlain},
		{ir.KindMessage, tagwire.WireBytes, codec.EncodingPlain},
	}
	for _, test := range tests {
		t.Run(test.kind.String(), func(t *testing.T) {
			wire, encoding := codec.WireEncoding(test.kind)
			testutil.ExpectEq(t, test.wire, wire)
			testutil.ExpectEq(t, test.encoding, encoding)
		})
	}
}

func TestDerive(t *testing.T) {
	t.Parallel()

	rules := codec.Derive(personSchema(t))
	plans := rules.Plans()
	testutil.AssertEq(t, 2, len(plans))
	testutil.ExpectEq(t, "demo.Person", plans[0].Message.FullName)
	testutil.ExpectEq(t, "demo.Person.Address", plans[1].Message.FullName)

	person := rules.Plan("demo.Person")
	var got []string
	for _, rule := range person.Rules {
		got = append(got, rule.String())
	}
	testutil.ExpectSliceEq(t, []string{
		"1 single VARINT PLAIN",
		"2 single VARINT ZIGZAG default=-2",
		"3 sequence FIXED32 FIXED packed",
		"4 sequence FIXED64 FIXED",
		"5 single LEN PLAIN view",
		"6 single LEN PLAIN",
		"7 single VARINT PLAIN default=ACTIVE",
		"8 sequence LEN PLAIN",
	}, got)

	delta, _ := person.Lookup(2)
	testutil.ExpectEq(t, any(int64(-2)), delta.Default)

	status, _ := person.Field("status")
	testutil.ExpectEq(t, any(uint32(1)), status.Default)
	testutil.ExpectTrue(t, status.Enum != nil)

	home, _ := person.Lookup(6)
	testutil.ExpectTrue(t, home.Message == rules.Plan("demo.Person.Address"))

	owner, _ := rules.Plan("demo.Person.Address").Field("owner")
	testutil.ExpectTrue(t, owner.Message == person)

	_, ok := person.Lookup(99)
	testutil.ExpectFalse(t, ok)
}

func TestRuleWireTypes(t *testing.T) {
	t.Parallel()

	person := codec.Derive(personSchema(t)).Plan("demo.Person")

	scores, _ := person.Field("scores")
	testutil.ExpectEq(t, tagwire.WireBytes, scores.FieldWireType())
	testutil.ExpectTrue(t, scores.Accepts(tagwire.WireFixed32))
	testutil.ExpectTrue(t, scores.Accepts(tagwire.WireBytes))
	testutil.ExpectFalse(t, scores.Accepts(tagwire.WireVarint))

	// Unpacked repeated scalars still accept a packed block.
	ratios, _ := person.Field("ratios")
	testutil.ExpectEq(t, tagwire.WireFixed64, ratios.FieldWireType())
	testutil.ExpectTrue(t, ratios.Accepts(tagwire.WireBytes))

	id, _ := person.Field("id")
	testutil.ExpectTrue(t, id.Accepts(tagwire.WireVarint))
	testutil.ExpectFalse(t, id.Accepts(tagwire.WireBytes))

	names, _ := person.Field("names")
	testutil.ExpectTrue(t, names.Accepts(tagwire.WireBytes))
	testutil.ExpectFalse(t, names.Accepts(tagwire.WireVarint))
}

func TestPlanPath(t *testing.T) {
	t.Parallel()

	person := codec.Derive(personSchema(t)).Plan("demo.Person")

	ids, err := person.Path("home.owner.home.city")
	testutil.AssertNoError(t, err)
	testutil.ExpectSliceEq(t, []uint32{6, 2, 6, 1}, ids)

	ids, err = person.Path("id")
	testutil.AssertNoError(t, err)
	testutil.ExpectSliceEq(t, []uint32{1}, ids)

	_, err = person.Path("")
	testutil.ExpectMatch(t, `empty field path`, err.Error())

	_, err = person.Path("home.zip")
	testutil.ExpectMatch(t, `message demo\.Person\.Address has no field "zip"`, err.Error())

	_, err = person.Path("id.value")
	testutil.ExpectMatch(t, `"id" is not a message field`, err.Error())
}
