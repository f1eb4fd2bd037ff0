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

package cborschema_test

import (
	"errors"
	"testing"

	"go.tagwire.dev/tagwire/cborschema"
	"go.tagwire.dev/tagwire/internal/testutil"
)

func TestParse(t *testing.T) {
	t.Parallel()

	schema, err := cborschema.Parse([]byte(`{
		/* Sensor readings. */
		"syntax": "cbor1",
		"package": "demo",
		"options": [{"name": "go_package", "value": "example.com/demo"}],
		"messages": [
			{
				"name": "Reading",
				"fields": [
					{"name": "sensor", "type": "string", "id": 1, "required": true},
					{"name": "samples", "type": "double", "id": "2", "repeated": true, "packed": true},
					{"name": "unit", "type": "Unit", "id": 3, "default": "KELVIN"}, // trailing
					{"name": "raw", "type": "bytes", "id": 4, "view": true, "comment": "payload"},
				],
				"messages": [{"name": "Empty"}],
			},
		],
		"enums": [
			{"name": "Unit", "values": [{"name": "CELSIUS", "value": 0}, {"name": "KELVIN", "value": 1}]},
		],
	}`))
	testutil.AssertNoError(t, err)

	testutil.ExpectEq(t, "cbor1", schema.Syntax)
	testutil.ExpectEq(t, "demo", schema.Namespace)
	testutil.AssertEq(t, 1, len(schema.Options))
	testutil.ExpectEq(t, "go_package", schema.Options[0].Name)
	testutil.ExpectEq(t, "example.com/demo", schema.Options[0].Value.Text())
	testutil.ExpectEq(t, "$.options[0].value", schema.Options[0].Value.Path)

	testutil.AssertEq(t, 1, len(schema.Messages))
	msg := schema.Messages[0]
	testutil.ExpectEq(t, "$.messages[0]", msg.Path)
	testutil.AssertEq(t, 4, len(msg.Fields))

	sensor := msg.Fields[0]
	testutil.ExpectTrue(t, sensor.Required)
	testutil.ExpectEq(t, cborschema.ValueNumber, sensor.ID.Kind)
	testutil.ExpectEq(t, "1", sensor.ID.Raw)

	samples := msg.Fields[1]
	testutil.ExpectEq(t, cborschema.ValueNumber, samples.ID.Kind)
	testutil.ExpectEq(t, "2", samples.ID.Raw)
	testutil.ExpectEq(t, "$.messages[0].fields[1].id", samples.ID.Path)
	testutil.ExpectTrue(t, samples.Repeated)
	if testutil.ExpectTrue(t, samples.Packed != nil) {
		testutil.ExpectEq(t, cborschema.ValueBool, samples.Packed.Kind)
		testutil.ExpectEq(t, "true", samples.Packed.Raw)
	}

	unit := msg.Fields[2]
	if testutil.ExpectTrue(t, unit.Default != nil) {
		testutil.ExpectEq(t, cborschema.ValueString, unit.Default.Kind)
		testutil.ExpectEq(t, `"KELVIN"`, unit.Default.Raw)
		testutil.ExpectEq(t, "KELVIN", unit.Default.Text())
	}

	raw := msg.Fields[3]
	testutil.ExpectTrue(t, raw.View)
	testutil.ExpectEq(t, "payload", raw.Comment)
	testutil.ExpectEq(t, "$.messages[0].fields[3]", raw.Path)

	testutil.AssertEq(t, 1, len(msg.Messages))
	testutil.ExpectEq(t, "$.messages[0].messages[0]", msg.Messages[0].Path)

	testutil.AssertEq(t, 1, len(schema.Enums))
	enum := schema.Enums[0]
	testutil.AssertEq(t, 2, len(enum.Values))
	testutil.ExpectEq(t, "KELVIN", enum.Values[1].Name)
	testutil.ExpectEq(t, "1", enum.Values[1].Value.Raw)
	testutil.ExpectEq(t, "$.enums[0].values[1]", enum.Values[1].Path)
}

func TestParseSingleMessage(t *testing.T) {
	t.Parallel()

	schema, err := cborschema.Parse([]byte(`{
		"namespace": "a.b",
		"package": "ignored",
		"name": "Top",
		"fields": [{"name": "x", "type": "int32", "id": 1}],
		"messages": [{"name": "Second"}],
	}`))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "a.b", schema.Namespace)
	testutil.AssertEq(t, 2, len(schema.Messages))
	testutil.ExpectEq(t, "Top", schema.Messages[0].Name)
	testutil.ExpectEq(t, "$", schema.Messages[0].Path)
	testutil.ExpectEq(t, "$.fields[0]", schema.Messages[0].Fields[0].Path)
	testutil.ExpectEq(t, "Second", schema.Messages[1].Name)
	testutil.ExpectEq(t, "$.messages[0]", schema.Messages[1].Path)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		path    string
		message string
	}{
		{
			name:    "unknown_key",
			src:     `{"messages": [{"name": "M", "feilds": []}]}`,
			path:    "$.messages[0]",
			message: `unknown field "feilds"`,
		},
		{
			name:    "wrong_type",
			src:     `{"namespace": 5}`,
			path:    "$.namespace",
			message: "expected string",
		},
		{
			name:    "message_without_name",
			src:     `{"messages": [{"fields": []}]}`,
			path:    "$.messages[0]",
			message: `message has no "name"`,
		},
		{
			name:    "field_without_type",
			src:     `{"name": "M", "fields": [{"name": "x", "id": 1}]}`,
			path:    "$.fields[0]",
			message: `field has no "type"`,
		},
		{
			name:    "field_without_id",
			src:     `{"name": "M", "fields": [{"name": "x", "type": "int32"}]}`,
			path:    "$.fields[0]",
			message: `field has no "id"`,
		},
		{
			name:    "field_id_not_decimal",
			src:     `{"name": "M", "fields": [{"name": "x", "type": "int32", "id": "0x10"}]}`,
			path:    "$.fields[0].id",
			message: `field id "0x10" is not a decimal integer`,
		},
		{
			name:    "field_id_bool",
			src:     `{"name": "M", "fields": [{"name": "x", "type": "int32", "id": true}]}`,
			path:    "$.fields[0].id",
			message: "field id must be a number",
		},
		{
			name:    "default_object",
			src:     `{"name": "M", "fields": [{"name": "x", "type": "int32", "id": 1, "default": {}}]}`,
			path:    "$.fields[0].default",
			message: "expected a number, string or boolean",
		},
		{
			name:    "enum_without_values",
			src:     `{"enums": [{"name": "E", "values": []}]}`,
			path:    "$.enums[0]",
			message: "enum has no values",
		},
		{
			name:    "enum_value_string",
			src:     `{"enums": [{"name": "E", "values": [{"name": "A", "value": "0"}]}]}`,
			path:    "$.enums[0].values[0].value",
			message: "enum value must be a number",
		},
		{
			name:    "option_without_value",
			src:     `{"options": [{"name": "x"}]}`,
			path:    "$.options[0]",
			message: `missing "value"`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := cborschema.Parse([]byte(test.src))
			var schemaErr *cborschema.Error
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected *cborschema.Error, got %v", err)
			}
			testutil.ExpectEq(t, test.path, schemaErr.Path)
			testutil.ExpectMatch(t, test.message, schemaErr.Message)
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := cborschema.Parse([]byte(`{"name": "M",, }`))
	var schemaErr *cborschema.Error
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *cborschema.Error, got %v", err)
	}
	testutil.ExpectEq(t, "", schemaErr.Path)
	testutil.ExpectTrue(t, schemaErr.Offset > 0)
	testutil.ExpectMatch(t, `^offset \d+: `, schemaErr.Error())
}
