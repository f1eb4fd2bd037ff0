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

package compiler_test

import (
	"bytes"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"math"
	"testing"

	"go.tagwire.dev/tagwire/cborschema"
	"go.tagwire.dev/tagwire/compiler"
	"go.tagwire.dev/tagwire/encoding/irtext"
	"go.tagwire.dev/tagwire/internal/testutil"
	"go.tagwire.dev/tagwire/ir"
	"go.tagwire.dev/tagwire/syntax"
)

var (
	testdata       fs.FS
	schemaErrors   map[string]*testutil.Diagnostic
	schemaWarnings map[string]*testutil.Diagnostic
)

func init() {
	var err error
	testdata, err = testutil.TestdataFS()
	if err != nil {
		panic(err)
	}
	schemaErrors, err = testutil.LoadSchemaErrors(testdata)
	if err != nil {
		panic(err)
	}
	schemaWarnings, err = testutil.LoadSchemaWarnings(testdata)
	if err != nil {
		panic(err)
	}
}

func specTest(t *testing.T, testName string) {
	t.Parallel()

	expectOK := fmt.Sprintf("schema/%s/expect_ok.txt", testName)
	expectErr := fmt.Sprintf("schema/%s/expect_err.json", testName)

	if _, err := fs.Stat(testdata, expectErr); err == nil {
		testExpectErr(t, testName, expectErr)
	} else {
		testExpectOK(t, testName, expectOK)
	}
}

func testExpectOK(t *testing.T, testName string, expectOK string) {
	expectText, err := fs.ReadFile(testdata, expectOK)
	testutil.AssertNoError(t, err)

	var expectWarnings []*testutil.Expected
	expectWarnPath := fmt.Sprintf("schema/%s/expect_warn.json", testName)
	if _, err := fs.Stat(testdata, expectWarnPath); err == nil {
		expectWarnings = testutil.LoadExpectedWarnings(
			t, schemaWarnings, testdata, expectWarnPath,
		)
	}

	result := compileTestInput(t, testName)
	if len(result.Errors) > 0 {
		for _, err := range result.Errors {
			testutil.ExpectNoError(t, err)
		}
		t.FailNow()
	}

	for warn, expectWarn := range zip(result.Warnings, expectWarnings) {
		if warn == nil {
			t.Errorf("expected schema warning %q (%s)", expectWarn.Key, expectWarn.Label())
			continue
		}
		if expectWarn == nil {
			t.Errorf("unexpected schema warning %q (W%d)", warn.Message(), warn.Code())
			continue
		}
		testutil.ExpectDiagnostic(t, expectWarn, warn)
	}

	schema := result.Schema()
	if schema == nil {
		t.Fatal("result.Schema() == nil")
	}
	testutil.ExpectEq(t, "schema/"+testName, schema.SourcePath)

	gotText := irtext.Encode(schema)
	testutil.ExpectNoDiff(t, string(expectText), gotText)
}

func testExpectErr(t *testing.T, testName string, expectErrPath string) {
	expectErrors := testutil.LoadExpectedErrors(
		t, schemaErrors, testdata, expectErrPath,
	)
	if len(expectErrors) == 0 {
		t.Fatalf("len(expectErrors) == 0")
	}

	result := compileTestInput(t, testName)
	if result.Schema() != nil {
		t.Errorf("compile with errors produced a schema")
	}
	for err, expectErr := range zip(result.Errors, expectErrors) {
		if err == nil {
			t.Errorf("expected schema error %q (%s)", expectErr.Key, expectErr.Label())
			continue
		}
		if expectErr == nil {
			t.Errorf("unexpected schema error %q (E%d)", err.Message(), err.Code())
			continue
		}
		testutil.ExpectDiagnostic(t, expectErr, err)
	}
}

// Inputs are NAME.proto, or NAME.jsonc for the CBOR dialect.
func compileTestInput(t *testing.T, testName string) compiler.CompileResult {
	sourcePath := compiler.WithSourcePath("schema/" + testName)

	jsoncPath := fmt.Sprintf("schema/%s/%s.jsonc", testName, testName)
	if src, err := fs.ReadFile(testdata, jsoncPath); err == nil {
		parsedSchema, err := cborschema.Parse(src)
		testutil.AssertNoError(t, err)
		return compiler.CompileCBOR(parsedSchema, sourcePath)
	}

	srcPath := fmt.Sprintf("schema/%s/%s.proto", testName, testName)
	src, err := fs.ReadFile(testdata, srcPath)
	testutil.AssertNoError(t, err)

	parsedSchema, err := syntax.Parse(src)
	testutil.AssertNoError(t, err)
	return compiler.Compile(parsedSchema, sourcePath)
}

func TestSchema(t *testing.T) {
	t.Parallel()

	testDirs, err := fs.ReadDir(testdata, "schema")
	testutil.AssertNoError(t, err)

	for _, testDir := range testDirs {
		if testDir.IsDir() {
			testName := testDir.Name()
			t.Run(testName, func(t *testing.T) {
				specTest(t, testName)
			})
		}
	}
}

func compileCBOR(t *testing.T, src string) compiler.CompileResult {
	t.Helper()
	parsed, err := cborschema.Parse([]byte(src))
	testutil.AssertNoError(t, err)
	return compiler.CompileCBOR(parsed)
}

func TestCompileCBOR(t *testing.T) {
	t.Parallel()

	result := compileCBOR(t, `{
		// Single-message form.
		"syntax": "cbor1",
		"namespace": "demo",
		"name": "Reading",
		"fields": [
			{"name": "sensor", "type": "string", "id": 1, "required": true},
			{"name": "samples", "type": "double", "id": "2", "repeated": true, "packed": true},
			{"name": "unit", "type": "Unit", "id": 3, "default": "CELSIUS"},
			{"name": "blob", "type": "bytes", "id": 4, "view": true},
		],
		"enums": [
			{"name": "Unit", "values": [
				{"name": "CELSIUS", "value": 0},
				{"name": "KELVIN", "value": 1},
			]},
		],
	}`)
	for _, err := range result.Errors {
		testutil.ExpectNoError(t, err)
	}
	testutil.ExpectEq(t, 0, len(result.Warnings))

	schema := result.Schema()
	if schema == nil {
		t.FailNow()
	}
	testutil.ExpectNoDiff(t, `dialect cbor
syntax "cbor1"
package demo
message demo.Reading {
	1 required string sensor
	2 repeated double samples [packed]
	3 optional enum demo.Unit unit [default = CELSIUS]
	4 optional bytes blob [view] // "@view"
}
enum demo.Unit {
	CELSIUS = 0
	KELVIN = 1
}
`, irtext.Encode(schema))

	unit := schema.Message("demo.Reading").Field("unit")
	testutil.ExpectTrue(t, unit.Enum == schema.Enum("demo.Unit"))
	testutil.ExpectEq(t, uint64(0), unit.Default.Uint)
}

func TestCompileCBORErrorPaths(t *testing.T) {
	t.Parallel()

	result := compileCBOR(t, `{
		"namespace": "demo..x",
		"messages": [
			{"name": "A", "fields": [
				{"name": "x", "type": "Nope", "id": 1},
				{"name": "y", "type": "int32", "id": 1},
				{"name": "bad-name", "type": "int32", "id": 2},
				{"name": "z", "type": "int32", "id": 3, "packed": "yes"},
			]},
		],
	}`)
	testutil.ExpectTrue(t, result.Schema() == nil)

	type diag struct {
		code uint32
		path string
	}
	var got []diag
	for _, err := range result.Errors {
		got = append(got, diag{err.Code(), err.Path()})
	}
	testutil.ExpectSliceEq(t, []diag{
		{3000, "$.namespace"},
		{3005, "$.messages[0].fields[0].type"},
		{3003, "$.messages[0].fields[1].id"},
		{3015, "$.messages[0].fields[2].name"},
		{3012, "$.messages[0].fields[3].packed"},
	}, got)
}

func TestCompileCBORWarnings(t *testing.T) {
	t.Parallel()

	result := compileCBOR(t, `{
		"messages": [
			{"name": "Empty"},
			{"name": "M", "fields": [
				{"name": "n", "type": "int64", "id": 1, "view": true},
			]},
		],
	}`)
	testutil.AssertEq(t, 0, len(result.Errors))

	var got []string
	for _, warn := range result.Warnings {
		got = append(got, fmt.Sprintf("W%d %s", warn.Code(), warn.Path()))
	}
	testutil.ExpectSliceEq(t, []string{
		"W4002 $.messages[0].name",
		"W4004 $.messages[1].fields[0]",
	}, got)
}

func TestCompileLogger(t *testing.T) {
	t.Parallel()

	parsed, err := syntax.Parse([]byte("package p;\nmessage M { optional int32 x = 1; }\n"))
	testutil.AssertNoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	result := compiler.Compile(parsed, compiler.WithLogger(logger))
	testutil.AssertEq(t, 0, len(result.Errors))
	testutil.ExpectMatch(t, `msg="registered declarations" dialect=proto package=p messages=1`, buf.String())
	testutil.ExpectMatch(t, `msg="built schema"`, buf.String())
}

func TestCompiledFieldDefaults(t *testing.T) {
	t.Parallel()

	parsed, err := syntax.Parse([]byte(`message M {
  optional sfixed64 a = 1 [default = -9223372036854775808];
  optional double b = 2 [default = nan];
  optional bytes c = 3 [default = "\x00\xff"];
  optional float d = 4 [default = -2];
}
`))
	testutil.AssertNoError(t, err)
	result := compiler.Compile(parsed)
	testutil.AssertEq(t, 0, len(result.Errors))

	msg := result.Schema().Message("M")
	testutil.ExpectEq(t, any(int64(-9223372036854775808)), msg.Field("a").Default.Value(ir.KindSfixed64))
	testutil.ExpectTrue(t, math.IsNaN(msg.Field("b").Default.Value(ir.KindDouble).(float64)))
	testutil.ExpectBytesEq(t, []byte{0x00, 0xFF}, msg.Field("c").Default.Value(ir.KindBytes).([]byte))
	testutil.ExpectEq(t, any(float32(-2)), msg.Field("d").Default.Value(ir.KindFloat))
}

func zip[X any, Y any](xs []*X, ys []*Y) iter.Seq2[*X, *Y] {
	maxLen := max(len(xs), len(ys))
	return func(yield func(x *X, y *Y) bool) {
		for ii := 0; ii < maxLen; ii++ {
			var ok bool
			if ii >= len(xs) {
				ok = yield(nil, ys[ii])
			} else if ii >= len(ys) {
				ok = yield(xs[ii], nil)
			} else {
				ok = yield(xs[ii], ys[ii])
			}
			if !ok {
				return
			}
		}
	}
}
