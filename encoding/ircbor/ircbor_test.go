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

package ircbor_test

import (
	"testing"

	"go.tagwire.dev/tagwire/compiler"
	"go.tagwire.dev/tagwire/encoding/ircbor"
	"go.tagwire.dev/tagwire/encoding/irtext"
	"go.tagwire.dev/tagwire/internal/testutil"
	"go.tagwire.dev/tagwire/ir"
	"go.tagwire.dev/tagwire/syntax"
)

const schemaSrc = `syntax = "proto2";
package demo;
option go_package = "demo/pb";

message Person {
  required int32 id = 1;
  optional string name = 2 [default = "anon"];
  repeated fixed32 scores = 3 [packed = true];
  optional Status status = 4 [default = ACTIVE];
  optional Address home = 5;
  optional double ratio = 6 [default = nan];

  message Address {
    optional string city = 1;
    optional Person owner = 2;
  }
}

enum Status {
  UNKNOWN = 0;
  ACTIVE = 1;
}
`

func compileSchema(t *testing.T, src string, opts ...compiler.CompileOption) *ir.Schema {
	t.Helper()
	parsed, err := syntax.Parse([]byte(src))
	testutil.AssertNoError(t, err)
	result := compiler.Compile(parsed, opts...)
	for _, err := range result.Errors {
		testutil.ExpectNoError(t, err)
	}
	if t.Failed() {
		t.FailNow()
	}
	return result.Schema()
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	schema := compileSchema(t, schemaSrc, compiler.WithSourcePath("demo.proto"))
	data, err := ircbor.Marshal(schema)
	testutil.AssertNoError(t, err)

	decoded, err := ircbor.Unmarshal(data)
	testutil.AssertNoError(t, err)
	testutil.ExpectNoDiff(t, irtext.Encode(schema), irtext.Encode(decoded))
	testutil.ExpectEq(t, "demo.proto", decoded.SourcePath)

	// Unmarshal links the decoded schema.
	owner := decoded.Message("demo.Person.Address").Field("owner")
	testutil.ExpectTrue(t, owner.Message == decoded.Message("demo.Person"))
	status := decoded.Message("demo.Person").Field("status")
	testutil.ExpectTrue(t, status.Enum == decoded.Enum("demo.Status"))

	again, err := ircbor.Marshal(decoded)
	testutil.AssertNoError(t, err)
	testutil.ExpectBytesEq(t, data, again)
}

func TestUnmarshalErrors(t *testing.T) {
	t.Parallel()

	_, err := ircbor.Unmarshal([]byte{0xff})
	testutil.AssertError(t, err)

	// A field naming a message the schema does not contain.
	broken := &ir.Schema{
		Messages: []*ir.Message{{
			Name:     "A",
			FullName: "A",
			Fields:   []*ir.Field{{ID: 1, Name: "b", Kind: ir.KindMessage, TypeName: "B"}},
		}},
	}
	data, err := ircbor.Marshal(broken)
	testutil.AssertNoError(t, err)
	_, err = ircbor.Unmarshal(data)
	testutil.ExpectMatch(t, `unknown message "B"`, err.Error())
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := compileSchema(t, schemaSrc, compiler.WithSourcePath("a.proto"))
	b := compileSchema(t, schemaSrc, compiler.WithSourcePath("b/b.proto"))

	fpA, err := ircbor.Compute(a)
	testutil.AssertNoError(t, err)
	fpB, err := ircbor.Compute(b)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, fpA, fpB)
	testutil.ExpectEq(t, 64, len(fpA.String()))

	// Source path is left untouched.
	testutil.ExpectEq(t, "a.proto", a.SourcePath)

	changed := compileSchema(t, schemaSrc+"message Extra {}\n")
	fpC, err := ircbor.Compute(changed)
	testutil.AssertNoError(t, err)
	testutil.ExpectTrue(t, fpA != fpC)
}

func TestCodegenRequest(t *testing.T) {
	t.Parallel()

	schema := compileSchema(t, schemaSrc)
	req, err := ircbor.NewCodegenRequest(schema, "pb")
	testutil.AssertNoError(t, err)
	fp, err := ircbor.Compute(schema)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, fp.String(), req.Fingerprint)

	data, err := ircbor.MarshalRequest(req)
	testutil.AssertNoError(t, err)
	decoded, err := ircbor.UnmarshalRequest(data)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "pb", decoded.Package)
	testutil.ExpectEq(t, req.Fingerprint, decoded.Fingerprint)
	testutil.ExpectTrue(t, decoded.Schema.Message("demo.Person") != nil)

	_, err = ircbor.UnmarshalRequest([]byte{0xa0})
	testutil.ExpectMatch(t, `request has no schema`, err.Error())
}

func TestCodegenResponse(t *testing.T) {
	t.Parallel()

	resp := &ircbor.CodegenResponse{
		OutputFiles: []*ircbor.OutputFile{
			{Path: []string{"demo", "demo.tagwire.go"}, Content: []byte("package demo\n")},
		},
	}
	data, err := ircbor.MarshalResponse(resp)
	testutil.AssertNoError(t, err)
	decoded, err := ircbor.UnmarshalResponse(data)
	testutil.AssertNoError(t, err)
	testutil.AssertEq(t, 1, len(decoded.OutputFiles))
	testutil.ExpectSliceEq(t, resp.OutputFiles[0].Path, decoded.OutputFiles[0].Path)
	testutil.ExpectBytesEq(t, resp.OutputFiles[0].Content, decoded.OutputFiles[0].Content)
	testutil.ExpectEq(t, "", decoded.Error)
}
