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

package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"go.tagwire.dev/tagwire/encoding/ircbor"
	"go.tagwire.dev/tagwire/internal/config"
	"go.tagwire.dev/tagwire/internal/testutil"
	"go.tagwire.dev/tagwire/ir"
)

type testGlobals struct {
	*globals
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newTestGlobals() *testGlobals {
	tg := &testGlobals{}
	cfg := config.Default()
	cfg.Color = "never"
	renderer := lipgloss.NewRenderer(&tg.stderr)
	renderer.SetColorProfile(termenv.Ascii)
	tg.globals = &globals{
		cfg:      cfg,
		log:      slog.New(slog.DiscardHandler),
		stdout:   &tg.stdout,
		stderr:   &tg.stderr,
		renderer: renderer,
	}
	return tg
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testutil.AssertNoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const personProto = `syntax = "proto2";
package demo;

message Person {
  optional int32 id = 1;
  optional string name = 2;
  optional Address home = 3;

  message Address {
    optional string city = 1;
  }
}
`

func TestDetectDialect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		explicit string
		want     ir.Dialect
	}{
		{"a.proto", "", ir.DialectProto},
		{"a.tw", "", ir.DialectProto},
		{"a.json", "", ir.DialectCBOR},
		{"a.JSONC", "", ir.DialectCBOR},
		{"a.json", "proto", ir.DialectProto},
		{"a.proto", "cbor", ir.DialectCBOR},
	}
	for _, test := range tests {
		got, err := detectDialect(test.path, test.explicit)
		testutil.AssertNoError(t, err)
		testutil.ExpectEq(t, test.want, got)
	}

	_, err := detectDialect("a.proto", "xml")
	testutil.ExpectMatch(t, `unknown dialect "xml"`, err.Error())
}

func TestSplitPath(t *testing.T) {
	t.Parallel()

	testutil.ExpectSliceEq(t, []string{"a.proto"}, splitPath("a.proto"))
	testutil.ExpectSliceEq(t, []string{"schemas", "v1", "a.proto"}, splitPath(filepath.Join("schemas", "v1", "a.proto")))
}

func TestJoinOutputPath(t *testing.T) {
	t.Parallel()

	got, err := joinOutputPath("out", []string{"demo", "demo.tagwire.go"})
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, filepath.Join("out", "demo", "demo.tagwire.go"), got)

	for _, parts := range [][]string{
		nil,
		{""},
		{"."},
		{"a", ".."},
		{"/etc"},
		{"a/b"},
		{`a\\b`},
	} {
		_, err := joinOutputPath("out", parts)
		testutil.ExpectMatch(t, `^Invalid output path`, err.Error())
	}
}

func TestDiagnostics(t *testing.T) {
	t.Parallel()

	tg := newTestGlobals()
	dir := t.TempDir()
	path := writeFile(t, dir, "m.proto", `message M {
  optional int32 a = 1;
  optional int32 b = 1;
}
message Empty {}
`)
	testutil.ExpectTrue(t, tg.loadSchema(path, "") == nil)

	lines := strings.Split(tg.stderr.String(), "\n")
	testutil.AssertEq(t, 7, len(lines))
	testutil.ExpectEq(t, path+":5:9: warning W4002: Message 'Empty' has no fields", lines[0])
	testutil.ExpectEq(t, "    message Empty {}", lines[1])
	testutil.ExpectEq(t, "            ^^^^^", lines[2])
	testutil.ExpectEq(t, path+":3:22: error E3003: Field id 1 in message 'M' is already used by field 'a'", lines[3])
	testutil.ExpectEq(t, "      optional int32 b = 1;", lines[4])
	testutil.ExpectEq(t, "                         ^", lines[5])
	testutil.ExpectEq(t, "", lines[6])
}

func TestDiagnosticsCBOR(t *testing.T) {
	t.Parallel()

	tg := newTestGlobals()
	dir := t.TempDir()
	path := writeFile(t, dir, "m.json", `{
  "namespace": "demo",
  "messages": [{"name": "M", "fields": [{"name": "a", "type": "Missing", "id": 1}]}]
}`)
	testutil.ExpectTrue(t, tg.loadSchema(path, "") == nil)
	testutil.ExpectMatch(t,
		`^`+regexp.QuoteMeta(path)+`: \$\.messages\[0\]\.fields\[0\]\.type: error E3005: `,
		tg.stderr.String(),
	)

	tg = newTestGlobals()
	path = writeFile(t, dir, "bad.json", "{\n  \"messages\": [}\n")
	testutil.ExpectTrue(t, tg.loadSchema(path, "") == nil)
	testutil.ExpectMatch(t, `^`+regexp.QuoteMeta(path)+`:2:\d+: error: `, tg.stderr.String())
}

func TestCompileCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "person.proto", personProto)

	tg := newTestGlobals()
	out := filepath.Join(dir, "person.cbor")
	cmd := &cmdCompile{g: tg.globals, outPath: out}
	testutil.AssertEq(t, 0, cmd.run(context.Background(), []string{src}))
	testutil.ExpectEq(t, "", tg.stderr.String())

	data, err := os.ReadFile(out)
	testutil.AssertNoError(t, err)
	schema, err := ircbor.Unmarshal(data)
	testutil.AssertNoError(t, err)
	testutil.ExpectTrue(t, schema.Message("demo.Person.Address") != nil)

	fp, err := ircbor.Compute(schema)
	testutil.AssertNoError(t, err)
	fpOut := filepath.Join(dir, "person.fp")
	cmd = &cmdCompile{g: tg.globals, outPath: fpOut, format: "fingerprint"}
	testutil.AssertEq(t, 0, cmd.run(context.Background(), []string{src}))
	fpData, err := os.ReadFile(fpOut)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, fp.String()+"\n", string(fpData))

	cmd = &cmdCompile{g: tg.globals, format: "xml"}
	testutil.ExpectEq(t, 1, cmd.run(context.Background(), []string{src}))
	testutil.ExpectMatch(t, `Unsupported output format "xml"`, tg.stderr.String())
}

func TestCodegenCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "person.proto", personProto)
	outDir := filepath.Join(dir, "gen")

	tg := newTestGlobals()
	cmd := &cmdCodegen{g: tg.globals, outDir: outDir, goPackage: "people"}
	testutil.AssertEq(t, 0, cmd.run(context.Background(), []string{src}))
	testutil.ExpectEq(t, "", tg.stderr.String())

	content, err := os.ReadFile(filepath.Join(outDir, "people.tagwire.go"))
	testutil.AssertNoError(t, err)
	testutil.ExpectTrue(t, strings.Contains(string(content), "\npackage people\n"))
	testutil.ExpectTrue(t, strings.Contains(string(content), "func UnmarshalPerson_Address("))

	tg = newTestGlobals()
	cmd = &cmdCodegen{g: tg.globals, stdout: true}
	testutil.AssertEq(t, 0, cmd.run(context.Background(), []string{src}))
	testutil.ExpectTrue(t, strings.HasPrefix(tg.stdout.String(), "// === demo.tagwire.go ===\n// Code generated by tagwire."))

	tg = newTestGlobals()
	cmd = &cmdCodegen{g: tg.globals}
	testutil.ExpectEq(t, 1, cmd.run(context.Background(), []string{src}))
	testutil.ExpectMatch(t, `No output directory specified`, tg.stderr.String())

	tg = newTestGlobals()
	cmd = &cmdCodegen{g: tg.globals, stdout: true, plugin: "rust"}
	testutil.ExpectEq(t, 1, cmd.run(context.Background(), []string{src}))
	testutil.ExpectMatch(t, `No plugin path set`, tg.stderr.String())
}

func TestInspectCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "person.proto", personProto)
	// id=150, name="ab", home{city="x"}
	payload := writeFile(t, dir, "person.hex", "08 96 01\n12 02 61 62\n1a 03 0a 01 78\n")

	tg := newTestGlobals()
	cmd := &cmdInspect{g: tg.globals, hexInput: true}
	testutil.AssertEq(t, 0, cmd.run(context.Background(), []string{src, "Person", payload}))
	testutil.ExpectNoDiff(t, "id: 150\nname: \"ab\"\nhome {\n\tcity: \"x\"\n}\n", tg.stdout.String())

	tg = newTestGlobals()
	cmd = &cmdInspect{g: tg.globals, fieldPath: "home.city"}
	testutil.AssertEq(t, 0, cmd.run(context.Background(), []string{src, "demo.Person"}))
	testutil.ExpectEq(t, "3.1\n", tg.stdout.String())

	tg = newTestGlobals()
	cmd = &cmdInspect{g: tg.globals}
	testutil.ExpectEq(t, 1, cmd.run(context.Background(), []string{src, "Nobody"}))
	testutil.ExpectMatch(t, `Schema has no message named "Nobody"`, tg.stderr.String())

	truncated := writeFile(t, dir, "truncated.hex", "12 05 61")
	tg = newTestGlobals()
	cmd = &cmdInspect{g: tg.globals, hexInput: true}
	testutil.ExpectEq(t, 1, cmd.run(context.Background(), []string{src, "Person", truncated}))
	testutil.ExpectMatch(t, `length exceeds remaining buffer`, tg.stderr.String())
}
