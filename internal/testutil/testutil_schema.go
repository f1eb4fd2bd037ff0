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

package testutil

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"testing"

	"go.tagwire.dev/tagwire/syntax"
)

// Diagnostic is one entry of a compiler diagnostic catalog. Errors use codes
// 3000-3999 (E3xxx), warnings 4000-4999 (W4xxx).
type Diagnostic struct {
	Key     string
	Code    uint32
	Message string
	Pattern *regexp.Regexp
}

func (d *Diagnostic) Label() string {
	if d.Code >= 4000 {
		return fmt.Sprintf("W%d", d.Code)
	}
	return fmt.Sprintf("E%d", d.Code)
}

type diagnosticKind struct {
	name    string
	catalog string
	minCode uint32
	maxCode uint32
}

var (
	errorKind   = diagnosticKind{"error", "diagnostics/schema_errors.json", 3000, 3999}
	warningKind = diagnosticKind{"warning", "diagnostics/schema_warnings.json", 4000, 4999}
)

func LoadSchemaErrors(testdata fs.FS) (map[string]*Diagnostic, error) {
	return loadCatalog(testdata, errorKind)
}

func LoadSchemaWarnings(testdata fs.FS) (map[string]*Diagnostic, error) {
	return loadCatalog(testdata, warningKind)
}

func loadCatalog(testdata fs.FS, kind diagnosticKind) (map[string]*Diagnostic, error) {
	type raw struct {
		Code    uint32 `json:"code"`
		Message string `json:"message"`
		Pattern string `json:"message_pattern"`
	}

	jsonData, err := fs.ReadFile(testdata, kind.catalog)
	if err != nil {
		return nil, err
	}

	var rawDiags map[string]raw
	decoder := json.NewDecoder(bytes.NewReader(jsonData))
	decoder.UseNumber()
	if err := decoder.Decode(&rawDiags); err != nil {
		return nil, err
	}

	out := make(map[string]*Diagnostic, len(rawDiags))
	codes := make(map[uint32]string, len(rawDiags))
	for key, raw := range rawDiags {
		if key[0] == '_' {
			continue
		}
		if raw.Code < kind.minCode || raw.Code > kind.maxCode {
			return nil, fmt.Errorf(
				"schema %s %q: code %d is outside [%d, %d]",
				kind.name, key, raw.Code, kind.minCode, kind.maxCode,
			)
		}
		if prev, conflict := codes[raw.Code]; conflict {
			return nil, fmt.Errorf("schema %ss %q and %q share code %d", kind.name, prev, key, raw.Code)
		}
		codes[raw.Code] = key

		var pattern *regexp.Regexp
		if raw.Pattern != "" {
			pattern, err = regexp.Compile(raw.Pattern)
			if err != nil {
				return nil, fmt.Errorf("schema %s %q: %w", kind.name, key, err)
			}
		}
		out[key] = &Diagnostic{
			Key:     key,
			Code:    raw.Code,
			Message: raw.Message,
			Pattern: pattern,
		}
	}

	return out, nil
}

// Expected is a diagnostic a test input should produce. Inputs in the
// proto dialect locate it by Span; inputs in the CBOR dialect by the JSON
// Path of the offending value.
type Expected struct {
	Diagnostic
	Span syntax.Span
	Path string
}

func LoadExpectedErrors(
	t *testing.T,
	catalog map[string]*Diagnostic,
	testdata fs.FS,
	jsonPath string,
) []*Expected {
	t.Helper()
	return loadExpected(t, errorKind, catalog, testdata, jsonPath)
}

func LoadExpectedWarnings(
	t *testing.T,
	catalog map[string]*Diagnostic,
	testdata fs.FS,
	jsonPath string,
) []*Expected {
	t.Helper()
	return loadExpected(t, warningKind, catalog, testdata, jsonPath)
}

func loadExpected(
	t *testing.T,
	kind diagnosticKind,
	catalog map[string]*Diagnostic,
	testdata fs.FS,
	jsonPath string,
) []*Expected {
	t.Helper()

	jsonData, err := fs.ReadFile(testdata, jsonPath)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string][]map[string]json.RawMessage
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		t.Fatalf("%s: %v", jsonPath, err)
	}

	var out []*Expected
	byPath := false
	for ii, entry := range raw[kind.name+"s"] {
		var key string
		if err := json.Unmarshal(entry[kind.name], &key); err != nil {
			t.Fatalf("%s: %ss[%d]: %v", jsonPath, kind.name, ii, err)
		}
		diag, ok := catalog[key]
		if !ok {
			t.Fatalf("%s: unknown schema %s name %q", jsonPath, kind.name, key)
		}
		expect := &Expected{Diagnostic: *diag}
		if rawPath, ok := entry[kind.name+"_path"]; ok {
			if err := json.Unmarshal(rawPath, &expect.Path); err != nil {
				t.Fatalf("%s: %ss[%d]: %v", jsonPath, kind.name, ii, err)
			}
			byPath = true
		} else {
			var span struct {
				Start uint32 `json:"start"`
				Len   uint32 `json:"len"`
			}
			if err := json.Unmarshal(entry[kind.name+"_span"], &span); err != nil {
				t.Fatalf("%s: %ss[%d]: %v", jsonPath, kind.name, ii, err)
			}
			expect.Span = syntax.NewSpan(span.Start, span.Len)
		}
		out = append(out, expect)
	}

	// JSON paths carry no order, so path-located diagnostics are listed in
	// the order the compiler reports them.
	if !byPath {
		slices.SortFunc(out, func(a, b *Expected) int {
			if x := cmp.Compare(a.Span.Start(), b.Span.Start()); x != 0 {
				return x
			}
			return cmp.Compare(a.Code, b.Code)
		})
	}
	return out
}

// Reported is implemented by compiler errors and warnings.
type Reported interface {
	Code() uint32
	Message() string
	Span() syntax.Span
	Path() string
}

// ExpectDiagnostic compares a reported diagnostic against its expectation.
func ExpectDiagnostic(t *testing.T, want *Expected, got Reported) {
	t.Helper()
	if !ExpectEq(t, want.Code, got.Code()) {
		t.Logf("expected %s %s, got: %s", want.Label(), want.Key, got.Message())
	}
	if want.Pattern != nil {
		ExpectMatch(t, want.Pattern, got.Message())
	} else if want.Message != "" {
		ExpectEq(t, want.Message, got.Message())
	}
	if want.Path != "" {
		ExpectEq(t, want.Path, got.Path())
	} else {
		ExpectEq(t, want.Span, got.Span())
	}
}
