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
	"embed"
	"encoding/json"
	"io/fs"
	"testing"

	"go.tagwire.dev/tagwire/syntax"
)

//go:embed testdata
var testdataFS embed.FS

func TestdataFS() (fs.FS, error) {
	return fs.Sub(testdataFS, "testdata")
}

// SpanOrDie decodes a {"start": N, "len": N} object as loaded by
// encoding/json with UseNumber.
func SpanOrDie(t *testing.T, raw any) syntax.Span {
	t.Helper()
	obj, ok := raw.(map[string]any)
	if !ok {
		t.Fatalf("expected span object, got %#v", raw)
	}
	field := func(key string) uint32 {
		num, ok := obj[key].(json.Number)
		if !ok {
			t.Fatalf("span key %q: expected number, got %#v", key, obj[key])
		}
		v, err := num.Int64()
		if err != nil {
			t.Fatal(err)
		}
		return uint32(v)
	}
	return syntax.NewSpan(field("start"), field("len"))
}
