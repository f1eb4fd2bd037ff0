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
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"go.tagwire.dev/tagwire/cborschema"
	"go.tagwire.dev/tagwire/compiler"
	"go.tagwire.dev/tagwire/syntax"
)

// diagnostics prints compiler errors and warnings against their source,
// with a caret excerpt when the location is a byte span.
type diagnostics struct {
	w    io.Writer
	path string
	src  []byte

	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	locStyle     lipgloss.Style
	caretStyle   lipgloss.Style
}

func newDiagnostics(w io.Writer, renderer *lipgloss.Renderer, path string, src []byte) *diagnostics {
	return &diagnostics{
		w:            w,
		path:         path,
		src:          src,
		errorStyle:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		warningStyle: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		locStyle:     renderer.NewStyle().Bold(true),
		caretStyle:   renderer.NewStyle().Foreground(lipgloss.Color("40")),
	}
}

type diagnostic struct {
	severity string
	code     string
	message  string

	// Exactly one of span or jsonPath locates the diagnostic. A zero span
	// with hasSpan false means the whole file.
	span     syntax.Span
	hasSpan  bool
	jsonPath string
}

func (d *diagnostics) report(diag diagnostic) {
	style := d.errorStyle
	if diag.severity == "warning" {
		style = d.warningStyle
	}

	loc := d.path
	switch {
	case diag.hasSpan:
		loc += ":" + syntax.Locate(d.src, diag.span.Start()).String()
	case diag.jsonPath != "":
		loc += ": " + diag.jsonPath
	}
	label := diag.severity
	if diag.code != "" {
		label += " " + diag.code
	}
	fmt.Fprintf(d.w, "%s: %s: %s\n",
		d.locStyle.Render(loc),
		style.Render(label),
		diag.message,
	)
	if diag.hasSpan {
		d.excerpt(diag.span)
	}
}

func (d *diagnostics) excerpt(span syntax.Span) {
	line := syntax.LineAt(d.src, span.Start())
	pos := syntax.Locate(d.src, span.Start())

	// Keep tabs so that the caret lines up with the excerpt.
	var pad strings.Builder
	col := 1
	for _, r := range line {
		if col >= pos.Column {
			break
		}
		if r == '\t' {
			pad.WriteRune('\t')
		} else {
			pad.WriteRune(' ')
		}
		col++
	}

	width := 1
	end := min(int(span.End()), len(d.src))
	if start := int(span.Start()); end > start {
		spanText, _, _ := strings.Cut(string(d.src[start:end]), "\n")
		width = max(1, utf8.RuneCountInString(spanText))
	}
	fmt.Fprintf(d.w, "    %s\n    %s%s\n", line, pad.String(), d.caretStyle.Render(strings.Repeat("^", width)))
}

func (d *diagnostics) compileError(err *compiler.Error) {
	d.report(diagnostic{
		severity: "error",
		code:     fmt.Sprintf("E%d", err.Code()),
		message:  err.Message(),
		span:     err.Span(),
		hasSpan:  err.Path() == "",
		jsonPath: err.Path(),
	})
}

func (d *diagnostics) compileWarning(w *compiler.Warning) {
	d.report(diagnostic{
		severity: "warning",
		code:     fmt.Sprintf("W%d", w.Code()),
		message:  w.Message(),
		span:     w.Span(),
		hasSpan:  w.Path() == "",
		jsonPath: w.Path(),
	})
}

// parseError reports a failure of either front end.
func (d *diagnostics) parseError(err error) {
	var syntaxErr *syntax.Error
	if errors.As(err, &syntaxErr) {
		d.report(diagnostic{
			severity: "error",
			code:     fmt.Sprintf("E%d", syntaxErr.Code()),
			message:  syntaxErr.Message(),
			span:     syntaxErr.Span(),
			hasSpan:  true,
		})
		return
	}
	var docErr *cborschema.Error
	if errors.As(err, &docErr) {
		diag := diagnostic{
			severity: "error",
			message:  docErr.Message,
			jsonPath: docErr.Path,
		}
		if docErr.Path == "" {
			diag.span = syntax.NewSpan(uint32(docErr.Offset), 0)
			diag.hasSpan = true
		}
		d.report(diag)
		return
	}
	d.report(diagnostic{severity: "error", message: err.Error()})
}
