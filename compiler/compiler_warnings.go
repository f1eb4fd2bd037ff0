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

package compiler

import (
	"fmt"

	"go.tagwire.dev/tagwire/ir"
	"go.tagwire.dev/tagwire/syntax"
)

type Warning struct {
	code    uint32
	message string
	loc     loc
}

func (w *Warning) String() string {
	return fmt.Sprintf("W%d: %s", w.code, w.message)
}

func (w *Warning) Code() uint32 {
	return w.code
}

func (w *Warning) Message() string {
	return w.message
}

func (w *Warning) Span() syntax.Span {
	return w.loc.span
}

func (w *Warning) Path() string {
	return w.loc.path
}

func warnDeclShadowsScalar(name string, loc loc) *Warning {
	return &Warning{
		code:    4000,
		message: fmt.Sprintf("Declaration '%s' shadows the scalar type of the same name", name),
		loc:     loc,
	}
}

func warnDuplicateEnumValue(enumName, itemName string, value uint32, prevItem string, loc loc) *Warning {
	return &Warning{
		code: 4001,
		message: fmt.Sprintf(
			"Enum item '%s' in enum '%s' reuses value %d of item '%s'",
			itemName, enumName, value, prevItem,
		),
		loc: loc,
	}
}

func warnEmptyMessage(name string, loc loc) *Warning {
	return &Warning{
		code:    4002,
		message: fmt.Sprintf("Message '%s' has no fields", name),
		loc:     loc,
	}
}

func warnUnknownSyntax(value string, loc loc) *Warning {
	return &Warning{
		code:    4003,
		message: fmt.Sprintf("Unknown syntax %q (expected %q)", value, knownSyntax),
		loc:     loc,
	}
}

func warnViewOnNonBytes(fieldName string, kind ir.Kind, loc loc) *Warning {
	return &Warning{
		code: 4004,
		message: fmt.Sprintf(
			"View hint on field '%s' ignored: only bytes and string fields can be views, got %s",
			fieldName, kind,
		),
		loc: loc,
	}
}

func warnDuplicateOption(name string, loc loc) *Warning {
	return &Warning{
		code:    4005,
		message: fmt.Sprintf("Option '%s' is set more than once; the last value is used", name),
		loc:     loc,
	}
}
