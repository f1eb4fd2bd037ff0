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

	"go.tagwire.dev/tagwire"
	"go.tagwire.dev/tagwire/ir"
	"go.tagwire.dev/tagwire/syntax"
)

type Error struct {
	code    uint32
	message string
	loc     loc
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	return fmt.Sprintf("E%d: %s", err.code, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

// Span locates the error in a proto dialect source.
func (err *Error) Span() syntax.Span {
	return err.loc.span
}

// Path locates the error in a CBOR dialect document, as a JSON path.
func (err *Error) Path() string {
	return err.loc.path
}

func errInvalidPackage(name, reason string, loc loc) *Error {
	return &Error{
		code:    3000,
		message: fmt.Sprintf("Invalid package %q: %s", name, reason),
		loc:     loc,
	}
}

func errDeclNameConflict(fullName string, loc loc) *Error {
	return &Error{
		code:    3001,
		message: fmt.Sprintf("Declaration '%s' conflicts with an earlier declaration", fullName),
		loc:     loc,
	}
}

func errFieldNameConflict(msgName, fieldName string, loc loc) *Error {
	return &Error{
		code:    3002,
		message: fmt.Sprintf("Field name '%s' is already used in message '%s'", fieldName, msgName),
		loc:     loc,
	}
}

func errDuplicateFieldID(msgName string, id uint32, prevField string, loc loc) *Error {
	return &Error{
		code: 3003,
		message: fmt.Sprintf(
			"Field id %d in message '%s' is already used by field '%s'",
			id, msgName, prevField,
		),
		loc: loc,
	}
}

func errFieldIDOutOfRange(raw string, loc loc) *Error {
	return &Error{
		code: 3004,
		message: fmt.Sprintf(
			"Field id %s is out of range (must be an integer in [1, %d])",
			raw, tagwire.MaxFieldID,
		),
		loc: loc,
	}
}

func errUnknownType(name, scope string, loc loc) *Error {
	return &Error{
		code:    3005,
		message: fmt.Sprintf("Unknown type '%s' (referenced from '%s')", name, scope),
		loc:     loc,
	}
}

func errInvalidPacked(fieldName string, label ir.Label, kind ir.Kind, loc loc) *Error {
	return &Error{
		code: 3006,
		message: fmt.Sprintf(
			"Field '%s' (%s %s) cannot be packed; only repeated fixed-width fields can",
			fieldName, label, kind,
		),
		loc: loc,
	}
}

func errEnumItemNameConflict(enumName, itemName string, loc loc) *Error {
	return &Error{
		code:    3007,
		message: fmt.Sprintf("Enum item '%s' is already declared in enum '%s'", itemName, enumName),
		loc:     loc,
	}
}

func errEnumValueOutOfRange(raw string, loc loc) *Error {
	return &Error{
		code:    3008,
		message: fmt.Sprintf("Enum value %s is out of range (must be an integer in [0, 4294967295])", raw),
		loc:     loc,
	}
}

func errInvalidDefault(raw string, kind ir.Kind, reason string, loc loc) *Error {
	return &Error{
		code:    3009,
		message: fmt.Sprintf("Default value %s is invalid for type %s: %s", raw, kind, reason),
		loc:     loc,
	}
}

func errDefaultOnRepeated(fieldName string, loc loc) *Error {
	return &Error{
		code:    3010,
		message: fmt.Sprintf("Repeated field '%s' cannot have a default value", fieldName),
		loc:     loc,
	}
}

func errDefaultOnMessage(fieldName string, loc loc) *Error {
	return &Error{
		code:    3011,
		message: fmt.Sprintf("Message field '%s' cannot have a default value", fieldName),
		loc:     loc,
	}
}

func errPackedNotBool(raw string, loc loc) *Error {
	return &Error{
		code:    3012,
		message: fmt.Sprintf("Option 'packed' must be true or false, got %s", raw),
		loc:     loc,
	}
}

func errUnknownFieldOption(name string, loc loc) *Error {
	return &Error{
		code:    3013,
		message: fmt.Sprintf("Unknown field option '%s' (expected 'packed' or 'default')", name),
		loc:     loc,
	}
}

func errResolvedNameNotType(name, got string, loc loc) *Error {
	return &Error{
		code:    3014,
		message: fmt.Sprintf("Name '%s' refers to %s, not a type", name, got),
		loc:     loc,
	}
}

func errInvalidIdentifier(what, name string, loc loc) *Error {
	return &Error{
		code:    3015,
		message: fmt.Sprintf("Invalid %s name %q", what, name),
		loc:     loc,
	}
}
