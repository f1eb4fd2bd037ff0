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

package ir

import (
	"fmt"
)

type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt32
	KindUint32
	KindSint32
	KindFixed32
	KindSfixed32
	KindInt64
	KindUint64
	KindSint64
	KindFixed64
	KindSfixed64
	KindFloat
	KindDouble
	KindBool
	KindString
	KindBytes
	KindEnum
	KindMessage
)

var scalarKinds = map[string]Kind{
	"int32":    KindInt32,
	"uint32":   KindUint32,
	"sint32":   KindSint32,
	"fixed32":  KindFixed32,
	"sfixed32": KindSfixed32,
	"int64":    KindInt64,
	"uint64":   KindUint64,
	"sint64":   KindSint64,
	"fixed64":  KindFixed64,
	"sfixed64": KindSfixed64,
	"float":    KindFloat,
	"double":   KindDouble,
	"bool":     KindBool,
	"string":   KindString,
	"bytes":    KindBytes,
}

// ScalarKind looks up a predeclared scalar type name.
func ScalarKind(name string) (Kind, bool) {
	kind, ok := scalarKinds[name]
	return kind, ok
}

func (k Kind) String() string {
	switch k {
	case KindInt32:
		return "int32"
	case KindUint32:
		return "uint32"
	case KindSint32:
		return "sint32"
	case KindFixed32:
		return "fixed32"
	case KindSfixed32:
		return "sfixed32"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindSint64:
		return "sint64"
	case KindFixed64:
		return "fixed64"
	case KindSfixed64:
		return "sfixed64"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindEnum:
		return "enum"
	case KindMessage:
		return "message"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func (k Kind) IsScalar() bool {
	return k >= KindInt32 && k <= KindBytes
}

// IsFixedWidth reports whether values of this kind have a fixed encoded
// size. Only these kinds may be packed.
func (k Kind) IsFixedWidth() bool {
	switch k {
	case KindFixed32, KindSfixed32, KindFloat, KindFixed64, KindSfixed64, KindDouble:
		return true
	}
	return false
}

func (k Kind) IsInteger() bool {
	switch k {
	case KindInt32, KindUint32, KindSint32, KindFixed32, KindSfixed32,
		KindInt64, KindUint64, KindSint64, KindFixed64, KindSfixed64:
		return true
	}
	return false
}

func (k Kind) IsSigned() bool {
	switch k {
	case KindInt32, KindSint32, KindSfixed32, KindInt64, KindSint64, KindSfixed64:
		return true
	}
	return false
}

func (k Kind) Is64Bit() bool {
	switch k {
	case KindInt64, KindUint64, KindSint64, KindFixed64, KindSfixed64, KindDouble:
		return true
	}
	return false
}

func (k Kind) IsFloat() bool {
	return k == KindFloat || k == KindDouble
}

type Label uint8

const (
	LabelOptional Label = iota
	LabelRequired
	LabelRepeated
)

func (l Label) String() string {
	switch l {
	case LabelOptional:
		return "optional"
	case LabelRequired:
		return "required"
	case LabelRepeated:
		return "repeated"
	default:
		return fmt.Sprintf("Label(%d)", uint8(l))
	}
}

type Dialect uint8

const (
	DialectProto Dialect = iota
	DialectCBOR
)

func (d Dialect) String() string {
	switch d {
	case DialectProto:
		return "proto"
	case DialectCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("Dialect(%d)", uint8(d))
	}
}

func ParseDialect(s string) (Dialect, error) {
	switch s {
	case "proto":
		return DialectProto, nil
	case "cbor":
		return DialectCBOR, nil
	}
	return 0, fmt.Errorf("unknown dialect %q", s)
}

// The text forms are used by the JSON rendering of a schema. The CBOR
// interchange encoding keeps the numeric values.

func (k Kind) MarshalText() ([]byte, error) {
	if k == KindInvalid || k > KindMessage {
		return nil, fmt.Errorf("ir: invalid kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch name := string(text); name {
	case "enum":
		*k = KindEnum
	case "message":
		*k = KindMessage
	default:
		kind, ok := ScalarKind(name)
		if !ok {
			return fmt.Errorf("ir: unknown kind %q", name)
		}
		*k = kind
	}
	return nil
}

func (l Label) MarshalText() ([]byte, error) {
	if l > LabelRepeated {
		return nil, fmt.Errorf("ir: invalid label %d", uint8(l))
	}
	return []byte(l.String()), nil
}

func (l *Label) UnmarshalText(text []byte) error {
	for _, label := range []Label{LabelOptional, LabelRequired, LabelRepeated} {
		if label.String() == string(text) {
			*l = label
			return nil
		}
	}
	return fmt.Errorf("ir: unknown label %q", text)
}

func (d Dialect) MarshalText() ([]byte, error) {
	if d > DialectCBOR {
		return nil, fmt.Errorf("ir: invalid dialect %d", uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *Dialect) UnmarshalText(text []byte) error {
	dialect, err := ParseDialect(string(text))
	if err != nil {
		return err
	}
	*d = dialect
	return nil
}
