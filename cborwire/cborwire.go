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

// Package cborwire holds the CBOR modes of the CBOR-map dialect. Messages
// are CBOR maps keyed by unsigned field id, written with core deterministic
// encoding so that equal messages always produce identical bytes.
package cborwire

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"go.tagwire.dev/tagwire"
)

// Nesting levels used per message level: the message map, plus the array
// of a repeated message field.
const levelsPerMessage = 2

const majorTypeMap = 5

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cborwire: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = NewDecMode(tagwire.DefaultMaxDepth)
	if err != nil {
		panic("cborwire: CBOR decoder initialization failed: " + err.Error())
	}
}

// NewDecMode returns a decoder that rejects duplicate map keys and input
// nested deeper than maxDepth messages.
func NewDecMode(maxDepth int) (cbor.DecMode, error) {
	if maxDepth <= 0 {
		maxDepth = tagwire.DefaultMaxDepth
	}
	return cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels: max(4, levelsPerMessage*maxDepth+1),
		IndefLength:     cbor.IndefLengthForbidden,
		UTF8:            cbor.UTF8RejectInvalid,
	}.DecMode()
}

// Marshal encodes v with core deterministic encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

type RawMessage = cbor.RawMessage

// Fields splits one encoded message into its raw field values. Keys that
// are not unsigned integers are rejected with tagwire.ErrFieldID.
func Fields(dm cbor.DecMode, data []byte) (map[uint64]RawMessage, error) {
	if dm == nil {
		dm = decMode
	}
	if len(data) == 0 || data[0]>>5 != majorTypeMap {
		return nil, fmt.Errorf("%w: expected CBOR map", tagwire.ErrWireType)
	}
	var fields map[uint64]RawMessage
	if err := dm.Unmarshal(data, &fields); err != nil {
		var typeErr *cbor.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %v", tagwire.ErrFieldID, err)
		}
		return nil, err
	}
	return fields, nil
}

// Diagnose renders data in CBOR diagnostic notation (RFC 8949 section 8).
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
