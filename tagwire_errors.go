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

package tagwire

import (
	"errors"
	"fmt"
)

var (
	ErrTruncated     = errors.New("buffer truncated")
	ErrBadVarint     = errors.New("malformed varint")
	ErrLengthOverrun = errors.New("length exceeds remaining buffer")
	ErrWireType      = errors.New("unexpected wire type")
	ErrFieldID       = errors.New("invalid field id")
	ErrDepth         = errors.New("maximum nesting depth exceeded")
)

// DecodeError is returned for every decode failure. Err is one of the
// sentinel errors above, so callers can match with [errors.Is].
type DecodeError struct {
	Err     error
	Offset  int
	FieldID uint32
	detail  string
}

var _ error = (*DecodeError)(nil)

func (err *DecodeError) Error() string {
	msg := err.Err.Error()
	if err.detail != "" {
		msg += ": " + err.detail
	}
	if err.FieldID != 0 {
		return fmt.Sprintf("tagwire: field %d at offset %d: %s", err.FieldID, err.Offset, msg)
	}
	return fmt.Sprintf("tagwire: offset %d: %s", err.Offset, msg)
}

func (err *DecodeError) Unwrap() error {
	return err.Err
}

// EncodeError is returned when a value cannot be written.
type EncodeError struct {
	Err     error
	FieldID uint32
}

func (err *EncodeError) Error() string {
	return fmt.Sprintf("tagwire: encode field %d: %v", err.FieldID, err.Err)
}

func (err *EncodeError) Unwrap() error {
	return err.Err
}
