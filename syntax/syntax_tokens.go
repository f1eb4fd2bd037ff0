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

package syntax

import (
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	maxSrcLen   = 0x7FFFFFFF // (2**31)-1
	maxTokenLen = int(math.MaxUint16)

	tokenFlagTextHasNoEscapes uint8 = 0x01
	tokenFlagBlockComment     uint8 = 0x02
)

type Token struct {
	Len   uint16
	Kind  TokenKind
	flags uint8
}

type TokenKind uint8

const (
	T_EOF TokenKind = iota

	T_SPACE
	T_NEWLINE
	T_COMMENT

	T_COMMA
	T_DOT
	T_EQ
	T_SEMICOLON

	T_OPEN_CURL
	T_CLOSE_CURL
	T_OPEN_SQUARE
	T_CLOSE_SQUARE

	T_INT_LIT
	T_HEX_INT_LIT
	T_FLOAT_LIT

	T_TEXT_LIT

	T_IDENT
)

func (k TokenKind) String() string {
	switch k {
	case T_EOF:
		return "EOF"
	case T_SPACE:
		return "SPACE"
	case T_NEWLINE:
		return "NEWLINE"
	case T_COMMENT:
		return "COMMENT"
	case T_COMMA:
		return "COMMA"
	case T_DOT:
		return "DOT"
	case T_EQ:
		return "EQ"
	case T_SEMICOLON:
		return "SEMICOLON"
	case T_OPEN_CURL:
		return "OPEN_CURL"
	case T_CLOSE_CURL:
		return "CLOSE_CURL"
	case T_OPEN_SQUARE:
		return "OPEN_SQUARE"
	case T_CLOSE_SQUARE:
		return "CLOSE_SQUARE"
	case T_INT_LIT:
		return "INT_LIT"
	case T_HEX_INT_LIT:
		return "HEX_INT_LIT"
	case T_FLOAT_LIT:
		return "FLOAT_LIT"
	case T_TEXT_LIT:
		return "TEXT_LIT"
	case T_IDENT:
		return "IDENT"
	default:
		return fmt.Sprintf("TokenKind(%d)", uint8(k))
	}
}

// IsBlockComment reports whether a T_COMMENT token is a /* */ comment.
func (t Token) IsBlockComment() bool {
	return t.flags&tokenFlagBlockComment != 0
}

type Tokens struct {
	src    []byte
	offset uint32
}

func NewTokens(src []byte) (*Tokens, error) {
	if len(src) > maxSrcLen {
		return nil, errSourceTooLong(len(src))
	}
	if !utf8.Valid(src) {
		return nil, errInvalidUtf8(src)
	}
	return &Tokens{
		src: src,
	}, nil
}

func (t *Tokens) Next(token *Token) error {
	if len(t.src) == 0 {
		*token = Token{
			Kind: T_EOF,
		}
		return nil
	}

	c := t.src[0]
	var kind TokenKind
	switch c {
	case '\t', ' ':
		return t.nextSpace(token)
	case '\n':
		kind = T_NEWLINE
		goto len1
	case ',':
		kind = T_COMMA
		goto len1
	case '.':
		kind = T_DOT
		goto len1
	case '=':
		kind = T_EQ
		goto len1
	case ';':
		kind = T_SEMICOLON
		goto len1
	case '{':
		kind = T_OPEN_CURL
		goto len1
	case '}':
		kind = T_CLOSE_CURL
		goto len1
	case '[':
		kind = T_OPEN_SQUARE
		goto len1
	case ']':
		kind = T_CLOSE_SQUARE
		goto len1
	case '/':
		if len(t.src) > 1 && t.src[1] == '/' {
			return t.nextLineComment(token)
		}
		if len(t.src) > 1 && t.src[1] == '*' {
			return t.nextBlockComment(token)
		}
		return errUnexpectedCharacter(t.offset, '/')
	case '"', '\'':
		return t.nextTextLit(token)
	case '\r':
		if len(t.src) < 2 || t.src[1] != '\n' {
			return errForbiddenControlCharacter(t.offset, c)
		}
		*token = Token{
			Kind: T_NEWLINE,
			Len:  2,
		}
		t.offset += 2
		t.src = t.src[2:]
		return nil
	default:
		goto big
	}

len1:
	*token = Token{
		Kind: kind,
		Len:  1,
	}
	t.offset += 1
	t.src = t.src[1:]
	return nil

big:
	if (c >= '0' && c <= '9') || c == '-' {
		return t.nextNumLit(token)
	}

	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_' {
		return t.nextIdent(token)
	}

	r, _ := utf8.DecodeRune(t.src)
	if r == '\u00A0' {
		return t.nextSpace(token)
	}

	if r < 0x20 || r == 0x7F {
		return errForbiddenControlCharacter(t.offset, c)
	}
	return errUnexpectedCharacter(t.offset, r)
}

func (t *Tokens) advance(token *Token, kind TokenKind, tokenLen int, flags uint8) error {
	checkedLen, err := t.checkTokenLen(tokenLen)
	if err != nil {
		return err
	}
	*token = Token{
		Kind:  kind,
		Len:   checkedLen,
		flags: flags,
	}
	t.offset += uint32(checkedLen)
	t.src = t.src[checkedLen:]
	return nil
}

func (t *Tokens) nextSpace(token *Token) error {
	src := t.src
	for {
		if src[0] == ' ' || src[0] == '\t' {
			src = src[1:]
		} else if r, runeLen := utf8.DecodeRune(src); r == '\u00A0' {
			src = src[runeLen:]
		} else {
			break
		}
		if len(src) == 0 {
			break
		}
	}
	return t.advance(token, T_SPACE, len(t.src)-len(src), 0)
}

func (t *Tokens) nextLineComment(token *Token) error {
	src := t.src
	for ii, c := range src {
		if c == '\n' || c == '\r' {
			src = src[:ii]
			break
		}
	}
	return t.advance(token, T_COMMENT, len(src), 0)
}

func (t *Tokens) nextBlockComment(token *Token) error {
	for ii := 2; ii+1 < len(t.src); ii++ {
		if t.src[ii] == '*' && t.src[ii+1] == '/' {
			return t.advance(token, T_COMMENT, ii+2, tokenFlagBlockComment)
		}
	}
	return errBlockCommentUnterminated(t.offset, uint32(len(t.src)))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentByte(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_'
}

func (t *Tokens) nextNumLit(token *Token) error {
	src := t.src
	ii := 0
	if src[0] == '-' {
		ii++
	}
	if ii == len(src) || !isDigit(src[ii]) {
		return errIntLitInvalid(t.offset, src[:ii+min(1, len(src)-ii)])
	}

	// Consume the whole alphanumeric run so that errors cover it.
	invalid := func(end int) error {
		for end < len(src) && (isIdentByte(src[end]) || src[end] == '.') {
			end++
		}
		return errIntLitInvalid(t.offset, src[:end])
	}

	if src[ii] == '0' && ii+1 < len(src) && (src[ii+1] == 'x' || src[ii+1] == 'X') {
		start := ii + 2
		end := start
		for end < len(src) && isHexDigit(src[end]) {
			end++
		}
		if end == start || (end < len(src) && isIdentByte(src[end])) {
			return invalid(end)
		}
		return t.advance(token, T_HEX_INT_LIT, end, 0)
	}

	start := ii
	for ii < len(src) && isDigit(src[ii]) {
		ii++
	}
	kind := T_INT_LIT
	if ii < len(src) && src[ii] == '.' && ii+1 < len(src) && isDigit(src[ii+1]) {
		kind = T_FLOAT_LIT
		ii++
		for ii < len(src) && isDigit(src[ii]) {
			ii++
		}
	}
	if ii < len(src) && (src[ii] == 'e' || src[ii] == 'E') {
		exp := ii + 1
		if exp < len(src) && (src[exp] == '+' || src[exp] == '-') {
			exp++
		}
		if exp < len(src) && isDigit(src[exp]) {
			kind = T_FLOAT_LIT
			ii = exp
			for ii < len(src) && isDigit(src[ii]) {
				ii++
			}
		}
	}
	if ii < len(src) && isIdentByte(src[ii]) {
		return invalid(ii)
	}
	if kind == T_INT_LIT && src[start] == '0' && ii-start > 1 {
		return invalid(ii)
	}
	return t.advance(token, kind, ii, 0)
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

func (t *Tokens) nextTextLit(token *Token) error {
	quote := t.src[0]
	escaped := false
	hasEscapes := false
	for ii, c := range t.src {
		if ii == 0 {
			continue
		}
		if escaped {
			escaped = false
			continue
		}
		if c == quote {
			var flags uint8
			if !hasEscapes {
				flags |= tokenFlagTextHasNoEscapes
			}
			return t.advance(token, T_TEXT_LIT, ii+1, flags)
		}
		if (c <= 0x1F || c == 0x7F) && c != 0x09 {
			off := t.offset + uint32(ii)
			if c == 0x0A {
				return errTextLitContainsNewline(off, 1)
			}
			if c == 0x0D && ii+1 < len(t.src) && t.src[ii+1] == 0x0A {
				return errTextLitContainsNewline(off, 2)
			}
			return errForbiddenControlCharacter(off, c)
		}
		if c == '\\' {
			escaped = true
			hasEscapes = true
		}
	}
	return errTextLitUnterminated(t.offset, uint32(len(t.src)))
}

func (t *Tokens) nextIdent(token *Token) error {
	end := 1
	for end < len(t.src) && isIdentByte(t.src[end]) {
		end++
	}
	return t.advance(token, T_IDENT, end, 0)
}

func (t *Tokens) checkTokenLen(len int) (uint16, error) {
	if len > maxTokenLen {
		return 0, errTokenTooLong(t.offset, len)
	}
	return uint16(len), nil
}
