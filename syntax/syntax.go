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

// Package syntax parses the protobuf-like schema dialect into a lossless
// tree. Every byte of the source, whitespace and comments included, belongs
// to exactly one leaf node, so Unparse(Parse(src)) reproduces src.
package syntax

import (
	"bytes"
)

func Parse(src []uint8) (*Schema, error) {
	ctx, err := newParseCtx[Schema](src)
	if err != nil {
		return nil, err
	}
	return parseSchema(ctx)
}

func ParseMessage(src []uint8) (*Message, error) {
	ctx, err := newParseCtx[Message](src)
	if err != nil {
		return nil, err
	}
	return parseMessage(ctx)
}

func ParseEnum(src []uint8) (*Enum, error) {
	ctx, err := newParseCtx[Enum](src)
	if err != nil {
		return nil, err
	}
	return parseEnum(ctx)
}

func ParseField(src []uint8) (*Field, error) {
	ctx, err := newParseCtx[Field](src)
	if err != nil {
		return nil, err
	}
	return parseField(ctx)
}

type parseCtx[T any] struct {
	src        []uint8
	tokens     *Tokens
	childNodes []Node
	haveToken  bool
	token      Token
	err        error
	consumed   uint32
	offset     uint32
}

func newParseCtx[T any](src []uint8) (*parseCtx[T], error) {
	tokens, err := NewTokens(src)
	if err != nil {
		return nil, err
	}
	return &parseCtx[T]{
		src:    src,
		tokens: tokens,
	}, nil
}

func (ctx *parseCtx[T]) ensureToken() error {
	if ctx.err != nil {
		return ctx.err
	}
	if ctx.haveToken {
		return nil
	}
	if err := ctx.tokens.Next(&ctx.token); err != nil {
		ctx.err = err
		return ctx.err
	}
	ctx.haveToken = true
	return nil
}

func (ctx *parseCtx[T]) readToken() []uint8 {
	return ctx.src[:ctx.token.Len]
}

func (ctx *parseCtx[T]) consumeToken(child Node) {
	ctx.src = ctx.src[ctx.token.Len:]
	ctx.consumed += uint32(ctx.token.Len)
	ctx.offset += uint32(ctx.token.Len)
	ctx.haveToken = false
	if child != nil {
		ctx.childNodes = append(ctx.childNodes, child)
	}
}

func (ctx *parseCtx[T]) tokenSpan() Span {
	return Span{
		start: ctx.offset,
		len:   uint32(ctx.token.Len),
	}
}

func (ctx *parseCtx[T]) loop(yield func(struct{}) bool) {
	if ctx.err != nil {
		return
	}
	for {
		consumed := ctx.consumed
		if !yield(struct{}{}) {
			return
		}
		if ctx.err != nil {
			return
		}
		if consumed == ctx.consumed {
			return
		}
	}
}

func (ctx *parseCtx[T]) space() {
	if err := ctx.ensureToken(); err != nil {
		return
	}
	if ctx.token.Kind != T_SPACE {
		return
	}
	ctx.consumeSpace()
}

func (ctx *parseCtx[T]) consumeSpace() {
	tokenBytes := ctx.readToken()
	var token string
	if bytes.Equal(tokenBytes, []uint8{' '}) {
		token = " "
	} else {
		token = string(tokenBytes)
	}
	ctx.consumeToken(&Space{
		raw:   token,
		start: ctx.offset,
	})
}

func (ctx *parseCtx[T]) comments() {
	for range ctx.loop {
		if err := ctx.ensureToken(); err != nil {
			return
		}
		switch ctx.token.Kind {
		case T_SPACE:
			ctx.consumeSpace()
		case T_NEWLINE:
			ctx.consumeToken(&Newline{
				crlf:  ctx.token.Len == 2,
				start: ctx.offset,
			})
		case T_COMMENT:
			ctx.consumeToken(&Comment{
				raw:   string(ctx.readToken()),
				start: ctx.offset,
			})
		default:
			return
		}
	}
}

// suffixComment consumes a // comment on the same line as the preceding
// token, after optional spaces.
func (ctx *parseCtx[T]) suffixComment() *Comment {
	ctx.space()
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	if ctx.token.Kind != T_COMMENT || ctx.token.IsBlockComment() {
		return nil
	}
	comment := &Comment{
		raw:   string(ctx.readToken()),
		start: ctx.offset,
	}
	ctx.consumeToken(comment)
	return comment
}

func (ctx *parseCtx[T]) sigil(kind TokenKind) {
	if err := ctx.ensureToken(); err != nil {
		return
	}
	if ctx.token.Kind != kind {
		ctx.err = errExpectedSigil(
			kind,
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
		return
	}
	ctx.consumeToken(&Sigil{
		raw:   ctx.src[0],
		start: ctx.offset,
	})
}

func (ctx *parseCtx[T]) trySigil(kind TokenKind) bool {
	if err := ctx.ensureToken(); err != nil {
		return false
	}
	if ctx.token.Kind != kind {
		return false
	}
	ctx.consumeToken(&Sigil{
		raw:   ctx.src[0],
		start: ctx.offset,
	})
	return true
}

// peekKeyword reports whether the current token is the identifier keyword,
// without consuming it.
func (ctx *parseCtx[T]) peekKeyword(keyword string) bool {
	if err := ctx.ensureToken(); err != nil {
		return false
	}
	return ctx.token.Kind == T_IDENT && string(ctx.readToken()) == keyword
}

func (ctx *parseCtx[T]) tryKeyword(keyword string) *Keyword {
	if !ctx.peekKeyword(keyword) {
		return nil
	}
	node := &Keyword{
		raw:   keyword,
		start: ctx.offset,
	}
	ctx.consumeToken(node)
	return node
}

func (ctx *parseCtx[T]) ident() *Ident {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	token := string(ctx.readToken())
	if ctx.token.Kind != T_IDENT {
		ctx.err = errExpectedIdent(ctx.token.Kind, token, ctx.tokenSpan())
		return nil
	}
	ident := &Ident{
		raw:   token,
		start: ctx.offset,
	}
	ctx.consumeToken(ident)
	return ident
}

func (ctx *parseCtx[T]) int() *IntLit {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	token := string(ctx.readToken())

	switch ctx.token.Kind {
	case T_INT_LIT, T_HEX_INT_LIT:
	default:
		ctx.err = errExpectedIntLit(ctx.token.Kind, token, ctx.tokenSpan())
		return nil
	}

	intNode, err := newIntLit(token, ctx.token.Kind, ctx.offset)
	if err != nil {
		ctx.err = err
		return nil
	}
	ctx.consumeToken(intNode)
	return intNode
}

func (ctx *parseCtx[T]) float() *FloatLit {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	floatNode, err := newFloatLit(string(ctx.readToken()), ctx.offset)
	if err != nil {
		ctx.err = err
		return nil
	}
	ctx.consumeToken(floatNode)
	return floatNode
}

func (ctx *parseCtx[T]) text() *TextLit {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	token := string(ctx.readToken())

	if ctx.token.Kind != T_TEXT_LIT {
		ctx.err = errExpectedTextLit(ctx.token.Kind, token, ctx.tokenSpan())
		return nil
	}
	textNode, err := newTextLit(token, ctx.offset, ctx.token.flags)
	if err != nil {
		ctx.err = err
		return nil
	}
	ctx.consumeToken(textNode)
	return textNode
}

func (ctx *parseCtx[T]) finish(
	build func(node branchNode) *T,
) (*T, error) {
	if ctx.err != nil {
		return nil, ctx.err
	}
	return build(branchNode{
		span: Span{
			start: ctx.offset - ctx.consumed,
			len:   ctx.consumed,
		},
		childNodes: ctx.childNodes,
	}), nil
}

func parseChild[P any, C any, PtrC interface {
	*C
	Node
}](
	ctx *parseCtx[P],
	parseChildFn func(*parseCtx[C]) (PtrC, error),
) (*C, bool) {
	if ctx.err != nil {
		return nil, false
	}
	childCtx := &parseCtx[C]{
		src:       ctx.src,
		tokens:    ctx.tokens,
		haveToken: ctx.haveToken,
		token:     ctx.token,
		offset:    ctx.offset,
	}
	child, err := parseChildFn(childCtx)
	if err != nil {
		ctx.err = err
		return nil, false
	}
	ctx.haveToken = childCtx.haveToken
	ctx.token = childCtx.token

	if childCtx.consumed == 0 {
		return nil, false
	}
	ctx.src = ctx.src[childCtx.consumed:]
	ctx.consumed += childCtx.consumed
	ctx.offset = childCtx.offset
	ctx.childNodes = append(ctx.childNodes, child)
	return child, true
}

func parseSchema(ctx *parseCtx[Schema]) (*Schema, error) {
	var decls []Node
	var syntaxes []*SyntaxDecl
	var packages []*Package
	var options []*Option
	var messages []*Message
	var enums []*Enum

	for range ctx.loop {
		ctx.comments()
		if ctx.err != nil || ctx.token.Kind == T_EOF {
			break
		}

		var ok bool
		if decl, found := parseChild(ctx, parseSyntaxDecl); found {
			ok = true
			decls = append(decls, decl)
			syntaxes = append(syntaxes, decl)
		} else if decl, found := parseChild(ctx, parsePackage); found {
			ok = true
			decls = append(decls, decl)
			packages = append(packages, decl)
		} else if decl, found := parseChild(ctx, parseOption); found {
			ok = true
			decls = append(decls, decl)
			options = append(options, decl)
		} else if decl, found := parseChild(ctx, parseMessage); found {
			ok = true
			decls = append(decls, decl)
			messages = append(messages, decl)
		} else if decl, found := parseChild(ctx, parseEnum); found {
			ok = true
			decls = append(decls, decl)
			enums = append(enums, decl)
		}
		if ctx.err != nil {
			return nil, ctx.err
		}
		if !ok {
			token := string(ctx.readToken())
			span := ctx.tokenSpan()
			if ctx.token.Kind == T_IDENT {
				return nil, errUnknownDeclaration(token, span)
			}
			return nil, errExpectedDeclaration(ctx.token.Kind, token, span)
		}
	}

	return ctx.finish(func(node branchNode) *Schema {
		return &Schema{
			branchNode: node,
			decls:      decls,
			syntaxes:   syntaxes,
			packages:   packages,
			options:    options,
			messages:   messages,
			enums:      enums,
		}
	})
}

func parseSyntaxDecl(ctx *parseCtx[SyntaxDecl]) (*SyntaxDecl, error) {
	if ctx.tryKeyword("syntax") == nil {
		return nil, nil
	}
	ctx.space()
	ctx.sigil(T_EQ)
	ctx.space()
	value := ctx.text()
	ctx.space()
	ctx.sigil(T_SEMICOLON)

	return ctx.finish(func(node branchNode) *SyntaxDecl {
		return &SyntaxDecl{
			branchNode: node,
			value:      value,
		}
	})
}

func parsePackage(ctx *parseCtx[Package]) (*Package, error) {
	if ctx.tryKeyword("package") == nil {
		return nil, nil
	}
	ctx.space()
	name, _ := parseChild(ctx, parseDottedName)
	ctx.space()
	ctx.sigil(T_SEMICOLON)

	return ctx.finish(func(node branchNode) *Package {
		return &Package{
			branchNode: node,
			name:       name,
		}
	})
}

func parseOption(ctx *parseCtx[Option]) (*Option, error) {
	if ctx.tryKeyword("option") == nil {
		return nil, nil
	}
	ctx.space()
	name, _ := parseChild(ctx, parseDottedName)
	ctx.space()
	ctx.sigil(T_EQ)
	ctx.space()
	value := parseValue(ctx)
	ctx.space()
	ctx.sigil(T_SEMICOLON)

	return ctx.finish(func(node branchNode) *Option {
		return &Option{
			branchNode: node,
			name:       name,
			value:      value,
		}
	})
}

func parseDottedName(ctx *parseCtx[DottedName]) (*DottedName, error) {
	parts := []*Ident{ctx.ident()}
	for range ctx.loop {
		if !ctx.trySigil(T_DOT) {
			break
		}
		parts = append(parts, ctx.ident())
	}
	return ctx.finish(func(node branchNode) *DottedName {
		return &DottedName{
			branchNode: node,
			parts:      parts,
		}
	})
}

func parseTypeName(ctx *parseCtx[TypeName]) (*TypeName, error) {
	if err := ctx.ensureToken(); err != nil {
		return nil, err
	}
	if ctx.token.Kind != T_IDENT && ctx.token.Kind != T_DOT {
		return nil, errExpectedTypeName(
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
	}

	absolute := ctx.trySigil(T_DOT)
	parts := []*Ident{ctx.ident()}
	for range ctx.loop {
		if !ctx.trySigil(T_DOT) {
			break
		}
		parts = append(parts, ctx.ident())
	}
	return ctx.finish(func(node branchNode) *TypeName {
		return &TypeName{
			branchNode: node,
			absolute:   absolute,
			parts:      parts,
		}
	})
}

func parseValue[T any](ctx *parseCtx[T]) Node {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	switch ctx.token.Kind {
	case T_INT_LIT, T_HEX_INT_LIT:
		if child := ctx.int(); child != nil {
			return child
		}
	case T_FLOAT_LIT:
		if child := ctx.float(); child != nil {
			return child
		}
	case T_TEXT_LIT:
		if child := ctx.text(); child != nil {
			return child
		}
	case T_IDENT:
		if child := ctx.ident(); child != nil {
			return child
		}
	default:
		ctx.err = errExpectedOptionValue(
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
	}
	return nil
}

func parseMessage(ctx *parseCtx[Message]) (*Message, error) {
	if ctx.tryKeyword("message") == nil {
		return nil, nil
	}
	ctx.space()
	name := ctx.ident()
	ctx.comments()

	var fields []*Field
	var messages []*Message
	var enums []*Enum
	var options []*Option
	ctx.sigil(T_OPEN_CURL)
	ctx.comments()
	for range ctx.loop {
		if ctx.trySigil(T_CLOSE_CURL) {
			break
		}
		if err := ctx.ensureToken(); err != nil {
			break
		}
		token := string(ctx.readToken())
		if ctx.token.Kind != T_IDENT {
			ctx.err = errExpectedMessageItem(ctx.token.Kind, token, ctx.tokenSpan())
			break
		}
		switch token {
		case "message":
			if child, ok := parseChild(ctx, parseMessage); ok {
				messages = append(messages, child)
			}
		case "enum":
			if child, ok := parseChild(ctx, parseEnum); ok {
				enums = append(enums, child)
			}
		case "option":
			if child, ok := parseChild(ctx, parseOption); ok {
				options = append(options, child)
			}
		case "required", "optional", "repeated":
			if child, ok := parseChild(ctx, parseField); ok {
				fields = append(fields, child)
			}
		default:
			ctx.err = errUnknownFieldLabel(token, ctx.tokenSpan())
		}
		ctx.comments()
	}

	return ctx.finish(func(node branchNode) *Message {
		return &Message{
			branchNode: node,
			name:       name,
			fields:     fields,
			messages:   messages,
			enums:      enums,
			options:    options,
		}
	})
}

func parseField(ctx *parseCtx[Field]) (*Field, error) {
	var label *Keyword
	for _, keyword := range []string{"required", "optional", "repeated"} {
		if label = ctx.tryKeyword(keyword); label != nil {
			break
		}
	}
	if label == nil {
		if err := ctx.ensureToken(); err != nil {
			return nil, err
		}
		return nil, errUnknownFieldLabel(string(ctx.readToken()), ctx.tokenSpan())
	}
	ctx.space()
	typeName, _ := parseChild(ctx, parseTypeName)
	ctx.space()
	name := ctx.ident()
	ctx.space()
	ctx.sigil(T_EQ)
	ctx.space()
	id := ctx.int()
	ctx.space()

	var options []*FieldOption
	for range ctx.loop {
		if !ctx.trySigil(T_OPEN_SQUARE) {
			break
		}
		ctx.space()
		for range ctx.loop {
			option, _ := parseChild(ctx, parseFieldOption)
			options = append(options, option)
			ctx.space()
			if !ctx.trySigil(T_COMMA) {
				break
			}
			ctx.space()
		}
		ctx.sigil(T_CLOSE_SQUARE)
		ctx.space()
	}
	ctx.sigil(T_SEMICOLON)
	comment := ctx.suffixComment()

	return ctx.finish(func(node branchNode) *Field {
		return &Field{
			branchNode: node,
			label:      label,
			typeName:   typeName,
			name:       name,
			id:         id,
			options:    options,
			comment:    comment,
		}
	})
}

func parseFieldOption(ctx *parseCtx[FieldOption]) (*FieldOption, error) {
	name := ctx.ident()
	ctx.space()
	ctx.sigil(T_EQ)
	ctx.space()
	value := parseValue(ctx)

	return ctx.finish(func(node branchNode) *FieldOption {
		return &FieldOption{
			branchNode: node,
			name:       name,
			value:      value,
		}
	})
}

func parseEnum(ctx *parseCtx[Enum]) (*Enum, error) {
	if ctx.tryKeyword("enum") == nil {
		return nil, nil
	}
	ctx.space()
	name := ctx.ident()
	ctx.comments()

	var items []*EnumItem
	ctx.sigil(T_OPEN_CURL)
	ctx.comments()
	for range ctx.loop {
		if len(items) > 0 && ctx.trySigil(T_CLOSE_CURL) {
			break
		}
		item, _ := parseChild(ctx, parseEnumItem)
		items = append(items, item)
		ctx.comments()
	}

	return ctx.finish(func(node branchNode) *Enum {
		return &Enum{
			branchNode: node,
			name:       name,
			items:      items,
		}
	})
}

func parseEnumItem(ctx *parseCtx[EnumItem]) (*EnumItem, error) {
	name := ctx.ident()
	ctx.space()
	ctx.sigil(T_EQ)
	ctx.space()
	value := ctx.int()
	ctx.space()
	ctx.sigil(T_SEMICOLON)
	comment := ctx.suffixComment()

	return ctx.finish(func(node branchNode) *EnumItem {
		return &EnumItem{
			branchNode: node,
			name:       name,
			value:      value,
			comment:    comment,
		}
	})
}
