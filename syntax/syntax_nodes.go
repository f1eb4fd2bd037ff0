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
	"bytes"
	"iter"
	"math"
	"strconv"
	"strings"
)

type Span struct {
	start, len uint32
}

func NewSpan(start, len uint32) Span {
	return Span{start, len}
}

func (s Span) Start() uint32 {
	return s.start
}

func (s Span) End() uint32 {
	return s.start + s.len
}

func (s Span) Len() uint32 {
	return s.len
}

type Node interface {
	Span() Span

	ChildNodes() iter.Seq[Node]

	privChildren() []Node

	UnparseTo(buf *bytes.Buffer)
}

func Unparse(node Node) string {
	var buf bytes.Buffer
	node.UnparseTo(&buf)
	return buf.String()
}

func Walk(node Node, walkFn func(Node) bool) {
	if node == nil || !walkFn(node) {
		return
	}
	for _, child := range node.privChildren() {
		Walk(child, walkFn)
	}
	walkFn(nil)
}

func iterChildren(childNodes []Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, child := range childNodes {
			if !yield(child) {
				return
			}
		}
	}
}

type leafNode struct{}

func (*leafNode) ChildNodes() iter.Seq[Node] {
	return func(_yield func(Node) bool) {}
}

func (*leafNode) privChildren() []Node {
	return nil
}

type branchNode struct {
	span       Span
	childNodes []Node
}

func (n *branchNode) Span() Span {
	return n.span
}

func (n *branchNode) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *branchNode) privChildren() []Node {
	return n.childNodes
}

func (n *branchNode) UnparseTo(buf *bytes.Buffer) {
	for _, childNode := range n.childNodes {
		childNode.UnparseTo(buf)
	}
}

type Space struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Space)(nil)

func (n *Space) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Space) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

type Newline struct {
	leafNode
	start uint32
	crlf  bool
}

var _ Node = (*Newline)(nil)

func (n *Newline) Span() Span {
	var len uint32
	if n.crlf {
		len = 2
	} else {
		len = 1
	}
	return Span{
		start: n.start,
		len:   len,
	}
}

func (n *Newline) UnparseTo(buf *bytes.Buffer) {
	if n.crlf {
		buf.WriteString("\r\n")
	} else {
		buf.WriteByte('\n')
	}
}

type Comment struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Comment)(nil)

func (n *Comment) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Comment) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func (n *Comment) Text() string {
	return n.raw
}

func (n *Comment) IsBlock() bool {
	return strings.HasPrefix(n.raw, "/*")
}

// Body is the comment text without its delimiters or surrounding space.
func (n *Comment) Body() string {
	if n.IsBlock() {
		return strings.TrimSpace(n.raw[2 : len(n.raw)-2])
	}
	return strings.TrimSpace(strings.TrimPrefix(n.raw, "//"))
}

type IntLit struct {
	leafNode
	raw   string
	value uint64
	neg   bool
	start uint32
}

var _ Node = (*IntLit)(nil)

func (n *IntLit) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *IntLit) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func newIntLit(token string, kind TokenKind, start uint32) (*IntLit, error) {
	base := 10
	valueStr := token
	neg := false
	if valueStr[0] == '-' {
		valueStr = valueStr[1:]
		neg = true
	}
	if kind == T_HEX_INT_LIT {
		base = 16
		valueStr = valueStr[2:]
	}

	value, err := strconv.ParseUint(valueStr, base, 64)
	if err != nil {
		return nil, errIntLitTooPositive(token, start)
	}
	if neg && value > uint64(math.MaxInt64)+1 {
		return nil, errIntLitTooNegative(token, start)
	}
	if value == 0 {
		neg = false
	}
	return &IntLit{
		raw:   token,
		value: value,
		neg:   neg,
		start: start,
	}, nil
}

func (n *IntLit) Raw() string {
	return n.raw
}

func (n *IntLit) IsNegative() bool {
	return n.neg
}

func (n *IntLit) GetUint32() (uint32, bool) {
	if !n.neg && n.value <= math.MaxUint32 {
		return uint32(n.value), true
	}
	return 0, false
}

func (n *IntLit) GetUint64() (uint64, bool) {
	if !n.neg {
		return n.value, true
	}
	return 0, false
}

func (n *IntLit) GetInt32() (int32, bool) {
	v, ok := n.GetInt64()
	if ok && v >= math.MinInt32 && v <= math.MaxInt32 {
		return int32(v), true
	}
	return 0, false
}

func (n *IntLit) GetInt64() (int64, bool) {
	if n.neg {
		return -int64(n.value), true
	}
	if n.value <= math.MaxInt64 {
		return int64(n.value), true
	}
	return 0, false
}

// GetFloat64 converts the literal for use as a floating-point default.
func (n *IntLit) GetFloat64() float64 {
	if n.neg {
		return -float64(n.value)
	}
	return float64(n.value)
}

type FloatLit struct {
	leafNode
	raw   string
	value float64
	start uint32
}

var _ Node = (*FloatLit)(nil)

func newFloatLit(token string, start uint32) (*FloatLit, error) {
	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return nil, errFloatLitOutOfRange(token, start)
	}
	return &FloatLit{
		raw:   token,
		value: value,
		start: start,
	}, nil
}

func (n *FloatLit) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *FloatLit) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func (n *FloatLit) Raw() string {
	return n.raw
}

func (n *FloatLit) Get() float64 {
	return n.value
}

type TextLit struct {
	leafNode
	raw   string
	value string
	start uint32
}

var _ Node = (*TextLit)(nil)

func (n *TextLit) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *TextLit) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func newTextLit(token string, start uint32, flags uint8) (*TextLit, error) {
	value := token[1 : len(token)-1]
	if flags&tokenFlagTextHasNoEscapes != 0 {
		return &TextLit{
			raw:   token,
			value: value,
			start: start,
		}, nil
	}

	invalid := func() (*TextLit, error) {
		return nil, errTextLitInvalid(start, token)
	}

	var buf bytes.Buffer
	escaped := false
	for len(value) > 0 {
		c := value[0]
		if !escaped {
			if c == '\\' {
				escaped = true
			} else {
				buf.WriteByte(c)
			}
			value = value[1:]
			continue
		}
		escaped = false

		switch c {
		case '"', '\'', '\\':
			buf.WriteByte(c)
			value = value[1:]
		case 'n':
			buf.WriteByte('\n')
			value = value[1:]
		case 'r':
			buf.WriteByte('\r')
			value = value[1:]
		case 't':
			buf.WriteByte('\t')
			value = value[1:]
		case '0':
			buf.WriteByte(0)
			value = value[1:]
		case 'x':
			if len(value) < 3 {
				return invalid()
			}
			b, err := strconv.ParseUint(value[1:3], 16, 8)
			if err != nil {
				return invalid()
			}
			buf.WriteByte(uint8(b))
			value = value[3:]
		case 'u':
			value = value[1:]
			if len(value) == 0 || value[0] != '{' {
				return invalid()
			}
			value = value[1:]

			end := strings.IndexByte(value, '}')
			if end <= 0 || end > 6 {
				return invalid()
			}
			scalar, err := strconv.ParseUint(value[:end], 16, 32)
			if err != nil || scalar > 0x10FFFF {
				return invalid()
			}
			value = value[end+1:]
			buf.WriteRune(rune(scalar))
		default:
			return invalid()
		}
	}
	if escaped {
		return invalid()
	}
	return &TextLit{
		raw:   token,
		value: buf.String(),
		start: start,
	}, nil
}

func (n *TextLit) Get() string {
	return n.value
}

type Sigil struct {
	leafNode
	raw   byte
	start uint32
}

var _ Node = (*Sigil)(nil)

func (n *Sigil) Span() Span {
	return Span{
		start: n.start,
		len:   1,
	}
}

func (n *Sigil) UnparseTo(buf *bytes.Buffer) {
	buf.WriteByte(n.raw)
}

type Ident struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Ident)(nil)

func (n *Ident) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Ident) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func (n *Ident) Get() string {
	return n.raw
}

type Keyword struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Keyword)(nil)

func (n *Keyword) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Keyword) UnparseTo(buf *bytes.Buffer) {
	buf.WriteString(n.raw)
}

func (n *Keyword) Get() string {
	return n.raw
}

// DottedName is a package or option name such as "demo.v1".
type DottedName struct {
	branchNode
	parts []*Ident
}

var _ Node = (*DottedName)(nil)

func (n *DottedName) Parts() []*Ident {
	return n.parts
}

func (n *DottedName) String() string {
	parts := make([]string, len(n.parts))
	for ii, part := range n.parts {
		parts[ii] = part.raw
	}
	return strings.Join(parts, ".")
}

// TypeName is a field type reference. A leading dot makes it absolute.
type TypeName struct {
	branchNode
	absolute bool
	parts    []*Ident
}

var _ Node = (*TypeName)(nil)

func (n *TypeName) IsAbsolute() bool {
	return n.absolute
}

func (n *TypeName) Parts() []*Ident {
	return n.parts
}

func (n *TypeName) String() string {
	var sb strings.Builder
	if n.absolute {
		sb.WriteByte('.')
	}
	for ii, part := range n.parts {
		if ii > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(part.raw)
	}
	return sb.String()
}

type Schema struct {
	branchNode
	decls    []Node
	syntaxes []*SyntaxDecl
	packages []*Package
	options  []*Option
	messages []*Message
	enums    []*Enum
}

var _ Node = (*Schema)(nil)

// Decls returns the top-level declarations in source order.
func (n *Schema) Decls() []Node {
	return n.decls
}

func (n *Schema) Syntaxes() []*SyntaxDecl {
	return n.syntaxes
}

func (n *Schema) Packages() []*Package {
	return n.packages
}

func (n *Schema) Options() []*Option {
	return n.options
}

func (n *Schema) Messages() []*Message {
	return n.messages
}

func (n *Schema) Enums() []*Enum {
	return n.enums
}

type SyntaxDecl struct {
	branchNode
	value *TextLit
}

var _ Node = (*SyntaxDecl)(nil)

func (n *SyntaxDecl) Value() *TextLit {
	return n.value
}

type Package struct {
	branchNode
	name *DottedName
}

var _ Node = (*Package)(nil)

func (n *Package) Name() *DottedName {
	return n.name
}

// Option is an `option name = value;` statement at schema or message level.
type Option struct {
	branchNode
	name  *DottedName
	value Node
}

var _ Node = (*Option)(nil)

func (n *Option) Name() *DottedName {
	return n.name
}

// Value is an *IntLit, *FloatLit, *TextLit or *Ident.
func (n *Option) Value() Node {
	return n.value
}

type Message struct {
	branchNode
	name     *Ident
	fields   []*Field
	messages []*Message
	enums    []*Enum
	options  []*Option
}

var _ Node = (*Message)(nil)

func (n *Message) Name() *Ident {
	return n.name
}

func (n *Message) Fields() []*Field {
	return n.fields
}

func (n *Message) Messages() []*Message {
	return n.messages
}

func (n *Message) Enums() []*Enum {
	return n.enums
}

func (n *Message) Options() []*Option {
	return n.options
}

type Field struct {
	branchNode
	label    *Keyword
	typeName *TypeName
	name     *Ident
	id       *IntLit
	options  []*FieldOption
	comment  *Comment
}

var _ Node = (*Field)(nil)

// Label is one of "required", "optional" or "repeated".
func (n *Field) Label() *Keyword {
	return n.label
}

func (n *Field) TypeName() *TypeName {
	return n.typeName
}

func (n *Field) Name() *Ident {
	return n.name
}

func (n *Field) ID() *IntLit {
	return n.id
}

func (n *Field) Options() []*FieldOption {
	return n.options
}

// Comment is the // comment following the field on the same line, if any.
func (n *Field) Comment() *Comment {
	return n.comment
}

type FieldOption struct {
	branchNode
	name  *Ident
	value Node
}

var _ Node = (*FieldOption)(nil)

func (n *FieldOption) Name() *Ident {
	return n.name
}

func (n *FieldOption) Value() Node {
	return n.value
}

type Enum struct {
	branchNode
	name  *Ident
	items []*EnumItem
}

var _ Node = (*Enum)(nil)

func (n *Enum) Name() *Ident {
	return n.name
}

func (n *Enum) Items() []*EnumItem {
	return n.items
}

type EnumItem struct {
	branchNode
	name    *Ident
	value   *IntLit
	comment *Comment
}

var _ Node = (*EnumItem)(nil)

func (n *EnumItem) Name() *Ident {
	return n.name
}

func (n *EnumItem) Value() *IntLit {
	return n.value
}

func (n *EnumItem) Comment() *Comment {
	return n.comment
}
