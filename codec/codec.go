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

// Package codec derives the per-field wire rules of a schema. A Plan is the
// decode dispatch table of one message: emitters and the dynamic codec look
// up rules by field id instead of switching over ids.
package codec

import (
	"fmt"
	"strings"

	"go.tagwire.dev/tagwire"
	"go.tagwire.dev/tagwire/ir"
)

type Container uint8

const (
	// ContainerSingle holds zero or one value.
	ContainerSingle Container = iota

	// ContainerSequence holds an ordered sequence of values.
	ContainerSequence
)

func (c Container) String() string {
	if c == ContainerSequence {
		return "sequence"
	}
	return "single"
}

type Encoding uint8

const (
	EncodingPlain Encoding = iota
	EncodingZigzag
	EncodingFixed
)

func (e Encoding) String() string {
	switch e {
	case EncodingPlain:
		return "PLAIN"
	case EncodingZigzag:
		return "ZIGZAG"
	case EncodingFixed:
		return "FIXED"
	default:
		return fmt.Sprintf("Encoding(%d)", uint8(e))
	}
}

type Rule struct {
	Field     *ir.Field
	Container Container

	// Wire is the wire type of a single element.
	Wire     tagwire.WireType
	Encoding Encoding
	Packed   bool

	// Default is the value a fresh or cleared field holds, as returned by
	// ir.Default.Value, or nil.
	Default any

	Message *Plan
	Enum    *ir.Enum
	View    bool
}

// FieldWireType is the wire type the encoder writes for this field.
func (r *Rule) FieldWireType() tagwire.WireType {
	if r.Packed {
		return tagwire.WireBytes
	}
	return r.Wire
}

// Accepts reports whether a decoder should take an occurrence of this field
// with wire type wt. Repeated scalars accept both packed and unpacked forms.
func (r *Rule) Accepts(wt tagwire.WireType) bool {
	if wt == r.Wire {
		return true
	}
	return r.Container == ContainerSequence && wt == tagwire.WireBytes && r.Wire != tagwire.WireBytes
}

func (r *Rule) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %s %s %s", r.Field.ID, r.Container, r.Wire, r.Encoding)
	if r.Packed {
		sb.WriteString(" packed")
	}
	if r.Default != nil {
		fmt.Fprintf(&sb, " default=%s", r.Field.Default.Raw)
	}
	if r.View {
		sb.WriteString(" view")
	}
	return sb.String()
}

type Plan struct {
	Message *ir.Message
	Rules   []*Rule

	byID   map[uint32]*Rule
	byName map[string]*Rule
}

func (p *Plan) Lookup(id uint32) (*Rule, bool) {
	r, ok := p.byID[id]
	return r, ok
}

func (p *Plan) Field(name string) (*Rule, bool) {
	r, ok := p.byName[name]
	return r, ok
}

// Path resolves a dotted field name such as "owner.address.city" to the ids
// of each step. Every step but the last must be a message field.
func (p *Plan) Path(path string) ([]uint32, error) {
	if path == "" {
		return nil, fmt.Errorf("empty field path")
	}
	var ids []uint32
	plan := p
	for ii, name := range strings.Split(path, ".") {
		if plan == nil {
			return nil, fmt.Errorf("field path %q: %q is not a message field", path, strings.Join(strings.Split(path, ".")[:ii], "."))
		}
		rule, ok := plan.byName[name]
		if !ok {
			return nil, fmt.Errorf("field path %q: message %s has no field %q", path, plan.Message.FullName, name)
		}
		ids = append(ids, rule.Field.ID)
		plan = rule.Message
	}
	return ids, nil
}

type Rules struct {
	plans map[string]*Plan
	order []*Plan
}

func (rs *Rules) Plan(fullName string) *Plan {
	return rs.plans[fullName]
}

// Plans returns the plan of every message in declaration order.
func (rs *Rules) Plans() []*Plan {
	return rs.order
}

// Derive builds the rules of every message in a compiled schema. The schema
// must be linked.
func Derive(schema *ir.Schema) *Rules {
	rs := &Rules{
		plans: make(map[string]*Plan),
	}
	for _, msg := range schema.AllMessages() {
		plan := &Plan{
			Message: msg,
			byID:    make(map[uint32]*Rule, len(msg.Fields)),
			byName:  make(map[string]*Rule, len(msg.Fields)),
		}
		rs.plans[msg.FullName] = plan
		rs.order = append(rs.order, plan)
	}
	for _, plan := range rs.order {
		for _, field := range plan.Message.Fields {
			rule := deriveRule(rs, field)
			plan.Rules = append(plan.Rules, rule)
			plan.byID[field.ID] = rule
			plan.byName[field.Name] = rule
		}
	}
	return rs
}

func deriveRule(rs *Rules, field *ir.Field) *Rule {
	rule := &Rule{
		Field:  field,
		Packed: field.Packed,
		View:   field.View,
		Enum:   field.Enum,
	}
	if field.Repeated() {
		rule.Container = ContainerSequence
	}
	rule.Wire, rule.Encoding = WireEncoding(field.Kind)
	if field.Message != nil {
		rule.Message = rs.plans[field.Message.FullName]
	}
	if field.Default != nil {
		rule.Default = field.Default.Value(field.Kind)
	}
	return rule
}

// WireEncoding maps a kind to its element wire type and numeric encoding.
func WireEncoding(kind ir.Kind) (tagwire.WireType, Encoding) {
	switch kind {
	case ir.KindInt32, ir.KindUint32, ir.KindInt64, ir.KindUint64, ir.KindBool, ir.KindEnum:
		return tagwire.WireVarint, EncodingPlain
	case ir.KindSint32, ir.KindSint64:
		return tagwire.WireVarint, EncodingZigzag
	case ir.KindFixed32, ir.KindSfixed32, ir.KindFloat:
		return tagwire.WireFixed32, EncodingFixed
	case ir.KindFixed64, ir.KindSfixed64, ir.KindDouble:
		return tagwire.WireFixed64, EncodingFixed
	case ir.KindString, ir.KindBytes, ir.KindMessage:
		return tagwire.WireBytes, EncodingPlain
	}
	panic(fmt.Sprintf("codec: no wire encoding for %v", kind))
}
