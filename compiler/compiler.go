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

// Package compiler resolves a parsed schema of either dialect into the IR.
//
// Compilation is two passes over a dialect-neutral declaration tree. The
// first registers every message and enum under its full name; the second
// resolves field types against that table and validates fields, options and
// enum values. Errors accumulate across both passes and a schema is only
// produced when there are none.
package compiler

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"strings"

	"go.tagwire.dev/tagwire"
	"go.tagwire.dev/tagwire/cborschema"
	"go.tagwire.dev/tagwire/ir"
	"go.tagwire.dev/tagwire/syntax"
)

const (
	knownSyntax = "proto2"
	viewHint    = "@view"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type CompileOption interface {
	apply(*CompileOptions)
}

type compileOption func(*CompileOptions)

func (f compileOption) apply(opts *CompileOptions) { f(opts) }

type CompileOptions struct {
	sourcePath string
	logger     *slog.Logger
}

// WithSourcePath records the path the schema was read from in the IR.
func WithSourcePath(sourcePath string) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.sourcePath = sourcePath
	})
}

// WithLogger enables debug records for each compiler pass.
func WithLogger(logger *slog.Logger) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.logger = logger
	})
}

type CompileResult struct {
	schema *ir.Schema

	Errors   []*Error
	Warnings []*Warning
}

// Schema is the compiled IR, or nil if there were errors.
func (r *CompileResult) Schema() *ir.Schema {
	return r.schema
}

func Compile(parsedSchema *syntax.Schema, opts ...CompileOption) CompileResult {
	return NewCompileOptions(opts...).Compile(parsedSchema)
}

func CompileCBOR(parsedSchema *cborschema.Schema, opts ...CompileOption) CompileResult {
	return NewCompileOptions(opts...).CompileCBOR(parsedSchema)
}

func NewCompileOptions(opts ...CompileOption) *CompileOptions {
	compileOptions := &CompileOptions{}
	for _, opt := range opts {
		opt.apply(compileOptions)
	}
	if compileOptions.logger == nil {
		compileOptions.logger = slog.New(slog.DiscardHandler)
	}
	return compileOptions
}

func (opts *CompileOptions) Compile(parsedSchema *syntax.Schema) CompileResult {
	return opts.compile(declsFromSyntax(parsedSchema))
}

func (opts *CompileOptions) CompileCBOR(parsedSchema *cborschema.Schema) CompileResult {
	return opts.compile(declsFromCBOR(parsedSchema))
}

func (opts *CompileOptions) compile(decls *schemaDecl) CompileResult {
	c := compiler{
		opts:  opts,
		decls: decls,
		log:   opts.logger.With(slog.String("dialect", decls.dialect.String())),
	}
	c.compileSchema()

	if decls.dialect == ir.DialectProto {
		sortByLoc(c.errors, func(err *Error) loc { return err.loc }, func(err *Error) uint32 { return err.code })
		sortByLoc(c.warnings, func(w *Warning) loc { return w.loc }, func(w *Warning) uint32 { return w.code })
	}

	if len(c.errors) > 0 {
		c.log.Debug("compilation failed",
			slog.Int("errors", len(c.errors)),
			slog.Int("warnings", len(c.warnings)),
		)
		return CompileResult{
			Errors:   c.errors,
			Warnings: c.warnings,
		}
	}
	schema := c.buildSchema()
	if err := schema.Link(); err != nil {
		// Every type name was resolved in pass 2.
		panic(err)
	}
	return CompileResult{
		schema:   schema,
		Warnings: c.warnings,
	}
}

// Proto dialect diagnostics are ordered by position. CBOR dialect ones have
// no byte offsets and are left in the order they were found.
func sortByLoc[T any](items []T, locOf func(T) loc, codeOf func(T) uint32) {
	slices.SortStableFunc(items, func(a, b T) int {
		if x := cmp.Compare(locOf(a).span.Start(), locOf(b).span.Start()); x != 0 {
			return x
		}
		return cmp.Compare(codeOf(a), codeOf(b))
	})
}

type symbolKind uint8

const (
	symMessage symbolKind = iota
	symEnum
	symEnumValue
	symPackage
)

type symbol struct {
	kind    symbolKind
	message *messageDecl
	enum    *enumDecl
}

func (s *symbol) describe() string {
	switch s.kind {
	case symEnumValue:
		return "an enum value"
	case symPackage:
		return "a package"
	}
	return "a type"
}

type compiler struct {
	opts     *CompileOptions
	decls    *schemaDecl
	log      *slog.Logger
	errors   []*Error
	warnings []*Warning

	// Set by compileHeader()
	syntax  string
	pkg     string
	options []*ir.Option

	// Set by registerDecls()
	symbols  map[string]*symbol
	messages []*messageDecl
	enums    []*enumDecl

	// Set by compileDecls()
	irMessages map[*messageDecl]*ir.Message
	irEnums    map[*enumDecl]*ir.Enum
	enumValues map[*enumDecl]map[string]uint32
}

func (c *compiler) err(err *Error) {
	c.errors = append(c.errors, err)
}

func (c *compiler) warn(warning *Warning) {
	c.warnings = append(c.warnings, warning)
}

func (c *compiler) compileSchema() {
	c.compileHeader()
	c.registerDecls()
	c.log.Debug("registered declarations",
		slog.String("package", c.pkg),
		slog.Int("messages", len(c.messages)),
		slog.Int("enums", len(c.enums)),
	)
	c.compileDecls()
	c.log.Debug("resolved declarations", slog.Int("errors", len(c.errors)))
}

func (c *compiler) compileHeader() {
	for ii, lit := range c.decls.syntaxes {
		if ii > 0 {
			c.warn(warnDuplicateOption("syntax", lit.loc))
		}
		c.syntax = lit.text
		if c.decls.dialect == ir.DialectProto && lit.text != knownSyntax {
			c.warn(warnUnknownSyntax(lit.text, lit.loc))
		}
	}

	for ii, pkg := range c.decls.packages {
		if ii > 0 {
			c.err(errInvalidPackage(pkg.name, "package already declared", pkg.loc))
			continue
		}
		if !isDottedIdent(pkg.name) {
			c.err(errInvalidPackage(pkg.name, "expected dot-separated identifiers", pkg.loc))
			continue
		}
		c.pkg = pkg.name
	}

	c.options = c.compileOptions(c.decls.options)
}

func (c *compiler) compileOptions(decls []*optionDecl) []*ir.Option {
	var out []*ir.Option
	seen := make(map[string]int)
	for _, decl := range decls {
		value := decl.value.raw
		if decl.value.kind == litText {
			value = decl.value.text
		}
		if idx, dup := seen[decl.name.name]; dup {
			c.warn(warnDuplicateOption(decl.name.name, decl.name.loc))
			out[idx].Value = value
			continue
		}
		seen[decl.name.name] = len(out)
		out = append(out, &ir.Option{Name: decl.name.name, Value: value})
	}
	return out
}

func isDottedIdent(name string) bool {
	for _, part := range strings.Split(name, ".") {
		if !identPattern.MatchString(part) {
			return false
		}
	}
	return true
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

// registerDecls is pass 1: every message and enum, nested ones included,
// enters the symbol table under its full name.
func (c *compiler) registerDecls() {
	c.symbols = make(map[string]*symbol)
	for _, msg := range c.decls.messages {
		c.registerMessage(msg, c.pkg)
	}
	for _, enum := range c.decls.enums {
		c.registerEnum(enum, c.pkg)
	}

	// Enum values live in the scope enclosing their enum, and package
	// prefixes are names too. Neither may be used as a type, and neither
	// takes precedence over a declaration.
	for _, enum := range c.enums {
		scope := enum.fullName[:max(0, strings.LastIndexByte(enum.fullName, '.'))]
		for _, item := range enum.items {
			name := qualify(scope, item.name.name)
			if _, exists := c.symbols[name]; !exists {
				c.symbols[name] = &symbol{kind: symEnumValue, enum: enum}
			}
		}
	}
	if c.pkg != "" {
		parts := strings.Split(c.pkg, ".")
		for ii := range parts {
			name := strings.Join(parts[:ii+1], ".")
			if _, exists := c.symbols[name]; !exists {
				c.symbols[name] = &symbol{kind: symPackage}
			}
		}
	}
}

func (c *compiler) registerName(name *nameDecl, what, fullName string, sym *symbol) {
	if !identPattern.MatchString(name.name) {
		c.err(errInvalidIdentifier(what, name.name, name.loc))
	}
	if _, conflict := c.symbols[fullName]; conflict {
		c.err(errDeclNameConflict(fullName, name.loc))
	} else {
		c.symbols[fullName] = sym
	}
	if _, shadow := ir.ScalarKind(name.name); shadow {
		c.warn(warnDeclShadowsScalar(name.name, name.loc))
	}
}

func (c *compiler) registerMessage(msg *messageDecl, scope string) {
	msg.scope = scope
	msg.fullName = qualify(scope, msg.name.name)
	c.registerName(&msg.name, "message", msg.fullName, &symbol{kind: symMessage, message: msg})
	c.messages = append(c.messages, msg)
	for _, child := range msg.messages {
		c.registerMessage(child, msg.fullName)
	}
	for _, enum := range msg.enums {
		c.registerEnum(enum, msg.fullName)
	}
}

func (c *compiler) registerEnum(enum *enumDecl, scope string) {
	enum.fullName = qualify(scope, enum.name.name)
	c.registerName(&enum.name, "enum", enum.fullName, &symbol{kind: symEnum, enum: enum})
	c.enums = append(c.enums, enum)
}

// compileDecls is pass 2. Enums go first so that enum defaults can be
// checked against the values of the enum they name.
func (c *compiler) compileDecls() {
	c.irMessages = make(map[*messageDecl]*ir.Message, len(c.messages))
	c.irEnums = make(map[*enumDecl]*ir.Enum, len(c.enums))
	c.enumValues = make(map[*enumDecl]map[string]uint32, len(c.enums))
	for _, enum := range c.enums {
		c.irEnums[enum] = c.compileEnum(enum)
	}
	for _, msg := range c.messages {
		c.irMessages[msg] = c.compileMessage(msg)
	}
}

func (c *compiler) compileEnum(decl *enumDecl) *ir.Enum {
	enum := &ir.Enum{
		Name:     decl.name.name,
		FullName: decl.fullName,
	}
	values := make(map[string]uint32, len(decl.items))
	namesByValue := make(map[uint32]string, len(decl.items))
	for _, item := range decl.items {
		name := item.name.name
		if !identPattern.MatchString(name) {
			c.err(errInvalidIdentifier("enum item", name, item.name.loc))
		}
		if _, conflict := values[name]; conflict {
			c.err(errEnumItemNameConflict(decl.fullName, name, item.name.loc))
			continue
		}

		lit := item.value
		if lit.kind != litInt || !lit.u64ok || lit.u64 > math.MaxUint32 {
			c.err(errEnumValueOutOfRange(lit.raw, lit.loc))
			values[name] = 0
			continue
		}
		number := uint32(lit.u64)
		if prev, dup := namesByValue[number]; dup {
			c.warn(warnDuplicateEnumValue(decl.fullName, name, number, prev, lit.loc))
		} else {
			namesByValue[number] = name
		}
		values[name] = number
		enum.Values = append(enum.Values, &ir.EnumValue{Name: name, Number: number})
	}
	c.enumValues[decl] = values
	return enum
}

func (c *compiler) compileMessage(decl *messageDecl) *ir.Message {
	msg := &ir.Message{
		Name:     decl.name.name,
		FullName: decl.fullName,
		Options:  c.compileOptions(decl.options),
	}
	if len(decl.fields) == 0 {
		c.warn(warnEmptyMessage(decl.fullName, decl.name.loc))
	}

	names := make(map[string]struct{}, len(decl.fields))
	ids := make(map[uint32]string, len(decl.fields))
	for _, fieldDecl := range decl.fields {
		name := fieldDecl.name.name
		if !identPattern.MatchString(name) {
			c.err(errInvalidIdentifier("field", name, fieldDecl.name.loc))
		}
		if _, conflict := names[name]; conflict {
			c.err(errFieldNameConflict(decl.fullName, name, fieldDecl.name.loc))
		}
		names[name] = struct{}{}

		field, ok := c.compileField(decl, fieldDecl)
		if field.ID != 0 {
			if prev, dup := ids[field.ID]; dup {
				c.err(errDuplicateFieldID(decl.fullName, field.ID, prev, fieldDecl.id.loc))
			} else {
				ids[field.ID] = name
			}
		}
		if ok {
			msg.Fields = append(msg.Fields, field)
		}
	}
	return msg
}

// compileField reports false if the field is invalid. The returned field
// is never nil, and its ID is set whenever the declared id was valid.
func (c *compiler) compileField(msg *messageDecl, decl *fieldDecl) (*ir.Field, bool) {
	ok, typeOK := true, true
	field := &ir.Field{
		Name:  decl.name.name,
		Label: decl.label,
	}

	id := decl.id
	if id.kind != litInt || !id.u64ok || id.u64 == 0 || id.u64 > uint64(tagwire.MaxFieldID) {
		c.err(errFieldIDOutOfRange(id.raw, id.loc))
		ok = false
	} else {
		field.ID = uint32(id.u64)
	}

	var enum *enumDecl
	if kind, scalar := c.scalarKind(decl.typeName.name); scalar {
		field.Kind = kind
	} else if sym, err := c.resolveType(msg, &decl.typeName); err != nil {
		c.err(err)
		typeOK = false
	} else if sym.kind == symMessage {
		field.Kind = ir.KindMessage
		field.TypeName = sym.message.fullName
	} else {
		field.Kind = ir.KindEnum
		field.TypeName = sym.enum.fullName
		enum = sym.enum
	}

	if comment := decl.comment; comment != nil {
		field.Comment = comment.name
		if hasViewHint(comment.name) {
			if field.Kind == ir.KindBytes || field.Kind == ir.KindString {
				field.View = true
			} else if typeOK {
				c.warn(warnViewOnNonBytes(field.Name, field.Kind, comment.loc))
			}
		}
	}

	if !c.compileFieldOptions(field, decl, enum, typeOK) {
		ok = false
	}
	return field, ok && typeOK
}

func hasViewHint(comment string) bool {
	for _, word := range strings.Fields(comment) {
		if word == viewHint {
			return true
		}
	}
	return false
}

// Scalar names take precedence over declarations, except when written
// absolute or dotted.
func (c *compiler) scalarKind(name string) (ir.Kind, bool) {
	if strings.Contains(name, ".") {
		return ir.KindInvalid, false
	}
	return ir.ScalarKind(name)
}

// resolveType searches for name from the innermost enclosing message
// outward to the package root. A leading dot makes the name absolute.
func (c *compiler) resolveType(msg *messageDecl, name *nameDecl) (*symbol, *Error) {
	var sym *symbol
	if absolute, ok := strings.CutPrefix(name.name, "."); ok {
		sym = c.symbols[absolute]
	} else {
		scope := msg.fullName
		for {
			if found, ok := c.symbols[qualify(scope, name.name)]; ok {
				sym = found
				break
			}
			if scope == "" {
				break
			}
			scope = scope[:max(0, strings.LastIndexByte(scope, '.'))]
		}
	}

	if sym == nil {
		return nil, errUnknownType(name.name, msg.fullName, name.loc)
	}
	if sym.kind != symMessage && sym.kind != symEnum {
		return nil, errResolvedNameNotType(name.name, sym.describe(), name.loc)
	}
	return sym, nil
}

// compileFieldOptions applies packed and default. It reports false if any
// option was invalid.
func (c *compiler) compileFieldOptions(
	field *ir.Field,
	decl *fieldDecl,
	enum *enumDecl,
	typeOK bool,
) bool {
	ok := true
	seen := make(map[string]struct{})
	for _, option := range decl.options {
		name := option.name.name
		if _, dup := seen[name]; dup {
			c.warn(warnDuplicateOption(name, option.name.loc))
		}
		seen[name] = struct{}{}

		switch name {
		case "packed":
			packed, isBool := option.value.boolValue()
			if !isBool {
				c.err(errPackedNotBool(option.value.raw, option.value.loc))
				ok = false
				continue
			}
			if packed && typeOK && (!field.Repeated() || !field.Kind.IsFixedWidth()) {
				c.err(errInvalidPacked(field.Name, field.Label, field.Kind, option.value.loc))
				ok = false
				continue
			}
			field.Packed = packed
		case "default":
			if !typeOK {
				continue
			}
			if field.Repeated() {
				c.err(errDefaultOnRepeated(field.Name, option.value.loc))
				ok = false
				continue
			}
			if field.Kind == ir.KindMessage {
				c.err(errDefaultOnMessage(field.Name, option.value.loc))
				ok = false
				continue
			}
			def, err := c.compileDefault(field.Kind, enum, option.value)
			if err != nil {
				c.err(err)
				ok = false
				continue
			}
			field.Default = def
		default:
			c.err(errUnknownFieldOption(name, option.name.loc))
			ok = false
		}
	}
	return ok
}

func (c *compiler) compileDefault(kind ir.Kind, enum *enumDecl, lit *literal) (*ir.Default, *Error) {
	def := &ir.Default{Raw: lit.raw}
	invalid := func(reason string) (*ir.Default, *Error) {
		return nil, errInvalidDefault(lit.raw, kind, reason, lit.loc)
	}
	expectInt := func() bool {
		return lit.kind == litInt
	}

	switch kind {
	case ir.KindInt32, ir.KindSint32, ir.KindSfixed32:
		if !expectInt() {
			return invalid("expected an integer")
		}
		if !lit.i64ok || lit.i64 < math.MinInt32 || lit.i64 > math.MaxInt32 {
			return invalid("out of range")
		}
		def.Int = lit.i64
	case ir.KindInt64, ir.KindSint64, ir.KindSfixed64:
		if !expectInt() {
			return invalid("expected an integer")
		}
		if !lit.i64ok {
			return invalid("out of range")
		}
		def.Int = lit.i64
	case ir.KindUint32, ir.KindFixed32:
		if !expectInt() {
			return invalid("expected an integer")
		}
		if !lit.u64ok || lit.u64 > math.MaxUint32 {
			return invalid("out of range")
		}
		def.Uint = lit.u64
	case ir.KindUint64, ir.KindFixed64:
		if !expectInt() {
			return invalid("expected an integer")
		}
		if !lit.u64ok {
			return invalid("out of range")
		}
		def.Uint = lit.u64
	case ir.KindFloat, ir.KindDouble:
		switch {
		case lit.kind == litInt || lit.kind == litFloat:
			def.Float = lit.f64
		case lit.kind == litIdent && lit.raw == "inf":
			def.Float = math.Inf(1)
		case lit.kind == litIdent && lit.raw == "nan":
			def.Float = math.NaN()
		default:
			return invalid("expected a number")
		}
		if kind == ir.KindFloat && !math.IsInf(def.Float, 0) && math.Abs(def.Float) > math.MaxFloat32 {
			return invalid("out of range")
		}
	case ir.KindBool:
		value, isBool := lit.boolValue()
		if !isBool {
			return invalid("expected true or false")
		}
		def.Bool = value
	case ir.KindString, ir.KindBytes:
		if lit.kind != litText {
			return invalid("expected a text literal")
		}
		def.Text = lit.text
	case ir.KindEnum:
		name := lit.raw
		switch {
		case lit.kind == litIdent:
		case lit.kind == litText && c.decls.dialect == ir.DialectCBOR:
			name = lit.text
		default:
			return invalid("expected an enum item name")
		}
		number, found := c.enumValues[enum][name]
		if !found {
			return invalid("no item named '" + name + "' in enum '" + enum.fullName + "'")
		}
		def.Enum = name
		def.Uint = uint64(number)
	default:
		return invalid("no default allowed")
	}
	return def, nil
}

func (c *compiler) buildSchema() *ir.Schema {
	schema := &ir.Schema{
		Dialect:    c.decls.dialect,
		Syntax:     c.syntax,
		Package:    c.pkg,
		Options:    c.options,
		SourcePath: c.opts.sourcePath,
	}
	for _, msg := range c.decls.messages {
		schema.Messages = append(schema.Messages, c.buildMessage(msg))
	}
	for _, enum := range c.decls.enums {
		schema.Enums = append(schema.Enums, c.irEnums[enum])
	}
	c.log.LogAttrs(context.Background(), slog.LevelDebug, "built schema",
		slog.String("package", schema.Package),
		slog.Int("messages", len(c.messages)),
		slog.Int("warnings", len(c.warnings)),
	)
	return schema
}

func (c *compiler) buildMessage(decl *messageDecl) *ir.Message {
	msg := c.irMessages[decl]
	for _, child := range decl.messages {
		msg.Messages = append(msg.Messages, c.buildMessage(child))
	}
	for _, enum := range decl.enums {
		msg.Enums = append(msg.Enums, c.irEnums[enum])
	}
	return msg
}
