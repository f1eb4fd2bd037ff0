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

// Package golang generates Go source from a compiled schema.
//
// Each message becomes a struct with a constructor, Clear, getters that
// honor declared defaults, and a codec for the schema's dialect. Each enum
// becomes a uint32-backed named type with constants and a String method.
package golang

import (
	"fmt"
	"go/format"
	"path"
	"strings"
	"unicode"

	"go.tagwire.dev/tagwire/codec"
	"go.tagwire.dev/tagwire/encoding/ircbor"
	"go.tagwire.dev/tagwire/ir"
)

const (
	runtimeImport = "go.tagwire.dev/tagwire"
	cborImport    = "go.tagwire.dev/tagwire/cborwire"

	defaultPackage = "tagwirepb"
	fileSuffix     = ".tagwire.go"
)

type Options struct {
	// Package is the name of the generated package. When empty it comes
	// from the go_package option or the last component of the schema
	// package.
	Package string

	// Fingerprint, if set, is recorded in the file header.
	Fingerprint string
}

type File struct {
	Path    []string
	Content []byte
}

// Generate emits one Go file for schema. The rules must have been derived
// from the same schema.
func Generate(schema *ir.Schema, rules *codec.Rules, opts Options) (*File, error) {
	g := &generator{
		schema:  schema,
		rules:   rules,
		opts:    opts,
		goPkg:   goPackage(schema, opts.Package),
		imports: make(map[string]bool),
		types:   make(map[string]string),
	}
	if err := g.nameTypes(); err != nil {
		return nil, err
	}
	g.emitFile()

	src, err := format.Source(g.output())
	if err != nil {
		return nil, fmt.Errorf("golang: generated source does not parse: %w", err)
	}
	return &File{
		Path:    []string{g.fileName()},
		Content: src,
	}, nil
}

// HandleRequest runs the generator for a plugin request. Failures are
// reported in the response, never as a Go error, so that plugin hosts can
// relay them.
func HandleRequest(req *ircbor.CodegenRequest) *ircbor.CodegenResponse {
	file, err := Generate(req.Schema, codec.Derive(req.Schema), Options{
		Package:     req.Package,
		Fingerprint: req.Fingerprint,
	})
	if err != nil {
		return &ircbor.CodegenResponse{Error: err.Error()}
	}
	return &ircbor.CodegenResponse{
		OutputFiles: []*ircbor.OutputFile{{
			Path:    file.Path,
			Content: file.Content,
		}},
	}
}

func goPackage(schema *ir.Schema, override string) string {
	name := override
	if name == "" {
		for _, opt := range schema.Options {
			if opt.Name == "go_package" {
				name = path.Base(opt.Value)
			}
		}
	}
	if name == "" && schema.Package != "" {
		parts := strings.Split(schema.Package, ".")
		name = parts[len(parts)-1]
	}
	name = sanitizePackage(name)
	if name == "" {
		return defaultPackage
	}
	return name
}

func sanitizePackage(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		if r == '_' || unicode.IsLetter(r) || (unicode.IsDigit(r) && sb.Len() > 0) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func (g *generator) fileName() string {
	if g.schema.SourcePath != "" {
		base := path.Base(g.schema.SourcePath)
		if ext := path.Ext(base); ext != "" {
			base = strings.TrimSuffix(base, ext)
		}
		if base != "" && base != "." && base != "/" {
			return base + fileSuffix
		}
	}
	return g.goPkg + fileSuffix
}

// goName converts a schema identifier to an exported Go identifier:
// "packed_ids" becomes "PackedIds".
func goName(name string) string {
	var sb strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		sb.WriteString(string(runes))
	}
	out := sb.String()
	if out == "" || !unicode.IsLetter([]rune(out)[0]) {
		out = "X" + out
	}
	return out
}

// typeName joins the names of a declaration and its enclosing messages:
// demo.Person.Address becomes Person_Address.
func typeName(pkg, fullName string) string {
	rel := fullName
	if pkg != "" {
		rel = strings.TrimPrefix(fullName, pkg+".")
	}
	parts := strings.Split(rel, ".")
	for ii, part := range parts {
		parts[ii] = goName(part)
	}
	return strings.Join(parts, "_")
}

// Method names generated on every message. Fields whose Go name collides
// with one of these get a trailing underscore.
var reservedNames = map[string]bool{
	"Clear":         true,
	"Marshal":       true,
	"EncodeTagwire": true,
	"DecodeTagwire": true,
	"String":        true,
}

func (g *generator) nameTypes() error {
	seen := make(map[string]string)
	claim := func(fullName string) error {
		name := typeName(g.schema.Package, fullName)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("golang: %s and %s both map to Go type %s", prev, fullName, name)
		}
		seen[name] = fullName
		g.types[fullName] = name
		return nil
	}
	for _, msg := range g.schema.AllMessages() {
		if err := claim(msg.FullName); err != nil {
			return err
		}
	}
	for _, enum := range g.schema.AllEnums() {
		if err := claim(enum.FullName); err != nil {
			return err
		}
	}
	return g.claimIdents()
}

// claimIdents checks the package-level names derived from each type, such
// as the constructor of message Foo against a message named NewFoo.
func (g *generator) claimIdents() error {
	owners := make(map[string]string)
	claim := func(ident, owner string) error {
		if prev, ok := owners[ident]; ok {
			return fmt.Errorf("golang: %s and %s both map to Go identifier %s", prev, owner, ident)
		}
		owners[ident] = owner
		return nil
	}
	for _, msg := range g.schema.AllMessages() {
		if err := claim(g.types[msg.FullName], msg.FullName); err != nil {
			return err
		}
	}
	for _, enum := range g.schema.AllEnums() {
		if err := claim(g.types[enum.FullName], enum.FullName); err != nil {
			return err
		}
	}
	for _, msg := range g.schema.AllMessages() {
		typ := g.types[msg.FullName]
		derived := []string{"New" + typ, "Unmarshal" + typ}
		if g.schema.Dialect != ir.DialectCBOR {
			derived = append(derived, "_"+typ+"_fields")
		}
		for _, ident := range derived {
			if err := claim(ident, msg.FullName); err != nil {
				return err
			}
		}
	}
	for _, enum := range g.schema.AllEnums() {
		typ := g.types[enum.FullName]
		for _, value := range enum.Values {
			if err := claim(typ+"_"+value.Name, enum.FullName+"."+value.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func fieldNames(msg *ir.Message) map[uint32]string {
	out := make(map[uint32]string, len(msg.Fields))
	taken := make(map[string]bool)
	for _, field := range msg.Fields {
		name := goName(field.Name)
		for reservedNames[name] || taken[name] || isGetter(msg, name) {
			name += "_"
		}
		taken[name] = true
		out[field.ID] = name
	}
	return out
}

// isGetter reports whether name would collide with the getter of another
// field, such as a field "get_id" next to a field "id".
func isGetter(msg *ir.Message, name string) bool {
	rest, ok := strings.CutPrefix(name, "Get")
	if !ok || rest == "" {
		return false
	}
	for _, field := range msg.Fields {
		if goName(field.Name) == rest {
			return true
		}
	}
	return false
}
