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

// Package ircbor is the interchange encoding of a compiled schema: the IR as
// deterministic CBOR, plus the request and response messages exchanged with
// code generator plugins.
package ircbor

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"go.tagwire.dev/tagwire/cborwire"
	"go.tagwire.dev/tagwire/ir"
)

func Marshal(schema *ir.Schema) ([]byte, error) {
	return cborwire.Marshal(schema)
}

// Unmarshal decodes and links a schema.
func Unmarshal(data []byte) (*ir.Schema, error) {
	var schema ir.Schema
	if err := cborwire.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("ircbor: %w", err)
	}
	if err := schema.Link(); err != nil {
		return nil, fmt.Errorf("ircbor: %w", err)
	}
	return &schema, nil
}

type Fingerprint [32]byte

func (fp Fingerprint) String() string {
	return hex.EncodeToString(fp[:])
}

// Compute hashes the deterministic encoding of schema. Schemas that differ
// only in their source path share a fingerprint.
func Compute(schema *ir.Schema) (Fingerprint, error) {
	stripped := *schema
	stripped.SourcePath = ""
	data, err := Marshal(&stripped)
	if err != nil {
		return Fingerprint{}, err
	}
	return blake3.Sum256(data), nil
}

type CodegenRequest struct {
	Schema *ir.Schema `cbor:"1,keyasint"`

	// Package overrides the name of the generated package.
	Package string `cbor:"2,keyasint,omitempty"`

	// Fingerprint of Schema, stamped into generated headers.
	Fingerprint string `cbor:"3,keyasint,omitempty"`
}

type OutputFile struct {
	// Path components, relative to the output directory.
	Path    []string `cbor:"1,keyasint"`
	Content []byte   `cbor:"2,keyasint"`
}

type CodegenResponse struct {
	OutputFiles []*OutputFile `cbor:"1,keyasint,omitempty"`
	Error       string        `cbor:"2,keyasint,omitempty"`
}

func NewCodegenRequest(schema *ir.Schema, pkg string) (*CodegenRequest, error) {
	fp, err := Compute(schema)
	if err != nil {
		return nil, err
	}
	return &CodegenRequest{
		Schema:      schema,
		Package:     pkg,
		Fingerprint: fp.String(),
	}, nil
}

func MarshalRequest(req *CodegenRequest) ([]byte, error) {
	return cborwire.Marshal(req)
}

func UnmarshalRequest(data []byte) (*CodegenRequest, error) {
	var req CodegenRequest
	if err := cborwire.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("ircbor: request: %w", err)
	}
	if req.Schema == nil {
		return nil, fmt.Errorf("ircbor: request has no schema")
	}
	if err := req.Schema.Link(); err != nil {
		return nil, fmt.Errorf("ircbor: request: %w", err)
	}
	return &req, nil
}

func MarshalResponse(resp *CodegenResponse) ([]byte, error) {
	return cborwire.Marshal(resp)
}

func UnmarshalResponse(data []byte) (*CodegenResponse, error) {
	var resp CodegenResponse
	if err := cborwire.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("ircbor: response: %w", err)
	}
	return &resp, nil
}
