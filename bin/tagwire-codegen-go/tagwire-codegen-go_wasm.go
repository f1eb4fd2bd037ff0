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

package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"go.tagwire.dev/tagwire/codegen/golang"
	"go.tagwire.dev/tagwire/encoding/ircbor"
)

var buffers = make(map[*uint8][]uint8)

//go:export tagwire_codegen_allocate
func tagwireCodegenAllocate(len uint32) *uint8 {
	if len > math.MaxInt32 {
		return nil
	}
	buf := make([]uint8, int(len))
	ptr := unsafe.SliceData(buf)
	buffers[ptr] = buf
	return ptr
}

//go:export tagwire_codegen_deallocate
func tagwireCodegenDeallocate(ptr *uint8) {
	delete(buffers, ptr)
}

// The request is framed by a little-endian uint32 length. The response is
// written with the same framing and its address stored in *responsePtrPtr.
//
//go:export tagwire_codegen_generate/go
func tagwireCodegenGenerateGo(requestPtr *uint8, responsePtrPtr **uint8) uint8 {
	requestLen := binary.LittleEndian.Uint32(unsafe.Slice(requestPtr, 4))
	payloadPtr := (*uint8)(unsafe.Add(unsafe.Pointer(requestPtr), 4))
	requestBuf := unsafe.Slice(payloadPtr, requestLen)

	request, err := ircbor.UnmarshalRequest(requestBuf)
	if err != nil {
		return respond(responsePtrPtr, &ircbor.CodegenResponse{
			Error: fmt.Sprintf("Decode[CodegenRequest]: %v", err),
		})
	}
	return respond(responsePtrPtr, golang.HandleRequest(request))
}

func respond(responsePtrPtr **uint8, response *ircbor.CodegenResponse) uint8 {
	var rc uint8
	if response.Error != "" {
		rc = 1
	}
	payload, err := ircbor.MarshalResponse(response)
	if err != nil {
		payload, _ = ircbor.MarshalResponse(&ircbor.CodegenResponse{
			Error: fmt.Sprintf("Encode[CodegenResponse]: %v", err),
		})
		rc = 1
	}
	frame := binary.LittleEndian.AppendUint32(nil, uint32(len(payload)))
	frame = append(frame, payload...)
	responsePtr := unsafe.SliceData(frame)
	buffers[responsePtr] = frame
	*responsePtrPtr = responsePtr
	return rc
}
