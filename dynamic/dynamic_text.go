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

package dynamic

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"go.tagwire.dev/tagwire/codec"
)

// String renders the present fields of m, one per line, with nested
// messages indented by a tab.
func (m *Message) String() string {
	var sb strings.Builder
	m.format(&sb, 0)
	return sb.String()
}

func (m *Message) format(sb *strings.Builder, indent int) {
	for rule, v := range m.Fields() {
		if elems, ok := v.([]any); ok {
			for _, elem := range elems {
				formatField(sb, indent, rule, elem)
			}
			continue
		}
		formatField(sb, indent, rule, v)
	}
}

func formatField(sb *strings.Builder, indent int, rule *codec.Rule, v any) {
	prefix := strings.Repeat("\t", indent)
	if sub, ok := v.(*Message); ok {
		fmt.Fprintf(sb, "%s%s {\n", prefix, rule.Field.Name)
		sub.format(sb, indent+1)
		fmt.Fprintf(sb, "%s}\n", prefix)
		return
	}
	fmt.Fprintf(sb, "%s%s: %s\n", prefix, rule.Field.Name, formatScalar(rule, v))
}

func formatScalar(rule *codec.Rule, v any) string {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v)
	case []byte:
		return "h'" + hex.EncodeToString(v) + "'"
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case uint32:
		if rule.Enum != nil {
			if name, ok := rule.Enum.NameOf(v); ok {
				return name
			}
		}
	}
	return fmt.Sprint(v)
}
