// Zaparoo Session
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Session.
//
// Zaparoo Session is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Session is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Session.  If not, see <http://www.gnu.org/licenses/>.

// Package shellwords splits config strings such as compositor flags and game
// wrappers into argument lists on shell word boundaries. Nothing is
// expanded: variables, globs, braces, tildes and redirections stay literal
// text, only quotes and backslash escapes are interpreted.
package shellwords

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// literal holds the characters the shell parser would give meaning to
// outside quotes. They are escaped before parsing so they stay in the word.
const literal = "$`#~{}[]()<>;|&*?!"

var errTrailingEscape = errors.New("no character after backslash")

// Split tokenizes s on shell word boundaries. Single and double quotes group
// words and are removed. Outside quotes a backslash escapes the next
// character; inside double quotes it only escapes a backslash or a quote.
func Split(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	src, err := escapeLiterals(s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", s, err)
	}

	var words []*syntax.Word
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	err = parser.Words(strings.NewReader(src), func(w *syntax.Word) bool {
		words = append(words, w)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", s, err)
	}

	fields := make([]string, 0, len(words))
	for _, w := range words {
		fields = append(fields, wordText(w))
	}
	return fields, nil
}

// escapeLiterals backslash escapes every character of literal that the
// parser would otherwise treat as syntax, tracking quote state so quoted
// text is left alone where the parser already keeps it literal.
func escapeLiterals(s string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(s) * 2)

	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch quote {
		case '\'':
			sb.WriteByte(c)
			if c == '\'' {
				quote = 0
			}
		case '"':
			switch {
			case c == '"':
				sb.WriteByte(c)
				quote = 0
			case c == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\'):
				sb.WriteByte(c)
				sb.WriteByte(s[i+1])
				i++
			case c == '\\':
				sb.WriteString(`\\`)
			case c == '$' || c == '`':
				sb.WriteByte('\\')
				sb.WriteByte(c)
			default:
				sb.WriteByte(c)
			}
		default:
			switch {
			case c == '\'' || c == '"':
				sb.WriteByte(c)
				quote = c
			case c == '\\' && i+1 < len(s):
				sb.WriteByte(c)
				sb.WriteByte(s[i+1])
				i++
			case c == '\\':
				return "", errTrailingEscape
			case strings.IndexByte(literal, c) >= 0:
				sb.WriteByte('\\')
				sb.WriteByte(c)
			default:
				sb.WriteByte(c)
			}
		}
	}
	if quote != 0 {
		return "", fmt.Errorf("unterminated %c quote", quote)
	}
	return sb.String(), nil
}

// wordText joins the parts of w with quotes removed and escapes resolved.
func wordText(w *syntax.Word) string {
	var sb strings.Builder
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(unescape(p.Value, false))
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, inner := range p.Parts {
				if lit, ok := inner.(*syntax.Lit); ok {
					sb.WriteString(unescape(lit.Value, true))
					continue
				}
				sb.WriteString(printPart(inner))
			}
		default:
			sb.WriteString(printPart(part))
		}
	}
	return sb.String()
}

// unescape resolves backslash escapes in a raw literal. Inside double quotes
// a backslash only escapes characters the shell treats specially there.
func unescape(raw string, quoted bool) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 == len(raw) {
			sb.WriteByte(c)
			continue
		}
		next := raw[i+1]
		switch {
		case next == '\n':
		case !quoted || strings.IndexByte("$`\"\\", next) >= 0:
			sb.WriteByte(next)
		default:
			sb.WriteByte(c)
			sb.WriteByte(next)
		}
		i++
	}
	return sb.String()
}

// printPart renders a word part back to its source form.
func printPart(part syntax.WordPart) string {
	var buf bytes.Buffer
	word := &syntax.Word{Parts: []syntax.WordPart{part}}
	if err := syntax.NewPrinter().Print(&buf, word); err != nil {
		return ""
	}
	return buf.String()
}
