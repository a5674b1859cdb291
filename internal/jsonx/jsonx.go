package jsonx

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Normalize converts near-JSON model output into strict JSON: markdown code
// fences are stripped, bare object keys are quoted, single-quoted strings
// become double-quoted, and trailing commas are removed. Content inside
// string literals is never touched. Normalizing already-strict JSON is a
// no-op.
func Normalize(raw string) string {
	s := stripFences(raw)
	var b strings.Builder
	b.Grow(len(s) + 16)

	i, n := 0, len(s)
	for i < n {
		c := s[i]
		switch {
		case c == '"':
			j := skipString(s, i)
			b.WriteString(s[i:j])
			i = j

		case c == '\'':
			// Rewrite a single-quoted string as double-quoted,
			// escaping any embedded double quotes.
			b.WriteByte('"')
			i++
			for i < n {
				if s[i] == '\\' && i+1 < n {
					if s[i+1] == '\'' {
						b.WriteByte('\'')
					} else {
						b.WriteByte('\\')
						b.WriteByte(s[i+1])
					}
					i += 2
					continue
				}
				if s[i] == '\'' {
					i++
					break
				}
				if s[i] == '"' {
					b.WriteString(`\"`)
					i++
					continue
				}
				b.WriteByte(s[i])
				i++
			}
			b.WriteByte('"')

		case c == ',':
			// Drop the comma, and any whitespace after it, when the
			// next non-space token closes a container.
			j := i + 1
			for j < n && isSpace(s[j]) {
				j++
			}
			if j < n && (s[j] == '}' || s[j] == ']') {
				i = j
				continue
			}
			b.WriteByte(c)
			i++

		case isIdentStart(c):
			// Quote a bare identifier when it is used as an object key.
			j := i + 1
			for j < n && isIdentPart(s[j]) {
				j++
			}
			k := j
			for k < n && isSpace(s[k]) {
				k++
			}
			if k < n && s[k] == ':' {
				b.WriteByte('"')
				b.WriteString(s[i:j])
				b.WriteByte('"')
			} else {
				b.WriteString(s[i:j])
			}
			i = j

		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// ExtractArray returns the first balanced top-level JSON array in s,
// ignoring brackets inside string literals. Models often wrap the requested
// array in prose; this recovers it.
func ExtractArray(s string) (string, bool) {
	start := -1
	depth := 0
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '"' {
			i = skipString(s, i)
			continue
		}
		switch c {
		case '[':
			if start == -1 {
				start = i
			}
			depth++
		case ']':
			if start != -1 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
		i++
	}
	return "", false
}

// DecodeArray normalizes raw model output and decodes the first JSON array
// it contains into individual raw items.
func DecodeArray(raw string) ([]json.RawMessage, error) {
	arr, ok := ExtractArray(Normalize(raw))
	if !ok {
		return nil, errors.New("no JSON array in response")
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(arr), &items); err != nil {
		return nil, fmt.Errorf("decode array: %w", err)
	}
	return items, nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// skipString returns the index just past the double-quoted string starting
// at s[start].
func skipString(s string, start int) int {
	i := start + 1
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return len(s)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
