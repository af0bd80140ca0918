// Package envsubst expands environment variable placeholders in text.
//
// Expansion follows shell-style `$NAME` and `${NAME}` placeholders, with
// `$$` as an escape for a literal dollar sign. Placeholders referencing
// variables absent from the mapping are left verbatim, so text with
// incidental dollar signs survives a round trip unchanged.
package envsubst

import (
	"os"
	"strings"
)

// Mapping resolves a variable name to its value. The second return value
// reports whether the variable is defined.
type Mapping func(name string) (string, bool)

// Expand substitutes placeholders in s using the given mapping. Undefined
// variables and malformed placeholders pass through unchanged.
func Expand(s string, mapping Mapping) string {
	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); {
		c := s[i]
		if c != '$' {
			b.WriteByte(c)
			i++

			continue
		}

		// Trailing '$' with nothing after it.
		if i+1 >= len(s) {
			b.WriteByte(c)

			break
		}

		switch next := s[i+1]; {
		case next == '$':
			b.WriteByte('$')
			i += 2

		case next == '{':
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				b.WriteString(s[i:])

				return b.String()
			}

			name := s[i+2 : i+2+end]
			if !validName(name) {
				b.WriteString(s[i : i+2+end+1])
				i += 2 + end + 1

				continue
			}

			if v, ok := mapping(name); ok {
				b.WriteString(v)
			} else {
				b.WriteString(s[i : i+2+end+1])
			}

			i += 2 + end + 1

		case isNameStart(next):
			j := i + 1
			for j < len(s) && isNameByte(s[j]) {
				j++
			}

			name := s[i+1 : j]
			if v, ok := mapping(name); ok {
				b.WriteString(v)
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

// ExpandEnv substitutes placeholders in s using the process environment.
func ExpandEnv(s string) string {
	return Expand(s, os.LookupEnv)
}

// OSMapping returns a [Mapping] backed by the process environment.
func OSMapping() Mapping {
	return os.LookupEnv
}

func validName(name string) bool {
	if name == "" || !isNameStart(name[0]) {
		return false
	}

	for i := 1; i < len(name); i++ {
		if !isNameByte(name[i]) {
			return false
		}
	}

	return true
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameByte(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
