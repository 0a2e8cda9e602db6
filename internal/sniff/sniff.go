// Package sniff classifies raw configuration strings before coercion.
package sniff

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind identifies the primitive a raw token was classified as.
type Kind int

const (
	String Kind = iota
	Bool
	Number
	Null
)

var numeric = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// LooksJSON reports whether s should be handed to a JSON decoder.
// Examples:
//   - `{"a":1}` → true
//   - "42" → true
//   - "hello" → false
//   - "+5" → false (left to the numeric grammar)
func LooksJSON(s string) bool {
	if s == "" {
		return false
	}
	switch c := s[0]; {
	case c == '{', c == '[', c == '"', c == '-':
		return true
	case c >= '0' && c <= '9':
		return true
	}
	return strings.HasPrefix(s, "true") ||
		strings.HasPrefix(s, "false") ||
		strings.HasPrefix(s, "null")
}

// OpensJSON reports whether s starts with a character that opens a JSON
// object, array or string. Inline comments are not stripped from such values
// when the whole value is valid JSON.
func OpensJSON(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '{' || c == '[' || c == '"'
}

// ValidJSON reports whether s is a complete JSON document.
func ValidJSON(s string) bool {
	return gjson.Valid(s)
}

// Primitive classifies s as a boolean, null, number or plain string.
// The returned value is a bool, nil, float64 or the original string.
// Examples:
//   - "TRUE" → Bool, true
//   - "Null" → Null, nil
//   - "1e3" → Number, 1000
//   - "abc" → String, "abc"
func Primitive(s string) (Kind, any) {
	switch strings.ToLower(s) {
	case "true":
		return Bool, true
	case "false":
		return Bool, false
	case "null":
		return Null, nil
	}

	if numeric.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Number, f
		}
	}

	return String, s
}
