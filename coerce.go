package sealenv

import (
	"encoding/json"

	"github.com/Azhovan/sealenv/internal/sniff"
)

// Coerce converts a raw value into a typed Value. It never fails: JSON-like
// text that does not decode, and anything unrecognised, stays a string.
func Coerce(raw string) Value {
	if sniff.LooksJSON(raw) {
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return StringValue(raw)
		}
		return ValueOf(decoded)
	}

	kind, v := sniff.Primitive(raw)
	switch kind {
	case sniff.Bool:
		return BoolValue(v.(bool))
	case sniff.Number:
		return NumberValue(v.(float64))
	case sniff.Null:
		return NullValue()
	default:
		return StringValue(raw)
	}
}
