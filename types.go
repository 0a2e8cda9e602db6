package sealenv

import (
	"context"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"go.uber.org/zap"
)

// Kind tags the type held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindNumber
	KindNull
	KindStructured
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindNull:
		return "null"
	case KindStructured:
		return "structured"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a coerced configuration value. Exactly one kind is set.
// Values are immutable: structured content is copied on the way in and out.
type Value struct {
	kind Kind
	str  string
	b    bool
	num  float64
	tree any // map[string]any, []any or a JSON scalar; never shared
}

// StringValue, BoolValue, NumberValue and NullValue build primitive values.
func StringValue(s string) Value  { return Value{kind: KindString, str: s} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }
func NullValue() Value            { return Value{kind: KindNull} }

// ValueOf converts a Go value into a Value. Numeric types become numbers.
// Maps, slices and arrays of any element type become structured values,
// normalised to map[string]any / []any trees and copied at every level.
// Structs and other types are converted through their JSON encoding.
func ValueOf(v any) Value {
	switch x := normalize(v).(type) {
	case nil:
		return NullValue()
	case string:
		return StringValue(x)
	case bool:
		return BoolValue(x)
	case float64:
		return NumberValue(x)
	default:
		return Value{kind: KindStructured, tree: x}
	}
}

// Kind returns the value's tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string and whether the value is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Bool returns the boolean and whether the value is a boolean.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Number returns the number and whether the value is a number.
func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// Int returns the number as int when it is integral.
func (v Value) Int() (int, bool) {
	if v.kind != KindNumber || v.num != float64(int(v.num)) {
		return 0, false
	}
	return int(v.num), true
}

// Interface returns a Go representation: string, bool, float64, nil,
// or a fresh copy of the structured tree.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindNull:
		return nil
	case KindStructured:
		return deepCopy(v.tree)
	default:
		return v.str
	}
}

// String renders the value for display. Structured values render as compact JSON.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindNull:
		return "null"
	case KindStructured:
		data, err := json.Marshal(v.tree)
		if err != nil {
			return fmt.Sprint(v.tree)
		}
		return string(data)
	default:
		return v.str
	}
}

// MarshalJSON encodes the value as its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return x
	}
}

// normalize returns a fresh JSON-shaped tree for v: nil, string, bool,
// float64, map[string]any or []any. Nothing in the result aliases v.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, string, bool, float64:
		return x
	case Value:
		return x.Interface()
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	case json.Marshaler, encoding.TextMarshaler:
		return viaJSON(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			// encoding/json writes []byte as base64
			return viaJSON(v)
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key())] = normalize(iter.Value().Interface())
		}
		return out
	default:
		return viaJSON(v)
	}
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}

// viaJSON decodes v's JSON encoding, falling back to its fmt rendering
// for types encoding/json rejects.
func viaJSON(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Sprint(v)
	}
	return out
}

// Schema validates the coerced values of one file.
// Implementations return the corrected/typed view to freeze, or field errors.
// A nil Validated map with no errors keeps the input values.
type Schema interface {
	Validate(ctx context.Context, values map[string]any) ValidationResult
}

// ValidationResult is what a Schema reports for one file.
type ValidationResult struct {
	Validated map[string]any
	Errors    []FieldError
}

// SchemaFunc is a function adapter for Schema.
type SchemaFunc func(ctx context.Context, values map[string]any) ValidationResult

func (f SchemaFunc) Validate(ctx context.Context, values map[string]any) ValidationResult {
	return f(ctx, values)
}

// Decryptor turns a sealed file into plaintext. It must fail rather than
// return plaintext that did not authenticate.
type Decryptor interface {
	DecryptFile(path, key string) ([]byte, error)
}

// Expander resolves a file pattern into sorted absolute paths rooted at dir.
type Expander interface {
	Expand(pattern, dir string) ([]string, error)
}

// ExpanderFunc is a function adapter for Expander.
type ExpanderFunc func(pattern, dir string) ([]string, error)

func (f ExpanderFunc) Expand(pattern, dir string) ([]string, error) {
	return f(pattern, dir)
}

// Options mirrors the per-call switches of LoadFile and LoadAll.
type Options struct {
	// Verbose logs every final key/value pair at info level.
	Verbose bool

	// SuppressErrors makes LoadAll log and skip failing files instead of aborting.
	SuppressErrors bool

	// Logger receives load failures and verbose output.
	// Default: a JSON logger on stderr from internal/logging.
	Logger *zap.Logger
}
