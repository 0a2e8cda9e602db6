package sealenv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// StructSchema validates a file's values by decoding them into T and running
// `validate` struct tags. Keys map to fields through `json` tags; the
// validated view is T encoded back to a map, so unknown keys are dropped.
//
//	type App struct {
//	    Port int    `json:"PORT" validate:"required,min=1,max=65535"`
//	    Mode string `json:"MODE" validate:"oneof=dev prod"`
//	}
//	schema := sealenv.NewStructSchema[App](nil)
type StructSchema[T any] struct {
	validate *validator.Validate
}

// NewStructSchema creates a schema for T. A nil v uses a validator with
// required-struct checking enabled whose error field names are json tag names.
// A supplied v is used as is and not modified; register JSONFieldName on it
// to get the same field names:
//
//	v.RegisterTagNameFunc(sealenv.JSONFieldName)
func NewStructSchema[T any](v *validator.Validate) *StructSchema[T] {
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(JSONFieldName)
	}
	return &StructSchema[T]{validate: v}
}

// Validate implements Schema.
func (s *StructSchema[T]) Validate(ctx context.Context, values map[string]any) ValidationResult {
	data, err := json.Marshal(values)
	if err != nil {
		return ValidationResult{Errors: []FieldError{{Message: fmt.Sprintf("encode values: %v", err)}}}
	}

	var cfg T
	var fieldErrors []FieldError
	reported := make(map[string]bool)

	if err := json.Unmarshal(data, &cfg); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return ValidationResult{Errors: []FieldError{{Message: fmt.Sprintf("decode values: %v", err)}}}
		}
		// encoding/json reports only the first mismatch; the rest of T is still decoded.
		fieldErrors = append(fieldErrors, FieldError{
			Field:   typeErr.Field,
			Code:    ErrCodeInvalidType,
			Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		})
		reported[typeErr.Field] = true
	}

	if err := s.validate.StructCtx(ctx, &cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return ValidationResult{Errors: append(fieldErrors, FieldError{Message: err.Error()})}
		}
		for _, fe := range verrs {
			field := fieldPath(fe.Namespace())
			if reported[field] {
				continue
			}
			reported[field] = true
			fieldErrors = append(fieldErrors, FieldError{
				Field:   field,
				Code:    fe.Tag(),
				Message: ruleMessage(fe),
			})
		}
	}

	if len(fieldErrors) > 0 {
		return ValidationResult{Errors: fieldErrors}
	}

	out, err := json.Marshal(&cfg)
	if err != nil {
		return ValidationResult{Errors: []FieldError{{Message: fmt.Sprintf("encode validated config: %v", err)}}}
	}
	validated := make(map[string]any)
	if err := json.Unmarshal(out, &validated); err != nil {
		return ValidationResult{Errors: []FieldError{{Message: fmt.Sprintf("decode validated config: %v", err)}}}
	}

	return ValidationResult{Validated: validated}
}

// JSONFieldName names a struct field by its json tag, falling back to the Go
// field name. Fields tagged "-" have no name.
func JSONFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}

// fieldPath drops the root struct name from a validator namespace
// ("App.DB.host" → "DB.host").
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func ruleMessage(fe validator.FieldError) string {
	switch {
	case fe.Tag() == ErrCodeRequired:
		return "field is required but not provided"
	case fe.Param() != "":
		return fmt.Sprintf("value %v failed %q rule (%s)", fe.Value(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("value %v failed %q rule", fe.Value(), fe.Tag())
	}
}
