package sniff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooksJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{`{"a":1}`, true},
		{`[1,2]`, true},
		{`"quoted"`, true},
		{"42", true},
		{"-1.5", true},
		{"true", true},
		{"false", true},
		{"null", true},
		{"trueish", true},
		{"TRUE", false},
		{"+5", false},
		{".5", false},
		{"hello", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, LooksJSON(tt.input))
		})
	}
}

func TestOpensJSON(t *testing.T) {
	assert.True(t, OpensJSON(`{"a":1}`))
	assert.True(t, OpensJSON(`[1]`))
	assert.True(t, OpensJSON(`"x"`))
	assert.False(t, OpensJSON("42"))
	assert.False(t, OpensJSON("true"))
	assert.False(t, OpensJSON(""))
}

func TestValidJSON(t *testing.T) {
	assert.True(t, ValidJSON(`{"note":"a # b"}`))
	assert.True(t, ValidJSON(`[1, 2, 3]`))
	assert.False(t, ValidJSON(`{"a":1} # comment`))
	assert.False(t, ValidJSON(`{"a":`))
}

func TestPrimitive(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  Kind
		value any
	}{
		{"lower true", "true", Bool, true},
		{"upper true", "TRUE", Bool, true},
		{"mixed false", "False", Bool, false},
		{"null", "NULL", Null, nil},
		{"integer", "42", Number, float64(42)},
		{"plus sign", "+5", Number, float64(5)},
		{"leading dot", ".5", Number, 0.5},
		{"exponent", "1e3", Number, float64(1000)},
		{"trailing dot", "7.", Number, float64(7)},
		{"infinity is text", "Inf", String, "Inf"},
		{"hex is text", "0x1F", String, "0x1F"},
		{"underscore is text", "1_000", String, "1_000"},
		{"plain", "hello", String, "hello"},
		{"empty", "", String, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, value := Primitive(tt.input)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.value, value)
		})
	}
}
