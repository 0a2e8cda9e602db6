package sealenv

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/tidwall/gjson"
)

// Config is an immutable configuration loaded from one file.
// It has no mutators; every accessor returns copies, so nothing obtained from
// a Config can change what it holds. Safe for concurrent use.
type Config struct {
	source string
	keys   []string
	values map[string]Value
	prov   map[string]FieldProvenance
}

// Freeze builds a Config from values. Keys listed in order come first in
// that order; remaining keys follow sorted. Structured values are deep-copied.
func Freeze(values map[string]any, order ...string) *Config {
	return freeze("", values, order, nil)
}

func freeze(source string, values map[string]any, order []string, prov map[string]FieldProvenance) *Config {
	cfg := &Config{
		source: source,
		keys:   make([]string, 0, len(values)),
		values: make(map[string]Value, len(values)),
		prov:   make(map[string]FieldProvenance, len(values)),
	}

	seen := make(map[string]bool, len(values))
	for _, k := range order {
		if _, ok := values[k]; ok && !seen[k] {
			seen[k] = true
			cfg.keys = append(cfg.keys, k)
		}
	}

	var extra []string
	for k := range values {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	cfg.keys = append(cfg.keys, extra...)

	for _, k := range cfg.keys {
		cfg.values[k] = ValueOf(values[k])
		if p, ok := prov[k]; ok {
			cfg.prov[k] = p
		} else {
			cfg.prov[k] = FieldProvenance{Key: k, File: source}
		}
	}

	return cfg
}

// Source returns the absolute path the config was loaded from ("" for Freeze).
func (c *Config) Source() string { return c.source }

// Len returns the number of keys.
func (c *Config) Len() int { return len(c.keys) }

// Keys returns the keys in declaration order.
func (c *Config) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Has reports whether key is present.
func (c *Config) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Get returns the value for key, or a null Value when absent.
func (c *Config) Get(key string) Value {
	if v, ok := c.values[key]; ok {
		return v
	}
	return NullValue()
}

// Lookup returns the value for key and whether it was present.
func (c *Config) Lookup(key string) (Value, bool) {
	v, ok := c.values[key]
	return v, ok
}

// String returns the value for key when it is a string.
func (c *Config) String(key string) (string, bool) {
	return c.Get(key).Str()
}

// Bool returns the value for key when it is a boolean.
func (c *Config) Bool(key string) (bool, bool) {
	return c.values[key].Bool()
}

// Number returns the value for key when it is a number.
func (c *Config) Number(key string) (float64, bool) {
	return c.values[key].Number()
}

// Int returns the value for key when it is an integral number.
func (c *Config) Int(key string) (int, bool) {
	return c.values[key].Int()
}

// Map returns a deep copy of the configuration as plain Go values.
func (c *Config) Map() map[string]any {
	out := make(map[string]any, len(c.keys))
	for _, k := range c.keys {
		out[k] = c.values[k].Interface()
	}
	return out
}

// Path evaluates a gjson path (e.g. "DB.hosts.0") over the configuration.
func (c *Config) Path(path string) gjson.Result {
	data, err := c.MarshalJSON()
	if err != nil {
		return gjson.Result{}
	}
	return gjson.GetBytes(data, path)
}

// MarshalJSON encodes the configuration as a JSON object in key order.
func (c *Config) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
