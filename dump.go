package sealenv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Redacted replaces masked values in dumps.
const Redacted = "***redacted***"

// DumpOption configures dump behavior using the functional options pattern.
type DumpOption func(*dumpConfig)

type format int

const (
	formatText format = iota
	formatJSON
	formatYAML
	formatTOML
)

// dumpConfig holds options for Dump.
type dumpConfig struct {
	format      format
	withSources bool   // Append file:line to each text line
	indent      string // JSON indentation (default: "  ")
	redact      map[string]bool
}

// WithSources appends the declaring file and line to each text line.
func WithSources() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.withSources = true
	}
}

// AsJSON outputs configuration as a JSON object.
func AsJSON() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.format = formatJSON
	}
}

// AsYAML outputs configuration as a YAML mapping in key order.
func AsYAML() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.format = formatYAML
	}
}

// AsTOML outputs configuration as TOML. Null values have no TOML form and are omitted.
func AsTOML() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.format = formatTOML
	}
}

// WithIndent sets the indentation for JSON output.
// Default is two spaces ("  "); empty produces compact JSON.
func WithIndent(indent string) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.indent = indent
	}
}

// WithRedact masks the values of keys as "***redacted***".
func WithRedact(keys ...string) DumpOption {
	return func(cfg *dumpConfig) {
		for _, k := range keys {
			cfg.redact[k] = true
		}
	}
}

// Dump writes cfg to w. The default text format is one "KEY = value" line
// per key, structured values as compact JSON.
func Dump(w io.Writer, cfg *Config, opts ...DumpOption) error {
	if cfg == nil {
		return ErrNilConfig
	}

	config := dumpConfig{
		indent: "  ",
		redact: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(&config)
	}

	switch config.format {
	case formatJSON:
		return dumpAsJSON(w, cfg, config)
	case formatYAML:
		return dumpAsYAML(w, cfg, config)
	case formatTOML:
		return dumpAsTOML(w, cfg, config)
	default:
		return dumpAsText(w, cfg, config)
	}
}

// dumpAsText outputs configuration in text format (KEY = value).
func dumpAsText(w io.Writer, cfg *Config, config dumpConfig) error {
	for _, k := range cfg.keys {
		display := cfg.values[k].String()
		if config.redact[k] {
			display = Redacted
		}

		line := fmt.Sprintf("%s = %s", k, display)
		if config.withSources {
			if p := cfg.prov[k]; p.File != "" {
				line += fmt.Sprintf(" (source: %s:%d)", p.File, p.Line)
			}
		}
		line += "\n"

		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
	}
	return nil
}

// dumpAsJSON outputs configuration as JSON in key order.
func dumpAsJSON(w io.Writer, cfg *Config, config dumpConfig) error {
	data, err := redacted(cfg, config).MarshalJSON()
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}

	if config.indent != "" {
		// Indent the ordered encoding rather than re-marshal a map.
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", config.indent); err != nil {
			return fmt.Errorf("json marshal error: %w", err)
		}
		data = buf.Bytes()
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

// dumpAsYAML outputs configuration as a YAML mapping in key order.
func dumpAsYAML(w io.Writer, cfg *Config, config dumpConfig) error {
	src := redacted(cfg, config)

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range src.keys {
		var val yaml.Node
		if err := val.Encode(src.values[k].Interface()); err != nil {
			return fmt.Errorf("yaml marshal error: %w", err)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&val,
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("yaml marshal error: %w", err)
	}
	return enc.Close()
}

// dumpAsTOML outputs configuration as TOML. go-toml sorts keys.
func dumpAsTOML(w io.Writer, cfg *Config, config dumpConfig) error {
	src := redacted(cfg, config)

	doc := make(map[string]any, len(src.keys))
	for _, k := range src.keys {
		v := src.values[k]
		if v.IsNull() {
			continue
		}
		doc[k] = stripNulls(v.Interface())
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("toml marshal error: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

// redacted returns cfg with masked keys replaced, or cfg itself when nothing is masked.
func redacted(cfg *Config, config dumpConfig) *Config {
	if len(config.redact) == 0 {
		return cfg
	}

	values := make(map[string]any, len(cfg.keys))
	for _, k := range cfg.keys {
		if config.redact[k] {
			values[k] = Redacted
		} else {
			values[k] = cfg.values[k]
		}
	}
	return freeze(cfg.source, values, cfg.keys, cfg.prov)
}

// stripNulls removes nil members from maps and slices, which TOML cannot express.
func stripNulls(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			if e != nil {
				out[k] = stripNulls(e)
			}
		}
		return out
	case []any:
		out := make([]any, 0, len(x))
		for _, e := range x {
			if e != nil {
				out = append(out, stripNulls(e))
			}
		}
		return out
	default:
		return x
	}
}
