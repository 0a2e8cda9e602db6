package sealenv

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

func dumpFixture() *Config {
	entries := Parse("HOST=localhost\nPORT=8080\nPASSWORD=secret123\nENABLED=true\nTAGS=[\"a\",\"b\"]\nNONE=null\n")
	values := make(map[string]any)
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		values[e.Key] = Coerce(e.Value)
		order = append(order, e.Key)
	}
	return freeze("/etc/app.env", values, order, entryProvenance("/etc/app.env", entries))
}

func TestDump_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, dumpFixture(), WithRedact("PASSWORD")); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	want := strings.Join([]string{
		"HOST = localhost",
		"PORT = 8080",
		"PASSWORD = ***redacted***",
		"ENABLED = true",
		`TAGS = ["a","b"]`,
		"NONE = null",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("Dump text\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestDump_WithSources(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, dumpFixture(), WithSources()); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "HOST = localhost (source: /etc/app.env:1)") {
		t.Errorf("Expected source attribution, got: %s", output)
	}
	if !strings.Contains(output, "PORT = 8080 (source: /etc/app.env:2)") {
		t.Errorf("Expected line numbers, got: %s", output)
	}
}

func TestDump_WithSources_NoFile(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, Freeze(map[string]any{"A": 1}), WithSources()); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if got := buf.String(); got != "A = 1\n" {
		t.Errorf("Dump = %q", got)
	}
}

func TestDump_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, dumpFixture(), AsJSON(), WithRedact("PASSWORD")); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got["PASSWORD"] != Redacted {
		t.Errorf("PASSWORD = %v, want redacted", got["PASSWORD"])
	}
	if got["PORT"] != float64(8080) || got["ENABLED"] != true || got["NONE"] != nil {
		t.Errorf("unexpected values: %#v", got)
	}

	output := buf.String()
	if !strings.HasPrefix(output, "{\n  \"HOST\"") {
		t.Errorf("expected indented output in key order, got: %s", output)
	}
	if strings.Index(output, "HOST") > strings.Index(output, "PORT") {
		t.Errorf("key order not preserved: %s", output)
	}
}

func TestDump_JSONCompact(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, Freeze(map[string]any{"B": 1, "A": 2}, "B", "A"), AsJSON(), WithIndent("")); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if got := buf.String(); got != "{\"B\":1,\"A\":2}\n" {
		t.Errorf("Dump = %q", got)
	}
}

func TestDump_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, dumpFixture(), AsYAML()); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	if got["HOST"] != "localhost" || got["PASSWORD"] != "secret123" || got["NONE"] != nil {
		t.Errorf("unexpected values: %#v", got)
	}
	tags, ok := got["TAGS"].([]any)
	if !ok || len(tags) != 2 {
		t.Errorf("TAGS = %#v", got["TAGS"])
	}

	output := buf.String()
	if !strings.HasPrefix(output, "HOST: localhost\n") {
		t.Errorf("expected key order to be preserved, got: %s", output)
	}
}

func TestDump_TOML(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, dumpFixture(), AsTOML(), WithRedact("PASSWORD")); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	var got map[string]any
	if err := toml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not TOML: %v\n%s", err, buf.String())
	}
	if got["HOST"] != "localhost" || got["PASSWORD"] != Redacted || got["ENABLED"] != true {
		t.Errorf("unexpected values: %#v", got)
	}
	if _, ok := got["NONE"]; ok {
		t.Error("null values should be omitted from TOML")
	}
}

func TestDump_TOML_NestedNulls(t *testing.T) {
	cfg := Freeze(map[string]any{"DB": map[string]any{"host": "x", "port": nil}, "L": []any{1, nil, 2}})

	var buf bytes.Buffer
	if err := Dump(&buf, cfg, AsTOML()); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	var got map[string]any
	if err := toml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not TOML: %v\n%s", err, buf.String())
	}
	db := got["DB"].(map[string]any)
	if _, ok := db["port"]; ok {
		t.Errorf("nested null should be dropped: %#v", db)
	}
	if l := got["L"].([]any); len(l) != 2 {
		t.Errorf("L = %#v", l)
	}
}

func TestDump_RedactDoesNotTouchConfig(t *testing.T) {
	cfg := dumpFixture()
	var buf bytes.Buffer
	if err := Dump(&buf, cfg, AsJSON(), WithRedact("PASSWORD")); err != nil {
		t.Fatal(err)
	}
	if s, _ := cfg.String("PASSWORD"); s != "secret123" {
		t.Errorf("PASSWORD = %q after dump", s)
	}
}

func TestDump_NilConfig(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, nil); !errors.Is(err, ErrNilConfig) {
		t.Errorf("Dump(nil) error = %v, want ErrNilConfig", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestDump_WriteError(t *testing.T) {
	for name, opt := range map[string]DumpOption{
		"text": func(*dumpConfig) {},
		"json": AsJSON(),
		"toml": AsTOML(),
	} {
		t.Run(name, func(t *testing.T) {
			err := Dump(failingWriter{}, dumpFixture(), opt)
			if err == nil || !strings.Contains(err.Error(), "disk full") {
				t.Errorf("Dump error = %v, want write error", err)
			}
		})
	}
}
