package sealenv

// FieldProvenance describes where a key's value came from.
type FieldProvenance struct {
	Key  string // Configuration key (e.g., "PORT")
	File string // Absolute path of the env file
	Line int    // 1-based line of the winning declaration; 0 when added by a schema
}

// Provenance returns where key was declared.
func (c *Config) Provenance(key string) (FieldProvenance, bool) {
	if c == nil {
		return FieldProvenance{}, false
	}
	p, ok := c.prov[key]
	return p, ok
}

func entryProvenance(source string, entries []Entry) map[string]FieldProvenance {
	prov := make(map[string]FieldProvenance, len(entries))
	for _, e := range entries {
		prov[e.Key] = FieldProvenance{Key: e.Key, File: source, Line: e.Line}
	}
	return prov
}
