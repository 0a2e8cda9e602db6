package sealenv

import (
	"regexp"
	"strings"

	"github.com/Azhovan/sealenv/internal/sniff"
)

// inlineComment matches whitespace followed by '#' and the rest of the line.
var inlineComment = regexp.MustCompile(`\s+#.*$`)

// Entry is one KEY=VALUE pair as written in an env file.
type Entry struct {
	Key   string
	Value string // Raw value: trimmed, inline comment removed
	Line  int    // 1-based line of the winning declaration
}

// Parse splits env file text into entries in order of first appearance.
// Blank lines and lines starting with '#' are skipped. A line is split at its
// first '='; a line without '=' declares its key with an empty value.
// A repeated key keeps its position but takes the later value.
func Parse(text string) []Entry {
	text = strings.TrimPrefix(text, "\ufeff")

	var entries []Entry
	index := make(map[string]int)

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		name, rest, _ := strings.Cut(trimmed, "=")
		key := strings.TrimSpace(name)
		if key == "" {
			continue
		}

		entry := Entry{Key: key, Value: rawValue(rest), Line: i + 1}
		if at, ok := index[key]; ok {
			entries[at] = entry
			continue
		}
		index[key] = len(entries)
		entries = append(entries, entry)
	}

	return entries
}

// rawValue strips an inline comment unless the whole value is a JSON
// object, array or string, which may legitimately contain " #".
func rawValue(rest string) string {
	candidate := strings.TrimSpace(rest)
	if sniff.OpensJSON(candidate) && sniff.ValidJSON(candidate) {
		return candidate
	}
	return strings.TrimSpace(inlineComment.ReplaceAllString(rest, ""))
}
