package pattern

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Expander resolves patterns against the local filesystem.
type Expander struct {
	// IncludeDirs keeps matching directories in the result. Default: files only.
	IncludeDirs bool
}

// Expand returns the absolute paths matching pattern, sorted lexically.
// Relative patterns are resolved against dir (the working directory when empty).
// No match is not an error; the returned slice is empty.
func (e Expander) Expand(pattern, dir string) ([]string, error) {
	if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	root, err := rootDir(dir)
	if err != nil {
		return nil, err
	}

	slashed := filepath.ToSlash(pattern)
	if filepath.IsAbs(pattern) {
		// Split "/etc/app/*.env" into the fixed base and the pattern below it.
		base, rest := doublestar.SplitPattern(slashed)
		root = filepath.FromSlash(base)
		slashed = rest
	}

	matches, err := doublestar.Glob(os.DirFS(root), slashed)
	if err != nil {
		return nil, fmt.Errorf("expand pattern %q: %w", pattern, err)
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		abs := filepath.Join(root, filepath.FromSlash(m))
		if !e.IncludeDirs {
			info, err := os.Stat(abs)
			if err != nil || info.IsDir() {
				continue
			}
		}
		paths = append(paths, abs)
	}

	sort.Strings(paths)
	return paths, nil
}

func rootDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
		return wd, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve directory %s: %w", dir, err)
	}
	return abs, nil
}
