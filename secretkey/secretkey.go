package secretkey

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	// DefaultEnvVar holds the key in the process environment.
	DefaultEnvVar = "ENCRYPT_KEY"

	// DefaultFileName is looked up in the working directory outside production.
	DefaultFileName = "_secret.key"

	// KeyLength is the required key length in characters.
	KeyLength = 64
)

// Errors returned by Resolve. Both wrap ErrKeyResolution.
var (
	ErrKeyResolution    = errors.New("secretkey: key resolution failed")
	ErrMissingKey       = fmt.Errorf("%w: encryption key is undefined", ErrKeyResolution)
	ErrInvalidKeyLength = fmt.Errorf("%w: encryption key must be %d characters", ErrKeyResolution, KeyLength)
)

// Options configures key resolution.
type Options struct {
	// EnvVar names the environment variable. Default: ENCRYPT_KEY.
	EnvVar string

	// FileName is the key file looked up in Dir outside production. Default: _secret.key.
	FileName string

	// Dir holds the key file. Default: the working directory.
	Dir string

	// Production disables the key file lookup.
	Production bool

	// Export writes a key read from file into EnvVar so child processes inherit it.
	Export bool
}

// IsProduction reports whether APP_ENV or GO_ENV is "production" (case-insensitive).
func IsProduction() bool {
	for _, name := range []string{"APP_ENV", "GO_ENV"} {
		if strings.EqualFold(os.Getenv(name), "production") {
			return true
		}
	}
	return false
}

// Resolve returns the encryption key. The length check runs in both modes.
func Resolve(opts Options) (string, error) {
	opts = withDefaults(opts)

	key, fromFile, err := lookup(opts)
	if err != nil {
		return "", err
	}

	if key == "" {
		return "", ErrMissingKey
	}
	if n := utf8.RuneCountInString(key); n != KeyLength {
		return "", fmt.Errorf("%w (got %d)", ErrInvalidKeyLength, n)
	}

	if fromFile && opts.Export {
		if err := os.Setenv(opts.EnvVar, key); err != nil {
			return "", fmt.Errorf("export %s: %w", opts.EnvVar, err)
		}
	}

	return key, nil
}

func lookup(opts Options) (key string, fromFile bool, err error) {
	if !opts.Production {
		dir := opts.Dir
		if dir == "" {
			if dir, err = os.Getwd(); err != nil {
				return "", false, fmt.Errorf("resolve working directory: %w", err)
			}
		}

		path := filepath.Join(dir, opts.FileName)
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			// Used verbatim: a trailing newline makes the key invalid.
			return string(data), true, nil
		case !errors.Is(err, os.ErrNotExist):
			return "", false, fmt.Errorf("read key file %s: %w", path, err)
		}
	}

	return os.Getenv(opts.EnvVar), false, nil
}

func withDefaults(opts Options) Options {
	if opts.EnvVar == "" {
		opts.EnvVar = DefaultEnvVar
	}
	if opts.FileName == "" {
		opts.FileName = DefaultFileName
	}
	return opts
}

// Resolver resolves the key once and returns the same result afterwards.
// Safe for concurrent use.
type Resolver struct {
	opts Options
	once sync.Once
	key  string
	err  error
}

// NewResolver creates a Resolver for opts.
func NewResolver(opts Options) *Resolver {
	return &Resolver{opts: opts}
}

// Key resolves on first call and caches the key or error.
func (r *Resolver) Key() (string, error) {
	r.once.Do(func() {
		r.key, r.err = Resolve(r.opts)
	})
	return r.key, r.err
}
