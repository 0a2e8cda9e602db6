package sealenv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Azhovan/sealenv/internal/logging"
	"github.com/Azhovan/sealenv/pattern"
	"github.com/Azhovan/sealenv/sealbox"
)

// DefaultMaxFileSize is the default per-file size limit (16 MiB).
const DefaultMaxFileSize = 16 << 20

// Loader loads env files into immutable Configs.
// Configure it before the first load; a configured Loader is safe for concurrent use.
type Loader struct {
	key       string
	schema    Schema
	decryptor Decryptor
	expander  Expander
	logger    *zap.Logger
	metrics   *Metrics
	dir       string
	verbose   bool
	suppress  bool
	workers   int
	maxSize   int64
}

// NewLoader creates a Loader that reads plaintext files relative to the
// working directory, with no schema, sequential batches and a no-op logger.
func NewLoader() *Loader {
	return &Loader{
		decryptor: sealbox.Box{},
		expander:  pattern.Expander{},
		logger:    zap.NewNop(),
		workers:   1,
		maxSize:   DefaultMaxFileSize,
	}
}

// WithKey sets the decryption key. A non-empty key makes every file go through the Decryptor.
func (l *Loader) WithKey(key string) *Loader {
	l.key = key
	return l
}

// WithSchema sets the schema applied to each file. nil disables validation.
func (l *Loader) WithSchema(s Schema) *Loader {
	l.schema = s
	return l
}

// WithDecryptor replaces the default sealbox decryptor.
func (l *Loader) WithDecryptor(d Decryptor) *Loader {
	l.decryptor = d
	return l
}

// WithExpander replaces the default doublestar pattern expander.
func (l *Loader) WithExpander(e Expander) *Loader {
	l.expander = e
	return l
}

// WithLogger sets the logger. nil restores the no-op logger.
func (l *Loader) WithLogger(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	l.logger = logger
	return l
}

// WithMetrics reports per-file load results to m. nil disables metrics.
func (l *Loader) WithMetrics(m *Metrics) *Loader {
	l.metrics = m
	return l
}

// WithDir sets the directory relative paths and patterns are resolved against.
// Default: the working directory at load time.
func (l *Loader) WithDir(dir string) *Loader {
	l.dir = dir
	return l
}

// Verbose logs every final key/value pair after a successful load.
func (l *Loader) Verbose(verbose bool) *Loader {
	l.verbose = verbose
	return l
}

// SuppressErrors makes LoadAll skip failing files instead of aborting.
func (l *Loader) SuppressErrors(suppress bool) *Loader {
	l.suppress = suppress
	return l
}

// Concurrency bounds how many files LoadAll loads at once. Values below 1 mean 1.
func (l *Loader) Concurrency(n int) *Loader {
	if n < 1 {
		n = 1
	}
	l.workers = n
	return l
}

// MaxFileSize limits the size of each file. 0 disables the limit.
func (l *Loader) MaxFileSize(n int64) *Loader {
	l.maxSize = n
	return l
}

// LoadFile reads, decrypts (when a key is set), parses, coerces, validates and
// freezes one file. Validation failures are returned as *ValidationError
// listing every field error of the file.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Config, error) {
	start := time.Now()
	cfg, err := l.loadFile(ctx, path)
	l.metrics.observeLoad(start, cfg, err)
	return cfg, err
}

func (l *Loader) loadFile(ctx context.Context, path string) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resolved, err := l.resolve(path)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("loading configuration file", zap.String("path", resolved))

	// Step 1: Read or decrypt
	text, err := l.read(resolved)
	if err != nil {
		return nil, err
	}

	// Step 2: Parse and coerce
	entries := Parse(string(text))
	order := make([]string, len(entries))
	values := make(map[string]any, len(entries))
	for i, e := range entries {
		order[i] = e.Key
		values[e.Key] = Coerce(e.Value)
	}

	// Step 3: Validate; the schema's view replaces the coerced values
	if l.schema != nil {
		plain := make(map[string]any, len(values))
		for k, v := range values {
			plain[k] = v.(Value).Interface()
		}

		result := l.schema.Validate(ctx, plain)
		if len(result.Errors) > 0 {
			return nil, &ValidationError{File: path, FieldErrors: result.Errors}
		}
		if result.Validated != nil {
			values = result.Validated
		}
	}

	// Step 4: Freeze
	cfg := freeze(resolved, values, order, entryProvenance(resolved, entries))

	if l.verbose {
		l.logValues(path, cfg)
	}

	return cfg, nil
}

// LoadAll expands pattern and loads every matching file, returning Configs in
// path order. Without SuppressErrors the first failing file (by path order)
// aborts the batch and is returned as *FileError; with it, failures are
// logged and skipped. Returns ErrNoMatch when nothing matches.
func (l *Loader) LoadAll(ctx context.Context, pattern string) ([]*Config, error) {
	dir, err := l.baseDir()
	if err != nil {
		return nil, err
	}

	paths, err := l.expander.Expand(pattern, dir)
	if err != nil {
		return nil, fmt.Errorf("expand pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, pattern)
	}

	configs := make([]*Config, len(paths))
	errs := make([]error, len(paths))

	// Lowest failing index. Files after it are skipped in abort mode; files
	// before it still run so the reported error matches a sequential load.
	var abortAt atomic.Int64
	abortAt.Store(int64(len(paths)))

	var g errgroup.Group
	g.SetLimit(l.workers)

	for i, path := range paths {
		if l.aborted(&abortAt, i) {
			break
		}
		i, path := i, path
		g.Go(func() error {
			if l.aborted(&abortAt, i) {
				return nil
			}

			cfg, err := l.LoadFile(ctx, path)
			if err != nil {
				l.logger.Error("error loading configuration file", zap.String("path", path), zap.Error(err))
				errs[i] = &FileError{Path: path, Err: err}
				lowerTo(&abortAt, int64(i))
				return nil
			}

			configs[i] = cfg
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	skipped := 0
	for i := range paths {
		if configs[i] == nil && errs[i] == nil {
			skipped++
		}
	}
	l.metrics.observeSkipped(skipped)

	result := make([]*Config, 0, len(paths))
	for i := range paths {
		if errs[i] != nil {
			if l.suppress {
				continue
			}
			return nil, errs[i]
		}
		if configs[i] != nil {
			result = append(result, configs[i])
		}
	}

	return result, nil
}

func (l *Loader) aborted(abortAt *atomic.Int64, i int) bool {
	return !l.suppress && int64(i) > abortAt.Load()
}

func lowerTo(v *atomic.Int64, n int64) {
	for {
		cur := v.Load()
		if n >= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (l *Loader) baseDir() (string, error) {
	if l.dir != "" {
		return l.dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return wd, nil
}

// resolve makes path absolute and checks that it is a regular file within the size limit.
func (l *Loader) resolve(path string) (string, error) {
	resolved := path
	if !filepath.IsAbs(path) {
		dir, err := l.baseDir()
		if err != nil {
			return "", err
		}
		resolved = filepath.Join(dir, path)
	}

	resolved, err := filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, resolved)
		}
		return "", fmt.Errorf("stat %s: %w", resolved, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory, not a configuration file", resolved)
	}
	if l.maxSize > 0 && info.Size() > l.maxSize {
		return "", fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrFileTooLarge, resolved, info.Size(), l.maxSize)
	}

	return resolved, nil
}

func (l *Loader) read(path string) ([]byte, error) {
	if l.key == "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return data, nil
	}

	if l.decryptor == nil {
		return nil, fmt.Errorf("%w: %s: no decryptor configured", ErrDecrypt, path)
	}
	data, err := l.decryptor.DecryptFile(path, l.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecrypt, path, err)
	}
	return data, nil
}

func (l *Loader) logValues(file string, cfg *Config) {
	l.logger.Info("loaded configuration", zap.String("file", file), zap.Int("keys", cfg.Len()))
	for _, k := range cfg.keys {
		l.logger.Info("configuration value",
			zap.String("file", file),
			zap.String("key", k),
			zap.String("value", cfg.values[k].String()),
		)
	}
}

// LoadFile loads a single file with a one-off Loader.
// schema may be nil; an empty key reads the file as plaintext.
func LoadFile(ctx context.Context, path string, schema Schema, key string, opts Options) (*Config, error) {
	logger := opts.logger()
	defer logger.Sync() //nolint:errcheck

	return NewLoader().
		WithLogger(logger).
		WithSchema(schema).
		WithKey(key).
		Verbose(opts.Verbose).
		LoadFile(ctx, path)
}

// LoadAll loads every file matching pattern with a one-off Loader.
func LoadAll(ctx context.Context, pattern string, key string, schema Schema, opts Options) ([]*Config, error) {
	logger := opts.logger()
	defer logger.Sync() //nolint:errcheck

	return NewLoader().
		WithLogger(logger).
		WithSchema(schema).
		WithKey(key).
		Verbose(opts.Verbose).
		SuppressErrors(opts.SuppressErrors).
		LoadAll(ctx, pattern)
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	logger, err := logging.New(false)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
