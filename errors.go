package sealenv

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes attached to FieldError by the built-in schema adapter.
const (
	ErrCodeRequired    = "required"
	ErrCodeInvalidType = "invalid_type"
)

// Load errors. Wrapped with the offending path; test with errors.Is.
var (
	// ErrFileNotFound is returned when a configuration file does not exist.
	ErrFileNotFound = errors.New("sealenv: configuration file not found")

	// ErrDecrypt is returned when a sealed file cannot be decrypted (wrong key, corrupt or unreadable).
	ErrDecrypt = errors.New("sealenv: decryption failed")

	// ErrNoMatch is returned by LoadAll when the pattern matches no files.
	ErrNoMatch = errors.New("sealenv: no configuration files matched pattern")

	// ErrFileTooLarge is returned when a file exceeds the loader's size limit.
	ErrFileTooLarge = errors.New("sealenv: configuration file too large")

	// ErrNilConfig is returned when a nil *Config is passed.
	ErrNilConfig = errors.New("sealenv: config is nil")
)

// ValidationError aggregates every field error reported for one file.
type ValidationError struct {
	File        string
	FieldErrors []FieldError
}

// Error formats the file name and each field error on its own line.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "configuration errors detected in %q: ", e.File)

	switch len(e.FieldErrors) {
	case 0:
		b.WriteString("no errors")
		return b.String()
	case 1:
		b.WriteString("1 error\n")
	default:
		fmt.Fprintf(&b, "%d errors\n", len(e.FieldErrors))
	}

	for _, fe := range e.FieldErrors {
		if fe.Code != "" {
			fmt.Fprintf(&b, "  - %s: %s (%s)\n", fe.Field, fe.Message, fe.Code)
		} else {
			fmt.Fprintf(&b, "  - %s: %s\n", fe.Field, fe.Message)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// FieldError represents a single field validation failure.
type FieldError struct {
	Field   string // Configuration key (e.g., "PORT")
	Code    string // Optional rule identifier (e.g., "required")
	Message string // Human-readable description
}

// FileError wraps a failure of one file during LoadAll.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
