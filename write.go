package sealenv

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Azhovan/sealenv/sealbox"
)

// WriteSealed encrypts plaintext under key and replaces path with the result.
// The sealed bytes go to a sibling temp file that is synced and renamed over
// path, so readers see either the old file or the complete new one.
// The file mode is 0600; missing parent directories are created with 0700.
// Returns ErrFileTooLarge if plaintext exceeds DefaultMaxFileSize.
func WriteSealed(path string, plaintext []byte, key string) (err error) {
	if len(plaintext) > DefaultMaxFileSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, len(plaintext), DefaultMaxFileSize)
	}

	sealed, err := sealbox.Encrypt(plaintext, key)
	if err != nil {
		return fmt.Errorf("seal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.sealing")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(0600); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if _, err := tmp.Write(sealed); err != nil {
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// SealFile encrypts the plaintext env file src into dst.
func SealFile(src, dst, key string) error {
	plaintext, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	return WriteSealed(dst, plaintext, key)
}
