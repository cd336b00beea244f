// Package storage supplies the conversion's external collaborators: the
// source document reader and the output directory sink.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/zettelport/internal/apperr"
)

// ReadSource reads the raw input document. A missing file is reported as
// apperr.ErrNotFound so the command surface can distinguish it from other
// read failures.
func ReadSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: input %s: %w", path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read input %s: %w", path, err)
	}
	return data, nil
}

// Dir is the output sink: a flat directory of generated Markdown files.
type Dir struct {
	root string // absolute path to the output directory
}

// NewDir creates the output directory (and any parents) if needed and
// returns a sink rooted there. Creation is idempotent.
func NewDir(path string) (*Dir, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve output dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create output dir: %w", err)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute output directory path.
func (d *Dir) Root() string {
	return d.root
}

// safePath resolves a file name against the output root and rejects any
// result that escapes it. Sanitized titles cannot contain separators, but
// the sink does not rely on its callers for that.
func (d *Dir) safePath(name string) (string, error) {
	cleaned := filepath.Clean(name)
	if cleaned == "." || filepath.IsAbs(cleaned) || strings.Contains(cleaned, string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: invalid file name: %q", name)
	}
	return filepath.Join(d.root, cleaned), nil
}

// Write persists content under name, overwriting any existing file of the
// same name. The write is atomic: temp file, fsync, rename.
func (d *Dir) Write(name, content string) error {
	abs, err := d.safePath(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.root, ".zettelport-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Read returns the content of a generated file, mapping a missing file to
// apperr.ErrNotFound.
func (d *Dir) Read(name string) ([]byte, error) {
	abs, err := d.safePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: %s: %w", name, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// List returns the sorted names of all .md files in the output directory.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}
