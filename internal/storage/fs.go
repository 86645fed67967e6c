package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/scribe/internal/apperr"
	"github.com/starford/scribe/internal/checksum"
)

const tmpPrefix = ".scribe-tmp-"

// FS stores one file per key in a flat directory.
type FS struct {
	root string // absolute path to the document directory
	ext  string
}

// NewFS creates a store rooted at root, creating the directory when it is
// missing. Files are named key+ext.
func NewFS(root, ext string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &FS{root: abs, ext: ext}, nil
}

// Root returns the absolute document directory.
func (f *FS) Root() string { return f.root }

// KeyFor maps a file path inside the root back to its key. It reports false
// for temp files, foreign extensions and paths outside the root.
func (f *FS) KeyFor(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil || filepath.Dir(abs) != f.root {
		return "", false
	}
	name := filepath.Base(abs)
	if strings.HasPrefix(name, tmpPrefix) || !strings.HasSuffix(name, f.ext) {
		return "", false
	}
	key := strings.TrimSuffix(name, f.ext)
	if ValidateKey(key) != nil {
		return "", false
	}
	return key, true
}

// safePath resolves key to a file under root and rejects anything that
// would escape it.
func (f *FS) safePath(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	abs := filepath.Join(f.root, key+f.ext)
	if filepath.Dir(abs) != f.root {
		return "", fmt.Errorf("storage: key escapes root: %s", key)
	}
	return abs, nil
}

func (f *FS) Get(_ context.Context, key string) ([]byte, error) {
	abs, err := f.safePath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("storage: read %s: %w", key, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return data, nil
}

// Set atomically writes data: tmp file, fsync, rename.
func (f *FS) Set(_ context.Context, key string, data []byte) error {
	abs, err := f.safePath(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, tmpPrefix+"*")
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

	if _, err := tmp.Write(data); err != nil {
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

func (f *FS) Delete(_ context.Context, key string) error {
	abs, err := f.safePath(key)
	if err != nil {
		return err
	}
	err = os.Remove(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", key, apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// List reads every document file in the root to report its checksum.
func (f *FS) List(_ context.Context) ([]Entry, error) {
	dirents, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []Entry
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		p := filepath.Join(f.root, d.Name())
		key, ok := f.KeyFor(p)
		if !ok {
			continue
		}
		info, err := d.Info()
		if err != nil {
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		out = append(out, Entry{Key: key, Checksum: checksum.Sum(data), UpdatedAt: info.ModTime().UTC()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *FS) Close() error { return nil }
