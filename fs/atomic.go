// Package fs provides file-based input and output for scrape runs.
package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// AtomicFile is written under a temporary name and moved into place on
// Commit, so readers never observe a partially written file.
type AtomicFile struct {
	path string
	tmp  *os.File
}

// CreateAtomic opens path+".tmp" for writing, creating parent directories.
func CreateAtomic(path string) (*AtomicFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	tmp, err := os.Create(path + ".tmp")
	if err != nil {
		return nil, err
	}
	return &AtomicFile{path: path, tmp: tmp}, nil
}

// Write implements io.Writer.
func (f *AtomicFile) Write(p []byte) (int, error) {
	return f.tmp.Write(p)
}

// Commit flushes the temporary file and renames it over the final path.
func (f *AtomicFile) Commit() error {
	if err := f.tmp.Sync(); err != nil {
		return errors.Join(err, f.Abort())
	}
	if err := f.tmp.Close(); err != nil {
		return errors.Join(err, os.Remove(f.tmp.Name()))
	}
	return os.Rename(f.tmp.Name(), f.path)
}

// Abort discards the temporary file.
func (f *AtomicFile) Abort() error {
	_ = f.tmp.Close()
	if err := os.Remove(f.tmp.Name()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// WriteAtomic writes path through an AtomicFile. The previous content of
// path is kept if write returns an error.
func WriteAtomic(path string, write func(w io.Writer) error) error {
	f, err := CreateAtomic(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		return errors.Join(err, f.Abort())
	}
	return f.Commit()
}
