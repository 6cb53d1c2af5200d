package ntfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ExtraDumpWriter appends every newly observed file extension and
// directory name to ntfs.exts / ntfs.dirs under the output directory,
// active only when Config.ExtraDumps (-X) is set. Grounded on the
// original program's Context::extra report files.
type ExtraDumpWriter struct {
	mu       sync.Mutex
	extsSeen map[string]bool
	dirsSeen map[string]bool
	extsFile *os.File
	dirsFile *os.File
}

// NewExtraDumpWriter creates (or appends to) ntfs.exts and ntfs.dirs
// inside dir, creating dir first if necessary.
func NewExtraDumpWriter(dir string) (*ExtraDumpWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ntfs: mkdir %s: %w", dir, err)
	}
	extsFile, err := os.OpenFile(filepath.Join(dir, "ntfs.exts"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("ntfs: open ntfs.exts: %w", err)
	}
	dirsFile, err := os.OpenFile(filepath.Join(dir, "ntfs.dirs"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		extsFile.Close()
		return nil, fmt.Errorf("ntfs: open ntfs.dirs: %w", err)
	}
	return &ExtraDumpWriter{
		extsSeen: make(map[string]bool),
		dirsSeen: make(map[string]bool),
		extsFile: extsFile,
		dirsFile: dirsFile,
	}, nil
}

// ObserveExtension appends ext to ntfs.exts the first time it is seen.
func (w *ExtraDumpWriter) ObserveExtension(ext string) {
	if w == nil || ext == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.extsSeen[ext] {
		return
	}
	w.extsSeen[ext] = true
	fmt.Fprintln(w.extsFile, ext)
}

// ObserveDirectory appends name to ntfs.dirs the first time it is seen.
func (w *ExtraDumpWriter) ObserveDirectory(name string) {
	if w == nil || name == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dirsSeen[name] {
		return
	}
	w.dirsSeen[name] = true
	fmt.Fprintln(w.dirsFile, name)
}

// Close flushes both report files.
func (w *ExtraDumpWriter) Close() error {
	if w == nil {
		return nil
	}
	err1 := w.extsFile.Close()
	err2 := w.dirsFile.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
