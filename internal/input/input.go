// Package input decides whether a user-supplied path is a single curve file or
// a directory of curve files and enumerates the members of a directory.
package input

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrInvalidInput reports a path that is neither a regular file nor a directory.
var ErrInvalidInput = errors.New("invalid input")

// Source is a resolved input path.
type Source struct {
	Path  string
	IsDir bool
	// Files lists the curve files to process, in processing order.
	Files []string
}

// Resolve stats path and returns the files it designates. Directory members
// whose names start with "." or "_" are skipped, as are subdirectories and
// other non-regular entries.
func Resolve(path string) (Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Source{}, fmt.Errorf("%w: empty path", ErrInvalidInput)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Source{}, fmt.Errorf("%w: %s does not exist", ErrInvalidInput, path)
		}
		return Source{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	switch {
	case info.Mode().IsRegular():
		return Source{Path: path, Files: []string{path}}, nil
	case info.IsDir():
		files, err := listDir(path)
		if err != nil {
			return Source{}, err
		}
		return Source{Path: path, IsDir: true, Files: files}, nil
	default:
		return Source{}, fmt.Errorf("%w: %s is not a file or directory", ErrInvalidInput, path)
	}
}

func listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read directory: %v", ErrInvalidInput, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if Hidden(name) {
			continue
		}
		full := filepath.Join(dir, name)
		// Follow symlinks so linked curve files are still processed.
		info, err := os.Stat(full)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, full)
	}
	sort.Strings(files)
	return files, nil
}

// Hidden reports whether a directory member is excluded from processing.
func Hidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// Stem returns the file name without directory and final extension. It names
// the per-input outputs.
func Stem(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		return strings.TrimSuffix(base, ext)
	}
	return base
}
