// Package archive visits model fragments stored in zip archives.
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/text/encoding"
)

// Entry is a file inside archive visited by Walk.
type Entry struct {
	// Archive is path to archive passed to Walk.
	Archive string
	// Name is path inside archive, decoded when archive does not mark it as
	// UTF-8 and code page was requested.
	Name string
	File *zip.File
}

// WalkFunc is called for every entry satisfying walk options. If an error is
// returned, processing stops.
type WalkFunc func(e Entry) error

type Options struct {
	// Prefix restricts walk to part of archive tree.
	Prefix string
	// Match selects entries by decoded name, nil matches everything.
	Match func(name string) bool
	// CodePage forces encoding of file names not marked as UTF-8.
	CodePage encoding.Encoding
}

// Walk calls walkFn for every file in the archive satisfying options in
// natural order of their names. Archives with entries which are absolute or
// contain path traversal components are rejected as a whole.
func Walk(archive string, opts Options, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		name := decodeName(f, opts.CodePage)
		if !strings.HasPrefix(name, opts.Prefix) {
			continue
		}
		if opts.Match != nil && !opts.Match(name) {
			continue
		}
		entries = append(entries, Entry{Archive: archive, Name: name, File: f})
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case natural.Less(a.Name, b.Name):
			return -1
		case natural.Less(b.Name, a.Name):
			return 1
		}
		return 0
	})

	for _, e := range entries {
		if err := walkFn(e); err != nil {
			return err
		}
	}
	return nil
}

func decodeName(f *zip.File, cp encoding.Encoding) string {
	if cp == nil || !f.NonUTF8 {
		return f.Name
	}
	if n, err := cp.NewDecoder().String(f.Name); err == nil {
		return n
	}
	return f.Name
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	return !slices.Contains(strings.Split(name, "/"), "..")
}
