// Package fragment keeps the working set of loaded model fragments and
// resolves references crossing fragment boundaries.
package fragment

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"arxmerge/arxml"
)

// LoadOptions is explicit loader configuration, there is no process wide
// registry of formats.
type LoadOptions struct {
	// Extensions lists (lower case) file name extensions recognized as fragments.
	Extensions []string
	// Permissive allows slightly malformed XML.
	Permissive bool
	// IgnoreDeclaredEncoding treats input as UTF-8 whatever XML declaration
	// says.
	IgnoreDeclaredEncoding bool
}

// DefaultLoadOptions returns options suitable for AUTOSAR 4.x files.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{Extensions: []string{".arxml"}}
}

// Matches reports whether file name has one of recognized extensions.
func (o LoadOptions) Matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range o.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Fragment is one loaded source unit.
type Fragment struct {
	// URI uniquely identifies origin of the fragment, it is recorded in
	// provenance annotations.
	URI string
	// Order is position of the fragment in the set.
	Order int
	Tree  *arxml.Tree
}

func (f *Fragment) String() string {
	return fmt.Sprintf("fragment[%d] %s", f.Order, f.URI)
}

// Parse reads single fragment from r. Nothing is resolved at this point.
func Parse(r io.Reader, uri string, opts LoadOptions, log *zap.Logger) (*Fragment, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		ValidateInput: false,
		Permissive:    opts.Permissive,
	}
	if opts.IgnoreDeclaredEncoding {
		doc.ReadSettings.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
			return input, nil
		}
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", uri, err)
	}
	tree, err := arxml.FromDocument(doc, uri, log)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", uri, err)
	}
	return &Fragment{URI: uri, Order: -1, Tree: tree}, nil
}

// FileURI converts local file path into URI used to identify fragment.
func FileURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return "file:" + filepath.ToSlash(path)
}

// ArchiveURI builds URI of the fragment stored inside zip archive.
func ArchiveURI(archive, inner string) string {
	return FileURI(archive) + "#" + strings.TrimPrefix(filepath.ToSlash(inner), "/")
}
