package merger

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"arxmerge/archive"
	"arxmerge/fragment"
)

// collector turns command line sources into fragment sources.
type collector struct {
	opts     fragment.LoadOptions
	archives bool
	codePage encoding.Encoding
	log      *zap.Logger

	sources []fragment.Source
	seen    map[string]bool
}

func (c *collector) add(src fragment.Source) {
	if c.seen[src.URI] {
		c.log.Debug("Skipping fragment specified more than once", zap.String("uri", src.URI))
		return
	}
	c.seen[src.URI] = true
	c.sources = append(c.sources, src)
}

// collect recognizes what src points to: fragment file, directory, zip
// archive or path inside zip archive.
func (c *collector) collect(ctx context.Context, src string) error {
	src, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	for head := src; len(head) != 0; head, _ = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}
		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exist, probably path in archive
			continue
		}
		inner := strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))

		switch {
		case fi.IsDir():
			if len(inner) != 0 {
				return fmt.Errorf("input source was not found (%s) => (%s)", head, inner)
			}
			return c.collectDir(ctx, head)

		case !fi.Mode().IsRegular():
			return fmt.Errorf("unexpected path mode for (%s)", head)
		}

		if c.archives {
			isArchive, err := isArchiveFile(head)
			if err != nil {
				return fmt.Errorf("unable to check archive type: %w", err)
			}
			if isArchive {
				return c.collectArchive(ctx, head, filepath.ToSlash(inner))
			}
		}
		if len(inner) != 0 {
			return fmt.Errorf("input source was not found (%s) => (%s)", head, inner)
		}

		ok, enc, err := isFragmentFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if !ok {
			return fmt.Errorf("input was not recognized as AUTOSAR XML (%s)", head)
		}
		c.add(fileSource(head, enc))
		return nil
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

// collectDir adds every fragment (and fragments inside archives) under dir
// in natural order of relative paths. Files which are not recognized are
// skipped.
func (c *collector) collectDir(ctx context.Context, dir string) error {
	var (
		files []string
		errs  error
	)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("unable to read %s: %w", path, err))
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slices.SortFunc(files, naturalOrder)

	count := 0
	for _, path := range files {
		if c.archives {
			isArchive, err := isArchiveFile(path)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			if isArchive {
				if err := c.collectArchive(ctx, path, ""); err != nil {
					if ctx.Err() != nil {
						return err
					}
					errs = multierr.Append(errs, fmt.Errorf("unable to process archive %s: %w", path, err))
				}
				continue
			}
		}
		if !c.opts.Matches(path) {
			continue
		}
		ok, enc, err := isFragmentFile(path)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if !ok {
			c.log.Debug("Skipping file, not recognized as AUTOSAR XML", zap.String("file", path))
			continue
		}
		c.add(fileSource(path, enc))
		count++
	}
	if errs != nil {
		return errs
	}
	if count == 0 {
		c.log.Debug("No fragments found", zap.String("dir", dir))
	}
	return nil
}

// collectArchive adds fragments stored in archive under inner path.
func (c *collector) collectArchive(ctx context.Context, path, inner string) error {
	count := 0
	err := archive.Walk(path, archive.Options{Prefix: inner, Match: c.opts.Matches, CodePage: c.codePage}, func(e archive.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, enc, err := isFragmentInArchive(e.File)
		if err != nil {
			c.log.Warn("Skipping file in archive", zap.String("archive", e.Archive), zap.String("file", e.Name), zap.Error(err))
			return nil
		}
		if !ok {
			c.log.Debug("Skipping file in archive, not recognized as AUTOSAR XML", zap.String("archive", e.Archive), zap.String("file", e.Name))
			return nil
		}
		// archive is closed when walk ends, content has to be kept
		data, err := readEntry(e.File)
		if err != nil {
			return fmt.Errorf("unable to read %s from archive: %w", e.Name, err)
		}
		c.add(fragment.Source{
			URI: fragment.ArchiveURI(e.Archive, e.Name),
			Open: func() (io.ReadCloser, error) {
				return decodingReader(io.NopCloser(bytes.NewReader(data)), enc), nil
			},
			UTF8: enc != encUnknown,
		})
		count++
		return nil
	})
	if err != nil {
		return err
	}
	if count == 0 {
		if len(inner) != 0 {
			return fmt.Errorf("no fragments found in archive (%s) under (%s)", path, inner)
		}
		c.log.Debug("No fragments found", zap.String("archive", path))
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func fileSource(path string, enc srcEncoding) fragment.Source {
	return fragment.Source{
		URI: fragment.FileURI(path),
		Open: func() (io.ReadCloser, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			return decodingReader(f, enc), nil
		},
		UTF8: enc != encUnknown,
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

func decodingReader(rc io.ReadCloser, enc srcEncoding) io.ReadCloser {
	if enc == encUnknown {
		return rc
	}
	return readCloser{Reader: selectReader(rc, enc), Closer: rc}
}

func naturalOrder(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	}
	return 0
}

// Sources expands command line arguments into fragment sources keeping
// argument order. Nothing is parsed yet.
func Sources(ctx context.Context, args []string, opts fragment.LoadOptions, archives bool, cp encoding.Encoding, log *zap.Logger) ([]fragment.Source, error) {
	if len(args) == 0 {
		return nil, errors.New("no input source has been specified")
	}
	c := &collector{opts: opts, archives: archives, codePage: cp, log: log, seen: make(map[string]bool)}
	for _, arg := range args {
		if err := c.collect(ctx, arg); err != nil {
			return nil, fmt.Errorf("unable to process source %q: %w", arg, err)
		}
	}
	if len(c.sources) == 0 {
		return nil, errors.New("no fragments found")
	}
	return c.sources, nil
}
