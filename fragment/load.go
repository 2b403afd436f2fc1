package fragment

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source is a single fragment to be loaded. Open is called exactly once.
type Source struct {
	URI  string
	Open func() (io.ReadCloser, error)
	// UTF8 is set when Open already converts content to UTF-8, encoding
	// declared by the document is ignored then.
	UTF8 bool
}

// Load parses sources using up to workers goroutines and returns set with
// fragments in the order of sources, regardless of parsing order. Sources
// which could not be parsed are skipped and their errors are returned
// together with the set.
func Load(ctx context.Context, sources []Source, opts LoadOptions, workers int, log *zap.Logger) (*Set, error) {
	parsed := make([]*Fragment, len(sources))
	failures := make([]error, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := loadSource(src, opts, log)
			if err != nil {
				failures[i] = err
				return nil
			}
			parsed[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := NewSet()
	for _, f := range parsed {
		if f != nil {
			set.Add(f)
			log.Debug("Fragment loaded", zap.Stringer("fragment", f), zap.Int("nodes", f.Tree.Len()), zap.Int("paths", f.Tree.Paths()))
		}
	}
	return set, multierr.Combine(failures...)
}

func loadSource(src Source, opts LoadOptions, log *zap.Logger) (f *Fragment, err error) {
	r, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", src.URI, err)
	}
	defer func() {
		if e := r.Close(); e != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close %s: %w", src.URI, e))
		}
	}()
	if src.UTF8 {
		opts.IgnoreDeclaredEncoding = true
	}
	return Parse(r, src.URI, opts, log)
}
