package provenance

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"arxmerge/arxml"
	"arxmerge/fragment"
	"arxmerge/merge"
)

// ErrNotMerged is matched by every NotMergedError.
var ErrNotMerged = errors.New("element has no merged counterpart")

// NotMergedError reports source element which identity key is unknown to the
// merge engine.
type NotMergedError struct {
	Fragment string
	Key      arxml.Key
}

func (e *NotMergedError) Error() string {
	return fmt.Sprintf("%s: %s in %s", ErrNotMerged, e.Key, e.Fragment)
}

func (e *NotMergedError) Is(target error) bool {
	return target == ErrNotMerged
}

// Build walks every element of every fragment in load and document order and
// maps merged elements to the source elements sharing their identity key.
// Elements without key are skipped. Keys engine does not know are reported
// together, the map built so far is always returned.
func Build(engine merge.Engine, set *fragment.Set, idp merge.IdentityProvider, log *zap.Logger) (*Map, error) {
	merged := engine.Tree()
	if merged == nil {
		return nil, fmt.Errorf("engine has no merged model")
	}

	m := NewMap(merged)
	var (
		err     error
		skipped int
	)
	for _, f := range set.Fragments() {
		if f.Tree.Root() == arxml.InvalidNode {
			continue
		}
		for id := range f.Tree.All() {
			src := f.Tree.Locate(id)
			key, ok := idp.SplitableFor(src)
			if !ok {
				skipped++
				continue
			}
			target, ok := engine.Get(key)
			if !ok {
				err = multierr.Append(err, &NotMergedError{Fragment: f.URI, Key: key})
				continue
			}
			m.Add(target, src)
		}
	}

	log.Debug("Provenance map built",
		zap.Int("fragments", set.Len()),
		zap.Int("merged", m.Len()),
		zap.Int("sources", m.Entries()),
		zap.Int("shared", len(m.MultiSource())),
		zap.Int("without key", skipped))
	return m, err
}
