package fragment

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"arxmerge/arxml"
)

// Set is the working collection of fragments for one run. Fragments are only
// ever appended, their order is load order.
type Set struct {
	fragments []*Fragment
	byTree    map[*arxml.Tree]*Fragment
	// ReportAmbiguous makes ResolveAll report targets defined in several
	// fragments, otherwise first definition silently wins.
	ReportAmbiguous bool
}

func NewSet() *Set {
	return &Set{byTree: make(map[*arxml.Tree]*Fragment)}
}

// Add appends fragment to the set and assigns its order.
func (s *Set) Add(f *Fragment) {
	f.Order = len(s.fragments)
	s.fragments = append(s.fragments, f)
	s.byTree[f.Tree] = f
}

func (s *Set) Len() int {
	return len(s.fragments)
}

// Fragments returns fragments in load order. Returned slice must not be
// modified.
func (s *Set) Fragments() []*Fragment {
	return s.fragments
}

// Owner returns fragment owning the tree, if any.
func (s *Set) Owner(t *arxml.Tree) (*Fragment, bool) {
	f, ok := s.byTree[t]
	return f, ok
}

// Resolve looks for referrable element with requested path in fragments in
// load order and returns the first one found. It does not modify anything.
func (s *Set) Resolve(path string) (arxml.Locator, bool) {
	for _, f := range s.fragments {
		if id, ok := f.Tree.Lookup(path); ok {
			return f.Tree.Locate(id), true
		}
	}
	return arxml.Locator{}, false
}

// candidates returns URIs of all fragments defining path.
func (s *Set) candidates(path string) []string {
	var res []string
	for _, f := range s.fragments {
		if _, ok := f.Tree.Lookup(path); ok {
			res = append(res, f.URI)
		}
	}
	return res
}

// ResolveAll binds every symbolic reference of every fragment. References are
// first looked up in their own fragment, then in the whole set. All problems
// are collected and returned together, so a single pass reveals all integrity
// issues of the inputs. References which could not be bound stay symbolic.
func (s *Set) ResolveAll(log *zap.Logger) (err error) {
	var resolved, crossed int
	for _, f := range s.fragments {
		for id, ref := range f.Tree.References() {
			if !ref.Symbolic() {
				continue
			}
			if target, ok := f.Tree.Lookup(ref.Path); ok {
				ref.Bind(f.Tree.Locate(target))
				resolved++
				continue
			}
			target, ok := s.Resolve(ref.Path)
			if !ok {
				err = multierr.Append(err, &UnresolvedReferenceError{
					Fragment: f.URI,
					Source:   ownerPath(f.Tree, id),
					Tag:      f.Tree.Node(id).Tag,
					Dest:     ref.Dest,
					Target:   ref.Path,
				})
				continue
			}
			ref.Bind(target)
			resolved++
			crossed++

			if s.ReportAmbiguous {
				if c := s.candidates(ref.Path); len(c) > 1 {
					err = multierr.Append(err, &AmbiguousReferenceError{
						Fragment:   f.URI,
						Source:     ownerPath(f.Tree, id),
						Tag:        f.Tree.Node(id).Tag,
						Target:     ref.Path,
						Candidates: c,
					})
				}
			}
		}
	}
	log.Debug("References resolved",
		zap.Int("fragments", len(s.fragments)),
		zap.Int("resolved", resolved),
		zap.Int("cross-fragment", crossed),
		zap.Int("problems", len(multierr.Errors(err))))
	return err
}

// Unresolved counts references which are still symbolic.
func (s *Set) Unresolved() int {
	n := 0
	for _, f := range s.fragments {
		for _, ref := range f.Tree.References() {
			if ref.Symbolic() {
				n++
			}
		}
	}
	return n
}

// ownerPath returns path of the closest referrable ancestor of the node.
func ownerPath(t *arxml.Tree, id arxml.NodeID) string {
	for cur := id; cur != arxml.InvalidNode; cur = t.Node(cur).Parent {
		if p, ok := t.Path(cur); ok {
			return p
		}
	}
	return "/"
}
