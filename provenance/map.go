// Package provenance records which fragments contributed to which merged
// elements and persists this knowledge as ADMIN-DATA annotations.
package provenance

import (
	"iter"
	"slices"

	"github.com/maruel/natural"

	"arxmerge/arxml"
	"arxmerge/utils/debug"
)

// Map associates merged elements with source elements sharing their
// canonical identity key. Keys are kept in first-insertion order, sources of
// each key in insertion order.
type Map struct {
	merged  *arxml.Tree
	keys    []arxml.NodeID
	sources map[arxml.NodeID][]arxml.Locator
	seen    map[arxml.Locator]struct{}
}

func NewMap(merged *arxml.Tree) *Map {
	return &Map{
		merged:  merged,
		sources: make(map[arxml.NodeID][]arxml.Locator),
		seen:    make(map[arxml.Locator]struct{}),
	}
}

// Tree returns merged model map keys belong to.
func (m *Map) Tree() *arxml.Tree {
	return m.merged
}

// Add records src as contributor of merged element. Every source element is
// recorded at most once, false is returned for repeated additions.
func (m *Map) Add(merged arxml.NodeID, src arxml.Locator) bool {
	if _, ok := m.seen[src]; ok {
		return false
	}
	m.seen[src] = struct{}{}

	list, ok := m.sources[merged]
	if !ok {
		m.keys = append(m.keys, merged)
	}
	m.sources[merged] = append(list, src)
	return true
}

// Sources returns contributors of merged element in insertion order.
func (m *Map) Sources(merged arxml.NodeID) []arxml.Locator {
	return m.sources[merged]
}

// Keys returns merged elements in first-insertion order.
func (m *Map) Keys() []arxml.NodeID {
	return slices.Clone(m.keys)
}

// Len returns number of merged elements in the map.
func (m *Map) Len() int {
	return len(m.keys)
}

// Entries returns total number of (merged, source) pairs.
func (m *Map) Entries() int {
	return len(m.seen)
}

// All iterates over map in key insertion order.
func (m *Map) All() iter.Seq2[arxml.NodeID, []arxml.Locator] {
	return func(yield func(arxml.NodeID, []arxml.Locator) bool) {
		for _, k := range m.keys {
			if !yield(k, m.sources[k]) {
				return
			}
		}
	}
}

// MultiSource returns merged elements having more than one contributor.
func (m *Map) MultiSource() []arxml.NodeID {
	var res []arxml.NodeID
	for _, k := range m.keys {
		if len(m.sources[k]) > 1 {
			res = append(res, k)
		}
	}
	return res
}

// URIs returns distinct URIs of fragments which contributed to merged
// element, in order of first contribution.
func (m *Map) URIs(merged arxml.NodeID) []string {
	var res []string
	for _, src := range m.sources[merged] {
		if src.Tree != nil && !slices.Contains(res, src.Tree.URI) {
			res = append(res, src.Tree.URI)
		}
	}
	return res
}

// String returns readable dump sorted by merged element path, used in debug
// reports.
func (m *Map) String() string {
	if m == nil {
		return "<nil Map>"
	}

	type line struct {
		path string
		id   arxml.NodeID
	}
	lines := make([]line, 0, len(m.keys))
	for _, k := range m.keys {
		lines = append(lines, line{path: m.path(k), id: k})
	}
	slices.SortStableFunc(lines, func(a, b line) int {
		switch {
		case natural.Less(a.path, b.path):
			return -1
		case natural.Less(b.path, a.path):
			return 1
		}
		return 0
	})

	tw := debug.NewTreeWriter()
	tw.Line(0, "Provenance: %d merged elements, %d sources, %d shared", m.Len(), m.Entries(), len(m.MultiSource()))
	for _, l := range lines {
		var items []string
		for _, src := range m.sources[l.id] {
			p, _ := src.Tree.Path(src.Node)
			items = append(items, src.Tree.URI+" "+p)
		}
		tw.List(1, l.path, items)
	}
	return tw.String()
}

func (m *Map) path(id arxml.NodeID) string {
	if m.merged != nil {
		if p, ok := m.merged.Path(id); ok {
			return p
		}
		return "<" + m.merged.Node(id).Tag + ">"
	}
	return ""
}
