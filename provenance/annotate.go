package provenance

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"arxmerge/arxml"
)

// DefaultGID marks special data group holding provenance entries.
const DefaultGID = "splitinfo"

// Annotator records provenance in ADMIN-DATA of merged elements: one SD per
// contributing fragment URI inside single SDG marked with GID.
type Annotator struct {
	GID string
	// Deduplicate skips URIs already recorded in the group, which makes
	// repeated runs over the same model idempotent. Without it every run
	// appends entry for every source element.
	Deduplicate bool
	Log         *zap.Logger
}

// Annotate mutates merged tree in place and returns number of appended
// entries. Merged elements which cannot carry ADMIN-DATA are skipped.
func (a *Annotator) Annotate(tree *arxml.Tree, m *Map) (int, error) {
	if tree == nil || m == nil {
		return 0, fmt.Errorf("nothing to annotate")
	}
	if m.Tree() != nil && m.Tree() != tree {
		return 0, fmt.Errorf("provenance map does not belong to tree %q", tree.URI)
	}
	gid := a.GID
	if gid == "" {
		gid = DefaultGID
	}
	log := a.Log
	if log == nil {
		log = zap.NewNop()
	}

	// annotations add nodes, collect targets before touching anything
	var targets []arxml.NodeID
	for id := range tree.All() {
		if len(m.Sources(id)) > 0 {
			targets = append(targets, id)
		}
	}

	var added, skipped, unsupported int
	for _, id := range targets {
		view, ok := tree.AsAnnotatable(id)
		if !ok {
			unsupported++
			log.Debug("Element cannot carry annotations, skipping", zap.String("tag", tree.Node(id).Tag), zap.String("path", m.path(id)))
			continue
		}
		var recorded []string
		if a.Deduplicate {
			recorded = view.SpecialData(gid)
		}
		for _, src := range m.Sources(id) {
			uri := src.Tree.URI
			if a.Deduplicate && slices.Contains(recorded, uri) {
				skipped++
				continue
			}
			view.AddSpecialData(gid, uri)
			recorded = append(recorded, uri)
			added++
		}
	}

	log.Debug("Merged model annotated",
		zap.String("gid", gid),
		zap.Int("elements", len(targets)-unsupported),
		zap.Int("unsupported", unsupported),
		zap.Int("added", added),
		zap.Int("already recorded", skipped))
	return added, nil
}
