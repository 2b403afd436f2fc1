// Package merge combines AR-PACKAGEs of many fragments into a single model.
// Elements of different fragments are considered to be the same logical
// entity when they have equal canonical identity keys.
package merge

import (
	"arxmerge/arxml"
)

// IdentityProvider computes canonical identity key of the logical entity
// element represents. Structural elements have no key.
type IdentityProvider interface {
	SplitableFor(loc arxml.Locator) (arxml.Key, bool)
}

// ShortNamePaths identifies referrable elements by their absolute short-name
// paths. Elements with equal paths in different fragments are parts of the
// same splitable element.
type ShortNamePaths struct{}

func (ShortNamePaths) SplitableFor(loc arxml.Locator) (arxml.Key, bool) {
	if !loc.Valid() {
		return "", false
	}
	path, ok := loc.Tree.Path(loc.Node)
	if !ok {
		return "", false
	}
	return arxml.Key(path), true
}
