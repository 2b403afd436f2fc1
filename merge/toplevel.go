package merge

import (
	"fmt"

	"go.uber.org/zap"

	"arxmerge/arxml"
	"arxmerge/fragment"
)

// Containers gathers AR-PACKAGEs directly under AR-PACKAGES of every fragment
// root: fragments in load order, packages in document order.
func Containers(set *fragment.Set) []arxml.Locator {
	var res []arxml.Locator
	for _, f := range set.Fragments() {
		t := f.Tree
		if t.Root() == arxml.InvalidNode {
			continue
		}
		for _, pkgs := range t.ChildrenByTag(t.Root(), arxml.TagPackages) {
			for _, pkg := range t.ChildrenByTag(pkgs, arxml.TagPackage) {
				res = append(res, t.Locate(pkg))
			}
		}
	}
	return res
}

// TopLevel passes top level packages of all fragments to the engine and
// returns merged model. It does no identity reasoning itself.
func TopLevel(set *fragment.Set, engine Engine, log *zap.Logger) (*arxml.Tree, error) {
	containers := Containers(set)
	log.Debug("Merging top level packages", zap.Int("fragments", set.Len()), zap.Int("packages", len(containers)))

	tree, err := engine.CreateMergedCopy(containers)
	if err != nil {
		return nil, fmt.Errorf("unable to merge %d fragments: %w", set.Len(), err)
	}
	return tree, nil
}
