package fragment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolvedReference is matched by every UnresolvedReferenceError.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrAmbiguousReference is matched by every AmbiguousReferenceError.
	ErrAmbiguousReference = errors.New("ambiguous reference")
)

// UnresolvedReferenceError reports reference which target is not defined in
// any of the loaded fragments.
type UnresolvedReferenceError struct {
	Fragment string
	Source   string // path of the closest referrable owner of the reference
	Tag      string
	Dest     string
	Target   string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s: %s in %s (%s) -> %s [%s]", ErrUnresolvedReference, e.Tag, e.Source, e.Fragment, e.Target, e.Dest)
}

func (e *UnresolvedReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}

// AmbiguousReferenceError reports reference which target is defined in more
// than one fragment while referring fragment does not define it itself.
// Reference is still bound to the first definition.
type AmbiguousReferenceError struct {
	Fragment   string
	Source     string
	Tag        string
	Target     string
	Candidates []string
}

func (e *AmbiguousReferenceError) Error() string {
	return fmt.Sprintf("%s: %s in %s (%s) -> %s defined in [%s]", ErrAmbiguousReference, e.Tag, e.Source, e.Fragment, e.Target, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousReferenceError) Is(target error) bool {
	return target == ErrAmbiguousReference
}
