package merge

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// ErrMergeFailure is matched by every error returned from the engine when
// merged model could not be produced.
var ErrMergeFailure = errors.New("merge failure")

// Error carries all problems found during a single merge.
type Error struct {
	Problems error
}

func (e *Error) Error() string {
	errs := multierr.Errors(e.Problems)
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%s (%d problems): %s", ErrMergeFailure, len(errs), strings.Join(msgs, "; "))
}

func (e *Error) Is(target error) bool {
	return target == ErrMergeFailure
}

func (e *Error) Unwrap() []error {
	return multierr.Errors(e.Problems)
}

// ConflictError reports non-splitable content defined differently by two
// contributors of the same merged element.
type ConflictError struct {
	Path   string
	Tag    string
	First  string
	Second string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting %s of %s: %s vs %s", e.Tag, e.Path, e.First, e.Second)
}

// DanglingReferenceError reports reference of merged model which target is
// not part of the merged model.
type DanglingReferenceError struct {
	Source string
	Tag    string
	Target string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling %s in %s -> %s", e.Tag, e.Source, e.Target)
}
