package history

import (
	"fmt"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

// ObjectNotFoundError reports an accessor failure during a traversal.
// It matches both lhcerrors.ErrObjectNotFound and the accessor's own error.
type ObjectNotFoundError struct {
	ID  ObjectID
	Err error
}

func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("object %s not found: %v", e.ID, e.Err)
}

// Unwrap exposes the sentinel and the cause to errors.Is and errors.As.
func (e *ObjectNotFoundError) Unwrap() []error {
	return []error{lhcerrors.ErrObjectNotFound, e.Err}
}

// ReferenceNotFoundError reports a start commit that is not an ancestor of the leaf.
type ReferenceNotFoundError struct {
	Reference ObjectID
	Leaf      ObjectID
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("could not reach commit %s from commit %s", e.Reference, e.Leaf)
}

// Unwrap lets errors.Is match lhcerrors.ErrReferenceNotFoundFromLeaf.
func (e *ReferenceNotFoundError) Unwrap() error {
	return lhcerrors.ErrReferenceNotFoundFromLeaf
}
