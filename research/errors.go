package research

import (
	"errors"
	"fmt"
)

// ErrShape matches every *ShapeError.
var ErrShape = errors.New("malformed search results")

// ShapeError reports deduplicator input that is neither a search response nor
// a sequence of responses. The merge step is aborted.
type ShapeError struct {
	// Got is the Go type of the rejected value.
	Got string
	// Path locates the offending element, e.g. "[2].results[0]".
	Path   string
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed search results: %s (got %s)", e.Reason, e.Got)
	}
	return fmt.Sprintf("malformed search results at %s: %s (got %s)", e.Path, e.Reason, e.Got)
}

// Is reports whether target is ErrShape.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

func shapeError(v any, path, reason string) *ShapeError {
	return &ShapeError{Got: fmt.Sprintf("%T", v), Path: path, Reason: reason}
}

// Warning is a non-fatal condition met while formatting.
type Warning struct {
	URL     string
	Message string
}

func (w Warning) String() string {
	return w.URL + ": " + w.Message
}
