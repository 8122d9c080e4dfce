package rag

import (
	"errors"
	"fmt"

	"pharmacy-rag/internal/models"
)

// ErrIndexUnavailable reports that no knowledge index is present: the corpus
// was empty, the build failed, or indexing has not run yet.
var ErrIndexUnavailable = errors.New("knowledge index is unavailable")

// IndexingErrorKind distinguishes the recoverable indexing failures.
type IndexingErrorKind int

const (
	KindDirectoryAccess IndexingErrorKind = iota + 1
	KindEmbedding
)

func (k IndexingErrorKind) String() string {
	switch k {
	case KindDirectoryAccess:
		return "directory access"
	case KindEmbedding:
		return "embedding"
	default:
		return "unknown"
	}
}

// IndexingError wraps a failure during an indexing attempt. The attempt is
// abandoned as a whole; a partial index is never exposed.
type IndexingError struct {
	Kind IndexingErrorKind
	Err  error
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("indexing failed (%s): %v", e.Kind, e.Err)
}

func (e *IndexingError) Unwrap() error {
	return e.Err
}

// Fallback collapses a pipeline error into one of the two fixed user-facing
// strings. Transport handlers call this at the outermost layer so the error
// taxonomy stays testable independently of the canned text.
func Fallback(err error) string {
	if errors.Is(err, ErrIndexUnavailable) {
		return models.MsgUnavailable
	}
	return models.MsgProcessingError
}
