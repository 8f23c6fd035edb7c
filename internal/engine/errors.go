package engine

import (
	"errors"
	"fmt"
)

// ErrTokenization marks a tokenizer failure on a document. It is
// surfaced per document and never aborts a batch.
var ErrTokenization = errors.New("tokenization failed")

// IndexingError wraps a per-document indexing failure with the
// offending document id.
type IndexingError struct {
	DocumentID string
	Err        error
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("indexing document %s: %v", e.DocumentID, e.Err)
}

func (e *IndexingError) Unwrap() error {
	return e.Err
}
