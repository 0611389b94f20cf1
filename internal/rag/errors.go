package rag

import "fmt"

// ValidationError reports input rejected before any work is done.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IngestionError reports a document that was only partly stored. Stored
// chunks stay in the index.
type IngestionError struct {
	Filename string
	Stored   int
	Err      error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s: stored %d chunks before failure: %v", e.Filename, e.Stored, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }
