package snapshot

import (
	"errors"
	"fmt"
)

// ErrNoSnapshot is returned by Read when the store holds no snapshot
// (missing config or root blob). Callers fall back to ingestion.
var ErrNoSnapshot = errors.New("no snapshot available")

// MalformedNodeError reports a node blob that does not parse. It is a
// hard failure: a partially reconstructed tree would silently drop
// records from query results.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type MalformedNodeError struct {
	Blob   string
	Line   int
	Reason string
	cause  error
}

func (e *MalformedNodeError) Error() string {
	return fmt.Sprintf("snapshot: malformed node blob %q line %d: %s", e.Blob, e.Line, e.Reason)
}

func (e *MalformedNodeError) Unwrap() error { return e.cause }

// CorruptSnapshotError reports a snapshot whose blobs parse
// individually but are inconsistent as a whole, such as duplicate or
// missing node identifiers.
type CorruptSnapshotError struct {
	Reason string
}

func (e *CorruptSnapshotError) Error() string {
	return fmt.Sprintf("snapshot: corrupt snapshot: %s", e.Reason)
}
