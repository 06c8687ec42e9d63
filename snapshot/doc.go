// Package snapshot persists a quad-tree as a set of text blobs so a
// built index can be reopened without re-ingesting its source data.
//
// The layout is one config blob plus one blob per internal node, named
// by the node's numeric identifier. Each line of a node blob describes
// one child in fixed quadrant order; leaf records are inlined in the
// parent's line, so leaves never get a blob of their own. Bounds and
// depths are not persisted at all: the reader recomputes them by
// quartering from the root coverage.
//
// # Usage
//
//	store := blobstore.NewLocalStore("/var/lib/geoquad")
//
//	if err := snapshot.Write(ctx, store, tree); err != nil {
//	    log.Fatal(err)
//	}
//
//	tree, err = snapshot.Read(ctx, store)
//	if errors.Is(err, snapshot.ErrNoSnapshot) {
//	    // Nothing persisted yet: ingest from scratch.
//	}
package snapshot
