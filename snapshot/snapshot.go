package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/geoquad/blobstore"
	"github.com/hupe1980/geoquad/geom"
	"github.com/hupe1980/geoquad/quadtree"
)

// ConfigBlob is the name of the blob holding the tree configuration.
const ConfigBlob = "config"

// uploadConcurrency bounds the number of in-flight blob uploads.
const uploadConcurrency = 8

// Write persists tree into store: one config blob plus one blob per
// internal node, named by the node's numeric identifier. Leaf contents
// are inlined in the parent's blob and never get a blob of their own.
//
// Write overwrites a previous snapshot in place and removes node blobs
// the new snapshot no longer uses, so repeated writes leave no stale
// files behind.
func Write(ctx context.Context, store blobstore.BlobStore, tree *quadtree.Tree) error {
	if store == nil {
		return fmt.Errorf("snapshot: store is nil")
	}
	if tree == nil {
		return fmt.Errorf("snapshot: tree is nil")
	}

	nodes := tree.Nodes()

	blobs := map[string][]byte{
		ConfigBlob: fmt.Appendf(nil, "capacity;%d;depth;%d", tree.Capacity(), tree.MaxDepth()),
	}

	seen := roaring.New()
	seen.Add(uint32(quadtree.RootID))

	if nodes[quadtree.RootID].Kind == quadtree.KindLeaf {
		// A tree that never subdivided has no internal node to anchor
		// the root blob, so blob "0" describes the root itself. Child
		// id 0 is unambiguous here: no real child can be the root.
		var buf bytes.Buffer
		if err := writeChildLine(&buf, 0, quadtree.RootID, &nodes[quadtree.RootID], tree.Capacity()); err != nil {
			return err
		}

		blobs[nodeBlobName(quadtree.RootID)] = buf.Bytes()
	} else if err := encodeInternal(nodes, quadtree.RootID, tree.Capacity(), seen, blobs); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)

	for name, data := range blobs {
		g.Go(func() error {
			return store.Put(gctx, name, data)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("snapshot: upload: %w", err)
	}

	return removeStale(ctx, store, blobs)
}

// encodeInternal assembles the blob payload for the internal node id
// and recurses into its internal children, depth-first.
func encodeInternal(nodes []quadtree.Node, id quadtree.NodeID, capacity int, seen *roaring.Bitmap, blobs map[string][]byte) error {
	var buf bytes.Buffer

	n := &nodes[id]
	for q, child := range n.Children {
		if seen.Contains(uint32(child)) {
			return &CorruptSnapshotError{Reason: fmt.Sprintf("node %d referenced twice", child)}
		}

		seen.Add(uint32(child))

		if err := writeChildLine(&buf, geom.Quadrant(q), child, &nodes[child], capacity); err != nil {
			return err
		}
	}

	blobs[nodeBlobName(id)] = buf.Bytes()

	for _, child := range n.Children {
		if nodes[child].Kind == quadtree.KindInternal {
			if err := encodeInternal(nodes, child, capacity, seen, blobs); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeChildLine appends one child line to buf:
// <quadrant>:<kind>:<childId>:<childCapacity>, followed by the child's
// records as :<lat>;<lon>;<key> when the child is a leaf.
func writeChildLine(buf *bytes.Buffer, q geom.Quadrant, id quadtree.NodeID, n *quadtree.Node, capacity int) error {
	fmt.Fprintf(buf, "%d:%s:%d:%d", int(q), n.Kind, id, capacity)

	if n.Kind == quadtree.KindLeaf {
		for _, rec := range n.Records {
			if strings.ContainsAny(rec.Key, ":;\n") {
				return fmt.Errorf("snapshot: record key %q contains a delimiter", rec.Key)
			}

			fmt.Fprintf(buf, ":%s;%s;%s", formatCoord(rec.Point.Lat), formatCoord(rec.Point.Lon), rec.Key)
		}
	}

	buf.WriteByte('\n')

	return nil
}

// removeStale deletes node blobs left over from a previous, larger
// snapshot.
func removeStale(ctx context.Context, store blobstore.BlobStore, written map[string][]byte) error {
	names, err := store.List(ctx, "")
	if err != nil {
		return fmt.Errorf("snapshot: list blobs: %w", err)
	}

	for _, name := range names {
		if _, ok := written[name]; ok {
			continue
		}

		if !isNodeBlobName(name) {
			continue
		}

		if err := store.Delete(ctx, name); err != nil {
			return fmt.Errorf("snapshot: delete stale blob %q: %w", name, err)
		}
	}

	return nil
}

// Read reconstructs a tree from the snapshot in store.
//
// A store without a config or root blob yields ErrNoSnapshot, which
// callers treat as "ingest from scratch". Anything that parses wrongly
// is a hard error (*MalformedNodeError or *CorruptSnapshotError):
// silently skipping a bad line would drop records from query results
// without any visible sign.
//
// Child bounds are not persisted; they are recomputed by quartering
// from the root coverage, so reconstructed node identifiers and bounds
// match those of the written tree exactly.
func Read(ctx context.Context, store blobstore.BlobStore, optFns ...func(o *quadtree.Options)) (*quadtree.Tree, error) {
	if store == nil {
		return nil, fmt.Errorf("snapshot: store is nil")
	}

	capacity, maxDepth, err := readConfig(ctx, store)
	if err != nil {
		return nil, err
	}

	r := &reader{
		store:    store,
		capacity: capacity,
		maxDepth: maxDepth,
		seen:     roaring.New(),
	}

	r.seen.Add(uint32(quadtree.RootID))

	rootName := nodeBlobName(quadtree.RootID)

	data, err := blobstore.ReadAll(ctx, store, rootName)
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: read root blob: %w", err)
	}

	lines := splitLines(data)

	if len(lines) == 1 {
		cl, err := r.parseLine(rootName, 1, lines[0])
		if err != nil {
			return nil, err
		}

		if cl.id != quadtree.RootID {
			return nil, &MalformedNodeError{Blob: rootName, Line: 1, Reason: fmt.Sprintf("expected %d child lines, got 1", geom.NumQuadrants)}
		}

		if cl.kind != quadtree.KindLeaf {
			return nil, &MalformedNodeError{Blob: rootName, Line: 1, Reason: "self-describing root must be a leaf"}
		}

		r.setNode(quadtree.RootID, quadtree.Node{
			Kind:    quadtree.KindLeaf,
			Rect:    geom.FullCoverage(),
			Records: cl.records,
		})

		return quadtree.Restore(capacity, maxDepth, r.nodes, optFns...)
	}

	if err := r.readInternal(ctx, quadtree.RootID, geom.FullCoverage(), 0); err != nil {
		return nil, err
	}

	if r.seen.GetCardinality() != uint64(len(r.nodes)) {
		return nil, &CorruptSnapshotError{Reason: fmt.Sprintf("node id gap: %d ids for %d arena slots", r.seen.GetCardinality(), len(r.nodes))}
	}

	return quadtree.Restore(capacity, maxDepth, r.nodes, optFns...)
}

// readConfig parses the config blob: capacity;<int>;depth;<int>.
func readConfig(ctx context.Context, store blobstore.BlobStore) (capacity, maxDepth int, err error) {
	data, err := blobstore.ReadAll(ctx, store, ConfigBlob)
	if errors.Is(err, blobstore.ErrNotFound) {
		return 0, 0, ErrNoSnapshot
	}
	if err != nil {
		return 0, 0, fmt.Errorf("snapshot: read config blob: %w", err)
	}

	fields := strings.Split(strings.TrimSpace(string(data)), ";")
	if len(fields) != 4 || fields[0] != "capacity" || fields[2] != "depth" {
		return 0, 0, &MalformedNodeError{Blob: ConfigBlob, Line: 1, Reason: "expected capacity;<int>;depth;<int>"}
	}

	capacity, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, &MalformedNodeError{Blob: ConfigBlob, Line: 1, Reason: "capacity is not an integer", cause: err}
	}

	maxDepth, err = strconv.Atoi(fields[3])
	if err != nil {
		return 0, 0, &MalformedNodeError{Blob: ConfigBlob, Line: 1, Reason: "depth is not an integer", cause: err}
	}

	return capacity, maxDepth, nil
}

type reader struct {
	store    blobstore.BlobStore
	capacity int
	maxDepth int
	seen     *roaring.Bitmap
	nodes    []quadtree.Node
}

// readInternal reconstructs the internal node id and, recursively, the
// subtree below it. rect and depth are recomputed on the way down, not
// read from the snapshot.
func (r *reader) readInternal(ctx context.Context, id quadtree.NodeID, rect geom.Rect, depth uint32) error {
	name := nodeBlobName(id)

	data, err := blobstore.ReadAll(ctx, r.store, name)
	if errors.Is(err, blobstore.ErrNotFound) {
		return &CorruptSnapshotError{Reason: fmt.Sprintf("internal node %d has no blob", id)}
	}
	if err != nil {
		return fmt.Errorf("snapshot: read node blob %q: %w", name, err)
	}

	lines := splitLines(data)
	if len(lines) != geom.NumQuadrants {
		return &MalformedNodeError{Blob: name, Line: len(lines), Reason: fmt.Sprintf("expected %d child lines, got %d", geom.NumQuadrants, len(lines))}
	}

	node := quadtree.Node{
		Kind:  quadtree.KindInternal,
		Rect:  rect,
		Depth: depth,
	}

	var seenQuadrant [geom.NumQuadrants]bool

	for i, line := range lines {
		cl, err := r.parseLine(name, i+1, line)
		if err != nil {
			return err
		}

		if seenQuadrant[cl.quadrant] {
			return &MalformedNodeError{Blob: name, Line: i + 1, Reason: fmt.Sprintf("duplicate quadrant %s", cl.quadrant)}
		}

		seenQuadrant[cl.quadrant] = true

		if r.seen.Contains(uint32(cl.id)) {
			return &CorruptSnapshotError{Reason: fmt.Sprintf("node %d referenced twice", cl.id)}
		}

		r.seen.Add(uint32(cl.id))

		childRect := rect.Split(cl.quadrant)
		childDepth := depth + 1

		if int(childDepth) > r.maxDepth {
			return &CorruptSnapshotError{Reason: fmt.Sprintf("node %d at depth %d exceeds max depth %d", cl.id, childDepth, r.maxDepth)}
		}

		node.Children[cl.quadrant] = cl.id

		switch cl.kind {
		case quadtree.KindLeaf:
			r.setNode(cl.id, quadtree.Node{
				Kind:    quadtree.KindLeaf,
				Rect:    childRect,
				Depth:   childDepth,
				Records: cl.records,
			})
		case quadtree.KindInternal:
			if err := r.readInternal(ctx, cl.id, childRect, childDepth); err != nil {
				return err
			}
		}
	}

	r.setNode(id, node)

	return nil
}

// childLine is one parsed line of a node blob.
type childLine struct {
	quadrant geom.Quadrant
	kind     quadtree.NodeKind
	id       quadtree.NodeID
	records  []quadtree.Record
}

func (r *reader) parseLine(blob string, lineNo int, s string) (childLine, error) {
	malformed := func(reason string, cause error) (childLine, error) {
		return childLine{}, &MalformedNodeError{Blob: blob, Line: lineNo, Reason: reason, cause: cause}
	}

	fields := strings.Split(s, ":")
	if len(fields) < 4 {
		return malformed("expected <quadrant>:<kind>:<childId>:<childCapacity>", nil)
	}

	q, err := strconv.Atoi(fields[0])
	if err != nil || q < 0 || q >= geom.NumQuadrants {
		return malformed(fmt.Sprintf("invalid quadrant %q", fields[0]), err)
	}

	var kind quadtree.NodeKind

	switch fields[1] {
	case quadtree.KindLeaf.String():
		kind = quadtree.KindLeaf
	case quadtree.KindInternal.String():
		kind = quadtree.KindInternal
	default:
		return malformed(fmt.Sprintf("invalid node kind %q", fields[1]), nil)
	}

	id, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return malformed(fmt.Sprintf("invalid child id %q", fields[2]), err)
	}

	childCapacity, err := strconv.Atoi(fields[3])
	if err != nil {
		return malformed(fmt.Sprintf("invalid child capacity %q", fields[3]), err)
	}

	if childCapacity != r.capacity {
		return malformed(fmt.Sprintf("child capacity %d does not match configured capacity %d", childCapacity, r.capacity), nil)
	}

	if kind == quadtree.KindInternal && len(fields) > 4 {
		return malformed("internal child carries inline records", nil)
	}

	var records []quadtree.Record

	for _, f := range fields[4:] {
		parts := strings.Split(f, ";")
		if len(parts) != 3 {
			return malformed(fmt.Sprintf("expected record <lat>;<lon>;<key>, got %q", f), nil)
		}

		lat, err := parseCoord(parts[0])
		if err != nil {
			return malformed(fmt.Sprintf("invalid latitude %q", parts[0]), err)
		}

		lon, err := parseCoord(parts[1])
		if err != nil {
			return malformed(fmt.Sprintf("invalid longitude %q", parts[1]), err)
		}

		records = append(records, quadtree.Record{
			Key:   parts[2],
			Point: geom.Point{Lat: lat, Lon: lon},
		})
	}

	return childLine{
		quadrant: geom.Quadrant(q),
		kind:     kind,
		id:       quadtree.NodeID(id),
		records:  records,
	}, nil
}

func (r *reader) setNode(id quadtree.NodeID, n quadtree.Node) {
	if int(id) >= len(r.nodes) {
		r.nodes = append(r.nodes, make([]quadtree.Node, int(id)+1-len(r.nodes))...)
	}

	r.nodes[id] = n
}

func nodeBlobName(id quadtree.NodeID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// isNodeBlobName reports whether name looks like a numeric node blob.
func isNodeBlobName(name string) bool {
	if name == "" {
		return false
	}

	for _, c := range name {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

func splitLines(data []byte) []string {
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite coordinate")
	}

	return v, nil
}
