// Package quadtree implements an in-memory point quad-tree over
// latitude/longitude records.
package quadtree

import (
	"errors"
	"fmt"

	"github.com/hupe1980/geoquad/geom"
	"github.com/hupe1980/geoquad/greatcircle"
	"github.com/hupe1980/geoquad/region"
)

var (
	// ErrInvalidCapacity is returned when the leaf capacity is below 1.
	ErrInvalidCapacity = errors.New("capacity must be at least 1")

	// ErrInvalidMaxDepth is returned when the subdivision ceiling is negative.
	ErrInvalidMaxDepth = errors.New("max depth must be non-negative")
)

// NodeID identifies a node within a tree. A node's ID is its index in
// the tree's arena and is stable for the lifetime of the tree, so it
// doubles as the node's file name during persistence.
type NodeID uint32

// RootID is the ID of the root node.
const RootID NodeID = 0

// NodeKind discriminates leaf nodes from internal nodes.
type NodeKind uint8

const (
	// KindLeaf marks a node holding records and no children.
	KindLeaf NodeKind = iota
	// KindInternal marks a node holding exactly four children and no records.
	KindInternal
)

// String returns a string representation of the NodeKind.
func (k NodeKind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindInternal:
		return "internal"
	default:
		return fmt.Sprintf("NodeKind(%d)", uint8(k))
	}
}

// Record is a point-referenced entry: an opaque key under which the
// external collaborator stores the full payload, plus the point it is
// indexed at. The tree never interprets the key.
type Record struct {
	Key   string
	Point geom.Point
}

// Node is a single tree node. Exactly one of Records and Children is
// meaningful, selected by Kind; the other is left zero.
type Node struct {
	Kind  NodeKind
	Rect  geom.Rect
	Depth uint32

	// Records holds the node's entries. Leaf nodes only.
	Records []Record

	// Children holds the quadrant children indexed by geom.Quadrant
	// (NW, NE, SW, SE). Internal nodes only.
	Children [geom.NumQuadrants]NodeID
}

// Options contains configuration options for the tree.
type Options struct {
	// Capacity is the maximum number of records a leaf holds before it
	// subdivides. Must be >= 1.
	Capacity int

	// MaxDepth is the subdivision ceiling (root depth is 0). A full
	// leaf at MaxDepth rejects further inserts. Must be >= 0.
	MaxDepth int

	// CircleSamples is the number of boundary samples used to
	// approximate the search circle in point-radius queries. More
	// samples tighten the coarse rectangle at the cost of more
	// destination-point evaluations per query.
	CircleSamples int
}

// DefaultOptions contains the default configuration options for the tree.
var DefaultOptions = Options{
	Capacity:      32,
	MaxDepth:      12,
	CircleSamples: 90,
}

// Tree is a point quad-tree covering the full lat/lon coordinate range.
//
// Nodes live in a growable arena; a node's index in the arena is its
// stable identifier, assigned in creation order with the root at 0.
//
// The tree follows a mutate-then-freeze lifecycle: Insert must not run
// concurrently with anything, while a tree that is no longer being
// mutated may serve any number of concurrent queries without locking.
type Tree struct {
	opts  Options
	nodes []Node
	size  int
}

// New creates an empty tree whose root leaf covers the full coordinate
// range (latitude [-90,90], longitude [-180,180]).
func New(optFns ...func(o *Options)) (*Tree, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if opts.MaxDepth < 0 {
		return nil, ErrInvalidMaxDepth
	}
	if opts.CircleSamples <= 0 {
		opts.CircleSamples = DefaultOptions.CircleSamples
	}

	return &Tree{
		opts: opts,
		nodes: []Node{{
			Kind: KindLeaf,
			Rect: geom.FullCoverage(),
		}},
	}, nil
}

// Capacity returns the configured leaf capacity.
func (t *Tree) Capacity() int { return t.opts.Capacity }

// MaxDepth returns the configured subdivision ceiling.
func (t *Tree) MaxDepth() int { return t.opts.MaxDepth }

// Len returns the number of records stored in the tree.
func (t *Tree) Len() int { return t.size }

// Nodes exposes the node arena for codecs. The returned slice is the
// tree's own storage and must be treated as read-only.
func (t *Tree) Nodes() []Node { return t.nodes }

// Insert adds rec to the tree.
//
// It returns false, without error, when the record cannot be stored:
// either its point lies outside the root coverage, or the target leaf
// is full and already at MaxDepth. Both conditions are recoverable by
// the caller (typically: log and skip).
func (t *Tree) Insert(rec Record) bool {
	if !t.nodes[RootID].Rect.Contains(rec.Point) {
		return false
	}
	if !t.insert(RootID, rec) {
		return false
	}
	t.size++
	return true
}

func (t *Tree) insert(id NodeID, rec Record) bool {
	for {
		n := &t.nodes[id]

		if n.Kind == KindInternal {
			id = n.Children[n.Rect.QuadrantOf(rec.Point)]
			continue
		}

		if len(n.Records) < t.opts.Capacity {
			n.Records = append(n.Records, rec)
			return true
		}

		if int(n.Depth) >= t.opts.MaxDepth {
			return false
		}

		// Full leaf below the ceiling: quarter it and retry. The
		// displaced records may fill a child immediately, in which
		// case the retry cascades into a further subdivision.
		t.subdivide(id)
	}
}

// subdivide converts the leaf id into an internal node with four fresh
// leaf children quartering its rect, then redistributes its records.
func (t *Tree) subdivide(id NodeID) {
	records := t.nodes[id].Records
	rect := t.nodes[id].Rect
	childDepth := t.nodes[id].Depth + 1

	var children [geom.NumQuadrants]NodeID
	for q := range geom.Quadrant(geom.NumQuadrants) {
		children[q] = NodeID(len(t.nodes))
		t.nodes = append(t.nodes, Node{
			Kind:  KindLeaf,
			Rect:  rect.Split(q),
			Depth: childDepth,
		})
	}

	// Re-take the pointer: the appends above may have moved the arena.
	n := &t.nodes[id]
	n.Kind = KindInternal
	n.Records = nil
	n.Children = children

	// At most Capacity records move into empty children with the same
	// capacity, so redistribution cannot fail or cascade by itself.
	for _, rec := range records {
		t.insert(id, rec)
	}
}

// QueryBoundingBox returns all records whose points lie within rect
// (edges inclusive), in no guaranteed order. An empty tree yields an
// empty result.
func (t *Tree) QueryBoundingBox(rect geom.Rect) []Record {
	var out []Record
	t.collect(RootID, rect, &out)
	return out
}

func (t *Tree) collect(id NodeID, rect geom.Rect, out *[]Record) {
	n := &t.nodes[id]

	if !n.Rect.Intersects(rect) {
		return
	}

	if n.Kind == KindLeaf {
		for _, rec := range n.Records {
			if rect.Contains(rec.Point) {
				*out = append(*out, rec)
			}
		}
		return
	}

	for _, child := range n.Children {
		t.collect(child, rect, out)
	}
}

// QueryPointRadius returns all records within radiusKm great-circle
// distance of center, in no guaranteed order.
//
// The search runs in two stages: a coarse rectangular query against the
// region approximation of the circle, then an exact haversine filter
// that removes the rectangle's false positives.
func (t *Tree) QueryPointRadius(center geom.Point, radiusKm float64) []Record {
	rect := region.BoundingRectangle(center, radiusKm, t.opts.CircleSamples)

	candidates := t.QueryBoundingBox(rect)

	out := candidates[:0]
	for _, rec := range candidates {
		if greatcircle.DistanceKm(center, rec.Point) <= radiusKm {
			out = append(out, rec)
		}
	}
	return out
}
