package quadtree

import (
	"fmt"

	"github.com/hupe1980/geoquad/geom"
)

// Restore rebuilds a tree from a decoded node arena, validating the
// structural invariants a codec relies on. Node IDs are the arena
// indices, so a restored tree re-serializes under the same file names.
func Restore(capacity, maxDepth int, nodes []Node, optFns ...func(o *Options)) (*Tree, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Capacity = capacity
	opts.MaxDepth = maxDepth

	if opts.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if opts.MaxDepth < 0 {
		return nil, ErrInvalidMaxDepth
	}
	if opts.CircleSamples <= 0 {
		opts.CircleSamples = DefaultOptions.CircleSamples
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("restore: empty node arena")
	}

	size := 0
	for id, n := range nodes {
		switch n.Kind {
		case KindLeaf:
			if len(n.Records) > capacity {
				return nil, fmt.Errorf("restore: node %d holds %d records, capacity is %d", id, len(n.Records), capacity)
			}
			for _, rec := range n.Records {
				if !n.Rect.Contains(rec.Point) {
					return nil, fmt.Errorf("restore: node %d record %q at %v outside bounds %v", id, rec.Key, rec.Point, n.Rect)
				}
			}
			size += len(n.Records)
		case KindInternal:
			if len(n.Records) != 0 {
				return nil, fmt.Errorf("restore: internal node %d holds records", id)
			}
			for q, child := range n.Children {
				if int(child) >= len(nodes) {
					return nil, fmt.Errorf("restore: node %d child %s references missing node %d", id, geom.Quadrant(q), child)
				}
				if child == RootID {
					return nil, fmt.Errorf("restore: node %d child %s references the root", id, geom.Quadrant(q))
				}
			}
		default:
			return nil, fmt.Errorf("restore: node %d has invalid kind %d", id, n.Kind)
		}
		if int(n.Depth) > opts.MaxDepth {
			return nil, fmt.Errorf("restore: node %d depth %d exceeds max depth %d", id, n.Depth, opts.MaxDepth)
		}
	}

	return &Tree{opts: opts, nodes: nodes, size: size}, nil
}
