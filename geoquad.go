package geoquad

import (
	"context"
	"time"

	"github.com/hupe1980/geoquad/blobstore"
	"github.com/hupe1980/geoquad/geom"
	"github.com/hupe1980/geoquad/quadtree"
	"github.com/hupe1980/geoquad/snapshot"
)

type (
	// Point is a geographic coordinate in degrees.
	Point = geom.Point

	// Rect is an axis-aligned lat/lon rectangle, edges inclusive.
	Rect = geom.Rect

	// Record is a point-referenced entry: an opaque payload key plus
	// the point it is indexed at.
	Record = quadtree.Record
)

// FullCoverage returns the rectangle covering the whole sphere.
func FullCoverage() Rect { return geom.FullCoverage() }

// GeoQuad is an embeddable geospatial point index.
//
// It follows a mutate-then-freeze lifecycle: build it single-threaded
// via Insert (or reopen it via Load), then serve any number of
// concurrent queries without locking.
type GeoQuad struct {
	tree    *quadtree.Tree
	logger  *Logger
	metrics MetricsCollector
}

// Result carries the records a query matched plus the elapsed query
// time for the caller's accounting.
type Result struct {
	Records []Record
	Took    time.Duration
}

// New creates an empty index covering the full coordinate range.
func New(optFns ...func(o *Options)) (*GeoQuad, error) {
	opts := applyOptions(optFns)

	tree, err := quadtree.New(func(o *quadtree.Options) {
		o.Capacity = opts.Capacity
		o.MaxDepth = opts.MaxDepth
		o.CircleSamples = opts.CircleSamples
	})
	if err != nil {
		return nil, translateError(err)
	}

	return &GeoQuad{
		tree:    tree,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

// Load reopens an index from the snapshot in store.
//
// A store without a snapshot yields ErrNoSnapshot; the caller falls
// back to ingestion. Capacity and MaxDepth options are ignored here:
// the persisted configuration wins.
func Load(ctx context.Context, store blobstore.BlobStore, optFns ...func(o *Options)) (*GeoQuad, error) {
	opts := applyOptions(optFns)

	start := time.Now()

	tree, err := snapshot.Read(ctx, store, func(o *quadtree.Options) {
		o.CircleSamples = opts.CircleSamples
	})

	opts.Metrics.RecordLoad(time.Since(start), err)

	if err != nil {
		opts.Logger.LogLoad(ctx, 0, err)
		return nil, translateError(err)
	}

	opts.Logger.LogLoad(ctx, tree.Len(), nil)

	return &GeoQuad{
		tree:    tree,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

// Insert adds rec to the index.
//
// It returns false, without error, when the record cannot be stored:
// either its point lies outside the coordinate range, or the target
// leaf is full at the subdivision ceiling. Both are recoverable;
// callers typically log and skip.
func (gq *GeoQuad) Insert(rec Record) bool {
	start := time.Now()

	ok := gq.tree.Insert(rec)

	gq.metrics.RecordInsert(time.Since(start), ok)

	if !ok {
		gq.logger.LogInsertRejected(rec)
	}

	return ok
}

// InsertAll adds all records to the index and returns the number
// accepted. Rejected records are skipped, not retried.
func (gq *GeoQuad) InsertAll(recs []Record) int {
	start := time.Now()

	accepted := 0
	for _, rec := range recs {
		if gq.tree.Insert(rec) {
			accepted++
		} else {
			gq.logger.LogInsertRejected(rec)
		}
	}

	rejected := len(recs) - accepted

	gq.metrics.RecordIngest(len(recs), rejected, time.Since(start))
	gq.logger.LogIngest(accepted, rejected)

	return accepted
}

// QueryBoundingBox returns all records whose points lie within rect,
// in no guaranteed order.
func (gq *GeoQuad) QueryBoundingBox(rect Rect) *Result {
	start := time.Now()

	recs := gq.tree.QueryBoundingBox(rect)
	took := time.Since(start)

	gq.metrics.RecordQuery(len(recs), took)
	gq.logger.LogQuery("bounding_box", len(recs), took)

	return &Result{Records: recs, Took: took}
}

// QueryPointRadius returns all records within radiusKm great-circle
// distance of center, in no guaranteed order. A radius spanning half
// the earth's circumference or more matches every record.
func (gq *GeoQuad) QueryPointRadius(center Point, radiusKm float64) *Result {
	start := time.Now()

	recs := gq.tree.QueryPointRadius(center, radiusKm)
	took := time.Since(start)

	gq.metrics.RecordQuery(len(recs), took)
	gq.logger.LogQuery("point_radius", len(recs), took)

	return &Result{Records: recs, Took: took}
}

// Save persists the index into store as a snapshot, overwriting any
// previous snapshot there.
func (gq *GeoQuad) Save(ctx context.Context, store blobstore.BlobStore) error {
	start := time.Now()

	err := snapshot.Write(ctx, store, gq.tree)

	gq.metrics.RecordSave(time.Since(start), err)
	gq.logger.LogSave(ctx, gq.tree.Len(), err)

	return translateError(err)
}

// Len returns the number of records stored in the index.
func (gq *GeoQuad) Len() int { return gq.tree.Len() }

// Stats returns structural statistics about the index.
func (gq *GeoQuad) Stats() quadtree.Stats { return gq.tree.Stats() }
