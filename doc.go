// Package geoquad provides an embeddable geospatial point index for Go.
//
// Geoquad indexes lightweight (key, latitude, longitude) records in a
// quad-tree and answers bounding-box and point-radius queries over
// them. The index never stores payloads: the key is an opaque handle
// under which the caller keeps the full document elsewhere.
//
// # Quick Start
//
// Build an index and query it:
//
//	gq, err := geoquad.New(func(o *geoquad.Options) {
//	    o.Capacity = 64
//	    o.MaxDepth = 10
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	gq.Insert(geoquad.Record{
//	    Key:   "report-4711",
//	    Point: geoquad.Point{Lat: 52.52, Lon: 13.405},
//	})
//
//	result := gq.QueryPointRadius(geoquad.Point{Lat: 52.5, Lon: 13.4}, 25)
//	for _, rec := range result.Records {
//	    fmt.Println(rec.Key)
//	}
//
// # Persistence
//
// A built index can be snapshotted to any blob store and reopened
// without re-ingesting the source data:
//
//	store := blobstore.NewLocalStore("./data")
//
//	if err := gq.Save(ctx, store); err != nil {
//	    log.Fatal(err)
//	}
//
//	gq, err = geoquad.Load(ctx, store)
//	if errors.Is(err, geoquad.ErrNoSnapshot) {
//	    // Nothing persisted yet: ingest from scratch.
//	}
//
// Stores compose: wrap a LocalStore in a CompressStore for smaller
// snapshots, or point at S3/MinIO for shared storage.
//
// # Concurrency
//
// The index follows a mutate-then-freeze lifecycle. Build it
// single-threaded (Insert or Load), then serve any number of
// concurrent queries without locking. Insert must never run
// concurrently with anything else.
package geoquad
