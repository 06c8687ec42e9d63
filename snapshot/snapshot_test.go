package snapshot

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/geoquad/blobstore"
	"github.com/hupe1980/geoquad/geom"
	"github.com/hupe1980/geoquad/quadtree"
)

func buildTree(t *testing.T, capacity, maxDepth, records int) *quadtree.Tree {
	t.Helper()

	tree, err := quadtree.New(func(o *quadtree.Options) {
		o.Capacity = capacity
		o.MaxDepth = maxDepth
	})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < records; i++ {
		ok := tree.Insert(quadtree.Record{
			Key: fmt.Sprintf("rec-%04d", i),
			Point: geom.Point{
				Lat: rng.Float64()*180 - 90,
				Lon: rng.Float64()*360 - 180,
			},
		})
		require.True(t, ok)
	}

	return tree
}

func recordKeys(recs []quadtree.Record) []string {
	keys := make([]string, 0, len(recs))
	for _, rec := range recs {
		keys = append(keys, rec.Key)
	}

	return keys
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()

	tree := buildTree(t, 4, 8, 500)
	store := blobstore.NewMemoryStore()

	require.NoError(t, Write(ctx, store, tree))

	got, err := Read(ctx, store)
	require.NoError(t, err)

	assert.Equal(t, tree.Len(), got.Len())
	assert.Equal(t, tree.Capacity(), got.Capacity())
	assert.Equal(t, tree.MaxDepth(), got.MaxDepth())
	assert.Equal(t, len(tree.Nodes()), len(got.Nodes()))

	rects := []geom.Rect{
		geom.FullCoverage(),
		{MinLat: -10, MinLon: -10, MaxLat: 10, MaxLon: 10},
		{MinLat: 30, MinLon: 100, MaxLat: 80, MaxLon: 170},
		{MinLat: -90, MinLon: -180, MaxLat: 0, MaxLon: 0},
	}

	for _, rect := range rects {
		assert.ElementsMatch(t, recordKeys(tree.QueryBoundingBox(rect)), recordKeys(got.QueryBoundingBox(rect)))
	}
}

func TestRoundTripLeafRoot(t *testing.T) {
	ctx := context.Background()

	tree := buildTree(t, 8, 4, 3)
	store := blobstore.NewMemoryStore()

	require.NoError(t, Write(ctx, store, tree))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"0", ConfigBlob}, names)

	got, err := Read(ctx, store)
	require.NoError(t, err)

	assert.Equal(t, 3, got.Len())
	assert.Len(t, got.Nodes(), 1)
	assert.ElementsMatch(t,
		recordKeys(tree.QueryBoundingBox(geom.FullCoverage())),
		recordKeys(got.QueryBoundingBox(geom.FullCoverage())))
}

func TestRoundTripEmptyTree(t *testing.T) {
	ctx := context.Background()

	tree, err := quadtree.New()
	require.NoError(t, err)

	store := blobstore.NewMemoryStore()
	require.NoError(t, Write(ctx, store, tree))

	got, err := Read(ctx, store)
	require.NoError(t, err)

	assert.Equal(t, 0, got.Len())
	assert.Empty(t, got.QueryBoundingBox(geom.FullCoverage()))
}

func TestRoundTripStableIdentifiers(t *testing.T) {
	ctx := context.Background()

	tree := buildTree(t, 2, 10, 200)

	first := blobstore.NewMemoryStore()
	require.NoError(t, Write(ctx, first, tree))

	restored, err := Read(ctx, first)
	require.NoError(t, err)

	second := blobstore.NewMemoryStore()
	require.NoError(t, Write(ctx, second, restored))

	firstNames, err := first.List(ctx, "")
	require.NoError(t, err)

	secondNames, err := second.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, firstNames, secondNames)

	for _, name := range firstNames {
		want, err := blobstore.ReadAll(ctx, first, name)
		require.NoError(t, err)

		got, err := blobstore.ReadAll(ctx, second, name)
		require.NoError(t, err)

		assert.Equal(t, want, got, "blob %q differs between writes", name)
	}
}

func TestWriteRemovesStaleBlobs(t *testing.T) {
	ctx := context.Background()

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "999", []byte("left over from a bigger snapshot")))
	require.NoError(t, store.Put(ctx, "README", []byte("not a node blob")))

	tree := buildTree(t, 8, 4, 3)
	require.NoError(t, Write(ctx, store, tree))

	names, err := store.List(ctx, "")
	require.NoError(t, err)

	assert.NotContains(t, names, "999")
	assert.Contains(t, names, "README")
	assert.Contains(t, names, ConfigBlob)
}

func TestReadNoSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		_, err := Read(ctx, blobstore.NewMemoryStore())
		assert.ErrorIs(t, err, ErrNoSnapshot)
	})

	t.Run("config without root blob", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		require.NoError(t, store.Put(ctx, ConfigBlob, []byte("capacity;4;depth;8")))

		_, err := Read(ctx, store)
		assert.ErrorIs(t, err, ErrNoSnapshot)
	})
}

func TestReadMalformed(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		blobs map[string]string
	}{
		{
			name: "config syntax",
			blobs: map[string]string{
				ConfigBlob: "capacity=4,depth=8",
			},
		},
		{
			name: "config capacity not an integer",
			blobs: map[string]string{
				ConfigBlob: "capacity;many;depth;8",
				"0":        "0:leaf:0:4",
			},
		},
		{
			name: "root line garbage",
			blobs: map[string]string{
				ConfigBlob: "capacity;4;depth;8",
				"0":        "nonsense",
			},
		},
		{
			name: "unknown node kind",
			blobs: map[string]string{
				ConfigBlob: "capacity;4;depth;8",
				"0":        "0:branch:1:4\n1:leaf:2:4\n2:leaf:3:4\n3:leaf:4:4",
			},
		},
		{
			name: "internal node with three child lines",
			blobs: map[string]string{
				ConfigBlob: "capacity;4;depth;8",
				"0":        "0:leaf:1:4\n1:leaf:2:4\n2:leaf:3:4",
			},
		},
		{
			name: "duplicate quadrant",
			blobs: map[string]string{
				ConfigBlob: "capacity;4;depth;8",
				"0":        "0:leaf:1:4\n0:leaf:2:4\n2:leaf:3:4\n3:leaf:4:4",
			},
		},
		{
			name: "child capacity mismatch",
			blobs: map[string]string{
				ConfigBlob: "capacity;4;depth;8",
				"0":        "0:leaf:1:4\n1:leaf:2:7\n2:leaf:3:4\n3:leaf:4:4",
			},
		},
		{
			name: "internal child with inline records",
			blobs: map[string]string{
				ConfigBlob: "capacity;4;depth;8",
				"0":        "0:internal:1:4:10;20;x\n1:leaf:2:4\n2:leaf:3:4\n3:leaf:4:4",
			},
		},
		{
			name: "record with missing field",
			blobs: map[string]string{
				ConfigBlob: "capacity;4;depth;8",
				"0":        "0:leaf:1:4:50;-100\n1:leaf:2:4\n2:leaf:3:4\n3:leaf:4:4",
			},
		},
		{
			name: "record with non-numeric latitude",
			blobs: map[string]string{
				ConfigBlob: "capacity;4;depth;8",
				"0":        "0:leaf:1:4:north;-100;x\n1:leaf:2:4\n2:leaf:3:4\n3:leaf:4:4",
			},
		},
		{
			name: "self-describing root is internal",
			blobs: map[string]string{
				ConfigBlob: "capacity;4;depth;8",
				"0":        "0:internal:0:4",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := blobstore.NewMemoryStore()
			for name, data := range tt.blobs {
				require.NoError(t, store.Put(ctx, name, []byte(data)))
			}

			_, err := Read(ctx, store)
			require.Error(t, err)

			var malformed *MalformedNodeError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestReadCorrupt(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		blobs map[string]string
	}{
		{
			name: "duplicate child id",
			blobs: map[string]string{
				ConfigBlob: "capacity;4;depth;8",
				"0":        "0:leaf:1:4\n1:leaf:1:4\n2:leaf:3:4\n3:leaf:4:4",
			},
		},
		{
			name: "child referencing the root",
			blobs: map[string]string{
				ConfigBlob: "capacity;4;depth;8",
				"0":        "0:leaf:0:4\n1:leaf:2:4\n2:leaf:3:4\n3:leaf:4:4",
			},
		},
		{
			name: "internal child without a blob",
			blobs: map[string]string{
				ConfigBlob: "capacity;4;depth;8",
				"0":        "0:internal:1:4\n1:leaf:2:4\n2:leaf:3:4\n3:leaf:4:4",
			},
		},
		{
			name: "subdivision below the depth ceiling",
			blobs: map[string]string{
				ConfigBlob: "capacity;4;depth;0",
				"0":        "0:leaf:1:4\n1:leaf:2:4\n2:leaf:3:4\n3:leaf:4:4",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := blobstore.NewMemoryStore()
			for name, data := range tt.blobs {
				require.NoError(t, store.Put(ctx, name, []byte(data)))
			}

			_, err := Read(ctx, store)
			require.Error(t, err)

			var corrupt *CorruptSnapshotError
			assert.ErrorAs(t, err, &corrupt)
		})
	}
}

func TestRoundTripCompressed(t *testing.T) {
	ctx := context.Background()

	tree := buildTree(t, 4, 8, 300)
	store := blobstore.NewCompressStore(blobstore.NewMemoryStore(), blobstore.CompressionZstd)

	require.NoError(t, Write(ctx, store, tree))

	got, err := Read(ctx, store)
	require.NoError(t, err)

	assert.Equal(t, tree.Len(), got.Len())
	assert.ElementsMatch(t,
		recordKeys(tree.QueryBoundingBox(geom.FullCoverage())),
		recordKeys(got.QueryBoundingBox(geom.FullCoverage())))
}

func TestWriteRejectsDelimiterInKey(t *testing.T) {
	ctx := context.Background()

	tree, err := quadtree.New()
	require.NoError(t, err)
	require.True(t, tree.Insert(quadtree.Record{Key: "bad;key", Point: geom.Point{Lat: 1, Lon: 1}}))

	err = Write(ctx, blobstore.NewMemoryStore(), tree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delimiter")
}
