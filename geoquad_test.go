package geoquad

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/geoquad/blobstore"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		optFn   func(o *Options)
		wantErr error
	}{
		{
			name:    "zero capacity",
			optFn:   func(o *Options) { o.Capacity = 0 },
			wantErr: ErrInvalidCapacity,
		},
		{
			name:    "negative max depth",
			optFn:   func(o *Options) { o.MaxDepth = -1 },
			wantErr: ErrInvalidMaxDepth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.optFn)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestInsertAndQuery(t *testing.T) {
	gq, err := New()
	require.NoError(t, err)

	assert.True(t, gq.Insert(Record{Key: "berlin", Point: Point{Lat: 52.52, Lon: 13.405}}))
	assert.True(t, gq.Insert(Record{Key: "potsdam", Point: Point{Lat: 52.4, Lon: 13.06}}))
	assert.True(t, gq.Insert(Record{Key: "sydney", Point: Point{Lat: -33.87, Lon: 151.21}}))
	assert.False(t, gq.Insert(Record{Key: "nowhere", Point: Point{Lat: 91, Lon: 0}}))

	assert.Equal(t, 3, gq.Len())

	result := gq.QueryPointRadius(Point{Lat: 52.5, Lon: 13.4}, 50)
	assert.ElementsMatch(t, []string{"berlin", "potsdam"}, keys(result.Records))
	assert.GreaterOrEqual(t, result.Took.Nanoseconds(), int64(0))

	result = gq.QueryBoundingBox(Rect{MinLat: -40, MinLon: 140, MaxLat: -30, MaxLon: 160})
	assert.ElementsMatch(t, []string{"sydney"}, keys(result.Records))
}

func TestInsertAll(t *testing.T) {
	gq, err := New()
	require.NoError(t, err)

	recs := []Record{
		{Key: "a", Point: Point{Lat: 1, Lon: 1}},
		{Key: "b", Point: Point{Lat: 2, Lon: 2}},
		{Key: "bad", Point: Point{Lat: 95, Lon: 0}},
	}

	assert.Equal(t, 2, gq.InsertAll(recs))
	assert.Equal(t, 2, gq.Len())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()

	gq, err := New(func(o *Options) {
		o.Capacity = 4
		o.MaxDepth = 8
	})
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		ok := gq.Insert(Record{
			Key:   fmt.Sprintf("rec-%03d", i),
			Point: Point{Lat: float64(i%180) - 90, Lon: float64((i*7)%360) - 180},
		})
		require.True(t, ok)
	}

	store := blobstore.NewMemoryStore()
	require.NoError(t, gq.Save(ctx, store))

	loaded, err := Load(ctx, store)
	require.NoError(t, err)

	assert.Equal(t, gq.Len(), loaded.Len())
	assert.ElementsMatch(t,
		keys(gq.QueryBoundingBox(FullCoverage()).Records),
		keys(loaded.QueryBoundingBox(FullCoverage()).Records))
}

func TestLoadNoSnapshot(t *testing.T) {
	_, err := Load(context.Background(), blobstore.NewMemoryStore())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestMetricsCollection(t *testing.T) {
	ctx := context.Background()

	metrics := &BasicMetricsCollector{}

	gq, err := New(func(o *Options) {
		o.Metrics = metrics
	})
	require.NoError(t, err)

	gq.Insert(Record{Key: "a", Point: Point{Lat: 1, Lon: 1}})
	gq.Insert(Record{Key: "bad", Point: Point{Lat: 99, Lon: 0}})
	gq.QueryBoundingBox(FullCoverage())

	require.NoError(t, gq.Save(ctx, blobstore.NewMemoryStore()))

	assert.Equal(t, int64(2), metrics.InsertCount.Load())
	assert.Equal(t, int64(1), metrics.InsertRejected.Load())
	assert.Equal(t, int64(1), metrics.QueryCount.Load())
	assert.Equal(t, int64(1), metrics.QueryResults.Load())
	assert.Equal(t, int64(1), metrics.SaveCount.Load())
	assert.Equal(t, int64(0), metrics.SaveErrors.Load())
}

func TestStats(t *testing.T) {
	gq, err := New(func(o *Options) {
		o.Capacity = 1
		o.MaxDepth = 4
	})
	require.NoError(t, err)

	gq.Insert(Record{Key: "a", Point: Point{Lat: 10, Lon: 10}})
	gq.Insert(Record{Key: "b", Point: Point{Lat: -10, Lon: -10}})

	stats := gq.Stats()
	assert.Equal(t, 2, stats.Records)
	assert.Equal(t, 1, stats.InternalNodes)
	assert.Equal(t, 4, stats.Leaves)
}

func keys(recs []Record) []string {
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Key)
	}

	return out
}
