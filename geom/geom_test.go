package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectContains(t *testing.T) {
	r := Rect{MinLat: 0, MinLon: 0, MaxLat: 10, MaxLon: 20}

	tests := []struct {
		name     string
		p        Point
		expected bool
	}{
		{"Inside", Point{Lat: 5, Lon: 10}, true},
		{"MinCorner", Point{Lat: 0, Lon: 0}, true},
		{"MaxCorner", Point{Lat: 10, Lon: 20}, true},
		{"OnEdge", Point{Lat: 0, Lon: 10}, true},
		{"NorthOf", Point{Lat: 10.1, Lon: 10}, false},
		{"WestOf", Point{Lat: 5, Lon: -0.1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.Contains(tt.p))
		})
	}
}

func TestRectIntersects(t *testing.T) {
	r := Rect{MinLat: 0, MinLon: 0, MaxLat: 10, MaxLon: 10}

	tests := []struct {
		name     string
		o        Rect
		expected bool
	}{
		{"Overlap", Rect{MinLat: 5, MinLon: 5, MaxLat: 15, MaxLon: 15}, true},
		{"Contained", Rect{MinLat: 2, MinLon: 2, MaxLat: 3, MaxLon: 3}, true},
		{"Containing", Rect{MinLat: -5, MinLon: -5, MaxLat: 15, MaxLon: 15}, true},
		{"TouchingEdge", Rect{MinLat: 10, MinLon: 0, MaxLat: 20, MaxLon: 10}, true},
		{"TouchingCorner", Rect{MinLat: 10, MinLon: 10, MaxLat: 20, MaxLon: 20}, true},
		{"Disjoint", Rect{MinLat: 11, MinLon: 11, MaxLat: 20, MaxLon: 20}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.Intersects(tt.o))
			assert.Equal(t, tt.expected, tt.o.Intersects(r))
		})
	}
}

func TestRectSplitPartition(t *testing.T) {
	r := Rect{MinLat: -90, MinLon: -180, MaxLat: 90, MaxLon: 180}

	nw := r.Split(NW)
	ne := r.Split(NE)
	sw := r.Split(SW)
	se := r.Split(SE)

	// The quadrants share the midlines and together cover the parent.
	assert.Equal(t, Rect{MinLat: 0, MinLon: -180, MaxLat: 90, MaxLon: 0}, nw)
	assert.Equal(t, Rect{MinLat: 0, MinLon: 0, MaxLat: 90, MaxLon: 180}, ne)
	assert.Equal(t, Rect{MinLat: -90, MinLon: -180, MaxLat: 0, MaxLon: 0}, sw)
	assert.Equal(t, Rect{MinLat: -90, MinLon: 0, MaxLat: 0, MaxLon: 180}, se)
}

func TestQuadrantOf(t *testing.T) {
	r := FullCoverage()

	tests := []struct {
		name     string
		p        Point
		expected Quadrant
	}{
		{"NW", Point{Lat: 45, Lon: -90}, NW},
		{"NE", Point{Lat: 45, Lon: 90}, NE},
		{"SW", Point{Lat: -45, Lon: -90}, SW},
		{"SE", Point{Lat: -45, Lon: 90}, SE},
		// Midpoint ties resolve north/east.
		{"Center", Point{Lat: 0, Lon: 0}, NE},
		{"OnMidLat", Point{Lat: 0, Lon: -90}, NW},
		{"OnMidLon", Point{Lat: -45, Lon: 0}, SE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := r.QuadrantOf(tt.p)
			assert.Equal(t, tt.expected, q)
			assert.True(t, r.Split(q).Contains(tt.p))
		})
	}
}

func TestQuadrantString(t *testing.T) {
	assert.Equal(t, "NW", NW.String())
	assert.Equal(t, "SE", SE.String())
	assert.Equal(t, "Quadrant(7)", Quadrant(7).String())
}
