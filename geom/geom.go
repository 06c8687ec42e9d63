package geom

import "fmt"

// Coordinate limits of the supported lat/lon degree space.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Point is a geographic point in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.Lat, p.Lon)
}

// Rect is an axis-aligned rectangle in decimal degrees.
//
// Containment is inclusive on all edges, so points lying exactly on a
// shared edge of two rectangles are contained by both.
type Rect struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// FullCoverage returns the rectangle spanning the whole coordinate space.
func FullCoverage() Rect {
	return Rect{
		MinLat: MinLatitude,
		MinLon: MinLongitude,
		MaxLat: MaxLatitude,
		MaxLon: MaxLongitude,
	}
}

// Contains reports whether p lies within r (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.Lat >= r.MinLat && p.Lat <= r.MaxLat &&
		p.Lon >= r.MinLon && p.Lon <= r.MaxLon
}

// Intersects reports whether r and o share at least one point
// (touching edges count as intersection).
func (r Rect) Intersects(o Rect) bool {
	return r.MinLat <= o.MaxLat && r.MaxLat >= o.MinLat &&
		r.MinLon <= o.MaxLon && r.MaxLon >= o.MinLon
}

// MidLat returns the latitude midpoint of r.
func (r Rect) MidLat() float64 { return (r.MinLat + r.MaxLat) / 2 }

// MidLon returns the longitude midpoint of r.
func (r Rect) MidLon() float64 { return (r.MinLon + r.MaxLon) / 2 }

// Quadrant identifies one of the four sub-rectangles of a Rect.
type Quadrant int

const (
	NW Quadrant = iota
	NE
	SW
	SE

	// NumQuadrants is the fan-out of a subdivision.
	NumQuadrants = 4
)

// String returns the compass name of the quadrant.
func (q Quadrant) String() string {
	switch q {
	case NW:
		return "NW"
	case NE:
		return "NE"
	case SW:
		return "SW"
	case SE:
		return "SE"
	default:
		return fmt.Sprintf("Quadrant(%d)", int(q))
	}
}

// Split returns the quadrant sub-rectangle of r.
// The four quadrants exactly partition r; adjacent quadrants share edges.
func (r Rect) Split(q Quadrant) Rect {
	midLat, midLon := r.MidLat(), r.MidLon()
	switch q {
	case NW:
		return Rect{MinLat: midLat, MinLon: r.MinLon, MaxLat: r.MaxLat, MaxLon: midLon}
	case NE:
		return Rect{MinLat: midLat, MinLon: midLon, MaxLat: r.MaxLat, MaxLon: r.MaxLon}
	case SW:
		return Rect{MinLat: r.MinLat, MinLon: r.MinLon, MaxLat: midLat, MaxLon: midLon}
	case SE:
		return Rect{MinLat: r.MinLat, MinLon: midLon, MaxLat: midLat, MaxLon: r.MaxLon}
	default:
		panic(fmt.Sprintf("geom: invalid quadrant %d", int(q)))
	}
}

// QuadrantOf returns the quadrant of r that p descends into.
// Ties on an axis midpoint resolve north for latitude and east for
// longitude, so every point maps to exactly one quadrant.
func (r Rect) QuadrantOf(p Point) Quadrant {
	north := p.Lat >= r.MidLat()
	east := p.Lon >= r.MidLon()
	switch {
	case north && !east:
		return NW
	case north && east:
		return NE
	case !north && !east:
		return SW
	default:
		return SE
	}
}

// String returns a string representation of the Rect.
func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g..%g,%g]", r.MinLat, r.MinLon, r.MaxLat, r.MaxLon)
}
