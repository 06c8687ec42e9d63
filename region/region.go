// Package region approximates a circular search region on the sphere by
// a conservative axis-aligned degree rectangle.
//
// The quad-tree only answers rectangular range queries, so a
// (center, radius) search is first widened to a rectangle that encloses
// the circle, including the awkward cases where the circle crosses the
// antimeridian or encloses a pole. The rectangle over-selects; callers
// are expected to post-filter candidates with an exact great-circle
// distance test.
package region

import (
	"math"

	"github.com/hupe1980/geoquad/geom"
	"github.com/hupe1980/geoquad/greatcircle"
)

// minSamples is the lower bound on circle sampling; below this the
// polygon degenerates and the crossing heuristics misfire.
const minSamples = 4

// BoundingRectangle returns a rectangle enclosing the circle of
// radiusKm around center, approximated by a closed polygon of samples
// points computed with the direct geodesic formula.
//
// The branch structure below encodes corrective heuristics for sampling
// artifacts near the poles and the antimeridian. It is a conservative
// approximation, not an exact spherical-cap bound.
func BoundingRectangle(center geom.Point, radiusKm float64, samples int) geom.Rect {
	// A radius of half the circumference or more reaches every point
	// on the sphere.
	if radiusKm >= greatcircle.HalfEarthCircumferenceKm {
		return geom.FullCoverage()
	}

	if samples < minSamples {
		samples = minSamples
	}

	// Sample the circle boundary. Longitudes come back unnormalized
	// from the direct formula, centered on the circle's origin; the
	// polygon is built in a space shifted to non-negative coordinates
	// (lat+90, lon+180) to keep the planar box arithmetic simple.
	//
	// A dateline crossing is a transition between consecutive samples
	// whose longitude delta exceeds 180 degrees in magnitude; the edge
	// closing the polygon (last sample back to the first) counts too.
	step := 360.0 / float64(samples)

	box := shiftedBox{}
	crossings := 0
	var firstLon, prevLon float64
	for i := range samples {
		p := greatcircle.PointAtBearing(center, radiusKm, float64(i)*step)
		if i == 0 {
			firstLon = p.Lon
		} else if math.Abs(p.Lon-prevLon) > 180 {
			crossings++
		}
		prevLon = p.Lon

		box.extend(p.Lat+90, p.Lon+180)
	}
	if math.Abs(firstLon-prevLon) > 180 {
		crossings++
	}

	// A single crossing means the circle wraps around a pole: the
	// region spans all longitudes, and the latitude band runs from the
	// polygon's extreme latitude to whichever pole the box sits
	// nearer to.
	if crossings == 1 {
		if box.midLat() > 90 {
			return geom.Rect{
				MinLat: box.minLat - 90,
				MinLon: geom.MinLongitude,
				MaxLat: geom.MaxLatitude,
				MaxLon: geom.MaxLongitude,
			}
		}
		return geom.Rect{
			MinLat: geom.MinLatitude,
			MinLon: geom.MinLongitude,
			MaxLat: box.maxLat - 90,
			MaxLon: geom.MaxLongitude,
		}
	}

	shiftedCenter := geom.Point{Lat: center.Lat + 90, Lon: center.Lon + 180}

	if box.contains(shiftedCenter) {
		// A box that spans (almost) every longitude is a polar or
		// near-global circle seen through sampling noise; no latitude
		// band derived from boundary samples is trustworthy then, so
		// fall back to whole-sphere coverage.
		if box.maxLon-box.minLon >= 359 {
			return geom.FullCoverage()
		}

		r := box.unshift()

		// A box leaking past the [-180,180] envelope straddles the
		// antimeridian without enclosing a pole. The tree's coordinate
		// space cannot express a wrapped longitude interval, so widen
		// to all longitudes and keep the latitude extent.
		if r.MinLon < geom.MinLongitude || r.MaxLon > geom.MaxLongitude {
			r.MinLon = geom.MinLongitude
			r.MaxLon = geom.MaxLongitude
		}

		return r
	}

	// The polygon does not contain the center: a degenerate near-pole
	// sampling artifact where the samples outline the excluded region
	// instead. Bound the complement on each axis by the gap between
	// the polygon box and the sphere edge on the side holding the
	// center.
	return complementBox(box, shiftedCenter)
}

// shiftedBox is a planar bounding box in the shifted (+90,+180)
// coordinate space.
type shiftedBox struct {
	minLat, minLon float64
	maxLat, maxLon float64
	set            bool
}

func (b *shiftedBox) extend(lat, lon float64) {
	if !b.set {
		b.minLat, b.maxLat = lat, lat
		b.minLon, b.maxLon = lon, lon
		b.set = true
		return
	}
	b.minLat = math.Min(b.minLat, lat)
	b.maxLat = math.Max(b.maxLat, lat)
	b.minLon = math.Min(b.minLon, lon)
	b.maxLon = math.Max(b.maxLon, lon)
}

func (b *shiftedBox) midLat() float64 { return (b.minLat + b.maxLat) / 2 }

func (b *shiftedBox) contains(p geom.Point) bool {
	return p.Lat >= b.minLat && p.Lat <= b.maxLat &&
		p.Lon >= b.minLon && p.Lon <= b.maxLon
}

func (b *shiftedBox) unshift() geom.Rect {
	return geom.Rect{
		MinLat: b.minLat - 90,
		MinLon: b.minLon - 180,
		MaxLat: b.maxLat - 90,
		MaxLon: b.maxLon - 180,
	}
}

func complementBox(box shiftedBox, center geom.Point) geom.Rect {
	r := geom.FullCoverage()

	switch {
	case center.Lat > box.maxLat:
		r.MinLat = box.maxLat - 90
	case center.Lat < box.minLat:
		r.MaxLat = box.minLat - 90
	}

	switch {
	case center.Lon > box.maxLon:
		r.MinLon = clampLon(box.maxLon - 180)
	case center.Lon < box.minLon:
		r.MaxLon = clampLon(box.minLon - 180)
	}

	return r
}

func clampLon(lon float64) float64 {
	return math.Max(geom.MinLongitude, math.Min(geom.MaxLongitude, lon))
}
