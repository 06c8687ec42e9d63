// Package geom defines the shared planar geometry types used throughout
// geoquad.
//
// # Types
//
//   - Point: a latitude/longitude pair in decimal degrees
//   - Rect: an axis-aligned degree rectangle with inclusive containment
//   - Quadrant: one of the four sub-rectangles (NW, NE, SW, SE) produced
//     by bisecting a Rect along both axes
//
// All operations here are planar; great-circle math lives in the
// greatcircle package.
package geom
