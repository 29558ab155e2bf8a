// Package geometry provides the planar measurements used to build pose features.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/yogkalp/internal/landmark"
)

// Angle returns the angle at vertex b between the rays b→a and b→c, in degrees.
// The result is in [0,180]. If either ray has zero length the angle is
// undefined and NaN is returned.
func Angle(a, b, c landmark.Point) float64 {
	ba := r2.Sub(vec(a), vec(b))
	bc := r2.Sub(vec(c), vec(b))

	denom := r2.Norm(ba) * r2.Norm(bc)
	if denom == 0 {
		return math.NaN()
	}

	// Clamp to guard against rounding pushing the cosine outside [-1,1].
	cosine := r2.Dot(ba, bc) / denom
	cosine = math.Max(-1, math.Min(1, cosine))

	return math.Acos(cosine) * 180 / math.Pi
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b landmark.Point) float64 {
	return r2.Norm(r2.Sub(vec(a), vec(b)))
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b landmark.Point) landmark.Point {
	m := r2.Scale(0.5, r2.Add(vec(a), vec(b)))
	return landmark.Point{X: m.X, Y: m.Y}
}

func vec(p landmark.Point) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}
