// Package geom is the geometry kernel: points, lines, distances and the
// derived movement quantities the energy-profile estimator consumes.
// Point3D's vector arithmetic delegates to github.com/golang/geo's
// r3.Vector; Point2D's is computed directly on its two components.
package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

const equalTolerance = 1e-9

// Point3D is a point in millimeters in the work cell's coordinate frame.
type Point3D struct {
	X, Y, Z float64
}

func (p Point3D) vector() r3.Vector { return r3.Vector{X: p.X, Y: p.Y, Z: p.Z} }

func fromVector(v r3.Vector) Point3D { return Point3D{X: v.X, Y: v.Y, Z: v.Z} }

// Add returns p + o.
func (p Point3D) Add(o Point3D) Point3D { return fromVector(p.vector().Add(o.vector())) }

// Sub returns p - o.
func (p Point3D) Sub(o Point3D) Point3D { return fromVector(p.vector().Sub(o.vector())) }

// Scale returns p scaled by s.
func (p Point3D) Scale(s float64) Point3D { return fromVector(p.vector().Mul(s)) }

// Magnitude returns the Euclidean norm of p treated as a vector from the origin.
func (p Point3D) Magnitude() float64 { return p.vector().Norm() }

// Mid returns the midpoint of p and o.
func (p Point3D) Mid(o Point3D) Point3D { return p.Add(o).Scale(0.5) }

// Distance returns the 3D Euclidean distance between p and o.
func Distance(p, o Point3D) float64 { return p.Sub(o).Magnitude() }

// EqualWithin reports whether p and o are within tol of each other in
// every component.
func (p Point3D) EqualWithin(o Point3D, tol float64) bool {
	return math.Abs(p.X-o.X) <= tol && math.Abs(p.Y-o.Y) <= tol && math.Abs(p.Z-o.Z) <= tol
}

// IsFinite reports whether every component of p is a finite number.
func (p Point3D) IsFinite() bool {
	return !math.IsInf(p.X, 0) && !math.IsNaN(p.X) &&
		!math.IsInf(p.Y, 0) && !math.IsNaN(p.Y) &&
		!math.IsInf(p.Z, 0) && !math.IsNaN(p.Z)
}

// Point2D is the x-y projection of a Point3D.
type Point2D struct {
	X, Y float64
}

// NullZ drops the z component of p, projecting it onto the x-y plane.
func NullZ(p Point3D) Point2D { return Point2D{X: p.X, Y: p.Y} }

// Add returns p + o.
func (p Point2D) Add(o Point2D) Point2D { return Point2D{X: p.X + o.X, Y: p.Y + o.Y} }

// Sub returns p - o.
func (p Point2D) Sub(o Point2D) Point2D { return Point2D{X: p.X - o.X, Y: p.Y - o.Y} }

// Scale returns p scaled by s.
func (p Point2D) Scale(s float64) Point2D { return Point2D{X: p.X * s, Y: p.Y * s} }

// Magnitude returns the 2D Euclidean norm of p treated as a vector from the origin.
func (p Point2D) Magnitude() float64 { return math.Hypot(p.X, p.Y) }

// Mid returns the midpoint of p and o.
func (p Point2D) Mid(o Point2D) Point2D { return p.Add(o).Scale(0.5) }

// Distance2D returns the 2D Euclidean distance between p and o.
func Distance2D(p, o Point2D) float64 { return p.Sub(o).Magnitude() }

// VectorAngle returns the angle in radians between the vectors from the
// origin to a and to b, computed via the arccos of the normalized dot
// product. It returns 0 rather than NaN when either vector has zero
// length, since "no movement" has no well-defined direction to take an
// angle against.
func VectorAngle(a, b Point3D) float64 {
	av, bv := a.vector(), b.vector()
	an, bn := av.Norm(), bv.Norm()
	if an <= equalTolerance || bn <= equalTolerance {
		return 0
	}
	cos := av.Dot(bv) / (an * bn)
	// guard against floating point drift pushing |cos| slightly past 1
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}
