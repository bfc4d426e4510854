package geom

import (
	"math"

	"github.com/robocell/celloptimizer/cellerrors"
)

// Line2D is an affine line y = Q*x + C. This form cannot represent a
// vertical line; every constructor that would need to returns
// cellerrors.InvalidGeometry instead of dividing by zero.
type Line2D struct {
	Q, C float64
}

// LineThroughPoints returns the line through two points with distinct x
// coordinates.
func LineThroughPoints(a, b Point2D) (Line2D, error) {
	dx := b.X - a.X
	if math.Abs(dx) < equalTolerance {
		return Line2D{}, cellerrors.New(cellerrors.InvalidGeometry, "",
			"cannot build a Line2D through two points with equal x coordinates (vertical line)")
	}
	q := (b.Y - a.Y) / dx
	c := a.Y - q*a.X
	return Line2D{Q: q, C: c}, nil
}

// Eval returns the line's y value at x.
func (l Line2D) Eval(x float64) float64 { return l.Q*x + l.C }

// DistanceToPoint returns the perpendicular distance from p to l.
func (l Line2D) DistanceToPoint(p Point2D) float64 {
	return math.Abs(l.Q*p.X-p.Y+l.C) / math.Sqrt(l.Q*l.Q+1)
}

// ClosestPoint returns the foot of the perpendicular from p onto l (the
// projection of p onto the line).
func (l Line2D) ClosestPoint(p Point2D) Point2D {
	a, b, c := l.Q, -1.0, l.C
	d := (a*p.X + b*p.Y + c) / (a*a + b*b)
	return Point2D{X: p.X - a*d, Y: p.Y - b*d}
}

// PerpendicularThrough returns the line perpendicular to l passing
// through p. It fails if l is horizontal, since the perpendicular would
// be vertical and not representable in the y = Q*x + C form.
func (l Line2D) PerpendicularThrough(p Point2D) (Line2D, error) {
	if math.Abs(l.Q) < equalTolerance {
		return Line2D{}, cellerrors.New(cellerrors.InvalidGeometry, "",
			"perpendicular to a horizontal line is vertical and has no Q/C form")
	}
	q := -1 / l.Q
	c := p.Y - q*p.X
	return Line2D{Q: q, C: c}, nil
}

// Intersect returns the point where l and o cross. It fails if the lines
// are parallel (including coincident).
func (l Line2D) Intersect(o Line2D) (Point2D, error) {
	if math.Abs(l.Q-o.Q) < equalTolerance {
		return Point2D{}, cellerrors.New(cellerrors.InvalidGeometry, "", "lines are parallel, no unique intersection")
	}
	x := (o.C - l.C) / (l.Q - o.Q)
	return Point2D{X: x, Y: l.Eval(x)}, nil
}
