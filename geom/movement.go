package geom

import (
	"math"

	"github.com/robocell/celloptimizer/cellerrors"
)

// MovementGeometry holds the derived quantities the energy-profile
// estimator needs for a single linear movement from Start to End, taken
// relative to a robot's Axis.
type MovementGeometry struct {
	Start, End, Axis Point3D

	length              float64
	heightChange        float64
	avgHeight           float64
	sideDistance        float64
	farDistance         float64
	avgDistanceFromAxis float64
}

// NewMovementGeometry computes all derived quantities for a segment from
// start to end relative to axis. It fails with DegenerateMovement if
// start and end coincide, since none of the directional quantities are
// defined for a zero-length segment.
func NewMovementGeometry(start, end, axis Point3D) (MovementGeometry, error) {
	length := Distance(start, end)
	if length < equalTolerance {
		return MovementGeometry{}, cellerrors.New(cellerrors.DegenerateMovement, "",
			"movement start and end coincide; length must be nonzero")
	}

	mid := start.Mid(end)
	axis2, mid2, start2 := NullZ(axis), NullZ(mid), NullZ(start)

	dir := mid2.Sub(axis2)
	dirNorm := dir.Magnitude()

	var side, far, avgDist float64
	if dirNorm < equalTolerance {
		// The axis sits directly below/above the segment's horizontal
		// midpoint: there is no well-defined "side" or "far" axis to
		// decompose against, so both terms are zero by convention.
		side, far, avgDist = 0, 0, 0
	} else {
		// perpendicular distance from start2 to the line through axis2 and mid2,
		// via the 2D cross product -- equivalent to, but numerically robust
		// for, Line2D.DistanceToPoint even when that line would be vertical.
		toStart := start2.Sub(axis2)
		cross := dir.X*toStart.Y - dir.Y*toStart.X
		perpDist := math.Abs(cross) / dirNorm
		side = 2 * perpDist

		// projection of start2 onto the axis-mid line
		dirHat := dir.Scale(1 / dirNorm)
		proj := dirHat.Scale(toStart.X*dirHat.X + toStart.Y*dirHat.Y)
		foot := axis2.Add(proj)

		far = 2 * (dirNorm - Distance2D(axis2, foot))
		avgDist = dirNorm
	}

	return MovementGeometry{
		Start: start, End: end, Axis: axis,
		length:              length,
		heightChange:        end.Z - start.Z,
		avgHeight:           (start.Z + end.Z) / 2,
		sideDistance:        side,
		farDistance:         far,
		avgDistanceFromAxis: avgDist,
	}, nil
}

// Length returns the 3D length of the movement.
func (m MovementGeometry) Length() float64 { return m.length }

// HeightChange returns End.Z - Start.Z, signed.
func (m MovementGeometry) HeightChange() float64 { return m.heightChange }

// AvgHeight returns the average of Start.Z and End.Z.
func (m MovementGeometry) AvgHeight() float64 { return m.avgHeight }

// SideDistance returns the unsigned lateral offset of the segment's start
// from the axis-midpoint line, doubled to express full sweep width.
func (m MovementGeometry) SideDistance() float64 { return m.sideDistance }

// FarDistance returns the signed change in distance from the axis:
// positive when the motion moves further away, negative when it moves
// closer.
func (m MovementGeometry) FarDistance() float64 { return m.farDistance }

// AvgDistanceFromAxis returns the average horizontal distance from the
// axis to the segment's midpoint.
func (m MovementGeometry) AvgDistanceFromAxis() float64 { return m.avgDistanceFromAxis }
