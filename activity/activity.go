// Package activity holds the scheduling domain model: robots, the three
// activity kinds (work, movement, idle) linked into per-robot sequences,
// and the cell-wide offset/collision constraints between them. It is
// transport-agnostic: nothing here knows about JSON (see celljson) or the
// MILP backend (see solver/cellmodel).
package activity

import "github.com/robocell/celloptimizer/geom"

// Kind tags which variant an Activity is.
type Kind int

const (
	Work Kind = iota
	Movement
	Idle
)

func (k Kind) String() string {
	switch k {
	case Work:
		return "WORK"
	case Movement:
		return "MOVEMENT"
	case Idle:
		return "IDLE"
	default:
		return "UNKNOWN"
	}
}

// WorkParams holds the fields specific to a WorkActivity: a fixed
// duration and optional pinned start/end times.
type WorkParams struct {
	FixedDuration float64
	FixedStart    *float64
	FixedEnd      *float64
}

// MovementParams holds the fields specific to a MovementActivity.
type MovementParams struct {
	DMin, DMax float64
	FixedStart *float64
	FixedEnd   *float64

	// Start, End and PayloadWeight are the geometric/physical inputs the
	// energy-profile estimator needs when Envelope (on the containing
	// Activity) was not supplied directly via given_lines.
	Start, End    geom.Point3D
	PayloadWeight float64
}

// IdleParams holds the fields specific to an IdleActivity.
type IdleParams struct {
	DMin, DMax float64

	// Point and PayloadWeight are the geometric/physical inputs the
	// energy-profile estimator needs when Envelope was not supplied
	// directly via given_consumption.
	Point         geom.Point3D
	PayloadWeight float64
}

// Activity is a single scheduled unit of robot behavior. It is a tagged
// sum type: exactly one of Work/MoveP/IdleP is meaningful, selected
// by Kind. prev/next are stable indices into the owning robot's
// Activities slice rather than pointers, avoiding cyclic ownership;
// -1 means "no such neighbor".
type Activity struct {
	ID      string
	RobotID string
	Kind    Kind

	Work     WorkParams
	MoveP    MovementParams
	IdleP    IdleParams
	Envelope []geom.Line2D

	prevIndex int
	nextIndex int
	index     int
}

// IsFirst reports whether this activity has no predecessor on its robot.
func (a Activity) IsFirst() bool { return a.prevIndex < 0 }

// IsLast reports whether this activity has no successor on its robot.
func (a Activity) IsLast() bool { return a.nextIndex < 0 }

// Index returns this activity's position in its robot's Activities slice.
func (a Activity) Index() int { return a.index }

// DurationBounds returns the [min, max] duration bounds implied by this
// activity's kind: a fixed activity returns (d, d).
func (a Activity) DurationBounds() (float64, float64) {
	switch a.Kind {
	case Work:
		return a.Work.FixedDuration, a.Work.FixedDuration
	case Movement:
		return a.MoveP.DMin, a.MoveP.DMax
	case Idle:
		return a.IdleP.DMin, a.IdleP.DMax
	default:
		return 0, 0
	}
}

// PinnedStart returns the fixed start time for this activity, if any.
func (a Activity) PinnedStart() *float64 {
	switch a.Kind {
	case Work:
		return a.Work.FixedStart
	case Movement:
		return a.MoveP.FixedStart
	default:
		return nil
	}
}

// PinnedEnd returns the fixed end time for this activity, if any.
func (a Activity) PinnedEnd() *float64 {
	switch a.Kind {
	case Work:
		return a.Work.FixedEnd
	case Movement:
		return a.MoveP.FixedEnd
	default:
		return nil
	}
}
