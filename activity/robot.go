package activity

import "github.com/robocell/celloptimizer/geom"

// Robot is an immutable robot description: its identity, its physical
// placement and capability, and its ordered, non-empty activity
// sequence. Use NewRobot to construct one; it wires prev/next indices
// for you.
type Robot struct {
	ID       string
	Axis     geom.Point3D
	Weight   float64
	MaxReach float64

	activities []Activity
}

// NewRobot builds a Robot from an ordered, non-empty list of activities,
// stamping each with its RobotID and prev/next/index linkage.
func NewRobot(id string, axis geom.Point3D, weight, maxReach float64, activities []Activity) Robot {
	linked := make([]Activity, len(activities))
	copy(linked, activities)
	for i := range linked {
		linked[i].RobotID = id
		linked[i].index = i
		if i == 0 {
			linked[i].prevIndex = -1
		} else {
			linked[i].prevIndex = i - 1
		}
		if i == len(linked)-1 {
			linked[i].nextIndex = -1
		} else {
			linked[i].nextIndex = i + 1
		}
	}
	return Robot{ID: id, Axis: axis, Weight: weight, MaxReach: maxReach, activities: linked}
}

// Activities returns the robot's ordered activity sequence.
func (r Robot) Activities() []Activity { return r.activities }

// At returns the activity at the given index within this robot's
// sequence.
func (r Robot) At(i int) Activity { return r.activities[i] }

// Prev returns the activity preceding the one at index i, and whether it
// exists.
func (r Robot) Prev(i int) (Activity, bool) {
	idx := r.activities[i].prevIndex
	if idx < 0 {
		return Activity{}, false
	}
	return r.activities[idx], true
}

// Next returns the activity following the one at index i, and whether it
// exists.
func (r Robot) Next(i int) (Activity, bool) {
	idx := r.activities[i].nextIndex
	if idx < 0 {
		return Activity{}, false
	}
	return r.activities[idx], true
}
