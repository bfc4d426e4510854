package activity

import (
	"testing"

	vtest "go.viam.com/test"

	"github.com/robocell/celloptimizer/geom"
)

func TestNewRobotLinksNeighbors(t *testing.T) {
	r := NewRobot("r1", geom.Point3D{}, 10, 1000, []Activity{
		{ID: "a1", Kind: Idle},
		{ID: "a2", Kind: Work, Work: WorkParams{FixedDuration: 2}},
		{ID: "a3", Kind: Idle},
	})

	vtest.That(t, r.At(0).IsFirst(), vtest.ShouldBeTrue)
	vtest.That(t, r.At(0).IsLast(), vtest.ShouldBeFalse)
	vtest.That(t, r.At(2).IsLast(), vtest.ShouldBeTrue)

	mid, ok := r.Prev(1)
	vtest.That(t, ok, vtest.ShouldBeTrue)
	vtest.That(t, mid.ID, vtest.ShouldEqual, "a1")

	_, ok = r.Next(2)
	vtest.That(t, ok, vtest.ShouldBeFalse)

	for i, a := range r.Activities() {
		vtest.That(t, a.RobotID, vtest.ShouldEqual, "r1")
		vtest.That(t, a.Index(), vtest.ShouldEqual, i)
	}
}

func TestDurationBounds(t *testing.T) {
	work := Activity{Kind: Work, Work: WorkParams{FixedDuration: 5}}
	min, max := work.DurationBounds()
	vtest.That(t, min, vtest.ShouldEqual, 5.0)
	vtest.That(t, max, vtest.ShouldEqual, 5.0)

	move := Activity{Kind: Movement, MoveP: MovementParams{DMin: 1, DMax: 5}}
	min, max = move.DurationBounds()
	vtest.That(t, min, vtest.ShouldEqual, 1.0)
	vtest.That(t, max, vtest.ShouldEqual, 5.0)
}

func TestFindActivity(t *testing.T) {
	p := Problem{
		Robots: []Robot{
			NewRobot("r1", geom.Point3D{}, 1, 1, []Activity{{ID: "a1", Kind: Idle}}),
			NewRobot("r2", geom.Point3D{}, 1, 1, []Activity{{ID: "b1", Kind: Idle}}),
		},
	}
	act, ri, ai, ok := p.FindActivity("b1")
	vtest.That(t, ok, vtest.ShouldBeTrue)
	vtest.That(t, act.ID, vtest.ShouldEqual, "b1")
	vtest.That(t, ri, vtest.ShouldEqual, 1)
	vtest.That(t, ai, vtest.ShouldEqual, 0)

	_, _, _, ok = p.FindActivity("missing")
	vtest.That(t, ok, vtest.ShouldBeFalse)
}
