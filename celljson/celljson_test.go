package celljson

import (
	"encoding/json"
	"testing"

	vtest "go.viam.com/test"

	"github.com/robocell/celloptimizer/activity"
	"github.com/robocell/celloptimizer/energyprofile"
)

func ptrF(v float64) *float64 { return &v }

func TestToProblemWithGivenLinesAndConsumption(t *testing.T) {
	in := Input{
		CycleTime: 10,
		Robots: []RobotInput{
			{
				ID: "r1", Weight: 10, MaximumReach: 1000, MinActivitiesDuration: 0,
				Activities: []ActivityInput{
					{Type: "IDLE", ID: "i1", Position: &PointInput{X: 0, Y: 0, Z: 0}, GivenConsumption: ptrF(1)},
					{
						Type: "MOVEMENT", ID: "m1",
						Start: &PointInput{X: 0, Y: 0, Z: 0}, End: &PointInput{X: 1000, Y: 0, Z: 0},
						MinDuration: ptrF(1), MaxDuration: ptrF(5),
						GivenLines: []LineInput{{Q: -10, C: 60}, {Q: 0, C: 10}, {Q: 10, C: -40}},
					},
				},
			},
		},
	}

	estimator := energyprofile.NewEstimator(nil)
	p, err := in.ToProblem(&estimator)
	vtest.That(t, err, vtest.ShouldBeNil)
	vtest.That(t, p.CycleTime, vtest.ShouldAlmostEqual, 10.0)
	vtest.That(t, len(p.Robots), vtest.ShouldEqual, 1)

	i1, _, _, ok := p.FindActivity("i1")
	vtest.That(t, ok, vtest.ShouldBeTrue)
	vtest.That(t, len(i1.Envelope), vtest.ShouldEqual, 1)
	vtest.That(t, i1.Envelope[0].Q, vtest.ShouldAlmostEqual, 1.0)

	m1, _, _, ok := p.FindActivity("m1")
	vtest.That(t, ok, vtest.ShouldBeTrue)
	vtest.That(t, len(m1.Envelope), vtest.ShouldEqual, 3)
	vtest.That(t, m1.MoveP.DMin, vtest.ShouldAlmostEqual, 1.0)
	vtest.That(t, m1.MoveP.DMax, vtest.ShouldAlmostEqual, 5.0)
}

func TestToProblemEstimatesMovementEnvelopeWhenNotGiven(t *testing.T) {
	in := Input{
		CycleTime: 10,
		Robots: []RobotInput{
			{
				ID: "r1", Weight: 10, MaximumReach: 1000,
				Activities: []ActivityInput{
					{
						Type: "MOVEMENT", ID: "m1",
						Start: &PointInput{X: 0, Y: 0, Z: 0}, End: &PointInput{X: 500, Y: 0, Z: 0},
						MinDuration: ptrF(1), MaxDuration: ptrF(5),
					},
				},
			},
		},
	}
	estimator := energyprofile.NewEstimator(nil)
	p, err := in.ToProblem(&estimator)
	vtest.That(t, err, vtest.ShouldBeNil)
	m1, _, _, ok := p.FindActivity("m1")
	vtest.That(t, ok, vtest.ShouldBeTrue)
	vtest.That(t, len(m1.Envelope) > 0, vtest.ShouldBeTrue)
}

func TestToProblemRejectsDegenerateMovement(t *testing.T) {
	in := Input{
		CycleTime: 10,
		Robots: []RobotInput{
			{
				ID: "r1",
				Activities: []ActivityInput{
					{
						Type: "MOVEMENT", ID: "m1",
						Start: &PointInput{X: 5, Y: 5, Z: 5}, End: &PointInput{X: 5, Y: 5, Z: 5},
						MinDuration: ptrF(1), MaxDuration: ptrF(5),
					},
				},
			},
		},
	}
	estimator := energyprofile.NewEstimator(nil)
	_, err := in.ToProblem(&estimator)
	vtest.That(t, err, vtest.ShouldNotBeNil)
}

func TestToProblemDefaultsIdleMaxDuration(t *testing.T) {
	in := Input{
		CycleTime: 10,
		Robots: []RobotInput{
			{
				ID: "r1", MinActivitiesDuration: 3,
				Activities: []ActivityInput{
					{Type: "IDLE", ID: "i1", Position: &PointInput{}, GivenConsumption: ptrF(0)},
				},
			},
		},
	}
	estimator := energyprofile.NewEstimator(nil)
	p, err := in.ToProblem(&estimator)
	vtest.That(t, err, vtest.ShouldBeNil)
	i1, _, _, _ := p.FindActivity("i1")
	vtest.That(t, i1.IdleP.DMax, vtest.ShouldAlmostEqual, 7.0)
}

func TestOutputRoundTripsThroughJSON(t *testing.T) {
	out := Output{
		CycleTime: 10,
		Robots: []RobotOutput{
			{ID: "r1", Activities: []ActivityOutput{
				{ID: "m1", Type: activity.Movement.String(), StartTime: 5, Duration: 5, EndTime: 10, Energy: 10,
					EnergyProfile: []LineInput{{Q: 0, C: 10}}},
			}},
		},
		Energy: 10,
	}
	data, err := json.Marshal(out)
	vtest.That(t, err, vtest.ShouldBeNil)

	var back Output
	vtest.That(t, json.Unmarshal(data, &back), vtest.ShouldBeNil)
	vtest.That(t, back.Energy, vtest.ShouldAlmostEqual, 10.0)
	vtest.That(t, back.Robots[0].Activities[0].Type, vtest.ShouldEqual, "MOVEMENT")
}
