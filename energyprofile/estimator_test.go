package energyprofile

import (
	"testing"

	vtest "go.viam.com/test"

	"github.com/robocell/celloptimizer/geom"
)

func TestMergeFillsZeroFieldsOnly(t *testing.T) {
	def := DefaultParameters()
	custom := &Parameters{Common: CommonParameters{RobotWeightCoef: 42}}
	merged := def.Merge(custom)

	vtest.That(t, merged.Common.RobotWeightCoef, vtest.ShouldEqual, 42.0)
	vtest.That(t, merged.Common.PayloadWeightCoef, vtest.ShouldEqual, def.Common.PayloadWeightCoef)
}

func TestMergeNilReturnsDefault(t *testing.T) {
	def := DefaultParameters()
	vtest.That(t, def.Merge(nil).Common.RobotWeightCoef, vtest.ShouldEqual, def.Common.RobotWeightCoef)
}

func TestEstimateMovementEnvelopeShape(t *testing.T) {
	e := NewEstimator(nil)
	g, err := geom.NewMovementGeometry(
		geom.Point3D{X: 0, Y: 0, Z: 0},
		geom.Point3D{X: 1000, Y: 0, Z: 0},
		geom.Point3D{X: 0, Y: 0, Z: 0},
	)
	vtest.That(t, err, vtest.ShouldBeNil)

	lines, err := e.EstimateMovement(g, 1, 5)
	vtest.That(t, err, vtest.ShouldBeNil)
	vtest.That(t, len(lines), vtest.ShouldEqual, 3)
	// middle line is always the zero floor (Line(0,0))
	vtest.That(t, lines[1].Q, vtest.ShouldEqual, 0.0)
	vtest.That(t, lines[1].C, vtest.ShouldEqual, 0.0)
}

func TestEstimateIdleAffineLine(t *testing.T) {
	e := NewEstimator(nil)
	lines := e.EstimateIdle(geom.Point3D{X: 100, Y: 0, Z: 10}, geom.Point3D{X: 0, Y: 0, Z: 0}, 50, 2)
	vtest.That(t, len(lines), vtest.ShouldEqual, 1)
	vtest.That(t, lines[0].C, vtest.ShouldEqual, 0.0)
	vtest.That(t, lines[0].Q > 0, vtest.ShouldBeTrue)
}

func TestEstimateDurationBoundsDegenerate(t *testing.T) {
	e := NewEstimator(nil)
	p := geom.Point3D{X: 1, Y: 1, Z: 1}
	_, err := geom.NewMovementGeometry(p, p, geom.Point3D{})
	vtest.That(t, err, vtest.ShouldNotBeNil)

	g, err := geom.NewMovementGeometry(geom.Point3D{X: 0, Y: 0, Z: 0}, geom.Point3D{X: 100, Y: 0, Z: 0}, geom.Point3D{})
	vtest.That(t, err, vtest.ShouldBeNil)
	dMin, dMax, err := e.EstimateDurationBounds(g)
	vtest.That(t, err, vtest.ShouldBeNil)
	vtest.That(t, dMin < dMax, vtest.ShouldBeTrue)
}

func TestGivenLinesEnvelopeScenario(t *testing.T) {
	// given_lines override the estimator entirely; this test only checks
	// the envelope max at the two candidate durations.
	lines := []geom.Line2D{{Q: -10, C: 60}, {Q: 0, C: 10}, {Q: 10, C: -40}}
	max := func(d float64) float64 {
		m := lines[0].Eval(d)
		for _, l := range lines[1:] {
			if v := l.Eval(d); v > m {
				m = v
			}
		}
		return m
	}
	vtest.That(t, max(1), vtest.ShouldEqual, 50.0)
	vtest.That(t, max(5), vtest.ShouldEqual, 10.0)
}
