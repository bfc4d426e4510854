// Package energyprofile builds piecewise-linear lower-envelope energy
// models for movement and idle activities from robot geometry, payload
// and movement endpoints.
package energyprofile

import (
	"math"

	"github.com/robocell/celloptimizer/cellerrors"
	"github.com/robocell/celloptimizer/geom"
)

// Estimator builds energy envelopes using a merged parameter set.
type Estimator struct {
	Params Parameters
}

// NewEstimator builds an Estimator, merging custom into the built-in
// defaults. A nil custom uses the defaults unmodified.
func NewEstimator(custom *Parameters) Estimator {
	return Estimator{Params: DefaultParameters().Merge(custom)}
}

func dirRatios(g geom.MovementGeometry) map[string]float64 {
	length := g.Length()
	return map[string]float64{
		"side":      g.SideDistance() / length,
		"into_dist": math.Max(g.FarDistance(), 0) / length,
		"from_afar": math.Max(-g.FarDistance(), 0) / length,
		"up":        math.Max(g.HeightChange(), 0) / length,
		"down":      math.Max(-g.HeightChange(), 0) / length,
	}
}

// sumOfSquares evaluates sqrt(Σ_t (ratio_t * f(t))^2) over the five
// direction types, the shared shape of the type/length/avg-dist/
// avg-height factors in the five-factor model.
func sumOfSquares(ratios map[string]float64, perDir func(dir string) float64) float64 {
	var sum float64
	for _, d := range dirTypes {
		v := ratios[d] * perDir(d)
		sum += v * v
	}
	return math.Sqrt(sum)
}

func energyForDuration(p DurationFactors, g geom.MovementGeometry, ratios map[string]float64) float64 {
	baseFactor := p.Base
	typeFactor := sumOfSquares(ratios, func(d string) float64 { return p.TypeFactor[d] })

	length := g.Length()
	lengthFactor := sumOfSquares(ratios, func(d string) float64 { return p.LengthCoef[d].eval(length) })

	avgDist := g.AvgDistanceFromAxis()
	avgDistFactor := sumOfSquares(ratios, func(d string) float64 { return p.AvgDistCoef[d].eval(avgDist) })

	avgHeight := g.AvgHeight()
	avgHeightFactor := sumOfSquares(ratios, func(d string) float64 { return p.AvgHeightCoef[d].eval(avgHeight) })

	return baseFactor * typeFactor * lengthFactor * avgDistFactor * avgHeightFactor
}

// EstimateMovement builds the three-line piecewise-linear lower envelope
// for a movement's energy as a function of duration.
func (e Estimator) EstimateMovement(g geom.MovementGeometry, dMin, dMax float64) ([]geom.Line2D, error) {
	ratios := dirRatios(g)
	mp := e.Params.Movement

	minEnergy := energyForDuration(mp.MinDuration, g, ratios)
	maxEnergy := energyForDuration(mp.MaxDuration, g, ratios)
	optRatio := energyForDuration(mp.OptDuration, g, ratios)
	optDur := dMin * optRatio

	leftDur := math.Max(mp.OptDuration.LeftDurShift*optDur, mp.OptDuration.MinLeftDurRatio*dMin)
	rightDur := math.Max(mp.OptDuration.RightDurShift*optDur, mp.OptDuration.MinRightDurRatio*dMin)

	if leftDur >= rightDur || leftDur <= dMin || rightDur >= dMax {
		// Corners collapsed or crossed: fall back to a symmetric two-line
		// V centered at the midpoint of the duration range.
		mid := (dMin + dMax) / 2
		leftDur, rightDur = mid, mid
	}

	leftLine, err := geom.LineThroughPoints(geom.Point2D{X: dMin, Y: minEnergy}, geom.Point2D{X: leftDur, Y: 0})
	if err != nil {
		return nil, cellerrors.Wrap(err, cellerrors.InvalidGeometry, "", "movement envelope left segment")
	}
	rightLine, err := geom.LineThroughPoints(geom.Point2D{X: rightDur, Y: 0}, geom.Point2D{X: dMax, Y: maxEnergy})
	if err != nil {
		return nil, cellerrors.Wrap(err, cellerrors.InvalidGeometry, "", "movement envelope right segment")
	}

	return []geom.Line2D{leftLine, {Q: 0, C: 0}, rightLine}, nil
}

// EstimateIdle builds the single-line affine idle-power rate for a
// stationary hold at point, for a robot of the given weight whose axis
// is at axis, holding the given payload.
func (e Estimator) EstimateIdle(point, axis geom.Point3D, weight, payloadWeight float64) []geom.Line2D {
	ip := e.Params.Idling
	relativeWeight := weight*e.Params.Common.RobotWeightCoef + payloadWeight*e.Params.Common.PayloadWeightCoef

	horizDist := geom.Distance2D(geom.NullZ(axis), geom.NullZ(point))
	q := ip.Base * relativeWeight * ip.DistCoef.eval(horizDist) * ip.HeightCoef.eval(point.Z)
	return []geom.Line2D{{Q: q, C: 0}}
}

// EstimateDurationBounds derives a conservative [d_min, d_max] range for
// a movement that omitted explicit bounds, from its length and the
// configured nominal speed band.
func (e Estimator) EstimateDurationBounds(g geom.MovementGeometry) (dMin, dMax float64, err error) {
	length := g.Length()
	if length < 1e-9 {
		return 0, 0, cellerrors.New(cellerrors.DegenerateMovement, "", "cannot estimate duration bounds for a zero-length movement")
	}
	mp := e.Params.Movement
	if mp.MinNominalSpeed <= 0 || mp.MaxNominalSpeed <= 0 {
		return 0, 0, cellerrors.New(cellerrors.MissingDurationBounds, "", "no nominal speed band configured to estimate duration bounds")
	}
	dMin = length / mp.MinNominalSpeed
	dMax = length / mp.MaxNominalSpeed
	return dMin, dMax, nil
}
