package energyprofile

// dirTypes enumerates the five movement direction components the
// five-factor energy model decomposes a movement into.
var dirTypes = []string{"side", "into_dist", "from_afar", "up", "down"}

// QuadraticCoef is an A*x^2 + B*x + C coefficient triple used by the
// length/avg-distance/avg-height factors of the movement energy model.
type QuadraticCoef struct {
	A, B, C float64
}

func (q QuadraticCoef) eval(x float64) float64 { return q.A*x*x + q.B*x + q.C }

func mergeQuadraticCoef(custom, def QuadraticCoef) QuadraticCoef {
	if custom == (QuadraticCoef{}) {
		return def
	}
	return custom
}

// DurationFactors holds one of the three min/max/opt parameter subsets
// used to compute a movement's energy at a particular duration regime.
type DurationFactors struct {
	Base float64

	TypeFactor map[string]float64

	LengthCoef    map[string]QuadraticCoef
	AvgDistCoef   map[string]QuadraticCoef
	AvgHeightCoef map[string]QuadraticCoef

	// Opt-duration-only fields; zero for Min/Max.
	LeftDurShift     float64
	MinLeftDurRatio  float64
	RightDurShift    float64
	MinRightDurRatio float64
}

func mergeDurationFactors(custom, def *DurationFactors) DurationFactors {
	if custom == nil {
		return *def
	}
	out := *def
	if custom.Base != 0 {
		out.Base = custom.Base
	}
	out.TypeFactor = mergeFloatMap(custom.TypeFactor, def.TypeFactor)
	out.LengthCoef = mergeCoefMap(custom.LengthCoef, def.LengthCoef)
	out.AvgDistCoef = mergeCoefMap(custom.AvgDistCoef, def.AvgDistCoef)
	out.AvgHeightCoef = mergeCoefMap(custom.AvgHeightCoef, def.AvgHeightCoef)
	if custom.LeftDurShift != 0 {
		out.LeftDurShift = custom.LeftDurShift
	}
	if custom.MinLeftDurRatio != 0 {
		out.MinLeftDurRatio = custom.MinLeftDurRatio
	}
	if custom.RightDurShift != 0 {
		out.RightDurShift = custom.RightDurShift
	}
	if custom.MinRightDurRatio != 0 {
		out.MinRightDurRatio = custom.MinRightDurRatio
	}
	return out
}

func mergeFloatMap(custom, def map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(def))
	for k, v := range def {
		out[k] = v
	}
	for k, v := range custom {
		if v != 0 {
			out[k] = v
		}
	}
	return out
}

func mergeCoefMap(custom, def map[string]QuadraticCoef) map[string]QuadraticCoef {
	out := make(map[string]QuadraticCoef, len(def))
	for k, v := range def {
		out[k] = v
	}
	for k, v := range custom {
		out[k] = mergeQuadraticCoef(v, def[k])
	}
	return out
}

// CommonParameters maps physical masses to dimensionless weight factors.
type CommonParameters struct {
	RobotWeightCoef   float64
	PayloadWeightCoef float64
}

// IdlingParameters parameterize the affine idle-power rate as a product
// of a base, a quadratic in horizontal distance from the axis, and a
// quadratic in height.
type IdlingParameters struct {
	Base       float64
	DistCoef   QuadraticCoef
	HeightCoef QuadraticCoef
}

// MovementParameters groups the three duration-regime parameter subsets
// used to build a movement's piecewise-linear energy envelope.
type MovementParameters struct {
	MinDuration DurationFactors
	MaxDuration DurationFactors
	OptDuration DurationFactors

	// Used by EstimateDurationBounds when a movement omits d_min/d_max:
	// a conservative nominal speed band, in mm/s, applied to the
	// movement's length.
	MinNominalSpeed float64
	MaxNominalSpeed float64
}

// Parameters is the fully typed configuration surface for the
// energy-profile estimator, replacing a looser string-keyed parameter
// bag with a typed one.
type Parameters struct {
	Common   CommonParameters
	Idling   IdlingParameters
	Movement MovementParameters
}

// Merge fills zero-valued fields of custom from def, field by field, and
// returns the result. A nil custom returns def unchanged.
func (def Parameters) Merge(custom *Parameters) Parameters {
	if custom == nil {
		return def
	}
	out := def
	if custom.Common.RobotWeightCoef != 0 {
		out.Common.RobotWeightCoef = custom.Common.RobotWeightCoef
	}
	if custom.Common.PayloadWeightCoef != 0 {
		out.Common.PayloadWeightCoef = custom.Common.PayloadWeightCoef
	}
	if custom.Idling.Base != 0 {
		out.Idling.Base = custom.Idling.Base
	}
	if custom.Idling.DistCoef != (QuadraticCoef{}) {
		out.Idling.DistCoef = custom.Idling.DistCoef
	}
	if custom.Idling.HeightCoef != (QuadraticCoef{}) {
		out.Idling.HeightCoef = custom.Idling.HeightCoef
	}
	out.Movement.MinDuration = mergeDurationFactors(&custom.Movement.MinDuration, &def.Movement.MinDuration)
	out.Movement.MaxDuration = mergeDurationFactors(&custom.Movement.MaxDuration, &def.Movement.MaxDuration)
	out.Movement.OptDuration = mergeDurationFactors(&custom.Movement.OptDuration, &def.Movement.OptDuration)
	if custom.Movement.MinNominalSpeed != 0 {
		out.Movement.MinNominalSpeed = custom.Movement.MinNominalSpeed
	}
	if custom.Movement.MaxNominalSpeed != 0 {
		out.Movement.MaxNominalSpeed = custom.Movement.MaxNominalSpeed
	}
	return out
}

// DefaultParameters returns the built-in parameter set. Values are
// conservative defaults in the absence of per-robot calibration; callers
// override via Merge.
func DefaultParameters() Parameters {
	uniform := func(v float64) map[string]float64 {
		m := make(map[string]float64, len(dirTypes))
		for _, d := range dirTypes {
			m[d] = v
		}
		return m
	}
	uniformCoef := func(c QuadraticCoef) map[string]QuadraticCoef {
		m := make(map[string]QuadraticCoef, len(dirTypes))
		for _, d := range dirTypes {
			m[d] = c
		}
		return m
	}

	return Parameters{
		Common: CommonParameters{
			RobotWeightCoef:   1.0 / 300,
			PayloadWeightCoef: 1.0 / 100,
		},
		Idling: IdlingParameters{
			Base:       1.0,
			DistCoef:   QuadraticCoef{A: 0, B: 0, C: 1},
			HeightCoef: QuadraticCoef{A: 0, B: 0, C: 1},
		},
		Movement: MovementParameters{
			MinDuration: DurationFactors{
				Base:          1.0,
				TypeFactor:    uniform(1.0),
				LengthCoef:    uniformCoef(QuadraticCoef{A: 0, B: 0, C: 1}),
				AvgDistCoef:   uniformCoef(QuadraticCoef{A: 0, B: 0, C: 1}),
				AvgHeightCoef: uniformCoef(QuadraticCoef{A: 0, B: 0, C: 1}),
			},
			MaxDuration: DurationFactors{
				Base:          0.4,
				TypeFactor:    uniform(1.0),
				LengthCoef:    uniformCoef(QuadraticCoef{A: 0, B: 0, C: 1}),
				AvgDistCoef:   uniformCoef(QuadraticCoef{A: 0, B: 0, C: 1}),
				AvgHeightCoef: uniformCoef(QuadraticCoef{A: 0, B: 0, C: 1}),
			},
			OptDuration: DurationFactors{
				Base:             1.2,
				TypeFactor:       uniform(1.0),
				LengthCoef:       uniformCoef(QuadraticCoef{A: 0, B: 0, C: 1}),
				AvgDistCoef:      uniformCoef(QuadraticCoef{A: 0, B: 0, C: 1}),
				AvgHeightCoef:    uniformCoef(QuadraticCoef{A: 0, B: 0, C: 1}),
				LeftDurShift:     0.5,
				MinLeftDurRatio:  1.0,
				RightDurShift:    2.0,
				MinRightDurRatio: 1.0,
			},
			MinNominalSpeed: 200,  // mm/s, conservative fast bound -> small d_min
			MaxNominalSpeed: 20,   // mm/s, conservative slow bound -> large d_max
		},
	}
}
