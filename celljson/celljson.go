// Package celljson is the external JSON contract for this module: a
// nested Input mirroring the wire schema's recognized keys, converted
// to an activity.Problem via ToProblem, and a nested Output built from
// a solved cellmodel.Solution via FromSolution.
package celljson

import (
	"github.com/robocell/celloptimizer/activity"
	"github.com/robocell/celloptimizer/cellerrors"
	"github.com/robocell/celloptimizer/cellmodel"
	"github.com/robocell/celloptimizer/energyprofile"
	"github.com/robocell/celloptimizer/geom"
)

// PointInput is a millimeter position in the work cell frame.
type PointInput struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p PointInput) toPoint() geom.Point3D { return geom.Point3D{X: p.X, Y: p.Y, Z: p.Z} }

// LineInput is one (q, c) affine energy-envelope line.
type LineInput struct {
	Q float64 `json:"q"`
	C float64 `json:"c"`
}

// ActivityInput is one robot's activity, tagged by Type.
type ActivityInput struct {
	Type string `json:"type"`
	ID   string `json:"id"`

	// WORK
	Duration *float64 `json:"duration,omitempty"`

	// WORK, MOVEMENT
	FixedStartTime *float64 `json:"fixed_start_time,omitempty"`
	FixedEndTime   *float64 `json:"fixed_end_time,omitempty"`

	// MOVEMENT
	MinDuration   *float64    `json:"min_duration,omitempty"`
	MaxDuration   *float64    `json:"max_duration,omitempty"`
	Start         *PointInput `json:"start,omitempty"`
	End           *PointInput `json:"end,omitempty"`
	PayloadWeight *float64    `json:"payload_weight,omitempty"`
	GivenLines    []LineInput `json:"given_lines,omitempty"`

	// IDLE
	Position         *PointInput `json:"position,omitempty"`
	GivenConsumption *float64    `json:"given_consumption,omitempty"`
}

// RobotInput is one robot description.
type RobotInput struct {
	ID                    string          `json:"id"`
	Position              PointInput      `json:"position"`
	Weight                float64         `json:"weight"`
	MaximumReach          float64         `json:"maximum_reach"`
	MinActivitiesDuration float64         `json:"min_activities_duration"`
	Activities            []ActivityInput `json:"activities"`
}

// TimeOffsetInput mirrors activity.TimeOffset.
type TimeOffsetInput struct {
	AID       string   `json:"a_id"`
	BID       string   `json:"b_id"`
	MinOffset *float64 `json:"min_offset,omitempty"`
	MaxOffset *float64 `json:"max_offset,omitempty"`
}

// CollisionInput mirrors activity.Collision.
type CollisionInput struct {
	AID            string   `json:"a_id"`
	BID            string   `json:"b_id"`
	BPrevSkipRatio *float64 `json:"b_prev_skip_ratio,omitempty"`
	BNextSkipRatio *float64 `json:"b_next_skip_ratio,omitempty"`
}

// Input is the top-level problem description.
type Input struct {
	CycleTime   float64           `json:"cycle_time"`
	Robots      []RobotInput      `json:"robots"`
	TimeOffsets []TimeOffsetInput `json:"time_offsets,omitempty"`
	Collisions  []CollisionInput  `json:"collisions,omitempty"`
}

// ToProblem converts i into an activity.Problem, invoking estimator for
// any movement/idle activity that does not supply given_lines /
// given_consumption, and for any movement omitting min_duration /
// max_duration (the external schema otherwise expects both to be
// present).
func (i Input) ToProblem(estimator *energyprofile.Estimator) (activity.Problem, error) {
	robots := make([]activity.Robot, 0, len(i.Robots))
	for _, rin := range i.Robots {
		acts := make([]activity.Activity, 0, len(rin.Activities))
		for _, ain := range rin.Activities {
			a, err := convertActivity(ain, rin, i.CycleTime, estimator)
			if err != nil {
				return activity.Problem{}, err
			}
			acts = append(acts, a)
		}
		robots = append(robots, activity.NewRobot(rin.ID, rin.Position.toPoint(), rin.Weight, rin.MaximumReach, acts))
	}

	offsets := make([]activity.TimeOffset, 0, len(i.TimeOffsets))
	for _, o := range i.TimeOffsets {
		offsets = append(offsets, activity.TimeOffset{A: o.AID, B: o.BID, MinOffset: o.MinOffset, MaxOffset: o.MaxOffset})
	}

	collisions := make([]activity.Collision, 0, len(i.Collisions))
	for _, c := range i.Collisions {
		collisions = append(collisions, activity.Collision{
			A:             c.AID,
			B:             c.BID,
			PrevSkipRatio: ratioOrDefault(c.BPrevSkipRatio),
			NextSkipRatio: ratioOrDefault(c.BNextSkipRatio),
		})
	}

	return activity.Problem{CycleTime: i.CycleTime, Robots: robots, Offsets: offsets, Collisions: collisions}, nil
}

func ratioOrDefault(r *float64) float64 {
	if r == nil {
		return 1.0
	}
	return *r
}

func convertActivity(ain ActivityInput, rin RobotInput, cycleTime float64, estimator *energyprofile.Estimator) (activity.Activity, error) {
	switch ain.Type {
	case "WORK":
		if ain.Duration == nil {
			return activity.Activity{}, cellerrors.New(cellerrors.InvalidInput, ain.ID, "WORK activity missing duration")
		}
		return activity.Activity{
			ID:   ain.ID,
			Kind: activity.Work,
			Work: activity.WorkParams{FixedDuration: *ain.Duration, FixedStart: ain.FixedStartTime, FixedEnd: ain.FixedEndTime},
		}, nil

	case "MOVEMENT":
		return convertMovement(ain, rin, estimator)

	case "IDLE":
		return convertIdle(ain, rin, cycleTime, estimator)

	default:
		return activity.Activity{}, cellerrors.Newf(cellerrors.InvalidInput, ain.ID, "unrecognized activity type %q", ain.Type)
	}
}

func convertMovement(ain ActivityInput, rin RobotInput, estimator *energyprofile.Estimator) (activity.Activity, error) {
	if ain.Start == nil || ain.End == nil {
		return activity.Activity{}, cellerrors.New(cellerrors.InvalidInput, ain.ID, "MOVEMENT activity missing start/end")
	}
	start, end := ain.Start.toPoint(), ain.End.toPoint()
	payload := floatOrDefault(ain.PayloadWeight, 0)

	geometry, err := geom.NewMovementGeometry(start, end, rin.Position)
	if err != nil {
		return activity.Activity{}, cellerrors.Wrap(err, cellerrors.DegenerateMovement, ain.ID, "building movement geometry")
	}

	dMin, dMax, err := resolveMovementDuration(ain, geometry, estimator)
	if err != nil {
		return activity.Activity{}, err
	}

	a := activity.Activity{
		ID:   ain.ID,
		Kind: activity.Movement,
		MoveP: activity.MovementParams{
			DMin: dMin, DMax: dMax,
			FixedStart: ain.FixedStartTime, FixedEnd: ain.FixedEndTime,
			Start: start, End: end, PayloadWeight: payload,
		},
	}

	if len(ain.GivenLines) > 0 {
		a.Envelope = convertLines(ain.GivenLines)
		return a, nil
	}
	envelope, err := estimator.EstimateMovement(geometry, dMin, dMax)
	if err != nil {
		return activity.Activity{}, cellerrors.Wrap(err, cellerrors.InvalidGeometry, ain.ID, "estimating movement envelope")
	}
	a.Envelope = envelope
	return a, nil
}

func resolveMovementDuration(ain ActivityInput, geometry geom.MovementGeometry, estimator *energyprofile.Estimator) (dMin, dMax float64, err error) {
	if ain.MinDuration != nil && ain.MaxDuration != nil {
		return *ain.MinDuration, *ain.MaxDuration, nil
	}
	dMin, dMax, err = estimator.EstimateDurationBounds(geometry)
	if err != nil {
		return 0, 0, cellerrors.Wrap(err, cellerrors.MissingDurationBounds, ain.ID, "movement omitted min_duration/max_duration and estimator fallback failed")
	}
	return dMin, dMax, nil
}

func convertIdle(ain ActivityInput, rin RobotInput, cycleTime float64, estimator *energyprofile.Estimator) (activity.Activity, error) {
	if ain.Position == nil {
		return activity.Activity{}, cellerrors.New(cellerrors.InvalidInput, ain.ID, "IDLE activity missing position")
	}
	point := ain.Position.toPoint()
	payload := floatOrDefault(ain.PayloadWeight, 0)
	dMin := floatOrDefault(ain.MinDuration, 0)
	dMax := floatOrDefault(ain.MaxDuration, cycleTime-rin.MinActivitiesDuration)

	a := activity.Activity{
		ID:   ain.ID,
		Kind: activity.Idle,
		IdleP: activity.IdleParams{
			DMin: dMin, DMax: dMax,
			Point: point, PayloadWeight: payload,
		},
	}

	if ain.GivenConsumption != nil {
		a.Envelope = []geom.Line2D{{Q: *ain.GivenConsumption, C: 0}}
		return a, nil
	}
	a.Envelope = estimator.EstimateIdle(point, rin.Position, rin.Weight, payload)
	return a, nil
}

func floatOrDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func convertLines(lines []LineInput) []geom.Line2D {
	out := make([]geom.Line2D, len(lines))
	for i, l := range lines {
		out[i] = geom.Line2D{Q: l.Q, C: l.C}
	}
	return out
}

// ActivityOutput is one solved activity record.
type ActivityOutput struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`
	StartTime     float64     `json:"start_time"`
	Duration      float64     `json:"duration"`
	EndTime       float64     `json:"end_time"`
	Energy        float64     `json:"energy"`
	EnergyProfile []LineInput `json:"energy_profile"`
}

// RobotOutput is one robot's solved activity sequence.
type RobotOutput struct {
	ID         string           `json:"id"`
	Activities []ActivityOutput `json:"activities"`
}

// Output is the top-level solved schedule.
type Output struct {
	CycleTime float64       `json:"cycle_time"`
	Robots    []RobotOutput `json:"robots"`
	Energy    float64       `json:"energy"`
}

// FromSolution builds an Output from a solved cellmodel.Solution.
func FromSolution(sol *cellmodel.Solution) Output {
	out := Output{CycleTime: sol.CycleTime, Energy: sol.TotalEnergy()}
	for _, r := range sol.Robots {
		ro := RobotOutput{ID: r.RobotID}
		for _, a := range r.Activities {
			ro.Activities = append(ro.Activities, ActivityOutput{
				ID: a.ID, Type: a.Kind.String(),
				StartTime: a.Start, Duration: a.Duration, EndTime: a.End, Energy: a.Energy,
				EnergyProfile: linesToOutput(a.ActiveEnvelope),
			})
		}
		out.Robots = append(out.Robots, ro)
	}
	return out
}

func linesToOutput(lines []geom.Line2D) []LineInput {
	out := make([]LineInput, len(lines))
	for i, l := range lines {
		out[i] = LineInput{Q: l.Q, C: l.C}
	}
	return out
}
