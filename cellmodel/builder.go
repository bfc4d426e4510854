// Package cellmodel builds a solver.Backend-agnostic MILP from an
// activity.Problem and drives it to a solution.
package cellmodel

import (
	"context"

	"go.uber.org/multierr"

	"github.com/robocell/celloptimizer/activity"
	"github.com/robocell/celloptimizer/cellerrors"
	"github.com/robocell/celloptimizer/logging"
	"github.com/robocell/celloptimizer/solver"
	"github.com/robocell/celloptimizer/validate"
)

type builderState int

const (
	stateEmpty builderState = iota
	stateLoaded
	stateObjectiveSet
	stateSolved
	stateFailed
)

// Builder assembles an activity.Problem into a backend's variable and
// constraint set. A Builder loads at most once; re-solving a different
// Problem requires a new Builder.
type Builder struct {
	backend solver.Backend
	log     logging.Logger
	state   builderState
	problem activity.Problem

	startVar  map[string]solver.VarHandle
	durVar    map[string]solver.VarHandle
	energyVar map[string]solver.VarHandle
}

// NewBuilder wires a Builder to the given backend and logger.
func NewBuilder(backend solver.Backend, log logging.Logger) *Builder {
	return &Builder{
		backend:   backend,
		log:       log,
		startVar:  map[string]solver.VarHandle{},
		durVar:    map[string]solver.VarHandle{},
		energyVar: map[string]solver.VarHandle{},
	}
}

// Load validates p and emits every required variable and constraint, in
// declared order. It surfaces only the first validation violation;
// callers wanting every violation should call validate.Validate
// directly first.
func (b *Builder) Load(p activity.Problem) error {
	if b.state != stateEmpty {
		return cellerrors.New(cellerrors.InvalidInput, "", "builder already loaded; use a new Builder to load another problem")
	}

	if err := validate.Validate(p); err != nil {
		violations := multierr.Errors(err)
		b.state = stateFailed
		return violations[0]
	}

	b.problem = p
	if err := b.declareVariables(p); err != nil {
		b.state = stateFailed
		return err
	}
	if err := b.emitConstraints(p); err != nil {
		b.state = stateFailed
		return err
	}

	objective := solver.LinearExpr{}
	for _, r := range p.Robots {
		for _, a := range r.Activities() {
			objective = objective.Plus(b.energyVar[a.ID], 1)
		}
	}
	if err := b.backend.SetObjectiveMinimize(objective); err != nil {
		b.state = stateFailed
		return cellerrors.Wrap(err, cellerrors.SolverError, "", "setting objective")
	}

	b.state = stateObjectiveSet
	b.log.Infow("model loaded", "robots", len(p.Robots), "offsets", len(p.Offsets), "collisions", len(p.Collisions))
	return nil
}

func (b *Builder) declareVariables(p activity.Problem) error {
	twoT := 2 * p.CycleTime
	for _, r := range p.Robots {
		for _, a := range r.Activities() {
			start, err := b.backend.AddVariable(0, solver.Continuous, a.ID+"_t_s")
			if err != nil {
				return cellerrors.Wrap(err, cellerrors.SolverError, a.ID, "adding start-time variable")
			}
			if err := b.backend.AddLinearConstraint(solver.NewExpr(solver.Term{Var: start, Coef: 1}), solver.LE, twoT); err != nil {
				return cellerrors.Wrap(err, cellerrors.SolverError, a.ID, "bounding start time by 2T")
			}
			b.startVar[a.ID] = start

			dur, err := b.backend.AddVariable(0, solver.Continuous, a.ID+"_d")
			if err != nil {
				return cellerrors.Wrap(err, cellerrors.SolverError, a.ID, "adding duration variable")
			}
			b.durVar[a.ID] = dur

			energy, err := b.backend.AddVariable(0, solver.Continuous, a.ID+"_E")
			if err != nil {
				return cellerrors.Wrap(err, cellerrors.SolverError, a.ID, "adding energy variable")
			}
			b.energyVar[a.ID] = energy
		}
	}
	return nil
}

func (b *Builder) emitConstraints(p activity.Problem) error {
	for _, r := range p.Robots {
		if err := b.emitSequencing(r, p.CycleTime); err != nil {
			return err
		}
		for _, a := range r.Activities() {
			if err := b.emitDurationBounds(a); err != nil {
				return err
			}
			if err := b.emitPins(a); err != nil {
				return err
			}
			if err := b.emitEnvelope(a); err != nil {
				return err
			}
		}
	}
	for _, off := range p.Offsets {
		if err := b.emitOffset(off); err != nil {
			return err
		}
	}
	for _, c := range p.Collisions {
		if err := b.emitCollision(c, p); err != nil {
			return err
		}
	}
	return nil
}

// emitSequencing wires intra-robot sequencing: each activity's start
// equals its predecessor's start plus duration, and the last activity's
// end closes the cycle at cycleTime.
func (b *Builder) emitSequencing(r activity.Robot, cycleTime float64) error {
	acts := r.Activities()
	if len(acts) == 0 {
		return nil
	}

	first := acts[0]
	if err := b.addConstraint(solver.NewExpr(solver.Term{Var: b.startVar[first.ID], Coef: 1}), solver.EQ, 0, first.ID, "first activity start pinned to 0"); err != nil {
		return err
	}

	for i := 0; i < len(acts)-1; i++ {
		cur, next := acts[i], acts[i+1]
		expr := solver.NewExpr(
			solver.Term{Var: b.startVar[cur.ID], Coef: 1},
			solver.Term{Var: b.durVar[cur.ID], Coef: 1},
			solver.Term{Var: b.startVar[next.ID], Coef: -1},
		)
		if err := b.addConstraint(expr, solver.EQ, 0, cur.ID, "sequencing into successor"); err != nil {
			return err
		}
	}

	last := acts[len(acts)-1]
	expr := solver.NewExpr(solver.Term{Var: b.startVar[last.ID], Coef: 1}, solver.Term{Var: b.durVar[last.ID], Coef: 1})
	return b.addConstraint(expr, solver.EQ, cycleTime, last.ID, "cycle closure")
}

// emitDurationBounds wires per-activity-kind duration bounds.
func (b *Builder) emitDurationBounds(a activity.Activity) error {
	dur := b.durVar[a.ID]
	switch a.Kind {
	case activity.Work:
		return b.addConstraint(solver.NewExpr(solver.Term{Var: dur, Coef: 1}), solver.EQ, a.Work.FixedDuration, a.ID, "fixed work duration")
	default:
		dMin, dMax := a.DurationBounds()
		if err := b.addConstraint(solver.NewExpr(solver.Term{Var: dur, Coef: 1}), solver.GE, dMin, a.ID, "duration lower bound"); err != nil {
			return err
		}
		return b.addConstraint(solver.NewExpr(solver.Term{Var: dur, Coef: 1}), solver.LE, dMax, a.ID, "duration upper bound")
	}
}

// emitPins wires fixed start/end times.
func (b *Builder) emitPins(a activity.Activity) error {
	start := b.startVar[a.ID]
	if s := a.PinnedStart(); s != nil {
		if err := b.addConstraint(solver.NewExpr(solver.Term{Var: start, Coef: 1}), solver.EQ, *s, a.ID, "pinned start time"); err != nil {
			return err
		}
	}
	if e := a.PinnedEnd(); e != nil {
		expr := solver.NewExpr(solver.Term{Var: start, Coef: 1}, solver.Term{Var: b.durVar[a.ID], Coef: 1})
		if err := b.addConstraint(expr, solver.EQ, *e, a.ID, "pinned end time"); err != nil {
			return err
		}
	}
	return nil
}

// emitEnvelope wires the piecewise-linear energy lower envelope.
func (b *Builder) emitEnvelope(a activity.Activity) error {
	energy := b.energyVar[a.ID]
	if a.Kind == activity.Work {
		return b.addConstraint(solver.NewExpr(solver.Term{Var: energy, Coef: 1}), solver.EQ, 0, a.ID, "work activities contribute zero energy")
	}
	dur := b.durVar[a.ID]
	for i, line := range a.Envelope {
		expr := solver.NewExpr(solver.Term{Var: energy, Coef: 1}, solver.Term{Var: dur, Coef: -line.Q})
		if err := b.addConstraint(expr, solver.GE, line.C, a.ID, "energy envelope line"); err != nil {
			return cellerrors.Wrapf(err, cellerrors.SolverError, a.ID, "emitting envelope line %d", i)
		}
	}
	return nil
}

// emitOffset wires a relative-start-time constraint.
func (b *Builder) emitOffset(off activity.TimeOffset) error {
	sa, sb := b.startVar[off.A], b.startVar[off.B]
	if off.MinOffset != nil {
		// t_s(a) + min <= t_s(b)  <=>  t_s(b) - t_s(a) >= min
		expr := solver.NewExpr(solver.Term{Var: sb, Coef: 1}, solver.Term{Var: sa, Coef: -1})
		if err := b.addConstraint(expr, solver.GE, *off.MinOffset, off.A, "min time offset"); err != nil {
			return err
		}
	}
	if off.MaxOffset != nil {
		// t_s(a) + max >= t_s(b)  <=>  t_s(b) - t_s(a) <= max
		expr := solver.NewExpr(solver.Term{Var: sb, Coef: 1}, solver.Term{Var: sa, Coef: -1})
		if err := b.addConstraint(expr, solver.LE, *off.MaxOffset, off.A, "max time offset"); err != nil {
			return err
		}
	}
	return nil
}

// emitCollision wires the big-M collision-exclusion disjunction.
func (b *Builder) emitCollision(c activity.Collision, p activity.Problem) error {
	a, _, _, _ := p.FindActivity(c.A)
	bAct, bRobotIdx, bActIdx, _ := p.FindActivity(c.B)

	x, err := b.backend.AddVariable(0, solver.Binary, c.A+"_"+c.B+"_x")
	if err != nil {
		return cellerrors.Wrap(err, cellerrors.SolverError, c.A, "adding collision indicator")
	}

	twoT := 2 * p.CycleTime
	bRobot := p.Robots[bRobotIdx]

	first := solver.NewExpr(
		solver.Term{Var: b.startVar[a.ID], Coef: 1},
		solver.Term{Var: b.durVar[a.ID], Coef: 1},
		solver.Term{Var: b.startVar[bAct.ID], Coef: -1},
		solver.Term{Var: x, Coef: twoT},
	)
	if prev, ok := bRobot.Prev(bActIdx); ok && c.PrevSkipRatio != 0 {
		first.Terms = append(first.Terms, solver.Term{Var: b.durVar[prev.ID], Coef: c.PrevSkipRatio})
	}
	if err := b.addConstraint(first, solver.LE, twoT, c.A, "collision exclusion (a before b)"); err != nil {
		return err
	}

	second := solver.NewExpr(
		solver.Term{Var: b.startVar[bAct.ID], Coef: 1},
		solver.Term{Var: b.durVar[bAct.ID], Coef: 1},
		solver.Term{Var: b.startVar[a.ID], Coef: -1},
		solver.Term{Var: x, Coef: -twoT},
	)
	if next, ok := bRobot.Next(bActIdx); ok && c.NextSkipRatio != 0 {
		second.Terms = append(second.Terms, solver.Term{Var: b.durVar[next.ID], Coef: c.NextSkipRatio})
	}
	return b.addConstraint(second, solver.LE, 0, c.B, "collision exclusion (b before a)")
}

func (b *Builder) addConstraint(expr solver.LinearExpr, op solver.Op, rhs float64, activityID, what string) error {
	if err := b.backend.AddLinearConstraint(expr, op, rhs); err != nil {
		return cellerrors.Wrap(err, cellerrors.SolverError, activityID, what)
	}
	b.log.Debugw("emitted constraint", "activity", activityID, "what", what)
	return nil
}

// Solve invokes the backend and extracts a Solution on Optimal. Any
// other backend status surfaces as the matching cellerrors.Kind.
func (b *Builder) Solve(ctx context.Context, opts solver.Options) (*Solution, error) {
	if b.state != stateObjectiveSet {
		return nil, cellerrors.New(cellerrors.InvalidInput, "", "Solve called before a successful Load")
	}

	status, err := b.backend.Solve(ctx, opts)
	if err != nil {
		b.state = stateFailed
		return nil, cellerrors.Wrap(err, cellerrors.SolverError, "", "backend solve failed")
	}

	if status != solver.Optimal {
		b.state = stateFailed
		return nil, statusToError(status)
	}

	sol, err := b.extractSolution()
	if err != nil {
		b.state = stateFailed
		return nil, err
	}
	b.state = stateSolved
	b.log.Infow("solved", "cycle_time", b.problem.CycleTime, "total_energy", sol.TotalEnergy())
	return sol, nil
}

func statusToError(status solver.Status) error {
	switch status {
	case solver.Infeasible:
		return cellerrors.New(cellerrors.Infeasible, "", "no feasible schedule satisfies all constraints")
	case solver.Unbounded:
		return cellerrors.New(cellerrors.Unbounded, "", "objective is unbounded (this should not happen with energy >= 0)")
	case solver.TimedOut:
		return cellerrors.New(cellerrors.TimedOut, "", "solver exceeded its time limit")
	case solver.Interrupted:
		return cellerrors.New(cellerrors.Interrupted, "", "solver was cancelled")
	default:
		return cellerrors.New(cellerrors.SolverError, "", "solver returned a non-optimal status: "+status.String())
	}
}
