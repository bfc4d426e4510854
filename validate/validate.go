// Package validate enforces the shape and semantic invariants required
// of a Problem before it is safe to hand to the MILP builder.
package validate

import (
	"math"

	"go.uber.org/multierr"

	"github.com/robocell/celloptimizer/activity"
	"github.com/robocell/celloptimizer/cellerrors"
)

// Validate checks every structural and semantic invariant and returns
// every violation found, combined via multierr, rather than stopping at
// the first one — useful to a collaborator (e.g. a GUI) that wants to
// show a user the full list of problems with their input in one pass. A
// cellmodel.Builder.Load, by contrast, surfaces only the first violation
// from this list (see cellmodel.Builder.Load).
func Validate(p activity.Problem) error {
	var errs []error

	if p.CycleTime <= 0 {
		errs = append(errs, cellerrors.New(cellerrors.InvalidInput, "", "cycle_time must be positive"))
	}

	seenIDs := map[string]string{} // id -> robot id, named in the duplicate-id message
	for _, r := range p.Robots {
		if len(r.Activities()) == 0 {
			errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, "", "robot %q has no activities", r.ID))
			continue
		}
		for _, a := range r.Activities() {
			if other, dup := seenIDs[a.ID]; dup {
				errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, a.ID,
					"activity id is not globally unique (also used on robot %q)", other))
			} else {
				seenIDs[a.ID] = r.ID
			}
			errs = append(errs, validateActivity(a, p.CycleTime)...)
		}
	}

	for _, off := range p.Offsets {
		_, _, _, aOK := p.FindActivity(off.A)
		_, _, _, bOK := p.FindActivity(off.B)
		if !aOK {
			errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, off.A, "time offset references unknown activity"))
		}
		if !bOK {
			errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, off.B, "time offset references unknown activity"))
		}
		if aOK && bOK && off.MinOffset != nil && off.MaxOffset != nil && *off.MinOffset > *off.MaxOffset {
			errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, off.A,
				"time offset min_offset %v exceeds max_offset %v", *off.MinOffset, *off.MaxOffset))
		}
	}

	for _, c := range p.Collisions {
		a, aRobot, _, aOK := p.FindActivity(c.A)
		b, bRobot, _, bOK := p.FindActivity(c.B)
		if !aOK {
			errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, c.A, "collision references unknown activity"))
			continue
		}
		if !bOK {
			errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, c.B, "collision references unknown activity"))
			continue
		}
		if aRobot == bRobot {
			errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, c.A,
				"collision activities %q and %q must be on distinct robots", c.A, c.B))
		}
		if a.IsFirst() && b.IsFirst() {
			errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, c.A,
				"collision cannot pair two robots' first activities (%q, %q): no predecessor to skip", c.A, c.B))
		}
		if a.IsLast() && b.IsLast() {
			errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, c.A,
				"collision cannot pair two robots' last activities (%q, %q): no successor to skip", c.A, c.B))
		}
	}

	return multierr.Combine(errs...)
}

func validateActivity(a activity.Activity, cycleTime float64) []error {
	var errs []error

	switch a.Kind {
	case activity.Work:
		if a.Work.FixedDuration <= 0 || a.Work.FixedDuration > cycleTime {
			errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, a.ID,
				"work duration %v must be in (0, %v]", a.Work.FixedDuration, cycleTime))
		}
		if a.Work.FixedStart != nil && a.Work.FixedEnd != nil {
			if math.Abs(*a.Work.FixedStart+a.Work.FixedDuration-*a.Work.FixedEnd) > 1e-6 {
				errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, a.ID,
					"fixed_start_time + duration must equal fixed_end_time"))
			}
		}
	case activity.Movement:
		if a.MoveP.DMin > a.MoveP.DMax {
			errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, a.ID,
				"movement min_duration %v exceeds max_duration %v", a.MoveP.DMin, a.MoveP.DMax))
		}
		if !a.MoveP.Start.IsFinite() || !a.MoveP.End.IsFinite() {
			errs = append(errs, cellerrors.New(cellerrors.InvalidGeometry, a.ID, "movement start/end must be finite"))
		}
	case activity.Idle:
		if a.IdleP.DMin > a.IdleP.DMax {
			errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, a.ID,
				"idle min_duration %v exceeds max_duration %v", a.IdleP.DMin, a.IdleP.DMax))
		}
		if !a.IdleP.Point.IsFinite() {
			errs = append(errs, cellerrors.New(cellerrors.InvalidGeometry, a.ID, "idle point must be finite"))
		}
	}

	errs = append(errs, validatePinned(a, cycleTime)...)
	return errs
}

func validatePinned(a activity.Activity, cycleTime float64) []error {
	var errs []error
	if s := a.PinnedStart(); s != nil {
		if *s < 0 || *s > cycleTime {
			errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, a.ID, "pinned start %v out of [0, %v]", *s, cycleTime))
		}
	}
	if e := a.PinnedEnd(); e != nil {
		if *e < 0 || *e > cycleTime {
			errs = append(errs, cellerrors.Newf(cellerrors.InvalidInput, a.ID, "pinned end %v out of [0, %v]", *e, cycleTime))
		}
	}
	return errs
}
