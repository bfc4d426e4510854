package cellmodel

import (
	"fmt"
	"io"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/robocell/celloptimizer/activity"
	"github.com/robocell/celloptimizer/cellerrors"
	"github.com/robocell/celloptimizer/geom"
)

// envelopeTolerance is the slack allowed when deciding which envelope
// lines were "active" (binding) at the optimum.
const envelopeTolerance = 1e-4

// ActivityRecord is one solved activity's extracted schedule.
type ActivityRecord struct {
	ID             string
	Kind           activity.Kind
	Start          float64
	Duration       float64
	End            float64
	Energy         float64
	ActiveEnvelope []geom.Line2D
}

// RobotSolution is one robot's ordered schedule.
type RobotSolution struct {
	RobotID    string
	Activities []ActivityRecord
}

// Solution is a Builder.Solve's extracted, structured result.
type Solution struct {
	CycleTime float64
	Robots    []RobotSolution
}

// TotalEnergy sums energy across every activity in the solution.
func (s *Solution) TotalEnergy() float64 {
	var total float64
	for _, r := range s.Robots {
		for _, a := range r.Activities {
			total += a.Energy
		}
	}
	return total
}

// ResultCycleTime sums the durations of the first robot's activities, as
// a post-solve sanity check against CycleTime; it is never fed back into
// the model (see original_source/ilp/model.py: result_cycle_time).
func (s *Solution) ResultCycleTime() float64 {
	if len(s.Robots) == 0 {
		return 0
	}
	var total float64
	for _, a := range s.Robots[0].Activities {
		total += a.Duration
	}
	return total
}

// Dump renders the solution as an ASCII table, one row per activity,
// for human inspection.
func (s *Solution) Dump(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Robot", "Activity", "Kind", "t_s", "d", "t_e", "E"})
	for _, r := range s.Robots {
		for _, a := range r.Activities {
			t.AppendRow(table.Row{r.RobotID, a.ID, a.Kind, fmt.Sprintf("%.3f", a.Start),
				fmt.Sprintf("%.3f", a.Duration), fmt.Sprintf("%.3f", a.End), fmt.Sprintf("%.3f", a.Energy)})
		}
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "total E", fmt.Sprintf("%.3f", s.TotalEnergy())})
	t.Render()
}

func (b *Builder) extractSolution() (*Solution, error) {
	sol := &Solution{CycleTime: b.problem.CycleTime}
	for _, r := range b.problem.Robots {
		rs := RobotSolution{RobotID: r.ID}
		for _, a := range r.Activities() {
			start, err := b.backend.Value(b.startVar[a.ID])
			if err != nil {
				return nil, cellerrors.Wrap(err, cellerrors.SolverError, a.ID, "reading start time")
			}
			dur, err := b.backend.Value(b.durVar[a.ID])
			if err != nil {
				return nil, cellerrors.Wrap(err, cellerrors.SolverError, a.ID, "reading duration")
			}
			energy, err := b.backend.Value(b.energyVar[a.ID])
			if err != nil {
				return nil, cellerrors.Wrap(err, cellerrors.SolverError, a.ID, "reading energy")
			}

			rec := ActivityRecord{
				ID:       a.ID,
				Kind:     a.Kind,
				Start:    start,
				Duration: dur,
				End:      start + dur,
				Energy:   energy,
			}
			for _, line := range a.Envelope {
				if math.Abs(line.Q*dur+line.C-energy) <= envelopeTolerance {
					rec.ActiveEnvelope = append(rec.ActiveEnvelope, line)
				}
			}
			rs.Activities = append(rs.Activities, rec)
		}
		sol.Robots = append(sol.Robots, rs)
	}
	return sol, nil
}
