// Package simplex implements the reference solver.Backend shipped with
// this module: a two-phase primal simplex LP relaxation (this file)
// wrapped in a branch-and-bound search over the binary collision
// indicators (see branch.go). Any other backend satisfying solver.Backend
// is equally acceptable; this one exists so the module is runnable
// standalone, grounded on gonum.org/v1/gonum/mat for the tableau's
// linear algebra.
package simplex

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const tol = 1e-9

// tableau is a dense simplex tableau: rows 0..n-1 hold the constraint
// rows, row n holds the objective (reduced costs), and the last column
// holds the right-hand side / current objective value.
type tableau struct {
	numRows int
	numCols int
	data    *mat.Dense
	basis   []int
}

func newTableau(numRows, numCols int) *tableau {
	return &tableau{
		numRows: numRows,
		numCols: numCols,
		data:    mat.NewDense(numRows+1, numCols+1, nil),
		basis:   make([]int, numRows),
	}
}

func (t *tableau) get(r, c int) float64    { return t.data.At(r, c) }
func (t *tableau) set(r, c int, v float64) { t.data.Set(r, c, v) }

func (t *tableau) rhsCol() int { return t.numCols }
func (t *tableau) objRow() int { return t.numRows }

// pivot performs a Gauss-Jordan pivot on (pr, pc): normalizes pr so the
// pivot entry is 1, then eliminates column pc from every other row
// (including the objective row).
func (t *tableau) pivot(pr, pc int) {
	pivotVal := t.get(pr, pc)
	for c := 0; c <= t.numCols; c++ {
		t.set(pr, c, t.get(pr, c)/pivotVal)
	}
	for r := 0; r <= t.numRows; r++ {
		if r == pr {
			continue
		}
		factor := t.get(r, pc)
		if factor == 0 {
			continue
		}
		for c := 0; c <= t.numCols; c++ {
			t.set(r, c, t.get(r, c)-factor*t.get(pr, c))
		}
	}
	t.basis[pr] = pc
}

// run drives the tableau to optimality using Bland's rule (always enter
// the lowest-index improving column, leave via the tying row whose basic
// variable has the lowest index), giving both anti-cycling and deterministic tie-breaking across
// repeated solves. blocked columns are never considered for entry, used
// in phase 2 to keep artificial variables pinned at their (zero) value.
// Returns true if the LP is unbounded in this direction.
func (t *tableau) run(blocked map[int]bool, maxIter int) bool {
	for iter := 0; iter < maxIter; iter++ {
		enter := -1
		for c := 0; c < t.numCols; c++ {
			if blocked[c] {
				continue
			}
			if t.get(t.objRow(), c) < -tol {
				enter = c
				break
			}
		}
		if enter == -1 {
			return false
		}

		leave := -1
		best := math.Inf(1)
		for r := 0; r < t.numRows; r++ {
			a := t.get(r, enter)
			if a <= tol {
				continue
			}
			ratio := t.get(r, t.rhsCol()) / a
			if ratio < best-tol {
				best = ratio
				leave = r
			} else if ratio < best+tol && (leave == -1 || t.basis[r] < t.basis[leave]) {
				best = math.Min(best, ratio)
				leave = r
			}
		}
		if leave == -1 {
			return true // unbounded
		}
		t.pivot(leave, enter)
	}
	return false
}

// objectiveValue returns the current value of whatever cost row was
// loaded (phase 1's artificial-sum, or phase 2's true objective).
func (t *tableau) objectiveValue() float64 { return -t.get(t.objRow(), t.rhsCol()) }

// loadObjective overwrites the objective row with cost (length numCols)
// reduced against the current basis, so that basic columns read 0 and
// the rhs entry holds -Z for the current basic feasible solution.
func (t *tableau) loadObjective(cost []float64) {
	row := make([]float64, t.numCols+1)
	copy(row, cost)
	for i := 0; i < t.numRows; i++ {
		cb := cost[t.basis[i]]
		if cb == 0 {
			continue
		}
		for c := 0; c <= t.numCols; c++ {
			row[c] -= cb * t.get(i, c)
		}
	}
	for c := 0; c <= t.numCols; c++ {
		t.set(t.objRow(), c, row[c])
	}
}
