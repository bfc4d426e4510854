package simplex

import (
	"context"
	"math"
	"time"

	"github.com/robocell/celloptimizer/solver"
)

const integralTol = 1e-6

// bnbNode is one branch-and-bound subproblem: per-variable bounds in
// original (unshifted) coordinates.
type bnbNode struct {
	lower, upper []float64
}

type searcher struct {
	n           int
	rows        [][]float64
	ops         []solver.Op
	rhs         []float64
	objective   []float64
	binaryIdx   []int
	ctx         context.Context
	deadline    time.Time
	hasDeadline bool
}

// solve runs branch-and-bound starting from node, returning the incumbent
// solver.Status and, on Optimal, the variable values in original
// coordinates.
func (s *searcher) solve(node bnbNode) (solver.Status, []float64) {
	if s.ctx.Err() != nil {
		return solver.Interrupted, nil
	}
	if s.hasDeadline && time.Now().After(s.deadline) {
		return solver.TimedOut, nil
	}

	rows, ops, rhs := s.shift(node)
	status, z, _ := solveLP(s.objective, rows, ops, rhs)
	switch status {
	case lpInfeasible:
		return solver.Infeasible, nil
	case lpUnbounded:
		return solver.Unbounded, nil
	}

	x := make([]float64, s.n)
	for i := 0; i < s.n; i++ {
		x[i] = z[i] + node.lower[i]
	}

	fracIdx := -1
	for _, idx := range s.binaryIdx {
		if node.lower[idx] == node.upper[idx] {
			continue // already fixed by an ancestor branch
		}
		frac := x[idx] - math.Floor(x[idx])
		if frac > integralTol && frac < 1-integralTol {
			fracIdx = idx
			break
		}
	}

	if fracIdx == -1 {
		for _, idx := range s.binaryIdx {
			if x[idx] < 0.5 {
				x[idx] = 0
			} else {
				x[idx] = 1
			}
		}
		return solver.Optimal, x
	}

	zeroNode := bnbNode{lower: append([]float64(nil), node.lower...), upper: append([]float64(nil), node.upper...)}
	zeroNode.lower[fracIdx], zeroNode.upper[fracIdx] = 0, 0
	oneNode := bnbNode{lower: append([]float64(nil), node.lower...), upper: append([]float64(nil), node.upper...)}
	oneNode.lower[fracIdx], oneNode.upper[fracIdx] = 1, 1

	statusZero, xZero := s.solve(zeroNode)
	if statusZero == solver.Interrupted || statusZero == solver.TimedOut {
		return statusZero, nil
	}
	statusOne, xOne := s.solve(oneNode)
	if statusOne == solver.Interrupted || statusOne == solver.TimedOut {
		return statusOne, nil
	}

	if statusZero == solver.Optimal && statusOne == solver.Optimal {
		if s.objValue(xZero) <= s.objValue(xOne) {
			return solver.Optimal, xZero
		}
		return solver.Optimal, xOne
	}
	if statusZero == solver.Optimal {
		return solver.Optimal, xZero
	}
	if statusOne == solver.Optimal {
		return solver.Optimal, xOne
	}
	if statusZero == solver.Unbounded || statusOne == solver.Unbounded {
		return solver.Unbounded, nil
	}
	return solver.Infeasible, nil
}

func (s *searcher) objValue(x []float64) float64 {
	var v float64
	for i, c := range s.objective {
		v += c * x[i]
	}
	return v
}

// shift converts the problem's rows/rhs into the subproblem's shifted
// coordinates (z_i = x_i - lower[i] >= 0), appending an extra row for
// every variable with a finite upper bound.
func (s *searcher) shift(node bnbNode) ([][]float64, []solver.Op, []float64) {
	rows := make([][]float64, len(s.rows))
	ops := append([]solver.Op(nil), s.ops...)
	rhs := make([]float64, len(s.rhs))
	for i := range s.rows {
		rows[i] = append([]float64(nil), s.rows[i]...)
		adjust := 0.0
		for j, coef := range rows[i] {
			adjust += coef * node.lower[j]
		}
		rhs[i] = s.rhs[i] - adjust
	}
	for j := 0; j < s.n; j++ {
		if math.IsInf(node.upper[j], 1) {
			continue
		}
		row := make([]float64, s.n)
		row[j] = 1
		rows = append(rows, row)
		rhs = append(rhs, node.upper[j]-node.lower[j])
		ops = append(ops, solver.LE)
	}
	return rows, ops, rhs
}
