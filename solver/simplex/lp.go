package simplex

import "github.com/robocell/celloptimizer/solver"

type lpStatus int

const (
	lpOptimal lpStatus = iota
	lpInfeasible
	lpUnbounded
)

const maxSimplexIter = 10000

// solveLP minimizes c^T x subject to A x {op} b, x >= 0, via a two-phase
// primal simplex. len(c) == number of columns of A == len(A[i]) for
// every row; len(ops) == len(b) == len(A).
func solveLP(c []float64, a [][]float64, ops []solver.Op, b []float64) (lpStatus, []float64, float64) {
	n := len(c)
	m := len(a)

	rows := make([][]float64, m)
	rhs := make([]float64, m)
	rowOps := make([]solver.Op, m)
	copy(rhs, b)
	copy(rowOps, ops)
	for i := range a {
		rows[i] = append([]float64(nil), a[i]...)
	}

	// Normalize so every rhs is nonnegative, flipping the inequality
	// direction (but not EQ) when a row's rhs is negative.
	for i := range rows {
		if rhs[i] < 0 {
			rhs[i] = -rhs[i]
			for j := range rows[i] {
				rows[i][j] = -rows[i][j]
			}
			switch rowOps[i] {
			case solver.LE:
				rowOps[i] = solver.GE
			case solver.GE:
				rowOps[i] = solver.LE
			}
		}
	}

	slackCol := make([]int, m)
	surplusCol := make([]int, m)
	artCol := make([]int, m)
	for i := range slackCol {
		slackCol[i], surplusCol[i], artCol[i] = -1, -1, -1
	}

	next := n
	for i, op := range rowOps {
		switch op {
		case solver.LE:
			slackCol[i] = next
			next++
		case solver.GE:
			surplusCol[i] = next
			next++
			artCol[i] = next
			next++
		case solver.EQ:
			artCol[i] = next
			next++
		}
	}
	totalCols := next

	t := newTableau(m, totalCols)
	for i := range rows {
		for j, v := range rows[i] {
			t.set(i, j, v)
		}
		if slackCol[i] >= 0 {
			t.set(i, slackCol[i], 1)
			t.basis[i] = slackCol[i]
		}
		if surplusCol[i] >= 0 {
			t.set(i, surplusCol[i], -1)
		}
		if artCol[i] >= 0 {
			t.set(i, artCol[i], 1)
			t.basis[i] = artCol[i]
		}
		t.set(i, t.rhsCol(), rhs[i])
	}

	hasArtificial := false
	blockedInPhase2 := map[int]bool{}
	for i := range artCol {
		if artCol[i] >= 0 {
			hasArtificial = true
			blockedInPhase2[artCol[i]] = true
		}
	}

	if hasArtificial {
		phase1Cost := make([]float64, totalCols)
		for col := range blockedInPhase2 {
			phase1Cost[col] = 1
		}
		t.loadObjective(phase1Cost)
		t.run(nil, maxSimplexIter)
		if t.objectiveValue() > 1e-6 {
			return lpInfeasible, nil, 0
		}

		// Drive any artificial variable still basic (necessarily at 0,
		// degenerate) out of the basis where possible, so phase 2 never
		// has to reason about a basic artificial column.
		for r := 0; r < m; r++ {
			if !blockedInPhase2[t.basis[r]] {
				continue
			}
			for c := 0; c < n; c++ {
				if blockedInPhase2[c] {
					continue
				}
				if t.get(r, c) > tol || t.get(r, c) < -tol {
					t.pivot(r, c)
					break
				}
			}
		}
	}

	phase2Cost := make([]float64, totalCols)
	copy(phase2Cost, c)
	t.loadObjective(phase2Cost)
	if unbounded := t.run(blockedInPhase2, maxSimplexIter); unbounded {
		return lpUnbounded, nil, 0
	}

	x := make([]float64, n)
	for r := 0; r < m; r++ {
		if t.basis[r] < n {
			x[t.basis[r]] = t.get(r, t.rhsCol())
		}
	}
	return lpOptimal, x, t.objectiveValue()
}
