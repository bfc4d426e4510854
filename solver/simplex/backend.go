package simplex

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/robocell/celloptimizer/solver"
)

type variable struct {
	lowerBound float64
	kind       solver.VarKind
	name       string
}

type constraint struct {
	expr solver.LinearExpr
	op   solver.Op
	rhs  float64
}

// Backend is the reference solver.Backend shipped with this module. It
// is not safe for concurrent use.
type Backend struct {
	vars        []variable
	constraints []constraint
	objective   solver.LinearExpr
	values      []float64
	solved      bool
}

// New returns an empty Backend ready to accept variables and constraints.
func New() *Backend { return &Backend{} }

func (b *Backend) AddVariable(lowerBound float64, kind solver.VarKind, name string) (solver.VarHandle, error) {
	b.vars = append(b.vars, variable{lowerBound: lowerBound, kind: kind, name: name})
	return solver.VarHandle(len(b.vars) - 1), nil
}

func (b *Backend) AddLinearConstraint(expr solver.LinearExpr, op solver.Op, rhs float64) error {
	b.constraints = append(b.constraints, constraint{expr: expr, op: op, rhs: rhs})
	return nil
}

func (b *Backend) SetObjectiveMinimize(expr solver.LinearExpr) error {
	b.objective = expr
	return nil
}

func (b *Backend) Value(h solver.VarHandle) (float64, error) {
	if !b.solved {
		return 0, errors.New("simplex: Value called before a successful Solve")
	}
	idx := int(h)
	if idx < 0 || idx >= len(b.values) {
		return 0, errors.Errorf("simplex: invalid variable handle %d", idx)
	}
	return b.values[idx], nil
}

func (b *Backend) Solve(ctx context.Context, opts solver.Options) (solver.Status, error) {
	n := len(b.vars)

	rows := make([][]float64, len(b.constraints))
	ops := make([]solver.Op, len(b.constraints))
	rhs := make([]float64, len(b.constraints))
	for i, c := range b.constraints {
		row := make([]float64, n)
		for _, term := range c.expr.Terms {
			row[int(term.Var)] += term.Coef
		}
		rows[i] = row
		ops[i] = c.op
		rhs[i] = c.rhs
	}

	objective := make([]float64, n)
	for _, term := range b.objective.Terms {
		objective[int(term.Var)] += term.Coef
	}

	lower := make([]float64, n)
	upper := make([]float64, n)
	var binaryIdx []int
	for i, v := range b.vars {
		lower[i] = v.lowerBound
		if v.kind == solver.Binary {
			upper[i] = 1
			binaryIdx = append(binaryIdx, i)
		} else {
			upper[i] = math.Inf(1)
		}
	}

	s := &searcher{
		n:         n,
		rows:      rows,
		ops:       ops,
		rhs:       rhs,
		objective: objective,
		binaryIdx: binaryIdx,
		ctx:       ctx,
	}
	if opts.TimeLimit > 0 {
		s.hasDeadline = true
		s.deadline = time.Now().Add(opts.TimeLimit)
	}

	status, x := s.solve(bnbNode{lower: lower, upper: upper})
	if status != solver.Optimal {
		b.solved = false
		return status, nil
	}

	b.values = x
	b.solved = true
	return solver.Optimal, nil
}
