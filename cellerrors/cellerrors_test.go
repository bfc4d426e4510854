package cellerrors

import (
	"errors"
	"testing"

	vtest "go.viam.com/test"
)

func TestIsMatchesKind(t *testing.T) {
	err := New(Infeasible, "m1", "no feasible schedule")
	vtest.That(t, Is(err, Infeasible), vtest.ShouldBeTrue)
	vtest.That(t, Is(err, Unbounded), vtest.ShouldBeFalse)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("backend exploded")
	err := Wrap(cause, SolverError, "", "solve failed")
	vtest.That(t, Is(err, SolverError), vtest.ShouldBeTrue)

	var ce *CellError
	vtest.That(t, errors.As(err, &ce), vtest.ShouldBeTrue)
	vtest.That(t, errors.Unwrap(ce) != nil, vtest.ShouldBeTrue)
}

func TestErrorMessageIncludesActivityID(t *testing.T) {
	err := New(DegenerateMovement, "m7", "zero-length segment")
	vtest.That(t, err.Error(), vtest.ShouldContainSubstring, "m7")
	vtest.That(t, err.Error(), vtest.ShouldContainSubstring, "DegenerateMovement")
}

func TestWrapNilReturnsNil(t *testing.T) {
	vtest.That(t, Wrap(nil, SolverError, "", "unused"), vtest.ShouldBeNil)
}
