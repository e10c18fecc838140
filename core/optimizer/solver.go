package optimizer

import (
	"errors"

	"gonum.org/v1/gonum/optimize/convex/lp"
)

const simplexTol = 1e-7

// solveProblem converts the general-form LP to standard form and runs the
// simplex algorithm. The returned vector is mapped back to the builder's
// variable space: variables and constraints keep exactly the indexing the
// builder produced.
func solveProblem(p *problem) ([]float64, float64, error) {
	cStd, aStd, bStd := lp.Convert(p.c, p.g, p.h, p.a, p.b)
	opt, xStd, err := lp.Simplex(cStd, aStd, bStd, simplexTol, nil)
	if err != nil {
		return nil, 0, err
	}
	// Convert splits each free variable into a positive and a negative part,
	// laid out as [x+, x-, slack]. Recover x = x+ - x-.
	nv := len(p.c)
	x := make([]float64, nv)
	for i := 0; i < nv; i++ {
		x[i] = xStd[i] - xStd[nv+i]
	}
	return x, opt, nil
}

// lpSolve points to the function used to solve a window's LP. It can be
// overridden in tests to simulate solver failures.
var lpSolve = solveProblem

// solve runs the LP and maps solver errors onto the window error taxonomy.
func solve(w Window, p *problem) ([]float64, float64, error) {
	x, opt, err := lpSolve(p)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return nil, 0, &InfeasibleError{WindowIndex: w.Index, Bound: "no feasible dispatch: " + err.Error()}
		}
		return nil, 0, &SolverError{WindowIndex: w.Index, Status: err.Error(), Err: err}
	}
	return x, opt, nil
}
