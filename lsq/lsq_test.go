/*
DESCRIPTION
  lsq_test.go provides testing for the damped Gauss-Newton solver.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2022-2023 the Australian Ocean Lab (AusOcean)

  It is free software: you can redistribute it and/or modify them
  under the terms of the GNU General Public License as published by the
  Free Software Foundation, either version 3 of the License, or (at your
  option) any later version.

  It is distributed in the hope that it will be useful, but WITHOUT
  ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
  FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
  for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt. If not, see http://www.gnu.org/licenses.
*/

package lsq

import (
	"errors"
	"math"
	"testing"

	"github.com/ausocean/utils/logging"
	"gonum.org/v1/gonum/mat"
)

// expProblem is an exponential-decay fitting problem with known true
// parameters [2.0, -1.5]: residuals r_i = p0*exp(p1*x_i) - y_i over
// ten samples, with the analytic Jacobian.
func expProblem() Problem {
	const n = 10
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = 0.1 * float64(i)
		y[i] = 2.0 * math.Exp(-1.5*x[i])
	}
	return Problem{
		Dim:  2,
		Size: n,
		Func: func(dst, p []float64) {
			for i := range dst {
				dst[i] = p[0]*math.Exp(p[1]*x[i]) - y[i]
			}
		},
		Jac: func(dst *mat.Dense, p []float64) {
			for i := range x {
				e := math.Exp(p[1] * x[i])
				dst.Set(i, 0, e)
				dst.Set(i, 1, p[0]*x[i]*e)
			}
		},
	}
}

// TestSolveLinear checks that a linear least-squares problem converges
// to the exact solution.
func TestSolveLinear(t *testing.T) {
	const n = 10
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = 0.1 * float64(i)
		y[i] = 3*x[i] + 0.5
	}
	prob := Problem{
		Dim:  2,
		Size: n,
		Func: func(dst, p []float64) {
			for i := range dst {
				dst[i] = p[0]*x[i] + p[1] - y[i]
			}
		},
		Jac: func(dst *mat.Dense, p []float64) {
			for i := range x {
				dst.Set(i, 0, x[i])
				dst.Set(i, 1, 1)
			}
		},
	}

	res, err := Solve(prob, []float64{0, 0}, Settings{})
	if err != nil {
		t.Fatalf("could not solve linear problem: %v", err)
	}

	want := []float64{3, 0.5}
	for i, w := range want {
		if math.Abs(res.Params[i]-w) > 1e-6 {
			t.Errorf("did not get expected parameter %d. Got: %v, Want: %v", i, res.Params[i], w)
		}
	}
}

// TestSolveExponential checks convergence of a nonlinear problem from
// starting points near and far from the solution.
func TestSolveExponential(t *testing.T) {
	want := []float64{2.0, -1.5}

	for _, init := range [][]float64{{1, 0}, {5, 1}} {
		res, err := Solve(expProblem(), init, Settings{})
		if err != nil {
			t.Fatalf("could not solve from %v: %v", init, err)
		}
		for i, w := range want {
			if math.Abs(res.Params[i]-w) > 1e-6 {
				t.Errorf("did not get expected parameter %d from %v. Got: %v, Want: %v", i, init, res.Params[i], w)
			}
		}
		if res.Cost > 1e-12 {
			t.Errorf("cost did not vanish from %v: %v", init, res.Cost)
		}
	}
}

// TestIterationLimit checks that hitting the iteration cap reports
// non-convergence while still returning the best parameters so far.
func TestIterationLimit(t *testing.T) {
	res, err := Solve(expProblem(), []float64{5, 1}, Settings{MaxIterations: 2})
	if !errors.Is(err, ErrIterationLimit) {
		t.Fatalf("expected ErrIterationLimit, got: %v", err)
	}
	if res == nil {
		t.Fatal("expected best-so-far result alongside ErrIterationLimit")
	}
	if res.Status != IterationLimit {
		t.Errorf("did not get expected status. Got: %v, Want: %v", res.Status, IterationLimit)
	}
	if res.Iterations != 2 {
		t.Errorf("did not get expected iteration count. Got: %d, Want: 2", res.Iterations)
	}
}

// TestNumericError checks that a non-finite residual at the initial
// guess is reported as a NumericError carrying the offending
// parameters, not as a corrupted result.
func TestNumericError(t *testing.T) {
	prob := Problem{
		Dim:  1,
		Size: 1,
		Func: func(dst, p []float64) {
			dst[0] = 1 / p[0]
		},
		Jac: func(dst *mat.Dense, p []float64) {
			dst.Set(0, 0, -1/(p[0]*p[0]))
		},
	}

	res, err := Solve(prob, []float64{0}, Settings{})
	if res != nil {
		t.Errorf("expected nil result on numeric failure, got: %+v", res)
	}

	var nerr *NumericError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected *NumericError, got: %v", err)
	}
	if nerr.Iteration != 0 {
		t.Errorf("did not get expected failure iteration. Got: %d, Want: 0", nerr.Iteration)
	}
	if len(nerr.Params) != 1 || nerr.Params[0] != 0 {
		t.Errorf("did not get expected failure parameters: %v", nerr.Params)
	}
}

// TestVerboseNoEffect checks that per-iteration logging does not
// change the converged parameters.
func TestVerboseNoEffect(t *testing.T) {
	init := []float64{5, 1}

	quiet, err := Solve(expProblem(), init, Settings{})
	if err != nil {
		t.Fatalf("could not solve without logging: %v", err)
	}

	loud, err := Solve(expProblem(), init, Settings{Log: (*logging.TestLogger)(t)})
	if err != nil {
		t.Fatalf("could not solve with logging: %v", err)
	}

	for i := range quiet.Params {
		if quiet.Params[i] != loud.Params[i] {
			t.Errorf("logging changed parameter %d. Got: %v, Want: %v", i, loud.Params[i], quiet.Params[i])
		}
	}
	if quiet.Iterations != loud.Iterations {
		t.Errorf("logging changed iteration count. Got: %d, Want: %d", loud.Iterations, quiet.Iterations)
	}
}

// TestDampingRetry checks that a step which would increase the cost
// is rejected and retried with stronger damping rather than accepted,
// and that the solver still converges. The Rosenbrock residuals
// [10(p1 - p0^2), 1 - p0] from the far start (-1.2, 1) force many such
// rejections: the undamped Gauss-Newton step repeatedly overshoots the
// curved valley.
func TestDampingRetry(t *testing.T) {
	var funcCalls int
	prob := Problem{
		Dim:  2,
		Size: 2,
		Func: func(dst, p []float64) {
			funcCalls++
			dst[0] = 10 * (p[1] - p[0]*p[0])
			dst[1] = 1 - p[0]
		},
		Jac: func(dst *mat.Dense, p []float64) {
			dst.Set(0, 0, -20*p[0])
			dst.Set(0, 1, 10)
			dst.Set(1, 0, -1)
			dst.Set(1, 1, 0)
		},
	}

	res, err := Solve(prob, []float64{-1.2, 1}, Settings{})
	if err != nil {
		t.Fatalf("could not solve: %v", err)
	}

	// One evaluation at the start plus one per accepted step; anything
	// beyond that is a rejected trial that went through the damping
	// retry.
	rejected := funcCalls - 1 - res.Iterations
	if rejected <= 0 {
		t.Errorf("no rejected steps: %d evaluations over %d iterations", funcCalls, res.Iterations)
	}

	want := []float64{1, 1}
	for i, w := range want {
		if math.Abs(res.Params[i]-w) > 1e-6 {
			t.Errorf("did not get expected parameter %d. Got: %v, Want: %v", i, res.Params[i], w)
		}
	}
}

// TestStalled checks that exhausting the damping range without finding
// a cost-decreasing step is reported as Stalled, not as step-tolerance
// convergence. The residual here is constant, so no step can decrease
// the cost, while the fabricated Jacobian keeps the gradient away from
// the gradient tolerance.
func TestStalled(t *testing.T) {
	prob := Problem{
		Dim:  1,
		Size: 1,
		Func: func(dst, p []float64) {
			dst[0] = 1
		},
		Jac: func(dst *mat.Dense, p []float64) {
			dst.Set(0, 0, 1)
		},
	}

	res, err := Solve(prob, []float64{0}, Settings{})
	if err != nil {
		t.Fatalf("could not solve: %v", err)
	}
	if res.Status != Stalled {
		t.Errorf("did not get expected status. Got: %v, Want: %v", res.Status, Stalled)
	}
	if res.Iterations != 0 {
		t.Errorf("stall advanced the iteration count. Got: %d, Want: 0", res.Iterations)
	}
	if res.Cost != 1 {
		t.Errorf("did not get expected cost. Got: %v, Want: 1", res.Cost)
	}
}

// TestSolveBadInput checks the argument guards.
func TestSolveBadInput(t *testing.T) {
	prob := expProblem()

	if _, err := Solve(Problem{Dim: 2}, []float64{1, 1}, Settings{}); err == nil {
		t.Error("expected error for problem with no residuals")
	}
	if _, err := Solve(prob, []float64{1}, Settings{}); err == nil {
		t.Error("expected error for initial guess of wrong length")
	}
}
