/*
DESCRIPTION
  lsq.go provides a damped Gauss-Newton (Levenberg-Marquardt) solver for
  nonlinear least-squares problems with analytic Jacobians.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>
  Russell Stanley <russell@ausocean.org>

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

// Package lsq provides a damped Gauss-Newton (Levenberg-Marquardt)
// solver for small nonlinear least-squares problems. The caller
// supplies residual and Jacobian evaluators; the solver iterates a
// regularized normal-equations step until one of the convergence
// tolerances, or the iteration limit, is met.
package lsq

import (
	"errors"
	"fmt"
	"math"

	"github.com/ausocean/utils/logging"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Solver defaults used for zero-valued Settings fields.
const (
	defaultMaxIterations = 100
	defaultCostTol       = 1e-10
	defaultStepTol       = 1e-10
	defaultGradTol       = 1e-10
	defaultInitDamping   = 1e-3

	// Damping bounds. The lower bound stops accepted steps from
	// switching damping off entirely; the upper bound is where a step
	// is considered stalled rather than merely cautious.
	minDamping = 1e-12
	maxDamping = 1e12

	dampingGrow   = 10.0
	dampingShrink = 0.1
)

// ErrIterationLimit is returned by Solve, together with the best
// result found so far, when the iteration limit is reached before any
// convergence tolerance is met.
var ErrIterationLimit = errors.New("lsq: iteration limit reached without convergence")

// NumericError reports a non-finite residual or Jacobian entry. It
// carries the iteration index and the parameter vector that produced
// the value so divergence can be diagnosed.
type NumericError struct {
	Iteration int
	Params    []float64
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("lsq: non-finite residual or jacobian at iteration %d for parameters %v", e.Iteration, e.Params)
}

// Problem describes a nonlinear least-squares problem of Size
// residuals over Dim parameters.
type Problem struct {
	Dim  int // Number of parameters.
	Size int // Number of residuals.

	// Func evaluates the residual vector at params, writing the Size
	// residuals into dst.
	Func func(dst, params []float64)

	// Jac evaluates the Jacobian of the residuals at params, writing
	// into the Size x Dim matrix dst.
	Jac func(dst *mat.Dense, params []float64)
}

// Settings configures the solver. Zero values are replaced with
// sensible defaults.
type Settings struct {
	MaxIterations int     // Default 100.
	CostTol       float64 // Relative cost-decrease tolerance, default 1e-10.
	StepTol       float64 // Parameter-step tolerance, default 1e-10.
	GradTol       float64 // Gradient infinity-norm tolerance, default 1e-10.
	InitDamping   float64 // Initial damping factor, default 1e-3.

	// Log, when non-nil, receives per-iteration diagnostics at debug
	// level. It has no effect on the solution.
	Log logging.Logger
}

// Status describes why the solver stopped.
type Status int

const (
	// IterationLimit means the iteration cap was reached before any
	// tolerance was met; the result holds the best parameters found.
	IterationLimit Status = iota

	// CostConverged means the relative cost decrease fell below CostTol.
	CostConverged

	// StepConverged means the parameter step fell below StepTol.
	StepConverged

	// GradConverged means the gradient infinity norm fell below GradTol.
	GradConverged

	// Stalled means damping grew past its upper bound without finding
	// a cost-decreasing step; the result holds the best parameters
	// found, but no convergence tolerance was met.
	Stalled
)

// String returns a human readable representation of the status.
func (s Status) String() string {
	switch s {
	case IterationLimit:
		return "iteration limit"
	case CostConverged:
		return "cost converged"
	case StepConverged:
		return "step converged"
	case GradConverged:
		return "gradient converged"
	case Stalled:
		return "stalled"
	default:
		return fmt.Sprintf("unknown status (%d)", int(s))
	}
}

// Result holds the outcome of a solve.
type Result struct {
	Params     []float64 // Final parameter vector.
	Cost       float64   // Final sum of squared residuals.
	Iterations int       // Accepted iterations performed.
	Status     Status
}

// Solve minimizes the sum of squared residuals of prob starting from
// init. The returned Result is owned by the caller; the solver keeps
// no state between calls.
//
// If the iteration limit is reached the best result found so far is
// returned together with ErrIterationLimit. If a residual or Jacobian
// evaluation produces a non-finite value the solve is abandoned and a
// *NumericError is returned. A solve that exhausts its damping range
// without finding a cost-decreasing step returns the best result so
// far with status Stalled, distinct from step-tolerance convergence.
func Solve(prob Problem, init []float64, set Settings) (*Result, error) {
	if prob.Size <= 0 {
		return nil, errors.New("lsq: problem has no residuals")
	}
	if len(init) != prob.Dim {
		return nil, fmt.Errorf("lsq: initial guess has %d parameters, problem has %d", len(init), prob.Dim)
	}

	if set.MaxIterations == 0 {
		set.MaxIterations = defaultMaxIterations
	}
	if set.CostTol == 0 {
		set.CostTol = defaultCostTol
	}
	if set.StepTol == 0 {
		set.StepTol = defaultStepTol
	}
	if set.GradTol == 0 {
		set.GradTol = defaultGradTol
	}
	if set.InitDamping == 0 {
		set.InitDamping = defaultInitDamping
	}

	params := make([]float64, prob.Dim)
	copy(params, init)

	r := make([]float64, prob.Size)
	rTrial := make([]float64, prob.Size)
	trial := make([]float64, prob.Dim)
	jac := mat.NewDense(prob.Size, prob.Dim, nil)
	grad := mat.NewVecDense(prob.Dim, nil)
	step := mat.NewVecDense(prob.Dim, nil)
	var normal mat.Dense

	prob.Func(r, params)
	if !finiteSlice(r) {
		return nil, &NumericError{Iteration: 0, Params: clone(params)}
	}
	cost := floats.Dot(r, r)
	damping := set.InitDamping

	res := &Result{Params: params, Cost: cost, Status: IterationLimit}

	for iter := 1; iter <= set.MaxIterations; iter++ {
		prob.Jac(jac, params)
		if !finiteMatrix(jac) {
			return nil, &NumericError{Iteration: iter, Params: clone(params)}
		}

		grad.MulVec(jac.T(), mat.NewVecDense(prob.Size, r))
		if mat.Norm(grad, math.Inf(1)) < set.GradTol {
			res.Status = GradConverged
			res.Cost = cost
			res.Iterations = iter - 1
			return res, nil
		}

		normal.Mul(jac.T(), jac)

		// Inner damping loop: grow damping until a step is found that
		// decreases the cost. Iteration count does not advance here.
		for {
			sym := mat.NewSymDense(prob.Dim, nil)
			for i := 0; i < prob.Dim; i++ {
				for j := i; j < prob.Dim; j++ {
					v := normal.At(i, j)
					if i == j {
						v += damping
					}
					sym.SetSym(i, j, v)
				}
			}
			var chol mat.Cholesky
			if !chol.Factorize(sym) {
				damping *= dampingGrow
				if damping > maxDamping {
					res.Status = Stalled
					res.Cost = cost
					res.Iterations = iter - 1
					return res, nil
				}
				continue
			}
			if err := chol.SolveVecTo(step, grad); err != nil {
				damping *= dampingGrow
				if damping > maxDamping {
					res.Status = Stalled
					res.Cost = cost
					res.Iterations = iter - 1
					return res, nil
				}
				continue
			}

			stepNorm := mat.Norm(step, 2)
			if stepNorm < set.StepTol*(floats.Norm(params, 2)+set.StepTol) {
				res.Status = StepConverged
				res.Cost = cost
				res.Iterations = iter - 1
				return res, nil
			}

			for i := range trial {
				trial[i] = params[i] - step.AtVec(i)
			}
			prob.Func(rTrial, trial)
			if !finiteSlice(rTrial) {
				return nil, &NumericError{Iteration: iter, Params: clone(trial)}
			}
			trialCost := floats.Dot(rTrial, rTrial)

			if trialCost >= cost {
				// Step would not decrease the cost; shrink the trust
				// region and retry.
				damping *= dampingGrow
				if damping > maxDamping {
					res.Status = Stalled
					res.Cost = cost
					res.Iterations = iter - 1
					return res, nil
				}
				continue
			}

			drop := cost - trialCost
			copy(params, trial)
			r, rTrial = rTrial, r
			cost = trialCost
			damping = math.Max(damping*dampingShrink, minDamping)

			res.Cost = cost
			res.Iterations = iter

			if set.Log != nil {
				set.Log.Debug("solver iteration", "iteration", iter, "cost", cost, "step norm", stepNorm, "damping", damping)
			}

			if drop < set.CostTol*cost || cost == 0 {
				res.Status = CostConverged
				return res, nil
			}
			break
		}
	}

	return res, ErrIterationLimit
}

// finiteSlice reports whether every element of s is finite.
func finiteSlice(s []float64) bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// finiteMatrix reports whether every element of m is finite.
func finiteMatrix(m *mat.Dense) bool {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func clone(s []float64) []float64 {
	c := make([]float64, len(s))
	copy(c, s)
	return c
}
