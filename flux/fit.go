/*
DESCRIPTION
  fit.go wires a dataset into the least-squares solver and returns the
  fitted model parameters.

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

package flux

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/permeate/dataset"
	"github.com/ausocean/permeate/lsq"
	"github.com/ausocean/utils/logging"
)

// Fit estimates the model parameters [a, b, d] for the given dataset
// by nonlinear least squares from the default initial guess. The
// dataset is not modified and no solver state outlives the call.
//
// An empty or nil dataset returns dataset.ErrNoSamples before any
// solver work. Iteration-cap exhaustion returns the best-so-far result
// together with lsq.ErrIterationLimit so the caller can decide whether
// to trust the parameters. A dataset that puts the initial guess on
// the model pole returns a *lsq.NumericError.
//
// When log is non-nil, per-iteration diagnostics are emitted at debug
// level; logging never affects the fitted parameters.
func Fit(ds *dataset.Dataset, log logging.Logger) (*lsq.Result, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, dataset.ErrNoSamples
	}

	prob := lsq.Problem{
		Dim:  NumParams,
		Size: ds.Len(),
		Func: func(dst, p []float64) {
			Residual(dst, p, ds.Pressure, ds.FlowRate, ds.Flux)
		},
		Jac: func(dst *mat.Dense, p []float64) {
			Jacobian(dst, p, ds.Pressure, ds.FlowRate)
		},
	}

	return lsq.Solve(prob, DefaultGuess(), lsq.Settings{Log: log})
}
