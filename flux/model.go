/*
DESCRIPTION
  model.go provides the steady-state permeate flux model for membrane
  filtration, along with its residuals against observed data and the
  analytic Jacobian of those residuals.

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

// Package flux models steady-state permeate flux through a membrane as
// a function of transmembrane pressure (TMP) and flow rate, and fits
// the model parameters to experimental data.
//
// The model is
//
//	F(p, q) = a·q / (p − q·b) + q·d
//
// with parameter vector [a, b, d], pressure p and flow rate q. The
// model has a pole where p equals q·b; evaluation at or near the pole
// produces non-finite values which the solver reports as divergence
// rather than masking.
package flux

import "gonum.org/v1/gonum/mat"

// NumParams is the length of the model parameter vector [a, b, d].
const NumParams = 3

// DefaultGuess returns the initial parameter guess used by Fit:
// [0.01, -0.1, 0.01]. The values keep the model denominator away from
// zero for typical positive pressure and flow ranges. The guess is a
// fixed constant rather than derived from the data; starts near the
// pole may fail to converge.
func DefaultGuess() []float64 {
	return []float64{0.01, -0.1, 0.01}
}

// Model evaluates the permeate flux model at params over the sample
// batch given by the parallel slices pressure and flow. Samples on the
// model pole yield non-finite values which propagate to the caller.
func Model(params, pressure, flow []float64) []float64 {
	out := make([]float64, len(pressure))
	for i := range pressure {
		out[i] = params[0]*flow[i]/(pressure[i]-flow[i]*params[1]) + flow[i]*params[2]
	}
	return out
}

// Residual writes model-minus-observation for each sample into dst.
// dst must have the same length as the sample batch.
func Residual(dst, params, pressure, flow, observed []float64) {
	m := Model(params, pressure, flow)
	for i := range dst {
		dst[i] = m[i] - observed[i]
	}
}

// Jacobian writes the partial derivatives of each residual with
// respect to each parameter into dst, one row per sample with columns
// ordered (a, b, d). dst must be len(pressure) by NumParams. The
// observed values do not appear: they are constant per sample, so the
// residual Jacobian equals the model Jacobian.
func Jacobian(dst *mat.Dense, params, pressure, flow []float64) {
	for i := range pressure {
		den := pressure[i] - flow[i]*params[1]
		dst.Set(i, 0, flow[i]/den)
		dst.Set(i, 1, flow[i]*flow[i]*params[0]/(den*den))
		dst.Set(i, 2, flow[i])
	}
}
