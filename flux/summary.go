/*
DESCRIPTION
  summary.go provides a human readable report of fit quality for a
  fitted parameter vector against the dataset it was fitted to.

AUTHORS
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

package flux

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/ausocean/permeate/dataset"
)

// Summary returns a multi-line report of the fit of params to ds:
// the parameter values, root-mean-square error of the residuals, and
// the coefficient of determination.
func Summary(ds *dataset.Dataset, params []float64) string {
	pred := Model(params, ds.Pressure, ds.FlowRate)

	mean := stat.Mean(ds.Flux, nil)
	var ssRes, ssTot float64
	for i, y := range ds.Flux {
		r := pred[i] - y
		ssRes += r * r
		t := y - mean
		ssTot += t * t
	}

	rmse := math.Sqrt(ssRes / float64(ds.Len()))
	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	var b strings.Builder
	fmt.Fprintf(&b, "permeate flux model fit (%d samples)\n", ds.Len())
	fmt.Fprintf(&b, "a:    %.6f\n", params[0])
	fmt.Fprintf(&b, "b:    %.6f\n", params[1])
	fmt.Fprintf(&b, "d:    %.6f\n", params[2])
	fmt.Fprintf(&b, "rmse: %.6f\n", rmse)
	fmt.Fprintf(&b, "r2:   %.6f\n", r2)
	return b.String()
}
