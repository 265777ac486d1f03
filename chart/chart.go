/*
DESCRIPTION
  Plotting of fitted permeate flux curves against the original
  experimental observations.

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

// Package chart renders a fitted permeate flux model together with the
// observed data. The fit itself is never re-run here; the chart is
// produced from the fitted parameters and the exported model alone.
package chart

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ausocean/permeate/dataset"
	"github.com/ausocean/permeate/flux"
)

// curvePoints is the number of samples used to draw each fitted curve.
const curvePoints = 50

// Fitted renders one fitted model curve per flow-rate group in ds,
// overlaid with that group's observed samples, and saves the chart as
// a PNG at path. Curves are resampled over TMP values from 0 to 1.5
// times the largest observed TMP.
func Fitted(ds *dataset.Dataset, params []float64, path string) error {
	if ds == nil || ds.Len() == 0 {
		return dataset.ErrNoSamples
	}

	p := plot.New()
	p.Title.Text = "Permeate flux model fit"
	p.X.Label.Text = "TMP (bar)"
	p.Y.Label.Text = "Steady-state permeate flux (L/(m^2*h))"

	maxTMP := 1.5 * floats.Max(ds.Pressure)
	groups := ds.Groups()

	var curves []interface{}
	for _, g := range groups {
		tmp := make([]float64, curvePoints)
		q := make([]float64, curvePoints)
		for i := range tmp {
			tmp[i] = maxTMP * float64(i) / float64(curvePoints-1)
			q[i] = g.FlowRate
		}
		curves = append(curves, fmt.Sprintf("%v model", g.FlowRate), plotterXY(tmp, flux.Model(params, tmp, q)))
	}
	if err := plotutil.AddLines(p, curves...); err != nil {
		return fmt.Errorf("could not add model curves: %w", err)
	}

	var points []interface{}
	for _, g := range groups {
		points = append(points, fmt.Sprintf("%v data", g.FlowRate), plotterXY(g.Pressure, g.Flux))
	}
	if err := plotutil.AddScatters(p, points...); err != nil {
		return fmt.Errorf("could not add data points: %w", err)
	}

	if err := p.Save(15*vg.Centimeter, 15*vg.Centimeter, path); err != nil {
		return fmt.Errorf("could not save plot: %w", err)
	}
	return nil
}

// plotterXY provides a plotter.XYs type value based on the given x and y data.
func plotterXY(x, y []float64) plotter.XYs {
	xy := make(plotter.XYs, len(x))
	for i := range x {
		xy[i].X = x[i]
		xy[i].Y = y[i]
	}
	return xy
}
