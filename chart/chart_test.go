/*
DESCRIPTION
  chart_test.go provides testing for rendering of fitted permeate flux
  curves.

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

package chart

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ausocean/permeate/dataset"
	"github.com/ausocean/permeate/flux"
)

// TestFitted renders a chart for a small two-group dataset and checks
// that a non-empty PNG is written.
func TestFitted(t *testing.T) {
	params := []float64{0.02, -0.05, 0.015}
	pressure := []float64{1, 2, 3, 4, 1, 2, 3, 4}
	flow := []float64{0.5, 0.5, 0.5, 0.5, 1, 1, 1, 1}
	ds := &dataset.Dataset{
		Pressure: pressure,
		FlowRate: flow,
		Flux:     flux.Model(params, pressure, flow),
	}

	path := filepath.Join(t.TempDir(), "fit.png")
	if err := Fitted(ds, params, path); err != nil {
		t.Fatalf("could not render chart: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("chart file was not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("chart file is empty")
	}
}

// TestFittedEmpty checks that an empty dataset is rejected.
func TestFittedEmpty(t *testing.T) {
	err := Fitted(&dataset.Dataset{}, []float64{0.02, -0.05, 0.015}, "unused.png")
	if !errors.Is(err, dataset.ErrNoSamples) {
		t.Errorf("expected ErrNoSamples, got: %v", err)
	}
}
