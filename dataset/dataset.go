/*
DESCRIPTION
  dataset.go provides loading of membrane filtration experiment records
  from CSV files and grouping of samples by flow rate.

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

// Package dataset loads membrane filtration experiment records from
// delimited text files. Each record holds a transmembrane pressure, a
// flow rate, and the observed steady-state permeate flux.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrNoSamples is returned when a data source contains no sample rows.
var ErrNoSamples = errors.New("dataset: no samples")

// DataError reports a record that could not be parsed. Line is the
// 1-based line number in the source, counting the header.
type DataError struct {
	Line int
	Err  error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("dataset: bad record on line %d: %v", e.Line, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// Dataset holds the experiment samples as parallel slices: the
// transmembrane pressure (bar), the flow rate, and the observed
// steady-state permeate flux for each sample.
type Dataset struct {
	Pressure []float64
	FlowRate []float64
	Flux     []float64
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.Pressure) }

// Group holds the samples recorded at a single flow rate.
type Group struct {
	FlowRate       float64
	Pressure, Flux []float64
}

// Groups partitions the samples by distinct flow rate, in first-seen
// order. The dataset itself is not modified.
func (d *Dataset) Groups() []Group {
	var gs []Group
	idx := make(map[float64]int)
	for i, q := range d.FlowRate {
		gi, ok := idx[q]
		if !ok {
			gi = len(gs)
			idx[q] = gi
			gs = append(gs, Group{FlowRate: q})
		}
		gs[gi].Pressure = append(gs[gi].Pressure, d.Pressure[i])
		gs[gi].Flux = append(gs[gi].Flux, d.Flux[i])
	}
	return gs
}

// Load reads a dataset from the CSV file at path. See Read for the
// expected format.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open data file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read reads a dataset from r. The first record is a header and is
// skipped; each following record is pressure, flow rate, flux. Ragged
// or non-numeric records are reported as a *DataError; a source with
// no sample rows is ErrNoSamples.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil, ErrNoSamples
		}
		return nil, &DataError{Line: 1, Err: err}
	}

	d := new(Dataset)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DataError{Line: line, Err: err}
		}

		p, err := parseField(rec[0])
		if err != nil {
			return nil, &DataError{Line: line, Err: err}
		}
		q, err := parseField(rec[1])
		if err != nil {
			return nil, &DataError{Line: line, Err: err}
		}
		j, err := parseField(rec[2])
		if err != nil {
			return nil, &DataError{Line: line, Err: err}
		}

		d.Pressure = append(d.Pressure, p)
		d.FlowRate = append(d.FlowRate, q)
		d.Flux = append(d.Flux, j)
	}

	if d.Len() == 0 {
		return nil, ErrNoSamples
	}
	return d, nil
}

// parseField parses a single numeric CSV field, tolerating surrounding
// whitespace.
func parseField(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
