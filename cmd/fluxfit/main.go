/*
DESCRIPTION
  fluxfit fits the steady-state permeate flux model to membrane
  filtration experiment data read from a CSV file, reports the fitted
  parameters, and optionally renders a chart of the fit.

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

// fluxfit estimates the parameters of the permeate flux model from
// experimental observations of transmembrane pressure, flow rate, and
// steady-state permeate flux.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/permeate/chart"
	"github.com/ausocean/permeate/dataset"
	"github.com/ausocean/permeate/flux"
	"github.com/ausocean/permeate/lsq"
	"github.com/ausocean/utils/logging"
)

// Logging configuration consts.
const (
	defaultLogPath = "/var/log/fluxfit/fluxfit.log"
	logMaxSize     = 500 // MB.
	logMaxBackup   = 10
	logMaxAge      = 28 // Days.
	logSuppress    = false
)

func main() {
	var (
		input    = flag.String("input", "", "Path to the experiment CSV; columns TMP, flow rate, flux with a header row")
		output   = flag.String("output", "", "Path for the fitted-curve PNG; empty disables charting")
		verbose  = flag.Bool("verbose", false, "Log per-iteration solver diagnostics")
		logPath  = flag.String("logfile", defaultLogPath, "Log file path")
		logLevel = flag.Int("LogLevel", int(logging.Info), "Specifies log level")
	)
	flag.Parse()

	if *logLevel < int(logging.Debug) || *logLevel > int(logging.Fatal) {
		*logLevel = int(logging.Info)
	}
	if *verbose {
		*logLevel = int(logging.Debug)
	}

	fileLog := &lumberjack.Logger{
		Filename:   *logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(int8(*logLevel), io.MultiWriter(fileLog, os.Stderr), logSuppress)

	if *input == "" {
		log.Fatal("no input file specified")
	}

	log.Debug("loading dataset", "path", *input)
	ds, err := dataset.Load(*input)
	if err != nil {
		log.Fatal("could not load dataset", "error", err)
	}
	log.Info("dataset loaded", "samples", ds.Len(), "flow rate groups", len(ds.Groups()))

	var solveLog logging.Logger
	if *verbose {
		solveLog = log
	}

	res, err := flux.Fit(ds, solveLog)
	switch {
	case errors.Is(err, lsq.ErrIterationLimit):
		log.Warning("fit did not converge within the iteration limit", "iterations", res.Iterations, "cost", res.Cost)
	case err != nil:
		log.Fatal("fit failed", "error", err)
	}

	log.Info("fit complete", "status", res.Status.String(), "iterations", res.Iterations, "cost", res.Cost)
	fmt.Print(flux.Summary(ds, res.Params))

	if *output != "" {
		err = chart.Fitted(ds, res.Params, *output)
		if err != nil {
			log.Fatal("could not render chart", "error", err)
		}
		log.Info("chart written", "path", *output)
	}
}
