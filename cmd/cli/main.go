package main

import (
	"flag"
	"fmt"
	"os"

	"mlexperiment/internal/commander"
	"mlexperiment/internal/experiment"
	"mlexperiment/internal/logging"
	"mlexperiment/internal/preprocessing"
)

func main() {
	dataFile := flag.String("data", "", "Dataset to load on start (CSV or ARFF)")
	normalization := flag.String("normalization", preprocessing.MinMax, "Normalization (minmax|zscore)")
	balance := flag.Bool("balance", true, "Oversample each training side up to its majority class count")
	seed := flag.Int64("seed", 1, "Seed for splits and folds")
	logLevel := flag.String("log-level", "warn", "Log level (debug|info|warn|error)")
	flag.Parse()

	logger := logging.New(*logLevel, os.Stderr)
	opts := preprocessing.Options{Normalization: *normalization, Balance: *balance}

	session := experiment.NewSession(logger, opts, *seed)
	cmd := commander.NewCommander(session, logger, os.Stdin, os.Stdout)
	if *dataFile != "" {
		cmd.ExecuteCommand("load", []string{*dataFile})
	}

	if err := cmd.Start(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
