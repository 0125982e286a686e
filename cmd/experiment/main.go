package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"mlexperiment/internal/experiment"
	"mlexperiment/internal/logging"
)

func main() {
	configFile := flag.String("config", "", "Path to experiment YAML file")
	dataFile := flag.String("data", "", "Dataset (CSV or ARFF), overrides experiment.dataset")
	model := flag.String("model", "", "Model tag 1-6 or name (svm|tree|boosting|forest|knn|rbf)")
	params := flag.String("params", "", "Comma-separated hyperparameters, e.g. 0.25,2")
	mode := flag.String("mode", "", "Evaluation mode (split|cv|sweep)")
	trainPercent := flag.Float64("train-percent", 66, "Train percent for split mode")
	folds := flag.Int("folds", 10, "Fold count for cv mode")
	ks := flag.String("ks", "", "Comma-separated fold counts for sweep mode, e.g. 5,10,15")
	plot := flag.Bool("plot", false, "Save a sweep chart in the output dir")
	outputDir := flag.String("out", "", "Output directory for report and results")
	logLevel := flag.String("log-level", "info", "Log level (debug|info|warn|error)")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  experiment -config config/experiment.yaml")
		fmt.Fprintln(os.Stderr, "  experiment -data data/iris.arff -model tree -params 0.25,2 -mode sweep -ks 5,10,15")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := logging.New(*logLevel, os.Stderr)

	cfg := experiment.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = experiment.LoadConfig(*configFile); err != nil {
			fatal(logger, err)
		}
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	e := &cfg.Experiment
	if set["data"] {
		e.Dataset = *dataFile
	}
	if set["model"] {
		e.Model.Tag = *model
	}
	if set["params"] {
		e.Model.Params = splitList(*params)
	}
	if set["mode"] {
		e.Evaluation.Mode = *mode
	}
	if set["train-percent"] {
		e.Evaluation.TrainPercent = *trainPercent
	}
	if set["folds"] {
		e.Evaluation.Folds = *folds
	}
	if set["ks"] {
		values, err := parseInts(*ks)
		if err != nil {
			fatal(logger, err)
		}
		e.Evaluation.Sweep = values
	}
	if set["plot"] {
		e.Output.Plot = *plot
	}
	if set["out"] {
		e.Output.Dir = *outputDir
	}

	if e.Dataset == "" {
		flag.Usage()
		os.Exit(1)
	}

	runner := experiment.NewRunner(cfg, logger)
	out, err := runner.Run()
	if err != nil {
		fatal(logger, err)
	}

	fmt.Printf("Model: %s\n", out.Description)
	fmt.Printf("Evaluation: %s (%s)\n\n", out.Mode, out.Setting)
	fmt.Println(out.Report())

	files, err := runner.Export(out)
	if err != nil {
		fatal(logger, err)
	}
	for _, f := range files {
		fmt.Printf("Saved %s\n", f)
	}
}

func fatal(logger zerolog.Logger, err error) {
	logger.Error().Err(err).Msg("experiment failed")
	os.Exit(1)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInts(s string) ([]int, error) {
	parts := splitList(s)
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("fold count %q: %w", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}
