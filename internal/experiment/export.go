package experiment

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"mlexperiment/internal/errors"
	"mlexperiment/internal/logging"
	"mlexperiment/internal/report"
)

const (
	ReportFile  = "report.txt"
	ResultsFile = "results.csv"
	SweepFile   = "sweep.csv"
	ChartFile   = "sweep.png"
)

// Export writes the outcome into Output.Dir and returns the written paths.
// Nothing is written when Output.Dir is empty.
func (r *Runner) Export(out *Outcome) ([]string, error) {
	dir := r.Config.Experiment.Output.Dir
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output dir %s", dir)
	}

	var written []string
	write := func(name, content string) error {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return errors.Wrapf(err, "write %s", path)
		}
		written = append(written, path)
		return nil
	}

	if err := write(ReportFile, reportText(out)); err != nil {
		return written, err
	}

	path := filepath.Join(dir, ResultsFile)
	if err := ExportResults(out, path); err != nil {
		return written, err
	}
	written = append(written, path)

	if out.Sweep != nil {
		if err := write(SweepFile, report.SweepTable(out.Sweep)); err != nil {
			return written, err
		}
		if r.Config.Experiment.Output.Plot {
			chart := filepath.Join(dir, ChartFile)
			if err := report.SweepChart(out.Sweep, chart); err != nil {
				return written, err
			}
			written = append(written, chart)
		}
	}

	r.logger.Info().
		Str(logging.OperationKey, "export").
		Strs("files", written).
		Msg("results written")
	return written, nil
}

func reportText(out *Outcome) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dataset: %s\n", out.Dataset)
	fmt.Fprintf(&sb, "Model: %s\n", out.Description)
	fmt.Fprintf(&sb, "Evaluation: %s (%s)\n", out.Mode, out.Setting)
	fmt.Fprintf(&sb, "Duration: %v\n\n", out.Duration.Round(time.Millisecond))
	sb.WriteString(out.Report())
	return sb.String()
}

// ExportResults writes a one-row CSV summary of out. For a sweep the
// metrics are those of the best k.
func ExportResults(out *Outcome, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create %s", filename)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	_ = writer.Write([]string{
		"Dataset", "Model", "Parameters", "Mode", "Setting",
		"Accuracy", "Precision", "Recall", "Kappa", "DurationMs",
	})

	var accuracy, precision, recall, kappa float64
	switch {
	case out.Result != nil:
		accuracy = out.Result.Accuracy
		precision = out.Result.MeanPrecision()
		recall = out.Result.MeanRecall()
		kappa = out.Result.Kappa()
	case out.Sweep != nil:
		accuracy = out.Sweep.BestAccuracy
		for _, row := range out.Sweep.Rows {
			if row.K == out.Sweep.BestK {
				precision, recall = row.MeanPrecision, row.MeanRecall
				break
			}
		}
	}

	_ = writer.Write([]string{
		out.Dataset,
		out.Model,
		formatParams(out.Params),
		out.Mode,
		out.Setting,
		fmt.Sprintf("%.4f", accuracy),
		fmt.Sprintf("%.4f", precision),
		fmt.Sprintf("%.4f", recall),
		fmt.Sprintf("%.4f", kappa),
		fmt.Sprintf("%d", out.Duration.Milliseconds()),
	})

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrapf(err, "write %s", filename)
	}
	return nil
}

func formatParams(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, params[k])
	}
	return strings.Join(parts, " ")
}

func formatPercent(pct float64) string {
	return strconv.FormatFloat(pct, 'f', -1, 64) + "% train"
}

func formatFolds(k int) string {
	return strconv.Itoa(k) + " folds"
}

func formatSweep(ks []int) string {
	parts := make([]string, len(ks))
	for i, k := range ks {
		parts[i] = strconv.Itoa(k)
	}
	return "k=" + strings.Join(parts, ",")
}
