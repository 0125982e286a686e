// Package report renders evaluation and sweep results for people: text
// reports, a CSV-style sweep table and a sweep chart.
package report

import (
	"fmt"
	"strings"

	"mlexperiment/internal/evaluation"
)

// Evaluation renders a summary, per-class detail and the confusion matrix.
func Evaluation(res *evaluation.Result) string {
	var sb strings.Builder
	sb.WriteString(Summary(res))
	sb.WriteString("\n")
	sb.WriteString(ClassDetails(res))
	sb.WriteString("\n")
	sb.WriteString(ConfusionMatrix(res))
	return sb.String()
}

func Summary(res *evaluation.Result) string {
	var sb strings.Builder
	incorrectPct := 0.0
	if res.Instances > 0 {
		incorrectPct = 100 - res.Accuracy
	}

	sb.WriteString("Results\n======\n\n")
	fmt.Fprintf(&sb, "%-40s %8d %10.4f %%\n", "Correctly Classified Instances", res.Correct, res.Accuracy)
	fmt.Fprintf(&sb, "%-40s %8d %10.4f %%\n", "Incorrectly Classified Instances", res.Incorrect(), incorrectPct)
	fmt.Fprintf(&sb, "%-40s %10.4f\n", "Kappa statistic", res.Kappa())
	fmt.Fprintf(&sb, "%-40s %8d\n", "Total Number of Instances", res.Instances)
	return sb.String()
}

func ClassDetails(res *evaluation.Result) string {
	var sb strings.Builder
	sb.WriteString("=== Detailed Accuracy By Class ===\n\n")
	fmt.Fprintf(&sb, "%12s %10s %10s   %s\n", "Precision", "Recall", "F-Measure", "Class")
	for c := 0; c < res.NumClasses(); c++ {
		fmt.Fprintf(&sb, "%12.3f %10.3f %10.3f   %s\n", res.Precision[c], res.Recall[c], res.F1(c), res.ClassName(c))
	}

	meanF1 := 0.0
	if n := res.NumClasses(); n > 0 {
		for c := 0; c < n; c++ {
			meanF1 += res.F1(c)
		}
		meanF1 /= float64(n)
	}
	fmt.Fprintf(&sb, "%12.3f %10.3f %10.3f   %s\n", res.MeanPrecision(), res.MeanRecall(), meanF1, "Mean")
	return sb.String()
}

// ConfusionMatrix labels columns a, b, c... and maps them back to class
// names on the right.
func ConfusionMatrix(res *evaluation.Result) string {
	var sb strings.Builder
	sb.WriteString("=== Confusion Matrix ===\n\n")

	n := res.NumClasses()
	width := 3
	for _, row := range res.Confusion {
		for _, v := range row {
			if w := len(fmt.Sprint(v)) + 1; w > width {
				width = w
			}
		}
	}

	for c := 0; c < n; c++ {
		fmt.Fprintf(&sb, "%*s", width, columnLabel(c))
	}
	sb.WriteString("   <-- classified as\n")

	for i, row := range res.Confusion {
		for _, v := range row {
			fmt.Fprintf(&sb, "%*d", width, v)
		}
		fmt.Fprintf(&sb, " | %s = %s\n", columnLabel(i), res.ClassName(i))
	}
	return sb.String()
}

func columnLabel(c int) string {
	label := ""
	for {
		label = string(rune('a'+c%26)) + label
		c = c/26 - 1
		if c < 0 {
			return label
		}
	}
}
