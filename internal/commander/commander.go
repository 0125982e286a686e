package commander

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"mlexperiment/internal/errors"
	"mlexperiment/internal/experiment"
	"mlexperiment/internal/logging"
	"mlexperiment/internal/models"
	"mlexperiment/internal/report"
)

// Commander is the interactive front end over an experiment session. It
// gathers input and renders results; all work is done by the session.
type Commander struct {
	session *experiment.Session
	logger  zerolog.Logger
	in      io.Reader
	out     io.Writer
	done    bool

	defaultFolds int

	green  func(a ...any) string
	red    func(a ...any) string
	yellow func(a ...any) string
	cyan   func(a ...any) string
	blue   func(a ...any) string
}

func NewCommander(session *experiment.Session, logger zerolog.Logger, in io.Reader, out io.Writer) *Commander {
	return &Commander{
		session:      session,
		logger:       logging.Component(logger, "commander"),
		in:           in,
		out:          out,
		defaultFolds: 10,
		green:        color.New(color.FgGreen).SprintFunc(),
		red:          color.New(color.FgRed).SprintFunc(),
		yellow:       color.New(color.FgYellow).SprintFunc(),
		cyan:         color.New(color.FgCyan).SprintFunc(),
		blue:         color.New(color.FgBlue).SprintFunc(),
	}
}

// Start reads commands until quit or end of input.
func (c *Commander) Start() error {
	c.printWelcome()
	scanner := bufio.NewScanner(c.in)

	for !c.done {
		fmt.Fprint(c.out, c.yellow("\nmlx> "))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				fmt.Fprintf(c.out, "\n%s Scanner error: %v\n", c.red("✗"), err)
				return err
			}
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		c.ExecuteCommand(strings.ToLower(parts[0]), parts[1:])
	}
	return nil
}

func (c *Commander) ExecuteCommand(command string, args []string) {
	switch command {
	case "help", "h":
		c.showHelp()
	case "load":
		if len(args) > 0 {
			c.loadData(args[0])
		} else {
			fmt.Fprintln(c.out, c.red("Usage: load <file.csv|file.arff>"))
		}
	case "model":
		if len(args) > 0 {
			c.configureModel(args[0], args[1:])
		} else {
			c.showModelHelp()
		}
	case "split":
		if len(args) > 0 {
			c.split(args[0])
		} else {
			fmt.Fprintln(c.out, c.red("Usage: split <train percent>"))
		}
	case "evaluate":
		c.evaluate()
	case "cv":
		c.crossValidate(args)
	case "sweep":
		c.sweep(args)
	case "describe":
		c.describe()
	case "classify":
		c.classify(args)
	case "report":
		c.showReport()
	case "chart":
		if len(args) > 0 {
			c.chart(args[0])
		} else {
			fmt.Fprintln(c.out, c.red("Usage: chart <file.png>"))
		}
	case "info":
		c.showDataInfo()
	case "quit", "exit", "q":
		c.quit()
	default:
		fmt.Fprintf(c.out, "%s Unknown command: %s\n", c.red("✗"), command)
		fmt.Fprintln(c.out, "Type 'help' for available commands")
	}
}

func (c *Commander) printWelcome() {
	fmt.Fprintln(c.out, c.cyan("╔══════════════════════════════════════════╗"))
	fmt.Fprintln(c.out, c.cyan("║        ML Experiment Commander           ║"))
	fmt.Fprintln(c.out, c.cyan("║   load, configure, evaluate, compare     ║"))
	fmt.Fprintln(c.out, c.cyan("╚══════════════════════════════════════════╝"))
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Type 'help' for available commands")
}

func (c *Commander) showHelp() {
	fmt.Fprintln(c.out, c.blue("\nAvailable Commands:"))

	fmt.Fprintln(c.out, "\n"+c.cyan("Data:"))
	fmt.Fprintln(c.out, "  load <file>            - Load and preprocess a CSV or ARFF dataset")
	fmt.Fprintln(c.out, "  info                   - Show dataset statistics")

	fmt.Fprintln(c.out, "\n"+c.cyan("Model:"))
	fmt.Fprintln(c.out, "  model <tag> [params]   - Configure a model (1-6 or name, see 'model')")
	fmt.Fprintln(c.out, "  describe               - Train on the full dataset and describe the model")
	fmt.Fprintln(c.out, "  classify <values...>   - Predict the class of one instance")

	fmt.Fprintln(c.out, "\n"+c.cyan("Evaluation:"))
	fmt.Fprintln(c.out, "  split <pct>            - Compute a train/test split (seed 1)")
	fmt.Fprintln(c.out, "  evaluate               - Train on the split and score the test part")
	fmt.Fprintf(c.out, "  cv [k]                 - K-fold cross-validation (default: %d)\n", c.defaultFolds)
	fmt.Fprintln(c.out, "  sweep [k...]           - Cross-validate for several k (default: 5 10 15 20 25)")
	fmt.Fprintln(c.out, "  report                 - Show the latest result again")
	fmt.Fprintln(c.out, "  chart <file.png>       - Plot the latest sweep")

	fmt.Fprintln(c.out, "\n"+c.cyan("System:"))
	fmt.Fprintln(c.out, "  help                   - Show this help message")
	fmt.Fprintln(c.out, "  quit                   - Exit program")
}

func (c *Commander) showModelHelp() {
	fmt.Fprintln(c.out, c.blue("\nModel Command Usage:"))
	for tag := models.TagSVM; tag <= models.TagRBFNetwork; tag++ {
		fmt.Fprintf(c.out, "  model %d %-28s - %s (default: %s)\n",
			int(tag),
			strings.Join(models.ParamNames(tag), " "),
			tag,
			strings.Join(models.DefaultParams(tag), " "))
	}
}

func (c *Commander) fail(err error) {
	fmt.Fprintf(c.out, "%s Error: %v\n", c.red("✗"), err)
	c.logger.Debug().Err(err).Msg("command failed")
}

func (c *Commander) loadData(filename string) {
	fmt.Fprintf(c.out, "Loading data from %s...\n", filename)
	if err := c.session.Load(filename); err != nil {
		c.fail(err)
		return
	}

	ds := c.session.Dataset()
	fmt.Fprintf(c.out, "%s Loaded %d instances, %d attributes, class %s %v\n",
		c.green("✓"), ds.NumInstances(), ds.NumAttributes(), ds.ClassAttribute().Name, ds.ClassNames())
}

func (c *Commander) configureModel(name string, params []string) {
	tag, err := models.ParseTag(name)
	if err != nil {
		c.fail(err)
		return
	}
	if len(params) == 0 {
		params = models.DefaultParams(tag)
	}

	if err := c.session.Configure(int(tag), params); err != nil {
		c.fail(err)
		return
	}
	fmt.Fprintf(c.out, "%s Configured %s\n", c.green("✓"), c.session.Model().Describe())
}

func (c *Commander) split(arg string) {
	pct, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		c.fail(errors.Wrapf(err, "train percent %q", arg))
		return
	}
	if pct < 0 || pct > 100 {
		fmt.Fprintf(c.out, "%s train percent %v is outside [0, 100]; the cut is clamped\n", c.yellow("!"), pct)
	}

	if err := c.session.Split(pct); err != nil {
		c.fail(err)
		return
	}
	split := c.session.CurrentSplit()
	fmt.Fprintf(c.out, "%s Split: %d train / %d test\n",
		c.green("✓"), split.Train.NumInstances(), split.Test.NumInstances())
}

func (c *Commander) evaluate() {
	res, err := c.session.Evaluate()
	if err != nil {
		c.fail(err)
		return
	}
	fmt.Fprintln(c.out, report.Evaluation(res))
}

func (c *Commander) crossValidate(args []string) {
	k := c.defaultFolds
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			c.fail(errors.Wrapf(err, "fold count %q", args[0]))
			return
		}
		k = n
	}

	fmt.Fprintf(c.out, "Running %d-fold cross-validation...\n", k)
	res, err := c.session.CrossValidate(k)
	if err != nil {
		c.fail(err)
		return
	}
	fmt.Fprintln(c.out, report.Evaluation(res))
}

func (c *Commander) sweep(args []string) {
	ks := experiment.DefaultSweep
	if len(args) > 0 {
		ks = make([]int, 0, len(args))
		for _, arg := range args {
			n, err := strconv.Atoi(arg)
			if err != nil {
				c.fail(errors.Wrapf(err, "fold count %q", arg))
				return
			}
			ks = append(ks, n)
		}
	}

	fmt.Fprintf(c.out, "Sweeping k over %v...\n", ks)
	res, err := c.session.Sweep(ks)
	if err != nil {
		c.fail(err)
		return
	}
	fmt.Fprintln(c.out, report.SweepTable(res))
}

func (c *Commander) describe() {
	desc, err := c.session.Describe()
	if err != nil {
		c.fail(err)
		return
	}
	fmt.Fprintln(c.out, c.blue("\nTrained model:"))
	fmt.Fprintln(c.out, desc)
}

func (c *Commander) classify(values []string) {
	if len(values) == 0 {
		fmt.Fprintln(c.out, c.red("Usage: classify <value> <value> ..."))
		return
	}

	class, err := c.session.Classify(values)
	if err != nil {
		c.fail(err)
		return
	}
	fmt.Fprintf(c.out, "%s Predicted class: %s\n", c.green("✓"), class)
}

func (c *Commander) showReport() {
	res, sweep := c.session.LastResult(), c.session.LastSweep()
	if res == nil && sweep == nil {
		fmt.Fprintln(c.out, c.red("No results yet. Run evaluate, cv or sweep first"))
		return
	}
	if res != nil {
		fmt.Fprintln(c.out, report.Evaluation(res))
	}
	if sweep != nil {
		fmt.Fprintln(c.out, report.SweepTable(sweep))
	}
}

func (c *Commander) chart(path string) {
	if c.session.LastSweep() == nil {
		fmt.Fprintln(c.out, c.red("No sweep yet. Run sweep first"))
		return
	}
	if err := report.SweepChart(c.session.LastSweep(), path); err != nil {
		c.fail(err)
		return
	}
	fmt.Fprintf(c.out, "%s Chart saved to %s\n", c.green("✓"), path)
}

func (c *Commander) showDataInfo() {
	stats, err := c.session.Info()
	if err != nil {
		fmt.Fprintln(c.out, c.red("No data loaded"))
		return
	}

	ds := c.session.Dataset()
	fmt.Fprintln(c.out, c.blue("\nDataset Information:"))
	fmt.Fprintln(c.out, strings.Repeat("─", 40))
	fmt.Fprintf(c.out, "Source: %s\n", c.session.Path())
	fmt.Fprintf(c.out, "Relation: %s\n", ds.Relation)
	fmt.Fprintf(c.out, "Samples: %d\n", stats.Samples)
	fmt.Fprintf(c.out, "Attributes: %d\n", stats.Attributes)
	fmt.Fprintf(c.out, "Classes: %d %v\n", stats.Classes, ds.ClassNames())
	fmt.Fprintf(c.out, "Class distribution: %v (imbalance %.2f)\n", stats.ClassDistribution, stats.ImbalanceRatio)
	for _, f := range stats.FeatureStats {
		fmt.Fprintf(c.out, "  %-20s min %-10s max %-10s mean %s\n", f.Name, f.Min, f.Max, f.Mean.StringFixed(4))
	}

	if model := c.session.Model(); model != nil {
		fmt.Fprintf(c.out, "Model: %s\n", model.Describe())
	}
}

func (c *Commander) quit() {
	fmt.Fprintln(c.out, "Bye")
	c.done = true
}
