package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sarchlab/bpsim/benchmarks"
)

type compareOptions struct {
	root *rootOptions

	predictors []string
	seeds      int
	quick      bool
	format     string
}

func newCompareCmd(root *rootOptions) *cobra.Command {
	opts := &compareOptions{root: root}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare predictors on the benchmark workloads.",
		Long: "`compare --seeds 5` runs every workload on every predictor " +
			"once per seed and summarizes the accuracy.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVar(&opts.predictors, "predictors", nil,
		"Predictors to compare (default: all)")
	cmd.Flags().IntVar(&opts.seeds, "seeds", 1,
		"Number of seeds to sweep")
	cmd.Flags().BoolVar(&opts.quick, "quick", false,
		"Run only the core workloads")
	cmd.Flags().StringVar(&opts.format, "format", "table",
		"Output format: table, csv or json")

	return cmd
}

func (o *compareOptions) run(out io.Writer) error {
	if o.seeds < 1 {
		return fmt.Errorf("--seeds must be at least 1, got %d", o.seeds)
	}

	cfg, err := o.root.loadConfig()
	if err != nil {
		return err
	}

	hc := benchmarks.DefaultConfig()
	hc.Predictors = o.predictors
	hc.Sim = cfg
	hc.Output = out
	harness := benchmarks.NewHarness(hc)

	if o.quick {
		harness.AddWorkloads(benchmarks.GetCoreWorkloads())
	} else {
		harness.AddWorkloads(benchmarks.GetWorkloads())
	}

	seeds := make([]int64, o.seeds)
	for i := range seeds {
		seeds[i] = int64(i + 1)
	}

	results, err := harness.Sweep(seeds)
	if err != nil {
		return err
	}

	switch o.format {
	case "csv":
		harness.PrintCSV(results)
	case "json":
		return harness.PrintJSON(results)
	case "table":
		summaries := benchmarks.Summarize(results)
		if o.seeds == 1 {
			harness.PrintResults(results)
		} else {
			harness.PrintSummary(summaries)
		}
		printBest(out, benchmarks.Best(summaries))
	default:
		return fmt.Errorf("unknown format %q", o.format)
	}

	return nil
}

func printBest(out io.Writer, best map[string]string) {
	workloads := make([]string, 0, len(best))
	for w := range best {
		workloads = append(workloads, w)
	}
	sort.Strings(workloads)

	fmt.Fprintf(out, "\nBest predictor per workload:\n")
	for _, w := range workloads {
		fmt.Fprintf(out, "  %-14s %s\n", w, best[w])
	}
}
