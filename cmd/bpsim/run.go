package main

import (
	"fmt"
	"io"
	"log"

	"github.com/guptarohit/asciigraph"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"

	"github.com/sarchlab/bpsim/insts"
	"github.com/sarchlab/bpsim/loader"
	"github.com/sarchlab/bpsim/timing/core"
	"github.com/sarchlab/bpsim/timing/pipeline"
)

type runOptions struct {
	root *rootOptions

	predictor string
	tracePath string
	trace     traceFlags
	verbose   bool
	dump      bool
	plot      bool
	csvOut    string
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{root: root}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one predictor on a trace.",
		Long: "`run --predictor tage --trace trace.json` runs the trace to " +
			"completion. Without --trace a synthetic trace is generated.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.predictor, "predictor", "p", "",
		"Predictor to run (overrides the config)")
	cmd.Flags().StringVar(&opts.tracePath, "trace", "",
		"Trace file to run instead of a generated one")
	opts.trace.register(cmd)
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Print the program and one line per cycle")
	cmd.Flags().BoolVar(&opts.dump, "dump", false,
		"Add the BTB and predictor state to every cycle line")
	cmd.Flags().BoolVar(&opts.plot, "plot", false,
		"Plot accuracy after every resolved branch")
	cmd.Flags().StringVar(&opts.csvOut, "csv-out", "",
		"Write per-cycle snapshots to a CSV file")

	return cmd
}

func (o *runOptions) program() ([]insts.Instruction, error) {
	if o.tracePath != "" {
		return loader.Load(o.tracePath)
	}
	return o.trace.generate()
}

func (o *runOptions) run(out io.Writer) error {
	cfg, err := o.root.loadConfig()
	if err != nil {
		return err
	}
	if o.predictor != "" {
		cfg.Predictor = o.predictor
	}
	// Tracing wants every cycle, whatever the program length.
	if o.plot || o.csvOut != "" {
		cfg.SnapshotLimit = 0
	}

	prog, err := o.program()
	if err != nil {
		return err
	}

	c, err := core.NewCore(prog, cfg)
	if err != nil {
		return err
	}

	if o.verbose {
		fmt.Fprintf(out, "program (%d instructions):\n", len(prog))
		for _, inst := range prog {
			fmt.Fprintf(out, "  %s\n", inst.Describe())
		}

		h := pipeline.NewLogHook(log.New(out, "", 0))
		h.Verbose = o.dump
		c.AcceptHook(h)
	}

	var curve []float64
	if o.plot {
		c.AcceptHook(accuracyCurve(&curve))
	}

	if o.csvOut != "" {
		w, err := newSnapshotWriter(o.csvOut)
		if err != nil {
			return err
		}
		c.AcceptHook(w)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Print(err)
			}
		}()
	}

	if err := c.Run(); err != nil {
		return err
	}

	printReport(out, c)

	if o.plot {
		plotCurve(out, curve)
	}

	return nil
}

// accuracyCurve returns a hook that appends the running accuracy, in
// percent, every time a branch resolves.
func accuracyCurve(curve *[]float64) sim.Hook {
	var resolved uint64
	return pipeline.HookFunc(func(ctx sim.HookCtx) {
		if ctx.Pos != pipeline.HookPosCycle {
			return
		}
		s, ok := pipeline.SnapshotOf(ctx)
		if !ok || s.Stats.Resolved() == resolved {
			return
		}
		resolved = s.Stats.Resolved()
		*curve = append(*curve, s.Stats.Accuracy()*100)
	})
}

func printReport(out io.Writer, c *core.Core) {
	s := c.Stats()
	ps := c.Pipeline.Stats()

	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "Run: %s\n", c.Pipeline.RunID())
	fmt.Fprintf(out, "Predictor: %s\n", s.Predictor)
	fmt.Fprintf(out, "Cycles: %d\n", s.Cycles)
	fmt.Fprintf(out, "Instructions retired: %d\n", s.Instructions)
	fmt.Fprintf(out, "Simulated time: %.3e s\n", float64(s.Time))
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "Branches:\n")
	fmt.Fprintf(out, "  Resolved:     %d\n", s.Branches)
	fmt.Fprintf(out, "  Correct:      %d\n", s.Correct)
	fmt.Fprintf(out, "  Mispredicted: %d\n", s.Mispredictions)
	fmt.Fprintf(out, "  Accuracy:     %.2f%%\n", s.Accuracy*100)
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "Pipeline Events:\n")
	fmt.Fprintf(out, "  Flushes:    %d\n", ps.Flushes)
	fmt.Fprintf(out, "  Squashed:   %d\n", ps.Squashed)
	fmt.Fprintf(out, "  BTB hits:   %d\n", ps.BTBHits)
	fmt.Fprintf(out, "  BTB misses: %d\n", ps.BTBMisses)
}

func plotCurve(out io.Writer, curve []float64) {
	if len(curve) == 0 {
		fmt.Fprintln(out, "\nno branches resolved, nothing to plot")
		return
	}

	graph := asciigraph.Plot(curve,
		asciigraph.Height(10),
		asciigraph.Caption("accuracy (%) after each resolved branch"))
	fmt.Fprintf(out, "\n%s\n", graph)
}
