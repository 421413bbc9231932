package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/sarchlab/bpsim/insts"
	"github.com/sarchlab/bpsim/loader"
)

// traceFlags describes a synthetic trace on the command line.
type traceFlags struct {
	count     int
	branchPct float64
	loopPct   float64
	seed      int64
}

func (f *traceFlags) register(cmd *cobra.Command) {
	def := loader.DefaultGenConfig()
	cmd.Flags().IntVar(&f.count, "count", def.Total,
		"Number of generated instructions")
	cmd.Flags().Float64Var(&f.branchPct, "branch-pct", def.BranchPercent,
		"Percentage of forward branches")
	cmd.Flags().Float64Var(&f.loopPct, "loop-pct", def.LoopPercent,
		"Percentage of loop branches")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "Trace generator seed")
}

func (f *traceFlags) generate() ([]insts.Instruction, error) {
	cfg := loader.DefaultGenConfig()
	cfg.Total = f.count
	cfg.BranchPercent = f.branchPct
	cfg.LoopPercent = f.loopPct

	return loader.Generate(cfg, rand.New(rand.NewSource(f.seed)))
}

func newGenCmd() *cobra.Command {
	var (
		trace traceFlags
		out   string
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a synthetic trace file.",
		Long: "`gen --out trace.json` writes a shuffled mix of plain " +
			"instructions, forward branches and loops.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := trace.generate()
			if err != nil {
				return err
			}

			if err := loader.Save(out, prog); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"wrote %d instructions (%d branches) to %s\n",
				len(prog), insts.CountBranches(prog), out)

			return nil
		},
	}

	trace.register(cmd)
	cmd.Flags().StringVar(&out, "out", "trace.json", "Output trace file")

	return cmd
}
