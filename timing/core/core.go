// Package core provides the simulated processor front end.
// It binds a predictor and a pipeline to a program and rebuilds both when
// the predictor changes.
package core

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bpsim/insts"
	"github.com/sarchlab/bpsim/timing/bpred"
	"github.com/sarchlab/bpsim/timing/config"
	"github.com/sarchlab/bpsim/timing/pipeline"
)

// Stats holds the results of a run.
type Stats struct {
	// Predictor is the canonical name of the predictor that ran.
	Predictor string
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Branches is the number of branches resolved.
	Branches uint64
	// Correct is the number of correctly predicted branches.
	Correct uint64
	// Mispredictions is the number of mispredicted branches.
	Mispredictions uint64
	// Flushes is the number of pipeline flushes.
	Flushes uint64
	// Accuracy is Correct / Branches, or 0 without branches.
	Accuracy float64
	// Time is the simulated time at the configured clock.
	Time sim.VTimeInSec
}

// Core runs one program on a pipeline driven by one predictor.
type Core struct {
	// Pipeline is the underlying 5-stage pipeline.
	Pipeline *pipeline.Pipeline

	config *config.SimConfig
	prog   []insts.Instruction
	hooks  []sim.Hook
}

// NewCore creates a core for prog. A nil cfg selects the defaults.
func NewCore(prog []insts.Instruction, cfg *config.SimConfig) (*Core, error) {
	if cfg == nil {
		cfg = config.DefaultSimConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Core{
		config: cfg.Clone(),
		prog:   append([]insts.Instruction(nil), prog...),
	}

	if err := c.build(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Core) build() error {
	pred, err := bpred.New(c.config.Predictor, c.config.PredictorConfig())
	if err != nil {
		return err
	}

	pipe := pipeline.NewPipeline(pred, c.config.PipelineOptions()...)
	if err := pipe.LoadProgram(c.prog); err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}

	for _, h := range c.hooks {
		pipe.AcceptHook(h)
	}

	c.Pipeline = pipe

	return nil
}

// SwitchPredictor replaces the predictor with a fresh one of the named
// family. The pipeline and BTB are rebuilt too, so nothing learned carries
// over. Registered hooks stay registered.
func (c *Core) SwitchPredictor(name string) error {
	if bpred.Canonical(name) == "" {
		return fmt.Errorf("%w: %q", bpred.ErrUnknownPredictor, name)
	}

	prev := c.config.Predictor
	c.config.Predictor = name
	if err := c.build(); err != nil {
		c.config.Predictor = prev
		return err
	}

	return nil
}

// AcceptHook registers a hook on the pipeline and on every pipeline built
// later.
func (c *Core) AcceptHook(hook sim.Hook) {
	c.hooks = append(c.hooks, hook)
	c.Pipeline.AcceptHook(hook)
}

// PredictorName returns the canonical name of the current predictor.
func (c *Core) PredictorName() string {
	return c.Pipeline.Predictor().Name()
}

// Config returns a copy of the configuration.
func (c *Core) Config() *config.SimConfig {
	return c.config.Clone()
}

// Tick executes one pipeline cycle.
func (c *Core) Tick() error {
	return c.Pipeline.Step()
}

// Done returns true once the program has drained from the pipeline.
func (c *Core) Done() bool {
	return c.Pipeline.Drained()
}

// Run executes the program to completion.
func (c *Core) Run() error {
	return c.Pipeline.Run()
}

// RunCycles executes at most the given number of cycles.
// Returns true if the program has not drained yet.
func (c *Core) RunCycles(cycles uint64) (bool, error) {
	for i := uint64(0); i < cycles && !c.Done(); i++ {
		if err := c.Tick(); err != nil {
			return false, err
		}
	}
	return !c.Done(), nil
}

// Reset starts the program over. See pipeline.Pipeline.Reset for what is
// kept.
func (c *Core) Reset() {
	c.Pipeline.Reset()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	s := c.Pipeline.Stats()
	return Stats{
		Predictor:      c.PredictorName(),
		Cycles:         s.Cycles,
		Instructions:   s.Retired,
		Branches:       s.Resolved(),
		Correct:        s.Correct,
		Mispredictions: s.Mispredictions,
		Flushes:        s.Flushes,
		Accuracy:       s.Accuracy(),
		Time:           c.Pipeline.SimulatedTime(),
	}
}
