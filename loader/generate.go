package loader

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/sarchlab/bpsim/insts"
)

// DefaultBase is the address of the first generated instruction.
const DefaultBase = 0x100

// ErrInvalidGenConfig is returned by Generate for impossible mixes.
var ErrInvalidGenConfig = errors.New("invalid trace generator config")

// genKind is the role of a generated instruction.
type genKind int

const (
	genOther genKind = iota
	genForward
	genLoop
)

// loopOutcome is the outcome sequence of generated loop branches: three
// iterations back to the branch itself, then an exit.
var loopOutcome = []bool{true, true, true, false}

// GenConfig describes the mix of a synthetic trace.
type GenConfig struct {
	// Total is the number of instructions.
	Total int
	// BranchPercent is the share of forward branches with a fixed random
	// outcome.
	BranchPercent float64
	// LoopPercent is the share of loop branches.
	LoopPercent float64
	// Base is the address of the first instruction. Zero selects
	// DefaultBase.
	Base uint64
}

// DefaultGenConfig returns a 20-instruction mix with 30% branches and 10%
// loops.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Total:         20,
		BranchPercent: 30,
		LoopPercent:   10,
		Base:          DefaultBase,
	}
}

// Counts returns the number of loop and forward branches the mix asks for.
func (c GenConfig) Counts() (loops, branches int) {
	loops = int(math.Round(float64(c.Total) * c.LoopPercent / 100))
	branches = int(math.Round(float64(c.Total) * c.BranchPercent / 100))
	return loops, branches
}

// Validate checks that the percentages fit in the trace.
func (c GenConfig) Validate() error {
	if c.Total <= 0 {
		return fmt.Errorf("%w: total must be > 0, got %d",
			ErrInvalidGenConfig, c.Total)
	}
	if c.BranchPercent < 0 || c.LoopPercent < 0 {
		return fmt.Errorf("%w: percentages must not be negative",
			ErrInvalidGenConfig)
	}

	loops, branches := c.Counts()
	if loops+branches > c.Total {
		return fmt.Errorf("%w: %d loops and %d branches exceed %d instructions",
			ErrInvalidGenConfig, loops, branches, c.Total)
	}

	return nil
}

// Generate builds a shuffled synthetic trace. Forward branches jump over
// the next instruction and are taken with probability one half; loop
// branches jump to themselves and follow the loop outcome.
func Generate(cfg GenConfig, rng *rand.Rand) ([]insts.Instruction, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := cfg.Base
	if base == 0 {
		base = DefaultBase
	}

	loops, branches := cfg.Counts()
	kinds := make([]genKind, cfg.Total)
	for i := range kinds {
		switch {
		case i < branches:
			kinds[i] = genForward
		case i < branches+loops:
			kinds[i] = genLoop
		}
	}
	rng.Shuffle(len(kinds), func(i, j int) {
		kinds[i], kinds[j] = kinds[j], kinds[i]
	})

	prog := make([]insts.Instruction, cfg.Total)
	for i, kind := range kinds {
		pc := base + uint64(i)*insts.InstructionSize
		switch kind {
		case genForward:
			taken := rng.Float64() < 0.5
			prog[i] = insts.Branch(pc, pc+2*insts.InstructionSize, insts.Fixed(taken))
		case genLoop:
			prog[i] = insts.Branch(pc, pc, insts.Cycle(loopOutcome...))
		default:
			prog[i] = insts.Other(pc)
		}
	}

	return prog, nil
}
