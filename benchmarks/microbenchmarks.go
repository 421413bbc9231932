package benchmarks

import (
	"math/rand"

	"github.com/sarchlab/bpsim/insts"
	"github.com/sarchlab/bpsim/loader"
)

// Workload is a program used to compare predictors.
type Workload struct {
	// Name identifies the workload.
	Name string

	// Description explains what behavior the workload exercises.
	Description string

	// Build returns the program. Workloads with random content derive it
	// from seed; the others ignore it.
	Build func(seed int64) []insts.Instruction
}

// GetWorkloads returns the standard set of workloads.
func GetWorkloads() []Workload {
	return []Workload{
		alternating(),
		loopNest(),
		biased(),
		randomMix(),
		nestedPattern(),
	}
}

// GetCoreWorkloads returns a small set for quick checks.
func GetCoreWorkloads() []Workload {
	return []Workload{
		alternating(),
		loopNest(),
		biased(),
	}
}

// withBackEdge closes body, which must start at loader.DefaultBase, into a
// loop that runs iterations times. A plain instruction follows the loop.
func withBackEdge(body []insts.Instruction, iterations int) []insts.Instruction {
	pc := uint64(loader.DefaultBase) + uint64(len(body))*insts.InstructionSize

	outcome := make([]bool, iterations)
	for i := 0; i < iterations-1; i++ {
		outcome[i] = true
	}

	prog := append([]insts.Instruction(nil), body...)
	prog = append(prog,
		insts.Branch(pc, loader.DefaultBase, insts.Cycle(outcome...)),
		insts.Other(pc+insts.InstructionSize))

	return prog
}

// addr returns the address of the i-th instruction of a workload body.
func addr(i int) uint64 {
	return loader.DefaultBase + uint64(i)*insts.InstructionSize
}

// 1. Alternating - a branch that flips direction every iteration
func alternating() Workload {
	return Workload{
		Name:        "alternating",
		Description: "branch flipping direction every iteration - needs history",
		Build: func(int64) []insts.Instruction {
			return withBackEdge([]insts.Instruction{
				insts.Other(addr(0)),
				insts.Branch(addr(1), addr(3), insts.Cycle(true, false)),
				insts.Other(addr(2)),
				insts.Other(addr(3)),
			}, 30)
		},
	}
}

// 2. Loop nest - a short inner loop inside an outer loop
func loopNest() Workload {
	return Workload{
		Name:        "loop",
		Description: "four-iteration inner loop inside a 20-iteration outer loop",
		Build: func(int64) []insts.Instruction {
			return withBackEdge([]insts.Instruction{
				insts.Other(addr(0)),
				insts.Branch(addr(1), addr(1), insts.Cycle(true, true, true, false)),
				insts.Other(addr(2)),
			}, 20)
		},
	}
}

// 3. Biased - forward branches that always go the same way
func biased() Workload {
	return Workload{
		Name:        "biased",
		Description: "forward branches with fixed random directions, repeated",
		Build: func(seed int64) []insts.Instruction {
			rng := rand.New(rand.NewSource(seed))

			body := make([]insts.Instruction, 0, 24)
			for i := 0; i < 24; i++ {
				pc := addr(i)
				if i%3 == 1 {
					taken := rng.Float64() < 0.5
					body = append(body, insts.Branch(pc, pc+8, insts.Fixed(taken)))
				} else {
					body = append(body, insts.Other(pc))
				}
			}
			return withBackEdge(body, 15)
		},
	}
}

// 4. Random mix - a generated trace without repetition
func randomMix() Workload {
	return Workload{
		Name:        "random-mix",
		Description: "60 generated instructions, 30% branches and 10% loops",
		Build: func(seed int64) []insts.Instruction {
			cfg := loader.DefaultGenConfig()
			cfg.Total = 60

			prog, err := loader.Generate(cfg, rand.New(rand.NewSource(seed)))
			if err != nil {
				panic(err)
			}
			return prog
		},
	}
}

// 5. Nested pattern - two branches with different periods in one loop
func nestedPattern() Workload {
	return Workload{
		Name:        "nested-pattern",
		Description: "inner loop plus a period-3 branch inside an outer loop",
		Build: func(int64) []insts.Instruction {
			return withBackEdge([]insts.Instruction{
				insts.Other(addr(0)),
				insts.Branch(addr(1), addr(1), insts.Cycle(true, true, true, false)),
				insts.Other(addr(2)),
				insts.Branch(addr(3), addr(5), insts.Cycle(true, true, false)),
				insts.Other(addr(4)),
				insts.Other(addr(5)),
			}, 20)
		},
	}
}
