package pipeline

import (
	"fmt"
	"log"
	"strings"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bpsim/timing/bpred"
)

// HookPosCycle is triggered at the end of every simulated cycle. Programs
// longer than the snapshot limit skip it.
var HookPosCycle = &sim.HookPos{Name: "PipelineCycle"}

// HookPosRunEnd is triggered once when Run drains the pipeline.
var HookPosRunEnd = &sim.HookPos{Name: "PipelineRunEnd"}

// Snapshot is the observable state of the pipeline at the end of a cycle.
// It is delivered as the Item of a sim.HookCtx.
type Snapshot struct {
	// RunID identifies the run the snapshot belongs to.
	RunID string
	// Cycle is the cycle that just completed.
	Cycle uint64
	// Stages holds the occupant of every stage, nil when empty.
	Stages [NumStages]*Slot
	// Flush reports whether a misprediction flushed the pipeline this cycle.
	Flush bool
	// BTB is the textual dump of the branch target buffer.
	BTB string
	// Predictor is the live predictor. Observers must not mutate it.
	Predictor bpred.Predictor
	// PredictorState is the predictor's state dump at snapshot time.
	PredictorState string
	// Stats are the running statistics.
	Stats Stats
}

// String renders the snapshot on one line.
func (s *Snapshot) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "cycle %d", s.Cycle)
	for i, slot := range s.Stages {
		fmt.Fprintf(&sb, " | %s: %s", Stage(i), slot)
	}
	if s.Flush {
		sb.WriteString(" | FLUSH")
	}
	fmt.Fprintf(&sb, " | acc %.2f%%", s.Stats.Accuracy()*100)

	return sb.String()
}

// SnapshotOf extracts the snapshot carried by a hook context.
func SnapshotOf(ctx sim.HookCtx) (*Snapshot, bool) {
	s, ok := ctx.Item.(*Snapshot)
	return s, ok
}

// HookFunc adapts a function to the sim.Hook interface.
type HookFunc func(ctx sim.HookCtx)

// Func calls f(ctx).
func (f HookFunc) Func(ctx sim.HookCtx) {
	f(ctx)
}

// LogHook writes one line per snapshot to a logger.
type LogHook struct {
	sim.LogHookBase

	// Verbose adds the BTB and predictor dumps to every line.
	Verbose bool
}

// NewLogHook creates a LogHook that writes to logger.
func NewLogHook(logger *log.Logger) *LogHook {
	h := new(LogHook)
	h.Logger = logger
	return h
}

// Func logs the snapshot carried by ctx.
func (h *LogHook) Func(ctx sim.HookCtx) {
	s, ok := SnapshotOf(ctx)
	if !ok {
		return
	}

	if ctx.Pos == HookPosRunEnd {
		h.Printf("run %s done: %s", s.RunID, s.Stats)
		return
	}

	if h.Verbose {
		h.Printf("%s | BTB %s | %s", s, s.BTB, s.PredictorState)
		return
	}
	h.Print(s)
}
