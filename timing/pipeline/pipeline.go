package pipeline

import (
	"errors"
	"fmt"

	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bpsim/insts"
	"github.com/sarchlab/bpsim/timing/bpred"
)

// Defaults for the pipeline options.
const (
	DefaultSnapshotLimit = 200
	DefaultMaxCycles     = 1_000_000
	DefaultClock         = 1 * sim.GHz
)

var (
	// ErrNoPredictor is returned when stepping a pipeline without a
	// predictor.
	ErrNoPredictor = errors.New("pipeline has no predictor")

	// ErrNoProgram is returned when stepping a pipeline without a program,
	// or when loading an empty one.
	ErrNoProgram = errors.New("pipeline has no program")

	// ErrCycleLimit is returned by Run when the program does not drain
	// within the configured number of cycles.
	ErrCycleLimit = errors.New("cycle limit reached")
)

// ResetMode selects what Reset restores.
type ResetMode int

const (
	// ResetKeepTables clears predictor history but keeps learned tables and
	// the BTB, so a rerun continues learning.
	ResetKeepTables ResetMode = iota

	// ResetClearTables also restores predictor tables and empties the BTB.
	ResetClearTables
)

// String returns "keep-tables" or "clear-tables".
func (m ResetMode) String() string {
	if m == ResetClearTables {
		return "clear-tables"
	}
	return "keep-tables"
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithBTB makes the pipeline use btb instead of a fresh one.
func WithBTB(btb *BTB) PipelineOption {
	return func(p *Pipeline) {
		p.btb = btb
	}
}

// WithSnapshotLimit sets the program length above which per-cycle
// snapshots are skipped. A limit <= 0 never skips.
func WithSnapshotLimit(limit int) PipelineOption {
	return func(p *Pipeline) {
		p.snapshotLimit = limit
	}
}

// WithMaxCycles bounds Run. Zero removes the bound.
func WithMaxCycles(n uint64) PipelineOption {
	return func(p *Pipeline) {
		p.maxCycles = n
	}
}

// WithClock sets the frequency used to convert cycles to simulated time.
func WithClock(freq sim.Freq) PipelineOption {
	return func(p *Pipeline) {
		p.freq = freq
	}
}

// WithResetMode selects what Reset restores.
func WithResetMode(mode ResetMode) PipelineOption {
	return func(p *Pipeline) {
		p.resetMode = mode
	}
}

// Pipeline is a five-stage in-order pipeline (IF→ID→EX→MEM→WB) that fetches
// along the path chosen by a branch predictor and flushes on
// mispredictions. It owns its predictor and BTB.
type Pipeline struct {
	*sim.HookableBase

	runID string

	pred bpred.Predictor
	btb  *BTB

	prog        []insts.Instruction
	index       map[uint64]int
	occurrences []uint64

	pc      uint64
	stages  [NumStages]*Slot
	flushed bool
	seq     uint64
	stats   Stats

	snapshotLimit int
	maxCycles     uint64
	freq          sim.Freq
	resetMode     ResetMode
}

// NewPipeline creates a pipeline driven by pred.
func NewPipeline(pred bpred.Predictor, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		HookableBase:  sim.NewHookableBase(),
		runID:         xid.New().String(),
		pred:          pred,
		btb:           NewBTB(),
		snapshotLimit: DefaultSnapshotLimit,
		maxCycles:     DefaultMaxCycles,
		freq:          DefaultClock,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// LoadProgram validates prog and makes it the program to run. Run state is
// cleared; the predictor and BTB are left untouched.
func (p *Pipeline) LoadProgram(prog []insts.Instruction) error {
	if len(prog) == 0 {
		return ErrNoProgram
	}
	if err := insts.ValidateProgram(prog); err != nil {
		return err
	}

	p.prog = append([]insts.Instruction(nil), prog...)
	p.index = make(map[uint64]int, len(prog))
	for i, inst := range p.prog {
		p.index[inst.Address] = i
	}
	p.occurrences = make([]uint64, len(prog))
	p.clear()

	return nil
}

func (p *Pipeline) ready() error {
	if p.pred == nil {
		return ErrNoPredictor
	}
	if len(p.prog) == 0 {
		return ErrNoProgram
	}
	return nil
}

// Step simulates one cycle.
func (p *Pipeline) Step() error {
	if err := p.ready(); err != nil {
		return err
	}

	p.stats.Cycles++

	p.stages[StageWriteback] = p.stages[StageMemory]
	p.stages[StageMemory] = p.stages[StageExecute]
	if p.stages[StageWriteback] != nil {
		p.stats.Retired++
	}

	flush := false
	executing := p.stages[StageDecode]
	if executing != nil && executing.Inst.IsBranch() {
		executing, flush = p.resolve(executing)
	}
	p.stages[StageExecute] = executing

	if flush {
		if p.stages[StageFetch] != nil {
			p.stats.Squashed++
		}
		p.stats.Flushes++
		p.stages[StageDecode] = nil
		p.stages[StageFetch] = nil
	} else {
		p.stages[StageDecode] = p.stages[StageFetch]
		p.stages[StageFetch] = p.fetch()
	}
	p.flushed = flush

	if p.snapshotLimit <= 0 || len(p.prog) <= p.snapshotLimit {
		p.emit(HookPosCycle)
	}

	return nil
}

// resolve computes the actual direction of a branch, trains the predictor
// and redirects fetch when the prediction was wrong.
func (p *Pipeline) resolve(s *Slot) (*Slot, bool) {
	inst := s.Inst

	i := p.index[inst.Address]
	taken := inst.Outcome.At(p.occurrences[i])
	p.occurrences[i]++

	r := *s
	r.Resolved = true
	r.Taken = taken

	flush := false
	if r.Predicted != taken {
		r.Mispredicted = true
		p.stats.Mispredictions++
		if taken {
			p.pc = inst.Target
		} else {
			p.pc = inst.FallThrough()
		}
		flush = true
	} else {
		p.stats.Correct++
	}

	p.pred.Update(inst.Address, taken)
	if taken {
		p.btb.Set(inst.Address, inst.Target)
	}

	return &r, flush
}

// fetch reads the instruction at the program counter and moves the counter
// along the predicted path.
func (p *Pipeline) fetch() *Slot {
	i, ok := p.index[p.pc]
	if !ok {
		return nil
	}

	inst := p.prog[i]
	p.seq++
	p.stats.Fetched++
	s := &Slot{Inst: inst, Seq: p.seq}

	next := inst.FallThrough()
	if inst.IsBranch() {
		pred := p.pred.Predict(inst.Address)
		s.Predicted = pred.Taken
		s.PredIndex = pred.Index

		if pred.Taken {
			target, hit := p.btb.Get(inst.Address)
			if hit {
				p.stats.BTBHits++
			} else {
				p.stats.BTBMisses++
				target = inst.Target
			}
			s.BTBHit = hit
			next = target
		}
	}

	p.pc = next
	s.NextPC = next

	return s
}

// Drained reports whether the program has fully passed through the
// pipeline. The writeback occupant retires within its cycle and does not
// keep the pipeline busy.
func (p *Pipeline) Drained() bool {
	if p.InFlight() > 0 {
		return false
	}
	_, ok := p.index[p.pc]
	return !ok
}

// InFlight returns the number of instructions in the fetch to memory
// stages.
func (p *Pipeline) InFlight() int {
	n := 0
	for _, s := range p.stages[:StageWriteback] {
		if s != nil {
			n++
		}
	}
	return n
}

// Run steps the pipeline until the program drains, then triggers
// HookPosRunEnd with the final snapshot.
func (p *Pipeline) Run() error {
	if err := p.ready(); err != nil {
		return err
	}

	for !p.Drained() {
		if p.maxCycles > 0 && p.stats.Cycles >= p.maxCycles {
			return fmt.Errorf("%w: %d cycles", ErrCycleLimit, p.maxCycles)
		}
		if err := p.Step(); err != nil {
			return err
		}
	}

	p.emit(HookPosRunEnd)

	return nil
}

// Reset starts a new run on the same program. Predictor history is always
// cleared; tables and the BTB are cleared only in ResetClearTables mode.
func (p *Pipeline) Reset() {
	p.clear()
	p.runID = xid.New().String()

	if p.pred == nil {
		return
	}

	p.pred.ResetHistory()
	if p.resetMode == ResetClearTables {
		p.pred.ResetTables()
		p.btb.Clear()
	}
}

func (p *Pipeline) clear() {
	p.stages = [NumStages]*Slot{}
	p.flushed = false
	p.seq = 0
	p.stats = Stats{}
	for i := range p.occurrences {
		p.occurrences[i] = 0
	}
	if len(p.prog) > 0 {
		p.pc = p.prog[0].Address
	}
}

func (p *Pipeline) emit(pos *sim.HookPos) {
	if len(p.Hooks()) == 0 {
		return
	}

	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    pos,
		Item:   p.Snapshot(),
	})
}

// Snapshot captures the current state.
func (p *Pipeline) Snapshot() *Snapshot {
	s := &Snapshot{
		RunID:  p.runID,
		Cycle:  p.stats.Cycles,
		Stages: p.stages,
		Flush:  p.flushed,
		BTB:    p.btb.String(),
		Stats:  p.stats,
	}
	if p.pred != nil {
		s.Predictor = p.pred
		s.PredictorState = p.pred.String()
	}
	return s
}

// RunID returns the identifier of the current run.
func (p *Pipeline) RunID() string {
	return p.runID
}

// PC returns the program counter.
func (p *Pipeline) PC() uint64 {
	return p.pc
}

// Slot returns the occupant of stage s, or nil.
func (p *Pipeline) Slot(s Stage) *Slot {
	return p.stages[s]
}

// Flushed reports whether the last cycle flushed the pipeline.
func (p *Pipeline) Flushed() bool {
	return p.flushed
}

// Stats returns the running statistics.
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// SimulatedTime returns the elapsed simulated time at the pipeline clock.
func (p *Pipeline) SimulatedTime() sim.VTimeInSec {
	return p.stats.SimulatedTime(p.freq)
}

// Predictor returns the predictor driving the pipeline.
func (p *Pipeline) Predictor() bpred.Predictor {
	return p.pred
}

// BTB returns the branch target buffer.
func (p *Pipeline) BTB() *BTB {
	return p.btb
}

// ProgramLen returns the number of static instructions loaded.
func (p *Pipeline) ProgramLen() int {
	return len(p.prog)
}

// ResetMode returns the configured reset mode.
func (p *Pipeline) ResetMode() ResetMode {
	return p.resetMode
}
