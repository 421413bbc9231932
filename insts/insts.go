// Package insts provides the instruction model consumed by the pipeline.
//
// A program is an ordered list of instructions laid out at consecutive
// word-aligned addresses. Only two kinds of instructions exist: branches,
// whose direction the predictors try to guess, and everything else, which
// simply flows through the pipeline.
//
// Usage:
//
//	prog := []insts.Instruction{
//		insts.Other(0x100),
//		insts.Branch(0x104, 0x10c, insts.Fixed(true)),
//		insts.Branch(0x108, 0x108, insts.Cycle(true, true, true, false)),
//	}
//	if err := insts.ValidateProgram(prog); err != nil { ... }
package insts

import (
	"fmt"
	"strings"
)

// Kind tells whether an instruction is a branch.
type Kind uint8

// Instruction kinds.
const (
	KindOther Kind = iota
	KindBranch
)

// String returns the lower-case kind name used in traces.
func (k Kind) String() string {
	switch k {
	case KindOther:
		return "other"
	case KindBranch:
		return "branch"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind converts a trace kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "other":
		return KindOther, nil
	case "branch":
		return KindBranch, nil
	default:
		return KindOther, fmt.Errorf("unknown instruction kind %q", s)
	}
}

// Outcome is the resolved direction of a branch. It is either a fixed
// direction or a finite sequence that repeats, one element per resolution.
type Outcome struct {
	fixed  bool
	cyclic bool
	seq    []bool
}

// Fixed returns an outcome that always resolves to taken.
func Fixed(taken bool) Outcome {
	return Outcome{fixed: taken}
}

// Cycle returns an outcome that walks through seq, wrapping around.
// An empty seq yields an invalid outcome that ValidateProgram rejects.
func Cycle(seq ...bool) Outcome {
	s := make([]bool, len(seq))
	copy(s, seq)
	return Outcome{cyclic: true, seq: s}
}

// IsCyclic returns true if the outcome was built by Cycle.
func (o Outcome) IsCyclic() bool {
	return o.cyclic
}

// Len returns the period of the outcome. A fixed outcome has period 1.
func (o Outcome) Len() int {
	if !o.cyclic {
		return 1
	}
	return len(o.seq)
}

// Sequence returns a copy of the cyclic sequence, or nil for a fixed outcome.
func (o Outcome) Sequence() []bool {
	if !o.cyclic {
		return nil
	}
	return append([]bool(nil), o.seq...)
}

// At returns the direction of the n-th resolution (counting from 0).
func (o Outcome) At(n uint64) bool {
	if !o.cyclic {
		return o.fixed
	}
	if len(o.seq) == 0 {
		panic("insts: cyclic outcome has no elements")
	}
	return o.seq[n%uint64(len(o.seq))]
}

// String renders the outcome as in the trace listing, e.g. "true,true,false".
func (o Outcome) String() string {
	if !o.cyclic {
		return fmt.Sprintf("%t", o.fixed)
	}
	parts := make([]string, len(o.seq))
	for i, b := range o.seq {
		parts[i] = fmt.Sprintf("%t", b)
	}
	return strings.Join(parts, ",")
}

// Instruction is one static instruction of a trace.
type Instruction struct {
	// Address is the word-aligned address of the instruction.
	Address uint64
	// Kind tells whether the instruction is a branch.
	Kind Kind
	// Target is where a taken branch goes. Unused for other instructions.
	Target uint64
	// Outcome is the actual direction of a branch. Unused for other
	// instructions.
	Outcome Outcome
}

// Other creates a non-branch instruction.
func Other(addr uint64) Instruction {
	return Instruction{Address: addr, Kind: KindOther}
}

// Branch creates a conditional branch.
func Branch(addr, target uint64, outcome Outcome) Instruction {
	return Instruction{
		Address: addr,
		Kind:    KindBranch,
		Target:  target,
		Outcome: outcome,
	}
}

// IsBranch returns true for branch instructions.
func (i Instruction) IsBranch() bool {
	return i.Kind == KindBranch
}

// FallThrough returns the address of the next sequential instruction.
func (i Instruction) FallThrough() uint64 {
	return i.Address + InstructionSize
}

// String returns the short form shown in pipeline stage slots, such as
// "branch@0x104".
func (i Instruction) String() string {
	return fmt.Sprintf("%s@0x%x", i.Kind, i.Address)
}

// Describe returns the long form used in trace listings.
func (i Instruction) Describe() string {
	if !i.IsBranch() {
		return fmt.Sprintf("0x%x: OTHER", i.Address)
	}
	return fmt.Sprintf("0x%x: BRANCH -> 0x%x, taken=%s",
		i.Address, i.Target, i.Outcome)
}
