// Package pipeline provides the five-stage pipeline that drives a branch
// predictor.
package pipeline

import (
	"fmt"

	"github.com/sarchlab/bpsim/insts"
)

// Stage identifies one of the five pipeline stages.
type Stage int

// Pipeline stages, oldest instruction last.
const (
	StageFetch Stage = iota
	StageDecode
	StageExecute
	StageMemory
	StageWriteback

	// NumStages is the pipeline depth.
	NumStages = 5
)

var stageNames = [NumStages]string{"IF", "ID", "EX", "MEM", "WB"}

// String returns the short stage name, such as "IF".
func (s Stage) String() string {
	if s < 0 || int(s) >= NumStages {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// Slot is one dynamic instance of an instruction travelling through the
// pipeline. Slots are not modified once they have been placed in a stage;
// resolving a branch produces a new slot.
type Slot struct {
	// Inst is the static instruction.
	Inst insts.Instruction

	// Seq numbers fetched instructions from 1 in fetch order.
	Seq uint64

	// Predicted is the direction guessed at fetch. Always false for
	// non-branch instructions.
	Predicted bool

	// PredIndex is the predictor table entry that produced the guess.
	PredIndex int

	// BTBHit reports whether a predicted-taken branch found its target in
	// the BTB.
	BTBHit bool

	// NextPC is the address fetch continued from after this instruction.
	NextPC uint64

	// Resolved is set once a branch has computed its actual direction.
	Resolved bool

	// Taken is the actual direction of a resolved branch.
	Taken bool

	// Mispredicted is set when a resolved branch went the other way.
	Mispredicted bool
}

// String renders the slot compactly, for example "branch@0x104 P=T A=N ✗".
func (s *Slot) String() string {
	if s == nil {
		return "-"
	}
	if !s.Inst.IsBranch() {
		return s.Inst.String()
	}

	str := fmt.Sprintf("%s P=%s", s.Inst, direction(s.Predicted))
	if s.Resolved {
		str += fmt.Sprintf(" A=%s", direction(s.Taken))
		if s.Mispredicted {
			str += " ✗"
		}
	}
	return str
}

func direction(taken bool) string {
	if taken {
		return "T"
	}
	return "N"
}
