package insts

import (
	"errors"
	"fmt"
)

// InstructionSize is the distance in bytes between consecutive instructions.
const InstructionSize = 4

// ErrInvalidProgram is returned when a program breaks the trace contract.
var ErrInvalidProgram = errors.New("invalid program")

// ValidateProgram checks that the instructions sit at ascending addresses
// exactly one word apart and that every branch can be resolved.
func ValidateProgram(prog []Instruction) error {
	for i, inst := range prog {
		if i > 0 && inst.Address != prog[i-1].Address+InstructionSize {
			return fmt.Errorf("%w: instruction %d at 0x%x does not follow 0x%x",
				ErrInvalidProgram, i, inst.Address, prog[i-1].Address)
		}

		switch inst.Kind {
		case KindOther:
		case KindBranch:
			if inst.Outcome.IsCyclic() && inst.Outcome.Len() == 0 {
				return fmt.Errorf("%w: branch at 0x%x has an empty outcome sequence",
					ErrInvalidProgram, inst.Address)
			}
		default:
			return fmt.Errorf("%w: instruction at 0x%x has unknown kind %d",
				ErrInvalidProgram, inst.Address, inst.Kind)
		}
	}

	return nil
}

// CountBranches returns the number of branch instructions in prog.
func CountBranches(prog []Instruction) int {
	n := 0
	for _, inst := range prog {
		if inst.IsBranch() {
			n++
		}
	}
	return n
}
