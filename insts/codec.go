package insts

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes a fixed outcome as a bool and a cyclic one as an array.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if !o.cyclic {
		return json.Marshal(o.fixed)
	}
	return json.Marshal(o.seq)
}

// UnmarshalJSON accepts either a bool or an array of bools.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var seq []bool
		if err := json.Unmarshal(data, &seq); err != nil {
			return fmt.Errorf("failed to parse outcome sequence: %w", err)
		}
		if len(seq) == 0 {
			return fmt.Errorf("outcome sequence must not be empty")
		}
		*o = Cycle(seq...)
		return nil
	}

	var fixed bool
	if err := json.Unmarshal(data, &fixed); err != nil {
		return fmt.Errorf("failed to parse outcome: %w", err)
	}
	*o = Fixed(fixed)
	return nil
}

// record is the on-disk form of an instruction.
type record struct {
	PC     uint64   `json:"pc"`
	Type   string   `json:"type"`
	Target uint64   `json:"target,omitempty"`
	Taken  *Outcome `json:"taken,omitempty"`
}

// MarshalJSON encodes the instruction as a trace record.
func (i Instruction) MarshalJSON() ([]byte, error) {
	r := record{PC: i.Address, Type: i.Kind.String()}
	if i.IsBranch() {
		outcome := i.Outcome
		r.Target = i.Target
		r.Taken = &outcome
	}
	return json.Marshal(r)
}

// UnmarshalJSON decodes a trace record.
func (i *Instruction) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}

	kind, err := ParseKind(r.Type)
	if err != nil {
		return err
	}

	if kind == KindOther {
		*i = Other(r.PC)
		return nil
	}

	if r.Taken == nil {
		return fmt.Errorf("branch at 0x%x has no outcome", r.PC)
	}
	*i = Branch(r.PC, r.Target, *r.Taken)
	return nil
}
