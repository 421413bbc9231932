package pipeline

import (
	"fmt"
	"strings"
)

// BTB is a branch target buffer. It maps a branch address to the target the
// branch jumped to the last time it was taken. It has no capacity limit and
// the latest write wins.
type BTB struct {
	targets map[uint64]uint64
	order   []uint64
}

// NewBTB creates an empty branch target buffer.
func NewBTB() *BTB {
	return &BTB{targets: make(map[uint64]uint64)}
}

// Get returns the recorded target of the branch at pc.
func (b *BTB) Get(pc uint64) (uint64, bool) {
	target, ok := b.targets[pc]
	return target, ok
}

// Set records target for the branch at pc.
func (b *BTB) Set(pc, target uint64) {
	if _, ok := b.targets[pc]; !ok {
		b.order = append(b.order, pc)
	}
	b.targets[pc] = target
}

// Len returns the number of branches with a recorded target.
func (b *BTB) Len() int {
	return len(b.targets)
}

// Clear removes every entry.
func (b *BTB) Clear() {
	b.targets = make(map[uint64]uint64)
	b.order = nil
}

// String lists the entries in the order they were first recorded.
func (b *BTB) String() string {
	if len(b.order) == 0 {
		return "empty"
	}

	entries := make([]string, 0, len(b.order))
	for _, pc := range b.order {
		entries = append(entries, fmt.Sprintf("0x%x→0x%x", pc, b.targets[pc]))
	}
	return strings.Join(entries, " ")
}
