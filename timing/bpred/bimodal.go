package bpred

import (
	"fmt"
	"strings"
)

// Counter range of the 2-bit tables.
const (
	twoBitMax  = 3
	twoBitInit = 2
)

// Bimodal predicts each branch from a 2-bit saturating counter selected by
// its address. Branches that map to the same entry share the counter.
type Bimodal struct {
	bht *CounterTable
}

// NewBimodal creates a bimodal predictor with size counters.
func NewBimodal(size int) (*Bimodal, error) {
	if size <= 0 {
		return nil, invalid("bimodal table size must be > 0, got %d", size)
	}

	return &Bimodal{
		bht: newCounterTable(size, twoBitMax, twoBitInit),
	}, nil
}

// Name returns "bimodal".
func (b *Bimodal) Name() string {
	return NameBimodal
}

func (b *Bimodal) index(pc uint64) int {
	return int((pc >> 2) % uint64(b.bht.Len()))
}

// Predict returns taken if the selected counter is 2 or 3.
func (b *Bimodal) Predict(pc uint64) Prediction {
	idx := b.index(pc)
	return Prediction{Taken: b.bht.Taken(idx), Index: idx}
}

// Update moves the selected counter toward the outcome.
func (b *Bimodal) Update(pc uint64, taken bool) {
	b.bht.Train(b.index(pc), taken)
}

// ResetHistory is a no-op; the bimodal predictor keeps no history.
func (b *Bimodal) ResetHistory() {}

// ResetTables sets every counter back to 2.
func (b *Bimodal) ResetTables() {
	b.bht.Reset()
}

// Counters returns a copy of the branch history table.
func (b *Bimodal) Counters() []uint8 {
	return b.bht.Values()
}

// Counter returns the counter that pc maps to.
func (b *Bimodal) Counter(pc uint64) uint8 {
	return b.bht.Get(b.index(pc))
}

// String lists every counter as "index:value".
func (b *Bimodal) String() string {
	var sb strings.Builder
	sb.WriteString("BHT")
	for i, c := range b.bht.counters {
		fmt.Fprintf(&sb, " %d:%d", i, c)
	}
	return sb.String()
}
