package bpred

import (
	"fmt"
	"strings"
)

// maxIndexBits bounds the pattern table at 2^30 counters.
const maxIndexBits = 30

// Correlated is a gshare predictor. The global history register is XORed
// with the branch address to select a 2-bit counter in the pattern history
// table.
type Correlated struct {
	historyBits int
	indexBits   int

	ghr *BitHistory
	pht *CounterTable
}

// NewCorrelated creates a gshare predictor with historyBits of global
// history and a pattern table of 2^indexBits counters.
func NewCorrelated(historyBits, indexBits int) (*Correlated, error) {
	if historyBits <= 0 {
		return nil, invalid("history length must be > 0, got %d", historyBits)
	}
	if indexBits <= 0 || indexBits > maxIndexBits {
		return nil, invalid("index width must be in [1, %d], got %d",
			maxIndexBits, indexBits)
	}

	return &Correlated{
		historyBits: historyBits,
		indexBits:   indexBits,
		ghr:         newBitHistory(historyBits),
		pht:         newCounterTable(1<<indexBits, twoBitMax, twoBitInit),
	}, nil
}

// Name returns "correlated".
func (c *Correlated) Name() string {
	return NameCorrelated
}

func (c *Correlated) index(pc uint64) int {
	mask := uint64(c.pht.Len() - 1)
	pcPart := (pc >> 2) & mask
	histPart := c.ghr.Low(c.indexBits) & mask
	return int(pcPart ^ histPart)
}

// Predict returns taken if the selected counter is 2 or 3.
func (c *Correlated) Predict(pc uint64) Prediction {
	idx := c.index(pc)
	return Prediction{Taken: c.pht.Taken(idx), Index: idx}
}

// Update trains the selected counter, then shifts the resolved outcome into
// the global history.
func (c *Correlated) Update(pc uint64, taken bool) {
	c.pht.Train(c.index(pc), taken)
	c.ghr.Push(taken)
}

// ResetHistory clears the global history register.
func (c *Correlated) ResetHistory() {
	c.ghr.Reset()
}

// ResetTables sets every pattern counter back to 2.
func (c *Correlated) ResetTables() {
	c.pht.Reset()
}

// HistoryBits returns the length of the global history register.
func (c *Correlated) HistoryBits() int {
	return c.historyBits
}

// IndexBits returns the width of the pattern table index.
func (c *Correlated) IndexBits() int {
	return c.indexBits
}

// History returns the low 64 bits of the global history register.
func (c *Correlated) History() uint64 {
	return c.ghr.Low(c.historyBits)
}

// Counter returns pattern table entry i.
func (c *Correlated) Counter(i int) uint8 {
	return c.pht.Get(i)
}

// Counters returns a copy of the pattern history table.
func (c *Correlated) Counters() []uint8 {
	return c.pht.Values()
}

// String shows the global history and every pattern entry that has left
// its initial value.
func (c *Correlated) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "GHR %s PHT", c.ghr)
	for i, v := range c.pht.counters {
		if v != twoBitInit {
			fmt.Fprintf(&sb, " %d:%d", i, v)
		}
	}
	return sb.String()
}
