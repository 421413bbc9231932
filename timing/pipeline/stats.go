package pipeline

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
)

// Stats holds running pipeline statistics.
type Stats struct {
	// Cycles is the number of cycles simulated.
	Cycles uint64
	// Mispredictions is the number of branches resolved against their
	// prediction.
	Mispredictions uint64
	// Correct is the number of branches resolved as predicted.
	Correct uint64
	// Fetched is the number of instructions fetched, squashed ones included.
	Fetched uint64
	// Retired is the number of instructions that reached writeback.
	Retired uint64
	// Squashed is the number of fetched instructions discarded by a flush.
	Squashed uint64
	// Flushes is the number of pipeline flushes.
	Flushes uint64
	// BTBHits counts predicted-taken fetches whose target was in the BTB.
	BTBHits uint64
	// BTBMisses counts predicted-taken fetches that used the declared target.
	BTBMisses uint64
}

// Resolved returns the number of branches resolved so far.
func (s Stats) Resolved() uint64 {
	return s.Correct + s.Mispredictions
}

// Accuracy returns the fraction of resolved branches that were predicted
// correctly, or 0 when none has resolved.
func (s Stats) Accuracy() float64 {
	if s.Resolved() == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Resolved())
}

// MispredictionRate returns the fraction of resolved branches that were
// mispredicted.
func (s Stats) MispredictionRate() float64 {
	if s.Resolved() == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.Resolved())
}

// BTBHitRate returns the fraction of BTB lookups that hit.
func (s Stats) BTBHitRate() float64 {
	total := s.BTBHits + s.BTBMisses
	if total == 0 {
		return 0
	}
	return float64(s.BTBHits) / float64(total)
}

// SimulatedTime converts the cycle count to time at the given frequency.
func (s Stats) SimulatedTime(freq sim.Freq) sim.VTimeInSec {
	return sim.VTimeInSec(float64(s.Cycles)) * freq.Period()
}

// String summarizes the branch statistics.
func (s Stats) String() string {
	return fmt.Sprintf("cycles=%d correct=%d mispredicted=%d accuracy=%.2f%%",
		s.Cycles, s.Correct, s.Mispredictions, s.Accuracy()*100)
}
