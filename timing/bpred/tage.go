package bpred

import (
	"fmt"
	"math/rand"
)

// TAGE geometry and counter ranges.
const (
	tageNumTables = 16

	tageBimodalBits = 13

	tageCounterMax   = 7
	tageWeakTaken    = 4
	tageWeakNotTaken = 3
	tageUsefulMax    = 3

	tageAltBetterMax  = 15
	tageAltBetterInit = 8

	tageHistoryBits = 512
	tagePathBits    = 16
	tageClockBits   = 20
)

// Per-table parameters. Table i uses tageHistoryLengths[tageNumTables-1-i],
// so table 0 sees the longest history.
var (
	tageHistoryLengths = [tageNumTables]int{
		2, 3, 8, 12, 17, 33, 35, 67, 97, 138, 195, 330, 517, 1193, 1741, 1930,
	}
	tageIndexBits = [tageNumTables]int{
		9, 9, 10, 10, 10, 10, 11, 11, 11, 11, 12, 12, 11, 11, 10, 10,
	}
	tageTagBits = [tageNumTables]int{
		16, 15, 14, 14, 13, 13, 12, 12, 11, 10, 9, 9, 9, 8, 8, 7,
	}
)

// TAGEEntry is one entry of a tagged table.
type TAGEEntry struct {
	// Counter is the 3-bit prediction counter; taken when >= 4.
	Counter uint8
	// Tag identifies the branch and history the entry belongs to.
	Tag uint32
	// Useful is the 2-bit usefulness counter.
	Useful uint8
}

func (e *TAGEEntry) weak() bool {
	return e.Counter == tageWeakTaken || e.Counter == tageWeakNotTaken
}

func (e *TAGEEntry) taken() bool {
	return e.Counter >= tageWeakTaken
}

// tageLookup is what Predict found, kept for the following Update.
type tageLookup struct {
	valid bool
	pc    uint64

	bimodalIndex int
	indices      [tageNumTables]int
	tags         [tageNumTables]uint32

	// provider and alt are table numbers; tageNumTables means none.
	provider int
	alt      int

	providerPred bool
	altPred      bool
	final        bool

	// providerWeakUnused records the provider entry's state before training.
	providerWeakUnused bool
}

// TAGE is a tagged geometric history length predictor backed by a bimodal
// table.
type TAGE struct {
	ghr *BitHistory
	phr uint32

	tables   [tageNumTables][]TAGEEntry
	histLens [tageNumTables]int
	bimodal  *CounterTable

	csrIndex [tageNumTables]foldedHistory
	csrTag   [2][tageNumTables]foldedHistory

	last tageLookup

	altBetter   uint8
	clock       uint32
	clockPeriod uint32
	clockState  uint8

	tableAccesses   [tageNumTables]uint64
	bimodalAccesses uint64

	seed    int64
	ownRand bool
	rng     RandSource
}

// TAGEOption configures a TAGE predictor.
type TAGEOption func(*TAGE)

// WithSeed seeds the generator used for entry allocation.
func WithSeed(seed int64) TAGEOption {
	return func(t *TAGE) {
		t.seed = seed
		t.ownRand = true
		t.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRandSource makes entry allocation draw from src. ResetTables does not
// rewind an injected source.
func WithRandSource(src RandSource) TAGEOption {
	return func(t *TAGE) {
		t.ownRand = false
		t.rng = src
	}
}

// NewTAGE creates a TAGE predictor. Without options, allocation draws from a
// generator seeded with 1.
func NewTAGE(opts ...TAGEOption) *TAGE {
	t := &TAGE{
		ghr:         newBitHistory(tageHistoryBits),
		bimodal:     newCounterTable(1<<tageBimodalBits, twoBitMax, twoBitInit),
		clockPeriod: 1 << tageClockBits,
	}
	WithSeed(1)(t)

	for i := 0; i < tageNumTables; i++ {
		t.tables[i] = make([]TAGEEntry, 1<<tageIndexBits[i])
		t.histLens[i] = tageHistoryLengths[tageNumTables-1-i]

		t.csrIndex[i] = newFoldedHistory(t.histLens[i], tageIndexBits[i])
		t.csrTag[0][i] = newFoldedHistory(t.histLens[i], tageTagBits[i])
		t.csrTag[1][i] = newFoldedHistory(t.histLens[i], tageTagBits[i]-1)
	}

	for _, opt := range opts {
		opt(t)
	}

	t.resetCounters()

	return t
}

// Name returns "tage".
func (t *TAGE) Name() string {
	return NameTAGE
}

func (t *TAGE) lookup(pc uint64) {
	l := &t.last
	*l = tageLookup{
		valid:        true,
		pc:           pc,
		bimodalIndex: int((pc >> 2) % uint64(t.bimodal.Len())),
		provider:     tageNumTables,
		alt:          tageNumTables,
	}

	for i := 0; i < tageNumTables; i++ {
		tagMask := uint64(1)<<tageTagBits[i] - 1
		shifted := uint64(t.csrTag[1][i].val) << 1 & tagMask
		l.tags[i] = uint32((pc ^ uint64(t.csrTag[0][i].val) ^ shifted) & tagMask)

		idxBits := tageIndexBits[i]
		idxMask := uint64(1)<<idxBits - 1
		l.indices[i] = int((pc ^ pc>>idxBits ^ uint64(t.csrIndex[i].val) ^
			uint64(t.phr)) & idxMask)
	}

	for i := 0; i < tageNumTables; i++ {
		if t.tables[i][l.indices[i]].Tag == l.tags[i] {
			l.provider = i
			break
		}
	}

	for i := l.provider + 1; i < tageNumTables; i++ {
		if t.tables[i][l.indices[i]].Tag == l.tags[i] {
			l.alt = i
			break
		}
	}

	bimodalPred := t.bimodal.Taken(l.bimodalIndex)
	if l.provider == tageNumTables {
		l.providerPred = bimodalPred
		l.altPred = bimodalPred
		l.final = bimodalPred
		return
	}

	entry := &t.tables[l.provider][l.indices[l.provider]]
	l.providerPred = entry.taken()
	if l.alt == tageNumTables {
		l.altPred = bimodalPred
	} else {
		l.altPred = t.tables[l.alt][l.indices[l.alt]].taken()
	}

	l.providerWeakUnused = entry.weak() && entry.Useful == 0
	if l.providerWeakUnused && t.altBetter >= tageAltBetterInit {
		l.final = l.altPred
	} else {
		l.final = l.providerPred
	}
}

// Predict looks up all tagged tables. The longest-history table whose tag
// matches provides the prediction unless its entry is newly allocated and
// alternate predictions have recently been more reliable.
func (t *TAGE) Predict(pc uint64) Prediction {
	t.lookup(pc)

	idx := t.last.bimodalIndex
	if t.last.provider < tageNumTables {
		idx = t.last.indices[t.last.provider]
		t.tableAccesses[t.last.provider]++
	} else {
		t.bimodalAccesses++
	}

	return Prediction{Taken: t.last.final, Index: idx}
}

// Update trains the predictor with the resolved direction of the branch at
// pc and advances all histories.
func (t *TAGE) Update(pc uint64, taken bool) {
	if !t.last.valid || t.last.pc != pc {
		t.lookup(pc)
	}
	l := &t.last

	t.trainCounters(taken)
	t.trainAltBetter(taken)
	t.allocate(taken)
	t.trainUseful(taken)
	t.tickClock()
	t.updateHistories(pc, taken)

	l.valid = false
}

func (t *TAGE) trainCounters(taken bool) {
	l := &t.last
	if l.provider == tageNumTables {
		t.bimodal.Train(l.bimodalIndex, taken)
		return
	}

	entry := &t.tables[l.provider][l.indices[l.provider]]
	entry.Counter = trainCounter(entry.Counter, tageCounterMax, taken)

	if l.alt != tageNumTables && l.final != taken && entry.Useful == 0 {
		alt := &t.tables[l.alt][l.indices[l.alt]]
		alt.Counter = trainCounter(alt.Counter, tageCounterMax, taken)
	}
}

func (t *TAGE) trainAltBetter(taken bool) {
	l := &t.last
	if l.provider == tageNumTables || !l.providerWeakUnused {
		return
	}
	if l.providerPred == l.altPred {
		return
	}

	if l.altPred == taken {
		t.altBetter = satInc(t.altBetter, tageAltBetterMax)
	} else {
		t.altBetter = satDec(t.altBetter)
	}
}

// allocate claims an entry in a longer-history table after a
// misprediction. When every candidate is useful, all of them age instead.
// A miss in every table counts as provider 16, so all tables are candidates.
func (t *TAGE) allocate(taken bool) {
	l := &t.last
	if l.final == taken || l.provider == 0 {
		return
	}

	free := false
	for i := 0; i < l.provider; i++ {
		if t.tables[i][l.indices[i]].Useful == 0 {
			free = true
			break
		}
	}

	if !free {
		for i := l.provider - 1; i >= 0; i-- {
			e := &t.tables[i][l.indices[i]]
			e.Useful = satDec(e.Useful)
		}
		return
	}

	for i := l.provider - 1; i >= 0; i-- {
		e := &t.tables[i][l.indices[i]]
		if e.Useful != 0 || t.rng.Float64() >= 0.5 {
			continue
		}

		e.Counter = tageWeakNotTaken
		if taken {
			e.Counter = tageWeakTaken
		}
		e.Tag = l.tags[i]
		e.Useful = 0
		break
	}
}

func (t *TAGE) trainUseful(taken bool) {
	l := &t.last
	if l.provider == tageNumTables || l.providerPred == l.altPred {
		return
	}

	e := &t.tables[l.provider][l.indices[l.provider]]
	if l.providerPred == taken {
		e.Useful = satInc(e.Useful, tageUsefulMax)
	} else {
		e.Useful = satDec(e.Useful)
	}
}

// tickClock periodically clears one bit of every usefulness counter,
// alternating between the high and the low bit.
func (t *TAGE) tickClock() {
	t.clock++
	if t.clock < t.clockPeriod {
		return
	}

	t.clock = 0
	t.clockState ^= 1
	mask := t.clockState + 1
	for i := range t.tables {
		for j := range t.tables[i] {
			t.tables[i][j].Useful &= mask
		}
	}
}

func (t *TAGE) updateHistories(pc uint64, taken bool) {
	t.ghr.Push(taken)

	for i := 0; i < tageNumTables; i++ {
		t.csrIndex[i].update(t.ghr)
		t.csrTag[0][i].update(t.ghr)
		t.csrTag[1][i].update(t.ghr)
	}

	t.phr = (t.phr<<1 | uint32(pc&1)) & (1<<tagePathBits - 1)
}

// ResetHistory clears the global and path histories and all folded
// registers.
func (t *TAGE) ResetHistory() {
	t.ghr.Reset()
	t.phr = 0
	for i := 0; i < tageNumTables; i++ {
		t.csrIndex[i].reset()
		t.csrTag[0][i].reset()
		t.csrTag[1][i].reset()
	}
	t.last = tageLookup{}
}

// ResetTables clears every tagged entry, the bimodal table and the global
// counters. A generator created from a seed is rewound to that seed.
func (t *TAGE) ResetTables() {
	for i := range t.tables {
		for j := range t.tables[i] {
			t.tables[i][j] = TAGEEntry{}
		}
	}
	t.bimodal.Reset()
	t.resetCounters()

	if t.ownRand {
		t.rng = rand.New(rand.NewSource(t.seed))
	}
}

func (t *TAGE) resetCounters() {
	t.altBetter = tageAltBetterInit
	t.clock = 0
	t.clockState = 0
	t.tableAccesses = [tageNumTables]uint64{}
	t.bimodalAccesses = 0
	t.last = tageLookup{}
}

// NumTables returns the number of tagged tables.
func (t *TAGE) NumTables() int {
	return tageNumTables
}

// HistoryLength returns the history length of tagged table i.
func (t *TAGE) HistoryLength(i int) int {
	return t.histLens[i]
}

// TableSize returns the number of entries in tagged table i.
func (t *TAGE) TableSize(i int) int {
	return len(t.tables[i])
}

// Entry returns a copy of entry idx of tagged table i.
func (t *TAGE) Entry(i, idx int) TAGEEntry {
	return t.tables[i][idx]
}

// BimodalCounter returns the bimodal counter that pc maps to.
func (t *TAGE) BimodalCounter(pc uint64) uint8 {
	return t.bimodal.Get(int((pc >> 2) % uint64(t.bimodal.Len())))
}

// Provider returns the table that provided the last lookup, or -1 when the
// bimodal table did.
func (t *TAGE) Provider() int {
	if t.last.provider == tageNumTables {
		return -1
	}
	return t.last.provider
}

// AltBetterCount returns the counter that arbitrates between provider and
// alternate predictions for fresh entries.
func (t *TAGE) AltBetterCount() uint8 {
	return t.altBetter
}

// GlobalHistory returns the global history register, oldest bit first.
func (t *TAGE) GlobalHistory() string {
	return t.ghr.String()
}

// PathHistory returns the path history register.
func (t *TAGE) PathHistory() uint32 {
	return t.phr
}

// TableAccesses returns how many predictions each tagged table provided.
func (t *TAGE) TableAccesses() []uint64 {
	return append([]uint64(nil), t.tableAccesses[:]...)
}

// BimodalAccesses returns how many predictions fell back to the bimodal
// table.
func (t *TAGE) BimodalAccesses() uint64 {
	return t.bimodalAccesses
}

// String shows the global history and the arbitration counter.
func (t *TAGE) String() string {
	return fmt.Sprintf("GHR %s PHR 0x%04x altBetter=%d",
		t.ghr, t.phr, t.altBetter)
}

func trainCounter(v, max uint8, taken bool) uint8 {
	if taken {
		return satInc(v, max)
	}
	return satDec(v)
}
