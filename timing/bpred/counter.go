package bpred

// CounterTable is an array of saturating counters in [0, max].
type CounterTable struct {
	counters []uint8
	max      uint8
	init     uint8
}

// NewCounterTable creates size counters that saturate at max, all starting
// at init.
func NewCounterTable(size int, max, init uint8) (*CounterTable, error) {
	if size <= 0 {
		return nil, invalid("counter table size must be > 0, got %d", size)
	}
	if init > max {
		return nil, invalid("counter initial value %d exceeds maximum %d",
			init, max)
	}

	return newCounterTable(size, max, init), nil
}

func newCounterTable(size int, max, init uint8) *CounterTable {
	t := &CounterTable{
		counters: make([]uint8, size),
		max:      max,
		init:     init,
	}
	t.Reset()

	return t
}

// Len returns the number of counters.
func (t *CounterTable) Len() int {
	return len(t.counters)
}

// Max returns the saturation value.
func (t *CounterTable) Max() uint8 {
	return t.max
}

// Get returns counter i.
func (t *CounterTable) Get(i int) uint8 {
	return t.counters[i]
}

// Inc increments counter i, saturating at max.
func (t *CounterTable) Inc(i int) {
	t.counters[i] = satInc(t.counters[i], t.max)
}

// Dec decrements counter i, saturating at 0.
func (t *CounterTable) Dec(i int) {
	t.counters[i] = satDec(t.counters[i])
}

// Train moves counter i toward the outcome.
func (t *CounterTable) Train(i int, taken bool) {
	if taken {
		t.Inc(i)
	} else {
		t.Dec(i)
	}
}

// Taken reports whether counter i is in the upper half of its range.
func (t *CounterTable) Taken(i int) bool {
	return t.counters[i] > t.max/2
}

// Reset restores every counter to its initial value.
func (t *CounterTable) Reset() {
	for i := range t.counters {
		t.counters[i] = t.init
	}
}

// Values returns a copy of all counters.
func (t *CounterTable) Values() []uint8 {
	return append([]uint8(nil), t.counters...)
}

func satInc(v, max uint8) uint8 {
	if v < max {
		return v + 1
	}
	return v
}

func satDec(v uint8) uint8 {
	if v > 0 {
		return v - 1
	}
	return v
}
