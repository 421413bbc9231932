package bpred

import "strings"

// BitHistory is a fixed-capacity shift register of branch outcomes. Bit 0
// holds the most recent outcome.
type BitHistory struct {
	length int
	words  []uint64
}

// NewBitHistory creates a history register that holds length bits.
func NewBitHistory(length int) (*BitHistory, error) {
	if length <= 0 {
		return nil, invalid("history length must be > 0, got %d", length)
	}

	return newBitHistory(length), nil
}

func newBitHistory(length int) *BitHistory {
	return &BitHistory{
		length: length,
		words:  make([]uint64, (length+63)/64),
	}
}

// Len returns the capacity of the register in bits.
func (h *BitHistory) Len() int {
	return h.length
}

// Push shifts the register left by one and inserts taken as bit 0. The
// oldest bit falls off.
func (h *BitHistory) Push(taken bool) {
	for i := len(h.words) - 1; i > 0; i-- {
		h.words[i] = h.words[i]<<1 | h.words[i-1]>>63
	}

	h.words[0] <<= 1
	if taken {
		h.words[0] |= 1
	}

	if rem := h.length % 64; rem != 0 {
		h.words[len(h.words)-1] &= (uint64(1) << rem) - 1
	}
}

// Bit returns the outcome k pushes ago, 0 meaning the most recent one.
// Positions outside the register read as 0.
func (h *BitHistory) Bit(k int) uint64 {
	if k < 0 || k >= h.length {
		return 0
	}
	return (h.words[k/64] >> (k % 64)) & 1
}

// Taken reports whether Bit(k) is set.
func (h *BitHistory) Taken(k int) bool {
	return h.Bit(k) == 1
}

// Low returns the k most recent bits as an integer. k is capped at 64.
func (h *BitHistory) Low(k int) uint64 {
	if k <= 0 {
		return 0
	}
	if k >= 64 {
		return h.words[0]
	}
	return h.words[0] & ((uint64(1) << k) - 1)
}

// Reset clears every bit.
func (h *BitHistory) Reset() {
	for i := range h.words {
		h.words[i] = 0
	}
}

// String renders the register oldest bit first, padded to its full length.
func (h *BitHistory) String() string {
	var sb strings.Builder
	sb.Grow(h.length)
	for k := h.length - 1; k >= 0; k-- {
		if h.Bit(k) == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
