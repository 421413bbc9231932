package bpred

// foldedHistory compresses the newest origLen bits of the global history
// into compLen bits. It is advanced once per history push instead of being
// recomputed from the full register.
type foldedHistory struct {
	val     uint32
	origLen int
	compLen int
}

func newFoldedHistory(origLen, compLen int) foldedHistory {
	return foldedHistory{origLen: origLen, compLen: compLen}
}

// update folds in the bit that just entered the history and folds out the
// bit that just left the origLen window. h must already contain the new bit.
func (f *foldedHistory) update(h *BitHistory) {
	v := f.val<<1 | uint32(h.Bit(0))
	v ^= (v & (1 << f.compLen)) >> f.compLen
	v ^= uint32(h.Bit(f.origLen)) << (f.origLen % f.compLen)
	f.val = v & (1<<f.compLen - 1)
}

func (f *foldedHistory) reset() {
	f.val = 0
}
