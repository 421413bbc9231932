package bpred

import (
	"fmt"
	"math"
)

// Weight range of a perceptron.
const (
	weightMin = -128
	weightMax = 127
)

// Perceptron predicts with a linear function of the global history. Each
// table row is a weight vector whose first element is the bias.
type Perceptron struct {
	historyLen int
	threshold  int

	weights [][]int8
	hist    *BitHistory

	lastOutput int
	lastPC     uint64
	lastValid  bool
}

// NewPerceptron creates a perceptron predictor with historyLen bits of
// history and size weight vectors.
func NewPerceptron(historyLen, size int) (*Perceptron, error) {
	if historyLen <= 0 {
		return nil, invalid("perceptron history length must be > 0, got %d",
			historyLen)
	}
	if size <= 0 {
		return nil, invalid("perceptron table size must be > 0, got %d", size)
	}

	weights := make([][]int8, size)
	for i := range weights {
		weights[i] = make([]int8, historyLen+1)
	}

	return &Perceptron{
		historyLen: historyLen,
		threshold:  PerceptronThreshold(historyLen),
		weights:    weights,
		hist:       newBitHistory(historyLen),
	}, nil
}

// PerceptronThreshold returns the training threshold round(1.93*h + 14).
func PerceptronThreshold(historyLen int) int {
	return int(math.Round(1.93*float64(historyLen) + 14))
}

// Name returns "perceptron".
func (p *Perceptron) Name() string {
	return NamePerceptron
}

func (p *Perceptron) index(pc uint64) int {
	return int((pc >> 2) % uint64(len(p.weights)))
}

// histTaken returns history position j, where j = 0 is the oldest outcome
// and j = historyLen-1 the newest.
func (p *Perceptron) histTaken(j int) bool {
	return p.hist.Taken(p.historyLen - 1 - j)
}

func (p *Perceptron) output(w []int8) int {
	y := int(w[0])
	for j := 0; j < p.historyLen; j++ {
		if p.histTaken(j) {
			y += int(w[j+1])
		} else {
			y -= int(w[j+1])
		}
	}
	return y
}

// Predict computes the perceptron output for pc and predicts taken when it
// is non-negative.
func (p *Perceptron) Predict(pc uint64) Prediction {
	idx := p.index(pc)
	p.lastOutput = p.output(p.weights[idx])
	p.lastPC = pc
	p.lastValid = true

	return Prediction{Taken: p.lastOutput >= 0, Index: idx}
}

// Update trains the weights when the prediction was wrong or its magnitude
// was below the threshold, then shifts the outcome into the history.
func (p *Perceptron) Update(pc uint64, taken bool) {
	idx := p.index(pc)
	w := p.weights[idx]

	if !p.lastValid || p.lastPC != pc {
		p.lastOutput = p.output(w)
	}

	predicted := p.lastOutput >= 0
	if predicted != taken || abs(p.lastOutput) < p.threshold {
		y := -1
		if taken {
			y = 1
		}

		w[0] = clipWeight(int(w[0]) + y)
		for j := 0; j < p.historyLen; j++ {
			x := -1
			if p.histTaken(j) {
				x = 1
			}
			w[j+1] = clipWeight(int(w[j+1]) + y*x)
		}
	}

	p.hist.Push(taken)
	p.lastValid = false
}

// ResetHistory clears the history and the stored output.
func (p *Perceptron) ResetHistory() {
	p.hist.Reset()
	p.lastOutput = 0
	p.lastValid = false
}

// ResetTables zeroes every weight.
func (p *Perceptron) ResetTables() {
	for _, w := range p.weights {
		for j := range w {
			w[j] = 0
		}
	}
}

// Threshold returns the training threshold.
func (p *Perceptron) Threshold() int {
	return p.threshold
}

// HistoryLen returns the number of history bits.
func (p *Perceptron) HistoryLen() int {
	return p.historyLen
}

// LastOutput returns the output of the most recent lookup.
func (p *Perceptron) LastOutput() int {
	return p.lastOutput
}

// History returns the history oldest first.
func (p *Perceptron) History() []bool {
	h := make([]bool, p.historyLen)
	for j := range h {
		h[j] = p.histTaken(j)
	}
	return h
}

// Weights returns a copy of the weight vector that pc maps to, bias first.
func (p *Perceptron) Weights(pc uint64) []int {
	w := p.weights[p.index(pc)]
	out := make([]int, len(w))
	for i, v := range w {
		out[i] = int(v)
	}
	return out
}

// String shows the threshold, the last output and the history.
func (p *Perceptron) String() string {
	return fmt.Sprintf("T=%d y=%d hist=%s", p.threshold, p.lastOutput, p.hist)
}

func clipWeight(v int) int8 {
	if v < weightMin {
		return weightMin
	}
	if v > weightMax {
		return weightMax
	}
	return int8(v)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
