// Package bpred provides branch-direction predictors.
//
// Four predictor families share the Predictor interface: a bimodal table of
// 2-bit counters, a correlated (gshare) predictor that hashes global history
// into the table index, a perceptron predictor, and a TAGE predictor with
// sixteen tagged tables of geometrically increasing history length.
//
// A predictor is owned by a single pipeline. The pipeline calls Predict when
// a branch is fetched and Update once the branch resolves.
package bpred

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a predictor cannot be built from the
// given parameters.
var ErrInvalidConfig = errors.New("invalid predictor configuration")

// Prediction is the result of a predictor lookup.
type Prediction struct {
	// Taken is the guessed direction.
	Taken bool
	// Index is the table entry that produced the guess.
	Index int
}

// Predictor guesses the direction of conditional branches.
type Predictor interface {
	fmt.Stringer

	// Name returns the canonical name of the predictor family.
	Name() string

	// Predict guesses the direction of the branch at pc.
	Predict(pc uint64) Prediction

	// Update trains the predictor with the resolved direction of the branch
	// at pc.
	Update(pc uint64, taken bool)

	// ResetHistory clears history registers and other per-run transient
	// state. Learned tables are kept.
	ResetHistory()

	// ResetTables restores every learned table to its construction-time
	// contents.
	ResetTables()
}

// RandSource provides the random draws used by probabilistic allocation.
// *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
