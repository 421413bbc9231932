package bpred

import (
	"errors"
	"fmt"
	"strings"
)

// Canonical predictor names.
const (
	NameBimodal    = "bimodal"
	NameCorrelated = "correlated"
	NamePerceptron = "perceptron"
	NameTAGE       = "tage"
)

// ErrUnknownPredictor is returned by New for names it does not recognize.
var ErrUnknownPredictor = errors.New("unknown predictor")

// aliases maps alternative spellings to canonical names.
var aliases = map[string]string{
	"twobit": NameBimodal,
	"2bit":   NameBimodal,
	"gshare": NameCorrelated,
	"perc":   NamePerceptron,
}

// Config holds the construction parameters of every predictor family.
type Config struct {
	// BimodalSize is the number of 2-bit counters of the bimodal predictor.
	BimodalSize int
	// HistoryBits is the global history length of the correlated predictor.
	HistoryBits int
	// IndexBits is the pattern table index width of the correlated predictor.
	IndexBits int
	// PerceptronHistory is the history length of the perceptron predictor.
	PerceptronHistory int
	// PerceptronSize is the number of weight vectors.
	PerceptronSize int
	// TAGESeed seeds the TAGE allocation generator.
	TAGESeed int64
	// Rand, if set, replaces the seeded TAGE generator.
	Rand RandSource
}

// DefaultConfig returns the default parameters of every family.
func DefaultConfig() Config {
	return Config{
		BimodalSize:       32,
		HistoryBits:       10,
		IndexBits:         10,
		PerceptronHistory: 24,
		PerceptronSize:    163,
		TAGESeed:          1,
	}
}

// Names returns the canonical predictor names.
func Names() []string {
	return []string{NameBimodal, NameCorrelated, NamePerceptron, NameTAGE}
}

// Canonical resolves a predictor name or alias. It returns an empty string
// for unknown names.
func Canonical(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[n]; ok {
		return alias
	}
	for _, c := range Names() {
		if n == c {
			return c
		}
	}
	return ""
}

// New builds a fresh predictor of the named family.
func New(name string, cfg Config) (Predictor, error) {
	var (
		p   Predictor
		err error
	)

	switch Canonical(name) {
	case NameBimodal:
		p, err = asPredictor(NewBimodal(cfg.BimodalSize))
	case NameCorrelated:
		p, err = asPredictor(NewCorrelated(cfg.HistoryBits, cfg.IndexBits))
	case NamePerceptron:
		p, err = asPredictor(NewPerceptron(cfg.PerceptronHistory, cfg.PerceptronSize))
	case NameTAGE:
		opts := []TAGEOption{WithSeed(cfg.TAGESeed)}
		if cfg.Rand != nil {
			opts = append(opts, WithRandSource(cfg.Rand))
		}
		p = NewTAGE(opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPredictor, name)
	}

	return p, err
}

// asPredictor drops typed nil pointers so a failed constructor yields a nil
// interface.
func asPredictor[T Predictor](p T, err error) (Predictor, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}
