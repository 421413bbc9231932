// Package config holds the settings of a simulation run.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bpsim/timing/bpred"
	"github.com/sarchlab/bpsim/timing/pipeline"
)

// ErrInvalidConfig is returned by Validate and by the loaders when a value
// is out of range.
var ErrInvalidConfig = errors.New("invalid simulation config")

// EnvPrefix prefixes every environment key read by ApplyEnv.
const EnvPrefix = "BPSIM_"

// SimConfig holds predictor and pipeline parameters.
type SimConfig struct {
	// Predictor is the predictor family to run. Default: "bimodal".
	Predictor string `json:"predictor"`

	// BimodalSize is the number of bimodal counters. Default: 32.
	BimodalSize int `json:"bimodal_size"`

	// CorrelatedHistoryBits is the global history length of the correlated
	// predictor. Default: 10.
	CorrelatedHistoryBits int `json:"correlated_history_bits"`

	// CorrelatedIndexBits is the pattern table index width of the correlated
	// predictor. Default: 10.
	CorrelatedIndexBits int `json:"correlated_index_bits"`

	// PerceptronHistory is the perceptron history length. Default: 24.
	PerceptronHistory int `json:"perceptron_history"`

	// PerceptronSize is the number of perceptrons. Default: 163.
	PerceptronSize int `json:"perceptron_size"`

	// TAGESeed seeds TAGE entry allocation. Default: 1.
	TAGESeed int64 `json:"tage_seed"`

	// SnapshotLimit is the program length above which per-cycle snapshots
	// are skipped; <= 0 never skips. Default: 200.
	SnapshotLimit int `json:"snapshot_limit"`

	// MaxCycles bounds a run; 0 means unbounded. Default: 1000000.
	MaxCycles uint64 `json:"max_cycles"`

	// ClockGHz is the clock used to report simulated time. Default: 1.0.
	ClockGHz float64 `json:"clock_ghz"`

	// ClearTablesOnReset makes a reset restore predictor tables and the BTB
	// as well as history. Default: false.
	ClearTablesOnReset bool `json:"clear_tables_on_reset"`
}

// DefaultSimConfig returns a SimConfig with default values.
func DefaultSimConfig() *SimConfig {
	p := bpred.DefaultConfig()
	return &SimConfig{
		Predictor:             bpred.NameBimodal,
		BimodalSize:           p.BimodalSize,
		CorrelatedHistoryBits: p.HistoryBits,
		CorrelatedIndexBits:   p.IndexBits,
		PerceptronHistory:     p.PerceptronHistory,
		PerceptronSize:        p.PerceptronSize,
		TAGESeed:              p.TAGESeed,
		SnapshotLimit:         pipeline.DefaultSnapshotLimit,
		MaxCycles:             pipeline.DefaultMaxCycles,
		ClockGHz:              1.0,
	}
}

// LoadConfig loads a SimConfig from a JSON file. Missing fields keep their
// defaults.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sim config file: %w", err)
	}

	config := DefaultSimConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse sim config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig writes a SimConfig to a JSON file.
func (c *SimConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize sim config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sim config file: %w", err)
	}

	return nil
}

// ApplyEnvFile overrides fields from BPSIM_* keys in a dotenv file.
func (c *SimConfig) ApplyEnvFile(path string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("failed to read env file: %w", err)
	}

	return c.ApplyEnv(env)
}

// ApplyEnv overrides fields from BPSIM_* keys. Other keys are ignored.
func (c *SimConfig) ApplyEnv(env map[string]string) error {
	for key, value := range env {
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if err := c.set(strings.TrimPrefix(key, EnvPrefix), value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
		}
	}

	return c.Validate()
}

func (c *SimConfig) set(field, value string) error {
	var err error

	switch field {
	case "PREDICTOR":
		c.Predictor = value
	case "BIMODAL_SIZE":
		c.BimodalSize, err = strconv.Atoi(value)
	case "CORRELATED_HISTORY_BITS":
		c.CorrelatedHistoryBits, err = strconv.Atoi(value)
	case "CORRELATED_INDEX_BITS":
		c.CorrelatedIndexBits, err = strconv.Atoi(value)
	case "PERCEPTRON_HISTORY":
		c.PerceptronHistory, err = strconv.Atoi(value)
	case "PERCEPTRON_SIZE":
		c.PerceptronSize, err = strconv.Atoi(value)
	case "TAGE_SEED":
		c.TAGESeed, err = strconv.ParseInt(value, 10, 64)
	case "SNAPSHOT_LIMIT":
		c.SnapshotLimit, err = strconv.Atoi(value)
	case "MAX_CYCLES":
		c.MaxCycles, err = strconv.ParseUint(value, 10, 64)
	case "CLOCK_GHZ":
		c.ClockGHz, err = strconv.ParseFloat(value, 64)
	case "CLEAR_TABLES_ON_RESET":
		c.ClearTablesOnReset, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("unknown setting")
	}

	return err
}

// Validate checks that every value is usable.
func (c *SimConfig) Validate() error {
	if bpred.Canonical(c.Predictor) == "" {
		return fmt.Errorf("%w: %w: %q",
			ErrInvalidConfig, bpred.ErrUnknownPredictor, c.Predictor)
	}
	if c.BimodalSize <= 0 {
		return fmt.Errorf("%w: bimodal_size must be > 0", ErrInvalidConfig)
	}
	if c.CorrelatedHistoryBits <= 0 {
		return fmt.Errorf("%w: correlated_history_bits must be > 0",
			ErrInvalidConfig)
	}
	if c.CorrelatedIndexBits <= 0 || c.CorrelatedIndexBits > 30 {
		return fmt.Errorf("%w: correlated_index_bits must be in [1, 30]",
			ErrInvalidConfig)
	}
	if c.PerceptronHistory <= 0 {
		return fmt.Errorf("%w: perceptron_history must be > 0", ErrInvalidConfig)
	}
	if c.PerceptronSize <= 0 {
		return fmt.Errorf("%w: perceptron_size must be > 0", ErrInvalidConfig)
	}
	if c.ClockGHz <= 0 {
		return fmt.Errorf("%w: clock_ghz must be > 0", ErrInvalidConfig)
	}
	return nil
}

// Clone returns a copy of the SimConfig.
func (c *SimConfig) Clone() *SimConfig {
	clone := *c
	return &clone
}

// PredictorConfig returns the predictor construction parameters.
func (c *SimConfig) PredictorConfig() bpred.Config {
	return bpred.Config{
		BimodalSize:       c.BimodalSize,
		HistoryBits:       c.CorrelatedHistoryBits,
		IndexBits:         c.CorrelatedIndexBits,
		PerceptronHistory: c.PerceptronHistory,
		PerceptronSize:    c.PerceptronSize,
		TAGESeed:          c.TAGESeed,
	}
}

// Clock returns the configured clock frequency.
func (c *SimConfig) Clock() sim.Freq {
	return sim.Freq(c.ClockGHz) * sim.GHz
}

// ResetMode returns the pipeline reset mode.
func (c *SimConfig) ResetMode() pipeline.ResetMode {
	if c.ClearTablesOnReset {
		return pipeline.ResetClearTables
	}
	return pipeline.ResetKeepTables
}

// PipelineOptions returns the pipeline options the config describes.
func (c *SimConfig) PipelineOptions() []pipeline.PipelineOption {
	return []pipeline.PipelineOption{
		pipeline.WithSnapshotLimit(c.SnapshotLimit),
		pipeline.WithMaxCycles(c.MaxCycles),
		pipeline.WithClock(c.Clock()),
		pipeline.WithResetMode(c.ResetMode()),
	}
}
