// Package benchmarks runs workloads on every predictor and reports how well
// each one does.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/aclements/go-moremath/stats"
	"github.com/olekukonko/tablewriter"

	"github.com/sarchlab/bpsim/timing/bpred"
	"github.com/sarchlab/bpsim/timing/config"
	"github.com/sarchlab/bpsim/timing/core"
)

// BenchmarkResult holds the results of one workload on one predictor.
type BenchmarkResult struct {
	// Workload identifies the workload.
	Workload string `json:"workload"`

	// Predictor is the canonical predictor name.
	Predictor string `json:"predictor"`

	// Seed is the seed the workload was built with.
	Seed int64 `json:"seed"`

	// SimulatedCycles is the total cycle count.
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions.
	InstructionsRetired uint64 `json:"instructions_retired"`

	// Branches is the number of resolved branches.
	Branches uint64 `json:"branches"`

	// Correct is the number of correctly predicted branches.
	Correct uint64 `json:"correct"`

	// Mispredictions is the number of mispredicted branches.
	Mispredictions uint64 `json:"mispredictions"`

	// PipelineFlushes is the number of pipeline flushes.
	PipelineFlushes uint64 `json:"pipeline_flushes"`

	// AccuracyPercent is the share of correctly predicted branches.
	AccuracyPercent float64 `json:"accuracy_percent"`

	// WallTime is the actual time taken to run the simulation.
	WallTime time.Duration `json:"wall_time_ns"`
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Predictors lists the predictors to compare. Empty means all of them.
	Predictors []string

	// Sim holds the predictor and pipeline parameters. Nil means defaults.
	Sim *config.SimConfig

	// Seed builds the workloads of RunAll.
	Seed int64

	// Output is where to write results (default: os.Stdout).
	Output io.Writer

	// Verbose enables detailed output.
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Predictors: bpred.Names(),
		Sim:        config.DefaultSimConfig(),
		Seed:       1,
		Output:     os.Stdout,
	}
}

// Harness runs workloads on predictors and reports results.
type Harness struct {
	config    HarnessConfig
	workloads []Workload
}

// NewHarness creates a new benchmark harness.
func NewHarness(hc HarnessConfig) *Harness {
	if hc.Output == nil {
		hc.Output = os.Stdout
	}
	if len(hc.Predictors) == 0 {
		hc.Predictors = bpred.Names()
	}
	if hc.Sim == nil {
		hc.Sim = config.DefaultSimConfig()
	}
	return &Harness{
		config:    hc,
		workloads: []Workload{},
	}
}

// AddWorkload adds a workload to the harness.
func (h *Harness) AddWorkload(w Workload) {
	h.workloads = append(h.workloads, w)
}

// AddWorkloads adds multiple workloads to the harness.
func (h *Harness) AddWorkloads(workloads []Workload) {
	h.workloads = append(h.workloads, workloads...)
}

// RunAll runs every workload on every predictor with the configured seed.
func (h *Harness) RunAll() ([]BenchmarkResult, error) {
	return h.runSeed(h.config.Seed)
}

// Sweep runs every workload on every predictor once per seed.
func (h *Harness) Sweep(seeds []int64) ([]BenchmarkResult, error) {
	var results []BenchmarkResult
	for _, seed := range seeds {
		r, err := h.runSeed(seed)
		if err != nil {
			return nil, err
		}
		results = append(results, r...)
	}
	return results, nil
}

func (h *Harness) runSeed(seed int64) ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(h.workloads)*len(h.config.Predictors))

	for _, w := range h.workloads {
		for _, name := range h.config.Predictors {
			result, err := h.runWorkload(w, name, seed)
			if err != nil {
				return nil, fmt.Errorf("%s on %s: %w", w.Name, name, err)
			}
			results = append(results, result)
		}
	}

	return results, nil
}

// runWorkload executes a single workload on a fresh core.
func (h *Harness) runWorkload(w Workload, predictor string, seed int64) (BenchmarkResult, error) {
	cfg := h.config.Sim.Clone()
	cfg.Predictor = predictor

	c, err := core.NewCore(w.Build(seed), cfg)
	if err != nil {
		return BenchmarkResult{}, err
	}

	start := time.Now()
	if err := c.Run(); err != nil {
		return BenchmarkResult{}, err
	}
	wallTime := time.Since(start)

	s := c.Stats()
	result := BenchmarkResult{
		Workload:            w.Name,
		Predictor:           s.Predictor,
		Seed:                seed,
		SimulatedCycles:     s.Cycles,
		InstructionsRetired: s.Instructions,
		Branches:            s.Branches,
		Correct:             s.Correct,
		Mispredictions:      s.Mispredictions,
		PipelineFlushes:     s.Flushes,
		AccuracyPercent:     s.Accuracy * 100,
		WallTime:            wallTime,
	}

	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "%-16s %-11s seed=%d acc=%.1f%%\n",
			w.Name, result.Predictor, seed, result.AccuracyPercent)
	}

	return result, nil
}

// PrintResults outputs results as a table.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	table := tablewriter.NewWriter(h.config.Output)
	table.SetHeader([]string{
		"Workload", "Predictor", "Cycles", "Retired",
		"Branches", "Mispredicted", "Accuracy",
	})

	for _, r := range results {
		table.Append([]string{
			r.Workload,
			r.Predictor,
			fmt.Sprintf("%d", r.SimulatedCycles),
			fmt.Sprintf("%d", r.InstructionsRetired),
			fmt.Sprintf("%d", r.Branches),
			fmt.Sprintf("%d", r.Mispredictions),
			fmt.Sprintf("%.1f%%", r.AccuracyPercent),
		})
	}

	table.Render()
}

// PrintCSV outputs results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"workload,predictor,seed,cycles,instructions,branches,correct,mispredictions,flushes,accuracy_percent")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%s,%d,%d,%d,%d,%d,%d,%d,%.2f\n",
			r.Workload,
			r.Predictor,
			r.Seed,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.Branches,
			r.Correct,
			r.Mispredictions,
			r.PipelineFlushes,
			r.AccuracyPercent,
		)
	}
}

// Summary aggregates the accuracy of one predictor on one workload across
// seeds.
type Summary struct {
	Workload  string  `json:"workload"`
	Predictor string  `json:"predictor"`
	Runs      int     `json:"runs"`
	Mean      float64 `json:"mean_accuracy_percent"`
	StdDev    float64 `json:"stddev_accuracy_percent"`
	Min       float64 `json:"min_accuracy_percent"`
	Max       float64 `json:"max_accuracy_percent"`
}

// Summarize groups results by workload and predictor. Groups keep the order
// in which they first appear. StdDev is 0 for a single run.
func Summarize(results []BenchmarkResult) []Summary {
	type key struct{ workload, predictor string }

	var order []key
	samples := map[key][]float64{}
	for _, r := range results {
		k := key{r.Workload, r.Predictor}
		if _, ok := samples[k]; !ok {
			order = append(order, k)
		}
		samples[k] = append(samples[k], r.AccuracyPercent)
	}

	summaries := make([]Summary, 0, len(order))
	for _, k := range order {
		xs := samples[k]
		lo, hi := stats.Bounds(xs)
		s := Summary{
			Workload:  k.workload,
			Predictor: k.predictor,
			Runs:      len(xs),
			Mean:      stats.Mean(xs),
			Min:       lo,
			Max:       hi,
		}
		if len(xs) > 1 {
			s.StdDev = stats.StdDev(xs)
		}
		summaries = append(summaries, s)
	}

	return summaries
}

// Best returns, for every workload, the predictor with the highest mean
// accuracy. Ties go to the predictor listed first.
func Best(summaries []Summary) map[string]string {
	best := map[string]Summary{}
	for _, s := range summaries {
		if cur, ok := best[s.Workload]; !ok || s.Mean > cur.Mean {
			best[s.Workload] = s
		}
	}

	out := make(map[string]string, len(best))
	for w, s := range best {
		out[w] = s.Predictor
	}
	return out
}

// PrintSummary outputs summaries as a table, sorted by workload and then by
// descending mean accuracy.
func (h *Harness) PrintSummary(summaries []Summary) {
	sorted := append([]Summary(nil), summaries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Workload != sorted[j].Workload {
			return sorted[i].Workload < sorted[j].Workload
		}
		return sorted[i].Mean > sorted[j].Mean
	})

	table := tablewriter.NewWriter(h.config.Output)
	table.SetHeader([]string{"Workload", "Predictor", "Runs", "Mean", "StdDev", "Min", "Max"})
	for _, s := range sorted {
		table.Append([]string{
			s.Workload,
			s.Predictor,
			fmt.Sprintf("%d", s.Runs),
			fmt.Sprintf("%.1f%%", s.Mean),
			fmt.Sprintf("%.2f", s.StdDev),
			fmt.Sprintf("%.1f%%", s.Min),
			fmt.Sprintf("%.1f%%", s.Max),
		})
	}
	table.Render()
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary aggregates results per workload and predictor
	Summary []Summary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Predictors that were compared
	Predictors []string `json:"predictors"`

	// Config is the simulation config used
	Config *config.SimConfig `json:"config"`
}

// PrintJSON outputs results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Predictors: h.config.Predictors,
			Config:     h.config.Sim,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
