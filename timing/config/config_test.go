package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bpsim/timing/bpred"
	"github.com/sarchlab/bpsim/timing/config"
	"github.com/sarchlab/bpsim/timing/pipeline"
)

var _ = Describe("SimConfig", func() {
	var (
		cfg    *config.SimConfig
		tmpDir string
	)

	BeforeEach(func() {
		cfg = config.DefaultSimConfig()
		tmpDir = GinkgoT().TempDir()
	})

	It("should have the documented defaults", func() {
		Expect(cfg.Predictor).To(Equal("bimodal"))
		Expect(cfg.BimodalSize).To(Equal(32))
		Expect(cfg.CorrelatedHistoryBits).To(Equal(10))
		Expect(cfg.CorrelatedIndexBits).To(Equal(10))
		Expect(cfg.PerceptronHistory).To(Equal(24))
		Expect(cfg.PerceptronSize).To(Equal(163))
		Expect(cfg.TAGESeed).To(Equal(int64(1)))
		Expect(cfg.SnapshotLimit).To(Equal(200))
		Expect(cfg.MaxCycles).To(Equal(uint64(1000000)))
		Expect(cfg.Clock()).To(Equal(1 * sim.GHz))
		Expect(cfg.ResetMode()).To(Equal(pipeline.ResetKeepTables))
		Expect(cfg.Validate()).To(Succeed())
	})

	It("should round trip through a file", func() {
		cfg.Predictor = "tage"
		cfg.TAGESeed = 99
		cfg.ClearTablesOnReset = true
		path := filepath.Join(tmpDir, "sim.json")

		Expect(cfg.SaveConfig(path)).To(Succeed())
		loaded, err := config.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(cfg))
		Expect(loaded.ResetMode()).To(Equal(pipeline.ResetClearTables))
	})

	It("should keep defaults for missing fields", func() {
		path := filepath.Join(tmpDir, "partial.json")
		Expect(os.WriteFile(path, []byte(`{"predictor": "perc"}`), 0644)).To(Succeed())

		loaded, err := config.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Predictor).To(Equal("perc"))
		Expect(loaded.PerceptronSize).To(Equal(163))
	})

	It("should fail on a missing file", func() {
		_, err := config.LoadConfig(filepath.Join(tmpDir, "nope.json"))
		Expect(err).To(HaveOccurred())
	})

	It("should fail on malformed JSON", func() {
		path := filepath.Join(tmpDir, "bad.json")
		Expect(os.WriteFile(path, []byte(`{`), 0644)).To(Succeed())
		_, err := config.LoadConfig(path)
		Expect(err).To(HaveOccurred())
	})

	DescribeTable("validation",
		func(mutate func(c *config.SimConfig)) {
			mutate(cfg)
			Expect(cfg.Validate()).To(MatchError(config.ErrInvalidConfig))
		},
		Entry("unknown predictor", func(c *config.SimConfig) { c.Predictor = "oracle" }),
		Entry("zero bimodal size", func(c *config.SimConfig) { c.BimodalSize = 0 }),
		Entry("zero history", func(c *config.SimConfig) { c.CorrelatedHistoryBits = 0 }),
		Entry("wide index", func(c *config.SimConfig) { c.CorrelatedIndexBits = 31 }),
		Entry("zero perceptron history", func(c *config.SimConfig) { c.PerceptronHistory = 0 }),
		Entry("zero perceptrons", func(c *config.SimConfig) { c.PerceptronSize = 0 }),
		Entry("zero clock", func(c *config.SimConfig) { c.ClockGHz = 0 }),
	)

	It("should report unknown predictors with the predictor error", func() {
		cfg.Predictor = "oracle"
		Expect(cfg.Validate()).To(MatchError(bpred.ErrUnknownPredictor))
	})

	It("should clone", func() {
		clone := cfg.Clone()
		clone.BimodalSize = 64
		Expect(cfg.BimodalSize).To(Equal(32))
	})

	It("should convert to predictor parameters", func() {
		cfg.CorrelatedIndexBits = 12
		p := cfg.PredictorConfig()
		Expect(p.IndexBits).To(Equal(12))
		Expect(p.HistoryBits).To(Equal(10))
		Expect(p.TAGESeed).To(Equal(int64(1)))
	})

	It("should produce one pipeline option per setting", func() {
		Expect(cfg.PipelineOptions()).To(HaveLen(4))
	})

	Describe("environment overrides", func() {
		It("should apply BPSIM_ keys from a dotenv file", func() {
			path := filepath.Join(tmpDir, "sim.env")
			content := "BPSIM_PREDICTOR=gshare\n" +
				"BPSIM_CORRELATED_HISTORY_BITS=12\n" +
				"BPSIM_MAX_CYCLES=500\n" +
				"BPSIM_CLOCK_GHZ=3.5\n" +
				"BPSIM_CLEAR_TABLES_ON_RESET=true\n" +
				"OTHER=ignored\n"
			Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())

			Expect(cfg.ApplyEnvFile(path)).To(Succeed())
			Expect(cfg.Predictor).To(Equal("gshare"))
			Expect(cfg.CorrelatedHistoryBits).To(Equal(12))
			Expect(cfg.MaxCycles).To(Equal(uint64(500)))
			Expect(cfg.ClockGHz).To(Equal(3.5))
			Expect(cfg.ClearTablesOnReset).To(BeTrue())
		})

		It("should reject unparsable values", func() {
			err := cfg.ApplyEnv(map[string]string{"BPSIM_BIMODAL_SIZE": "lots"})
			Expect(err).To(MatchError(config.ErrInvalidConfig))
		})

		It("should reject unknown settings", func() {
			err := cfg.ApplyEnv(map[string]string{"BPSIM_COLOR": "blue"})
			Expect(err).To(MatchError(config.ErrInvalidConfig))
		})

		It("should validate the result", func() {
			err := cfg.ApplyEnv(map[string]string{"BPSIM_PERCEPTRON_SIZE": "0"})
			Expect(err).To(MatchError(config.ErrInvalidConfig))
		})

		It("should fail on a missing file", func() {
			Expect(cfg.ApplyEnvFile(filepath.Join(tmpDir, "none.env"))).
				NotTo(Succeed())
		})
	})
})
