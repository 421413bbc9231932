package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bpsim/insts"
	"github.com/sarchlab/bpsim/timing/bpred"
	"github.com/sarchlab/bpsim/timing/config"
	"github.com/sarchlab/bpsim/timing/core"
	"github.com/sarchlab/bpsim/timing/pipeline"
)

// alternating builds a branch that flips direction on every resolution,
// surrounded by plain instructions and repeated through a loop-back branch.
func alternating() []insts.Instruction {
	return []insts.Instruction{
		insts.Other(0x100),
		insts.Branch(0x104, 0x10c, insts.Cycle(true, false)),
		insts.Other(0x108),
		insts.Other(0x10c),
		insts.Branch(0x110, 0x100, insts.Cycle(
			true, true, true, true, true, true, true, true, true, false)),
		insts.Other(0x114),
	}
}

var _ = Describe("Core", func() {
	var c *core.Core

	BeforeEach(func() {
		var err error
		c, err = core.NewCore(alternating(), nil)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should create a core with a pipeline", func() {
		Expect(c.Pipeline).NotTo(BeNil())
		Expect(c.PredictorName()).To(Equal(bpred.NameBimodal))
		Expect(c.Done()).To(BeFalse())
	})

	It("should reject a bad config", func() {
		cfg := config.DefaultSimConfig()
		cfg.Predictor = "oracle"
		_, err := core.NewCore(alternating(), cfg)
		Expect(err).To(MatchError(config.ErrInvalidConfig))
	})

	It("should reject an empty program", func() {
		_, err := core.NewCore(nil, nil)
		Expect(err).To(MatchError(pipeline.ErrNoProgram))
	})

	It("should tick one cycle at a time", func() {
		Expect(c.Tick()).To(Succeed())
		Expect(c.Tick()).To(Succeed())
		Expect(c.Stats().Cycles).To(Equal(uint64(2)))
	})

	It("should run to completion", func() {
		Expect(c.Run()).To(Succeed())
		Expect(c.Done()).To(BeTrue())

		stats := c.Stats()
		Expect(stats.Predictor).To(Equal("bimodal"))
		Expect(stats.Branches).To(Equal(stats.Correct + stats.Mispredictions))
		Expect(stats.Branches).To(BeNumerically(">", 10))
		Expect(stats.Accuracy).To(BeNumerically(">", 0))
		Expect(float64(stats.Time)).To(BeNumerically("~", float64(stats.Cycles)*1e-9, 1e-12))
	})

	It("should run a bounded number of cycles", func() {
		running, err := c.RunCycles(5)
		Expect(err).NotTo(HaveOccurred())
		Expect(running).To(BeTrue())
		Expect(c.Stats().Cycles).To(Equal(uint64(5)))

		running, err = c.RunCycles(100000)
		Expect(err).NotTo(HaveOccurred())
		Expect(running).To(BeFalse())
	})

	It("should reset the run", func() {
		Expect(c.Run()).To(Succeed())
		c.Reset()

		stats := c.Stats()
		Expect(stats.Cycles).To(BeZero())
		Expect(stats.Instructions).To(BeZero())
		Expect(c.Done()).To(BeFalse())
	})

	Describe("SwitchPredictor", func() {
		It("should start from a fresh pipeline", func() {
			Expect(c.Run()).To(Succeed())
			old := c.Pipeline

			Expect(c.SwitchPredictor("gshare")).To(Succeed())
			Expect(c.Pipeline).NotTo(BeIdenticalTo(old))
			Expect(c.PredictorName()).To(Equal(bpred.NameCorrelated))
			Expect(c.Stats().Cycles).To(BeZero())
			Expect(c.Pipeline.BTB().Len()).To(BeZero())
			Expect(c.Config().Predictor).To(Equal("gshare"))
		})

		It("should keep the current predictor on an unknown name", func() {
			old := c.Pipeline
			Expect(c.SwitchPredictor("oracle")).To(MatchError(bpred.ErrUnknownPredictor))
			Expect(c.Pipeline).To(BeIdenticalTo(old))
			Expect(c.PredictorName()).To(Equal(bpred.NameBimodal))
		})

		It("should carry hooks over", func() {
			ends := 0
			c.AcceptHook(pipeline.HookFunc(func(ctx sim.HookCtx) {
				if ctx.Pos == pipeline.HookPosRunEnd {
					ends++
				}
			}))

			Expect(c.Run()).To(Succeed())
			Expect(c.SwitchPredictor("tage")).To(Succeed())
			Expect(c.Run()).To(Succeed())
			Expect(ends).To(Equal(2))
		})

		It("should let history-based predictors beat the bimodal table", func() {
			Expect(c.Run()).To(Succeed())
			bimodal := c.Stats().Accuracy

			Expect(c.SwitchPredictor("correlated")).To(Succeed())
			Expect(c.Run()).To(Succeed())
			Expect(c.Stats().Accuracy).To(BeNumerically(">", bimodal))
		})
	})
})
