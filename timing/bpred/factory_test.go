package bpred_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/timing/bpred"
)

var _ = Describe("Factory", func() {
	DescribeTable("should build every family",
		func(name, want string) {
			p, err := bpred.New(name, bpred.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Name()).To(Equal(want))
		},
		Entry("bimodal", "bimodal", bpred.NameBimodal),
		Entry("twoBit alias", "twoBit", bpred.NameBimodal),
		Entry("gshare alias", "gshare", bpred.NameCorrelated),
		Entry("correlated", " Correlated ", bpred.NameCorrelated),
		Entry("perc alias", "perc", bpred.NamePerceptron),
		Entry("tage", "TAGE", bpred.NameTAGE),
	)

	It("should reject unknown names", func() {
		p, err := bpred.New("oracle", bpred.DefaultConfig())
		Expect(err).To(MatchError(bpred.ErrUnknownPredictor))
		Expect(err.Error()).To(ContainSubstring(`"oracle"`))
		Expect(p).To(BeNil())
	})

	It("should return a nil predictor for bad parameters", func() {
		cfg := bpred.DefaultConfig()
		cfg.IndexBits = 0

		p, err := bpred.New("gshare", cfg)
		Expect(err).To(MatchError(bpred.ErrInvalidConfig))
		Expect(p).To(BeNil())
	})

	It("should pass parameters through", func() {
		cfg := bpred.DefaultConfig()
		cfg.PerceptronHistory = 8

		p, err := bpred.New("perceptron", cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.(*bpred.Perceptron).HistoryLen()).To(Equal(8))
		Expect(p.(*bpred.Perceptron).Threshold()).To(Equal(29))
	})

	It("should use an injected generator for TAGE", func() {
		cfg := bpred.DefaultConfig()
		cfg.Rand = fixedRand(0.99)

		p, err := bpred.New("tage", cfg)
		Expect(err).NotTo(HaveOccurred())

		p.Predict(0x100)
		p.Update(0x100, true)

		// Table 13 provides the cold prediction; allocation would land in
		// a longer-history table.
		Expect(usedEntriesBelow(p.(*bpred.TAGE), 13)).To(BeZero())
		Expect(usedEntries(p.(*bpred.TAGE))).To(Equal(2))
	})

	It("should resolve canonical names", func() {
		Expect(bpred.Canonical("2bit")).To(Equal(bpred.NameBimodal))
		Expect(bpred.Canonical("nope")).To(BeEmpty())
		Expect(bpred.Names()).To(HaveLen(4))
	})
})
