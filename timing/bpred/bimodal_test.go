package bpred_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/timing/bpred"
)

var _ = Describe("Bimodal", func() {
	var b *bpred.Bimodal

	BeforeEach(func() {
		var err error
		b, err = bpred.NewBimodal(32)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should reject a zero-sized table", func() {
		_, err := bpred.NewBimodal(0)
		Expect(err).To(MatchError(bpred.ErrInvalidConfig))
		_, err = bpred.NewBimodal(-4)
		Expect(err).To(MatchError(bpred.ErrInvalidConfig))
	})

	It("should initially predict taken", func() {
		pred := b.Predict(0x1000)
		Expect(pred.Taken).To(BeTrue())
	})

	It("should index by word address", func() {
		Expect(b.Predict(0x100).Index).To(Equal(0))
		Expect(b.Predict(0x104).Index).To(Equal(1))
		Expect(b.Predict(0x100 + 32*4).Index).To(Equal(0))
	})

	It("should require two mispredictions to change direction", func() {
		pc := uint64(0x1000)

		b.Update(pc, true)
		b.Update(pc, true)
		Expect(b.Counter(pc)).To(Equal(uint8(3)))

		b.Update(pc, false)
		Expect(b.Predict(pc).Taken).To(BeTrue())

		b.Update(pc, false)
		Expect(b.Predict(pc).Taken).To(BeFalse())
	})

	It("should share counters between aliasing branches", func() {
		b.Update(0x100, false)
		b.Update(0x100, false)
		Expect(b.Predict(0x100 + 32*4).Taken).To(BeFalse())
	})

	It("should track a loop branch in a two-entry table", func() {
		small, err := bpred.NewBimodal(2)
		Expect(err).NotTo(HaveOccurred())

		pc := uint64(0x100)
		pattern := []bool{true, true, true, false}
		for round := 0; round < 4; round++ {
			for i, taken := range pattern {
				Expect(small.Predict(pc).Taken).To(BeTrue())
				small.Update(pc, taken)

				if taken {
					Expect(small.Counter(pc)).To(Equal(uint8(3)))
				} else {
					Expect(small.Counter(pc)).To(Equal(uint8(2)), "step %d", i)
				}
			}
		}
	})

	It("should keep counters in range", func() {
		rng := rand.New(rand.NewSource(3))
		for i := 0; i < 2000; i++ {
			b.Update(uint64(rng.Intn(256))*4, rng.Intn(3) == 0)
		}
		for _, c := range b.Counters() {
			Expect(c).To(BeNumerically("<=", 3))
		}
	})

	It("should reset tables", func() {
		b.Update(0x100, false)
		b.ResetHistory()
		Expect(b.Counter(0x100)).To(Equal(uint8(1)))
		b.ResetTables()
		Expect(b.Counter(0x100)).To(Equal(uint8(2)))
	})

	It("should dump its table", func() {
		small, _ := bpred.NewBimodal(2)
		Expect(small.String()).To(Equal("BHT 0:2 1:2"))
	})
})
