package bpred_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/timing/bpred"
)

var _ = Describe("Correlated", func() {
	var c *bpred.Correlated

	BeforeEach(func() {
		var err error
		c, err = bpred.NewCorrelated(10, 10)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should reject bad parameters", func() {
		_, err := bpred.NewCorrelated(0, 10)
		Expect(err).To(MatchError(bpred.ErrInvalidConfig))
		_, err = bpred.NewCorrelated(10, 0)
		Expect(err).To(MatchError(bpred.ErrInvalidConfig))
		_, err = bpred.NewCorrelated(10, 40)
		Expect(err).To(MatchError(bpred.ErrInvalidConfig))
	})

	It("should XOR address and history into the index", func() {
		pc := uint64(0x100)
		Expect(c.Predict(pc).Index).To(Equal(0x40))

		c.Update(pc, true)
		Expect(c.History()).To(Equal(uint64(1)))
		Expect(c.Predict(pc).Index).To(Equal(0x41))
	})

	It("should fill the history of an always-taken branch", func() {
		pc := uint64(0x2468)

		var lastIndex int
		for i := 0; i < 10; i++ {
			lastIndex = c.Predict(pc).Index
			c.Update(pc, true)
		}

		Expect(c.History()).To(Equal(uint64(0b1111111111)))
		Expect(c.Counter(lastIndex)).To(Equal(uint8(3)))
	})

	It("should mask the history to its length", func() {
		small, err := bpred.NewCorrelated(3, 10)
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 6; i++ {
			small.Update(0x100, true)
		}
		Expect(small.History()).To(Equal(uint64(0b111)))
	})

	It("should shift the resolved outcome after training", func() {
		pc := uint64(0x100)
		idx := c.Predict(pc).Index
		c.Update(pc, false)

		Expect(c.Counter(idx)).To(Equal(uint8(1)))
		Expect(c.History()).To(BeZero())
	})

	It("should learn an alternating branch", func() {
		pc := uint64(0x100)
		correct := 0
		for i := 0; i < 100; i++ {
			taken := i%2 == 0
			if c.Predict(pc).Taken == taken {
				correct++
			}
			c.Update(pc, taken)
		}
		Expect(correct).To(BeNumerically(">", 90))
	})

	It("should keep counters in range", func() {
		rng := rand.New(rand.NewSource(11))
		for i := 0; i < 5000; i++ {
			pc := uint64(rng.Intn(64)) * 4
			c.Predict(pc)
			c.Update(pc, rng.Intn(2) == 0)
		}
		for _, v := range c.Counters() {
			Expect(v).To(BeNumerically("<=", 3))
		}
	})

	It("should clear history but keep tables on ResetHistory", func() {
		c.Update(0x100, false)
		c.ResetHistory()

		Expect(c.History()).To(BeZero())
		Expect(c.Counter(0x40)).To(Equal(uint8(1)))

		c.ResetTables()
		Expect(c.Counter(0x40)).To(Equal(uint8(2)))
	})
})
