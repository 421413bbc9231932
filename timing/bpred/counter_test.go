package bpred_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/timing/bpred"
)

var _ = Describe("CounterTable", func() {
	var t *bpred.CounterTable

	BeforeEach(func() {
		var err error
		t, err = bpred.NewCounterTable(4, 3, 2)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should reject impossible tables", func() {
		_, err := bpred.NewCounterTable(0, 3, 2)
		Expect(err).To(MatchError(bpred.ErrInvalidConfig))

		_, err = bpred.NewCounterTable(4, 3, 5)
		Expect(err).To(MatchError(bpred.ErrInvalidConfig))
	})

	It("should initialize every counter", func() {
		Expect(t.Len()).To(Equal(4))
		Expect(t.Values()).To(Equal([]uint8{2, 2, 2, 2}))
	})

	It("should saturate at the maximum", func() {
		for i := 0; i < 10; i++ {
			t.Inc(1)
		}
		Expect(t.Get(1)).To(Equal(uint8(3)))
	})

	It("should saturate at zero", func() {
		for i := 0; i < 10; i++ {
			t.Dec(1)
		}
		Expect(t.Get(1)).To(BeZero())
	})

	It("should predict taken in the upper half", func() {
		Expect(t.Taken(0)).To(BeTrue())
		t.Dec(0)
		Expect(t.Taken(0)).To(BeFalse())
	})

	It("should stay in range for any training sequence", func() {
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 1000; i++ {
			t.Train(rng.Intn(4), rng.Intn(2) == 0)
			for _, v := range t.Values() {
				Expect(v).To(BeNumerically("<=", 3))
			}
		}
	})

	It("should reset to the initial value", func() {
		t.Inc(0)
		t.Dec(3)
		t.Reset()
		Expect(t.Values()).To(Equal([]uint8{2, 2, 2, 2}))
	})
})
