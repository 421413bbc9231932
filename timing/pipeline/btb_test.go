package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/timing/pipeline"
)

var _ = Describe("BTB", func() {
	var btb *pipeline.BTB

	BeforeEach(func() {
		btb = pipeline.NewBTB()
	})

	It("should miss on an unknown address", func() {
		_, ok := btb.Get(0x100)
		Expect(ok).To(BeFalse())
		Expect(btb.String()).To(Equal("empty"))
	})

	It("should return what was set", func() {
		btb.Set(0x104, 0x10c)
		target, ok := btb.Get(0x104)
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal(uint64(0x10c)))
	})

	It("should keep the last write", func() {
		btb.Set(0x104, 0x10c)
		btb.Set(0x104, 0x200)
		target, _ := btb.Get(0x104)
		Expect(target).To(Equal(uint64(0x200)))
		Expect(btb.Len()).To(Equal(1))
	})

	It("should dump entries in insertion order", func() {
		btb.Set(0x110, 0x100)
		btb.Set(0x104, 0x10c)
		btb.Set(0x110, 0x118)
		Expect(btb.String()).To(Equal("0x110→0x118 0x104→0x10c"))
	})

	It("should clear", func() {
		btb.Set(0x104, 0x10c)
		btb.Clear()
		Expect(btb.Len()).To(BeZero())
		_, ok := btb.Get(0x104)
		Expect(ok).To(BeFalse())
	})
})
