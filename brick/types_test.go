package brick

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Types", func() {
	It("should flip sides", func() {
		Expect(West.Opposite()).To(Equal(East))
		Expect(East.Opposite()).To(Equal(West))
	})

	It("should parse sides and types", func() {
		s, err := ParseSide("East")
		Expect(err).ToNot(HaveOccurred())
		Expect(s).To(Equal(East))

		_, err = ParseSide("north")
		Expect(err).To(MatchError(ErrInvalidArgument))

		t, err := ParseType("multipole")
		Expect(err).ToNot(HaveOccurred())
		Expect(t).To(Equal(Multipole))
		Expect(t.String()).To(Equal("multipole"))

		_, err = ParseType("tripole")
		Expect(err).To(MatchError(ErrInvalidConfig))
	})
})
