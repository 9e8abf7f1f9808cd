package session_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dispatch/pkg/session"
)

func fill(h *session.History, n int) {
	for i := range n {
		h.Append(session.Turn{
			Query:    fmt.Sprintf("q%d", i),
			Response: fmt.Sprintf("r%d", i),
		})
	}
}

var _ = Describe("History", func() {
	var h *session.History

	BeforeEach(func() {
		h = session.NewHistory()
	})

	It("starts empty", func() {
		Expect(h.Len()).To(Equal(0))
		Expect(h.Window(session.DefaultWindow)).To(BeEmpty())
	})

	It("returns every turn oldest first while under the window", func() {
		fill(h, 3)

		w := h.Window(session.DefaultWindow)
		Expect(w).To(HaveLen(3))
		Expect(w[0].Query).To(Equal("q0"))
		Expect(w[2].Response).To(Equal("r2"))
	})

	It("keeps only the last ten turns once more accumulate", func() {
		fill(h, 14)

		w := h.Window(session.DefaultWindow)
		Expect(h.Len()).To(Equal(14))
		Expect(w).To(HaveLen(10))
		Expect(w[0].Query).To(Equal("q4"))
		Expect(w[9].Query).To(Equal("q13"))
	})

	It("returns a copy that does not alias the history", func() {
		fill(h, 2)

		w := h.Window(2)
		w[0].Query = "mutated"

		Expect(h.Window(2)[0].Query).To(Equal("q0"))
	})

	It("returns nothing for a non-positive window", func() {
		fill(h, 2)
		Expect(h.Window(0)).To(BeNil())
		Expect(h.Window(-1)).To(BeNil())
	})
})
