package testutils

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dispatch/pkg/storage"
)

// DriverBehaviors registers the specs every storage.Driver must satisfy.
// newDriver is called once per spec; the driver is closed afterwards.
func DriverBehaviors(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver()
		DeferCleanup(func() {
			Expect(driver.Close()).To(Succeed())
		})
	})

	Describe("Append", func() {
		It("assigns increasing ids", func() {
			first := NewTestRecord("q1", "r1")
			second := NewTestRecord("q2", "r2")

			Expect(driver.Append(ctx, first)).To(Succeed())
			Expect(driver.Append(ctx, second)).To(Succeed())

			Expect(first.ID).To(BeNumerically(">", 0))
			Expect(second.ID).To(BeNumerically(">", first.ID))
		})

		It("round-trips every column", func() {
			rec := NewTestRecord("what is 2+2", "4")
			rec.AgentName = "mathstral"
			rec.ResponseTime = 1.234
			Expect(driver.Append(ctx, rec)).To(Succeed())

			got, err := driver.Recent(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(1))
			Expect(got[0].ID).To(Equal(rec.ID))
			Expect(got[0].Query).To(Equal("what is 2+2"))
			Expect(got[0].Response).To(Equal("4"))
			Expect(got[0].AgentName).To(Equal("mathstral"))
			Expect(got[0].ResponseTime).To(BeNumerically("~", 1.234, 1e-9))
			Expect(got[0].Timestamp.Equal(rec.Timestamp)).To(BeTrue())
		})

		It("stamps records without a timestamp", func() {
			rec := NewTestRecord("q", "r")
			rec.Timestamp = time.Time{}

			Expect(driver.Append(ctx, rec)).To(Succeed())
			Expect(rec.Timestamp).To(BeTemporally("~", time.Now(), time.Minute))
		})

		It("rejects nil records", func() {
			Expect(driver.Append(ctx, nil)).To(MatchError(storage.ErrNilRecord))
		})
	})

	Describe("Recent", func() {
		It("returns records newest first up to the limit", func() {
			for i := range 5 {
				Expect(driver.Append(ctx, NewTestRecord(fmt.Sprintf("q%d", i), "r"))).To(Succeed())
			}

			got, err := driver.Recent(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(3))
			Expect(got[0].Query).To(Equal("q4"))
			Expect(got[2].Query).To(Equal("q2"))
		})

		It("returns nothing for a non-positive limit", func() {
			Expect(driver.Append(ctx, NewTestRecord("q", "r"))).To(Succeed())

			got, err := driver.Recent(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeEmpty())
		})
	})
}
