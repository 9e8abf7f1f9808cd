package storage_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dispatch/pkg/storage"
)

var _ = Describe("ParseTimestamp", func() {
	It("parses RFC 3339 timestamps", func() {
		want := time.Date(2025, 3, 4, 5, 6, 7, 890000000, time.UTC)
		got, err := storage.ParseTimestamp(want.Format(storage.TimestampLayout))
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Equal(want)).To(BeTrue())
	})

	It("parses naive timestamps in local time", func() {
		got, err := storage.ParseTimestamp("2024-05-06T07:08:09")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Location()).To(Equal(time.Local))
		Expect(got.Hour()).To(Equal(7))
	})

	It("rejects garbage", func() {
		_, err := storage.ParseTimestamp("yesterday")
		Expect(err).To(MatchError(ContainSubstring("parsing timestamp")))
	})
})
