package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dispatch/pkg/storage"
	"github.com/papercomputeco/dispatch/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/dispatch/pkg/utils/test"
)

var _ = Describe("Driver", func() {
	testutils.DriverBehaviors(func() storage.Driver {
		return inmemory.NewDriver()
	})

	It("hands out copies so callers cannot rewrite history", func() {
		ctx := context.Background()
		d := inmemory.NewDriver()
		Expect(d.Append(ctx, testutils.NewTestRecord("q", "r"))).To(Succeed())

		got, err := d.Recent(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		got[0].Response = "tampered"

		again, err := d.Recent(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(again[0].Response).To(Equal("r"))
	})
})
