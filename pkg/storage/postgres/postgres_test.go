package postgres_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dispatch/pkg/storage"
	"github.com/papercomputeco/dispatch/pkg/storage/postgres"
	testutils "github.com/papercomputeco/dispatch/pkg/utils/test"
)

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("DISPATCH_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("DISPATCH_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

var _ = Describe("Driver", func() {
	testutils.DriverBehaviors(func() storage.Driver {
		ctx := context.Background()
		driver, err := postgres.NewDriver(ctx, connStr())
		Expect(err).NotTo(HaveOccurred())

		_, err = driver.DB.ExecContext(ctx, "TRUNCATE chat_history RESTART IDENTITY")
		Expect(err).NotTo(HaveOccurred())
		return driver
	})

	It("fails fast on an unreachable server", func() {
		_, err := postgres.NewDriver(context.Background(), "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
		Expect(err).To(MatchError(ContainSubstring("failed to ping database")))
	})
})
