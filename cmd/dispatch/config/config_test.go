package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/dispatch/cmd/dispatch/config"
	"github.com/papercomputeco/dispatch/pkg/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		subcommands := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}

		// A local .dispatch dir so the manager picks it up.
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".dispatch"), 0o755)).To(Succeed())

		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tmpDir)).To(Succeed())
		DeferCleanup(func() {
			Expect(os.Chdir(origDir)).To(Succeed())
		})
	})

	execute := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.SetArgs(args)
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		return cmd.Execute()
	}

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			Expect(execute("set", "backends.code", "codellama")).To(Succeed())
			Expect(filepath.Join(tmpDir, ".dispatch", "config.toml")).To(BeARegularFile())
			Expect(out.String()).To(ContainSubstring("Set"))
		})

		It("rejects unknown keys", func() {
			err := execute("set", "invalid_key", "value")
			var unknown *config.UnknownKeyError
			Expect(err).To(BeAssignableToTypeOf(unknown))
		})

		It("rejects invalid values", func() {
			Expect(execute("set", "storage.driver", "mysql")).To(MatchError(ContainSubstring("invalid value")))
		})

		It("requires exactly two arguments", func() {
			Expect(execute("set", "backends.code")).To(HaveOccurred())
		})
	})

	Describe("get subcommand", func() {
		It("prints a value previously set", func() {
			Expect(execute("set", "session.context_window", "4")).To(Succeed())
			out.Reset()

			Expect(execute("get", "session.context_window")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("session.context_window"))
			Expect(out.String()).To(ContainSubstring("4"))
		})

		It("marks unset values", func() {
			Expect(execute("get", "storage.postgres_dsn")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("<not set>"))
		})

		It("rejects unknown keys", func() {
			Expect(execute("get", "proxy.upstream")).To(MatchError(ContainSubstring("unknown config key")))
		})
	})

	Describe("list subcommand", func() {
		It("lists every key with defaults", func() {
			Expect(execute("list")).To(Succeed())

			for _, key := range config.ValidConfigKeys() {
				Expect(out.String()).To(ContainSubstring(key))
			}
			Expect(out.String()).To(ContainSubstring(`"qwen2.5-coder"`))
			Expect(out.String()).To(MatchRegexp(`storage\.sqlite_path\s+= <not set>`))
		})

		It("rejects arguments", func() {
			Expect(execute("list", "extra")).To(HaveOccurred())
		})
	})
})
