package prompt_test

import (
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dispatch/pkg/prompt"
	"github.com/papercomputeco/dispatch/pkg/session"
)

var _ = Describe("ExtractAttachmentPath", func() {
	var (
		dir     string
		origCwd string
	)

	BeforeEach(func() {
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		dir = GinkgoT().TempDir()
		Expect(os.Chdir(dir)).To(Succeed())
		DeferCleanup(func() {
			Expect(os.Chdir(origCwd)).To(Succeed())
		})

		Expect(os.WriteFile("photo.png", []byte("png"), 0o644)).To(Succeed())
		Expect(os.WriteFile("SCAN.JPG", []byte("jpg"), 0o644)).To(Succeed())
		Expect(os.WriteFile("notes.txt", []byte("txt"), 0o644)).To(Succeed())
		Expect(os.Mkdir("folder.gif", 0o755)).To(Succeed())
	})

	It("returns an existing image token", func() {
		path, ok := prompt.ExtractAttachmentPath("photo.png describe this")
		Expect(ok).To(BeTrue())
		Expect(path).To(Equal("photo.png"))
	})

	It("matches extensions case-insensitively", func() {
		path, ok := prompt.ExtractAttachmentPath("what is on SCAN.JPG")
		Expect(ok).To(BeTrue())
		Expect(path).To(Equal("SCAN.JPG"))
	})

	It("accepts absolute paths", func() {
		abs := filepath.Join(dir, "photo.png")
		path, ok := prompt.ExtractAttachmentPath("see " + abs)
		Expect(ok).To(BeTrue())
		Expect(path).To(Equal(abs))
	})

	It("skips image-looking tokens that do not exist", func() {
		_, ok := prompt.ExtractAttachmentPath("missing.png describe this")
		Expect(ok).To(BeFalse())
	})

	It("returns the first qualifying token", func() {
		path, ok := prompt.ExtractAttachmentPath("missing.png photo.png SCAN.JPG")
		Expect(ok).To(BeTrue())
		Expect(path).To(Equal("photo.png"))
	})

	It("ignores existing files without an image extension and directories", func() {
		_, ok := prompt.ExtractAttachmentPath("notes.txt folder.gif")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Assemble", func() {
	Context("attachment mode", func() {
		BeforeEach(func() {
			origCwd, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(GinkgoT().TempDir())).To(Succeed())
			DeferCleanup(func() {
				Expect(os.Chdir(origCwd)).To(Succeed())
			})
			Expect(os.WriteFile("photo.png", []byte("png"), 0o644)).To(Succeed())
		})

		It("wraps the path and strips it from the residual text", func() {
			out := prompt.Assemble("photo.png describe this", true, nil)
			Expect(out).To(Equal("<image>photo.png</image>\ndescribe this"))
		})

		It("ignores the context window", func() {
			window := []session.Turn{{Query: "q", Response: "r"}}
			out := prompt.Assemble("describe photo.png", true, window)
			Expect(out).To(Equal("<image>photo.png</image>\ndescribe"))
		})

		It("sends the query unmodified when no attachment resolves", func() {
			window := []session.Turn{{Query: "q", Response: "r"}}
			out := prompt.Assemble("describe missing.png", true, window)
			Expect(out).To(Equal("describe missing.png"))
		})
	})

	Context("text mode", func() {
		It("prefixes only the user line when there is no history", func() {
			Expect(prompt.Assemble("hello", false, nil)).To(Equal("User: hello"))
		})

		It("renders the window oldest first before the current query", func() {
			window := []session.Turn{
				{Query: "first", Response: "one"},
				{Query: "second", Response: "two"},
			}
			out := prompt.Assemble("third", false, window)
			Expect(out).To(Equal(
				"User: first\nAssistant: one\nUser: second\nAssistant: two\nUser: third",
			))
		})

		It("excludes turns beyond the last ten", func() {
			h := session.NewHistory()
			for i := range 12 {
				h.Append(session.Turn{Query: fmt.Sprintf("q%d", i), Response: fmt.Sprintf("r%d", i)})
			}

			out := prompt.Assemble("now", false, h.Window(session.DefaultWindow))
			Expect(out).NotTo(ContainSubstring("User: q0\n"))
			Expect(out).NotTo(ContainSubstring("User: q1\n"))
			Expect(out).To(HavePrefix("User: q2\nAssistant: r2\n"))
			Expect(out).To(HaveSuffix("User: q11\nAssistant: r11\nUser: now"))
		})
	})
})
