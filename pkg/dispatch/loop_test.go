package dispatch_test

import (
	"bytes"
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dispatch/pkg/dispatch"
	"github.com/papercomputeco/dispatch/pkg/logger"
	"github.com/papercomputeco/dispatch/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/dispatch/pkg/utils/test"
)

var _ = Describe("IsExitCommand", func() {
	DescribeTable("matches exit commands exactly, ignoring case",
		func(line string, want bool) {
			Expect(dispatch.IsExitCommand(line)).To(Equal(want))
		},
		Entry("exit", "exit", true),
		Entry("slash exit", "/exit", true),
		Entry("upper case", "EXIT", true),
		Entry("mixed case slash", "/Exit", true),
		Entry("padded", " exit", false),
		Entry("sentence", "exit the vim editor", false),
		Entry("quit", "quit", false),
	)
})

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("device gone")
}

var _ = Describe("Loop", func() {
	var (
		ctx    context.Context
		run    *testutils.ScriptedRunner
		driver *inmemory.Driver
		out    *bytes.Buffer
	)

	newLoop := func(input string, opts ...dispatch.LoopOption) *dispatch.Loop {
		d, err := dispatch.NewDispatcher(&dispatch.Config{Runner: run, Driver: driver})
		Expect(err).NotTo(HaveOccurred())
		return dispatch.NewLoop(d, strings.NewReader(input), out, opts...)
	}

	BeforeEach(func() {
		ctx = context.Background()
		run = testutils.NewScriptedRunner()
		driver = inmemory.NewDriver()
		out = &bytes.Buffer{}
	})

	It("starts in the running state", func() {
		Expect(newLoop("").State()).To(Equal(dispatch.Running))
	})

	It("terminates on exit without invoking or logging", func() {
		l := newLoop("exit\nwrite some code\n")
		Expect(l.Run(ctx)).To(Succeed())

		Expect(l.State()).To(Equal(dispatch.Terminated))
		Expect(run.Calls).To(BeEmpty())
		records, _ := driver.Recent(ctx, 10)
		Expect(records).To(BeEmpty())
		Expect(out.String()).To(ContainSubstring("Goodbye!"))
	})

	It("handles each line in order and prints the raw response", func() {
		run.Responses = []string{"first answer", "second answer"}

		l := newLoop("hello\nsolve 2x = 4\n/EXIT\n")
		Expect(l.Run(ctx)).To(Succeed())

		Expect(run.Calls).To(HaveLen(2))
		Expect(run.Calls[0].Model).To(Equal("mistral"))
		Expect(run.Calls[1].Model).To(Equal("mathstral"))
		Expect(out.String()).To(ContainSubstring("first answer\n"))
		Expect(out.String()).To(ContainSubstring("second answer\n"))
		Expect(l.History().Len()).To(Equal(2))

		records, _ := driver.Recent(ctx, 10)
		Expect(records).To(HaveLen(2))
	})

	It("writes no terminal escape codes to a plain writer", func() {
		run.Responses = []string{"answer"}

		l := newLoop("hi\nexit\n")
		Expect(l.Run(ctx)).To(Succeed())

		Expect(out.String()).NotTo(ContainSubstring("\x1b["))
		Expect(out.String()).To(Equal("\nDispatch started. Type 'exit' to quit.\n\n>> answer\n>> Goodbye!\n"))
	})

	It("accepts lines longer than a megabyte", func() {
		query := strings.Repeat("a", 2*1024*1024)

		l := newLoop(query + "\nexit\n")
		Expect(l.Run(ctx)).To(Succeed())

		Expect(l.State()).To(Equal(dispatch.Terminated))
		Expect(run.Calls).To(HaveLen(1))
		Expect(run.Calls[0].Prompt).To(Equal("User: " + query))
	})

	It("returns read errors other than end of input", func() {
		d, err := dispatch.NewDispatcher(&dispatch.Config{Runner: run, Driver: driver})
		Expect(err).NotTo(HaveOccurred())

		l := dispatch.NewLoop(d, brokenReader{}, out)
		Expect(l.Run(ctx)).To(MatchError(ContainSubstring("device gone")))
		Expect(l.State()).To(Equal(dispatch.Terminated))
		Expect(run.Calls).To(BeEmpty())
	})

	It("still runs a cycle for empty lines", func() {
		l := newLoop("\nexit\n")
		Expect(l.Run(ctx)).To(Succeed())

		Expect(run.Calls).To(HaveLen(1))
		Expect(run.Calls[0].Model).To(Equal("mistral"))
		Expect(run.Calls[0].Prompt).To(Equal("User: "))
	})

	It("terminates at end of input", func() {
		l := newLoop("hello")
		Expect(l.Run(ctx)).To(Succeed())

		Expect(l.State()).To(Equal(dispatch.Terminated))
		Expect(run.Calls).To(HaveLen(1))
	})

	It("stops before reading when the context is cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		l := newLoop("hello\n")
		Expect(l.Run(cancelled)).To(Succeed())
		Expect(l.State()).To(Equal(dispatch.Terminated))
		Expect(run.Calls).To(BeEmpty())
	})

	It("keeps going when a log write fails", func() {
		var logs bytes.Buffer
		d, err := dispatch.NewDispatcher(&dispatch.Config{Runner: run, Driver: testutils.FailingDriver{}})
		Expect(err).NotTo(HaveOccurred())

		l := dispatch.NewLoop(d, strings.NewReader("one\ntwo\nexit\n"), out,
			dispatch.WithLogger(logger.New(logger.WithWriter(&logs))),
		)
		Expect(l.Run(ctx)).To(Succeed())

		Expect(run.Calls).To(HaveLen(2))
		Expect(logs.String()).To(ContainSubstring("failed to record exchange"))
		Expect(out.String()).To(ContainSubstring("mistral says: ok"))
	})

	It("draws progress on the progress writer only", func() {
		var progress bytes.Buffer
		l := newLoop("hello\nexit\n", dispatch.WithProgress(&progress))
		Expect(l.Run(ctx)).To(Succeed())

		Expect(progress.String()).To(ContainSubstring("Waiting for backend"))
		Expect(out.String()).NotTo(ContainSubstring("Waiting for backend"))
	})
})

var _ = Describe("State", func() {
	It("has readable names", func() {
		Expect(dispatch.Running.String()).To(Equal("running"))
		Expect(dispatch.Terminated.String()).To(Equal("terminated"))
	})
})
