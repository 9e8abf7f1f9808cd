package runner_test

import (
	"context"
	"errors"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dispatch/pkg/runner"
)

var _ = Describe("ExecRunner", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("defaults to ollama run", func() {
		r := runner.NewExecRunner("")
		Expect(r.Command).To(Equal("ollama"))
		Expect(r.Args).To(Equal([]string{"run"}))
	})

	It("pipes the prompt through stdin and trims stdout", func() {
		// sh -c 'cat' <model>: the model lands in $0 and cat echoes stdin.
		r := runner.NewExecRunner("sh", "-c", "cat")

		result := r.Invoke(ctx, "mistral", "  hello backend \n\n")
		Expect(result.Failed()).To(BeFalse())
		Expect(result.Response).To(Equal("hello backend"))
		Expect(result.Backend).To(Equal("mistral"))
		Expect(result.Elapsed).To(BeNumerically(">", 0))
	})

	It("passes the model name as the final argument", func() {
		r := runner.NewExecRunner("sh", "-c", `echo "model=$0"`)

		result := r.Invoke(ctx, "qwen2.5-coder", "")
		Expect(result.Response).To(Equal("model=qwen2.5-coder"))
	})

	It("reports elapsed seconds with millisecond precision", func() {
		r := runner.NewExecRunner("sh", "-c", "sleep 0.05; echo done")

		result := r.Invoke(ctx, "mathstral", "")
		Expect(result.Failed()).To(BeFalse())
		secs := result.ElapsedSeconds()
		Expect(secs).To(BeNumerically(">=", 0.05))
		Expect(secs).To(Equal(math.Round(secs*1000) / 1000))
	})

	It("converts a non-zero exit into a failed result", func() {
		r := runner.NewExecRunner("sh", "-c", "echo model missing >&2; exit 3")

		result := r.Invoke(ctx, "llama3.2-vision", "describe")
		Expect(result.Failed()).To(BeTrue())
		Expect(result.Response).To(HavePrefix("Error running llama3.2-vision: exit status 3"))
		Expect(result.Response).To(ContainSubstring("model missing"))
		Expect(result.ElapsedSeconds()).To(Equal(0.0))
	})

	It("fails when the command cannot be started", func() {
		r := runner.NewExecRunner("dispatch-no-such-binary")

		result := r.Invoke(ctx, "mistral", "hi")
		Expect(result.Failed()).To(BeTrue())
		Expect(result.Response).To(HavePrefix("Error running mistral: "))
	})
})

var _ = Describe("Result", func() {
	It("rounds elapsed seconds to three places", func() {
		r := runner.Result{Elapsed: 1234567 * time.Microsecond}
		Expect(r.ElapsedSeconds()).To(Equal(1.235))
	})

	It("builds failures through Failure", func() {
		r := runner.Failure("mistral", errors.New("boom"))
		Expect(r.Failed()).To(BeTrue())
		Expect(r.Response).To(Equal("Error running mistral: boom"))
		Expect(r.Backend).To(Equal("mistral"))
	})

	It("adapts functions with RunnerFunc", func() {
		var r runner.Runner = runner.RunnerFunc(func(_ context.Context, model, prompt string) runner.Result {
			return runner.Result{Response: model + ":" + prompt, Backend: model}
		})
		Expect(r.Invoke(context.Background(), "m", "p").Response).To(Equal("m:p"))
	})
})
