// Package cliui provides reusable terminal UI helpers (spinners, styles,
// markdown rendering) for dispatch CLI commands.
package cliui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
)

var (
	SuccessMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	StepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	KeyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	ValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	NameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	PromptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

// spinnerFrames matches bubbletea's spinner.Dot pattern.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Step prints an animated spinner while fn runs, then replaces it with
// a ✓ or ✗ checkmark and elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	done := make(chan struct{})
	stopped := make(chan struct{})
	var mu sync.Mutex

	// Run spinner animation in background
	go func() {
		defer close(stopped)
		frame := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			mu.Lock()
			Fprintf(w, "\r  %s %s",
				spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]),
				msg,
			)
			mu.Unlock()

			select {
			case <-done:
				return
			case <-ticker.C:
				frame++
			}
		}
	}()

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	close(done)
	<-stopped

	// Clear the spinner line and print final result
	mu.Lock()
	Fprintf(w, "\r  %s %s %s\n",
		Mark(err),
		msg,
		StepStyle.Render(fmt.Sprintf("(%s)", FormatDuration(elapsed))),
	)
	mu.Unlock()

	return err
}

// Fprint writes a to w, downsampling styled text to the colors w supports.
// Writers that are not terminals, such as pipes and files, get plain text.
func Fprint(w io.Writer, a ...any) {
	_, _ = lipgloss.Fprint(w, a...)
}

// Fprintf is Fprint with a format string.
func Fprintf(w io.Writer, format string, a ...any) {
	_, _ = lipgloss.Fprintf(w, format, a...)
}

// Fprintln is Fprint followed by a newline.
func Fprintln(w io.Writer, a ...any) {
	_, _ = lipgloss.Fprintln(w, a...)
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// RenderMarkdown renders markdown content for terminal display using glamour.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}
